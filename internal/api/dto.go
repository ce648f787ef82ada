package api

// GenerateRequest mirrors the form. Omitted username and generate_images take
// their defaults.
type GenerateRequest struct {
	Topic          string  `json:"topic"`
	Username       *string `json:"username"`
	Intention      string  `json:"intention"`
	Palette        string  `json:"palette"`
	GenerateImages *bool   `json:"generate_images"`
	Stream         bool    `json:"stream"`
}

type AppearanceRequest struct {
	Username string `json:"username"`
	Palette  string `json:"palette"`
}

type GenerateResponse struct {
	RunID        string       `json:"run_id,omitempty"`
	Status       string       `json:"status"`
	Slides       []SlideView  `json:"slides,omitempty"`
	FailedImages []int        `json:"failed_images,omitempty"`
	Warning      *ErrorDetail `json:"warning,omitempty"`
	Error        *ErrorDetail `json:"error,omitempty"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type SessionResponse struct {
	SessionID    string      `json:"session_id"`
	Phase        string      `json:"phase"`
	RunID        string      `json:"run_id,omitempty"`
	Form         FormView    `json:"form"`
	Palette      PaletteView `json:"palette"`
	Slides       []SlideView `json:"slides"`
	FailedImages []int       `json:"failed_images,omitempty"`
	Warning      string      `json:"warning,omitempty"`
	Error        string      `json:"error,omitempty"`
	Exporting    bool        `json:"exporting"`
}

type FormView struct {
	Topic          string `json:"topic"`
	Username       string `json:"username"`
	Intention      string `json:"intention"`
	Palette        string `json:"palette"`
	GenerateImages bool   `json:"generate_images"`
}

type SlideView struct {
	Index       int    `json:"index"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	SlideType   string `json:"slide_type"`
	HasImage    bool   `json:"has_image"`
	PreviewURL  string `json:"preview_url"`
	DownloadURL string `json:"download_url"`
}

type PaletteView struct {
	Name       string `json:"name"`
	Background string `json:"background"`
	Text       string `json:"text"`
	Primary    string `json:"primary"`
	Secondary  string `json:"secondary"`
	Accent     string `json:"accent"`
}

type CatalogResponse struct {
	Intentions []string      `json:"intentions"`
	Palettes   []PaletteView `json:"palettes"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

// SSE 流式事件类型
type StreamEvent struct {
	Event     string      `json:"event"`
	Data      interface{} `json:"data"`
	RequestID string      `json:"request_id"`
}

// 各阶段事件数据
type EventStart struct {
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

type EventProgress struct {
	Message  string `json:"message"`
	Progress int    `json:"progress"`
}

type EventTextReady struct {
	Message  string      `json:"message"`
	Slides   []SlideView `json:"slides"`
	Progress int         `json:"progress"`
}

type EventImageSettled struct {
	Message  string `json:"message"`
	Slide    int    `json:"slide"`
	OK       bool   `json:"ok"`
	Progress int    `json:"progress"`
}

type EventError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

const (
	StatusSucceeded = "SUCCEEDED"
	StatusPartial   = "PARTIAL"
	StatusFailed    = "FAILED"

	// SSE 事件类型
	EventTypeStart            = "start"
	EventTypeGeneratingText   = "generating_text"
	EventTypeTextReady        = "text_ready"
	EventTypeGeneratingImages = "generating_images"
	EventTypeImageSettled     = "image_settled"
	EventTypeComplete         = "complete"
	EventTypeError            = "error"
)
