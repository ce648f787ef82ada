package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ChaseRain/carouselgen/internal/carousel"
	"github.com/ChaseRain/carouselgen/internal/catalog"
	"github.com/ChaseRain/carouselgen/internal/infra/logger"
	"github.com/ChaseRain/carouselgen/internal/service/export"
	"github.com/ChaseRain/carouselgen/internal/service/orchestrator"
	"github.com/ChaseRain/carouselgen/internal/service/render"
	"github.com/ChaseRain/carouselgen/internal/service/session"
	"github.com/ChaseRain/carouselgen/pkg/errors"
)

type Handler struct {
	sessions   *session.Store
	exporter   *export.Exporter
	cookieName string
	logger     *logger.Logger
}

func NewHandler(sessions *session.Store, exporter *export.Exporter, cookieName string, log *logger.Logger) *Handler {
	return &Handler{
		sessions:   sessions,
		exporter:   exporter,
		cookieName: cookieName,
		logger:     log,
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

func (h *Handler) Catalog(c *gin.Context) {
	c.JSON(http.StatusOK, CatalogResponse{
		Intentions: catalog.Intentions(),
		Palettes:   paletteViews(),
	})
}

func (h *Handler) CreateSession(c *gin.Context) {
	ctl := h.sessions.Create()
	c.JSON(http.StatusCreated, sessionResponse(ctl.Snapshot()))
}

func (h *Handler) GetSession(c *gin.Context) {
	ctl, ok := h.controller(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, sessionResponse(ctl.Snapshot()))
}

func (h *Handler) Generate(c *gin.Context) {
	ctl, ok := h.controller(c)
	if !ok {
		return
	}

	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("invalid request", "error", err)
		c.JSON(http.StatusBadRequest, GenerateResponse{
			Status: StatusFailed,
			Error: &ErrorDetail{
				Code:    errors.ErrCodeValidation,
				Message: err.Error(),
			},
		})
		return
	}
	form := req.form()

	// 流式输出
	if req.Stream {
		// reject bad input before the response turns into an event stream
		if _, err := form.Validate(); err != nil {
			h.handleError(c, err)
			return
		}
		if ctl.Snapshot().State.Loading {
			h.handleError(c, errors.New(errors.ErrCodeRunInProgress, session.MessageRunInProgress))
			return
		}
		h.handleStreamingResponse(c, ctl, form)
		return
	}

	res, err := ctl.Submit(runContext(c), form, nil)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, generateResponse(ctl.ID(), res))
}

func (h *Handler) handleStreamingResponse(c *gin.Context, ctl *session.Controller, form session.Form) {
	// 设置 SSE headers
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	// 发送事件的辅助函数
	sendEvent := func(eventType string, data interface{}) {
		event := StreamEvent{
			Event:     eventType,
			Data:      data,
			RequestID: ctl.ID(),
		}
		jsonData, _ := json.Marshal(event)
		fmt.Fprintf(c.Writer, "event: %s\n", eventType)
		fmt.Fprintf(c.Writer, "data: %s\n\n", jsonData)
		c.Writer.Flush()
	}

	sendEvent(EventTypeStart, EventStart{
		Message:   "Iniciando a geração do carrossel...",
		Timestamp: time.Now().Unix(),
	})

	// 进度回调
	onProgress := func(event orchestrator.ProgressEvent) {
		switch event.Stage {
		case orchestrator.StageGeneratingText:
			sendEvent(EventTypeGeneratingText, EventProgress{
				Message:  event.Message,
				Progress: event.Progress,
			})
		case orchestrator.StageTextReady:
			deck, _ := event.Data.(carousel.Deck)
			sendEvent(EventTypeTextReady, EventTextReady{
				Message:  event.Message,
				Slides:   slideViews(ctl.ID(), deck),
				Progress: event.Progress,
			})
		case orchestrator.StageGeneratingImages:
			sendEvent(EventTypeGeneratingImages, EventProgress{
				Message:  event.Message,
				Progress: event.Progress,
			})
		case orchestrator.StageImageSettled:
			data, _ := event.Data.(orchestrator.ImageSettledData)
			sendEvent(EventTypeImageSettled, EventImageSettled{
				Message:  event.Message,
				Slide:    data.Slide,
				OK:       data.OK,
				Progress: event.Progress,
			})
		}
		// complete goes out below, once the session holds the new deck
	}

	res, err := ctl.Submit(runContext(c), form, onProgress)
	if err != nil {
		h.logger.Warn("streamed generation failed", "session_id", ctl.ID(), "error", err)
		sendEvent(EventTypeError, EventError{
			Code:    errors.CodeOf(err),
			Message: errors.MessageOf(err),
		})
		return
	}
	sendEvent(EventTypeComplete, generateResponse(ctl.ID(), res))
}

func (h *Handler) SetAppearance(c *gin.Context) {
	ctl, ok := h.controller(c)
	if !ok {
		return
	}

	var req AppearanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleError(c, errors.Wrap(err, errors.ErrCodeValidation, err.Error()))
		return
	}
	if err := ctl.SetAppearance(req.Username, req.Palette); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionResponse(ctl.Snapshot()))
}

func (h *Handler) SlidePreview(c *gin.Context) {
	card, ok := h.card(c)
	if !ok {
		return
	}
	file, err := h.exporter.Preview(card)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

func (h *Handler) SlideDownload(c *gin.Context) {
	card, ok := h.card(c)
	if !ok {
		return
	}
	file, err := h.exporter.Slide(card)
	if err != nil {
		h.handleError(c, err)
		return
	}
	attach(c, file)
}

func (h *Handler) Archive(c *gin.Context) {
	ctl, ok := h.controller(c)
	if !ok {
		return
	}

	cards, err := ctl.BeginExport()
	if err != nil {
		h.handleError(c, err)
		return
	}
	defer ctl.EndExport()

	file, skipped, err := h.exporter.Archive(c.Request.Context(), cards)
	if err != nil {
		h.handleError(c, err)
		return
	}
	if len(skipped) > 0 {
		c.Header("X-Skipped-Slides", joinInts(skipped))
	}
	attach(c, file)
}

func (h *Handler) controller(c *gin.Context) (*session.Controller, bool) {
	ctl, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return nil, false
	}
	return ctl, true
}

func (h *Handler) card(c *gin.Context) (render.Card, bool) {
	ctl, ok := h.controller(c)
	if !ok {
		return render.Card{}, false
	}
	n, err := strconv.Atoi(c.Param("n"))
	if err != nil {
		h.handleError(c, errors.New(errors.ErrCodeValidation, "invalid slide number"))
		return render.Card{}, false
	}
	card, err := ctl.Card(n)
	if err != nil {
		h.handleError(c, err)
		return render.Card{}, false
	}
	return card, true
}

// runContext lets a run finish and land in the session after the client that
// started it disconnects. Remote calls stay bounded by the HTTP client and
// per-image timeouts.
func runContext(c *gin.Context) context.Context {
	return context.WithoutCancel(c.Request.Context())
}

func (h *Handler) handleError(c *gin.Context, err error) {
	code := errors.CodeOf(err)
	status := statusFor(code)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "path", c.Request.URL.Path, "code", code, "error", err)
	} else {
		h.logger.Warn("request rejected", "path", c.Request.URL.Path, "code", code, "error", err)
	}

	c.JSON(status, GenerateResponse{
		Status: StatusFailed,
		Error: &ErrorDetail{
			Code:    code,
			Message: errors.MessageOf(err),
		},
	})
}

func statusFor(code string) int {
	switch code {
	case errors.ErrCodeValidation:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeRunInProgress, errors.ErrCodeExportInProgress:
		return http.StatusConflict
	case errors.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case errors.ErrCodeGenerationFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func attach(c *gin.Context, file *export.File) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, file.Name))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

func (r GenerateRequest) form() session.Form {
	f := session.DefaultForm()
	f.Topic = r.Topic
	f.Intention = r.Intention
	f.Palette = r.Palette
	if r.Username != nil {
		f.Username = *r.Username
	}
	if r.GenerateImages != nil {
		f.GenerateImages = *r.GenerateImages
	}
	return f
}

func generateResponse(sessionID string, res *orchestrator.Result) GenerateResponse {
	resp := GenerateResponse{
		RunID:        res.RunID,
		Status:       StatusSucceeded,
		Slides:       slideViews(sessionID, res.Deck),
		FailedImages: res.FailedImages,
	}
	if res.Warning != nil {
		resp.Status = StatusPartial
		resp.Warning = &ErrorDetail{Code: res.Warning.Code, Message: res.Warning.Message}
	}
	return resp
}

func sessionResponse(snap session.Snapshot) SessionResponse {
	slides := slideViews(snap.ID, snap.State.Deck)
	if slides == nil {
		slides = []SlideView{}
	}
	return SessionResponse{
		SessionID: snap.ID,
		Phase:     string(snap.State.Phase()),
		RunID:     snap.State.RunID,
		Form: FormView{
			Topic:          snap.Form.Topic,
			Username:       snap.Form.Username,
			Intention:      snap.Form.Intention,
			Palette:        snap.Form.Palette,
			GenerateImages: snap.Form.GenerateImages,
		},
		Palette:      paletteView(snap.Palette),
		Slides:       slides,
		FailedImages: snap.State.FailedImages,
		Warning:      snap.State.Warning,
		Error:        snap.State.Error,
		Exporting:    snap.Exporting,
	}
}

func slideViews(sessionID string, deck carousel.Deck) []SlideView {
	if deck == nil {
		return nil
	}
	views := make([]SlideView, len(deck))
	for i, s := range deck {
		base := fmt.Sprintf("/v1/sessions/%s/slides/%d", sessionID, i+1)
		views[i] = SlideView{
			Index:       i + 1,
			Title:       s.Title,
			Content:     s.Content,
			SlideType:   string(s.Role),
			HasImage:    s.HasImage(),
			PreviewURL:  base + "/preview.png",
			DownloadURL: base + "/download",
		}
	}
	return views
}

func paletteView(p catalog.Palette) PaletteView {
	return PaletteView{
		Name:       p.Name,
		Background: catalog.Hex(p.Background),
		Text:       catalog.Hex(p.Text),
		Primary:    catalog.Hex(p.Primary),
		Secondary:  catalog.Hex(p.Secondary),
		Accent:     catalog.Hex(p.Accent),
	}
}

func paletteViews() []PaletteView {
	palettes := catalog.Palettes()
	views := make([]PaletteView, len(palettes))
	for i, p := range palettes {
		views[i] = paletteView(p)
	}
	return views
}

func joinInts(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}
