package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ChaseRain/carouselgen/internal/carousel"
	"github.com/ChaseRain/carouselgen/internal/infra/httpclient"
	"github.com/ChaseRain/carouselgen/internal/infra/logger"
	"github.com/ChaseRain/carouselgen/pkg/errors"
)

// apiKeyHeader carries the key so it never appears in a request URL.
const apiKeyHeader = "X-Goog-Api-Key"

type Options struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float64
	TopP        float64
}

// Service drafts slide copy through the Gemini generateContent endpoint.
type Service struct {
	opts       Options
	httpClient *httpclient.Client
	logger     *logger.Logger
}

func New(opts Options, client *httpclient.Client, log *logger.Logger) *Service {
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	return &Service{
		opts:       opts,
		httpClient: client,
		logger:     log,
	}
}

// responseSchema constrains the model to an ordered array of slide objects.
var responseSchema = map[string]interface{}{
	"type": "ARRAY",
	"items": map[string]interface{}{
		"type": "OBJECT",
		"properties": map[string]interface{}{
			"title": map[string]string{
				"type":        "STRING",
				"description": "Um título curto e cativante para o slide (máx 10 palavras).",
			},
			"content": map[string]string{
				"type":        "STRING",
				"description": "O texto principal do slide (máx 40 palavras), formatado com quebras de linha para melhor legibilidade.",
			},
			"slide_type": map[string]interface{}{
				"type":        "STRING",
				"description": "Tipo de slide: 'cover' para o primeiro, 'content' para o meio, ou 'cta' para o último.",
				"enum":        []string{"cover", "content", "cta"},
			},
		},
		"required": []string{"title", "content", "slide_type"},
	},
}

func (s *Service) GenerateSlides(ctx context.Context, topic, intention string) ([]carousel.SlideContent, error) {
	requestBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"parts": []map[string]interface{}{
					{
						"text": buildPrompt(topic, intention),
					},
				},
			},
		},
		"generationConfig": map[string]interface{}{
			"responseMimeType": "application/json",
			"responseSchema":   responseSchema,
			"temperature":      s.opts.Temperature,
			"topP":             s.opts.TopP,
		},
	}

	bodyBytes, err := json.Marshal(requestBody)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to marshal request")
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", s.opts.BaseURL, s.opts.Model)
	header := http.Header{apiKeyHeader: []string{s.opts.APIKey}}

	resp, err := s.httpClient.PostJSON(ctx, url, bodyBytes, header)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeTextGenAPI, "gemini API request failed")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeTextGenAPI, "failed to read response")
	}

	if resp.StatusCode != http.StatusOK {
		s.logger.Error("gemini API error", "status", resp.StatusCode, "body", truncate(string(respBody), 512))
		return nil, errors.New(errors.ErrCodeTextGenAPI, fmt.Sprintf("gemini API returned %d", resp.StatusCode))
	}

	slides, err := parseResponse(respBody)
	if err != nil {
		s.logger.Error("failed to parse slide content", "error", err)
		return nil, err
	}
	return slides, nil
}

func buildPrompt(topic, intention string) string {
	return fmt.Sprintf(`Você é um especialista em marketing de mídia social, especializado na criação de carrosséis envolventes para o Instagram.
Gere o conteúdo para um carrossel de 5 slides com base no seguinte tópico e intenção.

Tópico: %q
Intenção: %q

A estrutura do carrossel deve ser clara:
- Slide 1 (cover): Um título forte e um gancho para capturar a atenção. Deve convidar o usuário a deslizar.
- Slides 2-4 (content): O conteúdo principal, dividido em pontos ou passos digeríveis. Use emojis relevantes para aumentar o engajamento.
- Slide 5 (cta): Um resumo e uma chamada para ação clara (por exemplo, "Salve este post", "Comente abaixo", "Siga para mais dicas").

Forneça a saída como um array JSON que corresponda ao esquema fornecido. Seja conciso e impactante.`, topic, intention)
}

// rawSlide uses pointers so a missing field can be told apart from an empty one.
type rawSlide struct {
	Title     *string `json:"title"`
	Content   *string `json:"content"`
	SlideType *string `json:"slide_type"`
}

func parseResponse(body []byte) ([]carousel.SlideContent, error) {
	var response struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}

	if err := json.Unmarshal(body, &response); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeTextGenAPI, "failed to parse gemini response")
	}

	if len(response.Candidates) == 0 || len(response.Candidates[0].Content.Parts) == 0 {
		return nil, errors.New(errors.ErrCodeTextGenAPI, "empty response from gemini")
	}

	text := response.Candidates[0].Content.Parts[0].Text
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	return decodeSlides([]byte(text))
}

// decodeSlides checks the model output against the expected shape: a
// non-empty array of objects carrying title, content and a known slide_type.
func decodeSlides(data []byte) ([]carousel.SlideContent, error) {
	var raw []rawSlide
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeTextGenAPI, "slide content is not a JSON array of objects")
	}
	if len(raw) == 0 {
		return nil, errors.New(errors.ErrCodeTextGenAPI, "slide content array is empty")
	}

	slides := make([]carousel.SlideContent, 0, len(raw))
	for i, r := range raw {
		if r.Title == nil || r.Content == nil || r.SlideType == nil {
			return nil, errors.New(errors.ErrCodeTextGenAPI, fmt.Sprintf("slide %d is missing a required field", i+1))
		}
		if strings.TrimSpace(*r.Title) == "" {
			return nil, errors.New(errors.ErrCodeTextGenAPI, fmt.Sprintf("slide %d has an empty title", i+1))
		}
		role, ok := carousel.ParseRole(*r.SlideType)
		if !ok {
			return nil, errors.New(errors.ErrCodeTextGenAPI, fmt.Sprintf("slide %d has unknown slide_type %q", i+1, *r.SlideType))
		}
		slides = append(slides, carousel.SlideContent{
			Title:   strings.TrimSpace(*r.Title),
			Content: strings.TrimSpace(*r.Content),
			Role:    role,
		})
	}
	return slides, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
