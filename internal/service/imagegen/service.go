package imagegen

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/ChaseRain/carouselgen/internal/carousel"
	"github.com/ChaseRain/carouselgen/internal/infra/httpclient"
	"github.com/ChaseRain/carouselgen/internal/infra/logger"
	"github.com/ChaseRain/carouselgen/pkg/errors"
)

// apiKeyHeader carries the key so it never appears in a request URL.
const apiKeyHeader = "X-Goog-Api-Key"

type Options struct {
	APIKey  string
	Model   string
	BaseURL string
}

// Service produces one square PNG per prompt through the Imagen predict endpoint.
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

// GenerateImage returns a data URI for an illustration of the given slide.
func (s *Service) GenerateImage(ctx context.Context, title, content string) (string, error) {
	requestBody := map[string]interface{}{
		"instances": []map[string]interface{}{
			{
				"prompt": buildImagePrompt(title, content),
			},
		},
		"parameters": map[string]interface{}{
			"sampleCount":    1,
			"outputMimeType": "image/png",
			"aspectRatio":    "1:1",
		},
	}

	bodyBytes, err := json.Marshal(requestBody)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeInternal, "failed to marshal request")
	}

	url := fmt.Sprintf("%s/models/%s:predict", s.opts.BaseURL, s.opts.Model)
	header := http.Header{apiKeyHeader: []string{s.opts.APIKey}}

	resp, err := s.httpClient.PostJSON(ctx, url, bodyBytes, header)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeImageGenAPI, "image generation API request failed")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeImageGenAPI, "failed to read response")
	}

	if resp.StatusCode != http.StatusOK {
		s.logger.Error("image gen API error", "status", resp.StatusCode, "body", truncate(string(respBody), 512))
		return "", errors.New(errors.ErrCodeImageGenAPI, fmt.Sprintf("image generation API returned %d", resp.StatusCode))
	}

	return parseResponse(respBody)
}

func buildImagePrompt(title, content string) string {
	return fmt.Sprintf(`Uma imagem cinematográfica e vibrante para um slide de post do Instagram com o título %q e o conteúdo %q. Estilo moderno, limpo, focado em engajamento, com cores atraentes. Não inclua nenhum texto na imagem.`,
		title, content)
}

func parseResponse(body []byte) (string, error) {
	var response struct {
		Predictions []struct {
			BytesBase64Encoded string `json:"bytesBase64Encoded"`
			MimeType           string `json:"mimeType"`
		} `json:"predictions"`
	}

	if err := json.Unmarshal(body, &response); err != nil {
		return "", errors.Wrap(err, errors.ErrCodeImageGenAPI, "failed to parse image gen response")
	}

	for _, p := range response.Predictions {
		if p.BytesBase64Encoded == "" {
			continue
		}
		raw, err := base64.StdEncoding.DecodeString(p.BytesBase64Encoded)
		if err != nil {
			return "", errors.Wrap(err, errors.ErrCodeImageGenAPI, "failed to decode image data")
		}
		// the renderer must be able to draw whatever counts as a success
		if _, err := imaging.Decode(bytes.NewReader(raw)); err != nil {
			return "", errors.Wrap(err, errors.ErrCodeImageGenAPI, "image data is not a readable image")
		}
		return carousel.PNGDataURI(p.BytesBase64Encoded), nil
	}

	return "", errors.New(errors.ErrCodeImageGenAPI, "no image in response")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
