package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"travelgram/internal/common"
	"travelgram/internal/config"
)

// ContentGenerator sends one prompt plus one image to a multimodal model
type ContentGenerator interface {
	Generate(ctx context.Context, prompt, mimeType string, image []byte) (string, error)
}

type GeminiClient struct {
	http    *http.Client
	baseURL string
	model   string
	apiKey  string
	cb      *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func NewGeminiClient(cfg config.GeminiConfig, logger *zap.Logger) *GeminiClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}
	st := gobreaker.Settings{
		Name:        "gemini",
		MaxRequests: 1,
		Timeout:     cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// a caller giving up or sending a bad image says nothing about the upstream
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || common.IsClientError(err)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Info("circuit breaker state", zap.String("name", name), zap.String("from", from.String()), zap.String("to", to.String()))
		},
	}
	return &GeminiClient{
		http:    &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
		apiKey:  cfg.APIKey,
		cb:      gobreaker.NewCircuitBreaker(st),
		logger:  logger,
	}
}

// Generate returns the first candidate's text, or "" when the model
// answered without one.
func (c *GeminiClient) Generate(ctx context.Context, prompt, mimeType string, image []byte) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("%w: AI relay is not configured", common.ErrUnavailable)
	}

	out, err := c.cb.Execute(func() (interface{}, error) {
		return c.call(ctx, prompt, mimeType, image)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "", fmt.Errorf("%w: AI relay is temporarily disabled after repeated failures", common.ErrUnavailable)
	}
	if err != nil {
		return "", err
	}
	return out.(string), nil
}

func (c *GeminiClient) call(ctx context.Context, prompt, mimeType string, image []byte) (string, error) {
	body, err := json.Marshal(generateRequest{Contents: []content{{Parts: []part{
		{Text: prompt},
		{InlineData: &inlineData{MimeType: mimeType, Data: base64.StdEncoding.EncodeToString(image)}},
	}}}})
	if err != nil {
		return "", fmt.Errorf("%w: encode request: %v", common.ErrUpstream, err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, url.PathEscape(c.model))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: build request: %v", common.ErrUpstream, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return "", transportErr("gemini request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Warn("gemini returned an error",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(excerpt)),
			zap.Duration("elapsed", time.Since(start)))
		return "", fmt.Errorf("%w: gemini returned %d: %s", common.ErrUpstream, resp.StatusCode, strings.TrimSpace(string(excerpt)))
	}

	var parsed generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("%w: decode gemini response: %v", common.ErrUpstream, err)
	}
	c.logger.Debug("gemini answered", zap.Duration("elapsed", time.Since(start)))

	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", nil
	}
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}

func transportErr(op string, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %s: %v", common.ErrTimeout, op, err)
	}
	return fmt.Errorf("%w: %s: %v", common.ErrUpstream, op, err)
}
