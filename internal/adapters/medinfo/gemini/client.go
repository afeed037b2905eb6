package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"medication-tracker/internal/platform/httpclient"
)

var (
	ErrGeminiNotConfigured = errors.New("gemini client not configured")
	ErrGeminiUpstream      = errors.New("gemini upstream error")
	ErrGeminiEmpty         = errors.New("gemini empty response")
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com"
	defaultModel   = "gemini-1.5-flash"
)

// Config del cliente Gemini (API REST generateContent).
type Config struct {
	// Opcional: default generativelanguage.googleapis.com.
	BaseURL string
	APIKey  string

	// Opcional: default gemini-1.5-flash.
	Model string

	Timeout time.Duration
}

type Client struct {
	apiKey string
	model  string
	http   *httpclient.Client
}

func NewClient(cfg Config) *Client {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	hc, err := httpclient.NewWithBaseURL(baseURL, timeout)
	if err != nil {
		hc = httpclient.New(timeout)
	}

	return &Client{
		apiKey: strings.TrimSpace(cfg.APIKey),
		model:  model,
		http:   hc,
	}
}

func (c *Client) IsConfigured() bool {
	return c != nil && c.apiKey != "" && c.http != nil && c.http.BaseURL != ""
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
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

// Generate manda un prompt y devuelve el texto del primer candidato.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if !c.IsConfigured() {
		return "", ErrGeminiNotConfigured
	}
	if strings.TrimSpace(prompt) == "" {
		return "", errors.New("prompt required")
	}

	path := fmt.Sprintf("/v1beta/models/%s:generateContent", c.model)

	headers := map[string]string{
		"x-goog-api-key": c.apiKey,
	}

	req := generateRequest{
		Contents: []content{
			{Parts: []part{{Text: prompt}}},
		},
	}

	var out generateResponse
	if err := c.http.DoJSON(ctx, http.MethodPost, path, headers, req, &out); err != nil {
		var httpErr *httpclient.HTTPError
		if errors.As(err, &httpErr) {
			return "", fmt.Errorf("%w: status=%d", ErrGeminiUpstream, httpErr.StatusCode)
		}
		return "", fmt.Errorf("%w: %v", ErrGeminiUpstream, err)
	}

	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", ErrGeminiEmpty
	}

	text := strings.TrimSpace(out.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return "", ErrGeminiEmpty
	}
	return text, nil
}
