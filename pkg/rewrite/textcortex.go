package rewrite

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const defaultBaseURL = "https://api.textcortex.com/v1"

// Config holds TextCortex API settings.
type Config struct {
	APIToken string        `env:"TEXTCORTEX_API_TOKEN,required"`
	BaseURL  string        `env:"TEXTCORTEX_BASE_URL"`
	Timeout  time.Duration `env:"TEXTCORTEX_TIMEOUT" envDefault:"30s"`
}

// textCortexClient implements Rewriter against the TextCortex rewriting
// endpoint. The service has no Go SDK, so this is a plain HTTP client.
type textCortexClient struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewTextCortexClient creates a Rewriter backed by TextCortex.
func NewTextCortexClient(cfg Config) (Rewriter, error) {
	if cfg.APIToken == "" {
		return nil, errors.New("rewrite: textcortex API token is required")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &textCortexClient{
		baseURL: baseURL,
		token:   cfg.APIToken,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

type rewriteRequest struct {
	Formality  string `json:"formality"`
	MaxTokens  int    `json:"max_tokens"`
	Mode       string `json:"mode"`
	Model      string `json:"model"`
	N          int    `json:"n"`
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
	Text       string `json:"text"`
}

type rewriteResponse struct {
	Data struct {
		Outputs []struct {
			Text string `json:"text"`
		} `json:"outputs"`
	} `json:"data"`
}

func (c *textCortexClient) Rewrite(ctx context.Context, text string) (string, error) {
	if text == "" {
		return "", ErrEmptyText
	}

	body, err := json.Marshal(rewriteRequest{
		Formality:  "default",
		MaxTokens:  2048,
		Mode:       "voice_active",
		Model:      "claude-3-haiku",
		N:          1,
		SourceLang: "en",
		TargetLang: "en",
		Text:       text,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/texts/rewritings", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", errors.Join(ErrRewriteFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrRewriteFailed, resp.StatusCode)
	}

	var out rewriteResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", errors.Join(ErrRewriteFailed, err)
	}
	if len(out.Data.Outputs) == 0 {
		return "", ErrNoOutput
	}
	return out.Data.Outputs[0].Text, nil
}
