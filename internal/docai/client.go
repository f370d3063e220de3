package docai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TokenSource supplies a bearer token for each API call. Ownership lives with
// whoever constructs the client; there is no global auth state.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// TokenSourceFunc adapts a function to the TokenSource interface.
type TokenSourceFunc func(ctx context.Context) (string, error)

func (f TokenSourceFunc) Token(ctx context.Context) (string, error) { return f(ctx) }

// StaticTokenSource returns the same token on every call.
func StaticTokenSource(token string) TokenSource {
	return TokenSourceFunc(func(context.Context) (string, error) {
		if token == "" {
			return "", fmt.Errorf("docai: empty access token")
		}
		return token, nil
	})
}

// Config holds client settings for the document-understanding API.
type Config struct {
	Endpoint    string // base URL of the API
	ProcessorID string // processor resource the receipt is sent to
	Timeout     time.Duration
}

// Client posts receipt bytes to the processor endpoint and returns the raw
// response body. It performs no extraction itself.
type Client struct {
	cfg        Config
	httpClient *http.Client
	tokens     TokenSource
	log        *slog.Logger
}

func NewClient(cfg Config, tokens TokenSource, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		tokens:     tokens,
		log:        logger,
	}
}

// ProcessDocument sends one receipt (raw bytes + MIME type) for entity
// extraction and returns the raw response body after a shape validation pass.
func (c *Client) ProcessDocument(ctx context.Context, content []byte, mimeType string) ([]byte, error) {
	reqID := uuid.New().String()
	start := time.Now()

	body := map[string]any{
		"rawDocument": map[string]any{
			"content":  base64.StdEncoding.EncodeToString(content),
			"mimeType": mimeType,
		},
		"skipHumanReview": true,
	}

	endpoint := strings.TrimRight(c.cfg.Endpoint, "/") + "/" + c.cfg.ProcessorID + ":process"

	c.log.Info("docai.request",
		"req_id", reqID,
		"endpoint", endpoint,
		"mime_type", mimeType,
		"content_bytes", len(content),
	)

	raw, err := c.post(ctx, endpoint, body)
	if err != nil {
		c.log.Error("docai.request_failed",
			"req_id", reqID, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	if err := ValidateResponseShape(raw); err != nil {
		c.log.Error("docai.shape_validation_failed",
			"req_id", reqID, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return raw, fmt.Errorf("response shape validation: %w", err)
	}

	c.log.Info("docai.response",
		"req_id", reqID,
		"bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return raw, nil
}

func (c *Client) post(ctx context.Context, url string, body map[string]any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire token: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("docai http error: %w", err)
	}
	defer func(rc io.ReadCloser) {
		if cerr := rc.Close(); cerr != nil {
			c.log.Warn("docai response body close error", "error", cerr)
		}
	}(resp.Body)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("docai status %d: %s", resp.StatusCode, truncateBody(raw))
	}
	return raw, nil
}

func truncateBody(b []byte) string {
	const max = 512
	if len(b) <= max {
		return string(b)
	}
	return string(b[:max]) + "..."
}
