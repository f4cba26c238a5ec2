package aiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// maxPathLen guards the file-or-text heuristic: anything longer than a
// plausible path is treated as raw context text without touching the
// filesystem.
const maxPathLen = 255

// ErrNoContent means the API answered without any candidate text.
var ErrNoContent = errors.New("no candidate content in response")

// Client calls the Gemini generateContent endpoint. BaseURL is exported
// so tests can point it at a local server.
type Client struct {
	BaseURL       string
	HTTPClient    *http.Client
	apiKey        string
	plannerModel  string
	analyzerModel string
	log           *logrus.Entry
}

func New(apiKey, plannerModel, analyzerModel string) *Client {
	return &Client{
		BaseURL:       defaultBaseURL,
		HTTPClient:    &http.Client{Timeout: 2 * time.Minute},
		apiKey:        apiKey,
		plannerModel:  plannerModel,
		analyzerModel: analyzerModel,
		log:           logrus.WithField("component", "aiclient"),
	}
}

// Request/response shapes for generateContent. Only the fields this
// client reads are declared.

type genRequest struct {
	Contents []genContent `json:"contents"`
}

type genContent struct {
	Parts []genPart `json:"parts"`
}

type genPart struct {
	Text string `json:"text"`
}

type genResponse struct {
	Candidates []struct {
		Content struct {
			Parts []genPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Plan generates content with the planning model variant.
func (c *Client) Plan(ctx context.Context, prompt string, contexts []string) (string, error) {
	return c.generate(ctx, c.plannerModel, prompt, contexts)
}

// Analyze generates content with the analyzer model variant.
func (c *Client) Analyze(ctx context.Context, prompt string, contexts []string) (string, error) {
	return c.generate(ctx, c.analyzerModel, prompt, contexts)
}

func (c *Client) generate(ctx context.Context, model, prompt string, contexts []string) (string, error) {
	parts := []genPart{{Text: prompt}}
	for _, item := range contexts {
		parts = append(parts, contextParts(item)...)
	}
	body, err := json.Marshal(genRequest{Contents: []genContent{{Parts: parts}}})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.BaseURL, model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	c.log.WithField("model", model).Info("requesting content")
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return "", fmt.Errorf("generate content: %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}

	var out genResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", ErrNoContent
	}
	return out.Candidates[0].Content.Parts[0].Text, nil
}

// contextParts labels one context item. A short string naming a readable
// file is sent as a file header part plus its contents; anything else is
// sent verbatim as a context block.
func contextParts(item string) []genPart {
	if len(item) < maxPathLen {
		if info, err := os.Stat(item); err == nil && !info.IsDir() {
			if data, err := os.ReadFile(item); err == nil {
				return []genPart{
					{Text: fmt.Sprintf("\n--- FILE: %s ---\n", filepath.Base(item))},
					{Text: string(data)},
				}
			}
		}
	}
	return []genPart{{Text: "\n--- CONTEXT ---\n" + item}}
}
