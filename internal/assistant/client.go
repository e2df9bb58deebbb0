// Package assistant wraps a hosted generative-text API used to help
// citizens draft better petitions.
package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/civicdesk/petition-service/internal/config"
	apperrors "github.com/civicdesk/petition-service/pkg/util"
)

// Client calls the generateContent endpoint of a Gemini-style API.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewClient builds a client from configuration. BaseURL is overridable
// so tests can point it at a local server.
func NewClient(cfg config.AssistantConfig) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: cfg.Timeout()},
	}
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
		Content content `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", apperrors.NewInternalError(fmt.Errorf("encode assistant request: %w", err))
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", apperrors.NewInternalError(fmt.Errorf("build assistant request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", apperrors.NewUpstreamError("assistant request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", apperrors.NewUpstreamError("failed to read assistant response", err)
	}

	var decoded generateResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", apperrors.NewUpstreamError("failed to decode assistant response", err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := "assistant returned an error"
		if decoded.Error != nil && decoded.Error.Message != "" {
			msg = decoded.Error.Message
		}
		return "", apperrors.NewUpstreamError(msg, nil)
	}
	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return "", apperrors.NewUpstreamError("assistant returned no candidates", nil)
	}

	var sb strings.Builder
	for _, p := range decoded.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return strings.TrimSpace(sb.String()), nil
}

// ImproveText rewrites a petition description to be clearer and more
// persuasive while keeping a respectful tone.
func (c *Client) ImproveText(ctx context.Context, text, title, category string) (string, error) {
	prompt := fmt.Sprintf(`Improve this petition text to make it more persuasive and professional.
The petition is about %s with title: "%s".

Original text: %s

Please provide an improved version that:
1. Is clear and concise
2. Uses persuasive language
3. Highlights the importance of the issue
4. Maintains a respectful tone
5. Includes a clear call to action

Return only the improved text without any additional commentary.`, category, title, text)
	return c.generate(ctx, prompt)
}

// SuggestTitles proposes five candidate titles for a description.
func (c *Client) SuggestTitles(ctx context.Context, description, category string) (string, error) {
	prompt := fmt.Sprintf(`Based on this petition description about %s, suggest 5 compelling titles:

Description: %s

Please provide 5 title suggestions in this format:
1. First title suggestion
2. Second title suggestion
3. Third title suggestion
4. Fourth title suggestion
5. Fifth title suggestion

Make the titles concise, attention-grabbing, and relevant to the issue.`, category, description)
	return c.generate(ctx, prompt)
}

// CheckClarity returns a constructive analysis of a petition draft.
func (c *Client) CheckClarity(ctx context.Context, text string) (string, error) {
	prompt := fmt.Sprintf(`Analyze this petition text for clarity and effectiveness:

Text: %s

Provide a constructive analysis with:
1. Strengths of the current text
2. Areas for improvement
3. Specific suggestions to enhance clarity
4. Missing information that would strengthen the petition

Keep the feedback actionable and positive.`, text)
	return c.generate(ctx, prompt)
}

// SuggestDetails proposes additional facts that would strengthen the
// petition.
func (c *Client) SuggestDetails(ctx context.Context, text, category, location string) (string, error) {
	prompt := fmt.Sprintf(`Suggest additional details to strengthen this petition about %s at location: %s.

Current text: %s

Suggest specific details that could be added to make the petition more compelling:
- Quantitative data that would help
- Specific impacts on the community
- Timeline or urgency factors
- Supporting evidence types
- Personal experiences that would add weight

Provide the suggestions in a bullet-point format.`, category, location, text)
	return c.generate(ctx, prompt)
}
