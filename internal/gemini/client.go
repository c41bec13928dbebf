package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the Gemini REST endpoint. Tests point it at a local server.
const DefaultBaseURL = "https://generativelanguage.googleapis.com"

// ErrMissingInput is returned before any network call when a conversion is
// requested with neither an image nor text.
var ErrMissingInput = errors.New("image or text required")

// GenerationError wraps any failure from the external model (quota, network,
// malformed response). Callers record it as an error History instead of
// failing the request.
type GenerationError struct {
	Message string
}

func (e *GenerationError) Error() string {
	return "generation failed: " + e.Message
}

// Input is one conversion request. ImageData/ImageMIME and Text are each
// optional, but at least one must be set. Lang is "zh" or "en".
type Input struct {
	ImageData []byte
	ImageMIME string
	Text      string
	Lang      string
}

// Note is a successful conversion. Raw and Preview are identical; there is no
// separate rendering step in this design.
type Note struct {
	Raw     string `json:"markdown_raw"`
	Preview string `json:"markdown_preview"`
}

type Client struct {
	apiKey     string
	model      string
	baseURL    *url.URL
	httpClient *http.Client
}

// New builds a Gemini client. baseURL may be empty to use the public endpoint.
// timeout bounds the whole generateContent call; expiry surfaces as a
// GenerationError like any other model failure.
func New(apiKey, model, baseURL string, timeout time.Duration) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: api key is required")
	}
	if model == "" {
		return nil, errors.New("gemini: model is required")
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("gemini: invalid base URL: %w", err)
	}

	return &Client{
		apiKey:     apiKey,
		model:      model,
		baseURL:    u,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Wire types for the generateContent call.
type generatePart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"` // base64-encoded bytes
}

type generateContent struct {
	Parts []generatePart `json:"parts"`
}

type generateRequest struct {
	SystemInstruction *generateContent  `json:"system_instruction,omitempty"`
	Contents          []generateContent `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content generateContent `json:"content"`
	} `json:"candidates"`
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Convert builds the language-specific prompt, sends the ordered parts
// (prompt, inline image, text) to the model, and returns the generated note.
func (c *Client) Convert(ctx context.Context, in Input) (*Note, error) {
	if len(in.ImageData) == 0 && in.Text == "" {
		return nil, ErrMissingInput
	}

	prompt, system := promptFor(in.Lang)

	parts := []generatePart{{Text: prompt}}
	if len(in.ImageData) > 0 {
		parts = append(parts, generatePart{InlineData: &inlineData{
			MIMEType: in.ImageMIME,
			Data:     base64.StdEncoding.EncodeToString(in.ImageData),
		}})
	}
	if in.Text != "" {
		parts = append(parts, generatePart{Text: in.Text})
	}

	reqBody := generateRequest{
		SystemInstruction: &generateContent{Parts: []generatePart{{Text: system}}},
		Contents:          []generateContent{{Parts: parts}},
	}

	text, err := c.generate(ctx, reqBody)
	if err != nil {
		return nil, err
	}

	return &Note{Raw: text, Preview: text}, nil
}

func (c *Client) generate(ctx context.Context, reqBody generateRequest) (string, error) {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", &GenerationError{Message: err.Error()}
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL.String(), c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", &GenerationError{Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &GenerationError{Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Error.Message != "" {
			return "", &GenerationError{Message: apiErr.Error.Message}
		}
		return "", &GenerationError{Message: fmt.Sprintf("model returned status %d", resp.StatusCode)}
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &GenerationError{Message: "malformed model response: " + err.Error()}
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", &GenerationError{Message: "model returned no candidates"}
	}

	var sb strings.Builder
	for _, p := range out.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String(), nil
}
