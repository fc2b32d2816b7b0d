// Package genai is the HTTP client for the content-generation backend,
// which runs the actual models. The store only calls it and records
// outcomes; all generation state lives in spread_stages and
// regen_requests.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/tmorren/selah/internal/entities"
)

// StageResult is what one stage call produces. Fields the stage does not
// generate stay nil.
type StageResult struct {
	PassageText    *string        `json:"passage_text,omitempty"`
	PassageContext *string        `json:"passage_context,omitempty"`
	KeyVerseText   *string        `json:"key_verse_text,omitempty"`
	KeyVerseRef    *string        `json:"key_verse_ref,omitempty"`
	ModernText     *string        `json:"modern_text,omitempty"`
	Paraphrase     *string        `json:"paraphrase,omitempty"`
	Mood           *entities.Mood `json:"mood,omitempty"`
	ImagePrompt    *string        `json:"image_prompt,omitempty"`
	ImageStyle     *string        `json:"image_style,omitempty"`
	ImageURLs      []string       `json:"image_urls,omitempty"`
}

// Generator is the surface the workers depend on; tests swap in a stub.
type Generator interface {
	GenerateStage(ctx context.Context, stage entities.StageName, spread entities.Spread) (*StageResult, error)
	GenerateImages(ctx context.Context, prompt, style string, count int) ([]string, error)
}

// Client calls the generation backend over HTTP.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// NewClient creates a generation backend client.
func NewClient(baseURL, token string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		baseURL: baseURL,
		token:   token,
	}
}

// stagePayload is the spread as the backend sees it. The entity's JSON
// encoding hides the generation-context translations from API responses;
// the backend needs them, so the payload is its own type.
type stagePayload struct {
	Code           string             `json:"code"`
	Testament      entities.Testament `json:"testament"`
	Book           string             `json:"book"`
	Chapter        int                `json:"chapter"`
	VerseFrom      int                `json:"verse_from"`
	ChapterEnd     int                `json:"chapter_end"`
	VerseTo        int                `json:"verse_to"`
	PassageText    string             `json:"passage_text,omitempty"`
	PassageContext string             `json:"passage_context,omitempty"`
	KeyVerseText   string             `json:"key_verse_text,omitempty"`
	KeyVerseRef    string             `json:"key_verse_ref,omitempty"`
	ModernText     string             `json:"modern_text,omitempty"`
	Paraphrase     string             `json:"paraphrase,omitempty"`
	Mood           entities.Mood      `json:"mood,omitempty"`
	ImagePrompt    string             `json:"image_prompt,omitempty"`
	ImageStyle     string             `json:"image_style,omitempty"`
}

func newStagePayload(spread entities.Spread) stagePayload {
	return stagePayload{
		Code:           spread.Code,
		Testament:      spread.Testament,
		Book:           spread.Book,
		Chapter:        spread.Chapter,
		VerseFrom:      spread.VerseFrom,
		ChapterEnd:     spread.Chapter2,
		VerseTo:        spread.VerseTo,
		PassageText:    spread.PassageText,
		PassageContext: spread.PassageContext,
		KeyVerseText:   spread.KeyVerseText,
		KeyVerseRef:    spread.KeyVerseRef,
		ModernText:     spread.ModernText,
		Paraphrase:     spread.Paraphrase,
		Mood:           spread.Mood,
		ImagePrompt:    spread.ImagePrompt,
		ImageStyle:     spread.ImageStyle,
	}
}

type stageRequest struct {
	Stage  entities.StageName `json:"stage"`
	Spread stagePayload       `json:"spread"`
}

type imagesRequest struct {
	Prompt string `json:"prompt"`
	Style  string `json:"style"`
	Count  int    `json:"count"`
}

type imagesResponse struct {
	URLs []string `json:"urls"`
}

// GenerateStage runs one pipeline stage for a spread.
func (c *Client) GenerateStage(ctx context.Context, stage entities.StageName, spread entities.Spread) (*StageResult, error) {
	if !stage.IsValid() {
		return nil, fmt.Errorf("unknown stage %q", stage)
	}

	var result StageResult
	if err := c.post(ctx, "/v1/stages/"+string(stage), stageRequest{Stage: stage, Spread: newStagePayload(spread)}, &result); err != nil {
		return nil, fmt.Errorf("generate %s: %w", stage, err)
	}
	return &result, nil
}

// GenerateImages produces candidate artwork URLs for a regeneration
// request. Count is capped at four, matching the slot model.
func (c *Client) GenerateImages(ctx context.Context, prompt, style string, count int) ([]string, error) {
	if count < 1 {
		count = 1
	}
	if count > 4 {
		count = 4
	}

	var result imagesResponse
	if err := c.post(ctx, "/v1/images", imagesRequest{Prompt: prompt, Style: style, Count: count}, &result); err != nil {
		return nil, fmt.Errorf("generate images: %w", err)
	}
	return result.URLs, nil
}

func (c *Client) post(ctx context.Context, path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call backend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
