package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/Aman-CERP/knowledgeengine/internal/embed"
	"github.com/Aman-CERP/knowledgeengine/internal/errdefs"
	"github.com/Aman-CERP/knowledgeengine/internal/model"
)

const (
	// DefaultAnalyzeTimeout is the per-call timeout for HTTPAnalyzer
	// requests; media analysis runs noticeably longer than a text embed.
	DefaultAnalyzeTimeout = 120 * time.Second
	defaultHost           = "http://localhost:11434"
	defaultModel          = "llava"
)

// HTTPConfig configures HTTPAnalyzer.
type HTTPConfig struct {
	Host    string
	Model   string
	Timeout time.Duration
	Retry   embed.EmbedRetryPolicy
}

func (c HTTPConfig) withDefaults() HTTPConfig {
	if c.Host == "" {
		c.Host = defaultHost
	}
	if c.Model == "" {
		c.Model = defaultModel
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultAnalyzeTimeout
	}
	if c.Retry == (embed.EmbedRetryPolicy{}) {
		c.Retry = embed.DefaultEmbedRetryPolicy()
	}
	return c
}

// HTTPAnalyzer calls a configurable multimodal HTTP endpoint (an Ollama
// vision/audio model, or any compatible chat-completions-style server) and
// recovers a model.AnalysisResult from its JSON response.
type HTTPAnalyzer struct {
	client *http.Client
	cfg    HTTPConfig
}

var _ Analyzer = (*HTTPAnalyzer)(nil)

// NewHTTPAnalyzer builds an HTTPAnalyzer against cfg, applying defaults for
// any zero-valued field.
func NewHTTPAnalyzer(cfg HTTPConfig) *HTTPAnalyzer {
	cfg = cfg.withDefaults()
	return &HTTPAnalyzer{client: &http.Client{}, cfg: cfg}
}

type generateRequest struct {
	Model  string   `json:"model"`
	Prompt string   `json:"prompt"`
	Media  []string `json:"images,omitempty"`
	Stream bool     `json:"stream"`
	Format string   `json:"format"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Analyze reads mediaPath, base64-encodes it, and posts a generation
// request carrying the type-specific prompt template, then recovers the
// structured result from the response via the JSON recovery ladder.
func (a *HTTPAnalyzer) Analyze(ctx context.Context, mediaPath string, mediaType model.MediaType, opts AnalyzeOptions) (*model.AnalysisResult, error) {
	data, err := os.ReadFile(mediaPath)
	if err != nil {
		return nil, errdefs.NewAnalyzeError(errdefs.SubkindUpstream, "failed to read media file", err)
	}
	encoded := base64.StdEncoding.EncodeToString(data)
	prompt := buildPrompt(string(mediaType), opts.Language, opts.CustomInstructions)

	raw, err := embed.RunWithRetryAs(ctx, a.cfg.Retry, embed.DefaultClassifier, errdefs.NewAnalyzeError, "media analysis", func(ctx context.Context) (string, int, error) {
		return a.doGenerate(ctx, prompt, encoded)
	})
	if err != nil {
		return nil, err
	}

	parsed, err := recoverJSON(raw)
	if err != nil {
		return nil, err
	}

	return &model.AnalysisResult{
		Type:            mediaType,
		Description:     parsed.Description,
		Keywords:        parsed.Keywords,
		Transcription:   parsed.Transcription,
		OCRText:         parsed.OCRText,
		AltText:         parsed.AltText,
		Participants:    parsed.Participants,
		ActionItems:     parsed.ActionItems,
		DurationSeconds: parsed.DurationSeconds,
	}, nil
}

// doGenerate issues a single HTTP call and returns (body, statusCode, err)
// so the retry loop's classifier can see the status code when present.
func (a *HTTPAnalyzer) doGenerate(ctx context.Context, prompt, mediaB64 string) (string, int, error) {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	reqBody, err := json.Marshal(generateRequest{
		Model:  a.cfg.Model,
		Prompt: prompt,
		Media:  []string{mediaB64},
		Stream: false,
		Format: "json",
	})
	if err != nil {
		return "", 0, fmt.Errorf("failed to marshal analyze request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.Host+"/api/generate", bytes.NewReader(reqBody))
	if err != nil {
		return "", 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", resp.StatusCode, err
	}
	if resp.StatusCode != http.StatusOK {
		return "", resp.StatusCode, fmt.Errorf("media analysis failed with status %d: %s", resp.StatusCode, string(body))
	}

	var gr generateResponse
	if err := json.Unmarshal(body, &gr); err != nil {
		return "", resp.StatusCode, fmt.Errorf("failed to decode analyze response: %w", err)
	}
	return gr.Response, resp.StatusCode, nil
}
