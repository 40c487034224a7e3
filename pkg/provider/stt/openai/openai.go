// Package openai implements stt.Transcriber over the OpenAI transcription
// API using verbose JSON output for segment timestamps.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/librettoapp/libretto/pkg/provider/stt"
)

// Compile-time assertion that Transcriber satisfies stt.Transcriber.
var _ stt.Transcriber = (*Transcriber)(nil)

// Transcriber implements stt.Transcriber using the OpenAI API.
type Transcriber struct {
	client oai.Client
	model  oai.AudioModel
}

// config holds optional configuration for the transcriber.
type config struct {
	baseURL string
	timeout time.Duration
	model   oai.AudioModel
}

// Option is a functional option for Transcriber.
type Option func(*config)

// WithBaseURL overrides the default OpenAI API base URL.
func WithBaseURL(url string) Option {
	return func(c *config) {
		c.baseURL = url
	}
}

// WithTimeout sets a per-request HTTP timeout. Transcription of a long
// chapter can take minutes; the default client timeout is 5 minutes.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

// WithModel overrides the transcription model. Defaults to whisper-1, the
// only model that reports segment timestamps in verbose output.
func WithModel(model oai.AudioModel) Option {
	return func(c *config) {
		c.model = model
	}
}

// New constructs a new OpenAI Transcriber.
func New(apiKey string, opts ...Option) (*Transcriber, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai: apiKey must not be empty")
	}

	cfg := &config{
		timeout: 5 * time.Minute,
		model:   oai.AudioModelWhisper1,
	}
	for _, o := range opts {
		o(cfg)
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(&http.Client{Timeout: cfg.timeout}),
	}
	if cfg.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.baseURL))
	}

	return &Transcriber{
		client: oai.NewClient(reqOpts...),
		model:  cfg.model,
	}, nil
}

// verboseResponse mirrors the verbose_json transcription payload. Only the
// fields Libretto consumes are declared.
type verboseResponse struct {
	Text     string `json:"text"`
	Segments []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
}

// Transcribe uploads the audio payload and returns one fragment per
// verbose-JSON segment. When the response body does not decode as verbose
// JSON it is handed to [stt.ParseFragments], which recovers fragment arrays
// from loosely structured responses.
func (t *Transcriber) Transcribe(ctx context.Context, audio []byte, hint stt.Hint) ([]stt.Fragment, error) {
	if len(audio) == 0 {
		return nil, fmt.Errorf("openai: empty audio payload")
	}

	params := oai.AudioTranscriptionNewParams{
		File:           oai.File(bytes.NewReader(audio), "audio.wav", "audio/wav"),
		Model:          t.model,
		ResponseFormat: oai.AudioResponseFormatVerboseJSON,
	}
	if hint.Language != "" {
		params.Language = oai.String(hint.Language)
	}
	if hint.Prompt != "" {
		params.Prompt = oai.String(hint.Prompt)
	}

	// The typed response drops segment timing, so capture the raw body and
	// decode it locally.
	var raw []byte
	if _, err := t.client.Audio.Transcriptions.New(ctx, params, option.WithResponseBodyInto(&raw)); err != nil {
		return nil, fmt.Errorf("openai: transcription request: %w", err)
	}

	var resp verboseResponse
	if err := json.Unmarshal(raw, &resp); err != nil || len(resp.Segments) == 0 {
		slog.Debug("openai: response is not verbose JSON, attempting recovery", "bytes", len(raw))
		frags, perr := stt.ParseFragments(string(raw))
		if perr != nil {
			return nil, fmt.Errorf("openai: %w", perr)
		}
		return frags, nil
	}

	frags := make([]stt.Fragment, 0, len(resp.Segments))
	for _, seg := range resp.Segments {
		f := stt.Fragment{Start: seg.Start, End: seg.End, Text: strings.TrimSpace(seg.Text)}
		if f.Valid() {
			frags = append(frags, f)
		}
	}
	return frags, nil
}
