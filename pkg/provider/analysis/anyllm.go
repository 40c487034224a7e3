package analysis

import (
	"context"
	"fmt"
	"strings"

	anyllmlib "github.com/mozilla-ai/any-llm-go"
	"github.com/mozilla-ai/any-llm-go/providers/anthropic"
	"github.com/mozilla-ai/any-llm-go/providers/gemini"
	"github.com/mozilla-ai/any-llm-go/providers/ollama"
	anyllmoai "github.com/mozilla-ai/any-llm-go/providers/openai"
)

// Compile-time assertion that LLMAnalyzer satisfies Analyzer.
var _ Analyzer = (*LLMAnalyzer)(nil)

// LLMAnalyzer implements Analyzer by wrapping github.com/mozilla-ai/any-llm-go,
// a unified multi-provider completion interface.
type LLMAnalyzer struct {
	backend anyllmlib.Provider
	model   string
}

// New creates an LLMAnalyzer backed by the given provider name.
//
// providerName is one of: "openai", "anthropic", "gemini", "ollama".
// model is the specific model to use (e.g., "gpt-4o").
// opts are any-llm-go configuration options (e.g., anyllmlib.WithAPIKey).
// Without an API key option the backend falls back to its environment
// variable (OPENAI_API_KEY, ANTHROPIC_API_KEY, and so on).
func New(providerName string, model string, opts ...anyllmlib.Option) (*LLMAnalyzer, error) {
	if providerName == "" {
		return nil, fmt.Errorf("analysis: providerName must not be empty")
	}
	if model == "" {
		return nil, fmt.Errorf("analysis: model must not be empty")
	}

	backend, err := createBackend(providerName, opts...)
	if err != nil {
		return nil, fmt.Errorf("analysis: create %q backend: %w", providerName, err)
	}
	return &LLMAnalyzer{backend: backend, model: model}, nil
}

// createBackend creates the underlying any-llm-go provider.
func createBackend(providerName string, opts ...anyllmlib.Option) (anyllmlib.Provider, error) {
	switch strings.ToLower(providerName) {
	case "openai":
		return anyllmoai.New(opts...)
	case "anthropic":
		return anthropic.New(opts...)
	case "gemini":
		return gemini.New(opts...)
	case "ollama":
		return ollama.New(opts...)
	default:
		return nil, fmt.Errorf("unsupported provider %q; supported: openai, anthropic, gemini, ollama", providerName)
	}
}

const compareSystemPrompt = "You are an expert audio engineer specialising in voice analysis. " +
	"Compare two narration recordings from their measured acoustic features and report how similar they sound."

const compareInstruction = `Compare the reference voice against the generated voice on:
1. Tone and pitch profile
2. Speaking speed and pacing
3. Loudness consistency
Respond with a single JSON object: {"score": <0-100>, "explanation": "<short reasoning>"}.`

// CompareVoices scores the target narration against the reference voice.
// Both payloads are reduced to measured feature summaries before being
// handed to the model; the result is advisory.
func (a *LLMAnalyzer) CompareVoices(ctx context.Context, reference, target []byte) (*VoiceReport, error) {
	refDesc, err := describeAudio("Reference Voice (ground truth)", reference)
	if err != nil {
		return nil, err
	}
	tgtDesc, err := describeAudio("Generated Voice (target)", target)
	if err != nil {
		return nil, err
	}

	content, err := a.complete(ctx, compareSystemPrompt,
		fmt.Sprintf("%s\n%s\n%s", refDesc, tgtDesc, compareInstruction))
	if err != nil {
		return nil, err
	}
	return parseReport(content)
}

const styleSystemPrompt = "You are an expert voice engineer and acting coach. " +
	"You convert voice characteristics into precise acting instructions for an AI narration model."

// SuggestStyle derives a style instruction from a reference clip. The
// returned text is meant to be used verbatim as a synthesis request's
// StyleInstruction.
func (a *LLMAnalyzer) SuggestStyle(ctx context.Context, reference []byte) (string, error) {
	desc, err := describeAudio("Reference Voice", reference)
	if err != nil {
		return "", err
	}

	prompt := desc + `
Write a concise but highly descriptive narration instruction that makes an
AI TTS model reproduce this exact sound: tone, pitch range, pacing and
energy. Output only the instruction text.`
	content, err := a.complete(ctx, styleSystemPrompt, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(content), nil
}

const correctionsSystemPrompt = "You are a meticulous script editor for audiobook production."

// SuggestCorrections reviews a mismatch between the chapter script and what
// the narration actually says, and proposes fixes.
func (a *LLMAnalyzer) SuggestCorrections(ctx context.Context, original, transcribed string) (string, error) {
	prompt := fmt.Sprintf(`The script below was narrated by an AI voice, then transcribed back.

[Original Script]:
%s

[Transcribed Narration]:
%s

List each place where the narration deviates from the script (missing words,
substitutions, insertions) and state whether the segment should be
regenerated or the script adjusted. Be brief and concrete.`, original, transcribed)

	content, err := a.complete(ctx, correctionsSystemPrompt, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(content), nil
}

// complete issues a single non-streaming completion and returns the first
// choice's text content.
func (a *LLMAnalyzer) complete(ctx context.Context, system, user string) (string, error) {
	params := anyllmlib.CompletionParams{
		Model: a.model,
		Messages: []anyllmlib.Message{
			{Role: anyllmlib.RoleSystem, Content: system},
			{Role: anyllmlib.RoleUser, Content: user},
		},
	}

	resp, err := a.backend.Completion(ctx, params)
	if err != nil {
		return "", fmt.Errorf("analysis: completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("analysis: empty choices in response")
	}
	return resp.Choices[0].Message.ContentString(), nil
}
