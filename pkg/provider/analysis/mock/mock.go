// Package mock provides a test double for the analysis.Analyzer interface.
package mock

import (
	"context"
	"sync"

	"github.com/librettoapp/libretto/pkg/provider/analysis"
)

// Analyzer is a mock implementation of analysis.Analyzer. Zero values
// return empty results; set the fields to control behaviour.
type Analyzer struct {
	mu sync.Mutex

	// Report is returned by CompareVoices.
	Report *analysis.VoiceReport

	// Style is returned by SuggestStyle.
	Style string

	// Corrections is returned by SuggestCorrections.
	Corrections string

	// Err, if non-nil, is returned by every method.
	Err error

	// CompareCalls counts CompareVoices invocations.
	CompareCalls int

	// StyleCalls counts SuggestStyle invocations.
	StyleCalls int

	// CorrectionsCalls counts SuggestCorrections invocations.
	CorrectionsCalls int
}

// CompareVoices records the call and returns Report, Err.
func (a *Analyzer) CompareVoices(_ context.Context, _, _ []byte) (*analysis.VoiceReport, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.CompareCalls++
	if a.Err != nil {
		return nil, a.Err
	}
	if a.Report == nil {
		return &analysis.VoiceReport{}, nil
	}
	cp := *a.Report
	return &cp, nil
}

// SuggestStyle records the call and returns Style, Err.
func (a *Analyzer) SuggestStyle(_ context.Context, _ []byte) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.StyleCalls++
	return a.Style, a.Err
}

// SuggestCorrections records the call and returns Corrections, Err.
func (a *Analyzer) SuggestCorrections(_ context.Context, _, _ string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.CorrectionsCalls++
	return a.Corrections, a.Err
}

// Ensure Analyzer implements analysis.Analyzer at compile time.
var _ analysis.Analyzer = (*Analyzer)(nil)
