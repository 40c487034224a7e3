package analysis

import (
	"encoding/json"
	"fmt"
	"strings"
)

// parseReport recovers a VoiceReport from a model response that may wrap
// the JSON object in prose or a markdown fence. Scores clamp to [0, 100].
func parseReport(raw string) (*VoiceReport, error) {
	first := strings.Index(raw, "{")
	last := strings.LastIndex(raw, "}")
	if first == -1 || last <= first {
		return nil, fmt.Errorf("%w: no JSON object in %d bytes of response", ErrUnparsableReport, len(raw))
	}

	var decoded struct {
		Score       float64 `json:"score"`
		Explanation string  `json:"explanation"`
	}
	if err := json.Unmarshal([]byte(raw[first:last+1]), &decoded); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparsableReport, err)
	}

	report := &VoiceReport{
		Score:       decoded.Score,
		Explanation: strings.TrimSpace(decoded.Explanation),
	}
	if report.Score < 0 {
		report.Score = 0
	}
	if report.Score > 100 {
		report.Score = 100
	}
	return report, nil
}
