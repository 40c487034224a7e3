package library

import (
	"regexp"
	"strings"
)

// DefaultMaxChunkChars is the default character budget for one script
// chunk. One chunk becomes one synthesis call, and generation quality
// degrades on very long inputs.
const DefaultMaxChunkChars = 1600

// Stage directions and annotations arrive in any of four bracket styles.
var bracketPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\([^)]*\)`),
	regexp.MustCompile(`\[[^\]]*\]`),
	regexp.MustCompile(`\{[^}]*\}`),
	regexp.MustCompile(`<[^>]*>`),
}

var strayMarks = regexp.MustCompile(`[*#@]`)

// CleanScript prepares raw chapter text for narration: bracketed stage
// directions are removed entirely, ellipses become commas so the narrator
// pauses instead of trailing off, stray markup characters are dropped and
// whitespace collapses to single spaces.
func CleanScript(text string) string {
	for _, p := range bracketPatterns {
		text = p.ReplaceAllString(text, "")
	}

	text = strings.ReplaceAll(text, "\n", " ")
	text = strings.ReplaceAll(text, "...", ",")
	text = strings.ReplaceAll(text, "…", ",")
	text = strayMarks.ReplaceAllString(text, "")

	return strings.Join(strings.Fields(text), " ")
}

// SplitScript cleans the text and splits it into chunks of at most
// maxChars characters, breaking only at sentence boundaries. A single
// sentence longer than the budget becomes its own oversized chunk rather
// than being cut mid-sentence. Non-positive maxChars uses
// [DefaultMaxChunkChars].
func SplitScript(text string, maxChars int) []string {
	if maxChars <= 0 {
		maxChars = DefaultMaxChunkChars
	}

	var chunks []string
	var current strings.Builder
	for _, sentence := range splitSentences(CleanScript(text)) {
		if current.Len() > 0 && current.Len()+1+len(sentence) > maxChars {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(sentence)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}

// splitSentences splits cleaned text after each sentence terminator that is
// followed by whitespace.
func splitSentences(text string) []string {
	var out []string
	start := 0
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		if runes[i] != '.' && runes[i] != '?' && runes[i] != '!' {
			continue
		}
		if i+1 < len(runes) && runes[i+1] != ' ' {
			continue
		}
		s := strings.TrimSpace(string(runes[start : i+1]))
		if s != "" {
			out = append(out, s)
		}
		start = i + 1
	}
	if tail := strings.TrimSpace(string(runes[start:])); tail != "" {
		out = append(out, tail)
	}
	return out
}

var unsafeFilenameChars = regexp.MustCompile(`[\\/*?:"<>|]`)

// SanitizeName makes a chapter title safe as a directory name: filesystem
// metacharacters are removed, spaces become underscores, and the result is
// capped at 50 characters.
func SanitizeName(name string) string {
	name = unsafeFilenameChars.ReplaceAllString(name, "")
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.TrimSpace(name)
	if r := []rune(name); len(r) > 50 {
		name = string(r[:50])
	}
	return name
}
