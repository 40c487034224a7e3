// Package library is the flat-file chapter store.
//
// Each chapter lives in its own directory under the scripts root, with a
// sibling directory under the audio root holding generated narration:
//
//	scripts/<chapter>/raw.txt         original chapter text
//	scripts/<chapter>/script_001.txt  narration chunk, plain text
//	scripts/<chapter>/script_001.json chunk in segment form
//	audio/<chapter>/audio_001.wav     generated narration for chunk 001
//	audio/<chapter>/settings.json     generation settings used for the run
//
// Scripts and audio files pair up through their zero-padded index. The
// audio WAV files are the durable artifacts; everything else is
// reproducible from raw.txt plus the settings.
package library

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
)

// ErrNotFound is returned when a chapter, script or audio file does not
// exist. Callers distinguish it from genuine I/O failures.
var ErrNotFound = errors.New("library: not found")

// Settings are the generation parameters persisted alongside a chapter's
// audio so a later patch run can reproduce the original voice.
type Settings struct {
	Voice       string  `json:"voice"`
	Speed       float64 `json:"speed"`
	Temperature float64 `json:"temperature"`
	Prompt      string  `json:"prompt"`
}

// Script is one narration chunk of a chapter.
type Script struct {
	// Index is the 1-based chunk number.
	Index int

	// Text is the chunk content.
	Text string
}

// ChapterInfo summarises one chapter for listings.
type ChapterInfo struct {
	Name        string
	ScriptCount int
	AudioCount  int
	HasSettings bool
}

// Store manages the chapter library under a scripts root and an audio root.
type Store struct {
	scriptsRoot string
	audioRoot   string
}

// Open creates a Store over the two roots, creating them when missing.
func Open(scriptsRoot, audioRoot string) (*Store, error) {
	for _, dir := range []string{scriptsRoot, audioRoot} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("library: create root %q: %w", dir, err)
		}
	}
	return &Store{scriptsRoot: scriptsRoot, audioRoot: audioRoot}, nil
}

// CreateChapter stores a new chapter: the raw text verbatim, plus the
// cleaned and chunked scripts. The title is sanitized and prefixed with the
// next chapter number so directory listings sort in reading order.
func (s *Store) CreateChapter(title, rawText string, maxChars int) (*Chapter, error) {
	existing, err := s.chapterNames()
	if err != nil {
		return nil, err
	}

	name := SanitizeName(fmt.Sprintf("%02d_%s", len(existing)+1, title))
	dir := filepath.Join(s.scriptsRoot, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("library: create chapter dir: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "raw.txt"), []byte(rawText), 0o644); err != nil {
		return nil, fmt.Errorf("library: write raw text: %w", err)
	}

	chunks := SplitScript(rawText, maxChars)
	for i, chunk := range chunks {
		base := fmt.Sprintf("script_%03d", i+1)
		if err := os.WriteFile(filepath.Join(dir, base+".txt"), []byte(chunk), 0o644); err != nil {
			return nil, fmt.Errorf("library: write script %d: %w", i+1, err)
		}

		doc := map[string]any{
			"segments": []map[string]string{{"text": chunk}},
		}
		payload, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("library: marshal script %d: %w", i+1, err)
		}
		if err := os.WriteFile(filepath.Join(dir, base+".json"), payload, 0o644); err != nil {
			return nil, fmt.Errorf("library: write script json %d: %w", i+1, err)
		}
	}

	slog.Info("library: chapter created", "name", name, "chunks", len(chunks))
	return s.Chapter(name)
}

// Chapter opens an existing chapter by directory name. Returns
// [ErrNotFound] when it does not exist.
func (s *Store) Chapter(name string) (*Chapter, error) {
	dir := filepath.Join(s.scriptsRoot, name)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: chapter %q", ErrNotFound, name)
	}
	return &Chapter{
		Name:      name,
		scriptDir: dir,
		audioDir:  filepath.Join(s.audioRoot, name),
	}, nil
}

// Scan lists all chapters with their script and audio counts. Chapters are
// summarised concurrently; the directory sets are small but each summary
// takes several stat calls.
func (s *Store) Scan() ([]ChapterInfo, error) {
	names, err := s.chapterNames()
	if err != nil {
		return nil, err
	}

	infos := make([]ChapterInfo, len(names))
	var g errgroup.Group
	g.SetLimit(8)

	for i, name := range names {
		g.Go(func() error {
			ch, err := s.Chapter(name)
			if err != nil {
				return err
			}
			scripts, err := ch.Scripts()
			if err != nil {
				return err
			}
			infos[i] = ChapterInfo{
				Name:        name,
				ScriptCount: len(scripts),
				AudioCount:  ch.audioCount(),
				HasSettings: ch.hasSettings(),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return infos, nil
}

// chapterNames returns the sorted chapter directory names.
func (s *Store) chapterNames() ([]string, error) {
	entries, err := os.ReadDir(s.scriptsRoot)
	if err != nil {
		return nil, fmt.Errorf("library: read scripts root: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Chapter is one chapter's view of the store.
type Chapter struct {
	// Name is the chapter directory name.
	Name string

	scriptDir string
	audioDir  string
}

// RawText returns the original chapter text.
func (c *Chapter) RawText() (string, error) {
	data, err := os.ReadFile(filepath.Join(c.scriptDir, "raw.txt"))
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%w: raw text of %q", ErrNotFound, c.Name)
	}
	if err != nil {
		return "", fmt.Errorf("library: read raw text: %w", err)
	}
	return string(data), nil
}

// Scripts returns all narration chunks in index order.
func (c *Chapter) Scripts() ([]Script, error) {
	entries, err := os.ReadDir(c.scriptDir)
	if err != nil {
		return nil, fmt.Errorf("library: read chapter dir: %w", err)
	}

	var scripts []Script
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, "script_") || !strings.HasSuffix(name, ".txt") {
			continue
		}
		var idx int
		if _, err := fmt.Sscanf(name, "script_%03d.txt", &idx); err != nil {
			continue
		}
		data, err := os.ReadFile(filepath.Join(c.scriptDir, name))
		if err != nil {
			return nil, fmt.Errorf("library: read %s: %w", name, err)
		}
		scripts = append(scripts, Script{Index: idx, Text: string(data)})
	}

	sort.Slice(scripts, func(i, j int) bool { return scripts[i].Index < scripts[j].Index })
	return scripts, nil
}

// Script returns one chunk by index. Returns [ErrNotFound] when the index
// has no script file.
func (c *Chapter) Script(index int) (*Script, error) {
	path := filepath.Join(c.scriptDir, fmt.Sprintf("script_%03d.txt", index))
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: script %d of %q", ErrNotFound, index, c.Name)
	}
	if err != nil {
		return nil, fmt.Errorf("library: read script %d: %w", index, err)
	}
	return &Script{Index: index, Text: string(data)}, nil
}

// AudioPath returns the path of the paired audio file for a script index.
// The file may not exist yet.
func (c *Chapter) AudioPath(index int) string {
	return filepath.Join(c.audioDir, fmt.Sprintf("audio_%03d.wav", index))
}

// ReadAudio returns the generated audio for a script index. Returns
// [ErrNotFound] when it has not been generated.
func (c *Chapter) ReadAudio(index int) ([]byte, error) {
	data, err := os.ReadFile(c.AudioPath(index))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: audio %d of %q", ErrNotFound, index, c.Name)
	}
	if err != nil {
		return nil, fmt.Errorf("library: read audio %d: %w", index, err)
	}
	return data, nil
}

// WriteAudio stores generated audio for a script index. The write goes
// through a temp file and rename so a crash never leaves a half-written
// WAV paired with a script.
func (c *Chapter) WriteAudio(index int, wav []byte) error {
	if err := os.MkdirAll(c.audioDir, 0o755); err != nil {
		return fmt.Errorf("library: create audio dir: %w", err)
	}
	return atomicWrite(c.AudioPath(index), wav)
}

// SaveSettings persists the generation settings for this chapter's run.
func (c *Chapter) SaveSettings(settings Settings) error {
	if err := os.MkdirAll(c.audioDir, 0o755); err != nil {
		return fmt.Errorf("library: create audio dir: %w", err)
	}
	payload, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("library: marshal settings: %w", err)
	}
	return atomicWrite(c.settingsPath(), payload)
}

// LoadSettings returns the chapter's persisted generation settings.
// Returns [ErrNotFound] when none were saved.
func (c *Chapter) LoadSettings() (*Settings, error) {
	data, err := os.ReadFile(c.settingsPath())
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: settings of %q", ErrNotFound, c.Name)
	}
	if err != nil {
		return nil, fmt.Errorf("library: read settings: %w", err)
	}
	var settings Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("library: parse settings: %w", err)
	}
	return &settings, nil
}

func (c *Chapter) settingsPath() string {
	return filepath.Join(c.audioDir, "settings.json")
}

func (c *Chapter) hasSettings() bool {
	_, err := os.Stat(c.settingsPath())
	return err == nil
}

func (c *Chapter) audioCount() int {
	entries, err := os.ReadDir(c.audioDir)
	if err != nil {
		return 0
	}
	count := 0
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "audio_") && strings.HasSuffix(e.Name(), ".wav") {
			count++
		}
	}
	return count
}

// atomicWrite writes data to path through a temp file in the same
// directory followed by a rename.
func atomicWrite(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("library: create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("library: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("library: close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("library: rename temp file: %w", err)
	}
	return nil
}
