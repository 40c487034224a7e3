package library_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/librettoapp/libretto/internal/library"
)

func openStore(t *testing.T) *library.Store {
	t.Helper()
	root := t.TempDir()
	store, err := library.Open(filepath.Join(root, "scripts"), filepath.Join(root, "audio"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return store
}

func TestCreateChapter_LayoutAndPairing(t *testing.T) {
	t.Parallel()

	store := openStore(t)
	raw := "First sentence here. Second sentence here. Third sentence here."
	ch, err := store.CreateChapter("My Chapter", raw, 45)
	if err != nil {
		t.Fatalf("CreateChapter: %v", err)
	}

	if ch.Name != "01_My_Chapter" {
		t.Errorf("chapter name = %q, want 01_My_Chapter", ch.Name)
	}

	got, err := ch.RawText()
	if err != nil {
		t.Fatalf("RawText: %v", err)
	}
	if got != raw {
		t.Errorf("raw text = %q, want the original verbatim", got)
	}

	scripts, err := ch.Scripts()
	if err != nil {
		t.Fatalf("Scripts: %v", err)
	}
	if len(scripts) != 2 {
		t.Fatalf("got %d scripts, want 2", len(scripts))
	}
	if scripts[0].Index != 1 || scripts[1].Index != 2 {
		t.Errorf("script indices = %d, %d, want 1, 2", scripts[0].Index, scripts[1].Index)
	}

	// The JSON sibling carries the same text in segment form.
	one, err := ch.Script(1)
	if err != nil {
		t.Fatalf("Script(1): %v", err)
	}
	if one.Text != scripts[0].Text {
		t.Errorf("Script(1) = %q, want %q", one.Text, scripts[0].Text)
	}
}

func TestChapter_NotFound(t *testing.T) {
	t.Parallel()

	store := openStore(t)
	if _, err := store.Chapter("no_such_chapter"); !errors.Is(err, library.ErrNotFound) {
		t.Errorf("Chapter err = %v, want ErrNotFound", err)
	}
}

func TestScript_NotFound(t *testing.T) {
	t.Parallel()

	store := openStore(t)
	ch, err := store.CreateChapter("c", "One sentence.", 0)
	if err != nil {
		t.Fatalf("CreateChapter: %v", err)
	}
	if _, err := ch.Script(99); !errors.Is(err, library.ErrNotFound) {
		t.Errorf("Script(99) err = %v, want ErrNotFound", err)
	}
	if _, err := ch.ReadAudio(1); !errors.Is(err, library.ErrNotFound) {
		t.Errorf("ReadAudio(1) err = %v, want ErrNotFound", err)
	}
}

func TestWriteAudio_RoundTrip(t *testing.T) {
	t.Parallel()

	store := openStore(t)
	ch, err := store.CreateChapter("c", "One sentence.", 0)
	if err != nil {
		t.Fatalf("CreateChapter: %v", err)
	}

	wav := []byte("RIFF fake payload")
	if err := ch.WriteAudio(1, wav); err != nil {
		t.Fatalf("WriteAudio: %v", err)
	}
	got, err := ch.ReadAudio(1)
	if err != nil {
		t.Fatalf("ReadAudio: %v", err)
	}
	if string(got) != string(wav) {
		t.Errorf("audio round trip mismatch")
	}

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(ch.AudioPath(1)))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, e := range entries {
		if e.Name() != "audio_001.wav" {
			t.Errorf("unexpected leftover file %q", e.Name())
		}
	}
}

func TestSettings_RoundTrip(t *testing.T) {
	t.Parallel()

	store := openStore(t)
	ch, err := store.CreateChapter("c", "One sentence.", 0)
	if err != nil {
		t.Fatalf("CreateChapter: %v", err)
	}

	if _, err := ch.LoadSettings(); !errors.Is(err, library.ErrNotFound) {
		t.Errorf("LoadSettings before save err = %v, want ErrNotFound", err)
	}

	in := library.Settings{Voice: "alloy", Speed: 1.1, Temperature: 0.7, Prompt: "calm narrator"}
	if err := ch.SaveSettings(in); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}
	out, err := ch.LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if *out != in {
		t.Errorf("settings = %+v, want %+v", *out, in)
	}
}

func TestScan(t *testing.T) {
	t.Parallel()

	store := openStore(t)
	for _, title := range []string{"alpha", "beta"} {
		ch, err := store.CreateChapter(title, "One sentence. Two sentences.", 0)
		if err != nil {
			t.Fatalf("CreateChapter(%s): %v", title, err)
		}
		if title == "beta" {
			if err := ch.WriteAudio(1, []byte("RIFF x")); err != nil {
				t.Fatalf("WriteAudio: %v", err)
			}
		}
	}

	infos, err := store.Scan()
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("got %d chapters, want 2", len(infos))
	}
	if infos[0].Name != "01_alpha" || infos[1].Name != "02_beta" {
		t.Errorf("names = %q, %q", infos[0].Name, infos[1].Name)
	}
	if infos[0].AudioCount != 0 || infos[1].AudioCount != 1 {
		t.Errorf("audio counts = %d, %d, want 0, 1", infos[0].AudioCount, infos[1].AudioCount)
	}
	if infos[0].ScriptCount != 1 {
		t.Errorf("script count = %d, want 1", infos[0].ScriptCount)
	}
}
