package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestLoadConfig_MissingFileReturnsEmpty(t *testing.T) {
	t.Setenv("TUGESTOR_CONFIG_DIR", t.TempDir())

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.BaseURL != "" {
		t.Fatalf("expected empty base url, got %q", cfg.BaseURL)
	}
	if got := cfg.EffectiveBaseURL(); got != DefaultBaseURL {
		t.Fatalf("EffectiveBaseURL = %q, want %q", got, DefaultBaseURL)
	}
}

func TestEffectiveBaseURL_TrimsTrailingSlash(t *testing.T) {
	cfg := &GlobalConfig{BaseURL: " http://example.test/api/ "}
	if got := cfg.EffectiveBaseURL(); got != "http://example.test/api" {
		t.Fatalf("EffectiveBaseURL = %q", got)
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TUGESTOR_CONFIG_DIR", dir)

	in := &GlobalConfig{BaseURL: "http://h:1/api", Format: "table", TUI: &TUIConfig{Glyphs: "ascii"}}
	if err := SaveConfig(in); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}
	st, err := os.Stat(filepath.Join(dir, "config.json"))
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if st.Mode().Perm() != 0o600 {
		t.Fatalf("expected 0600 config perms, got %v", st.Mode().Perm())
	}
	out, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if out.BaseURL != in.BaseURL || out.Format != "table" || out.TUI == nil || out.TUI.Glyphs != "ascii" {
		t.Fatalf("unexpected config after round trip: %+v", out)
	}
}

func TestSaveConfig_ConcurrentWriters_DoesNotCorruptConfig(t *testing.T) {
	t.Setenv("TUGESTOR_CONFIG_DIR", t.TempDir())

	if err := SaveConfig(&GlobalConfig{BaseURL: "http://seed/api"}); err != nil {
		t.Fatalf("SaveConfig(seed): %v", err)
	}

	const n = 32
	errCh := make(chan error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			cfg, err := LoadConfig()
			if err != nil {
				errCh <- err
				return
			}
			cfg.BaseURL = fmt.Sprintf("http://host-%d/api", i)
			if err := SaveConfig(cfg); err != nil {
				errCh <- err
			}
		}(i)
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		t.Errorf("concurrent SaveConfig: %v", err)
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig after concurrent writes: %v", err)
	}
	if cfg.BaseURL == "" {
		t.Fatalf("expected a base url to survive concurrent writes")
	}
}

func TestSaveConfig_NilIsError(t *testing.T) {
	t.Setenv("TUGESTOR_CONFIG_DIR", t.TempDir())
	if err := SaveConfig(nil); err == nil {
		t.Fatalf("expected error for nil config")
	}
}
