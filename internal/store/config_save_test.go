package store

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
)

func TestSaveConfig_ConcurrentWritersDoNotCorruptConfig(t *testing.T) {
	cfgDir := t.TempDir()
	t.Setenv("TTD_CONFIG_DIR", cfgDir)

	if err := SaveConfig(&Config{BaseURL: "https://seed.example.go.id/api/"}); err != nil {
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
			cfg.BaseURL = fmt.Sprintf("https://host-%d.example.go.id/api/", i)
			cfg.HTTPTimeoutSeconds = i + 1
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
	if t.Failed() {
		return
	}

	path, err := ConfigPath()
	if err != nil {
		t.Fatalf("ConfigPath: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config.json: %v", err)
	}
	var cfg Config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		t.Fatalf("config.json unparseable: %v\nraw:\n%s", err, string(raw))
	}
	if !strings.HasPrefix(cfg.BaseURL, "https://host-") {
		t.Fatalf("expected one of the writers to win, got %q", cfg.BaseURL)
	}

	ents, err := os.ReadDir(cfgDir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, e := range ents {
		name := e.Name()
		if strings.HasPrefix(name, "config.json.") && strings.HasSuffix(name, ".tmp") {
			t.Fatalf("leftover temp file: %s", name)
		}
	}

	bak, err := os.ReadFile(path + ".bak")
	if err != nil {
		t.Fatalf("expected a backup of the previous config: %v", err)
	}
	var bakCfg Config
	if err := json.Unmarshal(bak, &bakCfg); err != nil {
		t.Fatalf("config.json.bak unparseable: %v\nraw:\n%s", err, string(bak))
	}
}
