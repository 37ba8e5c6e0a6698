package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

const (
	DefaultDocumentReturnDelayMs    = 1000
	DefaultDispositionReturnDelayMs = 1500
)

type Config struct {
	// BaseURL is the backend root, e.g. https://host/api/. Empty means the
	// built-in default.
	BaseURL string `json:"baseUrl,omitempty"`

	// HTTPTimeoutSeconds bounds a whole request. 0 leaves timeouts to the
	// transport.
	HTTPTimeoutSeconds int `json:"httpTimeoutSeconds,omitempty"`

	ReturnDelayMs *ReturnDelays `json:"returnDelayMs,omitempty"`

	// TUI holds optional user preferences for the interactive TUI.
	TUI *TUIConfig `json:"tui,omitempty"`
}

// ReturnDelays is how long a detail view lingers after a successful action
// before navigating back to its list.
type ReturnDelays struct {
	Documents    int `json:"documents,omitempty"`
	Dispositions int `json:"dispositions,omitempty"`
}

type TUIConfig struct {
	// MarkdownStyle is a glamour standard style name (dark, light, notty).
	MarkdownStyle string `json:"markdownStyle,omitempty"`
}

func (c *Config) DocumentReturnDelayMs() int {
	if c == nil || c.ReturnDelayMs == nil || c.ReturnDelayMs.Documents <= 0 {
		return DefaultDocumentReturnDelayMs
	}
	return c.ReturnDelayMs.Documents
}

func (c *Config) DispositionReturnDelayMs() int {
	if c == nil || c.ReturnDelayMs == nil || c.ReturnDelayMs.Dispositions <= 0 {
		return DefaultDispositionReturnDelayMs
	}
	return c.ReturnDelayMs.Dispositions
}

func (c *Config) MarkdownStyle() string {
	if c == nil || c.TUI == nil {
		return ""
	}
	return strings.TrimSpace(c.TUI.MarkdownStyle)
}

func ConfigDir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.ttd).
	if v := strings.TrimSpace(os.Getenv("TTD_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".ttd"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// DefaultLogPath is ~/.ttd/ttd.log (or under TTD_CONFIG_DIR).
func DefaultLogPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "ttd.log"), nil
}

func LoadConfig() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func atomicWriteFile(dir, tmpPattern, path string, b []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, perm)
	return os.Rename(tmp, path)
}

func SaveConfig(cfg *Config) error {
	if cfg == nil {
		return errors.New("nil config")
	}
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	// Keep the previous file around; failures here must not block the save.
	if prev, err := os.ReadFile(path); err == nil && len(prev) > 0 {
		_ = atomicWriteFile(dir, "config.json.bak.*.tmp", path+".bak", prev, 0o600)
	}
	return atomicWriteFile(dir, "config.json.*.tmp", path, b, 0o600)
}
