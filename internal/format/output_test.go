package format

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

type sample struct {
	Name string `json:"name"`
}

func (s sample) Text(p Printer) string {
	return p.Table([]string{"NAME"}, [][]string{{s.Name}})
}

func TestWrite_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := Write(&buf, sample{Name: "x"}, "json", false); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got := buf.String(); got != "{\"name\":\"x\"}\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestWrite_TextUsesTexterWithoutANSI(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := Write(&buf, sample{Name: "Employment Contract"}, "text", false); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "NAME") || !strings.Contains(out, "Employment Contract") {
		t.Fatalf("missing table content:\n%s", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("expected no ANSI escapes for a non-terminal writer:\n%q", out)
	}
}

func TestWrite_TextFallsBackToJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := Write(&buf, map[string]int{"a": 1}, "text", false); err != nil {
		t.Fatalf("Write: %v", err)
	}
	var m map[string]int
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil || m["a"] != 1 {
		t.Fatalf("expected json fallback, got %q", buf.String())
	}
}

func TestWrite_UnknownFormat(t *testing.T) {
	t.Parallel()

	if err := Write(&bytes.Buffer{}, 1, "edn", false); err == nil {
		t.Fatalf("expected error")
	}
}

func TestWriteError(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := WriteError(&buf, "validation", "passphrase is required", "passphrase"); err != nil {
		t.Fatalf("WriteError: %v", err)
	}
	want := `{"error":{"kind":"validation","message":"passphrase is required","field":"passphrase"}}` + "\n"
	if buf.String() != want {
		t.Fatalf("got %q want %q", buf.String(), want)
	}
}

func TestPrinter_KV(t *testing.T) {
	t.Parallel()

	p := NewPrinter(&bytes.Buffer{})
	got := p.KV([2]string{"Title", "A"}, [2]string{"Empty", ""}, [2]string{"Sender", "Sarah"})
	if got != "Title   A\nSender  Sarah" {
		t.Fatalf("unexpected KV output %q", got)
	}
}
