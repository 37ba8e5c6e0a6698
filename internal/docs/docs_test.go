package docs

import (
	"strings"
	"testing"
)

func TestTopics_ListsEmbeddedGuides(t *testing.T) {
	t.Parallel()

	got := strings.Join(Topics(), ",")
	for _, want := range []string{"config", "dispositions", "documents", "login"} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected topic %q in %q", want, got)
		}
	}
}

func TestGet(t *testing.T) {
	t.Parallel()

	body, ok := Get(" Documents ")
	if !ok || !strings.Contains(body, "ttd docs sign") {
		t.Fatalf("expected documents guide, ok=%v body=%q", ok, body)
	}
	for _, bad := range []string{"", "nope", "../docs"} {
		if _, ok := Get(bad); ok {
			t.Fatalf("expected %q to be unknown", bad)
		}
	}
}
