package cli

import "ttd-cli/internal/format"

// result is the {"data", "meta"} envelope with an optional text rendering.
type result struct {
	Data any            `json:"data"`
	Meta map[string]any `json:"meta,omitempty"`

	text func(format.Printer) string
}

func (r result) Text(p format.Printer) string {
	if r.text == nil {
		return ""
	}
	return r.text(p)
}
