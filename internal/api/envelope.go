package api

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// envelope is the uniform {status, desc, data} response body.
type envelope struct {
	Status  flag            `json:"status"`
	Desc    json.RawMessage `json:"desc"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`

	// PathDoc is a top-level sibling of data on detail responses.
	PathDoc string `json:"pathDoc"`

	raw map[string]any
}

func decodeEnvelope(b []byte) (*envelope, error) {
	var env envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, err
	}
	// Keep the loose form for login, whose fields vary by backend version.
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err == nil {
		env.raw = raw
	}
	return &env, nil
}

func (e *envelope) succeeded(statusOptional bool) bool {
	if !e.Status.set {
		return statusOptional
	}
	return e.Status.v
}

func (e *envelope) isNull() bool {
	d := bytes.TrimSpace(e.Data)
	return len(d) == 0 || bytes.Equal(d, []byte("null"))
}

// message returns desc (when textual) or message, else fallback.
func (e *envelope) message(fallback string) string {
	if s := e.descString(); s != "" {
		return s
	}
	if s := strings.TrimSpace(e.Message); s != "" {
		return s
	}
	return fallback
}

func (e *envelope) descString() string {
	var s string
	if err := json.Unmarshal(e.Desc, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return ""
}

// descCount reads desc as a counter (the disposition list reports unread
// items there).
func (e *envelope) descCount() int {
	var n json.Number
	if err := json.Unmarshal(e.Desc, &n); err == nil {
		if i, err := n.Int64(); err == nil {
			return int(i)
		}
	}
	if s := e.descString(); s != "" {
		if i, err := strconv.Atoi(s); err == nil {
			return i
		}
	}
	return 0
}

// flag is a status flag that tolerates true/false, 1/0, and their string forms.
type flag struct {
	v   bool
	set bool
}

func (f *flag) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	switch strings.ToLower(s) {
	case "null":
		f.set = false
		return nil
	case "true", "1", "success", "ok":
		f.v, f.set = true, true
	default:
		f.v, f.set = false, true
	}
	return nil
}
