package model

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"ttd-cli/internal/apperr"
)

type DispositionType string

const (
	DispositionUrgent DispositionType = "urgent"
	DispositionNormal DispositionType = "normal"
)

// NormalizeDispositionType maps the backend's "segera" to urgent.
func NormalizeDispositionType(raw string) DispositionType {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "segera", string(DispositionUrgent):
		return DispositionUrgent
	default:
		return DispositionNormal
	}
}

type Originator struct {
	UserID         int    `json:"userId"`
	Name           string `json:"name"`
	DepartmentName string `json:"departmentName"`
}

type DispositionItem struct {
	ID              int             `json:"id"`
	Subject         string          `json:"subject"`
	SourceLetterRef string          `json:"sourceLetterRef"`
	LetterNo        string          `json:"letterNo"`
	LetterDate      string          `json:"letterDate"`
	AcceptDate      string          `json:"acceptDate"`
	AgendaNo        string          `json:"agendaNo,omitempty"`
	Instruction     string          `json:"instruction,omitempty"`
	CC              string          `json:"cc,omitempty"`
	Type            DispositionType `json:"type"`
	RawType         string          `json:"rawType"`
	Status          string          `json:"status"`

	// DepartmentCode scopes the recipient lookup when forwarding.
	DepartmentCode string     `json:"departmentCode"`
	Originator     Originator `json:"originator"`
}

type DispositionDetail struct {
	DispositionItem
	FileURL string `json:"fileUrl,omitempty"`
}

type Recipient struct {
	UserID         int    `json:"userId"`
	DisplayName    string `json:"displayName"`
	DepartmentName string `json:"departmentName"`
}

// MatchesRecipient is the forward modal's recipient filter.
func MatchesRecipient(r Recipient, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(r.DisplayName), q) ||
		strings.Contains(strings.ToLower(r.DepartmentName), q)
}

// ForwardRequest is built once per forward submission and never stored.
type ForwardRequest struct {
	DispositionID    int
	ForwarderUserID  int
	RecipientUserIDs []int
	Instruction      string
	Passphrase       string
}

// Validate checks the required fields in submission order.
func (r ForwardRequest) Validate() error {
	if len(r.RecipientUserIDs) == 0 {
		return apperr.Validation("recipients", "select at least one recipient")
	}
	if strings.TrimSpace(r.Instruction) == "" {
		return apperr.Validation("instruction", "instruction is required")
	}
	if r.Passphrase == "" {
		return apperr.Validation("passphrase", "passphrase is required")
	}
	return nil
}

// Capitalize upper-cases the first rune, used for type/status badges.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	r, n := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[n:]
}
