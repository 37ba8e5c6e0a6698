package model

import "strings"

// DocumentStatus is the normalized status of a signable document.
type DocumentStatus string

const (
	StatusPending  DocumentStatus = "pending"
	StatusSigned   DocumentStatus = "signed"
	StatusRejected DocumentStatus = "rejected"
)

// Raw backend values with a normalized meaning.
const (
	RawStatusActive   = "active"
	RawStatusApproved = "approved"
)

// NormalizeDocumentStatus maps backend status strings: active -> pending,
// approved -> signed, anything else passes through unchanged.
func NormalizeDocumentStatus(raw string) DocumentStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case RawStatusActive:
		return StatusPending
	case RawStatusApproved:
		return StatusSigned
	default:
		return DocumentStatus(raw)
	}
}

type DocumentSummary struct {
	ID         int            `json:"id"`
	Title      string         `json:"title"`
	SenderName string         `json:"senderName"`
	CreatedAt  string         `json:"createdAt"`
	Status     DocumentStatus `json:"status"`

	// RawStatus is the backend value Status was normalized from.
	RawStatus string `json:"rawStatus"`
}

type DocumentDetail struct {
	DocumentSummary

	SenderID         int    `json:"senderId"`
	SenderDepartment string `json:"senderDepartment,omitempty"`
	RecipientUserID  int    `json:"recipientUserId"`
	SigningType      string `json:"signingType,omitempty"`
	Description      string `json:"description,omitempty"`
	FileURL          string `json:"fileUrl,omitempty"`
}

// Actionable reports whether sign/reject may be offered to the session user:
// the raw status must be "active" and the document must be addressed to them.
func (d DocumentDetail) Actionable(s Session) bool {
	if !s.Authenticated() {
		return false
	}
	if strings.TrimSpace(d.RawStatus) != RawStatusActive {
		return false
	}
	return d.RecipientUserID == s.Identity.UserID
}
