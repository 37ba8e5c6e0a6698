package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FlexInt decodes ids the backend sends either as numbers or numeric strings.
type FlexInt int

func (n *FlexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*n = 0
		return nil
	}
	s := strings.Trim(string(b), `"`)
	if strings.TrimSpace(s) == "" {
		*n = 0
		return nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return fmt.Errorf("invalid integer %s", string(b))
	}
	*n = FlexInt(int(f))
	return nil
}

// FlexString decodes codes that arrive as either strings or numbers.
type FlexString string

func (s *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = FlexString(v)
		return nil
	}
	*s = FlexString(string(b))
	return nil
}

// Page is the paginated list payload.
type Page[T any] struct {
	CurrentPage FlexInt `json:"current_page"`
	Data        []T     `json:"data"`
	LastPage    FlexInt `json:"last_page"`
}

type UserRecord struct {
	UserID   FlexInt `json:"user_id"`
	UserName string  `json:"user_name"`
	SKPDName string  `json:"skpd_name"`
}

type DocumentRecord struct {
	ContentID   FlexInt     `json:"content_id"`
	Title       string      `json:"content_title"`
	Status      string      `json:"content_status"`
	CreatedAt   string      `json:"created_at"`
	UserFrom    FlexInt     `json:"user_from"`
	UserTo      FlexInt     `json:"user_to"`
	Sender      *UserRecord `json:"user_dari,omitempty"`
	SigningType string      `json:"content_type"`
	Description string      `json:"content_desc"`
	File        string      `json:"content_file"`
}

type DispositionRecord struct {
	DisID        FlexInt    `json:"dis_id"`
	FromLetter   string     `json:"dis_from_letter"`
	NoLetter     string     `json:"dis_no_letter"`
	DateLetter   string     `json:"dis_date_letter"`
	AcceptDate   string     `json:"dis_accept_date"`
	NoAgenda     *string    `json:"dis_no_agenda"`
	Things       string     `json:"dis_things"`
	Instruction  *string    `json:"dis_instruction"`
	CC           *string    `json:"dis_cc"`
	From         FlexInt    `json:"dis_from"`
	To           string     `json:"dis_to"`
	File         string     `json:"dis_file"`
	Status       string     `json:"dis_status"`
	Type         string     `json:"dis_type"`
	SKPDGenerate FlexString `json:"skpd_generate"`
	Originator   UserRecord `json:"user_dari_dis"`
}

type RecipientRecord struct {
	UserID   FlexInt `json:"user_id"`
	UserName string  `json:"user_name"`
	SKPDName string  `json:"skpd_name"`
}

// decodeRecords accepts a page object, a bare array, or a single object.
func decodeRecords[T any](raw json.RawMessage) ([]T, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	switch raw[0] {
	case '[':
		var xs []T
		if err := json.Unmarshal(raw, &xs); err != nil {
			return nil, err
		}
		return xs, nil
	case '{':
		var probe map[string]json.RawMessage
		if err := json.Unmarshal(raw, &probe); err != nil {
			return nil, err
		}
		if inner, ok := probe["data"]; ok {
			return decodeRecords[T](inner)
		}
		var one T
		if err := json.Unmarshal(raw, &one); err != nil {
			return nil, err
		}
		return []T{one}, nil
	default:
		return nil, fmt.Errorf("unexpected payload")
	}
}
