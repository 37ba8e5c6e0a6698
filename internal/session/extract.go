package session

import (
	"errors"
	"fmt"
	"strings"

	"ttd-cli/internal/model"

	"github.com/mitchellh/mapstructure"
)

var (
	errNoToken    = errors.New("login response has no token")
	errNoIdentity = errors.New("login response has no user")
)

// extractLogin pulls identity and token out of a login body. Two layouts are
// known: everything nested under data, or token and user at the top level.
// The nested one wins when both are present.
func extractLogin(body map[string]any) (*model.UserIdentity, string, error) {
	if body == nil {
		return nil, "", errNoToken
	}
	scopes := []map[string]any{}
	if data, ok := body["data"].(map[string]any); ok {
		scopes = append(scopes, data)
	}
	scopes = append(scopes, body)

	token := ""
	for _, sc := range scopes {
		if token = firstString(sc, "token", "access_token"); token != "" {
			break
		}
	}
	if token == "" {
		return nil, "", errNoToken
	}

	var raw map[string]any
	for _, sc := range scopes {
		if raw = userObject(sc); raw != nil {
			break
		}
	}
	if raw == nil {
		return nil, "", errNoIdentity
	}
	id, err := decodeIdentity(raw)
	if err != nil {
		return nil, "", err
	}
	if id.UserID <= 0 {
		return nil, "", errNoIdentity
	}
	return id, token, nil
}

func userObject(m map[string]any) map[string]any {
	for _, k := range []string{"user", "userData"} {
		if u, ok := m[k].(map[string]any); ok {
			return u
		}
	}
	// Some backends inline the user fields next to the token.
	if _, ok := m["user_id"]; ok {
		return m
	}
	return nil
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// decodeIdentity maps the loosely typed user object onto UserIdentity. Ids
// and codes arrive as numbers or strings depending on the endpoint version.
func decodeIdentity(raw map[string]any) (*model.UserIdentity, error) {
	var out model.UserIdentity
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           &out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, fmt.Errorf("new decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return &out, nil
}
