package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"ttd-cli/internal/apperr"
	"ttd-cli/internal/model"
)

// DocumentQuery carries the identity-derived parameters of /getDoc.
type DocumentQuery struct {
	UserID  int
	LevelID string
	SKPD    string
	Page    int
}

// DocumentQueryFor derives the query from the session identity.
func DocumentQueryFor(s model.Session, page int) DocumentQuery {
	q := DocumentQuery{Page: page}
	if s.Identity != nil {
		q.UserID = s.Identity.UserID
		q.LevelID = s.Identity.LevelID
		q.SKPD = s.Identity.SKPD
	}
	return q
}

func (q DocumentQuery) values() url.Values {
	v := url.Values{}
	v.Set("user_id", strconv.Itoa(q.UserID))
	v.Set("user_level_id", q.LevelID)
	v.Set("skpd_generate", q.SKPD)
	page := q.Page
	if page < 1 {
		page = 1
	}
	v.Set("page", strconv.Itoa(page))
	return v
}

func (c *Client) ListDocuments(ctx context.Context, q DocumentQuery) (*Page[DocumentRecord], error) {
	const op = "list documents"
	env, err := c.do(ctx, call{
		op:       op,
		method:   http.MethodGet,
		path:     "getDoc",
		query:    q.values(),
		fallback: "Failed to fetch documents",
	})
	if err != nil {
		return nil, err
	}
	var page Page[DocumentRecord]
	if err := decodeData(op, env, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// DocumentDetailPayload holds the records /getDoc returned for a content_id
// filter together with the response's top-level pathDoc.
type DocumentDetailPayload struct {
	Records []DocumentRecord
	PathDoc string
}

func (c *Client) DocumentDetail(ctx context.Context, q DocumentQuery, contentID int) (*DocumentDetailPayload, error) {
	const op = "document detail"
	v := q.values()
	v.Del("page")
	v.Set("content_id", strconv.Itoa(contentID))
	env, err := c.do(ctx, call{
		op:       op,
		method:   http.MethodGet,
		path:     "getDoc",
		query:    v,
		fallback: "Failed to fetch document",
	})
	if err != nil {
		return nil, err
	}
	recs, err := decodeRecords[DocumentRecord](env.Data)
	if err != nil {
		return nil, &apperr.APIError{Op: op, StatusCode: http.StatusOK, Message: "invalid response from server"}
	}
	return &DocumentDetailPayload{Records: recs, PathDoc: env.PathDoc}, nil
}

// ActionResult is the server's confirmation message for a state transition.
type ActionResult struct {
	Message string
}

type signBody struct {
	UserID     int    `json:"user_id"`
	ContentID  int    `json:"content_id"`
	Passphrase string `json:"passphrase"`
}

// Sign applies the user's signature. Not idempotent.
func (c *Client) Sign(ctx context.Context, userID, contentID int, passphrase string) (*ActionResult, error) {
	env, err := c.do(ctx, call{
		op:       "sign",
		method:   http.MethodPost,
		path:     "ttd",
		body:     signBody{UserID: userID, ContentID: contentID, Passphrase: passphrase},
		fallback: "Failed to sign document",
	})
	if err != nil {
		return nil, err
	}
	return &ActionResult{Message: env.message("Document has been signed successfully")}, nil
}

type revokeBody struct {
	ContentID int    `json:"content_id"`
	Reason    string `json:"reason"`
}

// Reject revokes the document with a reason. Not idempotent.
func (c *Client) Reject(ctx context.Context, contentID int, reason string) (*ActionResult, error) {
	env, err := c.do(ctx, call{
		op:       "reject",
		method:   http.MethodPost,
		path:     "revoke",
		body:     revokeBody{ContentID: contentID, Reason: reason},
		fallback: "Failed to reject document",
	})
	if err != nil {
		return nil, err
	}
	return &ActionResult{Message: env.message("Document has been rejected successfully")}, nil
}
