package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// DispositionPage adds the unread counter the list endpoint reports in desc.
type DispositionPage struct {
	Page[DispositionRecord]
	Unread int
}

func (c *Client) ListDispositions(ctx context.Context, userID, page int) (*DispositionPage, error) {
	const op = "list dispositions"
	if page < 1 {
		page = 1
	}
	q := url.Values{}
	q.Set("user_id", strconv.Itoa(userID))
	q.Set("page", strconv.Itoa(page))
	env, err := c.do(ctx, call{
		op:       op,
		method:   http.MethodGet,
		path:     "getDis",
		query:    q,
		fallback: "Failed to fetch disposisi data",
	})
	if err != nil {
		return nil, err
	}
	out := &DispositionPage{Unread: env.descCount()}
	if err := decodeData(op, env, &out.Page); err != nil {
		return nil, err
	}
	return out, nil
}

type DispositionDetailPayload struct {
	// Record is nil when the backend has no such disposition.
	Record  *DispositionRecord
	PathDoc string
}

type detailDisBody struct {
	DisID int `json:"dis_id"`
}

func (c *Client) DispositionDetail(ctx context.Context, disID int) (*DispositionDetailPayload, error) {
	const op = "disposition detail"
	env, err := c.do(ctx, call{
		op:       op,
		method:   http.MethodPost,
		path:     "detailDis",
		body:     detailDisBody{DisID: disID},
		fallback: "Failed to fetch disposisi details",
	})
	if err != nil {
		return nil, err
	}
	out := &DispositionDetailPayload{PathDoc: env.PathDoc}
	if !env.isNull() {
		var rec DispositionRecord
		if err := decodeData(op, env, &rec); err != nil {
			return nil, err
		}
		out.Record = &rec
	}
	return out, nil
}

type nameOnDetailBody struct {
	UserID int    `json:"user_id"`
	SKPDID string `json:"skpd_id"`
}

// Recipients lists who userID may forward to within department skpdID.
func (c *Client) Recipients(ctx context.Context, userID int, skpdID string) ([]RecipientRecord, error) {
	const op = "list recipients"
	env, err := c.do(ctx, call{
		op:       op,
		method:   http.MethodPost,
		path:     "nameOnDetail",
		body:     nameOnDetailBody{UserID: userID, SKPDID: skpdID},
		fallback: "Failed to load recipient list",
	})
	if err != nil {
		return nil, err
	}
	out := []RecipientRecord{}
	if err := decodeData(op, env, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []RecipientRecord{}
	}
	return out, nil
}

type forwardBody struct {
	DisID       int    `json:"dis_id"`
	UserID      int    `json:"user_id"`
	Recipients  []int  `json:"recipients"`
	Instruction string `json:"instruction"`
	Passphrase  string `json:"passphrase"`
}

// ForwardInput mirrors the /forwardDisposisi body.
type ForwardInput struct {
	DispositionID int
	UserID        int
	Recipients    []int
	Instruction   string
	Passphrase    string
}

// Forward routes a disposition to recipients. Not idempotent.
func (c *Client) Forward(ctx context.Context, in ForwardInput) (*ActionResult, error) {
	env, err := c.do(ctx, call{
		op:     "forward disposition",
		method: http.MethodPost,
		path:   "forwardDisposisi",
		body: forwardBody{
			DisID:       in.DispositionID,
			UserID:      in.UserID,
			Recipients:  in.Recipients,
			Instruction: in.Instruction,
			Passphrase:  in.Passphrase,
		},
		fallback: "Failed to forward disposition",
	})
	if err != nil {
		return nil, err
	}
	return &ActionResult{Message: env.message("Disposition has been forwarded successfully")}, nil
}
