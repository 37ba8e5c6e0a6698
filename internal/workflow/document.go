package workflow

import (
	"context"
	"strconv"
	"strings"
	"time"

	"ttd-cli/internal/api"
	"ttd-cli/internal/apperr"
	"ttd-cli/internal/logging"
	"ttd-cli/internal/model"

	"go.uber.org/zap"
)

// DocumentSource is the subset of *api.Client the document view needs.
type DocumentSource interface {
	DocumentDetail(ctx context.Context, q api.DocumentQuery, contentID int) (*api.DocumentDetailPayload, error)
	Sign(ctx context.Context, userID, contentID int, passphrase string) (*api.ActionResult, error)
	Reject(ctx context.Context, contentID int, reason string) (*api.ActionResult, error)
}

type Options struct {
	// BaseURL resolves relative file paths.
	BaseURL     string
	ReturnAfter time.Duration
	Logger      *zap.Logger
}

type Document struct {
	lifecycle

	src  DocumentSource
	sess SessionFunc
	opt  Options
	log  *zap.Logger

	id     int
	detail *model.DocumentDetail
}

func NewDocument(src DocumentSource, sess SessionFunc, opt Options) *Document {
	return &Document{src: src, sess: sess, opt: opt, log: logging.OrNop(opt.Logger)}
}

// Open loads document id, replacing whatever was open. It returns ErrBusy
// while a sign or reject is being submitted.
func (w *Document) Open(ctx context.Context, id int) (model.DocumentDetail, error) {
	w.mu.Lock()
	if w.state.Busy() {
		w.mu.Unlock()
		return model.DocumentDetail{}, ErrBusy
	}
	ctx, gen := w.beginLocked(ctx)
	w.state = Loading
	w.id = id
	w.detail = nil
	w.mu.Unlock()

	d, err := w.fetch(ctx, id)

	w.mu.Lock()
	defer w.mu.Unlock()
	if gen != w.gen {
		return model.DocumentDetail{}, ErrStale
	}
	switch {
	case apperr.IsNotFound(err):
		w.state = NotFound
		return model.DocumentDetail{}, err
	case err != nil:
		w.state = Failed
		return model.DocumentDetail{}, err
	}
	w.state = Loaded
	w.detail = &d
	return d, nil
}

// Leave abandons the view.
func (w *Document) Leave() { w.leave() }

func (w *Document) fetch(ctx context.Context, id int) (model.DocumentDetail, error) {
	sess := w.sess()
	res, err := w.src.DocumentDetail(ctx, api.DocumentQueryFor(sess, 0), id)
	if err != nil {
		return model.DocumentDetail{}, err
	}
	for _, r := range res.Records {
		if int(r.ContentID) == id {
			return r.Detail(res.PathDoc, w.opt.BaseURL), nil
		}
	}
	return model.DocumentDetail{}, apperr.NotFound("document", strconv.Itoa(id))
}

// Detail returns the loaded document, if any.
func (w *Document) Detail() (model.DocumentDetail, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.detail == nil {
		return model.DocumentDetail{}, false
	}
	return *w.detail, true
}

// CanAct reports whether sign and reject are offered right now.
func (w *Document) CanAct() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state == Loaded && w.detail != nil && w.detail.Actionable(w.sess())
}

// Sign validates the passphrase, then signs the open document.
func (w *Document) Sign(ctx context.Context, passphrase string) (Outcome, error) {
	if err := CheckPassphrase(passphrase); err != nil {
		return Outcome{}, err
	}
	uid := w.sess().UserID()
	return w.act(ctx, Signing, "document signed", func(ctx context.Context, id int) (*api.ActionResult, error) {
		return w.src.Sign(ctx, uid, id, passphrase)
	})
}

// Reject validates the reason, then rejects the open document.
func (w *Document) Reject(ctx context.Context, reason string) (Outcome, error) {
	if err := CheckReason(reason); err != nil {
		return Outcome{}, err
	}
	return w.act(ctx, Rejecting, "document rejected", func(ctx context.Context, id int) (*api.ActionResult, error) {
		return w.src.Reject(ctx, id, reason)
	})
}

// CheckPassphrase and CheckReason are the local checks Sign and Reject run
// before any request.
func CheckPassphrase(passphrase string) error {
	if passphrase == "" {
		return apperr.Validation("passphrase", "please enter your passphrase")
	}
	return nil
}

func CheckReason(reason string) error {
	if strings.TrimSpace(reason) == "" {
		return apperr.Validation("reason", "please provide a reason for rejection")
	}
	return nil
}

func (w *Document) act(ctx context.Context, busy State, logMsg string, call func(context.Context, int) (*api.ActionResult, error)) (Outcome, error) {
	w.mu.Lock()
	switch {
	case w.state.Busy():
		w.mu.Unlock()
		return Outcome{}, ErrBusy
	case w.state != Loaded || w.detail == nil:
		w.mu.Unlock()
		return Outcome{}, ErrNotLoaded
	case !w.detail.Actionable(w.sess()):
		w.mu.Unlock()
		return Outcome{}, ErrNotActionable
	}
	ctx, gen := w.beginLocked(ctx)
	id := w.id
	w.state = busy
	w.mu.Unlock()

	res, err := call(ctx, id)
	if err != nil {
		w.mu.Lock()
		defer w.mu.Unlock()
		if gen != w.gen {
			return Outcome{}, ErrStale
		}
		w.state = Loaded
		return Outcome{}, err
	}
	w.log.Info(logMsg, zap.Int("content_id", id))

	// The backend may have changed more than we asked for; re-read it so
	// CanAct reflects the new status.
	d, refreshErr := w.fetch(ctx, id)

	w.mu.Lock()
	defer w.mu.Unlock()
	if gen != w.gen {
		return Outcome{}, ErrStale
	}
	w.state = Loaded
	if refreshErr == nil {
		w.detail = &d
	}
	return Outcome{Message: res.Message, ReturnAfter: w.opt.ReturnAfter, RefreshErr: refreshErr}, nil
}
