package workflow

import (
	"context"
	"strconv"

	"ttd-cli/internal/api"
	"ttd-cli/internal/apperr"
	"ttd-cli/internal/logging"
	"ttd-cli/internal/model"

	"go.uber.org/zap"
)

// DispositionSource is the subset of *api.Client the disposition view needs.
type DispositionSource interface {
	DispositionDetail(ctx context.Context, disID int) (*api.DispositionDetailPayload, error)
	Recipients(ctx context.Context, userID int, skpdID string) ([]api.RecipientRecord, error)
	Forward(ctx context.Context, in api.ForwardInput) (*api.ActionResult, error)
}

type Disposition struct {
	lifecycle

	src  DispositionSource
	sess SessionFunc
	opt  Options
	log  *zap.Logger

	id         int
	detail     *model.DispositionDetail
	recipients []model.Recipient

	// entry counts EnterForward calls; only the latest one may store its
	// recipients.
	entry       uint64
	entryCancel context.CancelFunc
}

func NewDisposition(src DispositionSource, sess SessionFunc, opt Options) *Disposition {
	return &Disposition{src: src, sess: sess, opt: opt, log: logging.OrNop(opt.Logger)}
}

func (w *Disposition) Open(ctx context.Context, id int) (model.DispositionDetail, error) {
	w.mu.Lock()
	if w.state.Busy() {
		w.mu.Unlock()
		return model.DispositionDetail{}, ErrBusy
	}
	ctx, gen := w.beginLocked(ctx)
	w.state = Loading
	w.id = id
	w.detail = nil
	w.recipients = nil
	w.mu.Unlock()

	d, err := w.fetch(ctx, id)

	w.mu.Lock()
	defer w.mu.Unlock()
	if gen != w.gen {
		return model.DispositionDetail{}, ErrStale
	}
	switch {
	case apperr.IsNotFound(err):
		w.state = NotFound
		return model.DispositionDetail{}, err
	case err != nil:
		w.state = Failed
		return model.DispositionDetail{}, err
	}
	w.state = Loaded
	w.detail = &d
	return d, nil
}

func (w *Disposition) Leave() { w.leave() }

func (w *Disposition) fetch(ctx context.Context, id int) (model.DispositionDetail, error) {
	res, err := w.src.DispositionDetail(ctx, id)
	if err != nil {
		return model.DispositionDetail{}, err
	}
	if res.Record == nil || int(res.Record.DisID) != id {
		return model.DispositionDetail{}, apperr.NotFound("disposition", strconv.Itoa(id))
	}
	return res.Record.Detail(res.PathDoc, w.opt.BaseURL), nil
}

func (w *Disposition) Detail() (model.DispositionDetail, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.detail == nil {
		return model.DispositionDetail{}, false
	}
	return *w.detail, true
}

// EnterForward fetches the recipients for the open disposition. It always
// asks the backend; nothing is cached between entries. A newer entry cancels
// an older one still in flight, which then returns ErrStale.
func (w *Disposition) EnterForward(ctx context.Context) ([]model.Recipient, error) {
	w.mu.Lock()
	if w.state != Loaded || w.detail == nil {
		w.mu.Unlock()
		return nil, ErrNotLoaded
	}
	if w.entryCancel != nil {
		w.entryCancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	w.entry++
	w.entryCancel = cancel
	gen, entry := w.gen, w.entry
	dept := w.detail.DepartmentCode
	w.recipients = nil
	w.mu.Unlock()

	recs, err := w.src.Recipients(ctx, w.sess().UserID(), dept)

	w.mu.Lock()
	defer w.mu.Unlock()
	if gen != w.gen || entry != w.entry {
		return nil, ErrStale
	}
	w.entryCancel = nil
	if err != nil {
		return nil, err
	}
	out := make([]model.Recipient, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Recipient())
	}
	w.recipients = out
	return append([]model.Recipient(nil), out...), nil
}

// Recipients returns the list fetched by the latest EnterForward.
func (w *Disposition) Recipients() []model.Recipient {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]model.Recipient(nil), w.recipients...)
}

// Forward validates the request locally, then submits it once.
func (w *Disposition) Forward(ctx context.Context, recipientIDs []int, instruction, passphrase string) (Outcome, error) {
	w.mu.Lock()
	id := w.id
	w.mu.Unlock()

	req := model.ForwardRequest{
		DispositionID:    id,
		ForwarderUserID:  w.sess().UserID(),
		RecipientUserIDs: dedupe(recipientIDs),
		Instruction:      instruction,
		Passphrase:       passphrase,
	}
	if err := req.Validate(); err != nil {
		return Outcome{}, err
	}

	w.mu.Lock()
	switch {
	case w.state.Busy():
		w.mu.Unlock()
		return Outcome{}, ErrBusy
	case w.state != Loaded || w.detail == nil:
		w.mu.Unlock()
		return Outcome{}, ErrNotLoaded
	}
	ctx, gen := w.beginLocked(ctx)
	w.state = Forwarding
	w.mu.Unlock()

	res, err := w.src.Forward(ctx, api.ForwardInput{
		DispositionID: req.DispositionID,
		UserID:        req.ForwarderUserID,
		Recipients:    req.RecipientUserIDs,
		Instruction:   req.Instruction,
		Passphrase:    req.Passphrase,
	})
	if err != nil {
		w.mu.Lock()
		defer w.mu.Unlock()
		if gen != w.gen {
			return Outcome{}, ErrStale
		}
		w.state = Loaded
		return Outcome{}, err
	}
	w.log.Info("disposition forwarded", zap.Int("dis_id", id), zap.Int("recipients", len(req.RecipientUserIDs)))

	d, refreshErr := w.fetch(ctx, id)

	w.mu.Lock()
	defer w.mu.Unlock()
	if gen != w.gen {
		return Outcome{}, ErrStale
	}
	w.state = Loaded
	w.recipients = nil
	if refreshErr == nil {
		w.detail = &d
	}
	return Outcome{Message: res.Message, ReturnAfter: w.opt.ReturnAfter, RefreshErr: refreshErr}, nil
}

func dedupe(ids []int) []int {
	seen := make(map[int]bool, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if id <= 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
