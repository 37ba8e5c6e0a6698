package listing

import (
	"context"
	"strconv"

	"ttd-cli/internal/api"
	"ttd-cli/internal/model"
)

// DocumentSource lists documents (*api.Client).
type DocumentSource interface {
	ListDocuments(ctx context.Context, q api.DocumentQuery) (*api.Page[api.DocumentRecord], error)
}

// DispositionSource lists dispositions (*api.Client).
type DispositionSource interface {
	ListDispositions(ctx context.Context, userID, page int) (*api.DispositionPage, error)
}

// SessionFunc returns the current session; it is read on every fetch.
type SessionFunc func() model.Session

func DocumentFetcher(src DocumentSource, sess SessionFunc) Fetcher[model.DocumentSummary] {
	return func(ctx context.Context, page int) (Page[model.DocumentSummary], error) {
		res, err := src.ListDocuments(ctx, api.DocumentQueryFor(sess(), page))
		if err != nil {
			return Page[model.DocumentSummary]{}, err
		}
		out := Page[model.DocumentSummary]{
			Items:       make([]model.DocumentSummary, 0, len(res.Data)),
			CurrentPage: int(res.CurrentPage),
			TotalPages:  int(res.LastPage),
		}
		for _, r := range res.Data {
			out.Items = append(out.Items, r.Summary())
		}
		return out, nil
	}
}

func DocumentFields(d model.DocumentSummary) []string {
	return []string{d.Title, d.SenderName, strconv.Itoa(d.ID)}
}

func NewDocuments(src DocumentSource, sess SessionFunc) *Controller[model.DocumentSummary] {
	return New(DocumentFetcher(src, sess), DocumentFields)
}

func DispositionFetcher(src DispositionSource, sess SessionFunc) Fetcher[model.DispositionItem] {
	return func(ctx context.Context, page int) (Page[model.DispositionItem], error) {
		res, err := src.ListDispositions(ctx, sess().UserID(), page)
		if err != nil {
			return Page[model.DispositionItem]{}, err
		}
		out := Page[model.DispositionItem]{
			Items:       make([]model.DispositionItem, 0, len(res.Data)),
			CurrentPage: int(res.CurrentPage),
			TotalPages:  int(res.LastPage),
			Notice:      res.Unread,
		}
		for _, r := range res.Data {
			out.Items = append(out.Items, r.Item())
		}
		return out, nil
	}
}

// DispositionFields searches subject, source letter, letter number and
// instruction.
func DispositionFields(d model.DispositionItem) []string {
	return []string{d.Subject, d.SourceLetterRef, d.LetterNo, d.Instruction}
}

func NewDispositions(src DispositionSource, sess SessionFunc) *Controller[model.DispositionItem] {
	return New(DispositionFetcher(src, sess), DispositionFields)
}
