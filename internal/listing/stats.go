package listing

import "ttd-cli/internal/model"

// DocumentStats are the dashboard counters over one loaded page.
type DocumentStats struct {
	Pending  int `json:"pending"`
	Signed   int `json:"signed"`
	Rejected int `json:"rejected"`
	Total    int `json:"total"`
}

func Stats(docs []model.DocumentSummary) DocumentStats {
	var s DocumentStats
	for _, d := range docs {
		s.Total++
		switch d.Status {
		case model.StatusPending:
			s.Pending++
		case model.StatusSigned:
			s.Signed++
		case model.StatusRejected:
			s.Rejected++
		}
	}
	return s
}

// Pending keeps the documents still awaiting action.
func Pending(docs []model.DocumentSummary) []model.DocumentSummary {
	out := make([]model.DocumentSummary, 0, len(docs))
	for _, d := range docs {
		if d.Status == model.StatusPending {
			out = append(out, d)
		}
	}
	return out
}
