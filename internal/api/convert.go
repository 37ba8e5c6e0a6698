package api

import (
	"net/url"
	"strings"

	"ttd-cli/internal/model"
)

func (r DocumentRecord) Summary() model.DocumentSummary {
	sender := ""
	if r.Sender != nil {
		sender = r.Sender.UserName
	}
	return model.DocumentSummary{
		ID:         int(r.ContentID),
		Title:      r.Title,
		SenderName: sender,
		CreatedAt:  r.CreatedAt,
		Status:     model.NormalizeDocumentStatus(r.Status),
		RawStatus:  r.Status,
	}
}

// Detail builds the detail view of r. pathDoc, when set, wins over the
// record's own file field; relative paths resolve against baseURL's host.
func (r DocumentRecord) Detail(pathDoc, baseURL string) model.DocumentDetail {
	d := model.DocumentDetail{
		DocumentSummary: r.Summary(),
		SenderID:        int(r.UserFrom),
		RecipientUserID: int(r.UserTo),
		SigningType:     r.SigningType,
		Description:     r.Description,
	}
	if r.Sender != nil {
		d.SenderDepartment = r.Sender.SKPDName
		if d.SenderID == 0 {
			d.SenderID = int(r.Sender.UserID)
		}
	}
	file := strings.TrimSpace(pathDoc)
	if file == "" {
		file = strings.TrimSpace(r.File)
	}
	d.FileURL = ResolveFileURL(baseURL, file)
	return d
}

func (r DispositionRecord) Item() model.DispositionItem {
	return model.DispositionItem{
		ID:              int(r.DisID),
		Subject:         r.Things,
		SourceLetterRef: r.FromLetter,
		LetterNo:        r.NoLetter,
		LetterDate:      r.DateLetter,
		AcceptDate:      r.AcceptDate,
		AgendaNo:        deref(r.NoAgenda),
		Instruction:     deref(r.Instruction),
		CC:              deref(r.CC),
		Type:            model.NormalizeDispositionType(r.Type),
		RawType:         r.Type,
		Status:          r.Status,
		DepartmentCode:  string(r.SKPDGenerate),
		Originator: model.Originator{
			UserID:         int(r.Originator.UserID),
			Name:           r.Originator.UserName,
			DepartmentName: r.Originator.SKPDName,
		},
	}
}

func (r DispositionRecord) Detail(pathDoc, baseURL string) model.DispositionDetail {
	return model.DispositionDetail{
		DispositionItem: r.Item(),
		FileURL:         ResolveFileURL(baseURL, strings.TrimSpace(pathDoc)),
	}
}

func (r RecipientRecord) Recipient() model.Recipient {
	return model.Recipient{
		UserID:         int(r.UserID),
		DisplayName:    r.UserName,
		DepartmentName: r.SKPDName,
	}
}

// ResolveFileURL returns absolute URLs unchanged and resolves relative paths
// against the root of baseURL's host.
func ResolveFileURL(baseURL, file string) string {
	if file == "" {
		return ""
	}
	ref, err := url.Parse(file)
	if err != nil {
		return file
	}
	if ref.IsAbs() {
		return file
	}
	base, err := url.Parse(baseURL)
	if err != nil || base.Host == "" {
		return file
	}
	root := &url.URL{Scheme: base.Scheme, Host: base.Host, Path: "/"}
	return root.ResolveReference(&url.URL{Path: strings.TrimPrefix(ref.Path, "/"), RawQuery: ref.RawQuery}).String()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
