package mockapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
)

func (u User) record() map[string]any {
	return map[string]any{
		"user_id":       u.ID,
		"user_name":     u.Name,
		"user_username": u.Username,
		"user_email":    u.Email,
		"skpd_generate": u.SKPD,
		"skpd_name":     u.SKPDName,
		"user_level_id": u.Level,
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, _ *http.Request, body []byte) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.Unmarshal(body, &in); err != nil {
		fail(w, http.StatusBadRequest, "invalid request")
		return
	}
	s.mu.Lock()
	var found *User
	for i := range s.users {
		u := s.users[i]
		if (u.Email == in.Email || u.Username == in.Email) && u.Password == in.Password {
			found = &u
			break
		}
	}
	shape := s.loginShape
	s.mu.Unlock()

	if found == nil {
		fail(w, http.StatusUnauthorized, "Email atau password salah")
		return
	}
	if shape == LoginFlat {
		writeJSON(w, http.StatusOK, map[string]any{
			"access_token": found.Token,
			"user":         found.record(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": true,
		"desc":   "Login berhasil",
		"data": map[string]any{
			"token": found.Token,
			"user":  found.record(),
		},
	})
}

func (s *Server) documentRecordLocked(d Document) map[string]any {
	rec := map[string]any{
		"content_id":     d.ID,
		"content_title":  d.Title,
		"content_status": d.Status,
		"created_at":     d.CreatedAt,
		"user_from":      d.FromUserID,
		"user_to":        d.ToUserID,
		"content_type":   d.Type,
		"content_desc":   d.Description,
		"content_file":   d.File,
	}
	if u, ok := s.userByIDLocked(d.FromUserID); ok {
		rec["user_dari"] = map[string]any{
			"user_id":   u.ID,
			"user_name": u.Name,
			"skpd_name": u.SKPDName,
		}
	}
	return rec
}

func (s *Server) handleGetDoc(w http.ResponseWriter, r *http.Request, _ []byte) {
	q := r.URL.Query()
	userID := queryInt(q, "user_id")

	s.mu.Lock()
	defer s.mu.Unlock()

	if cid := strings.TrimSpace(q.Get("content_id")); cid != "" {
		id, _ := strconv.Atoi(cid)
		recs := []map[string]any{}
		path := ""
		for _, d := range s.documents {
			if d.ID == id && (d.ToUserID == userID || d.FromUserID == userID) {
				recs = append(recs, s.documentRecordLocked(d))
				path = d.File
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"status":  true,
			"desc":    "OK",
			"data":    map[string]any{"current_page": 1, "data": recs, "last_page": 1},
			"pathDoc": path,
		})
		return
	}

	var mine []Document
	for _, d := range s.documents {
		if d.ToUserID == userID {
			mine = append(mine, d)
		}
	}
	page := queryInt(q, "page")
	if page < 1 {
		page = 1
	}
	slice, last := paginate(mine, page, s.pageSize)
	recs := make([]map[string]any, 0, len(slice))
	for _, d := range slice {
		recs = append(recs, s.documentRecordLocked(d))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": true,
		"desc":   "OK",
		"data":   map[string]any{"current_page": page, "data": recs, "last_page": last},
	})
}

func (s *Server) handleSign(w http.ResponseWriter, _ *http.Request, body []byte) {
	var in struct {
		UserID     int    `json:"user_id"`
		ContentID  int    `json:"content_id"`
		Passphrase string `json:"passphrase"`
	}
	if err := json.Unmarshal(body, &in); err != nil {
		fail(w, http.StatusBadRequest, "invalid request")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.userByIDLocked(in.UserID)
	if !ok || u.Passphrase != in.Passphrase {
		writeJSON(w, http.StatusOK, map[string]any{"status": false, "desc": "Passphrase salah"})
		return
	}
	for i := range s.documents {
		d := &s.documents[i]
		if d.ID != in.ContentID {
			continue
		}
		if d.Status != "active" || d.ToUserID != in.UserID {
			writeJSON(w, http.StatusOK, map[string]any{"status": false, "desc": "Dokumen tidak dapat ditandatangani"})
			return
		}
		d.Status = "approved"
		writeJSON(w, http.StatusOK, map[string]any{"status": true, "desc": "Dokumen berhasil ditandatangani"})
		return
	}
	fail(w, http.StatusNotFound, "Dokumen tidak ditemukan")
}

func (s *Server) handleRevoke(w http.ResponseWriter, _ *http.Request, body []byte) {
	var in struct {
		ContentID int    `json:"content_id"`
		Reason    string `json:"reason"`
	}
	if err := json.Unmarshal(body, &in); err != nil {
		fail(w, http.StatusBadRequest, "invalid request")
		return
	}
	if strings.TrimSpace(in.Reason) == "" {
		writeJSON(w, http.StatusOK, map[string]any{"status": false, "desc": "Alasan wajib diisi"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.documents {
		d := &s.documents[i]
		if d.ID != in.ContentID {
			continue
		}
		if d.Status != "active" {
			writeJSON(w, http.StatusOK, map[string]any{"status": false, "desc": "Dokumen tidak dapat ditolak"})
			return
		}
		d.Status = "rejected"
		writeJSON(w, http.StatusOK, map[string]any{"status": true, "desc": "Dokumen berhasil ditolak"})
		return
	}
	fail(w, http.StatusNotFound, "Dokumen tidak ditemukan")
}

func containsInt(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

func joinInts(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = strconv.Itoa(x)
	}
	return strings.Join(parts, ",")
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func (s *Server) dispositionRecordLocked(d Disposition) map[string]any {
	rec := map[string]any{
		"dis_id":          d.ID,
		"dis_from_letter": d.FromLetter,
		"dis_no_letter":   d.LetterNo,
		"dis_date_letter": d.LetterDate,
		"dis_accept_date": d.AcceptDate,
		"dis_no_agenda":   nullable(d.AgendaNo),
		"dis_things":      d.Subject,
		"dis_instruction": nullable(d.Instruction),
		"dis_cc":          nullable(d.CC),
		"dis_from":        d.FromUserID,
		"dis_to":          joinInts(d.ToUserIDs),
		"dis_file":        d.File,
		"dis_status":      d.Status,
		"dis_type":        d.Type,
		"skpd_generate":   d.SKPD,
	}
	orig := map[string]any{"user_id": d.FromUserID}
	if u, ok := s.userByIDLocked(d.FromUserID); ok {
		orig["user_name"] = u.Name
		orig["skpd_name"] = u.SKPDName
	}
	rec["user_dari_dis"] = orig
	return rec
}

func (s *Server) handleGetDis(w http.ResponseWriter, r *http.Request, _ []byte) {
	q := r.URL.Query()
	userID := queryInt(q, "user_id")
	page := queryInt(q, "page")
	if page < 1 {
		page = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	var mine []Disposition
	unread := 0
	for _, d := range s.dispositions {
		if containsInt(d.ToUserIDs, userID) {
			mine = append(mine, d)
			if d.Unread {
				unread++
			}
		}
	}
	slice, last := paginate(mine, page, s.pageSize)
	recs := make([]map[string]any, 0, len(slice))
	for _, d := range slice {
		recs = append(recs, s.dispositionRecordLocked(d))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": true,
		"desc":   unread,
		"data":   map[string]any{"current_page": page, "data": recs, "last_page": last},
	})
}

func (s *Server) handleDetailDis(w http.ResponseWriter, _ *http.Request, body []byte) {
	var in struct {
		DisID int `json:"dis_id"`
	}
	if err := json.Unmarshal(body, &in); err != nil {
		fail(w, http.StatusBadRequest, "invalid request")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.dispositions {
		d := &s.dispositions[i]
		if d.ID != in.DisID {
			continue
		}
		d.Unread = false
		writeJSON(w, http.StatusOK, map[string]any{
			"status":  true,
			"desc":    "OK",
			"data":    s.dispositionRecordLocked(*d),
			"pathDoc": d.File,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": true, "desc": "OK", "data": nil})
}

func (s *Server) handleNameOnDetail(w http.ResponseWriter, _ *http.Request, body []byte) {
	var in struct {
		UserID int    `json:"user_id"`
		SKPDID string `json:"skpd_id"`
	}
	if err := json.Unmarshal(body, &in); err != nil {
		fail(w, http.StatusBadRequest, "invalid request")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []map[string]any{}
	for _, u := range s.users {
		if u.ID == in.UserID || u.SKPD != in.SKPDID {
			continue
		}
		out = append(out, map[string]any{
			"user_id":   u.ID,
			"user_name": u.Name,
			"skpd_name": u.SKPDName,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": true, "desc": "OK", "data": out})
}

func (s *Server) handleForward(w http.ResponseWriter, _ *http.Request, body []byte) {
	var in struct {
		DisID       int    `json:"dis_id"`
		UserID      int    `json:"user_id"`
		Recipients  []int  `json:"recipients"`
		Instruction string `json:"instruction"`
		Passphrase  string `json:"passphrase"`
	}
	if err := json.Unmarshal(body, &in); err != nil {
		fail(w, http.StatusBadRequest, "invalid request")
		return
	}
	if len(in.Recipients) == 0 {
		writeJSON(w, http.StatusOK, map[string]any{"status": false, "desc": "Penerima wajib dipilih"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.userByIDLocked(in.UserID)
	if !ok || u.Passphrase != in.Passphrase {
		writeJSON(w, http.StatusOK, map[string]any{"status": false, "desc": "Passphrase salah"})
		return
	}
	for i := range s.dispositions {
		d := &s.dispositions[i]
		if d.ID != in.DisID {
			continue
		}
		d.Status = "dispath"
		d.Instruction = in.Instruction
		for _, r := range in.Recipients {
			if !containsInt(d.ToUserIDs, r) {
				d.ToUserIDs = append(d.ToUserIDs, r)
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": true, "desc": "Disposisi berhasil diteruskan"})
		return
	}
	fail(w, http.StatusNotFound, "Disposisi tidak ditemukan")
}
