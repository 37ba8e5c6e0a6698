package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ttd-cli/internal/api"
	"ttd-cli/internal/apperr"
	"ttd-cli/internal/mockapi"
	"ttd-cli/internal/model"
)

func newMock(t *testing.T) (*mockapi.Server, *api.Client) {
	t.Helper()
	m := mockapi.Seeded()
	srv := httptest.NewServer(m.Handler())
	t.Cleanup(srv.Close)
	return m, api.New(srv.URL+"/api/", api.WithHTTPClient(srv.Client()))
}

func rawServer(t *testing.T, h http.HandlerFunc) *api.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return api.New(srv.URL, api.WithHTTPClient(srv.Client()))
}

func budiQuery(page int) api.DocumentQuery {
	return api.DocumentQuery{UserID: 42, LevelID: "3", SKPD: "D1", Page: page}
}

func TestNew_NormalizesBaseURL(t *testing.T) {
	t.Parallel()

	if got := api.New("http://x/api").BaseURL(); got != "http://x/api/" {
		t.Fatalf("expected trailing slash, got %q", got)
	}
	if got := api.New("").BaseURL(); got != api.DefaultBaseURL {
		t.Fatalf("expected default base url, got %q", got)
	}
}

func TestLogin_ReturnsRawBody(t *testing.T) {
	t.Parallel()

	_, c := newMock(t)
	resp, err := c.Login(context.Background(), api.Credentials{Email: "budi", Password: "secret"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	data, ok := resp.Body["data"].(map[string]any)
	if !ok || data["token"] != "token-42" {
		t.Fatalf("unexpected body: %#v", resp.Body)
	}
}

func TestLogin_FailureUsesServerMessage(t *testing.T) {
	t.Parallel()

	_, c := newMock(t)
	_, err := c.Login(context.Background(), api.Credentials{Email: "budi", Password: "wrong"})
	var ae *apperr.APIError
	if !errors.As(err, &ae) {
		t.Fatalf("expected APIError, got %T %v", err, err)
	}
	if ae.StatusCode != http.StatusUnauthorized || ae.Message != "Email atau password salah" {
		t.Fatalf("unexpected error: %+v", ae)
	}
}

func TestLogin_UndecodableFailureFallsBack(t *testing.T) {
	t.Parallel()

	c := rawServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	})
	_, err := c.Login(context.Background(), api.Credentials{Email: "a", Password: "b"})
	if err == nil || err.Error() != "Login failed. Please check your credentials." {
		t.Fatalf("expected fallback message, got %v", err)
	}
}

func TestDo_FalsyStatusIsAPIError(t *testing.T) {
	t.Parallel()

	c := rawServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"0","desc":"Token expired"}`))
	})
	_, err := c.ListDocuments(context.Background(), budiQuery(1))
	if apperr.KindOf(err) != apperr.KindAPI || err.Error() != "Token expired" {
		t.Fatalf("expected api error with desc, got %v", err)
	}
}

func TestDo_InvalidJSONOn200(t *testing.T) {
	t.Parallel()

	c := rawServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	})
	_, err := c.ListDispositions(context.Background(), 42, 1)
	if err == nil || err.Error() != "invalid response from server" {
		t.Fatalf("expected invalid response error, got %v", err)
	}
}

func TestDo_TransportFailureIsNetworkError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := api.New(url)
	_, err := c.ListDispositions(context.Background(), 42, 1)
	if apperr.KindOf(err) != apperr.KindNetwork {
		t.Fatalf("expected network error, got %T %v", err, err)
	}
}

func TestDo_CanceledContext(t *testing.T) {
	t.Parallel()

	c := rawServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.ListDispositions(ctx, 42, 1)
	if !api.IsCanceled(err) {
		t.Fatalf("expected canceled error, got %v", err)
	}
}

func TestDo_SendsBearerAndRequestID(t *testing.T) {
	t.Parallel()

	var auth, reqID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		reqID = r.Header.Get("X-Request-ID")
		_, _ = w.Write([]byte(`{"status":true,"data":{"current_page":1,"data":[],"last_page":1}}`))
	}))
	t.Cleanup(srv.Close)

	c := api.New(srv.URL, api.WithHTTPClient(srv.Client()), api.WithToken(func() string { return "tok" }))
	if _, err := c.ListDocuments(context.Background(), budiQuery(1)); err != nil {
		t.Fatalf("list: %v", err)
	}
	if auth != "Bearer tok" {
		t.Fatalf("expected bearer header, got %q", auth)
	}
	if len(reqID) != 36 {
		t.Fatalf("expected uuid request id, got %q", reqID)
	}

	c = api.New(srv.URL, api.WithHTTPClient(srv.Client()), api.WithToken(func() string { return "" }))
	if _, err := c.ListDocuments(context.Background(), budiQuery(1)); err != nil {
		t.Fatalf("list: %v", err)
	}
	if auth != "" {
		t.Fatalf("expected no auth header without token, got %q", auth)
	}
}

func TestListDocuments_QueryAndPaging(t *testing.T) {
	t.Parallel()

	m, c := newMock(t)
	m.SetPageSize(3)
	page, err := c.ListDocuments(context.Background(), budiQuery(2))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	q := m.LastQuery(mockapi.EndpointGetDoc)
	if q.Get("user_id") != "42" || q.Get("user_level_id") != "3" || q.Get("skpd_generate") != "D1" || q.Get("page") != "2" {
		t.Fatalf("unexpected query: %v", q)
	}
	if int(page.CurrentPage) != 2 || int(page.LastPage) != 2 || len(page.Data) != 1 {
		t.Fatalf("unexpected page: %+v", page)
	}
	s := page.Data[0].Summary()
	if s.Title != "Service Agreement" || s.Status != model.StatusSigned || s.SenderName != "Sarah Johnson" {
		t.Fatalf("unexpected summary: %+v", s)
	}
}

func TestDocumentDetail_FiltersByContentID(t *testing.T) {
	t.Parallel()

	m, c := newMock(t)
	got, err := c.DocumentDetail(context.Background(), budiQuery(3), 2)
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	q := m.LastQuery(mockapi.EndpointGetDoc)
	if q.Get("content_id") != "2" || q.Has("page") {
		t.Fatalf("unexpected query: %v", q)
	}
	if len(got.Records) != 1 || int(got.Records[0].ContentID) != 2 {
		t.Fatalf("unexpected records: %+v", got.Records)
	}
	d := got.Records[0].Detail(got.PathDoc, c.BaseURL())
	if !strings.HasSuffix(d.FileURL, "/uploads/purchase-agreement.pdf") || strings.Contains(d.FileURL, "/api/") {
		t.Fatalf("unexpected file url %q", d.FileURL)
	}
}

func TestSignAndReject_Bodies(t *testing.T) {
	t.Parallel()

	m, c := newMock(t)
	res, err := c.Sign(context.Background(), 42, 1, "123456")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if res.Message != "Dokumen berhasil ditandatangani" {
		t.Fatalf("unexpected message %q", res.Message)
	}
	if got := string(m.LastBody(mockapi.EndpointSign)); got != `{"user_id":42,"content_id":1,"passphrase":"123456"}` {
		t.Fatalf("unexpected sign body %s", got)
	}

	if _, err := c.Reject(context.Background(), 2, "Wrong amount"); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if got := string(m.LastBody(mockapi.EndpointRevoke)); got != `{"content_id":2,"reason":"Wrong amount"}` {
		t.Fatalf("unexpected revoke body %s", got)
	}
	if m.DocumentStatus(2) != "rejected" {
		t.Fatalf("expected document 2 rejected")
	}
}

func TestSign_RejectedByServer(t *testing.T) {
	t.Parallel()

	m, c := newMock(t)
	_, err := c.Sign(context.Background(), 42, 1, "000000")
	if err == nil || err.Error() != "Passphrase salah" {
		t.Fatalf("expected passphrase error, got %v", err)
	}
	if m.DocumentStatus(1) != "active" {
		t.Fatalf("document should remain active")
	}
}

func TestListDispositions_UnreadFromDesc(t *testing.T) {
	t.Parallel()

	_, c := newMock(t)
	page, err := c.ListDispositions(context.Background(), 42, 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Unread != 2 || len(page.Data) != 3 {
		t.Fatalf("unexpected page: unread=%d len=%d", page.Unread, len(page.Data))
	}
	it := page.Data[0].Item()
	if it.Type != model.DispositionUrgent || it.AgendaNo != "A-17" || it.Originator.Name != "Sarah Johnson" {
		t.Fatalf("unexpected item: %+v", it)
	}
	if page.Data[1].Item().AgendaNo != "" {
		t.Fatalf("null agenda should map to empty")
	}
}

func TestDispositionDetail_MissingRecord(t *testing.T) {
	t.Parallel()

	_, c := newMock(t)
	got, err := c.DispositionDetail(context.Background(), 999)
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	if got.Record != nil {
		t.Fatalf("expected nil record, got %+v", got.Record)
	}
}

func TestRecipients_BodyAndEmpty(t *testing.T) {
	t.Parallel()

	m, c := newMock(t)
	recs, err := c.Recipients(context.Background(), 42, "D1")
	if err != nil {
		t.Fatalf("recipients: %v", err)
	}
	if got := string(m.LastBody(mockapi.EndpointNameOnDetail)); got != `{"user_id":42,"skpd_id":"D1"}` {
		t.Fatalf("unexpected body %s", got)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 recipients, got %d", len(recs))
	}

	recs, err = c.Recipients(context.Background(), 42, "NOPE")
	if err != nil {
		t.Fatalf("recipients: %v", err)
	}
	if recs == nil || len(recs) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", recs)
	}
}

func TestForward_Body(t *testing.T) {
	t.Parallel()

	m, c := newMock(t)
	_, err := c.Forward(context.Background(), api.ForwardInput{
		DispositionID: 11, UserID: 42, Recipients: []int{7, 8}, Instruction: "Follow up", Passphrase: "123456",
	})
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	var body map[string]any
	if err := json.Unmarshal(m.LastBody(mockapi.EndpointForward), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["dis_id"] != float64(11) || body["instruction"] != "Follow up" || len(body["recipients"].([]any)) != 2 {
		t.Fatalf("unexpected body %#v", body)
	}
	d, _ := m.Disposition(11)
	if d.Status != "dispath" {
		t.Fatalf("expected forwarded status, got %q", d.Status)
	}
}

func TestFlexInt_AcceptsStrings(t *testing.T) {
	t.Parallel()

	var rec api.DocumentRecord
	if err := json.Unmarshal([]byte(`{"content_id":"17","user_to":42,"user_from":null}`), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if rec.ContentID != 17 || rec.UserTo != 42 || rec.UserFrom != 0 {
		t.Fatalf("unexpected record %+v", rec)
	}
}

func TestResolveFileURL(t *testing.T) {
	t.Parallel()

	cases := []struct{ base, file, want string }{
		{"https://h.example/api/", "uploads/a.pdf", "https://h.example/uploads/a.pdf"},
		{"https://h.example/api/", "/uploads/a.pdf", "https://h.example/uploads/a.pdf"},
		{"https://h.example/api/", "https://cdn.example/a.pdf", "https://cdn.example/a.pdf"},
		{"https://h.example/api/", "", ""},
	}
	for _, tc := range cases {
		if got := api.ResolveFileURL(tc.base, tc.file); got != tc.want {
			t.Fatalf("ResolveFileURL(%q, %q) = %q, want %q", tc.base, tc.file, got, tc.want)
		}
	}
}
