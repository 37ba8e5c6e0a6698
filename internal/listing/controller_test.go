package listing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"ttd-cli/internal/api"
	"ttd-cli/internal/mockapi"
	"ttd-cli/internal/model"
)

func budi() model.Session {
	return model.Session{
		Identity: &model.UserIdentity{UserID: 42, Name: "Budi", SKPD: "D1", LevelID: "3"},
		Token:    "t",
	}
}

func TestDocuments_ThreeItemsTwoPages(t *testing.T) {
	t.Parallel()

	var gotPage string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPage = r.URL.Query().Get("page")
		_, _ = w.Write([]byte(`{"status":true,"data":{"current_page":1,"last_page":2,"data":[
			{"content_id":1,"content_title":"A","content_status":"active"},
			{"content_id":2,"content_title":"B","content_status":"approved"},
			{"content_id":3,"content_title":"C","content_status":"active"}]}}`))
	}))
	t.Cleanup(srv.Close)

	c := NewDocuments(api.New(srv.URL, api.WithHTTPClient(srv.Client())), budi)
	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if gotPage != "1" {
		t.Fatalf("expected page=1 query, got %q", gotPage)
	}
	if c.TotalPages() != 2 || len(c.Visible()) != 3 {
		t.Fatalf("unexpected state total=%d visible=%d", c.TotalPages(), len(c.Visible()))
	}
	want := []PageLink{{Page: 1, Current: true}, {Page: 2}}
	if got := c.PageLinks(); !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected links %+v", got)
	}
	if !HasNext(c.CurrentPage(), c.TotalPages()) || HasPrev(c.CurrentPage()) {
		t.Fatalf("page 2 should be reachable from page 1")
	}
}

func TestSearch_FiltersLoadedPageWithoutFetching(t *testing.T) {
	t.Parallel()

	calls := 0
	c := New(func(_ context.Context, page int) (Page[model.DispositionItem], error) {
		calls++
		return Page[model.DispositionItem]{
			Items: []model.DispositionItem{
				{ID: 1, Subject: "Undangan Rapat", SourceLetterRef: "Setda", LetterNo: "005/1"},
				{ID: 2, Subject: "Laporan", SourceLetterRef: "BPKAD", LetterNo: "900/2", Instruction: "Segera tindak lanjuti"},
			},
			CurrentPage: page,
			TotalPages:  3,
		}, nil
	}, DispositionFields)

	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	cases := map[string][]int{
		"":          {1, 2},
		"RAPAT":     {1},
		"bpkad":     {2},
		"900/":      {2},
		"tindak":    {2},
		"nothing":   {},
		"  setda  ": {1},
	}
	for q, ids := range cases {
		c.SetSearch(q)
		var got []int
		for _, it := range c.Visible() {
			got = append(got, it.ID)
		}
		if len(got) != len(ids) || (len(ids) > 0 && !reflect.DeepEqual(got, ids)) {
			t.Fatalf("search %q: got %v want %v", q, got, ids)
		}
	}
	if calls != 1 {
		t.Fatalf("search must not fetch, calls=%d", calls)
	}
}

func TestSetPage_ClearsSearch(t *testing.T) {
	t.Parallel()

	c := New(func(_ context.Context, page int) (Page[int], error) {
		return Page[int]{Items: []int{page}, CurrentPage: page, TotalPages: 5}, nil
	}, nil)
	ctx := context.Background()
	if err := c.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	for _, p := range []int{2, 5, 1, 3} {
		c.SetSearch("something")
		if err := c.GoTo(ctx, p); err != nil {
			t.Fatalf("goto %d: %v", p, err)
		}
		if c.Search() != "" {
			t.Fatalf("search not cleared after moving to page %d", p)
		}
		if c.CurrentPage() != p || c.Items()[0] != p {
			t.Fatalf("unexpected page state: page=%d items=%v", c.CurrentPage(), c.Items())
		}
	}
	if err := c.GoTo(ctx, 0); err != nil || c.CurrentPage() != 1 {
		t.Fatalf("page below 1 should clamp, got %d err=%v", c.CurrentPage(), err)
	}
}

func TestApply_FailureKeepsPreviousItems(t *testing.T) {
	t.Parallel()

	fail := false
	c := New(func(_ context.Context, page int) (Page[string], error) {
		if fail {
			return Page[string]{}, errors.New("offline")
		}
		return Page[string]{Items: []string{"a", "b"}, TotalPages: 2}, nil
	}, func(s string) []string { return []string{s} })
	ctx := context.Background()
	if err := c.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	fail = true
	if err := c.GoTo(ctx, 2); err == nil {
		t.Fatalf("expected error")
	}
	if got := c.Items(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("previous items should stay visible, got %v", got)
	}
	if c.Loading() {
		t.Fatalf("loading flag should clear after failure")
	}
}

func TestApply_DropsStaleResults(t *testing.T) {
	t.Parallel()

	c := New(func(_ context.Context, page int) (Page[int], error) {
		return Page[int]{Items: []int{page}, TotalPages: 9}, nil
	}, nil)
	ctx := context.Background()

	first := c.SetPage(2)
	second := c.SetPage(3)
	p2, _ := c.Fetch(ctx, first)
	p3, _ := c.Fetch(ctx, second)

	if err := c.Apply(second, p3, nil); err != nil {
		t.Fatalf("apply latest: %v", err)
	}
	if err := c.Apply(first, p2, nil); !errors.Is(err, ErrStale) {
		t.Fatalf("expected ErrStale, got %v", err)
	}
	if got := c.Items(); len(got) != 1 || got[0] != 3 {
		t.Fatalf("stale result applied: %v", got)
	}
}

func TestLinks(t *testing.T) {
	t.Parallel()

	gap := PageLink{Gap: true}
	cases := []struct {
		current, total int
		want           []PageLink
	}{
		{1, 1, []PageLink{{Page: 1, Current: true}}},
		{1, 5, []PageLink{{Page: 1, Current: true}, {Page: 2}, gap, {Page: 5}}},
		{5, 10, []PageLink{{Page: 1}, gap, {Page: 4}, {Page: 5, Current: true}, {Page: 6}, gap, {Page: 10}}},
		{10, 10, []PageLink{{Page: 1}, gap, {Page: 9}, {Page: 10, Current: true}}},
		{3, 4, []PageLink{{Page: 1}, {Page: 2}, {Page: 3, Current: true}, {Page: 4}}},
	}
	for _, tc := range cases {
		if got := Links(tc.current, tc.total); !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("Links(%d, %d) = %+v, want %+v", tc.current, tc.total, got, tc.want)
		}
	}
}

func TestDispositions_UnreadNotice(t *testing.T) {
	t.Parallel()

	m := mockapi.Seeded()
	srv := httptest.NewServer(m.Handler())
	t.Cleanup(srv.Close)

	c := NewDispositions(api.New(srv.URL+"/api/", api.WithHTTPClient(srv.Client())), budi)
	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Notice() != 2 || len(c.Items()) != 3 {
		t.Fatalf("unexpected notice=%d items=%d", c.Notice(), len(c.Items()))
	}
	if q := m.LastQuery(mockapi.EndpointGetDis); q.Get("user_id") != "42" || q.Get("page") != "1" {
		t.Fatalf("unexpected query %v", q)
	}
}

func TestStats(t *testing.T) {
	t.Parallel()

	docs := []model.DocumentSummary{
		{Status: model.StatusPending}, {Status: model.StatusPending},
		{Status: model.StatusSigned}, {Status: model.StatusRejected}, {Status: "draft"},
	}
	got := Stats(docs)
	want := DocumentStats{Pending: 2, Signed: 1, Rejected: 1, Total: 5}
	if got != want {
		t.Fatalf("Stats = %+v, want %+v", got, want)
	}
	if len(Pending(docs)) != 2 {
		t.Fatalf("expected 2 pending")
	}
}
