// Package mockapi is an in-process stand-in for the signing backend. It speaks
// the same {status, desc, data} envelope and records every call so tests can
// assert on request counts and bodies.
package mockapi

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/gorilla/mux"
)

// Endpoint names as used by Calls/LastBody.
const (
	EndpointLogin        = "login"
	EndpointGetDoc       = "getDoc"
	EndpointSign         = "ttd"
	EndpointRevoke       = "revoke"
	EndpointGetDis       = "getDis"
	EndpointDetailDis    = "detailDis"
	EndpointNameOnDetail = "nameOnDetail"
	EndpointForward      = "forwardDisposisi"
)

type User struct {
	ID         int
	Email      string
	Password   string
	Passphrase string
	Name       string
	Username   string
	SKPD       string
	SKPDName   string
	Level      string
	Token      string
}

type Document struct {
	ID          int
	Title       string
	Status      string
	CreatedAt   string
	FromUserID  int
	ToUserID    int
	Type        string
	Description string
	File        string
}

type Disposition struct {
	ID          int
	Subject     string
	FromLetter  string
	LetterNo    string
	LetterDate  string
	AcceptDate  string
	AgendaNo    string
	Instruction string
	CC          string
	FromUserID  int
	ToUserIDs   []int
	File        string
	Status      string
	Type        string
	SKPD        string
	Unread      bool
}

// Failure makes the next call to an endpoint fail. HTTPStatus 0 keeps 200 and
// signals failure through the status flag only.
type Failure struct {
	HTTPStatus int
	Desc       string
}

// LoginShape selects how the login response is laid out.
type LoginShape int

const (
	LoginNested LoginShape = iota
	LoginFlat
)

type Server struct {
	mu sync.Mutex

	users        []User
	documents    []Document
	dispositions []Disposition

	pageSize   int
	loginShape LoginShape

	calls   map[string]int
	bodies  map[string][]byte
	queries map[string]url.Values
	fail    map[string]Failure
}

func New() *Server {
	return &Server{
		pageSize: 10,
		calls:    map[string]int{},
		bodies:   map[string][]byte{},
		queries:  map[string]url.Values{},
		fail:     map[string]Failure{},
	}
}

func (s *Server) AddUser(u User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.Token == "" {
		u.Token = "token-" + strconv.Itoa(u.ID)
	}
	s.users = append(s.users, u)
}

func (s *Server) AddDocument(d Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents = append(s.documents, d)
}

func (s *Server) AddDisposition(d Disposition) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dispositions = append(s.dispositions, d)
}

func (s *Server) SetPageSize(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n > 0 {
		s.pageSize = n
	}
}

func (s *Server) SetLoginShape(shape LoginShape) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loginShape = shape
}

// FailNext arranges for the next call to endpoint to fail with f.
func (s *Server) FailNext(endpoint string, f Failure) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[endpoint] = f
}

// SetDocumentStatus changes a document behind the client's back.
func (s *Server) SetDocumentStatus(id int, status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.documents {
		if s.documents[i].ID == id {
			s.documents[i].Status = status
		}
	}
}

func (s *Server) DocumentStatus(id int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.documents {
		if d.ID == id {
			return d.Status
		}
	}
	return ""
}

func (s *Server) Disposition(id int) (Disposition, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.dispositions {
		if d.ID == id {
			return d, true
		}
	}
	return Disposition{}, false
}

func (s *Server) Calls(endpoint string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[endpoint]
}

func (s *Server) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		n += c
	}
	return n
}

func (s *Server) LastBody(endpoint string) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.bodies[endpoint]...)
}

func (s *Server) LastQuery(endpoint string) url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queries[endpoint]
}

// Handler serves the backend under /api.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/login", s.record(EndpointLogin, s.handleLogin)).Methods(http.MethodPost)
	api.HandleFunc("/getDoc", s.record(EndpointGetDoc, s.handleGetDoc)).Methods(http.MethodGet)
	api.HandleFunc("/ttd", s.record(EndpointSign, s.handleSign)).Methods(http.MethodPost)
	api.HandleFunc("/revoke", s.record(EndpointRevoke, s.handleRevoke)).Methods(http.MethodPost)
	api.HandleFunc("/getDis", s.record(EndpointGetDis, s.handleGetDis)).Methods(http.MethodGet)
	api.HandleFunc("/detailDis", s.record(EndpointDetailDis, s.handleDetailDis)).Methods(http.MethodPost)
	api.HandleFunc("/nameOnDetail", s.record(EndpointNameOnDetail, s.handleNameOnDetail)).Methods(http.MethodPost)
	api.HandleFunc("/forwardDisposisi", s.record(EndpointForward, s.handleForward)).Methods(http.MethodPost)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]any{"status": false, "desc": "not found"})
	})
	return r
}

type handlerFunc func(w http.ResponseWriter, r *http.Request, body []byte)

func (s *Server) record(endpoint string, h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		s.mu.Lock()
		s.calls[endpoint]++
		s.bodies[endpoint] = body
		s.queries[endpoint] = r.URL.Query()
		f, failing := s.fail[endpoint]
		delete(s.fail, endpoint)
		s.mu.Unlock()

		if failing {
			code := f.HTTPStatus
			if code == 0 {
				code = http.StatusOK
			}
			writeJSON(w, code, map[string]any{"status": false, "desc": f.Desc})
			return
		}
		h(w, r, body)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func fail(w http.ResponseWriter, code int, desc string) {
	writeJSON(w, code, map[string]any{"status": false, "desc": desc})
}

func queryInt(q url.Values, k string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(q.Get(k)))
	return n
}

func (s *Server) userByIDLocked(id int) (User, bool) {
	for _, u := range s.users {
		if u.ID == id {
			return u, true
		}
	}
	return User{}, false
}

func paginate[T any](xs []T, page, size int) ([]T, int) {
	if size <= 0 {
		size = 10
	}
	last := (len(xs) + size - 1) / size
	if last < 1 {
		last = 1
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * size
	if start >= len(xs) {
		return []T{}, last
	}
	end := start + size
	if end > len(xs) {
		end = len(xs)
	}
	return xs[start:end], last
}
