// Package nav gates views behind authentication.
package nav

import (
	"fmt"
	"strconv"
	"strings"
)

type Route string

const (
	RouteLogin        Route = "login"
	RouteHome         Route = "home"
	RouteDocuments    Route = "documents"
	RouteDocument     Route = "document"
	RouteDispositions Route = "dispositions"
	RouteDisposition  Route = "disposition"
	RouteProfile      Route = "profile"
)

// Protected reports whether r requires a signed-in user.
func (r Route) Protected() bool {
	return r != RouteLogin
}

func (r Route) takesID() bool {
	return r == RouteDocument || r == RouteDisposition
}

func (r Route) known() bool {
	switch r {
	case RouteLogin, RouteHome, RouteDocuments, RouteDocument, RouteDispositions, RouteDisposition, RouteProfile:
		return true
	}
	return false
}

// aliases maps the web client's path segments onto routes: the bare segment
// is the list, the segment with an id is the detail.
var aliases = map[string][2]Route{
	"requests":  {RouteDocuments, RouteDocument},
	"disposisi": {RouteDispositions, RouteDisposition},
}

// Location is a route plus the id detail routes carry.
type Location struct {
	Route Route
	ID    int
}

var (
	Login = Location{Route: RouteLogin}
	Home  = Location{Route: RouteHome}
)

func (l Location) Path() string {
	if l.Route.takesID() {
		return fmt.Sprintf("/%s/%d", l.Route, l.ID)
	}
	if l.Route == RouteHome {
		return "/"
	}
	return "/" + string(l.Route)
}

func (l Location) String() string { return l.Path() }

// Parse reads "/", "/documents", "/document/12" and the like, plus the web
// client's "/requests/12" and "/disposisi/5".
func Parse(path string) (Location, error) {
	p := strings.Trim(strings.TrimSpace(path), "/")
	if p == "" {
		return Home, nil
	}
	parts := strings.Split(p, "/")
	r := Route(parts[0])
	if a, ok := aliases[parts[0]]; ok {
		r = a[0]
		if len(parts) > 1 {
			r = a[1]
		}
	}
	if !r.known() {
		return Location{}, fmt.Errorf("unknown route %q", path)
	}
	if !r.takesID() {
		if len(parts) != 1 {
			return Location{}, fmt.Errorf("unknown route %q", path)
		}
		return Location{Route: r}, nil
	}
	if len(parts) != 2 {
		return Location{}, fmt.Errorf("route %q needs an id", path)
	}
	id, err := strconv.Atoi(parts[1])
	if err != nil || id <= 0 {
		return Location{}, fmt.Errorf("invalid id in %q", path)
	}
	return Location{Route: r, ID: id}, nil
}
