package nav

type State int

const (
	Unauthenticated State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "unauthenticated"
}

type DecisionKind int

const (
	// Render shows the requested location.
	Render DecisionKind = iota
	// Redirect replaces the request with Decision.To.
	Redirect
	// Loading shows a neutral placeholder while the session is restored.
	Loading
)

type Decision struct {
	Kind DecisionKind
	To   Location
}

// Guard is the two-state auth machine. Restoring is transient and never
// persisted. A Guard is owned by one view loop and is not safe for concurrent
// use.
type Guard struct {
	state     State
	restoring bool
	landing   Location
}

// NewGuard starts Unauthenticated with restoration in flight.
func NewGuard() *Guard {
	return &Guard{state: Unauthenticated, restoring: true, landing: Home}
}

func (g *Guard) State() State    { return g.state }
func (g *Guard) Restoring() bool { return g.restoring }

// Restored ends the restoring phase.
func (g *Guard) Restored(authenticated bool) {
	g.restoring = false
	if authenticated {
		g.state = Authenticated
	} else {
		g.state = Unauthenticated
	}
}

// Resolve decides what to show for a requested location.
func (g *Guard) Resolve(to Location) Decision {
	if g.restoring {
		return Decision{Kind: Loading, To: to}
	}
	switch {
	case to.Route.Protected() && g.state == Unauthenticated:
		return Decision{Kind: Redirect, To: Login}
	case !to.Route.Protected() && g.state == Authenticated:
		return Decision{Kind: Redirect, To: g.landing}
	default:
		return Decision{Kind: Render, To: to}
	}
}

// OnLogin records a successful login and returns where to go next.
func (g *Guard) OnLogin() Decision {
	g.restoring = false
	g.state = Authenticated
	return Decision{Kind: Redirect, To: g.landing}
}

// OnLogout records a logout; the login view comes next.
func (g *Guard) OnLogout() Decision {
	g.restoring = false
	g.state = Unauthenticated
	return Decision{Kind: Redirect, To: Login}
}
