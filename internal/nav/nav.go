// Package nav models client route transitions and the auth gate in front of
// protected routes.
package nav

// Route is a client-side destination.
type Route string

const (
	RouteLogin        Route = "/login"
	RouteAppointments Route = "/appointment"
)

// Protected reports whether a route requires an authenticated session.
func (r Route) Protected() bool { return r == RouteAppointments }

// Navigator receives route transitions triggered by flows.
type Navigator interface {
	NavigateTo(route Route)
}

// NavigatorFunc adapts a function to the Navigator interface.
type NavigatorFunc func(route Route)

func (f NavigatorFunc) NavigateTo(route Route) { f(route) }

// TokenSource exposes the current session token; "" means absent.
type TokenSource interface {
	Token() string
}

// Decision is the outcome of a gate check.
type Decision struct {
	Allow      bool
	RedirectTo Route // set when Allow is false
}

// Gate denies protected routes unless a session token is present. The
// session is re-read on every Authorize call; decisions are never cached, so
// a cleared token on revisit always re-redirects.
type Gate struct {
	tokens TokenSource
}

func NewGate(tokens TokenSource) *Gate { return &Gate{tokens: tokens} }

// Authorize allows the route, or redirects to the login route when a
// protected route is requested without a token. Read-only; no side effects.
func (g *Gate) Authorize(route Route) Decision {
	if !route.Protected() {
		return Decision{Allow: true}
	}
	if g.tokens.Token() == "" {
		return Decision{RedirectTo: RouteLogin}
	}
	return Decision{Allow: true}
}
