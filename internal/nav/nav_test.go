package nav

import "testing"

type fakeTokens struct{ tok string }

func (f *fakeTokens) Token() string { return f.tok }

func TestGate_RedirectsWithoutToken(t *testing.T) {
	t.Parallel()

	g := NewGate(&fakeTokens{})
	d := g.Authorize(RouteAppointments)
	if d.Allow {
		t.Fatalf("protected route must be denied without a token")
	}
	if d.RedirectTo != RouteLogin {
		t.Fatalf("want redirect to %q, got %q", RouteLogin, d.RedirectTo)
	}
}

func TestGate_AllowsWithToken(t *testing.T) {
	t.Parallel()

	g := NewGate(&fakeTokens{tok: "abc123"})
	if d := g.Authorize(RouteAppointments); !d.Allow {
		t.Fatalf("protected route must be allowed with a token")
	}
}

func TestGate_LoginRouteAlwaysAllowed(t *testing.T) {
	t.Parallel()

	g := NewGate(&fakeTokens{})
	if d := g.Authorize(RouteLogin); !d.Allow {
		t.Fatalf("login route must never be gated")
	}
}

func TestGate_ReEvaluatesEveryCall(t *testing.T) {
	t.Parallel()

	tokens := &fakeTokens{tok: "abc123"}
	g := NewGate(tokens)
	if d := g.Authorize(RouteAppointments); !d.Allow {
		t.Fatalf("first visit should be allowed")
	}

	// token cleared between navigations
	tokens.tok = ""
	if d := g.Authorize(RouteAppointments); d.Allow {
		t.Fatalf("revisit after clear must re-redirect")
	}
}
