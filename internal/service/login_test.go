package service

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"testing"

	"go.uber.org/zap"

	"apptbook/internal/errs"
	"apptbook/internal/nav"
	"apptbook/internal/notify"
)

type fakeLoginAPI struct {
	mu      sync.Mutex
	calls   int
	gotUser string

	token   string
	message string
	err     error
	gate    chan struct{} // when set, Login blocks until closed
}

func (f *fakeLoginAPI) Login(_ context.Context, username string) (string, string, error) {
	f.mu.Lock()
	f.calls++
	f.gotUser = username
	gate := f.gate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return f.token, f.message, f.err
}

func (f *fakeLoginAPI) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeSession struct {
	mu     sync.Mutex
	tok    string
	sets   int
	setErr error
}

func (f *fakeSession) SetToken(tok string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.tok = tok
	f.sets++
	return nil
}

type routeRecorder struct {
	mu     sync.Mutex
	routes []nav.Route
}

func (r *routeRecorder) NavigateTo(route nav.Route) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, route)
}

func (r *routeRecorder) visited() []nav.Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]nav.Route(nil), r.routes...)
}

func newLoginFlow(api *fakeLoginAPI) (*LoginFlow, *fakeSession, *notify.Recorder, *routeRecorder) {
	sess := &fakeSession{}
	rec := &notify.Recorder{}
	routes := &routeRecorder{}
	return NewLoginFlow(api, sess, rec, routes, zap.NewNop()), sess, rec, routes
}

func TestLoginFlow_EmptyUsernameIsValidation(t *testing.T) {
	t.Parallel()

	api := &fakeLoginAPI{}
	flow, sess, _, routes := newLoginFlow(api)

	for _, in := range []string{"", "   ", "\t\n"} {
		err := flow.Submit(context.Background(), in)
		var ve *errs.ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("input %q: want validation error, got %v", in, err)
		}
		if ve.Field != "username" {
			t.Fatalf("validation field: got %q", ve.Field)
		}
	}
	if api.callCount() != 0 {
		t.Fatalf("no network call may be made for invalid input")
	}
	if sess.tok != "" || len(routes.visited()) != 0 {
		t.Fatalf("session and navigation must be untouched")
	}
}

func TestLoginFlow_SuccessSetsTokenAndNavigates(t *testing.T) {
	t.Parallel()

	api := &fakeLoginAPI{token: "abc123", message: "welcome back"}
	flow, sess, rec, routes := newLoginFlow(api)

	if err := flow.Submit(context.Background(), "  alice  "); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if api.gotUser != "alice" {
		t.Fatalf("username must be trimmed before the exchange, got %q", api.gotUser)
	}
	if sess.tok != "abc123" {
		t.Fatalf("session token: got %q", sess.tok)
	}
	if got := routes.visited(); len(got) != 1 || got[0] != nav.RouteAppointments {
		t.Fatalf("want navigation to appointments, got %v", got)
	}
	if got := rec.Successes(); len(got) != 1 || got[0] != "welcome back" {
		t.Fatalf("success notification: got %v", got)
	}
}

func TestLoginFlow_LogicalFailureLeavesSessionUntouched(t *testing.T) {
	t.Parallel()

	api := &fakeLoginAPI{err: &errs.LogicalError{Message: "unknown user"}}
	flow, sess, rec, routes := newLoginFlow(api)

	if err := flow.Submit(context.Background(), "ghost"); err == nil {
		t.Fatalf("want error")
	}
	if sess.sets != 0 {
		t.Fatalf("session must not be written on failure")
	}
	if len(routes.visited()) != 0 {
		t.Fatalf("no navigation on failure")
	}
	if got := rec.Errors(); len(got) != 1 || got[0] != "unknown user" {
		t.Fatalf("want the server message surfaced, got %v", got)
	}
}

func TestLoginFlow_TransportFailureUsesFallbackMessage(t *testing.T) {
	t.Parallel()

	api := &fakeLoginAPI{err: &errs.TransportError{Err: errors.New("refused")}}
	flow, sess, rec, _ := newLoginFlow(api)

	if err := flow.Submit(context.Background(), "alice"); err == nil {
		t.Fatalf("want error")
	}
	if sess.sets != 0 {
		t.Fatalf("session must not be written on transport failure")
	}
	if got := rec.Errors(); len(got) != 1 || got[0] != errs.FallbackMessage {
		t.Fatalf("want generic fallback, got %v", got)
	}
}

func TestLoginFlow_ReentrantSubmitReturnsBusy(t *testing.T) {
	t.Parallel()

	gate := make(chan struct{})
	api := &fakeLoginAPI{token: "abc123", gate: gate}
	flow, sess, _, _ := newLoginFlow(api)

	done := make(chan error, 1)
	go func() { done <- flow.Submit(context.Background(), "alice") }()

	// wait until the first exchange is in flight
	for api.callCount() == 0 {
		runtime.Gosched()
	}

	if err := flow.Submit(context.Background(), "bob"); !errors.Is(err, errs.ErrBusy) {
		t.Fatalf("want ErrBusy, got %v", err)
	}

	close(gate)
	if err := <-done; err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if sess.tok != "abc123" {
		t.Fatalf("first submit must win, got %q", sess.tok)
	}
	if api.callCount() != 1 {
		t.Fatalf("only one exchange may reach the network, got %d", api.callCount())
	}
}
