// Package service contains the client-side application flows and stores.
package service

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"apptbook/internal/errs"
	"apptbook/internal/nav"
	"apptbook/internal/notify"
)

// LoginAPI is the slice of the transport the login flow uses.
type LoginAPI interface {
	// Login exchanges a username for a bearer token and a success message.
	Login(ctx context.Context, username string) (token, message string, err error)
}

// SessionWriter is the token sink populated on successful login.
type SessionWriter interface {
	SetToken(token string) error
}

// LoginFlow validates and submits credentials, populating the session on
// success. At most one credential exchange is in flight per flow.
type LoginFlow struct {
	api     LoginAPI
	session SessionWriter
	notify  notify.Notifier
	nav     nav.Navigator
	log     *zap.Logger

	mu       sync.Mutex
	inFlight bool
}

// NewLoginFlow constructs a LoginFlow with its collaborators.
func NewLoginFlow(api LoginAPI, session SessionWriter, n notify.Notifier, navigator nav.Navigator, log *zap.Logger) *LoginFlow {
	return &LoginFlow{api: api, session: session, notify: n, nav: navigator, log: log}
}

// Submit exchanges the username for a token. Empty input (after trimming)
// fails with a validation error before any network call. On success the
// session holds the token and navigation moves to the appointment route; on
// any failure the session is left untouched. A re-entrant Submit while one
// is pending returns ErrBusy without touching the session.
func (f *LoginFlow) Submit(ctx context.Context, username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return &errs.ValidationError{Field: "username", Reason: "username required"}
	}

	f.mu.Lock()
	if f.inFlight {
		f.mu.Unlock()
		return errs.ErrBusy
	}
	f.inFlight = true
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.inFlight = false
		f.mu.Unlock()
	}()

	token, message, err := f.api.Login(ctx, username)
	if err != nil {
		f.log.Warn("login failed", zap.String("username", username), zap.Error(err))
		f.notify.Error(errs.UserMessage(err))
		return err
	}

	if err := f.session.SetToken(token); err != nil {
		f.log.Error("persist token", zap.Error(err))
		f.notify.Error(errs.FallbackMessage)
		return err
	}

	f.notify.Success(messageOr(message, "logged in"))
	f.nav.NavigateTo(nav.RouteAppointments)
	return nil
}

// messageOr falls back when the server sent no message.
func messageOr(msg, fallback string) string {
	if msg != "" {
		return msg
	}
	return fallback
}
