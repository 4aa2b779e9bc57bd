package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"apptbook/internal/model"
	"apptbook/internal/notify"
)

// DirectoryAPI is the slice of the transport the user directory uses.
type DirectoryAPI interface {
	Users(ctx context.Context) ([]model.User, error)
}

// UserDirectory caches the invitable users as selectable options. It is the
// only owner of the user list; the cache is read-only toward callers and
// re-fetchable at any time.
type UserDirectory struct {
	api    DirectoryAPI
	notify notify.Notifier
	log    *zap.Logger

	mu      sync.Mutex
	options []model.Option
}

// NewUserDirectory constructs an empty directory.
func NewUserDirectory(api DirectoryAPI, n notify.Notifier, log *zap.Logger) *UserDirectory {
	return &UserDirectory{api: api, notify: n, log: log}
}

// Load fetches all visible users and projects them into options. On any
// failure the prior list stays in place, so a transient error does not blank
// an already-populated selector.
func (d *UserDirectory) Load(ctx context.Context) error {
	users, err := d.api.Users(ctx)
	if err != nil {
		d.log.Warn("load users", zap.Error(err))
		d.notify.Error("could not load the user list")
		return err
	}

	opts := make([]model.Option, 0, len(users))
	for _, u := range users {
		opts = append(opts, model.Option{Value: string(u.ID), Label: u.Username})
	}

	d.mu.Lock()
	d.options = opts
	d.mu.Unlock()
	return nil
}

// Options returns the last successfully loaded projection. Never blocks.
func (d *UserDirectory) Options() []model.Option {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]model.Option(nil), d.options...)
}
