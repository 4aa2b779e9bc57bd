package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"apptbook/internal/errs"
	"apptbook/internal/model"
	"apptbook/internal/notify"
)

// AppointmentAPI is the slice of the transport the appointment store uses.
type AppointmentAPI interface {
	Appointments(ctx context.Context) ([]model.Appointment, error)
	CreateAppointment(ctx context.Context, req model.CreateAppointmentRequest) (model.Appointment, string, error)
}

// AppointmentStore caches the authenticated user's appointments. It is the
// single writer of the collection; Load replaces the cache wholesale and is
// the source of truth, Create appends optimistically with id de-duplication
// so a record never appears twice regardless of completion order.
type AppointmentStore struct {
	api    AppointmentAPI
	notify notify.Notifier
	log    *zap.Logger

	mu      sync.Mutex
	cache   []model.Appointment
	loading int    // in-flight loads
	loadSeq uint64 // generation; superseded load results are discarded
}

// NewAppointmentStore constructs an empty store.
func NewAppointmentStore(api AppointmentAPI, n notify.Notifier, log *zap.Logger) *AppointmentStore {
	return &AppointmentStore{api: api, notify: n, log: log}
}

// Load fetches the full collection and replaces the cache (authoritative
// refresh, backend order preserved). On failure the cache is left as-is and
// the message is surfaced. A result overtaken by a newer Load is discarded
// rather than applied.
func (s *AppointmentStore) Load(ctx context.Context) error {
	s.mu.Lock()
	s.loading++
	s.loadSeq++
	seq := s.loadSeq
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.loading--
		s.mu.Unlock()
	}()

	appts, err := s.api.Appointments(ctx)
	if err != nil {
		s.log.Warn("load appointments", zap.Error(err))
		s.notify.Error(errs.UserMessage(err))
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.loadSeq {
		s.log.Debug("discarding superseded load result", zap.Uint64("seq", seq))
		return nil
	}
	s.cache = appts
	return nil
}

// Loading reports whether a load is in flight. Views suppress the empty
// message while true to avoid a false "no appointments" flash.
func (s *AppointmentStore) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading > 0
}

// Create sends the draft in wire form, then reconciles: the server-echoed
// record is appended only if its id is not already cached, and an
// authoritative Load follows before the create is considered settled. On
// failure the cache is untouched and the caller's draft stays intact for
// resubmission.
func (s *AppointmentStore) Create(ctx context.Context, draft model.AppointmentDraft) error {
	created, message, err := s.api.CreateAppointment(ctx, draft.WireRequest())
	if err != nil {
		s.log.Warn("create appointment",
			zap.String("draft", draft.Ref.String()),
			zap.Error(err),
		)
		s.notify.Error(errs.UserMessage(err))
		return err
	}

	s.notify.Success(messageOr(message, "appointment created"))
	s.appendIfAbsent(created)

	// The refresh failing leaves an optimistically appended record, which a
	// manual refresh recovers. The create itself already succeeded.
	if err := s.Load(ctx); err != nil {
		s.log.Warn("refresh after create", zap.Error(err))
	}
	return nil
}

func (s *AppointmentStore) appendIfAbsent(a model.Appointment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.cache {
		if s.cache[i].ID == a.ID {
			return
		}
	}
	s.cache = append(s.cache, a)
}

// List returns a snapshot of the cache in insertion order from the last
// authoritative load. No client-side re-sorting.
func (s *AppointmentStore) List() []model.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Appointment(nil), s.cache...)
}
