// Package view renders the appointment screen and wires the stores behind it.
package view

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"apptbook/internal/errs"
	"apptbook/internal/model"
	"apptbook/internal/service"
)

// CreateForm holds the raw field values entered by the user. On a failed
// submit the values stay in place for resubmission; on success the form
// resets to empty.
type CreateForm struct {
	Title   string
	Start   string // wall-clock, "2006-01-02 15:04"
	End     string
	Invited []string // usernames or ids, resolved against the directory
}

// AppointmentView orchestrates the appointment store and the user directory.
type AppointmentView struct {
	store *service.AppointmentStore
	dir   *service.UserDirectory
	out   io.Writer
	log   *zap.Logger
}

// New wires a view over its stores, rendering to out.
func New(store *service.AppointmentStore, dir *service.UserDirectory, out io.Writer, log *zap.Logger) *AppointmentView {
	return &AppointmentView{store: store, dir: dir, out: out, log: log}
}

// Mount loads appointments and users concurrently, then renders the list.
// The two loads are independent; one failing does not cancel the other, and
// failures have already been surfaced as notifications by the stores.
func (v *AppointmentView) Mount(ctx context.Context) error {
	fmt.Fprintln(v.out, "Loading appointments...")

	var g errgroup.Group
	g.Go(func() error { return v.store.Load(ctx) })
	g.Go(func() error { return v.dir.Load(ctx) })
	if err := g.Wait(); err != nil {
		v.log.Warn("initial load incomplete", zap.Error(err))
	}

	v.Render()
	return nil
}

// Render writes the current list state: loading indicator, empty message, or
// one block per appointment. The empty message is suppressed while a load is
// in flight.
func (v *AppointmentView) Render() {
	if v.store.Loading() {
		fmt.Fprintln(v.out, "Loading appointments...")
		return
	}
	appts := v.store.List()
	if len(appts) == 0 {
		fmt.Fprintln(v.out, "No appointments found.")
		return
	}
	for _, a := range appts {
		fmt.Fprintf(v.out, "%s\n  start: %s\n  end:   %s\n", a.Title, a.Start, a.End)
	}
}

// SubmitCreate validates the form, resolves invitees to user ids, and
// submits the draft. The form resets only on success.
func (v *AppointmentView) SubmitCreate(ctx context.Context, form *CreateForm) error {
	draft, err := v.buildDraft(*form)
	if err != nil {
		return err
	}
	if err := v.store.Create(ctx, draft); err != nil {
		return err
	}
	*form = CreateForm{}
	v.Render()
	return nil
}

// buildDraft enforces the form's required fields before anything is sent:
// title, parseable start/end, start before end, known invitees.
func (v *AppointmentView) buildDraft(form CreateForm) (model.AppointmentDraft, error) {
	title := strings.TrimSpace(form.Title)
	if title == "" {
		return model.AppointmentDraft{}, &errs.ValidationError{Field: "title", Reason: "title required"}
	}
	start, err := parseLocal(form.Start)
	if err != nil {
		return model.AppointmentDraft{}, &errs.ValidationError{Field: "start", Reason: "start time required (2006-01-02 15:04)"}
	}
	end, err := parseLocal(form.End)
	if err != nil {
		return model.AppointmentDraft{}, &errs.ValidationError{Field: "end", Reason: "end time required (2006-01-02 15:04)"}
	}
	if !start.Before(end) {
		return model.AppointmentDraft{}, &errs.ValidationError{Field: "end", Reason: "end must be after start"}
	}
	invited, err := v.resolveInvited(form.Invited)
	if err != nil {
		return model.AppointmentDraft{}, err
	}
	return model.NewAppointmentDraft(title, start, end, invited), nil
}

// resolveInvited maps each entry to a User.ID against the directory options.
// Ids are accepted as-is when known; labels resolve to their id. Selection
// always carries ids on the wire, never display labels.
func (v *AppointmentView) resolveInvited(entries []string) ([]string, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	opts := v.dir.Options()
	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		id := ""
		for _, o := range opts {
			if o.Value == entry || o.Label == entry {
				id = o.Value
				break
			}
		}
		if id == "" {
			return nil, &errs.ValidationError{Field: "invitedUsers", Reason: "unknown user: " + entry}
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parseLocal(s string) (time.Time, error) {
	return time.ParseInLocation(model.WireTimeLayout, strings.TrimSpace(s), time.Local)
}
