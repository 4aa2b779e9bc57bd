// Package model defines domain entities shared by the stores and the transport layer.
package model

import (
	"encoding/json"
	"time"

	"github.com/gofrs/uuid/v5"
)

// WireTimeLayout is the wall-clock format the backend expects for
// appointment times. Local-time semantics: no timezone normalization.
const WireTimeLayout = "2006-01-02 15:04"

// ID is an opaque server-assigned identifier. Backends serialize ids as
// strings or numbers; both decode to the string form and compare by value.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

// User is a backend account visible to the authenticated caller. Read-only
// on the client; never mutated locally.
type User struct {
	ID       ID     `json:"id"`
	Username string `json:"username"`
}

// Option is the selectable projection of a User for invite pickers.
type Option struct {
	Value string // User.ID
	Label string // User.Username
}

// Appointment as returned by the backend. Start/End keep the backend's
// wall-clock string form; the client displays them verbatim and never
// re-interprets them.
type Appointment struct {
	ID           ID       `json:"id"`
	Title        string   `json:"title"`
	Start        string   `json:"start"`
	End          string   `json:"end"`
	InvitedUsers []string `json:"invitedUsers"`
}

// AppointmentDraft is the in-progress creation form state. It has no server
// id; Ref is a local placeholder used for bookkeeping until the backend
// assigns one. Discarded on cancel or successful submit.
type AppointmentDraft struct {
	Ref          uuid.UUID
	Title        string
	Start        time.Time
	End          time.Time
	InvitedUsers []string // User.IDs, never labels
}

// NewAppointmentDraft assigns a local placeholder ref to a fresh draft.
func NewAppointmentDraft(title string, start, end time.Time, invited []string) AppointmentDraft {
	ref, _ := uuid.NewV4()
	return AppointmentDraft{
		Ref:          ref,
		Title:        title,
		Start:        start,
		End:          end,
		InvitedUsers: invited,
	}
}

// CreateAppointmentRequest is the wire form of a draft.
type CreateAppointmentRequest struct {
	Title        string   `json:"title"`
	Start        string   `json:"start"`
	End          string   `json:"end"`
	InvitedUsers []string `json:"invitedUsers"`
}

// WireRequest formats the draft for transmission. Times are rendered as
// local wall-clock strings in WireTimeLayout.
func (d AppointmentDraft) WireRequest() CreateAppointmentRequest {
	return CreateAppointmentRequest{
		Title:        d.Title,
		Start:        d.Start.Format(WireTimeLayout),
		End:          d.End.Format(WireTimeLayout),
		InvitedUsers: append([]string(nil), d.InvitedUsers...),
	}
}
