package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
)

func TestID_DecodesStringsAndNumbers(t *testing.T) {
	t.Parallel()

	var a Appointment
	if err := json.Unmarshal([]byte(`{"id":1,"title":"A"}`), &a); err != nil {
		t.Fatalf("numeric id: %v", err)
	}
	if a.ID != "1" {
		t.Fatalf("numeric id: want %q, got %q", "1", a.ID)
	}

	var u User
	if err := json.Unmarshal([]byte(`{"id":"u-7","username":"alice"}`), &u); err != nil {
		t.Fatalf("string id: %v", err)
	}
	if u.ID != "u-7" {
		t.Fatalf("string id: want %q, got %q", "u-7", u.ID)
	}

	if err := json.Unmarshal([]byte(`{"id":true}`), &a); err == nil {
		t.Fatalf("want error for non-scalar id")
	}
}

func TestNewAppointmentDraft_AssignsRef(t *testing.T) {
	t.Parallel()

	d := NewAppointmentDraft("standup", time.Now(), time.Now().Add(time.Hour), []string{"u1"})
	if d.Ref == uuid.Nil {
		t.Fatalf("draft should get a placeholder ref")
	}
	d2 := NewAppointmentDraft("standup", time.Now(), time.Now().Add(time.Hour), nil)
	if d.Ref == d2.Ref {
		t.Fatalf("refs must be unique per draft")
	}
}

func TestWireRequest_FormatsLocalWallClock(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 2, 1, 9, 0, 0, 0, time.Local)
	end := time.Date(2024, 2, 1, 10, 30, 0, 0, time.Local)
	d := NewAppointmentDraft("review", start, end, []string{"a", "b"})

	req := d.WireRequest()
	if req.Start != "2024-02-01 09:00" {
		t.Fatalf("start: want %q, got %q", "2024-02-01 09:00", req.Start)
	}
	if req.End != "2024-02-01 10:30" {
		t.Fatalf("end: want %q, got %q", "2024-02-01 10:30", req.End)
	}
	if req.Title != "review" || len(req.InvitedUsers) != 2 {
		t.Fatalf("unexpected request: %+v", req)
	}
}

func TestWireRequest_CopiesInvitedUsers(t *testing.T) {
	t.Parallel()

	invited := []string{"a"}
	d := NewAppointmentDraft("x", time.Now(), time.Now(), invited)
	req := d.WireRequest()
	invited[0] = "mutated"
	if req.InvitedUsers[0] != "a" {
		t.Fatalf("wire request must not alias the draft slice")
	}
}
