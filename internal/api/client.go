// Package api implements the HTTP client for the scheduling backend.
//
// Every response carries an envelope {status, message, data}; any status
// other than "success" is a logical failure regardless of transport-level
// success. Requests that do not complete are transport failures.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"apptbook/internal/errs"
	"apptbook/internal/model"
)

// StatusSuccess is the envelope status value for a successful operation.
const StatusSuccess = "success"

// TokenSource supplies the bearer token attached to protected requests.
// Threaded in explicitly so call sites stay testable without ambient state.
type TokenSource interface {
	Token() string
}

// Client talks to the scheduling backend.
type Client struct {
	base   string
	http   *http.Client
	tokens TokenSource
	log    *zap.Logger
}

// New builds a Client for the given base URL. tokens may serve an empty
// token; protected calls then fail with ErrUnauthorized before any I/O.
func New(base string, timeout time.Duration, tokens TokenSource, log *zap.Logger) *Client {
	return &Client{
		base:   strings.TrimRight(base, "/"),
		http:   &http.Client{Timeout: timeout},
		tokens: tokens,
		log:    log,
	}
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type loginData struct {
	Token string `json:"token"`
}

// Login exchanges a username for a bearer token. Returns the token and the
// server's success message.
func (c *Client) Login(ctx context.Context, username string) (token, message string, err error) {
	var data loginData
	msg, err := c.do(ctx, http.MethodPost, "/login", map[string]string{"username": username}, false, &data)
	if err != nil {
		return "", "", err
	}
	return data.Token, msg, nil
}

// Users fetches all users visible to the authenticated caller.
func (c *Client) Users(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if _, err := c.do(ctx, http.MethodGet, "/users", nil, true, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Appointments fetches the caller's full appointment collection, in backend
// order.
func (c *Client) Appointments(ctx context.Context) ([]model.Appointment, error) {
	var appts []model.Appointment
	if _, err := c.do(ctx, http.MethodGet, "/appointments", nil, true, &appts); err != nil {
		return nil, err
	}
	return appts, nil
}

// CreateAppointment submits a new appointment and returns the server-echoed
// record with its assigned id, plus the success message.
func (c *Client) CreateAppointment(ctx context.Context, req model.CreateAppointmentRequest) (model.Appointment, string, error) {
	var created model.Appointment
	msg, err := c.do(ctx, http.MethodPost, "/appointments", req, true, &created)
	if err != nil {
		return model.Appointment{}, "", err
	}
	return created, msg, nil
}

// do runs one request/response cycle: marshal body, attach bearer when
// authed, classify the outcome, decode the envelope data into out. Returns
// the envelope message on success.
func (c *Client) do(ctx context.Context, method, path string, body any, authed bool, out any) (string, error) {
	start := time.Now()

	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return "", fmt.Errorf("marshal body: %w", err)
		}
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		tok := c.tokens.Token()
		if tok == "" {
			return "", errs.ErrUnauthorized
		}
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(method, path, "transport", start)
		return "", &errs.TransportError{Err: err}
	}
	defer resp.Body.Close()

	if authed && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
		c.observe(method, path, "unauthorized", start)
		return "", errs.ErrUnauthorized
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode >= 400 {
			// completed, failed, no usable message
			c.observe(method, path, "logical", start)
			return "", &errs.LogicalError{}
		}
		c.observe(method, path, "transport", start)
		return "", &errs.TransportError{Err: fmt.Errorf("decode envelope: %w", err)}
	}
	if env.Status != StatusSuccess {
		c.observe(method, path, "logical", start)
		return "", &errs.LogicalError{Message: env.Message}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			c.observe(method, path, "transport", start)
			return "", &errs.TransportError{Err: fmt.Errorf("decode data: %w", err)}
		}
	}
	c.observe(method, path, "ok", start)
	return env.Message, nil
}

// observe logs request metadata only, never payloads.
func (c *Client) observe(method, path, outcome string, start time.Time) {
	c.log.Debug("http",
		zap.String("method", method),
		zap.String("path", path),
		zap.String("outcome", outcome),
		zap.Duration("dur", time.Since(start)),
	)
}
