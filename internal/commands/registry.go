package commands

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jask/jaskledger/internal/database/repository"
)

// Command is one named operation of the invocation boundary.
type Command struct {
	ID          string
	Scope       string
	Description string
	Execute     func(ctx context.Context, args json.RawMessage) (any, error)
}

// CommandInfo describes a registered command.
type CommandInfo struct {
	ID          string `json:"id"`
	Scope       string `json:"scope"`
	Description string `json:"description"`
}

// Response is the envelope every invocation returns. Exactly one of Data and
// Error is meaningful, selected by OK.
type Response struct {
	InvocationID string     `json:"invocation_id"`
	Command      string     `json:"command"`
	OK           bool       `json:"ok"`
	Data         any        `json:"data,omitempty"`
	Error        *ErrorBody `json:"error,omitempty"`
}

// ErrorBody is the error half of a Response.
type ErrorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Error kinds reported in ErrorBody.Kind.
const (
	KindValidation     = "validation"
	KindNotFound       = "not_found"
	KindConstraint     = "constraint"
	KindStorage        = "storage"
	KindBadRequest     = "bad_request"
	KindUnknownCommand = "unknown_command"
	KindInternal       = "internal"
)

// BadRequestError reports arguments that could not be decoded or are missing.
type BadRequestError struct {
	Command string
	Err     error
}

func (e *BadRequestError) Error() string {
	return fmt.Sprintf("bad arguments for %s: %v", e.Command, e.Err)
}

func (e *BadRequestError) Unwrap() error { return e.Err }

type Registry struct {
	commands map[string]Command
}

func NewRegistry(cmds []Command) *Registry {
	reg := &Registry{commands: map[string]Command{}}
	for _, c := range cmds {
		reg.Register(c)
	}
	return reg
}

func (r *Registry) Register(c Command) {
	if c.ID == "" {
		return
	}
	r.commands[c.ID] = c
}

// Search lists commands whose id, scope or description contains query,
// ordered by scope then id. An empty query lists everything.
func (r *Registry) Search(query string) []CommandInfo {
	q := strings.ToLower(strings.TrimSpace(query))
	results := make([]CommandInfo, 0, len(r.commands))
	for _, c := range r.commands {
		h := strings.ToLower(c.ID + " " + c.Scope + " " + c.Description)
		if q != "" && !strings.Contains(h, q) {
			continue
		}
		results = append(results, CommandInfo{ID: c.ID, Scope: c.Scope, Description: c.Description})
	}
	slices.SortFunc(results, func(a, b CommandInfo) int {
		if n := cmp.Compare(a.Scope, b.Scope); n != 0 {
			return n
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return results
}

// Invoke runs command id with JSON arguments and never fails: errors are
// reported inside the Response.
func (r *Registry) Invoke(ctx context.Context, id string, args json.RawMessage) Response {
	resp := Response{InvocationID: uuid.NewString(), Command: id}
	start := time.Now()

	c, ok := r.commands[id]
	var (
		data any
		err  error
	)
	switch {
	case !ok:
		err = fmt.Errorf("unknown command: %s", id)
	case c.Execute == nil:
		err = fmt.Errorf("command %s has no handler", id)
	default:
		data, err = c.Execute(ctx, args)
	}

	if err != nil {
		kind := ErrorKind(err)
		if !ok {
			kind = KindUnknownCommand
		}
		resp.Error = &ErrorBody{Kind: kind, Message: err.Error()}
	} else {
		resp.OK = true
		resp.Data = data
	}

	attrs := []any{
		"invocation_id", resp.InvocationID,
		"command", id,
		"duration", time.Since(start),
		"ok", resp.OK,
	}
	if resp.Error != nil {
		attrs = append(attrs, "error_kind", resp.Error.Kind, "err", resp.Error.Message)
		slog.Warn("invocation failed", attrs...)
	} else {
		slog.Debug("invocation", attrs...)
	}
	return resp
}

// ErrorKind classifies err for ErrorBody.Kind.
func ErrorKind(err error) string {
	var (
		ve *repository.ValidationError
		ne *repository.NotFoundError
		ce *repository.ConstraintError
		se *repository.StorageError
		be *BadRequestError
	)
	switch {
	case errors.As(err, &be):
		return KindBadRequest
	case errors.As(err, &ve):
		return KindValidation
	case errors.As(err, &ne):
		return KindNotFound
	case errors.As(err, &ce):
		return KindConstraint
	case errors.As(err, &se):
		return KindStorage
	default:
		return KindInternal
	}
}
