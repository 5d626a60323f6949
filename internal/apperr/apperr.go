// Package apperr defines the error kinds surfaced by the assessment and speech flows.
// None of them is retried anywhere; callers decide what to show the user.
package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

const (
	KindIncompleteAnswers   = "incomplete_answers"
	KindInvalidInput        = "invalid_input"
	KindUpstreamUnavailable = "upstream_unavailable"
	KindMalformedResponse   = "malformed_response"
	KindSchemaViolation     = "schema_violation"
	KindInternal            = "internal"
)

// IncompleteAnswersError is returned when an answer set does not cover every catalog question.
type IncompleteAnswersError struct {
	Missing []string
}

func (e *IncompleteAnswersError) Error() string {
	return fmt.Sprintf("incomplete answers: %d question(s) unanswered: %s",
		len(e.Missing), strings.Join(quoteAll(e.Missing), ", "))
}

// InvalidInputError is a local precondition failure detected before any provider call.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	if e.Field == "" {
		return "invalid input: " + e.Reason
	}
	return fmt.Sprintf("invalid input: %s: %s", e.Field, e.Reason)
}

// UpstreamUnavailableError wraps a transport, timeout or non-success failure of a provider.
type UpstreamUnavailableError struct {
	Provider string
	Op       string
	Timeout  bool
	Cause    error
}

func (e *UpstreamUnavailableError) Error() string {
	var b strings.Builder
	b.WriteString(e.Provider)
	if e.Op != "" {
		b.WriteString(" ")
		b.WriteString(e.Op)
	}
	if e.Timeout {
		b.WriteString(": timed out")
	} else {
		b.WriteString(": upstream unavailable")
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *UpstreamUnavailableError) Unwrap() error { return e.Cause }

// Upstream builds an UpstreamUnavailableError, flagging context deadline and cancellation as timeouts.
func Upstream(provider, op string, cause error) *UpstreamUnavailableError {
	return &UpstreamUnavailableError{
		Provider: provider,
		Op:       op,
		Timeout:  errors.Is(cause, context.DeadlineExceeded) || errors.Is(cause, context.Canceled),
		Cause:    cause,
	}
}

// MalformedResponseError means the provider answered but the body is not valid JSON.
type MalformedResponseError struct {
	Raw   string
	Cause error
}

func (e *MalformedResponseError) Error() string {
	if e.Cause == nil {
		return "malformed provider response"
	}
	return "malformed provider response: " + e.Cause.Error()
}

func (e *MalformedResponseError) Unwrap() error { return e.Cause }

// Violation is a single schema failure at a field path such as recommended_paths[1].title.
type Violation struct {
	Field  string
	Reason string
}

// SchemaViolationError means the reply parsed as JSON but does not match the analysis shape.
// Field and Reason describe the first violation; Violations holds all of them.
type SchemaViolationError struct {
	Field      string
	Reason     string
	Violations []Violation
}

func (e *SchemaViolationError) Error() string {
	msg := fmt.Sprintf("schema violation at %s: %s", e.Field, e.Reason)
	if extra := len(e.Violations) - 1; extra > 0 {
		msg += fmt.Sprintf(" (and %d more)", extra)
	}
	return msg
}

// Kind returns a stable label for err, used in logs and metrics.
func Kind(err error) string {
	var (
		incomplete *IncompleteAnswersError
		invalid    *InvalidInputError
		upstream   *UpstreamUnavailableError
		malformed  *MalformedResponseError
		schema     *SchemaViolationError
	)

	switch {
	case errors.As(err, &incomplete):
		return KindIncompleteAnswers
	case errors.As(err, &invalid):
		return KindInvalidInput
	case errors.As(err, &upstream):
		return KindUpstreamUnavailable
	case errors.As(err, &malformed):
		return KindMalformedResponse
	case errors.As(err, &schema):
		return KindSchemaViolation
	default:
		return KindInternal
	}
}

// HTTPStatus maps err to a response status. Only caller mistakes get a 4xx.
func HTTPStatus(err error) int {
	if Kind(err) == KindInvalidInput {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func quoteAll(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, fmt.Sprintf("%q", item))
	}
	return out
}
