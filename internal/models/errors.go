package models

import (
	"errors"
	"fmt"
	"time"
)

// ErrMissingID and ErrDuplicateID are the record validation failures. Both
// cause the record to be skipped, never the whole build.
var (
	ErrMissingID   = errors.New("record has no id")
	ErrDuplicateID = errors.New("duplicate record id")
)

// ValidationError describes a record rejected before indexing.
type ValidationError struct {
	Type RecordType
	Row  int // zero-based position in the input sequence
	ID   string
	Err  error
}

func (e *ValidationError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s row %d: %v", e.Type, e.Row, e.Err)
	}
	return fmt.Sprintf("%s row %d (%s): %v", e.Type, e.Row, e.ID, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// QueryErrorKind classifies a failed query.
type QueryErrorKind string

const (
	QueryErrNoIndex  QueryErrorKind = "no_index"
	QueryErrCanceled QueryErrorKind = "canceled"
	QueryErrInternal QueryErrorKind = "internal"
)

// QueryError is the failure variant of a query. It always carries the query
// text and the time the query was received.
type QueryError struct {
	Kind      QueryErrorKind
	Query     string
	Timestamp time.Time
	Err       error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query %q: %s: %v", e.Query, e.Kind, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// ConfigError reports a configuration value that was rejected in favour of
// its default.
type ConfigError struct {
	Key string
	Err error
}

func (e *ConfigError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("config: %v", e.Err)
	}
	return fmt.Sprintf("config %s: %v", e.Key, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// QueryFailure is the serialized form of a QueryError, for surfaces that
// report failures as data.
type QueryFailure struct {
	Query     string    `json:"query"`
	Error     string    `json:"error"`
	Timestamp time.Time `json:"timestamp"`
}

// Failure converts e to its serialized form.
func (e *QueryError) Failure() QueryFailure {
	return QueryFailure{Query: e.Query, Error: e.Error(), Timestamp: e.Timestamp}
}
