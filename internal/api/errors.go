package api

import "fmt"

// FallbackCause is used when a failed response carries no error field.
const FallbackCause = "Failed to get response"

// ConnectivityError means the backend could not be reached at all.
type ConnectivityError struct {
	Op  string
	Err error
}

func (e *ConnectivityError) Error() string {
	return e.Err.Error()
}

func (e *ConnectivityError) Unwrap() error {
	return e.Err
}

// ServerError means the backend answered with a non-2xx status.
type ServerError struct {
	Op         string
	StatusCode int
	Cause      string
}

func (e *ServerError) Error() string {
	if e.Cause == "" {
		return fmt.Sprintf("%s: unexpected status %d", e.Op, e.StatusCode)
	}
	return e.Cause
}

// ProtocolError means a 2xx body did not have the expected shape.
type ProtocolError struct {
	Op     string
	Reason string
}

func (e *ProtocolError) Error() string {
	return e.Reason
}
