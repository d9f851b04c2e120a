package fetchers

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNetwork matches every failure to obtain a usable response.
	ErrNetwork = errors.New("network error")
	// ErrTimeout matches requests that got no response in time.
	ErrTimeout = errors.New("request timed out")
	// ErrUnknownCallback is returned when a wrapped response names a
	// callback that no pending request registered.
	ErrUnknownCallback = errors.New("unknown callback")
)

// NetworkError reports a transport failure for one request
type NetworkError struct {
	RequestID string
	Err       error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("request %s: network error: %v", e.RequestID, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *NetworkError) Is(target error) bool { return target == ErrNetwork }

// StatusError reports a non-200 answer from the API. It is a NetworkError
// as far as callers are concerned.
type StatusError struct {
	RequestID string
	Code      int
	Body      string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request %s: API error: status=%d, body=%s", e.RequestID, e.Code, e.Body)
}

func (e *StatusError) Is(target error) bool { return target == ErrNetwork }

// TimeoutError reports a request that was abandoned after Timeout
type TimeoutError struct {
	RequestID string
	Timeout   time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request %s: no response after %v", e.RequestID, e.Timeout)
}

func (e *TimeoutError) Is(target error) bool { return target == ErrTimeout }
