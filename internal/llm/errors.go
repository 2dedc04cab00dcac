package llm

import (
	"errors"
	"fmt"
)

// ErrorKind categorises a failed provider call.
type ErrorKind string

const (
	KindOK          ErrorKind = "ok"
	KindNetwork     ErrorKind = "network"
	KindRateLimited ErrorKind = "rate_limited"
	KindForbidden   ErrorKind = "forbidden"
	KindServerError ErrorKind = "server_error"
	KindClientError ErrorKind = "client_error"
	// KindMalformed marks a 2xx response whose body could not be used.
	KindMalformed ErrorKind = "malformed"
	// KindLocal marks a failure raised before any request left the process.
	KindLocal ErrorKind = "local"
)

// Classify maps a status code (0 = transport failure) to its error kind.
func Classify(status int) ErrorKind {
	switch {
	case status == 0:
		return KindNetwork
	case status == 429:
		return KindRateLimited
	case status == 403:
		return KindForbidden
	case status >= 500:
		return KindServerError
	case status >= 200 && status < 300:
		return KindOK
	default:
		return KindClientError
	}
}

// StatusError is returned by providers for any non-2xx response or transport
// failure. Status is 0 when no HTTP response was received.
type StatusError struct {
	Provider string
	Model    string
	Status   int
	Body     string
	Err      error
}

func (e *StatusError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s (%s): network failure: %v", e.Provider, e.Model, e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s (%s): status %d: %v", e.Provider, e.Model, e.Status, e.Err)
	}
	return fmt.Sprintf("%s (%s): status %d: %s", e.Provider, e.Model, e.Status, e.Body)
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

// Kind classifies the error.
func (e *StatusError) Kind() ErrorKind {
	if k := Classify(e.Status); k != KindOK {
		return k
	}
	return KindMalformed
}

// IsProviderFailure reports whether err came back from a provider round trip
// (a response or a transport failure), as opposed to a local setup error.
func IsProviderFailure(err error) bool {
	var se *StatusError
	return errors.As(err, &se)
}

// StatusOf extracts the status code carried by err. Errors that are not a
// *StatusError count as network failures.
func StatusOf(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status
	}
	return 0
}
