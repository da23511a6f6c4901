package weather

import (
	"errors"
	"fmt"
)

var (
	// ErrUpstream matches every *UpstreamError.
	ErrUpstream = errors.New("upstream reported an error")
	// ErrTranslation is returned when the upstream document does not fit the response schema.
	ErrTranslation = errors.New("cannot translate upstream document")
	// ErrTransport is returned when the upstream call fails or its body is not JSON.
	ErrTransport = errors.New("upstream transport failure")
)

// defaultUpstreamMessage is used when an error document carries no message.
const defaultUpstreamMessage = "Invalid request"

// UpstreamError is an error document returned by the provider ("cod" != 200).
type UpstreamError struct {
	Code    string
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream error (cod %s): %s", e.Code, e.Message)
}

func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstream
}
