package api

import (
	"errors"
	"fmt"
)

// ErrNoProfile is returned by GetProfile when the remote answers non-2xx,
// which the contract defines as "no profile yet".
var ErrNoProfile = errors.New("no profile yet")

// RemoteError is a non-2xx answer from the remote API.
type RemoteError struct {
	Endpoint string
	Status   int
	Message  string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", e.Endpoint, e.Status, e.Message)
}

// TransportError wraps a network failure or an unreadable response.
type TransportError struct {
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError reports a 2xx body that does not match the documented schema.
type DecodeError struct {
	Endpoint string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: decode response: %v", e.Endpoint, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// UserMessage converts err into the text shown to the user. Remote rejections
// surface the server's message; every other failure uses fallback.
func UserMessage(err error, fallback string) string {
	var remote *RemoteError
	if errors.As(err, &remote) && remote.Message != "" {
		return remote.Message
	}
	return fallback
}
