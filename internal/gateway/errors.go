package gateway

import "fmt"

// RequestError covers both failure classes the caller can see: transport
// errors (Status == 0) and server rejections (non-2xx or success=false).
// Message carries the envelope's message when one was present.
type RequestError struct {
	Message string
	Status  int
}

func (e *RequestError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
	}
	return e.Message
}

// Transient reports whether the failure happened before an HTTP response
// arrived.
func (e *RequestError) Transient() bool { return e.Status == 0 }
