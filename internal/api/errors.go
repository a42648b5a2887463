package api

import "fmt"

// RequestError is the uniform failure type for every backend call. Transport
// failures (no response at all) carry Status 0 and wrap the underlying net
// error; HTTP failures carry the non-2xx status with the message taken from
// the response body's detail field when one could be parsed.
type RequestError struct {
	Op      string
	Message string
	Status  int
	Err     error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// Transport reports whether the request failed before any response arrived.
func (e *RequestError) Transport() bool {
	return e.Status == 0
}

// UploadError is the per-file failure type for the upload endpoint. It keeps
// the same fields as RequestError but a distinct type so the workflow
// controller can record it against a single staged file without aborting the
// rest of the batch.
type UploadError struct {
	Filename string
	Message  string
	Status   int
	Err      error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload %s: %s", e.Filename, e.Message)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}
