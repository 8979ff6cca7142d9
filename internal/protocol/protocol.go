package protocol

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/GriffinCanCode/pipefilter/internal/filter"
)

// BufferSize is the largest message a single read on the request pipe accepts.
const BufferSize = 1024

// Delimiter separates the payload from the filter name.
const Delimiter = ':'

var (
	ErrMalformedRequest = errors.New("malformed request")
	ErrRequestTooLarge  = errors.New("request exceeds buffer size")
)

// Request is one parsed wire message.
type Request struct {
	Payload    string
	FilterName string
	Filter     filter.Filter
}

// ParseRequest decodes "<payload>:<filter-name>". Content after the first NUL
// byte is ignored. The message is split on the first delimiter; a missing
// delimiter or an empty part is rejected with ErrMalformedRequest.
func ParseRequest(raw []byte) (Request, error) {
	msg := string(trimNUL(raw))

	payload, name, ok := strings.Cut(msg, string(Delimiter))
	if !ok {
		return Request{}, fmt.Errorf("%w: no %q delimiter", ErrMalformedRequest, Delimiter)
	}
	if payload == "" {
		return Request{}, fmt.Errorf("%w: empty payload", ErrMalformedRequest)
	}
	if name == "" {
		return Request{}, fmt.Errorf("%w: empty filter name", ErrMalformedRequest)
	}

	return Request{
		Payload:    payload,
		FilterName: name,
		Filter:     filter.Resolve(name),
	}, nil
}

// EncodeRequest builds the NUL-terminated request message sent by clients.
func EncodeRequest(payload, filterName string) ([]byte, error) {
	n := len(payload) + 1 + len(filterName) + 1
	if n > BufferSize {
		return nil, fmt.Errorf("%w: %d > %d bytes", ErrRequestTooLarge, n, BufferSize)
	}

	buf := make([]byte, 0, n)
	buf = append(buf, payload...)
	buf = append(buf, Delimiter)
	buf = append(buf, filterName...)
	buf = append(buf, 0)
	return buf, nil
}

// EncodeResponse appends the terminating NUL to a transformed payload.
func EncodeResponse(body string) []byte {
	buf := make([]byte, 0, len(body)+1)
	buf = append(buf, body...)
	return append(buf, 0)
}

// DecodeResponse returns the response text up to its terminating NUL.
func DecodeResponse(raw []byte) string {
	return string(trimNUL(raw))
}

func trimNUL(b []byte) []byte {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		return b[:i]
	}
	return b
}
