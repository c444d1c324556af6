package cps

import (
	"time"

	"github.com/pior/cps/request"
)

// Response is the raw answer to a request. The body is the XML document
// returned by the server; decoding it is left to the caller.
type Response struct {
	Command request.Command
	Server  string
	Body    []byte

	// Sent is the number of bytes written for the request, header included.
	Sent int

	// Duration covers writing the request and reading the full response.
	Duration time.Duration
}
