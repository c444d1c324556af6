package cps

import (
	"fmt"
	"io"

	"github.com/pior/cps/internal"
)

// readFrame reads one framed response body from r.
// maxSize <= 0 disables the size check.
func readFrame(r io.Reader, maxSize int) ([]byte, error) {
	var hdr [HeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, &ConnectionError{Op: "read", Err: err}
	}

	magic, size := internal.ParseFrameHeader(hdr[:])
	if magic != HeaderMagic {
		return nil, &FrameError{Message: fmt.Sprintf("unexpected header magic 0x%06x", magic)}
	}
	if maxSize > 0 && uint64(size) > uint64(maxSize) {
		return nil, &FrameError{Message: fmt.Sprintf("response of %d bytes exceeds limit of %d", size, maxSize)}
	}

	body := make([]byte, size)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, &FrameError{Message: "truncated response body", Err: err}
	}
	return body, nil
}
