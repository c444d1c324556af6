package cps

import (
	"time"

	"github.com/pior/cps/internal"
)

// Wire framing. Every request and response body is preceded by a
// HeaderSize-byte header: HeaderMagic then the body length, both uint32
// little-endian.
const (
	HeaderMagic = internal.FrameMagic
	HeaderSize  = internal.FrameHeaderSize
)

// Defaults applied by NewClient.
const (
	DefaultDialTimeout     = 5 * time.Second
	DefaultMaxResponseSize = 64 << 20
)
