package internal

import "encoding/binary"

// Every message on the wire, in both directions, is a fixed header followed
// by an XML body:
//
//	[0:4] magic, uint32 little-endian
//	[4:8] body length in bytes, uint32 little-endian
const (
	FrameMagic      uint32 = 0x09273E
	FrameHeaderSize        = 8
)

// PutFrameHeader writes a header for a body of bodyLen bytes into b.
// b must be at least FrameHeaderSize long.
func PutFrameHeader(b []byte, bodyLen int) {
	binary.LittleEndian.PutUint32(b[0:4], FrameMagic)
	binary.LittleEndian.PutUint32(b[4:8], uint32(bodyLen))
}

// ParseFrameHeader decodes the magic and body length from b.
func ParseFrameHeader(b []byte) (magic, bodyLen uint32) {
	return binary.LittleEndian.Uint32(b[0:4]), binary.LittleEndian.Uint32(b[4:8])
}

// AppendFrame appends a framed copy of body to dst.
func AppendFrame(dst, body []byte) []byte {
	var hdr [FrameHeaderSize]byte
	PutFrameHeader(hdr[:], len(body))
	dst = append(dst, hdr[:]...)
	return append(dst, body...)
}
