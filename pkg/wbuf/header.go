package wbuf

import "encoding/binary"

func decodeHeader(b []byte) (Header, bool) {
	if len(b) < HeaderSize {
		return Header{}, false
	}
	var h Header
	copy(h.Magic[:], b[0:4])
	h.Major = binary.LittleEndian.Uint16(b[4:])
	h.Minor = binary.LittleEndian.Uint16(b[6:])
	h.HeaderSize = binary.LittleEndian.Uint32(b[8:])
	h.Rows = binary.LittleEndian.Uint32(b[12:])
	h.Cols = binary.LittleEndian.Uint32(b[16:])
	h.Channels = binary.LittleEndian.Uint32(b[20:])
	h.Flags = binary.LittleEndian.Uint32(b[24:])
	return h, true
}

func encodeHeader(h *Header) []byte {
	b := make([]byte, HeaderSize)
	copy(b[0:4], h.Magic[:])
	binary.LittleEndian.PutUint16(b[4:], h.Major)
	binary.LittleEndian.PutUint16(b[6:], h.Minor)
	binary.LittleEndian.PutUint32(b[8:], h.HeaderSize)
	binary.LittleEndian.PutUint32(b[12:], h.Rows)
	binary.LittleEndian.PutUint32(b[16:], h.Cols)
	binary.LittleEndian.PutUint32(b[20:], h.Channels)
	binary.LittleEndian.PutUint32(b[24:], h.Flags)
	return b
}
