package tray

import (
	"bytes"
	"encoding/binary"
)

// iconBytes wraps the PNG in a single-image ICO container, which is what the
// Windows notification area accepts.
func iconBytes() ([]byte, error) {
	data, err := renderIcon()
	if err != nil {
		return nil, err
	}
	return wrapICO(data, iconSize), nil
}

func wrapICO(png []byte, size int) []byte {
	var buf bytes.Buffer
	le := binary.LittleEndian
	_ = binary.Write(&buf, le, [3]uint16{0, 1, 1})
	buf.WriteByte(byte(size))
	buf.WriteByte(byte(size))
	buf.WriteByte(0)
	buf.WriteByte(0)
	_ = binary.Write(&buf, le, uint16(1))
	_ = binary.Write(&buf, le, uint16(32))
	_ = binary.Write(&buf, le, uint32(len(png)))
	_ = binary.Write(&buf, le, uint32(6+16))
	buf.Write(png)
	return buf.Bytes()
}
