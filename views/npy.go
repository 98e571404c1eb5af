package views

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Minimal NPY v1.0 writer. Depth maps and label maps must round-trip
// into numpy without quantization, and the container is a fixed magic
// plus a padded dict header, so it is written directly here.

var npyMagic = []byte("\x93NUMPY\x01\x00")

func writeNPYHeader(w io.Writer, descr string, height, width int) error {
	header := fmt.Sprintf("{'descr': '%s', 'fortran_order': False, 'shape': (%d, %d), }", descr, height, width)

	// Total of magic + 2-byte length + header must be 64-aligned, with
	// the header terminated by \n.
	total := len(npyMagic) + 2 + len(header) + 1
	pad := (64 - total%64) % 64
	for i := 0; i < pad; i++ {
		header += " "
	}
	header += "\n"

	if _, err := w.Write(npyMagic); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(len(header))); err != nil {
		return err
	}
	_, err := io.WriteString(w, header)
	return err
}

// WriteNPYFloat32 emits a little-endian float32 array of shape (h, w).
func WriteNPYFloat32(w io.Writer, data []float32, width, height int) error {
	if len(data) != width*height {
		return fmt.Errorf("npy: have %d values, want %d (%dx%d)", len(data), width*height, width, height)
	}
	if err := writeNPYHeader(w, "<f4", height, width); err != nil {
		return fmt.Errorf("npy header: %w", err)
	}
	return binary.Write(w, binary.LittleEndian, data)
}

// WriteNPYUint32 emits a little-endian uint32 array of shape (h, w).
func WriteNPYUint32(w io.Writer, data []uint32, width, height int) error {
	if len(data) != width*height {
		return fmt.Errorf("npy: have %d values, want %d (%dx%d)", len(data), width*height, width, height)
	}
	if err := writeNPYHeader(w, "<u4", height, width); err != nil {
		return fmt.Errorf("npy header: %w", err)
	}
	return binary.Write(w, binary.LittleEndian, data)
}
