package io

import (
	"io"
	"strconv"
	"unicode/utf8"
)

// Console is the output device of the processor. PRN and PRA output is
// written to the io.Writer in Output.
type Console struct {
	Output io.Writer

	written  int
	lastByte byte
}

var _ Output = (*Console)(nil)

// Rewind forgets the output statistics.
func (con *Console) Rewind() {
	con.written = 0
	con.lastByte = 0
}

// Written returns the number of bytes written since the last Rewind.
func (con *Console) Written() int {
	return con.written
}

// Pending returns true if output has been written and the last byte
// written was not a newline.
func (con *Console) Pending() bool {
	return con.written > 0 && con.lastByte != '\n'
}

func (con *Console) write(data []byte) (err error) {
	if con.Output == nil {
		err = ErrOutputMissing
		return
	}

	n, err := con.Output.Write(data)
	con.written += n
	if n > 0 {
		con.lastByte = data[n-1]
	}

	return
}

// Number writes the decimal value, one line per call.
func (con *Console) Number(value uint8) error {
	buff := strconv.AppendUint(nil, uint64(value), 10)
	buff = append(buff, '\n')
	return con.write(buff)
}

// Char writes the UTF-8 encoding of the code point value.
func (con *Console) Char(value uint8) error {
	buff := utf8.AppendRune(nil, rune(value))
	return con.write(buff)
}
