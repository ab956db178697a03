package cpu

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"strconv"
	"strings"
)

// Opcode is a line of a program listing, with its source location and the
// bytes it generated.
type Opcode struct {
	LineNo    int
	Addr      int
	Words     []string
	Bytes     []uint8
	LinkLabel string
}

// Program is a program listing.
type Program struct {
	Opcodes []Opcode
}

// Debug locates an address within a program listing.
type Debug struct {
	*Opcode
	Index int
}

// Debug returns the listing entry that generated the byte at addr.
func (prog *Program) Debug(addr int) (dbg Debug) {
	for n, op := range prog.Opcodes {
		if addr >= op.Addr && addr < op.Addr+len(op.Bytes) {
			dbg = Debug{
				Opcode: &prog.Opcodes[n],
				Index:  addr - op.Addr,
			}
			break
		}
	}

	return
}

// Bytes iterates over every generated byte and its address.
func (prog *Program) Bytes() iter.Seq2[int, uint8] {
	return func(yield func(addr int, value uint8) bool) {
		for _, op := range prog.Opcodes {
			for n, value := range op.Bytes {
				if !yield(op.Addr+n, value) {
					return
				}
			}
		}
	}
}

// Size returns the number of bytes of memory the program spans.
func (prog *Program) Size() (size int) {
	for _, op := range prog.Opcodes {
		size = max(size, op.Addr+len(op.Bytes))
	}

	return
}

// SizeBelow returns the end of the highest listing entry that lies
// wholly below limit.
func (prog *Program) SizeBelow(limit int) (size int) {
	for _, op := range prog.Opcodes {
		end := op.Addr + len(op.Bytes)
		if end <= limit {
			size = max(size, end)
		}
	}

	return
}

// Image returns the memory image of the program, starting at address 0.
func (prog *Program) Image() (image []uint8) {
	image = make([]uint8, prog.Size())
	for addr, value := range prog.Bytes() {
		image[addr] = value
	}

	return
}

// WriteImage writes the program in the binary image format: one byte per
// line in binary, with the source of each listing entry as a comment.
func (prog *Program) WriteImage(w io.Writer) (err error) {
	bw := bufio.NewWriter(w)

	image := prog.Image()
	for addr := 0; addr < len(image); addr++ {
		dbg := prog.Debug(addr)
		switch {
		case dbg.Opcode == nil:
			_, err = fmt.Fprintf(bw, "%08b\n", image[addr])
		case dbg.Index == 0 && len(dbg.Words) != 0:
			_, err = fmt.Fprintf(bw, "%08b # %s\n", image[addr], strings.Join(dbg.Words, " "))
		default:
			_, err = fmt.Fprintf(bw, "%08b\n", image[addr])
		}
		if err != nil {
			return
		}
	}

	err = bw.Flush()

	return
}

// ParseImage reads a program in the binary image format.
//
// Each line holds one 8-bit value written in binary digits, optionally
// followed by a '#' comment. Blank and comment-only lines are skipped.
// Values are placed in memory from address 0 in file order.
func ParseImage(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int

	defer func() {
		if err != nil {
			prog = nil
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	prog = &Program{}
	addr := 0

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		text_comment := strings.SplitN(text, "#", 2)
		line = strings.TrimSpace(text_comment[0])
		if len(line) == 0 {
			continue
		}

		var value uint64
		value, err = strconv.ParseUint(line, 2, 8)
		if err != nil {
			err = ErrParseBinary(line)
			return
		}

		if addr >= MEMORY_SIZE {
			err = ErrProgramSize
			return
		}

		words := []string{line}
		if len(text_comment) > 1 {
			comment := strings.TrimSpace(text_comment[1])
			if len(comment) != 0 {
				words = strings.Fields(comment)
			}
		}

		prog.Opcodes = append(prog.Opcodes, Opcode{
			LineNo: lineno,
			Addr:   addr,
			Words:  words,
			Bytes:  []uint8{uint8(value)},
		})
		addr++
	}

	err = scanner.Err()

	return
}
