package boolfuck

import (
	"fmt"
)

var ErrInputExhausted error = fmt.Errorf("Input exhausted")

// Input hands out the bits of Bytes least significant bit first.
type Input struct {
	Bytes  []byte
	Cursor uint
}

func NewInput(input []byte) *Input {
	return &Input{
		Bytes:  input,
		Cursor: 0,
	}
}

func (in *Input) NextBit() (bool, error) {
	index := in.Cursor / 8
	if index >= uint(len(in.Bytes)) {
		return false, fmt.Errorf("No input byte [%d] for bit [%d] (Input length: [%d]). %w", index, in.Cursor, len(in.Bytes), ErrInputExhausted)
	}
	bit := (in.Bytes[index]>>(in.Cursor%8))&1 == 1
	in.Cursor = in.Cursor + 1
	return bit, nil
}

// Output packs pushed bits least significant bit first. It always holds at
// least one byte.
type Output struct {
	Bytes  []byte
	Cursor uint
}

func NewOutput() *Output {
	return &Output{
		Bytes:  []byte{0},
		Cursor: 0,
	}
}

// Reset starts a new buffer. The old one stays with whoever Run handed it to.
func (out *Output) Reset() {
	out.Bytes = []byte{0}
	out.Cursor = 0
}

func (out *Output) PushBit(bit bool) {
	index := out.Cursor / 8
	for index >= uint(len(out.Bytes)) {
		out.Bytes = append(out.Bytes, 0)
	}
	if bit {
		out.Bytes[index] |= 1 << (out.Cursor % 8)
	}
	out.Cursor = out.Cursor + 1
}
