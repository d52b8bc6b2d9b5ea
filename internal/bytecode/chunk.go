package bytecode

import (
	"encoding/binary"
	"fmt"
	"io"

	"ferrum/internal/source"
)

// Pos is the source position recorded for each code byte.
type Pos struct {
	Line uint32
	Col  uint32
}

// CodeRef locates one written instruction inside a chunk.
type CodeRef struct {
	Pos  int
	Size int
}

// Chunk is a named unit of bytecode with its constant pool.
type Chunk struct {
	name  string
	code  []byte
	vals  []byte
	lines []Pos
}

// NewChunk creates an empty chunk.
func NewChunk(name string) *Chunk {
	return &Chunk{
		name:  name,
		code:  make([]byte, 0, 512),
		vals:  make([]byte, 0, 512),
		lines: make([]Pos, 0, 512),
	}
}

func (c *Chunk) Name() string  { return c.name }
func (c *Chunk) Code() []byte  { return c.code }
func (c *Chunk) Vals() []byte  { return c.vals }
func (c *Chunk) Lines() []Pos  { return c.lines }
func (c *Chunk) Len() int      { return len(c.code) / InstrSize }
func (c *Chunk) IsEmpty() bool { return len(c.code) == 0 }

// Write appends an instruction and returns where it was placed.
func (c *Chunk) Write(in Instr, at source.Span) CodeRef {
	start := len(c.code)
	c.code = in.appendTo(c.code)
	for range len(c.code) - start {
		c.lines = append(c.lines, Pos{Line: at.Line, Col: at.Col})
	}
	return CodeRef{Pos: start, Size: len(c.code) - start}
}

// Value is a fixed-size constant storable in the pool.
type Value interface {
	~int8 | ~int16 | ~int32 | ~int64 |
		~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// WriteValue appends v little-endian to the constant pool and returns its
// byte offset.
func WriteValue[V Value](c *Chunk, v V) int {
	i := len(c.vals)
	vals, err := binary.Append(c.vals, binary.LittleEndian, v)
	if err != nil {
		panic(fmt.Errorf("constant encoding: %w", err))
	}
	c.vals = vals
	return i
}

// Clear drops all code, constants and positions.
func (c *Chunk) Clear() {
	c.code = c.code[:0]
	c.vals = c.vals[:0]
	c.lines = c.lines[:0]
}

// Instructions decodes the whole code stream.
func (c *Chunk) Instructions() ([]Instr, error) {
	out := make([]Instr, 0, c.Len())
	for i := 0; i < len(c.code); i += InstrSize {
		in, err := decodeAt(c.code, i)
		if err != nil {
			return out, err
		}
		out = append(out, in)
	}
	return out, nil
}

// Disassemble writes up to count instructions starting at byte offset from,
// one per line: "0000  3:5  INC_RC     addr=0x1000 size=8". count <= 0 means all.
func (c *Chunk) Disassemble(w io.Writer, from, count int) error {
	if _, err := fmt.Fprintf(w, "== %s ==\n", c.name); err != nil {
		return err
	}
	n := 0
	for i := from; i < len(c.code) && (count <= 0 || n < count); i += InstrSize {
		in, err := decodeAt(c.code, i)
		if err != nil {
			return err
		}
		pos := c.lines[i]
		if _, err := fmt.Fprintf(w, "%04d %4d:%-3d %-10s addr=0x%x size=%d\n", i, pos.Line, pos.Col, in.Op, in.Addr, in.Size); err != nil {
			return err
		}
		n++
	}
	return nil
}
