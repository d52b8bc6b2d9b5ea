package bytecode

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"
)

// objectSchema is bumped whenever Object changes shape.
const objectSchema uint16 = 1

// Object is the on-disk form of a chunk (`.fbc` files).
type Object struct {
	Schema uint16
	Name   string
	Code   []byte
	Vals   []byte
	Lines  []Pos
}

// ErrSchema is returned when an object file was written by another version.
var ErrSchema = errors.New("unsupported object schema")

// Encode writes c to w as msgpack.
func Encode(w io.Writer, c *Chunk) error {
	obj := Object{Schema: objectSchema, Name: c.name, Code: c.code, Vals: c.vals, Lines: c.lines}
	return msgpack.NewEncoder(w).Encode(&obj)
}

// Decode reads a chunk written by Encode and validates its code stream.
func Decode(r io.Reader) (*Chunk, error) {
	var obj Object
	if err := msgpack.NewDecoder(r).Decode(&obj); err != nil {
		return nil, err
	}
	if obj.Schema != objectSchema {
		return nil, fmt.Errorf("%w: %d", ErrSchema, obj.Schema)
	}
	if len(obj.Lines) != len(obj.Code) {
		return nil, fmt.Errorf("object %q: %d positions for %d code bytes", obj.Name, len(obj.Lines), len(obj.Code))
	}
	c := &Chunk{name: obj.Name, code: obj.Code, vals: obj.Vals, lines: obj.Lines}
	if _, err := c.Instructions(); err != nil {
		return nil, fmt.Errorf("object %q: %w", obj.Name, err)
	}
	return c, nil
}

// WriteFile writes c to path atomically via a temp file in the same directory.
func WriteFile(path string, c *Chunk) (err error) {
	dir := filepath.Dir(path)
	f, err := os.CreateTemp(dir, ".fbc-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(f.Name()) //nolint:errcheck
		}
	}()
	if err = Encode(f, c); err != nil {
		_ = f.Close() //nolint:errcheck
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}

// ReadFile loads a chunk written by WriteFile.
func ReadFile(path string) (*Chunk, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}
