package bytecode

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"ferrum/internal/source"
)

func TestWriteAndDisassemble(t *testing.T) {
	c := NewChunk("main")
	ref := c.Write(Instr{Op: OpIncRC, Addr: 0x1000, Size: 8}, source.Span{Line: 3, Col: 5})
	if ref.Pos != 0 || ref.Size != InstrSize {
		t.Fatalf("ref = %+v", ref)
	}
	c.Write(Instr{Op: OpUnlockMut, Addr: 0x2000, Size: 4}, source.Span{Line: 4, Col: 1})

	code := c.Code()
	if code[0] != byte(OpIncRC) || code[1] != 0x00 || code[2] != 0x10 || code[9] != 8 {
		t.Fatalf("operands not little-endian: % x", code[:InstrSize])
	}
	if len(c.Lines()) != len(code) {
		t.Fatalf("expected one position per code byte")
	}

	var buf bytes.Buffer
	if err := c.Disassemble(&buf, 0, 0); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "INC_RC") || !strings.Contains(out, "addr=0x2000 size=4") {
		t.Fatalf("disassembly = %q", out)
	}
	buf.Reset()
	if err := c.Disassemble(&buf, 0, 1); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "UNLOCK_MUT") {
		t.Fatalf("count limit ignored: %q", buf.String())
	}
}

func TestWriteValueAndClear(t *testing.T) {
	c := NewChunk("consts")
	if i := WriteValue(c, uint32(0xdeadbeef)); i != 0 {
		t.Fatalf("first offset = %d", i)
	}
	if i := WriteValue(c, int8(-1)); i != 4 {
		t.Fatalf("second offset = %d", i)
	}
	if !bytes.Equal(c.Vals(), []byte{0xef, 0xbe, 0xad, 0xde, 0xff}) {
		t.Fatalf("vals = % x", c.Vals())
	}
	c.Write(Instr{Op: OpDecRC}, source.Span{})
	c.Clear()
	if !c.IsEmpty() || len(c.Vals()) != 0 || len(c.Lines()) != 0 {
		t.Fatalf("clear left data behind")
	}
}

func TestObjectRoundTrip(t *testing.T) {
	c := NewChunk("demo")
	c.Write(Instr{Op: OpLockMut, Addr: 42, Size: 16}, source.Span{Line: 1, Col: 1})
	path := filepath.Join(t.TempDir(), "demo.fbc")
	if err := WriteFile(path, c); err != nil {
		t.Fatal(err)
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	ins, err := got.Instructions()
	if err != nil {
		t.Fatal(err)
	}
	if got.Name() != "demo" || len(ins) != 1 || ins[0] != (Instr{Op: OpLockMut, Addr: 42, Size: 16}) {
		t.Fatalf("round trip = %q %+v", got.Name(), ins)
	}
}

func TestDecodeRejectsBadCode(t *testing.T) {
	c := NewChunk("bad")
	c.code = append(c.code, 0x7f)
	c.lines = append(c.lines, Pos{})
	var buf bytes.Buffer
	if err := Encode(&buf, c); err != nil {
		t.Fatal(err)
	}
	_, err := Decode(&buf)
	var oe *OpcodeError
	if !errors.As(err, &oe) || oe.Byte != 0x7f {
		t.Fatalf("expected opcode error, got %v", err)
	}
}
