package wasm_test

import (
	"bytes"
	"testing"

	"github.com/wippyai/wasm-runtime/wasm"
)

func TestEncodeInstructionsPlain(t *testing.T) {
	instrs := []wasm.Instruction{
		wasm.LocalGet(0),
		wasm.LocalGet(1),
		{Opcode: wasm.OpI32Add},
	}
	got := wasm.EncodeInstructions(instrs)
	want := []byte{wasm.OpLocalGet, 0x00, wasm.OpLocalGet, 0x01, wasm.OpI32Add}
	if !bytes.Equal(got, want) {
		t.Errorf("got %x, want %x", got, want)
	}
}

func TestEncodeInstructionsBlockSynthesizesEnd(t *testing.T) {
	instrs := []wasm.Instruction{
		wasm.Block(wasm.BlockTypeVoid, []wasm.Instruction{wasm.I32Const(1), {Opcode: wasm.OpDrop}}),
	}
	got := wasm.EncodeInstructions(instrs)
	want := []byte{
		wasm.OpBlock, 0x40,
		wasm.OpI32Const, 0x01,
		wasm.OpDrop,
		wasm.OpEnd,
	}
	if !bytes.Equal(got, want) {
		t.Errorf("got %x, want %x", got, want)
	}
}

func TestEncodeInstructionsIfElse(t *testing.T) {
	instrs := []wasm.Instruction{
		wasm.LocalGet(0),
		wasm.If(wasm.BlockTypeVoid,
			[]wasm.Instruction{wasm.I32Const(1), {Opcode: wasm.OpDrop}},
			[]wasm.Instruction{wasm.I32Const(2), {Opcode: wasm.OpDrop}},
		),
	}
	got := wasm.EncodeInstructions(instrs)
	want := []byte{
		wasm.OpLocalGet, 0x00,
		wasm.OpIf, 0x40,
		wasm.OpI32Const, 0x01,
		wasm.OpDrop,
		wasm.OpElse,
		wasm.OpI32Const, 0x02,
		wasm.OpDrop,
		wasm.OpEnd,
	}
	if !bytes.Equal(got, want) {
		t.Errorf("got %x, want %x", got, want)
	}
}

func TestEncodeInstructionsIfNoElse(t *testing.T) {
	instrs := []wasm.Instruction{
		wasm.If(wasm.BlockTypeVoid, []wasm.Instruction{{Opcode: wasm.OpNop}}, nil),
	}
	got := wasm.EncodeInstructions(instrs)
	want := []byte{wasm.OpIf, 0x40, wasm.OpNop, wasm.OpEnd}
	if !bytes.Equal(got, want) {
		t.Errorf("got %x, want %x", got, want)
	}
}

func TestEncodeInstructionsBrTable(t *testing.T) {
	instrs := []wasm.Instruction{wasm.BrTable([]uint32{0, 1, 2}, 0)}
	got := wasm.EncodeInstructions(instrs)
	want := []byte{wasm.OpBrTable, 0x03, 0x00, 0x01, 0x02, 0x00}
	if !bytes.Equal(got, want) {
		t.Errorf("got %x, want %x", got, want)
	}
}

func TestEncodeInstructionsGCStruct(t *testing.T) {
	instrs := []wasm.Instruction{
		wasm.I32Const(1),
		wasm.I32Const(2),
		wasm.StructNew(0),
		wasm.StructGet(0, 1),
	}
	got := wasm.EncodeInstructions(instrs)
	want := []byte{
		wasm.OpI32Const, 0x01,
		wasm.OpI32Const, 0x02,
		wasm.OpPrefixGC, byte(wasm.GCStructNew), 0x00,
		wasm.OpPrefixGC, byte(wasm.GCStructGet), 0x00, 0x01,
	}
	if !bytes.Equal(got, want) {
		t.Errorf("got %x, want %x", got, want)
	}
}

func TestEncodeInstructionsAtomicRMW(t *testing.T) {
	instrs := []wasm.Instruction{wasm.AtomicRMW(wasm.AtomicI32RmwAdd, 2, 0)}
	got := wasm.EncodeInstructions(instrs)
	want := []byte{wasm.OpPrefixAtomic, byte(wasm.AtomicI32RmwAdd), 0x02, 0x00}
	if !bytes.Equal(got, want) {
		t.Errorf("got %x, want %x", got, want)
	}
}

func TestEncodeInstructionsMemArgMultiMemory(t *testing.T) {
	instrs := []wasm.Instruction{wasm.MemoryLoad(wasm.OpI32Load, 2, 0)}
	instrs[0].Imm = wasm.MemoryImm{Align: 2, Offset: 16, MemIdx: 3}
	got := wasm.EncodeInstructions(instrs)
	want := []byte{wasm.OpI32Load, 0x02 | 0x40, 0x03, 0x10}
	if !bytes.Equal(got, want) {
		t.Errorf("got %x, want %x", got, want)
	}
}

func TestEncodeInstructionsReturnCall(t *testing.T) {
	instrs := []wasm.Instruction{wasm.ReturnCall(1)}
	got := wasm.EncodeInstructions(instrs)
	want := []byte{wasm.OpReturnCall, 0x01}
	if !bytes.Equal(got, want) {
		t.Errorf("got %x, want %x", got, want)
	}
}
