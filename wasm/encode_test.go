package wasm_test

import (
	"bytes"
	"testing"

	"github.com/wippyai/wasm-runtime/wasm"
)

// sectionIDs walks a well-formed binary module and returns the non-custom
// section IDs it finds, in emission order.
func sectionIDs(t *testing.T, data []byte) []byte {
	t.Helper()
	if len(data) < 8 {
		t.Fatalf("module too short: %d bytes", len(data))
	}
	var ids []byte
	pos := 8
	for pos < len(data) {
		id := data[pos]
		pos++
		size, n := decodeLEB128u(data[pos:])
		pos += n
		if id != wasm.SectionCustom {
			ids = append(ids, id)
		}
		pos += int(size)
	}
	return ids
}

func decodeLEB128u(data []byte) (uint32, int) {
	var result uint32
	var shift uint
	for i, b := range data {
		result |= uint32(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, i + 1
		}
		shift += 7
	}
	return result, len(data)
}

func TestEncodeBinaryEmptyModule(t *testing.T) {
	m := wasm.NewModule()
	got, err := wasm.EncodeBinary(m)
	if err != nil {
		t.Fatalf("EncodeBinary: %v", err)
	}
	want := []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}
	if !bytes.Equal(got, want) {
		t.Errorf("got %x, want %x", got, want)
	}
}

func TestEncodeBinaryHeaderAlwaysPresent(t *testing.T) {
	m := wasm.NewModule()
	typeIdx := m.AddFuncType(nil, nil)
	funcIdx := m.AddFunction(typeIdx)
	m.AddCode(wasm.FuncBody{Body: []wasm.Instruction{{Opcode: wasm.OpReturn}}})
	m.AddExport("f", wasm.KindFunc, funcIdx)

	got, err := wasm.EncodeBinary(m)
	if err != nil {
		t.Fatalf("EncodeBinary: %v", err)
	}
	want := []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}
	if !bytes.Equal(got[:8], want) {
		t.Errorf("header = %x, want %x", got[:8], want)
	}
}

func TestEncodeBinarySectionOrderIsIncreasing(t *testing.T) {
	m := wasm.NewModule()
	typeIdx := m.AddFuncType([]wasm.ValType{wasm.ValI32, wasm.ValI32}, []wasm.ValType{wasm.ValI32})
	funcIdx := m.AddFunction(typeIdx)
	m.AddExport("add", wasm.KindFunc, funcIdx)
	m.AddCode(wasm.FuncBody{Body: []wasm.Instruction{
		wasm.LocalGet(0), wasm.LocalGet(1), {Opcode: wasm.OpI32Add}, {Opcode: wasm.OpReturn},
	}})

	got, err := wasm.EncodeBinary(m)
	if err != nil {
		t.Fatalf("EncodeBinary: %v", err)
	}

	ids := sectionIDs(t, got)
	for i := 1; i < len(ids); i++ {
		if ids[i] <= ids[i-1] {
			t.Fatalf("section ids not strictly increasing: %v", ids)
		}
	}
}

func TestEncodeBinaryDeterministic(t *testing.T) {
	build := func() *wasm.Module {
		m := wasm.NewModule()
		typeIdx := m.AddFuncType([]wasm.ValType{wasm.ValI32}, []wasm.ValType{wasm.ValI32})
		funcIdx := m.AddFunction(typeIdx)
		m.AddExport("id", wasm.KindFunc, funcIdx)
		m.AddCode(wasm.FuncBody{Body: []wasm.Instruction{wasm.LocalGet(0), {Opcode: wasm.OpReturn}}})
		return m
	}
	a, err := wasm.EncodeBinary(build())
	if err != nil {
		t.Fatalf("EncodeBinary: %v", err)
	}
	b, err := wasm.EncodeBinary(build())
	if err != nil {
		t.Fatalf("EncodeBinary: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Errorf("encoding the same module twice produced different bytes")
	}
}

func TestEncodeBinarySharedMemoryRequiresMax(t *testing.T) {
	m := wasm.NewModule()
	m.AddMemory(wasm.MemoryType{Limits: wasm.Limits{Min: 1, Shared: true}})

	_, err := wasm.EncodeBinary(m)
	if err == nil {
		t.Fatal("expected InvalidLimits error for shared memory without max")
	}
	encErr, ok := err.(*wasm.EncodeError)
	if !ok || encErr.Kind != wasm.KindInvalidLimits {
		t.Fatalf("got %v, want InvalidLimits EncodeError", err)
	}
}

func TestEncodeBinarySharedMemoryWithMax(t *testing.T) {
	m := wasm.NewModule()
	maxPages := uint64(1)
	m.AddMemory(wasm.MemoryType{Limits: wasm.Limits{Min: 1, Max: &maxPages, Shared: true}})
	funcIdx := m.AddFunction(m.AddFuncType(nil, nil))
	m.AddCode(wasm.FuncBody{Body: []wasm.Instruction{
		wasm.I32Const(0), wasm.I32Const(1), wasm.AtomicRMW(wasm.AtomicI32RmwAdd, 2, 0), {Opcode: wasm.OpDrop},
	}})
	m.AddExport("bump", wasm.KindFunc, funcIdx)

	if _, err := wasm.EncodeBinary(m); err != nil {
		t.Fatalf("EncodeBinary: %v", err)
	}
}

func TestEncodeBinaryFunctionCodeCountMismatch(t *testing.T) {
	m := wasm.NewModule()
	typeIdx := m.AddFuncType(nil, nil)
	m.AddFunction(typeIdx)
	// No matching AddCode call.

	_, err := wasm.EncodeBinary(m)
	if err == nil {
		t.Fatal("expected SectionCountMismatch error")
	}
	encErr, ok := err.(*wasm.EncodeError)
	if !ok || encErr.Kind != wasm.KindSectionCountMismatch {
		t.Fatalf("got %v, want SectionCountMismatch EncodeError", err)
	}
}

func TestEncodeBinaryIndexOutOfRange(t *testing.T) {
	m := wasm.NewModule()
	m.AddExport("missing", wasm.KindFunc, 0)

	_, err := wasm.EncodeBinary(m)
	if err == nil {
		t.Fatal("expected IndexOutOfRange error")
	}
	encErr, ok := err.(*wasm.EncodeError)
	if !ok || encErr.Kind != wasm.KindIndexOutOfRange {
		t.Fatalf("got %v, want IndexOutOfRange EncodeError", err)
	}
}

func TestEncodeBinaryGCStructRoundTripsThroughEncoding(t *testing.T) {
	m := wasm.NewModule()
	structType := m.AddSubType(wasm.CompType{
		Kind: wasm.CompKindStruct,
		Struct: &wasm.StructType{Fields: []wasm.FieldType{
			{Type: wasm.StorageType{Kind: wasm.StorageKindVal, ValType: wasm.ValI32}, Mutable: false},
			{Type: wasm.StorageType{Kind: wasm.StorageKindVal, ValType: wasm.ValI32}, Mutable: true},
		}},
	}, true)

	typeIdx := m.AddFuncType(nil, []wasm.ValType{wasm.ValI32})
	funcIdx := m.AddFunction(typeIdx)
	m.AddCode(wasm.FuncBody{Body: []wasm.Instruction{
		wasm.I32Const(1),
		wasm.I32Const(2),
		wasm.StructNew(structType),
		wasm.StructGet(structType, 1),
	}})
	m.AddExport("make", wasm.KindFunc, funcIdx)

	if _, err := wasm.EncodeBinary(m); err != nil {
		t.Fatalf("EncodeBinary: %v", err)
	}
}

func TestEncodeBinaryDuplicateExportNameRejected(t *testing.T) {
	m := wasm.NewModule()
	typeIdx := m.AddFuncType(nil, nil)
	f0 := m.AddFunction(typeIdx)
	f1 := m.AddFunction(typeIdx)
	m.AddCode(wasm.FuncBody{Body: []wasm.Instruction{{Opcode: wasm.OpReturn}}})
	m.AddCode(wasm.FuncBody{Body: []wasm.Instruction{{Opcode: wasm.OpReturn}}})
	m.AddExport("dup", wasm.KindFunc, f0)
	m.AddExport("dup", wasm.KindFunc, f1)

	_, err := wasm.EncodeBinary(m)
	if err == nil {
		t.Fatal("expected InvalidName error for duplicate export")
	}
	encErr, ok := err.(*wasm.EncodeError)
	if !ok || encErr.Kind != wasm.KindInvalidName {
		t.Fatalf("got %v, want InvalidName EncodeError", err)
	}
}

func TestEncodeBinarySkipsValidationWhenDisabled(t *testing.T) {
	m := wasm.NewModule()
	m.AddExport("missing", wasm.KindFunc, 0)

	if _, err := wasm.EncodeBinary(m, wasm.WithValidate(false)); err != nil {
		t.Fatalf("EncodeBinary with validation disabled should not fail: %v", err)
	}
}
