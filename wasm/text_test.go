package wasm_test

import (
	"strings"
	"testing"

	"github.com/wippyai/wasm-runtime/wasm"
)

func TestEncodeTextEmptyModule(t *testing.T) {
	m := wasm.NewModule()
	got, err := wasm.EncodeText(m)
	if err != nil {
		t.Fatalf("EncodeText: %v", err)
	}
	want := "(module\n)\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestEncodeTextSimpleFunction(t *testing.T) {
	m := wasm.NewModule()
	typeIdx := m.AddFuncType([]wasm.ValType{wasm.ValI32, wasm.ValI32}, []wasm.ValType{wasm.ValI32})
	funcIdx := m.AddFunction(typeIdx)
	m.AddExport("add", wasm.KindFunc, funcIdx)
	m.AddCode(wasm.FuncBody{Body: []wasm.Instruction{
		wasm.LocalGet(0), wasm.LocalGet(1), {Opcode: wasm.OpI32Add},
	}})

	got, err := wasm.EncodeText(m)
	if err != nil {
		t.Fatalf("EncodeText: %v", err)
	}
	for _, want := range []string{
		`(type (func (param i32) (param i32) (result i32)))`,
		`(func (export "add") (type 0) (param i32) (param i32) (result i32)`,
		"local.get 0",
		"local.get 1",
		"i32.add",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q, got:\n%s", want, got)
		}
	}
}

func TestEncodeTextBlockSynthesizesEnd(t *testing.T) {
	m := wasm.NewModule()
	typeIdx := m.AddFuncType(nil, nil)
	funcIdx := m.AddFunction(typeIdx)
	m.AddCode(wasm.FuncBody{Body: []wasm.Instruction{
		{Opcode: wasm.OpBlock, Imm: wasm.BlockImm{
			Type: wasm.BlockTypeVoid,
			Body: []wasm.Instruction{{Opcode: wasm.OpNop}},
		}},
	}})
	m.AddExport("f", wasm.KindFunc, funcIdx)

	got, err := wasm.EncodeText(m)
	if err != nil {
		t.Fatalf("EncodeText: %v", err)
	}
	for _, want := range []string{"block", "nop", "end"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q, got:\n%s", want, got)
		}
	}
}

func TestEncodeTextIfElse(t *testing.T) {
	m := wasm.NewModule()
	typeIdx := m.AddFuncType(nil, []wasm.ValType{wasm.ValI32})
	funcIdx := m.AddFunction(typeIdx)
	m.AddCode(wasm.FuncBody{Body: []wasm.Instruction{
		wasm.I32Const(1),
		{Opcode: wasm.OpIf, Imm: wasm.IfImm{
			Type: wasm.BlockTypeI32,
			Then: []wasm.Instruction{wasm.I32Const(2)},
			Else: []wasm.Instruction{wasm.I32Const(3)},
		}},
	}})
	m.AddExport("f", wasm.KindFunc, funcIdx)

	got, err := wasm.EncodeText(m)
	if err != nil {
		t.Fatalf("EncodeText: %v", err)
	}
	for _, want := range []string{"if (result i32)", "else", "i32.const 2", "i32.const 3"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q, got:\n%s", want, got)
		}
	}
}

func TestEncodeTextMemoryAndData(t *testing.T) {
	m := wasm.NewModule()
	m.AddMemory(wasm.MemoryType{Limits: wasm.Limits{Min: 1}})
	m.AddData(wasm.DataSegment{Active: true, Offset: []wasm.Instruction{wasm.I32Const(0)}, Init: []byte("hi")})

	got, err := wasm.EncodeText(m)
	if err != nil {
		t.Fatalf("EncodeText: %v", err)
	}
	for _, want := range []string{"(memory 1)", "(data", `"hi"`} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q, got:\n%s", want, got)
		}
	}
}

func TestEncodeTextGCStructMnemonics(t *testing.T) {
	m := wasm.NewModule()
	structType := m.AddSubType(wasm.CompType{
		Kind: wasm.CompKindStruct,
		Struct: &wasm.StructType{Fields: []wasm.FieldType{
			{Type: wasm.StorageType{Kind: wasm.StorageKindVal, ValType: wasm.ValI32}},
		}},
	}, true)
	typeIdx := m.AddFuncType(nil, []wasm.ValType{wasm.ValI32})
	funcIdx := m.AddFunction(typeIdx)
	m.AddCode(wasm.FuncBody{Body: []wasm.Instruction{
		wasm.I32Const(1),
		wasm.StructNew(structType),
		wasm.StructGet(structType, 0),
	}})
	m.AddExport("make", wasm.KindFunc, funcIdx)

	got, err := wasm.EncodeText(m)
	if err != nil {
		t.Fatalf("EncodeText: %v", err)
	}
	for _, want := range []string{"(struct (field i32))", "struct.new 0", "struct.get 0 0"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q, got:\n%s", want, got)
		}
	}
}

func TestEncodeTextNameEscaping(t *testing.T) {
	m := wasm.NewModule()
	typeIdx := m.AddFuncType(nil, nil)
	funcIdx := m.AddFunction(typeIdx)
	m.AddCode(wasm.FuncBody{Body: []wasm.Instruction{{Opcode: wasm.OpReturn}}})
	m.AddExport("quote\"slash\\", wasm.KindFunc, funcIdx)

	got, err := wasm.EncodeText(m)
	if err != nil {
		t.Fatalf("EncodeText: %v", err)
	}
	if !strings.Contains(got, `\"`) || !strings.Contains(got, `\\`) {
		t.Errorf("expected escaped quote/backslash, got:\n%s", got)
	}
}

func TestEncodeTextSkipsValidationWhenDisabled(t *testing.T) {
	m := wasm.NewModule()
	m.AddExport("missing", wasm.KindFunc, 0)

	if _, err := wasm.EncodeText(m, wasm.WithTextValidate(false)); err != nil {
		t.Fatalf("EncodeText with validation disabled should not fail: %v", err)
	}
}

func TestEncodeTextCustomIndent(t *testing.T) {
	m := wasm.NewModule()
	typeIdx := m.AddFuncType(nil, nil)
	funcIdx := m.AddFunction(typeIdx)
	m.AddCode(wasm.FuncBody{Body: []wasm.Instruction{{Opcode: wasm.OpReturn}}})
	m.AddExport("f", wasm.KindFunc, funcIdx)

	got, err := wasm.EncodeText(m, wasm.WithIndent("\t"))
	if err != nil {
		t.Fatalf("EncodeText: %v", err)
	}
	if !strings.Contains(got, "\treturn") {
		t.Errorf("expected tab indentation, got:\n%s", got)
	}
}
