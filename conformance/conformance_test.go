// Package conformance feeds binaries produced by wasm.EncodeBinary through
// wazero, a real WebAssembly engine, to confirm a conforming validator
// accepts them and (where applicable) that they execute with the expected
// result. This package is test-only: the core library never imports wazero.
package conformance

import (
	"context"
	"testing"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/experimental"

	"github.com/wippyai/wasm-runtime/wasm"
)

// threadsRuntime enables the shared-memory/atomics proposal's core feature
// bit so S4's atomic.rmw.add instance validates against shared memory.
func threadsRuntime(ctx context.Context) wazero.Runtime {
	cfg := wazero.NewRuntimeConfig().WithCoreFeatures(api.CoreFeaturesV2 | experimental.CoreFeaturesThreads)
	return wazero.NewRuntimeWithConfig(ctx, cfg)
}

func TestS1EmptyModuleIsEightBytes(t *testing.T) {
	m := wasm.NewModule()
	got, err := wasm.EncodeBinary(m)
	if err != nil {
		t.Fatalf("EncodeBinary: %v", err)
	}
	want := []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}
	if len(got) != 8 {
		t.Fatalf("got %d bytes, want 8", len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("byte %d: got 0x%02x, want 0x%02x", i, got[i], want[i])
		}
	}
}

func TestS2AddFunctionExecutes(t *testing.T) {
	ctx := context.Background()
	m := wasm.NewModule()
	typeIdx := m.AddFuncType([]wasm.ValType{wasm.ValI32, wasm.ValI32}, []wasm.ValType{wasm.ValI32})
	funcIdx := m.AddFunction(typeIdx)
	m.AddExport("add", wasm.KindFunc, funcIdx)
	m.AddCode(wasm.FuncBody{Body: []wasm.Instruction{
		wasm.LocalGet(0), wasm.LocalGet(1), {Opcode: wasm.OpI32Add}, {Opcode: wasm.OpReturn},
	}})

	bin, err := wasm.EncodeBinary(m)
	if err != nil {
		t.Fatalf("EncodeBinary: %v", err)
	}

	r := wazero.NewRuntime(ctx)
	defer r.Close(ctx)

	compiled, err := r.CompileModule(ctx, bin)
	if err != nil {
		t.Fatalf("CompileModule: %v", err)
	}
	inst, err := r.InstantiateModule(ctx, compiled, wazero.NewModuleConfig())
	if err != nil {
		t.Fatalf("InstantiateModule: %v", err)
	}
	defer inst.Close(ctx)

	results, err := inst.ExportedFunction("add").Call(ctx, 2, 3)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if len(results) != 1 || int32(results[0]) != 5 {
		t.Fatalf("add(2,3) = %v, want [5]", results)
	}
}

func TestS4SharedMemoryAtomicRmwAddValidates(t *testing.T) {
	ctx := context.Background()
	m := wasm.NewModule()
	maxPages := uint64(1)
	m.AddMemory(wasm.MemoryType{Limits: wasm.Limits{Min: 1, Max: &maxPages, Shared: true}})
	typeIdx := m.AddFuncType(nil, []wasm.ValType{wasm.ValI32})
	funcIdx := m.AddFunction(typeIdx)
	m.AddCode(wasm.FuncBody{Body: []wasm.Instruction{
		wasm.I32Const(0), wasm.I32Const(1), wasm.AtomicRMW(wasm.AtomicI32RmwAdd, 2, 0),
	}})
	m.AddExport("bump", wasm.KindFunc, funcIdx)

	bin, err := wasm.EncodeBinary(m)
	if err != nil {
		t.Fatalf("EncodeBinary: %v", err)
	}

	r := threadsRuntime(ctx)
	defer r.Close(ctx)

	if _, err := r.CompileModule(ctx, bin); err != nil {
		t.Fatalf("CompileModule (shared memory + atomic rmw): %v", err)
	}
}

func TestS6BrTableEncodesLabelVectorAndDefault(t *testing.T) {
	m := wasm.NewModule()
	typeIdx := m.AddFuncType([]wasm.ValType{wasm.ValI32}, nil)
	funcIdx := m.AddFunction(typeIdx)
	m.AddCode(wasm.FuncBody{Body: []wasm.Instruction{
		wasm.Block(wasm.BlockTypeVoid, []wasm.Instruction{
			wasm.Block(wasm.BlockTypeVoid, []wasm.Instruction{
				wasm.Block(wasm.BlockTypeVoid, []wasm.Instruction{
					wasm.LocalGet(0),
					wasm.BrTable([]uint32{0, 1, 2}, 0),
				}),
			}),
		}),
	}})
	m.AddExport("sw", wasm.KindFunc, funcIdx)

	ctx := context.Background()
	bin, err := wasm.EncodeBinary(m)
	if err != nil {
		t.Fatalf("EncodeBinary: %v", err)
	}
	r := wazero.NewRuntime(ctx)
	defer r.Close(ctx)
	if _, err := r.CompileModule(ctx, bin); err != nil {
		t.Fatalf("CompileModule (br_table): %v", err)
	}
}
