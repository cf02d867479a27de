// Package wasm builds WebAssembly binary modules in memory and encodes
// them to the canonical binary format.
//
// This package is a builder, not a parser: a client constructs a Module by
// appending types, imports, functions, tables, memories, globals, tags,
// exports, element and data segments, and code bodies, then calls
// EncodeBinary to get bytes. There is no decoder; existing .wasm binaries
// are out of scope.
//
// # Supported Features
//
//	WebAssembly 2.0:
//	  - Core value types (i32, i64, f32, f64, v128)
//	  - Functions, tables, memories, globals
//	  - Control flow, calls, local/global access
//	  - Memory and table operations, bulk memory
//	  - Import/export of all definitions
//
//	Post-2.0 Proposals:
//	  - GC (structs, arrays, typed references, heap types, recursion groups)
//	  - Exception handling (tags, throw, try_table)
//	  - Tail calls (return_call, return_call_indirect) and typed function
//	    references (call_ref, return_call_ref)
//	  - Threads (atomic operations, shared memory)
//	  - Memory64 limits
//
// # Building
//
// Assemble a module with the Module builder methods, then encode it:
//
//	m := wasm.NewModule()
//	typeIdx := m.AddFuncType([]wasm.ValType{wasm.ValI32, wasm.ValI32}, []wasm.ValType{wasm.ValI32})
//	funcIdx := m.AddFunction(typeIdx)
//	m.AddExport("add", wasm.KindFunc, funcIdx)
//	m.AddCode(wasm.FuncBody{Body: []wasm.Instruction{
//	    wasm.LocalGet(0),
//	    wasm.LocalGet(1),
//	    {Opcode: wasm.OpI32Add},
//	}})
//
//	bin, err := wasm.EncodeBinary(m)
//
// # Module Structure
//
// A Module holds one flat slice per section kind:
//
//	module.TypeDefs   []TypeDef     // Type section, including GC composite types
//	module.Funcs      []uint32      // Type indices for locally-defined functions
//	module.Tables     []TableType   // Table definitions
//	module.Memories   []MemoryType  // Memory definitions
//	module.Tags       []TagType     // Exception-handling tags
//	module.Globals    []Global      // Global definitions
//	module.Imports    []Import      // Imported definitions
//	module.Exports    []Export      // Exported definitions
//	module.Code       []FuncBody    // Function bodies
//	module.Data       []DataSegment // Data segments
//	module.Elements   []Element     // Element segments
//
// Appending to the same kind twice concatenates into the same section; see
// Module.SetStart for the one exception.
//
// # Instructions
//
// Instruction is a tagged variant: an opcode byte plus whatever immediate
// shape that opcode needs. Block-style instructions (block, loop, if,
// try_table) own their nested body directly, so a function body is a small
// tree, not a flat byte stream; EncodeBinary appends the implicit `end` (and
// `else`, where present) itself.
//
//	encoded := wasm.EncodeInstructions(instructions)
//
// # Validation
//
// EncodeBinary validates by default before encoding; pass
// wasm.WithValidate(false) to skip it. Validation checks:
//   - Type/function/table/memory/global/tag indices are in bounds
//   - The start function has signature [] -> []
//   - Import/export names are valid UTF-8, and export names are unique
//   - Memory limits are well-formed (table limits are not checked)
//   - The function and code section entry counts match
//
// # LEB128 Encoding
//
// The package provides LEB128 utilities used throughout:
//
//	wasm.WriteLEB128u(buf, n)  // Unsigned
//	wasm.WriteLEB128s(buf, n)  // Signed
package wasm
