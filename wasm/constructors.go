package wasm

// Constructors for the instruction shapes a caller reaches for constantly.
// These are conveniences over Instruction{Opcode, Imm} literals; opcodes
// with no immediate (arithmetic, comparisons, conversions, drop, return,
// unreachable, nop) need no constructor at all: wasm.Instruction{Opcode:
// wasm.OpI32Add} already reads fine.

// I32Const returns an i32.const instruction.
func I32Const(v int32) Instruction { return Instruction{Opcode: OpI32Const, Imm: I32Imm{Value: v}} }

// I64Const returns an i64.const instruction.
func I64Const(v int64) Instruction { return Instruction{Opcode: OpI64Const, Imm: I64Imm{Value: v}} }

// F32Const returns an f32.const instruction.
func F32Const(v float32) Instruction { return Instruction{Opcode: OpF32Const, Imm: F32Imm{Value: v}} }

// F64Const returns an f64.const instruction.
func F64Const(v float64) Instruction { return Instruction{Opcode: OpF64Const, Imm: F64Imm{Value: v}} }

// LocalGet returns a local.get instruction.
func LocalGet(idx uint32) Instruction { return Instruction{Opcode: OpLocalGet, Imm: LocalImm{LocalIdx: idx}} }

// LocalSet returns a local.set instruction.
func LocalSet(idx uint32) Instruction { return Instruction{Opcode: OpLocalSet, Imm: LocalImm{LocalIdx: idx}} }

// LocalTee returns a local.tee instruction.
func LocalTee(idx uint32) Instruction { return Instruction{Opcode: OpLocalTee, Imm: LocalImm{LocalIdx: idx}} }

// GlobalGet returns a global.get instruction.
func GlobalGet(idx uint32) Instruction { return Instruction{Opcode: OpGlobalGet, Imm: GlobalImm{GlobalIdx: idx}} }

// GlobalSet returns a global.set instruction.
func GlobalSet(idx uint32) Instruction { return Instruction{Opcode: OpGlobalSet, Imm: GlobalImm{GlobalIdx: idx}} }

// Call returns a call instruction.
func Call(funcIdx uint32) Instruction { return Instruction{Opcode: OpCall, Imm: CallImm{FuncIdx: funcIdx}} }

// ReturnCall returns a return_call instruction (tail-call proposal).
func ReturnCall(funcIdx uint32) Instruction {
	return Instruction{Opcode: OpReturnCall, Imm: CallImm{FuncIdx: funcIdx}}
}

// CallIndirect returns a call_indirect instruction.
func CallIndirect(typeIdx, tableIdx uint32) Instruction {
	return Instruction{Opcode: OpCallIndirect, Imm: CallIndirectImm{TypeIdx: typeIdx, TableIdx: tableIdx}}
}

// ReturnCallIndirect returns a return_call_indirect instruction (tail-call
// proposal).
func ReturnCallIndirect(typeIdx, tableIdx uint32) Instruction {
	return Instruction{Opcode: OpReturnCallIndirect, Imm: CallIndirectImm{TypeIdx: typeIdx, TableIdx: tableIdx}}
}

// CallRef returns a call_ref instruction (typed function references).
func CallRef(typeIdx uint32) Instruction { return Instruction{Opcode: OpCallRef, Imm: CallRefImm{TypeIdx: typeIdx}} }

// ReturnCallRef returns a return_call_ref instruction.
func ReturnCallRef(typeIdx uint32) Instruction {
	return Instruction{Opcode: OpReturnCallRef, Imm: CallRefImm{TypeIdx: typeIdx}}
}

// Br returns a br instruction.
func Br(labelIdx uint32) Instruction { return Instruction{Opcode: OpBr, Imm: BranchImm{LabelIdx: labelIdx}} }

// BrIf returns a br_if instruction.
func BrIf(labelIdx uint32) Instruction { return Instruction{Opcode: OpBrIf, Imm: BranchImm{LabelIdx: labelIdx}} }

// BrTable returns a br_table instruction.
func BrTable(labels []uint32, def uint32) Instruction {
	return Instruction{Opcode: OpBrTable, Imm: BrTableImm{Labels: labels, Default: def}}
}

// Block returns a block instruction wrapping body.
func Block(blockType int32, body []Instruction) Instruction {
	return Instruction{Opcode: OpBlock, Imm: BlockImm{Type: blockType, Body: body}}
}

// Loop returns a loop instruction wrapping body.
func Loop(blockType int32, body []Instruction) Instruction {
	return Instruction{Opcode: OpLoop, Imm: BlockImm{Type: blockType, Body: body}}
}

// If returns an if instruction with a then branch and, when elseBody is
// non-nil, an else branch.
func If(blockType int32, thenBody, elseBody []Instruction) Instruction {
	return Instruction{Opcode: OpIf, Imm: IfImm{Type: blockType, Then: thenBody, Else: elseBody}}
}

// MemArg builds a memory access immediate. Align is the natural alignment's
// log2 (e.g. 2 for 4-byte alignment), matching the binary format, not the
// byte count itself.
func MemArg(align uint32, offset uint64) MemoryImm { return MemoryImm{Align: align, Offset: offset} }

// RefNull returns a ref.null instruction for the given heap type.
func RefNull(heapType int64) Instruction { return Instruction{Opcode: OpRefNull, Imm: RefNullImm{HeapType: heapType}} }

// RefFunc returns a ref.func instruction.
func RefFunc(funcIdx uint32) Instruction { return Instruction{Opcode: OpRefFunc, Imm: RefFuncImm{FuncIdx: funcIdx}} }

// StructNew returns a struct.new instruction (GC proposal).
func StructNew(typeIdx uint32) Instruction {
	return Instruction{Opcode: OpPrefixGC, Imm: GCImm{SubOpcode: GCStructNew, TypeIdx: typeIdx}}
}

// StructGet returns a struct.get instruction.
func StructGet(typeIdx, fieldIdx uint32) Instruction {
	return Instruction{Opcode: OpPrefixGC, Imm: GCImm{SubOpcode: GCStructGet, TypeIdx: typeIdx, FieldIdx: fieldIdx}}
}

// StructSet returns a struct.set instruction.
func StructSet(typeIdx, fieldIdx uint32) Instruction {
	return Instruction{Opcode: OpPrefixGC, Imm: GCImm{SubOpcode: GCStructSet, TypeIdx: typeIdx, FieldIdx: fieldIdx}}
}

// ArrayNewFixed returns an array.new_fixed instruction.
func ArrayNewFixed(typeIdx, size uint32) Instruction {
	return Instruction{Opcode: OpPrefixGC, Imm: GCImm{SubOpcode: GCArrayNewFixed, TypeIdx: typeIdx, Size: size}}
}

// AtomicRMW returns an atomic read-modify-write instruction (threads
// proposal), e.g. i32.atomic.rmw.add.
func AtomicRMW(subOpcode uint32, align uint32, offset uint64) Instruction {
	m := MemArg(align, offset)
	return Instruction{Opcode: OpPrefixAtomic, Imm: AtomicImm{SubOpcode: subOpcode, MemArg: &m}}
}

// AtomicFenceInstr returns an atomic.fence instruction.
func AtomicFenceInstr() Instruction {
	return Instruction{Opcode: OpPrefixAtomic, Imm: AtomicImm{SubOpcode: AtomicFence}}
}

// MemoryLoad returns a plain (non-atomic, non-SIMD) memory load instruction,
// e.g. wasm.MemoryLoad(wasm.OpI32Load, 2, 0).
func MemoryLoad(opcode byte, align uint32, offset uint64) Instruction {
	return Instruction{Opcode: opcode, Imm: MemArg(align, offset)}
}

// MemoryStore returns a plain memory store instruction.
func MemoryStore(opcode byte, align uint32, offset uint64) Instruction {
	return Instruction{Opcode: opcode, Imm: MemArg(align, offset)}
}
