package wasm

import "bytes"

// Instruction is a single WebAssembly instruction: an opcode plus whatever
// immediate shape that opcode requires. Block-style instructions own their
// nested body by value, so the whole sequence is a small acyclic tree -
// no arena, no back-references. The trailing `end` (and, for `if`, the
// `else` byte) is never stored here; both encoders synthesize it when they
// close a block (see EncodeInstructionsTo).
type Instruction struct {
	Imm    any
	Opcode byte
}

// BlockImm holds the block type and nested body for block, loop, and try.
type BlockImm struct {
	Body []Instruction
	Type int32 // BlockTypeVoid/I32/.../V128, or >=0 a type index
}

// IfImm holds the block type and the then/else bodies for if.
type IfImm struct {
	Then []Instruction
	Else []Instruction // nil if no else branch
	Type int32
}

// BranchImm holds the label index for br, br_if, rethrow, delegate,
// br_on_null, br_on_non_null.
type BranchImm struct {
	LabelIdx uint32
}

// BrTableImm holds the label vector and default label for br_table.
type BrTableImm struct {
	Labels  []uint32
	Default uint32
}

// CallImm holds the function index for call and return_call.
type CallImm struct {
	FuncIdx uint32
}

// CallIndirectImm holds the type and table indices for call_indirect and
// return_call_indirect.
type CallIndirectImm struct {
	TypeIdx  uint32
	TableIdx uint32
}

// CallRefImm holds the type index for call_ref and return_call_ref.
type CallRefImm struct {
	TypeIdx uint32
}

// LocalImm holds the local index for local.get/set/tee.
type LocalImm struct {
	LocalIdx uint32
}

// GlobalImm holds the global index for global.get/set.
type GlobalImm struct {
	GlobalIdx uint32
}

// TableImm holds the table index for table.get/table.set.
type TableImm struct {
	TableIdx uint32
}

// MemoryImm holds a memarg (align, offset) plus an optional non-zero memory
// index (multi-memory proposal).
type MemoryImm struct {
	Offset uint64
	Align  uint32
	MemIdx uint32
}

// MemoryIdxImm holds the memory index for memory.size/memory.grow.
type MemoryIdxImm struct {
	MemIdx uint32
}

// I32Imm, I64Imm, F32Imm, F64Imm hold the literal for the const instructions.
type I32Imm struct{ Value int32 }
type I64Imm struct{ Value int64 }
type F32Imm struct{ Value float32 }
type F64Imm struct{ Value float64 }

// MiscImm holds the sub-opcode and operand indices for 0xFC instructions
// other than the saturating truncations (which carry none).
type MiscImm struct {
	Operands  []uint32
	SubOpcode uint32
}

// RefNullImm holds the heap type for ref.null.
type RefNullImm struct {
	HeapType int64
}

// RefFuncImm holds the function index for ref.func.
type RefFuncImm struct {
	FuncIdx uint32
}

// SelectTypeImm holds the exact result type list for a typed select.
type SelectTypeImm struct {
	Types []ValType
}

// AtomicImm holds the 0xFE sub-opcode and its memarg (absent only for
// atomic.fence, which instead carries a single reserved zero byte).
type AtomicImm struct {
	MemArg    *MemoryImm
	SubOpcode uint32
}

// GCImm holds the 0xFB sub-opcode and whichever fields that sub-opcode uses.
type GCImm struct {
	SubOpcode uint32
	TypeIdx   uint32
	FieldIdx  uint32
	TypeIdx2  uint32
	DataIdx   uint32
	ElemIdx   uint32
	Size      uint32
	LabelIdx  uint32
	HeapType  int64
	HeapType2 int64
	CastFlags byte
}

// ThrowImm holds the tag index for throw and catch.
type ThrowImm struct {
	TagIdx uint32
}

// CatchClause is one arm of a try_table instruction.
type CatchClause struct {
	Kind     byte // CatchKindCatch, CatchKindCatchRef, CatchKindCatchAll, CatchKindCatchAllRef
	TagIdx   uint32
	LabelIdx uint32
}

// TryTableImm holds the block type, nested body, and catch clauses for
// try_table.
type TryTableImm struct {
	Body    []Instruction
	Catches []CatchClause
	Type    int32
}

// EncodeInstructionTo appends the binary encoding of a single instruction to
// buf, recursing into nested bodies for block/loop/if/try_table.
func EncodeInstructionTo(buf *bytes.Buffer, instr *Instruction) {
	buf.WriteByte(instr.Opcode)

	switch instr.Opcode {
	case OpBlock, OpLoop:
		imm := instr.Imm.(BlockImm)
		WriteLEB128s(buf, imm.Type)
		EncodeInstructionsTo(buf, imm.Body)
		buf.WriteByte(OpEnd)

	case OpTry:
		imm := instr.Imm.(BlockImm)
		WriteLEB128s(buf, imm.Type)
		EncodeInstructionsTo(buf, imm.Body)
		buf.WriteByte(OpEnd)

	case OpIf:
		imm := instr.Imm.(IfImm)
		WriteLEB128s(buf, imm.Type)
		EncodeInstructionsTo(buf, imm.Then)
		if imm.Else != nil {
			buf.WriteByte(OpElse)
			EncodeInstructionsTo(buf, imm.Else)
		}
		buf.WriteByte(OpEnd)

	case OpTryTable:
		imm := instr.Imm.(TryTableImm)
		WriteLEB128s(buf, imm.Type)
		WriteLEB128u(buf, uint32(len(imm.Catches)))
		for _, c := range imm.Catches {
			buf.WriteByte(c.Kind)
			if c.Kind == CatchKindCatch || c.Kind == CatchKindCatchRef {
				WriteLEB128u(buf, c.TagIdx)
			}
			WriteLEB128u(buf, c.LabelIdx)
		}
		EncodeInstructionsTo(buf, imm.Body)
		buf.WriteByte(OpEnd)

	case OpCatch, OpThrow:
		imm := instr.Imm.(ThrowImm)
		WriteLEB128u(buf, imm.TagIdx)

	case OpRethrow, OpDelegate:
		imm := instr.Imm.(BranchImm)
		WriteLEB128u(buf, imm.LabelIdx)

	case OpBr, OpBrIf:
		imm := instr.Imm.(BranchImm)
		WriteLEB128u(buf, imm.LabelIdx)

	case OpBrTable:
		imm := instr.Imm.(BrTableImm)
		WriteLEB128u(buf, uint32(len(imm.Labels)))
		for _, l := range imm.Labels {
			WriteLEB128u(buf, l)
		}
		WriteLEB128u(buf, imm.Default)

	case OpCall, OpReturnCall:
		imm := instr.Imm.(CallImm)
		WriteLEB128u(buf, imm.FuncIdx)

	case OpCallIndirect, OpReturnCallIndirect:
		imm := instr.Imm.(CallIndirectImm)
		WriteLEB128u(buf, imm.TypeIdx)
		WriteLEB128u(buf, imm.TableIdx)

	case OpCallRef, OpReturnCallRef:
		imm := instr.Imm.(CallRefImm)
		WriteLEB128u(buf, imm.TypeIdx)

	case OpLocalGet, OpLocalSet, OpLocalTee:
		imm := instr.Imm.(LocalImm)
		WriteLEB128u(buf, imm.LocalIdx)

	case OpGlobalGet, OpGlobalSet:
		imm := instr.Imm.(GlobalImm)
		WriteLEB128u(buf, imm.GlobalIdx)

	case OpTableGet, OpTableSet:
		imm := instr.Imm.(TableImm)
		WriteLEB128u(buf, imm.TableIdx)

	case OpI32Load, OpI64Load, OpF32Load, OpF64Load,
		OpI32Load8S, OpI32Load8U, OpI32Load16S, OpI32Load16U,
		OpI64Load8S, OpI64Load8U, OpI64Load16S, OpI64Load16U, OpI64Load32S, OpI64Load32U,
		OpI32Store, OpI64Store, OpF32Store, OpF64Store,
		OpI32Store8, OpI32Store16, OpI64Store8, OpI64Store16, OpI64Store32:
		imm := instr.Imm.(MemoryImm)
		writeMemArg(buf, imm)

	case OpMemorySize, OpMemoryGrow:
		imm := instr.Imm.(MemoryIdxImm)
		WriteLEB128u(buf, imm.MemIdx)

	case OpI32Const:
		imm := instr.Imm.(I32Imm)
		WriteLEB128s(buf, imm.Value)

	case OpI64Const:
		imm := instr.Imm.(I64Imm)
		WriteLEB128s64(buf, imm.Value)

	case OpF32Const:
		imm := instr.Imm.(F32Imm)
		WriteFloat32(buf, imm.Value)

	case OpF64Const:
		imm := instr.Imm.(F64Imm)
		WriteFloat64(buf, imm.Value)

	case OpRefNull:
		imm := instr.Imm.(RefNullImm)
		WriteLEB128s64(buf, imm.HeapType)

	case OpRefFunc:
		imm := instr.Imm.(RefFuncImm)
		WriteLEB128u(buf, imm.FuncIdx)

	case OpBrOnNull, OpBrOnNonNull:
		imm := instr.Imm.(BranchImm)
		WriteLEB128u(buf, imm.LabelIdx)

	case OpSelectType:
		imm := instr.Imm.(SelectTypeImm)
		WriteLEB128u(buf, uint32(len(imm.Types)))
		for _, t := range imm.Types {
			buf.WriteByte(byte(t))
		}

	case OpPrefixMisc:
		encodeMiscImmediate(buf, instr.Imm.(MiscImm))

	case OpPrefixAtomic:
		encodeAtomicImmediate(buf, instr.Imm.(AtomicImm))

	case OpPrefixGC:
		encodeGCImmediate(buf, instr.Imm.(GCImm))

	default:
		// Plain instructions (arithmetic, comparisons, conversions, drop,
		// return, unreachable, nop, and the no-immediate reference ops)
		// carry no immediate at all.
	}
}

// EncodeInstructionsTo appends the binary encoding of a sequence of
// instructions to buf.
func EncodeInstructionsTo(buf *bytes.Buffer, instrs []Instruction) {
	for i := range instrs {
		EncodeInstructionTo(buf, &instrs[i])
	}
}

// EncodeInstructions encodes a sequence of instructions to a fresh byte
// slice.
func EncodeInstructions(instrs []Instruction) []byte {
	var buf bytes.Buffer
	buf.Grow(len(instrs) * 3)
	EncodeInstructionsTo(&buf, instrs)
	return buf.Bytes()
}

func encodeMiscImmediate(buf *bytes.Buffer, imm MiscImm) {
	WriteLEB128u(buf, imm.SubOpcode)
	switch imm.SubOpcode {
	case MiscI32TruncSatF32S, MiscI32TruncSatF32U,
		MiscI32TruncSatF64S, MiscI32TruncSatF64U,
		MiscI64TruncSatF32S, MiscI64TruncSatF32U,
		MiscI64TruncSatF64S, MiscI64TruncSatF64U:
		// No additional operands.
	default:
		for _, v := range imm.Operands {
			WriteLEB128u(buf, v)
		}
	}
}


func encodeAtomicImmediate(buf *bytes.Buffer, imm AtomicImm) {
	WriteLEB128u(buf, imm.SubOpcode)
	if imm.SubOpcode == AtomicFence {
		buf.WriteByte(0)
		return
	}
	if imm.MemArg != nil {
		writeMemArg(buf, *imm.MemArg)
	}
}

func encodeGCImmediate(buf *bytes.Buffer, imm GCImm) {
	WriteLEB128u(buf, imm.SubOpcode)
	switch imm.SubOpcode {
	case GCStructNew, GCStructNewDefault:
		WriteLEB128u(buf, imm.TypeIdx)
	case GCStructGet, GCStructGetS, GCStructGetU, GCStructSet:
		WriteLEB128u(buf, imm.TypeIdx)
		WriteLEB128u(buf, imm.FieldIdx)
	case GCArrayNew, GCArrayNewDefault, GCArrayGet, GCArrayGetS, GCArrayGetU,
		GCArraySet, GCArrayFill:
		WriteLEB128u(buf, imm.TypeIdx)
	case GCArrayNewFixed:
		WriteLEB128u(buf, imm.TypeIdx)
		WriteLEB128u(buf, imm.Size)
	case GCArrayNewData, GCArrayInitData:
		WriteLEB128u(buf, imm.TypeIdx)
		WriteLEB128u(buf, imm.DataIdx)
	case GCArrayNewElem, GCArrayInitElem:
		WriteLEB128u(buf, imm.TypeIdx)
		WriteLEB128u(buf, imm.ElemIdx)
	case GCArrayCopy:
		WriteLEB128u(buf, imm.TypeIdx)
		WriteLEB128u(buf, imm.TypeIdx2)
	case GCRefTest, GCRefTestNull, GCRefCast, GCRefCastNull:
		WriteLEB128s64(buf, imm.HeapType)
	case GCBrOnCast, GCBrOnCastFail:
		buf.WriteByte(imm.CastFlags)
		WriteLEB128u(buf, imm.LabelIdx)
		WriteLEB128s64(buf, imm.HeapType)
		WriteLEB128s64(buf, imm.HeapType2)
	case GCArrayLen, GCAnyConvertExtern, GCExternConvertAny,
		GCRefI31, GCI31GetS, GCI31GetU:
		// No immediates.
	}
}

// Multi-memory memarg bit flag.
const memArgMultiMemBit = 0x40

// writeMemArg writes a memarg with multi-memory support: the align LEB128
// carries bit 6 set whenever MemIdx is non-zero, followed by the memory
// index, followed by the offset.
func writeMemArg(buf *bytes.Buffer, imm MemoryImm) {
	alignRaw := imm.Align
	if imm.MemIdx != 0 {
		alignRaw |= memArgMultiMemBit
	}
	WriteLEB128u(buf, alignRaw)
	if imm.MemIdx != 0 {
		WriteLEB128u(buf, imm.MemIdx)
	}
	WriteLEB128u64(buf, imm.Offset)
}
