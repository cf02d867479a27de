package wasm

import (
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/wippyai/wasm-runtime/wasm/internal/binary"
)

// EncodeBinary encodes m to the canonical WebAssembly binary format. By
// default the module is validated first (see validate.go); pass
// WithValidate(false) to skip that and encode whatever m currently holds.
func EncodeBinary(m *Module, opts ...BinaryOption) ([]byte, error) {
	cfg := newBinaryConfig(opts)

	if cfg.validate {
		if err := validateModule(m); err != nil {
			return nil, err
		}
	}

	w := binary.NewWriter()
	w.WriteU32LE(Magic)
	w.WriteU32LE(Version)

	if len(m.TypeDefs) > 0 {
		sec := binary.NewWriter()
		sec.WriteU32(uint32(len(m.TypeDefs)))
		for _, td := range m.TypeDefs {
			writeTypeDef(sec, td)
		}
		writeSection(w, SectionType, sec.Bytes())
	}

	if len(m.Imports) > 0 {
		sec := binary.NewWriter()
		sec.WriteU32(uint32(len(m.Imports)))
		for _, imp := range m.Imports {
			sec.WriteName(imp.Module)
			sec.WriteName(imp.Name)
			sec.Byte(imp.Desc.Kind)
			switch imp.Desc.Kind {
			case KindFunc:
				sec.WriteU32(imp.Desc.TypeIdx)
			case KindTable:
				if imp.Desc.Table != nil {
					writeTableType(sec, *imp.Desc.Table)
				}
			case KindMemory:
				if imp.Desc.Memory != nil {
					writeMemoryType(sec, *imp.Desc.Memory)
				}
			case KindGlobal:
				if imp.Desc.Global != nil {
					writeGlobalType(sec, *imp.Desc.Global)
				}
			case KindTag:
				if imp.Desc.Tag != nil {
					writeTagType(sec, *imp.Desc.Tag)
				}
			}
		}
		writeSection(w, SectionImport, sec.Bytes())
	}

	if len(m.Funcs) > 0 {
		sec := binary.NewWriter()
		sec.WriteU32(uint32(len(m.Funcs)))
		for _, typeIdx := range m.Funcs {
			sec.WriteU32(typeIdx)
		}
		writeSection(w, SectionFunction, sec.Bytes())
	}

	if len(m.Tables) > 0 {
		sec := binary.NewWriter()
		sec.WriteU32(uint32(len(m.Tables)))
		for _, t := range m.Tables {
			writeTableType(sec, t)
		}
		writeSection(w, SectionTable, sec.Bytes())
	}

	if len(m.Memories) > 0 {
		sec := binary.NewWriter()
		sec.WriteU32(uint32(len(m.Memories)))
		for _, mem := range m.Memories {
			writeMemoryType(sec, mem)
		}
		writeSection(w, SectionMemory, sec.Bytes())
	}

	// Tag section sits between memory and global, matching the exception
	// handling proposal's extension to the canonical section order.
	if len(m.Tags) > 0 {
		sec := binary.NewWriter()
		sec.WriteU32(uint32(len(m.Tags)))
		for _, tag := range m.Tags {
			writeTagType(sec, tag)
		}
		writeSection(w, SectionTag, sec.Bytes())
	}

	if len(m.Globals) > 0 {
		sec := binary.NewWriter()
		sec.WriteU32(uint32(len(m.Globals)))
		for _, g := range m.Globals {
			writeGlobalType(sec, g.Type)
			writeExprTo(sec, g.Init)
		}
		writeSection(w, SectionGlobal, sec.Bytes())
	}

	if len(m.Exports) > 0 {
		sec := binary.NewWriter()
		sec.WriteU32(uint32(len(m.Exports)))
		for _, exp := range m.Exports {
			if !utf8.ValidString(exp.Name) {
				return nil, newErr(KindInvalidName, []string{"export", exp.Name}, "export name is not valid UTF-8")
			}
			sec.WriteName(exp.Name)
			sec.Byte(exp.Kind)
			sec.WriteU32(exp.Idx)
		}
		writeSection(w, SectionExport, sec.Bytes())
	}

	if m.Start != nil {
		sec := binary.NewWriter()
		sec.WriteU32(*m.Start)
		writeSection(w, SectionStart, sec.Bytes())
	}

	if len(m.Elements) > 0 {
		sec := binary.NewWriter()
		sec.WriteU32(uint32(len(m.Elements)))
		for _, elem := range m.Elements {
			writeElement(sec, elem)
		}
		writeSection(w, SectionElement, sec.Bytes())
	}

	dataCount := m.DataCount
	if dataCount == nil && needsDataCount(m) {
		n := uint32(len(m.Data))
		dataCount = &n
	}
	if dataCount != nil {
		sec := binary.NewWriter()
		sec.WriteU32(*dataCount)
		writeSection(w, SectionDataCount, sec.Bytes())
	}

	if len(m.Code) > 0 {
		sec := binary.NewWriter()
		sec.WriteU32(uint32(len(m.Code)))
		for _, body := range m.Code {
			bodyBuf := binary.NewWriter()
			bodyBuf.WriteU32(uint32(len(body.Locals)))
			for _, local := range body.Locals {
				bodyBuf.WriteU32(local.Count)
				writeValOrRefType(bodyBuf, local.ValType, local.RefType)
			}
			writeExprTo(bodyBuf, body.Body)
			sec.WriteU32(uint32(bodyBuf.Len()))
			sec.WriteBytes(bodyBuf.Bytes())
		}
		writeSection(w, SectionCode, sec.Bytes())
	}

	if len(m.Data) > 0 {
		sec := binary.NewWriter()
		sec.WriteU32(uint32(len(m.Data)))
		for _, d := range m.Data {
			writeDataSegment(sec, d)
		}
		writeSection(w, SectionData, sec.Bytes())
	}

	for _, cs := range m.CustomSections {
		sec := binary.NewWriter()
		sec.WriteName(cs.Name)
		sec.WriteBytes(cs.Data)
		writeSection(w, SectionCustom, sec.Bytes())
	}

	cfg.logger.Debug("encoded module", zap.Int("bytes", w.Len()),
		zap.Int("types", len(m.TypeDefs)), zap.Int("funcs", len(m.Funcs)))

	return w.Bytes(), nil
}

// needsDataCount reports whether any code in the module uses a bulk-memory
// instruction that requires the data-count section to precede it.
func needsDataCount(m *Module) bool {
	for _, body := range m.Code {
		if bodyUsesDataIdx(body.Body) {
			return true
		}
	}
	return false
}

func bodyUsesDataIdx(instrs []Instruction) bool {
	for i := range instrs {
		instr := &instrs[i]
		switch instr.Opcode {
		case OpPrefixMisc:
			if imm, ok := instr.Imm.(MiscImm); ok && (imm.SubOpcode == MiscMemoryInit || imm.SubOpcode == MiscDataDrop) {
				return true
			}
		case OpBlock, OpLoop:
			if bodyUsesDataIdx(instr.Imm.(BlockImm).Body) {
				return true
			}
		case OpIf:
			imm := instr.Imm.(IfImm)
			if bodyUsesDataIdx(imm.Then) || bodyUsesDataIdx(imm.Else) {
				return true
			}
		case OpTry:
			if bodyUsesDataIdx(instr.Imm.(BlockImm).Body) {
				return true
			}
		case OpTryTable:
			if bodyUsesDataIdx(instr.Imm.(TryTableImm).Body) {
				return true
			}
		}
	}
	return false
}

func writeSection(w *binary.Writer, id byte, data []byte) {
	w.Byte(id)
	w.WriteU32(uint32(len(data)))
	w.WriteBytes(data)
}

func writeExprTo(w *binary.Writer, instrs []Instruction) {
	w.WriteBytes(EncodeInstructions(instrs))
	w.Byte(OpEnd)
}

func writeValTypes(w *binary.Writer, types []ValType) {
	w.WriteU32(uint32(len(types)))
	for _, t := range types {
		w.Byte(byte(t))
	}
}

func writeValOrRefType(w *binary.Writer, v ValType, ref *RefType) {
	if ref != nil {
		writeRefType(w, *ref)
		return
	}
	w.Byte(byte(v))
}

func writeRefType(w *binary.Writer, ref RefType) {
	if ref.Nullable {
		w.Byte(byte(ValRefNull))
	} else {
		w.Byte(byte(ValRef))
	}
	w.WriteS64(ref.HeapType)
}

func writeLimits(w *binary.Writer, l Limits) {
	var flags byte
	if l.Max != nil {
		flags |= LimitsHasMax
	}
	if l.Shared {
		flags |= LimitsShared
	}
	if l.Memory64 {
		flags |= LimitsMemory64
	}
	w.Byte(flags)

	if l.Memory64 {
		w.WriteU64(l.Min)
		if l.Max != nil {
			w.WriteU64(*l.Max)
		}
	} else {
		w.WriteU32(uint32(l.Min))
		if l.Max != nil {
			w.WriteU32(uint32(*l.Max))
		}
	}
}

func writeTableType(w *binary.Writer, t TableType) {
	if len(t.Init) > 0 {
		// Table-with-init form (function-references proposal): 0x40 0x00
		// prefix, then the usual reftype + limits, then the init expr.
		w.Byte(0x40)
		w.Byte(0x00)
		writeRefType(w, t.RefType)
		writeLimits(w, t.Limits)
		writeExprTo(w, t.Init)
	} else {
		writeRefType(w, t.RefType)
		writeLimits(w, t.Limits)
	}
}

func writeMemoryType(w *binary.Writer, m MemoryType) {
	writeLimits(w, m.Limits)
}

func writeGlobalType(w *binary.Writer, g GlobalType) {
	writeValOrRefType(w, g.ValType, g.RefType)
	if g.Mutable {
		w.Byte(1)
	} else {
		w.Byte(0)
	}
}

func writeTagType(w *binary.Writer, t TagType) {
	w.Byte(t.Attribute)
	w.WriteU32(t.TypeIdx)
}

func writeElement(w *binary.Writer, elem Element) {
	flags := elementFlags(elem)
	w.WriteU32(flags)

	hasTableIdx := flags&0x02 != 0 && flags&0x01 == 0
	hasOffset := flags&0x01 == 0

	if hasTableIdx {
		w.WriteU32(elem.TableIdx)
	}
	if hasOffset {
		writeExprTo(w, elem.Offset)
	}

	if flags&0x03 != 0 {
		if elem.UseExprs {
			writeRefType(w, elem.RefType)
		} else {
			w.Byte(0x00) // elemkind: funcref, the only kind in this proposal revision
		}
	}

	if elem.UseExprs {
		w.WriteU32(uint32(len(elem.Exprs)))
		for _, expr := range elem.Exprs {
			writeExprTo(w, expr)
		}
	} else {
		w.WriteU32(uint32(len(elem.FuncIdxs)))
		for _, idx := range elem.FuncIdxs {
			w.WriteU32(idx)
		}
	}
}

// elementFlags derives the binary format's element segment flags byte from
// the structured Mode/UseExprs/TableIdx fields.
func elementFlags(elem Element) uint32 {
	var flags uint32
	switch elem.Mode {
	case ElementPassive:
		flags |= 0x01
	case ElementDeclarative:
		flags |= 0x01 | 0x02
	case ElementActive:
		if elem.TableIdx != 0 {
			flags |= 0x02
		}
	}
	if elem.UseExprs {
		flags |= 0x04
	}
	return flags
}

func writeDataSegment(w *binary.Writer, d DataSegment) {
	if !d.Active {
		w.WriteU32(0x01)
		w.WriteU32(uint32(len(d.Init)))
		w.WriteBytes(d.Init)
		return
	}
	if d.MemIdx != 0 {
		w.WriteU32(0x02)
		w.WriteU32(d.MemIdx)
	} else {
		w.WriteU32(0x00)
	}
	writeExprTo(w, d.Offset)
	w.WriteU32(uint32(len(d.Init)))
	w.WriteBytes(d.Init)
}

func writeTypeDef(w *binary.Writer, td TypeDef) {
	switch td.Kind {
	case TypeDefKindFunc:
		w.Byte(FuncTypeByte)
		writeFuncType(w, *td.Func)
	case TypeDefKindSub:
		writeSubType(w, *td.Sub)
	case TypeDefKindRec:
		w.Byte(RecTypeByte)
		w.WriteU32(uint32(len(td.Rec.Types)))
		for _, sub := range td.Rec.Types {
			writeSubType(w, sub)
		}
	}
}

func writeFuncType(w *binary.Writer, ft FuncType) {
	if len(ft.ExtParams) > 0 {
		writeRefOrVals(w, ft.ExtParams)
	} else {
		writeValTypes(w, ft.Params)
	}
	if len(ft.ExtResults) > 0 {
		writeRefOrVals(w, ft.ExtResults)
	} else {
		writeValTypes(w, ft.Results)
	}
}

func writeRefOrVals(w *binary.Writer, types []RefOrVal) {
	w.WriteU32(uint32(len(types)))
	for _, t := range types {
		writeValOrRefType(w, t.Val, t.Ref)
	}
}

func writeSubType(w *binary.Writer, sub SubType) {
	if len(sub.Parents) > 0 || !sub.Final {
		if sub.Final {
			w.Byte(SubFinalByte)
		} else {
			w.Byte(SubTypeByte)
		}
		w.WriteU32(uint32(len(sub.Parents)))
		for _, p := range sub.Parents {
			w.WriteU32(p)
		}
		writeCompType(w, sub.CompType)
	} else {
		writeCompType(w, sub.CompType)
	}
}

func writeCompType(w *binary.Writer, ct CompType) {
	switch ct.Kind {
	case CompKindFunc:
		w.Byte(FuncTypeByte)
		writeFuncType(w, *ct.Func)
	case CompKindStruct:
		w.Byte(StructTypeByte)
		writeStructType(w, *ct.Struct)
	case CompKindArray:
		w.Byte(ArrayTypeByte)
		writeArrayType(w, *ct.Array)
	}
}

func writeStructType(w *binary.Writer, st StructType) {
	w.WriteU32(uint32(len(st.Fields)))
	for _, f := range st.Fields {
		writeFieldType(w, f)
	}
}

func writeArrayType(w *binary.Writer, at ArrayType) {
	writeFieldType(w, at.Element)
}

func writeFieldType(w *binary.Writer, ft FieldType) {
	writeStorageType(w, ft.Type)
	if ft.Mutable {
		w.Byte(1)
	} else {
		w.Byte(0)
	}
}

func writeStorageType(w *binary.Writer, st StorageType) {
	switch st.Kind {
	case StorageKindVal:
		w.Byte(byte(st.ValType))
	case StorageKindPacked:
		w.Byte(st.Packed)
	case StorageKindRef:
		writeRefType(w, st.RefType)
	}
}
