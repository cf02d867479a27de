package wasm

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// EncodeText renders m as WebAssembly Text Format (WAT): an s-expression
// form using two-space indentation, numeric-only references (no symbolic
// names are assigned), and a flat post-order instruction listing. Exports
// are inlined on their defining entity where possible.
func EncodeText(m *Module, opts ...TextOption) (string, error) {
	cfg := newTextConfig(opts)
	if cfg.validate {
		if err := validateModule(m); err != nil {
			return "", err
		}
	}

	w := &textWriter{indent: cfg.indent}
	w.open("(module")
	if err := w.writeAll(m); err != nil {
		return "", err
	}
	w.close()

	cfg.logger.Debug("encoded module as text", zap.Int("bytes", w.buf.Len()))
	return w.buf.String(), nil
}

// textWriter accumulates WAT source with depth-tracked indentation.
type textWriter struct {
	buf    strings.Builder
	indent string
	depth  int
}

func (w *textWriter) line(format string, args ...any) {
	w.buf.WriteString(strings.Repeat(w.indent, w.depth))
	fmt.Fprintf(&w.buf, format, args...)
	w.buf.WriteByte('\n')
}

// open writes a header line and increases indentation for what follows.
func (w *textWriter) open(format string, args ...any) {
	w.line(format, args...)
	w.depth++
}

// close decreases indentation and writes a lone closing paren.
func (w *textWriter) close() {
	w.depth--
	w.line(")")
}

func (w *textWriter) writeAll(m *Module) error {
	w.writeTypes(m)
	w.writeImports(m)
	w.writeTables(m)
	w.writeMemories(m)
	w.writeTags(m)
	w.writeGlobals(m)
	if err := w.writeFuncs(m); err != nil {
		return err
	}
	w.writeFreestandingExports(m)
	w.writeStart(m)
	if err := w.writeElements(m); err != nil {
		return err
	}
	if err := w.writeData(m); err != nil {
		return err
	}
	w.writeCustomSections(m)
	return nil
}

func (w *textWriter) writeTypes(m *Module) {
	for i := range m.TypeDefs {
		td := &m.TypeDefs[i]
		switch td.Kind {
		case TypeDefKindFunc:
			w.line("(type (func%s))", funcTypeSig(td.Func))
		case TypeDefKindSub:
			w.line("(type %s)", subTypeSig(td.Sub))
		case TypeDefKindRec:
			w.open("(rec")
			for j := range td.Rec.Types {
				w.line("(type %s)", subTypeSig(&td.Rec.Types[j]))
			}
			w.close()
		}
	}
}

func funcTypeSig(ft *FuncType) string {
	var b strings.Builder
	if len(ft.ExtParams) > 0 {
		for _, p := range ft.ExtParams {
			b.WriteString(" (param " + refOrValSig(p) + ")")
		}
	} else {
		for _, p := range ft.Params {
			b.WriteString(" (param " + p.String() + ")")
		}
	}
	if len(ft.ExtResults) > 0 {
		for _, r := range ft.ExtResults {
			b.WriteString(" (result " + refOrValSig(r) + ")")
		}
	} else {
		for _, r := range ft.Results {
			b.WriteString(" (result " + r.String() + ")")
		}
	}
	return b.String()
}

func refOrValSig(rv RefOrVal) string {
	if rv.Ref != nil {
		return refTypeSig(*rv.Ref)
	}
	return rv.Val.String()
}

func refTypeSig(rt RefType) string {
	if rt.Nullable {
		return fmt.Sprintf("(ref null %s)", heapTypeSig(rt.HeapType))
	}
	return fmt.Sprintf("(ref %s)", heapTypeSig(rt.HeapType))
}

func heapTypeSig(ht int64) string {
	switch ht {
	case HeapTypeFunc:
		return "func"
	case HeapTypeExtern:
		return "extern"
	case HeapTypeAny:
		return "any"
	case HeapTypeEq:
		return "eq"
	case HeapTypeI31:
		return "i31"
	case HeapTypeStruct:
		return "struct"
	case HeapTypeArray:
		return "array"
	case HeapTypeExn:
		return "exn"
	case HeapTypeNone:
		return "none"
	case HeapTypeNoExtern:
		return "noextern"
	case HeapTypeNoFunc:
		return "nofunc"
	case HeapTypeNoExn:
		return "noexn"
	default:
		return strconv.FormatInt(ht, 10)
	}
}

func subTypeSig(st *SubType) string {
	var b strings.Builder
	b.WriteString("(sub")
	if st.Final {
		b.WriteString(" final")
	}
	for _, p := range st.Parents {
		fmt.Fprintf(&b, " %d", p)
	}
	b.WriteByte(' ')
	b.WriteString(compTypeSig(&st.CompType))
	b.WriteByte(')')
	return b.String()
}

func compTypeSig(ct *CompType) string {
	switch ct.Kind {
	case CompKindFunc:
		return "(func" + funcTypeSig(ct.Func) + ")"
	case CompKindStruct:
		var b strings.Builder
		b.WriteString("(struct")
		for _, f := range ct.Struct.Fields {
			fmt.Fprintf(&b, " (field %s)", fieldTypeSig(f))
		}
		b.WriteByte(')')
		return b.String()
	case CompKindArray:
		return fmt.Sprintf("(array (field %s))", fieldTypeSig(ct.Array.Element))
	default:
		return "(unknown)"
	}
}

func fieldTypeSig(f FieldType) string {
	s := storageTypeSig(f.Type)
	if f.Mutable {
		return "(mut " + s + ")"
	}
	return s
}

func storageTypeSig(st StorageType) string {
	switch st.Kind {
	case StorageKindPacked:
		if st.Packed == PackedI8 {
			return "i8"
		}
		return "i16"
	case StorageKindRef:
		return refTypeSig(st.RefType)
	default:
		return st.ValType.String()
	}
}

func (w *textWriter) writeImports(m *Module) {
	for _, imp := range m.Imports {
		w.line("(import %s %s %s)", quoteName(imp.Module), quoteName(imp.Name), importDescSig(imp.Desc))
	}
}

func importDescSig(d ImportDesc) string {
	switch d.Kind {
	case KindFunc:
		return fmt.Sprintf("(func (type %d))", d.TypeIdx)
	case KindTable:
		return fmt.Sprintf("(table %s)", tableTypeSig(*d.Table))
	case KindMemory:
		return fmt.Sprintf("(memory %s)", limitsSig(d.Memory.Limits))
	case KindGlobal:
		return fmt.Sprintf("(global %s)", globalTypeSig(*d.Global))
	case KindTag:
		return fmt.Sprintf("(tag (type %d))", d.Tag.TypeIdx)
	default:
		return "(unknown)"
	}
}

func tableTypeSig(t TableType) string {
	return fmt.Sprintf("%s %s", limitsSig(t.Limits), refTypeSig(t.RefType))
}

func limitsSig(l Limits) string {
	prefix := ""
	if l.Memory64 {
		prefix = "i64 "
	}
	if l.Max != nil {
		s := fmt.Sprintf("%s%d %d", prefix, l.Min, *l.Max)
		if l.Shared {
			s += " shared"
		}
		return s
	}
	return fmt.Sprintf("%s%d", prefix, l.Min)
}

func globalTypeSig(g GlobalType) string {
	s := g.ValType.String()
	if g.RefType != nil {
		s = refTypeSig(*g.RefType)
	}
	if g.Mutable {
		return "(mut " + s + ")"
	}
	return s
}

func (w *textWriter) writeTables(m *Module) {
	for _, t := range m.Tables {
		if len(t.Init) > 0 {
			w.open("(table %s", tableTypeSig(t))
			if err := w.writeExpr(m, t.Init); err != nil {
				w.line("; unrenderable table initializer: %v", err)
			}
			w.close()
			continue
		}
		w.line("(table %s)", tableTypeSig(t))
	}
}

func (w *textWriter) writeMemories(m *Module) {
	for _, mem := range m.Memories {
		w.line("(memory %s)", limitsSig(mem.Limits))
	}
}

func (w *textWriter) writeTags(m *Module) {
	for _, tag := range m.Tags {
		w.line("(tag (type %d))", tag.TypeIdx)
	}
}

func (w *textWriter) writeGlobals(m *Module) {
	for i, g := range m.Globals {
		w.open("(global %s", globalTypeSig(g.Type))
		if err := w.writeExpr(m, g.Init); err != nil {
			w.line("; unrenderable global %d initializer: %v", i, err)
		}
		w.close()
	}
}

// exportsByKindIdx indexes exports for inline rendering on their defining
// entity. A name used by more than one export of the same kind/idx all
// render inline; none are ever dropped.
func exportsByKindIdx(m *Module) map[[2]uint32][]string {
	out := make(map[[2]uint32][]string)
	for _, e := range m.Exports {
		key := [2]uint32{uint32(e.Kind), e.Idx}
		out[key] = append(out[key], e.Name)
	}
	return out
}

func (w *textWriter) writeFuncs(m *Module) error {
	exports := exportsByKindIdx(m)
	numImportedFuncs := uint32(m.NumImportedFuncs())
	for i, typeIdx := range m.Funcs {
		funcIdx := numImportedFuncs + uint32(i)
		ft := m.FuncTypeAt(typeIdx)

		header := fmt.Sprintf("(func%s (type %d)%s", inlineExports(exports, KindFunc, funcIdx), typeIdx, funcTypeSig(ft))
		w.open(header)

		if i < len(m.Code) {
			body := m.Code[i]
			w.writeLocals(body.Locals)
			if err := w.writeInstrs(m, body.Body); err != nil {
				w.close()
				return fmt.Errorf("func %d: %w", funcIdx, err)
			}
		}
		w.close()
	}
	return nil
}

func inlineExports(exports map[[2]uint32][]string, kind byte, idx uint32) string {
	names := exports[[2]uint32{uint32(kind), idx}]
	var b strings.Builder
	for _, n := range names {
		b.WriteString(" (export " + quoteName(n) + ")")
	}
	return b.String()
}

func (w *textWriter) writeLocals(locals []LocalEntry) {
	for _, l := range locals {
		sig := l.ValType.String()
		if l.RefType != nil {
			sig = refTypeSig(*l.RefType)
		}
		for i := uint32(0); i < l.Count; i++ {
			w.line("(local %s)", sig)
		}
	}
}

// writeFreestandingExports emits export forms for every export that
// writeFuncs did not inline: tables, memories, globals, tags, and functions
// outside the locally-defined range (imported functions). Exports of
// locally-defined functions are inlined by writeFuncs.
func (w *textWriter) writeFreestandingExports(m *Module) {
	numImportedFuncs := uint32(m.NumImportedFuncs())
	numFuncs := numImportedFuncs + uint32(len(m.Funcs))
	for _, e := range m.Exports {
		if e.Kind == KindFunc && e.Idx >= numImportedFuncs && e.Idx < numFuncs {
			continue
		}
		w.line("(export %s %s)", quoteName(e.Name), exportDescSig(e))
	}
}

func exportDescSig(e Export) string {
	switch e.Kind {
	case KindTable:
		return fmt.Sprintf("(table %d)", e.Idx)
	case KindMemory:
		return fmt.Sprintf("(memory %d)", e.Idx)
	case KindGlobal:
		return fmt.Sprintf("(global %d)", e.Idx)
	case KindTag:
		return fmt.Sprintf("(tag %d)", e.Idx)
	default:
		return fmt.Sprintf("(func %d)", e.Idx)
	}
}

func (w *textWriter) writeStart(m *Module) {
	if m.Start != nil {
		w.line("(start %d)", *m.Start)
	}
}

func (w *textWriter) writeElements(m *Module) error {
	for i, e := range m.Elements {
		header := elementHeaderSig(e)
		w.open(header)
		if len(e.Offset) > 0 {
			if err := w.writeExpr(m, e.Offset); err != nil {
				return fmt.Errorf("elem %d offset: %w", i, err)
			}
		}
		if e.UseExprs {
			for _, expr := range e.Exprs {
				w.open("(item")
				if err := w.writeExpr(m, expr); err != nil {
					return fmt.Errorf("elem %d item: %w", i, err)
				}
				w.close()
			}
		} else {
			for _, fi := range e.FuncIdxs {
				w.line("(func %d)", fi)
			}
		}
		w.close()
	}
	return nil
}

func elementHeaderSig(e Element) string {
	switch e.Mode {
	case ElementDeclarative:
		return "(elem declare func"
	case ElementPassive:
		return "(elem func"
	default: // ElementActive
		if e.TableIdx != 0 {
			return fmt.Sprintf("(elem (table %d)", e.TableIdx)
		}
		return "(elem"
	}
}

func (w *textWriter) writeData(m *Module) error {
	for i, d := range m.Data {
		if d.Active {
			header := "(data"
			if d.MemIdx != 0 {
				header = fmt.Sprintf("(data (memory %d)", d.MemIdx)
			}
			w.open(header)
			if err := w.writeExpr(m, d.Offset); err != nil {
				return fmt.Errorf("data %d offset: %w", i, err)
			}
			w.line("%s", quoteBytes(d.Init))
			w.close()
		} else {
			w.line("(data %s)", quoteBytes(d.Init))
		}
	}
	return nil
}

func (w *textWriter) writeCustomSections(m *Module) {
	for _, c := range m.CustomSections {
		w.line("(@custom %s %s)", quoteName(c.Name), quoteBytes(c.Data))
	}
}

// writeExpr renders a constant expression's instructions flat, without the
// synthesized trailing `end` (callers supply their own closing paren).
func (w *textWriter) writeExpr(m *Module, instrs []Instruction) error {
	return w.writeInstrs(m, instrs)
}

func (w *textWriter) writeInstrs(m *Module, instrs []Instruction) error {
	for i := range instrs {
		if err := w.writeInstr(m, &instrs[i]); err != nil {
			return err
		}
	}
	return nil
}

func (w *textWriter) writeInstr(m *Module, instr *Instruction) error {
	switch instr.Opcode {
	case OpBlock, OpLoop, OpTry:
		imm := instr.Imm.(BlockImm)
		w.open("%s%s", controlMnemonic(instr.Opcode), blockTypeSig(imm.Type))
		if err := w.writeInstrs(m, imm.Body); err != nil {
			return err
		}
		w.depth--
		w.line("end")
		return nil

	case OpIf:
		imm := instr.Imm.(IfImm)
		w.open("if%s", blockTypeSig(imm.Type))
		if err := w.writeInstrs(m, imm.Then); err != nil {
			return err
		}
		if imm.Else != nil {
			w.depth--
			w.line("else")
			w.depth++
			if err := w.writeInstrs(m, imm.Else); err != nil {
				return err
			}
		}
		w.depth--
		w.line("end")
		return nil

	case OpTryTable:
		imm := instr.Imm.(TryTableImm)
		w.open("try_table%s", blockTypeSig(imm.Type))
		for _, c := range imm.Catches {
			w.line("%s", catchClauseSig(c))
		}
		if err := w.writeInstrs(m, imm.Body); err != nil {
			return err
		}
		w.depth--
		w.line("end")
		return nil
	}

	mnemonic, err := w.plainMnemonic(instr)
	if err != nil {
		return err
	}
	w.line("%s", mnemonic)
	return nil
}

func controlMnemonic(op byte) string {
	switch op {
	case OpBlock:
		return "block"
	case OpLoop:
		return "loop"
	case OpTry:
		return "try"
	default:
		return "block"
	}
}

func catchClauseSig(c CatchClause) string {
	switch c.Kind {
	case CatchKindCatch:
		return fmt.Sprintf("(catch %d %d)", c.TagIdx, c.LabelIdx)
	case CatchKindCatchRef:
		return fmt.Sprintf("(catch_ref %d %d)", c.TagIdx, c.LabelIdx)
	case CatchKindCatchAll:
		return fmt.Sprintf("(catch_all %d)", c.LabelIdx)
	default:
		return fmt.Sprintf("(catch_all_ref %d)", c.LabelIdx)
	}
}

func blockTypeSig(bt int32) string {
	switch bt {
	case BlockTypeVoid:
		return ""
	case BlockTypeI32:
		return " (result i32)"
	case BlockTypeI64:
		return " (result i64)"
	case BlockTypeF32:
		return " (result f32)"
	case BlockTypeF64:
		return " (result f64)"
	case BlockTypeV128:
		return " (result v128)"
	default:
		return fmt.Sprintf(" (type %d)", bt)
	}
}

// plainMnemonic renders every instruction that is not a block/loop/if/
// try_table (those are handled structurally in writeInstr) as a single WAT
// text line, e.g. "i32.add", "local.get 0", "call 3".
func (w *textWriter) plainMnemonic(instr *Instruction) (string, error) {
	if m, ok := fixedMnemonics[instr.Opcode]; ok {
		return m, nil
	}

	switch instr.Opcode {
	case OpBr:
		return fmt.Sprintf("br %d", instr.Imm.(BranchImm).LabelIdx), nil
	case OpBrIf:
		return fmt.Sprintf("br_if %d", instr.Imm.(BranchImm).LabelIdx), nil
	case OpBrOnNull:
		return fmt.Sprintf("br_on_null %d", instr.Imm.(BranchImm).LabelIdx), nil
	case OpBrOnNonNull:
		return fmt.Sprintf("br_on_non_null %d", instr.Imm.(BranchImm).LabelIdx), nil
	case OpRethrow:
		return fmt.Sprintf("rethrow %d", instr.Imm.(BranchImm).LabelIdx), nil
	case OpDelegate:
		return fmt.Sprintf("delegate %d", instr.Imm.(BranchImm).LabelIdx), nil
	case OpBrTable:
		imm := instr.Imm.(BrTableImm)
		parts := make([]string, 0, len(imm.Labels)+1)
		for _, l := range imm.Labels {
			parts = append(parts, strconv.FormatUint(uint64(l), 10))
		}
		parts = append(parts, strconv.FormatUint(uint64(imm.Default), 10))
		return "br_table " + strings.Join(parts, " "), nil
	case OpCall:
		return fmt.Sprintf("call %d", instr.Imm.(CallImm).FuncIdx), nil
	case OpReturnCall:
		return fmt.Sprintf("return_call %d", instr.Imm.(CallImm).FuncIdx), nil
	case OpCallIndirect:
		imm := instr.Imm.(CallIndirectImm)
		return fmt.Sprintf("call_indirect %d (type %d)", imm.TableIdx, imm.TypeIdx), nil
	case OpReturnCallIndirect:
		imm := instr.Imm.(CallIndirectImm)
		return fmt.Sprintf("return_call_indirect %d (type %d)", imm.TableIdx, imm.TypeIdx), nil
	case OpCallRef:
		return fmt.Sprintf("call_ref %d", instr.Imm.(CallRefImm).TypeIdx), nil
	case OpReturnCallRef:
		return fmt.Sprintf("return_call_ref %d", instr.Imm.(CallRefImm).TypeIdx), nil
	case OpLocalGet:
		return fmt.Sprintf("local.get %d", instr.Imm.(LocalImm).LocalIdx), nil
	case OpLocalSet:
		return fmt.Sprintf("local.set %d", instr.Imm.(LocalImm).LocalIdx), nil
	case OpLocalTee:
		return fmt.Sprintf("local.tee %d", instr.Imm.(LocalImm).LocalIdx), nil
	case OpGlobalGet:
		return fmt.Sprintf("global.get %d", instr.Imm.(GlobalImm).GlobalIdx), nil
	case OpGlobalSet:
		return fmt.Sprintf("global.set %d", instr.Imm.(GlobalImm).GlobalIdx), nil
	case OpTableGet:
		return fmt.Sprintf("table.get %d", instr.Imm.(TableImm).TableIdx), nil
	case OpTableSet:
		return fmt.Sprintf("table.set %d", instr.Imm.(TableImm).TableIdx), nil
	case OpMemorySize:
		return memIdxMnemonic("memory.size", instr.Imm.(MemoryIdxImm).MemIdx), nil
	case OpMemoryGrow:
		return memIdxMnemonic("memory.grow", instr.Imm.(MemoryIdxImm).MemIdx), nil
	case OpI32Const:
		return fmt.Sprintf("i32.const %d", instr.Imm.(I32Imm).Value), nil
	case OpI64Const:
		return fmt.Sprintf("i64.const %d", instr.Imm.(I64Imm).Value), nil
	case OpF32Const:
		return fmt.Sprintf("f32.const %s", formatFloat32(instr.Imm.(F32Imm).Value)), nil
	case OpF64Const:
		return fmt.Sprintf("f64.const %s", formatFloat64(instr.Imm.(F64Imm).Value)), nil
	case OpRefNull:
		return fmt.Sprintf("ref.null %s", heapTypeSig(instr.Imm.(RefNullImm).HeapType)), nil
	case OpRefFunc:
		return fmt.Sprintf("ref.func %d", instr.Imm.(RefFuncImm).FuncIdx), nil
	case OpSelectType:
		imm := instr.Imm.(SelectTypeImm)
		parts := make([]string, len(imm.Types))
		for i, t := range imm.Types {
			parts[i] = t.String()
		}
		return "select (result " + strings.Join(parts, " ") + ")", nil
	case OpCatch:
		return fmt.Sprintf("catch %d", instr.Imm.(ThrowImm).TagIdx), nil
	case OpThrow:
		return fmt.Sprintf("throw %d", instr.Imm.(ThrowImm).TagIdx), nil
	}

	if name, ok := memarg[instr.Opcode]; ok {
		imm := instr.Imm.(MemoryImm)
		return memArgMnemonic(name, imm), nil
	}

	switch instr.Opcode {
	case OpPrefixMisc:
		return miscMnemonic(instr.Imm.(MiscImm))
	case OpPrefixAtomic:
		return atomicMnemonic(instr.Imm.(AtomicImm))
	case OpPrefixGC:
		return gcMnemonic(instr.Imm.(GCImm))
	}

	return "", &EncodeError{Kind: KindUnsupportedOpcode, Detail: fmt.Sprintf("opcode 0x%02x has no text mnemonic", instr.Opcode)}
}

func memIdxMnemonic(name string, memIdx uint32) string {
	if memIdx == 0 {
		return name
	}
	return fmt.Sprintf("%s %d", name, memIdx)
}

func memArgMnemonic(name string, imm MemoryImm) string {
	s := name
	if imm.MemIdx != 0 {
		s += fmt.Sprintf(" %d", imm.MemIdx)
	}
	if imm.Offset != 0 {
		s += fmt.Sprintf(" offset=%d", imm.Offset)
	}
	if imm.Align != 0 {
		s += fmt.Sprintf(" align=%d", uint32(1)<<imm.Align)
	}
	return s
}

func formatFloat32(v float32) string {
	return strconv.FormatFloat(float64(v), 'g', -1, 32)
}

func formatFloat64(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// fixedMnemonics covers every base-space opcode that carries no immediate:
// arithmetic, comparisons, conversions, sign extension, drop/select/
// unreachable/nop/return and the no-immediate reference/exception ops.
var fixedMnemonics = map[byte]string{
	OpUnreachable: "unreachable",
	OpNop:         "nop",
	OpEnd:         "end",
	OpElse:        "else",
	OpReturn:      "return",
	OpDrop:        "drop",
	OpSelect:      "select",
	OpRefIsNull:   "ref.is_null",
	OpRefAsNonNull: "ref.as_non_null",
	OpRefEq:        "ref.eq",
	OpThrowRef:     "throw_ref",
	OpCatchAll:     "catch_all",

	OpI32Eqz: "i32.eqz", OpI32Eq: "i32.eq", OpI32Ne: "i32.ne",
	OpI32LtS: "i32.lt_s", OpI32LtU: "i32.lt_u", OpI32GtS: "i32.gt_s", OpI32GtU: "i32.gt_u",
	OpI32LeS: "i32.le_s", OpI32LeU: "i32.le_u", OpI32GeS: "i32.ge_s", OpI32GeU: "i32.ge_u",
	OpI64Eqz: "i64.eqz", OpI64Eq: "i64.eq", OpI64Ne: "i64.ne",
	OpI64LtS: "i64.lt_s", OpI64LtU: "i64.lt_u", OpI64GtS: "i64.gt_s", OpI64GtU: "i64.gt_u",
	OpI64LeS: "i64.le_s", OpI64LeU: "i64.le_u", OpI64GeS: "i64.ge_s", OpI64GeU: "i64.ge_u",
	OpF32Eq: "f32.eq", OpF32Ne: "f32.ne", OpF32Lt: "f32.lt", OpF32Gt: "f32.gt", OpF32Le: "f32.le", OpF32Ge: "f32.ge",
	OpF64Eq: "f64.eq", OpF64Ne: "f64.ne", OpF64Lt: "f64.lt", OpF64Gt: "f64.gt", OpF64Le: "f64.le", OpF64Ge: "f64.ge",

	OpI32Clz: "i32.clz", OpI32Ctz: "i32.ctz", OpI32Popcnt: "i32.popcnt",
	OpI32Add: "i32.add", OpI32Sub: "i32.sub", OpI32Mul: "i32.mul",
	OpI32DivS: "i32.div_s", OpI32DivU: "i32.div_u", OpI32RemS: "i32.rem_s", OpI32RemU: "i32.rem_u",
	OpI32And: "i32.and", OpI32Or: "i32.or", OpI32Xor: "i32.xor",
	OpI32Shl: "i32.shl", OpI32ShrS: "i32.shr_s", OpI32ShrU: "i32.shr_u",
	OpI32Rotl: "i32.rotl", OpI32Rotr: "i32.rotr",

	OpI64Clz: "i64.clz", OpI64Ctz: "i64.ctz", OpI64Popcnt: "i64.popcnt",
	OpI64Add: "i64.add", OpI64Sub: "i64.sub", OpI64Mul: "i64.mul",
	OpI64DivS: "i64.div_s", OpI64DivU: "i64.div_u", OpI64RemS: "i64.rem_s", OpI64RemU: "i64.rem_u",
	OpI64And: "i64.and", OpI64Or: "i64.or", OpI64Xor: "i64.xor",
	OpI64Shl: "i64.shl", OpI64ShrS: "i64.shr_s", OpI64ShrU: "i64.shr_u",
	OpI64Rotl: "i64.rotl", OpI64Rotr: "i64.rotr",

	OpF32Abs: "f32.abs", OpF32Neg: "f32.neg", OpF32Ceil: "f32.ceil", OpF32Floor: "f32.floor",
	OpF32Trunc: "f32.trunc", OpF32Nearest: "f32.nearest", OpF32Sqrt: "f32.sqrt",
	OpF32Add: "f32.add", OpF32Sub: "f32.sub", OpF32Mul: "f32.mul", OpF32Div: "f32.div",
	OpF32Min: "f32.min", OpF32Max: "f32.max", OpF32Copysign: "f32.copysign",

	OpF64Abs: "f64.abs", OpF64Neg: "f64.neg", OpF64Ceil: "f64.ceil", OpF64Floor: "f64.floor",
	OpF64Trunc: "f64.trunc", OpF64Nearest: "f64.nearest", OpF64Sqrt: "f64.sqrt",
	OpF64Add: "f64.add", OpF64Sub: "f64.sub", OpF64Mul: "f64.mul", OpF64Div: "f64.div",
	OpF64Min: "f64.min", OpF64Max: "f64.max", OpF64Copysign: "f64.copysign",

	OpI32WrapI64: "i32.wrap_i64",
	OpI32TruncF32S: "i32.trunc_f32_s", OpI32TruncF32U: "i32.trunc_f32_u",
	OpI32TruncF64S: "i32.trunc_f64_s", OpI32TruncF64U: "i32.trunc_f64_u",
	OpI64ExtendI32S: "i64.extend_i32_s", OpI64ExtendI32U: "i64.extend_i32_u",
	OpI64TruncF32S: "i64.trunc_f32_s", OpI64TruncF32U: "i64.trunc_f32_u",
	OpI64TruncF64S: "i64.trunc_f64_s", OpI64TruncF64U: "i64.trunc_f64_u",
	OpF32ConvertI32S: "f32.convert_i32_s", OpF32ConvertI32U: "f32.convert_i32_u",
	OpF32ConvertI64S: "f32.convert_i64_s", OpF32ConvertI64U: "f32.convert_i64_u",
	OpF32DemoteF64: "f32.demote_f64",
	OpF64ConvertI32S: "f64.convert_i32_s", OpF64ConvertI32U: "f64.convert_i32_u",
	OpF64ConvertI64S: "f64.convert_i64_s", OpF64ConvertI64U: "f64.convert_i64_u",
	OpF64PromoteF32: "f64.promote_f32",
	OpI32ReinterpretF32: "i32.reinterpret_f32", OpI64ReinterpretF64: "i64.reinterpret_f64",
	OpF32ReinterpretI32: "f32.reinterpret_i32", OpF64ReinterpretI64: "f64.reinterpret_i64",

	OpI32Extend8S: "i32.extend8_s", OpI32Extend16S: "i32.extend16_s",
	OpI64Extend8S: "i64.extend8_s", OpI64Extend16S: "i64.extend16_s", OpI64Extend32S: "i64.extend32_s",
}

// memarg maps every opcode carrying a MemoryImm to its mnemonic.
var memarg = map[byte]string{
	OpI32Load: "i32.load", OpI64Load: "i64.load", OpF32Load: "f32.load", OpF64Load: "f64.load",
	OpI32Load8S: "i32.load8_s", OpI32Load8U: "i32.load8_u",
	OpI32Load16S: "i32.load16_s", OpI32Load16U: "i32.load16_u",
	OpI64Load8S: "i64.load8_s", OpI64Load8U: "i64.load8_u",
	OpI64Load16S: "i64.load16_s", OpI64Load16U: "i64.load16_u",
	OpI64Load32S: "i64.load32_s", OpI64Load32U: "i64.load32_u",
	OpI32Store: "i32.store", OpI64Store: "i64.store", OpF32Store: "f32.store", OpF64Store: "f64.store",
	OpI32Store8: "i32.store8", OpI32Store16: "i32.store16",
	OpI64Store8: "i64.store8", OpI64Store16: "i64.store16", OpI64Store32: "i64.store32",
}

func miscMnemonic(imm MiscImm) (string, error) {
	switch imm.SubOpcode {
	case MiscI32TruncSatF32S:
		return "i32.trunc_sat_f32_s", nil
	case MiscI32TruncSatF32U:
		return "i32.trunc_sat_f32_u", nil
	case MiscI32TruncSatF64S:
		return "i32.trunc_sat_f64_s", nil
	case MiscI32TruncSatF64U:
		return "i32.trunc_sat_f64_u", nil
	case MiscI64TruncSatF32S:
		return "i64.trunc_sat_f32_s", nil
	case MiscI64TruncSatF32U:
		return "i64.trunc_sat_f32_u", nil
	case MiscI64TruncSatF64S:
		return "i64.trunc_sat_f64_s", nil
	case MiscI64TruncSatF64U:
		return "i64.trunc_sat_f64_u", nil
	case MiscMemoryInit:
		return fmt.Sprintf("memory.init %d", imm.Operands[0]), nil
	case MiscDataDrop:
		return fmt.Sprintf("data.drop %d", imm.Operands[0]), nil
	case MiscMemoryCopy:
		return "memory.copy", nil
	case MiscMemoryFill:
		return "memory.fill", nil
	case MiscTableInit:
		return fmt.Sprintf("table.init %d %d", imm.Operands[0], imm.Operands[1]), nil
	case MiscElemDrop:
		return fmt.Sprintf("elem.drop %d", imm.Operands[0]), nil
	case MiscTableCopy:
		return fmt.Sprintf("table.copy %d %d", imm.Operands[0], imm.Operands[1]), nil
	case MiscTableGrow:
		return fmt.Sprintf("table.grow %d", imm.Operands[0]), nil
	case MiscTableSize:
		return fmt.Sprintf("table.size %d", imm.Operands[0]), nil
	case MiscTableFill:
		return fmt.Sprintf("table.fill %d", imm.Operands[0]), nil
	default:
		return "", &EncodeError{Kind: KindUnsupportedOpcode, Detail: fmt.Sprintf("misc sub-opcode 0x%x has no text mnemonic", imm.SubOpcode)}
	}
}

func atomicMnemonic(imm AtomicImm) (string, error) {
	if imm.SubOpcode == AtomicFence {
		return "atomic.fence", nil
	}
	name, ok := atomicNames[imm.SubOpcode]
	if !ok {
		return "", &EncodeError{Kind: KindUnsupportedOpcode, Detail: fmt.Sprintf("atomic sub-opcode 0x%x has no text mnemonic", imm.SubOpcode)}
	}
	if imm.MemArg != nil {
		return memArgMnemonic(name, *imm.MemArg), nil
	}
	return name, nil
}

var atomicNames = map[uint32]string{
	AtomicNotify: "memory.atomic.notify", AtomicWait32: "memory.atomic.wait32", AtomicWait64: "memory.atomic.wait64",
	AtomicI32Load: "i32.atomic.load", AtomicI64Load: "i64.atomic.load",
	AtomicI32Load8U: "i32.atomic.load8_u", AtomicI32Load16U: "i32.atomic.load16_u",
	AtomicI64Load8U: "i64.atomic.load8_u", AtomicI64Load16U: "i64.atomic.load16_u", AtomicI64Load32U: "i64.atomic.load32_u",
	AtomicI32Store: "i32.atomic.store", AtomicI64Store: "i64.atomic.store",
	AtomicI32Store8: "i32.atomic.store8", AtomicI32Store16: "i32.atomic.store16",
	AtomicI64Store8: "i64.atomic.store8", AtomicI64Store16: "i64.atomic.store16", AtomicI64Store32: "i64.atomic.store32",

	AtomicI32RmwAdd: "i32.atomic.rmw.add", AtomicI64RmwAdd: "i64.atomic.rmw.add",
	AtomicI32Rmw8AddU: "i32.atomic.rmw8.add_u", AtomicI32Rmw16AddU: "i32.atomic.rmw16.add_u",
	AtomicI64Rmw8AddU: "i64.atomic.rmw8.add_u", AtomicI64Rmw16AddU: "i64.atomic.rmw16.add_u", AtomicI64Rmw32AddU: "i64.atomic.rmw32.add_u",
	AtomicI32RmwSub: "i32.atomic.rmw.sub", AtomicI64RmwSub: "i64.atomic.rmw.sub",
	AtomicI32Rmw8SubU: "i32.atomic.rmw8.sub_u", AtomicI32Rmw16SubU: "i32.atomic.rmw16.sub_u",
	AtomicI64Rmw8SubU: "i64.atomic.rmw8.sub_u", AtomicI64Rmw16SubU: "i64.atomic.rmw16.sub_u", AtomicI64Rmw32SubU: "i64.atomic.rmw32.sub_u",
	AtomicI32RmwAnd: "i32.atomic.rmw.and", AtomicI64RmwAnd: "i64.atomic.rmw.and",
	AtomicI32Rmw8AndU: "i32.atomic.rmw8.and_u", AtomicI32Rmw16AndU: "i32.atomic.rmw16.and_u",
	AtomicI64Rmw8AndU: "i64.atomic.rmw8.and_u", AtomicI64Rmw16AndU: "i64.atomic.rmw16.and_u", AtomicI64Rmw32AndU: "i64.atomic.rmw32.and_u",
	AtomicI32RmwOr: "i32.atomic.rmw.or", AtomicI64RmwOr: "i64.atomic.rmw.or",
	AtomicI32Rmw8OrU: "i32.atomic.rmw8.or_u", AtomicI32Rmw16OrU: "i32.atomic.rmw16.or_u",
	AtomicI64Rmw8OrU: "i64.atomic.rmw8.or_u", AtomicI64Rmw16OrU: "i64.atomic.rmw16.or_u", AtomicI64Rmw32OrU: "i64.atomic.rmw32.or_u",
	AtomicI32RmwXor: "i32.atomic.rmw.xor", AtomicI64RmwXor: "i64.atomic.rmw.xor",
	AtomicI32Rmw8XorU: "i32.atomic.rmw8.xor_u", AtomicI32Rmw16XorU: "i32.atomic.rmw16.xor_u",
	AtomicI64Rmw8XorU: "i64.atomic.rmw8.xor_u", AtomicI64Rmw16XorU: "i64.atomic.rmw16.xor_u", AtomicI64Rmw32XorU: "i64.atomic.rmw32.xor_u",
	AtomicI32RmwXchg: "i32.atomic.rmw.xchg", AtomicI64RmwXchg: "i64.atomic.rmw.xchg",
	AtomicI32Rmw8XchgU: "i32.atomic.rmw8.xchg_u", AtomicI32Rmw16XchgU: "i32.atomic.rmw16.xchg_u",
	AtomicI64Rmw8XchgU: "i64.atomic.rmw8.xchg_u", AtomicI64Rmw16XchgU: "i64.atomic.rmw16.xchg_u", AtomicI64Rmw32XchgU: "i64.atomic.rmw32.xchg_u",
	AtomicI32RmwCmpxchg: "i32.atomic.rmw.cmpxchg", AtomicI64RmwCmpxchg: "i64.atomic.rmw.cmpxchg",
	AtomicI32Rmw8CmpxchgU: "i32.atomic.rmw8.cmpxchg_u", AtomicI32Rmw16CmpxchgU: "i32.atomic.rmw16.cmpxchg_u",
	AtomicI64Rmw8CmpxchgU: "i64.atomic.rmw8.cmpxchg_u", AtomicI64Rmw16CmpxchgU: "i64.atomic.rmw16.cmpxchg_u", AtomicI64Rmw32CmpxchgU: "i64.atomic.rmw32.cmpxchg_u",
}

func gcMnemonic(imm GCImm) (string, error) {
	switch imm.SubOpcode {
	case GCStructNew:
		return fmt.Sprintf("struct.new %d", imm.TypeIdx), nil
	case GCStructNewDefault:
		return fmt.Sprintf("struct.new_default %d", imm.TypeIdx), nil
	case GCStructGet:
		return fmt.Sprintf("struct.get %d %d", imm.TypeIdx, imm.FieldIdx), nil
	case GCStructGetS:
		return fmt.Sprintf("struct.get_s %d %d", imm.TypeIdx, imm.FieldIdx), nil
	case GCStructGetU:
		return fmt.Sprintf("struct.get_u %d %d", imm.TypeIdx, imm.FieldIdx), nil
	case GCStructSet:
		return fmt.Sprintf("struct.set %d %d", imm.TypeIdx, imm.FieldIdx), nil
	case GCArrayNew:
		return fmt.Sprintf("array.new %d", imm.TypeIdx), nil
	case GCArrayNewDefault:
		return fmt.Sprintf("array.new_default %d", imm.TypeIdx), nil
	case GCArrayNewFixed:
		return fmt.Sprintf("array.new_fixed %d %d", imm.TypeIdx, imm.Size), nil
	case GCArrayNewData:
		return fmt.Sprintf("array.new_data %d %d", imm.TypeIdx, imm.DataIdx), nil
	case GCArrayNewElem:
		return fmt.Sprintf("array.new_elem %d %d", imm.TypeIdx, imm.ElemIdx), nil
	case GCArrayGet:
		return fmt.Sprintf("array.get %d", imm.TypeIdx), nil
	case GCArrayGetS:
		return fmt.Sprintf("array.get_s %d", imm.TypeIdx), nil
	case GCArrayGetU:
		return fmt.Sprintf("array.get_u %d", imm.TypeIdx), nil
	case GCArraySet:
		return fmt.Sprintf("array.set %d", imm.TypeIdx), nil
	case GCArrayLen:
		return "array.len", nil
	case GCArrayFill:
		return fmt.Sprintf("array.fill %d", imm.TypeIdx), nil
	case GCArrayCopy:
		return fmt.Sprintf("array.copy %d %d", imm.TypeIdx, imm.TypeIdx2), nil
	case GCArrayInitData:
		return fmt.Sprintf("array.init_data %d %d", imm.TypeIdx, imm.DataIdx), nil
	case GCArrayInitElem:
		return fmt.Sprintf("array.init_elem %d %d", imm.TypeIdx, imm.ElemIdx), nil
	case GCRefTest:
		return fmt.Sprintf("ref.test %s", heapTypeSig(imm.HeapType)), nil
	case GCRefTestNull:
		return fmt.Sprintf("ref.test (ref null %s)", heapTypeSig(imm.HeapType)), nil
	case GCRefCast:
		return fmt.Sprintf("ref.cast %s", heapTypeSig(imm.HeapType)), nil
	case GCRefCastNull:
		return fmt.Sprintf("ref.cast (ref null %s)", heapTypeSig(imm.HeapType)), nil
	case GCBrOnCast:
		return fmt.Sprintf("br_on_cast %d %s %s", imm.LabelIdx, heapTypeSig(imm.HeapType), heapTypeSig(imm.HeapType2)), nil
	case GCBrOnCastFail:
		return fmt.Sprintf("br_on_cast_fail %d %s %s", imm.LabelIdx, heapTypeSig(imm.HeapType), heapTypeSig(imm.HeapType2)), nil
	case GCAnyConvertExtern:
		return "any.convert_extern", nil
	case GCExternConvertAny:
		return "extern.convert_any", nil
	case GCRefI31:
		return "ref.i31", nil
	case GCI31GetS:
		return "i31.get_s", nil
	case GCI31GetU:
		return "i31.get_u", nil
	default:
		return "", &EncodeError{Kind: KindUnsupportedOpcode, Detail: fmt.Sprintf("GC sub-opcode 0x%x has no text mnemonic", imm.SubOpcode)}
	}
}

// quoteName renders a name as a double-quoted WAT string, escaping '"',
// '\\', and any byte outside printable ASCII as \xx hex.
func quoteName(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"' || c == '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case c < 0x20 || c >= 0x7F:
			fmt.Fprintf(&b, "\\%02x", c)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func quoteBytes(data []byte) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, c := range data {
		switch {
		case c == '"' || c == '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case c < 0x20 || c >= 0x7F:
			fmt.Fprintf(&b, "\\%02x", c)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}
