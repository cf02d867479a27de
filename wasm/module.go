package wasm

import "go.uber.org/zap"

// NewModule returns an empty module ready to be built up via the Add*/Set*
// methods below.
func NewModule() *Module {
	return &Module{}
}

// AddFuncType appends a plain function type to the type section and returns
// its flat type index. Structurally identical function types are not
// deduplicated: the caller owns index assignment, and deduplicating silently
// would make AddFuncType's return value depend on unrelated earlier calls.
func (m *Module) AddFuncType(params, results []ValType) uint32 {
	idx := uint32(m.NumTypes())
	m.TypeDefs = append(m.TypeDefs, TypeDef{
		Kind: TypeDefKindFunc,
		Func: &FuncType{Params: params, Results: results},
	})
	return idx
}

// AddFuncTypeExt appends a function type whose parameters and/or results
// include typed references (GC proposal) and returns its flat type index.
func (m *Module) AddFuncTypeExt(params, results []RefOrVal) uint32 {
	idx := uint32(m.NumTypes())
	m.TypeDefs = append(m.TypeDefs, TypeDef{
		Kind: TypeDefKindFunc,
		Func: &FuncType{ExtParams: params, ExtResults: results},
	})
	return idx
}

// AddSubType appends a GC composite type (struct, array, or function)
// wrapped in a subtype entry, optionally declaring supertypes, and returns
// its flat type index.
func (m *Module) AddSubType(comp CompType, final bool, parents ...uint32) uint32 {
	idx := uint32(m.NumTypes())
	m.TypeDefs = append(m.TypeDefs, TypeDef{
		Kind: TypeDefKindSub,
		Sub:  &SubType{CompType: comp, Parents: parents, Final: final},
	})
	return idx
}

// AddRecType appends a recursive group of subtypes and returns the flat type
// index of its first member; the group occupies len(subs) consecutive
// indices.
func (m *Module) AddRecType(subs ...SubType) uint32 {
	idx := uint32(m.NumTypes())
	m.TypeDefs = append(m.TypeDefs, TypeDef{Kind: TypeDefKindRec, Rec: &RecType{Types: subs}})
	return idx
}

// AddImport records an imported function, table, memory, global, or tag.
// Imports must be added before any local declaration of the same kind: the
// function/table/memory/global/tag index spaces place all imports first.
func (m *Module) AddImport(module, name string, desc ImportDesc) {
	m.Imports = append(m.Imports, Import{Module: module, Name: name, Desc: desc})
}

// AddFunction declares a locally-defined function with the given type index
// and returns its index in the function index space (imports precede
// locals). The matching FuncBody must be supplied separately via AddCode,
// in the same order: SectionCountMismatch is raised at encode time if the
// counts differ.
func (m *Module) AddFunction(typeIdx uint32) uint32 {
	idx := uint32(m.NumImportedFuncs() + len(m.Funcs))
	m.Funcs = append(m.Funcs, typeIdx)
	return idx
}

// AddCode appends a function body. The n-th call corresponds to the n-th
// AddFunction call.
func (m *Module) AddCode(body FuncBody) {
	m.Code = append(m.Code, body)
}

// AddTable declares a table and returns its index.
func (m *Module) AddTable(t TableType) uint32 {
	idx := uint32(m.NumImportedTables() + len(m.Tables))
	m.Tables = append(m.Tables, t)
	return idx
}

// AddMemory declares a linear memory and returns its index.
func (m *Module) AddMemory(t MemoryType) uint32 {
	idx := uint32(m.NumImportedMemories() + len(m.Memories))
	m.Memories = append(m.Memories, t)
	return idx
}

// AddTag declares an exception-handling tag and returns its index.
func (m *Module) AddTag(t TagType) uint32 {
	idx := uint32(m.NumImportedTags() + len(m.Tags))
	m.Tags = append(m.Tags, t)
	return idx
}

// AddGlobal declares a global variable and returns its index.
func (m *Module) AddGlobal(g Global) uint32 {
	idx := uint32(m.NumImportedGlobals() + len(m.Globals))
	m.Globals = append(m.Globals, g)
	return idx
}

// AddExport exports an entity under the given name.
func (m *Module) AddExport(name string, kind byte, idx uint32) {
	m.Exports = append(m.Exports, Export{Name: name, Kind: kind, Idx: idx})
}

// SetStart sets the start function index. A second call without an
// intervening ClearStart returns DuplicateSection: unlike every other
// section kind, the start section holds a single scalar, not a vector, so
// there is no concatenation that would make a second call meaningful.
func (m *Module) SetStart(funcIdx uint32) error {
	if m.Start != nil {
		return newErr(KindDuplicateSection, []string{"start"},
			"start function already set to index %d", *m.Start)
	}
	m.Start = &funcIdx
	return nil
}

// ClearStart removes a previously set start function, allowing SetStart to
// be called again.
func (m *Module) ClearStart() {
	m.Start = nil
}

// AddElement appends an element segment.
func (m *Module) AddElement(e Element) {
	m.Elements = append(m.Elements, e)
}

// AddData appends a data segment. When a code body uses memory.init or
// data.drop, EncodeBinary emits the data-count section ahead of the code
// section on its own; SetDataCount declares that count explicitly.
func (m *Module) AddData(d DataSegment) uint32 {
	idx := uint32(len(m.Data))
	m.Data = append(m.Data, d)
	return idx
}

// SetDataCount explicitly emits a data-count section with the given count.
// Most callers can instead rely on EncodeBinary inferring it automatically
// (see encode.go); this is for a caller that wants to declare a count ahead
// of segments not yet added.
func (m *Module) SetDataCount(n uint32) {
	m.DataCount = &n
}

// AddCustomSection appends a named custom section carrying an opaque
// payload.
func (m *Module) AddCustomSection(name string, data []byte) {
	m.CustomSections = append(m.CustomSections, CustomSection{Name: name, Data: data})
}

// logOrNop returns logger, or a no-op logger if logger is nil. Every entry
// point that accepts an optional *zap.Logger funnels through this so the
// rest of the package never has to nil-check.
func logOrNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
