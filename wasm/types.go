package wasm

// Module is the in-memory representation of a WebAssembly module under
// construction. Fields are flat per-section-kind slices rather than a
// generic section list: appending to the same kind twice concatenates into
// the same canonical slot (see AddFuncType, AddFunction, etc.), which is what
// resolves the "duplicate section" question for every kind except Start.
type Module struct {
	TypeDefs []TypeDef // Full type definitions, including GC composite types
	Imports  []Import
	Funcs    []uint32 // Type indices for declared (non-imported) functions
	Tables   []TableType
	Memories []MemoryType
	Tags     []TagType // Exception-handling tag types (section ID 13)
	Globals  []Global
	Exports  []Export
	Start    *uint32
	Elements []Element
	Code     []FuncBody
	Data     []DataSegment

	// DataCount, when non-nil, is emitted as section 12. Required by a
	// conforming validator whenever a data index appears in code (bulk
	// memory operations) ahead of the data section itself.
	DataCount *uint32

	CustomSections []CustomSection
}

// FuncType is a function signature: ordered parameters, ordered results.
// Most signatures only need plain value types (Params/Results); a GC
// signature that takes or returns a typed reference such as (ref null $t)
// instead populates ExtParams/ExtResults, which take precedence over
// Params/Results when non-empty.
type FuncType struct {
	Params     []ValType
	Results    []ValType
	ExtParams  []RefOrVal
	ExtResults []RefOrVal
}

// RefOrVal is one function parameter or result slot: either a plain value
// type or a typed reference.
type RefOrVal struct {
	Ref *RefType
	Val ValType
}

// FieldType is a struct or array field: a storage type plus mutability.
type FieldType struct {
	Type    StorageType
	Mutable bool
}

// StorageType is anything that can be stored in a struct field or array
// element: a plain value type, a packed i8/i16, or a reference type.
type StorageType struct {
	ValType ValType
	RefType RefType
	Packed  byte
	Kind    byte // StorageKindVal, StorageKindPacked, or StorageKindRef
}

const (
	StorageKindVal    byte = 0
	StorageKindPacked byte = 1
	StorageKindRef    byte = 2
)

const (
	PackedI8  byte = 0x78
	PackedI16 byte = 0x77
)

// RefType is a typed reference: `(ref null? heaptype)`. HeapType is encoded
// as s33: negative values are the abstract heap types in constants.go,
// non-negative values are indices into the type section.
type RefType struct {
	Nullable bool
	HeapType int64
}

// StructType is a GC struct type: an ordered sequence of fields.
type StructType struct {
	Fields []FieldType
}

// ArrayType is a GC array type: a single element field.
type ArrayType struct {
	Element FieldType
}

// CompType is a composite type: exactly one of Func, Struct, or Array.
type CompType struct {
	Func   *FuncType
	Struct *StructType
	Array  *ArrayType
	Kind   byte
}

const (
	CompKindFunc   byte = FuncTypeByte
	CompKindStruct byte = StructTypeByte
	CompKindArray  byte = ArrayTypeByte
)

// SubType wraps a composite type with an optional supertype chain, for GC
// subtyping. Final marks that no further subtypes may be declared.
type SubType struct {
	CompType CompType
	Parents  []uint32
	Final    bool
}

// RecType is a recursive type group: a set of SubTypes whose references to
// each other resolve within the group before the group's own start index.
type RecType struct {
	Types []SubType
}

// TypeDef is one entry in the type section's index space. A Rec group
// expands into len(Rec.Types) flat type indices; Func and Sub each occupy
// exactly one.
type TypeDef struct {
	Func *FuncType
	Sub  *SubType
	Rec  *RecType
	Kind byte
}

const (
	TypeDefKindFunc byte = 0
	TypeDefKindSub  byte = 1
	TypeDefKindRec  byte = 2
)

// ValType is a WebAssembly value type byte. See constants.go for the Val*
// constants.
type ValType byte

func (v ValType) String() string {
	switch v {
	case ValI32:
		return "i32"
	case ValI64:
		return "i64"
	case ValF32:
		return "f32"
	case ValF64:
		return "f64"
	case ValV128:
		return "v128"
	case ValFuncRef:
		return "funcref"
	case ValExtern:
		return "externref"
	default:
		return "unknown"
	}
}

// Import is an imported function, table, memory, global, or tag.
type Import struct {
	Desc   ImportDesc
	Module string
	Name   string
}

// ImportDesc describes the kind-specific shape of an imported entity.
type ImportDesc struct {
	Table   *TableType
	Memory  *MemoryType
	Global  *GlobalType
	Tag     *TagType
	TypeIdx uint32
	Kind    byte
}

// TableType describes a table's element type and size limits. Init, when
// non-nil, is the table's initializer expression (the function-references
// proposal's table-with-init form).
type TableType struct {
	RefType RefType
	Limits  Limits
	Init    []Instruction
}

// MemoryType describes a linear memory's size limits.
type MemoryType struct {
	Limits Limits
}

// Limits describes size constraints shared by tables and memories.
type Limits struct {
	Max      *uint64
	Min      uint64
	Shared   bool
	Memory64 bool
}

// GlobalType describes a global variable's value type and mutability.
type GlobalType struct {
	ValType ValType
	RefType *RefType
	Mutable bool
}

// Global is a global variable: its type plus a constant initializer
// expression.
type Global struct {
	Type GlobalType
	Init []Instruction
}

// TagType describes an exception-handling tag's signature.
type TagType struct {
	Attribute byte // always 0 in the current proposal revision
	TypeIdx   uint32
}

// Export is an exported entity, named and pointing at an index in its kind's
// space.
type Export struct {
	Name string
	Kind byte
	Idx  uint32
}

// ElementMode discriminates the three element segment shapes.
type ElementMode byte

const (
	ElementActive ElementMode = iota
	ElementPassive
	ElementDeclarative
)

// Element is an element segment: active (with an offset expression into a
// table), passive, or declarative. Items are either a plain function-index
// list or, when UseExprs is set, a list of constant expressions (needed to
// hold ref.null / typed ref.func literals).
type Element struct {
	Offset   []Instruction
	FuncIdxs []uint32
	Exprs    [][]Instruction
	RefType  RefType
	Mode     ElementMode
	TableIdx uint32
	UseExprs bool
}

// FuncBody is a function's local declarations and instruction sequence. The
// implicit trailing `end` is synthesized by the encoders, never stored here.
type FuncBody struct {
	Locals []LocalEntry
	Body   []Instruction
}

// LocalEntry is a run of locals sharing one value type.
type LocalEntry struct {
	RefType *RefType
	Count   uint32
	ValType ValType
}

// DataSegment is a data segment: active (with an offset expression into a
// memory) or passive.
type DataSegment struct {
	Offset []Instruction
	Init   []byte
	Active bool
	MemIdx uint32
}

// CustomSection holds a named custom section's raw payload.
type CustomSection struct {
	Name string
	Data []byte
}

// NumImportedFuncs returns the number of imported functions.
func (m *Module) NumImportedFuncs() int { return m.countImports(KindFunc) }

// NumImportedTables returns the number of imported tables.
func (m *Module) NumImportedTables() int { return m.countImports(KindTable) }

// NumImportedMemories returns the number of imported memories.
func (m *Module) NumImportedMemories() int { return m.countImports(KindMemory) }

// NumImportedGlobals returns the number of imported globals.
func (m *Module) NumImportedGlobals() int { return m.countImports(KindGlobal) }

// NumImportedTags returns the number of imported tags.
func (m *Module) NumImportedTags() int { return m.countImports(KindTag) }

func (m *Module) countImports(kind byte) int {
	n := 0
	for _, imp := range m.Imports {
		if imp.Desc.Kind == kind {
			n++
		}
	}
	return n
}

// NumTypes returns the number of entries in the flat type index space,
// expanding recursion groups.
func (m *Module) NumTypes() int {
	count := 0
	for i := range m.TypeDefs {
		switch m.TypeDefs[i].Kind {
		case TypeDefKindFunc, TypeDefKindSub:
			count++
		case TypeDefKindRec:
			count += len(m.TypeDefs[i].Rec.Types)
		}
	}
	return count
}

// FuncTypeAt returns the function type at the given flat type index, or nil
// if the index does not name a function type.
func (m *Module) FuncTypeAt(typeIdx uint32) *FuncType {
	flatIdx := uint32(0)
	for i := range m.TypeDefs {
		td := &m.TypeDefs[i]
		switch td.Kind {
		case TypeDefKindFunc:
			if flatIdx == typeIdx {
				return td.Func
			}
			flatIdx++
		case TypeDefKindSub:
			if flatIdx == typeIdx {
				if td.Sub.CompType.Kind == CompKindFunc {
					return td.Sub.CompType.Func
				}
				return nil
			}
			flatIdx++
		case TypeDefKindRec:
			for j := range td.Rec.Types {
				if flatIdx == typeIdx {
					if td.Rec.Types[j].CompType.Kind == CompKindFunc {
						return td.Rec.Types[j].CompType.Func
					}
					return nil
				}
				flatIdx++
			}
		}
	}
	return nil
}

// FuncTypeOf returns the signature of the function at the given index in the
// combined (imports then locals) function index space.
func (m *Module) FuncTypeOf(funcIdx uint32) *FuncType {
	numImported := uint32(m.NumImportedFuncs())
	if funcIdx < numImported {
		seen := uint32(0)
		for _, imp := range m.Imports {
			if imp.Desc.Kind != KindFunc {
				continue
			}
			if seen == funcIdx {
				return m.FuncTypeAt(imp.Desc.TypeIdx)
			}
			seen++
		}
		return nil
	}
	localIdx := funcIdx - numImported
	if int(localIdx) >= len(m.Funcs) {
		return nil
	}
	return m.FuncTypeAt(m.Funcs[localIdx])
}
