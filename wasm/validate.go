package wasm

import (
	"strconv"
	"unicode/utf8"
)

// validateModule checks the module for structural validity before encoding.
// Construction-time Add*/Set* calls never validate: a client may legally
// hold an incomplete or temporarily inconsistent module right up until it
// asks for bytes.
func validateModule(m *Module) error {
	checks := []func(*Module) error{
		validateTypeIndices,
		validateFunctionIndices,
		validateTableIndices,
		validateMemoryIndices,
		validateGlobalIndices,
		validateTagIndices,
		validateExports,
		validateImportNames,
		validateStart,
		validateDataCount,
		validateCodeCount,
		validateMemoryLimits,
	}
	for _, check := range checks {
		if err := check(m); err != nil {
			return err
		}
	}
	return nil
}

func validateTypeIndices(m *Module) error {
	numTypes := uint32(m.NumTypes())
	if numTypes == 0 {
		if len(m.Funcs) > 0 {
			return newErr(KindIndexOutOfRange, []string{"function"}, "function references type but no types defined")
		}
		return nil
	}

	for i, typeIdx := range m.Funcs {
		if typeIdx >= numTypes {
			return indexOutOfRange([]string{"function", itoa(i)}, typeIdx, numTypes)
		}
	}

	for i, imp := range m.Imports {
		if imp.Desc.Kind == KindFunc && imp.Desc.TypeIdx >= numTypes {
			return indexOutOfRange([]string{"import", itoa(i), imp.Module, imp.Name}, imp.Desc.TypeIdx, numTypes)
		}
		if imp.Desc.Kind == KindTag && imp.Desc.Tag != nil && imp.Desc.Tag.TypeIdx >= numTypes {
			return indexOutOfRange([]string{"import", itoa(i), imp.Module, imp.Name, "tag"}, imp.Desc.Tag.TypeIdx, numTypes)
		}
	}

	for i, tag := range m.Tags {
		if tag.TypeIdx >= numTypes {
			return indexOutOfRange([]string{"tag", itoa(i)}, tag.TypeIdx, numTypes)
		}
	}

	return nil
}

func validateFunctionIndices(m *Module) error {
	numFuncs := uint32(m.NumImportedFuncs() + len(m.Funcs))

	if m.Start != nil && *m.Start >= numFuncs {
		return indexOutOfRange([]string{"start"}, *m.Start, numFuncs)
	}

	for i, elem := range m.Elements {
		for j, funcIdx := range elem.FuncIdxs {
			if funcIdx >= numFuncs {
				return indexOutOfRange([]string{"element", itoa(i), itoa(j)}, funcIdx, numFuncs)
			}
		}
	}

	for i, exp := range m.Exports {
		if exp.Kind == KindFunc && exp.Idx >= numFuncs {
			return indexOutOfRange([]string{"export", itoa(i), exp.Name}, exp.Idx, numFuncs)
		}
	}

	return nil
}

func validateTableIndices(m *Module) error {
	numTables := uint32(m.NumImportedTables() + len(m.Tables))

	for i, elem := range m.Elements {
		if elem.Mode == ElementActive && elem.TableIdx >= numTables {
			return indexOutOfRange([]string{"element", itoa(i)}, elem.TableIdx, numTables)
		}
	}

	for i, exp := range m.Exports {
		if exp.Kind == KindTable && exp.Idx >= numTables {
			return indexOutOfRange([]string{"export", itoa(i), exp.Name}, exp.Idx, numTables)
		}
	}

	return nil
}

func validateMemoryIndices(m *Module) error {
	numMemories := uint32(m.NumImportedMemories() + len(m.Memories))

	for i, data := range m.Data {
		if data.Active && data.MemIdx >= numMemories {
			return indexOutOfRange([]string{"data", itoa(i)}, data.MemIdx, numMemories)
		}
	}

	for i, exp := range m.Exports {
		if exp.Kind == KindMemory && exp.Idx >= numMemories {
			return indexOutOfRange([]string{"export", itoa(i), exp.Name}, exp.Idx, numMemories)
		}
	}

	return nil
}

func validateGlobalIndices(m *Module) error {
	numGlobals := uint32(m.NumImportedGlobals() + len(m.Globals))

	for i, exp := range m.Exports {
		if exp.Kind == KindGlobal && exp.Idx >= numGlobals {
			return indexOutOfRange([]string{"export", itoa(i), exp.Name}, exp.Idx, numGlobals)
		}
	}

	return nil
}

func validateTagIndices(m *Module) error {
	numTags := uint32(m.NumImportedTags() + len(m.Tags))

	for i, exp := range m.Exports {
		if exp.Kind == KindTag && exp.Idx >= numTags {
			return indexOutOfRange([]string{"export", itoa(i), exp.Name}, exp.Idx, numTags)
		}
	}

	return nil
}

func validateExports(m *Module) error {
	seen := make(map[string]bool, len(m.Exports))
	for i, exp := range m.Exports {
		if !utf8.ValidString(exp.Name) {
			return newErr(KindInvalidName, []string{"export", itoa(i)}, "export name is not valid UTF-8")
		}
		if seen[exp.Name] {
			return newErr(KindInvalidName, []string{"export", itoa(i), exp.Name}, "duplicate export name")
		}
		seen[exp.Name] = true
	}
	return nil
}

func validateImportNames(m *Module) error {
	for i, imp := range m.Imports {
		if !utf8.ValidString(imp.Module) || !utf8.ValidString(imp.Name) {
			return newErr(KindInvalidName, []string{"import", itoa(i)}, "import module/name is not valid UTF-8")
		}
	}
	return nil
}

func validateStart(m *Module) error {
	if m.Start == nil {
		return nil
	}

	funcType := m.FuncTypeOf(*m.Start)
	if funcType == nil {
		return indexOutOfRange([]string{"start"}, *m.Start, uint32(m.NumImportedFuncs()+len(m.Funcs)))
	}

	numParams := len(funcType.Params) + len(funcType.ExtParams)
	numResults := len(funcType.Results) + len(funcType.ExtResults)
	if numParams != 0 || numResults != 0 {
		return newErr(KindInvalidType, []string{"start"},
			"start function must have signature [] -> [], got %d params -> %d results",
			numParams, numResults)
	}

	return nil
}

func validateDataCount(m *Module) error {
	if m.DataCount != nil && *m.DataCount != uint32(len(m.Data)) {
		return newErr(KindSectionCountMismatch, []string{"data-count"},
			"data count section declares %d segments, but data section has %d",
			*m.DataCount, len(m.Data))
	}
	return nil
}

func validateCodeCount(m *Module) error {
	if len(m.Code) != len(m.Funcs) {
		return newErr(KindSectionCountMismatch, []string{"code"},
			"code section has %d entries but function section has %d",
			len(m.Code), len(m.Funcs))
	}
	return nil
}

func validateMemoryLimits(m *Module) error {
	for i, imp := range m.Imports {
		if imp.Desc.Kind == KindMemory && imp.Desc.Memory != nil {
			if err := validateMemoryType(imp.Desc.Memory, []string{"import", itoa(i), imp.Module, imp.Name}); err != nil {
				return err
			}
		}
	}
	for i := range m.Memories {
		if err := validateMemoryType(&m.Memories[i], []string{"memory", itoa(i)}); err != nil {
			return err
		}
	}
	return nil
}

func validateMemoryType(mem *MemoryType, path []string) error {
	maxPages := MemoryMaxPages32
	if mem.Limits.Memory64 {
		maxPages = MemoryMaxPages64
	}

	if mem.Limits.Shared && mem.Limits.Max == nil {
		return newErr(KindInvalidLimits, path, "shared memory must have a maximum limit")
	}
	if mem.Limits.Max != nil && mem.Limits.Min > *mem.Limits.Max {
		return newErr(KindInvalidLimits, path, "min %d exceeds max %d", mem.Limits.Min, *mem.Limits.Max)
	}
	if mem.Limits.Min > maxPages {
		return newErr(KindInvalidLimits, path, "min pages %d exceeds format maximum %d", mem.Limits.Min, maxPages)
	}
	if mem.Limits.Max != nil && *mem.Limits.Max > maxPages {
		return newErr(KindInvalidLimits, path, "max pages %d exceeds format maximum %d", *mem.Limits.Max, maxPages)
	}
	return nil
}

func itoa(i int) string { return strconv.Itoa(i) }
