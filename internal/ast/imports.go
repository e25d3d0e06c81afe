package ast

// FindImport returns the index of the declaration for source, or -1.
func FindImport(imports []ImportDeclaration, source string) int {
	for i := range imports {
		if imports[i].Source == source {
			return i
		}
	}
	return -1
}

// BindsLocal reports whether any declaration introduces local.
func BindsLocal(imports []ImportDeclaration, local string) bool {
	for _, d := range imports {
		for _, s := range d.Specifiers {
			if s.Local == local {
				return true
			}
		}
	}
	return false
}

// AddNamed ensures `import { name } from source`. It merges into an existing
// declaration for source and does nothing when name is already bound by any
// import. The second result reports whether the list changed.
func AddNamed(imports []ImportDeclaration, source, name string) ([]ImportDeclaration, bool) {
	if BindsLocal(imports, name) {
		return imports, false
	}
	spec := ImportSpecifier{Kind: SpecifierNamed, Imported: name, Local: name}
	if i := FindImport(imports, source); i >= 0 {
		if imports[i].TypeOnly {
			for j := range imports[i].Specifiers {
				imports[i].Specifiers[j].TypeOnly = true
			}
			imports[i].TypeOnly = false
		}
		imports[i].Specifiers = append(imports[i].Specifiers, spec)
		return imports, true
	}
	return append(imports, ImportDeclaration{Source: source, Specifiers: []ImportSpecifier{spec}}), true
}

// AddDefault ensures `import local from source`.
func AddDefault(imports []ImportDeclaration, source, local string) ([]ImportDeclaration, bool) {
	if BindsLocal(imports, local) {
		return imports, false
	}
	spec := ImportSpecifier{Kind: SpecifierDefault, Local: local}
	if i := FindImport(imports, source); i >= 0 {
		for _, s := range imports[i].Specifiers {
			if s.Kind == SpecifierDefault {
				// A module has one default binding; keep the existing one.
				return imports, false
			}
		}
		imports[i].Specifiers = append([]ImportSpecifier{spec}, imports[i].Specifiers...)
		return imports, true
	}
	return append(imports, ImportDeclaration{Source: source, Specifiers: []ImportSpecifier{spec}}), true
}

// MergeImports folds declarations that share a source into the first one,
// dropping duplicate specifiers. Order of first appearance is kept.
func MergeImports(imports []ImportDeclaration) []ImportDeclaration {
	out := make([]ImportDeclaration, 0, len(imports))
	for _, d := range imports {
		i := FindImport(out, d.Source)
		if i < 0 {
			d.Specifiers = dedupSpecifiers(append([]ImportSpecifier(nil), d.Specifiers...))
			out = append(out, d)
			continue
		}
		target := &out[i]
		incoming := append([]ImportSpecifier(nil), d.Specifiers...)
		switch {
		case target.TypeOnly && !d.TypeOnly:
			for j := range target.Specifiers {
				target.Specifiers[j].TypeOnly = true
			}
			target.TypeOnly = false
		case !target.TypeOnly && d.TypeOnly:
			for j := range incoming {
				incoming[j].TypeOnly = true
			}
		}
		target.Specifiers = dedupSpecifiers(append(target.Specifiers, incoming...))
	}
	return out
}

func dedupSpecifiers(specs []ImportSpecifier) []ImportSpecifier {
	out := specs[:0]
	hasDefault := false
	for _, s := range specs {
		if s.Kind == SpecifierDefault {
			if hasDefault {
				continue
			}
			hasDefault = true
		}
		dup := false
		for _, o := range out {
			if o.Kind == s.Kind && o.Imported == s.Imported && o.Local == s.Local {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, s)
		}
	}
	return out
}
