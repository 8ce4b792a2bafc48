package symbols

import (
	"regexp"
	"strings"
)

var (
	tsExportRe    = regexp.MustCompile(`^export\s+(default\s+)?(async\s+)?(function\*?|class|interface|type|enum|const|let|var)\s+([A-Za-z_$][\w$]*)`)
	pyDefRe       = regexp.MustCompile(`^(\s*)(async\s+)?def\s+([A-Za-z_]\w*)\s*\(`)
	pyClassRe     = regexp.MustCompile(`^(\s*)class\s+([A-Za-z_]\w*)`)
	pyConstRe     = regexp.MustCompile(`^([A-Z_][A-Z0-9_]*)\s*(:[^=]+)?=`)
	rustFnRe      = regexp.MustCompile(`^\s*pub\s+(async\s+)?fn\s+([A-Za-z_]\w*)`)
	rustFnPrivRe  = regexp.MustCompile(`^\s*(async\s+)?fn\s+([A-Za-z_]\w*)`)
	rustStructRe  = regexp.MustCompile(`^\s*(pub\s+)?struct\s+([A-Za-z_]\w*)`)
	rustTraitRe   = regexp.MustCompile(`^\s*(pub\s+)?trait\s+([A-Za-z_]\w*)`)
	rustEnumRe    = regexp.MustCompile(`^\s*(pub\s+)?enum\s+([A-Za-z_]\w*)`)
	rustConstRe   = regexp.MustCompile(`^\s*(pub\s+)?const\s+([A-Za-z_][A-Z0-9_]*)\s*:`)
	rustImplRe    = regexp.MustCompile(`^\s*impl(?:<[^>]*>)?\s+(?:([A-Za-z_:]\w*)\s+for\s+)?([A-Za-z_]\w*)`)
	tsMethodRe    = regexp.MustCompile(`(?:^|[\s{;])(?:(?:public|private|protected|static|readonly|async|get|set)\s+)*([A-Za-z_$][\w$]*)\s*\(([^()]*)\)\s*(?::\s*[^{]*)?\{`)
	tsModifierRe  = regexp.MustCompile(`\b(private|protected)\b`)
	goFuncRe      = regexp.MustCompile(`^func\s+(\([^)]*\)\s*)?([A-Za-z_]\w*)\s*\(`)
	goTypeRe      = regexp.MustCompile(`^type\s+([A-Za-z_]\w*)\s+(struct|interface)\b`)
	goTypeAliasRe = regexp.MustCompile(`^type\s+([A-Za-z_]\w*)\s+(?:=\s*)?([A-Za-z_][\w.\[\]*]*)`)
	goConstVarRe  = regexp.MustCompile(`^(const|var)\s+([A-Za-z_]\w*)\s*`)
	goReceiverRe  = regexp.MustCompile(`\(\s*\w*\s+\*?([A-Za-z_]\w*)\s*\)`)
)

// tsMethodSkipNames excludes keywords that otherwise match the
// "identifier(...) {" shape tsMethodRe looks for.
var tsMethodSkipNames = map[string]bool{
	"if": true, "else": true, "for": true, "while": true, "do": true,
	"switch": true, "case": true, "return": true, "throw": true, "try": true,
	"catch": true, "finally": true, "new": true, "typeof": true,
	"instanceof": true, "void": true, "delete": true, "await": true,
	"yield": true, "import": true, "export": true, "default": true,
	"from": true, "as": true, "with": true, "debugger": true, "super": true,
	"this": true, "constructor": true, "get": true, "set": true,
	"function": true, "class": true,
}

func lines(text string) []string {
	return strings.Split(text, "\n")
}

// ---- TypeScript / JavaScript ----

func extractTSJS(file, text string) []Symbol {
	tracker := newIDTracker()
	var out []Symbol
	ls := lines(text)

	// classStack/classDepths track enclosing class bodies by brace depth, the
	// same way extractRust tracks enclosing impl blocks, so methods declared
	// inside a class (never matched by tsExportRe, which only fires on
	// top-level "export ..." lines) are still captured and qualified by
	// their container.
	var classStack []string
	braceDepth := 0
	classDepths := map[int]string{}

	for i, line := range ls {
		lineNo := i + 1

		if m := tsExportRe.FindStringSubmatch(line); m != nil {
			kw := m[3]
			name := m[4]

			var kind Kind
			switch {
			case strings.HasPrefix(kw, "function"):
				kind = KindFunction
			case kw == "class":
				kind = KindClass
			case kw == "interface":
				kind = KindInterface
			case kw == "type":
				kind = KindType
			case kw == "enum":
				kind = KindEnum
			default: // const, let, var
				kind = KindVariable
			}

			sym := Symbol{
				Name:             name,
				Kind:             kind,
				File:             file,
				Span:             &Span{Start: Position{Line: lineNo, Col: 1}, End: Position{Line: lineNo, Col: len(line) + 1}},
				Signature:        truncate(line, maxSignatureLen),
				DocstringSummary: precedingJSDoc(ls, i),
				Visibility:       VisExport,
			}
			sym.SymbolID = tracker.next(file, name, name, lineNo)
			out = append(out, sym)

			if kind == KindClass {
				classDepths[braceDepth] = name
				classStack = append(classStack, name)
			}
		}

		if len(classStack) > 0 {
			container := classStack[len(classStack)-1]
			for _, mm := range tsMethodRe.FindAllStringSubmatch(line, -1) {
				name := mm[1]
				if tsMethodSkipNames[name] || name == container {
					continue
				}
				vis := VisExport
				if tsModifierRe.MatchString(mm[0]) {
					vis = VisPrivate
				}
				sym := Symbol{
					Name:             name,
					Kind:             KindMethod,
					File:             file,
					Span:             &Span{Start: Position{Line: lineNo, Col: 1}},
					Signature:        truncate(strings.TrimSpace(line), maxSignatureLen),
					DocstringSummary: precedingJSDoc(ls, i),
					Visibility:       vis,
				}
				sym.SymbolID = tracker.next(file, container+"."+name, name, lineNo)
				out = append(out, sym)
			}
		}

		braceDepth += strings.Count(line, "{") - strings.Count(line, "}")
		for depth, className := range classDepths {
			if braceDepth > depth {
				continue
			}
			delete(classDepths, depth)
			if len(classStack) > 0 && classStack[len(classStack)-1] == className {
				classStack = classStack[:len(classStack)-1]
			}
		}
	}
	return out
}

func precedingJSDoc(ls []string, idx int) string {
	j := idx - 1
	for j >= 0 && strings.TrimSpace(ls[j]) == "" {
		j--
	}
	if j < 0 {
		return ""
	}
	trimmed := strings.TrimSpace(ls[j])
	if strings.HasPrefix(trimmed, "*/") {
		// walk up through a JSDoc block to its first content line
		for j >= 0 {
			t := strings.TrimSpace(ls[j])
			if strings.HasPrefix(t, "/**") {
				break
			}
			j--
		}
		for k := j + 1; k < idx; k++ {
			t := strings.TrimSpace(ls[k])
			t = strings.TrimPrefix(t, "*")
			t = strings.TrimSpace(t)
			if t == "" || strings.HasPrefix(t, "@") || strings.HasPrefix(t, "/**") || strings.HasPrefix(t, "*/") {
				continue
			}
			return truncate(t, maxDocstringLen)
		}
		return ""
	}
	if strings.HasPrefix(trimmed, "//") {
		return truncate(strings.TrimPrefix(trimmed, "//"), maxDocstringLen)
	}
	return ""
}

// ---- Python ----

func extractPython(file, text string) []Symbol {
	tracker := newIDTracker()
	var out []Symbol
	ls := lines(text)

	type classCtx struct {
		name   string
		indent int
	}
	var classes []classCtx

	for i, line := range ls {
		trimmed := strings.TrimRight(line, " \t")
		if trimmed == "" {
			continue
		}
		indent := len(line) - len(strings.TrimLeft(line, " \t"))

		for len(classes) > 0 && indent <= classes[len(classes)-1].indent {
			classes = classes[:len(classes)-1]
		}

		if m := pyClassRe.FindStringSubmatch(trimmed); m != nil {
			lineNo := i + 1
			name := m[2]
			sym := Symbol{
				Name:             name,
				Kind:             KindClass,
				File:             file,
				Span:             &Span{Start: Position{Line: lineNo, Col: 1}},
				Signature:        truncate(trimmed, maxSignatureLen),
				DocstringSummary: pyDocstring(ls, i),
				Visibility:       pyVisibility(name),
			}
			sym.SymbolID = tracker.next(file, name, name, lineNo)
			out = append(out, sym)
			classes = append(classes, classCtx{name: name, indent: indent})
			continue
		}

		if m := pyDefRe.FindStringSubmatch(trimmed); m != nil {
			lineNo := i + 1
			name := m[3]
			qualified := name
			kind := KindFunction
			if len(classes) > 0 && indent > classes[len(classes)-1].indent {
				qualified = classes[len(classes)-1].name + "." + name
				kind = KindMethod
			}
			sym := Symbol{
				Name:             name,
				Kind:             kind,
				File:             file,
				Span:             &Span{Start: Position{Line: lineNo, Col: 1}},
				Signature:        truncate(trimmed, maxSignatureLen),
				DocstringSummary: pyDocstring(ls, i),
				Visibility:       pyVisibility(name),
			}
			sym.SymbolID = tracker.next(file, qualified, name, lineNo)
			out = append(out, sym)
			continue
		}

		if indent == 0 {
			if m := pyConstRe.FindStringSubmatch(trimmed); m != nil {
				lineNo := i + 1
				name := m[1]
				sym := Symbol{
					Name:       name,
					Kind:       KindConstant,
					File:       file,
					Span:       &Span{Start: Position{Line: lineNo, Col: 1}},
					Signature:  trimToLen(trimmed, maxTrimmedLineLen),
					Visibility: VisExport,
				}
				sym.SymbolID = tracker.next(file, name, name, lineNo)
				out = append(out, sym)
			}
		}
	}
	return out
}

func pyVisibility(name string) Visibility {
	switch {
	case strings.HasPrefix(name, "__") && !strings.HasSuffix(name, "__"):
		return VisPrivate
	case strings.HasPrefix(name, "_"):
		return VisInternal
	default:
		return VisExport
	}
}

func pyDocstring(ls []string, defIdx int) string {
	for j := defIdx + 1; j < len(ls); j++ {
		t := strings.TrimSpace(ls[j])
		if t == "" {
			continue
		}
		if strings.HasPrefix(t, `"""`) || strings.HasPrefix(t, "'''") {
			quote := t[:3]
			t = strings.TrimPrefix(t, quote)
			if idx := strings.Index(t, quote); idx >= 0 {
				t = t[:idx]
			}
			return truncate(t, maxDocstringLen)
		}
		return ""
	}
	return ""
}

// ---- Rust ----

func extractRust(file, text string) []Symbol {
	tracker := newIDTracker()
	var out []Symbol
	ls := lines(text)

	implStack := []string{}
	braceDepth := 0
	implDepths := map[int]string{}

	for i, line := range ls {
		trimmed := strings.TrimSpace(line)
		lineNo := i + 1

		if m := rustImplRe.FindStringSubmatch(trimmed); m != nil {
			target := m[2]
			implDepths[braceDepth] = target
			implStack = append(implStack, target)
		}

		container := ""
		if len(implStack) > 0 {
			container = implStack[len(implStack)-1]
		}

		switch {
		case container != "" && rustFnRe.MatchString(trimmed):
			m := rustFnRe.FindStringSubmatch(trimmed)
			out = append(out, rustSym(tracker, file, m[2], container, KindMethod, VisExport, lineNo, trimmed, ls, i))
		case container != "" && rustFnPrivRe.MatchString(trimmed):
			m := rustFnPrivRe.FindStringSubmatch(trimmed)
			out = append(out, rustSym(tracker, file, m[2], container, KindMethod, VisPrivate, lineNo, trimmed, ls, i))
		case rustFnRe.MatchString(trimmed):
			m := rustFnRe.FindStringSubmatch(trimmed)
			out = append(out, rustSym(tracker, file, m[2], "", KindFunction, VisExport, lineNo, trimmed, ls, i))
		case rustFnPrivRe.MatchString(trimmed):
			m := rustFnPrivRe.FindStringSubmatch(trimmed)
			out = append(out, rustSym(tracker, file, m[2], "", KindFunction, VisPrivate, lineNo, trimmed, ls, i))
		case rustStructRe.MatchString(trimmed):
			m := rustStructRe.FindStringSubmatch(trimmed)
			vis := VisPrivate
			if m[1] != "" {
				vis = VisExport
			}
			out = append(out, rustSym(tracker, file, m[2], "", KindClass, vis, lineNo, trimmed, ls, i))
		case rustTraitRe.MatchString(trimmed):
			m := rustTraitRe.FindStringSubmatch(trimmed)
			vis := VisPrivate
			if m[1] != "" {
				vis = VisExport
			}
			out = append(out, rustSym(tracker, file, m[2], "", KindInterface, vis, lineNo, trimmed, ls, i))
		case rustEnumRe.MatchString(trimmed):
			m := rustEnumRe.FindStringSubmatch(trimmed)
			vis := VisPrivate
			if m[1] != "" {
				vis = VisExport
			}
			out = append(out, rustSym(tracker, file, m[2], "", KindEnum, vis, lineNo, trimmed, ls, i))
		case rustConstRe.MatchString(trimmed):
			m := rustConstRe.FindStringSubmatch(trimmed)
			vis := VisPrivate
			if m[1] != "" {
				vis = VisExport
			}
			sym := Symbol{
				Name:       m[2],
				Kind:       KindConstant,
				File:       file,
				Span:       &Span{Start: Position{Line: lineNo, Col: 1}},
				Signature:  trimToLen(trimmed, maxTrimmedLineLen),
				Visibility: vis,
			}
			sym.SymbolID = tracker.next(file, m[2], m[2], lineNo)
			out = append(out, sym)
		}

		braceDepth += strings.Count(line, "{") - strings.Count(line, "}")
		for depth := range implDepths {
			if braceDepth <= depth {
				delete(implDepths, depth)
				if len(implStack) > 0 {
					implStack = implStack[:len(implStack)-1]
				}
			}
		}
	}
	return out
}

func rustSym(tracker *idTracker, file, name, container string, kind Kind, vis Visibility, lineNo int, trimmed string, ls []string, idx int) Symbol {
	displayName := name
	if container != "" {
		displayName = container + "::" + name
	}
	sym := Symbol{
		Name:             displayName,
		Kind:             kind,
		File:             file,
		Span:             &Span{Start: Position{Line: lineNo, Col: 1}},
		Signature:        truncate(trimmed, maxSignatureLen),
		DocstringSummary: rustDocstring(ls, idx),
		Visibility:       vis,
	}
	sym.SymbolID = tracker.next(file, displayName, name, lineNo)
	return sym
}

func rustDocstring(ls []string, defIdx int) string {
	j := defIdx - 1
	for j >= 0 {
		t := strings.TrimSpace(ls[j])
		if strings.HasPrefix(t, "#[") {
			j--
			continue
		}
		if strings.HasPrefix(t, "///") {
			return truncate(strings.TrimPrefix(t, "///"), maxDocstringLen)
		}
		break
	}
	return ""
}

// ---- Go ----

func extractGo(file, text string) []Symbol {
	tracker := newIDTracker()
	var out []Symbol
	ls := lines(text)

	for i, line := range ls {
		lineNo := i + 1

		if m := goFuncRe.FindStringSubmatch(line); m != nil {
			name := m[2]
			container := ""
			kind := KindFunction
			if m[1] != "" {
				if rm := goReceiverRe.FindStringSubmatch(m[1]); rm != nil {
					container = rm[1]
					kind = KindMethod
				}
			}
			displayName := name
			if container != "" {
				displayName = container + "." + name
			}
			sym := Symbol{
				Name:             displayName,
				Kind:             kind,
				File:             file,
				Span:             &Span{Start: Position{Line: lineNo, Col: 1}},
				Signature:        truncate(line, maxSignatureLen),
				DocstringSummary: precedingGoComment(ls, i),
				Visibility:       goVisibility(name),
			}
			sym.SymbolID = tracker.next(file, displayName, name, lineNo)
			out = append(out, sym)
			continue
		}

		if m := goTypeRe.FindStringSubmatch(line); m != nil {
			name := m[1]
			kind := KindClass
			if m[2] == "interface" {
				kind = KindInterface
			}
			sym := Symbol{
				Name:             name,
				Kind:             kind,
				File:             file,
				Span:             &Span{Start: Position{Line: lineNo, Col: 1}},
				Signature:        truncate(line, maxSignatureLen),
				DocstringSummary: precedingGoComment(ls, i),
				Visibility:       goVisibility(name),
			}
			sym.SymbolID = tracker.next(file, name, name, lineNo)
			out = append(out, sym)
			continue
		}

		if m := goTypeAliasRe.FindStringSubmatch(line); m != nil && !strings.Contains(line, "struct") && !strings.Contains(line, "interface") {
			name := m[1]
			sym := Symbol{
				Name:             name,
				Kind:             KindType,
				File:             file,
				Span:             &Span{Start: Position{Line: lineNo, Col: 1}},
				Signature:        truncate(line, maxSignatureLen),
				DocstringSummary: precedingGoComment(ls, i),
				Visibility:       goVisibility(name),
			}
			sym.SymbolID = tracker.next(file, name, name, lineNo)
			out = append(out, sym)
			continue
		}

		if m := goConstVarRe.FindStringSubmatch(line); m != nil {
			name := m[2]
			kind := KindConstant
			if m[1] == "var" {
				kind = KindVariable
			}
			sym := Symbol{
				Name:       name,
				Kind:       kind,
				File:       file,
				Span:       &Span{Start: Position{Line: lineNo, Col: 1}},
				Signature:  trimToLen(line, maxTrimmedLineLen),
				Visibility: goVisibility(name),
			}
			sym.SymbolID = tracker.next(file, name, name, lineNo)
			out = append(out, sym)
		}
	}
	return out
}

func goVisibility(name string) Visibility {
	if name == "" {
		return VisPrivate
	}
	r := name[0]
	if r >= 'A' && r <= 'Z' {
		return VisExport
	}
	return VisPrivate
}

func precedingGoComment(ls []string, idx int) string {
	j := idx - 1
	var collected []string
	for j >= 0 {
		t := strings.TrimSpace(ls[j])
		if !strings.HasPrefix(t, "//") {
			break
		}
		collected = append([]string{strings.TrimSpace(strings.TrimPrefix(t, "//"))}, collected...)
		j--
	}
	for _, c := range collected {
		if c != "" {
			return truncate(c, maxDocstringLen)
		}
	}
	return ""
}
