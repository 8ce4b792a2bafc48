// Package symbols turns source text into Symbol records with stable IDs,
// using a regex-driven baseline per language with room for optional,
// higher-fidelity adapters to pre-empt the baseline on a per-file basis.
package symbols

import (
	"strings"

	"github.com/rybkr/arkindex/internal/fsutil"
)

// Kind classifies a Symbol.
type Kind string

const (
	KindFunction  Kind = "function"
	KindClass     Kind = "class"
	KindMethod    Kind = "method"
	KindInterface Kind = "interface"
	KindType      Kind = "type"
	KindEnum      Kind = "enum"
	KindConstant  Kind = "constant"
	KindModule    Kind = "module"
	KindVariable  Kind = "variable"
)

// Visibility classifies how widely a Symbol is exposed.
type Visibility string

const (
	VisExport   Visibility = "export"
	VisPublic   Visibility = "public"
	VisPrivate  Visibility = "private"
	VisInternal Visibility = "internal"
)

const maxSignatureLen = 200
const maxDocstringLen = 200
const maxTrimmedLineLen = 100

// Position is a 1-indexed line/column location.
type Position struct {
	Line int
	Col  int
}

// Span is the start/end location of a Symbol's declaration.
type Span struct {
	Start Position
	End   Position
}

// Symbol is one extracted declaration.
type Symbol struct {
	SymbolID          string
	Name              string
	Kind              Kind
	File              string
	Span              *Span
	Signature         string
	DocstringSummary  string
	Visibility        Visibility
	TopCallers        []string
	TopCallees        []string
	Tags              []string
}

// Adapter is an optional, higher-fidelity extractor offered ahead of the
// regex baseline. The first adapter that reports availability and returns a
// non-empty symbol list for a file pre-empts the baseline entirely for that
// file.
type Adapter struct {
	Name        string
	IsAvailable func() bool
	Extract     func(file string, content []byte) ([]Symbol, error)
}

// idTracker assigns stable symbol IDs within a single file, appending
// ":L{line}" only from the second occurrence of a given bare name onward.
type idTracker struct {
	counts map[string]int
}

func newIDTracker() *idTracker {
	return &idTracker{counts: make(map[string]int)}
}

// next computes the base ID ("{file}::{qualified}", where qualified is the
// container-composed name each extractor builds with its language's own
// separator) and resolves collisions by suffixing ":L{line}" from the second
// occurrence onward. Collisions are tracked by the bare name, not the
// qualified base ID, so a method and a same-named top-level declaration
// (e.g. function f and method C.f) are treated as colliding even though
// their own base IDs differ.
func (t *idTracker) next(file, qualified, bare string, line int) string {
	base := file + "::" + qualified
	key := file + "::" + bare
	t.counts[key]++
	if t.counts[key] == 1 {
		return base
	}
	return base + ":L" + itoa(line)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// truncate collapses whitespace and caps s at n runes, appending "...".
func truncate(s string, n int) string {
	s = collapseWhitespace(s)
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}

func collapseWhitespace(s string) string {
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}

func trimToLen(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// Extract runs adapters (if any report availability and return non-empty
// results) then falls back to the language-specific regex baseline.
// usedAdapter is the name of the adapter that pre-empted the baseline, or ""
// if the baseline ran.
func Extract(file string, content []byte, adapters []Adapter) (syms []Symbol, usedAdapter string, err error) {
	for _, a := range adapters {
		if a.IsAvailable == nil || !a.IsAvailable() {
			continue
		}
		result, aerr := a.Extract(file, content)
		if aerr != nil {
			continue
		}
		if len(result) > 0 {
			return assignIDs(file, result), a.Name, nil
		}
	}

	lang := fsutil.LanguageOf(file)
	text := string(content)
	var raw []Symbol
	switch lang {
	case fsutil.LangTypeScript, fsutil.LangJavaScript:
		raw = extractTSJS(file, text)
	case fsutil.LangPython:
		raw = extractPython(file, text)
	case fsutil.LangRust:
		raw = extractRust(file, text)
	case fsutil.LangGo:
		raw = extractGo(file, text)
	default:
		return nil, "", nil
	}
	return raw, "", nil
}

// assignIDs stamps symbol_id onto adapter-returned symbols using the same
// per-file collision mechanism the baseline uses, deriving container/name
// from whatever Name the adapter already set (adapters are expected to set
// Name to "Container.Method" when applicable, matching the baseline form).
func assignIDs(file string, syms []Symbol) []Symbol {
	tracker := newIDTracker()
	for i := range syms {
		syms[i].File = file
		line := 0
		if syms[i].Span != nil {
			line = syms[i].Span.Start.Line
		}
		bare := syms[i].Name
		if idx := strings.LastIndex(bare, "::"); idx >= 0 {
			bare = bare[idx+2:]
		}
		if idx := strings.LastIndex(bare, "."); idx >= 0 {
			bare = bare[idx+1:]
		}
		syms[i].SymbolID = tracker.next(file, syms[i].Name, bare, line)
	}
	return syms
}
