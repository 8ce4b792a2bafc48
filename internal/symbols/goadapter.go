package symbols

import (
	"go/ast"
	"go/parser"
	"go/token"
	"strings"
)

// GoAdapter extracts Go symbols with go/parser instead of the regex
// baseline, giving exact spans, doc comments, and receiver types for the one
// language this tool is itself written in. It is always available and never
// fails to parse a well-formed Go file; a syntax error falls through to the
// regex baseline for that file.
var GoAdapter = Adapter{
	Name:        "go-ast",
	IsAvailable: func() bool { return true },
	Extract:     extractGoAST,
}

func extractGoAST(file string, content []byte) ([]Symbol, error) {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, file, content, parser.ParseComments)
	if err != nil {
		return nil, err
	}

	var out []Symbol
	for _, decl := range f.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			out = append(out, goFuncSymbol(fset, d))
		case *ast.GenDecl:
			out = append(out, goGenDeclSymbols(fset, d)...)
		}
	}
	return out, nil
}

func goFuncSymbol(fset *token.FileSet, d *ast.FuncDecl) Symbol {
	name := d.Name.Name
	container := ""
	kind := KindFunction
	if d.Recv != nil && len(d.Recv.List) > 0 {
		kind = KindMethod
		container = receiverTypeName(d.Recv.List[0].Type)
	}
	displayName := name
	if container != "" {
		displayName = container + "." + name
	}

	start := fset.Position(d.Pos())
	end := fset.Position(d.End())

	return Symbol{
		Name:             displayName,
		Kind:             kind,
		Span:             &Span{Start: Position{Line: start.Line, Col: start.Column}, End: Position{Line: end.Line, Col: end.Column}},
		Signature:        truncate(funcSignature(d), maxSignatureLen),
		DocstringSummary: docSummary(d.Doc),
		Visibility:       goVisibility(name),
	}
}

func receiverTypeName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.StarExpr:
		return receiverTypeName(t.X)
	case *ast.Ident:
		return t.Name
	case *ast.IndexExpr:
		return receiverTypeName(t.X)
	case *ast.IndexListExpr:
		return receiverTypeName(t.X)
	default:
		return ""
	}
}

func funcSignature(d *ast.FuncDecl) string {
	var b strings.Builder
	b.WriteString("func ")
	if d.Recv != nil && len(d.Recv.List) > 0 {
		b.WriteString("(")
		b.WriteString(receiverTypeName(d.Recv.List[0].Type))
		b.WriteString(") ")
	}
	b.WriteString(d.Name.Name)
	b.WriteString("(...)")
	return b.String()
}

func goGenDeclSymbols(fset *token.FileSet, d *ast.GenDecl) []Symbol {
	var out []Symbol
	for _, spec := range d.Specs {
		switch s := spec.(type) {
		case *ast.TypeSpec:
			kind := KindClass
			switch s.Type.(type) {
			case *ast.InterfaceType:
				kind = KindInterface
			case *ast.StructType:
				kind = KindClass
			default:
				kind = KindType
			}
			pos := fset.Position(s.Pos())
			end := fset.Position(s.End())
			doc := s.Doc
			if doc == nil {
				doc = d.Doc
			}
			out = append(out, Symbol{
				Name:             s.Name.Name,
				Kind:             kind,
				Span:             &Span{Start: Position{Line: pos.Line, Col: pos.Column}, End: Position{Line: end.Line, Col: end.Column}},
				Signature:        truncate("type "+s.Name.Name, maxSignatureLen),
				DocstringSummary: docSummary(doc),
				Visibility:       goVisibility(s.Name.Name),
			})
		case *ast.ValueSpec:
			kind := KindVariable
			if d.Tok == token.CONST {
				kind = KindConstant
			}
			for _, nameIdent := range s.Names {
				if nameIdent.Name == "_" {
					continue
				}
				pos := fset.Position(nameIdent.Pos())
				out = append(out, Symbol{
					Name:       nameIdent.Name,
					Kind:       kind,
					Span:       &Span{Start: Position{Line: pos.Line, Col: pos.Column}},
					Signature:  trimToLen(nameIdent.Name, maxTrimmedLineLen),
					Visibility: goVisibility(nameIdent.Name),
				})
			}
		}
	}
	return out
}

func docSummary(g *ast.CommentGroup) string {
	if g == nil {
		return ""
	}
	for _, c := range g.List {
		line := strings.TrimSpace(strings.TrimPrefix(c.Text, "//"))
		line = strings.TrimPrefix(line, "/*")
		line = strings.TrimSuffix(line, "*/")
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		return truncate(line, maxDocstringLen)
	}
	return ""
}
