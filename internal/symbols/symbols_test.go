package symbols

import "testing"

func TestExtractGo_FunctionsAndMethods(t *testing.T) {
	src := `package widget

// New creates a widget.
func New() *Widget {
	return &Widget{}
}

type Widget struct {
	name string
}

// Name returns the widget's name.
func (w *Widget) Name() string {
	return w.name
}

func helper() int {
	return 1
}
`
	syms, _, err := Extract("widget.go", []byte(src), nil)
	if err != nil {
		t.Fatal(err)
	}
	byName := map[string]Symbol{}
	for _, s := range syms {
		byName[s.Name] = s
	}

	if s, ok := byName["New"]; !ok || s.Kind != KindFunction || s.Visibility != VisExport {
		t.Errorf("New = %+v", s)
	}
	if s, ok := byName["Widget"]; !ok || s.Kind != KindClass {
		t.Errorf("Widget = %+v", s)
	}
	if s, ok := byName["Widget.Name"]; !ok || s.Kind != KindMethod || s.DocstringSummary == "" {
		t.Errorf("Widget.Name = %+v", s)
	}
	if s, ok := byName["helper"]; !ok || s.Visibility != VisPrivate {
		t.Errorf("helper = %+v", s)
	}
}

func TestExtractGo_SymbolIDCollision(t *testing.T) {
	src := `package x

func dup() {}

func dup() {}
`
	syms, _, err := Extract("x.go", []byte(src), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(syms) != 2 {
		t.Fatalf("got %d symbols, want 2", len(syms))
	}
	if syms[0].SymbolID != "x.go::dup" {
		t.Errorf("first dup id = %q", syms[0].SymbolID)
	}
	if syms[1].SymbolID != "x.go::dup:L5" {
		t.Errorf("second dup id = %q", syms[1].SymbolID)
	}
}

func TestExtractTSJS_ExportedOnly(t *testing.T) {
	src := `function internalOnly() {}

export function greet(name) {
  return name;
}

export class Widget {}

const notExported = 1;
`
	syms, _, err := Extract("app.ts", []byte(src), nil)
	if err != nil {
		t.Fatal(err)
	}
	names := map[string]bool{}
	for _, s := range syms {
		names[s.Name] = true
	}
	if names["internalOnly"] || names["notExported"] {
		t.Errorf("unexported forms should not appear: %+v", syms)
	}
	if !names["greet"] || !names["Widget"] {
		t.Errorf("expected greet and Widget, got %+v", syms)
	}
}

func TestExtractTSJS_MethodInClassCollidesWithTopLevelFunction(t *testing.T) {
	src := `export function f() {}

export class C {

  f() {}
}
`
	syms, _, err := Extract("src/a.ts", []byte(src), nil)
	if err != nil {
		t.Fatal(err)
	}

	byID := map[string]Symbol{}
	for _, s := range syms {
		byID[s.SymbolID] = s
	}

	if s, ok := byID["src/a.ts::f"]; !ok || s.Kind != KindFunction {
		t.Errorf("src/a.ts::f = %+v, syms=%+v", s, syms)
	}
	if s, ok := byID["src/a.ts::C"]; !ok || s.Kind != KindClass {
		t.Errorf("src/a.ts::C = %+v, syms=%+v", s, syms)
	}
	if s, ok := byID["src/a.ts::C.f:L5"]; !ok || s.Kind != KindMethod {
		t.Errorf("src/a.ts::C.f:L5 = %+v, syms=%+v", s, syms)
	}
}

func TestExtractPython_VisibilityAndMethods(t *testing.T) {
	src := `class Greeter:
    def hello(self):
        """Say hello."""
        return "hi"

    def _internal(self):
        pass

    def __private(self):
        pass

CONST_VALUE = 42
`
	syms, _, err := Extract("greeter.py", []byte(src), nil)
	if err != nil {
		t.Fatal(err)
	}
	byName := map[string]Symbol{}
	for _, s := range syms {
		byName[s.Name] = s
	}
	if s, ok := byName["hello"]; !ok || s.Kind != KindMethod || s.Visibility != VisExport || s.DocstringSummary != "Say hello." {
		t.Errorf("hello = %+v", s)
	}
	if s, ok := byName["_internal"]; !ok || s.Visibility != VisInternal {
		t.Errorf("_internal = %+v", s)
	}
	if s, ok := byName["__private"]; !ok || s.Visibility != VisPrivate {
		t.Errorf("__private = %+v", s)
	}
	if s, ok := byName["CONST_VALUE"]; !ok || s.Kind != KindConstant {
		t.Errorf("CONST_VALUE = %+v", s)
	}
}

func TestExtractRust_ImplMethodsAndTrait(t *testing.T) {
	src := `pub struct Widget {
    name: String,
}

pub trait Drawable {
    fn draw(&self);
}

impl Widget {
    pub fn new() -> Self {
        Widget { name: String::new() }
    }

    fn internal_helper(&self) {}
}

pub const MAX_SIZE: usize = 10;
`
	syms, _, err := Extract("widget.rs", []byte(src), nil)
	if err != nil {
		t.Fatal(err)
	}
	byName := map[string]Symbol{}
	for _, s := range syms {
		byName[s.Name] = s
	}
	if s, ok := byName["Widget"]; !ok || s.Kind != KindClass || s.Visibility != VisExport {
		t.Errorf("Widget = %+v", s)
	}
	if s, ok := byName["Drawable"]; !ok || s.Kind != KindInterface {
		t.Errorf("Drawable = %+v", s)
	}
	if s, ok := byName["Widget::new"]; !ok || s.Kind != KindMethod || s.Visibility != VisExport {
		t.Errorf("Widget::new = %+v", s)
	}
	if s, ok := byName["Widget::new"]; ok && s.SymbolID != "widget.rs::Widget::new" {
		t.Errorf("Widget::new id = %q", s.SymbolID)
	}
	if s, ok := byName["Widget::internal_helper"]; !ok || s.Visibility != VisPrivate {
		t.Errorf("Widget::internal_helper = %+v", s)
	}
	if s, ok := byName["MAX_SIZE"]; !ok || s.Kind != KindConstant {
		t.Errorf("MAX_SIZE = %+v", s)
	}
}

func TestExtract_UnknownLanguageReturnsNil(t *testing.T) {
	syms, adapter, err := Extract("README.md", []byte("# hi"), nil)
	if err != nil || syms != nil || adapter != "" {
		t.Errorf("got syms=%v adapter=%q err=%v", syms, adapter, err)
	}
}

func TestExtract_AdapterPreemptsBaseline(t *testing.T) {
	adapter := Adapter{
		Name:        "custom-go",
		IsAvailable: func() bool { return true },
		Extract: func(file string, content []byte) ([]Symbol, error) {
			return []Symbol{{Name: "FromAdapter", Kind: KindFunction, Visibility: VisExport}}, nil
		},
	}
	syms, used, err := Extract("x.go", []byte("func real() {}\n"), []Adapter{adapter})
	if err != nil {
		t.Fatal(err)
	}
	if used != "custom-go" {
		t.Errorf("used = %q, want custom-go", used)
	}
	if len(syms) != 1 || syms[0].Name != "FromAdapter" {
		t.Errorf("syms = %+v", syms)
	}
}
