package server

import (
	"strings"
	"testing"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

const squares = `const n = 5;
var i, sq;
procedure square;
  sq := i * i;
begin
  i := 1;
  while i <= n do
  begin
    call square;
    write sq;
    i := i + 1
  end;
  if odd i then skip else read i
end.
`

func TestInitialize(t *testing.T) {
	s := NewLSP()
	defer s.worker.Stop()

	v, err := s.initialize(nil, &protocol.InitializeParams{})
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	res, ok := v.(protocol.InitializeResult)
	if !ok {
		t.Fatalf("result type = %T, want protocol.InitializeResult", v)
	}
	if res.ServerInfo == nil || res.ServerInfo.Name != lspName {
		t.Errorf("ServerInfo = %+v, want name %q", res.ServerInfo, lspName)
	}
	if res.Capabilities.HoverProvider != true {
		t.Errorf("HoverProvider = %v, want true", res.Capabilities.HoverProvider)
	}
	if res.Capabilities.CompletionProvider == nil {
		t.Error("CompletionProvider not set")
	}
}

// ---------------------------------------------------------------------------
// LSP text extraction helpers
// ---------------------------------------------------------------------------

func TestExtractPrefix(t *testing.T) {
	tests := []struct {
		name string
		text string
		pos  protocol.Position
		want string
	}{
		{"simple word", "call square", protocol.Position{Line: 0, Character: 11}, "square"},
		{"at start", "squ", protocol.Position{Line: 0, Character: 3}, "squ"},
		{"empty line", "", protocol.Position{Line: 0, Character: 0}, ""},
		{"multi line", "var x;\nbegin\n  wri", protocol.Position{Line: 2, Character: 5}, "wri"},
		{"after operator", "x := y+co", protocol.Position{Line: 0, Character: 9}, "co"},
		{"mid word", "square", protocol.Position{Line: 0, Character: 3}, "squ"},
		{"cursor at beginning", "hello", protocol.Position{Line: 0, Character: 0}, ""},
		{"line beyond document", "single line", protocol.Position{Line: 5, Character: 0}, ""},
		{"column beyond line", "abc", protocol.Position{Line: 0, Character: 40}, "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractPrefix(tt.text, tt.pos); got != tt.want {
				t.Errorf("extractPrefix = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractWord_SimpleWord(t *testing.T) {
	text := "call square"
	pos := protocol.Position{Line: 0, Character: 7}
	if word := extractWord(text, pos); word != "square" {
		t.Errorf("extractWord = %q, want %q", word, "square")
	}
}

func TestExtractWord_AtEnd(t *testing.T) {
	text := "write sq"
	pos := protocol.Position{Line: 0, Character: 8}
	if word := extractWord(text, pos); word != "sq" {
		t.Errorf("extractWord = %q, want %q", word, "sq")
	}
}

func TestExtractWord_AtSpace(t *testing.T) {
	text := "a  b"
	pos := protocol.Position{Line: 0, Character: 2}
	if word := extractWord(text, pos); word != "" {
		t.Errorf("extractWord between spaces = %q, want empty string", word)
	}
}

func TestExtractWord_StopsAtOperator(t *testing.T) {
	text := "x:=y1+z"
	pos := protocol.Position{Line: 0, Character: 4}
	if word := extractWord(text, pos); word != "y1" {
		t.Errorf("extractWord = %q, want %q", word, "y1")
	}
}

func TestExtractWord_MultiLine(t *testing.T) {
	text := "var i;\nbegin\n  read i\nend."
	pos := protocol.Position{Line: 2, Character: 4}
	if word := extractWord(text, pos); word != "read" {
		t.Errorf("extractWord = %q, want %q", word, "read")
	}
}

func TestExtractWord_LineBeyondDocument(t *testing.T) {
	pos := protocol.Position{Line: 5, Character: 0}
	if word := extractWord("skip.", pos); word != "" {
		t.Errorf("extractWord beyond document = %q, want empty string", word)
	}
}

func TestBoolPtr(t *testing.T) {
	if p := boolPtr(true); p == nil || !*p {
		t.Error("boolPtr(true) should point to true")
	}
	if p := boolPtr(false); p == nil || *p {
		t.Error("boolPtr(false) should point to false")
	}
}

// ---------------------------------------------------------------------------
// Diagnostics
// ---------------------------------------------------------------------------

func TestDiagnose_CleanDocument(t *testing.T) {
	diags := Diagnose("file:///squares.pl0", squares)
	if diags == nil {
		t.Fatal("Diagnose returned nil, want an empty list")
	}
	if len(diags) != 0 {
		t.Errorf("got %d diagnostics, want 0: %+v", len(diags), diags)
	}
}

func TestDiagnose_Errors(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		line, col uint32
		msg       string
	}{
		{"illegal character", "x := 3 $ 4.", 0, 7, "illegal character"},
		{"missing period", "skip", 0, 4, "expected periodsym"},
		{"second line", "var x;\nx = 1.", 1, 2, "expected becomessym"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diags := Diagnose("file:///bad.pl0", tt.text)
			if len(diags) != 1 {
				t.Fatalf("got %d diagnostics, want 1", len(diags))
			}
			d := diags[0]
			if uint32(d.Range.Start.Line) != tt.line || uint32(d.Range.Start.Character) != tt.col {
				t.Errorf("start = %d:%d, want %d:%d", d.Range.Start.Line, d.Range.Start.Character, tt.line, tt.col)
			}
			if uint32(d.Range.End.Character) != tt.col+1 {
				t.Errorf("end character = %d, want %d", d.Range.End.Character, tt.col+1)
			}
			if !strings.Contains(d.Message, tt.msg) {
				t.Errorf("Message = %q, want it to contain %q", d.Message, tt.msg)
			}
			if strings.Contains(d.Message, "bad.pl0") {
				t.Errorf("Message = %q should not repeat the position", d.Message)
			}
			if d.Severity == nil || *d.Severity != protocol.DiagnosticSeverityError {
				t.Error("severity should be error")
			}
			if d.Source == nil || *d.Source != lspName {
				t.Errorf("source = %v, want %s", d.Source, lspName)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Completion and hover
// ---------------------------------------------------------------------------

func labels(items []protocol.CompletionItem) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Label
	}
	return out
}

func TestComplete(t *testing.T) {
	items := Complete(squares, "s")
	got := strings.Join(labels(items), " ")
	if got != "skip sq square" {
		t.Errorf("Complete(s) = %q, want %q", got, "skip sq square")
	}
	for _, item := range items {
		if item.InsertText == nil || *item.InsertText != item.Label {
			t.Errorf("%s: InsertText = %v", item.Label, item.InsertText)
		}
	}
	if items[2].Kind == nil || *items[2].Kind != protocol.CompletionItemKindFunction {
		t.Error("square should complete as a function")
	}
	if items[0].Detail == nil || *items[0].Detail != "keyword" {
		t.Error("skip should be labeled keyword")
	}
}

func TestComplete_ConstantDetail(t *testing.T) {
	items := Complete(squares, "n")
	if len(items) != 1 {
		t.Fatalf("Complete(n) = %v, want [n]", labels(items))
	}
	if items[0].Detail == nil || *items[0].Detail != "const n = 5" {
		t.Errorf("detail = %v, want const n = 5", items[0].Detail)
	}
	if items[0].Kind == nil || *items[0].Kind != protocol.CompletionItemKindConstant {
		t.Error("n should complete as a constant")
	}
}

func TestComplete_BrokenDocument(t *testing.T) {
	items := Complete("var count;\nbegin co", "co")
	got := labels(items)
	want := map[string]bool{"const": false, "count": false}
	for _, l := range got {
		if _, ok := want[l]; ok {
			want[l] = true
		}
	}
	for l, found := range want {
		if !found {
			t.Errorf("Complete on unparsable text = %v, missing %q", got, l)
		}
	}
}

func TestComplete_NoMatch(t *testing.T) {
	if items := Complete(squares, "zz"); len(items) != 0 {
		t.Errorf("Complete(zz) = %v, want none", labels(items))
	}
}

func TestHoverText(t *testing.T) {
	nested := `procedure outer;
  var t;
  skip;
skip.`
	tests := []struct {
		name, text, word, want string
	}{
		{"constant", squares, "n", "`const n = 5`, line 1"},
		{"variable", squares, "sq", "`var sq`, line 2"},
		{"procedure", squares, "square", "`procedure square`, line 3"},
		{"scoped", nested, "t", "`var t` in procedure `outer`, line 2"},
		{"unknown", squares, "nosuch", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HoverText(tt.text, tt.word); got != tt.want {
				t.Errorf("HoverText(%q) = %q, want %q", tt.word, got, tt.want)
			}
		})
	}
}

func TestHoverText_Keyword(t *testing.T) {
	got := HoverText(squares, "while")
	if !strings.HasPrefix(got, "**while**\n\n") {
		t.Errorf("HoverText(while) = %q", got)
	}
	// Every reserved word has a description.
	for _, w := range []string{"const", "var", "procedure", "call", "begin", "end", "if", "then",
		"else", "while", "do", "read", "write", "skip", "odd"} {
		if HoverText("", w) == "" {
			t.Errorf("no hover text for %q", w)
		}
	}
}

func TestReferences(t *testing.T) {
	d := analyze("file:///squares.pl0", squares)
	spans := d.references("i")
	if len(spans) != 9 {
		t.Fatalf("got %d references to i, want 9", len(spans))
	}
	decl := toRange(spans[0])
	if decl.Start.Line != 1 || decl.Start.Character != 4 || decl.End.Character != 5 {
		t.Errorf("first reference = %+v, want the declaration at 1:4-1:5", decl)
	}
	if refs := d.references("nosuch"); len(refs) != 0 {
		t.Errorf("references to an unknown name = %v", refs)
	}
}
