// Package server implements a language server for PL/0 source files.
package server

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"

	"github.com/chazu/pl0/compiler"
)

const lspName = "pl0-lsp"

var log = commonlog.GetLogger("pl0.lsp")

// keywordDocs describes each reserved word for hover.
var keywordDocs = map[string]string{
	"const":     "Declares named integer constants: `const a = 1, b = 2;`",
	"var":       "Declares variables in the enclosing block: `var x, y;`",
	"procedure": "Declares a parameterless procedure: `procedure p; <block>;`",
	"call":      "Calls a declared procedure: `call p`",
	"begin":     "Opens a statement sequence closed by `end`.",
	"end":       "Closes a `begin` statement sequence.",
	"if":        "Conditional statement: `if <cond> then <stmt> else <stmt>`",
	"then":      "Introduces the branch taken when an `if` condition holds.",
	"else":      "Introduces the branch taken when an `if` condition fails.",
	"while":     "Loop statement: `while <cond> do <stmt>`",
	"do":        "Introduces the body of a `while` loop.",
	"read":      "Reads an integer from the console into a variable: `read x`",
	"write":     "Writes the value of an expression to the console: `write x + 1`",
	"skip":      "Does nothing.",
	"odd":       "True when the expression is odd: `odd x`",
}

// LspServer serves editor features for PL/0 documents over stdio.
type LspServer struct {
	worker *DocWorker

	handler protocol.Handler
	server  *glspserver.Server
	version string
}

// NewLSP creates a new LSP server.
func NewLSP() *LspServer {
	s := &LspServer{
		worker:  NewDocWorker(),
		version: "0.1.0",
	}

	s.handler = protocol.Handler{
		Initialize:  s.initialize,
		Initialized: s.initialized,
		Shutdown:    s.shutdown,
		SetTrace:    s.setTrace,

		TextDocumentDidOpen:   s.textDocumentDidOpen,
		TextDocumentDidChange: s.textDocumentDidChange,
		TextDocumentDidClose:  s.textDocumentDidClose,

		TextDocumentCompletion: s.textDocumentCompletion,
		TextDocumentHover:      s.textDocumentHover,
		TextDocumentDefinition: s.textDocumentDefinition,
		TextDocumentReferences: s.textDocumentReferences,
	}

	s.server = glspserver.NewServer(&s.handler, lspName, false)

	return s
}

// Run starts the LSP server on stdio. Blocks until the client disconnects.
func (s *LspServer) Run() error {
	return s.server.RunStdio()
}

// --- LSP lifecycle handlers ---

func (s *LspServer) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	log.Info("PL/0 LSP initializing")

	capabilities := s.handler.CreateServerCapabilities()

	syncKind := protocol.TextDocumentSyncKindFull
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    &syncKind,
	}

	capabilities.CompletionProvider = &protocol.CompletionOptions{}
	capabilities.HoverProvider = true
	capabilities.DefinitionProvider = true
	capabilities.ReferencesProvider = true

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lspName,
			Version: &s.version,
		},
	}, nil
}

func (s *LspServer) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (s *LspServer) shutdown(ctx *glsp.Context) error {
	s.worker.Stop()
	return nil
}

func (s *LspServer) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	return nil
}

// --- Document synchronization ---

func (s *LspServer) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	s.update(ctx, params.TextDocument.URI, params.TextDocument.Text)
	return nil
}

func (s *LspServer) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	// With Full sync, the last change event contains the full text
	if len(params.ContentChanges) > 0 {
		last := params.ContentChanges[len(params.ContentChanges)-1]
		if whole, ok := last.(protocol.TextDocumentContentChangeEventWhole); ok {
			s.update(ctx, params.TextDocument.URI, whole.Text)
		}
	}
	return nil
}

func (s *LspServer) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI
	if err := s.worker.Close(string(uri)); err != nil {
		log.Warningf("close %s: %v", uri, err)
		return nil
	}

	// Clear diagnostics for the closed document
	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

func (s *LspServer) update(ctx *glsp.Context, uri protocol.DocumentUri, text string) {
	d, err := s.worker.Update(string(uri), text)
	if err != nil {
		log.Errorf("analyze %s: %v", uri, err)
		return
	}
	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: d.diagnostics(),
	})
}

// --- Language features ---

func (s *LspServer) textDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	d := s.worker.Get(string(params.TextDocument.URI))
	if d == nil {
		return nil, nil
	}
	prefix := extractPrefix(d.text, params.Position)
	if prefix == "" {
		return nil, nil
	}
	return d.complete(prefix), nil
}

func (s *LspServer) textDocumentHover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	d := s.worker.Get(string(params.TextDocument.URI))
	if d == nil {
		return nil, nil
	}
	word := extractWord(d.text, params.Position)
	if word == "" {
		return nil, nil
	}
	text := d.hover(word)
	if text == "" {
		return nil, nil
	}
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: text,
		},
	}, nil
}

func (s *LspServer) textDocumentDefinition(ctx *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	uri := params.TextDocument.URI
	d := s.worker.Get(string(uri))
	if d == nil || d.prog == nil {
		return nil, nil
	}
	word := extractWord(d.text, params.Position)
	if word == "" {
		return nil, nil
	}

	var locations []protocol.Location
	for _, decl := range d.prog.Declarations() {
		if decl.Name == word {
			locations = append(locations, protocol.Location{URI: uri, Range: toRange(decl.Span)})
		}
	}
	if len(locations) == 0 {
		return nil, nil
	}
	return locations, nil
}

func (s *LspServer) textDocumentReferences(ctx *glsp.Context, params *protocol.ReferenceParams) ([]protocol.Location, error) {
	uri := params.TextDocument.URI
	d := s.worker.Get(string(uri))
	if d == nil {
		return nil, nil
	}
	word := extractWord(d.text, params.Position)
	if word == "" {
		return nil, nil
	}

	var locations []protocol.Location
	for _, span := range d.references(word) {
		locations = append(locations, protocol.Location{URI: uri, Range: toRange(span)})
	}
	return locations, nil
}

// --- Document analysis ---

// Diagnose parses text and returns its diagnostics. A document that parses
// cleanly has none.
func Diagnose(uri, text string) []protocol.Diagnostic {
	return analyze(uri, text).diagnostics()
}

// Complete returns the reserved words and declared names of text that start
// with prefix.
func Complete(text, prefix string) []protocol.CompletionItem {
	return analyze("", text).complete(prefix)
}

// HoverText returns a markdown description of word in text, or "" if word is
// neither a reserved word nor declared in text.
func HoverText(text, word string) string {
	return analyze("", text).hover(word)
}

func (d *document) diagnostics() []protocol.Diagnostic {
	diagnostics := []protocol.Diagnostic{}
	if d.err == nil {
		return diagnostics
	}

	severity := protocol.DiagnosticSeverityError
	source := lspName
	rng := protocol.Range{}
	var cerr *compiler.Error
	if errors.As(d.err, &cerr) {
		end := cerr.Pos
		end.Column++
		rng = toRange(compiler.Span{Start: cerr.Pos, End: end})
	}
	return append(diagnostics, protocol.Diagnostic{
		Range:    rng,
		Severity: &severity,
		Source:   &source,
		Message:  diagnosticMessage(d.err),
	})
}

// diagnosticMessage strips the position prefix, which the range already
// carries.
func diagnosticMessage(err error) string {
	var cerr *compiler.Error
	if !errors.As(err, &cerr) {
		return err.Error()
	}
	if cerr.Msg == "" {
		return cerr.Kind.Error()
	}
	return cerr.Kind.Error() + ": " + cerr.Msg
}

func (d *document) complete(prefix string) []protocol.CompletionItem {
	var items []protocol.CompletionItem

	for _, word := range compiler.ReservedWords() {
		if strings.HasPrefix(word, prefix) {
			kind := protocol.CompletionItemKindKeyword
			detail := "keyword"
			w := word
			items = append(items, protocol.CompletionItem{
				Label:      w,
				Kind:       &kind,
				Detail:     &detail,
				InsertText: &w,
			})
		}
	}

	seen := make(map[string]bool)
	for _, decl := range d.declarations() {
		if seen[decl.Name] || !strings.HasPrefix(decl.Name, prefix) {
			continue
		}
		seen[decl.Name] = true
		kind := completionKind(decl.Kind)
		detail := declSignature(decl)
		name := decl.Name
		items = append(items, protocol.CompletionItem{
			Label:      name,
			Kind:       &kind,
			Detail:     &detail,
			InsertText: &name,
		})
	}

	// Limit results
	const maxItems = 100
	if len(items) > maxItems {
		items = items[:maxItems]
	}

	return items
}

func (d *document) hover(word string) string {
	if doc, ok := keywordDocs[word]; ok {
		return fmt.Sprintf("**%s**\n\n%s", word, doc)
	}
	if d.prog == nil {
		return ""
	}

	var b strings.Builder
	for _, decl := range d.prog.Declarations() {
		if decl.Name != word {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "`%s`", declSignature(decl))
		if decl.Scope != "" {
			fmt.Fprintf(&b, " in procedure `%s`", decl.Scope)
		}
		fmt.Fprintf(&b, ", line %d", decl.Span.Start.Line)
	}
	return b.String()
}

// declarations returns the declared names of the document. When the text
// does not parse, identifiers lexed before the error stand in for them so
// completion keeps working while the user types.
func (d *document) declarations() []compiler.Declaration {
	if d.prog != nil {
		return d.prog.Declarations()
	}

	var decls []compiler.Declaration
	l := compiler.NewLexer("", d.text)
	for {
		tok, err := l.NextToken()
		if err != nil || tok.Type == compiler.TokenEOF {
			return decls
		}
		if tok.Type == compiler.TokenIdent {
			decls = append(decls, compiler.Declaration{
				Name: tok.Literal,
				Kind: compiler.DeclVar,
				Span: compiler.Span{Start: tok.Pos, End: tok.End()},
			})
		}
	}
}

// references returns the spans of every occurrence of name, declarations
// included.
func (d *document) references(name string) []compiler.Span {
	if d.prog == nil {
		return nil
	}
	var spans []compiler.Span
	compiler.Inspect(d.prog, func(n compiler.Node) bool {
		if id, ok := n.(*compiler.Ident); ok && id.Name == name {
			spans = append(spans, id.Span())
		}
		return true
	})
	return spans
}

func declSignature(decl compiler.Declaration) string {
	if decl.Kind == compiler.DeclConst {
		return fmt.Sprintf("const %s = %d", decl.Name, decl.Value)
	}
	return decl.Kind.String() + " " + decl.Name
}

func completionKind(k compiler.DeclKind) protocol.CompletionItemKind {
	switch k {
	case compiler.DeclConst:
		return protocol.CompletionItemKindConstant
	case compiler.DeclProc:
		return protocol.CompletionItemKindFunction
	}
	return protocol.CompletionItemKindVariable
}

// toRange converts a 1-based source span to a 0-based LSP range.
func toRange(span compiler.Span) protocol.Range {
	return protocol.Range{
		Start: toPosition(span.Start),
		End:   toPosition(span.End),
	}
}

func toPosition(p compiler.Position) protocol.Position {
	line, col := p.Line-1, p.Column-1
	if line < 0 {
		line = 0
	}
	if col < 0 {
		col = 0
	}
	return protocol.Position{Line: protocol.UInteger(line), Character: protocol.UInteger(col)}
}

// --- Text extraction helpers ---

// extractPrefix returns the word fragment before the cursor for completion.
func extractPrefix(text string, pos protocol.Position) string {
	lines := strings.Split(text, "\n")
	if int(pos.Line) >= len(lines) {
		return ""
	}
	line := lines[pos.Line]
	col := int(pos.Character)
	if col > len(line) {
		col = len(line)
	}

	// Walk backwards from cursor to find the start of the identifier
	start := col
	for start > 0 && isIdentChar(rune(line[start-1])) {
		start--
	}

	if start == col {
		return ""
	}

	return line[start:col]
}

// extractWord returns the full identifier under the cursor.
func extractWord(text string, pos protocol.Position) string {
	lines := strings.Split(text, "\n")
	if int(pos.Line) >= len(lines) {
		return ""
	}
	line := lines[pos.Line]
	col := int(pos.Character)
	if col > len(line) {
		col = len(line)
	}

	start := col
	for start > 0 && isIdentChar(rune(line[start-1])) {
		start--
	}
	end := col
	for end < len(line) && isIdentChar(rune(line[end])) {
		end++
	}

	if start == end {
		return ""
	}

	return line[start:end]
}

func isIdentChar(ch rune) bool {
	return ch < unicode.MaxASCII && (unicode.IsLetter(ch) || unicode.IsDigit(ch))
}

func boolPtr(b bool) *bool {
	return &b
}
