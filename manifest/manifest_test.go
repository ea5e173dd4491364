package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[project]
name = "squares"
version = "0.1.0"

[machine]
debug = true
trace = true
input-prompt = "? "
output-prefix = "= "

[lexer]
log = "tokens.log"

[log]
verbosity = 2
file = "pl0.log"
`)

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if m.Project.Name != "squares" {
		t.Errorf("project name = %q, want squares", m.Project.Name)
	}
	if m.Project.Version != "0.1.0" {
		t.Errorf("project version = %q, want 0.1.0", m.Project.Version)
	}
	if !m.Machine.Debug || !m.Machine.Trace {
		t.Errorf("machine debug/trace = %v/%v, want true/true", m.Machine.Debug, m.Machine.Trace)
	}
	if m.Machine.InputPrompt != "? " || m.Machine.OutputPrefix != "= " {
		t.Errorf("console strings = %q/%q", m.Machine.InputPrompt, m.Machine.OutputPrefix)
	}
	if m.Log.Verbosity != 2 || m.Log.File != "pl0.log" {
		t.Errorf("log = %+v", m.Log)
	}
	abs, _ := filepath.Abs(dir)
	if m.Dir != abs {
		t.Errorf("Dir = %q, want %q", m.Dir, abs)
	}
	if got, want := m.TokenLogPath(), filepath.Join(abs, "tokens.log"); got != want {
		t.Errorf("TokenLogPath() = %q, want %q", got, want)
	}
	if got, want := m.LogFilePath(), filepath.Join(abs, "pl0.log"); got != want {
		t.Errorf("LogFilePath() = %q, want %q", got, want)
	}
}

func TestLoadManifestDefaults(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[project]
name = "minimal"
`)

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	def := Default()
	if m.Machine.InputPrompt != def.Machine.InputPrompt {
		t.Errorf("input prompt = %q, want default %q", m.Machine.InputPrompt, def.Machine.InputPrompt)
	}
	if m.Machine.OutputPrefix != def.Machine.OutputPrefix {
		t.Errorf("output prefix = %q, want default %q", m.Machine.OutputPrefix, def.Machine.OutputPrefix)
	}
	if m.Lexer.Log != "lexer.log" {
		t.Errorf("lexer log = %q, want lexer.log", m.Lexer.Log)
	}
	if m.Machine.Debug || m.Machine.Trace {
		t.Error("debug and trace should default to off")
	}
	if m.LogFilePath() != "" {
		t.Errorf("LogFilePath() = %q, want stderr", m.LogFilePath())
	}
}

func TestDefaultIsValid(t *testing.T) {
	if err := Validate(Default()); err != nil {
		t.Errorf("Validate(Default()) = %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"verbosity too high", "[log]\nverbosity = 9\n"},
		{"verbosity too low", "[log]\nverbosity = -5\n"},
		{"empty prompt", "[machine]\ninput-prompt = \"\"\n"},
		{"empty prefix", "[machine]\noutput-prefix = \"\"\n"},
		{"log suffix", "[lexer]\nlog = \"tokens.txt\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeManifest(t, dir, tt.content)
			_, err := Load(dir)
			if !errors.Is(err, ErrInvalidManifest) {
				t.Errorf("err = %v, want ErrInvalidManifest", err)
			}
		})
	}
}

func TestLoadManifestParseError(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "[machine\ndebug = true\n")
	if _, err := Load(dir); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoadManifestWrongType(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "[machine]\ndebug = \"yes\"\n")
	if _, err := Load(dir); err == nil {
		t.Error("expected type error for debug")
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load(t.TempDir()); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want os.ErrNotExist", err)
	}
}

func TestLoadFileCustomName(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ci.toml")
	if err := os.WriteFile(path, []byte("[machine]\ntrace = true\n"), 0644); err != nil {
		t.Fatal(err)
	}
	m, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if !m.Machine.Trace {
		t.Error("trace = false, want true")
	}
}

func TestFindAndLoad(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "[project]\nname = \"found\"\n")

	nested := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	m, err := FindAndLoad(nested)
	if err != nil {
		t.Fatalf("FindAndLoad: %v", err)
	}
	if m == nil {
		t.Fatal("FindAndLoad returned nil")
	}
	if m.Project.Name != "found" {
		t.Errorf("project name = %q, want found", m.Project.Name)
	}
}
