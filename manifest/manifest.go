// Package manifest handles pl0.toml project configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/tliron/commonlog"
)

// FileName is the name of the project manifest.
const FileName = "pl0.toml"

var log = commonlog.GetLogger("pl0.manifest")

// Manifest represents a pl0.toml project configuration.
type Manifest struct {
	Project Project       `toml:"project" json:"project"`
	Machine MachineConfig `toml:"machine" json:"machine"`
	Lexer   LexerConfig   `toml:"lexer" json:"lexer"`
	Log     LogConfig     `toml:"log" json:"log"`

	// Dir is the directory containing the pl0.toml file (set at load time).
	Dir string `toml:"-" json:"-"`
}

// Project contains project metadata.
type Project struct {
	Name    string `toml:"name" json:"name"`
	Version string `toml:"version" json:"version"`
}

// MachineConfig configures program runs.
type MachineConfig struct {
	Debug        bool   `toml:"debug" json:"debug"`
	Trace        bool   `toml:"trace" json:"trace"`
	InputPrompt  string `toml:"input-prompt" json:"input-prompt"`
	OutputPrefix string `toml:"output-prefix" json:"output-prefix"`
}

// LexerConfig configures the token log.
type LexerConfig struct {
	Log string `toml:"log" json:"log"`
}

// LogConfig configures diagnostic logging.
type LogConfig struct {
	Verbosity int    `toml:"verbosity" json:"verbosity"`
	File      string `toml:"file" json:"file"`
}

// Default returns the configuration used when no pl0.toml is found.
func Default() *Manifest {
	return &Manifest{
		Machine: MachineConfig{
			InputPrompt:  "INPUT > ",
			OutputPrefix: "OUTPUT: ",
		},
		Lexer: LexerConfig{
			Log: "lexer.log",
		},
	}
}

// Load parses a pl0.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	return LoadFile(filepath.Join(dir, FileName))
}

// LoadFile parses and validates the manifest at path. Keys missing from the
// file keep their defaults.
func LoadFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	m := Default()
	md, err := toml.Decode(string(data), m)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		log.Warningf("%s: ignoring unknown keys: %s", path, strings.Join(keys, ", "))
	}

	m.Dir, err = filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", path, err)
	}

	if err := Validate(m); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// FindAndLoad walks up from startDir to find a pl0.toml file,
// then loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// TokenLogPath returns the configured token log path. Relative paths are
// resolved against the manifest directory.
func (m *Manifest) TokenLogPath() string {
	return m.resolve(m.Lexer.Log)
}

// LogFilePath returns the diagnostic log file, or "" for stderr.
func (m *Manifest) LogFilePath() string {
	if m.Log.File == "" {
		return ""
	}
	return m.resolve(m.Log.File)
}

func (m *Manifest) resolve(path string) string {
	if m.Dir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(m.Dir, path)
}
