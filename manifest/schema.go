package manifest

import (
	"errors"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

// ErrInvalidManifest is returned when a manifest fails schema validation.
var ErrInvalidManifest = errors.New("invalid manifest")

// schema constrains a decoded manifest. Field names follow the json tags of
// Manifest.
const schema = `
#Manifest: {
	project: {
		name:    string
		version: string
	}
	machine: {
		debug:           bool
		trace:           bool
		"input-prompt":  string & !=""
		"output-prefix": string & !=""
	}
	lexer: {
		log: string & =~"\\.log$"
	}
	log: {
		verbosity: int & >=-4 & <=5
		file:      string
	}
}
`

// Validate checks m against the manifest schema.
func Validate(m *Manifest) error {
	ctx := cuecontext.New()
	s := ctx.CompileString(schema, cue.Filename("pl0.cue"))
	if err := s.Err(); err != nil {
		return fmt.Errorf("manifest schema: %w", err)
	}

	v := ctx.Encode(m)
	if err := v.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}

	def := s.LookupPath(cue.ParsePath("#Manifest"))
	if err := def.Unify(v).Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidManifest, cueerrors.Details(err, nil))
	}
	return nil
}
