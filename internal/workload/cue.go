package workload

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var suiteSchema string

// LoadSuiteCUE reads a CUE suite file, unifies it with the #Suite schema and
// decodes the concrete result. Schema violations are reported with CUE
// positions.
func LoadSuiteCUE(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read suite file: %w", err)
	}
	return ParseSuiteCUE(data, path)
}

// ParseSuiteCUE compiles CUE suite source. filename is used in error positions.
func ParseSuiteCUE(data []byte, filename string) (*Suite, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(suiteSchema, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile suite schema: %w", err)
	}

	v := ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("failed to parse CUE: %s", formatCUEError(err))
	}

	v = schema.LookupPath(cue.ParsePath("#Suite")).Unify(v)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("invalid suite: %s", formatCUEError(err))
	}

	var suite Suite
	if err := v.Decode(&suite); err != nil {
		return nil, fmt.Errorf("failed to decode suite: %w", err)
	}

	// The schema covers shape; the Go validation covers cross-field rules.
	if err := ValidateSuite(&suite); err != nil {
		return nil, fmt.Errorf("invalid suite: %w", err)
	}
	return &suite, nil
}

func formatCUEError(err error) string {
	return cueerrors.Details(err, nil)
}
