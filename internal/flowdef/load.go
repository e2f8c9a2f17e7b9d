package flowdef

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cueyaml "cuelang.org/go/encoding/yaml"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaCUE string

// ValidationError is one schema violation found in a flow-definition file.
type ValidationError struct {
	Path    string `json:"path,omitempty"`
	Line    int    `json:"line,omitempty"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

// Validate checks flow-definition YAML against the embedded CUE schema.
// Structural mistakes are returned as errors; unrecognized actions are not
// (they degrade to logged no-ops at run time).
func Validate(data []byte, filename string) []ValidationError {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		// The schema is embedded; failing to compile it is a programming
		// error, not a user-input error.
		panic(fmt.Sprintf("flowdef: embedded schema does not compile: %v", err))
	}

	file, err := cueyaml.Extract(filename, data)
	if err != nil {
		return []ValidationError{{Message: fmt.Sprintf("parse yaml: %v", err)}}
	}

	value := ctx.BuildFile(file)
	if err := value.Err(); err != nil {
		return toValidationErrors(err)
	}

	unified := schema.Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return toValidationErrors(err)
	}

	return nil
}

func toValidationErrors(err error) []ValidationError {
	var out []ValidationError
	for _, e := range cueerrors.Errors(err) {
		format, args := e.Msg()
		ve := ValidationError{Message: fmt.Sprintf(format, args...)}
		if path := e.Path(); len(path) > 0 {
			ve.Path = joinPath(path)
		}
		if pos := e.Position(); pos.IsValid() {
			ve.Line = pos.Line()
		}
		out = append(out, ve)
	}
	if len(out) == 0 {
		out = append(out, ValidationError{Message: err.Error()})
	}
	return out
}

func joinPath(parts []string) string {
	path := ""
	for i, p := range parts {
		if i > 0 {
			path += "."
		}
		path += p
	}
	return path
}

// Parse validates and decodes a flow-definition file. On success the
// returned config has all step defaults applied; warnings list
// unrecognized actions per flow.
func Parse(data []byte, filename string) (*Config, []string, error) {
	if verrs := Validate(data, filename); len(verrs) > 0 {
		errs := make([]error, len(verrs))
		for i, ve := range verrs {
			errs[i] = ve
		}
		return nil, nil, fmt.Errorf("validate %s: %w", filename, errors.Join(errs...))
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, nil, fmt.Errorf("decode %s: %w", filename, err)
	}

	var warnings []string
	names := make([]string, 0, len(cfg.Flows))
	for name := range cfg.Flows {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		def := cfg.Flows[name]
		def.normalize(name)
		cfg.Flows[name] = def
		for _, action := range def.UnknownActions() {
			warnings = append(warnings, fmt.Sprintf("flow %q: unrecognized action %q will be skipped", name, action))
		}
	}

	return &cfg, warnings, nil
}

// Load reads and parses a flow-definition file from disk.
func Load(path string) (*Config, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read flow definitions: %w", err)
	}
	return Parse(data, path)
}
