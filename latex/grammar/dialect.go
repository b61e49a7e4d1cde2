package grammar

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/exsitu-projects/ilatex-sub001/latex/ast"
)

//go:embed dialect.yaml
var defaultDialectSource []byte

var defaultDialect *Dialect

func init() {
	d, err := LoadDialect(bytes.NewReader(defaultDialectSource))
	if err != nil {
		panic(fmt.Sprintf("failed to load default dialect: %v", err))
	}
	defaultDialect = d
}

// Dialect lists the commands and environments that have a structured
// parameter grammar, with their parameter slots in order.
type Dialect struct {
	Commands     map[string][]ast.ParameterSpec
	Environments map[string][]ast.ParameterSpec
}

// DefaultDialect returns a copy of the built-in dialect.
func DefaultDialect() *Dialect {
	return defaultDialect.Clone()
}

type slotFile struct {
	Delimiter string `yaml:"delimiter"`
	Optional  bool   `yaml:"optional,omitempty"`
	Content   string `yaml:"content,omitempty"`
}

type dialectFile struct {
	Commands     map[string][]slotFile `yaml:"commands"`
	Environments map[string][]slotFile `yaml:"environments"`
}

// LoadDialect reads a dialect from YAML. Unknown keys and slot values are
// errors.
func LoadDialect(r io.Reader) (*Dialect, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f dialectFile
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode dialect: %w", err)
	}

	d := &Dialect{
		Commands:     make(map[string][]ast.ParameterSpec, len(f.Commands)),
		Environments: make(map[string][]ast.ParameterSpec, len(f.Environments)),
	}
	for name, slots := range f.Commands {
		if name == "" {
			return nil, errors.New("command with an empty name")
		}
		specs, err := toSpecs(slots)
		if err != nil {
			return nil, fmt.Errorf("command %s: %w", name, err)
		}
		d.Commands[name] = specs
	}
	for name, slots := range f.Environments {
		if name == "" {
			return nil, errors.New("environment with an empty name")
		}
		specs, err := toSpecs(slots)
		if err != nil {
			return nil, fmt.Errorf("environment %s: %w", name, err)
		}
		d.Environments[name] = specs
	}
	return d, nil
}

func toSpecs(slots []slotFile) ([]ast.ParameterSpec, error) {
	specs := make([]ast.ParameterSpec, 0, len(slots))
	for i, slot := range slots {
		var spec ast.ParameterSpec
		switch slot.Delimiter {
		case "curly":
			spec.Delimiter = ast.Curly
		case "square":
			spec.Delimiter = ast.Square
		default:
			return nil, fmt.Errorf("slot %d: unknown delimiter %q", i, slot.Delimiter)
		}
		switch slot.Content {
		case "", "raw":
			spec.Content = ast.RawContent
		case "text":
			if spec.Delimiter == ast.Square {
				return nil, fmt.Errorf("slot %d: square parameters cannot hold text", i)
			}
			spec.Content = ast.TextContent
		default:
			return nil, fmt.Errorf("slot %d: unknown content %q", i, slot.Content)
		}
		spec.Optional = slot.Optional
		specs = append(specs, spec)
	}
	return specs, nil
}

func fromSpecs(specs []ast.ParameterSpec) []slotFile {
	slots := make([]slotFile, 0, len(specs))
	for _, spec := range specs {
		slot := slotFile{Delimiter: spec.Delimiter.String(), Optional: spec.Optional}
		if spec.Content == ast.TextContent {
			slot.Content = spec.Content.String()
		}
		slots = append(slots, slot)
	}
	return slots
}

// MarshalYAML writes the dialect in the format read by LoadDialect.
func (d *Dialect) MarshalYAML() (any, error) {
	f := dialectFile{
		Commands:     make(map[string][]slotFile, len(d.Commands)),
		Environments: make(map[string][]slotFile, len(d.Environments)),
	}
	for name, specs := range d.Commands {
		f.Commands[name] = fromSpecs(specs)
	}
	for name, specs := range d.Environments {
		f.Environments[name] = fromSpecs(specs)
	}
	return f, nil
}

func (d *Dialect) Clone() *Dialect {
	c := &Dialect{
		Commands:     make(map[string][]ast.ParameterSpec, len(d.Commands)),
		Environments: make(map[string][]ast.ParameterSpec, len(d.Environments)),
	}
	for name, specs := range d.Commands {
		c.Commands[name] = slices.Clone(specs)
	}
	for name, specs := range d.Environments {
		c.Environments[name] = slices.Clone(specs)
	}
	return c
}

// Merge returns a dialect holding the entries of d and other. Entries of
// other win.
func (d *Dialect) Merge(other *Dialect) *Dialect {
	m := d.Clone()
	maps.Copy(m.Commands, other.Clone().Commands)
	maps.Copy(m.Environments, other.Clone().Environments)
	return m
}

// Command returns the parameter slots of a known command.
func (d *Dialect) Command(name string) ([]ast.ParameterSpec, bool) {
	specs, ok := d.Commands[name]
	return specs, ok
}

// Environment returns the parameter slots of a known environment.
func (d *Dialect) Environment(name string) ([]ast.ParameterSpec, bool) {
	specs, ok := d.Environments[name]
	return specs, ok
}

// CommandNames returns the known command names in order.
func (d *Dialect) CommandNames() []string {
	return slices.Sorted(maps.Keys(d.Commands))
}

func (d *Dialect) EnvironmentNames() []string {
	return slices.Sorted(maps.Keys(d.Environments))
}
