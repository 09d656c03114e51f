// Package manifest loads type declarations from a YAML file, for hierarchies
// that do not come from source code.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"inheritdoc/internal/hierarchy"
)

type Manifest struct {
	Namespace string     `yaml:"namespace"`
	Types     []TypeSpec `yaml:"types" validate:"dive"`
}

type TypeSpec struct {
	ID         string                        `yaml:"id" validate:"required"`
	Namespace  string                        `yaml:"namespace"`
	Kind       string                        `yaml:"kind" validate:"omitempty,oneof=class interface struct record"`
	Doc        *hierarchy.DocumentationBlock `yaml:"doc"`
	InheritDoc *InheritSpec                  `yaml:"inheritdoc"`
	Base       string                        `yaml:"base"`
	Interfaces []string                      `yaml:"interfaces" validate:"dive,required"`
}

// InheritSpec accepts `inheritdoc: true`, `inheritdoc: IBase` or `inheritdoc: {cref: IBase}`.
type InheritSpec struct {
	Enabled bool
	Cref    string
}

func (s *InheritSpec) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if b, err := strconv.ParseBool(node.Value); err == nil && node.ShortTag() == "!!bool" {
			s.Enabled = b
			return nil
		}
		s.Enabled = true
		s.Cref = node.Value
		return nil
	case yaml.MappingNode:
		var m struct {
			Cref string `yaml:"cref"`
		}
		if err := node.Decode(&m); err != nil {
			return err
		}
		s.Enabled = true
		s.Cref = m.Cref
		return nil
	default:
		return fmt.Errorf("line %d: inheritdoc must be a bool, a type name or a mapping", node.Line)
	}
}

var validate = validator.New()

// Parse decodes and validates manifest content.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}
	if err := validate.Struct(&m); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return nil, fmt.Errorf("invalid manifest: %s failed %q", verrs[0].Namespace(), verrs[0].Tag())
		}
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}
	return &m, nil
}

// Load reads a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}
	return Parse(data)
}

// Declarations converts the manifest into declaration-source tuples.
func (m *Manifest) Declarations() []hierarchy.Declaration {
	out := make([]hierarchy.Declaration, 0, len(m.Types))
	for _, t := range m.Types {
		ns := t.Namespace
		if ns == "" {
			ns = m.Namespace
		}
		name := t.ID
		if ns != "" {
			name = strings.TrimPrefix(name, ns+".")
		}
		d := hierarchy.Declaration{
			Name:       name,
			Namespace:  ns,
			Kind:       hierarchy.Kind(t.Kind),
			Doc:        t.Doc,
			Base:       t.Base,
			Interfaces: t.Interfaces,
		}
		if d.Kind == "" {
			d.Kind = hierarchy.KindClass
		}
		if d.Doc != nil && d.Doc.Raw == "" {
			d.Doc.Raw = d.Doc.Summary
		}
		if t.InheritDoc != nil && t.InheritDoc.Enabled {
			d.Inherit = &hierarchy.InheritDirective{Cref: t.InheritDoc.Cref}
		}
		out = append(out, d)
	}
	return out
}

// Build loads a manifest straight into a registry.
func Build(path string) (*hierarchy.Registry, error) {
	m, err := Load(path)
	if err != nil {
		return nil, err
	}
	return buildFrom(m.Declarations())
}

func buildFrom(decls []hierarchy.Declaration) (*hierarchy.Registry, error) {
	b := hierarchy.NewBuilder()
	for _, d := range decls {
		if err := b.Add(d); err != nil {
			return nil, err
		}
	}
	return b.Build(), nil
}
