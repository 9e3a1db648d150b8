package output

import (
	"bytes"

	"gopkg.in/yaml.v3"

	"rbgraph/internal/engine/analysis"
)

type yamlDocument struct {
	Namespaces []yamlNamespace      `yaml:"namespaces"`
	References []analysis.Reference `yaml:"references"`
}

type yamlNamespace struct {
	Kind       analysis.NamespaceKind `yaml:"kind"`
	Identifier string                 `yaml:"identifier"`
	LocalName  string                 `yaml:"local_name,omitempty"`
	Parent     string                 `yaml:"parent,omitempty"`
	NestedIn   string                 `yaml:"nested_in,omitempty"`
	File       string                 `yaml:"file"`
}

// YAMLGenerator dumps the full Result in analysis order, replacing the
// enclosing index with the enclosing identifier.
type YAMLGenerator struct {
	result *analysis.Result
}

func NewYAMLGenerator(res *analysis.Result) *YAMLGenerator {
	return &YAMLGenerator{result: res}
}

func (y *YAMLGenerator) Generate() (string, error) {
	doc := yamlDocument{
		Namespaces: []yamlNamespace{},
		References: []analysis.Reference{},
	}
	if y.result != nil {
		for _, ns := range y.result.Namespaces {
			entry := yamlNamespace{
				Kind:       ns.Kind,
				Identifier: ns.Identifier,
				Parent:     ns.DeclaredParent,
				File:       ns.File,
			}
			if ns.LocalName != ns.Identifier {
				entry.LocalName = ns.LocalName
			}
			if enclosing, ok := y.result.Enclosing(ns); ok {
				entry.NestedIn = enclosing.Identifier
			}
			doc.Namespaces = append(doc.Namespaces, entry)
		}
		doc.References = append(doc.References, y.result.References...)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return buf.String(), nil
}
