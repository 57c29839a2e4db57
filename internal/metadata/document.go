// Package metadata reads directive and component declarations from YAML or
// JSON documents and turns them into compiler summaries.
package metadata

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"ngdefc/packages/compiler/util"
)

// Document is one metadata file.
type Document struct {
	Directives []DirectiveDoc `yaml:"directives"`
	Components []ComponentDoc `yaml:"components"`
	Pipes      []PipeDoc      `yaml:"pipes"`
}

// DirectiveDoc declares a directive.
type DirectiveDoc struct {
	Name          string  `yaml:"name"`
	Selector      *string `yaml:"selector"`
	TypeArguments int     `yaml:"typeArguments"`

	// InheritFactory drops the constructor so the base factory is reused.
	InheritFactory bool            `yaml:"inheritFactory"`
	Deps           []DependencyDoc `yaml:"deps"`

	Host    StringMap `yaml:"host"`
	Inputs  StringMap `yaml:"inputs"`
	Outputs StringMap `yaml:"outputs"`

	Queries  []QueryDoc `yaml:"queries"`
	ExportAs *string    `yaml:"exportAs"`

	// Providers lists provider identifiers. Nil means the field is absent.
	Providers []string `yaml:"providers"`

	UsesInheritance bool `yaml:"usesInheritance"`
	UsesOnChanges   bool `yaml:"usesOnChanges"`
}

// ComponentDoc declares a component.
type ComponentDoc struct {
	DirectiveDoc `yaml:",inline"`

	Template           []NodeDoc `yaml:"template"`
	NgContentSelectors []string  `yaml:"ngContentSelectors"`

	Directives StringMap `yaml:"directives"`
	Pipes      StringMap `yaml:"pipes"`

	ViewQueries     []QueryDoc `yaml:"viewQueries"`
	Styles          []string   `yaml:"styles"`
	Encapsulation   string     `yaml:"encapsulation"`
	ChangeDetection string     `yaml:"changeDetection"`
	Animations      []string   `yaml:"animations"`
	ViewProviders   []string   `yaml:"viewProviders"`

	WrapInClosure *bool    `yaml:"wrapDirectivesAndPipesInClosure"`
	Interpolation []string `yaml:"interpolation"`
}

// PipeDoc declares a pipe. Pure defaults to true.
type PipeDoc struct {
	Name           string          `yaml:"name"`
	PipeName       string          `yaml:"pipeName"`
	TypeArguments  int             `yaml:"typeArguments"`
	InheritFactory bool            `yaml:"inheritFactory"`
	Deps           []DependencyDoc `yaml:"deps"`
	Pure           *bool           `yaml:"pure"`
}

// DependencyDoc is one constructor parameter.
type DependencyDoc struct {
	// Token is an identifier, or the attribute name for attribute deps.
	Token    string `yaml:"token"`
	Kind     string `yaml:"kind"`
	Host     bool   `yaml:"host"`
	Optional bool   `yaml:"optional"`
	Self     bool   `yaml:"self"`
	SkipSelf bool   `yaml:"skipSelf"`
}

// QueryDoc is a content or view query. Predicate holds string selectors,
// Type a single type reference.
type QueryDoc struct {
	Property    string   `yaml:"property"`
	First       bool     `yaml:"first"`
	Predicate   []string `yaml:"predicate"`
	Type        string   `yaml:"type"`
	Descendants bool     `yaml:"descendants"`
	Read        string   `yaml:"read"`
}

// NodeDoc is one template node. Exactly one of Element, Text or Content
// is set.
type NodeDoc struct {
	Element    string    `yaml:"element"`
	Attributes StringMap `yaml:"attributes"`
	Children   []NodeDoc `yaml:"children"`

	Text    *string `yaml:"text"`
	Content *string `yaml:"content"`
}

// Pair is one entry of a StringMap.
type Pair struct {
	Key   string
	Value string
}

// StringMap is a string-to-string mapping that keeps document order.
type StringMap []Pair

// UnmarshalYAML walks the mapping node pairwise so key order survives.
func (m *StringMap) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping", node.Line)
	}
	pairs := make(StringMap, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if value.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: value of %q must be a string", value.Line, key.Value)
		}
		v := value.Value
		if value.Tag == "!!null" {
			v = ""
		}
		pairs = append(pairs, Pair{Key: key.Value, Value: v})
	}
	*m = pairs
	return nil
}

// OrderedMap copies the pairs into a util.OrderedMap. Duplicate keys keep
// their first position and the last value.
func (m StringMap) OrderedMap() *util.OrderedMap[string] {
	out := util.NewOrderedMap[string]()
	for _, p := range m {
		out.Set(p.Key, p.Value)
	}
	return out
}
