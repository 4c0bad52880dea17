// Package building describes a site as Brick entities and relationships and
// turns it into a graph.
package building

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/buildsys/brickgen/pkg/rdf"
	"github.com/buildsys/brickgen/pkg/store"
	"gopkg.in/yaml.v3"
)

//go:embed example.yaml
var exampleSite []byte

var (
	ErrUnknownEntity   = errors.New("unknown entity")
	ErrUnknownRelation = errors.New("unknown relationship")
	ErrDuplicateEntity = errors.New("duplicate entity")
)

// Model is a site: its instance namespace, entities and the relations between them
type Model struct {
	Prefix    string     `yaml:"prefix"`
	Namespace string     `yaml:"namespace"`
	Entities  []Entity   `yaml:"entities"`
	Relations []Relation `yaml:"relations"`
}

// Entity is one piece of equipment, location or point
type Entity struct {
	ID    string `yaml:"id"`
	Class string `yaml:"class"` // local name in the Brick namespace
	Label string `yaml:"label,omitempty"`
}

// Relation links two entities with a BrickFrame relationship
type Relation struct {
	Subject   string `yaml:"subject"`
	Predicate string `yaml:"predicate"` // local name in the BrickFrame namespace
	Object    string `yaml:"object"`
}

// Example returns the bundled example building
func Example() (*Model, error) {
	return Decode(bytes.NewReader(exampleSite))
}

// Decode reads a site from YAML and validates it. Unknown fields are rejected.
func Decode(r io.Reader) (*Model, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var m Model
	if err := decoder.Decode(&m); err != nil {
		return nil, fmt.Errorf("failed to decode site: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Load reads the site file at path, or the example site when path is empty
func Load(path string) (*Model, error) {
	if path == "" {
		return Example()
	}

	f, err := os.Open(path) // #nosec G304 - site path is chosen by the operator
	if err != nil {
		return nil, fmt.Errorf("failed to open site: %w", err)
	}
	defer f.Close()

	m, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Validate checks that the site can be turned into a graph
func (m *Model) Validate() error {
	if m.Prefix == "" {
		return errors.New("site prefix must not be empty")
	}
	if m.Namespace == "" {
		return errors.New("site namespace must not be empty")
	}
	if _, reserved := Prefixes()[m.Prefix]; reserved {
		return fmt.Errorf("site prefix %q is reserved", m.Prefix)
	}

	ids := make(map[string]bool, len(m.Entities))
	for i, entity := range m.Entities {
		if entity.ID == "" {
			return fmt.Errorf("entity %d: id must not be empty", i)
		}
		if entity.Class == "" {
			return fmt.Errorf("entity %s: class must not be empty", entity.ID)
		}
		if ids[entity.ID] {
			return fmt.Errorf("%w: %s", ErrDuplicateEntity, entity.ID)
		}
		ids[entity.ID] = true
	}

	for _, rel := range m.Relations {
		if !ids[rel.Subject] {
			return fmt.Errorf("%w: %s", ErrUnknownEntity, rel.Subject)
		}
		if !ids[rel.Object] {
			return fmt.Errorf("%w: %s", ErrUnknownEntity, rel.Object)
		}
		if !Relationships[rel.Predicate] {
			return fmt.Errorf("%w: %s", ErrUnknownRelation, rel.Predicate)
		}
	}

	return nil
}

// Graph builds the site graph: one rdf:type per entity, an rdfs:label where
// one is given, and one statement per relation.
func (m *Model) Graph() (*store.Graph, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	g := store.NewGraph()
	for prefix, ns := range Prefixes() {
		g.Bind(prefix, ns.String())
	}
	site := rdf.Namespace(m.Namespace)
	g.Bind(m.Prefix, site.String())

	add := func(subject, predicate *rdf.NamedNode, object rdf.Term) error {
		if _, err := g.Add(subject, predicate, object); err != nil {
			return fmt.Errorf("failed to add %s %s: %w", subject, predicate, err)
		}
		return nil
	}

	for _, entity := range m.Entities {
		node := site.Term(entity.ID)
		if err := add(node, rdf.RDFType, Brick.Term(entity.Class)); err != nil {
			return nil, err
		}
		if entity.Label != "" {
			if err := add(node, rdf.RDFSLabel, rdf.NewLiteral(entity.Label)); err != nil {
				return nil, err
			}
		}
	}

	for _, rel := range m.Relations {
		if err := add(site.Term(rel.Subject), BrickFrame.Term(rel.Predicate), site.Term(rel.Object)); err != nil {
			return nil, err
		}
	}

	return g, nil
}
