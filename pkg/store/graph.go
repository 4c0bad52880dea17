package store

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/buildsys/brickgen/pkg/rdf"
	"github.com/zeebo/xxh3"
)

var (
	ErrEmptyIdentifier = errors.New("identifier must not be empty")
	ErrNilTerm         = errors.New("term must not be nil")
	ErrInvalidLanguage = errors.New("invalid language tag")
)

// Graph is an in-memory set of triples plus the namespace bindings used to
// abbreviate IRIs when serializing. It is not safe for concurrent mutation.
type Graph struct {
	triples    []*rdf.Triple
	index      map[xxh3.Uint128][]int // hash of canonical form -> positions in triples
	namespaces map[string]string
}

// NewGraph creates an empty graph with no namespace bindings
func NewGraph() *Graph {
	return &Graph{
		index:      make(map[xxh3.Uint128][]int),
		namespaces: make(map[string]string),
	}
}

// Bind registers a namespace prefix, replacing any previous binding for it.
// Bindings only affect serialized output.
func (g *Graph) Bind(prefix, baseIRI string) {
	g.namespaces[prefix] = baseIRI
}

// Namespaces returns a copy of the namespace bindings
func (g *Graph) Namespaces() map[string]string {
	result := make(map[string]string, len(g.namespaces))
	for prefix, base := range g.namespaces {
		result[prefix] = base
	}
	return result
}

// Add inserts a statement. It reports whether the statement was new; adding
// a statement that is already present is a no-op.
func (g *Graph) Add(subject, predicate *rdf.NamedNode, object rdf.Term) (bool, error) {
	return g.AddTriple(rdf.NewTriple(subject, predicate, object))
}

// AddTriple inserts a prebuilt triple, see Add
func (g *Graph) AddTriple(triple *rdf.Triple) (bool, error) {
	if err := validateTriple(triple); err != nil {
		return false, err
	}

	key := tripleHash(triple)
	if g.find(key, triple) >= 0 {
		return false, nil
	}

	g.index[key] = append(g.index[key], len(g.triples))
	g.triples = append(g.triples, triple)
	return true, nil
}

// Contains reports whether the statement is in the graph
func (g *Graph) Contains(subject, predicate *rdf.NamedNode, object rdf.Term) bool {
	triple := rdf.NewTriple(subject, predicate, object)
	if validateTriple(triple) != nil {
		return false
	}
	return g.find(tripleHash(triple), triple) >= 0
}

// Len returns the number of distinct statements
func (g *Graph) Len() int {
	return len(g.triples)
}

// Triples returns the statements in insertion order
func (g *Graph) Triples() []*rdf.Triple {
	result := make([]*rdf.Triple, len(g.triples))
	copy(result, g.triples)
	return result
}

// Serialize renders the whole graph in the given format. The graph is not
// modified, and an unknown format fails with *rdf.UnsupportedFormatError.
func (g *Graph) Serialize(format rdf.Format) ([]byte, error) {
	serializer, err := rdf.NewSerializer(format, g.namespaces)
	if err != nil {
		return nil, err
	}
	return []byte(serializer.Serialize(g.triples)), nil
}

// Write serializes the graph to w. Nothing is written if serialization fails.
func (g *Graph) Write(w io.Writer, format rdf.Format) error {
	data, err := g.Serialize(format)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write graph: %w", err)
	}
	return nil
}

// WriteFile serializes the graph to path. The file is only created once
// serialization succeeded and is always closed.
func (g *Graph) WriteFile(path string, format rdf.Format) (err error) {
	data, err := g.Serialize(format)
	if err != nil {
		return err
	}

	f, err := os.Create(path) // #nosec G304 - output path is chosen by the operator
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, closeErr)
		}
	}()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func (g *Graph) find(key xxh3.Uint128, triple *rdf.Triple) int {
	for _, pos := range g.index[key] {
		if g.triples[pos].Equals(triple) {
			return pos
		}
	}
	return -1
}

// tripleHash hashes the canonical N-Triples form, so equal triples always collide
func tripleHash(triple *rdf.Triple) xxh3.Uint128 {
	return xxh3.HashString128(rdf.CanonicalString(triple))
}

func validateTriple(triple *rdf.Triple) error {
	if triple.Subject == nil || triple.Predicate == nil || triple.Object == nil {
		return ErrNilTerm
	}
	if triple.Subject.IRI == "" {
		return fmt.Errorf("subject: %w", ErrEmptyIdentifier)
	}
	if triple.Predicate.IRI == "" {
		return fmt.Errorf("predicate: %w", ErrEmptyIdentifier)
	}

	switch object := triple.Object.(type) {
	case *rdf.NamedNode:
		if object == nil {
			return ErrNilTerm
		}
		if object.IRI == "" {
			return fmt.Errorf("object: %w", ErrEmptyIdentifier)
		}
	case *rdf.Literal:
		if object == nil {
			return ErrNilTerm
		}
		if object.Language != "" && !rdf.IsValidLanguageTag(object.Language) {
			return fmt.Errorf("%w %q", ErrInvalidLanguage, object.Language)
		}
		if object.Datatype != nil && object.Datatype.IRI == "" {
			return fmt.Errorf("datatype: %w", ErrEmptyIdentifier)
		}
	default:
		return fmt.Errorf("unsupported object term %T", triple.Object)
	}
	return nil
}
