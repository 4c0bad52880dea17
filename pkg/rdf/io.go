package rdf

import (
	"fmt"
	"io"
)

// Serializer renders a set of triples in one text format
type Serializer interface {
	// Serialize renders the triples; it never fails for well-formed triples
	Serialize(triples []*Triple) string

	// ContentType returns the MIME type this serializer produces
	ContentType() string
}

// NewSerializer creates a serializer for the format. Prefixes are only used by
// formats that support abbreviation.
func NewSerializer(format Format, prefixes map[string]string) (Serializer, error) {
	switch format {
	case FormatTurtle:
		return &turtleIOSerializer{NewTurtleSerializer(prefixes)}, nil
	case FormatNTriples:
		return &NTriplesSerializer{}, nil
	default:
		return nil, &UnsupportedFormatError{Format: string(format)}
	}
}

type turtleIOSerializer struct {
	*TurtleSerializer
}

func (s *turtleIOSerializer) ContentType() string {
	return FormatTurtle.ContentType()
}

// NTriplesSerializer writes one canonical N-Triples line per triple, sorted
type NTriplesSerializer struct{}

func (s *NTriplesSerializer) ContentType() string {
	return FormatNTriples.ContentType()
}

func (s *NTriplesSerializer) Serialize(triples []*Triple) string {
	return SerializeTriplesCanonical(sortedTriples(triples))
}

// ParseTurtle reads a Turtle document and returns its triples and prefix declarations
func ParseTurtle(reader io.Reader) ([]*Triple, map[string]string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, nil, fmt.Errorf("error reading input: %w", err)
	}

	parser := NewTurtleParser(string(data))
	triples, err := parser.Parse()
	if err != nil {
		return nil, nil, fmt.Errorf("error parsing Turtle: %w", err)
	}

	return triples, parser.Prefixes(), nil
}
