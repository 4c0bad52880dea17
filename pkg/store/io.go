package store

import (
	"fmt"
	"io"
	"os"

	"github.com/buildsys/brickgen/pkg/rdf"
)

// ReadTurtle parses a Turtle document into a new graph. Prefix declarations
// become namespace bindings.
func ReadTurtle(r io.Reader) (*Graph, error) {
	triples, prefixes, err := rdf.ParseTurtle(r)
	if err != nil {
		return nil, err
	}

	g := NewGraph()
	for prefix, base := range prefixes {
		g.Bind(prefix, base)
	}
	for _, triple := range triples {
		if _, err := g.AddTriple(triple); err != nil {
			return nil, fmt.Errorf("invalid triple %s: %w", triple, err)
		}
	}
	return g, nil
}

// ReadTurtleFile parses the Turtle file at path
func ReadTurtleFile(path string) (*Graph, error) {
	f, err := os.Open(path) // #nosec G304 - input path is chosen by the operator
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	g, err := ReadTurtle(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}
