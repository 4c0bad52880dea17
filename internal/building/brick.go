package building

import (
	"github.com/buildsys/brickgen/pkg/rdf"
)

// Brick 1.0.1 vocabularies
const (
	Brick      rdf.Namespace = "https://brickschema.org/schema/1.0.1/Brick#"
	BrickFrame rdf.Namespace = "https://brickschema.org/schema/1.0.1/BrickFrame#"
)

// Relationships defined by BrickFrame that a site may use
var Relationships = map[string]bool{
	"feeds":          true,
	"isFedBy":        true,
	"hasPoint":       true,
	"isPointOf":      true,
	"hasPart":        true,
	"isPartOf":       true,
	"contains":       true,
	"isLocatedIn":    true,
	"controls":       true,
	"isControlledBy": true,
}

// Prefixes returns the standard bindings every site graph carries
func Prefixes() map[string]rdf.Namespace {
	return map[string]rdf.Namespace{
		"rdf":   rdf.RDF,
		"rdfs":  rdf.RDFS,
		"brick": Brick,
		"bf":    BrickFrame,
	}
}
