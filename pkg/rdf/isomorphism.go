package rdf

import (
	"strconv"
	"strings"
)

// AreGraphsIsomorphic checks if two sets of triples describe the same graph.
// Terms are IRIs and literals only, so two graphs are isomorphic exactly when
// they hold the same distinct statements. Duplicates and order are ignored.
func AreGraphsIsomorphic(expected, actual []*Triple) bool {
	expectedSet := tripleSet(expected)
	actualSet := tripleSet(actual)

	// Quick check: same number of distinct triples
	if len(expectedSet) != len(actualSet) {
		return false
	}

	for key := range actualSet {
		if !expectedSet[key] {
			return false
		}
	}
	return true
}

// Diff returns the triples of expected missing from actual and the triples
// of actual missing from expected, both in canonical order.
func Diff(expected, actual []*Triple) (missing, extra []*Triple) {
	expectedSet := tripleSet(expected)
	actualSet := tripleSet(actual)

	for _, triple := range sortedTriples(expected) {
		if !actualSet[statementKey(triple)] {
			missing = append(missing, triple)
		}
	}
	for _, triple := range sortedTriples(actual) {
		if !expectedSet[statementKey(triple)] {
			extra = append(extra, triple)
		}
	}
	return missing, extra
}

// tripleSet keys triples by statementKey
func tripleSet(triples []*Triple) map[string]bool {
	set := make(map[string]bool, len(triples))
	for _, triple := range triples {
		set[statementKey(triple)] = true
	}
	return set
}

// statementKey identifies a triple by its raw term values, each field
// length-prefixed. Unlike the canonical form it never rewrites bytes, so it
// agrees with Triple.Equals.
func statementKey(triple *Triple) string {
	var builder strings.Builder
	writeField(&builder, triple.Subject.IRI)
	writeField(&builder, triple.Predicate.IRI)

	switch object := triple.Object.(type) {
	case *NamedNode:
		builder.WriteByte('I')
		writeField(&builder, object.IRI)
	case *Literal:
		builder.WriteByte('L')
		writeField(&builder, strings.ToLower(object.Language))
		writeField(&builder, object.datatypeIRI())
		writeField(&builder, object.Value)
	}
	return builder.String()
}

func writeField(builder *strings.Builder, value string) {
	builder.WriteString(strconv.Itoa(len(value)))
	builder.WriteByte(':')
	builder.WriteString(value)
}
