package rdf

import (
	"fmt"
	"sort"
	"strings"
)

// SerializeTriplesCanonical serializes triples to canonical N-Triples format
// Input order is preserved; callers sort when they need a stable layout.
func SerializeTriplesCanonical(triples []*Triple) string {
	if len(triples) == 0 {
		return ""
	}

	var builder strings.Builder
	for _, triple := range triples {
		builder.WriteString(CanonicalString(triple))
		builder.WriteString("\n")
	}

	return builder.String()
}

// sortedTriples returns a copy of triples ordered by canonical form
func sortedTriples(triples []*Triple) []*Triple {
	sorted := make([]*Triple, len(triples))
	copy(sorted, triples)
	sort.Slice(sorted, func(i, j int) bool {
		return CanonicalString(sorted[i]) < CanonicalString(sorted[j])
	})
	return sorted
}

// CanonicalString returns the canonical N-Triples line of a triple, without the newline
func CanonicalString(triple *Triple) string {
	return serializeTermCanonical(triple.Subject) + " " +
		serializeTermCanonical(triple.Predicate) + " " +
		serializeTermCanonical(triple.Object) + " ."
}

// CanonicalTerm returns the canonical N-Triples form of a single term
func CanonicalTerm(term Term) string {
	return serializeTermCanonical(term)
}

func serializeTermCanonical(term Term) string {
	switch t := term.(type) {
	case *NamedNode:
		return t.String()
	case *Literal:
		return formatLiteral(t, func(n *NamedNode) string { return n.String() })
	default:
		return ""
	}
}

// formatLiteral renders a literal; datatype IRIs go through renderIRI so that
// Turtle output can abbreviate them
func formatLiteral(lit *Literal, renderIRI func(*NamedNode) string) string {
	escaped := `"` + escapeStringCanonical(lit.Value) + `"`

	if lit.Language != "" {
		return escaped + "@" + strings.ToLower(lit.Language)
	}

	// xsd:string is implicit
	if lit.Datatype != nil && lit.Datatype.IRI != XSDString.IRI {
		return escaped + "^^" + renderIRI(lit.Datatype)
	}

	return escaped
}

// escapeIRI escapes the characters an IRIREF cannot hold as \uXXXX.
// Other bytes are copied as they are.
func escapeIRI(iri string) string {
	var builder strings.Builder
	builder.Grow(len(iri))

	for i := 0; i < len(iri); i++ {
		c := iri[i]
		if c <= 0x20 || c == 0x7F || strings.IndexByte(iriForbidden, c) >= 0 {
			builder.WriteString(fmt.Sprintf(`\u%04X`, c))
			continue
		}
		builder.WriteByte(c)
	}

	return builder.String()
}

const iriForbidden = "<>\"{}|^`\\"

// escapeStringCanonical escapes a string value for N-Triples and Turtle output
// - Special named escapes: \t \b \n \r \f \" \\
// - Other control characters: \uXXXX
func escapeStringCanonical(s string) string {
	var builder strings.Builder
	builder.Grow(len(s))

	for _, r := range s {
		switch r {
		case '\t':
			builder.WriteString(`\t`)
		case '\b':
			builder.WriteString(`\b`)
		case '\n':
			builder.WriteString(`\n`)
		case '\r':
			builder.WriteString(`\r`)
		case '\f':
			builder.WriteString(`\f`)
		case '"':
			builder.WriteString(`\"`)
		case '\\':
			builder.WriteString(`\\`)
		default:
			if r < 0x20 || r == 0x7F {
				builder.WriteString(fmt.Sprintf(`\u%04X`, r))
			} else {
				builder.WriteRune(r)
			}
		}
	}

	return builder.String()
}
