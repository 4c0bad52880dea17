package rdf

import (
	"sort"
	"strings"
	"unicode"
)

const (
	turtleIndent       = "    "
	turtleObjectIndent = "        "
)

// TurtleSerializer writes triples as Turtle, grouped by subject.
//
// Layout is a pure function of the triple set and the prefixes:
//   - prefix declarations sorted by prefix
//   - subjects sorted by IRI, one block each, blocks separated by a blank line
//   - rdf:type first (written "a"), then predicates sorted by IRI
//   - objects of one predicate sorted by their N-Triples form
type TurtleSerializer struct {
	prefixes map[string]string
	order    []string // prefixes, longest base first
}

// NewTurtleSerializer creates a serializer that abbreviates IRIs with the given prefix -> base IRI map.
// Bindings that cannot be declared in Turtle (a malformed prefix name or an
// empty base) are ignored, and the IRIs they would cover are written in full.
func NewTurtleSerializer(prefixes map[string]string) *TurtleSerializer {
	s := &TurtleSerializer{prefixes: make(map[string]string, len(prefixes))}
	for prefix, base := range prefixes {
		if base == "" || !isPrefixName(prefix) {
			continue
		}
		s.prefixes[prefix] = base
		s.order = append(s.order, prefix)
	}

	// Longest base wins so nested namespaces abbreviate to the most specific prefix
	sort.Slice(s.order, func(i, j int) bool {
		bi, bj := s.prefixes[s.order[i]], s.prefixes[s.order[j]]
		if len(bi) != len(bj) {
			return len(bi) > len(bj)
		}
		return s.order[i] < s.order[j]
	})

	return s
}

// Serialize renders the triples as a Turtle document
func (s *TurtleSerializer) Serialize(triples []*Triple) string {
	var builder strings.Builder

	prefixes := make([]string, 0, len(s.prefixes))
	for prefix := range s.prefixes {
		prefixes = append(prefixes, prefix)
	}
	sort.Strings(prefixes)
	for _, prefix := range prefixes {
		builder.WriteString("@prefix ")
		builder.WriteString(prefix)
		builder.WriteString(": <")
		builder.WriteString(escapeIRI(s.prefixes[prefix]))
		builder.WriteString("> .\n")
	}

	for i, block := range groupBySubject(triples) {
		if i > 0 || len(prefixes) > 0 {
			builder.WriteString("\n")
		}
		s.writeBlock(&builder, block)
	}

	return builder.String()
}

// subjectBlock holds every statement about one subject
type subjectBlock struct {
	subject    *NamedNode
	predicates []*NamedNode
	objects    map[string][]Term
}

func groupBySubject(triples []*Triple) []*subjectBlock {
	blocks := make(map[string]*subjectBlock)
	for _, triple := range triples {
		block, ok := blocks[triple.Subject.IRI]
		if !ok {
			block = &subjectBlock{
				subject: triple.Subject,
				objects: make(map[string][]Term),
			}
			blocks[triple.Subject.IRI] = block
		}
		if _, seen := block.objects[triple.Predicate.IRI]; !seen {
			block.predicates = append(block.predicates, triple.Predicate)
		}
		block.objects[triple.Predicate.IRI] = append(block.objects[triple.Predicate.IRI], triple.Object)
	}

	result := make([]*subjectBlock, 0, len(blocks))
	for _, block := range blocks {
		sort.Slice(block.predicates, func(i, j int) bool {
			pi, pj := block.predicates[i].IRI, block.predicates[j].IRI
			if pi == RDFType.IRI || pj == RDFType.IRI {
				return pi == RDFType.IRI && pj != RDFType.IRI
			}
			return pi < pj
		})
		for _, objects := range block.objects {
			sort.Slice(objects, func(i, j int) bool {
				return serializeTermCanonical(objects[i]) < serializeTermCanonical(objects[j])
			})
		}
		result = append(result, block)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].subject.IRI < result[j].subject.IRI
	})

	return result
}

func (s *TurtleSerializer) writeBlock(builder *strings.Builder, block *subjectBlock) {
	builder.WriteString(s.FormatIRI(block.subject))
	for i, predicate := range block.predicates {
		if i == 0 {
			builder.WriteString(" ")
		} else {
			builder.WriteString(" ;\n")
			builder.WriteString(turtleIndent)
		}

		if predicate.IRI == RDFType.IRI {
			builder.WriteString("a")
		} else {
			builder.WriteString(s.FormatIRI(predicate))
		}

		for j, object := range block.objects[predicate.IRI] {
			if j == 0 {
				builder.WriteString(" ")
			} else {
				builder.WriteString(",\n")
				builder.WriteString(turtleObjectIndent)
			}
			builder.WriteString(s.FormatTerm(object))
		}
	}
	builder.WriteString(" .\n")
}

// FormatTerm renders a single term, abbreviating IRIs where a prefix matches
func (s *TurtleSerializer) FormatTerm(term Term) string {
	switch t := term.(type) {
	case *NamedNode:
		return s.FormatIRI(t)
	case *Literal:
		return formatLiteral(t, s.FormatIRI)
	default:
		return ""
	}
}

// FormatIRI returns prefix:local when a bound base IRI matches, <iri> otherwise
func (s *TurtleSerializer) FormatIRI(node *NamedNode) string {
	for _, prefix := range s.order {
		base := s.prefixes[prefix]
		if !strings.HasPrefix(node.IRI, base) {
			continue
		}
		local := node.IRI[len(base):]
		if isPrefixedLocalName(local) {
			return prefix + ":" + local
		}
	}
	return node.String()
}

// isPrefixName reports whether s can be declared as a prefix; the empty
// prefix is allowed
func isPrefixName(s string) bool {
	for i, r := range s {
		if i == 0 && !unicode.IsLetter(r) {
			return false
		}
		if !isNameRune(r) {
			return false
		}
	}
	return true
}

// isPrefixedLocalName reports whether s can be written unescaped after "prefix:"
func isPrefixedLocalName(s string) bool {
	if s == "" {
		return true
	}
	for i, r := range s {
		switch {
		case r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r):
		case i > 0 && (r == '-' || r == '.'):
		default:
			return false
		}
	}
	// A trailing dot would end the statement
	return !strings.HasSuffix(s, ".")
}
