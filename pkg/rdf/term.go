package rdf

import (
	"fmt"
	"strings"
)

// TermType represents the type of an RDF term
type TermType byte

const (
	TermTypeNamedNode TermType = iota + 1
	TermTypeLiteral

	// Literal subtypes, used by the binary term encoding
	TermTypeStringLiteral
	TermTypeLangStringLiteral
	TermTypeTypedLiteral
)

func (t TermType) String() string {
	switch t {
	case TermTypeNamedNode:
		return "iri"
	case TermTypeLiteral, TermTypeStringLiteral, TermTypeLangStringLiteral, TermTypeTypedLiteral:
		return "literal"
	default:
		return "unknown"
	}
}

// Term represents an RDF term that can appear in a statement: an IRI or a literal
type Term interface {
	Type() TermType
	String() string
	Equals(other Term) bool
}

// NamedNode represents an IRI
type NamedNode struct {
	IRI string
}

func NewNamedNode(iri string) *NamedNode {
	return &NamedNode{IRI: iri}
}

func (n *NamedNode) Type() TermType {
	return TermTypeNamedNode
}

func (n *NamedNode) String() string {
	return "<" + escapeIRI(n.IRI) + ">"
}

func (n *NamedNode) Equals(other Term) bool {
	if on, ok := other.(*NamedNode); ok {
		return n.IRI == on.IRI
	}
	return false
}

// Literal represents an RDF literal
type Literal struct {
	Value    string
	Language string     // for language-tagged strings
	Datatype *NamedNode // for typed literals
}

func NewLiteral(value string) *Literal {
	return &Literal{Value: value}
}

func NewLiteralWithLanguage(value, language string) *Literal {
	return &Literal{Value: value, Language: language}
}

func NewLiteralWithDatatype(value string, datatype *NamedNode) *Literal {
	return &Literal{Value: value, Datatype: datatype}
}

func (l *Literal) Type() TermType {
	return TermTypeLiteral
}

func (l *Literal) String() string {
	return formatLiteral(l, func(n *NamedNode) string { return n.String() })
}

// IsValidLanguageTag reports whether tag has the BCP47 shape Turtle accepts:
// letters, then "-"-separated groups of letters and digits
func IsValidLanguageTag(tag string) bool {
	for i, part := range strings.Split(tag, "-") {
		if part == "" {
			return false
		}
		for _, r := range part {
			isLetter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
			isDigit := r >= '0' && r <= '9'
			if !isLetter && !(i > 0 && isDigit) {
				return false
			}
		}
	}
	return true
}

// datatypeIRI returns the effective datatype; a language tag takes precedence
// and a missing datatype means xsd:string.
func (l *Literal) datatypeIRI() string {
	if l.Language != "" {
		return ""
	}
	if l.Datatype == nil {
		return XSDString.IRI
	}
	return l.Datatype.IRI
}

// Equals compares value, datatype and language; language tags are case-insensitive
func (l *Literal) Equals(other Term) bool {
	if ol, ok := other.(*Literal); ok {
		return l.Value == ol.Value &&
			strings.EqualFold(l.Language, ol.Language) &&
			l.datatypeIRI() == ol.datatypeIRI()
	}
	return false
}

// Triple represents an RDF statement. Subject and predicate are always IRIs.
type Triple struct {
	Subject   *NamedNode
	Predicate *NamedNode
	Object    Term
}

func NewTriple(subject, predicate *NamedNode, object Term) *Triple {
	return &Triple{
		Subject:   subject,
		Predicate: predicate,
		Object:    object,
	}
}

func (t *Triple) String() string {
	return fmt.Sprintf("%s %s %s .", t.Subject, t.Predicate, t.Object)
}

// Equals reports whether both triples are field-wise identical
func (t *Triple) Equals(other *Triple) bool {
	if other == nil {
		return false
	}
	return t.Subject.Equals(other.Subject) &&
		t.Predicate.Equals(other.Predicate) &&
		t.Object.Equals(other.Object)
}

// Helper functions for common XSD datatypes
var (
	XSDString  = XSD.Term("string")
	XSDInteger = XSD.Term("integer")
	XSDDecimal = XSD.Term("decimal")
	XSDDouble  = XSD.Term("double")
	XSDBoolean = XSD.Term("boolean")
)

func NewIntegerLiteral(value int64) *Literal {
	return NewLiteralWithDatatype(fmt.Sprintf("%d", value), XSDInteger)
}

func NewDoubleLiteral(value float64) *Literal {
	return NewLiteralWithDatatype(fmt.Sprintf("%g", value), XSDDouble)
}

func NewBooleanLiteral(value bool) *Literal {
	return NewLiteralWithDatatype(fmt.Sprintf("%t", value), XSDBoolean)
}
