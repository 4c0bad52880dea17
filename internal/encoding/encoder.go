package encoding

import (
	"encoding/binary"
	"fmt"

	"github.com/buildsys/brickgen/pkg/rdf"
	"github.com/buildsys/brickgen/pkg/store"
	"github.com/zeebo/xxh3"
)

// Separator between a literal's value and its language tag or datatype in id2str
const literalSeparator = "\x00"

// TermEncoder encodes RDF terms as a type byte plus the 128-bit xxh3 hash of
// the term's string form
type TermEncoder struct{}

func NewTermEncoder() *TermEncoder {
	return &TermEncoder{}
}

// Hash128 computes a 128-bit xxhash3 hash of the input string
func (e *TermEncoder) Hash128(s string) [16]byte {
	hash := xxh3.HashString128(s)
	var result [16]byte
	binary.BigEndian.PutUint64(result[0:8], hash.Hi)
	binary.BigEndian.PutUint64(result[8:16], hash.Lo)
	return result
}

// EncodeTerm encodes an RDF term into a fixed-size byte array
// Returns the encoded term and the string to store in the id2str table
func (e *TermEncoder) EncodeTerm(term rdf.Term) (store.EncodedTerm, string, error) {
	switch t := term.(type) {
	case *rdf.NamedNode:
		return e.encode(rdf.TermTypeNamedNode, t.IRI), t.IRI, nil
	case *rdf.Literal:
		return e.encodeLiteral(t)
	default:
		return store.EncodedTerm{}, "", fmt.Errorf("unknown term type: %T", term)
	}
}

func (e *TermEncoder) encodeLiteral(lit *rdf.Literal) (store.EncodedTerm, string, error) {
	// Language-tagged string
	if lit.Language != "" {
		str := lit.Value + literalSeparator + lit.Language
		return e.encode(rdf.TermTypeLangStringLiteral, str), str, nil
	}

	// Typed literal, xsd:string is stored as a plain string
	if lit.Datatype != nil && lit.Datatype.IRI != rdf.XSDString.IRI {
		str := lit.Value + literalSeparator + lit.Datatype.IRI
		return e.encode(rdf.TermTypeTypedLiteral, str), str, nil
	}

	return e.encode(rdf.TermTypeStringLiteral, lit.Value), lit.Value, nil
}

func (e *TermEncoder) encode(termType rdf.TermType, s string) store.EncodedTerm {
	var encoded store.EncodedTerm
	encoded[0] = byte(termType)
	hash := e.Hash128(s)
	copy(encoded[1:], hash[:])
	return encoded
}

// EncodeTripleKey concatenates encoded terms into a key that sorts by
// subject, then predicate, then object
func (e *TermEncoder) EncodeTripleKey(terms ...store.EncodedTerm) []byte {
	key := make([]byte, 0, len(terms)*store.EncodedTermSize)
	for _, term := range terms {
		key = append(key, term[:]...)
	}
	return key
}

// GetTermType extracts the term type from an encoded term
func GetTermType(encoded store.EncodedTerm) rdf.TermType {
	return rdf.TermType(encoded[0])
}
