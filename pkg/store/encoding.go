package store

import (
	"github.com/buildsys/brickgen/pkg/rdf"
)

// EncodedTermSize is a type byte followed by a 128-bit hash
const EncodedTermSize = 17

// EncodedTerm represents a term encoded as a type byte followed by 16 bytes of hash
type EncodedTerm [EncodedTermSize]byte

// TermEncoder handles encoding of RDF terms into a compact binary format
type TermEncoder interface {
	// EncodeTerm encodes an RDF term into a fixed-size byte array
	// Returns the encoded term and the string to store in the id2str table
	EncodeTerm(term rdf.Term) (EncodedTerm, string, error)

	// EncodeTripleKey concatenates encoded terms into an index key
	EncodeTripleKey(terms ...EncodedTerm) []byte
}

// TermDecoder handles decoding of RDF terms from binary format
type TermDecoder interface {
	// DecodeTerm rebuilds a term from its encoding and the string stored in id2str
	DecodeTerm(encoded EncodedTerm, stringValue string) (rdf.Term, error)

	// DecodeTripleKey splits an index key back into its encoded terms
	DecodeTripleKey(key []byte) ([]EncodedTerm, error)
}
