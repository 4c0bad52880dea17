package encoding

import (
	"fmt"
	"strings"

	"github.com/buildsys/brickgen/pkg/rdf"
	"github.com/buildsys/brickgen/pkg/store"
)

// TermDecoder handles decoding of RDF terms
type TermDecoder struct{}

// NewTermDecoder creates a new term decoder
func NewTermDecoder() *TermDecoder {
	return &TermDecoder{}
}

// DecodeTerm rebuilds a term from its encoding and the string stored in id2str
func (d *TermDecoder) DecodeTerm(encoded store.EncodedTerm, stringValue string) (rdf.Term, error) {
	termType := GetTermType(encoded)

	switch termType {
	case rdf.TermTypeNamedNode:
		if stringValue == "" {
			return nil, fmt.Errorf("string value required for named node")
		}
		return rdf.NewNamedNode(stringValue), nil

	case rdf.TermTypeStringLiteral:
		return rdf.NewLiteral(stringValue), nil

	case rdf.TermTypeLangStringLiteral:
		value, lang, err := splitLiteral(stringValue)
		if err != nil {
			return nil, fmt.Errorf("language-tagged literal: %w", err)
		}
		return rdf.NewLiteralWithLanguage(value, lang), nil

	case rdf.TermTypeTypedLiteral:
		value, datatype, err := splitLiteral(stringValue)
		if err != nil {
			return nil, fmt.Errorf("typed literal: %w", err)
		}
		return rdf.NewLiteralWithDatatype(value, rdf.NewNamedNode(datatype)), nil

	default:
		return nil, fmt.Errorf("unknown term type: %d", termType)
	}
}

// DecodeTripleKey splits an index key back into its encoded terms
func (d *TermDecoder) DecodeTripleKey(key []byte) ([]store.EncodedTerm, error) {
	if len(key) == 0 || len(key)%store.EncodedTermSize != 0 {
		return nil, fmt.Errorf("invalid key length %d", len(key))
	}

	terms := make([]store.EncodedTerm, len(key)/store.EncodedTermSize)
	for i := range terms {
		copy(terms[i][:], key[i*store.EncodedTermSize:(i+1)*store.EncodedTermSize])
	}
	return terms, nil
}

// splitLiteral splits value\x00suffix; the suffix never contains the separator
func splitLiteral(s string) (string, string, error) {
	idx := strings.LastIndex(s, literalSeparator)
	if idx < 0 || idx == len(s)-1 {
		return "", "", fmt.Errorf("missing suffix in %q", s)
	}
	return s[:idx], s[idx+1:], nil
}
