package rdf

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// TurtleParser reads the Turtle subset produced by TurtleSerializer:
// prefix directives, IRIs, prefixed names, "a", string literals and
// predicate/object lists. Blank nodes, collections and numeric shorthand
// are rejected.
type TurtleParser struct {
	input    string
	pos      int
	length   int
	prefixes map[string]string
}

// NewTurtleParser creates a new Turtle parser
func NewTurtleParser(input string) *TurtleParser {
	return &TurtleParser{
		input:    input,
		pos:      0,
		length:   len(input),
		prefixes: make(map[string]string),
	}
}

// Prefixes returns the prefix declarations seen so far
func (p *TurtleParser) Prefixes() map[string]string {
	result := make(map[string]string, len(p.prefixes))
	for prefix, base := range p.prefixes {
		result[prefix] = base
	}
	return result
}

// Parse parses the Turtle document and returns triples
func (p *TurtleParser) Parse() ([]*Triple, error) {
	var triples []*Triple

	for p.pos < p.length {
		p.skipWhitespaceAndComments()
		if p.pos >= p.length {
			break
		}

		// @prefix must be lowercase, PREFIX can be any case
		if p.matchExactKeyword("@prefix") {
			if err := p.parsePrefix(true); err != nil {
				return nil, err
			}
			continue
		}
		if p.matchKeyword("PREFIX") {
			if err := p.parsePrefix(false); err != nil {
				return nil, err
			}
			continue
		}

		blockTriples, err := p.parseTripleBlock()
		if err != nil {
			return nil, err
		}
		triples = append(triples, blockTriples...)
	}

	return triples, nil
}

// skipWhitespaceAndComments skips whitespace and comments
func (p *TurtleParser) skipWhitespaceAndComments() {
	for p.pos < p.length {
		ch := p.input[p.pos]
		if ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' {
			p.pos++
			continue
		}
		if ch == '#' {
			for p.pos < p.length && p.input[p.pos] != '\n' {
				p.pos++
			}
			continue
		}
		break
	}
}

// matchKeyword checks if the current position matches a keyword (case-insensitive)
func (p *TurtleParser) matchKeyword(keyword string) bool {
	if p.pos+len(keyword) > p.length {
		return false
	}
	if !strings.EqualFold(p.input[p.pos:p.pos+len(keyword)], keyword) {
		return false
	}
	return p.consumeKeyword(keyword)
}

// matchExactKeyword checks if the current position matches a keyword (case-sensitive)
func (p *TurtleParser) matchExactKeyword(keyword string) bool {
	if p.pos+len(keyword) > p.length {
		return false
	}
	if p.input[p.pos:p.pos+len(keyword)] != keyword {
		return false
	}
	return p.consumeKeyword(keyword)
}

// consumeKeyword advances past a keyword that is not followed by a name character
func (p *TurtleParser) consumeKeyword(keyword string) bool {
	end := p.pos + len(keyword)
	if end < p.length {
		nextCh := p.input[end]
		if (nextCh >= 'a' && nextCh <= 'z') || (nextCh >= 'A' && nextCh <= 'Z') || (nextCh >= '0' && nextCh <= '9') || nextCh == ':' || nextCh == '_' || nextCh == '-' {
			return false
		}
	}
	p.pos = end
	return true
}

// parsePrefix parses the remainder of a prefix directive
func (p *TurtleParser) parsePrefix(turtleStyle bool) error {
	p.skipWhitespaceAndComments()

	start := p.pos
	for p.pos < p.length && p.input[p.pos] != ':' {
		r, size := utf8.DecodeRuneInString(p.input[p.pos:])
		if !isNameRune(r) {
			return p.errorf("invalid character %q in prefix name", r)
		}
		p.pos += size
	}
	if p.pos >= p.length {
		return p.errorf("expected ':' after prefix name")
	}
	prefix := p.input[start:p.pos]
	p.pos++ // skip ':'

	p.skipWhitespaceAndComments()
	iri, err := p.parseIRI()
	if err != nil {
		return err
	}

	if turtleStyle {
		p.skipWhitespaceAndComments()
		if p.pos >= p.length || p.input[p.pos] != '.' {
			return p.errorf("expected '.' after @prefix declaration")
		}
		p.pos++
	}

	p.prefixes[prefix] = iri
	return nil
}

// parseTripleBlock parses a subject followed by its predicate-object list
func (p *TurtleParser) parseTripleBlock() ([]*Triple, error) {
	subject, err := p.parseIRITerm()
	if err != nil {
		return nil, fmt.Errorf("subject: %w", err)
	}

	var triples []*Triple
	for {
		p.skipWhitespaceAndComments()
		predicate, err := p.parsePredicate()
		if err != nil {
			return nil, fmt.Errorf("predicate: %w", err)
		}

		// Object list
		for {
			p.skipWhitespaceAndComments()
			object, err := p.parseObject()
			if err != nil {
				return nil, fmt.Errorf("object: %w", err)
			}
			triples = append(triples, NewTriple(subject, predicate, object))

			p.skipWhitespaceAndComments()
			if p.pos < p.length && p.input[p.pos] == ',' {
				p.pos++
				continue
			}
			break
		}

		if p.pos >= p.length {
			return nil, p.errorf("unexpected end of input, expected ';' or '.'")
		}

		switch p.input[p.pos] {
		case ';':
			p.pos++
			p.skipWhitespaceAndComments()
			// A trailing ';' before '.' is allowed
			for p.pos < p.length && p.input[p.pos] == ';' {
				p.pos++
				p.skipWhitespaceAndComments()
			}
			if p.pos < p.length && p.input[p.pos] == '.' {
				p.pos++
				return triples, nil
			}
		case '.':
			p.pos++
			return triples, nil
		default:
			return nil, p.errorf("expected ';' or '.', got %q", p.input[p.pos])
		}
	}
}

// parsePredicate parses an IRI or the "a" keyword
func (p *TurtleParser) parsePredicate() (*NamedNode, error) {
	if p.pos < p.length && p.input[p.pos] == 'a' {
		next := p.pos + 1
		if next >= p.length || p.input[next] == ' ' || p.input[next] == '\t' || p.input[next] == '\n' || p.input[next] == '\r' || p.input[next] == '<' || p.input[next] == '"' {
			p.pos = next
			return RDFType, nil
		}
	}
	return p.parseIRITerm()
}

// parseObject parses an IRI, prefixed name or literal
func (p *TurtleParser) parseObject() (Term, error) {
	if p.pos >= p.length {
		return nil, p.errorf("unexpected end of input")
	}
	switch p.input[p.pos] {
	case '"', '\'':
		return p.parseLiteral()
	case '_', '[', '(':
		return nil, p.errorf("blank nodes and collections are not supported")
	default:
		return p.parseIRITerm()
	}
}

// parseIRITerm parses either <iri> or prefix:local
func (p *TurtleParser) parseIRITerm() (*NamedNode, error) {
	if p.pos >= p.length {
		return nil, p.errorf("unexpected end of input")
	}
	if p.input[p.pos] == '<' {
		iri, err := p.parseIRI()
		if err != nil {
			return nil, err
		}
		return NewNamedNode(iri), nil
	}
	return p.parsePrefixedName()
}

// parseIRI parses an IRI in angle brackets
func (p *TurtleParser) parseIRI() (string, error) {
	if p.pos >= p.length || p.input[p.pos] != '<' {
		return "", p.errorf("expected '<'")
	}
	p.pos++

	var iri strings.Builder
	for p.pos < p.length && p.input[p.pos] != '>' {
		ch := p.input[p.pos]
		if ch == '\\' {
			if p.pos+1 >= p.length || (p.input[p.pos+1] != 'u' && p.input[p.pos+1] != 'U') {
				return "", p.errorf("invalid escape sequence in IRI")
			}
			decoded, err := p.parseEscape()
			if err != nil {
				return "", err
			}
			iri.WriteString(decoded)
			continue
		}
		if ch <= 0x20 || strings.IndexByte(iriForbidden, ch) >= 0 {
			return "", p.errorf("invalid character %q in IRI", ch)
		}
		iri.WriteByte(ch)
		p.pos++
	}
	if p.pos >= p.length {
		return "", p.errorf("unterminated IRI")
	}
	p.pos++ // skip '>'

	if iri.Len() == 0 {
		return "", p.errorf("empty IRI")
	}
	return iri.String(), nil
}

// parsePrefixedName parses prefix:local and expands it with the declared prefixes
func (p *TurtleParser) parsePrefixedName() (*NamedNode, error) {
	start := p.pos
	for p.pos < p.length && p.input[p.pos] != ':' {
		r, size := utf8.DecodeRuneInString(p.input[p.pos:])
		if !isNameRune(r) {
			return nil, p.errorf("unexpected character %q", r)
		}
		p.pos += size
	}
	if p.pos >= p.length {
		return nil, p.errorf("expected prefixed name")
	}
	prefix := p.input[start:p.pos]
	p.pos++ // skip ':'

	base, ok := p.prefixes[prefix]
	if !ok {
		return nil, p.errorf("undefined prefix %q", prefix)
	}

	localStart := p.pos
	for p.pos < p.length {
		r, size := utf8.DecodeRuneInString(p.input[p.pos:])
		if !isNameRune(r) && r != '.' {
			break
		}
		p.pos += size
	}
	// A trailing '.' terminates the statement, not the name
	for p.pos > localStart && p.input[p.pos-1] == '.' {
		p.pos--
	}

	return NewNamedNode(base + p.input[localStart:p.pos]), nil
}

// parseLiteral parses a quoted string with an optional language tag or datatype
func (p *TurtleParser) parseLiteral() (Term, error) {
	quote := p.input[p.pos]
	p.pos++

	var value strings.Builder
	for {
		if p.pos >= p.length {
			return nil, p.errorf("unterminated string literal")
		}
		ch := p.input[p.pos]
		if ch == quote {
			p.pos++
			break
		}
		if ch == '\n' || ch == '\r' {
			return nil, p.errorf("line break in string literal")
		}
		if ch == '\\' {
			s, err := p.parseEscape()
			if err != nil {
				return nil, err
			}
			value.WriteString(s)
			continue
		}
		value.WriteByte(ch)
		p.pos++
	}

	// Language tag
	if p.pos < p.length && p.input[p.pos] == '@' {
		p.pos++
		start := p.pos
		for p.pos < p.length {
			ch := p.input[p.pos]
			if (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') || ch == '-' {
				p.pos++
				continue
			}
			break
		}
		if p.pos == start {
			return nil, p.errorf("empty language tag")
		}
		return NewLiteralWithLanguage(value.String(), p.input[start:p.pos]), nil
	}

	// Datatype
	if p.pos+1 < p.length && p.input[p.pos] == '^' && p.input[p.pos+1] == '^' {
		p.pos += 2
		datatype, err := p.parseIRITerm()
		if err != nil {
			return nil, fmt.Errorf("datatype: %w", err)
		}
		return NewLiteralWithDatatype(value.String(), datatype), nil
	}

	return NewLiteral(value.String()), nil
}

// parseEscape decodes a backslash escape inside a string literal
func (p *TurtleParser) parseEscape() (string, error) {
	if p.pos+1 >= p.length {
		return "", p.errorf("incomplete escape sequence")
	}
	ch := p.input[p.pos+1]
	p.pos += 2

	switch ch {
	case 't':
		return "\t", nil
	case 'b':
		return "\b", nil
	case 'n':
		return "\n", nil
	case 'r':
		return "\r", nil
	case 'f':
		return "\f", nil
	case '"':
		return "\"", nil
	case '\'':
		return "'", nil
	case '\\':
		return "\\", nil
	case 'u':
		return p.parseUnicodeEscape(4)
	case 'U':
		return p.parseUnicodeEscape(8)
	default:
		return "", p.errorf("invalid escape sequence \\%c", ch)
	}
}

func (p *TurtleParser) parseUnicodeEscape(digits int) (string, error) {
	if p.pos+digits > p.length {
		return "", p.errorf("incomplete unicode escape")
	}
	code, err := strconv.ParseUint(p.input[p.pos:p.pos+digits], 16, 32)
	if err != nil {
		return "", p.errorf("invalid unicode escape: %v", err)
	}
	p.pos += digits
	return string(rune(code)), nil
}

// errorf returns a parse error annotated with the current line
func (p *TurtleParser) errorf(format string, args ...interface{}) error {
	line := 1 + strings.Count(p.input[:p.pos], "\n")
	return fmt.Errorf("turtle: line %d: %s", line, fmt.Sprintf(format, args...))
}

func isNameRune(r rune) bool {
	return r == '_' || r == '-' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
