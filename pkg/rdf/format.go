package rdf

import (
	"errors"
	"fmt"
	"strings"
)

// Format names a text serialization of a graph
type Format string

const (
	FormatTurtle   Format = "turtle"
	FormatNTriples Format = "ntriples"
)

// ErrUnsupportedFormat is matched by every UnsupportedFormatError
var ErrUnsupportedFormat = errors.New("unsupported format")

// UnsupportedFormatError is returned when a serialization format is not implemented
type UnsupportedFormatError struct {
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported format: %q", e.Format)
}

func (e *UnsupportedFormatError) Is(target error) bool {
	return target == ErrUnsupportedFormat
}

// ParseFormat normalizes a format name, file extension or MIME type
func ParseFormat(name string) (Format, error) {
	ct := strings.ToLower(strings.TrimSpace(name))
	if idx := strings.Index(ct, ";"); idx != -1 {
		ct = strings.TrimSpace(ct[:idx])
	}

	switch ct {
	case "turtle", "ttl", "text/turtle", "application/x-turtle":
		return FormatTurtle, nil
	case "ntriples", "n-triples", "nt", "application/n-triples":
		return FormatNTriples, nil
	default:
		return "", &UnsupportedFormatError{Format: name}
	}
}

// ContentType returns the MIME type of the format
func (f Format) ContentType() string {
	switch f {
	case FormatTurtle:
		return "text/turtle"
	case FormatNTriples:
		return "application/n-triples"
	default:
		return ""
	}
}

// SupportedFormats lists the formats a graph can be serialized to
func SupportedFormats() []Format {
	return []Format{FormatTurtle, FormatNTriples}
}
