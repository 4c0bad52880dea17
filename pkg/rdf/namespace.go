package rdf

// Namespace is a base IRI that local names are appended to
type Namespace string

// Term returns the IRI formed by concatenating the namespace and local name
func (ns Namespace) Term(local string) *NamedNode {
	return NewNamedNode(string(ns) + local)
}

func (ns Namespace) String() string {
	return string(ns)
}

const (
	RDF  Namespace = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	RDFS Namespace = "http://www.w3.org/2000/01/rdf-schema#"
	XSD  Namespace = "http://www.w3.org/2001/XMLSchema#"
)

var (
	RDFType   = RDF.Term("type")
	RDFSLabel = RDFS.Term("label")
)
