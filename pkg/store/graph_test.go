package store

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/buildsys/brickgen/pkg/rdf"
)

const (
	bldg  rdf.Namespace = "http://buildsys.org/ontologies/building_example#"
	brick rdf.Namespace = "https://brickschema.org/schema/1.0.1/Brick#"
	bf    rdf.Namespace = "https://brickschema.org/schema/1.0.1/BrickFrame#"
)

func mustAdd(t *testing.T, g *Graph, s, p *rdf.NamedNode, o rdf.Term) bool {
	t.Helper()
	added, err := g.Add(s, p, o)
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	return added
}

func TestGraph_AddIsIdempotent(t *testing.T) {
	g := NewGraph()

	if !mustAdd(t, g, bldg.Term("vav_1"), bf.Term("feeds"), bldg.Term("hvaczone_1")) {
		t.Error("Expected first Add to report a new statement")
	}
	if mustAdd(t, g, bldg.Term("vav_1"), bf.Term("feeds"), bldg.Term("hvaczone_1")) {
		t.Error("Expected second Add to report an existing statement")
	}

	if g.Len() != 1 {
		t.Errorf("Expected size 1, got %d", g.Len())
	}
}

func TestGraph_LenCountsDistinctTriples(t *testing.T) {
	g := NewGraph()
	room := bldg.Term("room_1")

	adds := []struct {
		p *rdf.NamedNode
		o rdf.Term
	}{
		{rdf.RDFType, brick.Term("Room")},
		{rdf.RDFSLabel, rdf.NewLiteral("Room 1")},
		{rdf.RDFSLabel, rdf.NewLiteralWithDatatype("Room 1", rdf.XSDString)}, // same literal
		{rdf.RDFSLabel, rdf.NewLiteralWithLanguage("Room 1", "en")},
		{rdf.RDFSLabel, rdf.NewLiteralWithLanguage("Room 1", "EN")}, // same literal
		{bf.Term("isPartOf"), bldg.Term("floor_1")},
		{bf.Term("isPartOf"), rdf.NewLiteral(string(bldg) + "floor_1")}, // literal, not IRI
		{rdf.RDFType, brick.Term("Room")},
	}
	for _, add := range adds {
		mustAdd(t, g, room, add.p, add.o)
	}

	if g.Len() != 5 {
		t.Errorf("Expected 5 distinct triples, got %d", g.Len())
	}
	if len(g.Triples()) != g.Len() {
		t.Errorf("Expected Triples() to return %d triples, got %d", g.Len(), len(g.Triples()))
	}
	if !g.Contains(room, rdf.RDFSLabel, rdf.NewLiteral("Room 1")) {
		t.Error("Expected graph to contain the label")
	}
	if g.Contains(room, rdf.RDFSLabel, rdf.NewLiteral("Room 2")) {
		t.Error("Expected graph not to contain an unknown label")
	}
}

func TestGraph_TriplesInsertionOrder(t *testing.T) {
	g := NewGraph()
	mustAdd(t, g, bldg.Term("b"), rdf.RDFType, brick.Term("AHU"))
	mustAdd(t, g, bldg.Term("a"), rdf.RDFType, brick.Term("VAV"))

	triples := g.Triples()
	if triples[0].Subject.IRI != string(bldg)+"b" || triples[1].Subject.IRI != string(bldg)+"a" {
		t.Errorf("Expected insertion order, got %s then %s", triples[0], triples[1])
	}

	// The returned slice is a copy
	triples[0] = nil
	if g.Triples()[0] == nil {
		t.Error("Triples() exposed internal storage")
	}
}

func TestGraph_AddRejectsMalformedTerms(t *testing.T) {
	g := NewGraph()
	tests := []struct {
		name string
		s, p *rdf.NamedNode
		o    rdf.Term
		want error
	}{
		{"empty subject", rdf.NewNamedNode(""), rdf.RDFType, brick.Term("Room"), ErrEmptyIdentifier},
		{"empty predicate", bldg.Term("x"), rdf.NewNamedNode(""), brick.Term("Room"), ErrEmptyIdentifier},
		{"empty object", bldg.Term("x"), rdf.RDFType, rdf.NewNamedNode(""), ErrEmptyIdentifier},
		{"nil subject", nil, rdf.RDFType, brick.Term("Room"), ErrNilTerm},
		{"nil object", bldg.Term("x"), rdf.RDFType, nil, ErrNilTerm},
		{"empty datatype", bldg.Term("x"), rdf.RDFSLabel, rdf.NewLiteralWithDatatype("1", rdf.NewNamedNode("")), ErrEmptyIdentifier},
		{"language tag with space", bldg.Term("x"), rdf.RDFSLabel, rdf.NewLiteralWithLanguage("x", "en us"), ErrInvalidLanguage},
		{"language tag with underscore", bldg.Term("x"), rdf.RDFSLabel, rdf.NewLiteralWithLanguage("x", "en_US"), ErrInvalidLanguage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := g.Add(tt.s, tt.p, tt.o)
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}

	if g.Len() != 0 {
		t.Errorf("Expected rejected statements not to be stored, got %d", g.Len())
	}
}

func TestGraph_BindOverwrites(t *testing.T) {
	g := NewGraph()
	g.Bind("ex", "http://example.org/old#")
	g.Bind("ex", "http://example.org/new#")

	ns := g.Namespaces()
	if ns["ex"] != "http://example.org/new#" {
		t.Errorf("Expected rebinding to overwrite, got %s", ns["ex"])
	}

	// Namespaces returns a copy
	ns["other"] = "http://other.org/"
	if _, ok := g.Namespaces()["other"]; ok {
		t.Error("Namespaces() exposed internal map")
	}
}

func TestGraph_SerializeEmpty(t *testing.T) {
	g := NewGraph()
	g.Bind("bldg", string(bldg))
	g.Bind("brick", string(brick))

	data, err := g.Serialize(rdf.FormatTurtle)
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	expected := `@prefix bldg: <http://buildsys.org/ontologies/building_example#> .
@prefix brick: <https://brickschema.org/schema/1.0.1/Brick#> .
`
	if string(data) != expected {
		t.Errorf("Expected only prefix declarations, got:\n%s", data)
	}
}

func TestGraph_SerializeAbbreviates(t *testing.T) {
	g := NewGraph()
	g.Bind("bldg", "http://buildsys.org/ontologies/building_example#")
	g.Bind("rdfs", string(rdf.RDFS))
	mustAdd(t, g, bldg.Term("room_1"), rdf.RDFSLabel, rdf.NewLiteral("Room 1"))

	data, err := g.Serialize(rdf.FormatTurtle)
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	out := string(data)
	if !strings.Contains(out, `bldg:room_1 rdfs:label "Room 1" .`) {
		t.Errorf("Expected abbreviated statement, got:\n%s", out)
	}
	if strings.Contains(out, "<http://buildsys.org/ontologies/building_example#room_1>") {
		t.Errorf("Expected subject not to be written in full, got:\n%s", out)
	}
}

func TestGraph_SerializeUnboundIRIsInFull(t *testing.T) {
	g := NewGraph()
	mustAdd(t, g, bldg.Term("ahu_1"), bf.Term("feeds"), bldg.Term("vav_1"))

	data, err := g.Serialize(rdf.FormatTurtle)
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	expected := "<http://buildsys.org/ontologies/building_example#ahu_1> " +
		"<https://brickschema.org/schema/1.0.1/BrickFrame#feeds> " +
		"<http://buildsys.org/ontologies/building_example#vav_1> .\n"
	if string(data) != expected {
		t.Errorf("Unexpected output:\n%s\nexpected:\n%s", data, expected)
	}
}

func TestGraph_SerializeUnsupportedFormat(t *testing.T) {
	g := NewGraph()
	g.Bind("bldg", string(bldg))
	mustAdd(t, g, bldg.Term("vav_1"), bf.Term("feeds"), bldg.Term("hvaczone_1"))

	before, err := g.Serialize(rdf.FormatTurtle)
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	data, err := g.Serialize(rdf.Format("nonexistent"))
	if err == nil {
		t.Fatal("Expected error for unknown format")
	}
	var formatErr *rdf.UnsupportedFormatError
	if !errors.As(err, &formatErr) {
		t.Fatalf("Expected UnsupportedFormatError, got %T: %v", err, err)
	}
	if data != nil {
		t.Errorf("Expected no output, got %q", data)
	}

	if g.Len() != 1 {
		t.Errorf("Expected store to be unchanged, size %d", g.Len())
	}
	after, _ := g.Serialize(rdf.FormatTurtle)
	if !bytes.Equal(before, after) {
		t.Error("Expected serialization to be unchanged after failed call")
	}

	var buf bytes.Buffer
	if err := g.Write(&buf, rdf.Format("nonexistent")); !errors.Is(err, rdf.ErrUnsupportedFormat) {
		t.Errorf("Expected ErrUnsupportedFormat from Write, got %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("Expected nothing written, got %q", buf.String())
	}
}

func TestGraph_SerializeDeterministic(t *testing.T) {
	build := func(reverse bool) *Graph {
		g := NewGraph()
		g.Bind("bldg", string(bldg))
		g.Bind("brick", string(brick))
		g.Bind("bf", string(bf))

		triples := []*rdf.Triple{
			rdf.NewTriple(bldg.Term("room_1"), rdf.RDFType, brick.Term("Room")),
			rdf.NewTriple(bldg.Term("room_1"), bf.Term("isPartOf"), bldg.Term("hvaczone_1")),
			rdf.NewTriple(bldg.Term("room_1"), bf.Term("isPartOf"), bldg.Term("floor_1")),
			rdf.NewTriple(bldg.Term("ahu_1"), bf.Term("feeds"), bldg.Term("vav_1")),
			rdf.NewTriple(bldg.Term("vav_1"), bf.Term("feeds"), bldg.Term("hvaczone_1")),
		}
		if reverse {
			for i, j := 0, len(triples)-1; i < j; i, j = i+1, j-1 {
				triples[i], triples[j] = triples[j], triples[i]
			}
		}
		for _, triple := range triples {
			if _, err := g.AddTriple(triple); err != nil {
				t.Fatalf("AddTriple failed: %v", err)
			}
		}
		return g
	}

	for _, format := range rdf.SupportedFormats() {
		g := build(false)
		first, err := g.Serialize(format)
		if err != nil {
			t.Fatalf("Serialize(%s) failed: %v", format, err)
		}
		second, _ := g.Serialize(format)
		if !bytes.Equal(first, second) {
			t.Errorf("%s: expected byte-identical output on repeated calls", format)
		}

		reversed, _ := build(true).Serialize(format)
		if !bytes.Equal(first, reversed) {
			t.Errorf("%s: expected output independent of insertion order:\n%s\nvs\n%s", format, first, reversed)
		}
	}
}

func TestGraph_TurtleRoundTrip(t *testing.T) {
	g := NewGraph()
	g.Bind("bldg", string(bldg))
	g.Bind("brick", string(brick))
	g.Bind("rdfs", string(rdf.RDFS))
	mustAdd(t, g, bldg.Term("room_1"), rdf.RDFType, brick.Term("Room"))
	mustAdd(t, g, bldg.Term("room_1"), rdf.RDFSLabel, rdf.NewLiteral("Room 1"))
	mustAdd(t, g, bldg.Term("room_1"), rdf.RDFSLabel, rdf.NewLiteralWithLanguage("Raum 1", "de"))
	mustAdd(t, g, bldg.Term("room_1"), bf.Term("isPartOf"), bldg.Term("floor_1"))

	data, err := g.Serialize(rdf.FormatTurtle)
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	parsed, err := ReadTurtle(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ReadTurtle failed: %v\n%s", err, data)
	}

	if !rdf.AreGraphsIsomorphic(g.Triples(), parsed.Triples()) {
		missing, extra := rdf.Diff(g.Triples(), parsed.Triples())
		t.Fatalf("Round trip changed the graph: missing %v, extra %v", missing, extra)
	}
	if parsed.Namespaces()["bldg"] != string(bldg) {
		t.Errorf("Expected bldg binding to survive, got %v", parsed.Namespaces())
	}

	again, _ := parsed.Serialize(rdf.FormatTurtle)
	if !bytes.Equal(data, again) {
		t.Errorf("Expected identical output after round trip:\n%s\nvs\n%s", data, again)
	}
}

func TestGraph_TurtleRoundTripEscapedIRIs(t *testing.T) {
	ex := rdf.Namespace("http://example.org/")
	g := NewGraph()
	g.Bind("ex", string(ex))
	mustAdd(t, g, ex.Term("a b"), ex.Term("p"), ex.Term("o>x"))
	mustAdd(t, g, ex.Term(`q"uote`), ex.Term("p"), ex.Term("{braces}|^`"))
	mustAdd(t, g, ex.Term("tab\there"), ex.Term("back\\slash"), ex.Term("<angle>"))
	mustAdd(t, g, ex.Term("s"), ex.Term("p"), rdf.NewLiteralWithDatatype("1", ex.Term("odd type")))

	data, err := g.Serialize(rdf.FormatTurtle)
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	if !strings.Contains(string(data), `<http://example.org/a\u0020b> ex:p <http://example.org/o\u003Ex> .`) {
		t.Errorf("Expected escaped IRIs, got:\n%s", data)
	}

	parsed, err := ReadTurtle(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ReadTurtle failed: %v\n%s", err, data)
	}
	if !rdf.AreGraphsIsomorphic(g.Triples(), parsed.Triples()) {
		missing, extra := rdf.Diff(g.Triples(), parsed.Triples())
		t.Errorf("Round trip changed the graph: missing %v, extra %v", missing, extra)
	}

	nt, err := g.Serialize(rdf.FormatNTriples)
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	if strings.Contains(string(nt), "a b") || strings.Contains(string(nt), "o>x") {
		t.Errorf("Expected N-Triples IRIs to be escaped, got:\n%s", nt)
	}
}

func TestGraph_SerializeSkipsUndeclarablePrefixes(t *testing.T) {
	g := NewGraph()
	g.Bind("my prefix", string(bldg))
	g.Bind("empty", "")
	g.Bind("1st", string(brick))
	g.Bind("", string(bf))
	mustAdd(t, g, bldg.Term("ahu_1"), bf.Term("feeds"), bldg.Term("vav_1"))
	mustAdd(t, g, bldg.Term("ahu_1"), rdf.RDFType, brick.Term("AHU"))

	data, err := g.Serialize(rdf.FormatTurtle)
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	expected := `@prefix : <https://brickschema.org/schema/1.0.1/BrickFrame#> .

<http://buildsys.org/ontologies/building_example#ahu_1> a <https://brickschema.org/schema/1.0.1/Brick#AHU> ;
    :feeds <http://buildsys.org/ontologies/building_example#vav_1> .
`
	if string(data) != expected {
		t.Errorf("Unexpected output:\n%s\nexpected:\n%s", data, expected)
	}

	parsed, err := ReadTurtle(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ReadTurtle failed: %v\n%s", err, data)
	}
	if !rdf.AreGraphsIsomorphic(g.Triples(), parsed.Triples()) {
		t.Errorf("Round trip changed the graph:\n%s", data)
	}

	// The bindings themselves are kept
	if len(g.Namespaces()) != 4 {
		t.Errorf("Expected all 4 bindings to be kept, got %v", g.Namespaces())
	}
}

func TestGraph_WriteFile(t *testing.T) {
	g := NewGraph()
	g.Bind("bldg", string(bldg))
	mustAdd(t, g, bldg.Term("ahu_1"), bf.Term("feeds"), bldg.Term("vav_1"))

	path := filepath.Join(t.TempDir(), "example.ttl")
	if err := g.WriteFile(path, rdf.FormatTurtle); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	written, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	expected, _ := g.Serialize(rdf.FormatTurtle)
	if !bytes.Equal(written, expected) {
		t.Errorf("File content differs from Serialize output:\n%s", written)
	}

	loaded, err := ReadTurtleFile(path)
	if err != nil {
		t.Fatalf("ReadTurtleFile failed: %v", err)
	}
	if loaded.Len() != 1 {
		t.Errorf("Expected 1 triple from file, got %d", loaded.Len())
	}
}

func TestGraph_WriteFileFailures(t *testing.T) {
	g := NewGraph()
	dir := t.TempDir()

	// Unsupported format: no file is created
	path := filepath.Join(dir, "out.ttl")
	if err := g.WriteFile(path, rdf.Format("nonexistent")); !errors.Is(err, rdf.ErrUnsupportedFormat) {
		t.Fatalf("Expected ErrUnsupportedFormat, got %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("Expected no file to be created, stat returned %v", err)
	}

	// Unwritable destination surfaces the I/O error
	missing := filepath.Join(dir, "missing", "out.ttl")
	err := g.WriteFile(missing, rdf.FormatTurtle)
	if err == nil {
		t.Fatal("Expected error writing into a missing directory")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected wrapped ErrNotExist, got %v", err)
	}
}

func TestReadTurtle_InvalidInput(t *testing.T) {
	if _, err := ReadTurtle(strings.NewReader(`bldg:x a brick:Room .`)); err == nil {
		t.Error("Expected error for undefined prefixes")
	}
	if _, err := ReadTurtleFile(filepath.Join(t.TempDir(), "absent.ttl")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected ErrNotExist, got %v", err)
	}
}
