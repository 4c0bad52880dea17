package store

import (
	"fmt"

	"github.com/buildsys/brickgen/pkg/rdf"
)

// DiskStore persists a whole graph as a snapshot in a key-value Storage.
// Terms are stored once in the id2str table and statements as encoded keys
// in the spo table.
type DiskStore struct {
	storage Storage
	encoder TermEncoder
	decoder TermDecoder
}

// NewDiskStore creates a snapshot store on top of storage
func NewDiskStore(storage Storage, encoder TermEncoder, decoder TermDecoder) *DiskStore {
	return &DiskStore{
		storage: storage,
		encoder: encoder,
		decoder: decoder,
	}
}

// Close closes the underlying storage
func (s *DiskStore) Close() error {
	return s.storage.Close()
}

// Save replaces the stored snapshot with g in a single transaction
func (s *DiskStore) Save(g *Graph) error {
	txn, err := s.storage.Begin(true)
	if err != nil {
		return err
	}
	defer txn.Rollback()

	for _, table := range []Table{TableSPO, TableID2Str, TableNamespaces} {
		if err := clearTable(txn, table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	for _, triple := range g.triples {
		if err := s.insertTripleInTxn(txn, triple); err != nil {
			return fmt.Errorf("failed to store %s: %w", triple, err)
		}
	}

	for prefix, base := range g.namespaces {
		if err := txn.Set(TableNamespaces, []byte(prefix), []byte(base)); err != nil {
			return fmt.Errorf("failed to store prefix %q: %w", prefix, err)
		}
	}

	if err := txn.Commit(); err != nil {
		return err
	}
	return s.storage.Sync()
}

// insertTripleInTxn writes the term strings and the spo key of one triple
func (s *DiskStore) insertTripleInTxn(txn Transaction, triple *rdf.Triple) error {
	terms := []rdf.Term{triple.Subject, triple.Predicate, triple.Object}
	encoded := make([]EncodedTerm, len(terms))

	for i, term := range terms {
		enc, str, err := s.encoder.EncodeTerm(term)
		if err != nil {
			return fmt.Errorf("failed to encode term: %w", err)
		}
		if err := txn.Set(TableID2Str, enc[1:], []byte(str)); err != nil {
			return err
		}
		encoded[i] = enc
	}

	// Empty value, the key is the statement
	return txn.Set(TableSPO, s.encoder.EncodeTripleKey(encoded...), []byte{})
}

// Load rebuilds the stored snapshot as a graph
func (s *DiskStore) Load() (*Graph, error) {
	txn, err := s.storage.Begin(false)
	if err != nil {
		return nil, err
	}
	defer txn.Rollback()

	g := NewGraph()

	nsIter, err := txn.Scan(TableNamespaces, nil, nil)
	if err != nil {
		return nil, err
	}
	for nsIter.Next() {
		value, err := nsIter.Value()
		if err != nil {
			nsIter.Close()
			return nil, err
		}
		g.Bind(string(nsIter.Key()), string(value))
	}
	nsIter.Close()

	keys, err := collectKeys(txn, TableSPO)
	if err != nil {
		return nil, err
	}

	cache := make(map[EncodedTerm]rdf.Term)
	for _, key := range keys {
		triple, err := s.decodeTriple(txn, key, cache)
		if err != nil {
			return nil, err
		}
		if _, err := g.AddTriple(triple); err != nil {
			return nil, fmt.Errorf("invalid stored triple %s: %w", triple, err)
		}
	}

	return g, nil
}

func (s *DiskStore) decodeTriple(txn Transaction, key []byte, cache map[EncodedTerm]rdf.Term) (*rdf.Triple, error) {
	encoded, err := s.decoder.DecodeTripleKey(key)
	if err != nil {
		return nil, err
	}
	if len(encoded) != 3 {
		return nil, fmt.Errorf("expected 3 terms in spo key, got %d", len(encoded))
	}

	terms := make([]rdf.Term, 3)
	for i, enc := range encoded {
		if term, ok := cache[enc]; ok {
			terms[i] = term
			continue
		}

		str, err := txn.Get(TableID2Str, enc[1:])
		if err != nil {
			return nil, fmt.Errorf("failed to look up term string: %w", err)
		}
		term, err := s.decoder.DecodeTerm(enc, string(str))
		if err != nil {
			return nil, err
		}
		cache[enc] = term
		terms[i] = term
	}

	subject, ok := terms[0].(*rdf.NamedNode)
	if !ok {
		return nil, fmt.Errorf("stored subject is not an IRI: %s", terms[0])
	}
	predicate, ok := terms[1].(*rdf.NamedNode)
	if !ok {
		return nil, fmt.Errorf("stored predicate is not an IRI: %s", terms[1])
	}
	return rdf.NewTriple(subject, predicate, terms[2]), nil
}

// Count returns the number of stored statements
func (s *DiskStore) Count() (int, error) {
	txn, err := s.storage.Begin(false)
	if err != nil {
		return 0, err
	}
	defer txn.Rollback()

	keys, err := collectKeys(txn, TableSPO)
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}

// collectKeys copies every key of a table; iterator keys are only valid until Next
func collectKeys(txn Transaction, table Table) ([][]byte, error) {
	iter, err := txn.Scan(table, nil, nil)
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var keys [][]byte
	for iter.Next() {
		keys = append(keys, append([]byte{}, iter.Key()...))
	}
	return keys, nil
}

func clearTable(txn Transaction, table Table) error {
	keys, err := collectKeys(txn, table)
	if err != nil {
		return err
	}
	for _, key := range keys {
		if err := txn.Delete(table, key); err != nil {
			return err
		}
	}
	return nil
}
