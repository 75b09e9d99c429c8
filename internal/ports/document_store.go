package ports

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrDocumentNotFound   = errors.New("document not found")
	ErrPreconditionFailed = errors.New("document precondition failed")
)

// PreconditionError names the document whose precondition rejected a commit.
// It matches ErrPreconditionFailed under errors.Is.
type PreconditionError struct {
	Collection string
	ID         string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s/%s: %s", e.Collection, e.ID, ErrPreconditionFailed)
}

func (e *PreconditionError) Unwrap() error { return ErrPreconditionFailed }

// Document is one record in a hierarchical collection, addressed by its
// collection path and id.
type Document struct {
	Collection string
	ID         string
	Data       map[string]any
}

// Path is "{collection}/{id}".
func (d Document) Path() string {
	return d.Collection + "/" + d.ID
}

type FilterOp string

const (
	OpEqual           FilterOp = "=="
	OpLessThan        FilterOp = "<"
	OpLessThanOrEqual FilterOp = "<="
)

// Filter compares a top-level field. String values compare byte-wise.
type Filter struct {
	Field string
	Op    FilterOp
	Value any
}

// Query results are ordered by document id. StartAfter is an exclusive id
// cursor; a zero Limit means no limit.
type Query struct {
	Filters    []Filter
	StartAfter string
	Limit      int
}

type WriteKind int

const (
	WriteSet WriteKind = iota
	WriteMerge
	WriteDelete
)

// Write is one mutation inside an atomic commit. A non-empty Precondition
// requires the current document to contain those field values; otherwise the
// whole commit fails with a *PreconditionError for that write.
type Write struct {
	Kind         WriteKind
	Collection   string
	ID           string
	Data         map[string]any
	Precondition map[string]any
}

func SetWrite(collection, id string, data map[string]any) Write {
	return Write{Kind: WriteSet, Collection: collection, ID: id, Data: data}
}

func MergeWrite(collection, id string, data map[string]any) Write {
	return Write{Kind: WriteMerge, Collection: collection, ID: id, Data: data}
}

func DeleteWrite(collection, id string) Write {
	return Write{Kind: WriteDelete, Collection: collection, ID: id}
}

// Contract for the hierarchical document database the jobs run against.
type DocumentStore interface {
	// Return a single document or ErrDocumentNotFound.
	Get(ctx context.Context, collection, id string) (Document, error)
	// Query one collection.
	Query(ctx context.Context, collection string, q Query) ([]Document, error)
	// Query every collection whose last path segment is group.
	QueryGroup(ctx context.Context, group string, q Query) ([]Document, error)
	// Apply all writes atomically.
	Commit(ctx context.Context, writes []Write) error
}
