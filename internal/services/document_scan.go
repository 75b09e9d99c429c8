package services

import (
	"context"
	"iter"

	"logistics-scheduler-service/internal/ports"
)

// scanCollection walks a collection in id order, pageSize documents per
// query. Iteration stops after yielding an error.
func scanCollection(ctx context.Context, store ports.DocumentStore, collection string, pageSize int) iter.Seq2[ports.Document, error] {
	return func(yield func(ports.Document, error) bool) {
		after := ""
		for {
			page, err := store.Query(ctx, collection, ports.Query{StartAfter: after, Limit: pageSize})
			if err != nil {
				yield(ports.Document{}, err)
				return
			}
			for _, doc := range page {
				if !yield(doc, nil) {
					return
				}
			}
			if len(page) < pageSize {
				return
			}
			after = page[len(page)-1].ID
		}
	}
}
