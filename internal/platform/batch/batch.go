// Package batch holds storage-agnostic helpers for bounded atomic writes.
package batch

import (
	"context"
	"errors"
	"fmt"
	"iter"
)

// CommitChunked feeds items to commit in groups of at most size, in order.
// It returns the number of commits issued. On error, earlier chunks stay
// committed and the failing chunk is reported.
func CommitChunked[W any](
	ctx context.Context,
	items iter.Seq[W],
	size int,
	commit func(ctx context.Context, chunk []W) error,
) (int, error) {
	if size <= 0 {
		return 0, errors.New("commit chunked: size must be positive")
	}

	commits := 0
	chunk := make([]W, 0, size)

	flush := func() error {
		if len(chunk) == 0 {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := commit(ctx, chunk); err != nil {
			return fmt.Errorf("commit chunk %d: %w", commits+1, err)
		}
		commits++
		chunk = make([]W, 0, size)
		return nil
	}

	for item := range items {
		chunk = append(chunk, item)
		if len(chunk) == size {
			if err := flush(); err != nil {
				return commits, err
			}
		}
	}

	if err := flush(); err != nil {
		return commits, err
	}

	return commits, nil
}

// DeleteByPage repeatedly fetches up to pageSize items after the last seen
// key and deletes them, stopping on the first empty page. It returns the
// number of items deleted. The cursor advances even if del leaves items in
// place, so the loop always terminates on a finite keyspace.
func DeleteByPage[T any](
	ctx context.Context,
	pageSize int,
	fetch func(ctx context.Context, after string, limit int) ([]T, error),
	key func(T) string,
	del func(ctx context.Context, page []T) error,
) (int, error) {
	if pageSize <= 0 {
		return 0, errors.New("delete by page: page size must be positive")
	}

	deleted := 0
	after := ""

	for {
		if err := ctx.Err(); err != nil {
			return deleted, err
		}

		page, err := fetch(ctx, after, pageSize)
		if err != nil {
			return deleted, fmt.Errorf("fetch page after %q: %w", after, err)
		}
		if len(page) == 0 {
			return deleted, nil
		}

		if err := del(ctx, page); err != nil {
			return deleted, fmt.Errorf("delete page after %q: %w", after, err)
		}

		deleted += len(page)
		after = key(page[len(page)-1])
	}
}
