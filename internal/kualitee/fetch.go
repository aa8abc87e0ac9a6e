// SPDX-License-Identifier: Apache-2.0

package kualitee

import (
	"context"
	"log/slog"
	"sync"

	"github.com/panjf2000/ants/v2"
)

// DefaultFetchWorkers bounds concurrent detail requests.
const DefaultFetchWorkers = 10

// FetchFunc loads one entity; nil means not found or failed.
type FetchFunc[T any] func(ctx context.Context, id string) *T

// FetchAll runs fetch for every distinct id with at most limit calls in flight and
// returns one entry per id. Each worker writes only its own slot, so no locking is
// needed; the map is assembled after every worker has finished. Nothing is retried.
func FetchAll[T any](ctx context.Context, ids []string, limit int, fetch FetchFunc[T], logger *slog.Logger) map[string]*T {
	unique := dedupe(ids)
	results := make(map[string]*T, len(unique))
	if len(unique) == 0 {
		return results
	}
	if limit <= 0 {
		limit = DefaultFetchWorkers
	}

	slots := make([]*T, len(unique))
	var wg sync.WaitGroup

	pool, err := ants.NewPool(limit, ants.WithPanicHandler(func(p interface{}) {
		if logger != nil {
			logger.Error("fetch worker panicked", "panic", p)
		}
	}))
	if err != nil {
		if logger != nil {
			logger.Error("could not create fetch pool, fetching sequentially", "error", err.Error())
		}
		for i, id := range unique {
			slots[i] = fetch(ctx, id)
		}
	} else {
		defer pool.Release()
		for i, id := range unique {
			wg.Add(1)
			i, id := i, id
			submitErr := pool.Submit(func() {
				defer wg.Done()
				slots[i] = fetch(ctx, id)
			})
			if submitErr != nil {
				wg.Done()
				if logger != nil {
					logger.Error("could not schedule fetch", "id", id, "error", submitErr)
				}
			}
		}
		wg.Wait()
	}

	for i, id := range unique {
		results[id] = slots[i]
	}
	return results
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
