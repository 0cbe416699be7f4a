package cache

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// PopularTagLimit caps the number of tags returned by PopularTags.
const PopularTagLimit = 20

// AggregateScanner provides the store scans backing the aggregate index.
type AggregateScanner interface {
	// DistinctCategories returns the distinct non-empty category values.
	DistinctCategories(ctx context.Context) ([]string, error)
	// TagStrings returns every post's raw tag blob in stable (id) order.
	TagStrings(ctx context.Context) ([]string, error)
}

// TagIndex is a process-wide cache of two derived aggregates: the distinct
// category set and the most frequent tags. Each slot is populated lazily on
// first read and reset by Invalidate, which post creation calls before its
// response is sent. There is no TTL.
//
// Each slot's read-check and write-back are single critical sections under
// one mutex; the store scan runs outside it. Concurrent cold reads may scan
// redundantly and overwrite each other, which is fine: results are
// deterministic for a given store state.
type TagIndex struct {
	scanner AggregateScanner

	mu            sync.Mutex
	categories    []string
	popularTags   []string
	hasCategories bool
	hasTags       bool
}

// NewTagIndex returns an unpopulated index backed by the given scanner.
func NewTagIndex(scanner AggregateScanner) *TagIndex {
	return &TagIndex{scanner: scanner}
}

// Categories returns the distinct categories, scanning the store if the slot
// is unpopulated.
func (i *TagIndex) Categories(ctx context.Context) ([]string, error) {
	i.mu.Lock()
	if i.hasCategories {
		cats := i.categories
		i.mu.Unlock()
		return cats, nil
	}
	i.mu.Unlock()

	cats, err := i.scanner.DistinctCategories(ctx)
	if err != nil {
		return nil, err
	}
	if cats == nil {
		cats = []string{}
	}

	i.mu.Lock()
	i.categories = cats
	i.hasCategories = true
	i.mu.Unlock()

	return cats, nil
}

// PopularTags returns up to PopularTagLimit tags ordered by descending
// frequency across all posts, scanning and aggregating if the slot is
// unpopulated. Ties keep first-encountered order.
func (i *TagIndex) PopularTags(ctx context.Context) ([]string, error) {
	i.mu.Lock()
	if i.hasTags {
		tags := i.popularTags
		i.mu.Unlock()
		return tags, nil
	}
	i.mu.Unlock()

	blobs, err := i.scanner.TagStrings(ctx)
	if err != nil {
		return nil, err
	}
	tags := rankTags(blobs, PopularTagLimit)

	i.mu.Lock()
	i.popularTags = tags
	i.hasTags = true
	i.mu.Unlock()

	return tags, nil
}

// Invalidate resets both slots to unpopulated.
func (i *TagIndex) Invalidate() {
	i.mu.Lock()
	i.categories = nil
	i.popularTags = nil
	i.hasCategories = false
	i.hasTags = false
	i.mu.Unlock()
}

// rankTags splits each comma-joined blob into trimmed tokens, counts token
// frequency, and returns the top limit tokens by descending count. The sort
// is stable so equal counts stay in first-encountered order.
func rankTags(blobs []string, limit int) []string {
	counts := make(map[string]int)
	order := make([]string, 0)

	for _, blob := range blobs {
		for _, raw := range strings.Split(blob, ",") {
			tag := strings.TrimSpace(raw)
			if tag == "" {
				continue
			}
			if _, seen := counts[tag]; !seen {
				order = append(order, tag)
			}
			counts[tag]++
		}
	}

	sort.SliceStable(order, func(a, b int) bool {
		return counts[order[a]] > counts[order[b]]
	})

	if len(order) > limit {
		order = order[:limit]
	}
	return order
}
