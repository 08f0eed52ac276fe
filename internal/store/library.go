// Package store holds the library membership index and the play history.
package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	lru "github.com/hashicorp/golang-lru/v2"

	"tunedeck/internal/core"
)

// DefaultFalsePositiveRate is the bloom filter error rate used by the index.
const DefaultFalsePositiveRate = 0.001

// LibraryIndex answers "is this item saved in the user's library" without a
// round trip. Explicit answers live in a bounded LRU. After Load has been
// given the full saved library, the bloom filter answers "not saved" for ids
// it has never seen.
type LibraryIndex struct {
	entries           *lru.Cache[string, bool]
	bloom             *bloom.BloomFilter
	mutex             sync.RWMutex
	maxEntries        int
	falsePositiveRate float64
	complete          bool
}

// NewLibraryIndex creates an index holding at most maxEntries answers.
func NewLibraryIndex(maxEntries int, falsePositiveRate float64) *LibraryIndex {
	if maxEntries <= 0 {
		maxEntries = 1
	}
	if falsePositiveRate <= 0 || falsePositiveRate >= 1 {
		falsePositiveRate = DefaultFalsePositiveRate
	}
	entries, _ := lru.New[string, bool](maxEntries)

	return &LibraryIndex{
		entries:           entries,
		bloom:             bloom.NewWithEstimates(uint(maxEntries), falsePositiveRate),
		maxEntries:        maxEntries,
		falsePositiveRate: falsePositiveRate,
	}
}

// Set records whether id is saved.
func (li *LibraryIndex) Set(id string, saved bool) {
	if id == "" {
		return
	}
	li.mutex.Lock()
	defer li.mutex.Unlock()

	li.entries.Add(id, saved)
	if saved {
		li.bloom.AddString(id)
	}
}

// Lookup returns the saved flag of id and whether the index knows it.
func (li *LibraryIndex) Lookup(id string) (saved, known bool) {
	li.mutex.RLock()
	defer li.mutex.RUnlock()

	if saved, ok := li.entries.Peek(id); ok {
		return saved, true
	}
	if li.complete && !li.bloom.TestString(id) {
		return false, true
	}
	return false, false
}

// Load installs the complete set of saved ids. Answers recorded with Set
// are kept since they are at least as fresh as the listing.
func (li *LibraryIndex) Load(savedIDs []string) {
	li.mutex.Lock()
	defer li.mutex.Unlock()

	filter := bloom.NewWithEstimates(uint(max(li.maxEntries, len(savedIDs))), li.falsePositiveRate)
	for _, id := range li.entries.Keys() {
		if saved, ok := li.entries.Peek(id); ok && saved {
			filter.AddString(id)
		}
	}
	for _, id := range savedIDs {
		if id == "" {
			continue
		}
		if saved, ok := li.entries.Peek(id); ok && !saved {
			continue
		}
		li.entries.ContainsOrAdd(id, true)
		filter.AddString(id)
	}
	li.bloom = filter
	li.complete = true
}

// SavedTracksLister pages through the user's saved tracks.
type SavedTracksLister interface {
	SavedTracks(ctx context.Context, offset int) (*core.Page[core.Item], error)
}

// LoadSaved reads every page of saved tracks and loads their ids. The index
// stays incomplete when a page fails.
func (li *LibraryIndex) LoadSaved(ctx context.Context, lister SavedTracksLister) (int, error) {
	var ids []string
	offset := 0
	for {
		page, err := lister.SavedTracks(ctx, offset)
		if err != nil {
			return 0, fmt.Errorf("failed to list saved tracks at offset %d: %w", offset, err)
		}
		for _, item := range page.Items {
			ids = append(ids, item.ID)
		}
		if !page.Next || len(page.Items) == 0 {
			break
		}
		offset += len(page.Items)
	}

	li.Load(ids)
	return len(ids), nil
}

// Size returns the number of explicit answers held.
func (li *LibraryIndex) Size() int {
	li.mutex.RLock()
	defer li.mutex.RUnlock()
	return li.entries.Len()
}
