package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"tunedeck/internal/core"
)

func TestLibraryIndex_Basic(t *testing.T) {
	index := NewLibraryIndex(100, 0.001)

	// Test empty index
	if _, known := index.Lookup("track1"); known {
		t.Error("Empty index should not know any track")
	}

	if index.Size() != 0 {
		t.Errorf("Empty index size should be 0, got %d", index.Size())
	}

	index.Set("track1", true)
	index.Set("track2", false)

	if saved, known := index.Lookup("track1"); !saved || !known {
		t.Errorf("Lookup(track1) = (%v, %v), expected (true, true)", saved, known)
	}
	if saved, known := index.Lookup("track2"); saved || !known {
		t.Errorf("Lookup(track2) = (%v, %v), expected (false, true)", saved, known)
	}

	// Overwriting an answer keeps a single entry
	index.Set("track1", false)
	if saved, _ := index.Lookup("track1"); saved {
		t.Error("track1 should be unsaved after Set(false)")
	}
	if index.Size() != 2 {
		t.Errorf("Index size should be 2, got %d", index.Size())
	}

	// Empty ids are ignored
	index.Set("", true)
	if index.Size() != 2 {
		t.Errorf("Index size should still be 2 after empty id, got %d", index.Size())
	}
}

func TestLibraryIndex_Load(t *testing.T) {
	index := NewLibraryIndex(100, 0.001)

	if _, known := index.Lookup("never-saved"); known {
		t.Error("Index should not be complete before Load")
	}

	index.Load([]string{"track1", "track2", ""})

	if index.Size() != 2 {
		t.Errorf("Index size should be 2 after loading, got %d", index.Size())
	}
	if saved, known := index.Lookup("track1"); !saved || !known {
		t.Errorf("Lookup(track1) = (%v, %v), expected (true, true)", saved, known)
	}

	// A complete index answers "not saved" for ids it never saw
	if saved, known := index.Lookup("never-saved"); saved || !known {
		t.Errorf("Lookup(never-saved) = (%v, %v), expected (false, true)", saved, known)
	}
}

func TestLibraryIndex_LoadKeepsExplicitAnswers(t *testing.T) {
	index := NewLibraryIndex(100, 0.001)
	index.Set("saved-meanwhile", true)
	index.Set("removed-meanwhile", false)

	// The listing was taken before both changes
	index.Load([]string{"removed-meanwhile", "track1"})

	if saved, known := index.Lookup("saved-meanwhile"); !saved || !known {
		t.Errorf("Lookup(saved-meanwhile) = (%v, %v), expected (true, true)", saved, known)
	}
	if saved, known := index.Lookup("removed-meanwhile"); saved || !known {
		t.Errorf("Lookup(removed-meanwhile) = (%v, %v), expected (false, true)", saved, known)
	}
	if saved, known := index.Lookup("track1"); !saved || !known {
		t.Errorf("Lookup(track1) = (%v, %v), expected (true, true)", saved, known)
	}
}

func TestLibraryIndex_RemoveAfterLoad(t *testing.T) {
	index := NewLibraryIndex(100, 0.001)
	index.Load([]string{"track1"})

	index.Set("track1", false)

	if saved, known := index.Lookup("track1"); saved || !known {
		t.Errorf("Lookup(track1) = (%v, %v), expected (false, true)", saved, known)
	}
}

type pagedLister struct {
	pages   [][]string
	failAt  int
	offsets []int
}

func (l *pagedLister) SavedTracks(_ context.Context, offset int) (*core.Page[core.Item], error) {
	l.offsets = append(l.offsets, offset)
	index := len(l.offsets) - 1
	if l.failAt > 0 && index == l.failAt {
		return nil, errors.New("rate limited")
	}

	page := &core.Page[core.Item]{Offset: offset, Next: index < len(l.pages)-1}
	for _, id := range l.pages[index] {
		page.Items = append(page.Items, core.Item{ID: id})
	}
	return page, nil
}

func TestLibraryIndex_LoadSaved(t *testing.T) {
	t.Run("Reads every page", func(t *testing.T) {
		index := NewLibraryIndex(100, 0.001)
		lister := &pagedLister{pages: [][]string{{"a", "b"}, {"c"}}}

		count, err := index.LoadSaved(context.Background(), lister)
		if err != nil {
			t.Fatalf("LoadSaved() error = %v", err)
		}
		if count != 3 {
			t.Errorf("LoadSaved() = %d, expected 3", count)
		}
		if fmt.Sprint(lister.offsets) != "[0 2]" {
			t.Errorf("offsets = %v, expected [0 2]", lister.offsets)
		}
		if saved, known := index.Lookup("c"); !saved || !known {
			t.Errorf("Lookup(c) = (%v, %v), expected (true, true)", saved, known)
		}
		if saved, known := index.Lookup("unsaved"); saved || !known {
			t.Errorf("Lookup(unsaved) = (%v, %v), expected (false, true)", saved, known)
		}
	})

	t.Run("A failed page leaves the index incomplete", func(t *testing.T) {
		index := NewLibraryIndex(100, 0.001)
		lister := &pagedLister{pages: [][]string{{"a"}, {"b"}}, failAt: 1}

		if _, err := index.LoadSaved(context.Background(), lister); err == nil {
			t.Fatal("LoadSaved() expected an error")
		}
		if _, known := index.Lookup("unsaved"); known {
			t.Error("Index should not be complete after a failed listing")
		}
	})
}

func TestLibraryIndex_Eviction(t *testing.T) {
	index := NewLibraryIndex(3, 0.001)

	for i := 0; i < 5; i++ {
		index.Set(fmt.Sprintf("track%d", i), false)
	}

	if index.Size() != 3 {
		t.Errorf("Index size should be capped at 3, got %d", index.Size())
	}
	if _, known := index.Lookup("track0"); known {
		t.Error("Oldest entry should have been evicted")
	}
	if _, known := index.Lookup("track4"); !known {
		t.Error("Newest entry should be kept")
	}
}

func TestLibraryIndex_Concurrency(t *testing.T) {
	index := NewLibraryIndex(1000, 0.001)

	var wg sync.WaitGroup
	for g := 0; g < 10; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				id := fmt.Sprintf("g%d-track%d", g, i)
				index.Set(id, i%2 == 0)
				index.Lookup(id)
			}
		}(g)
	}
	wg.Wait()

	if index.Size() != 1000 {
		t.Errorf("Index size should be 1000, got %d", index.Size())
	}
}
