package core

import (
	"sync"
	"time"
)

// PlayStatus mirrors the HTTP-like result of a play attempt.
type PlayStatus int

const (
	PlayStatusOK             PlayStatus = 200
	PlayStatusFailed         PlayStatus = 400
	PlayStatusDeviceNotFound PlayStatus = 404
)

func (s PlayStatus) String() string {
	switch s {
	case PlayStatusOK:
		return "ok"
	case PlayStatusDeviceNotFound:
		return "device_not_found"
	default:
		return "failed"
	}
}

// PlaybackState is the single view of playback shared by every component,
// whichever backend produced it.
type PlaybackState struct {
	CurrentlyPlaying  *Item
	IsPlaying         bool
	Position          time.Duration
	Duration          time.Duration
	DeviceID          string
	PlaylistPlayingID string
	PlayedSource      string
	NextTracks        []Item
	PreviousTracks    []Item
	Volume            int
	Shuffle           bool
	Repeat            string
	ReconnectionError bool
	Premium           bool
	UpdatedAt         time.Time
}

// CurrentID returns the id of the current item or "".
func (s PlaybackState) CurrentID() string {
	if s.CurrentlyPlaying == nil {
		return ""
	}
	return s.CurrentlyPlaying.ID
}

// CurrentURI returns the uri of the current item or "".
func (s PlaybackState) CurrentURI() string {
	if s.CurrentlyPlaying == nil {
		return ""
	}
	return s.CurrentlyPlaying.URI
}

// StateStore holds the shared PlaybackState and fans snapshots out to subscribers.
type StateStore struct {
	mu          sync.RWMutex
	publishMu   sync.Mutex
	state       PlaybackState
	subscribers map[int]chan PlaybackState
	nextID      int
}

func NewStateStore(initial PlaybackState) *StateStore {
	if initial.Repeat == "" {
		initial.Repeat = RepeatStateOff
	}
	return &StateStore{
		state:       initial,
		subscribers: make(map[int]chan PlaybackState),
	}
}

// Snapshot returns a copy of the current state.
func (s *StateStore) Snapshot() PlaybackState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyLocked()
}

// Update applies fn under the write lock and notifies subscribers.
func (s *StateStore) Update(fn func(*PlaybackState)) PlaybackState {
	s.mu.Lock()
	fn(&s.state)
	s.state.UpdatedAt = time.Now()
	snapshot := s.copyLocked()
	subs := make([]chan PlaybackState, 0, len(s.subscribers))
	for _, ch := range s.subscribers {
		subs = append(subs, ch)
	}
	// Taken before releasing mu so snapshots reach subscribers in update order.
	s.publishMu.Lock()
	s.mu.Unlock()

	for _, ch := range subs {
		publishLatest(ch, snapshot)
	}
	s.publishMu.Unlock()
	return snapshot
}

// Subscribe returns a channel receiving the latest snapshot after each update.
// Intermediate snapshots are dropped for slow readers.
func (s *StateStore) Subscribe() (<-chan PlaybackState, func()) {
	ch := make(chan PlaybackState, 1)

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subscribers[id] = ch
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers, id)
			s.mu.Unlock()
		})
	}
	return ch, cancel
}

func (s *StateStore) copyLocked() PlaybackState {
	c := s.state
	if s.state.CurrentlyPlaying != nil {
		item := *s.state.CurrentlyPlaying
		c.CurrentlyPlaying = &item
	}
	c.NextTracks = append([]Item(nil), s.state.NextTracks...)
	c.PreviousTracks = append([]Item(nil), s.state.PreviousTracks...)
	return c
}

func publishLatest(ch chan PlaybackState, snapshot PlaybackState) {
	for {
		select {
		case ch <- snapshot:
			return
		default:
		}
		// Drop the stale snapshot and retry.
		select {
		case <-ch:
		default:
		}
	}
}
