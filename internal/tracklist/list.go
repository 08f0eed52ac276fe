package tracklist

import (
	"context"
	"strconv"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"tunedeck/internal/core"
)

// LibraryChecker answers saved-in-library for track ids, in order.
type LibraryChecker func(ctx context.Context, ids []string) ([]bool, error)

// List holds Total rows of which only the fetched ones carry data. Rows are
// fetched a page at a time as they come into view.
type List struct {
	loader   Loader
	check    LibraryChecker
	library  core.LibraryIndex
	metrics  core.Metrics
	logger   *zap.Logger
	pageSize int
	overscan int

	mu    sync.RWMutex
	rows  []core.Item
	saved []bool
	total int

	loads singleflight.Group
}

// Option customizes a List.
type Option func(*List)

// WithLibrary resolves saved-in-library flags through the index first and
// the checker for the rest.
func WithLibrary(index core.LibraryIndex, check LibraryChecker) Option {
	return func(l *List) {
		l.library = index
		l.check = check
	}
}

func WithMetrics(metrics core.Metrics) Option {
	return func(l *List) {
		l.metrics = metrics
	}
}

// WithOverscan sets how many rows beyond the visible window are loaded.
func WithOverscan(rows int) Option {
	return func(l *List) {
		if rows >= 0 {
			l.overscan = rows
		}
	}
}

// New creates a list of total rows; total may be 0 when unknown.
func New(loader Loader, total int, logger *zap.Logger, opts ...Option) *List {
	l := &List{
		loader:   loader,
		metrics:  core.NopMetrics{},
		logger:   logger,
		pageSize: core.DefaultPageSize,
		overscan: core.DefaultOverscanRows,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.resize(max(total, 0))
	return l
}

// resize grows rows to n. Callers hold mu or own the list exclusively.
func (l *List) resize(n int) {
	l.total = n
	if len(l.rows) >= n {
		return
	}
	rows := make([]core.Item, n)
	copy(rows, l.rows)
	saved := make([]bool, n)
	copy(saved, l.saved)
	for i := len(l.rows); i < n; i++ {
		rows[i].Position = i
	}
	l.rows = rows
	l.saved = saved
}

// Len is the number of rows, loaded or not.
func (l *List) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.rows)
}

// IsRowLoaded reports whether row i carries data. Corrupted rows count as
// loaded so they are not fetched again.
func (l *List) IsRowLoaded(i int) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.loadedLocked(i)
}

func (l *List) loadedLocked(i int) bool {
	if i < 0 || i >= len(l.rows) {
		return false
	}
	return l.rows[i].Loaded() || l.rows[i].Corrupted
}

// Row returns row i and whether it is within the list.
func (l *List) Row(i int) (core.Item, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if i < 0 || i >= len(l.rows) {
		return core.Item{}, false
	}
	return l.rows[i], true
}

// Rows returns a copy of every row, placeholders included, so positions and
// indices line up.
func (l *List) Rows() []core.Item {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]core.Item(nil), l.rows...)
}

// Items returns the loaded rows in order.
func (l *List) Items() []core.Item {
	l.mu.RLock()
	defer l.mu.RUnlock()
	items := make([]core.Item, 0, len(l.rows))
	for _, row := range l.rows {
		if row.Loaded() {
			items = append(items, row)
		}
	}
	return items
}

// InLibrary reports the saved flag of the row at position.
func (l *List) InLibrary(position int) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if position < 0 || position >= len(l.saved) {
		return false
	}
	return l.saved[position]
}

// SetInLibrary records a saved flag change made elsewhere.
func (l *List) SetInLibrary(position int, saved bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if position >= 0 && position < len(l.saved) {
		l.saved[position] = saved
	}
}

// LoadMoreRows fetches the page starting at start and splices it in.
// Concurrent calls for the same start share one fetch.
func (l *List) LoadMoreRows(ctx context.Context, start int) error {
	_, err, _ := l.loads.Do(strconv.Itoa(start), func() (any, error) {
		return nil, l.load(ctx, start)
	})
	return err
}

func (l *List) load(ctx context.Context, start int) error {
	items, total, err := l.loader.Load(ctx, start)
	if err != nil {
		return err
	}

	for i := range items {
		items[i].Position = start + i
	}
	saved := l.savedFlags(ctx, items)

	l.mu.Lock()
	size := total
	if size <= 0 {
		size = len(l.rows)
	}
	l.resize(max(size, start+len(items)))
	copy(l.rows[start:], items)
	copy(l.saved[start:], saved)
	l.mu.Unlock()

	l.metrics.RecordRowsLoaded(l.loader.Source(), len(items))
	l.logger.Debug("Rows loaded",
		zap.String("source", l.loader.Source()),
		zap.Int("start", start),
		zap.Int("count", len(items)),
		zap.Int("total", total))
	return nil
}

// savedFlags resolves library membership for items. Failures leave rows unsaved.
func (l *List) savedFlags(ctx context.Context, items []core.Item) []bool {
	saved := make([]bool, len(items))

	var (
		ids     []string
		indices []int
	)
	for i, item := range items {
		if item.ID == "" || item.IsLocal || item.Type == core.ItemTypeEpisode {
			continue
		}
		if l.library != nil {
			if isSaved, known := l.library.Lookup(item.ID); known {
				saved[i] = isSaved
				continue
			}
		}
		ids = append(ids, item.ID)
		indices = append(indices, i)
	}

	if len(ids) == 0 || l.check == nil {
		return saved
	}

	flags, err := l.check(ctx, ids)
	if err != nil {
		l.logger.Debug("Could not check library membership", zap.Error(err))
		return saved
	}
	for j, flag := range flags {
		if j >= len(indices) {
			break
		}
		saved[indices[j]] = flag
		if l.library != nil {
			l.library.Set(ids[j], flag)
		}
	}
	return saved
}

// EnsureVisible loads every unloaded row in [first-overscan, last+overscan].
// An empty list loads its first page.
func (l *List) EnsureVisible(ctx context.Context, first, last int) error {
	if l.Len() == 0 {
		return l.LoadMoreRows(ctx, 0)
	}

	from := max(first-l.overscan, 0)
	to := min(last+l.overscan, l.Len()-1)

	for i := from; i <= to; i++ {
		if l.IsRowLoaded(i) {
			continue
		}
		if err := l.LoadMoreRows(ctx, i); err != nil {
			return err
		}
		// Skip past what that page covered, loaded or not.
		i += l.pageSize - 1
	}
	return nil
}
