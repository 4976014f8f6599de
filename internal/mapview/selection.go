package mapview

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"marketmap/internal/domain/entity"
	"marketmap/internal/domain/service"

	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"
)

// SelectionOptions configures the selection coordinator.
type SelectionOptions struct {
	SelectZoom    int
	DetailTimeout time.Duration
}

// Selected is the open business. Business starts as the map summary and is
// replaced by the directory record once Enriched is set.
type Selected struct {
	Seq      uint64          `json:"seq"`
	Point    GeoPoint        `json:"-"`
	Business entity.Business `json:"business"`
	Enriched bool            `json:"enriched"`
}

// Selection tracks which business is open. At most one is open at a time and
// only the detail response of the latest selection is applied.
type Selection struct {
	directory service.BusinessDirectory
	opts      SelectionOptions
	logger    *slog.Logger
	group     singleflight.Group
	wg        sync.WaitGroup

	baseCtx context.Context
	cancel  context.CancelFunc

	mu       sync.Mutex
	seq      uint64
	current  *Selected
	centerOn func(lat, lng float64, zoom int)
}

func NewSelection(directory service.BusinessDirectory, opts SelectionOptions, logger *slog.Logger) *Selection {
	if opts.SelectZoom <= 0 {
		opts.SelectZoom = 17
	}
	if opts.DetailTimeout <= 0 {
		opts.DetailTimeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Selection{
		directory: directory,
		opts:      opts,
		logger:    logger,
		baseCtx:   ctx,
		cancel:    cancel,
	}
}

// OnCenter registers the map-centering side effect of a selection.
func (s *Selection) OnCenter(fn func(lat, lng float64, zoom int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.centerOn = fn
}

// Select opens p, replacing any previous selection. The summary is visible
// immediately; the detail fetch runs in the background.
func (s *Selection) Select(p GeoPoint) Selected {
	s.mu.Lock()
	s.seq++
	sel := Selected{Seq: s.seq, Point: p, Business: p.Summary}
	s.current = &sel
	centerOn := s.centerOn
	s.mu.Unlock()

	if centerOn != nil {
		centerOn(p.Lat, p.Lng, s.opts.SelectZoom)
	}

	if s.directory != nil {
		s.wg.Add(1)
		go s.enrich(sel.Seq, p.ID)
	}

	return sel
}

func (s *Selection) enrich(seq uint64, id string) {
	defer s.wg.Done()

	ctx, cancel := context.WithTimeout(s.baseCtx, s.opts.DetailTimeout)
	defer cancel()

	v, err, _ := s.group.Do(id, func() (any, error) {
		return s.directory.Get(ctx, id)
	})
	if err != nil {
		s.logger.Debug("Business detail fetch failed, keeping summary",
			slog.String("business_id", id),
			slog.Any("error", err),
		)
		return
	}

	biz, ok := v.(*entity.Business)
	if !ok || biz == nil {
		s.logger.Debug("Business detail fetch returned nothing", slog.String("business_id", id))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil || s.current.Seq != seq {
		s.logger.Debug("Discarding stale business detail",
			slog.String("business_id", id),
			slog.Uint64("seq", seq),
		)
		return
	}
	s.current.Business = *biz
	s.current.Enriched = true
}

// Close returns to the idle state. Detail responses still in flight are discarded.
func (s *Selection) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.current = nil
}

// Current returns the open business, if any.
func (s *Selection) Current() (Selected, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return Selected{}, false
	}
	return *s.current, true
}

// Wait blocks until every detail fetch has finished.
func (s *Selection) Wait() {
	s.wg.Wait()
}

// Shutdown cancels in-flight detail fetches and waits for them.
func (s *Selection) Shutdown() {
	s.cancel()
	s.wg.Wait()
}

var errNoDirectory = errors.New("selection has no business directory")

// Refresh re-fetches the detail of the open business synchronously.
func (s *Selection) Refresh(ctx context.Context) error {
	if s.directory == nil {
		return errNoDirectory
	}

	sel, ok := s.Current()
	if !ok {
		return nil
	}

	biz, err := s.directory.Get(ctx, sel.Point.ID)
	if err != nil {
		return errors.Wrap(err, "refresh selected business")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil && s.current.Seq == sel.Seq {
		s.current.Business = *biz
		s.current.Enriched = true
	}
	return nil
}
