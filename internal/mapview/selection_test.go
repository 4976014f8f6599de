package mapview

import (
	"context"
	"sync"
	"testing"
	"time"

	"marketmap/internal/domain/entity"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gatedDirectory answers Get only once the gate of the requested id is closed.
type gatedDirectory struct {
	mu      sync.Mutex
	gates   map[string]chan struct{}
	records map[string]*entity.Business
	errs    map[string]error
	calls   map[string]int
}

func newGatedDirectory() *gatedDirectory {
	return &gatedDirectory{
		gates:   make(map[string]chan struct{}),
		records: make(map[string]*entity.Business),
		errs:    make(map[string]error),
		calls:   make(map[string]int),
	}
}

func (d *gatedDirectory) gate(id string) chan struct{} {
	d.mu.Lock()
	defer d.mu.Unlock()
	ch := make(chan struct{})
	d.gates[id] = ch
	return ch
}

func (d *gatedDirectory) ListByType(context.Context, entity.BusinessType) ([]entity.Business, error) {
	return nil, nil
}

func (d *gatedDirectory) Get(ctx context.Context, id string) (*entity.Business, error) {
	d.mu.Lock()
	gate := d.gates[id]
	d.calls[id]++
	d.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.errs[id]; err != nil {
		return nil, err
	}
	if rec, ok := d.records[id]; ok {
		return rec, nil
	}
	return nil, errors.New("not found")
}

func summaryPoint(id, name string) GeoPoint {
	p := geoPoint(id, 19.04, -98.34)
	p.Summary = entity.Business{ID: id, Name: name}
	return p
}

func TestSelection_StaleDetailIsDiscarded(t *testing.T) {
	dir := newGatedDirectory()
	dir.records["A"] = &entity.Business{ID: "A", Name: "A detail"}
	dir.records["B"] = &entity.Business{ID: "B", Name: "B detail"}
	gateA, gateB := dir.gate("A"), dir.gate("B")

	s := NewSelection(dir, SelectionOptions{}, nil)

	s.Select(summaryPoint("A", "A summary"))
	selB := s.Select(summaryPoint("B", "B summary"))

	cur, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, "B summary", cur.Business.Name)

	close(gateB)
	assert.Eventually(t, func() bool {
		cur, _ := s.Current()
		return cur.Enriched
	}, time.Second, 5*time.Millisecond)

	close(gateA)
	s.Wait()

	cur, ok = s.Current()
	require.True(t, ok)
	assert.Equal(t, selB.Seq, cur.Seq)
	assert.Equal(t, "B", cur.Point.ID)
	assert.Equal(t, "B detail", cur.Business.Name)
}

func TestSelection_FailedFetchKeepsSummary(t *testing.T) {
	dir := newGatedDirectory()
	dir.errs["A"] = errors.New("backend down")

	s := NewSelection(dir, SelectionOptions{}, nil)
	s.Select(summaryPoint("A", "A summary"))
	s.Wait()

	cur, ok := s.Current()
	require.True(t, ok)
	assert.False(t, cur.Enriched)
	assert.Equal(t, "A summary", cur.Business.Name)
}

func TestSelection_CloseDiscardsInFlightDetail(t *testing.T) {
	dir := newGatedDirectory()
	dir.records["A"] = &entity.Business{ID: "A", Name: "A detail"}
	gate := dir.gate("A")

	s := NewSelection(dir, SelectionOptions{}, nil)
	s.Select(summaryPoint("A", "A summary"))
	s.Close()
	close(gate)
	s.Wait()

	_, ok := s.Current()
	assert.False(t, ok)
}

func TestSelection_CentersOnSelectedPoint(t *testing.T) {
	s := NewSelection(nil, SelectionOptions{}, nil)

	var got []float64
	s.OnCenter(func(lat, lng float64, zoom int) { got = []float64{lat, lng, float64(zoom)} })

	sel := s.Select(summaryPoint("A", "A summary"))

	assert.Equal(t, uint64(1), sel.Seq)
	assert.Equal(t, []float64{19.04, -98.34, 17}, got)
}

func TestSelection_ShutdownCancelsFetch(t *testing.T) {
	dir := newGatedDirectory()
	dir.gate("A")

	s := NewSelection(dir, SelectionOptions{DetailTimeout: time.Minute}, nil)
	s.Select(summaryPoint("A", "A summary"))

	done := make(chan struct{})
	go func() {
		s.Shutdown()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("shutdown did not cancel the detail fetch")
	}
}
