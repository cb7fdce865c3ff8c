package forecast

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"StockPulse/internal/domain/models"
	"StockPulse/internal/services/features"
	"StockPulse/pkg/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 1, 31, 12, 0, 0, 0, time.UTC)

type historyStub struct {
	mu      sync.Mutex
	records map[int64][]models.SalesRecord
	calls   int
	err     error
}

func newHistoryStub() *historyStub {
	return &historyStub{records: map[int64][]models.SalesRecord{}}
}

func (h *historyStub) GetSalesHistory(_ context.Context, itemID int64) ([]models.SalesRecord, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls++
	if h.err != nil {
		return nil, h.err
	}
	return append([]models.SalesRecord(nil), h.records[itemID]...), nil
}

func (h *historyStub) append(itemID int64, recs ...models.SalesRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records[itemID] = append(h.records[itemID], recs...)
}

func (h *historyStub) callCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.calls
}

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	mem, err := cache.NewMemoryCache(cache.WithMemoryCleanup(0))
	require.NoError(t, err)
	t.Cleanup(func() { _ = mem.Close() })

	opts = append([]Option{WithClock(func() time.Time { return fixedNow }), WithRand(NewRand(1))}, opts...)
	return NewEngine(NewForecastCache(mem, time.Hour), opts...)
}

func constant(qty, days int) []models.SalesRecord {
	q := make([]int, days)
	for i := range q {
		q[i] = qty
	}
	return series(q...)
}

func assertBounds(t *testing.T, f *models.NextMonthForecast) {
	t.Helper()
	for _, p := range f.Points {
		assert.GreaterOrEqual(t, p.Lower, 0.0, "day %d", p.Day)
		assert.LessOrEqual(t, p.Lower, p.Predicted, "day %d", p.Day)
		assert.LessOrEqual(t, p.Predicted, p.Upper, "day %d", p.Day)
	}
}

func TestComputeScenarioLinear(t *testing.T) {
	e := newTestEngine(t)
	history := series(5, 6, 4, 7, 5, 6, 8, 5, 6, 7)

	f := e.Compute(1, history, models.ModelLinear)
	require.NotNil(t, f)

	assert.Equal(t, models.ModelLinear, f.Model)
	assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), f.Month)
	require.Len(t, f.Points, 28)
	for i, p := range f.Points {
		assert.Equal(t, i+1, p.Day)
		assert.GreaterOrEqual(t, p.Predicted, 0.0)
	}
	assert.GreaterOrEqual(t, f.Accuracy, 0.0)
	assert.LessOrEqual(t, f.Accuracy, 1.0)
	assertBounds(t, f)

	tr := features.FitTrend(features.Quantities(history))
	assert.InDelta(t, 135.0/825.0, tr.Slope, 1e-9)
}

func TestComputeBoundsAllModels(t *testing.T) {
	histories := map[string][]models.SalesRecord{
		"scenario":  series(5, 6, 4, 7, 5, 6, 8, 5, 6, 7),
		"declining": series(30, 25, 20, 15, 10, 5, 1, 0, 0, 0, 0, 0),
		"spiky":     series(0, 0, 40, 0, 1, 0, 0, 35, 0, 2),
		"single":    series(3),
	}
	for name, history := range histories {
		for _, model := range []models.ModelType{models.ModelLinear, models.ModelForest, models.ModelSVM} {
			t.Run(name+"/"+string(model), func(t *testing.T) {
				f := newTestEngine(t).Compute(1, history, model)
				require.NotNil(t, f)
				assertBounds(t, f)
			})
		}
	}
}

func TestComputeConstantHistoryHasZeroWidthIntervals(t *testing.T) {
	e := newTestEngine(t)
	history := constant(10, 15)
	assert.Equal(t, 0.0, features.StdDev(features.Quantities(history)))

	for _, model := range []models.ModelType{models.ModelLinear, models.ModelForest, models.ModelSVM} {
		f := e.Compute(1, history, model)
		require.NotNil(t, f)
		for _, p := range f.Points {
			assert.Equal(t, p.Predicted, p.Lower)
			assert.Equal(t, p.Predicted, p.Upper)
		}
	}
}

func TestComputeEmptyHistory(t *testing.T) {
	e := newTestEngine(t)
	assert.Nil(t, e.Compute(1, nil, models.ModelLinear))
	assert.Empty(t, e.ProjectTwelveMonths(1, nil))
}

func TestComputeUnknownModelFallsBack(t *testing.T) {
	f := newTestEngine(t).Compute(1, series(1, 2, 3), models.ModelType("bogus"))
	require.NotNil(t, f)
	assert.Equal(t, models.ModelLinear, f.Model)
}

func TestComputeSortsHistory(t *testing.T) {
	e := newTestEngine(t)
	history := series(5, 6, 4, 7, 5, 6, 8, 5, 6, 7)
	shuffled := []models.SalesRecord{history[3], history[9], history[0], history[5], history[1], history[8], history[2], history[7], history[4], history[6]}

	assert.Equal(t, e.Compute(1, history, models.ModelSVM).Points, e.Compute(1, shuffled, models.ModelSVM).Points)
	assert.Equal(t, history[3], shuffled[0], "input must not be reordered")
}

func TestSVMDeterministic(t *testing.T) {
	e := newTestEngine(t)
	history := series(5, 6, 4, 7, 5, 6, 8, 5, 6, 7)
	assert.Equal(t, e.Compute(1, history, models.ModelSVM), e.Compute(1, history, models.ModelSVM))
}

func TestSeededEnginesAgree(t *testing.T) {
	history := series(5, 6, 4, 7, 5, 6, 8, 5, 6, 7)
	a := newTestEngine(t, WithRand(NewRand(99)))
	b := newTestEngine(t, WithRand(NewRand(99)))

	assert.Equal(t, a.Compute(1, history, models.ModelForest), b.Compute(1, history, models.ModelForest))
	assert.Equal(t, a.ProjectTwelveMonths(1, history), b.ProjectTwelveMonths(1, history))
}

func TestProjectTwelveMonthsStartsNextMonth(t *testing.T) {
	got := newTestEngine(t).ProjectTwelveMonths(1, series(5, 6, 4, 7))
	require.Len(t, got, 12)
	assert.Equal(t, time.February, got[0].Month.Month())
	assert.Equal(t, 2025, got[0].Month.Year())
	assert.Equal(t, time.January, got[11].Month.Month())
	assert.Equal(t, 2026, got[11].Month.Year())
}

func TestForecastNextMonthUsesCache(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	h := newHistoryStub()
	h.append(1, series(5, 6, 4, 7, 5, 6, 8, 5, 6, 7)...)

	first, err := e.ForecastNextMonth(ctx, 1, models.ModelSVM, h)
	require.NoError(t, err)
	second, err := e.ForecastNextMonth(ctx, 1, models.ModelSVM, h)
	require.NoError(t, err)

	assert.Equal(t, 1, h.callCount())
	assert.Equal(t, first.Points, second.Points)

	_, err = e.ForecastNextMonth(ctx, 1, models.ModelLinear, h)
	require.NoError(t, err)
	assert.Equal(t, 2, h.callCount(), "different model must recompute")
}

func TestForecastNextMonthRecomputesAfterUpdate(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	h := newHistoryStub()
	h.append(1, constant(10, 15)...)

	before, err := e.ForecastNextMonth(ctx, 1, models.ModelSVM, h)
	require.NoError(t, err)
	assert.Equal(t, 10.0, before.Points[0].Predicted)

	err = e.RecordSales(ctx, 1, func(context.Context) error {
		h.append(1, models.SalesRecord{ItemID: 1, Date: time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC), Quantity: 40})
		return nil
	})
	require.NoError(t, err)

	after, err := e.ForecastNextMonth(ctx, 1, models.ModelSVM, h)
	require.NoError(t, err)
	assert.Equal(t, 2, h.callCount())
	assert.NotEqual(t, before.Points, after.Points)
}

func TestRecordSalesInvalidatesOnError(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	h := newHistoryStub()
	h.append(1, constant(10, 15)...)

	_, err := e.ForecastNextMonth(ctx, 1, models.ModelSVM, h)
	require.NoError(t, err)

	boom := errors.New("boom")
	assert.ErrorIs(t, e.RecordSales(ctx, 1, func(context.Context) error { return boom }), boom)

	_, err = e.ForecastNextMonth(ctx, 1, models.ModelSVM, h)
	require.NoError(t, err)
	assert.Equal(t, 2, h.callCount())
}

func TestForecastNextMonthEmptyAndErrors(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	h := newHistoryStub()

	f, err := e.ForecastNextMonth(ctx, 5, models.ModelLinear, h)
	require.NoError(t, err)
	assert.Nil(t, f)

	h.err = errors.New("store down")
	_, err = e.ForecastNextMonth(ctx, 5, models.ModelLinear, h)
	assert.Error(t, err)
}

func TestStaleMonthIsRecomputed(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)
	e := newTestEngine(t, WithClock(func() time.Time { return now }))
	h := newHistoryStub()
	h.append(1, constant(10, 15)...)

	f, err := e.ForecastNextMonth(ctx, 1, models.ModelSVM, h)
	require.NoError(t, err)
	assert.Equal(t, time.February, f.Month.Month())

	now = time.Date(2025, 2, 15, 12, 0, 0, 0, time.UTC)
	f, err = e.ForecastNextMonth(ctx, 1, models.ModelSVM, h)
	require.NoError(t, err)
	assert.Equal(t, 2, h.callCount())
	assert.Equal(t, time.March, f.Month.Month())

	// Month-end dates must not skip a month.
	now = time.Date(2025, 3, 31, 12, 0, 0, 0, time.UTC)
	f, err = e.ForecastNextMonth(ctx, 1, models.ModelSVM, h)
	require.NoError(t, err)
	assert.Equal(t, 3, h.callCount())
	assert.Equal(t, time.April, f.Month.Month())
}

type blockingHistory struct {
	*historyStub
	item    int64
	entered chan struct{}
	release chan struct{}
}

func (h *blockingHistory) GetSalesHistory(ctx context.Context, itemID int64) ([]models.SalesRecord, error) {
	if itemID == h.item {
		close(h.entered)
		<-h.release
	}
	return h.historyStub.GetSalesHistory(ctx, itemID)
}

func TestSlowHistoryBlocksOnlyItsItem(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	h := &blockingHistory{historyStub: newHistoryStub(), item: 1, entered: make(chan struct{}), release: make(chan struct{})}
	h.append(1, constant(5, 12)...)
	h.append(2, constant(5, 12)...)

	done := make(chan struct{})
	go func() {
		defer close(done)
		f, err := e.ForecastNextMonth(ctx, 1, models.ModelLinear, h)
		assert.NoError(t, err)
		assert.NotNil(t, f)
	}()
	<-h.entered

	f, err := e.ForecastNextMonth(ctx, 2, models.ModelLinear, h)
	require.NoError(t, err)
	require.NotNil(t, f)

	recorded := make(chan struct{})
	go func() {
		defer close(recorded)
		assert.NoError(t, e.RecordSales(ctx, 1, func(context.Context) error { return nil }))
	}()
	select {
	case <-recorded:
		t.Fatal("RecordSales ran while item 1 was being forecast")
	case <-time.After(20 * time.Millisecond):
	}

	close(h.release)
	<-done
	<-recorded
	assert.Nil(t, e.cache.Get(ctx, 1))
}

func TestConcurrentForecastsAndUpdates(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	h := newHistoryStub()
	for id := int64(1); id <= 4; id++ {
		h.append(id, series(5, 6, 4, 7, 5, 6, 8, 5, 6, 7)...)
	}

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		id := int64(i%4 + 1)
		wg.Add(2)
		go func() {
			defer wg.Done()
			f, err := e.ForecastNextMonth(ctx, id, models.ModelForest, h)
			assert.NoError(t, err)
			assert.NotNil(t, f)
		}()
		go func() {
			defer wg.Done()
			assert.NoError(t, e.RecordSales(ctx, id, func(context.Context) error {
				h.append(id, models.SalesRecord{ItemID: id, Date: fixedNow, Quantity: 3})
				return nil
			}))
		}()
	}
	wg.Wait()
	assert.Empty(t, e.cache.locks)
}
