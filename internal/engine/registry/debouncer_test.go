package registry_test

import (
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/vigil/internal/engine/registry"
)

// batchRecorder collects flushed batches for assertions.
type batchRecorder struct {
	mu      sync.Mutex
	batches [][]string
}

func (r *batchRecorder) flush(lines []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, lines)
}

func (r *batchRecorder) get() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.batches
}

func TestDebouncer_Add_FlushAfterWindow(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		rec := &batchRecorder{}
		d := registry.NewDebouncer(100*time.Millisecond, rec.flush)

		d.Add("1:change:/proj/a.js")

		time.Sleep(150 * time.Millisecond)
		synctest.Wait()

		batches := rec.get()
		require.Len(t, batches, 1)
		assert.Equal(t, []string{"1:change:/proj/a.js"}, batches[0])
	})
}

func TestDebouncer_Add_CoalescesInArrivalOrder(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		rec := &batchRecorder{}
		d := registry.NewDebouncer(100*time.Millisecond, rec.flush)

		d.Add("1:create:/proj/a.js")
		d.Add("1:change:/proj/b.js")
		d.Add("1:change:/proj/a.js")

		time.Sleep(150 * time.Millisecond)
		synctest.Wait()

		batches := rec.get()
		require.Len(t, batches, 1)
		// Arrival order preserved; repeated paths are not deduplicated.
		assert.Equal(t, []string{
			"1:create:/proj/a.js",
			"1:change:/proj/b.js",
			"1:change:/proj/a.js",
		}, batches[0])
	})
}

func TestDebouncer_Add_TrailingEdge(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		rec := &batchRecorder{}
		d := registry.NewDebouncer(100*time.Millisecond, rec.flush)

		// Each arrival pushes the flush out by the full window.
		d.Add("1:change:/proj/a.js")
		time.Sleep(80 * time.Millisecond)
		d.Add("1:change:/proj/b.js")
		time.Sleep(80 * time.Millisecond)
		synctest.Wait()

		assert.Empty(t, rec.get())

		time.Sleep(30 * time.Millisecond)
		synctest.Wait()

		batches := rec.get()
		require.Len(t, batches, 1)
		assert.Len(t, batches[0], 2)
	})
}

func TestDebouncer_Add_ZeroWindowFlushesImmediately(t *testing.T) {
	rec := &batchRecorder{}
	d := registry.NewDebouncer(0, rec.flush)

	d.Add("1:change:/proj/a.js")
	d.Add("1:change:/proj/b.js")

	batches := rec.get()
	require.Len(t, batches, 2)
	assert.Equal(t, []string{"1:change:/proj/a.js"}, batches[0])
	assert.Equal(t, []string{"1:change:/proj/b.js"}, batches[1])
}

func TestDebouncer_Cancel_DiscardsPending(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		rec := &batchRecorder{}
		d := registry.NewDebouncer(100*time.Millisecond, rec.flush)

		d.Add("1:change:/proj/a.js")
		d.Cancel()

		time.Sleep(200 * time.Millisecond)
		synctest.Wait()

		assert.Empty(t, rec.get())
	})
}

func TestDebouncer_Cancel_DropsLaterAdds(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		rec := &batchRecorder{}
		d := registry.NewDebouncer(50*time.Millisecond, rec.flush)

		d.Add("1:change:/proj/a.js")
		d.Cancel()
		d.Add("1:change:/proj/b.js")

		time.Sleep(100 * time.Millisecond)
		synctest.Wait()

		// Cancel is terminal: the line arriving after it never flushes.
		assert.Empty(t, rec.get())
	})
}

func TestDebouncer_Cancel_DropsLaterAdds_ZeroWindow(t *testing.T) {
	rec := &batchRecorder{}
	d := registry.NewDebouncer(0, rec.flush)

	d.Add("1:change:/proj/a.js")
	d.Cancel()
	d.Add("1:change:/proj/b.js")

	batches := rec.get()
	require.Len(t, batches, 1)
	assert.Equal(t, []string{"1:change:/proj/a.js"}, batches[0])
}
