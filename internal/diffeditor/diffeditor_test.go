package diffeditor

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/livediff/internal/diff"
	"github.com/dshills/livediff/internal/document"
	"github.com/dshills/livediff/internal/metrics"
	"github.com/dshills/livediff/internal/reactive"
	"github.com/dshills/livediff/internal/view"
	"github.com/dshills/livediff/internal/worker"
)

func startRuntime(t *testing.T) *reactive.Runtime {
	t.Helper()
	rt := reactive.NewRuntime()
	require.NoError(t, rt.Start())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = rt.Stop(ctx)
	})
	return rt
}

func flush(t *testing.T, rt *reactive.Runtime) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	// Memo recomputes post effect runs, so flush a few rounds.
	for i := 0; i < 3; i++ {
		require.NoError(t, rt.Flush(ctx))
	}
}

// capturePool holds submitted jobs so tests control completion order.
type capturePool struct {
	mu   sync.Mutex
	jobs []*job
	err  error
}

func (p *capturePool) Submit(_ context.Context, j worker.Job) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.jobs = append(p.jobs, j.(*job))
	return nil
}

func (p *capturePool) take(t *testing.T, n int) []*job {
	t.Helper()
	p.mu.Lock()
	defer p.mu.Unlock()
	require.Len(t, p.jobs, n)
	jobs := p.jobs
	p.jobs = nil
	return jobs
}

func (p *capturePool) pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.jobs)
}

func openText(t *testing.T, m *document.Manager, text string) *document.Document {
	t.Helper()
	doc, err := m.Open(context.Background(), document.Transient(""))
	require.NoError(t, err)
	doc.Buffer().SetText(text)
	return doc
}

// complete runs j on the test goroutine and waits for its gate decision.
func complete(t *testing.T, rt *reactive.Runtime, j *job) {
	t.Helper()
	require.NoError(t, j.Run(context.Background()))
	flush(t, rt)
}

type fixture struct {
	rt    *reactive.Runtime
	pool  *capturePool
	docs  *document.Manager
	left  *document.Document
	right *document.Document
	de    *DiffEditor
}

func newFixture(t *testing.T, left, right string, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		rt:   startRuntime(t),
		pool: &capturePool{},
		docs: document.NewManager(),
	}
	f.left = openText(t, f.docs, left)
	f.right = openText(t, f.docs, right)
	f.de = New(f.rt.NewScope(), f.pool, f.left, f.right, opts...)
	flush(t, f.rt)
	return f
}

func TestPublishesSameResultToBothSides(t *testing.T) {
	f := newFixture(t, "a\nb\nc\n", "a\nx\nc\n")

	jobs := f.pool.take(t, 1)
	complete(t, f.rt, jobs[0])

	left, ok := f.de.Left().View().Diff()
	require.True(t, ok)
	right, ok := f.de.Right().View().Diff()
	require.True(t, ok)

	assert.False(t, left.IsRight)
	assert.True(t, right.IsRight)
	assert.Same(t, left.Changes, right.Changes)

	assert.Equal(t, []diff.Line{
		{Kind: diff.Both, Left: diff.LineRange{Start: 0, End: 1}, Right: diff.LineRange{Start: 0, End: 1}},
		{Kind: diff.Left, Left: diff.LineRange{Start: 1, End: 2}, Right: diff.LineRange{Start: 1, End: 1}},
		{Kind: diff.Right, Left: diff.LineRange{Start: 2, End: 2}, Right: diff.LineRange{Start: 1, End: 2}},
		{Kind: diff.Both, Left: diff.LineRange{Start: 2, End: 3}, Right: diff.LineRange{Start: 2, End: 3}},
	}, left.Changes.Lines)

	state := f.de.State()
	assert.Same(t, left.Changes, state.LastAccepted)
	assert.Equal(t, uint64(1), state.Dispatched)
	assert.Equal(t, uint64(1), state.Published)
	assert.Equal(t, f.left.Buffer().Revision(), state.LeftRevision)
	assert.Equal(t, f.right.Buffer().Revision(), state.RightRevision)
}

func TestEmptyAgainstOneLine(t *testing.T) {
	f := newFixture(t, "", "new\n")
	complete(t, f.rt, f.pool.take(t, 1)[0])

	d, ok := f.de.Right().View().Diff()
	require.True(t, ok)
	assert.Equal(t, []diff.Line{
		{Kind: diff.Right, Left: diff.LineRange{Start: 0, End: 0}, Right: diff.LineRange{Start: 0, End: 1}},
	}, d.Changes.Lines)
}

func TestUnavailableSideDoesNotDispatch(t *testing.T) {
	rt := startRuntime(t)
	pool := &capturePool{}
	release := make(chan struct{})
	docs := document.NewManager(document.WithHistorySource(document.HistoryFunc(
		func(ctx context.Context, path, ref string) (string, error) {
			<-release
			return "old\n", nil
		},
	)))

	left, err := docs.OpenAsync(context.Background(), document.History("/tmp/a.txt", "HEAD"))
	require.NoError(t, err)
	right := openText(t, docs, "new\n")

	de := New(rt.NewScope(), pool, left, right)
	flush(t, rt)
	assert.Zero(t, pool.pending(), "no job while the left side is loading")

	right.Buffer().SetText("newer\n")
	flush(t, rt)
	assert.Zero(t, pool.pending())

	close(release)
	require.Eventually(t, func() bool { return pool.pending() == 1 }, time.Second, 5*time.Millisecond)

	complete(t, rt, pool.take(t, 1)[0])
	_, ok := de.Left().View().Diff()
	assert.True(t, ok)
}

func TestNilDocumentSideDoesNotDispatch(t *testing.T) {
	rt := startRuntime(t)
	pool := &capturePool{}
	docs := document.NewManager()
	right := openText(t, docs, "x\n")

	de := New(rt.NewScope(), pool, nil, right)
	flush(t, rt)
	assert.Zero(t, pool.pending())

	de.Left().SetDocument(openText(t, docs, "y\n"))
	flush(t, rt)
	assert.Equal(t, 1, pool.pending())
}

func TestGateDiscardsWhenLeftChangesDuringJob(t *testing.T) {
	f := newFixture(t, "a\nb\n", "a\nc\n")
	first := f.pool.take(t, 1)[0]

	_, err := f.left.Buffer().Insert(0, "z\n")
	require.NoError(t, err)
	flush(t, f.rt)
	second := f.pool.take(t, 1)[0]

	complete(t, f.rt, first)
	_, ok := f.de.Left().View().Diff()
	assert.False(t, ok, "a result computed before the edit is never published")
	assert.IsType(t, view.Normal{}, f.de.Right().View().Get())
	assert.Equal(t, uint64(1), f.de.State().Stale)

	complete(t, f.rt, second)
	d, ok := f.de.Left().View().Diff()
	require.True(t, ok)
	assert.Equal(t, 3, d.Changes.LeftLines)
}

func TestRightEditAbortsComputation(t *testing.T) {
	f := newFixture(t, "a\n", "b\n")
	first := f.pool.take(t, 1)[0]

	f.right.Buffer().SetText("c\n")
	complete(t, f.rt, first)

	state := f.de.State()
	assert.Equal(t, uint64(1), state.Aborted)
	assert.Nil(t, state.LastAccepted)
	assert.IsType(t, view.Normal{}, f.de.Left().View().Get())
}

func TestOnlyFinalRevisionsPublish(t *testing.T) {
	f := newFixture(t, "r0\n", "base\n")
	f.pool.take(t, 1)

	// r1 < r2 < r3 on the left, one job each.
	var jobs []*job
	for _, text := range []string{"r1\n", "r2\n", "r3\n"} {
		f.left.Buffer().SetText(text)
		flush(t, f.rt)
		jobs = append(jobs, f.pool.take(t, 1)[0])
	}

	// The newest job finishes first; the older ones arrive late.
	complete(t, f.rt, jobs[2])
	published, ok := f.de.Left().View().Diff()
	require.True(t, ok)

	complete(t, f.rt, jobs[0])
	complete(t, f.rt, jobs[1])

	after, ok := f.de.Left().View().Diff()
	require.True(t, ok)
	assert.Same(t, published.Changes, after.Changes, "late stale jobs never overwrite")

	state := f.de.State()
	assert.Equal(t, uint64(1), state.Published)
	assert.Equal(t, uint64(2), state.Stale)
	assert.Same(t, published.Changes, state.LastAccepted)
}

func TestLateJobDoesNotOverwriteNewerResult(t *testing.T) {
	f := newFixture(t, "a\nb\nc\n", "a\nx\nc\n")
	old := f.pool.take(t, 1)[0]

	_, err := f.left.Buffer().Insert(0, "new\n")
	require.NoError(t, err)
	flush(t, f.rt)
	current := f.pool.take(t, 1)[0]

	complete(t, f.rt, current)
	published, ok := f.de.Right().View().Diff()
	require.True(t, ok)

	complete(t, f.rt, old)
	after, _ := f.de.Right().View().Diff()
	assert.Same(t, published.Changes, after.Changes)
	assert.Equal(t, 4, after.Changes.LeftLines)
}

func TestDocumentSwapDiscards(t *testing.T) {
	f := newFixture(t, "a\n", "b\n")
	first := f.pool.take(t, 1)[0]

	f.de.Left().SetDocument(openText(t, f.docs, "c\n"))
	flush(t, f.rt)
	second := f.pool.take(t, 1)[0]

	complete(t, f.rt, first)
	assert.Equal(t, uint64(1), f.de.State().Stale)

	complete(t, f.rt, second)
	d, ok := f.de.Left().View().Diff()
	require.True(t, ok)
	assert.True(t, d.Changes.HasChanges())
}

func TestEditsCoalesceIntoOneJob(t *testing.T) {
	f := newFixture(t, "", "x\n")
	f.pool.take(t, 1)

	// Hold the runtime while edits pile up.
	release := make(chan struct{})
	f.rt.Post(func() { <-release })
	for i := 0; i < 20; i++ {
		_, err := f.left.Buffer().Insert(0, "l\n")
		require.NoError(t, err)
	}
	close(release)
	flush(t, f.rt)

	jobs := f.pool.take(t, 1)
	assert.Equal(t, f.left.Buffer().Revision(), jobs[0].left.Revision())
}

func TestNoOpEditDoesNotDispatch(t *testing.T) {
	f := newFixture(t, "a\n", "b\n")
	f.pool.take(t, 1)

	f.left.Buffer().SetText("a\n")
	_, err := f.left.Buffer().Insert(0, "")
	require.NoError(t, err)
	flush(t, f.rt)
	assert.Zero(t, f.pool.pending())
}

func TestDisposeMakesCompletionsNoOps(t *testing.T) {
	var outcomes []Outcome
	f := newFixture(t, "a\n", "b\n", WithGateHook(func(c Completion) {
		outcomes = append(outcomes, c.Outcome)
	}))
	pending := f.pool.take(t, 1)[0]

	f.de.Dispose()
	assert.False(t, f.de.Alive())

	complete(t, f.rt, pending)
	assert.IsType(t, view.Normal{}, f.de.Left().View().Get())
	assert.IsType(t, view.Normal{}, f.de.Right().View().Get())
	assert.Empty(t, outcomes)

	f.left.Buffer().SetText("edited\n")
	flush(t, f.rt)
	assert.Zero(t, f.pool.pending(), "disposed pairings stop scheduling")
}

func TestDisposeClearsPublishedViews(t *testing.T) {
	f := newFixture(t, "a\n", "b\n")
	complete(t, f.rt, f.pool.take(t, 1)[0])
	_, ok := f.de.Left().View().Diff()
	require.True(t, ok)

	f.de.Dispose()
	assert.IsType(t, view.Normal{}, f.de.Left().View().Get())
	assert.IsType(t, view.Normal{}, f.de.Right().View().Get())

	f.left.Buffer().SetText("edited\n")
	flush(t, f.rt)
	assert.Zero(t, f.pool.pending(), "editors detach on the runtime")
}

func TestDisposeRacingCompletion(t *testing.T) {
	for i := 0; i < 50; i++ {
		f := newFixture(t, "a\n", "b\n")
		pending := f.pool.take(t, 1)[0]

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			assert.NoError(t, pending.Run(context.Background()))
		}()
		go func() {
			defer wg.Done()
			f.de.Dispose()
		}()
		wg.Wait()
		flush(t, f.rt)

		assert.False(t, f.de.Alive())
		assert.IsType(t, view.Normal{}, f.de.Left().View().Get(), "iteration %d", i)
		assert.IsType(t, view.Normal{}, f.de.Right().View().Get(), "iteration %d", i)
	}
}

func TestParentDisposeClosesPairing(t *testing.T) {
	rt := startRuntime(t)
	pool := &capturePool{}
	docs := document.NewManager()
	root := rt.NewScope()
	de := New(root, pool, openText(t, docs, "a\n"), openText(t, docs, "b\n"))
	flush(t, rt)
	pending := pool.take(t, 1)[0]

	root.Dispose()
	assert.False(t, de.Alive())
	complete(t, rt, pending)
	assert.IsType(t, view.Normal{}, de.Left().View().Get())
	assert.Nil(t, de.State().LastAccepted)
}

func TestQueueFullIsCounted(t *testing.T) {
	reg := prometheus.NewRegistry()
	f := &fixture{rt: startRuntime(t), pool: &capturePool{err: worker.ErrQueueFull}, docs: document.NewManager()}
	f.left = openText(t, f.docs, "a\n")
	f.right = openText(t, f.docs, "b\n")
	f.de = New(f.rt.NewScope(), f.pool, f.left, f.right, WithMetrics(metrics.New(reg, "test")))
	flush(t, f.rt)

	state := f.de.State()
	assert.Equal(t, uint64(1), state.Dropped)
	assert.Zero(t, state.Dispatched)

	// The next edit retries.
	f.pool.mu.Lock()
	f.pool.err = nil
	f.pool.mu.Unlock()
	f.left.Buffer().SetText("c\n")
	flush(t, f.rt)
	assert.Equal(t, 1, f.pool.pending())
}

func TestGateHookSeesEveryDecision(t *testing.T) {
	var got []Completion
	f := newFixture(t, "a\n", "b\n", WithGateHook(func(c Completion) {
		got = append(got, c)
	}))
	first := f.pool.take(t, 1)[0]
	f.left.Buffer().SetText("c\n")
	flush(t, f.rt)
	second := f.pool.take(t, 1)[0]

	complete(t, f.rt, first)
	complete(t, f.rt, second)

	require.Len(t, got, 2)
	assert.Equal(t, OutcomeStale, got[0].Outcome)
	assert.Equal(t, OutcomePublished, got[1].Outcome)
	assert.Equal(t, "c\n", got[1].Left.Text())
	assert.Equal(t, "b\n", got[1].Right.Text())
	assert.Same(t, f.de.State().LastAccepted, got[1].Result)
	assert.Same(t, f.de, got[1].Pairing)
}

func TestConvergesWithWorkerPool(t *testing.T) {
	rt := startRuntime(t)
	pool := worker.NewPool(worker.WithWorkers(4), worker.WithQueueSize(256))
	require.NoError(t, pool.Start())
	t.Cleanup(func() { _ = pool.Stop(context.Background()) })

	docs := document.NewManager()
	left := openText(t, docs, "one\ntwo\nthree\n")
	right := openText(t, docs, "one\n2\nthree\n")
	de := New(rt.NewScope(), pool, left, right)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			buf := left.Buffer()
			if i%2 == 1 {
				buf = right.Buffer()
			}
			for n := 0; n < 25; n++ {
				_, _ = buf.Insert(0, "edit\n")
			}
		}(i)
	}
	wg.Wait()

	require.Eventually(t, func() bool {
		state := de.State()
		return state.LastAccepted != nil &&
			state.LastAccepted.LeftLines == left.Buffer().LineCount()-1 &&
			state.LastAccepted.RightLines == right.Buffer().LineCount()-1
	}, 5*time.Second, 10*time.Millisecond)

	want, ok := diff.ComputeStrings(left.Buffer().Text(), right.Buffer().Text(), diff.DefaultOptions())
	require.True(t, ok)
	got, _ := de.Left().View().Diff()
	assert.Equal(t, want.Lines, got.Changes.Lines)
	require.NoError(t, got.Changes.Validate())
}
