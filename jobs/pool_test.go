package jobs

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// traceLog records job completion order under a lock.
type traceLog struct {
	mu      sync.Mutex
	entries []string
}

func (l *traceLog) add(name string) {
	l.mu.Lock()
	l.entries = append(l.entries, name)
	l.mu.Unlock()
}

func (l *traceLog) index(name string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, e := range l.entries {
		if e == name {
			return i
		}
	}
	return -1
}

func (l *traceLog) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

func TestPoolRunsEverySubmittedJobOnce(t *testing.T) {
	p := NewPool(4, zap.NewNop())
	defer p.Stop()

	var count atomic.Int64
	const jobs = 200
	for i := 0; i < jobs; i++ {
		p.Submit(func() { count.Add(1) })
	}
	p.Wait()
	assert.Equal(t, int64(jobs), count.Load())
}

func TestPoolDependencyOrdering(t *testing.T) {
	p := NewPool(4, zap.NewNop())
	defer p.Stop()

	log := &traceLog{}

	job1 := p.CreateJob(func() { log.add("job1") })
	job1a := p.CreateJob(func() { log.add("job1a") })
	job2 := p.CreateJob(func() { log.add("job2") })
	job3 := p.CreateJob(func() { log.add("job3") })

	job1.AddChild(job2)
	job1a.AddChild(job2)
	job2.AddChild(job3)

	p.SubmitJob(job1)
	p.SubmitJob(job1a)
	for i := 0; i < 3; i++ {
		name := []string{"free1", "free2", "free3"}[i]
		p.Submit(func() { log.add(name) })
	}
	p.Wait()

	require.Equal(t, 7, log.len())
	assert.Greater(t, log.index("job2"), log.index("job1"))
	assert.Greater(t, log.index("job2"), log.index("job1a"))
	assert.Greater(t, log.index("job3"), log.index("job2"))
}

func TestPoolDiamondDependency(t *testing.T) {
	p := NewPool(4, zap.NewNop())
	defer p.Stop()

	// root fans out to two middles that join on a single sink.
	log := &traceLog{}
	root := p.CreateJob(func() { log.add("root") })
	left := p.CreateJob(func() { log.add("left") })
	right := p.CreateJob(func() { log.add("right") })
	sink := p.CreateJob(func() { log.add("sink") })

	root.AddChild(left)
	root.AddChild(right)
	left.AddChild(sink)
	right.AddChild(sink)

	p.SubmitJob(root)
	p.Wait()

	require.Equal(t, 4, log.len())
	assert.Equal(t, 0, log.index("root"))
	assert.Equal(t, 3, log.index("sink"))
}

func TestPoolStopRestart(t *testing.T) {
	p := NewPool(2, zap.NewNop())

	var count atomic.Int64
	for i := 0; i < 50; i++ {
		p.Submit(func() { count.Add(1) })
	}
	p.Wait()
	p.Stop()
	assert.Equal(t, int64(50), count.Load())

	p.Restart()
	for i := 0; i < 50; i++ {
		p.Submit(func() { count.Add(1) })
	}
	p.Wait()
	p.Stop()
	assert.Equal(t, int64(100), count.Load())
}

func TestPoolStopDrainsPending(t *testing.T) {
	p := NewPool(1, zap.NewNop())

	var count atomic.Int64
	for i := 0; i < 100; i++ {
		p.Submit(func() { count.Add(1) })
	}
	p.Stop()
	assert.Equal(t, int64(100), count.Load())
}

func TestPoolSizeDefaults(t *testing.T) {
	p := NewPool(0, nil)
	defer p.Stop()
	assert.GreaterOrEqual(t, p.Size(), 1)

	p3 := NewPool(3, nil)
	defer p3.Stop()
	assert.Equal(t, 3, p3.Size())
}

func TestWaitWithNoJobsReturns(t *testing.T) {
	p := NewPool(2, zap.NewNop())
	defer p.Stop()
	p.Wait()
}
