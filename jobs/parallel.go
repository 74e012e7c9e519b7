package jobs

// Parallel-for helpers partition an index range into one chunk per worker
// (remainder spread over the first few chunks), submit one job per non-empty
// chunk, and wait for completion before returning.

// Pair is a 2-D index.
type Pair struct {
	X, Y int
}

// ParallelFor runs fn once for every i in [start, end) across the pool.
func ParallelFor(p *Pool, start, end int, fn func(i int)) {
	ParallelForChunk(p, start, end, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			fn(i)
		}
	})
}

// ParallelForChunk partitions [start, end) and hands each worker a
// half-open [lo, hi) chunk to iterate itself.
func ParallelForChunk(p *Pool, start, end int, fn func(lo, hi int)) {
	if end <= start {
		return
	}
	rng := end - start
	workers := p.Size()
	base := rng / workers
	rem := rng % workers

	lo := start
	for i := 0; i < workers && lo < end; i++ {
		size := base
		if i < rem {
			size++
		}
		if size == 0 {
			break
		}
		hi := lo + size
		chunkLo, chunkHi := lo, hi
		p.Submit(func() { fn(chunkLo, chunkHi) })
		lo = hi
	}

	p.Wait()
}

// ParallelFor2D runs fn once for every (x, y) in the rectangle
// [start.X, end.X) x [start.Y, end.Y). The longer axis is partitioned
// across workers (X on a tie); each worker sweeps the full range of the
// other axis for its chunk.
func ParallelFor2D(p *Pool, start, end Pair, fn func(x, y int)) {
	if end.Y-start.Y > end.X-start.X {
		ParallelForChunk(p, start.Y, end.Y, func(lo, hi int) {
			for x := start.X; x < end.X; x++ {
				for y := lo; y < hi; y++ {
					fn(x, y)
				}
			}
		})
		return
	}
	ParallelForChunk(p, start.X, end.X, func(lo, hi int) {
		for x := lo; x < hi; x++ {
			for y := start.Y; y < end.Y; y++ {
				fn(x, y)
			}
		}
	})
}

// ParallelFor2DChunk partitions the longer axis across workers and hands
// each worker a sub-rectangle [lo, hi).
func ParallelFor2DChunk(p *Pool, start, end Pair, fn func(lo, hi Pair)) {
	rangeX := end.X - start.X
	rangeY := end.Y - start.Y
	if rangeX <= 0 || rangeY <= 0 {
		return
	}

	if rangeX >= rangeY {
		ParallelForChunk(p, start.X, end.X, func(lo, hi int) {
			fn(Pair{lo, start.Y}, Pair{hi, end.Y})
		})
		return
	}
	ParallelForChunk(p, start.Y, end.Y, func(lo, hi int) {
		fn(Pair{start.X, lo}, Pair{end.X, hi})
	})
}
