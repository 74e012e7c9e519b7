package jobs

import "sync/atomic"

// Job is a callable plus its scheduling metadata. Jobs are created through
// Pool.CreateJob, wired into a DAG with AddChild, and handed back with
// SubmitJob. A job's callable runs at most once, on exactly one worker.
type Job struct {
	fn       func()
	next     *Job // intrusive ready-list link, owned by the pool
	deps     atomic.Int32
	children []*Job
}

// AddChild registers child as a dependent of j: the child's callable will
// not start until j's callable has returned. A job may have several parents;
// it becomes ready when the last one finishes.
func (j *Job) AddChild(child *Job) {
	j.children = append(j.children, child)
	child.deps.Add(1)
}
