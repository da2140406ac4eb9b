// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package executor

import (
	"sync"

	"go.uber.org/atomic"

	"github.com/ava-labs/hypercounter/state"
)

// Metrics is notified once per task as it is enqueued.
type Metrics interface {
	RecordBlocked()
	RecordExecutable()
}

// Executor sequences the concurrent execution of tasks with arbitrary
// conflicts on-the-fly.
//
// A task that writes a key runs after every earlier task that touched that
// key. A task that only reads a key runs after the last earlier writer of that
// key, so readers of the same key run in parallel. Tasks with no conflicts are
// executed immediately (bounded by the concurrency passed to [New]).
type Executor struct {
	metrics Metrics
	workers chan struct{}

	added int
	tasks []*task
	edges map[string]*edge

	outstanding sync.WaitGroup

	err atomic.Error
}

type edge struct {
	writer  int // -1 if no writer queued yet
	readers []int
}

// New creates a new [Executor] that accepts up to [items] tasks and runs at
// most [concurrency] of them at once. [metrics] may be nil.
func New(items, concurrency int, metrics Metrics) *Executor {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Executor{
		metrics: metrics,
		workers: make(chan struct{}, concurrency),
		tasks:   make([]*task, items),
		edges:   make(map[string]*edge, items*2),
	}
}

type task struct {
	f func() error

	l        sync.Mutex
	waiters  []*sync.WaitGroup
	executed bool
}

// dependencies returns the ids of the queued tasks [id] must wait for and
// records [id] as the latest user of each conflict.
func (e *Executor) dependencies(id int, conflicts state.Keys) map[int]struct{} {
	deps := make(map[int]struct{})
	for k, perm := range conflicts {
		ed, ok := e.edges[k]
		if !ok {
			ed = &edge{writer: -1}
			e.edges[k] = ed
		}
		if ed.writer >= 0 {
			deps[ed.writer] = struct{}{}
		}
		if !perm.Writes() {
			ed.readers = append(ed.readers, id)
			continue
		}
		for _, r := range ed.readers {
			deps[r] = struct{}{}
		}
		ed.writer = id
		ed.readers = nil
	}
	return deps
}

// Run executes [f] after all previously enqueued [f] with
// overlapping [conflicts] are executed.
//
// Run is not safe to call concurrently.
func (e *Executor) Run(conflicts state.Keys, f func() error) {
	if e.added >= len(e.tasks) {
		e.err.CompareAndSwap(nil, ErrTooManyTasks)
		return
	}

	id := e.added
	e.added++
	t := &task{f: f}
	e.tasks[id] = t
	e.outstanding.Add(1)

	var (
		wg      = &sync.WaitGroup{}
		blocked bool
	)
	for dep := range e.dependencies(id, conflicts) {
		dt := e.tasks[dep]
		dt.l.Lock()
		if !dt.executed {
			wg.Add(1)
			dt.waiters = append(dt.waiters, wg)
			blocked = true
		}
		dt.l.Unlock()
	}
	if e.metrics != nil {
		if blocked {
			e.metrics.RecordBlocked()
		} else {
			e.metrics.RecordExecutable()
		}
	}

	go func() {
		wg.Wait()

		defer func() {
			t.l.Lock()
			for _, w := range t.waiters {
				w.Done()
			}
			t.waiters = nil
			t.executed = true
			t.l.Unlock()
			e.outstanding.Done()
		}()

		// Stop early if executor is stopped
		if e.err.Load() != nil {
			return
		}

		e.workers <- struct{}{}
		defer func() { <-e.workers }()
		if err := t.f(); err != nil {
			e.err.CompareAndSwap(nil, err)
		}
	}()
}

// Stop prevents any task that has not started from running.
func (e *Executor) Stop() {
	e.err.CompareAndSwap(nil, ErrStopped)
}

// Wait returns as soon as all enqueued [f] are executed.
//
// You should not call [Run] after [Wait] is called.
func (e *Executor) Wait() error {
	e.outstanding.Wait()
	return e.err.Load()
}
