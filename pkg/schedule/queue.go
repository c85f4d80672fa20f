// Copyright (C) 2017 ScyllaDB

package schedule

import (
	"container/heap"
)

type candidate struct {
	Handle   Handle
	Job      Job
	Priority int64
}

// candidateHeap implements heap.Interface.
// The candidates are sorted by priority in descending order, ties are broken
// by registration order.
type candidateHeap []candidate

var _ heap.Interface = (*candidateHeap)(nil)

func (h candidateHeap) Len() int { return len(h) }

func (h candidateHeap) Less(i, j int) bool {
	if h[i].Priority != h[j].Priority {
		return h[i].Priority > h[j].Priority
	}
	return h[i].Handle < h[j].Handle
}

func (h candidateHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
}

func (h *candidateHeap) Push(x interface{}) {
	*h = append(*h, x.(candidate))
}

func (h *candidateHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[0 : n-1]
	return item
}

// runQueue orders runnable jobs by priority.
type runQueue struct {
	h candidateHeap
}

func (q *runQueue) Push(c candidate) {
	heap.Push(&q.h, c)
}

func (q *runQueue) Pop() (candidate, bool) {
	if len(q.h) == 0 {
		return candidate{}, false
	}
	return heap.Pop(&q.h).(candidate), true
}

func (q *runQueue) Len() int {
	return len(q.h)
}
