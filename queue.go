package vmaxtui

import "sync"

// FileQueue is a FIFO of path strings with O(1) deduplication: the slice
// keeps arrival order, the set mirrors membership. Both structures agree at
// all times. Safe for concurrent use; no operation blocks beyond the mutex.
type FileQueue struct {
	mu    sync.Mutex
	order []string
	seen  map[string]struct{}
}

func NewFileQueue() *FileQueue {
	return &FileQueue{seen: make(map[string]struct{})}
}

// Push appends path unless it is already queued. Reports whether it was
// appended.
func (q *FileQueue) Push(path string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.seen[path]; ok {
		return false
	}
	q.order = append(q.order, path)
	q.seen[path] = struct{}{}
	return true
}

// Pop removes and returns the front element.
func (q *FileQueue) Pop() (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.order) == 0 {
		return "", false
	}
	path := q.order[0]
	q.order = q.order[1:]
	delete(q.seen, path)
	return path, true
}

// Probe returns the front element without removing it.
func (q *FileQueue) Probe() (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.order) == 0 {
		return "", false
	}
	return q.order[0], true
}

// Remove deletes path from the queue wherever it sits. Reports whether it
// was present.
func (q *FileQueue) Remove(path string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.seen[path]; !ok {
		return false
	}
	for i, p := range q.order {
		if p == path {
			q.order = append(q.order[:i], q.order[i+1:]...)
			break
		}
	}
	delete(q.seen, path)
	return true
}

// Contains reports queue membership.
func (q *FileQueue) Contains(path string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, ok := q.seen[path]
	return ok
}

func (q *FileQueue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.order)
}

func (q *FileQueue) Empty() bool {
	return q.Size() == 0
}

func (q *FileQueue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.order = nil
	q.seen = make(map[string]struct{})
}

// DrainInto moves every queued path into dst, preserving order and dst's
// deduplication. The receiver's mutex is held only for the duration of the
// transfer out.
func (q *FileQueue) DrainInto(dst *FileQueue) {
	q.mu.Lock()
	moved := q.order
	q.order = nil
	q.seen = make(map[string]struct{})
	q.mu.Unlock()
	for _, path := range moved {
		dst.Push(path)
	}
}
