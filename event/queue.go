package event

import (
	"sync/atomic"
)

const (
	// QueueSize is the ring capacity, a power of two
	QueueSize = 1024
	queueMask = QueueSize - 1
)

// Queue is a lock-free MPSC ring buffer of interaction records
// Thread-Safety:
//   - Push: Lock-free CAS, multiple producers OK
//   - Consume: Single consumer (observer pump)
//   - Published flags prevent reading partial writes
//
// Overflow: Oldest records overwritten when full, counted in Overwritten
type Queue struct {
	records     [QueueSize]Record
	published   [QueueSize]atomic.Bool // True = slot fully written
	head        atomic.Uint64          // Read index
	tail        atomic.Uint64          // Write index
	overwritten atomic.Uint64
}

func NewQueue() *Queue {
	return &Queue{}
}

// Push adds a record using lock-free CAS with published flags pattern
func (q *Queue) Push(r Record) {
	for {
		currentTail := q.tail.Load()
		nextTail := currentTail + 1

		if q.tail.CompareAndSwap(currentTail, nextTail) {
			idx := currentTail & queueMask

			q.records[idx] = r
			q.published[idx].Store(true) // MUST be after write

			// Advance head if overwriting unread records
			currentHead := q.head.Load()
			if nextTail-currentHead > QueueSize {
				if q.head.CompareAndSwap(currentHead, nextTail-QueueSize) {
					q.overwritten.Add(nextTail - QueueSize - currentHead)
				}
			}
			return
		}
	}
}

// Consume returns all pending records in FIFO order and advances head
func (q *Queue) Consume() []Record {
	for {
		currentHead := q.head.Load()
		currentTail := q.tail.Load()

		if currentTail == currentHead {
			return nil
		}

		maxAvailable := currentTail - currentHead
		if maxAvailable > QueueSize {
			maxAvailable = QueueSize
			currentHead = currentTail - QueueSize
		}

		result := make([]Record, 0, maxAvailable)
		for i := uint64(0); i < maxAvailable; i++ {
			idx := (currentHead + i) & queueMask

			if !q.published[idx].Load() {
				break // Writer incomplete
			}

			result = append(result, q.records[idx])
			q.published[idx].Store(false)
		}

		newHead := currentHead + uint64(len(result))
		if q.head.CompareAndSwap(currentHead, newHead) {
			if len(result) == 0 {
				return nil
			}
			return result
		}
	}
}

// Len returns approximate pending record count
func (q *Queue) Len() int {
	head := q.head.Load()
	tail := q.tail.Load()
	if tail <= head {
		return 0
	}
	diff := int(tail - head)
	if diff > QueueSize {
		return QueueSize
	}
	return diff
}

// Overwritten returns how many unread records were lost to overflow
func (q *Queue) Overwritten() uint64 {
	return q.overwritten.Load()
}
