package plan

import (
	"container/heap"
	"sync"

	"github.com/assemble-build/assemble/engine/identifier"
)

// Priority orders ready tasks: explicitly requested tasks come first, in
// the order they were requested; everything else pulled onto the critical
// path is OnPath and ranks after every requested task.
type Priority struct {
	requested bool
	index     int // request-list position when requested; 0 otherwise
}

// Less reports whether p ranks ahead of other in the ready queue.
func (p Priority) Less(other Priority) bool {
	if p.requested != other.requested {
		return p.requested // requested beats OnPath
	}
	if !p.requested {
		return false // two OnPath tasks are equal rank; heap breaks ties by insertion
	}
	return p.index < other.index // smaller request-list index = higher priority
}

// readyItem is one entry in the ready heap.
type readyItem struct {
	id       identifier.TaskID
	priority Priority
	seq      int // insertion order, breaks ties between equal-priority OnPath tasks
	heapIdx  int
}

type readyHeap []*readyItem

func (h readyHeap) Len() int { return len(h) }
func (h readyHeap) Less(i, j int) bool {
	if h[i].priority.Less(h[j].priority) {
		return true
	}
	if h[j].priority.Less(h[i].priority) {
		return false
	}
	return h[i].seq < h[j].seq
}
func (h readyHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].heapIdx, h[j].heapIdx = i, j
}
func (h *readyHeap) Push(x any) {
	item := x.(*readyItem)
	item.heapIdx = len(*h)
	*h = append(*h, item)
}
func (h *readyHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

// Scheduler is the mutable runtime view of a Plan: the ready queue plus the
// live RunAfter/Finalizer edge sets, consumed by the worker pool (C10) via
// PopTask/ReportTaskStatus/Finished. Grounded on spec.md §4.8's operations;
// the priority-heap shape follows the nice/priority/submit-time TaskQueue
// idiom surveyed in the wider example pack's build schedulers.
type Scheduler struct {
	mu sync.Mutex

	waitingOnSuccess map[string]map[string]bool // node -> RunAfter predecessors still pending
	blocksOnSuccess  map[string]map[string]bool // predecessor -> nodes waiting on its success
	waitingOnFinish  map[string]map[string]bool // node -> Finalizer predecessors still in flight
	blocksOnFinish   map[string]map[string]bool // predecessor -> finalizer nodes waiting on it

	ready      readyHeap
	priorities map[string]Priority // requested tasks' rank, keyed by TaskId string
	inFlight   map[string]bool
	nextSeq    int
	total      int // total nodes at construction, for sanity/metrics only
}

// NewScheduler builds a Scheduler over p, ranking requested (in requestOrder,
// highest priority first) ahead of every other plan node.
func NewScheduler(p *Plan, requestOrder []string) *Scheduler {
	s := &Scheduler{
		waitingOnSuccess: make(map[string]map[string]bool),
		blocksOnSuccess:  make(map[string]map[string]bool),
		waitingOnFinish:  make(map[string]map[string]bool),
		blocksOnFinish:   make(map[string]map[string]bool),
		inFlight:         make(map[string]bool),
	}

	priorityOf := make(map[string]Priority, len(requestOrder))
	for i, shorthand := range requestOrder {
		priorityOf[shorthand] = Priority{requested: true, index: i}
	}
	s.priorities = priorityOf

	for _, id := range p.Nodes() {
		key := id.String()
		s.total++
		preds := p.Predecessors(id)
		waiting := make(map[string]bool, len(preds))
		for _, pred := range preds {
			predKey := pred.String()
			waiting[predKey] = true
			if s.blocksOnSuccess[predKey] == nil {
				s.blocksOnSuccess[predKey] = make(map[string]bool)
			}
			s.blocksOnSuccess[predKey][key] = true
		}
		s.waitingOnSuccess[key] = waiting
	}

	// Finalizers(F) lists the nodes F finalizes; F may not start until each
	// of them has terminated, whatever its outcome.
	for _, id := range p.Nodes() {
		fKey := id.String()
		for _, finalizedID := range p.Finalizers(id) {
			xKey := finalizedID.String()
			if s.waitingOnFinish[fKey] == nil {
				s.waitingOnFinish[fKey] = make(map[string]bool)
			}
			s.waitingOnFinish[fKey][xKey] = true
			if s.blocksOnFinish[xKey] == nil {
				s.blocksOnFinish[xKey] = make(map[string]bool)
			}
			s.blocksOnFinish[xKey][fKey] = true
		}
	}

	for _, id := range p.Nodes() {
		key := id.String()
		if s.isReadyLocked(key) {
			pr, ok := priorityOf[key]
			if !ok {
				pr = Priority{}
			}
			s.pushReadyLocked(id, pr)
		}
	}

	return s
}

func (s *Scheduler) isReadyLocked(key string) bool {
	if len(s.waitingOnSuccess[key]) > 0 {
		return false
	}
	if len(s.waitingOnFinish[key]) > 0 {
		return false
	}
	return true
}

func (s *Scheduler) pushReadyLocked(id identifier.TaskID, pr Priority) {
	heap.Push(&s.ready, &readyItem{id: id, priority: pr, seq: s.nextSeq})
	s.nextSeq++
}

// PopTask returns the highest-priority ready task and moves it to the
// in-flight set, or returns ok=false if the ready queue is empty.
func (s *Scheduler) PopTask() (id identifier.TaskID, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.ready) == 0 {
		return identifier.TaskID{}, false
	}
	item := heap.Pop(&s.ready).(*readyItem)
	s.inFlight[item.id.String()] = true
	return item.id, true
}

// ReportTaskStatus removes id from in-flight and updates the live edge
// sets per spec.md §4.8: success deletes the node and every incident edge;
// failure deletes only its outgoing Finalizer edges (unblocking its
// finalizers) while leaving RunAfter edges in place, so dependents remain
// permanently blocked. Newly ready nodes are then pushed onto the queue.
func (s *Scheduler) ReportTaskStatus(id identifier.TaskID, success bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := id.String()
	delete(s.inFlight, key)

	var newlyUnblocked []string
	if success {
		for waiter := range s.blocksOnSuccess[key] {
			delete(s.waitingOnSuccess[waiter], key)
			newlyUnblocked = append(newlyUnblocked, waiter)
		}
		delete(s.blocksOnSuccess, key)
	}

	for waiter := range s.blocksOnFinish[key] {
		delete(s.waitingOnFinish[waiter], key)
		newlyUnblocked = append(newlyUnblocked, waiter)
	}
	delete(s.blocksOnFinish, key)

	for _, waiter := range newlyUnblocked {
		if s.inFlight[waiter] {
			continue
		}
		if s.isReadyLocked(waiter) {
			s.pushReadyLocked(identifier.MustParse(waiter), s.priorities[waiter])
		}
	}
}

// Finished reports whether both the ready queue and the in-flight set are
// empty. Nodes left permanently blocked by an upstream failure are neither
// ready nor in-flight, so they do not prevent Finished from reporting true.
func (s *Scheduler) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ready) == 0 && len(s.inFlight) == 0
}
