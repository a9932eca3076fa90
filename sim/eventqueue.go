package sim

type eventHeap[T Time] []Event[T]

// Len returns the number of events in the heap
func (h eventHeap[T]) Len() int {
	return len(h)
}

// Less reports whether the i-th event has a higher priority than the j-th
// event, which is the case when it happens earlier.
func (h eventHeap[T]) Less(i, j int) bool {
	return h[i].Compare(h[j]) > 0
}

// Swap changes the position of two events in the heap
func (h eventHeap[T]) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
}

// Push adds an event into the heap
func (h *eventHeap[T]) Push(x any) {
	*h = append(*h, x.(Event[T]))
}

// Pop removes and returns the last event of the underlying slice
func (h *eventHeap[T]) Pop() any {
	old := *h
	n := len(old)
	evt := old[n-1]
	old[n-1] = Event[T]{}
	*h = old[0 : n-1]

	return evt
}
