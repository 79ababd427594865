package crawler

// frontier is the FIFO queue of URLs waiting to be fetched together with
// the set of every URL ever enqueued. A URL enters the queue at most once.
type frontier struct {
	queue []string
	seen  map[string]bool
}

func newFrontier(seed string) *frontier {
	f := &frontier{seen: make(map[string]bool)}
	f.Push(seed)
	return f
}

// Push enqueues u and reports whether it was new.
func (f *frontier) Push(u string) bool {
	if f.seen[u] {
		return false
	}
	f.seen[u] = true
	f.queue = append(f.queue, u)
	return true
}

// MarkSeen records u as visited without enqueueing it.
func (f *frontier) MarkSeen(u string) {
	f.seen[u] = true
}

// Pop removes the oldest URL. ok is false when the queue is empty.
func (f *frontier) Pop() (string, bool) {
	if len(f.queue) == 0 {
		return "", false
	}
	u := f.queue[0]
	f.queue[0] = ""
	f.queue = f.queue[1:]
	return u, true
}

func (f *frontier) Len() int {
	return len(f.queue)
}

// Seen returns the number of distinct URLs ever enqueued.
func (f *frontier) Seen() int {
	return len(f.seen)
}
