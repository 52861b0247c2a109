package workflow

// DefaultRecentCapacity is how many recent analyses the upload page remembers
const DefaultRecentCapacity = 5

// RecentList is a bounded most-recent-first list of uploaded names
type RecentList struct {
	capacity int
	items    []string
}

// NewRecentList restores a list, dropping anything beyond capacity
func NewRecentList(capacity int, items []string) *RecentList {
	if capacity <= 0 {
		capacity = DefaultRecentCapacity
	}
	if len(items) > capacity {
		items = items[:capacity]
	}
	return &RecentList{
		capacity: capacity,
		items:    append([]string(nil), items...),
	}
}

// Push puts name first and evicts the oldest entry when full.
// Repeated names are kept, each upload is its own entry.
func (r *RecentList) Push(name string) {
	next := make([]string, 0, r.capacity)
	next = append(next, name)
	for _, item := range r.items {
		if len(next) == r.capacity {
			break
		}
		next = append(next, item)
	}
	r.items = next
}

// Items returns a copy of the list, most recent first
func (r *RecentList) Items() []string {
	return append([]string(nil), r.items...)
}

func (r *RecentList) Len() int {
	return len(r.items)
}
