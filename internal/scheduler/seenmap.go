package scheduler

// seenMap is a bounded FIFO-eviction map from a window hash to the last
// time it was captured. It caps at maxSeen entries and evicts the oldest
// insertion first, matching window_hash_last_seen's
// OrderedDict/popitem(last=False) behavior in the original
// implementation's data_generator.py. It is not an LRU: re-touching an
// existing key updates its value but not its eviction order.
type seenMap struct {
	values map[string]int64
	order  []string
	cap    int
}

const defaultSeenCap = 1000

func newSeenMap() *seenMap {
	return &seenMap{
		values: make(map[string]int64),
		cap:    defaultSeenCap,
	}
}

// Get returns the last-seen Unix-nanosecond timestamp for hash, if any.
func (m *seenMap) Get(hash string) (int64, bool) {
	v, ok := m.values[hash]
	return v, ok
}

// Set records hash's last-seen timestamp. If hash is new and the map is
// at capacity, the oldest entry is evicted first.
func (m *seenMap) Set(hash string, ts int64) {
	if _, exists := m.values[hash]; !exists {
		if len(m.order) >= m.cap {
			oldest := m.order[0]
			m.order = m.order[1:]
			delete(m.values, oldest)
		}
		m.order = append(m.order, hash)
	}
	m.values[hash] = ts
}

// Len reports the number of tracked hashes.
func (m *seenMap) Len() int {
	return len(m.values)
}
