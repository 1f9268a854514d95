package stream

// TaskID is a task id tagged with its provenance. A cached id was read
// straight from the entry and is only valid while the entry's untouched
// bit is set; otherwise the id must be recomputed from the raw record.
type TaskID struct {
	id     int
	cached bool
}

// Cached wraps a task id read from the entry's cached field.
func Cached(id int) TaskID {
	return TaskID{id: id, cached: true}
}

// NeedsRecompute marks a task id that cannot be read from the cache.
func NeedsRecompute() TaskID {
	return TaskID{}
}

// Resolve returns the cached id when one is held, and falls back to the
// recompute function otherwise.
func (t TaskID) Resolve(recompute func() int) int {
	if t.cached {
		return t.id
	}
	return recompute()
}

// TaskIDOf reads the entry's task id with its provenance. The cached
// field is trusted only while the untouched bit is still set.
func TaskIDOf(e Entry) TaskID {
	if e.Flags().Untouched() {
		return Cached(e.PID())
	}
	return NeedsRecompute()
}

// ResolveTaskID returns the trustworthy task id of the entry, recomputing
// it from the raw record when another plugin has rewritten the cache.
func ResolveTaskID(e Entry) int {
	return TaskIDOf(e).Resolve(e.RecordPID)
}
