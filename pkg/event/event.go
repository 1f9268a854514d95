package event

// Name identifies a trace event type by its full "system/event" name, the
// form used by the host's event table.
type Name string

const (
	SchedSwitch Name = "sched/sched_switch"
	SchedWaking Name = "sched/sched_waking"
	KernelStack Name = "ftrace/kernel_stack"
)

func (n Name) String() string {
	return string(n)
}

// Owners returns the event types whose entries may own a stack capture.
func Owners() []Name {
	return []Name{SchedSwitch, SchedWaking}
}

// Table holds the numeric event ids resolved for one stream. Ids are
// stream-specific and looked up by name once, when the stream is attached.
// A negative id means the event type is absent from the stream.
type Table struct {
	SwitchID int
	WakingID int
	StackID  int
}

// OwnerName maps a numeric event id back to the owner event type it was
// resolved from. It never matches negative ids, so an event type absent
// from the stream cannot be matched by accident.
func (t Table) OwnerName(id int) (Name, bool) {
	if id < 0 {
		return "", false
	}
	switch id {
	case t.SwitchID:
		return SchedSwitch, true
	case t.WakingID:
		return SchedWaking, true
	}
	return "", false
}
