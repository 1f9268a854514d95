// Package schedstate reads the prev_state letter out of rendered
// sched_switch payloads.
package schedstate

import "strings"

// The payload renders the outgoing task's state as a single letter right
// before this separator.
const separator = " ==>"

// names maps the state letters to the names ps(1) uses for them.
var names = map[byte]string{
	'S': "sleeping",
	'D': "uninterruptible (disk) sleep",
	'R': "running",
	'I': "idle",
	'T': "stopped",
	't': "tracing stop",
	'X': "dead",
	'Z': "zombie",
	'P': "parked",
}

// Letter extracts the single-letter state of the task being switched
// out. It reports false when the payload does not look like a
// sched_switch rendering.
func Letter(payload string) (string, bool) {
	i := strings.Index(payload, separator)
	if i < 1 {
		return "", false
	}
	return payload[i-1 : i], true
}

// LongName renders the state as "letter - name", e.g. "S - sleeping".
// Unknown letters keep the letter with an "unknown" name; a payload
// without a state comes back as just "unknown".
func LongName(payload string) string {
	letter, ok := Letter(payload)
	if !ok {
		return "unknown"
	}
	name, ok := names[letter[0]]
	if !ok {
		name = "unknown"
	}
	return letter + " - " + name
}
