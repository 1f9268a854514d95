package detail_test

import (
	"testing"

	"github.com/tracekit/stacklook/internal/testutil"
	"github.com/tracekit/stacklook/pkg/detail"
	"github.com/tracekit/stacklook/pkg/event"
)

const capture = "<stack trace >\n=> __schedule (ffffffff81891f16)\n=> schedule (ffffffff818925bc)"

func TestNew(t *testing.T) {
	tests := []struct {
		name         string
		event        event.Name
		ownerPayload string
		stackPayload string
		hasStack     bool
		output       detail.View
	}{
		{
			name:         "switched out task",
			event:        event.SchedSwitch,
			ownerPayload: "tickd:1234 [120] S ==> swapper/2:0 [120]",
			stackPayload: capture,
			hasStack:     true,
			output: detail.View{
				Title: "Kernel stack for task 'tickd':",
				Info:  "Task was in state S - sleeping.",
				Stack: "(top)\n=> __schedule (ffffffff81891f16)\n=> schedule (ffffffff818925bc)",
				Lines: []string{"(top)", "=> __schedule (ffffffff81891f16)", "=> schedule (ffffffff818925bc)"},
			},
		},
		{
			name:         "woken task",
			event:        event.SchedWaking,
			ownerPayload: "comm=tickd pid=1234 prio=120 target_cpu=002",
			stackPayload: capture,
			hasStack:     true,
			output: detail.View{
				Title: "Kernel stack for task 'tickd':",
				Info:  "Task has woken up.",
				Stack: "(top)\n=> __schedule (ffffffff81891f16)\n=> schedule (ffffffff818925bc)",
				Lines: []string{"(top)", "=> __schedule (ffffffff81891f16)", "=> schedule (ffffffff818925bc)"},
			},
		},
		{
			name:         "event outside the supported set",
			event:        "irq/irq_handler_entry",
			ownerPayload: "irq=28 name=eth0",
			stackPayload: capture,
			hasStack:     true,
			output: detail.View{
				Title: "Kernel stack for task 'tickd':",
				Info:  "No specific info for event.",
				Stack: "(top)\n=> __schedule (ffffffff81891f16)\n=> schedule (ffffffff818925bc)",
				Lines: []string{"(top)", "=> __schedule (ffffffff81891f16)", "=> schedule (ffffffff818925bc)"},
			},
		},
		{
			name:         "no capture behind the marker",
			event:        event.SchedSwitch,
			ownerPayload: "tickd:1234 [120] D ==> swapper/2:0 [120]",
			hasStack:     false,
			output: detail.View{
				Title: "Kernel stack for task 'tickd':",
				Info:  "Task was in state D - uninterruptible (disk) sleep.",
				Stack: "ERROR: No info field found!",
				Lines: []string{"ERROR: No info field found!"},
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			v := detail.New("tickd", test.event, test.ownerPayload, test.stackPayload, test.hasStack)
			if diff := testutil.Diff(test.output, v); diff != "" {
				t.Fatalf("Result mismatch: got - want +\n%s", diff)
			}
		})
	}
}
