package stream

import (
	"context"
	"log"

	"github.com/yavens/rig-chat-client/internal/conversation"
	"github.com/yavens/rig-chat-client/internal/observability"
)

// toolDispatcher resolves tool-call chunks against the registered tools and
// runs them without stalling the token stream. The placeholder message is
// appended synchronously so its index is assigned in stream order; the
// invocation itself is detached.
type toolDispatcher struct {
	pub     *publisher
	metrics *observability.Metrics
	tools   map[string]Tool
}

func newToolDispatcher(pub *publisher, metrics *observability.Metrics, tools []Tool) *toolDispatcher {
	byName := make(map[string]Tool, len(tools))
	for _, t := range tools {
		byName[t.Name()] = t
	}
	return &toolDispatcher{pub: pub, metrics: metrics, tools: byName}
}

// dispatch handles one tool-call chunk. Unknown tool names are logged and
// skipped; the stream keeps going.
func (d *toolDispatcher) dispatch(ctx context.Context, call ToolCall) {
	tool, ok := d.tools[call.Name]
	if !ok {
		log.Printf("tools: model requested unknown tool %q", call.Name)
		if d.metrics != nil {
			d.metrics.ToolCalls.WithLabelValues(call.Name, "unknown").Inc()
		}
		return
	}

	index, err := d.pub.appendMessage(conversation.NewAssistantMessage(""))
	if err != nil {
		log.Printf("tools: append placeholder for %q: %v", call.Name, err)
		return
	}

	go d.run(ctx, tool, call, index)
}

func (d *toolDispatcher) run(ctx context.Context, tool Tool, call ToolCall, index int) {
	result, err := tool.Invoke(ctx, call.Arguments)
	if err != nil {
		// Placeholder stays empty; failure is contained to this sub-task.
		log.Printf("tools: %q failed: %v", call.Name, err)
		if d.metrics != nil {
			d.metrics.ToolCalls.WithLabelValues(call.Name, "failed").Inc()
		}
		return
	}

	fragment := tool.RenderResult(result)
	if err := d.pub.patchMessage(index, fragment, fragment); err != nil {
		log.Printf("tools: patch placeholder %d for %q: %v", index, call.Name, err)
		if d.metrics != nil {
			d.metrics.ToolCalls.WithLabelValues(call.Name, "failed").Inc()
		}
		return
	}
	if d.metrics != nil {
		d.metrics.ToolCalls.WithLabelValues(call.Name, "completed").Inc()
	}
}

// Definitions collects the schemas the given tools advertise to the model.
func Definitions(tools []Tool) []Definition {
	defs := make([]Definition, 0, len(tools))
	for _, t := range tools {
		defs = append(defs, t.Definition())
	}
	return defs
}
