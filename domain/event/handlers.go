package event

import (
	"teamspace/mediator"
)

// Handlers groups the subscribers of the domain events.
// A nil handler is simply not subscribed.
type Handlers struct {
	Realtime     *RealtimeHandler
	Notification *NotificationHandler
	SearchIndex  *SearchIndexHandler
	Latency      *LatencyHandler
}

// Subscribe registers every handler on bus, one subscription per event type it handles.
func Subscribe(bus *mediator.EventBus, h Handlers) {
	if r := h.Realtime; r != nil {
		mediator.Subscribe(bus, "realtime", r.OnBoardCreated)
		mediator.Subscribe(bus, "realtime", r.OnTaskCreated)
		mediator.Subscribe(bus, "realtime", r.OnTaskMoved)
		mediator.Subscribe(bus, "realtime", r.OnTaskAssigned)
		mediator.Subscribe(bus, "realtime", r.OnTaskDeleted)
		mediator.Subscribe(bus, "realtime", r.OnChatMessagePosted)
		mediator.Subscribe(bus, "realtime", r.OnAssistantReplied)
	}
	if n := h.Notification; n != nil {
		mediator.Subscribe(bus, "notification", n.OnTaskAssigned)
	}
	if s := h.SearchIndex; s != nil {
		mediator.Subscribe(bus, "search_index", s.OnChatMessagePosted)
	}
	if l := h.Latency; l != nil {
		mediator.Subscribe(bus, "latency", Latency[ChatMessagePosted](l))
		mediator.Subscribe(bus, "latency", Latency[TaskCreated](l))
	}
}
