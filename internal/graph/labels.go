package graph

import "eventdocs/internal/catalog"

const (
	labelRoutesTo     = "routes to"
	labelEmits        = "emits"
	labelSubscribesTo = "subscribes to"
	labelHandles      = "handles"
	labelTriggeredBy  = "triggered by"
	labelTriggers     = "triggers"
	labelDispatches   = "dispatches"
	labelInforms      = "informs"
	labelIssues       = "issues"
	labelSubscribes   = "subscribes"
	labelPubSub       = "publishes and subscribes"
)

// serviceSendLabel labels service -> message.
func serviceSendLabel(msg *catalog.Entity) string {
	switch msg.Collection {
	case catalog.Events:
		return "publishes event"
	case catalog.Commands:
		return "invokes command"
	case catalog.Queries:
		return "requests query"
	}
	return "sends to"
}

// serviceReceiveLabel labels message -> service.
func serviceReceiveLabel(msg *catalog.Entity) string {
	switch msg.Collection {
	case catalog.Events:
		return "subscribed by"
	case catalog.Commands, catalog.Queries:
		return "accepts"
	}
	return "sent to"
}

// entityReceiveLabel labels message -> entity.
func entityReceiveLabel(msg *catalog.Entity) string {
	if msg.Collection == catalog.Events {
		return labelSubscribesTo
	}
	return labelHandles
}

func producerLabel(producer, msg *catalog.Entity) string {
	switch producer.Collection {
	case catalog.Services:
		return serviceSendLabel(msg)
	case catalog.Entities:
		return labelEmits
	case catalog.Policies:
		return labelDispatches
	case catalog.Actors:
		return labelIssues
	}
	return "sends"
}

func consumerLabel(consumer, msg *catalog.Entity) string {
	switch consumer.Collection {
	case catalog.Services:
		return serviceReceiveLabel(msg)
	case catalog.Entities:
		return entityReceiveLabel(msg)
	case catalog.Policies:
		return labelTriggers
	case catalog.Views:
		return labelSubscribes
	}
	return "receives"
}
