package devicelink

import (
	"fmt"
	"strings"
)

// Message kinds carried in the last topic segment
const (
	KindAmount      = "amount"
	KindStatus      = "status"
	KindCommand     = "cmd"
	KindCurrentUser = "currentUser"
)

// TopicTable is the bidirectional tap-id to topic-segment lookup. It is
// built from the tap registry before the subscription is established
// and read-mostly afterwards.
type TopicTable struct {
	byTap   map[string]string
	byTopic map[string]string
}

// NewTopicTable builds a table from tapID -> topic segment pairs
func NewTopicTable(topics map[string]string) *TopicTable {
	t := &TopicTable{
		byTap:   make(map[string]string, len(topics)),
		byTopic: make(map[string]string, len(topics)),
	}
	for tapID, topic := range topics {
		t.byTap[tapID] = topic
		t.byTopic[topic] = tapID
	}
	return t
}

// TopicFor returns the topic segment for a tap
func (t *TopicTable) TopicFor(tapID string) (string, bool) {
	topic, ok := t.byTap[tapID]
	return topic, ok
}

// TapFor returns the tap id for a topic segment
func (t *TopicTable) TapFor(topic string) (string, bool) {
	tapID, ok := t.byTopic[topic]
	return tapID, ok
}

// InboundMessage is a decoded telemetry topic
type InboundMessage struct {
	TapID string
	Kind  string
}

// parseTopic decodes an inbound topic of shape <prefix>/<tapTopic>/<kind>.
// The prefix may itself contain slashes. Malformed shapes and unknown
// tap topics are errors for the caller to log and drop.
func parseTopic(prefix, topic string, table *TopicTable) (*InboundMessage, error) {
	rest, ok := strings.CutPrefix(topic, prefix+"/")
	if !ok {
		return nil, fmt.Errorf("topic %q does not match prefix %q", topic, prefix)
	}

	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return nil, fmt.Errorf("topic %q does not match <prefix>/<tap>/<kind>", topic)
	}

	tapID, ok := table.TapFor(parts[0])
	if !ok {
		return nil, fmt.Errorf("unknown tap topic %q", parts[0])
	}

	return &InboundMessage{TapID: tapID, Kind: parts[1]}, nil
}
