package topic

import (
	"fmt"
)

// Constants defining the standard topic segments.
// Map clients subscribe to these, so changing them breaks existing subscribers.
const (
	// SuffixStatus carries the latest vehicle status payload.
	// Structure: {root}/status/{vehicleID}
	SuffixStatus = "status"

	// SuffixPresence carries "online"/"offline" for a publishing service instance.
	// Structure: {root}/presence/{clientID}
	SuffixPresence = "presence"
)

// TopicBuilder encapsulates the logic for constructing MQTT topic strings.
type TopicBuilder struct {
	// root is the base namespace for all topics (e.g., "livemapper/v1").
	root string
}

// NewTopicBuilder creates a new instance of TopicBuilder with the specified root namespace.
func NewTopicBuilder(root string) *TopicBuilder {
	return &TopicBuilder{root: root}
}

// Status returns the topic on which the status of vehicleID is published.
func (b *TopicBuilder) Status(vehicleID string) string {
	return b.build(SuffixStatus, vehicleID)
}

// StatusWildcard returns the filter matching the status of every vehicle.
// Result: {root}/status/+
func (b *TopicBuilder) StatusWildcard() string {
	return b.build(SuffixStatus, Wildcard)
}

// Presence returns the presence topic of a publishing client.
func (b *TopicBuilder) Presence(clientID string) string {
	return b.build(SuffixPresence, clientID)
}

// build constructs {root}/{suffix}/{identifier}.
func (b *TopicBuilder) build(suffix, id string) string {
	return fmt.Sprintf("%s/%s/%s", b.root, suffix, id)
}
