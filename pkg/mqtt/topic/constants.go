package topic

// Standard MQTT wildcard definitions.
const (
	// Wildcard is the single-level wildcard "+".
	// Example: "livemapper/v1/status/+" matches "livemapper/v1/status/CAA649529".
	Wildcard = "+"

	// MultiWildcard is the multi-level wildcard "#". It must be the last
	// character in the topic filter.
	MultiWildcard = "#"
)
