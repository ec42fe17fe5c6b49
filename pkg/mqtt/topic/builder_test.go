package topic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTopicBuilder(t *testing.T) {
	b := NewTopicBuilder("livemapper/v1")

	assert.Equal(t, "livemapper/v1/status/CAA649529", b.Status("CAA649529"))
	assert.Equal(t, "livemapper/v1/status/+", b.StatusWildcard())
	assert.Equal(t, "livemapper/v1/presence/livemapper-host1", b.Presence("livemapper-host1"))
}
