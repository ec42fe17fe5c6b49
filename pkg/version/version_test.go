package version

import (
	"encoding/json"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	info := Get()
	assert.Equal(t, GitVersion, info.String())
	assert.Equal(t, runtime.Version(), info.GoVersion)

	var decoded Info
	require.NoError(t, json.Unmarshal([]byte(info.ToJSON()), &decoded))
	assert.Equal(t, info, decoded)

	text := info.Text()
	assert.Contains(t, text, "gitVersion:")
	assert.Contains(t, text, info.Platform)
}
