package version

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGet(t *testing.T) {
	info := Get(">= 1.0.0, < 2.0.0")
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, ">= 1.0.0, < 2.0.0", info.SchemaVersion)
	assert.Contains(t, info.Platform, runtime.GOOS)
}

func TestString(t *testing.T) {
	info := Info{Version: "dev", CommitHash: "abc", BuildTime: "now"}
	assert.Equal(t, "jsbind dev (commit abc, built now)", info.String())

	info.Version = "v1.2.0"
	assert.Equal(t, "jsbind v1.2.0 (commit abc, built now)", info.String())
}

func TestShort(t *testing.T) {
	assert.Equal(t, "0123456", Info{CommitHash: "0123456789abcdef"}.Short())
	assert.Equal(t, "dev", Info{CommitHash: "dev"}.Short())
}
