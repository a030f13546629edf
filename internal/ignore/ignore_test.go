package ignore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatch(t *testing.T) {
	p, err := Compile("watchOS_*", "iOS_9.*", "", "# comment", "tvOS_{10,11}.*_*_arm64e")
	require.NoError(t, err)
	assert.Equal(t, 3, p.Len())

	assert.True(t, p.Match("watchOS_3.1.0_14S452"))
	assert.True(t, p.Match("iOS_9.3.5_13G36"))
	assert.True(t, p.Match("tvOS_11.0.0_15J381_arm64e"))

	assert.False(t, p.Match("iOS_10.2.1_14D27"))
	assert.False(t, p.Match("tvOS_12.0.0_16J364_arm64e"))
	assert.False(t, p.Match("xwatchOS_3.1.0"))
}

func TestNilMatchesNothing(t *testing.T) {
	var p *Patterns
	assert.False(t, p.Match("iOS_10.2.1_14D27"))
	assert.Equal(t, 0, p.Len())
}

func TestCompileError(t *testing.T) {
	_, err := Compile("iOS_[")
	require.Error(t, err)
}
