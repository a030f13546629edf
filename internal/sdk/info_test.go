package sdk

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Info
		id   string
	}{
		{
			in:   "iOS_10.2.1_14D27",
			want: Info{Name: "iOS", VersionMajor: 10, VersionMinor: 2, VersionPatch: 1, Build: "14D27"},
			id:   "iOS_10.2.1_14D27",
		},
		{
			in:   "iOS_10.2.1_14D27.memdb",
			want: Info{Name: "iOS", VersionMajor: 10, VersionMinor: 2, VersionPatch: 1, Build: "14D27"},
			id:   "iOS_10.2.1_14D27",
		},
		{
			in:   "tvOS_11.0_15J381_arm64e",
			want: Info{Name: "tvOS", VersionMajor: 11, Build: "15J381", Flavour: "arm64e"},
			id:   "tvOS_11.0.0_15J381_arm64e",
		},
		{
			in:   "macOS_12",
			want: Info{Name: "macOS", VersionMajor: 12},
			id:   "macOS_12.0.0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.id, got.ID())
			assert.Equal(t, tt.id+FileExt, got.Filename())
		})
	}
}

func TestParseInvalid(t *testing.T) {
	for _, in := range []string{
		"",
		"iOS",
		"_10.2.1",
		"iOS_ten",
		"iOS_1.2.3.4",
		"iOS_10.2.1__x",
		"iOS_10.2.1_14D27_arm64_extra",
	} {
		t.Run(in, func(t *testing.T) {
			_, err := Parse(in)
			require.ErrorIs(t, err, ErrInvalidIdentifier)
		})
	}
}

func TestCompareOrdersVersionsNumerically(t *testing.T) {
	ids := []string{"iOS_10.10.0_A", "iOS_10.2.0_A", "iOS_9.3.5_A", "iOS_10.2.0", "macOS_1.0.0"}
	infos := make([]Info, 0, len(ids))
	for _, id := range ids {
		info, err := Parse(id)
		require.NoError(t, err)
		infos = append(infos, info)
	}

	slices.SortFunc(infos, Compare)

	got := make([]string, 0, len(infos))
	for _, info := range infos {
		got = append(got, info.ID())
	}
	assert.Equal(t, []string{"iOS_9.3.5_A", "iOS_10.2.0", "iOS_10.2.0_A", "iOS_10.10.0_A", "macOS_1.0.0"}, got)
}

func TestFuzzyMatch(t *testing.T) {
	target, err := Parse("iOS_10.2.1_14D27")
	require.NoError(t, err)

	tests := []struct {
		candidate string
		score     int
		ok        bool
	}{
		{"iOS_10.2.1_14D27", 0, true},
		{"ios_10.2.1_14D27", 0, true},
		{"iOS_10.2.1_14D27_arm64e", 1, true},
		{"iOS_10.2.1_14D15", 2, true},
		{"iOS_10.2.0_14C92", 3, true},
		{"iOS_10.3.1_14E304", 4, true},
		{"iOS_11.0.0_15A372", 0, false},
		{"tvOS_10.2.1_14D27", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.candidate, func(t *testing.T) {
			candidate, err := Parse(tt.candidate)
			require.NoError(t, err)
			score, ok := candidate.FuzzyMatch(target)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.score, score)
			}
		})
	}
}

func TestRemoteEqualIncludesETag(t *testing.T) {
	info, err := Parse("iOS_10.2.1_14D27")
	require.NoError(t, err)

	a := NewRemote(info, 100, "sha256:aaa")
	assert.True(t, a.Equal(NewRemote(info, 100, "sha256:aaa")))
	assert.False(t, a.Equal(NewRemote(info, 100, "sha256:bbb")))
	assert.False(t, a.Equal(NewRemote(info, 101, "sha256:aaa")))
}
