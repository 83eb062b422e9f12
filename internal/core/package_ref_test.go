package core

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aptly-ctl/internal/types"
)

// ---------------------------------------------------------------------------
// ParsePackageRef
// ---------------------------------------------------------------------------

func TestParsePackageRef(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect types.PackageRef
	}{
		{
			name:  "aptly key",
			input: "Pamd64 aptly 2.2.0~rc5 f2b490dae1ed3ca2",
			expect: types.PackageRef{
				Arch:    "amd64",
				Name:    "aptly",
				Version: "2.2.0~rc5",
				Hash:    "f2b490dae1ed3ca2",
			},
		},
		{
			name:  "aptly key with repo",
			input: "stable/Pamd64 aptly 2.2.0~rc5 f2b490dae1ed3ca2",
			expect: types.PackageRef{
				Repo:    "stable",
				Arch:    "amd64",
				Name:    "aptly",
				Version: "2.2.0~rc5",
				Hash:    "f2b490dae1ed3ca2",
			},
		},
		{
			name:  "aptly key with prefix",
			input: "xDPamd64 aptly 2.2.0~rc5 f2b490dae1ed3ca2",
			expect: types.PackageRef{
				KeyPrefix: "xD",
				Arch:      "amd64",
				Name:      "aptly",
				Version:   "2.2.0~rc5",
				Hash:      "f2b490dae1ed3ca2",
			},
		},
		{
			name:  "direct reference",
			input: "aptly_2.2.0~rc5_amd64",
			expect: types.PackageRef{
				Name:    "aptly",
				Version: "2.2.0~rc5",
				Arch:    "amd64",
			},
		},
		{
			name:  "direct reference with repo",
			input: "stable/aptly_2.2.0~rc5_amd64",
			expect: types.PackageRef{
				Repo:    "stable",
				Name:    "aptly",
				Version: "2.2.0~rc5",
				Arch:    "amd64",
			},
		},
		{
			name:  "underscore in package name binds rightmost",
			input: "python3_stubs_1.0-1_all",
			expect: types.PackageRef{
				Name:    "python3_stubs",
				Version: "1.0-1",
				Arch:    "all",
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParsePackageRef(tc.input)
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(tc.expect, got))
		})
	}
}

func TestParsePackageRefInvalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "no structure", input: "aptly"},
		{name: "key missing hash", input: "Pamd64 aptly 2.2.0"},
		{name: "dir ref with bad version", input: "aptly_not!version_amd64"},
		{name: "key with bad version", input: "Pamd64 aptly 1.0_x f2b490dae1ed3ca2"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParsePackageRef(tc.input)
			require.Error(t, err)
		})
	}
}

func TestParsePackageRefRoundTrip(t *testing.T) {
	inputs := []string{
		"stable/Pamd64 aptly 2.2.0~rc5 f2b490dae1ed3ca2",
		"stable/aptly_2.2.0~rc5_amd64",
		"aptly_2.2.0~rc5_amd64",
	}
	for _, input := range inputs {
		got, err := ParsePackageRef(input)
		require.NoError(t, err)
		assert.Equal(t, input, got.String())
	}
}
