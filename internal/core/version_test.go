package core

import (
	"testing"

	debversion "github.com/knqyf263/go-deb-version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// ParseVersion
// ---------------------------------------------------------------------------

func TestParseVersion(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect Version
	}{
		{
			name:   "plain upstream",
			input:  "1.0",
			expect: Version{Raw: "1.0", Epoch: "0", Upstream: "1.0", Revision: ""},
		},
		{
			name:   "upstream with revision",
			input:  "1.0-1",
			expect: Version{Raw: "1.0-1", Epoch: "0", Upstream: "1.0", Revision: "1"},
		},
		{
			name:   "epoch upstream revision",
			input:  "2:1.4.2-3ubuntu1",
			expect: Version{Raw: "2:1.4.2-3ubuntu1", Epoch: "2", Upstream: "1.4.2", Revision: "3ubuntu1"},
		},
		{
			name:   "hyphen inside upstream splits on last",
			input:  "1.0-rc1-2",
			expect: Version{Raw: "1.0-rc1-2", Epoch: "0", Upstream: "1.0-rc1", Revision: "2"},
		},
		{
			name:   "tilde prerelease",
			input:  "1.0~beta1",
			expect: Version{Raw: "1.0~beta1", Epoch: "0", Upstream: "1.0~beta1", Revision: ""},
		},
		{
			name:   "trailing hyphen leaves empty revision",
			input:  "1.0-",
			expect: Version{Raw: "1.0-", Epoch: "0", Upstream: "1.0", Revision: ""},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseVersion(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.expect, got)
		})
	}
}

func TestParseVersionInvalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty string", input: ""},
		{name: "illegal character", input: "1.0 beta"},
		{name: "underscore", input: "1.0_1"},
		{name: "non numeric epoch", input: "a:1.0"},
		{name: "empty epoch", input: ":1.0"},
		{name: "empty upstream", input: "1:-2"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseVersion(tc.input)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid version")
			assert.ErrorIs(t, err, ErrInvalidVersion)
		})
	}
}

func TestInvalidVersionSentinel(t *testing.T) {
	_, err := CompareVersions("1.0-1", "1.0 beta")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidVersion)

	// Other invalid-argument errors do not carry the sentinel.
	_, err = Rotate(nil, -1)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidVersion)
}

// ---------------------------------------------------------------------------
// Compare
// ---------------------------------------------------------------------------

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		name   string
		a, b   string
		expect int
	}{
		{name: "tilde sorts before release", a: "1.0~beta1", b: "1.0", expect: -1},
		{name: "epoch dominates upstream", a: "1:0.5", b: "2.0", expect: 1},
		{name: "revision ordering", a: "1.0-1", b: "1.0-2", expect: -1},
		{name: "equal with implicit epoch", a: "0:1.0-1", b: "1.0-1", expect: 0},
		{name: "missing revision below present", a: "1.0", b: "1.0-1", expect: -1},
		{name: "empty and absent revision equal", a: "1.0-", b: "1.0", expect: 0},
		{name: "numeric run beats length", a: "1.10", b: "1.9", expect: 1},
		{name: "leading zeros ignored", a: "1.010", b: "1.10", expect: 0},
		{name: "letters before symbols", a: "1.0a", b: "1.0+", expect: -1},
		{name: "tilde before anything", a: "1.0~~", b: "1.0~", expect: -1},
		{name: "double tilde chain", a: "1.0~~a", b: "1.0~", expect: -1},
		{name: "plus above release", a: "1.0+dfsg", b: "1.0", expect: 1},
		{name: "large digit runs", a: "1.123456789012345678901", b: "1.123456789012345678902", expect: -1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := CompareVersions(tc.a, tc.b)
			require.NoError(t, err)
			assert.Equal(t, tc.expect, got)

			reversed, err := CompareVersions(tc.b, tc.a)
			require.NoError(t, err)
			assert.Equal(t, -tc.expect, reversed)
		})
	}
}

func TestCompareVersionsInvalidInput(t *testing.T) {
	_, err := CompareVersions("not a version", "1.0")
	require.Error(t, err)

	_, err = CompareVersions("1.0", "")
	require.Error(t, err)
}

func TestCompareTransitivity(t *testing.T) {
	// Already in ascending order; every pair must agree.
	ordered := []string{
		"0.9",
		"1.0~~",
		"1.0~beta1",
		"1.0~beta2",
		"1.0~rc1",
		"1.0",
		"1.0-1",
		"1.0-1ubuntu1",
		"1.0-2",
		"1.0+dfsg-1",
		"1.0.1",
		"1.2",
		"1.10",
		"2.0",
		"1:0.1",
		"2:0.1",
	}
	for i := range ordered {
		for j := range ordered {
			got, err := CompareVersions(ordered[i], ordered[j])
			require.NoError(t, err)
			switch {
			case i < j:
				assert.Equal(t, -1, got, "%s vs %s", ordered[i], ordered[j])
			case i > j:
				assert.Equal(t, 1, got, "%s vs %s", ordered[i], ordered[j])
			default:
				assert.Equal(t, 0, got, "%s vs %s", ordered[i], ordered[j])
			}
		}
	}
}

// Cross-check against an independent dpkg-style comparator. Versions with
// an explicit revision avoid the one place the libraries' defaulting rules
// differ.
func TestCompareMatchesDebOracle(t *testing.T) {
	versions := []string{
		"1.0-1",
		"1.0-2",
		"1.0~beta1-1",
		"1.0~rc2-4",
		"1.0+dfsg-1",
		"2:0.5-1",
		"1:1.4.2-3ubuntu1",
		"1.10-1",
		"1.9-1",
		"3.2.1-0.1",
	}
	for _, a := range versions {
		for _, b := range versions {
			mine, err := CompareVersions(a, b)
			require.NoError(t, err)

			left, err := debversion.NewVersion(a)
			require.NoError(t, err)
			right, err := debversion.NewVersion(b)
			require.NoError(t, err)

			assert.Equal(t, left.Compare(right), mine, "%s vs %s", a, b)
		}
	}
}
