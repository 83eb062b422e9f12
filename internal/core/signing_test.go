package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aptly-ctl/internal/types"
)

func boolPtr(v bool) *bool    { return &v }
func strPtr(v string) *string { return &v }

// ---------------------------------------------------------------------------
// MergeSigning
// ---------------------------------------------------------------------------

func TestMergeSigningOverlaysSetFields(t *testing.T) {
	base := types.SigningConfig{Batch: true, GpgKey: "ABCD1234", Keyring: "trusted.gpg"}
	override := types.SigningOverride{
		GpgKey:     strPtr("FFFF0000"),
		Passphrase: strPtr("secret"),
	}

	got := MergeSigning(base, override)

	assert.Equal(t, "FFFF0000", got.GpgKey)
	assert.Equal(t, "secret", got.Passphrase)
	assert.Equal(t, "trusted.gpg", got.Keyring)
	assert.True(t, got.Batch)
}

func TestMergeSigningEmptyOverrideKeepsBase(t *testing.T) {
	base := types.SigningConfig{Batch: true, GpgKey: "ABCD1234"}
	assert.Equal(t, base, MergeSigning(base, types.SigningOverride{}))
}

func TestMergeSigningExplicitEmptyStringWins(t *testing.T) {
	base := types.SigningConfig{GpgKey: "ABCD1234"}
	got := MergeSigning(base, types.SigningOverride{GpgKey: strPtr(""), Skip: boolPtr(true)})
	assert.Empty(t, got.GpgKey)
	assert.True(t, got.Skip)
}

// ---------------------------------------------------------------------------
// ResolveSigning
// ---------------------------------------------------------------------------

func TestResolveSigningDefault(t *testing.T) {
	profile := types.Profile{
		Signing: types.SigningConfig{Batch: true, GpgKey: "ABCD1234"},
	}
	target := types.PublishTarget{Prefix: "debian", Distribution: "buster"}

	got, err := ResolveSigning(profile, target)
	require.NoError(t, err)
	assert.Equal(t, profile.Signing, got)
}

func TestResolveSigningExactOverride(t *testing.T) {
	profile := types.Profile{
		Signing: types.SigningConfig{Batch: true, GpgKey: "ABCD1234"},
		SigningOverrides: map[string]types.SigningOverride{
			"s3:mirror/buster": {GpgKey: strPtr("FFFF0000")},
		},
	}
	target := types.PublishTarget{Storage: "s3", Prefix: "mirror", Distribution: "buster"}

	got, err := ResolveSigning(profile, target)
	require.NoError(t, err)
	assert.Equal(t, "FFFF0000", got.GpgKey)
}

func TestResolveSigningNoPartialKeyMatch(t *testing.T) {
	profile := types.Profile{
		Signing: types.SigningConfig{Batch: true, GpgKey: "ABCD1234"},
		SigningOverrides: map[string]types.SigningOverride{
			"debian/buster": {GpgKey: strPtr("FFFF0000")},
		},
	}
	target := types.PublishTarget{Prefix: "debian", Distribution: "bullseye"}

	got, err := ResolveSigning(profile, target)
	require.NoError(t, err)
	assert.Equal(t, "ABCD1234", got.GpgKey)
}

func TestResolveSigningRootPrefixKey(t *testing.T) {
	profile := types.Profile{
		Signing: types.SigningConfig{Batch: true, GpgKey: "ABCD1234"},
		SigningOverrides: map[string]types.SigningOverride{
			"./buster": {Skip: boolPtr(true)},
		},
	}
	target := types.PublishTarget{Distribution: "buster"}

	got, err := ResolveSigning(profile, target)
	require.NoError(t, err)
	assert.True(t, got.Skip)
}

func TestResolveSigningMissingKeyRejected(t *testing.T) {
	profile := types.Profile{Signing: types.SigningConfig{Batch: true}}
	target := types.PublishTarget{Prefix: "debian", Distribution: "buster"}

	_, err := ResolveSigning(profile, target)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gpg key")
}

func TestResolveSigningSkipNeedsNoKey(t *testing.T) {
	profile := types.Profile{Signing: types.SigningConfig{Skip: true}}
	target := types.PublishTarget{Prefix: "debian", Distribution: "buster"}

	got, err := ResolveSigning(profile, target)
	require.NoError(t, err)
	assert.True(t, got.Skip)
}

// ---------------------------------------------------------------------------
// ValidateProfileSigning
// ---------------------------------------------------------------------------

func TestValidateProfileSigningChecksOverrides(t *testing.T) {
	profile := types.Profile{
		Signing: types.SigningConfig{GpgKey: "ABCD1234"},
		SigningOverrides: map[string]types.SigningOverride{
			"debian/buster": {GpgKey: strPtr("")},
		},
	}

	err := ValidateProfileSigning(profile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "debian/buster")
}

func TestValidateProfileSigningAllValid(t *testing.T) {
	profile := types.Profile{
		Signing: types.SigningConfig{Skip: true},
		SigningOverrides: map[string]types.SigningOverride{
			"debian/buster": {Skip: boolPtr(false), GpgKey: strPtr("ABCD1234")},
		},
	}
	require.NoError(t, ValidateProfileSigning(profile))
}
