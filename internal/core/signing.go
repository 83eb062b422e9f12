package core

import (
	"errors"
	"fmt"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"aptly-ctl/internal/types"
)

// ResolveSigning returns the signing configuration for one publish target:
// the profile default, or the exact-key override merged over it. Keys must
// match the normalized "[storage:]prefix/distribution" form exactly; there
// is no wildcard or partial-prefix matching.
func ResolveSigning(profile types.Profile, target types.PublishTarget) (types.SigningConfig, error) {
	resolved := profile.Signing
	if override, ok := profile.SigningOverrides[target.Key()]; ok {
		resolved = MergeSigning(resolved, override)
	}
	if err := ValidateSigning(resolved); err != nil {
		return types.SigningConfig{}, err
	}
	return resolved, nil
}

// MergeSigning overlays the set fields of an override onto a base config.
// Nil override fields inherit the base value.
func MergeSigning(base types.SigningConfig, override types.SigningOverride) types.SigningConfig {
	merged := base
	if override.Skip != nil {
		merged.Skip = *override.Skip
	}
	if override.Batch != nil {
		merged.Batch = *override.Batch
	}
	if override.GpgKey != nil {
		merged.GpgKey = *override.GpgKey
	}
	if override.Keyring != nil {
		merged.Keyring = *override.Keyring
	}
	if override.SecretKeyring != nil {
		merged.SecretKeyring = *override.SecretKeyring
	}
	if override.Passphrase != nil {
		merged.Passphrase = *override.Passphrase
	}
	if override.PassphraseFile != nil {
		merged.PassphraseFile = *override.PassphraseFile
	}
	return merged
}

// ValidateSigning rejects configurations that would sign without a key.
// Relying on the aptly host's default gpg key is never allowed.
func ValidateSigning(config types.SigningConfig) error {
	if !config.Skip && config.GpgKey == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("signing requires an explicit gpg key unless skip is set")
	}
	return nil
}

// ValidateProfileSigning checks the profile default and every override
// merged over it, so a bad signing setup fails before any remote call.
func ValidateProfileSigning(profile types.Profile) error {
	if err := ValidateSigning(profile.Signing); err != nil {
		return err
	}
	for key, override := range profile.SigningOverrides {
		if err := ValidateSigning(MergeSigning(profile.Signing, override)); err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeFailedPrecondition).
				WithMsg(fmt.Sprintf("signing override %q: %s", key, errorMessage(err))).
				WithCause(err)
		}
	}
	return nil
}

func errorMessage(err error) string {
	var builder *errbuilder.ErrBuilder
	if errors.As(err, &builder) && builder.Msg != "" {
		return builder.Msg
	}
	return err.Error()
}
