package types

// SigningConfig is a fully resolved set of publish signing parameters.
// Every field has a concrete value after resolution.
type SigningConfig struct {
	Skip           bool
	Batch          bool
	GpgKey         string
	Keyring        string
	SecretKeyring  string
	Passphrase     string
	PassphraseFile string
}

// SigningOverride is a partial signing configuration. Nil fields inherit
// the profile default during merge.
type SigningOverride struct {
	Skip           *bool   `yaml:"skip"`
	Batch          *bool   `yaml:"batch"`
	GpgKey         *string `yaml:"gpgkey"`
	Keyring        *string `yaml:"keyring"`
	SecretKeyring  *string `yaml:"secret_keyring"`
	Passphrase     *string `yaml:"passphrase"`
	PassphraseFile *string `yaml:"passphrase_file"`
}

// Profile is one named endpoint configuration, loaded once per invocation
// and read-only afterwards. SigningOverrides is keyed by the normalized
// publish identity "[storage:]prefix/distribution".
type Profile struct {
	Name             string
	URL              string
	TimeoutSec       int
	Signing          SigningConfig
	SigningOverrides map[string]SigningOverride
}
