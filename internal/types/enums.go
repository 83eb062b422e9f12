package types

type FailureKind string

const (
	FailureKindInvalidVersion       FailureKind = "invalid-version"
	FailureKindInvalidArgument      FailureKind = "invalid-argument"
	FailureKindMissingSigningKey    FailureKind = "missing-signing-key"
	FailureKindRemoteCallFailed     FailureKind = "remote-call-failed"
	FailureKindNoDependentPublishes FailureKind = "no-dependent-publishes"
)

type SourceKind string

const (
	SourceKindLocal    SourceKind = "local"
	SourceKindSnapshot SourceKind = "snapshot"
)
