package types

// SyncItem is one unit of work in a sync command outcome: either a package
// reference or a publish target, never both.
type SyncItem struct {
	Package *PackageRef
	Publish *PublishTarget
}

func (i SyncItem) String() string {
	if i.Package != nil {
		return i.Package.String()
	}
	if i.Publish != nil {
		return i.Publish.Key()
	}
	return ""
}

type SyncFailure struct {
	Item    SyncItem
	Kind    FailureKind
	Message string
}

// SyncOutcome is the per-invocation accounting of a sync command. Both
// slices preserve the order in which items were processed.
type SyncOutcome struct {
	Succeeded []SyncItem
	Failed    []SyncFailure
}

// OK reports overall success: no recorded failures.
func (o SyncOutcome) OK() bool {
	return len(o.Failed) == 0
}

// AddReport mirrors the report aptly returns when an uploaded file is
// included into a local repository.
type AddReport struct {
	Added       []string
	Removed     []string
	Warnings    []string
	FailedFiles []string
}
