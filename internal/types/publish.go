package types

// PublishTarget describes one published snapshot on the aptly service,
// identified by storage, prefix, and distribution. Sources holds the names
// of the local repositories the publish is composed from.
type PublishTarget struct {
	Storage       string
	Prefix        string
	Distribution  string
	SourceKind    SourceKind
	Sources       []string
	Architectures []string
	Label         string
	Origin        string
}

// PublishSource names one local repo or snapshot a publish is built from.
// An empty Component lets the service pick the source's default.
type PublishSource struct {
	Name      string
	Component string
}

// Key returns the normalized identity "[storage:]prefix/distribution" used
// for signing-override lookup. An empty prefix means the root prefix ".".
func (t PublishTarget) Key() string {
	prefix := t.Prefix
	if prefix == "" {
		prefix = "."
	}
	if t.Storage != "" {
		return t.Storage + ":" + prefix + "/" + t.Distribution
	}
	return prefix + "/" + t.Distribution
}
