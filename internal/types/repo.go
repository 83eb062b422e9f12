package types

// RepoInfo describes one local repo on the aptly service.
type RepoInfo struct {
	Name                string
	Comment             string
	DefaultDistribution string
	DefaultComponent    string
}
