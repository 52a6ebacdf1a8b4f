package cache

import "fmt"

// ArtifactKeyOpts are the render options that change an artifact's bytes.
type ArtifactKeyOpts struct {
	Format   string  `json:"format"`
	Clusters bool    `json:"clusters,omitempty"`
	Scale    float64 `json:"scale,omitempty"`
	Title    string  `json:"title,omitempty"`
}

// Keyer builds cache keys.
type Keyer interface {
	// ReportKey identifies the report for a graph checked against a policy.
	ReportKey(graphHash, configHash string) string

	// ReportIDKey identifies a report by its ID.
	ReportIDKey(id string) string

	// ArtifactKey identifies a rendered artifact of a styled view.
	ArtifactKey(viewHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer builds unscoped keys of the form "<kind>:<hash>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ReportKey implements Keyer.
func (DefaultKeyer) ReportKey(graphHash, configHash string) string {
	return hashKey("report", graphHash, configHash)
}

// ReportIDKey implements Keyer.
func (DefaultKeyer) ReportIDKey(id string) string {
	return fmt.Sprintf("report-id:%s", id)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(viewHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", viewHash, opts)
}

var _ Keyer = DefaultKeyer{}
