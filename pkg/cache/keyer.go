package cache

// Keyer builds cache keys.
type Keyer interface {
	// ArtifactKey returns the key of a rendered artifact.
	ArtifactKey(dotHash string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts are the inputs besides the DOT text that change a
// rendered artifact.
type ArtifactKeyOpts struct {
	Format string `json:"format"`
}

// DefaultKeyer produces unprefixed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ArtifactKey returns "artifact:<sha256>".
func (DefaultKeyer) ArtifactKey(dotHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", dotHash, opts)
}
