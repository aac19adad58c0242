package cache

// LayoutKeyOpts are the layout parameters that change the result.
type LayoutKeyOpts struct {
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	Rotations int     `json:"rotations"`
	Margin    float64 `json:"margin"`
	RootFrame bool    `json:"root_frame"`
}

// ArtifactKeyOpts identify a rendered artifact of a tree.
type ArtifactKeyOpts struct {
	Format  string `json:"format"`
	Width   int    `json:"width,omitempty"`
	Height  int    `json:"height,omitempty"`
	ShowIDs bool   `json:"show_ids,omitempty"`
}

// Keyer derives cache keys.
type Keyer interface {
	// LayoutKey returns the key of a layout of the tree with hash treeHash.
	LayoutKey(treeHash string, opts LayoutKeyOpts) string
	// ArtifactKey returns the key of a rendered artifact (SVG, PNG).
	ArtifactKey(treeHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes options into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LayoutKey implements Keyer.
func (DefaultKeyer) LayoutKey(treeHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", treeHash, opts)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(treeHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", treeHash, opts)
}
