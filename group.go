package dotthz

// Group is a non-owning view of one measurement group, bound by name to a
// still-open File. It avoids re-specifying the group name on every call
// and must not outlive the File it came from.
type Group struct {
	file *File
	name string
}

// Name returns the group name.
func (g *Group) Name() string {
	return g.name
}

// MetaData reads the group's metadata record.
func (g *Group) MetaData() (*Metadata, error) {
	return g.file.GetMetaData(g.name)
}

// DatasetNames returns the dataset names within this group.
func (g *Group) DatasetNames() ([]string, error) {
	return g.file.DatasetNames(g.name)
}

// Datasets returns handles to all datasets within this group.
func (g *Group) Datasets() ([]*Dataset, error) {
	return g.file.Datasets(g.name)
}

// Dataset returns a handle to one dataset within this group.
func (g *Group) Dataset(name string) (*Dataset, error) {
	return g.file.Dataset(g.name, name)
}
