package hdf5

import (
	"path"
)

// WalkFunc is called for each object during traversal.
// path is the full path to the object.
// obj is either *Group or *Dataset.
// err is any error encountered opening the object.
// Return nil to continue walking, or an error to stop.
type WalkFunc func(path string, obj interface{}, err error) error

// Walk traverses all objects (groups and datasets) in the hierarchy
// starting from g. The callback is called for each group and dataset,
// including the starting group.
func Walk(g *Group, fn WalkFunc) error {
	return walkGroup(g, fn)
}

func walkGroup(g *Group, fn WalkFunc) error {
	if err := fn(g.Path(), g, nil); err != nil {
		return err
	}

	members, err := g.Members()
	if err != nil {
		return err
	}

	for _, name := range members {
		childPath := path.Join(g.Path(), name)

		childGroup, err := g.OpenGroup(name)
		if err == nil {
			if err := walkGroup(childGroup, fn); err != nil {
				return err
			}
			continue
		}

		dataset, err := g.OpenDataset(name)
		if err == nil {
			if err := fn(childPath, dataset, nil); err != nil {
				return err
			}
			continue
		}

		if err := fn(childPath, nil, err); err != nil {
			return err
		}
	}

	return nil
}
