package hdf5

import (
	"fmt"
	"path"

	"github.com/dotthztag/go-dotthz/internal/btree"
	"github.com/dotthztag/go-dotthz/internal/heap"
	"github.com/dotthztag/go-dotthz/internal/message"
	"github.com/dotthztag/go-dotthz/internal/object"
)

// Group represents an HDF5 group.
//
// Links and attributes are loaded lazily from the object header. Once
// loaded, the in-memory lists are canonical for this handle: write
// operations mutate them and rewrite the header, so a group created or
// modified in the current session reads back consistently without
// reopening the file.
type Group struct {
	file   *File
	path   string
	header *object.Header
	addr   uint64

	loaded bool
	links  []*message.Link
	attrs  []*message.Attribute
}

// linkResolution holds the result of resolving a link.
type linkResolution struct {
	address   uint64 // Object address
	isDataset bool   // True if target is a dataset
}

// Name returns the group name (last component of path).
func (g *Group) Name() string {
	if g.path == "/" {
		return "/"
	}
	return path.Base(g.path)
}

// Path returns the full path to this group.
func (g *Group) Path() string {
	return g.path
}

// ensureLoaded populates the link and attribute lists from the object
// header. Newly created groups start out empty.
func (g *Group) ensureLoaded() error {
	if g.loaded {
		return nil
	}

	if g.header == nil && g.file.reader != nil {
		header, err := object.Read(g.file.reader, g.addr)
		if err == nil {
			g.header = header
		}
	}

	if g.header != nil {
		for _, msg := range g.header.GetMessages(message.TypeLink) {
			g.links = append(g.links, msg.(*message.Link))
		}
		for _, msg := range g.header.GetMessages(message.TypeAttribute) {
			g.attrs = append(g.attrs, msg.(*message.Attribute))
		}
	}

	g.loaded = true
	return nil
}

// symbolTable returns the v1 symbol table for this group, or nil if the
// group uses link messages. The root group of v0/v1 superblock files keeps
// its symbol table addresses in the superblock scratch pad.
func (g *Group) symbolTable() *message.SymbolTable {
	if g.header != nil {
		if msg := g.header.GetMessage(message.TypeSymbolTable); msg != nil {
			return msg.(*message.SymbolTable)
		}
	}
	if g.path == "/" && g.file.superblock.RootGroupBTreeAddress != 0 {
		return &message.SymbolTable{
			BTreeAddress:     g.file.superblock.RootGroupBTreeAddress,
			LocalHeapAddress: g.file.superblock.RootGroupLocalHeapAddress,
		}
	}
	return nil
}

// OpenGroup opens a subgroup by relative path.
func (g *Group) OpenGroup(relativePath string) (*Group, error) {
	obj, err := g.open(relativePath)
	if err != nil {
		return nil, err
	}

	group, ok := obj.(*Group)
	if !ok {
		return nil, ErrNotGroup
	}
	return group, nil
}

// OpenDataset opens a dataset by relative path.
func (g *Group) OpenDataset(relativePath string) (*Dataset, error) {
	obj, err := g.open(relativePath)
	if err != nil {
		return nil, err
	}

	dataset, ok := obj.(*Dataset)
	if !ok {
		return nil, ErrNotDataset
	}
	return dataset, nil
}

// open opens an object by relative path.
func (g *Group) open(relativePath string) (interface{}, error) {
	parts := splitPath(relativePath)
	if len(parts) == 0 {
		return g, nil
	}

	current := g
	visited := make(map[string]bool)

	for i, name := range parts {
		res, err := current.findChildFull(name, visited)
		if err != nil {
			return nil, fmt.Errorf("finding %q: %w", name, err)
		}

		fullPath := path.Join(current.path, name)

		if i == len(parts)-1 {
			if res.isDataset {
				return g.file.openDatasetAt(res.address, fullPath)
			}
			return g.file.openGroupAt(res.address, fullPath)
		}

		if res.isDataset {
			return nil, fmt.Errorf("%q is not a group", fullPath)
		}

		nextGroup, err := g.file.openGroupAt(res.address, fullPath)
		if err != nil {
			return nil, err
		}
		current = nextGroup
	}

	return current, nil
}

// Exists reports whether a child object with the given name exists.
func (g *Group) Exists(name string) bool {
	_, err := g.findChildFull(name, make(map[string]bool))
	return err == nil
}

// findChildFull finds a child by name and resolves it to an object address.
func (g *Group) findChildFull(name string, visited map[string]bool) (*linkResolution, error) {
	if err := g.ensureLoaded(); err != nil {
		return nil, err
	}

	// Link messages (v2 groups)
	for _, link := range g.links {
		if link.Name == name {
			return g.resolveLink(link, visited)
		}
	}

	// Symbol table (v1 groups) - requires B-tree traversal
	if symTable := g.symbolTable(); symTable != nil {
		return g.findChildV1(name, symTable, visited)
	}

	return nil, ErrNotFound
}

// resolveLink resolves a link to get the target object's address.
func (g *Group) resolveLink(link *message.Link, visited map[string]bool) (*linkResolution, error) {
	switch {
	case link.IsHard():
		isDataset, err := g.isDataset(link.ObjectAddress)
		if err != nil {
			return nil, err
		}
		return &linkResolution{
			address:   link.ObjectAddress,
			isDataset: isDataset,
		}, nil

	case link.IsSoft():
		targetPath := link.SoftLinkValue
		if len(visited) >= MaxLinkDepth {
			return nil, ErrLinkDepth
		}
		if visited[targetPath] {
			return nil, fmt.Errorf("circular soft link detected: %s", targetPath)
		}
		visited[targetPath] = true
		addr, isDs, err := g.file.findByAbsolutePath(targetPath, visited)
		if err != nil {
			return nil, err
		}
		return &linkResolution{address: addr, isDataset: isDs}, nil

	default:
		return nil, fmt.Errorf("%w: link type %d", ErrUnsupported, link.LinkType)
	}
}

// findChildV1 finds a child in a v1 group using the symbol table.
func (g *Group) findChildV1(name string, symTable *message.SymbolTable, visited map[string]bool) (*linkResolution, error) {
	entries, err := g.readSymbolTableEntries(symTable)
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		if entry.Name != name {
			continue
		}

		// Soft link entry - resolve the target path
		if entry.LinkType == 1 {
			targetPath := entry.SoftLinkValue
			if len(visited) >= MaxLinkDepth {
				return nil, ErrLinkDepth
			}
			if visited[targetPath] {
				return nil, fmt.Errorf("circular soft link detected: %s", targetPath)
			}
			visited[targetPath] = true
			addr, isDs, err := g.file.findByAbsolutePath(targetPath, visited)
			if err != nil {
				return nil, err
			}
			return &linkResolution{address: addr, isDataset: isDs}, nil
		}

		isDataset, err := g.isDataset(entry.ObjectAddress)
		if err != nil {
			return nil, err
		}
		return &linkResolution{
			address:   entry.ObjectAddress,
			isDataset: isDataset,
		}, nil
	}

	return nil, ErrNotFound
}

// readSymbolTableEntries reads all entries of a v1 group's symbol table.
func (g *Group) readSymbolTableEntries(symTable *message.SymbolTable) ([]btree.GroupEntry, error) {
	localHeap, err := heap.ReadLocalHeap(g.file.reader, symTable.LocalHeapAddress)
	if err != nil {
		return nil, fmt.Errorf("reading local heap: %w", err)
	}

	entries, err := btree.ReadGroupEntries(g.file.reader, symTable.BTreeAddress, localHeap)
	if err != nil {
		return nil, fmt.Errorf("reading B-tree: %w", err)
	}
	return entries, nil
}

// isDataset checks if an object at the given address is a dataset.
func (g *Group) isDataset(address uint64) (bool, error) {
	header, err := object.Read(g.file.reader, address)
	if err != nil {
		return false, err
	}

	// A dataset has a dataspace message
	return header.GetMessage(message.TypeDataspace) != nil, nil
}

// Members returns the names of all members (groups and datasets) in this
// group, in stored order.
func (g *Group) Members() ([]string, error) {
	if err := g.ensureLoaded(); err != nil {
		return nil, err
	}

	var names []string
	for _, link := range g.links {
		names = append(names, link.Name)
	}

	if len(names) == 0 {
		if symTable := g.symbolTable(); symTable != nil {
			entries, err := g.readSymbolTableEntries(symTable)
			if err != nil {
				return nil, err
			}
			for _, entry := range entries {
				names = append(names, entry.Name)
			}
		}
	}

	return names, nil
}

// NumObjects returns the number of objects in this group.
func (g *Group) NumObjects() (int, error) {
	members, err := g.Members()
	if err != nil {
		return 0, err
	}
	return len(members), nil
}

// Attrs returns the attribute names for this group, in stored order.
func (g *Group) Attrs() []string {
	if err := g.ensureLoaded(); err != nil {
		return nil
	}

	var names []string
	for _, attr := range g.attrs {
		names = append(names, attr.Name)
	}
	return names
}

// Attr returns an attribute by name, or nil if not found.
func (g *Group) Attr(name string) *Attribute {
	if err := g.ensureLoaded(); err != nil {
		return nil
	}

	for _, attr := range g.attrs {
		if attr.Name == name {
			return &Attribute{msg: attr, reader: g.file.reader}
		}
	}
	return nil
}

// HasAttr returns true if the group has an attribute with the given name.
func (g *Group) HasAttr(name string) bool {
	return g.Attr(name) != nil
}
