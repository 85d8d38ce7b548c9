// Command thzinfo prints the structure of a dotThz file: every
// measurement group with its metadata as JSON, and every dataset with its
// shape. With -raw it dumps the underlying HDF5 object tree instead.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/goccy/go-json"

	"github.com/dotthztag/go-dotthz"
	"github.com/dotthztag/go-dotthz/internal/hdf5"
)

func main() {
	raw := flag.Bool("raw", false, "dump the raw HDF5 object tree")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Println("Usage: thzinfo [-raw] <file.thz>")
		os.Exit(1)
	}

	filename := flag.Arg(0)

	if *raw {
		if err := dumpRaw(filename); err != nil {
			fmt.Printf("ERROR: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := dump(filename); err != nil {
		fmt.Printf("ERROR: %v\n", err)
		os.Exit(1)
	}
}

func dump(filename string) error {
	f, err := dotthz.Open(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	fmt.Printf("=== %s (%d bytes) ===\n\n", filename, f.Size())

	groups, err := f.Groups()
	if err != nil {
		return fmt.Errorf("listing groups: %w", err)
	}

	for _, g := range groups {
		fmt.Printf("Group %q:\n", g.Name())

		md, err := g.MetaData()
		if err != nil {
			fmt.Printf("  ERROR reading metadata: %v\n", err)
			continue
		}

		out, err := json.MarshalIndent(md, "  ", "  ")
		if err != nil {
			return fmt.Errorf("encoding metadata: %w", err)
		}
		fmt.Printf("  %s\n", out)

		names, err := g.DatasetNames()
		if err != nil {
			fmt.Printf("  ERROR listing datasets: %v\n", err)
			continue
		}

		for _, name := range names {
			ds, err := g.Dataset(name)
			if err != nil {
				fmt.Printf("  Dataset %q: ERROR: %v\n", name, err)
				continue
			}
			fmt.Printf("  Dataset %q: shape %v, %d elements\n",
				name, ds.Shape(), ds.NumElements())
		}
		fmt.Println()
	}

	return nil
}

// dumpRaw prints the HDF5 object hierarchy without interpreting the
// dotThz schema, for inspecting files from other writers.
func dumpRaw(filename string) error {
	f, err := hdf5.Open(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	fmt.Printf("=== %s (superblock v%d) ===\n\n", filename, f.Version())

	return hdf5.Walk(f.Root(), func(path string, obj interface{}, err error) error {
		if err != nil {
			fmt.Printf("%s: ERROR: %v\n", path, err)
			return nil
		}
		switch o := obj.(type) {
		case *hdf5.Group:
			fmt.Printf("Group %q: attrs %v\n", path, o.Attrs())
		case *hdf5.Dataset:
			fmt.Printf("Dataset %q: shape %v, attrs %v\n", path, o.Shape(), o.Attrs())
		}
		return nil
	})
}
