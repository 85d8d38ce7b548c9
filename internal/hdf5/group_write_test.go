package hdf5

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestCreateGroup(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "hdf5-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	testFile := filepath.Join(tmpDir, "groups.h5")

	f, err := Create(testFile)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	g, err := f.Root().CreateGroup("measurement")
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	if g.Path() != "/measurement" {
		t.Errorf("Expected path /measurement, got %s", g.Path())
	}

	// Visible in this session without reopening
	if _, err := f.Root().OpenGroup("measurement"); err != nil {
		t.Fatalf("OpenGroup in session failed: %v", err)
	}

	// Name collision
	if _, err := f.Root().CreateGroup("measurement"); !errors.Is(err, ErrExists) {
		t.Errorf("Expected ErrExists, got %v", err)
	}

	f.Close()

	f2, err := Open(testFile)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f2.Close()

	g2, err := f2.Root().OpenGroup("measurement")
	if err != nil {
		t.Fatalf("OpenGroup after reopen failed: %v", err)
	}
	if g2.Name() != "measurement" {
		t.Errorf("Expected name measurement, got %s", g2.Name())
	}
}

func TestGroupSetAttr(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "hdf5-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	testFile := filepath.Join(tmpDir, "attrs.h5")

	f, err := Create(testFile)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	g, err := f.Root().CreateGroup("scan")
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	if err := g.SetAttr("instrument", "TeraFlash"); err != nil {
		t.Fatalf("SetAttr string failed: %v", err)
	}
	if err := g.SetAttr("runs", int32(3)); err != nil {
		t.Fatalf("SetAttr int32 failed: %v", err)
	}
	if err := g.SetAttr("step", 0.25); err != nil {
		t.Fatalf("SetAttr float64 failed: %v", err)
	}

	// Readable in this session
	attr := g.Attr("instrument")
	if attr == nil {
		t.Fatal("Attr returned nil in session")
	}
	val, err := attr.ReadScalarString()
	if err != nil {
		t.Fatalf("ReadScalarString failed: %v", err)
	}
	if val != "TeraFlash" {
		t.Errorf("Expected TeraFlash, got %q", val)
	}

	// Overwrite keeps the attribute's position
	if err := g.SetAttr("instrument", "Menlo TERA"); err != nil {
		t.Fatalf("SetAttr overwrite failed: %v", err)
	}
	attrs := g.Attrs()
	if len(attrs) != 3 || attrs[0] != "instrument" {
		t.Errorf("Expected [instrument runs step], got %v", attrs)
	}

	f.Close()

	f2, err := Open(testFile)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f2.Close()

	g2, err := f2.Root().OpenGroup("scan")
	if err != nil {
		t.Fatalf("OpenGroup failed: %v", err)
	}

	val2, err := g2.Attr("instrument").ReadScalarString()
	if err != nil {
		t.Fatalf("ReadScalarString after reopen failed: %v", err)
	}
	if val2 != "Menlo TERA" {
		t.Errorf("Expected Menlo TERA, got %q", val2)
	}

	runs, err := g2.Attr("runs").ReadScalarInt64()
	if err != nil {
		t.Fatalf("ReadScalarInt64 failed: %v", err)
	}
	if runs != 3 {
		t.Errorf("Expected 3, got %d", runs)
	}

	step, err := g2.Attr("step").ReadScalarFloat64()
	if err != nil {
		t.Fatalf("ReadScalarFloat64 failed: %v", err)
	}
	if step != 0.25 {
		t.Errorf("Expected 0.25, got %v", step)
	}
}

func TestGroupDeleteAttr(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "hdf5-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	testFile := filepath.Join(tmpDir, "delattr.h5")

	f, err := Create(testFile)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	g, err := f.Root().CreateGroup("scan")
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	if err := g.SetAttr("keep", "yes"); err != nil {
		t.Fatalf("SetAttr failed: %v", err)
	}
	if err := g.SetAttr("drop", "no"); err != nil {
		t.Fatalf("SetAttr failed: %v", err)
	}

	if err := g.DeleteAttr("drop"); err != nil {
		t.Fatalf("DeleteAttr failed: %v", err)
	}
	if g.HasAttr("drop") {
		t.Error("Attribute still present after delete")
	}
	if !g.HasAttr("keep") {
		t.Error("Unrelated attribute lost")
	}

	if err := g.DeleteAttr("drop"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound on second delete, got %v", err)
	}

	f.Close()

	f2, err := Open(testFile)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f2.Close()

	g2, err := f2.Root().OpenGroup("scan")
	if err != nil {
		t.Fatalf("OpenGroup failed: %v", err)
	}
	if g2.HasAttr("drop") {
		t.Error("Deleted attribute survived reopen")
	}
	if !g2.HasAttr("keep") {
		t.Error("Kept attribute missing after reopen")
	}
}

func TestRootGroupAttr(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "hdf5-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	testFile := filepath.Join(tmpDir, "rootattr.h5")

	f, err := Create(testFile)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Attributes on the root group relocate the root header; the
	// superblock must follow.
	if err := f.Root().SetAttr("creator", "go-dotthz"); err != nil {
		t.Fatalf("SetAttr on root failed: %v", err)
	}
	f.Close()

	f2, err := Open(testFile)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f2.Close()

	val, err := f2.Root().Attr("creator").ReadScalarString()
	if err != nil {
		t.Fatalf("ReadScalarString failed: %v", err)
	}
	if val != "go-dotthz" {
		t.Errorf("Expected go-dotthz, got %q", val)
	}
}

func TestGroupAttrOnReopenedFile(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "hdf5-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	testFile := filepath.Join(tmpDir, "reattr.h5")

	f, err := Create(testFile)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := f.Root().CreateGroup("scan"); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	f.Close()

	// Setting attributes on a group opened from disk exercises the
	// header relocation through the parent link.
	f2, err := OpenReadWrite(testFile)
	if err != nil {
		t.Fatalf("OpenReadWrite failed: %v", err)
	}
	g, err := f2.Root().OpenGroup("scan")
	if err != nil {
		t.Fatalf("OpenGroup failed: %v", err)
	}
	if err := g.SetAttr("mode", "THz-TDS"); err != nil {
		t.Fatalf("SetAttr failed: %v", err)
	}
	f2.Close()

	f3, err := Open(testFile)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f3.Close()

	g3, err := f3.Root().OpenGroup("scan")
	if err != nil {
		t.Fatalf("OpenGroup failed: %v", err)
	}
	val, err := g3.Attr("mode").ReadScalarString()
	if err != nil {
		t.Fatalf("ReadScalarString failed: %v", err)
	}
	if val != "THz-TDS" {
		t.Errorf("Expected THz-TDS, got %q", val)
	}
}
