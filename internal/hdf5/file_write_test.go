package hdf5

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestCreate(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "hdf5-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	testFile := filepath.Join(tmpDir, "test.h5")

	f, err := Create(testFile)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if !f.IsWritable() {
		t.Error("File should be writable")
	}

	if f.Root() == nil {
		t.Error("Root group should not be nil")
	}

	if err := f.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if _, err := os.Stat(testFile); os.IsNotExist(err) {
		t.Fatal("File was not created")
	}

	f2, err := Open(testFile)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f2.Close()

	if f2.Version() < 2 {
		t.Errorf("Expected superblock version >= 2, got %d", f2.Version())
	}

	if f2.Root() == nil {
		t.Error("Root group should not be nil after reopen")
	}
}

func TestCreateExclusive(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "hdf5-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	testFile := filepath.Join(tmpDir, "excl.h5")

	f, err := Create(testFile, WithExclusive())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	f.Close()

	_, err = Create(testFile, WithExclusive())
	if !errors.Is(err, ErrExists) {
		t.Fatalf("Expected ErrExists, got %v", err)
	}

	// Without the option the existing file is truncated
	f2, err := Create(testFile)
	if err != nil {
		t.Fatalf("Truncating Create failed: %v", err)
	}
	f2.Close()
}

func TestOpenNotHDF5(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "hdf5-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	testFile := filepath.Join(tmpDir, "junk.h5")
	if err := os.WriteFile(testFile, []byte("this is not an hdf5 file"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	_, err = Open(testFile)
	if !errors.Is(err, ErrNotHDF5) {
		t.Fatalf("Expected ErrNotHDF5, got %v", err)
	}

	_, err = OpenReadWrite(testFile)
	if !errors.Is(err, ErrNotHDF5) {
		t.Fatalf("Expected ErrNotHDF5 from OpenReadWrite, got %v", err)
	}
}

func TestOpenReadWrite(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "hdf5-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	testFile := filepath.Join(tmpDir, "rw.h5")

	f, err := Create(testFile)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := f.Root().CreateGroup("first"); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	f.Close()

	// Reopen read-write and add another group
	f2, err := OpenReadWrite(testFile)
	if err != nil {
		t.Fatalf("OpenReadWrite failed: %v", err)
	}
	if _, err := f2.Root().CreateGroup("second"); err != nil {
		t.Fatalf("CreateGroup after reopen failed: %v", err)
	}
	f2.Close()

	f3, err := Open(testFile)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f3.Close()

	members, err := f3.Root().Members()
	if err != nil {
		t.Fatalf("Members failed: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("Expected 2 members, got %v", members)
	}
	if members[0] != "first" || members[1] != "second" {
		t.Errorf("Expected [first second], got %v", members)
	}
}

func TestReadOnlyGuards(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "hdf5-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	testFile := filepath.Join(tmpDir, "ro.h5")

	f, err := Create(testFile)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	f.Close()

	f2, err := Open(testFile)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f2.Close()

	if _, err := f2.Root().CreateGroup("nope"); !errors.Is(err, ErrReadOnly) {
		t.Errorf("Expected ErrReadOnly from CreateGroup, got %v", err)
	}
	if err := f2.Root().SetAttr("a", "b"); !errors.Is(err, ErrReadOnly) {
		t.Errorf("Expected ErrReadOnly from SetAttr, got %v", err)
	}
	if _, err := f2.Root().CreateDataset("d", []float64{1}); !errors.Is(err, ErrReadOnly) {
		t.Errorf("Expected ErrReadOnly from CreateDataset, got %v", err)
	}
}
