package dotthz

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func tempFile(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join(t.TempDir(), name)
}

func sampleMetadata() *Metadata {
	md := NewMetadata()
	md.User = "J. Doe"
	md.Email = "j.doe@example.org"
	md.ORCID = "0000-0001-2345-6789"
	md.Institution = "Example University"
	md.Description = "reference scan"
	md.Version = "1.00"
	md.Mode = "THz-TDS"
	md.Instrument = "Toptica TeraFlash Pro"
	md.Time = "11:04:12"
	md.Date = "2024-03-01"
	md.SetMD("temperature", "295 K")
	md.SetMD("humidity", "4 %")
	md.SetMD("thickness", "1.05 mm")
	md.DsDescription = []string{"Sample", "Reference"}
	return md
}

func TestMetadataRoundTrip(t *testing.T) {
	path := tempFile(t, "roundtrip.thz")

	f, err := Create(path)
	require.NoError(t, err)

	want := sampleMetadata()
	_, err = f.AddGroup("Measurement 1", want)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	f2, err := Open(path)
	require.NoError(t, err)
	defer f2.Close()

	got, err := f2.GetMetaData("Measurement 1")
	require.NoError(t, err)

	require.Equal(t, want.User, got.User)
	require.Equal(t, want.Email, got.Email)
	require.Equal(t, want.ORCID, got.ORCID)
	require.Equal(t, want.Institution, got.Institution)
	require.Equal(t, want.Description, got.Description)
	require.Equal(t, want.Version, got.Version)
	require.Equal(t, want.Mode, got.Mode)
	require.Equal(t, want.Instrument, got.Instrument)
	require.Equal(t, want.Time, got.Time)
	require.Equal(t, want.Date, got.Date)
	require.Equal(t, want.DsDescription, got.DsDescription)

	var keys, values []string
	for pair := got.MD.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
		values = append(values, pair.Value)
	}
	require.Equal(t, []string{"temperature", "humidity", "thickness"}, keys)
	require.Equal(t, []string{"295 K", "4 %", "1.05 mm"}, values)
}

func TestSetMetaData(t *testing.T) {
	path := tempFile(t, "update.thz")

	f, err := Create(path)
	require.NoError(t, err)
	defer f.Close()

	_, err = f.AddGroup("scan", sampleMetadata())
	require.NoError(t, err)

	update := sampleMetadata()
	update.Instrument = "Menlo TERA K15"
	update.MD.Delete("thickness")
	require.NoError(t, f.SetMetaData("scan", update))

	got, err := f.GetMetaData("scan")
	require.NoError(t, err)
	require.Equal(t, "Menlo TERA K15", got.Instrument)
	require.Equal(t, 2, got.MD.Len())
	_, ok := got.MD.Get("thickness")
	require.False(t, ok)

	// Unknown group
	err = f.SetMetaData("missing", update)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLenientRead(t *testing.T) {
	path := tempFile(t, "lenient.thz")

	f, err := Create(path)
	require.NoError(t, err)
	defer f.Close()

	_, err = f.AddGroup("scan", sampleMetadata())
	require.NoError(t, err)

	// Drop one fixed attribute directly; the read must still succeed with
	// the field at its zero value.
	require.NoError(t, f.DeleteMetaDataAttribute("scan", "instrument"))

	got, err := f.GetMetaData("scan")
	require.NoError(t, err)
	require.Empty(t, got.Instrument)
	require.Equal(t, "THz-TDS", got.Mode)
	require.Equal(t, "J. Doe", got.User)
}

func TestDeleteMetaDataAttribute(t *testing.T) {
	path := tempFile(t, "delete.thz")

	f, err := Create(path)
	require.NoError(t, err)
	defer f.Close()

	_, err = f.AddGroup("scan", sampleMetadata())
	require.NoError(t, err)

	// Deleting by md key renumbers the remaining entries.
	require.NoError(t, f.DeleteMetaDataAttribute("scan", "humidity"))

	got, err := f.GetMetaData("scan")
	require.NoError(t, err)
	_, ok := got.MD.Get("humidity")
	require.False(t, ok)

	temp, ok := got.MD.Get("temperature")
	require.True(t, ok)
	require.Equal(t, "295 K", temp)
	thick, ok := got.MD.Get("thickness")
	require.True(t, ok)
	require.Equal(t, "1.05 mm", thick)

	// Second delete of the same key
	err = f.DeleteMetaDataAttribute("scan", "humidity")
	require.ErrorIs(t, err, ErrNotFound)

	// Unknown group
	err = f.DeleteMetaDataAttribute("missing", "temperature")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteRawMDAttributeName(t *testing.T) {
	path := tempFile(t, "delete_raw.thz")

	f, err := Create(path)
	require.NoError(t, err)
	defer f.Close()

	_, err = f.AddGroup("scan", sampleMetadata())
	require.NoError(t, err)

	// Deleting a raw "mdN" name removes only that attribute; the key list
	// in mdDescription is untouched, so the first key now reads empty.
	require.NoError(t, f.DeleteMetaDataAttribute("scan", "md1"))

	got, err := f.GetMetaData("scan")
	require.NoError(t, err)

	temp, ok := got.MD.Get("temperature")
	require.True(t, ok)
	require.Equal(t, "", temp)

	humidity, ok := got.MD.Get("humidity")
	require.True(t, ok)
	require.Equal(t, "4 %", humidity)
}

func TestGroupEnumeration(t *testing.T) {
	path := tempFile(t, "groups.thz")

	f, err := Create(path)
	require.NoError(t, err)
	defer f.Close()

	for _, name := range []string{"Measurement 1", "Measurement 2", "Measurement 3"} {
		_, err := f.AddGroup(name, sampleMetadata())
		require.NoError(t, err)
	}

	names, err := f.GroupNames()
	require.NoError(t, err)
	require.Equal(t, []string{"Measurement 1", "Measurement 2", "Measurement 3"}, names)

	// Idempotent listing
	again, err := f.GroupNames()
	require.NoError(t, err)
	require.Equal(t, names, again)

	groups, err := f.Groups()
	require.NoError(t, err)
	require.Len(t, groups, 3)
	require.Equal(t, "Measurement 2", groups[1].Name())

	g, err := f.Group("Measurement 3")
	require.NoError(t, err)
	require.Equal(t, "Measurement 3", g.Name())

	_, err = f.Group("Measurement 4")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAddGroupCollision(t *testing.T) {
	path := tempFile(t, "collide.thz")

	f, err := Create(path)
	require.NoError(t, err)
	defer f.Close()

	want := sampleMetadata()
	_, err = f.AddGroup("scan", want)
	require.NoError(t, err)

	other := NewMetadata()
	other.User = "intruder"
	_, err = f.AddGroup("scan", other)
	require.ErrorIs(t, err, ErrExists)

	// Existing group data is unmodified
	got, err := f.GetMetaData("scan")
	require.NoError(t, err)
	require.Equal(t, want.User, got.User)
}

func TestDatasetRoundTripFloat64(t *testing.T) {
	path := tempFile(t, "ds64.thz")

	f, err := Create(path)
	require.NoError(t, err)

	_, err = f.AddGroup("scan", sampleMetadata())
	require.NoError(t, err)

	data := [][]float64{
		{0, 1.5e-12, -3.25e-12},
		{1, 2.5e-12, 4.75e-12},
	}
	require.NoError(t, f.AddDataset("scan", "ds1", data))
	require.NoError(t, f.Close())

	f2, err := Open(path)
	require.NoError(t, err)
	defer f2.Close()

	ds, err := f2.Dataset("scan", "ds1")
	require.NoError(t, err)
	require.Equal(t, []int{2, 3}, ds.Shape())
	require.Equal(t, 6, ds.NumElements())

	got, err := ds.ReadFloat64()
	require.NoError(t, err)
	require.Equal(t, []float64{0, 1.5e-12, -3.25e-12, 1, 2.5e-12, 4.75e-12}, got)
}

func TestDatasetRoundTripFloat32(t *testing.T) {
	path := tempFile(t, "ds32.thz")

	f, err := Create(path)
	require.NoError(t, err)
	defer f.Close()

	_, err = f.AddGroup("scan", sampleMetadata())
	require.NoError(t, err)

	data := []float32{1.5, -2.25, 3.125, 0.0625}
	require.NoError(t, f.AddDataset("scan", "ds1", data, WithShape(2, 2)))

	ds, err := f.Dataset("scan", "ds1")
	require.NoError(t, err)
	require.Equal(t, []int{2, 2}, ds.Shape())

	got, err := ds.ReadFloat32()
	require.NoError(t, err)
	require.Equal(t, data, got)

	// Double-precision read of single-precision data stays lossless
	wide, err := ds.ReadFloat64()
	require.NoError(t, err)
	require.Equal(t, []float64{1.5, -2.25, 3.125, 0.0625}, wide)
}

func TestDatasetTypeMismatch(t *testing.T) {
	path := tempFile(t, "mismatch.thz")

	f, err := Create(path)
	require.NoError(t, err)
	defer f.Close()

	_, err = f.AddGroup("scan", sampleMetadata())
	require.NoError(t, err)

	require.NoError(t, f.AddDataset("scan", "wide", []float64{1.1, 2.2}))

	ds, err := f.Dataset("scan", "wide")
	require.NoError(t, err)

	_, err = ds.ReadFloat32()
	require.ErrorIs(t, err, ErrTypeMismatch)
}

func TestDatasetCollisionAndEnumeration(t *testing.T) {
	path := tempFile(t, "dscollide.thz")

	f, err := Create(path)
	require.NoError(t, err)
	defer f.Close()

	_, err = f.AddGroup("scan", sampleMetadata())
	require.NoError(t, err)

	require.NoError(t, f.AddDataset("scan", "ds1", []float64{1}))
	require.NoError(t, f.AddDataset("scan", "ds2", []float64{2}))

	err = f.AddDataset("scan", "ds1", []float64{3})
	require.ErrorIs(t, err, ErrExists)

	err = f.AddDataset("missing", "ds1", []float64{4})
	require.ErrorIs(t, err, ErrNotFound)

	names, err := f.DatasetNames("scan")
	require.NoError(t, err)
	require.Equal(t, []string{"ds1", "ds2"}, names)

	datasets, err := f.Datasets("scan")
	require.NoError(t, err)
	require.Len(t, datasets, 2)

	_, err = f.Dataset("scan", "ds3")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGroupView(t *testing.T) {
	path := tempFile(t, "view.thz")

	f, err := Create(path)
	require.NoError(t, err)
	defer f.Close()

	g, err := f.AddGroup("scan", sampleMetadata())
	require.NoError(t, err)
	require.NoError(t, f.AddDataset("scan", "ds1", []float64{1, 2}))

	md, err := g.MetaData()
	require.NoError(t, err)
	require.Equal(t, "J. Doe", md.User)

	names, err := g.DatasetNames()
	require.NoError(t, err)
	require.Equal(t, []string{"ds1"}, names)

	ds, err := g.Dataset("ds1")
	require.NoError(t, err)
	got, err := ds.ReadFloat64()
	require.NoError(t, err)
	require.Equal(t, []float64{1, 2}, got)
}

func TestOpenNonexistent(t *testing.T) {
	_, err := Open(tempFile(t, "absent.thz"))
	require.ErrorIs(t, err, ErrNotFound)

	// Open never creates the file
	path := tempFile(t, "absent2.thz")
	_, _ = Open(path)
	_, err = os.Stat(path)
	require.True(t, os.IsNotExist(err))
}

func TestOpenNotAContainer(t *testing.T) {
	path := tempFile(t, "junk.thz")
	require.NoError(t, os.WriteFile(path, []byte("plain text"), 0o644))

	_, err := Open(path)
	require.ErrorIs(t, err, ErrFormat)
}

func TestCreateExcl(t *testing.T) {
	path := tempFile(t, "excl.thz")

	f, err := CreateExcl(path)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	_, err = CreateExcl(path)
	require.ErrorIs(t, err, ErrExists)
}

func TestAppend(t *testing.T) {
	path := tempFile(t, "append.thz")

	// Creates the file when absent
	f, err := Append(path)
	require.NoError(t, err)
	_, err = f.AddGroup("first", sampleMetadata())
	require.NoError(t, err)
	require.NoError(t, f.Close())

	// Reopens and extends when present
	f2, err := Append(path)
	require.NoError(t, err)
	_, err = f2.AddGroup("second", sampleMetadata())
	require.NoError(t, err)
	require.NoError(t, f2.Close())

	f3, err := Open(path)
	require.NoError(t, err)
	defer f3.Close()

	names, err := f3.GroupNames()
	require.NoError(t, err)
	require.Equal(t, []string{"first", "second"}, names)
}

func TestReadOnly(t *testing.T) {
	path := tempFile(t, "readonly.thz")

	f, err := Create(path)
	require.NoError(t, err)
	_, err = f.AddGroup("scan", sampleMetadata())
	require.NoError(t, err)
	require.NoError(t, f.Close())

	f2, err := OpenAs(path, ReadOnly)
	require.NoError(t, err)
	defer f2.Close()
	require.True(t, f2.IsReadOnly())

	_, err = f2.AddGroup("more", sampleMetadata())
	require.ErrorIs(t, err, ErrReadOnly)
	require.ErrorIs(t, f2.SetMetaData("scan", sampleMetadata()), ErrReadOnly)
	require.ErrorIs(t, f2.DeleteMetaDataAttribute("scan", "temperature"), ErrReadOnly)
	require.ErrorIs(t, f2.AddDataset("scan", "ds", []float64{1}), ErrReadOnly)

	// Reads still work
	md, err := f2.GetMetaData("scan")
	require.NoError(t, err)
	require.Equal(t, "J. Doe", md.User)
}

func TestFileInfo(t *testing.T) {
	path := tempFile(t, "info.thz")

	f, err := Create(path)
	require.NoError(t, err)
	defer f.Close()

	require.Equal(t, path, f.Path())
	require.False(t, f.IsReadOnly())
	require.NoError(t, f.Flush())
	require.Greater(t, f.Size(), uint64(0))
}
