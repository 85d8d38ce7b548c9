package dotthz

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dotthztag/go-dotthz/internal/hdf5"
)

func TestMetadataJSONRoundTrip(t *testing.T) {
	md := sampleMetadata()

	out, err := md.ToJSON()
	require.NoError(t, err)

	// Key order of the md mapping survives serialization
	require.Less(t, strings.Index(string(out), "temperature"), strings.Index(string(out), "humidity"))
	require.Less(t, strings.Index(string(out), "humidity"), strings.Index(string(out), "thickness"))

	back, err := MetadataFromJSON(out)
	require.NoError(t, err)
	require.Equal(t, md.User, back.User)
	require.Equal(t, md.DsDescription, back.DsDescription)

	var keys []string
	for pair := back.MD.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	require.Equal(t, []string{"temperature", "humidity", "thickness"}, keys)
}

func TestUserAttributeSplitting(t *testing.T) {
	path := tempFile(t, "user.thz")

	f, err := hdf5.Create(path)
	require.NoError(t, err)

	g, err := f.Root().CreateGroup("scan")
	require.NoError(t, err)

	// Whitespace around separators is trimmed, trailing parts may be
	// missing.
	require.NoError(t, g.SetAttr("user", " 0000-0001/ Jane Doe /jane@example.org"))
	require.NoError(t, f.Close())

	thz, err := Open(path)
	require.NoError(t, err)
	defer thz.Close()

	md, err := thz.GetMetaData("scan")
	require.NoError(t, err)
	require.Equal(t, "0000-0001", md.ORCID)
	require.Equal(t, "Jane Doe", md.User)
	require.Equal(t, "jane@example.org", md.Email)
	require.Empty(t, md.Institution)
}

func TestNumericMDFormatting(t *testing.T) {
	path := tempFile(t, "numericmd.thz")

	f, err := hdf5.Create(path)
	require.NoError(t, err)

	g, err := f.Root().CreateGroup("scan")
	require.NoError(t, err)

	// Other writers store md values as numbers rather than strings.
	require.NoError(t, g.SetAttr("mdDescription", "thickness, runs"))
	require.NoError(t, g.SetAttr("md1", float32(1.5)))
	require.NoError(t, g.SetAttr("md2", int32(12)))
	require.NoError(t, f.Close())

	thz, err := Open(path)
	require.NoError(t, err)
	defer thz.Close()

	md, err := thz.GetMetaData("scan")
	require.NoError(t, err)

	thickness, ok := md.GetMD("thickness")
	require.True(t, ok)
	require.Equal(t, "1.5", thickness)

	runs, ok := md.GetMD("runs")
	require.True(t, ok)
	require.Equal(t, "12", runs)
}

func TestEmptyMetadata(t *testing.T) {
	path := tempFile(t, "empty.thz")

	f, err := Create(path)
	require.NoError(t, err)

	_, err = f.AddGroup("scan", NewMetadata())
	require.NoError(t, err)
	require.NoError(t, f.Close())

	thz, err := Open(path)
	require.NoError(t, err)
	defer thz.Close()

	md, err := thz.GetMetaData("scan")
	require.NoError(t, err)
	require.Empty(t, md.User)
	require.Empty(t, md.Instrument)
	require.Zero(t, md.MD.Len())
	require.Empty(t, md.DsDescription)
}

func TestSetMetaDataShrinksMD(t *testing.T) {
	path := tempFile(t, "shrink.thz")

	f, err := Create(path)
	require.NoError(t, err)
	defer f.Close()

	_, err = f.AddGroup("scan", sampleMetadata())
	require.NoError(t, err)

	small := NewMetadata()
	small.SetMD("only", "one")
	require.NoError(t, f.SetMetaData("scan", small))

	got, err := f.GetMetaData("scan")
	require.NoError(t, err)
	require.Equal(t, 1, got.MD.Len())
	v, ok := got.MD.Get("only")
	require.True(t, ok)
	require.Equal(t, "one", v)
}
