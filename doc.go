// Package dotthz reads and writes dotThz files, the data-exchange format
// for terahertz spectroscopy measurements built on HDF5.
//
// A dotThz file holds named measurement groups. Each group carries a
// metadata attribute set (user, instrument, acquisition date and time,
// free-form key/value pairs, dataset descriptions) and zero or more named
// datasets of 32- or 64-bit floating point values.
//
// # Writing
//
//	file, err := dotthz.Create("scan.thz")
//	if err != nil { ... }
//	defer file.Close()
//
//	md := dotthz.NewMetadata()
//	md.User = "J. Doe"
//	md.Instrument = "Toptica TeraFlash"
//	md.SetMD("temperature", "295 K")
//
//	if _, err := file.AddGroup("Measurement 1", md); err != nil { ... }
//	err = file.AddDataset("Measurement 1", "ds1", samples,
//		dotthz.WithShape(2, 1000))
//
// # Reading
//
//	file, err := dotthz.Open("scan.thz")
//	if err != nil { ... }
//	defer file.Close()
//
//	groups, _ := file.Groups()
//	for _, g := range groups {
//		md, _ := g.MetaData()
//		names, _ := g.DatasetNames()
//		...
//	}
//
// Reads are lenient: a group attribute missing from the file maps to the
// zero value of its metadata field, never to an error, so partially
// written files stay readable. Fallible operations return errors matching
// ErrNotFound, ErrExists, ErrFormat, ErrTypeMismatch or ErrReadOnly via
// errors.Is.
package dotthz
