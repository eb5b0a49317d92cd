// Package auxdata provides the read-only, shared §3 auxiliary tables the
// locator's *in-scope* components depend on directly: the ETOPO
// bathymetry matrix (traveltime.BathymetryProvider), the default-depth
// grid, and the Flinn-Engdahl regionalizer used by the §4.9 fix-depth
// ladder's "default-depth-grid cell, else FE region default" rung.
//
// Parsing an aux-data *file format* (ISF, a vendor TT-table layout, the raw
// ETOPO binary) is explicitly an external collaborator's concern (spec.md
// §1, §6): this package only builds these in-scope tables from already
// decoded numeric slices, the same boundary internal/traveltime.NewTable
// and internal/covariance.NewVariogram already draw. UnpackBundle is the
// one piece of file handling this package does own — unpacking a
// distributed archive of such slices (e.g. JSON/CSV) into a scratch
// directory before those per-table constructors run, grounded on
// de-bkg-gognss/cmd/rnxgo's archiver.DecompressFile step.
package auxdata
