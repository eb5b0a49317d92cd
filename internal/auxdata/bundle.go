package auxdata

import (
	"fmt"

	"github.com/mholt/archiver/v3"
)

// UnpackBundle extracts a distributed aux-data archive (a .tar.gz of the
// global TT tables, ellipticity coefficients, ETOPO matrix, and
// default-depth grid, each as plain decoded JSON/CSV) into destDir, the
// same "decompress then let the per-format parser run" step
// de-bkg-gognss/cmd/rnxgo/rnxgo.go takes with archiver.DecompressFile
// before handing a RINEX file to pkg/rinex. The per-table parsers
// themselves remain an external collaborator's concern (spec.md §6); this
// function only owns the archive-format boundary.
func UnpackBundle(archivePath, destDir string) error {
	if err := archiver.Unarchive(archivePath, destDir); err != nil {
		return fmt.Errorf("auxdata: unpack bundle %s: %w", archivePath, err)
	}
	return nil
}
