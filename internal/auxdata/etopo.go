package auxdata

import (
	"fmt"

	"github.com/quakelocate/iloc-go/internal/geo"
)

// Etopo is the §3 "ETOPO bathymetry" entity: a 2-D elevation matrix
// (metres, negative under water) on a regular lon/lat grid, implementing
// traveltime.BathymetryProvider for the bounce-point correction (§4.2 step 4).
type Etopo struct {
	Lons []float64
	Lats []float64
	ElevM [][]float64 // indexed [lonIdx][latIdx]
}

// NewEtopo validates and wraps an already-decoded ETOPO matrix (Nlon x
// Nlat samples at the configured cell size, §6's EtopoFile/Nlon/Nlat/Res).
func NewEtopo(lons, lats []float64, elevM [][]float64) (*Etopo, error) {
	if len(lons) == 0 || len(lats) == 0 {
		return nil, fmt.Errorf("auxdata: etopo grid has empty axis")
	}
	if len(elevM) != len(lons) {
		return nil, fmt.Errorf("auxdata: etopo matrix has %d lon rows, want %d", len(elevM), len(lons))
	}
	for i, row := range elevM {
		if len(row) != len(lats) {
			return nil, fmt.Errorf("auxdata: etopo matrix row %d has %d lat samples, want %d", i, len(row), len(lats))
		}
	}
	return &Etopo{Lons: lons, Lats: lats, ElevM: elevM}, nil
}

// ElevationM implements traveltime.BathymetryProvider by bilinear
// interpolation of the matrix at (lat, lon); wraps lon into the grid's
// (-180,180] convention before bracketing.
func (e *Etopo) ElevationM(lat, lon float64) (float64, bool) {
	lon = geo.NormalizeLon(lon)
	v, err := geo.Bilinear(e.Lons, e.Lats, e.ElevM, lon, lat)
	if err != nil {
		return 0, false
	}
	return v, true
}
