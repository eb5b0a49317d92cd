package auxdata

import (
	"fmt"
	"math"

	"github.com/quakelocate/iloc-go/internal/geo"
)

// DepthCell is one cell of the §3 "Default-depth grid" entity.
type DepthCell struct {
	Lat, Lon, DepthKm float64
}

// DefaultDepthGrid is a gridline-registered lookup table of regional
// default depths, used by the §4.9 fix-depth ladder's first fallback rung.
// "Gridline-registered" means a (lat,lon) query belongs to the cell whose
// node is within half a cell size in both axes (§3's invariant).
type DefaultDepthGrid struct {
	CellSizeDeg float64
	cells       map[[2]int]float64
}

// NewDefaultDepthGrid builds the lookup index from already-decoded cells.
func NewDefaultDepthGrid(cellSizeDeg float64, cells []DepthCell) (*DefaultDepthGrid, error) {
	if cellSizeDeg <= 0 {
		return nil, fmt.Errorf("auxdata: default depth grid cell size must be positive")
	}
	g := &DefaultDepthGrid{CellSizeDeg: cellSizeDeg, cells: make(map[[2]int]float64, len(cells))}
	for _, c := range cells {
		g.cells[g.key(c.Lat, c.Lon)] = c.DepthKm
	}
	return g, nil
}

func (g *DefaultDepthGrid) key(lat, lon float64) [2]int {
	return [2]int{
		int(math.Round(lat / g.CellSizeDeg)),
		int(math.Round(lon / g.CellSizeDeg)),
	}
}

// Lookup returns the default depth for the cell containing (lat, lon).
func (g *DefaultDepthGrid) Lookup(lat, lon float64) (float64, bool) {
	d, ok := g.cells[g.key(lat, lon)]
	return d, ok
}

// FERegion is the §3 "Flinn-Engdahl regionalizer" entity: a per-latitude
// partition of longitude into numbered geographic regions, each carrying
// its own default depth (the ladder's "else FE region default" clause).
type FERegion struct {
	// Bands is sorted ascending by MinLat; each band's Partitions is
	// sorted ascending by MinLon and must cover [-180, 180).
	Bands []LatBand
}

// LatBand is one latitude band of the regionalizer.
type LatBand struct {
	MinLat, MaxLat float64
	Partitions     []LonPartition
}

// LonPartition maps one longitude range within a band to a region number
// and that region's default depth.
type LonPartition struct {
	MinLon, MaxLon float64
	Region         int
	DefaultDepthKm float64
}

// NewFERegion validates band/partition ordering and wraps it for lookup.
func NewFERegion(bands []LatBand) (*FERegion, error) {
	if len(bands) == 0 {
		return nil, fmt.Errorf("auxdata: FE regionalizer needs at least one band")
	}
	for i, b := range bands {
		if b.MaxLat <= b.MinLat {
			return nil, fmt.Errorf("auxdata: FE band %d has MaxLat <= MinLat", i)
		}
		if len(b.Partitions) == 0 {
			return nil, fmt.Errorf("auxdata: FE band %d has no longitude partitions", i)
		}
	}
	return &FERegion{Bands: bands}, nil
}

// RegionDepth returns the region number and its default depth for (lat, lon).
func (f *FERegion) RegionDepth(lat, lon float64) (region int, depthKm float64, ok bool) {
	lon = geo.NormalizeLon(lon)
	for _, b := range f.Bands {
		if lat < b.MinLat || lat >= b.MaxLat {
			continue
		}
		for _, p := range b.Partitions {
			if lon >= p.MinLon && lon < p.MaxLon {
				return p.Region, p.DefaultDepthKm, true
			}
		}
	}
	return 0, 0, false
}

// DefaultDepth implements the §4.9 rung 1 lookup chain: the default-depth
// grid first, the FE region default otherwise.
func DefaultDepth(grid *DefaultDepthGrid, fe *FERegion, lat, lon float64) (depthKm float64, ok bool) {
	if grid != nil {
		if d, ok := grid.Lookup(lat, lon); ok {
			return d, true
		}
	}
	if fe != nil {
		if _, d, ok := fe.RegionDepth(lat, lon); ok {
			return d, true
		}
	}
	return 0, false
}
