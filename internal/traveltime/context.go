package traveltime

// BathymetryProvider resolves surface elevation (metres, negative under
// water) at a geographic point, backing the ETOPO bounce-point correction
// (§4.2 step 4). Implemented by internal/auxdata against the loaded ETOPO
// matrix.
type BathymetryProvider interface {
	ElevationM(lat, lon float64) (float64, bool)
}

// NoBathymetry is used when no ETOPO matrix was loaded; bounce-point
// corrections are then skipped (elevation treated as 0).
type NoBathymetry struct{}

func (NoBathymetry) ElevationM(float64, float64) (float64, bool) { return 0, false }

// Context bundles the immutable, shared-read-only aux tables the travel-time
// engine needs (§5's "aux tables read once at startup and shared read-only").
type Context struct {
	Global map[string]*Table // canonical phase name -> global table
	Ellip  map[string]*EllipticityTable

	Local       *LocalModel // optional, nil if no local 1-D model configured
	LocalTables map[string]*Table // synthesized from Local, rebuilt on epicentre walk

	Bathymetry BathymetryProvider
	RSTT       RSTTProvider

	UseRSTTPnSn, UseRSTTPgLg bool
	MaxLocalTTDelta          float64
}

// NewContext builds a travel-time Context with sane fallbacks for optional
// collaborators.
func NewContext() *Context {
	return &Context{
		Global:     map[string]*Table{},
		Ellip:      map[string]*EllipticityTable{},
		Bathymetry: NoBathymetry{},
		RSTT:       DisabledRSTT{},
	}
}
