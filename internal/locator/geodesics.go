package locator

import (
	"github.com/quakelocate/iloc-go/internal/geo"
	"github.com/quakelocate/iloc-go/internal/model"
)

// updateGeodesics recomputes every phase's Δ/ESAZ/SEAZ against a trial
// epicentre. Geodesics depend only on (lat, lon), not depth or origin
// time, so this is called once per epicentre change rather than once per
// inversion iteration when the epicentre hasn't moved (the caller decides).
func updateGeodesics(phases []*model.Phase, stations map[string]model.Station, lat, lon float64) {
	event := geo.Point{Lat: lat, Lon: lon}
	for _, p := range phases {
		st, ok := stations[p.StationID]
		if !ok {
			continue
		}
		delta, esaz, seaz := geo.Distance(event, geo.Point{Lat: st.Lat, Lon: st.Lon})
		p.Delta, p.ESAZ, p.SEAZ = delta, esaz, seaz
	}
}

// epicentreMoveKm returns the great-circle distance, in km, between two
// epicentres — the "epicentre moved more than epiwalkKm" test of §4.3's
// reidentification clause.
func epicentreMoveKm(lat1, lon1, lat2, lon2 float64) float64 {
	deltaDeg, _, _ := geo.Distance(geo.Point{Lat: lat1, Lon: lon1}, geo.Point{Lat: lat2, Lon: lon2})
	return geo.DeltaToKm(deltaDeg)
}
