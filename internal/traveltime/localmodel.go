package traveltime

import (
	"fmt"
	"math"

	"github.com/quakelocate/iloc-go/internal/geo"
)

// Layer is one constant-velocity layer of a local 1-D model (§3's "Local
// velocity model" entity).
type Layer struct {
	TopDepth float64 // km
	Vp       float64 // km/s
	Vs       float64 // km/s
}

// LocalModel is a layered crustal velocity model from which Pg/Pb/Pn/Sg/
// Sb/Sn/Lg tables are synthesized by Earth-flattening + ray shooting
// (§4.2 step "Local TT synthesis"). The RSTT collaborator does not supply
// one.
type LocalModel struct {
	Layers      []Layer
	ConradIndex int // index of the layer below the Conrad discontinuity
	MohoIndex   int // index of the layer below the Moho discontinuity
}

// Validate enforces the §3 invariants: strictly increasing layer depths,
// positive Vs.
func (m *LocalModel) Validate() error {
	if len(m.Layers) == 0 {
		return fmt.Errorf("traveltime: local model has no layers")
	}
	for i, l := range m.Layers {
		if l.Vs <= 0 {
			return fmt.Errorf("traveltime: local model layer %d has non-positive Vs", i)
		}
		if i > 0 && l.TopDepth <= m.Layers[i-1].TopDepth {
			return fmt.Errorf("traveltime: local model layer depths must strictly increase at index %d", i)
		}
	}
	if m.ConradIndex < 0 || m.ConradIndex >= len(m.Layers) {
		return fmt.Errorf("traveltime: local model Conrad index %d out of range", m.ConradIndex)
	}
	if m.MohoIndex < 0 || m.MohoIndex >= len(m.Layers) {
		return fmt.Errorf("traveltime: local model Moho index %d out of range", m.MohoIndex)
	}
	return nil
}

// flattenVelocity applies the Earth-flattening transform v = R*vq/(R-h)
// (glossary: "Earth flattening").
func flattenVelocity(vq, h float64) float64 {
	return geo.EarthRadiusKm * vq / (geo.EarthRadiusKm - h)
}

// layerVelocity returns the flattened velocity of layer l at depth h using
// vq (Vp or Vs).
func layerVelocity(vq, h float64) float64 { return flattenVelocity(vq, h) }

// rayOffsetTime traces a ray with constant ray parameter p (s/km) from
// source depth srcDepth up to the surface through layers, summing the
// horizontal offset and travel time contributed by each traversed layer.
// ok is false if p is too large for some traversed layer (post-critical,
// the ray cannot propagate through it).
func rayOffsetTime(layers []Layer, vel func(Layer) float64, srcDepth, p float64) (offsetKm, timeSec float64, ok bool) {
	// Find the layer containing srcDepth.
	srcIdx := 0
	for i, l := range layers {
		if l.TopDepth <= srcDepth {
			srcIdx = i
		} else {
			break
		}
	}

	for idx := srcIdx; idx >= 0; idx-- {
		top := layers[idx].TopDepth
		bottom := srcDepth
		if idx != srcIdx {
			bottom = layers[idx+1].TopDepth
		}
		thickness := bottom - top
		if thickness <= 0 {
			continue
		}
		vFlat := flattenVelocity(vel(layers[idx]), (top+bottom)/2)
		pv := p * vFlat
		if pv >= 1 {
			return 0, 0, false
		}
		cosI := math.Sqrt(1 - pv*pv)
		offsetKm += thickness * pv / cosI
		timeSec += thickness / (vFlat * cosI)
	}
	return offsetKm, timeSec, true
}

// directTime solves, by regula-falsi on the ray parameter p (equivalently
// the takeoff-angle sine), for the ray whose surface offset equals
// deltaKm, and returns its travel time. p itself equals dT/dDelta in s/km
// (a standard property of ray-parameter-parameterized travel times).
func directTime(layers []Layer, vel func(Layer) float64, srcDepth, deltaKm float64) (t, p float64, err error) {
	if deltaKm <= 0 {
		// Vertical ray.
		_, tt, ok := rayOffsetTime(layers, vel, srcDepth, 0)
		if !ok {
			return 0, 0, fmt.Errorf("%w: vertical ray failed", ErrTableMiss)
		}
		return tt, 0, nil
	}

	vMin := vel(layers[0])
	for _, l := range layers {
		if vel(l) < vMin {
			vMin = vel(l)
		}
	}
	pLo, pHi := 0.0, 0.999/vMin

	fLo, _, okLo := rayOffsetTime(layers, vel, srcDepth, pLo)
	if !okLo {
		return 0, 0, fmt.Errorf("%w: direct-wave lower bound invalid", ErrTableMiss)
	}
	fLo -= deltaKm

	var fHi float64
	okHi := false
	for i := 0; i < 60 && !okHi; i++ {
		var off float64
		off, _, okHi = rayOffsetTime(layers, vel, srcDepth, pHi)
		if !okHi {
			pHi *= 0.98
			continue
		}
		fHi = off - deltaKm
	}
	if !okHi {
		return 0, 0, fmt.Errorf("%w: could not bracket direct-wave ray parameter", ErrTableMiss)
	}
	if fLo > 0 || fHi < 0 {
		return 0, 0, fmt.Errorf("%w: direct wave does not reach delta=%.3fkm", ErrTableMiss, deltaKm)
	}

	for iter := 0; iter < 80; iter++ {
		pMid := pLo + (pHi-pLo)*(-fLo)/(fHi-fLo)
		off, tt, ok := rayOffsetTime(layers, vel, srcDepth, pMid)
		if !ok {
			pHi = pMid
			continue
		}
		f := off - deltaKm
		if math.Abs(f) < 1e-6 {
			return tt, pMid, nil
		}
		if f < 0 {
			pLo, fLo = pMid, f
		} else {
			pHi, fHi = pMid, f
		}
	}
	off, tt, ok := rayOffsetTime(layers, vel, srcDepth, pLo)
	_ = off
	if !ok {
		return 0, 0, fmt.Errorf("%w: direct-wave root search did not converge", ErrTableMiss)
	}
	return tt, pLo, nil
}

// headWaveTime computes the critically-refracted travel time off an
// interface at refractorTop (km) with velocity below vBelow, for a source
// at srcDepth and total surface offset deltaKm. ok is false when the
// refractor is not yet critically illuminated at this offset (the direct
// wave would arrive first, or the geometry is inconsistent).
func headWaveTime(layers []Layer, vel func(Layer) float64, srcDepth, refractorTop, vBelow, deltaKm float64) (t float64, ok bool) {
	pCrit := 1 / flattenVelocity(vBelow, refractorTop)

	// Downgoing leg: source depth up to the interface (conceptually this
	// is the same per-layer sum as rayOffsetTime evaluated "in reverse" —
	// reuse it by temporarily treating refractorTop as the surface.
	var above []Layer
	for _, l := range layers {
		if l.TopDepth < refractorTop {
			above = append(above, l)
		}
	}
	if len(above) == 0 {
		return 0, false
	}

	downOffset, downTime, okDown := rayOffsetTime(above, vel, math.Min(srcDepth, refractorTop-1e-6), pCrit)
	upOffset, upTime, okUp := rayOffsetTime(above, vel, refractorTop-1e-6, pCrit)
	if !okDown || !okUp {
		return 0, false
	}

	interfaceOffset := deltaKm - downOffset - upOffset
	if interfaceOffset < 0 {
		return 0, false
	}
	interfaceTime := interfaceOffset / flattenVelocity(vBelow, refractorTop)
	return downTime + upTime + interfaceTime, true
}

// localDeltaSamples is the distance grid a synthesized local table covers
// (§4.2: "Δ ∈ {0, 0.025, ..., 6°}").
func localDeltaSamples() []float64 {
	var xs []float64
	for d := 0.0; d <= 6.0+1e-9; d += 0.025 {
		xs = append(xs, d)
	}
	return xs
}

// localDepthSamples densifies around the Conrad/Moho discontinuities.
func (m *LocalModel) localDepthSamples() []float64 {
	seen := map[float64]bool{}
	var hs []float64
	add := func(h float64) {
		if h < 0 {
			return
		}
		if !seen[h] {
			seen[h] = true
			hs = append(hs, h)
		}
	}
	for h := 0.0; h <= m.Layers[len(m.Layers)-1].TopDepth+50; h += 5 {
		add(h)
	}
	for _, idx := range []int{m.ConradIndex, m.MohoIndex} {
		top := m.Layers[idx].TopDepth
		for _, d := range []float64{-2, -1, -0.5, 0.5, 1, 2} {
			add(top + d)
		}
	}
	sortFloats(hs)
	return hs
}

func sortFloats(xs []float64) {
	for i := 1; i < len(xs); i++ {
		for j := i; j > 0 && xs[j] < xs[j-1]; j-- {
			xs[j], xs[j-1] = xs[j-1], xs[j]
		}
	}
}

// phaseSynthSpec names, for each synthesized phase, the velocity selector
// and (for refracted legs) the discontinuity it reflects off.
type phaseSynthSpec struct {
	name        string
	isP         bool
	refractorOf int // -1 for direct (g) phases, ConradIndex for b, MohoIndex for n
}

// Synthesize builds the Pg/Pb/Pn/Sg/Sb/Sn tables (Lg is aliased to Sg) over
// the local distance/depth grid described above.
func (m *LocalModel) Synthesize() (map[string]*Table, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	deltas := localDeltaSamples()
	depths := m.localDepthSamples()

	specs := []phaseSynthSpec{
		{"Pg", true, -1}, {"Sg", false, -1},
		{"Pb", true, m.ConradIndex}, {"Sb", false, m.ConradIndex},
		{"Pn", true, m.MohoIndex}, {"Sn", false, m.MohoIndex},
	}

	out := map[string]*Table{}
	for _, spec := range specs {
		vel := func(l Layer) float64 {
			if spec.isP {
				return l.Vp
			}
			return l.Vs
		}

		tt := make([][]float64, len(deltas))
		dtdd := make([][]float64, len(deltas))
		dtdh := make([][]float64, len(deltas))
		for i := range tt {
			tt[i] = make([]float64, len(depths))
			dtdd[i] = make([]float64, len(depths))
			dtdh[i] = make([]float64, len(depths))
		}

		for di, delta := range deltas {
			deltaKm := geo.DeltaToKm(delta)
			for hi, h := range depths {
				var t float64
				var p float64
				var ok bool
				if spec.refractorOf < 0 {
					tv, pv, err := directTime(m.Layers, vel, h, deltaKm)
					ok = err == nil
					t, p = tv, pv
				} else {
					refTop := m.Layers[spec.refractorOf].TopDepth
					var vBelow float64
					if spec.isP {
						vBelow = m.Layers[spec.refractorOf].Vp
					} else {
						vBelow = m.Layers[spec.refractorOf].Vs
					}
					tv, okv := headWaveTime(m.Layers, vel, h, refTop, vBelow, deltaKm)
					t, ok = tv, okv
					p = 1 / flattenVelocity(vBelow, refTop)
				}
				if !ok {
					tt[di][hi] = Sentinel
					dtdd[di][hi] = Sentinel
					dtdh[di][hi] = Sentinel
					continue
				}
				tt[di][hi] = t
				dtdd[di][hi] = p * geo.DeltaToKm(1) // convert s/km to s/deg
			}
		}
		// dT/dh via centred finite differences over the depth axis.
		for di := range deltas {
			for hi := range depths {
				dtdh[di][hi] = finiteDiffDepth(tt[di], depths, hi)
			}
		}

		name := spec.name
		table, err := NewTable(name, false, deltas, depths, tt, dtdd, dtdh, nil)
		if err != nil {
			return nil, err
		}
		out[name] = table
	}
	out["Lg"] = out["Sg"]
	return out, nil
}

func finiteDiffDepth(col []float64, depths []float64, i int) float64 {
	if col[i] == Sentinel {
		return Sentinel
	}
	if i > 0 && i < len(col)-1 && col[i-1] != Sentinel && col[i+1] != Sentinel {
		return (col[i+1] - col[i-1]) / (depths[i+1] - depths[i-1])
	}
	if i < len(col)-1 && col[i+1] != Sentinel {
		return (col[i+1] - col[i]) / (depths[i+1] - depths[i])
	}
	if i > 0 && col[i-1] != Sentinel {
		return (col[i] - col[i-1]) / (depths[i] - depths[i-1])
	}
	return 0
}
