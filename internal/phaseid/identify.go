package phaseid

import (
	"math"
	"sort"
	"time"

	"github.com/quakelocate/iloc-go/internal/model"
	"github.com/quakelocate/iloc-go/internal/traveltime"
)

// maxResidualSec is the §4.3 step 3 discard threshold: a candidate whose
// |residual| exceeds this is never selected.
const maxResidualSec = 60.0

// Hypocentre is the minimal geometry and origin time the identifier needs
// to query the travel-time engine and form residuals; it mirrors the
// fields of model.Solution without importing the inversion package.
type Hypocentre struct {
	OriginTime      time.Time
	Lat, Lon, Depth float64
}

// Run executes §4.3's identification pass over every reading of one
// event, then §4.4's duplicate resolution. phases is the event's flat
// phase slice; readings partitions it and must already be ordered by Δ,
// with each reading's phases ordered by arrival epoch (the caller's
// responsibility per §4.3's preamble).
func Run(ctx *traveltime.Context, tables *Tables, weights *WeightTable, hypo Hypocentre, phases []*model.Phase, readings []model.Reading, sigmaThreshold float64, doCorrelatedErrors bool) error {
	for _, r := range readings {
		identifyReading(ctx, tables, hypo, phases[r.Start:r.Start+r.Count])
	}
	resolveDuplicates(phases, readings, doCorrelatedErrors)
	for _, p := range phases {
		applyPriorSigma(p, weights, sigmaThreshold)
	}
	return nil
}

func identifyReading(ctx *traveltime.Context, tables *Tables, hypo Hypocentre, reading []*model.Phase) {
	firstPSeen, firstSSeen := false, false
	usedNames := map[string]bool{}

	for idx, p := range reading {
		if p.FixedLabel {
			usedNames[p.Phase] = true
			if isPType(p.Phase) && !firstPSeen {
				p.FirstP, firstPSeen = true, true
			} else if isSType(p.Phase) && !firstSSeen {
				p.FirstS, firstSSeen = true
			}
			continue
		}

		isInitialPick := idx == 0
		p.PreviousPhase = p.Phase
		canon := tables.mapReportedLabel(p.ReportedPhase, false, 0, isInitialPick)

		candidates := candidateList(tables, p, canon, idx == 0, firstPSeen, firstSSeen)

		best, bestResidual, found := selectCandidate(ctx, hypo, p, candidates, usedNames)
		if !found {
			p.Phase = ""
			p.TimeDefining, p.AzimuthDefining, p.SlownessDefining = false, false, false
			p.Analysts = model.ReasonUnidentified
			continue
		}

		p.Phase = best
		p.TimeResidual = bestResidual
		usedNames[best] = true

		if isPType(best) && !isDepthPhase(best) && !firstPSeen {
			p.FirstP, firstPSeen = true, true
		}
		if isSType(best) && !isDepthPhase(best) && !firstSSeen {
			p.FirstS, firstSSeen = true
		}
	}

	linkDepthPhases(reading)
}

// linkDepthPhases fills §3's depth-phase pointers once every phase in the
// reading carries its final label: the reading's first-P phase records
// the local index of each depth phase (pP, pwP, pS, sP, sS) present
// alongside it, the anchor depthphase.Stack needs to build a reading's
// moveout trace (§4.8).
func linkDepthPhases(reading []*model.Phase) {
	firstPIdx := -1
	for i, p := range reading {
		if p.FirstP {
			firstPIdx = i
			break
		}
	}
	if firstPIdx < 0 {
		return
	}

	firstP := reading[firstPIdx]
	firstP.PPIndex, firstP.PwPIndex, firstP.PSIndex, firstP.SPIndex, firstP.SSIndex = -1, -1, -1, -1, -1
	for i, p := range reading {
		if i == firstPIdx {
			continue
		}
		switch p.Phase {
		case "pP":
			firstP.PPIndex = i
		case "pwP":
			firstP.PwPIndex = i
		case "pS":
			firstP.PSIndex = i
		case "sP":
			firstP.SPIndex = i
		case "sS":
			firstP.SSIndex = i
		}
	}
}

// candidateList builds the search set for one phase: the base candidate
// list, restricted to the allowable first-arrival sets when this pick is
// a reading's earliest, plus any PP/SS/PS/SP split extension (§4.3 step 3).
func candidateList(tables *Tables, p *model.Phase, canon string, isFirst, firstPSeen, firstSSeen bool) []string {
	var base []string
	if ext, ok := tables.SplitExtensions[canon]; ok {
		base = append(base, canon)
		base = append(base, ext...)
	} else if canon != "" {
		base = append(base, canon)
		base = append(base, tables.Candidates...)
	} else {
		base = append(base, tables.Candidates...)
	}

	if !isFirst {
		return dedupe(base)
	}

	var allowed []string
	if !firstPSeen {
		allowed = append(allowed, tables.AllowableFirstP...)
		allowed = append(allowed, tables.OptionalFirstP...)
	}
	if !firstSSeen {
		allowed = append(allowed, tables.AllowableFirstS...)
		allowed = append(allowed, tables.OptionalFirstS...)
	}
	allowedSet := map[string]bool{}
	for _, n := range allowed {
		allowedSet[n] = true
	}
	var restricted []string
	for _, n := range base {
		if allowedSet[n] {
			restricted = append(restricted, n)
		}
	}
	if len(restricted) == 0 {
		return dedupe(base)
	}
	return dedupe(restricted)
}

func dedupe(names []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}

// selectCandidate queries the travel-time engine for every candidate and
// returns the one with the smallest |residual| subject to §4.3 step 3's
// exclusion rules.
func selectCandidate(ctx *traveltime.Context, hypo Hypocentre, p *model.Phase, candidates []string, usedInReading map[string]bool) (string, float64, bool) {
	reportedIsP := isPType(p.ReportedPhase)
	bestName := ""
	bestResidual := math.Inf(1)
	found := false

	for _, cand := range candidates {
		if p.ReportedPhase != "" && isPType(cand) != reportedIsP {
			continue // no cross-type P<->S renames
		}
		if usedInReading[cand] {
			continue // no repeated phase name within a reading
		}
		if isSType(p.ReportedPhase) && isDepthPhase(cand) {
			continue // forbid renaming S(*) to a depth phase (s*)
		}

		pred, err := traveltime.Predict(ctx, traveltime.Query{
			Phase: cand, Lat: hypo.Lat, Lon: hypo.Lon, Depth: hypo.Depth,
			Delta: p.Delta, ESAZ: p.ESAZ, SEAZ: p.SEAZ,
		})
		if err != nil {
			continue
		}

		residual := timeResidualSec(hypo, p, pred.TT)
		if math.Abs(residual) > maxResidualSec {
			continue
		}
		if !found || math.Abs(residual) < math.Abs(bestResidual) {
			bestName, bestResidual, found = cand, residual, true
		}
	}
	return bestName, bestResidual, found
}

// timeResidualSec forms observed-minus-predicted arrival time against the
// current hypocentre's origin time estimate: (arrival - originTime) -
// predictedTT.
func timeResidualSec(hypo Hypocentre, p *model.Phase, predictedTT float64) float64 {
	observed := p.ArrivalTime.Sub(hypo.OriginTime).Seconds()
	return observed - predictedTT
}

// ApplyPriorSigma exports applyPriorSigma for the locator driver, which
// reapplies the same residual-vs-sigma defining check every inversion
// iteration (not only at a reidentification pass) as the trial hypocentre
// moves and residuals change.
func ApplyPriorSigma(p *model.Phase, weights *WeightTable, sigmaThreshold float64) {
	applyPriorSigma(p, weights, sigmaThreshold)
}

// applyPriorSigma fills §4.3 step 5: look up the prior σ for the phase's
// final canonical label and mark each observation class defining exactly
// when it has a prior σ and its residual falls within
// sigmaThreshold*σ — per §3's "timedef implies prior σ_time > 0"
// invariant, an observation with no looked-up σ can never be defining,
// and one already forced non-defining by an analyst stays that way.
func applyPriorSigma(p *model.Phase, weights *WeightTable, sigmaThreshold float64) {
	if p.Phase == "" {
		p.TimeDefining, p.AzimuthDefining, p.SlownessDefining = false, false, false
		return
	}
	if sigma, ok := weights.SigmaTime(p.Phase, p.Delta); ok {
		p.SigmaTime = sigma
	}
	if sigma, ok := weights.SigmaAzimuth(p.Phase, p.Delta); ok {
		p.SigmaAzimuth = sigma
	}
	if sigma, ok := weights.SigmaSlowness(p.Phase, p.Delta); ok {
		p.SigmaSlowness = sigma
	}

	if p.Analysts == model.ReasonAnalystForced {
		p.TimeDefining, p.AzimuthDefining, p.SlownessDefining = false, false, false
		return
	}

	p.TimeDefining = p.SigmaTime > 0 && math.Abs(p.TimeResidual) <= sigmaThreshold*p.SigmaTime
	if p.TimeDefining {
		p.Analysts = model.ReasonNone
	} else if p.SigmaTime > 0 {
		p.Analysts = model.ReasonResidualExceeded
	}
	p.AzimuthDefining = p.SigmaAzimuth > 0 && math.Abs(p.AzimuthResidual) <= sigmaThreshold*p.SigmaAzimuth
	p.SlownessDefining = p.SigmaSlowness > 0 && math.Abs(p.SlownessResidual) <= sigmaThreshold*p.SigmaSlowness
}

// SortReadingsByDelta orders readings by epicentral distance, the
// grouping order §4.3's preamble requires; the locator driver calls this
// once per identification pass before Run.
func SortReadingsByDelta(phases []*model.Phase, readings []model.Reading) {
	sort.SliceStable(readings, func(i, j int) bool {
		return phases[readings[i].Start].Delta < phases[readings[j].Start].Delta
	})
}
