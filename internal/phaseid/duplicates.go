package phaseid

import (
	"math"
	"sort"
	"time"

	"github.com/quakelocate/iloc-go/internal/config"
	"github.com/quakelocate/iloc-go/internal/model"
)

// resolveDuplicates implements §4.4: within each station, phases whose
// arrival times agree to within config.SametimeTol are merged — their
// time replaced by the arithmetic mean, and (if labels differ) the
// smallest-TT-residual label propagated to all of them, earliest-arriving
// P breaking ties. When correlated errors are disabled, each group's
// σ_time is inflated by (n-1) to downweight the redundant picks.
func resolveDuplicates(phases []*model.Phase, readings []model.Reading, doCorrelatedErrors bool) {
	byStation := map[string][]*model.Phase{}
	for _, p := range phases {
		if p.Phase == "" {
			continue
		}
		byStation[p.StationID] = append(byStation[p.StationID], p)
	}

	for _, group := range byStation {
		sort.SliceStable(group, func(i, j int) bool { return group[i].ArrivalTime.Before(group[j].ArrivalTime) })

		used := make([]bool, len(group))
		for i := range group {
			if used[i] {
				continue
			}
			cluster := []*model.Phase{group[i]}
			used[i] = true
			for j := i + 1; j < len(group); j++ {
				if used[j] {
					continue
				}
				dt := group[j].ArrivalTime.Sub(cluster[0].ArrivalTime).Seconds()
				if math.Abs(dt) < config.SametimeTol {
					cluster = append(cluster, group[j])
					used[j] = true
				}
			}
			if len(cluster) > 1 {
				mergeCluster(cluster, doCorrelatedErrors)
			}
		}
	}
}

func mergeCluster(cluster []*model.Phase, doCorrelatedErrors bool) {
	var sumSec float64
	base := cluster[0].ArrivalTime
	for _, p := range cluster {
		sumSec += p.ArrivalTime.Sub(base).Seconds()
	}
	mean := base.Add(time.Duration(sumSec / float64(len(cluster)) * float64(time.Second)))
	for _, p := range cluster {
		p.Duplicate = true
		p.ArrivalTime = mean
	}

	allSame := true
	for _, p := range cluster[1:] {
		if p.Phase != cluster[0].Phase {
			allSame = false
			break
		}
	}
	if !allSame {
		best := pickPropagatedLabel(cluster)
		for _, p := range cluster {
			p.Phase = best
		}
	}

	if !doCorrelatedErrors {
		inflate := float64(len(cluster) - 1)
		for _, p := range cluster {
			if p.SigmaTime > 0 {
				p.SigmaTime += inflate
			}
		}
	}
}

// pickPropagatedLabel chooses the label with the smallest |TT residual|
// among the cluster, breaking ties in favour of the earliest-arriving P.
func pickPropagatedLabel(cluster []*model.Phase) string {
	best := cluster[0]
	for _, p := range cluster[1:] {
		if math.Abs(p.TimeResidual) < math.Abs(best.TimeResidual) {
			best = p
			continue
		}
		if math.Abs(p.TimeResidual) == math.Abs(best.TimeResidual) && isPType(p.Phase) && !isPType(best.Phase) {
			best = p
		}
	}
	return best.Phase
}
