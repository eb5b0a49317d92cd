package locator

import (
	"testing"
	"time"

	"github.com/quakelocate/iloc-go/internal/model"
)

func TestResolveSeed_TrustedAgencyOverridesMedian(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	event := &model.Event{TrustedAgency: "NEIC"}
	hypos := []model.Hypocentre{
		{Agency: "ISC", Time: base, Lat: 1, Lon: 1, Depth: 10, HasDepth: true},
		{Agency: "NEIC", Time: base.Add(time.Second), Lat: 5, Lon: 5, Depth: 50, HasDepth: true},
	}

	seed, err := resolveSeed(event, hypos)
	if err != nil {
		t.Fatalf("resolveSeed: %v", err)
	}
	if seed.Lat != 5 || seed.Lon != 5 || seed.Depth != 50 {
		t.Errorf("seed = %+v, want the NEIC hypocentre", seed)
	}
}

func TestResolveSeed_MedianAcrossHyposWhenNoTrustedAgency(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	event := &model.Event{}
	hypos := []model.Hypocentre{
		{Agency: "A", Time: base, Lat: 1, Lon: 10, Depth: 10, HasDepth: true},
		{Agency: "B", Time: base.Add(2 * time.Second), Lat: 2, Lon: 20, Depth: 20, HasDepth: true},
		{Agency: "C", Time: base.Add(4 * time.Second), Lat: 3, Lon: 30, Depth: 30, HasDepth: true},
	}

	seed, err := resolveSeed(event, hypos)
	if err != nil {
		t.Fatalf("resolveSeed: %v", err)
	}
	if seed.Lat != 2 || seed.Lon != 20 || seed.Depth != 20 {
		t.Errorf("seed = %+v, want componentwise median (2, 20, 20)", seed)
	}
	if !seed.OriginTime.Equal(base.Add(2 * time.Second)) {
		t.Errorf("OriginTime = %v, want %v", seed.OriginTime, base.Add(2*time.Second))
	}
}

func TestResolveSeed_SkipsIgnoredAndRejectedAgencies(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	event := &model.Event{RejectAgencies: map[string]bool{"BAD": true}}
	hypos := []model.Hypocentre{
		{Agency: "BAD", Time: base, Lat: 90, Lon: 90, Depth: 1, HasDepth: true},
		{Agency: "OK", Time: base, Lat: 10, Lon: 10, Depth: 10, HasDepth: true, Ignore: false},
		{Agency: "IGNORED", Time: base, Lat: -90, Lon: -90, Depth: 1, HasDepth: true, Ignore: true},
	}

	seed, err := resolveSeed(event, hypos)
	if err != nil {
		t.Fatalf("resolveSeed: %v", err)
	}
	if seed.Lat != 10 || seed.Lon != 10 {
		t.Errorf("seed = %+v, want the only usable hypocentre (10,10)", seed)
	}
}

func TestResolveSeed_ErrorsWhenNoUsableHypocentres(t *testing.T) {
	event := &model.Event{}
	hypos := []model.Hypocentre{{Agency: "A", Ignore: true}}

	if _, err := resolveSeed(event, hypos); err == nil {
		t.Fatalf("expected an error when every reported hypocentre is unusable")
	}
}

func TestResolveSeed_AnthropogenicForcesSurfaceDepth(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	event := &model.Event{EType: "km"} // second char 'm' marks mining/anthropogenic
	hypos := []model.Hypocentre{
		{Agency: "A", Time: base, Lat: 10, Lon: 10, Depth: 5, HasDepth: true},
	}

	seed, err := resolveSeed(event, hypos)
	if err != nil {
		t.Fatalf("resolveSeed: %v", err)
	}
	if seed.Depth != 0 || !seed.HasDepth {
		t.Errorf("seed = %+v, want Depth=0 forced for an anthropogenic event", seed)
	}
}

func TestMedianDepth_IgnoresUnreportedAndIgnoredDepths(t *testing.T) {
	hypos := []model.Hypocentre{
		{Depth: 10, HasDepth: true},
		{Depth: 20, HasDepth: true},
		{Depth: 999, HasDepth: false},
		{Depth: 500, HasDepth: true, Ignore: true},
	}

	med, ok := medianDepth(hypos)
	if !ok {
		t.Fatalf("expected a usable median depth")
	}
	if med != 15 {
		t.Errorf("medianDepth = %v, want 15", med)
	}
}

func TestMedianDepth_NoneReportedDepth(t *testing.T) {
	hypos := []model.Hypocentre{{HasDepth: false}}
	if _, ok := medianDepth(hypos); ok {
		t.Errorf("expected medianDepth to report no usable depths")
	}
}
