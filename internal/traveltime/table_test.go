package traveltime

import (
	"math"
	"testing"
)

func simpleTable(t *testing.T) *Table {
	t.Helper()
	distances := []float64{0, 10, 20, 30, 40, 50}
	depths := []float64{0, 50, 100}
	tt := make([][]float64, len(distances))
	dtdd := make([][]float64, len(distances))
	dtdh := make([][]float64, len(distances))
	for i, d := range distances {
		tt[i] = make([]float64, len(depths))
		dtdd[i] = make([]float64, len(depths))
		dtdh[i] = make([]float64, len(depths))
		for j, h := range depths {
			tt[i][j] = d*8 + h*0.1 // a simple linear surface, easy to check interpolation
			dtdd[i][j] = 8
			dtdh[i][j] = 0.1
		}
	}
	tbl, err := NewTable("P", false, distances, depths, tt, dtdd, dtdh, nil)
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	return tbl
}

func TestTable_ExactAtSample(t *testing.T) {
	tbl := simpleTable(t)
	v, _, _, err := tbl.valueAt(tbl.Time, 20, 50)
	if err != nil {
		t.Fatalf("valueAt: %v", err)
	}
	want := 20*8 + 50*0.1
	if math.Abs(v-want) > 1e-6 {
		t.Errorf("valueAt(20,50) = %v, want %v", v, want)
	}
}

func TestTable_InterpolatesBetweenSamples(t *testing.T) {
	tbl := simpleTable(t)
	v, dd, _, err := tbl.valueAt(tbl.Time, 15, 25)
	if err != nil {
		t.Fatalf("valueAt: %v", err)
	}
	want := 15*8 + 25*0.1
	if math.Abs(v-want) > 1e-6 {
		t.Errorf("valueAt(15,25) = %v, want %v", v, want)
	}
	if math.Abs(dd-8) > 1e-6 {
		t.Errorf("dT/dDelta = %v, want 8", dd)
	}
}

func TestTable_OutOfRangeFails(t *testing.T) {
	tbl := simpleTable(t)
	if _, _, _, err := tbl.valueAt(tbl.Time, 999, 50); err == nil {
		t.Fatal("expected error for out-of-range delta")
	}
}

func TestTable_SentinelCellsExcluded(t *testing.T) {
	tbl := simpleTable(t)
	tbl.Time[2][1] = Sentinel // (delta=20, depth=50)
	v, _, _, err := tbl.valueAt(tbl.Time, 20, 0)
	if err != nil {
		t.Fatalf("valueAt at depth=0 should be unaffected by sentinel at depth=50: %v", err)
	}
	want := 20*8 + 0*0.1
	if math.Abs(v-want) > 1e-6 {
		t.Errorf("valueAt(20,0) = %v, want %v", v, want)
	}
}
