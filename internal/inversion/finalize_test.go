package inversion

import (
	"math"
	"testing"
)

func TestHorizontalEllipse_CircularCaseHasEqualAxes(t *testing.T) {
	e := horizontalEllipse(1.0, 1.0, 0.0, 1.645)
	if math.Abs(e.SemiMajorKm-e.SemiMinorKm) > 1e-9 {
		t.Errorf("expected equal axes for isotropic covariance, got major=%v minor=%v", e.SemiMajorKm, e.SemiMinorKm)
	}
}

func TestHorizontalEllipse_ElongatedCaseHasMajorGreaterThanMinor(t *testing.T) {
	e := horizontalEllipse(4.0, 0.5, 0.0, 1.645)
	if e.SemiMajorKm <= e.SemiMinorKm {
		t.Errorf("expected semi-major > semi-minor, got major=%v minor=%v", e.SemiMajorKm, e.SemiMinorKm)
	}
}

func TestZScoreFor_KnownConfidenceLevels(t *testing.T) {
	if z := zScoreFor(0.90); math.Abs(z-1.645) > 1e-6 {
		t.Errorf("zScoreFor(0.90) = %v, want 1.645", z)
	}
	if z := zScoreFor(0.95); math.Abs(z-1.960) > 1e-6 {
		t.Errorf("zScoreFor(0.95) = %v, want 1.960", z)
	}
}
