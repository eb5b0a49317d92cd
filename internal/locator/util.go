package locator

import (
	"time"

	"github.com/quakelocate/iloc-go/internal/geo"
)

func deltaToKm(deltaDeg float64) float64 { return geo.DeltaToKm(deltaDeg) }

func secondsToDuration(sec float64) time.Duration { return time.Duration(sec * float64(time.Second)) }
