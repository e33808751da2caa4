package speed

// Conversion factors.
const (
	// MPSToMPH converts meters per second to miles per hour.
	MPSToMPH = 2.23694
	// MPHToKMH converts miles per hour to kilometers per hour.
	MPHToKMH = 1.60934
)

// Display units accepted by Convert.
const (
	MPS = "mps"
	MPH = "mph"
	KMH = "kmh"
)

// Units lists the display units in the order they are documented.
var Units = []string{MPH, KMH, MPS}

// ValidUnit reports whether unit is one of Units.
func ValidUnit(unit string) bool {
	for _, u := range Units {
		if u == unit {
			return true
		}
	}
	return false
}

// ToMPH converts meters per second to miles per hour.
func ToMPH(mps float64) float64 {
	return mps * MPSToMPH
}

// ToKMH converts miles per hour to kilometers per hour.
func ToKMH(mph float64) float64 {
	return mph * MPHToKMH
}

// Convert converts a speed in miles per hour to the target unit.
// Unknown units return the input unchanged.
func Convert(mph float64, unit string) float64 {
	switch unit {
	case KMH:
		return ToKMH(mph)
	case MPS:
		return mph / MPSToMPH
	default:
		return mph
	}
}
