package sensor

// Classify maps a value to a status using the fixed thresholds of its kind.
// Unknown kinds are always normal.
func Classify(kind Kind, v float64) Status {
	switch kind {
	case Light:
		switch {
		case v < 200:
			return Danger
		case v < 400:
			return Warning
		}
	case Humidity:
		switch {
		case v > 70 || v < 30:
			return Danger
		case v > 60 || v < 40:
			return Warning
		}
	case Temperature:
		switch {
		case v > 28 || v < 18:
			return Danger
		case v > 25 || v < 20:
			return Warning
		}
	}
	return Normal
}

// Boundaries returns the threshold values of a kind in ascending order,
// for drawing scale markers.
func Boundaries(kind Kind) []float64 {
	switch kind {
	case Light:
		return []float64{200, 400}
	case Humidity:
		return []float64{30, 40, 60, 70}
	case Temperature:
		return []float64{18, 20, 25, 28}
	}
	return nil
}
