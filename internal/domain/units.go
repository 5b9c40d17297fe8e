package domain

import "strings"

// Unit conversions into the canonical units documented in the package
// comment. All helpers propagate nil so optional fields can be converted
// without presence checks at every call site.

// KelvinToCelsius converts an absolute temperature in K to °C.
func KelvinToCelsius(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return Float(*v - 273.15)
}

// FahrenheitToCelsius converts °F to °C.
func FahrenheitToCelsius(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return Float((*v - 32.0) * 5.0 / 9.0)
}

// MphToKph converts miles per hour to km/h.
func MphToKph(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return Float(*v * 1.60934)
}

// MsToKph converts metres per second to km/h.
func MsToKph(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return Float(*v * 3.6)
}

// MilesToKm converts statute miles to kilometres.
func MilesToKm(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return Float(*v * 1.60934)
}

// MetersToKm converts metres to kilometres.
func MetersToKm(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return Float(*v / 1000.0)
}

// FeetToKm converts feet to kilometres.
func FeetToKm(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return Float(*v * 0.0003048)
}

// HPaToKPa converts hectopascals (millibars) to kilopascals.
func HPaToKPa(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return Float(*v / 10.0)
}

// InHgToKPa converts inches of mercury to kilopascals.
func InHgToKPa(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return Float(*v * 3.386389)
}

// InchesToMm converts inches to millimetres.
func InchesToMm(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return Float(*v * 25.4)
}

// PressureToKPa converts a pressure reading with a provider-declared unit
// string to kPa. Unrecognized units pass the value through unchanged.
func PressureToKPa(v *float64, unit string) *float64 {
	if v == nil {
		return nil
	}
	switch strings.ToLower(unit) {
	case "", "kpa":
		return v
	case "mb", "hpa":
		return Float(*v / 10.0)
	case "inhg":
		return Float(*v * 3.38639)
	}
	return v
}
