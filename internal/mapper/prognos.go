package mapper

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// PrognosStationValue is one station's value for a single RDPS PROGNOS
// variable file.
type PrognosStationValue struct {
	StationID     string
	Latitude      float64
	Longitude     float64
	ReferenceTime time.Time
	ForecastTime  time.Time
	LeadHours     int
	Unit          string
	Value         float64
}

// parsePrognosLeadHours reads the ISO 8601 duration form the files carry,
// always whole hours like "PT005H".
func parsePrognosLeadHours(value string) (int, error) {
	if !strings.HasPrefix(value, "PT") || !strings.HasSuffix(value, "H") {
		return 0, fmt.Errorf("unexpected lead time format: %s", value)
	}
	hours, err := strconv.Atoi(value[2 : len(value)-1])
	if err != nil {
		return 0, fmt.Errorf("unexpected lead time format: %s", value)
	}
	return hours, nil
}

func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	const radiusKm = 6371.0
	dlat := (lat2 - lat1) * math.Pi / 180
	dlon := (lon2 - lon1) * math.Pi / 180
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	a := math.Sin(dlat/2)*math.Sin(dlat/2) + math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(dlon/2)*math.Sin(dlon/2)
	return 2 * radiusKm * math.Asin(math.Sqrt(a))
}

// ParsePrognosPayload extracts station values from an RDPS PROGNOS GeoJSON
// file, skipping features that lack identity, timing, or a numeric value.
func ParsePrognosPayload(payload map[string]any) ([]PrognosStationValue, error) {
	features := getArray(payload, "features")

	values := make([]PrognosStationValue, 0, len(features))
	for _, raw := range features {
		feature := object(raw)
		if feature == nil {
			continue
		}
		coords := getArray(getObject(feature, "geometry"), "coordinates")
		if len(coords) < 2 {
			continue
		}
		lon := floatVal(coords[0])
		lat := floatVal(coords[1])
		if lat == nil || lon == nil {
			continue
		}

		properties := getObject(feature, "properties")
		stationID := textVal(get(properties, "prognos_station_id"))
		referenceTime := isoTime(get(properties, "reference_datetime"))
		forecastTime := isoTime(get(properties, "forecast_datetime"))
		leadTime := textVal(get(properties, "forecast_leadtime"))
		unit := textVal(get(properties, "unit"))
		value := floatVal(get(properties, "forecast_value"))

		if stationID == nil || referenceTime == nil || forecastTime == nil || leadTime == nil {
			continue
		}
		if value == nil || unit == nil {
			continue
		}

		leadHours, err := parsePrognosLeadHours(*leadTime)
		if err != nil {
			return nil, err
		}

		values = append(values, PrognosStationValue{
			StationID:     *stationID,
			Latitude:      *lat,
			Longitude:     *lon,
			ReferenceTime: *referenceTime,
			ForecastTime:  *forecastTime,
			LeadHours:     leadHours,
			Unit:          *unit,
			Value:         *value,
		})
	}

	if len(values) == 0 {
		return nil, fmt.Errorf("rdps prognos: no usable station values: %w", ErrEmptyPayload)
	}
	return values, nil
}

// SelectNearestPrognosStation picks the station closest to the target point
// by great-circle distance.
func SelectNearestPrognosStation(values []PrognosStationValue, targetLat, targetLon float64) (string, float64, float64, error) {
	var best *PrognosStationValue
	bestDistance := math.Inf(1)
	for i := range values {
		distance := haversineKm(targetLat, targetLon, values[i].Latitude, values[i].Longitude)
		if distance < bestDistance {
			bestDistance = distance
			best = &values[i]
		}
	}
	if best == nil {
		return "", 0, 0, fmt.Errorf("rdps prognos: %w", ErrEmptyPayload)
	}
	return best.StationID, best.Latitude, best.Longitude, nil
}

// PrognosValueForStation returns the value belonging to a station, or nil
// when the file has no row for it.
func PrognosValueForStation(values []PrognosStationValue, stationID string) *PrognosStationValue {
	for i := range values {
		if values[i].StationID == stationID {
			return &values[i]
		}
	}
	return nil
}
