package mapper

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ericfeunekes/wxbench/internal/domain"
)

const ambientWeatherProvider = "ambient_weather"

// ambientDeviceCoords digs latitude and longitude out of a device info
// block. The API has shipped both the nested {"coords": {"coords": {...}}}
// form and a bare [lat, lon] pair.
func ambientDeviceCoords(info map[string]any) (domain.Location, error) {
	var lat, lon *float64

	switch coords := get(info, "coords").(type) {
	case map[string]any:
		target := coords
		if nested := object(get(coords, "coords")); nested != nil {
			target = nested
		}
		lat = firstFloat(target, "lat", "latitude")
		lon = firstFloat(target, "lon", "longitude")
	case []any:
		if len(coords) >= 2 {
			lat = floatVal(coords[0])
			lon = floatVal(coords[1])
		}
	}

	if lat == nil || lon == nil {
		return domain.Location{}, fmt.Errorf("ambient weather device: %w", ErrMissingCoordinates)
	}
	return domain.Location{Latitude: *lat, Longitude: *lon}, nil
}

// ambientSelectDevice picks the station to read. An explicit MAC wins;
// otherwise devices are ordered by MAC so repeated runs pick the same one.
func ambientSelectDevice(devices []any, preferredMAC string) (map[string]any, error) {
	if len(devices) == 0 {
		return nil, fmt.Errorf("ambient weather: %w", ErrNoDevice)
	}

	if preferredMAC != "" {
		for _, raw := range devices {
			device := object(raw)
			mac := textVal(get(device, "macAddress"))
			if mac != nil && strings.EqualFold(*mac, preferredMAC) {
				return device, nil
			}
		}
		return nil, fmt.Errorf("ambient weather: device with MAC %s not found", preferredMAC)
	}

	sorted := make([]map[string]any, 0, len(devices))
	for _, raw := range devices {
		sorted = append(sorted, object(raw))
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		var a, b string
		if mac := textVal(get(sorted[i], "macAddress")); mac != nil {
			a = *mac
		}
		if mac := textVal(get(sorted[j], "macAddress")); mac != nil {
			b = *mac
		}
		return a < b
	})
	return sorted[0], nil
}

// ambientObservedAt parses the dateutc field, which is milliseconds since
// epoch on current firmware and seconds on older units.
func ambientObservedAt(value any) (time.Time, error) {
	numeric := floatVal(value)
	if numeric == nil {
		return time.Time{}, fmt.Errorf("ambient weather observation: %w", ErrMissingTimestamp)
	}

	seconds := *numeric
	if seconds > 1e12 {
		seconds /= 1000.0
	}
	return time.Unix(0, int64(seconds*float64(time.Second))).UTC(), nil
}

// AmbientWeatherObservation maps the devices listing to an observation for
// one station. deviceMAC selects a station explicitly; leave it empty to take
// the first device by MAC order.
func AmbientWeatherObservation(payload []any, deviceMAC string) (domain.Observation, error) {
	device, err := ambientSelectDevice(payload, deviceMAC)
	if err != nil {
		return domain.Observation{}, err
	}

	lastData := getObject(device, "lastData")
	if len(lastData) == 0 {
		return domain.Observation{}, fmt.Errorf("ambient weather device: %w", ErrEmptyPayload)
	}

	info := getObject(device, "info")
	location, err := ambientDeviceCoords(info)
	if err != nil {
		return domain.Observation{}, err
	}

	observedAt, err := ambientObservedAt(get(lastData, "dateutc"))
	if err != nil {
		return domain.Observation{}, err
	}

	temperatureF := firstFloat(lastData, "tempf", "tempOut")
	temperatureC := domain.FahrenheitToCelsius(temperatureF)
	if temperatureF == nil {
		temperatureC = floatVal(get(lastData, "tempc"))
	}

	dewpointF := firstFloat(lastData, "dewPoint", "dewptf")
	dewpointC := domain.FahrenheitToCelsius(dewpointF)
	if dewpointF == nil {
		dewpointC = floatVal(get(lastData, "dewpt"))
	}

	pressureInHg := firstFloat(lastData, "baromrelin", "baromabsin", "barometer")

	return domain.Observation{
		Provider:                ambientWeatherProvider,
		Station:                 firstText(get(info, "name"), get(device, "macAddress")),
		Location:                location,
		ObservedAt:              observedAt,
		TemperatureC:            temperatureC,
		TemperatureApparentC:    domain.FahrenheitToCelsius(floatVal(get(lastData, "feelsLike"))),
		TemperatureInC:          domain.FahrenheitToCelsius(firstFloat(lastData, "tempinf", "tempIn")),
		TemperatureApparentInC:  domain.FahrenheitToCelsius(floatVal(get(lastData, "feelsLikein"))),
		DewpointC:               dewpointC,
		DewpointInC:             domain.FahrenheitToCelsius(firstFloat(lastData, "dewPointin", "dewptin")),
		WindSpeedKph:            domain.MphToKph(firstFloat(lastData, "windspeedmph", "windSpeed")),
		WindGustKph:             domain.MphToKph(floatVal(get(lastData, "windgustmph"))),
		WindGustDailyMaxKph:     domain.MphToKph(floatVal(get(lastData, "maxdailygust"))),
		WindDirectionDeg:        intVal(get(lastData, "winddir")),
		WindDirectionAvg10mDeg:  intVal(get(lastData, "winddir_avg10m")),
		PressureKPa:             domain.InHgToKPa(pressureInHg),
		PressureAbsoluteKPa:     domain.InHgToKPa(floatVal(get(lastData, "baromabsin"))),
		RelativeHumidity:        floatVal(get(lastData, "humidity")),
		RelativeHumidityIn:      floatVal(get(lastData, "humidityin")),
		PrecipitationLastHourMm: domain.InchesToMm(firstFloat(lastData, "hourlyrainin", "hourlyrain")),
		PrecipitationDailyMm:    domain.InchesToMm(floatVal(get(lastData, "dailyrainin"))),
		PrecipitationWeeklyMm:   domain.InchesToMm(floatVal(get(lastData, "weeklyrainin"))),
		PrecipitationMonthlyMm:  domain.InchesToMm(floatVal(get(lastData, "monthlyrainin"))),
		PrecipitationYearlyMm:   domain.InchesToMm(floatVal(get(lastData, "yearlyrainin"))),
		PrecipitationEventMm:    domain.InchesToMm(floatVal(get(lastData, "eventrainin"))),
		UVIndex:                 floatVal(get(lastData, "uv")),
		SolarRadiationWm2:       floatVal(get(lastData, "solarradiation")),
		BatteryIn:               floatVal(get(lastData, "battin")),
		BatteryOut:              floatVal(get(lastData, "battout")),
	}, nil
}
