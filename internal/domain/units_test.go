package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemperatureConversions(t *testing.T) {
	t.Run("kelvin to celsius", func(t *testing.T) {
		got := KelvinToCelsius(Float(293.15))
		require.NotNil(t, got)
		assert.InDelta(t, 20.0, *got, 1e-9)
	})

	t.Run("fahrenheit to celsius", func(t *testing.T) {
		got := FahrenheitToCelsius(Float(32.0))
		require.NotNil(t, got)
		assert.InDelta(t, 0.0, *got, 1e-9)

		got = FahrenheitToCelsius(Float(68.0))
		require.NotNil(t, got)
		assert.InDelta(t, 20.0, *got, 1e-9)
	})

	t.Run("nil propagates", func(t *testing.T) {
		assert.Nil(t, KelvinToCelsius(nil))
		assert.Nil(t, FahrenheitToCelsius(nil))
	})
}

func TestSpeedConversions(t *testing.T) {
	got := MphToKph(Float(10.0))
	require.NotNil(t, got)
	assert.InDelta(t, 16.0934, *got, 1e-9)

	got = MsToKph(Float(5.0))
	require.NotNil(t, got)
	assert.InDelta(t, 18.0, *got, 1e-9)

	assert.Nil(t, MphToKph(nil))
	assert.Nil(t, MsToKph(nil))
}

func TestDistanceConversions(t *testing.T) {
	got := MetersToKm(Float(2500.0))
	require.NotNil(t, got)
	assert.InDelta(t, 2.5, *got, 1e-9)

	got = MilesToKm(Float(1.0))
	require.NotNil(t, got)
	assert.InDelta(t, 1.60934, *got, 1e-9)

	got = FeetToKm(Float(10000.0))
	require.NotNil(t, got)
	assert.InDelta(t, 3.048, *got, 1e-9)

	got = InchesToMm(Float(1.0))
	require.NotNil(t, got)
	assert.InDelta(t, 25.4, *got, 1e-9)
}

func TestPressureConversions(t *testing.T) {
	t.Run("hpa", func(t *testing.T) {
		got := HPaToKPa(Float(1013.25))
		require.NotNil(t, got)
		assert.InDelta(t, 101.325, *got, 1e-9)
	})

	t.Run("inhg", func(t *testing.T) {
		got := InHgToKPa(Float(29.92))
		require.NotNil(t, got)
		assert.InDelta(t, 29.92*3.386389, *got, 1e-9)
	})

	t.Run("declared unit dispatch", func(t *testing.T) {
		got := PressureToKPa(Float(1013.0), "mb")
		require.NotNil(t, got)
		assert.InDelta(t, 101.3, *got, 1e-9)

		got = PressureToKPa(Float(1013.0), "hPa")
		require.NotNil(t, got)
		assert.InDelta(t, 101.3, *got, 1e-9)

		got = PressureToKPa(Float(30.0), "inHg")
		require.NotNil(t, got)
		assert.InDelta(t, 30.0*3.38639, *got, 1e-9)

		got = PressureToKPa(Float(101.3), "kPa")
		require.NotNil(t, got)
		assert.InDelta(t, 101.3, *got, 1e-9)
	})

	t.Run("unknown unit passes through", func(t *testing.T) {
		got := PressureToKPa(Float(760.0), "mmHg")
		require.NotNil(t, got)
		assert.InDelta(t, 760.0, *got, 1e-9)
	})

	t.Run("nil propagates", func(t *testing.T) {
		assert.Nil(t, HPaToKPa(nil))
		assert.Nil(t, InHgToKPa(nil))
		assert.Nil(t, PressureToKPa(nil, "hPa"))
	})
}
