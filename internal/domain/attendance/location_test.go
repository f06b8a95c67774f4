package attendance

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocationUnmarshalObject(t *testing.T) {
	var loc Location
	err := json.Unmarshal([]byte(`{"latitude": 12.9716, "longitude": 77.5946, "address": "MG Road"}`), &loc)
	require.NoError(t, err)

	assert.InDelta(t, 12.9716, loc.Latitude, 1e-9)
	assert.InDelta(t, 77.5946, loc.Longitude, 1e-9)
	require.NotNil(t, loc.Address)
	assert.Equal(t, "MG Road", *loc.Address)
}

func TestLocationUnmarshalAliasKeys(t *testing.T) {
	var loc Location
	err := json.Unmarshal([]byte(`{"lat": -33.86, "lng": 151.21}`), &loc)
	require.NoError(t, err)

	assert.InDelta(t, -33.86, loc.Latitude, 1e-9)
	assert.InDelta(t, 151.21, loc.Longitude, 1e-9)
	assert.Nil(t, loc.Address)
}

func TestLocationUnmarshalLonAlias(t *testing.T) {
	var loc Location
	err := json.Unmarshal([]byte(`{"latitude": 1.35, "lon": 103.82}`), &loc)
	require.NoError(t, err)
	assert.InDelta(t, 103.82, loc.Longitude, 1e-9)
}

func TestLocationUnmarshalString(t *testing.T) {
	var loc Location
	err := json.Unmarshal([]byte(`"12.9716, 77.5946, Bengaluru"`), &loc)
	require.NoError(t, err)

	assert.InDelta(t, 12.9716, loc.Latitude, 1e-9)
	assert.InDelta(t, 77.5946, loc.Longitude, 1e-9)
	require.NotNil(t, loc.Address)
	assert.Equal(t, "Bengaluru", *loc.Address)
}

func TestLocationUnmarshalStringWithoutAddress(t *testing.T) {
	var loc Location
	err := json.Unmarshal([]byte(`"12.97,77.59"`), &loc)
	require.NoError(t, err)
	assert.Nil(t, loc.Address)
}

func TestLocationUnmarshalBadString(t *testing.T) {
	var loc Location
	err := json.Unmarshal([]byte(`"just an address"`), &loc)
	assert.Error(t, err)
}

func TestLocationUnmarshalMissingCoordinates(t *testing.T) {
	var loc Location
	err := json.Unmarshal([]byte(`{"address": "nowhere"}`), &loc)
	assert.Error(t, err)
}

func TestLocationValid(t *testing.T) {
	ok := Location{Latitude: 90, Longitude: -180}
	assert.True(t, ok.Valid())

	badLat := Location{Latitude: 91, Longitude: 0}
	assert.False(t, badLat.Valid())

	badLng := Location{Latitude: 0, Longitude: 181}
	assert.False(t, badLng.Valid())
}
