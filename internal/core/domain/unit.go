package domain

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	UNIT_STATUS_ONLINE  = "online"
	UNIT_STATUS_OFFLINE = "offline"
)

// Unit is the record supplied by the unit data service. Only the fields read
// by the control core and the editable identity fields are modelled.
type Unit struct {
	Id                string   `json:"id"`
	Name              string   `json:"name"`
	Location          string   `json:"location"`
	GPSCoordinates    string   `json:"gpsCoordinates,omitempty"`
	Status            string   `json:"status"`
	WaterGeneration   bool     `json:"watergeneration"`
	WaterProductionOn bool     `json:"waterProductionOn"`
	AutoSwitchEnabled bool     `json:"autoSwitchEnabled"`
	WaterLevel        float64  `json:"water_level"`
	TempOutside       *float64 `json:"temp_outside,omitempty"`
}

// GPS is a latitude/longitude pair, rendered as "lat, lon".
type GPS struct {
	Latitude  float64
	Longitude float64
}

func ParseGPS(value string) (GPS, error) {
	parts := strings.Split(value, ",")
	if len(parts) != 2 {
		return GPS{}, fmt.Errorf("%w: %q", ErrInvalidGPS, value)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil || lat < -90 || lat > 90 {
		return GPS{}, fmt.Errorf("%w: latitude %q", ErrInvalidGPS, parts[0])
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil || lon < -180 || lon > 180 {
		return GPS{}, fmt.Errorf("%w: longitude %q", ErrInvalidGPS, parts[1])
	}
	return GPS{Latitude: lat, Longitude: lon}, nil
}

func (g GPS) String() string {
	return fmt.Sprintf("%.4f, %.4f", g.Latitude, g.Longitude)
}
