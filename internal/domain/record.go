package domain

import (
	"math"
	"strconv"
	"strings"
)

// Column names in the collision CSV.
const (
	ColumnCity       = "local_authority_highway"
	ColumnTime       = "time"
	ColumnSeverity   = "collision_severity"
	ColumnCasualties = "number_of_casualties"
	ColumnVehicles   = "number_of_vehicles"
	ColumnLongitude  = "longitude"
	ColumnLatitude   = "latitude"
)

// RequiredColumns must be present in the CSV header for a load to succeed.
var RequiredColumns = []string{ColumnCity, ColumnTime}

// InvalidHour marks a time value whose hour component could not be parsed.
// It lies outside anything a written hour such as "-1:00" can produce.
const InvalidHour = math.MinInt

// CollisionRecord is one parsed CSV row.
type CollisionRecord struct {
	City       string  `json:"city"`
	Hour       int     `json:"hour"`
	Severity   string  `json:"severity"`
	Casualties int     `json:"casualties"`
	Vehicles   int     `json:"vehicles"`
	Longitude  float64 `json:"longitude"`
	Latitude   float64 `json:"latitude"`
}

// ParseRecord builds a CollisionRecord from a row keyed by column name.
// Missing or non-numeric numeric fields become zero; an unparsable time
// becomes InvalidHour.
func ParseRecord(row map[string]string) CollisionRecord {
	return CollisionRecord{
		City:       row[ColumnCity],
		Hour:       ParseHour(row[ColumnTime]),
		Severity:   row[ColumnSeverity],
		Casualties: parseIntOrZero(row[ColumnCasualties]),
		Vehicles:   parseIntOrZero(row[ColumnVehicles]),
		Longitude:  parseFloatOrZero(row[ColumnLongitude]),
		Latitude:   parseFloatOrZero(row[ColumnLatitude]),
	}
}

// ParseHour returns the hour component of an "HH:MM" time value, e.g.
// "7:05" -> 7, "17:45" -> 17. Values are not range checked.
func ParseHour(value string) int {
	hh, _, _ := strings.Cut(value, ":")
	hour, err := strconv.Atoi(strings.TrimSpace(hh))
	if err != nil {
		return InvalidHour
	}
	return hour
}

func parseIntOrZero(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return v
}

// parseFloatOrZero parses a string as float64, returning 0 on failure.
func parseFloatOrZero(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
