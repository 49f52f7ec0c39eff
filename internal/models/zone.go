package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Zone is one of the three circles a note can sit in
type Zone string

const (
	ZoneConfused Zone = "confused"
	ZonePartial  Zone = "partial"
	ZoneClear    Zone = "clear"
)

// Zones lists the circles in board order, from confusion to clarity
var Zones = []Zone{ZoneConfused, ZonePartial, ZoneClear}

// legacyZones maps the names used by documents written before the rename
var legacyZones = map[string]Zone{
	"wwtf":    ZoneConfused,
	"wtf":     ZonePartial,
	"clarity": ZoneClear,
}

// Valid reports whether z is one of the enumerated zones
func (z Zone) Valid() bool {
	switch z {
	case ZoneConfused, ZonePartial, ZoneClear:
		return true
	}
	return false
}

// Label returns the heading shown above a zone
func (z Zone) Label() string {
	switch z {
	case ZoneConfused:
		return "WWTF"
	case ZonePartial:
		return "WTF"
	case ZoneClear:
		return "CLARITY"
	default:
		return strings.ToUpper(string(z))
	}
}

// ParseZone converts user or document input into a Zone.
// Accepts the current names and the legacy wwtf/wtf/clarity names.
func ParseZone(s string) (Zone, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if z := Zone(v); z.Valid() {
		return z, nil
	}
	if z, ok := legacyZones[v]; ok {
		return z, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidZone, s)
}

// UnmarshalJSON decodes a zone, translating legacy names
func (z *Zone) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseZone(s)
	if err != nil {
		return err
	}
	*z = parsed
	return nil
}
