package entities

import "strings"

// TransportMode is the recorded or corrected way a shipment travels
type TransportMode string

const (
	ModeVessel             TransportMode = "Vessel"
	ModeAir                TransportMode = "Air"
	ModeCourier            TransportMode = "Courier"
	ModeTruck              TransportMode = "Truck"
	ModeTrain              TransportMode = "Train"
	ModeTeleportation      TransportMode = "Teleportation"
	ModeInternalTransfer   TransportMode = "Internal Transfer"
	ModeUnknown            TransportMode = "Unknown"
	ModeInternationalTruck TransportMode = "International Truck"
	ModeInternationalTrain TransportMode = "International Train"
	ModeDefault            TransportMode = "Default"
)

// KnownModes lists every mode the system understands, in catalog order
var KnownModes = []TransportMode{
	ModeVessel,
	ModeAir,
	ModeCourier,
	ModeTruck,
	ModeTrain,
	ModeTeleportation,
	ModeInternalTransfer,
	ModeUnknown,
	ModeInternationalTruck,
	ModeInternationalTrain,
	ModeDefault,
}

// ParseTransportMode maps free text onto a known mode.
// Empty text becomes Default and unrecognised text becomes Unknown.
func ParseTransportMode(s string) TransportMode {
	s = strings.TrimSpace(s)
	if s == "" {
		return ModeDefault
	}
	for _, m := range KnownModes {
		if strings.EqualFold(s, string(m)) {
			return m
		}
	}
	// Source systems sometimes export enum names instead of values
	switch strings.ToUpper(strings.ReplaceAll(s, " ", "_")) {
	case "PORTAL":
		return ModeTeleportation
	case "INTERNAL", "INTERNAL_TRANSFER":
		return ModeInternalTransfer
	case "INTERNATIONAL_TRUCK":
		return ModeInternationalTruck
	case "INTERNATIONAL_TRAIN":
		return ModeInternationalTrain
	}
	return ModeUnknown
}

// String returns the mode's display value
func (m TransportMode) String() string {
	return string(m)
}

// TransportGroup buckets modes with similar lead-time behaviour
type TransportGroup string

const (
	GroupDomestic            TransportGroup = "DOMESTIC"
	GroupInternationalFast   TransportGroup = "INTERNATIONAL_FAST"
	GroupInternationalMiddle TransportGroup = "INTERNATIONAL_MIDDLE"
	GroupSlow                TransportGroup = "SLOW"
	GroupUnknown             TransportGroup = "UNKNOWN"
)

// IsInternational reports whether the group crosses a border
func (g TransportGroup) IsInternational() bool {
	return strings.Contains(string(g), "INTERNATIONAL")
}
