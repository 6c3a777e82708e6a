package envelope

import (
	"fmt"
	"strings"
)

// PropertyType is the emission property an envelope drives.
type PropertyType int

const (
	// None marks envelopes used only as nested inputs or templates.
	// The zero value, so an unbound envelope is never aggregated by accident.
	None PropertyType = iota
	PosX
	PosY
	PosZ
	OffsetX
	OffsetY
	OffsetZ
	Count
	Extra
)

var propertyNames = map[PropertyType]string{
	None:    "NONE",
	PosX:    "POS_X",
	PosY:    "POS_Y",
	PosZ:    "POS_Z",
	OffsetX: "OFFSET_X",
	OffsetY: "OFFSET_Y",
	OffsetZ: "OFFSET_Z",
	Count:   "COUNT",
	Extra:   "EXTRA",
}

// PropertyTypes lists every bindable property, in slot order.
var PropertyTypes = []PropertyType{PosX, PosY, PosZ, OffsetX, OffsetY, OffsetZ, Count, Extra}

func (p PropertyType) String() string {
	if name, ok := propertyNames[p]; ok {
		return name
	}
	return fmt.Sprintf("PropertyType(%d)", int(p))
}

// ParsePropertyType parses a canonical property name such as "POS_X".
// Matching is case-insensitive.
func ParsePropertyType(s string) (PropertyType, error) {
	upper := strings.ToUpper(strings.TrimSpace(s))
	for p, name := range propertyNames {
		if name == upper {
			return p, nil
		}
	}
	return None, fmt.Errorf("%w: unknown property type %q", ErrInvalidEnvelope, s)
}

// IsPosition reports whether p is one of the position axes.
func (p PropertyType) IsPosition() bool { return p >= PosX && p <= PosZ }

// IsOffset reports whether p is one of the offset axes.
func (p PropertyType) IsOffset() bool { return p >= OffsetX && p <= OffsetZ }

// Axis returns 0, 1 or 2 for the X, Y and Z axes of a position or offset
// property, and -1 for every other property.
func (p PropertyType) Axis() int {
	switch {
	case p.IsPosition():
		return int(p - PosX)
	case p.IsOffset():
		return int(p - OffsetX)
	}
	return -1
}
