package envelope

import (
	"github.com/gonewx/partigon/internal/expr"
	"github.com/gonewx/partigon/pkg/loop"
)

// ConstantEnvelope always evaluates to the same value.
type ConstantEnvelope struct {
	*BasicEnvelope
	value float64
}

// NewConstant creates a constant envelope for pt.
func NewConstant(pt PropertyType, value float64) *ConstantEnvelope {
	return &ConstantEnvelope{
		BasicEnvelope: &BasicEnvelope{
			propertyType: pt,
			expression:   expr.Number(value),
			loop:         loop.MustContinue(0),
			completion:   1,
		},
		value: value,
	}
}

// Const creates an unbound constant, for nested values and templates.
func Const(value float64) *ConstantEnvelope {
	return NewConstant(None, value)
}

// Value returns the constant.
func (c *ConstantEnvelope) Value() float64 { return c.value }

func (c *ConstantEnvelope) WithPropertyType(pt PropertyType) Envelope {
	return NewConstant(pt, c.value)
}
