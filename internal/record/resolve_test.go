package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve_TopLevel(t *testing.T) {
	fields := Fields{"order_no": "ORD-001"}

	assert.Equal(t, "ORD-001", Resolve(fields, "order_no"))
}

func TestResolve_Nested(t *testing.T) {
	fields := Fields{
		"products": map[string]any{
			"product_id": "P-100",
		},
	}

	assert.Equal(t, "P-100", Resolve(fields, "products.product_id"))
}

func TestResolve_MissingSegment(t *testing.T) {
	fields := Fields{"order_no": "ORD-001"}

	assert.Equal(t, "", Resolve(fields, "customer.name"))
	assert.Equal(t, "", Resolve(fields, "missing"))
}

func TestResolve_TraversalThroughNonMap(t *testing.T) {
	// "order_no" is a string, so descending into it yields nothing.
	fields := Fields{"order_no": "ORD-001"}

	assert.Equal(t, "", Resolve(fields, "order_no.suffix"))
}

func TestResolve_NilValue(t *testing.T) {
	fields := Fields{"note": nil}

	assert.Equal(t, "", Resolve(fields, "note"))
}

func TestText_FloatFormatting(t *testing.T) {
	// JSON numbers decode as float64; integral values must not grow a
	// trailing ".0" or scientific notation on their way to keystrokes.
	assert.Equal(t, "5", Text(float64(5)))
	assert.Equal(t, "2.5", Text(2.5))
	assert.Equal(t, "1000000", Text(float64(1000000)))
}

func TestText_Kinds(t *testing.T) {
	assert.Equal(t, "true", Text(true))
	assert.Equal(t, "42", Text(42))
	assert.Equal(t, "42", Text(int64(42)))
	assert.Equal(t, "", Text(nil))
}

func TestText_NormalizesToNFC(t *testing.T) {
	// Decomposed "é" (e + combining acute) must come out precomposed so
	// the clipboard path delivers the canonical form.
	decomposed := "cafe\u0301"
	assert.Equal(t, "caf\u00e9", Text(decomposed))
}
