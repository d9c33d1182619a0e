package generator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var halibutContext = NumericContext{
	BuyerName:  "Alice",
	FishType:   "Halibut",
	Pounds:     100,
	PricePerLb: 4.80,
	TotalValue: 480.00,
}

func TestTemplateGeneratorDefault(t *testing.T) {
	g, err := NewTemplateGenerator("")
	require.NoError(t, err)

	text, err := g.Generate(context.Background(), halibutContext)
	require.NoError(t, err)
	assert.Equal(t, "Hey Alice, got 100 lbs fresh Halibut today. Cannery buying at $4.80/lb. Interested?", text)
	assert.Less(t, len(text), 160, "fallback message should fit in one SMS")
}

func TestTemplateGeneratorCustom(t *testing.T) {
	g, err := NewTemplateGenerator(`{{ fish_type }}: {{ pounds }} lbs at ${{ price_per_lb }}/lb, ${{ total_value }} total. Want it, {{ buyer_name }}?`)
	require.NoError(t, err)

	text, err := g.Generate(context.Background(), halibutContext)
	require.NoError(t, err)
	assert.Equal(t, "Halibut: 100 lbs at $4.80/lb, $480.00 total. Want it, Alice?", text)
}

func TestTemplateGeneratorFractionalPounds(t *testing.T) {
	g, err := NewTemplateGenerator("")
	require.NoError(t, err)

	nc := halibutContext
	nc.Pounds = 87.5
	text, err := g.Generate(context.Background(), nc)
	require.NoError(t, err)
	assert.Contains(t, text, "87.5 lbs")
}

func TestTemplateGeneratorBadTemplate(t *testing.T) {
	_, err := NewTemplateGenerator(`{% unless %}`)
	assert.Error(t, err)
}

type errGenerator struct{}

func (errGenerator) Generate(context.Context, NumericContext) (string, error) {
	return "", errors.New("api down")
}

func TestWithFallback(t *testing.T) {
	tmpl, err := NewTemplateGenerator("")
	require.NoError(t, err)

	g := WithFallback(errGenerator{}, tmpl)
	text, err := g.Generate(context.Background(), halibutContext)
	require.NoError(t, err)
	assert.Contains(t, text, "$4.80/lb")
}
