// Package generator produces buyer message text from a fixed numeric
// context. The pipeline treats every implementation as untrusted: whatever
// text comes back is fact-checked by the guardrail validator before a human
// sees it.
package generator

import (
	"context"
	"fmt"

	"github.com/ignite/fishcatch/internal/pkg/logger"
)

// NumericContext is the ground-truth tuple injected into every generation
// request. The generator must not invent or restate numbers from anywhere
// else; these values are the single source of truth for the draft.
type NumericContext struct {
	BuyerName  string
	FishType   string
	Pounds     float64
	PricePerLb float64
	TotalValue float64
}

// Generator turns a numeric context into SMS-style message text.
type Generator interface {
	Generate(ctx context.Context, nc NumericContext) (string, error)
}

// prompt renders the generation instructions for the AI backends. Both the
// Anthropic and Bedrock generators share it so they produce comparable text.
func prompt(nc NumericContext) string {
	return fmt.Sprintf(`Generate a brief, friendly text message to a fish buyer.

Context:
- Fish type: %s
- Pounds available: %s
- Current cannery price: $%.2f/lb
- Buyer name: %s

Requirements:
- Keep it short (SMS-style, under 160 characters)
- Be casual and friendly
- Include: fish type, pounds, price per lb
- Ask if they're interested
- Don't mention the cannery name
- Don't commit to a final price or meetup (the fisherman handles that directly)

Example format:
"Hey [Name], got [X] lbs fresh [fish] today. Cannery buying at $[X]/lb. Interested?"

Generate ONLY the message text, nothing else.`,
		nc.FishType, formatPounds(nc.Pounds), nc.PricePerLb, nc.BuyerName)
}

// WithFallback returns a generator that tries primary first and falls back
// to secondary when it errors. Used to degrade from the AI backend to the
// fixed template when the API is down.
func WithFallback(primary, secondary Generator) Generator {
	return &fallbackGenerator{primary: primary, secondary: secondary}
}

type fallbackGenerator struct {
	primary   Generator
	secondary Generator
}

func (g *fallbackGenerator) Generate(ctx context.Context, nc NumericContext) (string, error) {
	text, err := g.primary.Generate(ctx, nc)
	if err == nil {
		return text, nil
	}
	logger.Warn("primary generator failed, using fallback", "error", err.Error())
	return g.secondary.Generate(ctx, nc)
}

// formatPounds renders a pounds figure without a trailing ".0" for whole
// numbers, matching how the fisherman would write it.
func formatPounds(p float64) string {
	if p == float64(int64(p)) {
		return fmt.Sprintf("%d", int64(p))
	}
	return fmt.Sprintf("%.1f", p)
}
