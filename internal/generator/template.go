package generator

import (
	"context"
	"fmt"
	"strings"

	"github.com/osteele/liquid"
)

// defaultTemplate is the deterministic fallback message. It states exactly
// the numbers from the context, so it always passes the guardrails.
const defaultTemplate = `Hey {{ buyer_name }}, got {{ pounds }} lbs fresh {{ fish_type }} today. Cannery buying at ${{ price_per_lb }}/lb. Interested?`

// TemplateGenerator renders buyer messages from a fixed Liquid template.
// Used standalone in offline mode and as the fallback behind the AI
// backends.
type TemplateGenerator struct {
	engine   *liquid.Engine
	template *liquid.Template
}

// NewTemplateGenerator compiles the template once. tmpl may be empty to use
// the default.
func NewTemplateGenerator(tmpl string) (*TemplateGenerator, error) {
	if tmpl == "" {
		tmpl = defaultTemplate
	}
	engine := liquid.NewEngine()
	compiled, err := engine.ParseString(tmpl)
	if err != nil {
		return nil, fmt.Errorf("parsing message template: %w", err)
	}
	return &TemplateGenerator{engine: engine, template: compiled}, nil
}

// Generate renders the template with the numeric context. Numbers are
// pre-formatted so the template cannot alter them.
func (g *TemplateGenerator) Generate(_ context.Context, nc NumericContext) (string, error) {
	out, err := g.template.RenderString(map[string]interface{}{
		"buyer_name":   nc.BuyerName,
		"fish_type":    nc.FishType,
		"pounds":       formatPounds(nc.Pounds),
		"price_per_lb": fmt.Sprintf("%.2f", nc.PricePerLb),
		"total_value":  fmt.Sprintf("%.2f", nc.TotalValue),
	})
	if err != nil {
		return "", fmt.Errorf("rendering message template: %w", err)
	}
	return strings.TrimSpace(out), nil
}
