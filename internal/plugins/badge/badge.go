// Package badge renders a coverage badge from the test metrics earlier
// plugins published on the shared context.
package badge

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/slipway-io/slipway/internal/plugin"
)

const (
	defaultLabel    = "coverage"
	defaultFilename = "coverage.svg"
	charWidth       = 7
	sidePadding     = 10
)

// Flat badge in the common shields layout.
const badgeTemplate = `<svg xmlns="http://www.w3.org/2000/svg" width="{{.TotalWidth}}" height="20" role="img" aria-label="{{.Label}}: {{.Value}}">
<linearGradient id="s" x2="0" y2="100%"><stop offset="0" stop-color="#bbb" stop-opacity=".1"/><stop offset="1" stop-opacity=".1"/></linearGradient>
<rect rx="3" width="{{.TotalWidth}}" height="20" fill="#555"/>
<rect rx="3" x="{{.LabelWidth}}" width="{{.ValueWidth}}" height="20" fill="{{.Color}}"/>
<rect rx="3" width="{{.TotalWidth}}" height="20" fill="url(#s)"/>
<g fill="#fff" text-anchor="middle" font-family="Verdana,Geneva,DejaVu Sans,sans-serif" font-size="11">
<text x="{{.LabelCenter}}" y="14">{{.Label}}</text>
<text x="{{.ValueCenter}}" y="14">{{.Value}}</text>
</g>
</svg>
`

var badgeTmpl = template.Must(template.New("badge").Parse(badgeTemplate))

// BadgePlugin writes the coverage badge into the artifacts directory.
type BadgePlugin struct{}

// New creates the plugin instance.
func New() plugin.Plugin {
	return &BadgePlugin{}
}

type badgeData struct {
	Label       string
	Value       string
	Color       string
	LabelWidth  int
	ValueWidth  int
	TotalWidth  int
	LabelCenter int
	ValueCenter int
}

func (p *BadgePlugin) Run(ctx context.Context, inv *plugin.Invocation) error {
	rctx := inv.Release
	if rctx.Tests == nil {
		inv.Log.Info("no test metrics in context, skipping badge")
		return nil
	}

	label := inv.Settings.StringOr("label", defaultLabel)
	filename := inv.Settings.StringOr("filename", defaultFilename)

	value := fmt.Sprintf("%.1f%%", rctx.Tests.Coverage)
	data := layout(label, value, colorFor(rctx.Tests.Coverage))

	path := filepath.Join(rctx.ArtifactsDir, filename)
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create badge %s: %w", path, err)
	}
	defer out.Close()

	if err := badgeTmpl.Execute(out, data); err != nil {
		os.Remove(path)
		return fmt.Errorf("render badge: %w", err)
	}

	rctx.AddArchiveInput(path)
	inv.Log.WithFields(map[string]any{"badge": path, "value": value}).Info("coverage badge written")
	return nil
}

func layout(label, value, color string) badgeData {
	labelWidth := len(label)*charWidth + sidePadding
	valueWidth := len(value)*charWidth + sidePadding
	return badgeData{
		Label:       label,
		Value:       value,
		Color:       color,
		LabelWidth:  labelWidth,
		ValueWidth:  valueWidth,
		TotalWidth:  labelWidth + valueWidth,
		LabelCenter: labelWidth / 2,
		ValueCenter: labelWidth + valueWidth/2,
	}
}

func colorFor(coverage float64) string {
	switch {
	case coverage >= 90:
		return "#4c1"
	case coverage >= 75:
		return "#dfb317"
	case coverage >= 50:
		return "#fe7d37"
	default:
		return "#e05d44"
	}
}
