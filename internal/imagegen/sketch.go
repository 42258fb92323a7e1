package imagegen

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	types "github.com/yungbote/moodlog-backend/internal/domain"
)

const SketchName = "sketch"

var sketchPalette = map[types.MoodLabel]struct{ bg, face string }{
	types.MoodHappy:   {bg: "#FFE8A3", face: "#F4A259"},
	types.MoodNeutral: {bg: "#DCEBFA", face: "#A7A7A7"},
	types.MoodSad:     {bg: "#D9D4F2", face: "#8C7AA9"},
}

// SketchProvider renders a small mood card locally: a cartoon kitten or puppy
// face tinted by mood with the note underneath. It needs no network.
type SketchProvider struct {
	width, height int
	face          font.Face
}

func NewSketchProvider() (*SketchProvider, error) {
	parsed, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse sketch font: %w", err)
	}
	face := truetype.NewFace(parsed, &truetype.Options{Size: 16, DPI: 72, Hinting: font.HintingNone})
	return &SketchProvider{width: 400, height: 300, face: face}, nil
}

func (p *SketchProvider) Name() string { return SketchName }

func (p *SketchProvider) Generate(ctx context.Context, req Request) (Image, error) {
	if err := ctx.Err(); err != nil {
		return Image{}, err
	}
	pal, ok := sketchPalette[req.Mood]
	if !ok {
		pal = sketchPalette[types.MoodNeutral]
	}
	species := req.Species
	if species == "" {
		species = SpeciesKitten
		if strings.Contains(req.Prompt, string(SpeciesPuppy)) {
			species = SpeciesPuppy
		}
	}

	w, h := float64(p.width), float64(p.height)
	dc := gg.NewContext(p.width, p.height)
	dc.SetHexColor(pal.bg)
	dc.Clear()

	cx, cy, r := w/2, h*0.4, h*0.22
	dc.SetHexColor(pal.face)
	if species == SpeciesPuppy {
		dc.DrawEllipse(cx-r*0.95, cy+r*0.1, r*0.35, r*0.7)
		dc.DrawEllipse(cx+r*0.95, cy+r*0.1, r*0.35, r*0.7)
	} else {
		for _, side := range []float64{-1, 1} {
			dc.MoveTo(cx+side*r*0.85, cy-r*0.35)
			dc.LineTo(cx+side*r*0.6, cy-r*1.25)
			dc.LineTo(cx+side*r*0.15, cy-r*0.8)
			dc.ClosePath()
		}
	}
	dc.Fill()
	dc.DrawCircle(cx, cy, r)
	dc.Fill()

	dc.SetHexColor("#2B2B2B")
	dc.DrawCircle(cx-r*0.35, cy-r*0.15, r*0.09)
	dc.DrawCircle(cx+r*0.35, cy-r*0.15, r*0.09)
	dc.Fill()
	dc.SetLineWidth(3)
	switch req.Mood {
	case types.MoodHappy:
		dc.DrawArc(cx, cy+r*0.15, r*0.35, 0.15*gg.Radians(180), 0.85*gg.Radians(180))
	case types.MoodSad:
		dc.DrawArc(cx, cy+r*0.6, r*0.3, 1.15*gg.Radians(180), 1.85*gg.Radians(180))
	default:
		dc.MoveTo(cx-r*0.25, cy+r*0.4)
		dc.LineTo(cx+r*0.25, cy+r*0.4)
	}
	dc.Stroke()

	dc.SetFontFace(p.face)
	dc.DrawStringWrapped(truncateRunes(req.Note, 120), w/2, h*0.78, 0.5, 0.5, w-40, 1.3, gg.AlignCenter)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return Image{}, fmt.Errorf("encode sketch: %w", err)
	}
	return Image{Bytes: buf.Bytes(), MimeType: "image/png"}, nil
}

func truncateRunes(s string, max int) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max-1]) + "…"
}
