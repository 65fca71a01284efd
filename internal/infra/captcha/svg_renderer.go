// Package captcha stores pending challenges and draws them as SVG.
package captcha

import (
	"fmt"
	"io"
	"math/rand/v2"

	svg "github.com/ajstarks/svgo"

	"console/config"
	"console/internal/domain/service"
	"console/internal/errors"
)

const (
	noiseLines   = 4
	noiseCircles = 12
)

// palette keeps glyphs readable on the light background.
var palette = []string{"#1f3a93", "#2c3e50", "#8e44ad", "#c0392b", "#16a085", "#d35400", "#2d3436"}

type svgRenderer struct {
	width  int
	height int
}

// NewSVGRenderer is the fx constructor.
func NewSVGRenderer(cfg *config.Config) service.CaptchaRenderer {
	width, height := config.DefaultCaptchaWidth, config.DefaultCaptchaHeight
	if cfg != nil && cfg.Captcha != nil {
		width, height = cfg.Captcha.Width, cfg.Captcha.Height
	}

	return &svgRenderer{width: width, height: height}
}

// Render draws each glyph of question with its own color, size and tilt, over random lines and dots.
func (r *svgRenderer) Render(w io.Writer, question string) error {
	if question == "" {
		return errors.New("empty captcha question")
	}

	canvas := svg.New(w)
	canvas.Start(r.width, r.height)
	canvas.Rect(0, 0, r.width, r.height, "fill:#f4f6f8")

	for range noiseCircles {
		canvas.Circle(rand.IntN(r.width), rand.IntN(r.height), 1+rand.IntN(2),
			"fill:"+randomColor()+";fill-opacity:0.6")
	}

	glyphs := []rune(question)
	step := r.width / (len(glyphs) + 1)
	baseline := r.height*2/3 + 2

	for i, g := range glyphs {
		if g == ' ' {
			continue
		}

		x := step*(i+1) - step/3 + rand.IntN(3) - 1
		y := baseline + rand.IntN(5) - 2
		size := r.height/2 + rand.IntN(r.height/6+1)
		angle := rand.IntN(31) - 15

		canvas.Text(x, y, string(g),
			fmt.Sprintf("font-family:monospace;font-weight:bold;font-size:%dpx;fill:%s", size, randomColor()),
			fmt.Sprintf(`transform="rotate(%d %d %d)"`, angle, x, y),
		)
	}

	for range noiseLines {
		canvas.Line(rand.IntN(r.width), rand.IntN(r.height), rand.IntN(r.width), rand.IntN(r.height),
			"stroke:"+randomColor()+";stroke-width:1;stroke-opacity:0.7")
	}

	canvas.End()

	return nil
}

func randomColor() string {
	return palette[rand.IntN(len(palette))]
}
