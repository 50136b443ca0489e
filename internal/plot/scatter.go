// Package plot renders clustered shot profiles as SVG scatter plots.
package plot

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	svg "github.com/ajstarks/svgo"

	"github.com/blackwell-systems/shotprofile/internal/analyzer"
	"github.com/blackwell-systems/shotprofile/internal/logging"
)

// palette is the tab10 cycle; cluster labels index into it.
var palette = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
}

const (
	defaultWidth  = 900
	defaultHeight = 640
	margin        = 80
)

// SVGRenderer writes one SVG file per player into Dir.
type SVGRenderer struct {
	Dir    string
	Width  int
	Height int
}

// NewSVGRenderer creates a renderer writing into dir.
func NewSVGRenderer(dir string) *SVGRenderer {
	return &SVGRenderer{Dir: dir, Width: defaultWidth, Height: defaultHeight}
}

// PathFor returns the file a player's plot is written to.
func (r *SVGRenderer) PathFor(player string) string {
	return filepath.Join(r.Dir, Slug(player)+".svg")
}

// Render writes the profile scatter plot, replacing any earlier plot.
func (r *SVGRenderer) Render(ctx context.Context, p *analyzer.Profile) error {
	if err := os.MkdirAll(r.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create plot directory: %w", err)
	}

	path := r.PathFor(p.Player)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create plot file: %w", err)
	}

	WriteScatter(f, p, r.Width, r.Height)

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write plot file: %w", err)
	}

	logging.Ctx(ctx, "plot").Info().Str("player", p.Player).Str("path", path).Msg("Profile plot written")
	return nil
}

// vmap maps one range into another
func vmap(value, low1, high1, low2, high2 float64) float64 {
	return low2 + (high2-low2)*(value-low1)/(high1-low1)
}

// span returns the padded range of values, widened when all values coincide.
func span(values []float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if len(values) == 0 {
		return -1, 1
	}
	if hi-lo < 1e-9 {
		return lo - 1, hi + 1
	}
	pad := (hi - lo) * 0.08
	return lo - pad, hi + pad
}

// WriteScatter draws the projected zones colored by cluster, labels each
// point with its zone, and rings the members of the best cluster.
func WriteScatter(w io.Writer, p *analyzer.Profile, width, height int) {
	if width <= 0 {
		width = defaultWidth
	}
	if height <= 0 {
		height = defaultHeight
	}
	fw, fh := float64(width), float64(height)

	xs := make([]float64, len(p.Assignments))
	ys := make([]float64, len(p.Assignments))
	for i, a := range p.Assignments {
		xs[i], ys[i] = a.PCA1, a.PCA2
	}
	xlo, xhi := span(xs)
	ylo, yhi := span(ys)

	canvas := svg.New(w)
	canvas.Start(width, height)
	canvas.Rect(0, 0, width, height, "fill:white;stroke:black;stroke-width:2")
	canvas.Gstyle("font-family:Calibri,sans-serif;font-size:14px")

	// Axes
	canvas.Line(margin, height-margin, width-margin, height-margin, "stroke:gray")
	canvas.Line(margin, margin, margin, height-margin, "stroke:gray")
	canvas.Text(width/2, height-margin/3, "pca1", "text-anchor:middle;fill:gray")
	canvas.Text(margin/3, height/2, "pca2", "text-anchor:middle;fill:gray")

	for _, a := range p.Assignments {
		x := int(vmap(a.PCA1, xlo, xhi, margin, fw-margin))
		y := int(vmap(a.PCA2, ylo, yhi, fh-margin, margin))
		fill := palette[((a.Cluster%len(palette))+len(palette))%len(palette)]
		canvas.Circle(x, y, 8, "fill-opacity:0.8;fill:"+fill)
		if a.Cluster == p.BestCluster {
			canvas.Circle(x, y, 13, "fill:none;stroke:black;stroke-width:2")
		}
		canvas.Text(x+14, y+4, fmt.Sprintf("%s (%.1f%%, %d)", a.Zone(), a.Row.Accuracy, a.Row.Attempts), "fill:dimgray;font-size:12px")
	}

	// Legend, in label order
	labels := make([]int, 0, len(p.ClusterSizes))
	for label := range p.ClusterSizes {
		labels = append(labels, label)
	}
	sort.Ints(labels)
	for i, label := range labels {
		y := margin + i*22
		fill := palette[((label%len(palette))+len(palette))%len(palette)]
		canvas.Circle(width-margin-110, y-5, 6, "fill:"+fill)
		canvas.Text(width-margin-98, y, fmt.Sprintf("cluster %d (%d)", label, p.ClusterSizes[label]))
	}

	canvas.Text(margin, margin/2, p.Player+": shot zones by cluster", "font-size:22px;fill:black")
	canvas.Text(width-margin, margin/2, fmt.Sprintf("best cluster %d, %d zones", p.BestCluster, len(p.Best)),
		"text-anchor:end;fill:gray")
	canvas.Gend()
	canvas.End()
}

// Slug turns a player name into a file name: "LeBron James" -> "lebron-james".
func Slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	s := strings.TrimSuffix(b.String(), "-")
	if s == "" {
		return "player"
	}
	return s
}
