package report

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"time"

	"kenoanalyzer/models"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	log "github.com/sirupsen/logrus"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
)

// ChartStyle defines the geometry of the frequency chart
type ChartStyle struct {
	Width   int
	Height  int
	Padding int
	BarGap  float64
}

// FrequencyChart draws occurrence counts per number as a bar chart with the
// expected count under uniformity marked as a horizontal line
type FrequencyChart struct {
	style ChartStyle
}

// NewFrequencyChart creates a chart generator with the default style
func NewFrequencyChart() *FrequencyChart {
	return &FrequencyChart{
		style: ChartStyle{
			Width:   1200,
			Height:  480,
			Padding: 40,
			BarGap:  2,
		},
	}
}

// Render returns the chart as PNG bytes
func (c *FrequencyChart) Render(table *models.FrequencyTable) ([]byte, error) {
	if table == nil || table.TotalRecords == 0 {
		return nil, fmt.Errorf("cannot chart an empty frequency table")
	}

	start := time.Now()
	defer func() {
		log.WithField("duration_ms", time.Since(start).Milliseconds()).
			Debug("Frequency chart generation completed")
	}()

	dc := gg.NewContext(c.style.Width, c.style.Height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	face, err := loadFont(gomono.TTF, 9)
	if err != nil {
		return nil, fmt.Errorf("failed to load font: %w", err)
	}
	dc.SetFontFace(face)

	pad := float64(c.style.Padding)
	plotW := float64(c.style.Width) - 2*pad
	plotH := float64(c.style.Height) - 2*pad
	barW := plotW / models.MaxNumber

	expected := float64(table.TotalRecords) * models.DrawSize / models.MaxNumber
	maxCount := expected
	for n := models.MinNumber; n <= models.MaxNumber; n++ {
		if v := float64(table.Count(n)); v > maxCount {
			maxCount = v
		}
	}
	scale := plotH / (maxCount * 1.1)
	baseline := pad + plotH

	// Axes
	dc.SetRGB(0.2, 0.2, 0.2)
	dc.SetLineWidth(1)
	dc.DrawLine(pad, pad, pad, baseline)
	dc.DrawLine(pad, baseline, pad+plotW, baseline)
	dc.Stroke()

	for n := models.MinNumber; n <= models.MaxNumber; n++ {
		h := float64(table.Count(n)) * scale
		x := pad + float64(n-1)*barW

		if float64(table.Count(n)) >= expected {
			dc.SetRGB(0.25, 0.45, 0.75)
		} else {
			dc.SetRGB(0.55, 0.7, 0.9)
		}
		dc.DrawRectangle(x+c.style.BarGap/2, baseline-h, barW-c.style.BarGap, h)
		dc.Fill()

		if n == 1 || n%5 == 0 {
			dc.SetRGB(0.2, 0.2, 0.2)
			dc.DrawStringAnchored(strconv.Itoa(n), x+barW/2, baseline+12, 0.5, 0.5)
		}
	}

	// Expected count line
	y := baseline - expected*scale
	dc.SetRGB(0.85, 0.2, 0.2)
	dc.SetDash(6, 4)
	dc.DrawLine(pad, y, pad+plotW, y)
	dc.Stroke()
	dc.SetDash()
	dc.DrawStringAnchored(fmt.Sprintf("expected %.1f", expected), pad+plotW, y-8, 1, 0.5)

	dc.SetRGB(0.2, 0.2, 0.2)
	dc.DrawStringAnchored(fmt.Sprintf("D = %d", table.TotalRecords), pad, pad/2, 0, 0.5)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile renders the chart and writes it to path
func (c *FrequencyChart) WriteFile(path string, table *models.FrequencyTable) error {
	png, err := c.Render(table)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, png, 0o644); err != nil {
		return fmt.Errorf("failed to write chart %s: %w", path, err)
	}

	log.WithFields(log.Fields{
		"path":  path,
		"bytes": len(png),
	}).Info("Wrote frequency chart")
	return nil
}

func loadFont(fontData []byte, size float64) (font.Face, error) {
	f, err := truetype.Parse(fontData)
	if err != nil {
		return nil, err
	}
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}
