package report

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"kenoanalyzer/models"
	"kenoanalyzer/service"

	log "github.com/sirupsen/logrus"
)

const preamble = `\documentclass{article}
\usepackage{booktabs}
\usepackage{geometry}
\usepackage{amsmath}
\usepackage{graphicx}
\usepackage{supertabular}
\usepackage{multicol}
\geometry{margin=0in}

\begin{document}
\vspace{10cm}

\twocolumn
\centering
\tablehead{Number & Relative Frequency \\}
\begin{supertabular}{cc}
\toprule
\midrule
`

// LaTeXReport renders the frequency ranking, the uniformity test and the
// simulated payouts as a standalone LaTeX document
type LaTeXReport struct {
	payouts   *service.PayoutTable
	chartPath string
}

// NewLaTeXReport creates a report. chartPath is referenced with
// \includegraphics when non-empty.
func NewLaTeXReport(payouts *service.PayoutTable, chartPath string) *LaTeXReport {
	return &LaTeXReport{
		payouts:   payouts,
		chartPath: chartPath,
	}
}

// Render builds the document for a completed run
func (r *LaTeXReport) Render(run *models.AnalysisRun) (string, error) {
	if run == nil || run.Statistics == nil {
		return "", fmt.Errorf("analysis run has no frequency statistics")
	}
	stats := run.Statistics

	var b strings.Builder
	b.WriteString(preamble)

	for _, rf := range stats.Ranked {
		fmt.Fprintf(&b, "%d & %s \\\\\n", rf.Number, formatFloat(models.RoundFrequency(rf.RelativeFrequency)))
	}

	b.WriteString("\\bottomrule\n")
	fmt.Fprintf(&b, "\\multicolumn{2}{l}{D = %d; \\, N = %d;}  \\\\\n", stats.TotalRecords, models.MaxNumber)
	fmt.Fprintf(&b, "\\multicolumn{2}{l}{k = %d} \\\\\n", models.DrawSize)
	fmt.Fprintf(&b, "\\multicolumn{2}{l}{$\\chi^2 = %s$} \\\\\n", formatFloat(round(stats.ChiSquared, 4)))
	fmt.Fprintf(&b, "\\multicolumn{2}{l}{\\text{p - value} = %s} \\\\\n", formatFloat(round(stats.PValue, 4)))
	b.WriteString("\\end{supertabular}\n")

	if run.Simulation != nil {
		if err := r.writeSimulation(&b, run.Simulation); err != nil {
			return "", err
		}
	}

	if r.chartPath != "" {
		b.WriteString("\n\\onecolumn\n")
		fmt.Fprintf(&b, "\\includegraphics[width=\\textwidth]{%s}\n", r.chartPath)
	}

	b.WriteString("\\end{document}\n")
	return b.String(), nil
}

func (r *LaTeXReport) writeSimulation(b *strings.Builder, sim *models.SimulationResult) error {
	b.WriteString("\n\\vspace{1cm}\n")
	b.WriteString("\\begin{tabular}{cccc}\n")
	b.WriteString("\\toprule\n")
	b.WriteString("Picks & Total Prize & Mean Prize & Expected Prize \\\\\n")
	b.WriteString("\\midrule\n")

	for _, picks := range sim.PickCounts() {
		expectation, err := service.ExpectedPayout(r.payouts, picks)
		if err != nil {
			return fmt.Errorf("failed to compute expected payout for %d picks: %w", picks, err)
		}
		fmt.Fprintf(b, "%d & %d & %s & %s \\\\\n",
			picks,
			sim.Totals[picks],
			formatFloat(round(sim.MeanPrize(picks), 4)),
			formatFloat(round(expectation.Mean, 4)),
		)
	}

	b.WriteString("\\bottomrule\n")
	fmt.Fprintf(b, "\\multicolumn{4}{l}{T = %d trials per pick count} \\\\\n", sim.TrialsPerPick)
	b.WriteString("\\end{tabular}\n")
	return nil
}

// WriteFile renders the run and writes it to path
func (r *LaTeXReport) WriteFile(path string, run *models.AnalysisRun) error {
	doc, err := r.Render(run)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		return fmt.Errorf("failed to write report %s: %w", path, err)
	}

	log.WithFields(log.Fields{
		"path":  path,
		"bytes": len(doc),
	}).Info("Wrote LaTeX report")
	return nil
}

func round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
