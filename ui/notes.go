package ui

import (
	"html/template"

	"chdash/internal/dashboard"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// chartNotes are short markdown captions shown under each chart.
var chartNotes = map[string]string{
	dashboard.ChartGender: "Share of subjects in each gender with a **10-year CHD** event.",
	dashboard.ChartCaseAges: "Ages of subjects *with* a 10-year CHD event only. " +
		"Subjects without an event are not drawn.",
	dashboard.ChartEducation: "CHD rate per education level, ordered from *Some High School* to *College*. " +
		"Darker bars mark the levels with the highest rate.",
	dashboard.ChartSmokingStatus: "Current smokers against non-smokers.",
	dashboard.ChartSmokingIntensity: "Smokers grouped by cigarettes per day: " +
		"`1-9`, `10-19` and `20+`. Non-smokers and missing counts are left out.",
	dashboard.ChartBMI: "Body mass index for subjects without and with a CHD event. " +
		"Whiskers reach 1.5 × IQR; points beyond are outliers.",
	dashboard.ChartCholesterol: "Total cholesterol (mg/dL) for subjects without and with a CHD event.",
	dashboard.ChartBloodPressure: "CHD rate per blood pressure category, in increasing severity.",
}

// renderNotes converts every chart note to HTML once at startup
func renderNotes() map[string]template.HTML {
	notes := make(map[string]template.HTML, len(chartNotes))
	for name, md := range chartNotes {
		notes[name] = renderMarkdown(md)
	}
	return notes
}

func renderMarkdown(md string) template.HTML {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.SkipHTML})
	return template.HTML(markdown.ToHTML([]byte(md), p, renderer))
}
