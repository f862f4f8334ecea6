// Package render turns stats bundles and option lists into the HTML fragments
// the dashboard regions display.
package render

import (
	"bytes"
	"html/template"
	"strconv"

	"github.com/DoyleJ11/ti-helper/internal/stats"
	"github.com/DoyleJ11/ti-helper/pkg/types"
)

type sectionMeta struct {
	Title    string
	Priority string
}

var sectionMetas = map[stats.Section]sectionMeta{
	stats.SectionPlayerHero:    {Title: "🎯 Player + Hero Performance", Priority: "primary"},
	stats.SectionHeroBaseline:  {Title: "⚔️ Hero Baseline Performance", Priority: "secondary"},
	stats.SectionPlayerOverall: {Title: "👤 Player Overall Performance", Priority: "tertiary"},
}

var metricNames = map[stats.Metric]string{
	stats.MetricLastHits: "Last Hits at 5 min",
	stats.MetricKills:    "Kills",
}

type card struct {
	Name     string
	Priority string
	Summary  stats.Summary
}

type section struct {
	Title    string
	Priority string
	Cards    []card
}

var funcs = template.FuncMap{
	// fixed1 matches a one-decimal display of averages and quartiles.
	"fixed1": func(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) },
	// number prints the shortest exact form, 3 stays "3".
	"number": func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) },
}

var tmpl = template.Must(template.New("render").Funcs(funcs).Parse(`
{{- define "bundle" -}}
<div class="compact-stats-container">
{{- range . }}
<div class="stats-category {{ .Priority }}">
<h3>{{ .Title }}</h3>
<div class="compact-stats-grid">
{{- range .Cards }}
<div class="stat-card {{ .Priority }}">
<h4>{{ .Name }}</h4>
<div class="stat-value">{{ fixed1 .Summary.Mean }}</div>
<div class="stat-label">±{{ fixed1 .Summary.Std }} ({{ .Summary.Count }} games)</div>
<div class="stat-range">Range: {{ number .Summary.Min }}-{{ number .Summary.Max }}</div>
<div class="stat-quartiles">Q1: {{ fixed1 .Summary.Q25 }} | Q3: {{ fixed1 .Summary.Q75 }}</div>
</div>
{{- end }}
</div>
</div>
{{- end }}
</div>
{{- end -}}

{{- define "message" -}}<div class="{{ .Class }}">{{ .Text }}</div>{{- end -}}

{{- define "options" -}}
<option value="">{{ .Placeholder }}</option>
{{- range .Options }}
<option value="{{ .ID }}">{{ .Label }}</option>
{{- end }}
{{- end -}}
`))

// Bundle renders the stats grid for a bundle. Unknown sections and metrics are
// ignored; an empty bundle renders the no-data placeholder.
func Bundle(b stats.Bundle, ctx stats.Context) string {
	if b.Empty() {
		return NoData(ctx)
	}
	var sections []section
	for _, sec := range stats.Sections {
		metrics := b[sec]
		if len(metrics) == 0 {
			continue
		}
		meta := sectionMetas[sec]
		s := section{Title: meta.Title, Priority: meta.Priority}
		for _, m := range stats.Metrics {
			sum, ok := metrics[m]
			if !ok {
				continue
			}
			s.Cards = append(s.Cards, card{Name: metricNames[m], Priority: meta.Priority, Summary: sum})
		}
		sections = append(sections, s)
	}
	if len(sections) == 0 {
		return NoData(ctx)
	}
	return execute("bundle", sections)
}

func NoData(ctx stats.Context) string {
	return message("data-message", "No data available for "+string(ctx)+" context")
}

func Error(text string) string {
	return message("error-message", text)
}

func Loading(text string) string {
	return message("loading-message", text+"...")
}

func message(class, text string) string {
	return execute("message", struct{ Class, Text string }{class, text})
}

// Options renders a <option> list fragment with a leading empty placeholder.
func Options(opts []types.Option, placeholder string) string {
	return execute("options", struct {
		Placeholder string
		Options     []types.Option
	}{placeholder, opts})
}

func execute(name string, data any) string {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		// Templates are static and data is plain values; this only fires on programmer error.
		panic(err)
	}
	return buf.String()
}
