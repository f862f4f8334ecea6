package render

import (
	_ "embed"
	"html/template"
	"io"
	"strconv"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/DoyleJ11/ti-helper/internal/stats"
	"github.com/DoyleJ11/ti-helper/internal/store"
)

//go:embed static/app.js
var appJS string

// IndexPage is the data behind the dashboard shell.
type IndexPage struct {
	Leagues       []store.League
	DefaultLeague int64
	Heroes        []store.Hero
}

type leagueOption struct {
	ID       string
	Label    string
	Selected bool
}

type tab struct {
	Context string
	Label   string
	Active  bool
}

var titleCase = cases.Title(language.English)

var indexTmpl = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Dota TI Helper</title>
</head>
<body>
<header><h1>Dota TI Helper</h1></header>
<section class="selection-grid">
  <select id="leagueSelect">
    <option value="">Select a league...</option>
    {{- range .Leagues }}
    <option value="{{ .ID }}"{{ if .Selected }} selected{{ end }}>{{ .Label }}</option>
    {{- end }}
  </select>
  <select id="teamSelect" disabled><option value="">Select...</option></select>
  <select id="playerSelect" disabled><option value="">Select a player...</option></select>
  <select id="heroSelect" disabled><option value="">Select...</option></select>
</section>
<button id="toggleAdvancedMode">🔧 Toggle Advanced Analysis Mode</button>
<p id="modeInstructions" class="hidden">Pick lane partners and opponents to narrow the matchup.</p>
<section id="advancedSelectionGrid" class="hidden">
  {{- range $slot := .Slots }}
  <select id="{{ $slot.ID }}" data-slot="{{ $slot.Slot }}" disabled>
    <option value="">{{ $slot.Placeholder }}</option>
    {{- if eq $slot.Slot "side" }}
    <option value="radiant">Radiant</option>
    <option value="dire">Dire</option>
    {{- else }}
    {{- range $.Heroes }}
    <option value="{{ .ID }}">{{ .Name }}</option>
    {{- end }}
    {{- end }}
  </select>
  {{- end }}
</section>
<nav class="context-tabs">
  {{- range .Tabs }}
  <button class="context-tab{{ if .Active }} active{{ end }}" data-context="{{ .Context }}">{{ .Label }}</button>
  {{- end }}
  <span id="current-context">{{ .ActiveLabel }}</span>
</nav>
<section id="statsSection" class="hidden"><div id="statsContent"></div></section>
<script>{{ .Script }}</script>
</body>
</html>
`))

type slot struct {
	ID          string
	Slot        string
	Placeholder string
}

var slots = []slot{
	{ID: "friendlyHeroSelect", Slot: "friendly", Placeholder: "Friendly hero..."},
	{ID: "enemyHero1Select", Slot: "enemy1", Placeholder: "Enemy hero 1..."},
	{ID: "enemyHero2Select", Slot: "enemy2", Placeholder: "Enemy hero 2..."},
	{ID: "sideSelect", Slot: "side", Placeholder: "Any side"},
}

// Index writes the dashboard shell. The most recent league is preselected so
// the browser can replay it as the first selection.
func Index(w io.Writer, page IndexPage) error {
	leagues := make([]leagueOption, 0, len(page.Leagues))
	for _, l := range page.Leagues {
		label := l.Name
		if l.Tier != "" {
			label += " (" + titleCase.String(l.Tier) + ")"
		}
		leagues = append(leagues, leagueOption{
			ID:       strconv.FormatInt(l.ID, 10),
			Label:    label,
			Selected: l.ID == page.DefaultLeague,
		})
	}

	tabs := make([]tab, 0, len(stats.Contexts))
	for _, c := range stats.Contexts {
		tabs = append(tabs, tab{Context: string(c), Label: c.Label(), Active: c == stats.ContextTournament})
	}

	return indexTmpl.Execute(w, struct {
		Leagues     []leagueOption
		Heroes      []store.Hero
		Slots       []slot
		Tabs        []tab
		ActiveLabel string
		Script      template.JS
	}{
		Leagues:     leagues,
		Heroes:      page.Heroes,
		Slots:       slots,
		Tabs:        tabs,
		ActiveLabel: stats.ContextTournament.Label(),
		Script:      template.JS(appJS),
	})
}
