package stats

// Section names one aggregation block of a stats bundle.
type Section string

const (
	SectionPlayerHero    Section = "player_hero"
	SectionHeroBaseline  Section = "hero_baseline"
	SectionPlayerOverall Section = "player_overall"
)

// Sections lists the known sections in render order.
var Sections = []Section{SectionPlayerHero, SectionHeroBaseline, SectionPlayerOverall}

// Metric names a tracked per-match measurement.
type Metric string

const (
	MetricLastHits Metric = "last_hits"
	MetricKills    Metric = "kills"
)

// Metrics lists the tracked metrics in render order.
var Metrics = []Metric{MetricLastHits, MetricKills}

// Summary is the distribution of one metric over a set of matches.
type Summary struct {
	Mean  float64 `json:"mean"`
	Std   float64 `json:"std"`
	Count int     `json:"count"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Q25   float64 `json:"q25"`
	Q75   float64 `json:"q75"`
}

// Bundle maps each populated section to its metric summaries. A bundle is
// always produced and rendered whole.
type Bundle map[Section]map[Metric]Summary

// Empty reports whether the bundle carries no summaries at all.
func (b Bundle) Empty() bool {
	for _, metrics := range b {
		if len(metrics) > 0 {
			return false
		}
	}
	return true
}
