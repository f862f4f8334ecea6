package ingest

import (
	"fmt"
	"strconv"
)

// KnownLeague is a tournament the ingester pulls by default.
type KnownLeague struct {
	Slug string
	ID   int64
}

var KnownLeagues = []KnownLeague{
	{"ti_2025", 18324},
	{"fissure_universe_6_2025", 18433},
	{"clavision_masters_2025", 18359},
	{"esports_world_championship_2025", 18375},
	{"wallachia_5_2025", 18358},
	{"dreamleague_season_26", 18111},
	{"blast_slam_3_2025", 17418},
	{"wallachia_4_2025", 18058},
	{"esl_one_raleigh_2025", 17795},
	{"fissure_universe_4_2025", 17907},
	{"wallachia_3_2025", 17891},
	{"dreamleague_season_25", 17765},
	{"blast_slam_2_2024", 17417},
	{"fissure_playground_1_2025", 17588},
	{"esl_one_bangkok_2024", 17509},
	{"blast_slam_1_2024", 17414},
	{"dreamleague_season_24", 17272},
	{"bb_dacha_belgrade_2024", 17126},
	{"wallachia_2_2024", 17119},
	{"ti_2024", 16935},
}

// LookupLeagues resolves slugs or numeric ids against KnownLeagues. Unknown
// numeric ids are accepted as-is.
func LookupLeagues(keys []string) ([]KnownLeague, error) {
	if len(keys) == 0 {
		return KnownLeagues, nil
	}
	out := make([]KnownLeague, 0, len(keys))
	for _, k := range keys {
		l, err := lookupLeague(k)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

func lookupLeague(key string) (KnownLeague, error) {
	for _, l := range KnownLeagues {
		if l.Slug == key || strconv.FormatInt(l.ID, 10) == key {
			return l, nil
		}
	}
	id, err := strconv.ParseInt(key, 10, 64)
	if err != nil || id <= 0 {
		return KnownLeague{}, fmt.Errorf("unknown league %q", key)
	}
	return KnownLeague{Slug: key, ID: id}, nil
}
