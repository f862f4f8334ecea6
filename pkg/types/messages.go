package types

// Client -> Server
// ChooseLeague | ChooseTeam | ChoosePlayer | ChooseHero:
//   id: string ("" clears the dropdown)
//
// ToggleAdvanced: {}
//
// ChooseContext:
//   context: "tournament" | "patch" | "all_time"
//
// SetAdvancedHero:
//   slot: "friendly" | "enemy1" | "enemy2" | "side"
//   id: string (hero id, or "radiant" | "dire" for side)

// Server -> Client
// StateSnapshot:
//   version: number
//   view: View (see snapshot.go)
//
// Error:
//   error: string

const (
	MsgChooseLeague    = "ChooseLeague"
	MsgChooseTeam      = "ChooseTeam"
	MsgChoosePlayer    = "ChoosePlayer"
	MsgChooseHero      = "ChooseHero"
	MsgToggleAdvanced  = "ToggleAdvanced"
	MsgChooseContext   = "ChooseContext"
	MsgSetAdvancedHero = "SetAdvancedHero"

	MsgStateSnapshot = "StateSnapshot"
	MsgError         = "Error"
)
