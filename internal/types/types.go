package types

import ptypes "github.com/DoyleJ11/ti-helper/pkg/types"

type ClientMessage struct {
	Type    string `json:"type"`
	ID      string `json:"id,omitempty"`
	Context string `json:"context,omitempty"`
	Slot    string `json:"slot,omitempty"`
}

type ServerMessage struct {
	Type    string       `json:"type"` // "StateSnapshot" | "Error"
	Version int          `json:"version,omitempty"`
	View    *ptypes.View `json:"view,omitempty"`
	Error   string       `json:"error,omitempty"`
}
