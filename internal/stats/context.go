package stats

import "errors"

var ErrUnknownContext = errors.New("unknown context")

// Context is the aggregation scope statistics are computed under.
type Context string

const (
	ContextTournament Context = "tournament"
	ContextPatch      Context = "patch"
	ContextAllTime    Context = "all_time"
)

// Contexts lists the known contexts in tab order.
var Contexts = []Context{ContextTournament, ContextPatch, ContextAllTime}

var contextLabels = map[Context]string{
	ContextTournament: "Tournament",
	ContextPatch:      "Patch",
	ContextAllTime:    "All Time",
}

// Known reports whether c is one of the supported contexts.
func (c Context) Known() bool {
	_, ok := contextLabels[c]
	return ok
}

// Label is the tab caption for the context.
func (c Context) Label() string {
	if l, ok := contextLabels[c]; ok {
		return l
	}
	return string(c)
}

func ParseContext(s string) (Context, error) {
	c := Context(s)
	if !c.Known() {
		return "", ErrUnknownContext
	}
	return c, nil
}
