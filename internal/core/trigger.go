package core

import (
	"fmt"
	"net/url"
)

// TriggerScheme is the URI scheme written to NFC tags and shortcuts.
const TriggerScheme = "piled"

// triggers maps a trigger URI host to the action it fires.
var triggers = map[string]Action{
	"room_presence": {Kind: ActionSuspend},
}

// TriggerAction resolves a trigger URI such as "piled://room_presence"
// to the action it stands for.
func TriggerAction(uri string) (Action, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return Action{}, fmt.Errorf("trigger %q: %w", uri, err)
	}
	if u.Scheme != TriggerScheme {
		return Action{}, fmt.Errorf("trigger %q: scheme must be %s://", uri, TriggerScheme)
	}
	a, ok := triggers[u.Host]
	if !ok {
		return Action{}, fmt.Errorf("trigger %q: unknown target %q", uri, u.Host)
	}
	return a, nil
}
