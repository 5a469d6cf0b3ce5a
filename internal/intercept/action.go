// Package intercept implements the capture-phase guard over user actions.
// The embedding shell reports every observed action to Guard.Handle before
// its own dispatch and honors the returned verdict, which makes suppression
// reliable regardless of how the shell routes events internally.
package intercept

// ActionKind is the raw channel an action arrived on. Keyboard chords and
// native clipboard events are separate channels and either can fire
// independently, so both are monitored.
type ActionKind string

const (
	ActionKeyDown     ActionKind = "keydown"
	ActionCopy        ActionKind = "copy"
	ActionCut         ActionKind = "cut"
	ActionPaste       ActionKind = "paste"
	ActionContextMenu ActionKind = "contextmenu"
	ActionSelectStart ActionKind = "selectstart"
	ActionDragStart   ActionKind = "dragstart"
	ActionDrop        ActionKind = "drop"
	ActionDragOver    ActionKind = "dragover"
)

// Surface describes the element an action targeted.
type Surface struct {
	Tag      string `json:"tag"`
	Editable bool   `json:"editable,omitempty"`
}

// TextEntry reports whether the surface is a recognized text-input surface.
// Actions inside these are the user editing their own answer and are left
// alone: no suppression, no event, no warning.
func (s Surface) TextEntry() bool {
	return s.Tag == "input" || s.Tag == "textarea" || s.Editable
}

// Action is one observed user gesture.
type Action struct {
	Kind   ActionKind `json:"kind"`
	Key    string     `json:"key,omitempty"`
	Ctrl   bool       `json:"ctrl,omitempty"`
	Meta   bool       `json:"meta,omitempty"`
	Shift  bool       `json:"shift,omitempty"`
	Target Surface    `json:"target"`
}

// chord reports whether the action carries the platform command modifier.
func (a Action) chord() bool {
	return a.Ctrl || a.Meta
}

// Verdict tells the shell what to do with the action it reported.
type Verdict struct {
	// Suppress means prevent the default behavior and stop propagation.
	Suppress bool `json:"suppress"`
}
