package keymap

import (
	"strings"

	"charm.land/bubbles/v2/key"

	"github.com/andyrewlee/tprompt/internal/config"
)

// Action identifies a configurable keybinding. Actions that map onto a
// playback command share its name.
type Action string

const (
	ActionStart      Action = "start-countdown"
	ActionToggle     Action = "toggle-play"
	ActionCycleSpeed Action = "cycle-speed"
	ActionRewind     Action = "rewind"
	ActionScrollUp   Action = "scroll-up"
	ActionScrollDown Action = "scroll-down"

	ActionStop        Action = "stop"
	ActionFontSmaller Action = "font-smaller"
	ActionFontLarger  Action = "font-larger"
	ActionNarrower    Action = "narrower"
	ActionWider       Action = "wider"
	ActionPaste       Action = "paste"
	ActionGuide       Action = "guide"
	ActionQuit        Action = "quit"
)

type bindingDef struct {
	action Action
	keys   []string
	desc   string
}

// KeyMap defines all keybindings for the overlay.
type KeyMap struct {
	Start      key.Binding
	Toggle     key.Binding
	CycleSpeed key.Binding
	Rewind     key.Binding
	ScrollUp   key.Binding
	ScrollDown key.Binding

	Stop        key.Binding
	FontSmaller key.Binding
	FontLarger  key.Binding
	Narrower    key.Binding
	Wider       key.Binding
	Paste       key.Binding
	Guide       key.Binding
	Quit        key.Binding
}

var defaults = []bindingDef{
	{action: ActionStart, keys: []string{"enter"}, desc: "start"},
	{action: ActionToggle, keys: []string{"space"}, desc: "play/pause"},
	{action: ActionCycleSpeed, keys: []string{"s"}, desc: "speed"},
	{action: ActionRewind, keys: []string{"r"}, desc: "rewind"},
	{action: ActionScrollUp, keys: []string{"up", "k"}, desc: "up"},
	{action: ActionScrollDown, keys: []string{"down", "j"}, desc: "down"},
	{action: ActionStop, keys: []string{"esc"}, desc: "stop"},
	{action: ActionFontSmaller, keys: []string{"["}, desc: "smaller"},
	{action: ActionFontLarger, keys: []string{"]"}, desc: "larger"},
	{action: ActionNarrower, keys: []string{"-"}, desc: "narrower"},
	{action: ActionWider, keys: []string{"="}, desc: "wider"},
	{action: ActionPaste, keys: []string{"p"}, desc: "paste"},
	{action: ActionGuide, keys: []string{"?"}, desc: "keys"},
	{action: ActionQuit, keys: []string{"q", "ctrl+c"}, desc: "quit"},
}

// New builds a keymap from defaults, applying any user overrides.
func New(cfg config.KeyMapConfig) KeyMap {
	b := make(map[Action]key.Binding, len(defaults))
	for _, def := range defaults {
		b[def.action] = bindingFromDef(cfg, def)
	}
	return KeyMap{
		Start:       b[ActionStart],
		Toggle:      b[ActionToggle],
		CycleSpeed:  b[ActionCycleSpeed],
		Rewind:      b[ActionRewind],
		ScrollUp:    b[ActionScrollUp],
		ScrollDown:  b[ActionScrollDown],
		Stop:        b[ActionStop],
		FontSmaller: b[ActionFontSmaller],
		FontLarger:  b[ActionFontLarger],
		Narrower:    b[ActionNarrower],
		Wider:       b[ActionWider],
		Paste:       b[ActionPaste],
		Guide:       b[ActionGuide],
		Quit:        b[ActionQuit],
	}
}

func bindingFromDef(cfg config.KeyMapConfig, def bindingDef) key.Binding {
	keys, ok := cfg.BindingFor(string(def.action))
	if !ok || len(keys) == 0 {
		keys = def.keys
	}
	helpKey := strings.Join(keys, "/")
	return key.NewBinding(
		key.WithKeys(keys...),
		key.WithHelp(helpKey, def.desc),
	)
}

// PrimaryKey returns the first key in the binding, if present.
func PrimaryKey(binding key.Binding) string {
	keys := binding.Keys()
	if len(keys) == 0 {
		return ""
	}
	return keys[0]
}

// BindingHint returns a single key hint for a binding, falling back to help text.
func BindingHint(binding key.Binding) string {
	key := PrimaryKey(binding)
	if key == "" {
		return binding.Help().Key
	}
	return key
}

// PairHint joins two bindings with a slash using their primary keys.
func PairHint(a, b key.Binding) string {
	left := BindingHint(a)
	right := BindingHint(b)
	if left == "" {
		return right
	}
	if right == "" {
		return left
	}
	return left + "/" + right
}

// ActionInfo describes a configurable action for UI display.
type ActionInfo struct {
	Action Action
	Desc   string
	Group  string
}

// ActionInfos returns the ordered list of actions for the keymap guide.
func ActionInfos() []ActionInfo {
	return []ActionInfo{
		{Action: ActionStart, Desc: "Start countdown", Group: "Playback"},
		{Action: ActionToggle, Desc: "Play / pause", Group: "Playback"},
		{Action: ActionCycleSpeed, Desc: "Cycle speed", Group: "Playback"},
		{Action: ActionStop, Desc: "Stop", Group: "Playback"},
		{Action: ActionRewind, Desc: "Rewind a third", Group: "Position"},
		{Action: ActionScrollUp, Desc: "Step up", Group: "Position"},
		{Action: ActionScrollDown, Desc: "Step down", Group: "Position"},
		{Action: ActionFontSmaller, Desc: "Smaller text", Group: "Display"},
		{Action: ActionFontLarger, Desc: "Larger text", Group: "Display"},
		{Action: ActionNarrower, Desc: "Narrower column", Group: "Display"},
		{Action: ActionWider, Desc: "Wider column", Group: "Display"},
		{Action: ActionPaste, Desc: "Load from clipboard", Group: "Script"},
		{Action: ActionGuide, Desc: "Toggle this guide", Group: "Global"},
		{Action: ActionQuit, Desc: "Quit", Group: "Global"},
	}
}

// BindingForAction returns the binding for the given action.
func BindingForAction(km KeyMap, action Action) key.Binding {
	switch action {
	case ActionStart:
		return km.Start
	case ActionToggle:
		return km.Toggle
	case ActionCycleSpeed:
		return km.CycleSpeed
	case ActionRewind:
		return km.Rewind
	case ActionScrollUp:
		return km.ScrollUp
	case ActionScrollDown:
		return km.ScrollDown
	case ActionStop:
		return km.Stop
	case ActionFontSmaller:
		return km.FontSmaller
	case ActionFontLarger:
		return km.FontLarger
	case ActionNarrower:
		return km.Narrower
	case ActionWider:
		return km.Wider
	case ActionPaste:
		return km.Paste
	case ActionGuide:
		return km.Guide
	case ActionQuit:
		return km.Quit
	default:
		return key.Binding{}
	}
}

// Match returns the action bound to keyStr, checking actions in guide order.
func Match(km KeyMap, keyStr string) (Action, bool) {
	for _, info := range ActionInfos() {
		for _, k := range BindingForAction(km, info.Action).Keys() {
			if k == keyStr {
				return info.Action, true
			}
		}
	}
	return "", false
}
