package chat

import "strings"

type ActionKind int

const (
	ActionUnknown ActionKind = iota
	ActionBrowse
	ActionNextPage
	ActionPrevPage
	ActionSelect
	ActionBuy
	ActionView
	ActionReply
	ActionCancel
	ActionContact
)

// Action is a decoded callback payload. Arg carries the item id or ticket
// handle for the kinds that need one.
type Action struct {
	Kind ActionKind
	Arg  string
	Raw  string
}

var actionTags = map[ActionKind]string{
	ActionBrowse:   "browse",
	ActionNextPage: "page:next",
	ActionPrevPage: "page:prev",
	ActionSelect:   "select:",
	ActionBuy:      "buy:",
	ActionView:     "view:",
	ActionReply:    "reply:",
	ActionCancel:   "cancel",
	ActionContact:  "contact",
}

var argKinds = []ActionKind{ActionSelect, ActionBuy, ActionView, ActionReply}

func Browse() Action          { return Action{Kind: ActionBrowse} }
func NextPage() Action        { return Action{Kind: ActionNextPage} }
func PrevPage() Action        { return Action{Kind: ActionPrevPage} }
func Select(id string) Action { return Action{Kind: ActionSelect, Arg: id} }
func Buy(id string) Action    { return Action{Kind: ActionBuy, Arg: id} }
func View(h string) Action    { return Action{Kind: ActionView, Arg: h} }
func Reply(h string) Action   { return Action{Kind: ActionReply, Arg: h} }
func Cancel() Action          { return Action{Kind: ActionCancel} }
func Contact() Action         { return Action{Kind: ActionContact} }

// MaxCallbackData is the platform limit on encoded callback data, in bytes.
const MaxCallbackData = 64

// Fits reports whether the encoded action is within MaxCallbackData.
func (a Action) Fits() bool {
	return len(a.Encode()) <= MaxCallbackData
}

// Encode renders the action as callback data.
func (a Action) Encode() string {
	tag, ok := actionTags[a.Kind]
	if !ok {
		return a.Raw
	}
	for _, k := range argKinds {
		if k == a.Kind {
			return tag + a.Arg
		}
	}
	return tag
}

// ParseAction decodes callback data. Anything unrecognised, including an
// argument-bearing tag with an empty argument, is ActionUnknown.
func ParseAction(data string) Action {
	for _, k := range argKinds {
		tag := actionTags[k]
		if strings.HasPrefix(data, tag) {
			arg := strings.TrimSpace(strings.TrimPrefix(data, tag))
			if arg == "" {
				return Action{Kind: ActionUnknown, Raw: data}
			}
			return Action{Kind: k, Arg: arg, Raw: data}
		}
	}
	for k, tag := range actionTags {
		if data == tag {
			return Action{Kind: k, Raw: data}
		}
	}
	return Action{Kind: ActionUnknown, Raw: data}
}
