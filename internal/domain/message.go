package domain

// Message kinds. The server treats Content as opaque in both cases; the
// kind only tells clients how to render it (plain text vs. a data URI).
const (
	MessageText  = "text"
	MessageAudio = "audio"
)

// ReactionKinds is the fixed set of reaction counters every message
// carries. Counters start at zero and only ever increment.
var ReactionKinds = []string{"good", "love", "haha", "fire", "bad"}

// Message is one entry in a room's append-only history.
type Message struct {
	MessageID string         `json:"messageId"`
	Username  string         `json:"username"`
	Kind      string         `json:"type"`
	Content   string         `json:"content"`
	Reactions map[string]int `json:"reactions"`
}

// NewReactions returns a reaction map with every known kind at zero.
func NewReactions() map[string]int {
	reactions := make(map[string]int, len(ReactionKinds))
	for _, kind := range ReactionKinds {
		reactions[kind] = 0
	}
	return reactions
}

// ValidReactionKind reports whether kind is one of the predeclared kinds.
func ValidReactionKind(kind string) bool {
	for _, k := range ReactionKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// ValidMessageKind reports whether kind is a known message kind.
func ValidMessageKind(kind string) bool {
	return kind == MessageText || kind == MessageAudio
}
