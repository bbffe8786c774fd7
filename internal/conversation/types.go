package conversation

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single turn. It is never edited once appended.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// History is the ordered list of turns of one session.
type History []Message

// Append returns a new History with msg at the end. The receiver is left untouched,
// so snapshots handed out earlier never observe the new turn.
func (h History) Append(msg Message) History {
	out := make(History, len(h), len(h)+1)
	copy(out, h)
	return append(out, msg)
}

// Clone returns a copy that does not share storage with h. A nil history clones to an
// empty, non-nil one so it encodes as [] on the wire.
func (h History) Clone() History {
	out := make(History, len(h))
	copy(out, h)
	return out
}

// Last returns the most recent turn.
func (h History) Last() (Message, bool) {
	if len(h) == 0 {
		return Message{}, false
	}
	return h[len(h)-1], true
}

type RequestState int

const (
	Idle RequestState = iota
	Pending
	Failed
)

func (r RequestState) String() string {
	switch r {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

type ConnectionStatus int

const (
	Checking ConnectionStatus = iota
	Connected
	Error
)

func (c ConnectionStatus) String() string {
	switch c {
	case Checking:
		return "checking"
	case Connected:
		return "connected"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}
