package bot

import "strings"

// Message is an inbound chat message with the sender's identity as supplied
// by the transport
type Message struct {
	RoomID   string
	UserID   string
	UserName string
	Text     string
}

// ParseCommand splits "/vote anna" into ("vote", "anna"). A "@botname"
// suffix on the command word is dropped. ok is false when text does not
// start with prefix.
func ParseCommand(prefix, text string) (cmd, args string, ok bool) {
	text = strings.TrimSpace(text)
	if prefix == "" || !strings.HasPrefix(text, prefix) {
		return "", "", false
	}
	rest := strings.TrimPrefix(text, prefix)
	word, args, _ := strings.Cut(rest, " ")
	if at := strings.IndexByte(word, '@'); at >= 0 {
		word = word[:at]
	}
	if word == "" {
		return "", "", false
	}
	return strings.ToLower(word), strings.TrimSpace(args), true
}
