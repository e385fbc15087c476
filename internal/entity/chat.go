package entity

import "strings"

// ChatMode selects the conversation practice style.
type ChatMode string

const (
	ChatModeFree    ChatMode = "free"
	ChatModeVocab   ChatMode = "vocab"
	ChatModeScene   ChatMode = "scene"
	ChatModeCorrect ChatMode = "correct"
)

// ParseChatMode converts an arbitrary string into a supported mode, defaulting to free.
func ParseChatMode(s string) ChatMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "vocab":
		return ChatModeVocab
	case "scene":
		return ChatModeScene
	case "correct":
		return ChatModeCorrect
	default:
		return ChatModeFree
	}
}

// ChatTurn is one message of the practice conversation.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatReply is the assistant answer plus the practice words the user just used.
type ChatReply struct {
	Content   string   `json:"content"`
	UsedWords []string `json:"usedWords"`
}
