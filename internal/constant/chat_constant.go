package constant

import "time"

const (
	ChatMessageRoleUser      = "user"
	ChatMessageRoleAssistant = "assistant"
	ChatMessageRoleSystem    = "system"

	// DefaultConversationTitle is the placeholder a new conversation starts
	// with until the first user turn derives a real title.
	DefaultConversationTitle = "New chat"

	// TitleMaxRunes caps auto-derived titles.
	TitleMaxRunes = 80

	// RenameTitleMaxChars caps explicit renames.
	RenameTitleMaxChars = 200

	// HistoryTurnWindow is how many recent turns ride along as model context.
	HistoryTurnWindow = 20

	// Transcript paging.
	TurnPageSizeDefault = 50
	TurnPageSizeMax     = 200

	// StreamTimeout bounds a single streaming exchange end to end.
	StreamTimeout = 90 * time.Second

	// StreamLockTTL must outlive StreamTimeout so a crashed instance cannot
	// leave a conversation locked forever.
	StreamLockTTL = 2 * time.Minute
)
