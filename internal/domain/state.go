package domain

// ConversationState is the ordered, append-only message log of one session
// plus the turn-scoped control fields driving the orchestrator. It is not
// safe for concurrent use; the session store serializes access per session.
type ConversationState struct {
	Messages []Message

	// DecisionMade guards the classification step: it is reset at the start
	// of every turn and may be set at most once per turn.
	DecisionMade bool

	// PendingTools holds the tool requests emitted by the decision stage.
	// It must be empty before the response stage runs.
	PendingTools []ToolRequest
}

// NewConversationState returns a state seeded with the initial system message.
func NewConversationState(systemPrompt string) *ConversationState {
	return &ConversationState{
		Messages: []Message{{Role: RoleSystem, Content: systemPrompt}},
	}
}

// BeginTurn resets the turn-scoped control fields.
func (c *ConversationState) BeginTurn() {
	c.DecisionMade = false
	c.PendingTools = nil
}

// Append adds a message to the end of the log.
func (c *ConversationState) Append(msg Message) {
	c.Messages = append(c.Messages, msg)
}

// LastUser returns the most recent user message, searching backward.
func (c *ConversationState) LastUser() (Message, bool) {
	return c.lastMatch(func(m Message) bool { return m.Role == RoleUser })
}

// LastTagged returns the most recent message carrying the given tag,
// searching backward.
func (c *ConversationState) LastTagged(tag string) (Message, bool) {
	return c.lastMatch(func(m Message) bool { return m.Tag == tag })
}

// LastAssistantReply returns the most recent untagged assistant message.
// Tool-produced messages carry a tag and are skipped.
func (c *ConversationState) LastAssistantReply() (Message, bool) {
	return c.lastMatch(func(m Message) bool { return m.Role == RoleAssistant && m.Tag == "" })
}

func (c *ConversationState) lastMatch(match func(Message) bool) (Message, bool) {
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if match(c.Messages[i]) {
			return c.Messages[i], true
		}
	}
	return Message{}, false
}
