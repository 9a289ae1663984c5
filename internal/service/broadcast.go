package service

// Event types pushed to match spectators.
const (
	EventMatchCreated  = "match_created"
	EventRoundPlayed   = "round_played"
	EventMatchFinished = "match_finished"
	EventMatchExpired  = "match_expired" // sent to the owner when an idle match is closed
)

// Broadcaster sends real-time events to connected clients.
// Implemented by the WebSocket hub.
type Broadcaster interface {
	BroadcastMatchEvent(matchID string, eventType string, data any)
	BroadcastPlayerEvent(playerID, matchID string, eventType string, data any)
}

// NoopBroadcaster is a no-op implementation for testing or when WS is disabled.
type NoopBroadcaster struct{}

func (NoopBroadcaster) BroadcastMatchEvent(string, string, any)          {}
func (NoopBroadcaster) BroadcastPlayerEvent(string, string, string, any) {}
