package handler

// BroadcastMatchEvent implements service.Broadcaster using the WebSocket hub.
func (h *Hub) BroadcastMatchEvent(matchID string, eventType string, data any) {
	h.BroadcastToMatch(matchID, WSEvent{
		Type:    eventType,
		MatchID: matchID,
		Data:    data,
	})
}

// BroadcastPlayerEvent implements service.Broadcaster for events addressed
// to one player's connections rather than a match's subscribers.
func (h *Hub) BroadcastPlayerEvent(playerID, matchID string, eventType string, data any) {
	h.BroadcastToPlayer(playerID, WSEvent{
		Type:    eventType,
		MatchID: matchID,
		Data:    data,
	})
}
