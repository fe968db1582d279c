package events

// Payload padrão publicado no Redis Pub/Sub e repassado aos clientes WebSocket
// Channel: "match:{id}" ou "leaderboard"
type LiveUpdate struct {
	Channel string      `json:"channel"`
	Type    string      `json:"type"` // bid_placed | match_settled
	Payload interface{} `json:"payload"`
}

const (
	LiveTypeBidPlaced    = "bid_placed"
	LiveTypeMatchSettled = "match_settled"

	LeaderboardChannel = "leaderboard"
)
