package ws

// ClientMsg representa uma mensagem recebida do cliente WebSocket
// Type: subscribe | unsubscribe | ping
// Channel: "match:{id}" ou "leaderboard", obrigatório para subscribe/unsubscribe
type ClientMsg struct {
	Type    string `json:"type"`
	Channel string `json:"channel"`
}

// ControlMsg é a resposta do hub a uma mensagem do cliente
type ControlMsg struct {
	Type    string `json:"type"` // pong | subscribed | unsubscribed | error
	Channel string `json:"channel,omitempty"`
	Error   string `json:"error,omitempty"`
}
