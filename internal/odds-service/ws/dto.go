package ws

// ClientMsg representa uma mensagem recebida do cliente WebSocket
// Type: subscribe | unsubscribe | ping
// GameID: obrigatório para subscribe/unsubscribe
type ClientMsg struct {
	Type   string `json:"type"`    // subscribe | unsubscribe | ping
	GameID string `json:"game_id"` // requerido em subscribe/unsubscribe
}
