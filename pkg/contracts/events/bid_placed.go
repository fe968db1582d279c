package events

// Evento emitido pelo bid-service após gravar (ou alterar) um palpite.
type BidPlaced struct {
	BidID          string `json:"bid_id"`
	UserID         string `json:"user_id"`
	MatchID        int64  `json:"match_id"`
	SelectedTeamID int64  `json:"selected_team_id"`
	Category       string `json:"category"` // league | semi | final
	Updated        bool   `json:"updated"`  // true quando o palpite existente foi trocado
	TsUnixMs       int64  `json:"ts_unix_ms"`
}
