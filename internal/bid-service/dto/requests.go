package dto

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=6,max=72"` // bcrypt ignora além de 72 bytes
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type PlaceBidRequest struct {
	MatchID        int64 `json:"match_id" validate:"required,gt=0"`
	SelectedTeamID int64 `json:"selected_team_id" validate:"required,gt=0"`
}

type CreateMatchRequest struct {
	Team1ID   int64  `json:"team1_id" validate:"required,gt=0"`
	Team2ID   int64  `json:"team2_id" validate:"required,gt=0,nefield=Team1ID"`
	MatchDate string `json:"match_date" validate:"required,datetime=2006-01-02"`
	MatchTime string `json:"match_time" validate:"required,datetime=15:04"`
	MatchType string `json:"match_type" validate:"required,oneof=league semi final"`
	Venue     string `json:"venue" validate:"max=200"`
	Series    string `json:"series" validate:"omitempty,max=50"`
}

// ConfirmResultRequest: winner_team_id null = partida sem resultado
type ConfirmResultRequest struct {
	WinnerTeamID *int64 `json:"winner_team_id" validate:"omitempty,gt=0"`
}

// MatchListQuery são os filtros de GET /matches
type MatchListQuery struct {
	Series   string `json:"series" validate:"omitempty,max=50"`
	Category string `json:"category" validate:"omitempty,oneof=league semi final"`
}
