package ledger

import (
	"fmt"
	"time"
)

// Category define o tipo de partida; determina valor e limite de palpites
type Category string

const (
	CategoryLeague Category = "league"
	CategorySemi   Category = "semi"
	CategoryFinal  Category = "final"
)

// Categories lista as categorias conhecidas, na ordem de exibição
var Categories = []Category{CategoryLeague, CategorySemi, CategoryFinal}

// Status é o ciclo de vida de um palpite
type Status string

const (
	StatusPending  Status = "pending"
	StatusPlaced   Status = "placed"
	StatusWon      Status = "won"
	StatusLost     Status = "lost"
	StatusNoResult Status = "no_result"
)

// Terminal indica se o palpite já foi liquidado
func (s Status) Terminal() bool {
	return s == StatusWon || s == StatusLost || s == StatusNoResult
}

const (
	MatchStatusUpcoming  = "upcoming"
	MatchStatusCompleted = "completed"

	DefaultSeries = "worldcup"

	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

type Team struct {
	ID        int64  `json:"id" db:"id"`
	Name      string `json:"name" db:"name"`
	ShortName string `json:"short_name" db:"short_name"`
}

// Match é a partida agendada. StartsAt é derivado de Date+Time no fuso configurado.
type Match struct {
	ID           int64
	Team1        Team
	Team2        Team
	Date         string
	Time         string
	Venue        string
	Category     Category
	Series       string
	Status       string
	WinnerTeamID *int64
	Confirmed    bool // existe MatchResult
	StartsAt     time.Time
}

// Has indica se o time participa da partida
func (m Match) Has(teamID int64) bool {
	return teamID == m.Team1.ID || teamID == m.Team2.ID
}

// LockedAt: palpites fecham exatamente no horário de início, sem tolerância
func (m Match) LockedAt(now time.Time) bool {
	return !now.Before(m.StartsAt)
}

// SecondsUntilStart retorna nil quando a partida já começou
func (m Match) SecondsUntilStart(now time.Time) *int64 {
	d := m.StartsAt.Sub(now)
	if d <= 0 {
		return nil
	}
	secs := int64(d / time.Second)
	return &secs
}

// ParseStart converte "YYYY-MM-DD" + "HH:MM" para o instante de início no fuso loc
func ParseStart(date, clock string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout+" "+TimeLayout, date+" "+clock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q %q: %v", ErrInvalidSchedule, date, clock, err)
	}
	return t, nil
}

// Wager é um palpite: no máximo um por (usuário, partida).
// SelectedTeamID nil = palpite perdido ("missed"), ignorado na liquidação.
type Wager struct {
	ID             string
	UserID         string
	MatchID        int64
	SelectedTeamID *int64
	Status         Status
	Amount         *int64 // nil até a liquidação
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// MatchResult marca a partida como liquidada; existe no máximo um por partida.
type MatchResult struct {
	MatchID      int64
	WinnerTeamID *int64 // nil = sem resultado
	Stake        int64
	Pool         int64
	Share        int64
	HouseTake    int64
	ConfirmedAt  time.Time
}

type User struct {
	ID           string
	Username     string
	PasswordHash string
	IsAdmin      bool
	IsActive     bool
	CreatedAt    time.Time
	Stats        Stats
}

// UserStats é a linha de estatísticas usada pelo ranking
type UserStats struct {
	UserID   string
	Username string
	Stats    Stats
}

// MatchBid é um palpite com o username do dono (visão por partida)
type MatchBid struct {
	Wager
	Username string
}
