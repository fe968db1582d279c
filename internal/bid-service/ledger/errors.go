package ledger

import "errors"

// Erros de negócio: devolvidos ao chamador sem nenhuma mutação
var (
	ErrMatchNotFound          = errors.New("match not found")
	ErrMatchLocked            = errors.New("match has started, bidding is closed")
	ErrInvalidSelection       = errors.New("invalid team selection")
	ErrBidLimitExceeded       = errors.New("bid limit reached for category")
	ErrResultAlreadyConfirmed = errors.New("match result already confirmed")
	ErrInvalidWinner          = errors.New("winner is not a participant of the match")
	ErrWagerNotFound          = errors.New("bid not found")
	ErrUserNotFound           = errors.New("user not found")
	ErrTeamNotFound           = errors.New("team not found")
	ErrUsernameTaken          = errors.New("username already registered")
	ErrInvalidCredentials     = errors.New("incorrect username or password")
	ErrForbidden              = errors.New("admin capability required")
)

// Erros de integridade: indicam dado corrompido ou bug, nunca são tratados com default
var (
	ErrUnknownCategory = errors.New("unknown match category")
	ErrInvalidSchedule = errors.New("invalid match schedule")
)

// IsIntegrity indica se o erro é de integridade (deve abortar ruidosamente)
func IsIntegrity(err error) bool {
	return errors.Is(err, ErrUnknownCategory) || errors.Is(err, ErrInvalidSchedule)
}

var (
	// ErrMatchExists: mesma partida (times, data e hora) já cadastrada
	ErrMatchExists    = errors.New("match already scheduled")
	ErrResultNotFound = errors.New("match result not confirmed")
)

// ErrMatchNotStarted: os palpites de uma partida só ficam visíveis depois do início
var ErrMatchNotStarted = errors.New("match has not started, bids are hidden")
