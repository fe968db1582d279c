package consumer

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/radieske/match-bid-platform/pkg/contracts/events"
)

// MatchChannel é o canal WebSocket de uma partida
func MatchChannel(matchID int64) string {
	return "match:" + strconv.FormatInt(matchID, 10)
}

// BidActivity é o que vai para o canal da partida quando alguém palpita.
// Time escolhido e usuário ficam de fora até o início do jogo.
type BidActivity struct {
	MatchID  int64  `json:"match_id"`
	Category string `json:"category"`
	Updated  bool   `json:"updated"`
	TsUnixMs int64  `json:"ts_unix_ms"`
}

// LeaderboardChanged avisa os clientes para recarregar o ranking
type LeaderboardChanged struct {
	MatchID int64 `json:"match_id"`
	TsUnix  int64 `json:"ts_unix"`
}

func bidPlacedUpdates(value []byte) ([]events.LiveUpdate, error) {
	var ev events.BidPlaced
	if err := json.Unmarshal(value, &ev); err != nil {
		return nil, fmt.Errorf("decode bid_placed: %w", err)
	}
	return []events.LiveUpdate{{
		Channel: MatchChannel(ev.MatchID),
		Type:    events.LiveTypeBidPlaced,
		Payload: BidActivity{MatchID: ev.MatchID, Category: ev.Category, Updated: ev.Updated, TsUnixMs: ev.TsUnixMs},
	}}, nil
}

func matchSettledUpdates(value []byte) ([]events.LiveUpdate, error) {
	var ev events.MatchSettled
	if err := json.Unmarshal(value, &ev); err != nil {
		return nil, fmt.Errorf("decode match_settled: %w", err)
	}
	return []events.LiveUpdate{
		{Channel: MatchChannel(ev.MatchID), Type: events.LiveTypeMatchSettled, Payload: ev},
		{Channel: events.LeaderboardChannel, Type: events.LiveTypeMatchSettled, Payload: LeaderboardChanged{MatchID: ev.MatchID, TsUnix: ev.Ts.Unix()}},
	}, nil
}
