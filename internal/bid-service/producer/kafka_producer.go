package producer

import (
	"context"
	"strconv"
	"time"

	"github.com/radieske/match-bid-platform/internal/shared/kafka"
	"github.com/radieske/match-bid-platform/pkg/contracts/events"
)

// KafkaPublisher publica os eventos do bid-service, um writer por tópico.
// A chave é o id da partida: eventos da mesma partida ficam ordenados na partição.
type KafkaPublisher struct {
	Bids        kafka.MessageWriter
	Settlements kafka.MessageWriter
}

func NewKafkaPublisher(bids, settlements kafka.MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{Bids: bids, Settlements: settlements}
}

func (p *KafkaPublisher) PublishBidPlaced(ctx context.Context, e events.BidPlaced) error {
	if e.TsUnixMs == 0 {
		e.TsUnixMs = time.Now().UnixMilli()
	}
	return kafka.WriteJSON(ctx, p.Bids, matchKey(e.MatchID), e)
}

func (p *KafkaPublisher) PublishMatchSettled(ctx context.Context, e events.MatchSettled) error {
	if e.Ts.IsZero() {
		e.Ts = time.Now()
	}
	return kafka.WriteJSON(ctx, p.Settlements, matchKey(e.MatchID), e)
}

func matchKey(matchID int64) string { return strconv.FormatInt(matchID, 10) }

// Nop descarta os eventos; usado quando KAFKA_BROKERS está vazio
type Nop struct{}

func (Nop) PublishBidPlaced(context.Context, events.BidPlaced) error       { return nil }
func (Nop) PublishMatchSettled(context.Context, events.MatchSettled) error { return nil }
