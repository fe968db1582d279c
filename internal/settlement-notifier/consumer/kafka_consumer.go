package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/match-bid-platform/internal/shared/kafka"
	"github.com/radieske/match-bid-platform/internal/shared/metrics"
	"github.com/radieske/match-bid-platform/pkg/contracts/events"
)

const (
	defaultRetries = 3
	defaultBackoff = 300 * time.Millisecond

	headerOriginalTopic = "x-original-topic"
	headerError         = "x-error"
	headerKind          = "x-dlq-kind"
	headerChannel       = "x-live-channel"

	// kindRaw: mensagem original que não pôde ser traduzida
	// kindLiveUpdate: LiveUpdate pronto que não foi publicado; basta republicar no Pub/Sub
	kindRaw        = "raw"
	kindLiveUpdate = "live_update"
)

// errDecode: mensagem malformada, vai direto para a DLQ sem retry
var errDecode = errors.New("undecodable message")

type Broadcaster interface {
	Broadcast(ctx context.Context, u events.LiveUpdate) error
}

// Processor consome bid_placed e match_settled e repassa para o Pub/Sub do live-service.
// Falha de publish: retries com backoff linear, depois só os LiveUpdates ainda não
// entregues vão para a DLQ; os que já saíram não são duplicados no replay.
// O offset só é confirmado depois que a mensagem foi entregue ou parou na DLQ.
// Entrega é at-least-once: se nem a DLQ aceita, a mensagem inteira é reprocessada.
type Processor struct {
	Log         *zap.Logger
	Reader      kafka.MessageReader
	Broadcaster Broadcaster
	DLQ         kafka.MessageWriter // opcional
	Metrics     *metrics.NotifierMetrics

	TopicBidPlaced    string
	TopicMatchSettled string

	Retries int           // 0 usa o padrão (3)
	Backoff time.Duration // 0 usa o padrão (300ms)
}

// Run roda até o contexto ser cancelado
func (p *Processor) Run(ctx context.Context) error {
	for {
		m, err := kafka.ReadNext(ctx, p.Reader)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.Log.Warn("kafka read failed", zap.Error(err))
			p.errorAt("read")
			sleep(ctx, 500*time.Millisecond)
			continue
		}

		// DLQ indisponível: reprocessa a mesma mensagem, commit pularia o offset
		for {
			err := p.Handle(ctx, m)
			if err == nil {
				break
			}
			p.Log.Error("message handling failed, retrying",
				zap.String("topic", m.Topic),
				zap.Int64("offset", m.Offset),
				zap.Error(err),
			)
			if !sleep(ctx, time.Second) {
				return ctx.Err()
			}
		}
		if err := kafka.Commit(ctx, p.Reader, m); err != nil {
			p.Log.Warn("kafka commit failed", zap.Error(err))
			p.errorAt("commit")
		}
	}
}

// Handle processa uma mensagem. Erro só quando nem a DLQ aceitou a mensagem.
func (p *Processor) Handle(ctx context.Context, m kafka.Message) error {
	if p.Metrics != nil {
		p.Metrics.Consumed.WithLabelValues(m.Topic).Inc()
	}

	updates, err := p.translate(m)
	if err != nil {
		p.Log.Warn("invalid message", zap.String("topic", m.Topic), zap.Error(err))
		p.errorAt("decode")
		return p.deadLetter(ctx, m, err)
	}

	for i, u := range updates {
		if err := p.publish(ctx, u); err != nil {
			p.Log.Warn("live update publish failed",
				zap.String("channel", u.Channel),
				zap.String("type", u.Type),
				zap.Int("pending", len(updates)-i),
				zap.Error(err),
			)
			p.errorAt("publish")
			return p.deadLetterUpdates(ctx, m, updates[i:], err)
		}
	}
	return nil
}

func (p *Processor) translate(m kafka.Message) ([]events.LiveUpdate, error) {
	var (
		updates []events.LiveUpdate
		err     error
	)
	switch m.Topic {
	case p.TopicBidPlaced:
		updates, err = bidPlacedUpdates(m.Value)
	case p.TopicMatchSettled:
		updates, err = matchSettledUpdates(m.Value)
	default:
		return nil, fmt.Errorf("%w: unexpected topic %q", errDecode, m.Topic)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errDecode, err)
	}
	return updates, nil
}

// publish tenta 1 + Retries vezes, esperando Backoff*(i+1) entre tentativas
func (p *Processor) publish(ctx context.Context, u events.LiveUpdate) error {
	retries, backoff := p.Retries, p.Backoff
	if retries <= 0 {
		retries = defaultRetries
	}
	if backoff <= 0 {
		backoff = defaultBackoff
	}

	err := p.Broadcaster.Broadcast(ctx, u)
	for i := 0; err != nil && i < retries; i++ {
		if !sleep(ctx, backoff*time.Duration(i+1)) {
			return ctx.Err()
		}
		if p.Metrics != nil {
			p.Metrics.Retries.Inc()
		}
		err = p.Broadcaster.Broadcast(ctx, u)
	}
	if err != nil {
		return err
	}
	if p.Metrics != nil {
		p.Metrics.Published.Inc()
	}
	return nil
}

func (p *Processor) deadLetter(ctx context.Context, m kafka.Message, cause error) error {
	return p.writeDLQ(ctx, m, kafka.Message{
		Key:   m.Key,
		Value: m.Value,
		Headers: []kafka.Header{
			{Key: headerOriginalTopic, Value: []byte(m.Topic)},
			{Key: headerError, Value: []byte(cause.Error())},
			{Key: headerKind, Value: []byte(kindRaw)},
		},
	})
}

// deadLetterUpdates grava cada LiveUpdate pendente numa única escrita
func (p *Processor) deadLetterUpdates(ctx context.Context, m kafka.Message, pending []events.LiveUpdate, cause error) error {
	msgs := make([]kafka.Message, 0, len(pending))
	for _, u := range pending {
		b, err := json.Marshal(u)
		if err != nil {
			return p.deadLetter(ctx, m, cause)
		}
		msgs = append(msgs, kafka.Message{
			Key:   m.Key,
			Value: b,
			Headers: []kafka.Header{
				{Key: headerOriginalTopic, Value: []byte(m.Topic)},
				{Key: headerError, Value: []byte(cause.Error())},
				{Key: headerKind, Value: []byte(kindLiveUpdate)},
				{Key: headerChannel, Value: []byte(u.Channel)},
			},
		})
	}
	return p.writeDLQ(ctx, m, msgs...)
}

func (p *Processor) writeDLQ(ctx context.Context, m kafka.Message, msgs ...kafka.Message) error {
	if p.DLQ == nil {
		p.Log.Error("message dropped, no DLQ configured", zap.String("topic", m.Topic), zap.Int64("offset", m.Offset))
		return nil
	}
	if err := p.DLQ.WriteMessages(ctx, msgs...); err != nil {
		p.errorAt("dlq")
		return fmt.Errorf("dlq write: %w", err)
	}
	if p.Metrics != nil {
		p.Metrics.DLQ.Add(float64(len(msgs)))
	}
	return nil
}

func (p *Processor) errorAt(stage string) {
	if p.Metrics != nil {
		p.Metrics.Errors.WithLabelValues(stage).Inc()
	}
}

// sleep devolve false se o contexto acabou antes
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
