package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

type (
	Writer  = kafka.Writer
	Reader  = kafka.Reader
	Message = kafka.Message
	Header  = kafka.Header
)

// MessageWriter é o lado de escrita de *kafka.Writer
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// MessageReader é o lado de consumo de *kafka.Reader (commit manual)
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Brokers quebra "a:9092,b:9092" na lista usada pelo kafka-go
func Brokers(list string) []string {
	var out []string
	for _, b := range strings.Split(list, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

func NewWriter(brokers string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(Brokers(brokers)...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{}, // mesma chave (partida) na mesma partição
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           10 * time.Millisecond, // publish roda no caminho da requisição
	}
}

// NewGroupReader consome vários tópicos no mesmo consumer group.
// Commit manual via Commit: a mensagem só é confirmada depois de processada.
func NewGroupReader(brokers string, groupID string, topics ...string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:     Brokers(brokers),
		GroupID:     groupID,
		GroupTopics: topics,
		MinBytes:    1,
		MaxBytes:    10e6,
		MaxWait:     time.Second,
	})
}

// WriteJSON serializa o payload e publica com a chave informada
func WriteJSON(ctx context.Context, w MessageWriter, key string, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal kafka payload: %w", err)
	}
	return WriteRaw(ctx, w, key, b)
}

// WriteRaw publica bytes já serializados (usado para reencaminhar à DLQ)
func WriteRaw(ctx context.Context, w MessageWriter, key string, value []byte, headers ...kafka.Header) error {
	msg := kafka.Message{
		Key:     []byte(key),
		Value:   value,
		Headers: headers,
		Time:    time.Now(),
	}
	return w.WriteMessages(ctx, msg)
}

func ReadNext(ctx context.Context, r MessageReader) (kafka.Message, error) {
	m, err := r.FetchMessage(ctx)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("fetch kafka message: %w", err)
	}
	return m, nil
}

func Commit(ctx context.Context, r MessageReader, m kafka.Message) error {
	if err := r.CommitMessages(ctx, m); err != nil {
		return fmt.Errorf("commit kafka offset %s/%d@%d: %w", m.Topic, m.Partition, m.Offset, err)
	}
	return nil
}
