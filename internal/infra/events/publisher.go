package events

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// Publisher публикует события бронирований в Kafka
// Ошибки публикации не влияют на результат операции и только логируются
type Publisher struct {
	writer MessageWriter
	log    Logger
}

// NewKafkaWriter создает writer для топика событий
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
}

// NewPublisher создает публикатор событий
func NewPublisher(writer MessageWriter, log Logger) *Publisher {
	return &Publisher{writer: writer, log: log}
}

// Publish отправляет событие; ключ сообщения - ID магазина, чтобы события магазина шли по порядку
func (p *Publisher) Publish(ctx context.Context, event BookingEvent) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.log.Error("Publish: failed to marshal event type=%s booking=%d: %v", event.Type, event.BookingID, err)
		return
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(event.ShopID, 10)),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(event.ID)},
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.log.Error("Publish: failed to write event type=%s booking=%d: %v", event.Type, event.BookingID, err)
		return
	}

	p.log.Info("Publish: event type=%s booking=%d shop=%d", event.Type, event.BookingID, event.ShopID)
}

// Close закрывает writer
func (p *Publisher) Close() error {
	return p.writer.Close()
}

// Noop публикатор-заглушка, когда Kafka выключена
type Noop struct{}

func (Noop) Publish(context.Context, BookingEvent) {}

func (Noop) Close() error { return nil }
