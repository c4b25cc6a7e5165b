package notify

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
)

// Типы событий уведомлений
const (
	EventWebhookRenewalFailed = "webhook.renewal_failed"
	EventWebhookChannelClean  = "webhook.channel_cleaned"
	EventReservationConfirmed = "reservation.auto_confirmed"
)

// Event внутреннее событие для внешней системы уведомлений
// Доставка, выбор канала и композиция сообщений - зона ответственности
// notification-сервиса, ядро только публикует факт
type Event struct {
	Type          string    `json:"type"`
	BusinessID    int64     `json:"business_id"`
	ReservationID *int64    `json:"reservation_id,omitempty"`
	Message       string    `json:"message,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Emitter fire-and-forget публикация событий в Kafka
// Ошибки публикации логируются и никогда не прерывают вызывающий код
type Emitter struct {
	writer *kafka.Writer
	log    Logger
}

// NewEmitter создает эмиттер уведомлений
// Ключ сообщения - ID бизнеса, чтобы события одного бизнеса шли по порядку
func NewEmitter(brokers []string, topic string, log Logger) *Emitter {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
		Logger:       kafka.LoggerFunc(func(string, ...interface{}) {}),
		ErrorLogger:  kafka.LoggerFunc(log.Error),
	}

	return &Emitter{writer: writer, log: log}
}

// Emit публикует событие; ошибки не возвращаются
func (e *Emitter) Emit(ctx context.Context, event Event) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	value, err := json.Marshal(event)
	if err != nil {
		e.log.Error("notify: failed to marshal event type=%s business=%d: %v", event.Type, event.BusinessID, err)
		return
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(event.BusinessID, 10)),
		Value: value,
	}

	if err := e.writer.WriteMessages(ctx, msg); err != nil {
		e.log.Error("notify: failed to publish event type=%s business=%d: %v", event.Type, event.BusinessID, err)
		return
	}

	e.log.Info("notify: published event type=%s business=%d", event.Type, event.BusinessID)
}

// Close закрывает Kafka writer
func (e *Emitter) Close() error {
	return e.writer.Close()
}

// NopEmitter заглушка на случай выключенной Kafka
type NopEmitter struct{}

// Emit ничего не делает
func (NopEmitter) Emit(ctx context.Context, event Event) {}
