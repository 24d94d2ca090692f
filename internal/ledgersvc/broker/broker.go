package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/avvvet/poker-ledger/internal/comm"
	"github.com/avvvet/poker-ledger/internal/ledgersvc/models"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

type Broker struct {
	Conn     *nats.Conn
	Instance string
}

func NewBroker(nc *nats.Conn, instance string) *Broker {
	return &Broker{Conn: nc, Instance: instance}
}

// PublishGameEvent announces a ledger change on comm.SubjectLedgerEvents.
func (b *Broker) PublishGameEvent(_ context.Context, eventType string, g models.GameRecord) error {
	payload, err := encodeGameEvent(eventType, b.Instance, g, time.Now())
	if err != nil {
		return err
	}
	return b.Publish(comm.SubjectLedgerEvents, payload)
}

// Publish sends payload on topic.
func (b *Broker) Publish(topic string, payload []byte) error {
	err := b.Conn.Publish(topic, payload)
	if err != nil {
		log.Errorf("Error publishing to topic %s: %s", topic, err)
		return err
	}

	return nil
}

// QueueSubscribe delivers each message on topic to one member of queueGroup.
func (b *Broker) QueueSubscribe(topic, queueGroup string, handle func(ctx context.Context, data []byte) error) (*nats.Subscription, error) {
	return b.Conn.QueueSubscribe(topic, queueGroup, func(msg *nats.Msg) {
		if err := handle(context.Background(), msg.Data); err != nil {
			log.Errorf("Error handling message on %s: %s", msg.Subject, err)
		}
	})
}

func encodeGameEvent(eventType, instance string, g models.GameRecord, now time.Time) ([]byte, error) {
	data, err := json.Marshal(comm.GameEvent{
		GameID:      g.ID,
		WinnerID:    g.WinnerID,
		PotAmount:   g.PotAmount,
		WinningHand: g.WinningHand,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal game event: %w", err)
	}

	msg := comm.Message{
		ID:       uuid.NewString(),
		Type:     eventType,
		Data:     data,
		SentAt:   now.UTC(),
		Instance: instance,
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("marshal event envelope: %w", err)
	}
	return payload, nil
}
