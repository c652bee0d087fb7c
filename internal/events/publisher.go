// publisher.go
//
// Conexo admin API: accounts, listings and moderation for the community directory
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of conexo-admin.
// conexo-admin is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// conexo-admin is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with conexo-admin.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Routing keys published on the exchange
const (
	AccountDeletionRequested = "account.deletion_requested"
	AccountReactivated       = "account.reactivated"
	AccountPurged            = "account.purged"
	AccountBusinessActivated = "account.business_activated"
	ListingModerated         = "listing.moderated"
	SupportTicketCreated     = "support.ticket_created"
)

// Envelope is the JSON body of every published message
type Envelope struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurredAt"`
	From       string    `json:"from,omitempty"`
	Data       any       `json:"data"`
}

// Publisher delivers domain events to downstream consumers such as the mailer
type Publisher interface {
	Publish(ctx context.Context, key string, data any) error
}

// AMQPPublisher publishes JSON envelopes on a topic exchange
type AMQPPublisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
	from     string
}

// NewAMQPPublisher dials the broker and declares the topic exchange
func NewAMQPPublisher(url, exchange, from string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &AMQPPublisher{conn: conn, ch: ch, exchange: exchange, from: from}, nil
}

// Publish sends data wrapped in an Envelope with routing key key
func (p *AMQPPublisher) Publish(ctx context.Context, key string, data any) error {
	b, err := json.Marshal(NewEnvelope(key, p.from, data))
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ch.PublishWithContext(ctx, p.exchange, key, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         key,
		Body:         b,
	})
}

// Close closes the channel and connection
func (p *AMQPPublisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// NewEnvelope wraps data for publishing
func NewEnvelope(key, from string, data any) Envelope {
	return Envelope{
		Type:       key,
		OccurredAt: time.Now().UTC(),
		From:       from,
		Data:       data,
	}
}

// NopPublisher discards every event. It is used when AMQP_URL is empty.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, any) error { return nil }

// Emit publishes and logs a failure instead of returning it. Event
// delivery never fails the workflow that produced it.
func Emit(ctx context.Context, pub Publisher, log *zap.Logger, key string, data any) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, key, data); err != nil && log != nil {
		log.Warn("event publish failed", zap.String("event", key), zap.Error(err))
	}
}
