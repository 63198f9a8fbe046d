// Package events は注文イベントをメッセージブローカーへ発行する。
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	stan "github.com/nats-io/stan.go"
)

// Type はイベント種別。
type Type string

const (
	OrderCreated Type = "order.created"
	OrderDeleted Type = "order.deleted"
)

// OrderEvent は注文の作成・削除を通知するイベント。
type OrderEvent struct {
	Type       Type      `json:"type"`
	OrderID    string    `json:"order_id"`
	ProductID  string    `json:"product_id"`
	Quantity   int       `json:"quantity"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher は注文イベントの発行インターフェース。
type Publisher interface {
	PublishOrderEvent(ctx context.Context, ev OrderEvent) error
	Close() error
}

// conn はstan.Connのうち発行に必要な部分。
type conn interface {
	PublishAsync(subject string, data []byte, ah stan.AckHandler) (string, error)
	Close() error
}

// StanPublisher はNATS Streamingへイベントを発行する。
// 発行はブローカーのACKを待たず、ACKの失敗はログにのみ記録する。
type StanPublisher struct {
	conn    conn
	subject string
	logger  *slog.Logger
}

// ConnectStan はNATS Streamingに接続してStanPublisherを生成する。
func ConnectStan(clusterID, clientID, natsURL, subject string, logger *slog.Logger) (*StanPublisher, error) {
	sc, err := stan.Connect(clusterID, clientID, stan.NatsURL(natsURL))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats streaming: %w", err)
	}
	return newStanPublisher(sc, subject, logger), nil
}

func newStanPublisher(c conn, subject string, logger *slog.Logger) *StanPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &StanPublisher{conn: c, subject: subject, logger: logger}
}

// PublishOrderEvent はイベントをJSONにエンコードして非同期に発行する。
// 返るエラーは送信前の失敗のみで、ブローカーからのACK失敗はackハンドラがログに残す。
func (p *StanPublisher) PublishOrderEvent(ctx context.Context, ev OrderEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}
	if _, err := p.conn.PublishAsync(p.subject, b, p.ackHandler(ev)); err != nil {
		return fmt.Errorf("failed to publish order event: %w", err)
	}
	return nil
}

// ackHandler はACK失敗を記録するハンドラを返す。
func (p *StanPublisher) ackHandler(ev OrderEvent) stan.AckHandler {
	return func(guid string, err error) {
		if err == nil {
			return
		}
		p.logger.Warn("order event not acknowledged",
			slog.String("guid", guid),
			slog.String("type", string(ev.Type)),
			slog.String("order_id", ev.OrderID),
			slog.String("error", err.Error()),
		)
	}
}

// Close は接続を閉じる。
func (p *StanPublisher) Close() error {
	return p.conn.Close()
}

// NopPublisher はイベントを破棄するPublisher。NATS_URL未設定時に使用する。
type NopPublisher struct{}

// PublishOrderEvent は何もしない。
func (NopPublisher) PublishOrderEvent(context.Context, OrderEvent) error { return nil }

// Close は何もしない。
func (NopPublisher) Close() error { return nil }

var (
	_ Publisher = (*StanPublisher)(nil)
	_ Publisher = NopPublisher{}
)
