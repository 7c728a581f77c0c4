package realtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"SProject/global"
	"SProject/logger"
)

// 订阅侧（外部投递网关）按会话/群ID过滤：
//   social.dm.<conversation_id>
//   social.group.<group_id>
// 新写入的行只要进了对应 subject，调方可见集合内的订阅者就能观察到；
// 投递传输本身不在本仓库范围。

const (
	subjectDMPrefix    = "social.dm."
	subjectGroupPrefix = "social.group."
)

// Event 投递信封。Payload 是落库后的行（JSON 序列化的 model）。
type Event struct {
	EventID string          `json:"event_id"`
	Kind    string          `json:"kind"` // dm_message / group_message
	RefID   string          `json:"ref_id"`
	SentAt  time.Time       `json:"sent_at"`
	Payload json.RawMessage `json:"payload"`
}

type Publisher struct {
	conn *nats.Conn
}

func NewPublisher(cfg global.NatsConfig) (*Publisher, error) {
	opts := []nats.Option{
		nats.Name(cfg.Name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
	}
	conn, err := nats.Connect(joinServers(cfg.Servers), opts...)
	if err != nil {
		return nil, err
	}
	return &Publisher{conn: conn}, nil
}

func (p *Publisher) Close() {
	if p != nil && p.conn != nil {
		p.conn.Drain() //nolint:errcheck
	}
}

// PublishDMMessage 单聊消息落库提交后调用；失败只记日志，不回滚业务写。
func (p *Publisher) PublishDMMessage(ctx context.Context, conversationID string, payload any) {
	p.publish(ctx, subjectDMPrefix+conversationID, "dm_message", conversationID, payload)
}

// PublishGroupMessage 群消息落库提交后调用。
func (p *Publisher) PublishGroupMessage(ctx context.Context, groupID string, payload any) {
	p.publish(ctx, subjectGroupPrefix+groupID, "group_message", groupID, payload)
}

func (p *Publisher) publish(_ context.Context, subject, kind, refID string, payload any) {
	if p == nil || p.conn == nil {
		return
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		logger.Error("realtime marshal payload", zap.String("subject", subject), zap.Error(err))
		return
	}
	ev := Event{
		EventID: uuid.NewString(),
		Kind:    kind,
		RefID:   refID,
		SentAt:  time.Now().UTC(),
		Payload: raw,
	}
	data, err := json.Marshal(ev)
	if err != nil {
		logger.Error("realtime marshal event", zap.String("subject", subject), zap.Error(err))
		return
	}
	if err := p.conn.Publish(subject, data); err != nil {
		logger.Error("realtime publish", zap.String("subject", subject), zap.Error(err))
	}
}

func joinServers(servers []string) string {
	out := ""
	for i, s := range servers {
		if i > 0 {
			out += ","
		}
		out += s
	}
	return out
}
