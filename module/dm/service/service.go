package service

import (
	"context"
	"time"

	"SProject/module/dm/model"
	errs "SProject/tools/errs"
	ids "SProject/tools/ids"
)

// Store 会话存储面；pgx 实现见 module/dm/store。
// ...ForCaller 方法自带行过滤；EnsureConversation/InsertMessage 是写入口，
// 谓词校验在本层做完才会调它们。
type Store interface {
	EnsureConversation(ctx context.Context, id, a, b string, now time.Time) (*model.Conversation, error)
	GetConversationForCaller(ctx context.Context, convID, callerID string) (*model.Conversation, error)
	ListConversationsForCaller(ctx context.Context, callerID string) ([]*model.Conversation, error)
	InsertMessage(ctx context.Context, m *model.Message) error
	ListMessagesForCaller(ctx context.Context, convID, callerID string, limit int) ([]*model.Message, error)
}

// MutualChecker 互关谓词，由 relation service 提供。
type MutualChecker interface {
	IsMutual(ctx context.Context, a, b string) (bool, error)
}

// Publisher 落库提交后的投递通知；传输本身在仓库边界外。
type Publisher interface {
	PublishDMMessage(ctx context.Context, conversationID string, payload any)
}

type DMService struct {
	store   Store
	mutual  MutualChecker
	publish Publisher
}

func NewDMService(store Store, mutual MutualChecker, publish Publisher) *DMService {
	return &DMService{store: store, mutual: mutual, publish: publish}
}

// CreateConversation 严格模式：创建时要求互关（政策决定，见 DESIGN.md）。
// 调用方必须是声明的参与者之一，这里 caller 即一端所以天然成立。
// 同一无序对重复创建幂等返回同一行，参数顺序无关。
func (s *DMService) CreateConversation(ctx context.Context, callerID, peerID string) (*model.Conversation, error) {
	if callerID == peerID {
		return nil, errs.ErrSelfRelation.Wrap()
	}
	mutual, err := s.mutual.IsMutual(ctx, callerID, peerID)
	if err != nil {
		return nil, err
	}
	if !mutual {
		return nil, errs.ErrNotMutualFollow.Wrap()
	}
	return s.store.EnsureConversation(ctx, ids.GenerateString(), callerID, peerID, time.Now().UTC())
}

// SendMessage 写谓词：参与者 + 声明的发送方就是调用方（后者由签名保证，
// sender 永远取 caller，不接受客户端声明）。
func (s *DMService) SendMessage(ctx context.Context, callerID, convID, content string) (*model.Message, error) {
	if content == "" {
		return nil, errs.ErrArgs.WithDetail("empty content")
	}
	conv, err := s.store.GetConversationForCaller(ctx, convID, callerID)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		// 读不到 = 不是参与者或会话不存在；写操作这里要报权限错，不是静默空
		return nil, errs.ErrNotParticipant.Wrap()
	}

	m := &model.Message{
		ID:             ids.GenerateString(),
		ConversationID: convID,
		SenderID:       callerID,
		Content:        content,
		CreateTime:     time.Now().UTC(),
	}
	if err := s.store.InsertMessage(ctx, m); err != nil {
		return nil, err
	}
	if s.publish != nil {
		s.publish.PublishDMMessage(ctx, convID, m)
	}
	return m, nil
}

// ListMessages 授权是过滤器不是异常：非参与者拿空列表。
func (s *DMService) ListMessages(ctx context.Context, callerID, convID string, limit int) ([]*model.Message, error) {
	return s.store.ListMessagesForCaller(ctx, convID, callerID, limit)
}

func (s *DMService) ListConversations(ctx context.Context, callerID string) ([]*model.Conversation, error) {
	return s.store.ListConversationsForCaller(ctx, callerID)
}

func (s *DMService) GetConversation(ctx context.Context, callerID, convID string) (*model.Conversation, error) {
	return s.store.GetConversationForCaller(ctx, convID, callerID)
}
