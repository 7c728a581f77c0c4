package service

import (
	"context"
	"time"

	dmmodel "SProject/module/dm/model"
	"SProject/module/readstate/model"
	"SProject/tools/errs"
)

type Store interface {
	UpsertConversationRead(ctx context.Context, profileID, conversationID string, at time.Time) error
	UpsertGroupRead(ctx context.Context, profileID, groupID string, at time.Time) error
	GetConversationRead(ctx context.Context, profileID, conversationID string) (*model.ReadStatus, error)
	GetGroupRead(ctx context.Context, profileID, groupID string) (*model.ReadStatus, error)
	UnreadConversationsForCaller(ctx context.Context, callerID string) ([]*model.Unread, error)
	UnreadGroupsForCaller(ctx context.Context, callerID string) ([]*model.Unread, error)
}

// ConversationReads 取 dm store 的过滤读路径:非参与者拿到 nil。
type ConversationReads interface {
	GetConversationForCaller(ctx context.Context, convID, callerID string) (*dmmodel.Conversation, error)
}

// GroupReads 取 group store 的特权成员判定。
type GroupReads interface {
	IsMember(ctx context.Context, groupID, profileID string) (bool, error)
}

// ReadStateService 写读点前先过各自域的可见性判定,
// 读点本身永远只属于调用者自己。
type ReadStateService struct {
	store  Store
	convs  ConversationReads
	groups GroupReads
}

func NewReadStateService(store Store, convs ConversationReads, groups GroupReads) *ReadStateService {
	return &ReadStateService{store: store, convs: convs, groups: groups}
}

// MarkConversationRead at 为零值时取当前时间。
func (s *ReadStateService) MarkConversationRead(ctx context.Context, callerID, conversationID string, at time.Time) error {
	conv, err := s.convs.GetConversationForCaller(ctx, conversationID, callerID)
	if err != nil {
		return err
	}
	if conv == nil {
		return errs.ErrNotParticipant.Wrap()
	}
	if at.IsZero() {
		at = time.Now().UTC()
	}
	return s.store.UpsertConversationRead(ctx, callerID, conversationID, at)
}

func (s *ReadStateService) MarkGroupRead(ctx context.Context, callerID, groupID string, at time.Time) error {
	ok, err := s.groups.IsMember(ctx, groupID, callerID)
	if err != nil {
		return err
	}
	if !ok {
		return errs.ErrNotGroupMember.Wrap()
	}
	if at.IsZero() {
		at = time.Now().UTC()
	}
	return s.store.UpsertGroupRead(ctx, callerID, groupID, at)
}

// Unread 汇总调用者可见范围内的未读;store 查询已按参与/成员过滤,
// 这里只拼装。
func (s *ReadStateService) Unread(ctx context.Context, callerID string) ([]*model.Unread, error) {
	convs, err := s.store.UnreadConversationsForCaller(ctx, callerID)
	if err != nil {
		return nil, err
	}
	groups, err := s.store.UnreadGroupsForCaller(ctx, callerID)
	if err != nil {
		return nil, err
	}
	return append(convs, groups...), nil
}
