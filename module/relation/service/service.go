package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"SProject/logger"
	"SProject/module/relation/model"
	errs "SProject/tools/errs"
)

// Store 关系账本的存储面；pgx 实现见 module/relation/store。
type Store interface {
	UpsertRequest(ctx context.Context, senderID, receiverID string, now time.Time) (*model.FollowRequest, error)
	GetRequest(ctx context.Context, senderID, receiverID string) (*model.FollowRequest, error)
	AcceptRequest(ctx context.Context, senderID, receiverID string, now time.Time) error
	RejectRequest(ctx context.Context, senderID, receiverID string, now time.Time) (bool, error)
	DeleteRequest(ctx context.Context, senderID, receiverID, byStatus string) (bool, error)
	DeleteEdge(ctx context.Context, followerID, followeeID string) (bool, error)
	EdgeExists(ctx context.Context, followerID, followeeID string) (bool, error)
	AreMutual(ctx context.Context, a, b string) (bool, error)
	ListIncomingRequests(ctx context.Context, receiverID string) ([]*model.FollowRequest, error)
	ListFollowing(ctx context.Context, followerID string) ([]*model.FollowEdge, error)
	ListFollowers(ctx context.Context, followeeID string) ([]*model.FollowEdge, error)
}

type RelationService struct {
	store Store
}

func NewRelationService(store Store) *RelationService {
	return &RelationService{store: store}
}

// RequestFollow 幂等 upsert：重发、被拒后重发都回到 pending。
func (s *RelationService) RequestFollow(ctx context.Context, callerID, receiverID string) (*model.FollowRequest, error) {
	if callerID == receiverID {
		return nil, errs.ErrSelfRelation.Wrap()
	}
	req, err := s.store.UpsertRequest(ctx, callerID, receiverID, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	return req, nil
}

// Respond 只有接收方能处理；accept 幂等（重复 accept 不报错、不多出第二条边）。
func (s *RelationService) Respond(ctx context.Context, callerID, senderID string, accept bool) error {
	req, err := s.store.GetRequest(ctx, senderID, callerID)
	if err != nil {
		return err
	}
	if req == nil {
		return errs.ErrRecordNotFound.WrapMsg("follow request", "sender", senderID)
	}
	// 到这里 receiver == caller 已经由主键锁定（查询就是按 (sender, caller) 查的）

	target := model.RequestRejected
	if accept {
		target = model.RequestAccepted
	}
	if req.Status == target {
		return nil // 重复处理，幂等成功
	}
	if !model.CanTransition(req.Status, target) {
		return errs.ErrRequestState.WrapMsg("transition", "from", req.Status, "to", target)
	}

	now := time.Now().UTC()
	if accept {
		if err := s.store.AcceptRequest(ctx, senderID, callerID, now); err != nil {
			return err
		}
		logger.Info("follow request accepted",
			zap.String("sender", senderID), zap.String("receiver", callerID))
		return nil
	}
	if _, err := s.store.RejectRequest(ctx, senderID, callerID, now); err != nil {
		return err
	}
	return nil
}

// Cancel 发送方撤回，仅 pending 状态可撤。
func (s *RelationService) Cancel(ctx context.Context, callerID, receiverID string) error {
	deleted, err := s.store.DeleteRequest(ctx, callerID, receiverID, model.RequestPending)
	if err != nil {
		return err
	}
	if !deleted {
		return errs.ErrRecordNotFound.WrapMsg("pending request", "receiver", receiverID)
	}
	return nil
}

// Dismiss 接收方删除请求（reject-by-delete），任意状态可删。
func (s *RelationService) Dismiss(ctx context.Context, callerID, senderID string) error {
	deleted, err := s.store.DeleteRequest(ctx, senderID, callerID, "")
	if err != nil {
		return err
	}
	if !deleted {
		return errs.ErrRecordNotFound.WrapMsg("request", "sender", senderID)
	}
	return nil
}

// Unfollow 删边；残留申请行一并清理（store 层同事务做）。
func (s *RelationService) Unfollow(ctx context.Context, callerID, followeeID string) error {
	_, err := s.store.DeleteEdge(ctx, callerID, followeeID)
	return err
}

func (s *RelationService) IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error) {
	return s.store.EdgeExists(ctx, followerID, followeeID)
}

// IsMutual 两个方向的边都存在才为真；单边永远为假。
// 会话创建的门禁谓词，dm service 直接调这里。
func (s *RelationService) IsMutual(ctx context.Context, a, b string) (bool, error) {
	if a == b {
		return false, nil
	}
	return s.store.AreMutual(ctx, a, b)
}

func (s *RelationService) IncomingRequests(ctx context.Context, callerID string) ([]*model.FollowRequest, error) {
	return s.store.ListIncomingRequests(ctx, callerID)
}

func (s *RelationService) Following(ctx context.Context, callerID string) ([]*model.FollowEdge, error) {
	return s.store.ListFollowing(ctx, callerID)
}

func (s *RelationService) Followers(ctx context.Context, callerID string) ([]*model.FollowEdge, error) {
	return s.store.ListFollowers(ctx, callerID)
}
