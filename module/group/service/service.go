package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"SProject/logger"
	"SProject/module/group/model"
	errs "SProject/tools/errs"
	ids "SProject/tools/ids"
)

// Store 群存储面。谓词只允许用前三个特权方法——这是防自指环的构造约定：
// “成员可见性”谓词查的是同一张成员表，必须走非递归路径。
type Store interface {
	IsMember(ctx context.Context, groupID, profileID string) (bool, error)
	IsAdmin(ctx context.Context, groupID, profileID string) (bool, error)
	HasAnyMembers(ctx context.Context, groupID string) (bool, error)

	CreateGroup(ctx context.Context, g *model.Group) error
	InsertMember(ctx context.Context, m *model.GroupMember) (bool, error)
	InsertMessage(ctx context.Context, m *model.GroupMessage) error

	GetGroup(ctx context.Context, groupID string) (*model.Group, error)
	ListMembers(ctx context.Context, groupID string) ([]*model.GroupMember, error)
	ListMembersRestricted(ctx context.Context, groupID, callerID string) ([]*model.GroupMember, error)
	ListGroupsForMember(ctx context.Context, profileID string) ([]*model.Group, error)
	ListMessages(ctx context.Context, groupID string, limit int) ([]*model.GroupMessage, error)
}

type Publisher interface {
	PublishGroupMessage(ctx context.Context, groupID string, payload any)
}

type GroupService struct {
	store   Store
	publish Publisher

	// restricted = true 时成员列表走降级读（只见自己 + 创建人）。
	// 默认 false：特权助手可信，成员互见。
	restricted bool
}

func NewGroupService(store Store, publish Publisher) *GroupService {
	return &GroupService{store: store, publish: publish}
}

// NewRestrictedGroupService 降级模式构造器；取舍记录在 DESIGN.md。
func NewRestrictedGroupService(store Store, publish Publisher) *GroupService {
	return &GroupService{store: store, publish: publish, restricted: true}
}

// CreateGroup 创建人 admin 行由 store 同事务补齐：
// 返回时 IsMember(g, creator) 与 IsAdmin(g, creator) 必真，且没有其他成员行。
func (s *GroupService) CreateGroup(ctx context.Context, callerID, name string) (*model.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errs.ErrArgs.WithDetail("empty group name")
	}
	now := time.Now().UTC()
	g := &model.Group{
		ID:         ids.GenerateString(),
		Name:       name,
		CreatorID:  callerID,
		CreateTime: now,
		UpdateTime: now,
	}
	if err := s.store.CreateGroup(ctx, g); err != nil {
		return nil, err
	}
	logger.Info("group created", zap.String("group_id", g.ID), zap.String("creator", callerID))
	return g, nil
}

// GetGroup 可见性：isMember(group, caller)。不可见返回 (nil, nil)——空集不是错误。
func (s *GroupService) GetGroup(ctx context.Context, callerID, groupID string) (*model.Group, error) {
	ok, err := s.store.IsMember(ctx, groupID, callerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return s.store.GetGroup(ctx, groupID)
}

// ListMembers 成员行可见性同样由特权 isMember 裁决，绝不用成员表自连过滤。
func (s *GroupService) ListMembers(ctx context.Context, callerID, groupID string) ([]*model.GroupMember, error) {
	ok, err := s.store.IsMember(ctx, groupID, callerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []*model.GroupMember{}, nil
	}
	if s.restricted {
		return s.store.ListMembersRestricted(ctx, groupID, callerID)
	}
	return s.store.ListMembers(ctx, groupID)
}

// AddMember 插入资格：admin，或群还没有任何成员（创建人自举），或就是声明的创建人。
func (s *GroupService) AddMember(ctx context.Context, callerID, groupID, profileID, role string) error {
	if role != model.RoleAdmin {
		role = model.RoleMember
	}

	allowed, err := s.canInsertMember(ctx, callerID, groupID)
	if err != nil {
		return err
	}
	if !allowed {
		return errs.ErrNotGroupAdmin.Wrap()
	}

	inserted, err := s.store.InsertMember(ctx, &model.GroupMember{
		GroupID:   groupID,
		ProfileID: profileID,
		Role:      role,
		JoinTime:  time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	if !inserted {
		// 重复入群：可恢复 no-op，不向上冒错
		logger.Debug("duplicate group member ignored",
			zap.String("group", groupID), zap.String("profile", profileID))
	}
	return nil
}

func (s *GroupService) canInsertMember(ctx context.Context, callerID, groupID string) (bool, error) {
	admin, err := s.store.IsAdmin(ctx, groupID, callerID)
	if err != nil {
		return false, err
	}
	if admin {
		return true, nil
	}
	any, err := s.store.HasAnyMembers(ctx, groupID)
	if err != nil {
		return false, err
	}
	if !any {
		return true, nil // 空群自举：放行第一行
	}
	g, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return false, err
	}
	return g != nil && g.CreatorID == callerID, nil
}

// SendMessage 发送方必须是当前成员；sender 永远取 caller。
func (s *GroupService) SendMessage(ctx context.Context, callerID, groupID, content string) (*model.GroupMessage, error) {
	if content == "" {
		return nil, errs.ErrArgs.WithDetail("empty content")
	}
	ok, err := s.store.IsMember(ctx, groupID, callerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.ErrNotGroupMember.Wrap()
	}

	m := &model.GroupMessage{
		ID:         ids.GenerateString(),
		GroupID:    groupID,
		SenderID:   callerID,
		Content:    content,
		CreateTime: time.Now().UTC(),
	}
	if err := s.store.InsertMessage(ctx, m); err != nil {
		return nil, err
	}
	if s.publish != nil {
		s.publish.PublishGroupMessage(ctx, groupID, m)
	}
	return m, nil
}

// ListMessages 非成员拿空列表，不是错误。
func (s *GroupService) ListMessages(ctx context.Context, callerID, groupID string, limit int) ([]*model.GroupMessage, error) {
	ok, err := s.store.IsMember(ctx, groupID, callerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []*model.GroupMessage{}, nil
	}
	return s.store.ListMessages(ctx, groupID, limit)
}

func (s *GroupService) MyGroups(ctx context.Context, callerID string) ([]*model.Group, error) {
	return s.store.ListGroupsForMember(ctx, callerID)
}
