package model

import "time"

// Profile 应用内身份，每个外部身份只会有一行（external_id 唯一约束兜底）。
// ExternalID 绑定后不可变；展示字段可改。
type Profile struct {
	ID         string    `json:"id"`
	ExternalID string    `json:"-"` // 外部身份源的稳定用户标识，不对外输出
	Handle     string    `json:"handle"`
	AvatarURL  string    `json:"avatar_url"`
	Bio        string    `json:"bio"`
	CreateTime time.Time `json:"create_time"`
	UpdateTime time.Time `json:"update_time"`
}
