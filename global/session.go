package global

import "time"

// UserSession 登录会话：redis 里按 token hash 存一份。
// ProfileID 是懒建档后的内部身份；建档前为空串。
type UserSession struct {
	SessionID  string    `json:"session_id"`
	Subject    string    `json:"subject"` // 外部身份源的稳定用户标识
	ProfileID  string    `json:"profile_id"`
	TokenHash  string    `json:"token_hash"`
	LoginTime  time.Time `json:"login_time"`
	ExpireTime time.Time `json:"expire_time"`
}
