package model

import "time"

// 管理者ユーザー
// 登録フローは管理者作成専用なのでIsAdminはデフォルトtrue
type User struct {
	ID           int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string `gorm:"type:varchar(255);uniqueIndex;not null" json:"username"`
	PasswordHash string `gorm:"column:password_hash;not null" json:"-"`
	IsAdmin      bool   `gorm:"not null;default:true" json:"is_admin"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
