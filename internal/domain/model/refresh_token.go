package model

import "time"

// 平文トークンは保存せず sha256 のみ
type RefreshToken struct {
	ID        string     `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    int64      `json:"userId" gorm:"not null;index"`
	TokenHash string     `json:"-" gorm:"not null;uniqueIndex"`
	UserAgent string     `json:"userAgent" gorm:"not null"`
	ExpiresAt time.Time  `json:"expiresAt" gorm:"not null;index"`
	UsedAt    *time.Time `json:"usedAt" gorm:"index"`
	RevokedAt *time.Time `json:"revokedAt" gorm:"index"`
	CreatedAt time.Time  `json:"createdAt" gorm:"not null;autoCreateTime"`
	UpdatedAt time.Time  `json:"updatedAt" gorm:"not null;autoUpdateTime"`
}
