package model

import "time"

// 注文ステータス更新、予約グループ削除など。
type AuditAction string

const (
	AuditActionUpdateOrderStatus       AuditAction = "UPDATE_ORDER_STATUS"
	AuditActionUpdatePaymentStatus     AuditAction = "UPDATE_PAYMENT_STATUS"
	AuditActionUpdateReservationStatus AuditAction = "UPDATE_RESERVATION_STATUS"
	AuditActionDeleteReservationGroup  AuditAction = "DELETE_RESERVATION_GROUP"
	AuditActionSendNotification        AuditAction = "SEND_NOTIFICATION"
	AuditActionCreateProduct           AuditAction = "CREATE_PRODUCT"
	AuditActionUpdateProduct           AuditAction = "UPDATE_PRODUCT"
	AuditActionDeleteProduct           AuditAction = "DELETE_PRODUCT"
	AuditActionForceLogout             AuditAction = "FORCE_LOGOUT"
)

// 何に対する操作か
type AuditResourceType string

const (
	AuditResourceOrder        AuditResourceType = "order"
	AuditResourceReservation  AuditResourceType = "reservation"
	AuditResourceNotification AuditResourceType = "notification"
	AuditResourceUser         AuditResourceType = "user"
	AuditResourceProduct      AuditResourceType = "product"
)

// 監査ログ（管理者操作ログ）。
// 「誰が」「何を」「どの対象に」「どう変えたか」を残す。
type AuditLog struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	//操作したユーザー（主に管理者）のID。
	ActorUserID int64 `gorm:"not null;index" json:"actor_user_id"`

	Action AuditAction `gorm:"type:varchar(50);not null;index" json:"action"`

	ResourceType AuditResourceType `gorm:"type:varchar(50);not null;index" json:"resource_type"`

	//予約グループは先頭行のID
	ResourceID int64 `gorm:"not null;index" json:"resource_id"`

	//JSON文字列で保存する。
	BeforeJSON string `gorm:"type:text" json:"before_json"`
	AfterJSON  string `gorm:"type:text" json:"after_json"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}
