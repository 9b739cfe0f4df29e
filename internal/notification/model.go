package notification

import (
	"time"

	"gorm.io/datatypes"
)

const CategoryPoints = "points"

// InAppNotification is a per-profile bell notification. (user_id, event_id)
// is unique so a redelivered event does not notify twice.
type InAppNotification struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	UserID     string         `gorm:"type:varchar(36);not null;uniqueIndex:idx_user_event" json:"user_id" validate:"required"`
	EventID    string         `gorm:"type:varchar(36);not null;uniqueIndex:idx_user_event" json:"event_id" validate:"required"`
	TempleCode string         `gorm:"type:varchar(64);index" json:"temple_code"`
	Title      string         `gorm:"size:150;not null" json:"title" validate:"required"`
	Message    string         `gorm:"type:text;not null" json:"message"`
	Category   string         `gorm:"size:30;not null" json:"category"`
	Payload    datatypes.JSON `json:"payload,omitempty"`
	IsRead     bool           `gorm:"default:false" json:"is_read"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// DeviceToken is an FCM registration token for one of a profile's devices.
type DeviceToken struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      string    `gorm:"type:varchar(36);not null;index" json:"user_id" validate:"required"`
	DeviceToken string    `gorm:"size:255;not null;uniqueIndex" json:"device_token" validate:"required"`
	DeviceType  string    `gorm:"size:20" json:"device_type"`
	DeviceName  string    `gorm:"size:100" json:"device_name"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`
	LastUsedAt  time.Time `json:"last_used_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type RegisterDeviceRequest struct {
	DeviceToken string `json:"device_token" binding:"required"`
	DeviceType  string `json:"device_type" binding:"omitempty,oneof=android ios web"`
	DeviceName  string `json:"device_name"`
}

// DeliveryReport summarizes one event's fan-out.
type DeliveryReport struct {
	Recipients  int `json:"recipients"`
	Stored      int `json:"stored"`
	Pushed      int `json:"pushed"`
	PushFailed  int `json:"push_failed"`
	Deactivated int `json:"deactivated"`
}
