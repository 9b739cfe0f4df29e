package temple

import "time"

// Temple is addressed everywhere by UniqueCode, never by ID.
type Temple struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UniqueCode      string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"unique_code" validate:"required,max=64"`
	Name            string    `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Address         string    `gorm:"type:text" json:"address"`
	Latitude        *float64  `json:"latitude,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Longitude       *float64  `json:"longitude,omitempty" validate:"omitempty,gte=-180,lte=180"`
	IsHistoric      bool      `gorm:"not null;default:false" json:"is_historic"`
	ImageRef        string    `gorm:"type:text" json:"image_ref"`
	DonationPercent float64   `gorm:"not null;default:0" json:"donation_percent" validate:"gte=0,lte=100"`
	DonationPoints  int64     `gorm:"not null;default:0" json:"donation_points"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type CreateTempleRequest struct {
	UniqueCode      string   `json:"unique_code" binding:"required"`
	Name            string   `json:"name" binding:"required"`
	Address         string   `json:"address"`
	Latitude        *float64 `json:"latitude"`
	Longitude       *float64 `json:"longitude"`
	IsHistoric      bool     `json:"is_historic"`
	DonationPercent float64  `json:"donation_percent"`
}

// UpdateTempleRequest is a partial update. UniqueCode is accepted only when it
// matches the temple being updated.
type UpdateTempleRequest struct {
	UniqueCode      *string  `json:"unique_code,omitempty"`
	Name            *string  `json:"name,omitempty"`
	Address         *string  `json:"address,omitempty"`
	Latitude        *float64 `json:"latitude,omitempty"`
	Longitude       *float64 `json:"longitude,omitempty"`
	IsHistoric      *bool    `json:"is_historic,omitempty"`
	DonationPercent *float64 `json:"donation_percent,omitempty"`
}

type ListFilter struct {
	Historic *bool
	Limit    int
}

type AdjustPointsRequest struct {
	Delta int64 `json:"delta" binding:"required"`
}
