package inventory

import "time"

type Item struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"column:item;type:varchar(255);not null" json:"item" validate:"required"`
	Quantity    int       `gorm:"not null;default:0" json:"quantity" validate:"gte=0"`
	LastUpdated time.Time `gorm:"not null" json:"last_updated"`
}

func (Item) TableName() string { return "inventory" }

type CreateItemRequest struct {
	Item     string `json:"item" binding:"required"`
	Quantity *int   `json:"quantity" binding:"required"`
}

type UpdateItemRequest struct {
	Item     *string `json:"item,omitempty"`
	Quantity *int    `json:"quantity,omitempty"`
}
