package ngo

import "time"

type NGO struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	Name               string    `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Contact            string    `gorm:"type:varchar(255)" json:"contact"`
	LogoRef            string    `gorm:"type:text" json:"logo_ref"`
	AssignedTempleCode *string   `gorm:"type:varchar(64);index" json:"assigned_temple_code"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (NGO) TableName() string { return "ngos" }

type CreateNGORequest struct {
	Name               string  `json:"name" binding:"required"`
	Contact            string  `json:"contact"`
	AssignedTempleCode *string `json:"assigned_temple_code"`
}

// UpdateNGORequest is a partial update. Set ClearAssignment to unassign the
// NGO from its temple.
type UpdateNGORequest struct {
	Name               *string `json:"name,omitempty"`
	Contact            *string `json:"contact,omitempty"`
	AssignedTempleCode *string `json:"assigned_temple_code,omitempty"`
	ClearAssignment    bool    `json:"clear_assignment,omitempty"`
}
