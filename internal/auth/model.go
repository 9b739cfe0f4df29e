package auth

import "time"

const (
	RoleAdmin  = "admin"
	RoleNGO    = "ngo"
	RoleTemple = "temple"
)

// User holds login credentials. The matching Profile shares its ID and is
// written separately, so it can lag behind a fresh signup.
type User struct {
	ID           string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email" validate:"required,email"`
	PasswordHash string    `gorm:"not null" json:"-" validate:"required"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string { return "users" }

// Profile carries the role. A profile's role is set once at signup and never
// re-derived.
type Profile struct {
	ID         string    `gorm:"type:varchar(36);primaryKey" json:"id" validate:"required"`
	Email      string    `gorm:"type:varchar(255);not null" json:"email"`
	Role       string    `gorm:"type:varchar(20);not null;index" json:"role" validate:"required"`
	FullName   string    `gorm:"type:varchar(255)" json:"full_name"`
	Phone      string    `gorm:"type:varchar(32)" json:"phone"`
	TempleCode *string   `gorm:"type:varchar(64);index" json:"temple_code,omitempty"`
	NGOID      *uint     `gorm:"column:ngo_id;index" json:"ngo_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (Profile) TableName() string { return "profiles" }

// Principal is the resolved caller of a request.
type Principal struct {
	ID         string  `json:"id"`
	Email      string  `json:"email"`
	Role       string  `json:"role"`
	FullName   string  `json:"full_name"`
	Phone      string  `json:"phone,omitempty"`
	TempleCode *string `json:"temple_code,omitempty"`
	NGOID      *uint   `json:"ngo_id,omitempty"`
}

func (p *Profile) Principal() *Principal {
	return &Principal{
		ID:         p.ID,
		Email:      p.Email,
		Role:       p.Role,
		FullName:   p.FullName,
		Phone:      p.Phone,
		TempleCode: p.TempleCode,
		NGOID:      p.NGOID,
	}
}

type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Session is what a successful sign-in returns.
type Session struct {
	TokenPair
	Principal *Principal `json:"principal"`
	Landing   string     `json:"landing"`
}

type SignUpInput struct {
	Email    string `json:"email" binding:"required,email" example:"seva@example.org"`
	Password string `json:"password" binding:"required,min=8" example:"secret123"`
	Role     string `json:"role" binding:"required,oneof=ngo temple admin" example:"temple"`
	FullName string `json:"full_name" example:"Lakshmi Rao"`
	Phone    string `json:"phone" example:"+919876543210"`
}

type SignInInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LinkInput struct {
	TempleCode *string `json:"temple_code"`
	NGOID      *uint   `json:"ngo_id"`
}

const (
	EventSignedIn  = "signed_in"
	EventSignedOut = "signed_out"
	EventRefreshed = "token_refreshed"
)

type SessionEvent struct {
	UserID string    `json:"user_id"`
	Type   string    `json:"type"`
	At     time.Time `json:"at"`
}
