package domain

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser     Role = "user"
	RolePatient  Role = "patient"
	RoleHospital Role = "hospital"
	RoleAdmin    Role = "admin"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RolePatient, RoleHospital, RoleAdmin:
		return true
	}
	return false
}

// User is an authentication account. Hospital accounts double as the
// facility that appointments and patient affiliations reference.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	Username     string `gorm:"column:username;type:varchar(100);uniqueIndex;not null"`
	PasswordHash string `gorm:"column:password_hash;type:varchar(255);not null"`
	Role         Role   `gorm:"column:role;type:varchar(30);not null;index"`

	// Populated for hospital accounts
	HospitalName    string `gorm:"column:hospital_name;type:varchar(255)"`
	HospitalAddress string `gorm:"column:hospital_address;type:text"`

	// For patient accounts, links to the patient record
	PatientID *uuid.UUID `gorm:"column:patient_id;type:uuid;index"`

	IsActive    bool       `gorm:"column:is_active;default:true;index"`
	LastLoginAt *time.Time `gorm:"column:last_login_at"`
}

func (User) TableName() string {
	return "users"
}

type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	TokenType    string    `json:"token_type"` // Always "Bearer"
}

type Claims struct {
	UserID    uuid.UUID  `json:"sub"`
	Username  string     `json:"username"`
	Role      Role       `json:"role"`
	PatientID *uuid.UUID `json:"patient_id,omitempty"`
}
