package models

import (
	"time"

	"github.com/google/uuid"
)

type RegisterType string

const (
	RegisterTypeNormal   RegisterType = "normal"
	RegisterTypeExternal RegisterType = "external"
)

type User struct {
	ID           uuid.UUID    `json:"id"`
	Username     string       `json:"username"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"` // empty for externally-authenticated accounts
	RegisterType RegisterType `json:"registerType"`
	Title        string       `json:"title"`
	Avatar       string       `json:"avatar"`
	Banner       string       `json:"banner"`
	WorkStart    *time.Time   `json:"workStart"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}
