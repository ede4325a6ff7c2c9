package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	CreateUser(ctx context.Context, db *gorm.DB, user *User) error
	FindUserByID(ctx context.Context, db *gorm.DB, id int64) (*User, error)
	FindUserByEmail(ctx context.Context, db *gorm.DB, email string) (*User, error)
	FindAllUsers(ctx context.Context, db *gorm.DB) ([]User, error)
	UpdateUser(ctx context.Context, db *gorm.DB, user *User) error

	CreateSession(ctx context.Context, db *gorm.DB, session *Session) error
	FindSessionByTokenHash(ctx context.Context, db *gorm.DB, tokenHash string) (*Session, error)
	DeleteSession(ctx context.Context, db *gorm.DB, tokenHash string) error
	DeleteSessionsForUser(ctx context.Context, db *gorm.DB, userID int64) error
	DeleteExpiredSessions(ctx context.Context, db *gorm.DB, now time.Time) (int64, error)

	CreatePasswordReset(ctx context.Context, db *gorm.DB, reset *PasswordReset) error
	FindActivePasswordReset(ctx context.Context, db *gorm.DB, userID int64, now time.Time) (*PasswordReset, error)
	ConsumePasswordReset(ctx context.Context, db *gorm.DB, id int64, now time.Time) error
}
