package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/smallbiznis/livescan/internal/auth/domain"
	"github.com/smallbiznis/livescan/internal/auth/password"
	"github.com/smallbiznis/livescan/internal/auth/session"
	"github.com/smallbiznis/livescan/internal/clock"
	"github.com/smallbiznis/livescan/internal/config"
	"github.com/smallbiznis/livescan/internal/providers/email"
	"github.com/smallbiznis/livescan/pkg/db"
)

const (
	sessionTTL        = 7 * 24 * time.Hour
	minPasswordLength = 8
	resetCodeDigits   = 6
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Clock  clock.Clock
	Repo   domain.Repository
	Email  email.Provider
	Config config.Config
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	repo      domain.Repository
	email     email.Provider
	otpExpiry time.Duration
}

func New(p Params) domain.Service {
	otpExpiry := p.Config.OTPExpiry
	if otpExpiry <= 0 {
		otpExpiry = 10 * time.Minute
	}
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("auth.service"),
		genID:     p.GenID,
		clock:     p.Clock,
		repo:      p.Repo,
		email:     p.Email,
		otpExpiry: otpExpiry,
	}
}

func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResult, error) {
	emailAddr := normalizeEmail(req.Email)
	if emailAddr == "" || req.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindUserByEmail(ctx, s.db, emailAddr)
	if err != nil {
		return nil, err
	}
	if user == nil || !password.Verify(req.Password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}
	if !user.Active {
		return nil, domain.ErrUserDisabled
	}

	token, tokenHash, err := session.NewToken()
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	sess := &domain.Session{
		ID:        s.genID.Generate().Int64(),
		UserID:    user.ID,
		TokenHash: tokenHash,
		ExpiresAt: now.Add(sessionTTL),
		IPAddress: req.IPAddress,
		UserAgent: req.UserAgent,
		CreatedAt: now,
	}
	if err := s.repo.CreateSession(ctx, s.db, sess); err != nil {
		return nil, err
	}

	s.log.Info("login",
		zap.String("user_id", strconv.FormatInt(user.ID, 10)),
		zap.String("email", user.Email),
	)

	return &domain.LoginResult{
		Token:     token,
		ExpiresAt: sess.ExpiresAt,
		User:      s.toResponse(user),
	}, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.repo.DeleteSession(ctx, s.db, session.HashToken(token))
}

func (s *Service) Authenticate(ctx context.Context, token string) (*domain.UserResponse, error) {
	if token == "" {
		return nil, domain.ErrUnauthorized
	}

	sess, err := s.repo.FindSessionByTokenHash(ctx, s.db, session.HashToken(token))
	if err != nil {
		return nil, err
	}
	if sess == nil || !s.clock.Now().Before(sess.ExpiresAt) {
		return nil, domain.ErrUnauthorized
	}

	user, err := s.repo.FindUserByID(ctx, s.db, sess.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.Active {
		return nil, domain.ErrUnauthorized
	}

	resp := s.toResponse(user)
	return &resp, nil
}

func (s *Service) CreateUser(ctx context.Context, req domain.CreateUserRequest) (*domain.UserResponse, error) {
	emailAddr := normalizeEmail(req.Email)
	if emailAddr == "" {
		return nil, domain.ErrInvalidEmail
	}
	if len(req.Password) < minPasswordLength {
		return nil, domain.ErrInvalidPassword
	}

	role := strings.ToUpper(strings.TrimSpace(req.Role))
	if role == "" {
		role = domain.RoleStaff
	}
	if role != domain.RoleAdmin && role != domain.RoleStaff {
		return nil, domain.ErrInvalidRole
	}

	hashed, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	user := &domain.User{
		ID:           s.genID.Generate().Int64(),
		Email:        emailAddr,
		Name:         strings.TrimSpace(req.Name),
		Role:         role,
		PasswordHash: hashed,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.CreateUser(ctx, s.db, user); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrEmailTaken
		}
		return nil, err
	}

	resp := s.toResponse(user)
	return &resp, nil
}

func (s *Service) ListUsers(ctx context.Context) ([]domain.UserResponse, error) {
	users, err := s.repo.FindAllUsers(ctx, s.db)
	if err != nil {
		return nil, err
	}

	resp := make([]domain.UserResponse, 0, len(users))
	for i := range users {
		resp = append(resp, s.toResponse(&users[i]))
	}
	return resp, nil
}

func (s *Service) UpdateUser(ctx context.Context, req domain.UpdateUserRequest) (*domain.UserResponse, error) {
	userID, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	user, err := s.repo.FindUserByID(ctx, s.db, userID.Int64())
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}

	demoting := false
	if req.Role != nil {
		role := strings.ToUpper(strings.TrimSpace(*req.Role))
		if role != domain.RoleAdmin && role != domain.RoleStaff {
			return nil, domain.ErrInvalidRole
		}
		if user.Role == domain.RoleAdmin && role != domain.RoleAdmin {
			demoting = true
		}
		user.Role = role
	}
	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	deactivating := false
	if req.Active != nil {
		if user.Active && !*req.Active && user.Role == domain.RoleAdmin {
			deactivating = true
		}
		user.Active = *req.Active
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if demoting || deactivating {
			remaining, err := s.countOtherActiveAdmins(ctx, tx, user.ID)
			if err != nil {
				return err
			}
			if remaining == 0 {
				return domain.ErrLastAdmin
			}
		}

		user.UpdatedAt = s.clock.Now()
		if err := s.repo.UpdateUser(ctx, tx, user); err != nil {
			return err
		}
		if req.Active != nil && !*req.Active {
			return s.repo.DeleteSessionsForUser(ctx, tx, user.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := s.toResponse(user)
	return &resp, nil
}

func (s *Service) ChangePassword(ctx context.Context, userID int64, req domain.ChangePasswordRequest) error {
	user, err := s.repo.FindUserByID(ctx, s.db, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.ErrNotFound
	}
	if !password.Verify(req.CurrentPassword, user.PasswordHash) {
		return domain.ErrInvalidCredentials
	}
	if len(req.NewPassword) < minPasswordLength {
		return domain.ErrInvalidPassword
	}

	hashed, err := password.Hash(req.NewPassword)
	if err != nil {
		return err
	}

	user.PasswordHash = hashed
	user.UpdatedAt = s.clock.Now()
	return s.repo.UpdateUser(ctx, s.db, user)
}

// ForgotPassword issues a one-time reset code. It intentionally reports
// success for unknown emails so the endpoint cannot be used to probe
// which addresses have accounts.
func (s *Service) ForgotPassword(ctx context.Context, emailAddr string) error {
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" {
		return domain.ErrInvalidEmail
	}

	user, err := s.repo.FindUserByEmail(ctx, s.db, emailAddr)
	if err != nil {
		return err
	}
	if user == nil || !user.Active {
		return nil
	}

	code, err := newResetCode()
	if err != nil {
		return err
	}

	now := s.clock.Now()
	reset := &domain.PasswordReset{
		ID:        s.genID.Generate().Int64(),
		UserID:    user.ID,
		CodeHash:  session.HashToken(code),
		ExpiresAt: now.Add(s.otpExpiry),
		CreatedAt: now,
	}
	if err := s.repo.CreatePasswordReset(ctx, s.db, reset); err != nil {
		return err
	}

	subject := "Your password reset code"
	body := fmt.Sprintf("<p>Your password reset code is <strong>%s</strong>. It expires in %d minutes.</p>",
		code, int(s.otpExpiry.Minutes()))
	if err := s.email.Send(ctx, []string{user.Email}, subject, body); err != nil {
		s.log.Warn("send reset email", zap.Error(err))
	}

	return nil
}

func (s *Service) ResetPassword(ctx context.Context, req domain.ResetPasswordRequest) error {
	emailAddr := normalizeEmail(req.Email)
	if emailAddr == "" {
		return domain.ErrInvalidEmail
	}
	if len(req.NewPassword) < minPasswordLength {
		return domain.ErrInvalidPassword
	}

	user, err := s.repo.FindUserByEmail(ctx, s.db, emailAddr)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.ErrInvalidResetCode
	}

	now := s.clock.Now()
	reset, err := s.repo.FindActivePasswordReset(ctx, s.db, user.ID, now)
	if err != nil {
		return err
	}
	if reset == nil || reset.CodeHash != session.HashToken(strings.TrimSpace(req.Code)) {
		return domain.ErrInvalidResetCode
	}

	hashed, err := password.Hash(req.NewPassword)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.ConsumePasswordReset(ctx, tx, reset.ID, now); err != nil {
			return err
		}
		user.PasswordHash = hashed
		user.UpdatedAt = now
		if err := s.repo.UpdateUser(ctx, tx, user); err != nil {
			return err
		}
		// Every existing session is revoked after a reset.
		return s.repo.DeleteSessionsForUser(ctx, tx, user.ID)
	})
}

func (s *Service) countOtherActiveAdmins(ctx context.Context, tx *gorm.DB, excludeID int64) (int64, error) {
	var count int64
	err := tx.WithContext(ctx).
		Model(&domain.User{}).
		Where("role = ? AND active = ? AND id <> ?", domain.RoleAdmin, true, excludeID).
		Count(&count).Error
	return count, err
}

func (s *Service) toResponse(user *domain.User) domain.UserResponse {
	return domain.UserResponse{
		ID:        strconv.FormatInt(user.ID, 10),
		Email:     user.Email,
		Name:      user.Name,
		Role:      user.Role,
		Active:    user.Active,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

func normalizeEmail(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return ""
	}
	if _, err := mail.ParseAddress(value); err != nil {
		return ""
	}
	return value
}

func newResetCode() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < resetCodeDigits; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", resetCodeDigits, n), nil
}
