package service

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/smallbiznis/livescan/internal/auth/domain"
	"github.com/smallbiznis/livescan/internal/auth/repository"
	"github.com/smallbiznis/livescan/internal/clock"
	"github.com/smallbiznis/livescan/internal/config"
)

type capturingEmail struct {
	to      []string
	subject string
	body    string
}

func (c *capturingEmail) Send(ctx context.Context, to []string, subject string, htmlBody string) error {
	c.to = to
	c.subject = subject
	c.body = htmlBody
	return nil
}

var codePattern = regexp.MustCompile(`\d{6}`)

func newTestService(t *testing.T, fc *clock.FakeClock) (domain.Service, *capturingEmail, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}, &domain.Session{}, &domain.PasswordReset{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	mailer := &capturingEmail{}
	svc := New(Params{
		DB:     db,
		Log:    zap.NewNop(),
		GenID:  node,
		Clock:  fc,
		Repo:   repository.Provide(),
		Email:  mailer,
		Config: config.Config{OTPExpiry: 10 * time.Minute},
	})
	return svc, mailer, db
}

func TestLoginAndAuthenticate(t *testing.T) {
	fc := clock.NewFakeClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	svc, _, _ := newTestService(t, fc)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, domain.CreateUserRequest{
		Email:    "Admin@Example.com",
		Name:     "Admin",
		Role:     "ADMIN",
		Password: "correct horse",
	})
	require.NoError(t, err)

	res, err := svc.Login(ctx, domain.LoginRequest{Email: "admin@example.com", Password: "correct horse"})
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)
	require.Equal(t, "ADMIN", res.User.Role)

	user, err := svc.Authenticate(ctx, res.Token)
	require.NoError(t, err)
	require.Equal(t, "admin@example.com", user.Email)

	_, err = svc.Login(ctx, domain.LoginRequest{Email: "admin@example.com", Password: "wrong"})
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestAuthenticateExpiredSession(t *testing.T) {
	fc := clock.NewFakeClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	svc, _, _ := newTestService(t, fc)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, domain.CreateUserRequest{
		Email:    "staff@example.com",
		Password: "long enough",
	})
	require.NoError(t, err)

	res, err := svc.Login(ctx, domain.LoginRequest{Email: "staff@example.com", Password: "long enough"})
	require.NoError(t, err)

	fc.Advance(7*24*time.Hour + time.Minute)

	_, err = svc.Authenticate(ctx, res.Token)
	require.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestLoginDisabledUser(t *testing.T) {
	fc := clock.NewFakeClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	svc, _, db := newTestService(t, fc)
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, domain.CreateUserRequest{
		Email:    "staff@example.com",
		Password: "long enough",
	})
	require.NoError(t, err)

	require.NoError(t, db.Model(&domain.User{}).Where("email = ?", created.Email).Update("active", false).Error)

	_, err = svc.Login(ctx, domain.LoginRequest{Email: "staff@example.com", Password: "long enough"})
	require.ErrorIs(t, err, domain.ErrUserDisabled)
}

func TestCreateUserValidation(t *testing.T) {
	fc := clock.NewFakeClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	svc, _, _ := newTestService(t, fc)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, domain.CreateUserRequest{Email: "not-an-email", Password: "long enough"})
	require.ErrorIs(t, err, domain.ErrInvalidEmail)

	_, err = svc.CreateUser(ctx, domain.CreateUserRequest{Email: "a@b.com", Password: "short"})
	require.ErrorIs(t, err, domain.ErrInvalidPassword)

	_, err = svc.CreateUser(ctx, domain.CreateUserRequest{Email: "a@b.com", Password: "long enough", Role: "OWNER"})
	require.ErrorIs(t, err, domain.ErrInvalidRole)

	_, err = svc.CreateUser(ctx, domain.CreateUserRequest{Email: "a@b.com", Password: "long enough"})
	require.NoError(t, err)

	_, err = svc.CreateUser(ctx, domain.CreateUserRequest{Email: "A@B.com", Password: "long enough"})
	require.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestUpdateUserLastAdminGuard(t *testing.T) {
	fc := clock.NewFakeClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	svc, _, _ := newTestService(t, fc)
	ctx := context.Background()

	admin, err := svc.CreateUser(ctx, domain.CreateUserRequest{
		Email:    "admin@example.com",
		Role:     "ADMIN",
		Password: "long enough",
	})
	require.NoError(t, err)

	staffRole := "STAFF"
	_, err = svc.UpdateUser(ctx, domain.UpdateUserRequest{ID: admin.ID, Role: &staffRole})
	require.ErrorIs(t, err, domain.ErrLastAdmin)

	inactive := false
	_, err = svc.UpdateUser(ctx, domain.UpdateUserRequest{ID: admin.ID, Active: &inactive})
	require.ErrorIs(t, err, domain.ErrLastAdmin)

	_, err = svc.CreateUser(ctx, domain.CreateUserRequest{
		Email:    "second@example.com",
		Role:     "ADMIN",
		Password: "long enough",
	})
	require.NoError(t, err)

	updated, err := svc.UpdateUser(ctx, domain.UpdateUserRequest{ID: admin.ID, Role: &staffRole})
	require.NoError(t, err)
	require.Equal(t, "STAFF", updated.Role)
}

func TestPasswordResetFlow(t *testing.T) {
	fc := clock.NewFakeClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	svc, mailer, _ := newTestService(t, fc)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, domain.CreateUserRequest{
		Email:    "staff@example.com",
		Password: "old password",
	})
	require.NoError(t, err)

	res, err := svc.Login(ctx, domain.LoginRequest{Email: "staff@example.com", Password: "old password"})
	require.NoError(t, err)

	require.NoError(t, svc.ForgotPassword(ctx, "staff@example.com"))
	require.Equal(t, []string{"staff@example.com"}, mailer.to)

	code := codePattern.FindString(mailer.body)
	require.Len(t, code, 6)

	err = svc.ResetPassword(ctx, domain.ResetPasswordRequest{
		Email:       "staff@example.com",
		Code:        "000000",
		NewPassword: "new password",
	})
	if code != "000000" {
		require.ErrorIs(t, err, domain.ErrInvalidResetCode)
	}

	require.NoError(t, svc.ResetPassword(ctx, domain.ResetPasswordRequest{
		Email:       "staff@example.com",
		Code:        code,
		NewPassword: "new password",
	}))

	// Reset revokes existing sessions and the code is single use.
	_, err = svc.Authenticate(ctx, res.Token)
	require.ErrorIs(t, err, domain.ErrUnauthorized)

	err = svc.ResetPassword(ctx, domain.ResetPasswordRequest{
		Email:       "staff@example.com",
		Code:        code,
		NewPassword: "another password",
	})
	require.ErrorIs(t, err, domain.ErrInvalidResetCode)

	_, err = svc.Login(ctx, domain.LoginRequest{Email: "staff@example.com", Password: "new password"})
	require.NoError(t, err)
}

func TestPasswordResetExpires(t *testing.T) {
	fc := clock.NewFakeClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	svc, mailer, _ := newTestService(t, fc)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, domain.CreateUserRequest{
		Email:    "staff@example.com",
		Password: "old password",
	})
	require.NoError(t, err)

	require.NoError(t, svc.ForgotPassword(ctx, "staff@example.com"))
	code := codePattern.FindString(mailer.body)

	fc.Advance(11 * time.Minute)

	err = svc.ResetPassword(ctx, domain.ResetPasswordRequest{
		Email:       "staff@example.com",
		Code:        code,
		NewPassword: "new password",
	})
	require.ErrorIs(t, err, domain.ErrInvalidResetCode)
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	fc := clock.NewFakeClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	svc, mailer, _ := newTestService(t, fc)

	require.NoError(t, svc.ForgotPassword(context.Background(), "nobody@example.com"))
	require.Empty(t, mailer.to)
}
