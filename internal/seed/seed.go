// Package seed prepares a freshly created database: schema for the
// non-postgres dialects and the bootstrap administrator account.
package seed

import (
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	auditdomain "github.com/smallbiznis/livescan/internal/audit/domain"
	authdomain "github.com/smallbiznis/livescan/internal/auth/domain"
	"github.com/smallbiznis/livescan/internal/auth/password"
	catalogdomain "github.com/smallbiznis/livescan/internal/catalog/domain"
	"github.com/smallbiznis/livescan/internal/config"
	exportdomain "github.com/smallbiznis/livescan/internal/export/domain"
	recorddomain "github.com/smallbiznis/livescan/internal/servicerecord/domain"
)

// AutoMigrate creates the schema from the gorm models. Postgres runs
// the SQL migrations instead; this path serves sqlite and mysql.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&authdomain.User{},
		&authdomain.Session{},
		&authdomain.PasswordReset{},
		&catalogdomain.Organization{},
		&catalogdomain.Service{},
		&catalogdomain.Fee{},
		&catalogdomain.Technician{},
		&recorddomain.ServiceRecord{},
		&exportdomain.ExportBatch{},
		&auditdomain.AuditLog{},
	)
}

// EnsureAdminUser creates the bootstrap administrator when configured
// and no user with that email exists yet. Existing users are left
// untouched, so a changed bootstrap password never overwrites one
// rotated through the app.
func EnsureAdminUser(db *gorm.DB, cfg config.Config) error {
	email := strings.ToLower(strings.TrimSpace(cfg.BootstrapAdminEmail))
	if email == "" || cfg.BootstrapAdminPassword == "" {
		return nil
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var existing authdomain.User
		err := tx.Where("email = ?", email).First(&existing).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		hash, err := password.Hash(cfg.BootstrapAdminPassword)
		if err != nil {
			return err
		}

		return tx.Create(&authdomain.User{
			ID:           node.Generate().Int64(),
			Email:        email,
			Name:         "Administrator",
			Role:         authdomain.RoleAdmin,
			PasswordHash: hash,
			Active:       true,
		}).Error
	})
}
