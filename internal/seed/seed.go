// Package seed populates a development database with synthetic robots and
// their login accounts so a fresh environment has data to look at.
package seed

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	authrepo "github.com/smartstorage/smartstorage-backend/internal/auth/repository"
	invrepo "github.com/smartstorage/smartstorage-backend/internal/inventory/repository"
	"github.com/smartstorage/smartstorage-backend/pkg/logger"
)

// Development-only credentials. Never enabled outside the development
// environment.
const (
	robotPassword = "robotpassword123"
	adminEmail    = "admin@local"
	adminPassword = "adminpassword123"
)

// Seeder inserts synthetic development data
type Seeder struct {
	userRepo  *authrepo.UserRepository
	robotRepo *invrepo.RobotRepository
	logger    *logger.Logger
}

// New creates a seeder
func New(userRepo *authrepo.UserRepository, robotRepo *invrepo.RobotRepository, log *logger.Logger) *Seeder {
	return &Seeder{
		userRepo:  userRepo,
		robotRepo: robotRepo,
		logger:    log,
	}
}

// Run creates an admin account plus robotCount synthetic robots with robot-role
// logins. Existing accounts are left untouched, so the seeder is safe to run
// on every startup.
func (s *Seeder) Run(ctx context.Context, robotCount int) error {
	if err := s.ensureUser(ctx, adminEmail, adminPassword, "Administrator", authrepo.RoleAdmin); err != nil {
		return err
	}

	for i := 1; i <= robotCount; i++ {
		robotID := fmt.Sprintf("rb-%03d", i)
		email := fmt.Sprintf("%s@robots.local", robotID)

		if err := s.ensureUser(ctx, email, robotPassword, robotID, authrepo.RoleRobot); err != nil {
			return err
		}

		if existing, err := s.robotRepo.GetByID(ctx, robotID); err == nil && existing != nil {
			continue
		}

		zone := "A"
		row, shelf := 1, 1
		robot := &invrepo.Robot{
			ID:           robotID,
			Status:       invrepo.RobotStatusIdle,
			BatteryLevel: 100,
			CurrentZone:  &zone,
			CurrentRow:   &row,
			CurrentShelf: &shelf,
			LastUpdate:   time.Now().UTC(),
		}
		if err := s.robotRepo.Upsert(ctx, robot); err != nil {
			return err
		}
	}

	s.logger.Info().Int("robots", robotCount).Msg("development data seeded")
	return nil
}

func (s *Seeder) ensureUser(ctx context.Context, email, password, name, role string) error {
	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return s.userRepo.Create(ctx, &authrepo.User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		Role:         role,
	})
}
