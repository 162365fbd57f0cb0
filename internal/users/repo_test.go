package users

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rkdoors/storefront-backend/pkg/db"
	"github.com/rkdoors/storefront-backend/pkg/db/models"
	"github.com/rkdoors/storefront-backend/pkg/enums"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "users.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.User{}))
	return conn
}

func TestRepositoryCreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(openTestDB(t))

	admin := enums.SystemRoleAdmin
	created, err := repo.Create(ctx, CreateUserDTO{
		Email:        "  Owner@RKDoors.in ",
		PasswordHash: "hash",
		SystemRole:   &admin,
	})
	require.NoError(t, err)
	require.Equal(t, "owner@rkdoors.in", created.Email)
	require.True(t, created.IsActive)

	byEmail, err := repo.FindByEmail(ctx, "OWNER@rkdoors.in")
	require.NoError(t, err)
	require.Equal(t, created.ID, byEmail.ID)
	require.Equal(t, enums.SystemRoleAdmin, RoleOf(byEmail))

	byID, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created.Email, byID.Email)

	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, repo.UpdateLastLogin(ctx, created.ID, at))
	reloaded, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.LastLoginAt)
	require.True(t, reloaded.LastLoginAt.Equal(at))
}

func TestRepositoryDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(openTestDB(t))

	_, err := repo.Create(ctx, CreateUserDTO{Email: "buyer@example.com", PasswordHash: "x"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, CreateUserDTO{Email: "Buyer@example.com", PasswordHash: "y"})
	require.Error(t, err)
	require.True(t, db.IsUniqueViolation(err, ""))
}

func TestRepositoryMissingUser(t *testing.T) {
	_, err := NewRepository(openTestDB(t)).FindByEmail(context.Background(), "nobody@example.com")
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestRoleOfDefaultsToCustomer(t *testing.T) {
	require.Equal(t, enums.SystemRoleCustomer, RoleOf(&models.User{}))
	bogus := "agent"
	require.Equal(t, enums.SystemRoleCustomer, RoleOf(&models.User{SystemRole: &bogus}))
}
