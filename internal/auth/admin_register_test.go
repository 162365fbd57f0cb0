package auth

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rkdoors/storefront-backend/internal/users"
	"github.com/rkdoors/storefront-backend/pkg/config"
	"github.com/rkdoors/storefront-backend/pkg/db"
	"github.com/rkdoors/storefront-backend/pkg/db/models"
	pkgerrors "github.com/rkdoors/storefront-backend/pkg/errors"
	"github.com/rkdoors/storefront-backend/pkg/security"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func openAuthDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "auth.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.User{}))
	return conn
}

func TestAdminRegisterCreatesAdmin(t *testing.T) {
	ctx := context.Background()
	conn := openAuthDB(t)
	svc, err := NewAdminRegisterService(AdminRegisterServiceParams{DB: db.NewFromGorm(conn), PasswordConfig: config.PasswordConfig{}})
	require.NoError(t, err)

	created, err := svc.Register(ctx, AdminRegisterRequest{
		DisplayName: "Shop Owner",
		Email:       " Owner@RKDoors.in",
		Password:    "owner-password",
	})
	require.NoError(t, err)
	require.Equal(t, "owner@rkdoors.in", created.Email)
	require.NotNil(t, created.SystemRole)
	require.Equal(t, "admin", *created.SystemRole)

	stored, err := users.NewRepository(conn).FindByEmail(ctx, "owner@rkdoors.in")
	require.NoError(t, err)
	ok, err := security.VerifyPassword("owner-password", stored.PasswordHash)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = svc.Register(ctx, AdminRegisterRequest{DisplayName: "Again", Email: "owner@rkdoors.in", Password: "owner-password"})
	requireCode(t, err, pkgerrors.CodeConflict)
}

func TestAdminRegisterValidates(t *testing.T) {
	svc, err := NewAdminRegisterService(AdminRegisterServiceParams{DB: db.NewFromGorm(openAuthDB(t))})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), AdminRegisterRequest{DisplayName: " ", Email: "a@b.in", Password: "owner-password"})
	requireCode(t, err, pkgerrors.CodeValidation)

	_, err = svc.Register(context.Background(), AdminRegisterRequest{DisplayName: "A", Email: "a@b.in", Password: "short"})
	requireCode(t, err, pkgerrors.CodeValidation)
}
