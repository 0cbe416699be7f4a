package repository

import (
	"context"
	"regexp"
	"testing"

	"prok/internal/cache"
	"prok/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func TestUserRepository_GetByUsernameOrEmail(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := &models.User{Username: "carol", Email: "carol@example.com", Password: "x"}
	require.NoError(t, db.Create(user).Error)

	byUsername, err := repo.GetByUsernameOrEmail(ctx, "carol")
	require.NoError(t, err)
	require.NotNil(t, byUsername)
	assert.Equal(t, user.ID, byUsername.ID)

	byEmail, err := repo.GetByUsernameOrEmail(ctx, "carol@example.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, user.ID, byEmail.ID)

	// Unknown identifiers are not an error, just a nil user.
	missing, err := repo.GetByUsernameOrEmail(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUserRepository_ExistsByUsernameOrEmail(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	require.NoError(t, db.Create(&models.User{
		Username: "dave", Email: "dave@example.com", Password: "x",
	}).Error)

	exists, err := repo.ExistsByUsernameOrEmail(ctx, "dave", "other@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByUsernameOrEmail(ctx, "other", "dave@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByUsernameOrEmail(ctx, "other", "other@example.com")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)

	_, err := repo.GetByID(context.Background(), 404)
	require.Error(t, err)

	appErr, ok := err.(*models.AppError)
	require.True(t, ok)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestUserRepository_Update(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := &models.User{Username: "erin", Email: "erin@example.com", Password: "x"}
	require.NoError(t, db.Create(user).Error)

	user.Bio = "Updated bio"
	require.NoError(t, repo.Update(ctx, user))

	reloaded, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Updated bio", reloaded.Bio)
}

func TestUserRepository_UpdatePreservesPasswordAfterCachedRead(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	mr := miniredis.RunT(t)
	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { cache.SetClient(nil) })

	user := &models.User{Username: "grace", Email: "grace@example.com", Password: "bcrypt-hash"}
	require.NoError(t, db.Create(user).Error)

	// First read warms the cache. The cached JSON has no password field.
	warmed, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "grace", warmed.Username)
	require.True(t, mr.Exists(cache.UserKey(user.ID)))

	// Edit through the update path while the cache entry is still live.
	fresh, err := repo.GetForUpdate(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "bcrypt-hash", fresh.Password)
	fresh.Bio = "Updated bio"
	require.NoError(t, repo.Update(ctx, fresh))

	// The update dropped the cached copy.
	assert.False(t, mr.Exists(cache.UserKey(user.ID)))

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	assert.Equal(t, "Updated bio", reloaded.Bio)
	assert.Equal(t, "bcrypt-hash", reloaded.Password, "saving an edit must not blank the stored hash")
}

func TestUserRepository_Create_SQL(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "users"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	err := repo.Create(context.Background(), &models.User{
		Username: "frank", Email: "frank@example.com", Password: "x",
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
