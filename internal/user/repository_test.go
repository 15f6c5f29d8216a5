package user

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"travelgram/internal/common"
	"travelgram/internal/dbmysql"
)

func setupTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
	}

	return gormDB, mock, cleanup
}

func TestUserRepository_GetUserByID(t *testing.T) {
	gormDB, mock, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewUserRepository(gormDB)
	ctx := context.Background()

	mock.ExpectQuery("SELECT \\* FROM `users` WHERE user_id = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "username", "interests"}).
			AddRow("u1", "anna", `["hiking","museums"]`))

	user, err := repo.GetUserByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "anna", user.Username)
	assert.Equal(t, []string{"hiking", "museums"}, user.Interests)

	mock.ExpectQuery("SELECT \\* FROM `users` WHERE user_id = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}))

	_, err = repo.GetUserByID(ctx, "ghost")
	assert.ErrorIs(t, err, common.ErrNotFound)

	mock.ExpectQuery("SELECT \\* FROM `users`").WillReturnError(errors.New("connection refused"))
	_, err = repo.GetUserByID(ctx, "u1")
	assert.ErrorIs(t, err, common.ErrRepository)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_CreateUser(t *testing.T) {
	gormDB, mock, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewUserRepository(gormDB)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `users`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	require.NoError(t, repo.CreateUser(ctx, &dbmysql.User{UserID: "u1", Username: "anna"}))

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `users`").WillReturnError(&mysqldriver.MySQLError{Number: 1062, Message: "Duplicate entry"})
	mock.ExpectRollback()
	err := repo.CreateUser(ctx, &dbmysql.User{UserID: "u1", Username: "anna"})
	assert.ErrorIs(t, err, common.ErrConflict)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_CheckUserExists(t *testing.T) {
	gormDB, mock, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewUserRepository(gormDB)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `users` WHERE user_id = \\?").
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	exists, err := repo.CheckUserExists(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_SearchByUsername(t *testing.T) {
	gormDB, mock, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewUserRepository(gormDB)

	mock.ExpectQuery("SELECT \\* FROM `users` WHERE LOWER\\(username\\) LIKE \\? ORDER BY username").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "username"}).
			AddRow("u1", "Anna").
			AddRow("u3", "Anil"))

	users, err := repo.SearchByUsername(context.Background(), "AN")
	require.NoError(t, err)
	assert.Len(t, users, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetUsersByIDs_Empty(t *testing.T) {
	gormDB, mock, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewUserRepository(gormDB)

	users, err := repo.GetUsersByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, users)
	// no query issued
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, "an", escapeLike("an"))
	assert.Equal(t, `50\%`, escapeLike("50%"))
	assert.Equal(t, `a\_b`, escapeLike("a_b"))
	assert.Equal(t, `c:\\x`, escapeLike(`c:\x`))
}

func TestFollowRepository(t *testing.T) {
	gormDB, mock, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewFollowRepository(gormDB)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `follows`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	require.NoError(t, repo.Follow(ctx, "u1", "u2"))

	mock.ExpectQuery("SELECT `followee_id` FROM `follows` WHERE follower_id = \\?").
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"followee_id"}).AddRow("u2"))
	ids, err := repo.FollowingIDs(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"u2"}, ids)

	mock.ExpectQuery("SELECT `follower_id` FROM `follows` WHERE followee_id = \\?").
		WithArgs("u2").
		WillReturnRows(sqlmock.NewRows([]string{"follower_id"}).AddRow("u1"))
	ids, err = repo.FollowerIDs(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, ids)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `follows` WHERE follower_id = \\? AND followee_id = \\?").
		WithArgs("u1", "u2").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	require.NoError(t, repo.Unfollow(ctx, "u1", "u2"))

	assert.NoError(t, mock.ExpectationsWereMet())
}
