package repository

import (
	"context"
	"errors"
	"testing"

	"dating-match-server/internal/models"
	"dating-match-server/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestUserRepository_CreateAndFind(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := &models.User{Name: "Ada", Email: "  Ada@Example.com ", PasswordHash: "h", Role: models.RoleUser, IsActive: true}
	require.NoError(t, repo.Create(ctx, user))
	assert.NotZero(t, user.ID)

	byEmail, err := repo.FindByEmail(ctx, "ADA@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	dup := &models.User{Name: "Other", Email: "ada@example.com", PasswordHash: "h", IsActive: true}
	err = repo.Create(ctx, dup)
	assert.True(t, models.IsCode(err, models.CodeDuplicateAction))

	_, err = repo.FindByID(ctx, 999)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestUserRepository_SaveRoundTripsSets(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := testutil.CreateUserWithFilters(t, db, "Bea", models.FilterSections{
		Entertainment: &models.Entertainment{MusicGenres: []string{"Jazz"}},
	})

	user.LikedUsers.Add(4)
	user.LikedUsers.Add(2)
	user.BlockedUsers.Add(9)
	require.NoError(t, repo.Save(ctx, user))

	got, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.IDSet{4, 2}, got.LikedUsers)
	assert.Equal(t, models.IDSet{9}, got.BlockedUsers)
	assert.Empty(t, got.Matches)
	require.NotNil(t, got.Filters)
	assert.Equal(t, []string{"Jazz"}, got.Filters.Entertainment.Data().MusicGenres)
}

func TestUserRepository_UpdateColumnsLeavesSetsAlone(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := testutil.CreateUser(t, db, "Cal")
	stale, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)

	fresh, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	fresh.Matches.Add(7)
	fresh.ReceivedLikes.Add(7)
	require.NoError(t, repo.Save(ctx, fresh))

	require.NoError(t, repo.UpdateColumns(ctx, stale.ID, map[string]interface{}{"device_token": "tok", "bio": "hi"}))

	got, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.IDSet{7}, got.Matches)
	assert.Equal(t, models.IDSet{7}, got.ReceivedLikes)
	require.NotNil(t, got.DeviceToken)
	assert.Equal(t, "tok", *got.DeviceToken)
	require.NotNil(t, got.Bio)
	assert.Equal(t, "hi", *got.Bio)

	err = repo.UpdateColumns(ctx, 999, map[string]interface{}{"bio": "x"})
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestUserRepository_FindMany(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	a := testutil.CreateUser(t, db, "A")
	b := testutil.CreateUserWithFilters(t, db, "B", models.FilterSections{})
	c := testutil.CreateUser(t, db, "C")
	c.IsActive = false
	require.NoError(t, repo.Save(ctx, c))

	users, err := repo.FindMany(ctx, UserQuery{ExcludeIDs: []uint{a.ID}, WithFilters: true})
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, b.ID, users[0].ID)
	assert.NotNil(t, users[0].Filters)
	assert.Nil(t, users[1].Filters)

	users, err = repo.FindMany(ctx, UserQuery{ActiveOnly: true})
	require.NoError(t, err)
	assert.Len(t, users, 2)

	users, err = repo.FindMany(ctx, UserQuery{IDs: []uint{c.ID}})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "C", users[0].Name)

	users, err = repo.FindMany(ctx, UserQuery{IDs: []uint{}})
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestUserRepository_TransactionRollsBack(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := testutil.CreateUser(t, db, "Cy")
	sentinel := models.NewInvalidStateError("abort")

	err := repo.Transaction(ctx, func(tx UserStore) error {
		u, err := tx.FindByID(ctx, user.ID)
		if err != nil {
			return err
		}
		u.Matches.Add(42)
		if err := tx.Save(ctx, u); err != nil {
			return err
		}
		return sentinel
	})
	assert.True(t, errors.Is(err, sentinel))

	got, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Matches)
}

func TestUserRepository_TransactionLocksRowsOnPostgres(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE "users"."id" = \$1 ORDER BY "users"."id" LIMIT .+ FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email"}).AddRow(7, "Dee", "dee@example.com"))
	mock.ExpectQuery(`SELECT \* FROM "profile_filters" WHERE "profile_filters"."user_id" = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id"}))
	mock.ExpectCommit()

	repo := NewUserRepository(db)
	err = repo.Transaction(context.Background(), func(tx UserStore) error {
		u, err := tx.FindByID(context.Background(), 7)
		if err != nil {
			return err
		}
		assert.Equal(t, "Dee", u.Name)
		return nil
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
