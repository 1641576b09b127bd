package repositories_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"gameghor/internal/apperr"
	"gameghor/internal/database"
	"gameghor/internal/models"
	"gameghor/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

type repoSet struct {
	games  repositories.GameRepository
	orders repositories.OrderRepository
	users  repositories.UserRepository
}

func eachImplementation(t *testing.T, run func(t *testing.T, repos repoSet)) {
	t.Run("mock", func(t *testing.T) {
		run(t, repoSet{
			games:  repositories.NewMockGameRepository(),
			orders: repositories.NewMockOrderRepository(),
			users:  repositories.NewMockUserRepository(),
		})
	})
	t.Run("gorm", func(t *testing.T) {
		db := openTestDB(t)
		run(t, repoSet{
			games:  repositories.NewGORMGameRepository(db),
			orders: repositories.NewGORMOrderRepository(db),
			users:  repositories.NewGORMUserRepository(db),
		})
	})
}

func TestGameRepository_CRUD(t *testing.T) {
	eachImplementation(t, func(t *testing.T, repos repoSet) {
		chess := &models.Game{Title: "Chess Pro", Price: 10, Platform: models.PlatformPC, Images: models.ImageList{"a.png", "b.png"}, IsActive: true}
		require.NoError(t, repos.games.Create(chess))
		assert.NotEmpty(t, chess.ID)

		fetched, err := repos.games.GetByID(chess.ID)
		require.NoError(t, err)
		assert.Equal(t, "Chess Pro", fetched.Title)
		assert.Equal(t, models.ImageList{"a.png", "b.png"}, fetched.Images)

		fetched.IsActive = false
		fetched.Description = ""
		require.NoError(t, repos.games.Update(fetched))

		updated, err := repos.games.GetByID(chess.ID)
		require.NoError(t, err)
		assert.False(t, updated.IsActive)
		assert.Equal(t, "Chess Pro", updated.Title)

		require.NoError(t, repos.games.Delete(chess.ID))
		_, err = repos.games.GetByID(chess.ID)
		assert.True(t, errors.Is(err, apperr.ErrNotFound))
	})
}

func TestGameRepository_NotFound(t *testing.T) {
	eachImplementation(t, func(t *testing.T, repos repoSet) {
		err := repos.games.Update(&models.Game{ID: "missing", Title: "x"})
		assert.True(t, errors.Is(err, apperr.ErrNotFound))

		err = repos.games.Delete("missing")
		assert.True(t, errors.Is(err, apperr.ErrNotFound))
	})
}

func TestGameRepository_GetActive(t *testing.T) {
	eachImplementation(t, func(t *testing.T, repos repoSet) {
		games := []*models.Game{
			{Title: "PC One", Platform: models.PlatformPC, IsActive: true},
			{Title: "Mobile One", Platform: models.PlatformMobile, IsActive: true},
			{Title: "PC Hidden", Platform: models.PlatformPC, IsActive: false},
			{Title: "PC Two", Platform: models.PlatformPC, IsActive: true},
		}
		for _, g := range games {
			require.NoError(t, repos.games.Create(g))
			time.Sleep(2 * time.Millisecond)
		}

		active, err := repos.games.GetActive("")
		require.NoError(t, err)
		assert.Equal(t, []string{"PC One", "Mobile One", "PC Two"}, titles(active))

		pc, err := repos.games.GetActive(models.PlatformPC)
		require.NoError(t, err)
		assert.Equal(t, []string{"PC One", "PC Two"}, titles(pc))

		all, err := repos.games.GetAll()
		require.NoError(t, err)
		assert.Len(t, all, 4)
	})
}

func TestOrderRepository_StatusCompareAndSet(t *testing.T) {
	eachImplementation(t, func(t *testing.T, repos repoSet) {
		order := &models.Order{GameID: "g1", EmailForDelivery: "b@x.com", NagadNumber: "017", TransactionID: "TX1", Status: models.StatusPending}
		require.NoError(t, repos.orders.Create(order))

		require.NoError(t, repos.orders.UpdateStatus(order.ID, models.StatusPending, models.StatusCompleted))

		err := repos.orders.UpdateStatus(order.ID, models.StatusPending, models.StatusCanceled)
		assert.True(t, errors.Is(err, apperr.ErrInvalidTransition))

		stored, err := repos.orders.GetByID(order.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusCompleted, stored.Status)
		assert.Equal(t, "TX1", stored.TransactionID)

		err = repos.orders.UpdateStatus("missing", models.StatusPending, models.StatusCompleted)
		assert.True(t, errors.Is(err, apperr.ErrNotFound))
	})
}

func TestOrderRepository_GetAllNewestFirst(t *testing.T) {
	eachImplementation(t, func(t *testing.T, repos repoSet) {
		for _, tx := range []string{"TX1", "TX2", "TX3"} {
			require.NoError(t, repos.orders.Create(&models.Order{GameID: "g1", TransactionID: tx, Status: models.StatusPending}))
			time.Sleep(2 * time.Millisecond)
		}

		orders, err := repos.orders.GetAll()
		require.NoError(t, err)
		require.Len(t, orders, 3)
		assert.Equal(t, "TX3", orders[0].TransactionID)
		assert.Equal(t, "TX1", orders[2].TransactionID)
	})
}

func TestUserRepository(t *testing.T) {
	eachImplementation(t, func(t *testing.T, repos repoSet) {
		user := &models.User{Name: "Alice", Email: "a@x.com", Password: "hash"}
		require.NoError(t, repos.users.Create(user))

		byEmail, err := repos.users.GetByEmail("a@x.com")
		require.NoError(t, err)
		assert.Equal(t, user.ID, byEmail.ID)
		assert.False(t, byEmail.IsAdmin)

		require.NoError(t, repos.users.SetAdmin("a@x.com", true))
		byID, err := repos.users.GetByID(user.ID)
		require.NoError(t, err)
		assert.True(t, byID.IsAdmin)

		_, err = repos.users.GetByEmail("nobody@x.com")
		assert.True(t, errors.Is(err, apperr.ErrNotFound))
		assert.True(t, errors.Is(repos.users.SetAdmin("nobody@x.com", true), apperr.ErrNotFound))
	})
}

func titles(games []models.Game) []string {
	out := make([]string, 0, len(games))
	for _, g := range games {
		out = append(out, g.Title)
	}
	return out
}
