package repository

import (
	"context"
	"testing"
	"time"

	"github.com/spssppz/tennisOkt/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStateRepository(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	defer s.Close()

	client := redis.NewClient(&redis.Options{
		Addr: s.Addr(),
	})
	defer client.Close()

	repo := NewRedisStateRepository(client, time.Hour)
	ctx := context.Background()

	t.Run("SetAndGetState", func(t *testing.T) {
		state := &models.UserState{
			UserID:      123,
			CurrentStep: models.StateSelectHour,
			TempData:    map[string]interface{}{"date": "2025-06-08"},
		}

		err := repo.SetState(ctx, state)
		require.NoError(t, err)

		got, err := repo.GetState(ctx, 123)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, state.UserID, got.UserID)
		assert.Equal(t, state.CurrentStep, got.CurrentStep)
		assert.Equal(t, "2025-06-08", got.GetString("date"))
	})

	t.Run("GetNonExistentState", func(t *testing.T) {
		got, err := repo.GetState(ctx, 999)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("ClearState", func(t *testing.T) {
		state := &models.UserState{UserID: 456, CurrentStep: models.StateSelectDate}
		require.NoError(t, repo.SetState(ctx, state))

		require.NoError(t, repo.ClearState(ctx, 456))

		got, _ := repo.GetState(ctx, 456)
		assert.Nil(t, got)
	})

	t.Run("StateTTL", func(t *testing.T) {
		state := &models.UserState{UserID: 777, CurrentStep: models.StateMainMenu}
		require.NoError(t, repo.SetState(ctx, state))

		s.FastForward(2 * time.Hour)

		got, err := repo.GetState(ctx, 777)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("RateLimit", func(t *testing.T) {
		userID := int64(789)
		limit := 2
		window := time.Second

		allowed, err := repo.CheckRateLimit(ctx, userID, limit, window)
		require.NoError(t, err)
		assert.True(t, allowed)

		allowed, err = repo.CheckRateLimit(ctx, userID, limit, window)
		require.NoError(t, err)
		assert.True(t, allowed)

		allowed, err = repo.CheckRateLimit(ctx, userID, limit, window)
		require.NoError(t, err)
		assert.False(t, allowed)

		// После окна счетчик сбрасывается
		s.FastForward(2 * time.Second)
		allowed, err = repo.CheckRateLimit(ctx, userID, limit, window)
		require.NoError(t, err)
		assert.True(t, allowed)
	})
}

func TestRedisStateRepositoryNilClient(t *testing.T) {
	repo := NewRedisStateRepository(nil, time.Hour)
	ctx := context.Background()

	_, err := repo.GetState(ctx, 1)
	assert.Error(t, err)

	err = repo.SetState(ctx, &models.UserState{UserID: 1})
	assert.Error(t, err)

	_, err = repo.CheckRateLimit(ctx, 1, 10, time.Minute)
	assert.Error(t, err)
}

func TestClose(t *testing.T) {
	// Redis опционален, поэтому закрытие должно переживать nil-клиент
	assert.NoError(t, Close(nil))

	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	assert.NoError(t, Close(client))
}
