package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/dom/roleplay-api/internal/domain"
	"github.com/dom/roleplay-api/internal/repository/postgres"
	"github.com/dom/roleplay-api/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestGroupRepository_CreateAndGet(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	tx := testDB.Tx(t)
	repo := postgres.NewGroupRepository(tx)
	ctx := context.Background()

	master, _ := testutil.NewUserBuilder().Build(t, tx)

	group := &domain.Group{
		ID:          uuid.New(),
		Name:        "Curse of Strahd",
		Description: "gothic horror",
		Schedule:    "fridays",
		Location:    "online",
		Chronic:     "barovia",
		Master:      master.ID,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	require.NoError(t, repo.Create(ctx, group))
	require.NoError(t, repo.AddPlayer(ctx, group.ID, master.ID))

	got, err := repo.GetByID(ctx, group.ID)
	require.NoError(t, err)
	assert.Equal(t, "Curse of Strahd", got.Name)
	require.NotNil(t, got.MasterUser)
	assert.Equal(t, master.ID, got.MasterUser.ID)
	require.Len(t, got.Players, 1)
	assert.Equal(t, master.ID, got.Players[0].ID)

	_, err = repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestGroupRepository_Players(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	tx := testDB.Tx(t)
	repo := postgres.NewGroupRepository(tx)
	ctx := context.Background()

	group := testutil.NewGroupBuilder().Build(t, tx)
	player, _ := testutil.NewUserBuilder().Build(t, tx)

	t.Run("add player is idempotent", func(t *testing.T) {
		require.NoError(t, repo.AddPlayer(ctx, group.ID, player.ID))
		require.NoError(t, repo.AddPlayer(ctx, group.ID, player.ID))

		got, err := repo.GetByID(ctx, group.ID)
		require.NoError(t, err)
		assert.Len(t, got.Players, 2)
		assert.True(t, got.HasPlayer(player.ID))
	})

	t.Run("is player", func(t *testing.T) {
		isPlayer, err := repo.IsPlayer(ctx, group.ID, player.ID)
		require.NoError(t, err)
		assert.True(t, isPlayer)

		isPlayer, err = repo.IsPlayer(ctx, group.ID, uuid.New())
		require.NoError(t, err)
		assert.False(t, isPlayer)
	})

	t.Run("remove player", func(t *testing.T) {
		require.NoError(t, repo.RemovePlayer(ctx, group.ID, player.ID))

		got, err := repo.GetByID(ctx, group.ID)
		require.NoError(t, err)
		assert.Len(t, got.Players, 1)
		assert.False(t, got.HasPlayer(player.ID))
	})
}

func TestGroupRepository_List(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	tx := testDB.Tx(t)
	repo := postgres.NewGroupRepository(tx)
	ctx := context.Background()

	player, _ := testutil.NewUserBuilder().Build(t, tx)
	joined := testutil.NewGroupBuilder().WithPlayers(player).Build(t, tx)
	testutil.NewGroupBuilder().Build(t, tx)

	t.Run("all groups", func(t *testing.T) {
		groups, err := repo.List(ctx, nil)
		require.NoError(t, err)
		assert.Len(t, groups, 2)
	})

	t.Run("groups of a player", func(t *testing.T) {
		groups, err := repo.List(ctx, &player.ID)
		require.NoError(t, err)
		require.Len(t, groups, 1)
		assert.Equal(t, joined.ID, groups[0].ID)
		assert.Len(t, groups[0].Players, 2)
		assert.NotNil(t, groups[0].MasterUser)
	})
}

func TestGroupRepository_Delete(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	tx := testDB.Tx(t)
	repo := postgres.NewGroupRepository(tx)
	ctx := context.Background()

	player, _ := testutil.NewUserBuilder().Build(t, tx)
	group := testutil.NewGroupBuilder().WithPlayers(player).Build(t, tx)
	testutil.NewGroupRequestBuilder().WithGroup(group).Build(t, tx)

	require.NoError(t, repo.Delete(ctx, group.ID))

	_, err := repo.GetByID(ctx, group.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var memberships, requests int64
	require.NoError(t, tx.Table("group_players").Where("group_id = ?", group.ID).Count(&memberships).Error)
	require.NoError(t, tx.Model(&domain.GroupRequest{}).Where("group_id = ?", group.ID).Count(&requests).Error)
	assert.Zero(t, memberships)
	assert.Zero(t, requests)

	assert.ErrorIs(t, repo.Delete(ctx, group.ID), gorm.ErrRecordNotFound)
}
