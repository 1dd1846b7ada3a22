package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dungeon-server/internal/domain"
	"dungeon-server/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadMissingFilesUsesDefaults(t *testing.T) {
	gd, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 10, gd.Settings.InitialAttributes)
	assert.Equal(t, 6, gd.Settings.Biomes.Count)
	assert.Equal(t, 24, gd.Settings.Biomes.Radius)
	assert.Equal(t, 3, gd.Settings.Walls.HPBase)
	assert.Equal(t, 1, gd.Settings.Walls.HPPerBiome)
	assert.Equal(t, "reveal", gd.Settings.Visibility.Mode)
	assert.True(t, gd.Settings.EnemiesMove())
	assert.Empty(t, gd.Items)
	assert.Empty(t, gd.EnemyTypes)
}

func TestLoadOverlay(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "game_config.json", `{
		"initial_attributes_count": 20,
		"speed": {"maxspeedpermove": 0.5, "minspeed": 2, "max_speed_stat": 16, "min_speed_stat": 1},
		"enemies": {"move": false}
	}`)
	writeFile(t, dir, "items.json", `[
		{"id": "pickaxe_basic", "name": "Pickaxe",
		 "allowed_slots": ["left_hand", "right_hand"],
		 "stats": {"weight": 2, "durability": 30, "wall_damage": 7},
		 "active": true}
	]`)
	writeFile(t, dir, "wall_types.json", `[
		{"id": "stone", "durability": 20, "damaged": 5, "biomes": [1, 2]}
	]`)
	writeFile(t, dir, "enemy_types.json", `[
		{"type": "slime_green", "name": "Green Slime",
		 "stats": {"health": 10, "attack": 3, "defense": 1},
		 "ai": {"notice_radius": 8, "fov_deg": 360},
		 "description_core": "A wobbling mass.",
		 "description_fears": "It trembles before {item}.",
		 "fears": ["torch"]}
	]`)
	writeFile(t, dir, "map_entities.json", `[
		{"kind": "chest", "x": 5, "y": 5},
		{"kind": "item", "item_id": "pickaxe_basic", "x": 7, "y": 3}
	]`)

	gd, err := Load(dir)
	require.NoError(t, err)

	// Оверлей перекрывает только то, что задано
	assert.Equal(t, 20, gd.Settings.InitialAttributes)
	assert.Equal(t, 0.5, gd.Settings.Speed.DurationAtMax)
	assert.False(t, gd.Settings.EnemiesMove())
	assert.Equal(t, 6, gd.Settings.Biomes.Count)

	require.Len(t, gd.Items, 1)
	assert.Equal(t, "pickaxe_basic", gd.Items[0].ID)
	assert.Equal(t, 7, gd.Items[0].Stats.WallDamage)
	assert.True(t, gd.Items[0].Spawnable())

	require.Len(t, gd.WallTypes, 1)
	assert.Equal(t, 5, gd.WallTypes[0].ToolDamage())

	require.Len(t, gd.EnemyTypes, 1)
	assert.Equal(t, "slime_green", gd.EnemyTypes[0].ID)
	assert.Equal(t, "It trembles before {item}.", gd.EnemyTypes[0].Fears)
	assert.Equal(t, []string{"torch"}, gd.EnemyTypes[0].FearPool)

	require.Len(t, gd.Placements, 2)
	assert.Equal(t, "chest", gd.Placements[0].Kind)
}

func TestLoadBrokenJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "items.json", `[{"id": "oops"`)

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "items.json")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*GameData)
		wantErr string
	}{
		{
			name: "speed bounds inverted",
			mutate: func(gd *GameData) {
				gd.Settings.Speed.MaxStat = 1
				gd.Settings.Speed.MinStat = 16
			},
			wantErr: "max_speed_stat",
		},
		{
			name: "duration bounds inverted",
			mutate: func(gd *GameData) {
				gd.Settings.Speed.DurationAtMin = 0.5
				gd.Settings.Speed.DurationAtMax = 2
			},
			wantErr: "minspeed",
		},
		{
			name: "duplicate item id",
			mutate: func(gd *GameData) {
				gd.Items = append(gd.Items, gd.Items[0])
			},
			wantErr: "duplicate id",
		},
		{
			name: "empty item id",
			mutate: func(gd *GameData) {
				gd.Items[0].ID = ""
			},
			wantErr: "empty id",
		},
		{
			name: "non-positive enemy health",
			mutate: func(gd *GameData) {
				gd.EnemyTypes[0].Stats.Health = 0
			},
			wantErr: "non-positive health",
		},
		{
			name: "empty wall id",
			mutate: func(gd *GameData) {
				gd.WallTypes[0].ID = ""
			},
			wantErr: "wall_types",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gd := validGameData()
			tt.mutate(gd)
			err := gd.validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("valid data passes", func(t *testing.T) {
		require.NoError(t, validGameData().validate())
	})
}

func validGameData() *GameData {
	return &GameData{
		Settings: Default(),
		Items: []domain.ItemType{
			{ID: "pickaxe_basic", Name: "Pickaxe", Active: true,
				AllowedSlots: []domain.Slot{domain.SlotRightHand},
				Stats:        domain.ItemStats{Weight: 2, Durability: 30, WallDamage: 7}},
		},
		WallTypes: []domain.WallType{
			{ID: "stone", Durability: 20, Damaged: 5},
		},
		EnemyTypes: []domain.EnemyType{
			{ID: "slime_green", Name: "Green Slime",
				Stats: domain.EnemyStats{Health: 10, Attack: 3, Defense: 1}},
		},
	}
}
