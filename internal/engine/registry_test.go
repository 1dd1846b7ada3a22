package engine

import (
	"math/rand"
	"testing"

	"dungeon-server/internal/config"
	"dungeon-server/internal/domain"
	"dungeon-server/pkg/dungeon"
)

func TestRegistryPopulate(t *testing.T) {
	data := testGameData()
	data.Settings.Spawns = config.SpawnsConfig{RandomItems: 5, RandomEnemies: 3}
	data.Placements = []config.MapEntity{
		{Kind: "item", ItemID: "torch", X: 30, Y: 30},
		{Kind: "item", ItemID: "no_such_item", X: 31, Y: 30}, // должен быть пропущен
		{Kind: "enemy", EnemyID: "slime_green", X: 32, Y: 30},
	}
	rng := rand.New(rand.NewSource(9))
	world := dungeon.Generate(rng, data.Settings.Biomes.Count, data.Settings.Biomes.Radius)
	reg := NewRegistry(data, world, rng)

	reg.Populate()

	// Один спаунер на центр биома
	spawners := 0
	for _, e := range reg.Entities {
		if e.Kind == domain.EntitySpawner {
			spawners++
		}
	}
	if spawners == 0 || spawners > len(world.Centers) {
		t.Errorf("spawners = %d, biome centers = %d", spawners, len(world.Centers))
	}

	// Битая расстановка пропущена, остальные на месте
	found := false
	for _, e := range reg.Entities {
		if e.ItemTypeID == "no_such_item" {
			t.Error("unknown item placement must be skipped")
		}
		if e.ItemTypeID == "torch" && e.Pos.X == 30 {
			found = true
		}
	}
	if !found {
		t.Error("valid placement missing from the world")
	}

	// Случайные спавны: 5 предметов + 1 из расстановки, 3+1 врагов
	items := 0
	for _, e := range reg.Entities {
		if e.Kind == domain.EntityItem {
			items++
		}
	}
	if items != 6 {
		t.Errorf("items = %d, want 6", items)
	}
	if len(reg.Enemies) != 4 {
		t.Errorf("enemies = %d, want 4", len(reg.Enemies))
	}
}

func TestRegistrySpawnerLinkage(t *testing.T) {
	data := testGameData()
	biome := 2
	data.EnemyTypes[0].SpawnerBiome = &biome
	data.Settings.Spawns = config.SpawnsConfig{RandomEnemies: 3}

	rng := rand.New(rand.NewSource(7))
	world := dungeon.Generate(rng, data.Settings.Biomes.Count, data.Settings.Biomes.Radius)
	reg := NewRegistry(data, world, rng)
	reg.Populate()

	var spawner *domain.WorldEntity
	for _, e := range reg.Entities {
		if e.Kind == domain.EntitySpawner && e.BiomeID == biome {
			spawner = e
			break
		}
	}
	if spawner == nil {
		t.Fatal("biome 2 must get a spawner at its center")
	}

	for _, enemy := range reg.Enemies {
		if enemy.SpawnerPos == nil {
			t.Fatal("biome-bound enemy must record its spawner position")
		}
		if *enemy.SpawnerPos != spawner.Pos {
			t.Errorf("spawner pos = %+v, want %+v", *enemy.SpawnerPos, spawner.Pos)
		}
		if world.IsWall(enemy.Pos.X, enemy.Pos.Y) {
			t.Errorf("enemy spawned inside a wall at %+v", enemy.Pos)
		}
	}
}

func TestRegistryAffinityGuarantee(t *testing.T) {
	data := testGameData()
	// Пул ссылается на несуществующие предметы, но шаблон грани есть:
	// аффинити обязана разрешиться запасным предметом каталога
	data.EnemyTypes[0].FearPool = []string{"missing_a", "missing_b"}

	rng := rand.New(rand.NewSource(2))
	world := dungeon.Generate(rng, data.Settings.Biomes.Count, data.Settings.Biomes.Radius)
	reg := NewRegistry(data, world, rng)

	enemy := reg.SpawnEnemy("slime_green", reg.RandomEmptyCell())
	if enemy == nil {
		t.Fatal("spawn failed")
	}
	aff := enemy.Affinity
	if aff.Desire == "" && aff.Fear == "" && aff.Vulnerable == "" {
		t.Error("enemy with facet templates must get at least one resolvable affinity")
	}
}

func TestRegistryInstances(t *testing.T) {
	reg := testRegistry(t)

	inst := reg.NewItemInstance("pickaxe_basic")
	if inst == nil {
		t.Fatal("instance creation failed")
	}
	if inst.Durability != 30 {
		t.Errorf("durability = %d, want type base 30", inst.Durability)
	}

	other := reg.NewItemInstance("torch")
	if other.ID == inst.ID {
		t.Error("instance ids must be unique within a session")
	}

	if reg.NewItemInstance("no_such_type") != nil {
		t.Error("unknown type must yield nil instance")
	}

	reg.RemoveInstance(inst.ID)
	if reg.Instance(inst.ID) != nil {
		t.Error("removed instance must not resolve")
	}
}

func TestWallTypeFor(t *testing.T) {
	data := testGameData()
	data.WallTypes = []domain.WallType{
		{ID: "ore", Durability: 40, Damaged: 8, Biomes: []int{3}},
		{ID: "stone", Durability: 20, Damaged: 5},
	}
	rng := rand.New(rand.NewSource(4))
	world := dungeon.Generate(rng, 6, 24)
	reg := NewRegistry(data, world, rng)

	if wt := reg.WallTypeFor(3); wt == nil || wt.ID != "ore" {
		t.Errorf("biome 3 must pick ore, got %v", wt)
	}
	if wt := reg.WallTypeFor(1); wt == nil || wt.ID != "stone" {
		t.Errorf("biome 1 must fall back to unrestricted type, got %v", wt)
	}
}
