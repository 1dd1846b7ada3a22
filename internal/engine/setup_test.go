package engine

import (
	"os"
	"testing"

	"dungeon-server/internal/config"
	"dungeon-server/internal/domain"
	"dungeon-server/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

// testGameData - минимальный набор каталогов для тестов движка
func testGameData() *config.GameData {
	return &config.GameData{
		Settings: config.Default(),
		Items: []domain.ItemType{
			{
				ID: "pickaxe_basic", Name: "Pickaxe",
				AllowedSlots: []domain.Slot{domain.SlotLeftHand, domain.SlotRightHand},
				Stats:        domain.ItemStats{Weight: 2, Durability: 30, WallDamage: 7},
				Active:       true,
			},
			{
				ID: "torch", Name: "Torch",
				AllowedSlots: []domain.Slot{domain.SlotLeftHand},
				Stats:        domain.ItemStats{Weight: 0.5, Durability: 10},
				Active:       true,
			},
			{
				ID: "backpack_small", Name: "Small Backpack",
				AllowedSlots: []domain.Slot{domain.SlotBackpack},
				Stats:        domain.ItemStats{Weight: 1, Durability: 50, CapacityWeight: 20},
				Active:       true,
			},
		},
		WallTypes: []domain.WallType{
			{ID: "stone", Durability: 20, Damaged: 5},
		},
		EnemyTypes: []domain.EnemyType{
			{
				ID: "slime_green", Name: "Green Slime", Image: "slime_green.png",
				Stats: domain.EnemyStats{Health: 10, Attack: 3, Defense: 1},
				AI: domain.EnemyAIParams{
					NoticeRadius: 8, FOVDeg: 360, ChaseSpeed: 2,
					AttackRange: 1.5, AttackCooldownMs: 1000,
				},
				DescTemplates: domain.DescTemplates{
					Core:  "A wobbling mass of slime.",
					Fears: "It trembles before {item}.",
				},
				FearPool: []string{"torch"},
			},
		},
	}
}
