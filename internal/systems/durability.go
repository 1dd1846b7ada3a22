package systems

import (
	"dungeon-server/internal/domain"
)

// ToolHitResult - результат удара инструментом по стене.
// Вызывающий (сессия) сам решает, что рассылать клиентам: трещину,
// обновление экипировки, снятие предмета.
type ToolHitResult struct {
	Applied bool // удар вообще прошел (инструмент годится для стены)

	WallHP    int     // прочность стены после удара
	WallMaxHP int     // локальный максимум прочности клетки
	WallBroke bool    // стена стала пустой клеткой
	HPFrac    float64 // доля оставшейся прочности [0..1], для трещин

	ToolDamaged int  // сколько прочности потерял инструмент
	ToolBroke   bool // прочность инструмента дошла до нуля
}

// ApplyToolHit бьет инструментом tool по стене (x, y).
// Порядок эффектов важен: прочность стены инициализируется лениво при
// первом ударе, затем урон стене, затем износ инструмента, затем
// проверки на разрушение. Все значения ограничены нулем снизу.
func ApplyToolHit(world *domain.GameWorld, x, y int, tool *domain.ItemInstance,
	toolType *domain.ItemType, wallType *domain.WallType, hpBase, hpPerBiome int) ToolHitResult {

	var res ToolHitResult

	if !world.IsWall(x, y) || !world.InBounds(x, y) {
		return res
	}
	if toolType.Stats.WallDamage <= 0 {
		return res
	}
	if !wallType.AllowsTool(toolType.ID) {
		return res
	}

	tile := &world.Tiles[y][x]
	maxHP := world.WallMaxHP(x, y, hpBase, hpPerBiome)

	// 1. Ленивая инициализация прочности
	if !tile.HPKnown {
		tile.WallHP = maxHP
		tile.HPKnown = true
	}

	// 2. Урон стене, пол на нуле
	tile.WallHP -= toolType.Stats.WallDamage
	if tile.WallHP < 0 {
		tile.WallHP = 0
	}

	// 3. Износ инструмента: damaged, при его отсутствии damage
	wear := wallType.ToolDamage()
	if wear > 0 {
		tool.Durability -= wear
		if tool.Durability < 0 {
			tool.Durability = 0
		}
		res.ToolDamaged = wear
	}

	res.Applied = true
	res.WallHP = tile.WallHP
	res.WallMaxHP = maxHP
	res.HPFrac = float64(tile.WallHP) / float64(maxHP)

	// 4. Разрушение стены
	if tile.WallHP == 0 {
		*tile = domain.Tile{Kind: domain.TileEmpty}
		res.WallBroke = true
		res.HPFrac = 0
	}

	// 5. Поломка инструмента (снятие со слота делает вызывающий)
	if tool.Durability == 0 {
		res.ToolBroke = true
	}

	return res
}
