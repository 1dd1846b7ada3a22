package systems

import (
	"dungeon-server/internal/domain"
)

// MoverKind различает, для кого считается проходимость: у игроков и
// врагов правила коллизий слегка разные.
type MoverKind int

const (
	MoverPlayer MoverKind = iota
	MoverEnemy
)

// WorldIndex - минимальный срез состояния мира, нужный системам для
// проверок занятости клеток. Реализуется реестром движка.
type WorldIndex interface {
	// SolidEntityAt: стоит ли в клетке твердая сущность (сундук, предмет).
	// Спаунеры твердыми не считаются.
	SolidEntityAt(x, y int) bool
	// EnemyAt возвращает живого врага в клетке или nil.
	EnemyAt(x, y int) *domain.EnemyInstance
	// PlayerAt возвращает подключенного игрока в клетке или nil.
	PlayerAt(x, y int) *domain.PlayerProfile
}

// MoveResult - результат вычисления движения
type MoveResult struct {
	NewPos    domain.Position
	HasMoved  bool
	IsWall    bool
	BlockedBy *domain.EnemyInstance // враг в целевой клетке
	Player    *domain.PlayerProfile // игрок в целевой клетке
}

// CanEnter: проходима ли клетка для данного вида существа.
// Выход за границы считается стеной.
func CanEnter(world *domain.GameWorld, idx WorldIndex, kind MoverKind, x, y int) bool {
	if world.IsWall(x, y) {
		return false
	}
	if idx.SolidEntityAt(x, y) {
		return false
	}
	if idx.EnemyAt(x, y) != nil {
		return false
	}
	if kind == MoverEnemy && idx.PlayerAt(x, y) != nil {
		return false
	}
	return true
}

// CalculateMove вычисляет новую позицию. Не меняет состояние мира!
// Правила для всех видов существ одинаковые (никто не встает на чужую
// клетку), поэтому MoverKind здесь не нужен.
func CalculateMove(from domain.Position, dx, dy int, world *domain.GameWorld, idx WorldIndex) MoveResult {
	target := from.Shift(dx, dy)
	res := MoveResult{NewPos: target}

	if world.IsWall(target.X, target.Y) {
		res.IsWall = true
		res.NewPos = from
		return res
	}

	if enemy := idx.EnemyAt(target.X, target.Y); enemy != nil {
		res.BlockedBy = enemy
		res.NewPos = from
		return res
	}

	if p := idx.PlayerAt(target.X, target.Y); p != nil {
		res.Player = p
		res.NewPos = from
		return res
	}

	if idx.SolidEntityAt(target.X, target.Y) {
		res.NewPos = from
		return res
	}

	res.HasMoved = true
	return res
}

// SlideStep - шаг преследования со "скольжением": предпочитаем ось с
// большей дистанцией до цели, при блокировке пробуем вторую ось.
// Возвращает (dx, dy) или (0, 0), если обе оси перекрыты.
func SlideStep(world *domain.GameWorld, idx WorldIndex, from, to domain.Position) (int, int) {
	dx := sign(to.X - from.X)
	dy := sign(to.Y - from.Y)

	primary := [2]int{dx, 0}
	secondary := [2]int{0, dy}
	if abs(to.Y-from.Y) > abs(to.X-from.X) {
		primary, secondary = secondary, primary
	}

	for _, step := range [][2]int{primary, secondary} {
		if step[0] == 0 && step[1] == 0 {
			continue
		}
		if CanEnter(world, idx, MoverEnemy, from.X+step[0], from.Y+step[1]) {
			return step[0], step[1]
		}
	}
	return 0, 0
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
