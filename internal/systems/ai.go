package systems

import (
	"math"
	"math/rand"
	"time"

	"dungeon-server/internal/domain"
)

// Тайминги поведения врагов
const (
	// NoticeReactDelay - пауза между "заметил" и началом погони
	NoticeReactDelay = 500 * time.Millisecond
	// DieLinger - сколько труп остается видимым до удаления из мира
	DieLinger = 1500 * time.Millisecond
)

// AttackIntent - намерение атаковать игрока. Урон применяет сессия.
type AttackIntent struct {
	TargetKey string
	Damage    int
}

// EnemyTickResult - что произошло с врагом за тик
type EnemyTickResult struct {
	Moved        bool
	StateChanged bool
	Attack       *AttackIntent
	Remove       bool // труп отлежал свое, убрать из мира
}

// AdvanceEnemy продвигает конечный автомат одного врага на один тик.
// Мутирует enemy (позицию, состояние, таймеры); урон игроку возвращает
// намерением, не применяя его сам.
func AdvanceEnemy(now time.Time, rng *rand.Rand, enemy *domain.EnemyInstance,
	et *domain.EnemyType, world *domain.GameWorld, idx WorldIndex,
	players []*domain.PlayerProfile) EnemyTickResult {

	var res EnemyTickResult

	// Смерть проверяется первой и из любого состояния
	if enemy.HP <= 0 && !enemy.State.Terminal() {
		res.StateChanged = transition(enemy, domain.StateDie, now)
		enemy.RemoveAt = now.Add(DieLinger)
		return res
	}

	if enemy.State.Terminal() {
		if now.After(enemy.RemoveAt) {
			res.Remove = true
		}
		return res
	}

	// Бегство: здоровье ниже порога уводит в Flee из любого живого состояния
	if et.AI.FleeThresholdHP > 0 && enemy.HP < et.AI.FleeThresholdHP && enemy.State != domain.StateFlee {
		res.StateChanged = transition(enemy, domain.StateFlee, now)
	}

	target, dist := nearestPlayer(enemy.Pos, players)

	switch enemy.State {
	case domain.StateIdle:
		if target != nil && dist <= et.AI.NoticeRadius && inFOV(enemy, target.Pos, et.AI.FOVDeg) {
			enemy.TargetKey = target.Key
			res.StateChanged = transition(enemy, domain.StateNotice, now)
			return res
		}
		res.Moved = wander(now, rng, enemy, world, idx)

	case domain.StateNotice:
		// Реакция с задержкой: постоял, "сообразил", побежал
		if target == nil || dist > et.AI.NoticeRadius {
			res.StateChanged = transition(enemy, domain.StateIdle, now)
			return res
		}
		if now.Sub(enemy.StateSince) >= NoticeReactDelay {
			res.StateChanged = transition(enemy, domain.StateChase, now)
		}

	case domain.StateChase:
		if target == nil || dist > et.AI.NoticeRadius*1.5 {
			// Упустили цель
			enemy.TargetKey = ""
			res.StateChanged = transition(enemy, domain.StateIdle, now)
			return res
		}
		enemy.TargetKey = target.Key
		if dist <= et.AI.AttackRange {
			res.StateChanged = transition(enemy, domain.StateAttack, now)
			return res
		}
		res.Moved = chaseStep(now, enemy, et, world, idx, target.Pos)

	case domain.StateAttack:
		if target == nil || dist > et.AI.AttackRange {
			res.StateChanged = transition(enemy, domain.StateChase, now)
			return res
		}
		if now.After(enemy.NextAttackAt) {
			enemy.NextAttackAt = now.Add(time.Duration(et.AI.AttackCooldownMs) * time.Millisecond)
			res.Attack = &AttackIntent{TargetKey: target.Key, Damage: et.Stats.Attack}
		}

	case domain.StateFlee:
		// Убегаем от ближайшего игрока; к спаунеру, если он есть
		res.Moved = fleeStep(now, enemy, et, world, idx, target)
	}

	return res
}

// transition переводит автомат в состояние to, если таблица переходов
// это разрешает. Возвращает true при фактической смене.
func transition(enemy *domain.EnemyInstance, to domain.BehaviorState, now time.Time) bool {
	if !domain.CanTransition(enemy.State, to) {
		return false
	}
	enemy.State = to
	enemy.StateSince = now
	return true
}

func nearestPlayer(pos domain.Position, players []*domain.PlayerProfile) (*domain.PlayerProfile, float64) {
	var best *domain.PlayerProfile
	bestDist := math.MaxFloat64
	for _, p := range players {
		if !p.Connected {
			continue
		}
		d := pos.DistanceTo(p.Pos)
		if d < bestDist {
			bestDist = d
			best = p
		}
	}
	return best, bestDist
}

// inFOV: лежит ли цель в секторе fovDeg вокруг направления взгляда врага
func inFOV(enemy *domain.EnemyInstance, target domain.Position, fovDeg float64) bool {
	if fovDeg >= 360 {
		return true
	}
	toTarget := math.Atan2(target.CenterY()-enemy.Pos.CenterY(), target.CenterX()-enemy.Pos.CenterX())
	diff := math.Abs(normalizeAngle(toTarget - enemy.Facing))
	return diff <= fovDeg*math.Pi/360 // половина сектора в радианах
}

func normalizeAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a < -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

// wander - редкий случайный шаг в кардинальном направлении
func wander(now time.Time, rng *rand.Rand, enemy *domain.EnemyInstance,
	world *domain.GameWorld, idx WorldIndex) bool {

	if now.Before(enemy.NextMoveAt) {
		return false
	}
	enemy.NextMoveAt = now.Add(time.Duration(500+rng.Intn(1500)) * time.Millisecond)

	dirs := [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}, {0, 0}}
	d := dirs[rng.Intn(len(dirs))]
	if d[0] == 0 && d[1] == 0 {
		return false
	}
	return stepTo(enemy, world, idx, d[0], d[1])
}

// chaseStep - шаг погони с частотой ChaseSpeed клеток в секунду
func chaseStep(now time.Time, enemy *domain.EnemyInstance, et *domain.EnemyType,
	world *domain.GameWorld, idx WorldIndex, target domain.Position) bool {

	if now.Before(enemy.NextMoveAt) {
		return false
	}
	enemy.NextMoveAt = now.Add(moveInterval(et))

	dx, dy := SlideStep(world, idx, enemy.Pos, target)
	if dx == 0 && dy == 0 {
		return false
	}
	return stepTo(enemy, world, idx, dx, dy)
}

// fleeStep - бег к своему спаунеру, а без него просто прочь от игрока
func fleeStep(now time.Time, enemy *domain.EnemyInstance, et *domain.EnemyType,
	world *domain.GameWorld, idx WorldIndex, threat *domain.PlayerProfile) bool {

	if now.Before(enemy.NextMoveAt) {
		return false
	}
	enemy.NextMoveAt = now.Add(moveInterval(et))

	if enemy.SpawnerPos != nil {
		dx, dy := SlideStep(world, idx, enemy.Pos, *enemy.SpawnerPos)
		if dx != 0 || dy != 0 {
			return stepTo(enemy, world, idx, dx, dy)
		}
	}
	if threat != nil {
		// Инвертированный шаг преследования: цель-отражение позиции угрозы
		away := domain.Position{
			X: 2*enemy.Pos.X - threat.Pos.X,
			Y: 2*enemy.Pos.Y - threat.Pos.Y,
		}
		dx, dy := SlideStep(world, idx, enemy.Pos, away)
		if dx != 0 || dy != 0 {
			return stepTo(enemy, world, idx, dx, dy)
		}
	}
	return false
}

func moveInterval(et *domain.EnemyType) time.Duration {
	speed := et.AI.ChaseSpeed
	if speed <= 0 {
		speed = 1
	}
	return time.Duration(float64(time.Second) / speed)
}

func stepTo(enemy *domain.EnemyInstance, world *domain.GameWorld, idx WorldIndex, dx, dy int) bool {
	if !CanEnter(world, idx, MoverEnemy, enemy.Pos.X+dx, enemy.Pos.Y+dy) {
		return false
	}
	enemy.Pos = enemy.Pos.Shift(dx, dy)
	enemy.Facing = math.Atan2(float64(dy), float64(dx))
	return true
}
