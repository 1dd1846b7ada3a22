package systems

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"dungeon-server/internal/domain"
)

func testEnemyType() *domain.EnemyType {
	return &domain.EnemyType{
		ID:    "slime_green",
		Name:  "Green Slime",
		Stats: domain.EnemyStats{Health: 10, Attack: 3},
		AI: domain.EnemyAIParams{
			NoticeRadius:     8,
			FOVDeg:           360,
			ChaseSpeed:       2,
			FleeThresholdHP:  3,
			AttackRange:      1.5,
			AttackCooldownMs: 1000,
		},
	}
}

func testEnemy(x, y int) *domain.EnemyInstance {
	return &domain.EnemyInstance{
		ID:     1,
		TypeID: "slime_green",
		Pos:    domain.Position{X: x, Y: y},
		HP:     10,
		State:  domain.StateIdle,
	}
}

func TestAdvanceEnemyFSM(t *testing.T) {
	world := createTestWorld(20, 20)
	et := testEnemyType()
	rng := rand.New(rand.NewSource(1))
	now := time.Now()

	player := &domain.PlayerProfile{Key: "p1", Pos: domain.Position{X: 10, Y: 10}, Connected: true}
	players := []*domain.PlayerProfile{player}

	t.Run("Idle to Notice when player in radius", func(t *testing.T) {
		enemy := testEnemy(8, 10) // дистанция 2
		idx := newFakeIndex()

		res := AdvanceEnemy(now, rng, enemy, et, world, idx, players)
		if !res.StateChanged || enemy.State != domain.StateNotice {
			t.Errorf("expected Notice, got %v", enemy.State)
		}
	})

	t.Run("Idle stays Idle when player out of radius", func(t *testing.T) {
		enemy := testEnemy(1, 1) // дистанция > 8
		idx := newFakeIndex()

		AdvanceEnemy(now, rng, enemy, et, world, idx, players)
		if enemy.State != domain.StateIdle {
			t.Errorf("expected Idle, got %v", enemy.State)
		}
	})

	t.Run("FOV gate blocks notice behind the back", func(t *testing.T) {
		narrow := testEnemyType()
		narrow.AI.FOVDeg = 90
		enemy := testEnemy(8, 10)
		enemy.Facing = math.Pi // смотрит влево, игрок справа
		idx := newFakeIndex()

		AdvanceEnemy(now, rng, enemy, narrow, world, idx, players)
		if enemy.State != domain.StateIdle {
			t.Errorf("player behind the back must not be noticed, got %v", enemy.State)
		}
	})

	t.Run("Notice to Chase after react delay", func(t *testing.T) {
		enemy := testEnemy(8, 10)
		enemy.State = domain.StateNotice
		enemy.StateSince = now
		idx := newFakeIndex()

		// Сразу после замечания еще стоим
		AdvanceEnemy(now.Add(100*time.Millisecond), rng, enemy, et, world, idx, players)
		if enemy.State != domain.StateNotice {
			t.Fatalf("react delay not honored, state %v", enemy.State)
		}

		AdvanceEnemy(now.Add(NoticeReactDelay+10*time.Millisecond), rng, enemy, et, world, idx, players)
		if enemy.State != domain.StateChase {
			t.Errorf("expected Chase after react delay, got %v", enemy.State)
		}
	})

	t.Run("Chase to Attack in range then attack intent on cooldown", func(t *testing.T) {
		enemy := testEnemy(9, 10) // дистанция 1 <= attackRange
		enemy.State = domain.StateChase
		idx := newFakeIndex()

		res := AdvanceEnemy(now, rng, enemy, et, world, idx, players)
		if enemy.State != domain.StateAttack {
			t.Fatalf("expected Attack, got %v", enemy.State)
		}
		if res.Attack != nil {
			t.Fatal("transition tick must not attack yet")
		}

		res = AdvanceEnemy(now.Add(time.Millisecond), rng, enemy, et, world, idx, players)
		if res.Attack == nil || res.Attack.TargetKey != "p1" || res.Attack.Damage != 3 {
			t.Fatalf("expected attack intent on p1, got %+v", res.Attack)
		}

		// Кулдаун: немедленный повтор не бьет
		res = AdvanceEnemy(now.Add(2*time.Millisecond), rng, enemy, et, world, idx, players)
		if res.Attack != nil {
			t.Error("attack must respect cooldown")
		}
	})

	t.Run("Attack reverts to Chase when target leaves range", func(t *testing.T) {
		enemy := testEnemy(9, 10)
		enemy.State = domain.StateAttack
		far := []*domain.PlayerProfile{{Key: "p1", Pos: domain.Position{X: 15, Y: 10}, Connected: true}}
		idx := newFakeIndex()

		AdvanceEnemy(now, rng, enemy, et, world, idx, far)
		if enemy.State != domain.StateChase {
			t.Errorf("expected Chase, got %v", enemy.State)
		}
	})

	t.Run("Low HP forces Flee from any state", func(t *testing.T) {
		for _, from := range []domain.BehaviorState{domain.StateIdle, domain.StateNotice, domain.StateChase, domain.StateAttack} {
			enemy := testEnemy(9, 10)
			enemy.State = from
			enemy.HP = 2 // ниже порога 3
			idx := newFakeIndex()

			AdvanceEnemy(now, rng, enemy, et, world, idx, players)
			if enemy.State != domain.StateFlee {
				t.Errorf("from %v: expected Flee, got %v", from, enemy.State)
			}
		}
	})

	t.Run("Flee runs toward the spawner", func(t *testing.T) {
		enemy := testEnemy(9, 10)
		enemy.State = domain.StateFlee
		enemy.HP = 2
		sp := domain.Position{X: 5, Y: 10}
		enemy.SpawnerPos = &sp
		idx := newFakeIndex()

		res := AdvanceEnemy(now, rng, enemy, et, world, idx, players)
		if !res.Moved {
			t.Fatal("fleeing enemy must step")
		}
		if enemy.Pos != (domain.Position{X: 8, Y: 10}) {
			t.Errorf("expected a step toward the spawner, got %+v", enemy.Pos)
		}
	})

	t.Run("Zero HP enters terminal Die from any state", func(t *testing.T) {
		for _, from := range []domain.BehaviorState{domain.StateIdle, domain.StateChase, domain.StateFlee} {
			enemy := testEnemy(9, 10)
			enemy.State = from
			enemy.HP = 0
			idx := newFakeIndex()

			res := AdvanceEnemy(now, rng, enemy, et, world, idx, players)
			if enemy.State != domain.StateDie {
				t.Fatalf("from %v: expected Die, got %v", from, enemy.State)
			}
			if res.Remove {
				t.Error("corpse must linger before removal")
			}

			// После паузы труп убирается
			res = AdvanceEnemy(now.Add(DieLinger+10*time.Millisecond), rng, enemy, et, world, idx, players)
			if !res.Remove {
				t.Error("corpse must be removed after linger")
			}
		}
	})

	t.Run("Die is terminal even if healed", func(t *testing.T) {
		enemy := testEnemy(9, 10)
		enemy.State = domain.StateDie
		enemy.HP = 10
		idx := newFakeIndex()

		AdvanceEnemy(now, rng, enemy, et, world, idx, players)
		if enemy.State != domain.StateDie {
			t.Errorf("Die must be terminal, got %v", enemy.State)
		}
	})
}

func TestTransitionTable(t *testing.T) {
	cases := []struct {
		from, to domain.BehaviorState
		ok       bool
	}{
		{domain.StateIdle, domain.StateNotice, true},
		{domain.StateIdle, domain.StateChase, false},
		{domain.StateNotice, domain.StateChase, true},
		{domain.StateChase, domain.StateAttack, true},
		{domain.StateAttack, domain.StateChase, true},
		{domain.StateAttack, domain.StateNotice, false},
		{domain.StateChase, domain.StateFlee, true},
		{domain.StateFlee, domain.StateChase, false},
		{domain.StateFlee, domain.StateDie, true},
		{domain.StateDie, domain.StateIdle, false},
	}
	for _, c := range cases {
		if got := domain.CanTransition(c.from, c.to); got != c.ok {
			t.Errorf("CanTransition(%v, %v) = %v, want %v", c.from, c.to, got, c.ok)
		}
	}
}
