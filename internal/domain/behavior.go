package domain

// BehaviorState - состояние конечного автомата поведения врага.
// Die терминально: из него нет переходов, экземпляр удаляется из мира
// после фиксированной задержки.
type BehaviorState uint8

const (
	StateIdle BehaviorState = iota
	StateNotice
	StateChase
	StateAttack
	StateFlee
	StateDie
)

func (s BehaviorState) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateNotice:
		return "NOTICE"
	case StateChase:
		return "CHASE"
	case StateAttack:
		return "ATTACK"
	case StateFlee:
		return "FLEE"
	case StateDie:
		return "DIE"
	}
	return "UNKNOWN"
}

// Явная таблица переходов. Die достижимо из любого состояния (смерть при
// hp == 0), Flee - из любого нетерминального (порог fleeThresholdHp).
var behaviorTransitions = map[BehaviorState][]BehaviorState{
	StateIdle:   {StateNotice, StateFlee, StateDie},
	StateNotice: {StateChase, StateIdle, StateFlee, StateDie},
	StateChase:  {StateAttack, StateIdle, StateFlee, StateDie},
	StateAttack: {StateChase, StateFlee, StateDie},
	StateFlee:   {StateDie},
	StateDie:    {},
}

// CanTransition проверяет допустимость перехода по таблице.
func CanTransition(from, to BehaviorState) bool {
	for _, next := range behaviorTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal: из состояния нет выходов.
func (s BehaviorState) Terminal() bool {
	return len(behaviorTransitions[s]) == 0
}
