package engine

import (
	"time"

	"dungeon-server/internal/config"
	"dungeon-server/internal/domain"
)

// MoveInterval переводит стат скорости в длительность кулдауна.
// Интерполяция обратная: минимальный стат дает DurationAtMin (долго),
// максимальный - DurationAtMax (быстро). Стат за границами зажимается.
func MoveInterval(sp config.SpeedConfig, speedStat int) time.Duration {
	if sp.MaxStat == sp.MinStat {
		return time.Duration(sp.DurationAtMax * float64(time.Second))
	}
	stat := speedStat
	if stat < sp.MinStat {
		stat = sp.MinStat
	}
	if stat > sp.MaxStat {
		stat = sp.MaxStat
	}
	t := float64(stat-sp.MinStat) / float64(sp.MaxStat-sp.MinStat)
	secs := sp.DurationAtMin + (sp.DurationAtMax-sp.DurationAtMin)*t
	return time.Duration(secs * float64(time.Second))
}

// QueueInput принимает ввод игрока. Вне кулдауна ввод уходит сразу
// (true); на кулдауне сохраняется в единственный слот, перетирая
// предыдущий (last-write-wins, глубина очереди ровно 1).
func QueueInput(p *domain.PlayerProfile, now time.Time, kind domain.InputKind, value string) bool {
	if now.Before(p.ReadyAt) {
		p.Pending = &domain.PendingInput{Kind: kind, Value: value}
		return false
	}
	// Немедленный диспатч вытесняет залежавшийся слот: ввод, пришедший
	// до истечения окна, старее текущего и не должен сработать позже него
	p.Pending = nil
	return true
}

// StartCooldown запускает окно кулдауна после диспатча ввода.
func StartCooldown(p *domain.PlayerProfile, now time.Time, sp config.SpeedConfig) time.Duration {
	d := MoveInterval(sp, p.Stats.Speed)
	p.ReadyAt = now.Add(d)
	return d
}

// TakePending забирает отложенный ввод, если кулдаун истек.
func TakePending(p *domain.PlayerProfile, now time.Time) *domain.PendingInput {
	if p.Pending == nil || now.Before(p.ReadyAt) {
		return nil
	}
	in := p.Pending
	p.Pending = nil
	return in
}
