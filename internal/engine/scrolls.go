package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"dungeon-server/internal/domain"
	"dungeon-server/pkg/logger"
)

// Плейсхолдер имени предмета в шаблонах граней
const scrollPlaceholder = "{item}"

// ScrollQueue - очередь раздачи свитков сундукам. Наполняется один раз
// генерацией и только опустошается: сундук, созданный после исчерпания,
// остается без свитка.
type ScrollQueue struct {
	ids []string
}

func (q *ScrollQueue) Push(id string) {
	q.ids = append(q.ids, id)
}

func (q *ScrollQueue) Pop() (string, bool) {
	if len(q.ids) == 0 {
		return "", false
	}
	id := q.ids[0]
	q.ids = q.ids[1:]
	return id, true
}

func (q *ScrollQueue) Len() int {
	return len(q.ids)
}

// ScrollGenerator порождает "свитки знаний": по одному на тип врага,
// представленный в мире хотя бы одним живым экземпляром.
type ScrollGenerator struct {
	done  bool
	Queue ScrollQueue
}

// Generate выполняется ровно один раз за сессию; повторный вызов - no-op.
// Для каждого типа грани перебираются в порядке desire -> fear ->
// vulnerable; берется первая пригодная: у типа есть шаблон, хотя бы один
// экземпляр несет разрешенную аффинити этой грани, и предмет-цель
// находится в каталоге. Неразрешимая ссылка на предмет не фатальна,
// генератор переходит к следующей грани.
func (g *ScrollGenerator) Generate(reg *Registry) {
	if g.done {
		return
	}
	g.done = true

	// Детерминированный порядок обхода типов
	typeIDs := make(map[string][]*domain.EnemyInstance)
	for _, e := range reg.Enemies {
		typeIDs[e.TypeID] = append(typeIDs[e.TypeID], e)
	}
	sorted := make([]string, 0, len(typeIDs))
	for id := range typeIDs {
		sorted = append(sorted, id)
	}
	sort.Strings(sorted)

	for _, typeID := range sorted {
		et := reg.EnemyType(typeID)
		if et == nil {
			continue
		}
		scroll := g.buildScroll(reg, et, typeIDs[typeID])
		if scroll == nil {
			continue
		}
		if err := reg.RegisterItemType(scroll); err != nil {
			logger.Log.WithError(err).WithField("scroll", scroll.ID).Warn("Scroll type collision, skipped")
			continue
		}
		g.Queue.Push(scroll.ID)
		logger.Log.WithFields(logrus.Fields{
			"scroll": scroll.ID, "enemy_type": typeID,
		}).Info("Scroll of knowledge generated")
	}
}

// buildScroll подбирает грань и собирает тип свитка. nil, если ни одна
// грань не пригодна.
func (g *ScrollGenerator) buildScroll(reg *Registry, et *domain.EnemyType, live []*domain.EnemyInstance) *domain.ItemType {
	for _, facet := range domain.FacetPriority {
		tpl := et.Template(facet)
		if tpl == "" {
			continue
		}
		targetID := firstAffinity(live, facet)
		if targetID == "" {
			continue
		}
		target := reg.ItemType(targetID)
		if target == nil {
			logger.Log.WithFields(logrus.Fields{
				"enemy_type": et.ID, "facet": string(facet), "item": targetID,
			}).Warn("Affinity target missing from catalog, trying next facet")
			continue
		}

		desc := strings.TrimSpace(et.Core + " " + strings.ReplaceAll(tpl, scrollPlaceholder, target.Name))
		return &domain.ItemType{
			ID:           fmt.Sprintf("scroll_%s_%s", et.ID, facet),
			Name:         fmt.Sprintf("Scroll of Knowledge: %s", et.Name),
			AllowedSlots: []domain.Slot{domain.SlotLeftHand, domain.SlotRightHand},
			Stats:        domain.ItemStats{Weight: 0.1, Durability: 1},
			Active:       false, // не участвует в случайных спавнах
			Image:        "items/scroll.png",
			Description:  desc,
		}
	}
	return nil
}

// firstAffinity находит разрешенную аффинити данной грани среди живых
// экземпляров типа.
func firstAffinity(live []*domain.EnemyInstance, facet domain.Facet) string {
	for _, e := range live {
		if id := e.Affinity.Target(facet); id != "" {
			return id
		}
	}
	return ""
}
