package domain

import "time"

// InstanceID - стабильный целочисленный идентификатор экземпляра предмета в
// рамках сессии. Все перекрестные ссылки (слоты экипировки, инвентарь) идут
// через id и таблицу экземпляров, а не через живые указатели - иначе между
// игроком, слотом и экземпляром возникают скрытые циклы владения.
type InstanceID uint64

// ItemInstance - уникальный экземпляр типа предмета со своей прочностью.
type ItemInstance struct {
	ID         InstanceID `json:"id"`
	TypeID     string     `json:"type_id"`
	Durability int        `json:"durability"`
}

// Affinities - разрешенные при спавне цели граней (id типов предметов).
// Пустая строка = грань не разрешена.
type Affinities struct {
	Desire     string
	Fear       string
	Vulnerable string
}

// Target возвращает цель аффинити для грани.
func (a Affinities) Target(f Facet) string {
	switch f {
	case FacetDesire:
		return a.Desire
	case FacetFear:
		return a.Fear
	case FacetVulnerable:
		return a.Vulnerable
	}
	return ""
}

// EnemyInstance - живой враг.
type EnemyInstance struct {
	ID     InstanceID
	TypeID string

	Pos    Position
	Facing float64 // радианы
	HP     int

	State      BehaviorState
	StateSince time.Time
	// Абсолютные метки времени вместо блокирующих ожиданий:
	// тик-цикл просто сравнивает их с now.
	NextMoveAt   time.Time
	NextAttackAt time.Time
	RemoveAt     time.Time // задержка исчезновения трупа после Die

	TargetKey string // ключ профиля преследуемого игрока

	Affinity Affinities

	// Связь со спавнером для каскадной очистки при его разрушении.
	SpawnerPos *Position
	BiomeID    int
}

type EntityKind uint8

const (
	EntityItem EntityKind = iota
	EntityChest
	EntitySpawner
)

// Sprite - метаданные биллборда для удаленного дисплея.
type Sprite struct {
	Image   string  `json:"image"`
	BaseW   int     `json:"base_width"`
	BaseH   int     `json:"base_height"`
	Scale   float64 `json:"scale"`
	YOffset int     `json:"y_offset"`
}

// WorldEntity - предмет/сундук/спавнер, лежащий на карте.
type WorldEntity struct {
	ID         InstanceID
	Kind       EntityKind
	ItemTypeID string
	Pos        Position
	Sprite     Sprite

	// BiomeID заполняется у спавнеров (каскадная очистка врагов биома).
	BiomeID int
	// ScrollID - id свитка внутри сундука ("" если очередь уже иссякла).
	ScrollID string
}

// Solid: блокирует ли сущность движение. Спавнеры явно проходимы.
func (e *WorldEntity) Solid() bool {
	return e.Kind != EntitySpawner
}
