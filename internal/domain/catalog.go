package domain

// Каталоги типов (предметы, стены, враги) загружаются из конфигурации один
// раз при старте и после валидации считаются неизменяемыми. Единственное
// исключение - свитки: они регистрируются в каталоге предметов динамически
// генератором контента.

type Slot string

const (
	SlotHead      Slot = "head"
	SlotBody      Slot = "body"
	SlotBackpack  Slot = "backpack"
	SlotLeftHand  Slot = "left_hand"
	SlotRightHand Slot = "right_hand"
	SlotLegs      Slot = "legs"
	SlotFeet      Slot = "feet"
)

var AllSlots = []Slot{
	SlotHead, SlotBody, SlotBackpack,
	SlotLeftHand, SlotRightHand, SlotLegs, SlotFeet,
}

// ItemStats - структурированный набор характеристик предмета.
// Раньше это был динамический "мешок статов"; неизвестные поля теперь
// отбрасываются на границе загрузки, а не в точке использования.
type ItemStats struct {
	Weight         float64 `json:"weight"`
	Durability     int     `json:"durability"`
	Attack         int     `json:"attack"`
	Defense        int     `json:"defense"`
	WallDamage     int     `json:"wall_damage"`
	CapacityWeight float64 `json:"capacity_weight"`
}

type ItemType struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	AllowedSlots []Slot    `json:"allowed_slots"`
	Stats        ItemStats `json:"stats"`
	// Active: участвует ли тип в случайном спавне.
	Active bool `json:"active"`
	// Image - спрайт для биллборда (items/<id>.png по умолчанию).
	Image string `json:"image"`
	// Description - готовый текст (заполняется у свитков).
	Description string `json:"description"`
}

// Spawnable: годится ли тип для случайного выпадения
// (активен и имеет хотя бы один слот экипировки).
func (it *ItemType) Spawnable() bool {
	return it.Active && len(it.AllowedSlots) > 0
}

// WallType описывает породу стены.
type WallType struct {
	ID string `json:"id"`
	// Durability - базовая прочность породы (каталожные данные; фактический
	// потолок HP клетки считается от hp_base/hp_per_biome, см. GameWorld.WallMaxHP).
	Durability int `json:"durability"`
	// Damaged - урон, наносимый инструменту за удар. Damage - устаревший
	// ключ-фолбэк из старых конфигов.
	Damaged int `json:"damaged"`
	Damage  int `json:"damage"`
	// Tools - необязательный белый список id инструментов, эффективных
	// против породы. Пустой список = эффективны все.
	Tools []string `json:"tools"`
	// Biomes - в каких биомах встречается порода (для резолва типа клетки).
	Biomes []int `json:"biomes"`
}

// ToolDamage возвращает урон инструменту: damaged, либо фолбэк damage.
func (wt *WallType) ToolDamage() int {
	if wt.Damaged > 0 {
		return wt.Damaged
	}
	return wt.Damage
}

// AllowsTool: проверка белого списка. Пустой список разрешает всё.
func (wt *WallType) AllowsTool(toolTypeID string) bool {
	if len(wt.Tools) == 0 {
		return true
	}
	for _, id := range wt.Tools {
		if id == toolTypeID {
			return true
		}
	}
	return false
}

type EnemyStats struct {
	Health  int `json:"health"`
	Attack  int `json:"attack"`
	Defense int `json:"defense"`
	Speed   int `json:"speed"`
}

// EnemyAIParams - параметры конечного автомата поведения.
type EnemyAIParams struct {
	NoticeRadius     float64 `json:"notice_radius"`
	FOVDeg           float64 `json:"fov_deg"`
	ChaseSpeed       float64 `json:"chase_speed"` // клеток в секунду
	FleeThresholdHP  int     `json:"flee_threshold_hp"`
	AttackRange      float64 `json:"attack_range"`
	AttackCooldownMs int     `json:"attack_cooldown_ms"`
}

// DescTemplates - шаблоны описаний для генерации свитков.
// В шаблонах граней ("{item}") подставляется имя предмета-аффинити.
type DescTemplates struct {
	Core       string `json:"description_core"`
	Seeks      string `json:"description_seeks"`
	Fears      string `json:"description_fears"`
	Vulnerable string `json:"description_vulnerable"`
}

type EnemyType struct {
	ID    string        `json:"type"`
	Name  string        `json:"name"`
	Image string        `json:"image"`
	Stats EnemyStats    `json:"stats"`
	AI    EnemyAIParams `json:"ai"`

	// Необязательная привязка к биому спавнера (nil = спавн где угодно).
	SpawnerBiome *int `json:"spawner_biome"`

	DescTemplates

	// Пулы аффинити: id типов предметов, из которых при спавне экземпляра
	// выбираются конкретные цели желания/страха/уязвимости.
	DesirePool     []string `json:"desires"`
	FearPool       []string `json:"fears"`
	VulnerablePool []string `json:"vulnerables"`
}

// Facet - грань аффинити врага, используемая генератором свитков.
type Facet string

const (
	FacetDesire     Facet = "desire"
	FacetFear       Facet = "fear"
	FacetVulnerable Facet = "vulnerable"
)

// FacetPriority - фиксированный порядок перебора граней при генерации.
var FacetPriority = []Facet{FacetDesire, FacetFear, FacetVulnerable}

// Template возвращает шаблон описания для грани ("" если не задан).
func (et *EnemyType) Template(f Facet) string {
	switch f {
	case FacetDesire:
		return et.Seeks
	case FacetFear:
		return et.Fears
	case FacetVulnerable:
		return et.Vulnerable
	}
	return ""
}

// Pool возвращает пул целей аффинити для грани.
func (et *EnemyType) Pool(f Facet) []string {
	switch f {
	case FacetDesire:
		return et.DesirePool
	case FacetFear:
		return et.FearPool
	case FacetVulnerable:
		return et.VulnerablePool
	}
	return nil
}

// HasAnyTemplate: определяет ли тип хотя бы один шаблон грани.
// Для таких типов реестр обязан гарантировать разрешимое аффинити при спавне.
func (et *EnemyType) HasAnyTemplate() bool {
	return et.Seeks != "" || et.Fears != "" || et.Vulnerable != ""
}
