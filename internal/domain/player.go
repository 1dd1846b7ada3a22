package domain

import "time"

// PlayerStats - структурированные характеристики игрока.
// Восемь "ролевых" статов раздаются случайно при первом входе,
// базовые (strength/speed/backpack) всегда начинаются с 1.
type PlayerStats struct {
	Attack       int `json:"attack"`
	Defense      int `json:"defense"`
	WaterDamage  int `json:"water_damage"`
	WaterDefense int `json:"water_defense"`
	FireDamage   int `json:"fire_damage"`
	FireDefense  int `json:"fire_defense"`
	EarthDamage  int `json:"earth_damage"`
	EarthDefense int `json:"earth_defense"`

	Strength     int `json:"strength"`
	Speed        int `json:"speed"`
	BackpackSize int `json:"backpack_size"`
}

// PlayerMaxHP - полное здоровье игрока; с него же начинается профиль
// и к нему возвращается респаун.
const PlayerMaxHP = 100

// InputKind - вид отложенного ввода.
type InputKind string

const (
	InputControl InputKind = "control" // движение/повороты
	InputAction  InputKind = "action"  // действия рук / инвентарь
)

// PendingInput - единственный слот отложенного ввода игрока.
// Новый ввод во время кулдауна перезаписывает старый (last-write-wins).
type PendingInput struct {
	Kind  InputKind
	Value string
}

// PlayerProfile - профиль игрока, ключованный стабильным идентификатором
// подключения. Живет в памяти всю сессию: при дисконнекте сущность
// убирается из мира, но профиль сохраняется и восстанавливается дословно
// при реконнекте.
type PlayerProfile struct {
	Key  string
	Name string

	Stats PlayerStats

	// HP - текущее здоровье; атаки врагов его снимают, ноль означает
	// смерть с респауном.
	HP int

	Pos   Position
	Angle float64 // направление взгляда, радианы

	// Inventory - принадлежащие экземпляры; Equipment - слот -> экземпляр
	// (0 = слот пуст). Все ссылки через InstanceID.
	Inventory []InstanceID
	Equipment map[Slot]InstanceID

	BackpackWeightUsed float64

	// Кулдаун: абсолютная метка готовности + один слот отложенного ввода.
	ReadyAt time.Time
	Pending *PendingInput

	// Revealed - клетки, уже отправленные клиенту как открытая миникарта.
	Revealed map[Position]bool

	Connected bool
}

func NewPlayerProfile(key, name string) *PlayerProfile {
	eq := make(map[Slot]InstanceID, len(AllSlots))
	for _, s := range AllSlots {
		eq[s] = 0
	}
	return &PlayerProfile{
		Key:       key,
		Name:      name,
		HP:        PlayerMaxHP,
		Inventory: make([]InstanceID, 0),
		Equipment: eq,
		Revealed:  make(map[Position]bool),
	}
}

// Owns: находится ли экземпляр в инвентаре.
func (p *PlayerProfile) Owns(id InstanceID) bool {
	for _, iid := range p.Inventory {
		if iid == id {
			return true
		}
	}
	return false
}

// RemoveFromInventory выкидывает экземпляр из инвентаря (если был).
func (p *PlayerProfile) RemoveFromInventory(id InstanceID) {
	for i, iid := range p.Inventory {
		if iid == id {
			p.Inventory = append(p.Inventory[:i], p.Inventory[i+1:]...)
			return
		}
	}
}

// FacingDelta - шаг (dx, dy) по ближайшему кардинальному направлению взгляда.
func (p *PlayerProfile) FacingDelta() (int, int) {
	return AngleToCardinal(p.Angle)
}
