package api

import (
	"encoding/json"
)

// --- СЕРВЕР -> КЛИЕНТ ---

// Типы сообщений сервера
const (
	TypeFrame    = "FRAME"
	TypeEquip    = "EQUIP"
	TypeCooldown = "COOLDOWN"
	TypeFx       = "FX"
	TypeState    = "STATE"
	TypeJoined   = "JOINED"
	TypeMap      = "MAP"
)

// ServerResponse это корневой объект, который сервер отправляет клиенту.
// Ровно одно из опциональных полей заполнено, в зависимости от Type.
type ServerResponse struct {
	Type string `json:"type"`

	// Frame готовый кадр рейкаста. Отправляется каждому подключенному
	// игроку примерно 10 раз в секунду.
	Frame *FrameView `json:"frame,omitempty"`

	// Equip снимок экипировки для HUD (после смены экипировки и при входе).
	Equip *EquipView `json:"equip,omitempty"`

	// Cooldown таймер готовности к следующему вводу.
	Cooldown *CooldownView `json:"cooldown,omitempty"`

	// Fx краткий визуальный эффект (трещина в стене, искра удара).
	Fx *FxView `json:"fx,omitempty"`

	// State полный снимок статов/инвентаря/экипировки (по запросу inventory).
	State *StateView `json:"state,omitempty"`

	// Joined подтверждение входа.
	Joined *JoinedView `json:"joined,omitempty"`

	// Map инкремент открытой части миникарты.
	Map *MapView `json:"map,omitempty"`
}

// FrameView это DTO одного отрисованного кадра. Массивы-колонки имеют
// длину W; клиент рисует W вертикальных полос и поверх них спрайты.
type FrameView struct {
	W int `json:"w"`
	H int `json:"h"`

	// Heights высота стенной полосы в каждой экранной колонке (пикселей).
	Heights []int `json:"heights"`

	// Shades множитель яркости колонки, уже с учетом дистанции,
	// ориентации грани, трещин и подмеса цвета биома.
	Shades []float64 `json:"shades"`

	// Dists дистанция до стены по каждой колонке. Нужна клиенту для
	// тумана и сортировки, сервером уже использована для окклюзии спрайтов.
	Dists []float64 `json:"dists"`

	// Sprites билборды, отсортированные от дальних к ближним.
	Sprites []SpriteView `json:"sprites"`

	// Sky цвет неба [r, g, b] по биому клетки игрока.
	Sky [3]int `json:"sky"`

	// Biome id биома, в котором стоит игрок (0 = вне биомов).
	Biome int `json:"biome"`

	// Angle текущий угол взгляда в радианах.
	Angle float64 `json:"angle"`
}

// SpriteView это DTO видимой части одного билборда. Sx/Sw задают
// суб-прямоугольник исходной картинки: при частичном перекрытии стеной
// сервер отдает только видимый вертикальный срез.
type SpriteView struct {
	Img string `json:"img"`

	Sx int `json:"sx"`
	Sy int `json:"sy"`
	Sw int `json:"sw"`
	Sh int `json:"sh"`

	// Экранный прямоугольник
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`

	// Depth дистанция до спрайта; клиент полагается на порядок в массиве
	Depth float64 `json:"depth"`
}

// ItemView представляет предмет для клиента
type ItemView struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Durability    int    `json:"durability"`
	MaxDurability int    `json:"maxDurability"`

	// Description - текст предмета: у свитков знаний содержит
	// сгенерированное описание врага.
	Description string `json:"description,omitempty"`
}

// EquipView - снимок экипировки: слот -> предмет (null = слот пуст).
type EquipView struct {
	Equipment map[string]*ItemView `json:"equipment"`
}

// CooldownView - таймер ввода. Все метки в секундах Unix с дробной частью,
// клиент рисует прогресс от Now до ReadyAt.
type CooldownView struct {
	Now      float64 `json:"now"`
	ReadyAt  float64 `json:"ready_at"`
	Duration float64 `json:"duration"`
}

// FxView - точечный эффект в мире
type FxView struct {
	Kind string `json:"kind"` // crack | hit_spark
	X    int    `json:"x"`
	Y    int    `json:"y"`

	// Level для crack: интенсивность трещин, доля УТРАЧЕННОЙ прочности [0..1]
	Level float64 `json:"level,omitempty"`
}

// StateView - полный снимок состояния игрока по запросу
type StateView struct {
	Stats     map[string]int       `json:"stats"`
	Equipment map[string]*ItemView `json:"equipment"`
	Inventory []ItemView           `json:"inventory"`
}

// MapCellView - одна открытая клетка миникарты.
type MapCellView struct {
	X     int  `json:"x"`
	Y     int  `json:"y"`
	Wall  bool `json:"wall"`
	Biome int  `json:"biome,omitempty"`
}

// MapView - дельта миникарты: только клетки, открытые с прошлой отправки.
// Клиент накапливает их у себя; сервер никогда не присылает клетку повторно.
type MapView struct {
	W     int           `json:"w"`
	H     int           `json:"h"`
	Cells []MapCellView `json:"cells"`
}

// JoinedView - подтверждение входа. Token нужно сохранить и передавать
// при реконнекте, чтобы получить обратно свой профиль.
type JoinedView struct {
	OK    bool   `json:"ok"`
	Token string `json:"token"`
	Name  string `json:"name"`
}

// --- КЛИЕНТ -> СЕРВЕР ---

// ClientCommand это корневой объект для всех сообщений от клиента к серверу.
type ClientCommand struct {
	// Token проставляется транспортным слоем при чтении; клиент его
	// присылать не обязан.
	Token string `json:"token,omitempty"`

	// Action название действия: "join", "control" или "action".
	Action string `json:"action"`

	// Payload JSON-объект с данными. Его структура зависит от Action.
	Payload json.RawMessage `json:"payload"`
}

// --- Payloads ---

// JoinPayload - первое сообщение соединения. Пустой Token означает
// нового игрока, сервер сгенерирует токен и вернет его в JOINED.
type JoinPayload struct {
	Token string `json:"token,omitempty"`
	Name  string `json:"name,omitempty"`
}

// ControlPayload используется для движения и поворотов.
type ControlPayload struct {
	// Command: up | down | strafe_left | strafe_right | left | right
	// (left/right и их алиасы turn_left/turn_right - повороты на 90°)
	Command string `json:"command"`
}

// ActionPayload используется для действий рук и запроса инвентаря.
type ActionPayload struct {
	// Button: left | right | inventory
	Button string `json:"button"`
}
