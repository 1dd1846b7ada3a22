package engine

import (
	"fmt"
	"math/rand"

	"github.com/sirupsen/logrus"

	"dungeon-server/internal/config"
	"dungeon-server/internal/domain"
	"dungeon-server/pkg/dungeon"
	"dungeon-server/pkg/logger"
)

// Registry хранит неизменяемые каталоги типов и изменяемые таблицы
// живых экземпляров. Вся мутация идет из тик-цикла сессии, поэтому
// блокировок здесь нет.
type Registry struct {
	data  *config.GameData
	world *domain.GameWorld
	rng   *rand.Rand

	itemTypes  map[string]*domain.ItemType
	enemyTypes map[string]*domain.EnemyType
	wallTypes  []domain.WallType

	// Живые экземпляры
	instances map[domain.InstanceID]*domain.ItemInstance
	Entities  []*domain.WorldEntity
	Enemies   map[domain.InstanceID]*domain.EnemyInstance

	nextID domain.InstanceID
}

func NewRegistry(data *config.GameData, world *domain.GameWorld, rng *rand.Rand) *Registry {
	r := &Registry{
		data:       data,
		world:      world,
		rng:        rng,
		itemTypes:  make(map[string]*domain.ItemType, len(data.Items)),
		enemyTypes: make(map[string]*domain.EnemyType, len(data.EnemyTypes)),
		wallTypes:  data.WallTypes,
		instances:  make(map[domain.InstanceID]*domain.ItemInstance),
		Enemies:    make(map[domain.InstanceID]*domain.EnemyInstance),
	}
	for i := range data.Items {
		it := &data.Items[i]
		r.itemTypes[it.ID] = it
	}
	for i := range data.EnemyTypes {
		et := &data.EnemyTypes[i]
		r.enemyTypes[et.ID] = et
	}
	return r
}

// NextID выдает следующий уникальный в рамках сессии id экземпляра.
func (r *Registry) NextID() domain.InstanceID {
	r.nextID++
	return r.nextID
}

func (r *Registry) ItemType(id string) *domain.ItemType {
	return r.itemTypes[id]
}

func (r *Registry) EnemyType(id string) *domain.EnemyType {
	return r.enemyTypes[id]
}

// RegisterItemType добавляет тип предмета, порожденный на лету
// (свитки знаний). Существующий id не перетирается.
func (r *Registry) RegisterItemType(it *domain.ItemType) error {
	if _, ok := r.itemTypes[it.ID]; ok {
		return fmt.Errorf("item type %q already registered", it.ID)
	}
	r.itemTypes[it.ID] = it
	return nil
}

// WallTypeFor подбирает тип стены для биома: первый тип, чей список
// биомов содержит данный id; типы без списка подходят всем. Пустой
// каталог дает nil, вызывающий обязан это учесть.
func (r *Registry) WallTypeFor(biomeID int) *domain.WallType {
	var fallback *domain.WallType
	for i := range r.wallTypes {
		wt := &r.wallTypes[i]
		if len(wt.Biomes) == 0 {
			if fallback == nil {
				fallback = wt
			}
			continue
		}
		for _, b := range wt.Biomes {
			if b == biomeID {
				return wt
			}
		}
	}
	if fallback != nil {
		return fallback
	}
	if len(r.wallTypes) > 0 {
		return &r.wallTypes[0]
	}
	return nil
}

// NewItemInstance создает экземпляр типа с полной прочностью.
func (r *Registry) NewItemInstance(typeID string) *domain.ItemInstance {
	it := r.itemTypes[typeID]
	if it == nil {
		return nil
	}
	inst := &domain.ItemInstance{
		ID:         r.NextID(),
		TypeID:     typeID,
		Durability: it.Stats.Durability,
	}
	r.instances[inst.ID] = inst
	return inst
}

// Instance возвращает живой экземпляр по id (nil, если удален).
func (r *Registry) Instance(id domain.InstanceID) *domain.ItemInstance {
	return r.instances[id]
}

// RemoveInstance выбрасывает экземпляр из таблицы (поломка, поглощение).
func (r *Registry) RemoveInstance(id domain.InstanceID) {
	delete(r.instances, id)
}

// SolidEntityAt: часть systems.WorldIndex. Спаунеры проходимы.
func (r *Registry) SolidEntityAt(x, y int) bool {
	for _, e := range r.Entities {
		if e.Pos.X == x && e.Pos.Y == y && e.Solid() {
			return true
		}
	}
	return false
}

// EnemyAt: часть systems.WorldIndex.
func (r *Registry) EnemyAt(x, y int) *domain.EnemyInstance {
	for _, e := range r.Enemies {
		if e.Pos.X == x && e.Pos.Y == y && e.State != domain.StateDie {
			return e
		}
	}
	return nil
}

// EntityAt возвращает любую сущность в клетке (и спаунеры тоже).
func (r *Registry) EntityAt(x, y int) *domain.WorldEntity {
	for _, e := range r.Entities {
		if e.Pos.X == x && e.Pos.Y == y {
			return e
		}
	}
	return nil
}

// RemoveEntity удаляет мировую сущность по id.
func (r *Registry) RemoveEntity(id domain.InstanceID) {
	for i, e := range r.Entities {
		if e.ID == id {
			last := len(r.Entities) - 1
			r.Entities[i] = r.Entities[last]
			r.Entities[last] = nil
			r.Entities = r.Entities[:last]
			return
		}
	}
}

// occupiedBy замыкание для поиска свободных клеток: занято сущностью
// или живым врагом.
func (r *Registry) occupied(x, y int) bool {
	return r.EntityAt(x, y) != nil || r.EnemyAt(x, y) != nil
}

// RandomEmptyCell ищет свободную пустую клетку мира.
func (r *Registry) RandomEmptyCell() domain.Position {
	return dungeon.RandomEmptyCell(r.rng, r.world, r.occupied)
}

// Populate заполняет мир при старте сессии: спаунер на каждом центре
// биома, ручные расстановки, случайные предметы и враги. Спаунеры идут
// первыми, чтобы враги с привязкой к биому при спавне нашли свой.
// Сундуки здесь не создаются: их ставит сессия после генерации свитков,
// чтобы каждый сундук при создании мог забрать свиток из очереди.
func (r *Registry) Populate() {
	for _, ctr := range r.world.Centers {
		if r.occupied(ctr.X, ctr.Y) {
			continue
		}
		r.Entities = append(r.Entities, &domain.WorldEntity{
			ID:         r.NextID(),
			Kind:       domain.EntitySpawner,
			ItemTypeID: "demon_spawn",
			Pos:        domain.Position{X: ctr.X, Y: ctr.Y},
			BiomeID:    ctr.ID,
			Sprite: domain.Sprite{
				Image: "items/demonspawn.png",
				BaseW: 64, BaseH: 64, Scale: 1.0,
			},
		})
	}

	for _, pl := range r.data.Placements {
		if pl.Kind == "chest" {
			continue // отложено до генерации свитков
		}
		r.placeOne(pl)
	}

	r.spawnRandomItems(r.data.Settings.Spawns.RandomItems)
	r.spawnRandomEnemies(r.data.Settings.Spawns.RandomEnemies)
}

// PlaceChests ставит сундуки: сперва ручные расстановки, затем
// случайные. Вызывается после генерации свитков.
func (r *Registry) PlaceChests(scrolls *ScrollQueue) {
	for _, pl := range r.data.Placements {
		if pl.Kind != "chest" {
			continue
		}
		r.PlaceChest(domain.Position{X: pl.X, Y: pl.Y}, scrolls)
	}
	for i := 0; i < r.data.Settings.Spawns.RandomChests; i++ {
		r.PlaceChest(r.RandomEmptyCell(), scrolls)
	}
}

// PlaceChest создает один сундук. Очередь свитков опустошается по
// одному id на сундук; после исчерпания сундуки идут пустыми.
func (r *Registry) PlaceChest(pos domain.Position, scrolls *ScrollQueue) *domain.WorldEntity {
	chest := &domain.WorldEntity{
		ID:         r.NextID(),
		Kind:       domain.EntityChest,
		ItemTypeID: "chest_basic",
		Pos:        pos,
		Sprite: domain.Sprite{
			Image: "items/chest.png",
			BaseW: 64, BaseH: 64, Scale: 1.0,
		},
	}
	if scrolls != nil {
		if id, ok := scrolls.Pop(); ok {
			chest.ScrollID = id
		}
	}
	r.Entities = append(r.Entities, chest)
	return chest
}

// placeOne обрабатывает одну ручную расстановку. Неизвестный id типа
// не фатален: запись пропускается с предупреждением.
func (r *Registry) placeOne(pl config.MapEntity) {
	pos := domain.Position{X: pl.X, Y: pl.Y}
	switch pl.Kind {
	case "item":
		it := r.itemTypes[pl.ItemID]
		if it == nil {
			logger.Log.WithFields(logrus.Fields{
				"item_id": pl.ItemID, "x": pl.X, "y": pl.Y,
			}).Warn("Placement references unknown item type, skipped")
			return
		}
		r.placeItem(it, pos)
	case "spawner":
		r.Entities = append(r.Entities, &domain.WorldEntity{
			ID:         r.NextID(),
			Kind:       domain.EntitySpawner,
			ItemTypeID: "demon_spawn",
			Pos:        pos,
			BiomeID:    r.world.BiomeAt(pl.X, pl.Y),
			Sprite:     domain.Sprite{Image: "items/demonspawn.png", BaseW: 64, BaseH: 64, Scale: 1.0},
		})
	case "enemy":
		if r.SpawnEnemy(pl.EnemyID, pos) == nil {
			logger.Log.WithFields(logrus.Fields{
				"enemy_id": pl.EnemyID, "x": pl.X, "y": pl.Y,
			}).Warn("Placement references unknown enemy type, skipped")
		}
	default:
		logger.Log.WithField("kind", pl.Kind).Warn("Unknown placement kind, skipped")
	}
}

func (r *Registry) placeItem(it *domain.ItemType, pos domain.Position) {
	image := it.Image
	if image == "" {
		image = "items/" + it.ID + ".png"
	}
	r.Entities = append(r.Entities, &domain.WorldEntity{
		ID:         r.NextID(),
		Kind:       domain.EntityItem,
		ItemTypeID: it.ID,
		Pos:        pos,
		BiomeID:    r.world.BiomeAt(pos.X, pos.Y),
		Sprite:     domain.Sprite{Image: image, BaseW: 64, BaseH: 64, Scale: 1.0},
	})
}

// spawnRandomItems раскидывает предметы по пустым клеткам. Кандидаты
// только активные типы с непустым списком слотов.
func (r *Registry) spawnRandomItems(count int) {
	var candidates []*domain.ItemType
	for _, it := range r.itemTypes {
		if it.Spawnable() {
			candidates = append(candidates, it)
		}
	}
	if len(candidates) == 0 || count <= 0 {
		return
	}
	for i := 0; i < count; i++ {
		it := candidates[r.rng.Intn(len(candidates))]
		r.placeItem(it, r.RandomEmptyCell())
	}
}

// spawnRandomEnemies раскидывает врагов. Типы с привязкой к биому
// появляются возле спаунера своего биома, остальные где угодно.
func (r *Registry) spawnRandomEnemies(count int) {
	if count <= 0 || len(r.data.EnemyTypes) == 0 {
		return
	}
	for i := 0; i < count; i++ {
		et := &r.data.EnemyTypes[r.rng.Intn(len(r.data.EnemyTypes))]
		pos := r.RandomEmptyCell()
		if sp := r.spawnerFor(et); sp != nil {
			pos = r.cellNear(*sp, 4)
		}
		r.SpawnEnemy(et.ID, pos)
	}
}

// SpawnEnemy создает врага с разрешенными аффинити. Тип с привязкой к
// биому получает позицию своего спаунера для бегства и каскадной
// зачистки. Возвращает nil для неизвестного типа.
func (r *Registry) SpawnEnemy(typeID string, pos domain.Position) *domain.EnemyInstance {
	et := r.enemyTypes[typeID]
	if et == nil {
		return nil
	}
	enemy := &domain.EnemyInstance{
		ID:         r.NextID(),
		TypeID:     typeID,
		Pos:        pos,
		HP:         et.Stats.Health,
		State:      domain.StateIdle,
		Affinity:   r.resolveAffinities(et),
		SpawnerPos: r.spawnerFor(et),
		BiomeID:    r.world.BiomeAt(pos.X, pos.Y),
	}
	r.Enemies[enemy.ID] = enemy
	return enemy
}

// spawnerFor находит спаунер биома, к которому привязан тип врага.
// nil: тип не привязан или в биоме нет спаунера.
func (r *Registry) spawnerFor(et *domain.EnemyType) *domain.Position {
	if et.SpawnerBiome == nil {
		return nil
	}
	for _, e := range r.Entities {
		if e.Kind == domain.EntitySpawner && e.BiomeID == *et.SpawnerBiome {
			pos := e.Pos
			return &pos
		}
	}
	return nil
}

// cellNear ищет свободную клетку в радиусе от точки; если не нашлась,
// спавн уходит в произвольную свободную клетку мира.
func (r *Registry) cellNear(center domain.Position, radius int) domain.Position {
	for try := 0; try < 50; try++ {
		x := center.X + r.rng.Intn(2*radius+1) - radius
		y := center.Y + r.rng.Intn(2*radius+1) - radius
		if !r.world.IsWall(x, y) && !r.occupied(x, y) {
			return domain.Position{X: x, Y: y}
		}
	}
	return r.RandomEmptyCell()
}

// resolveAffinities выбирает цели желания/страха/уязвимости из пулов
// типа. Если тип определяет хоть один шаблон грани, гарантируется хотя
// бы одна разрешимая запись: при пустых или неразрешимых пулах берется
// первый спавнящийся предмет каталога.
func (r *Registry) resolveAffinities(et *domain.EnemyType) domain.Affinities {
	var aff domain.Affinities
	pick := func(pool []string) string {
		var valid []string
		for _, id := range pool {
			if r.itemTypes[id] != nil {
				valid = append(valid, id)
			}
		}
		if len(valid) == 0 {
			return ""
		}
		return valid[r.rng.Intn(len(valid))]
	}
	for _, f := range domain.FacetPriority {
		aff = setFacet(aff, f, pick(et.Pool(f)))
	}

	if et.HasAnyTemplate() && aff.Desire == "" && aff.Fear == "" && aff.Vulnerable == "" {
		if fallback := r.firstSpawnableItem(); fallback != "" {
			for _, f := range domain.FacetPriority {
				if et.Template(f) != "" {
					aff = setFacet(aff, f, fallback)
					logger.Log.WithFields(logrus.Fields{
						"enemy_type": et.ID, "facet": string(f), "item": fallback,
					}).Warn("Affinity pools unresolvable, falling back to catalog item")
					break
				}
			}
		}
	}
	return aff
}

// firstSpawnableItem - детерминированный запасной предмет: первый по
// алфавиту активный тип со слотами.
func (r *Registry) firstSpawnableItem() string {
	best := ""
	for id, it := range r.itemTypes {
		if !it.Spawnable() {
			continue
		}
		if best == "" || id < best {
			best = id
		}
	}
	return best
}

func setFacet(aff domain.Affinities, f domain.Facet, itemID string) domain.Affinities {
	switch f {
	case domain.FacetDesire:
		aff.Desire = itemID
	case domain.FacetFear:
		aff.Fear = itemID
	case domain.FacetVulnerable:
		aff.Vulnerable = itemID
	}
	return aff
}

// RemoveEnemy убирает врага из мира (смерть отлежалась или зачистка).
func (r *Registry) RemoveEnemy(id domain.InstanceID) {
	delete(r.Enemies, id)
}
