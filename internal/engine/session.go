package engine

import (
	"context"
	"encoding/json"
	"math"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"

	"dungeon-server/internal/config"
	"dungeon-server/internal/domain"
	"dungeon-server/internal/network"
	"dungeon-server/internal/systems"
	"dungeon-server/pkg/api"
	"dungeon-server/pkg/dungeon"
	"dungeon-server/pkg/logger"
	"dungeon-server/pkg/utils"
)

// Период тика симуляции; кадры уходят каждый тик, то есть ~10 FPS
const TickInterval = 100 * time.Millisecond

// Предмет в правой руке нового игрока
const defaultToolID = "pickaxe_basic"

// JoinRequest - заявка на вход. Пустой Token означает нового игрока.
type JoinRequest struct {
	Token string
	Name  string
}

// SessionCommand обертка, чтобы передать команду и того, кто её вызвал
type SessionCommand struct {
	Key string
	Cmd api.ClientCommand
}

// Session - одна запущенная симуляция. Владеет миром, реестром и всеми
// профилями игроков; мутирует их исключительно из горутины Run.
type Session struct {
	World    *domain.GameWorld
	Registry *Registry
	Scrolls  ScrollGenerator

	Hub  *network.Broadcaster
	Data *config.GameData

	// Профили живут всю сессию: дисконнект только помечает их
	Players map[string]*domain.PlayerProfile

	JoinChan    chan JoinRequest
	LeaveChan   chan string
	CommandChan chan SessionCommand

	Rng  *rand.Rand
	Seed int64
}

func NewSession(cfg Config, data *config.GameData, hub *network.Broadcaster) *Session {
	rng := rand.New(rand.NewSource(cfg.Seed))

	world := dungeon.Generate(rng, data.Settings.Biomes.Count, data.Settings.Biomes.Radius)
	reg := NewRegistry(data, world, rng)

	s := &Session{
		World:       world,
		Registry:    reg,
		Hub:         hub,
		Data:        data,
		Players:     make(map[string]*domain.PlayerProfile),
		JoinChan:    make(chan JoinRequest, 10),
		LeaveChan:   make(chan string, 10),
		CommandChan: make(chan SessionCommand, 100),
		Rng:         rng,
		Seed:        cfg.Seed,
	}

	// Порядок важен: сперва население мира врагами, затем свитки по
	// живым типам, и только потом сундуки, разбирающие очередь свитков
	reg.Populate()
	s.Scrolls.Generate(reg)
	reg.PlaceChests(&s.Scrolls.Queue)

	logger.Log.WithFields(logrus.Fields{
		"seed":     cfg.Seed,
		"entities": len(reg.Entities),
		"enemies":  len(reg.Enemies),
		"scrolls":  s.Scrolls.Queue.Len(),
	}).Info("Session initialized")

	return s
}

// Run крутит цикл симуляции до отмены контекста.
func (s *Session) Run(ctx context.Context) {
	ticker := time.NewTicker(TickInterval)
	defer ticker.Stop()

	logger.Log.Info("Session loop started")

	for {
		select {
		case <-ctx.Done():
			logger.Log.Info("Session loop stopped")
			return
		case req := <-s.JoinChan:
			s.handleJoin(req)
		case key := <-s.LeaveChan:
			s.handleLeave(key)
		case sc := <-s.CommandChan:
			s.handleCommand(sc)
		case now := <-ticker.C:
			s.tick(now)
		}
	}
}

// --- systems.WorldIndex ---

func (s *Session) SolidEntityAt(x, y int) bool {
	return s.Registry.SolidEntityAt(x, y)
}

func (s *Session) EnemyAt(x, y int) *domain.EnemyInstance {
	return s.Registry.EnemyAt(x, y)
}

func (s *Session) PlayerAt(x, y int) *domain.PlayerProfile {
	for _, p := range s.Players {
		if p.Connected && p.Pos.X == x && p.Pos.Y == y {
			return p
		}
	}
	return nil
}

// --- Вход/выход ---

func (s *Session) handleJoin(req JoinRequest) {
	p, ok := s.Players[req.Token]
	if !ok {
		p = s.createProfile(req.Token, req.Name)
		s.Players[req.Token] = p
		logger.Log.WithFields(logrus.Fields{
			"key": req.Token, "name": p.Name,
		}).Info("Player joined")
	} else {
		// Реконнект: профиль, позиция и экипировка восстанавливаются
		if req.Name != "" {
			p.Name = req.Name
		}
		logger.Log.WithFields(logrus.Fields{
			"key": req.Token, "name": p.Name,
		}).Info("Player reconnected")
	}
	p.Connected = true

	s.Hub.SendTo(p.Key, api.ServerResponse{
		Type:   api.TypeJoined,
		Joined: &api.JoinedView{OK: true, Token: p.Key, Name: p.Name},
	})
	s.emitEquip(p)
	s.emitCooldown(p, time.Now())
	s.emitMapReveal(p)
}

func (s *Session) handleLeave(key string) {
	p, ok := s.Players[key]
	if !ok {
		return
	}
	p.Connected = false
	p.Pending = nil
	logger.Log.WithFields(logrus.Fields{"key": key, "name": p.Name}).Info("Player left, profile retained")
}

// createProfile собирает нового игрока: случайная раздача очков по
// боевым статам, базовые статы с единицы, кирка в правую руку.
func (s *Session) createProfile(key, name string) *domain.PlayerProfile {
	if name == "" {
		name = "Wanderer"
	}
	p := domain.NewPlayerProfile(key, name)
	p.Stats = s.rollStats(key)
	p.Pos = s.Registry.RandomEmptyCell()
	p.Angle = math.Pi / 2

	if tool := s.Registry.NewItemInstance(defaultToolID); tool != nil {
		p.Inventory = append(p.Inventory, tool.ID)
		p.Equipment[domain.SlotRightHand] = tool.ID
	}

	// Приветственный сундук на соседней свободной клетке. Если очередь
	// свитков уже иссякла, сундук будет пустым.
	s.placeWelcomeChest(p.Pos)
	return p
}

func (s *Session) placeWelcomeChest(pos domain.Position) {
	dirs := [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	for _, d := range dirs {
		x, y := pos.X+d[0], pos.Y+d[1]
		if s.World.IsWall(x, y) || s.Registry.EntityAt(x, y) != nil || s.Registry.EnemyAt(x, y) != nil {
			continue
		}
		s.Registry.PlaceChest(domain.Position{X: x, Y: y}, &s.Scrolls.Queue)
		return
	}
}

// rollStats раздает initial_attributes_count очков по восьми боевым
// статам; strength/speed/backpack всегда начинаются с 1.
// Рандом сидируется ключом игрока: один и тот же токен всегда дает
// одну и ту же раздачу.
func (s *Session) rollStats(key string) domain.PlayerStats {
	rng := rand.New(rand.NewSource(utils.StringToSeed(key)))

	stats := domain.PlayerStats{Strength: 1, Speed: 1, BackpackSize: 1}
	buckets := []*int{
		&stats.Attack, &stats.Defense,
		&stats.WaterDamage, &stats.WaterDefense,
		&stats.FireDamage, &stats.FireDefense,
		&stats.EarthDamage, &stats.EarthDefense,
	}
	for i := 0; i < s.Data.Settings.InitialAttributes; i++ {
		*buckets[rng.Intn(len(buckets))]++
	}
	return stats
}

// --- Команды ---

func (s *Session) handleCommand(sc SessionCommand) {
	p, ok := s.Players[sc.Key]
	if !ok || !p.Connected {
		return
	}
	now := time.Now()

	switch sc.Cmd.Action {
	case "control":
		var pl api.ControlPayload
		if err := json.Unmarshal(sc.Cmd.Payload, &pl); err != nil {
			logger.Log.WithError(err).Warn("Malformed control payload")
			return
		}
		if err := pl.Validate(); err != nil {
			logger.Log.WithError(err).WithField("key", sc.Key).Warn("Rejected control")
			return
		}
		s.acceptInput(p, now, domain.InputControl, pl.Command)

	case "action":
		var pl api.ActionPayload
		if err := json.Unmarshal(sc.Cmd.Payload, &pl); err != nil {
			logger.Log.WithError(err).Warn("Malformed action payload")
			return
		}
		if err := pl.Validate(); err != nil {
			logger.Log.WithError(err).WithField("key", sc.Key).Warn("Rejected action")
			return
		}
		s.acceptInput(p, now, domain.InputAction, pl.Button)

	default:
		logger.Log.WithField("action", sc.Cmd.Action).Warn("Unknown client action")
	}
}

// acceptInput пропускает ввод через кулдаун: вне окна диспатч сразу,
// внутри - единственный отложенный слот с перезаписью.
func (s *Session) acceptInput(p *domain.PlayerProfile, now time.Time, kind domain.InputKind, value string) {
	if QueueInput(p, now, kind, value) {
		s.dispatchInput(p, now, kind, value)
		StartCooldown(p, now, s.Data.Settings.Speed)
	}
	s.emitCooldown(p, now)
}

func (s *Session) dispatchInput(p *domain.PlayerProfile, now time.Time, kind domain.InputKind, value string) {
	switch kind {
	case domain.InputControl:
		s.applyControl(p, value)
	case domain.InputAction:
		s.applyAction(p, now, value)
	}
}

// applyControl: повороты мгновенно меняют угол, движение через
// разрешение коллизий.
func (s *Session) applyControl(p *domain.PlayerProfile, cmd string) {
	switch cmd {
	case "left", "turn_left":
		p.Angle = normalize(p.Angle - math.Pi/2)
		return
	case "right", "turn_right":
		p.Angle = normalize(p.Angle + math.Pi/2)
		return
	}

	fx, fy := p.FacingDelta()
	var dx, dy int
	switch cmd {
	case "up":
		dx, dy = fx, fy
	case "down":
		dx, dy = -fx, -fy
	case "strafe_left":
		dx, dy = fy, -fx
	case "strafe_right":
		dx, dy = -fy, fx
	default:
		return
	}

	res := systems.CalculateMove(p.Pos, dx, dy, s.World, s)
	if res.HasMoved {
		p.Pos = res.NewPos
	}
}

// applyAction обрабатывает кнопки рук и запрос инвентаря.
func (s *Session) applyAction(p *domain.PlayerProfile, now time.Time, button string) {
	if button == "inventory" {
		s.emitState(p)
		return
	}

	slot := domain.SlotRightHand
	if button == "left" {
		slot = domain.SlotLeftHand
	}
	toolID := p.Equipment[slot]
	tool := s.Registry.Instance(toolID)
	var toolType *domain.ItemType
	if tool != nil {
		toolType = s.Registry.ItemType(tool.TypeID)
	}

	fx, fy := p.FacingDelta()
	tx, ty := p.Pos.X+fx, p.Pos.Y+fy

	// Приоритет цели: враг, затем сущность, затем стена
	if enemy := s.Registry.EnemyAt(tx, ty); enemy != nil {
		s.strikeEnemy(p, enemy, toolType, tx, ty)
		return
	}
	if ent := s.Registry.EntityAt(tx, ty); ent != nil {
		s.useEntity(p, ent)
		return
	}
	if s.World.IsWall(tx, ty) {
		s.strikeWall(p, slot, tool, toolType, tx, ty)
	}
}

// strikeEnemy бьет врага рукой: урон складывается из статов игрока и
// предмета, защита врага вычитается с полом на единице.
func (s *Session) strikeEnemy(p *domain.PlayerProfile, enemy *domain.EnemyInstance, toolType *domain.ItemType, x, y int) {
	et := s.Registry.EnemyType(enemy.TypeID)
	if et == nil || enemy.State == domain.StateDie {
		return
	}

	dmg := p.Stats.Attack
	if toolType != nil {
		dmg += toolType.Stats.Attack
	}
	dmg -= et.Stats.Defense
	if dmg < 1 {
		dmg = 1
	}
	enemy.HP -= dmg
	if enemy.HP < 0 {
		enemy.HP = 0
	}

	logger.Log.WithFields(logrus.Fields{
		"player": p.Key, "enemy": enemy.TypeID, "damage": dmg, "hp": enemy.HP,
	}).Debug("Enemy struck")

	s.Hub.SendTo(p.Key, api.ServerResponse{
		Type: api.TypeFx,
		Fx:   &api.FxView{Kind: "hit_spark", X: x, Y: y},
	})
}

// useEntity - рука по сущности: предметы подбираются в рюкзак, сундуки
// отдают свиток.
func (s *Session) useEntity(p *domain.PlayerProfile, ent *domain.WorldEntity) {
	switch ent.Kind {
	case domain.EntityItem:
		s.pickUp(p, ent)
	case domain.EntityChest:
		s.openChest(p, ent)
	}
}

func (s *Session) pickUp(p *domain.PlayerProfile, ent *domain.WorldEntity) {
	it := s.Registry.ItemType(ent.ItemTypeID)
	if it == nil {
		return
	}
	capacity := s.backpackCapacity(p)
	if p.BackpackWeightUsed+it.Stats.Weight > capacity {
		logger.Log.WithFields(logrus.Fields{
			"player": p.Key, "item": it.ID,
		}).Debug("Backpack full, pickup refused")
		return
	}

	inst := s.Registry.NewItemInstance(it.ID)
	if inst == nil {
		return
	}
	p.Inventory = append(p.Inventory, inst.ID)
	p.BackpackWeightUsed += it.Stats.Weight
	s.Registry.RemoveEntity(ent.ID)

	logger.Log.WithFields(logrus.Fields{"player": p.Key, "item": it.ID}).Info("Item picked up")
	s.emitState(p)
}

// openChest выдает содержимое сундука. Пустой сундук (очередь свитков
// была исчерпана при создании) просто ничего не дает.
func (s *Session) openChest(p *domain.PlayerProfile, chest *domain.WorldEntity) {
	if chest.ScrollID == "" {
		return
	}
	inst := s.Registry.NewItemInstance(chest.ScrollID)
	if inst == nil {
		logger.Log.WithField("scroll", chest.ScrollID).Warn("Chest references unknown scroll type")
		chest.ScrollID = ""
		return
	}
	p.Inventory = append(p.Inventory, inst.ID)
	chest.ScrollID = ""

	logger.Log.WithFields(logrus.Fields{
		"player": p.Key, "scroll": inst.TypeID,
	}).Info("Scroll taken from chest")
	s.emitState(p)
}

// strikeWall бьет стену инструментом и разруливает последствия:
// трещины, износ, поломку с аннулированием слота.
func (s *Session) strikeWall(p *domain.PlayerProfile, slot domain.Slot, tool *domain.ItemInstance, toolType *domain.ItemType, x, y int) {
	if tool == nil || toolType == nil {
		return
	}
	wt := s.Registry.WallTypeFor(s.World.BiomeAt(x, y))
	if wt == nil {
		return
	}

	walls := s.Data.Settings.Walls
	res := systems.ApplyToolHit(s.World, x, y, tool, toolType, wt, walls.HPBase, walls.HPPerBiome)
	if !res.Applied {
		return
	}

	// Каждый удар дает искру; пока стена стоит, поверх идет трещина
	// с интенсивностью по утраченной прочности
	s.Hub.SendTo(p.Key, api.ServerResponse{
		Type: api.TypeFx,
		Fx:   &api.FxView{Kind: "hit_spark", X: x, Y: y},
	})
	if res.WallBroke {
		logger.Log.WithFields(logrus.Fields{"x": x, "y": y, "player": p.Key}).Info("Wall broken")
	} else {
		s.Hub.SendTo(p.Key, api.ServerResponse{
			Type: api.TypeFx,
			Fx:   &api.FxView{Kind: "crack", X: x, Y: y, Level: 1 - res.HPFrac},
		})
	}

	if res.ToolBroke {
		// Поломка: слот чистится, экземпляр исчезает из инвентаря и мира
		p.Equipment[slot] = 0
		p.RemoveFromInventory(tool.ID)
		p.BackpackWeightUsed -= toolType.Stats.Weight
		if p.BackpackWeightUsed < 0 {
			p.BackpackWeightUsed = 0
		}
		s.Registry.RemoveInstance(tool.ID)
		logger.Log.WithFields(logrus.Fields{
			"player": p.Key, "item": toolType.ID,
		}).Info("Tool broke")
	}

	// Любое изменение прочности инструмента тянет за собой снимок
	// экипировки, чтобы HUD не расходился с сервером
	if res.ToolDamaged > 0 || res.ToolBroke {
		s.emitEquip(p)
	}
}

func (s *Session) backpackCapacity(p *domain.PlayerProfile) float64 {
	bpID := p.Equipment[domain.SlotBackpack]
	bp := s.Registry.Instance(bpID)
	if bp == nil {
		return 0
	}
	it := s.Registry.ItemType(bp.TypeID)
	if it == nil {
		return 0
	}
	return it.Stats.CapacityWeight * float64(p.Stats.BackpackSize)
}

// --- Тик ---

func (s *Session) tick(now time.Time) {
	// Отложенный ввод, чей кулдаун истек
	for _, p := range s.Players {
		if !p.Connected {
			continue
		}
		if in := TakePending(p, now); in != nil {
			s.dispatchInput(p, now, in.Kind, in.Value)
			StartCooldown(p, now, s.Data.Settings.Speed)
			s.emitCooldown(p, now)
		}
	}

	if s.Data.Settings.EnemiesMove() {
		s.advanceEnemies(now)
	}

	s.renderFrames()
}

func (s *Session) advanceEnemies(now time.Time) {
	players := make([]*domain.PlayerProfile, 0, len(s.Players))
	for _, p := range s.Players {
		if p.Connected {
			players = append(players, p)
		}
	}

	var remove []domain.InstanceID
	for _, enemy := range s.Registry.Enemies {
		et := s.Registry.EnemyType(enemy.TypeID)
		if et == nil {
			remove = append(remove, enemy.ID)
			continue
		}
		res := systems.AdvanceEnemy(now, s.Rng, enemy, et, s.World, s, players)
		if res.Attack != nil {
			s.applyEnemyAttack(enemy, res.Attack)
		}
		if res.Remove {
			remove = append(remove, enemy.ID)
		}
	}
	for _, id := range remove {
		s.Registry.RemoveEnemy(id)
	}
}

func (s *Session) applyEnemyAttack(enemy *domain.EnemyInstance, intent *systems.AttackIntent) {
	target, ok := s.Players[intent.TargetKey]
	if !ok || !target.Connected {
		return
	}
	dmg := intent.Damage - target.Stats.Defense
	if dmg < 1 {
		dmg = 1
	}
	target.HP -= dmg
	if target.HP < 0 {
		target.HP = 0
	}
	logger.Log.WithFields(logrus.Fields{
		"enemy": enemy.TypeID, "player": target.Key, "damage": dmg, "hp": target.HP,
	}).Debug("Enemy attacks player")

	s.Hub.SendTo(target.Key, api.ServerResponse{
		Type: api.TypeFx,
		Fx:   &api.FxView{Kind: "hit_spark", X: target.Pos.X, Y: target.Pos.Y},
	})

	if target.HP == 0 {
		s.respawnPlayer(target)
	}
	s.emitState(target)
}

// respawnPlayer возвращает убитого игрока в мир: полное здоровье, новая
// случайная клетка. Инвентарь и экипировка остаются при нем.
func (s *Session) respawnPlayer(p *domain.PlayerProfile) {
	p.HP = domain.PlayerMaxHP
	p.Pos = s.Registry.RandomEmptyCell()
	p.Pending = nil
	logger.Log.WithFields(logrus.Fields{"player": p.Key}).Info("Player died, respawned")
}

// renderFrames строит и рассылает по кадру каждому подключенному игроку.
func (s *Session) renderFrames() {
	walls := s.Data.Settings.Walls
	for _, p := range s.Players {
		if !p.Connected || !s.Hub.HasSubscriber(p.Key) {
			continue
		}
		cam := systems.Camera{X: p.Pos.CenterX(), Y: p.Pos.CenterY(), Angle: p.Angle}
		frame := systems.RenderFrame(s.World, cam, s.billboardsFor(p), walls.HPBase, walls.HPPerBiome)
		s.Hub.SendTo(p.Key, api.ServerResponse{Type: api.TypeFrame, Frame: frame})
		s.emitMapReveal(p)
	}
}

// emitMapReveal открывает игроку миникарту вокруг его позиции. Режим
// "full" отдает всю карту одним сообщением, "reveal" - только клетки в
// радиусе reveal_radius; каждая клетка уходит клиенту ровно один раз.
func (s *Session) emitMapReveal(p *domain.PlayerProfile) {
	vis := s.Data.Settings.Visibility
	var cells []api.MapCellView

	collect := func(x, y int) {
		pos := domain.Position{X: x, Y: y}
		if p.Revealed[pos] {
			return
		}
		p.Revealed[pos] = true
		cells = append(cells, api.MapCellView{
			X: x, Y: y,
			Wall:  s.World.IsWall(x, y),
			Biome: s.World.BiomeAt(x, y),
		})
	}

	switch vis.Mode {
	case "full":
		if len(p.Revealed) > 0 {
			return // вся карта уже отправлена при входе
		}
		for y := 0; y < s.World.Height; y++ {
			for x := 0; x < s.World.Width; x++ {
				collect(x, y)
			}
		}
	default: // "reveal"
		r := vis.RevealRadius
		if r <= 0 {
			return
		}
		r2 := r * r
		for dy := -r; dy <= r; dy++ {
			for dx := -r; dx <= r; dx++ {
				if dx*dx+dy*dy > r2 {
					continue
				}
				x, y := p.Pos.X+dx, p.Pos.Y+dy
				if s.World.InBounds(x, y) {
					collect(x, y)
				}
			}
		}
	}

	if len(cells) == 0 {
		return
	}
	s.Hub.SendTo(p.Key, api.ServerResponse{
		Type: api.TypeMap,
		Map:  &api.MapView{W: s.World.Width, H: s.World.Height, Cells: cells},
	})
}

// billboardsFor собирает спрайты мира глазами одного игрока: сущности,
// враги (трупы дотлевают на месте) и другие игроки.
func (s *Session) billboardsFor(viewer *domain.PlayerProfile) []systems.Billboard {
	bbs := make([]systems.Billboard, 0, len(s.Registry.Entities)+len(s.Registry.Enemies))

	for _, ent := range s.Registry.Entities {
		bbs = append(bbs, systems.Billboard{
			X: ent.Pos.CenterX(), Y: ent.Pos.CenterY(),
			Img:     ent.Sprite.Image,
			BaseW:   ent.Sprite.BaseW,
			BaseH:   ent.Sprite.BaseH,
			Scale:   ent.Sprite.Scale,
			YOffset: ent.Sprite.YOffset,
			IsItem:  true,
		})
	}

	for _, enemy := range s.Registry.Enemies {
		et := s.Registry.EnemyType(enemy.TypeID)
		if et == nil || et.Image == "" {
			continue
		}
		bbs = append(bbs, systems.Billboard{
			X: enemy.Pos.CenterX(), Y: enemy.Pos.CenterY(),
			Img:   "items/" + et.Image,
			BaseW: 64, BaseH: 64, Scale: 1.0,
		})
	}

	for _, other := range s.Players {
		if other.Key == viewer.Key || !other.Connected {
			continue
		}
		bbs = append(bbs, systems.Billboard{
			X: other.Pos.CenterX(), Y: other.Pos.CenterY(),
			Img:   "players/player.png",
			BaseW: 64, BaseH: 64, Scale: 1.0,
		})
	}

	return bbs
}

// --- Снимки для клиента ---

func (s *Session) itemView(id domain.InstanceID) *api.ItemView {
	inst := s.Registry.Instance(id)
	if inst == nil {
		return nil
	}
	it := s.Registry.ItemType(inst.TypeID)
	name := inst.TypeID
	maxDur := 0
	desc := ""
	if it != nil {
		name = it.Name
		maxDur = it.Stats.Durability
		desc = it.Description
	}
	return &api.ItemView{
		ID:            inst.TypeID,
		Name:          name,
		Durability:    inst.Durability,
		MaxDurability: maxDur,
		Description:   desc,
	}
}

func (s *Session) equipView(p *domain.PlayerProfile) map[string]*api.ItemView {
	view := make(map[string]*api.ItemView, len(domain.AllSlots))
	for _, slot := range domain.AllSlots {
		var iv *api.ItemView
		if id := p.Equipment[slot]; id != 0 {
			iv = s.itemView(id)
		}
		view[string(slot)] = iv
	}
	return view
}

func (s *Session) emitEquip(p *domain.PlayerProfile) {
	s.Hub.SendTo(p.Key, api.ServerResponse{
		Type:  api.TypeEquip,
		Equip: &api.EquipView{Equipment: s.equipView(p)},
	})
}

func (s *Session) emitCooldown(p *domain.PlayerProfile, now time.Time) {
	d := MoveInterval(s.Data.Settings.Speed, p.Stats.Speed)
	s.Hub.SendTo(p.Key, api.ServerResponse{
		Type: api.TypeCooldown,
		Cooldown: &api.CooldownView{
			Now:      float64(now.UnixNano()) / 1e9,
			ReadyAt:  float64(p.ReadyAt.UnixNano()) / 1e9,
			Duration: d.Seconds(),
		},
	})
}

func (s *Session) emitState(p *domain.PlayerProfile) {
	st := p.Stats
	stats := map[string]int{
		"hp":     p.HP,
		"attack": st.Attack, "defense": st.Defense,
		"water_damage": st.WaterDamage, "water_defense": st.WaterDefense,
		"fire_damage": st.FireDamage, "fire_defense": st.FireDefense,
		"earth_damage": st.EarthDamage, "earth_defense": st.EarthDefense,
		"strength": st.Strength, "speed": st.Speed, "backpack_size": st.BackpackSize,
	}

	inv := make([]api.ItemView, 0, len(p.Inventory))
	for _, id := range p.Inventory {
		if iv := s.itemView(id); iv != nil {
			inv = append(inv, *iv)
		}
	}

	s.Hub.SendTo(p.Key, api.ServerResponse{
		Type: api.TypeState,
		State: &api.StateView{
			Stats:     stats,
			Equipment: s.equipView(p),
			Inventory: inv,
		},
	})
}

func normalize(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}
