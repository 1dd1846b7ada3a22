package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"dungeon-server/internal/domain"
	"dungeon-server/pkg/logger"
)

// SpeedConfig - отображение стата скорости на длительность кулдауна.
// Стат в [MinStat..MaxStat] интерполируется на [DurationAtMin..DurationAtMax]
// секунд ОБРАТНО: больше скорость, короче пауза между ходами.
type SpeedConfig struct {
	DurationAtMax float64 `json:"maxspeedpermove"`
	DurationAtMin float64 `json:"minspeed"`
	MaxStat       int     `json:"max_speed_stat"`
	MinStat       int     `json:"min_speed_stat"`
}

type SpawnsConfig struct {
	RandomItems   int `json:"random_items"`
	RandomChests  int `json:"random_chests"`
	RandomEnemies int `json:"random_enemies"`
}

type BiomesConfig struct {
	Count  int `json:"count"`
	Radius int `json:"radius"`
}

type WallsConfig struct {
	HPBase     int `json:"hp_base"`
	HPPerBiome int `json:"hp_per_biome"`
}

type EnemiesConfig struct {
	Move *bool `json:"move"` // nil трактуем как true
}

type VisibilityConfig struct {
	Mode         string `json:"mode"` // full | fog | reveal
	RevealRadius int    `json:"reveal_radius"`
}

// Settings - содержимое game_config.json плюс значения по умолчанию
// для всего, что файл не задал.
type Settings struct {
	InitialAttributes int              `json:"initial_attributes_count"`
	Speed             SpeedConfig      `json:"speed"`
	Spawns            SpawnsConfig     `json:"spawns"`
	Biomes            BiomesConfig     `json:"biomes"`
	Walls             WallsConfig      `json:"walls"`
	Enemies           EnemiesConfig    `json:"enemies"`
	Visibility        VisibilityConfig `json:"visibility"`
}

// MapEntity - ручная расстановка из map_entities.json.
// Kind: "item" | "chest" | "spawner".
type MapEntity struct {
	Kind    string `json:"kind"`
	ItemID  string `json:"item_id,omitempty"`
	EnemyID string `json:"enemy_id,omitempty"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
}

// GameData - все пять конфигурационных документов, загруженные разом.
type GameData struct {
	Settings   Settings
	Items      []domain.ItemType
	WallTypes  []domain.WallType
	EnemyTypes []domain.EnemyType
	Placements []MapEntity
}

// Default возвращает настройки по умолчанию. Частично заполненный
// game_config.json накладывается поверх них.
func Default() Settings {
	move := true
	return Settings{
		InitialAttributes: 10,
		Speed: SpeedConfig{
			DurationAtMax: 1,
			DurationAtMin: 3,
			MaxStat:       16,
			MinStat:       1,
		},
		Spawns:     SpawnsConfig{},
		Biomes:     BiomesConfig{Count: 6, Radius: 24},
		Walls:      WallsConfig{HPBase: 3, HPPerBiome: 1},
		Enemies:    EnemiesConfig{Move: &move},
		Visibility: VisibilityConfig{Mode: "reveal", RevealRadius: 6},
	}
}

// EnemiesMove: двигается ли вражеский ИИ вообще (рубильник для отладки).
func (s Settings) EnemiesMove() bool {
	return s.Enemies.Move == nil || *s.Enemies.Move
}

// Load читает все пять JSON-документов из dir. Отсутствующий файл не
// ошибка (берутся значения по умолчанию / пустые каталоги), а вот
// синтаксически битый JSON - фатален для вызывающего.
func Load(dir string) (*GameData, error) {
	gd := &GameData{Settings: Default()}

	if err := readJSON(filepath.Join(dir, "game_config.json"), &gd.Settings); err != nil {
		return nil, err
	}
	if err := readJSON(filepath.Join(dir, "items.json"), &gd.Items); err != nil {
		return nil, err
	}
	if err := readJSON(filepath.Join(dir, "wall_types.json"), &gd.WallTypes); err != nil {
		return nil, err
	}
	if err := readJSON(filepath.Join(dir, "enemy_types.json"), &gd.EnemyTypes); err != nil {
		return nil, err
	}
	if err := readJSON(filepath.Join(dir, "map_entities.json"), &gd.Placements); err != nil {
		return nil, err
	}

	if err := gd.validate(); err != nil {
		return nil, err
	}

	logger.Log.WithFields(map[string]interface{}{
		"items":       len(gd.Items),
		"wall_types":  len(gd.WallTypes),
		"enemy_types": len(gd.EnemyTypes),
		"placements":  len(gd.Placements),
	}).Info("Game data loaded")

	return gd, nil
}

// readJSON декодирует файл в dst; отсутствие файла молча пропускается.
func readJSON(path string, dst interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Log.WithField("path", path).Debug("Config file missing, using defaults")
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// validate проверяет инварианты, без которых движок не сможет корректно
// работать: пустые id, перепутанные границы интерполяции скорости.
func (gd *GameData) validate() error {
	s := gd.Settings
	if s.Speed.MaxStat <= s.Speed.MinStat {
		return fmt.Errorf("speed config: max_speed_stat (%d) must exceed min_speed_stat (%d)",
			s.Speed.MaxStat, s.Speed.MinStat)
	}
	if s.Speed.DurationAtMin < s.Speed.DurationAtMax {
		return fmt.Errorf("speed config: minspeed (%.2f) must be >= maxspeedpermove (%.2f)",
			s.Speed.DurationAtMin, s.Speed.DurationAtMax)
	}
	if s.Biomes.Count < 0 || s.Biomes.Radius <= 0 {
		return fmt.Errorf("biomes config: count=%d radius=%d", s.Biomes.Count, s.Biomes.Radius)
	}

	seen := make(map[string]bool, len(gd.Items))
	for i, it := range gd.Items {
		if it.ID == "" {
			return fmt.Errorf("items[%d]: empty id", i)
		}
		if seen[it.ID] {
			return fmt.Errorf("items[%d]: duplicate id %q", i, it.ID)
		}
		seen[it.ID] = true
	}

	for i, et := range gd.EnemyTypes {
		if et.ID == "" {
			return fmt.Errorf("enemy_types[%d]: empty type", i)
		}
		if et.Stats.Health <= 0 {
			return fmt.Errorf("enemy_types[%d] %q: non-positive health %d", i, et.ID, et.Stats.Health)
		}
	}

	for i, wt := range gd.WallTypes {
		if wt.ID == "" {
			return fmt.Errorf("wall_types[%d]: empty id", i)
		}
	}

	return nil
}
