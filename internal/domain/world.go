package domain

import "math"

// Размеры мира фиксированы: сетка 256x128, ребро клетки 4 единицы длины.
const (
	GridWidth  = 256
	GridHeight = 128
	CellSize   = 4
)

type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p Position) Shift(dx, dy int) Position {
	return Position{X: p.X + dx, Y: p.Y + dy}
}

func (p Position) DistanceTo(other Position) float64 {
	dx := float64(p.X - other.X)
	dy := float64(p.Y - other.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// CenterX / CenterY - центр клетки в непрерывных координатах.
// Сущности "стоят" в центрах клеток, лучи и биллборды считаются от них.
func (p Position) CenterX() float64 { return float64(p.X) + 0.5 }
func (p Position) CenterY() float64 { return float64(p.Y) + 0.5 }

type TileKind uint8

const (
	TileEmpty TileKind = iota
	TileWall
)

// Tile - одна клетка сетки.
// WallHP инициализируется ЛЕНИВО при первом ударе по стене (HPKnown == false
// до этого момента), а не во время генерации мира.
type Tile struct {
	Kind    TileKind
	WallHP  int
	HPKnown bool
}

// BiomeCenter - центр биома. ID из перемешанной перестановки 1..count.
type BiomeCenter struct {
	X  int
	Y  int
	ID int
}

// GameWorld - тайловая сетка с биомами. Владеет ею исключительно тик-цикл
// сессии; никакой другой компонент не мутирует её конкурентно.
type GameWorld struct {
	Width  int
	Height int

	// Tiles[y][x]
	Tiles [][]Tile
	// Biomes[y][x] - id биома клетки, 0 = вне биома
	Biomes [][]int

	Centers     []BiomeCenter
	BiomeRadius int
}

func NewGameWorld(width, height int) *GameWorld {
	tiles := make([][]Tile, height)
	biomes := make([][]int, height)
	for y := 0; y < height; y++ {
		tiles[y] = make([]Tile, width)
		biomes[y] = make([]int, width)
	}
	return &GameWorld{
		Width:  width,
		Height: height,
		Tiles:  tiles,
		Biomes: biomes,
	}
}

func (w *GameWorld) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < w.Width && y < w.Height
}

// IsWall: выход за границы считается стеной (защитная семантика для
// рейкаста и коллизий).
func (w *GameWorld) IsWall(x, y int) bool {
	if !w.InBounds(x, y) {
		return true
	}
	return w.Tiles[y][x].Kind == TileWall
}

// BiomeAt возвращает id биома клетки, 0 для выхода за границы.
func (w *GameWorld) BiomeAt(x, y int) int {
	if !w.InBounds(x, y) {
		return 0
	}
	return w.Biomes[y][x]
}

// AngleToCardinal проецирует произвольный угол взгляда (радианы) на
// ближайшее из четырех кардинальных направлений и возвращает шаг (dx, dy).
// Экранная ось Y растет вниз, поэтому "север" это dy = -1.
func AngleToCardinal(angle float64) (int, int) {
	a := math.Mod(angle, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	sector := int(math.Round(a/(math.Pi/2))) % 4
	switch sector {
	case 0:
		return 1, 0
	case 1:
		return 0, 1
	case 2:
		return -1, 0
	default:
		return 0, -1
	}
}

// WallMaxHP - потолок прочности стены в данной клетке:
// hpBase + hpPerBiome * biomeId. WallHP никогда его не превышает.
func (w *GameWorld) WallMaxHP(x, y int, hpBase, hpPerBiome int) int {
	hp := hpBase + hpPerBiome*w.BiomeAt(x, y)
	if hp < 1 {
		hp = 1
	}
	return hp
}
