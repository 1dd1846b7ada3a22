package dungeon

import (
	"math/rand"

	"dungeon-server/internal/domain"
)

// Константы генерации лабиринта
const (
	CorridorWidth = 3 // ширина коридора в тайлах
	WallWidth     = 1 // толщина стены между коридорами
	RoomProb      = 0.08

	stride = CorridorWidth + WallWidth
)

// Generate создает мир: сплошной камень, лабиринт DFS по макро-сетке,
// затем биомы с большими круглыми комнатами в центрах.
// Весь рандом идет через переданный rng, так что одно и то же зерно
// всегда дает один и тот же мир.
func Generate(rng *rand.Rand, biomeCount, biomeRadius int) *domain.GameWorld {
	world := domain.NewGameWorld(domain.GridWidth, domain.GridHeight)

	// 1. Заполняем все стенами (внешнее кольцо так и останется стеной)
	for y := 0; y < world.Height; y++ {
		for x := 0; x < world.Width; x++ {
			world.Tiles[y][x].Kind = domain.TileWall
		}
	}

	// 2. Вырезаем лабиринт внутри кольца
	carveMaze(rng, world)

	// 3. Биомы и комнаты в их центрах
	generateBiomes(rng, world, biomeCount, biomeRadius)

	return world
}

// carveMaze - рандомизированный DFS по макро-сетке. Макро-ячейка (i, j)
// раскрывается в блок CorridorWidth x CorridorWidth с базой
// (1 + i*stride, 1 + j*stride); проход между соседями прорубается на всю
// ширину коридора.
func carveMaze(rng *rand.Rand, world *domain.GameWorld) {
	mw := (world.Width - 1) / stride
	mh := (world.Height - 1) / stride
	if mw < 1 {
		mw = 1
	}
	if mh < 1 {
		mh = 1
	}

	visited := make([][]bool, mh)
	for j := range visited {
		visited[j] = make([]bool, mw)
	}

	type macro struct{ i, j int }

	start := macro{rng.Intn(mw), rng.Intn(mh)}
	visited[start.j][start.i] = true
	carveCell(world, start.i, start.j)

	stack := []macro{start}

	neighbors := func(i, j int) []macro {
		opts := make([]macro, 0, 4)
		if i > 0 {
			opts = append(opts, macro{i - 1, j})
		}
		if i+1 < mw {
			opts = append(opts, macro{i + 1, j})
		}
		if j > 0 {
			opts = append(opts, macro{i, j - 1})
		}
		if j+1 < mh {
			opts = append(opts, macro{i, j + 1})
		}
		rng.Shuffle(len(opts), func(a, b int) { opts[a], opts[b] = opts[b], opts[a] })
		return opts
	}

	for len(stack) > 0 {
		cur := stack[len(stack)-1]

		// Иногда расширяем ячейку в маленькую комнату, сливая соседей
		if rng.Float64() < RoomProb {
			rw := 2
			if cur.i+2 < mw && rng.Intn(2) == 1 {
				rw = 3
			}
			rh := 1
			if cur.j+2 < mh && rng.Intn(2) == 1 {
				rh = 2
			}
			for dj := 0; dj < rh; dj++ {
				for di := 0; di < rw; di++ {
					ii, jj := cur.i+di, cur.j+dj
					if ii < mw && jj < mh && !visited[jj][ii] {
						openBetween(world, cur.i, cur.j, ii, jj)
						carveCell(world, ii, jj)
						visited[jj][ii] = true
						stack = append(stack, macro{ii, jj})
					}
				}
			}
			continue
		}

		var unvisited []macro
		for _, n := range neighbors(cur.i, cur.j) {
			if !visited[n.j][n.i] {
				unvisited = append(unvisited, n)
			}
		}
		if len(unvisited) == 0 {
			stack = stack[:len(stack)-1]
			continue
		}
		next := unvisited[rng.Intn(len(unvisited))]
		openBetween(world, cur.i, cur.j, next.i, next.j)
		carveCell(world, next.i, next.j)
		visited[next.j][next.i] = true
		stack = append(stack, next)
	}
}

func cellBase(i, j int) (int, int) {
	return 1 + i*stride, 1 + j*stride
}

func carveCell(world *domain.GameWorld, i, j int) {
	bx, by := cellBase(i, j)
	carveRect(world, bx, by, bx+CorridorWidth-1, by+CorridorWidth-1)
}

// openBetween прорубает разделяющую стену между соседними макро-ячейками
// на всю ширину коридора. Несоседние пары молча игнорируются.
func openBetween(world *domain.GameWorld, i1, j1, i2, j2 int) {
	bx1, by1 := cellBase(i1, j1)
	bx2, by2 := cellBase(i2, j2)
	switch {
	case i2 == i1+1 && j2 == j1: // вправо
		wx := bx1 + CorridorWidth
		carveRect(world, wx, by1, wx, by1+CorridorWidth-1)
	case i2 == i1-1 && j2 == j1: // влево
		wx := bx2 + CorridorWidth
		carveRect(world, wx, by2, wx, by2+CorridorWidth-1)
	case j2 == j1+1 && i2 == i1: // вниз
		wy := by1 + CorridorWidth
		carveRect(world, bx1, wy, bx1+CorridorWidth-1, wy)
	case j2 == j1-1 && i2 == i1: // вверх
		wy := by2 + CorridorWidth
		carveRect(world, bx2, wy, bx2+CorridorWidth-1, wy)
	}
}

// carveRect очищает прямоугольник [x0..x1]x[y0..y1], не трогая внешнее
// кольцо стен и все, что за границами.
func carveRect(world *domain.GameWorld, x0, y0, x1, y1 int) {
	for y := y0; y <= y1; y++ {
		if y < 1 || y > world.Height-2 {
			continue
		}
		for x := x0; x <= x1; x++ {
			if x < 1 || x > world.Width-2 {
				continue
			}
			world.Tiles[y][x] = domain.Tile{Kind: domain.TileEmpty}
		}
	}
}

// RandomEmptyCell ищет пустую клетку внутри кольца; занятость проверяется
// колбэком (сущности, игроки). После 500 случайных попыток переходит на
// линейный перебор, в вырожденном случае возвращает (1,1).
func RandomEmptyCell(rng *rand.Rand, world *domain.GameWorld, occupied func(x, y int) bool) domain.Position {
	for attempt := 0; attempt < 500; attempt++ {
		x := 1 + rng.Intn(world.Width-2)
		y := 1 + rng.Intn(world.Height-2)
		if !world.IsWall(x, y) && !occupied(x, y) {
			return domain.Position{X: x, Y: y}
		}
	}
	for y := 1; y < world.Height-1; y++ {
		for x := 1; x < world.Width-1; x++ {
			if !world.IsWall(x, y) && !occupied(x, y) {
				return domain.Position{X: x, Y: y}
			}
		}
	}
	return domain.Position{X: 1, Y: 1}
}
