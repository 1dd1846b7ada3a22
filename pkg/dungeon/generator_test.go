package dungeon

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dungeon-server/internal/domain"
)

func TestGenerate(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	world := Generate(rng, 6, 24)

	// 1. Размеры мира фиксированы
	require.Equal(t, domain.GridWidth, world.Width)
	require.Equal(t, domain.GridHeight, world.Height)

	// 2. Внешнее кольцо должно остаться сплошной стеной
	for x := 0; x < world.Width; x++ {
		assert.True(t, world.IsWall(x, 0), "top border breached at x=%d", x)
		assert.True(t, world.IsWall(x, world.Height-1), "bottom border breached at x=%d", x)
	}
	for y := 0; y < world.Height; y++ {
		assert.True(t, world.IsWall(0, y), "left border breached at y=%d", y)
		assert.True(t, world.IsWall(world.Width-1, y), "right border breached at y=%d", y)
	}

	// 3. Лабиринт вообще что-то вырезал
	empty := 0
	for y := 1; y < world.Height-1; y++ {
		for x := 1; x < world.Width-1; x++ {
			if !world.IsWall(x, y) {
				empty++
			}
		}
	}
	assert.Greater(t, empty, 1000, "maze carved suspiciously few tiles")
}

func TestGenerateDeterministic(t *testing.T) {
	// Одно и то же зерно всегда дает один и тот же мир
	a := Generate(rand.New(rand.NewSource(7)), 6, 24)
	b := Generate(rand.New(rand.NewSource(7)), 6, 24)

	require.Equal(t, a.Centers, b.Centers)
	for y := 0; y < a.Height; y++ {
		for x := 0; x < a.Width; x++ {
			if a.Tiles[y][x].Kind != b.Tiles[y][x].Kind {
				t.Fatalf("tile mismatch at (%d,%d)", x, y)
			}
		}
	}
}

func TestBiomeCenters(t *testing.T) {
	const count = 6
	rng := rand.New(rand.NewSource(99))
	world := Generate(rng, count, 24)

	require.Len(t, world.Centers, count)

	minEdge := BiomeRoomRadius
	if minEdge < 5 {
		minEdge = 5
	}

	seen := make(map[int]bool, count)
	for _, ctr := range world.Centers {
		// Центры держат дистанцию от внешних стен
		assert.GreaterOrEqual(t, ctr.X, 1+minEdge)
		assert.GreaterOrEqual(t, ctr.Y, 1+minEdge)
		assert.LessOrEqual(t, ctr.X, world.Width-2-minEdge)
		assert.LessOrEqual(t, ctr.Y, world.Height-2-minEdge)

		// id образуют перестановку 1..count
		assert.False(t, seen[ctr.ID], "duplicate biome id %d", ctr.ID)
		assert.GreaterOrEqual(t, ctr.ID, 1)
		assert.LessOrEqual(t, ctr.ID, count)
		seen[ctr.ID] = true
	}
}

func TestBiomeRooms(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	world := Generate(rng, 6, 24)

	// Вокруг каждого центра, чья комната поместилась, клетки в радиусе
	// комнаты должны быть пустыми
	rr := BiomeRoomRadius
	for _, ctr := range world.Centers {
		if ctr.X-rr < 1 || ctr.X+rr > world.Width-2 || ctr.Y-rr < 1 || ctr.Y+rr > world.Height-2 {
			continue
		}
		assert.False(t, world.IsWall(ctr.X, ctr.Y), "biome center (%d,%d) is a wall", ctr.X, ctr.Y)
		assert.False(t, world.IsWall(ctr.X+rr-1, ctr.Y), "room edge near (%d,%d) is a wall", ctr.X, ctr.Y)
	}

	// Клетка в биоме знает свой id
	for _, ctr := range world.Centers {
		assert.Equal(t, ctr.ID, world.BiomeAt(ctr.X, ctr.Y))
	}
}

func TestRandomEmptyCell(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	world := Generate(rng, 6, 24)

	// Блокируем первую попавшуюся пустую клетку и убеждаемся,
	// что выбор ее обходит
	blocked := RandomEmptyCell(rng, world, func(int, int) bool { return false })
	occupied := func(x, y int) bool { return x == blocked.X && y == blocked.Y }

	for i := 0; i < 50; i++ {
		pos := RandomEmptyCell(rng, world, occupied)
		require.False(t, world.IsWall(pos.X, pos.Y), "picked a wall at (%d,%d)", pos.X, pos.Y)
		require.NotEqual(t, blocked, pos)
	}
}
