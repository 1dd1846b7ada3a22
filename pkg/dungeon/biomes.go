package dungeon

import (
	"math"
	"math/rand"

	"dungeon-server/internal/domain"
)

// Радиус большой круглой комнаты, вырезаемой в центре каждого биома.
const BiomeRoomRadius = 12

// generateBiomes размечает клетки по биомам и вырезает комнаты в их
// центрах. Карта делится на cols x rows сегментов примерно по аспекту
// мира, в каждый сегмент ставится один центр. Номера биомов 1..count
// перемешиваются, так что раскраска сегментов меняется от зерна к зерну.
func generateBiomes(rng *rand.Rand, world *domain.GameWorld, count, radius int) {
	world.BiomeRadius = radius
	if count <= 0 {
		return
	}

	// Центр обязан отстоять от внешних стен минимум на max(5, room_r),
	// чтобы комната гарантированно поместилась целиком.
	minEdge := BiomeRoomRadius
	if minEdge < 5 {
		minEdge = 5
	}

	aspect := float64(world.Width) / math.Max(1, float64(world.Height))
	cols := int(math.Round(math.Sqrt(float64(count) * aspect)))
	if cols < 1 {
		cols = 1
	}
	rows := (count + cols - 1) / cols

	segW := float64(world.Width) / float64(cols)
	segH := float64(world.Height) / float64(rows)
	const margin = 2

	shuffled := make([]int, count)
	for i := range shuffled {
		shuffled[i] = i + 1
	}
	rng.Shuffle(count, func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

	idx := 0
	for r := 0; r < rows && idx < count; r++ {
		for c := 0; c < cols && idx < count; c++ {
			x0 := int(float64(c)*segW) + margin
			y0 := int(float64(r)*segH) + margin
			x1 := int(float64(c+1)*segW) - 1 - margin
			y1 := int(float64(r+1)*segH) - 1 - margin

			x0 = maxInt(1+minEdge, x0)
			y0 = maxInt(1+minEdge, y0)
			x1 = minInt(world.Width-2-minEdge, x1)
			y1 = minInt(world.Height-2-minEdge, y1)

			var cx, cy int
			if x1 < x0 || y1 < y0 {
				// Сегмент слишком тесный, берем любую внутреннюю точку
				cx = 1 + minEdge + rng.Intn(world.Width-2-2*minEdge)
				cy = 1 + minEdge + rng.Intn(world.Height-2-2*minEdge)
			} else {
				cx = x0 + rng.Intn(x1-x0+1)
				cy = y0 + rng.Intn(y1-y0+1)
			}

			world.Centers = append(world.Centers, domain.BiomeCenter{X: cx, Y: cy, ID: shuffled[idx]})
			idx++
		}
	}

	carveBiomeRooms(world)
	assignBiomeIDs(world, radius)
}

// carveBiomeRooms вырезает круглую комнату радиуса BiomeRoomRadius вокруг
// каждого центра. Комната, задевающая внешнее кольцо, пропускается целиком.
func carveBiomeRooms(world *domain.GameWorld) {
	rr := BiomeRoomRadius
	r2 := rr * rr
	for _, ctr := range world.Centers {
		if ctr.X-rr < 1 || ctr.X+rr > world.Width-2 || ctr.Y-rr < 1 || ctr.Y+rr > world.Height-2 {
			continue
		}
		for y := ctr.Y - rr; y <= ctr.Y+rr; y++ {
			dy := y - ctr.Y
			for x := ctr.X - rr; x <= ctr.X+rr; x++ {
				dx := x - ctr.X
				if dx*dx+dy*dy <= r2 {
					world.Tiles[y][x] = domain.Tile{Kind: domain.TileEmpty}
				}
			}
		}
	}
}

// assignBiomeIDs присваивает каждой внутренней клетке id первого круга,
// который ее накрывает (в порядке списка центров).
func assignBiomeIDs(world *domain.GameWorld, radius int) {
	r2 := radius * radius
	for y := 1; y < world.Height-1; y++ {
		for x := 1; x < world.Width-1; x++ {
			for _, ctr := range world.Centers {
				dx := x - ctr.X
				dy := y - ctr.Y
				if dx*dx+dy*dy <= r2 {
					world.Biomes[y][x] = ctr.ID
					break
				}
			}
		}
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
