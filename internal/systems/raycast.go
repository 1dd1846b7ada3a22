package systems

import (
	"math"
	"sort"

	"dungeon-server/internal/domain"
	"dungeon-server/pkg/api"
)

// Константы рейкаста
const (
	NumRays = 200 // колонок на экране
	ScreenH = 160 // высота кадра в пикселях

	// Множитель подмеса цвета биома в яркость колонки
	tintBlend = 0.25
)

var (
	fovRad  = 60 * math.Pi / 180
	maxDist = math.Hypot(float64(domain.GridWidth), float64(domain.GridHeight))

	// Небо по биомам; 0 = вне биомов, черное небо
	skyPalette = map[int][3]int{
		0: {0, 0, 0},
		1: {255, 120, 120},
		2: {255, 190, 120},
		3: {255, 255, 150},
		4: {120, 220, 150},
		5: {150, 200, 255},
		6: {200, 150, 255},
	}
)

// SkyColor возвращает цвет неба для биома (палитра фиксированная).
func SkyColor(biomeID int) [3]int {
	if c, ok := skyPalette[biomeID]; ok {
		return c
	}
	return skyPalette[0]
}

// Camera - точка обзора в непрерывных координатах клеток.
type Camera struct {
	X     float64
	Y     float64
	Angle float64
}

// Billboard - сущность-спрайт для проекции в кадр. Pos в непрерывных
// координатах (обычно центр клетки).
type Billboard struct {
	X, Y float64

	Img     string
	SrcX    int // смещение кадра в спрайт-листе
	SrcY    int
	BaseW   int
	BaseH   int
	Scale   float64
	YOffset int

	// Item-спрайты рисуются вдвое меньше и приякориваются к полу
	IsItem bool
}

// RenderFrame строит один кадр для камеры: колонки стен DDA-рейкастом,
// затем билборды с окклюзией по буферу дистанций.
func RenderFrame(world *domain.GameWorld, cam Camera, billboards []Billboard,
	hpBase, hpPerBiome int) *api.FrameView {

	frame := &api.FrameView{
		W:       NumRays,
		H:       ScreenH,
		Heights: make([]int, NumRays),
		Shades:  make([]float64, NumRays),
		Dists:   make([]float64, NumRays),
		Angle:   cam.Angle,
	}

	biomeID := world.BiomeAt(int(cam.X), int(cam.Y))
	frame.Biome = biomeID
	frame.Sky = SkyColor(biomeID)
	tintLum := tintLuminance(biomeID)

	for r := 0; r < NumRays; r++ {
		rayAng := cam.Angle - fovRad/2 + float64(r)/float64(NumRays-1)*fovRad
		dist, side, hitX, hitY := castRay(world, cam.X, cam.Y, rayAng)

		// Высота колонки обратно пропорциональна дистанции, буст 1.5x
		colH := int(1.5 * ScreenH / dist)
		if colH < 1 {
			colH = 1
		}
		if colH > ScreenH {
			colH = ScreenH
		}

		// Затенение по дистанции, y-грани темнее
		s := 1.0 / (1.0 + 0.08*dist)
		if side == 1 {
			s *= 0.85
		}
		s = clamp(s, 0.15, 1.0)

		// Трещины: побитая стена темнеет до 0.6 от здоровой
		if world.IsWall(hitX, hitY) && world.InBounds(hitX, hitY) {
			tile := world.Tiles[hitY][hitX]
			if tile.HPKnown {
				maxHP := world.WallMaxHP(hitX, hitY, hpBase, hpPerBiome)
				frac := clamp(float64(tile.WallHP)/float64(maxHP), 0, 1)
				s *= 0.6 + 0.4*frac
			}
		}

		// Подмес тона биома
		if biomeID != 0 {
			s = clamp(s*(1-tintBlend)+s*tintLum*tintBlend, 0.15, 1.0)
		}

		frame.Heights[r] = colH
		frame.Shades[r] = s
		frame.Dists[r] = dist
	}

	frame.Sprites = projectBillboards(cam, billboards, frame.Dists)
	return frame
}

// castRay - DDA-шаг по сетке до стены или максимума дистанции.
// Возвращает перпендикулярную дистанцию, сторону грани (0=x, 1=y) и
// координаты клетки попадания. Выход за границы считается стеной.
func castRay(world *domain.GameWorld, px, py, ang float64) (float64, int, int, int) {
	dirX := math.Cos(ang)
	dirY := math.Sin(ang)

	mapX := int(px)
	mapY := int(py)

	deltaX := math.Inf(1)
	if dirX != 0 {
		deltaX = math.Abs(1 / dirX)
	}
	deltaY := math.Inf(1)
	if dirY != 0 {
		deltaY = math.Abs(1 / dirY)
	}

	var stepX, stepY int
	var sideX, sideY float64
	if dirX < 0 {
		stepX = -1
		sideX = (px - float64(mapX)) * deltaX
	} else {
		stepX = 1
		sideX = (float64(mapX) + 1 - px) * deltaX
	}
	if dirY < 0 {
		stepY = -1
		sideY = (py - float64(mapY)) * deltaY
	} else {
		stepY = 1
		sideY = (float64(mapY) + 1 - py) * deltaY
	}

	side := 0
	for depth := 0.0; depth < maxDist; {
		if sideX < sideY {
			depth = sideX
			sideX += deltaX
			mapX += stepX
			side = 0
		} else {
			depth = sideY
			sideY += deltaY
			mapY += stepY
			side = 1
		}
		if world.IsWall(mapX, mapY) {
			break
		}
	}

	var dist float64
	if side == 0 {
		dist = sideX - deltaX
	} else {
		dist = sideY - deltaY
	}
	if dist < 1e-4 {
		dist = 1e-4
	}
	return dist, side, mapX, mapY
}

// projectBillboards проецирует спрайты в экранное пространство.
// Порядок вывода от дальних к ближним; колонки, закрытые более близкой
// стеной, вырезаются, и видимые участки отдаются отдельными спрайтами
// с пропорциональным суб-прямоугольником исходника.
func projectBillboards(cam Camera, billboards []Billboard, dists []float64) []api.SpriteView {
	type projected struct {
		b     Billboard
		depth float64
		x, y  int
		w, h  int
	}

	var prj []projected
	for _, b := range billboards {
		dx := b.X - cam.X
		dy := b.Y - cam.Y
		dist := math.Hypot(dx, dy)
		if dist <= 1e-3 {
			continue
		}
		rel := angleDiff(math.Atan2(dy, dx), cam.Angle)
		// Отсев за пределами FOV с небольшим запасом на краевые спрайты
		if math.Abs(rel) > fovRad/2+10*math.Pi/180 {
			continue
		}

		norm := (rel + fovRad/2) / fovRad
		centerX := int(norm * float64(NumRays-1))
		if centerX < 0 {
			centerX = 0
		}
		if centerX > NumRays-1 {
			centerX = NumRays - 1
		}

		scale := b.Scale
		if scale <= 0 {
			scale = 1
		}
		itemMult := 1.0
		if b.IsItem {
			itemMult = 0.5
		}
		base := ScreenH / math.Max(1e-3, dist)
		outH := int(base * float64(b.BaseH) / 64.0 * scale * itemMult)
		if outH < 1 {
			outH = 1
		}
		if outH > 3*ScreenH {
			outH = 3 * ScreenH
		}
		aspect := float64(b.BaseW) / math.Max(1, float64(b.BaseH))
		outW := int(float64(outH) * aspect)
		if outW < 1 {
			outW = 1
		}

		x := centerX - outW/2
		y := (ScreenH-outH)/2 - b.YOffset
		if b.IsItem {
			// Якорим предметы к линии пола с легким смещением вниз
			y = ScreenH/2 - outH/2 - b.YOffset + 4
		}

		prj = append(prj, projected{b: b, depth: dist, x: x, y: y, w: outW, h: outH})
	}

	// Дальние первыми, ближние поверх
	sort.Slice(prj, func(i, j int) bool { return prj[i].depth > prj[j].depth })

	var out []api.SpriteView
	for _, p := range prj {
		for _, run := range visibleRuns(p.x, p.w, p.depth, dists) {
			// Пропорциональный срез исходной картинки под видимый участок
			srcX := p.b.SrcX + int(float64(run[0]-p.x)/float64(p.w)*float64(p.b.BaseW))
			srcW := int(float64(run[1]) / float64(p.w) * float64(p.b.BaseW))
			if srcW < 1 {
				srcW = 1
			}
			out = append(out, api.SpriteView{
				Img:   p.b.Img,
				Sx:    srcX,
				Sy:    p.b.SrcY,
				Sw:    srcW,
				Sh:    p.b.BaseH,
				X:     run[0],
				Y:     p.y,
				W:     run[1],
				H:     p.h,
				Depth: p.depth,
			})
		}
	}
	return out
}

// visibleRuns возвращает максимальные отрезки [start, width] экранных
// колонок спрайта, не закрытые стеной ближе его самого.
func visibleRuns(x, w int, depth float64, dists []float64) [][2]int {
	var runs [][2]int
	start := -1
	for c := x; c < x+w; c++ {
		visible := c >= 0 && c < len(dists) && dists[c] >= depth
		if visible && start < 0 {
			start = c
		}
		if !visible && start >= 0 {
			runs = append(runs, [2]int{start, c - start})
			start = -1
		}
	}
	if start >= 0 {
		runs = append(runs, [2]int{start, x + w - start})
	}
	return runs
}

// tintLuminance - яркость цвета неба биома [0..1]
func tintLuminance(biomeID int) float64 {
	c := SkyColor(biomeID)
	return (0.299*float64(c[0]) + 0.587*float64(c[1]) + 0.114*float64(c[2])) / 255
}

func angleDiff(a, b float64) float64 {
	d := math.Mod(a-b+math.Pi, 2*math.Pi)
	if d < 0 {
		d += 2 * math.Pi
	}
	return d - math.Pi
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
