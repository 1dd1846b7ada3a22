package systems

import (
	"math"
	"testing"

	"dungeon-server/internal/domain"
)

func TestRenderFrameBasics(t *testing.T) {
	world := createTestWorld(40, 20)
	cam := Camera{X: 5.5, Y: 10.5, Angle: 0}

	frame := RenderFrame(world, cam, nil, 3, 1)

	if frame.W != NumRays || frame.H != ScreenH {
		t.Fatalf("frame size %dx%d", frame.W, frame.H)
	}
	if len(frame.Heights) != NumRays || len(frame.Shades) != NumRays || len(frame.Dists) != NumRays {
		t.Fatal("per-column arrays must have one entry per ray")
	}

	for i := 0; i < NumRays; i++ {
		if frame.Heights[i] < 1 || frame.Heights[i] > ScreenH {
			t.Fatalf("column %d height %d out of [1..%d]", i, frame.Heights[i], ScreenH)
		}
		if frame.Shades[i] < 0 || frame.Shades[i] > 1 {
			t.Fatalf("column %d shade %f out of [0..1]", i, frame.Shades[i])
		}
		if frame.Dists[i] <= 0 {
			t.Fatalf("column %d non-positive distance", i)
		}
	}

	// Вне биомов небо черное
	if frame.Biome != 0 || frame.Sky != [3]int{0, 0, 0} {
		t.Errorf("expected black sky outside biomes, got biome=%d sky=%v", frame.Biome, frame.Sky)
	}
}

func TestRenderFrameSkyByBiome(t *testing.T) {
	world := createTestWorld(40, 20)
	world.Biomes[10][5] = 5

	frame := RenderFrame(world, Camera{X: 5.5, Y: 10.5, Angle: 0}, nil, 3, 1)

	if frame.Biome != 5 {
		t.Fatalf("biome = %d, want 5", frame.Biome)
	}
	if frame.Sky != [3]int{150, 200, 255} {
		t.Errorf("sky = %v, want palette entry for biome 5", frame.Sky)
	}
}

func TestShadingCloserIsBrighter(t *testing.T) {
	world := createTestWorld(40, 20)

	// Смотрим вправо: стена в конце коридора далеко, сзади близко
	far := RenderFrame(world, Camera{X: 2.5, Y: 10.5, Angle: 0}, nil, 3, 1)
	near := RenderFrame(world, Camera{X: 37.5, Y: 10.5, Angle: 0}, nil, 3, 1)

	mid := NumRays / 2
	if near.Shades[mid] <= far.Shades[mid] {
		t.Errorf("closer wall must be brighter: near=%f far=%f", near.Shades[mid], far.Shades[mid])
	}
	if near.Heights[mid] <= far.Heights[mid] {
		t.Errorf("closer wall must be taller: near=%d far=%d", near.Heights[mid], far.Heights[mid])
	}
}

func TestDamagedWallDarkens(t *testing.T) {
	world := createTestWorld(40, 20)
	world.Tiles[10][8].Kind = domain.TileWall
	cam := Camera{X: 5.5, Y: 10.5, Angle: 0}

	healthy := RenderFrame(world, cam, nil, 3, 1)

	// Побитая стена: половина прочности
	world.Tiles[10][8].HPKnown = true
	world.Tiles[10][8].WallHP = 1 // max = 3 + 1*0 = 3
	damaged := RenderFrame(world, cam, nil, 3, 1)

	mid := NumRays / 2
	if damaged.Shades[mid] >= healthy.Shades[mid] {
		t.Errorf("cracked wall must render darker: %f vs %f", damaged.Shades[mid], healthy.Shades[mid])
	}
}

func TestBillboardOcclusion(t *testing.T) {
	world := createTestWorld(40, 20)
	cam := Camera{X: 2.5, Y: 10.5, Angle: 0}

	makeSprite := func(x float64) Billboard {
		return Billboard{X: x, Y: 10.5, Img: "items/scroll.png", BaseW: 64, BaseH: 64, IsItem: true}
	}

	t.Run("Sprite behind wall is dropped", func(t *testing.T) {
		// Стена на дистанции ~6, спрайт на ~10 за ней
		world.Tiles[10][8].Kind = domain.TileWall
		defer func() { world.Tiles[10][8].Kind = domain.TileEmpty }()

		frame := RenderFrame(world, cam, []Billboard{makeSprite(12.5)}, 3, 1)
		if len(frame.Sprites) != 0 {
			t.Errorf("fully occluded sprite must be skipped, got %d sprites", len(frame.Sprites))
		}
	})

	t.Run("Sprite in front of wall is kept", func(t *testing.T) {
		world.Tiles[10][8].Kind = domain.TileWall
		defer func() { world.Tiles[10][8].Kind = domain.TileEmpty }()

		frame := RenderFrame(world, cam, []Billboard{makeSprite(5.5)}, 3, 1)
		if len(frame.Sprites) == 0 {
			t.Fatal("sprite closer than the wall must be visible")
		}
	})

	t.Run("Sprites ordered far to near", func(t *testing.T) {
		frame := RenderFrame(world, cam, []Billboard{makeSprite(6.5), makeSprite(12.5), makeSprite(9.5)}, 3, 1)
		if len(frame.Sprites) < 3 {
			t.Fatalf("expected 3 visible sprites, got %d", len(frame.Sprites))
		}
		for i := 1; i < len(frame.Sprites); i++ {
			if frame.Sprites[i].Depth > frame.Sprites[i-1].Depth {
				t.Fatal("sprites must be emitted far to near")
			}
		}
	})

	t.Run("Sprite outside FOV is culled", func(t *testing.T) {
		// Спрайт строго позади камеры
		frame := RenderFrame(world, Camera{X: 20.5, Y: 10.5, Angle: 0}, []Billboard{makeSprite(15.5)}, 3, 1)
		if len(frame.Sprites) != 0 {
			t.Error("sprite behind the camera must be culled")
		}
	})
}

func TestAngleDiffWraps(t *testing.T) {
	cases := []struct{ a, b, want float64 }{
		{0.1, -0.1, 0.2},
		{-math.Pi + 0.1, math.Pi - 0.1, 0.2},
		{math.Pi - 0.1, -math.Pi + 0.1, -0.2},
	}
	for _, c := range cases {
		if got := angleDiff(c.a, c.b); math.Abs(got-c.want) > 1e-9 {
			t.Errorf("angleDiff(%f, %f) = %f, want %f", c.a, c.b, got, c.want)
		}
	}
}
