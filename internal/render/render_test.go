package render

import (
	"bytes"
	"image/color"
	"image/png"
	"path/filepath"
	"testing"

	"survivors/internal/game"
)

func testSnapshot() *game.WorldSnapshot {
	return &game.WorldSnapshot{
		TickNumber: 42,
		GameTime:   1.4,
		Score:      3,
		Player:     game.ActorSnapshot{Kind: "player", X: 0, Y: 0, HP: 80, MaxHP: 100, Radius: 25},
		Enemies: []game.ActorSnapshot{
			{Kind: "enemy", X: 200, Y: 100, HP: 50, MaxHP: 50, Radius: 20},
			{Kind: "enemy", X: -200, Y: -100, HP: 10, MaxHP: 50, Radius: 20, Touching: true},
		},
		Projectiles: []game.ProjectileSnapshot{
			{ID: 1, X: 50, Y: 50, Trail: []game.Vec2{{X: 40, Y: 40}, {X: 45, Y: 45}}},
		},
		Knives: []game.KnifeSnapshot{{X: 100, Y: 0, Facing: 90}},
		Skills: []game.SkillStats{
			{Kind: game.SkillAura, Level: 1, Damage: 5, Range: 100},
		},
		EnemyCount: 2,
	}
}

func TestRenderDimensionsAndContent(t *testing.T) {
	r := NewRenderer(320, 240)
	img := r.Render(testSnapshot())

	if b := img.Bounds(); b.Dx() != 320 || b.Dy() != 240 {
		t.Fatalf("Expected 320x240 frame, got %v", b)
	}

	// The player is drawn at the image centre
	if c := img.RGBAAt(160, 120); c == colBackground {
		t.Error("Expected the player at the image centre")
	}
	// World +y is up: an enemy at (100, 60) lands above and right of centre
	snap := testSnapshot()
	snap.Enemies = []game.ActorSnapshot{{X: 100, Y: 60, HP: 50, MaxHP: 50, Radius: 10}}
	snap.Skills = nil
	img = r.Render(snap)
	if c := img.RGBAAt(260, 60); c != colEnemy {
		t.Errorf("Expected enemy colour at (260, 60), got %v", c)
	}
	if c := img.RGBAAt(260, 180); c == colEnemy {
		t.Error("Enemy drawn with y pointing down")
	}
}

func TestRenderReturnsIndependentCopies(t *testing.T) {
	r := NewRenderer(64, 64)
	first := r.Render(testSnapshot())
	before := append([]uint8(nil), first.Pix...)

	empty := &game.WorldSnapshot{}
	r.Render(empty)

	if !bytes.Equal(before, first.Pix) {
		t.Error("Earlier frame changed after a later render")
	}
}

func TestWritePNGDecodes(t *testing.T) {
	r := NewRenderer(128, 96)
	var buf bytes.Buffer
	if err := r.WritePNG(&buf, testSnapshot()); err != nil {
		t.Fatalf("WritePNG failed: %v", err)
	}

	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("Output is not a PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 128 || b.Dy() != 96 {
		t.Errorf("Expected 128x96, got %v", b)
	}
}

func TestSavePNG(t *testing.T) {
	r := NewRenderer(32, 32)
	path := filepath.Join(t.TempDir(), "frame.png")
	if err := SavePNG(path, r.Render(testSnapshot())); err != nil {
		t.Fatalf("SavePNG failed: %v", err)
	}

	if err := SavePNG(filepath.Join(t.TempDir(), "missing", "frame.png"), r.Render(testSnapshot())); err == nil {
		t.Error("Expected error for missing directory")
	}
}

func TestNewRendererDefaults(t *testing.T) {
	w, h := NewRenderer(0, -1).Size()
	if w != 1280 || h != 720 {
		t.Errorf("Expected default 1280x720, got %dx%d", w, h)
	}
}

func TestGameOverBanner(t *testing.T) {
	r := NewRenderer(200, 200)
	snap := &game.WorldSnapshot{GameOver: true, Player: game.ActorSnapshot{HP: 0, MaxHP: 100, Radius: 25, IsDead: true}}
	img := r.Render(snap)

	found := false
	for y := 30; y < 50 && !found; y++ {
		for x := 60; x < 140; x++ {
			if isReddish(img.RGBAAt(x, y)) {
				found = true
				break
			}
		}
	}
	if !found {
		t.Error("Expected GAME OVER text above the centre")
	}
}

func isReddish(c color.RGBA) bool {
	return c.R > 150 && c.G < 120 && c.B < 120
}
