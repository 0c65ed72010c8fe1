// Package render draws world snapshots into images for the HTTP frame
// endpoint and the headless simulator.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"sync"

	"survivors/internal/game"

	"github.com/fogleman/gg"
	"github.com/pkg/errors"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

const gridSpacing = 64.0

// Palette
var (
	colBackground  = color.RGBA{12, 12, 28, 255}
	colGrid        = color.RGBA{30, 30, 45, 255}
	colAxis        = color.RGBA{55, 55, 80, 255}
	colAura        = color.NRGBA{120, 200, 255, 60}
	colAuraEdge    = color.NRGBA{120, 200, 255, 160}
	colPlayer      = color.RGBA{83, 160, 255, 255}
	colEnemy       = color.RGBA{220, 70, 70, 255}
	colTouching    = color.RGBA{255, 180, 60, 255}
	colKnife       = color.RGBA{230, 230, 240, 255}
	colProjectile  = color.RGBA{255, 230, 90, 255}
	colHPBack      = color.RGBA{51, 51, 51, 255}
	colText        = color.RGBA{235, 235, 245, 255}
	colFlashEnemy  = color.NRGBA{255, 255, 255, 255}
	colFlashPlayer = color.NRGBA{255, 62, 62, 255}
)

// Renderer draws snapshots onto a reused gg context. World (0,0) sits at
// the image centre and world y points up.
type Renderer struct {
	mu     sync.Mutex
	width  int
	height int
	dc     *gg.Context
	face   font.Face
}

// NewRenderer creates a renderer for frames of the given size.
func NewRenderer(width, height int) *Renderer {
	if width <= 0 {
		width = 1280
	}
	if height <= 0 {
		height = 720
	}
	dc := gg.NewContext(width, height)
	face := basicfont.Face7x13
	dc.SetFontFace(face)
	return &Renderer{
		width:  width,
		height: height,
		dc:     dc,
		face:   face,
	}
}

// Size returns the frame dimensions.
func (r *Renderer) Size() (int, int) { return r.width, r.height }

// Render draws the snapshot and returns a copy of the frame.
func (r *Renderer) Render(snap *game.WorldSnapshot) *image.RGBA {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.draw(snap)
	src := r.dc.Image()
	out := image.NewRGBA(src.Bounds())
	if rgba, ok := src.(*image.RGBA); ok {
		copy(out.Pix, rgba.Pix)
		return out
	}
	for y := src.Bounds().Min.Y; y < src.Bounds().Max.Y; y++ {
		for x := src.Bounds().Min.X; x < src.Bounds().Max.X; x++ {
			out.Set(x, y, src.At(x, y))
		}
	}
	return out
}

// WritePNG draws the snapshot and encodes it straight to w.
func (r *Renderer) WritePNG(w io.Writer, snap *game.WorldSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.draw(snap)
	return EncodePNG(w, r.dc.Image())
}

// EncodePNG writes img as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return errors.Wrap(err, "encode png")
	}
	return nil
}

// SavePNG writes img to a PNG file.
func SavePNG(path string, img image.Image) error {
	if err := gg.SavePNG(path, img); err != nil {
		return errors.Wrapf(err, "save frame to %s", path)
	}
	return nil
}

// toScreen maps world coordinates to pixels.
func (r *Renderer) toScreen(x, y float64) (float64, float64) {
	return float64(r.width)/2 + x, float64(r.height)/2 - y
}

func (r *Renderer) draw(snap *game.WorldSnapshot) {
	dc := r.dc

	dc.SetColor(colBackground)
	dc.DrawRectangle(0, 0, float64(r.width), float64(r.height))
	dc.Fill()

	r.drawGrid()
	r.drawAura(snap)
	r.drawEnemies(snap.Enemies)
	r.drawPlayer(snap.Player)
	r.drawKnives(snap.Knives)
	r.drawProjectiles(snap.Projectiles)
	r.drawFlashes(snap.Flashes)
	r.drawHUD(snap)
}

// drawGrid draws lines every gridSpacing world units, aligned on the origin.
func (r *Renderer) drawGrid() {
	dc := r.dc
	w, h := float64(r.width), float64(r.height)
	cx, cy := w/2, h/2

	dc.SetLineWidth(1)
	dc.SetColor(colGrid)
	for x := cx; x < w; x += gridSpacing {
		dc.DrawLine(x, 0, x, h)
		dc.DrawLine(2*cx-x, 0, 2*cx-x, h)
	}
	for y := cy; y < h; y += gridSpacing {
		dc.DrawLine(0, y, w, y)
		dc.DrawLine(0, 2*cy-y, w, 2*cy-y)
	}
	dc.Stroke()

	dc.SetColor(colAxis)
	dc.DrawLine(cx, 0, cx, h)
	dc.DrawLine(0, cy, w, cy)
	dc.Stroke()
}

func (r *Renderer) drawAura(snap *game.WorldSnapshot) {
	if snap.Player.IsDead {
		return
	}
	for _, s := range snap.Skills {
		if s.Kind != game.SkillAura {
			continue
		}
		x, y := r.toScreen(snap.Player.X, snap.Player.Y)
		r.dc.SetColor(colAura)
		r.dc.DrawCircle(x, y, s.Range)
		r.dc.Fill()
		r.dc.SetColor(colAuraEdge)
		r.dc.SetLineWidth(2)
		r.dc.DrawCircle(x, y, s.Range)
		r.dc.Stroke()
	}
}

func (r *Renderer) drawEnemies(enemies []game.ActorSnapshot) {
	for _, e := range enemies {
		x, y := r.toScreen(e.X, e.Y)
		if e.Touching {
			r.dc.SetColor(colTouching)
		} else {
			r.dc.SetColor(colEnemy)
		}
		r.dc.DrawCircle(x, y, e.Radius)
		r.dc.Fill()
		r.drawHPBar(x, y-e.Radius-8, e.Radius*2, e.HP, e.MaxHP)
	}
}

func (r *Renderer) drawPlayer(p game.ActorSnapshot) {
	dc := r.dc
	x, y := r.toScreen(p.X, p.Y)

	// Shadow
	dc.SetColor(color.RGBA{0, 0, 0, 128})
	dc.DrawCircle(x, y+6, p.Radius)
	dc.Fill()

	body := color.NRGBA{colPlayer.R, colPlayer.G, colPlayer.B, 255}
	if p.IsDead {
		body.A = 110
	}
	dc.SetColor(body)
	dc.DrawCircle(x, y, p.Radius)
	dc.Fill()

	dc.SetColor(color.White)
	dc.SetLineWidth(3)
	dc.DrawCircle(x, y, p.Radius)
	dc.Stroke()

	r.drawHPBar(x, y-p.Radius-14, 60, p.HP, p.MaxHP)
}

// drawHPBar draws a bar of width w centred on x with its top at y.
func (r *Renderer) drawHPBar(x, y, w float64, hp, maxHP int) {
	if maxHP <= 0 {
		return
	}
	const h = 5.0
	pct := float64(hp) / float64(maxHP)

	r.dc.SetColor(colHPBack)
	r.dc.DrawRectangle(x-w/2, y, w, h)
	r.dc.Fill()

	switch {
	case pct > 0.5:
		r.dc.SetColor(color.RGBA{83, 255, 69, 255})
	case pct > 0.25:
		r.dc.SetColor(color.RGBA{255, 149, 0, 255})
	default:
		r.dc.SetColor(color.RGBA{255, 62, 62, 255})
	}
	r.dc.DrawRectangle(x-w/2, y, w*pct, h)
	r.dc.Fill()
}

func (r *Renderer) drawKnives(knives []game.KnifeSnapshot) {
	dc := r.dc
	dc.SetColor(colKnife)
	for _, k := range knives {
		x, y := r.toScreen(k.X, k.Y)
		dc.Push()
		// Screen y is flipped, so world rotations run the other way
		dc.RotateAbout(gg.Radians(-k.Facing), x, y)
		dc.DrawRectangle(x-12, y-3, 24, 6)
		dc.Fill()
		dc.Pop()
	}
}

func (r *Renderer) drawProjectiles(projectiles []game.ProjectileSnapshot) {
	dc := r.dc
	for _, p := range projectiles {
		x, y := r.toScreen(p.X, p.Y)

		// Trail, oldest first and fading
		trail := p.Trail
		for i, pt := range trail {
			tx, ty := r.toScreen(pt.X, pt.Y)
			alpha := uint8(40 + 150*(i+1)/(len(trail)+1))
			dc.SetColor(color.NRGBA{colProjectile.R, colProjectile.G, colProjectile.B, alpha})
			dc.DrawCircle(tx, ty, 3)
			dc.Fill()
		}

		dc.SetColor(colProjectile)
		dc.DrawCircle(x, y, 5)
		dc.Fill()
	}
}

func (r *Renderer) drawFlashes(flashes []game.FlashSnapshot) {
	dc := r.dc
	dc.SetLineWidth(3)
	for _, f := range flashes {
		x, y := r.toScreen(f.X, f.Y)
		c := colFlashEnemy
		if f.Victim == "player" {
			c = colFlashPlayer
		}
		c.A = uint8(f.Alpha * 255)
		dc.SetColor(c)
		dc.DrawCircle(x, y, f.Radius)
		dc.Stroke()
	}
}

func (r *Renderer) drawHUD(snap *game.WorldSnapshot) {
	dc := r.dc
	dc.SetFontFace(r.face)
	dc.SetColor(colText)

	lines := []string{
		fmt.Sprintf("TIME %.1fs  SCORE %d  HP %d/%d", snap.GameTime, snap.Score, snap.Player.HP, snap.Player.MaxHP),
		fmt.Sprintf("ENEMIES %d  TICK %d", snap.EnemyCount, snap.TickNumber),
	}
	for _, s := range snap.Skills {
		lines = append(lines, fmt.Sprintf("%s L%d  dmg %d", s.Kind, s.Level, s.Damage))
	}
	for i, line := range lines {
		dc.DrawString(line, 10, 20+float64(i)*16)
	}

	if snap.GameOver {
		dc.SetColor(color.RGBA{255, 62, 62, 255})
		dc.DrawStringAnchored("GAME OVER", float64(r.width)/2, float64(r.height)/2-60, 0.5, 0.5)
	}
}
