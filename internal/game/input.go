package game

import "strings"

// KeyState turns raw W/A/S/D key events into a ±1 axis pair.
//
// Key down sets the axis. Key up clears it only if the axis still points
// in that key's direction, so releasing A while D is held keeps moving right.
type KeyState struct {
	x, y float64
}

// KeyDown handles a key press. Unknown keys are ignored.
func (k *KeyState) KeyDown(key string) {
	switch strings.ToLower(key) {
	case "w":
		k.y = 1
	case "s":
		k.y = -1
	case "a":
		k.x = -1
	case "d":
		k.x = 1
	}
}

// KeyUp handles a key release. Unknown keys are ignored.
func (k *KeyState) KeyUp(key string) {
	switch strings.ToLower(key) {
	case "w":
		if k.y == 1 {
			k.y = 0
		}
	case "s":
		if k.y == -1 {
			k.y = 0
		}
	case "a":
		if k.x == -1 {
			k.x = 0
		}
	case "d":
		if k.x == 1 {
			k.x = 0
		}
	}
}

// Axis returns the current direction. Diagonals are not normalized.
func (k *KeyState) Axis() Vec2 { return Vec2{k.x, k.y} }

// Reset releases every key.
func (k *KeyState) Reset() { k.x, k.y = 0, 0 }
