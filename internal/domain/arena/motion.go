package arena

// Direction is the currently held movement key.
type Direction int

// Directions.
const (
	None Direction = iota
	Up
	Down
	Left
	Right
)

// Key names as reported by browser keyboard events.
const (
	KeyUp    = "ArrowUp"
	KeyDown  = "ArrowDown"
	KeyLeft  = "ArrowLeft"
	KeyRight = "ArrowRight"
)

// ParseKey maps a key name to a direction. Unknown keys report false.
func ParseKey(key string) (Direction, bool) {
	switch key {
	case KeyUp:
		return Up, true
	case KeyDown:
		return Down, true
	case KeyLeft:
		return Left, true
	case KeyRight:
		return Right, true
	default:
		return None, false
	}
}

// Facing returns the sprite rotation in degrees for d.
func (d Direction) Facing() int {
	switch d {
	case Down:
		return 180
	case Left:
		return 270
	case Right:
		return 90
	default:
		return 0
	}
}

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "none"
	}
}

// Step moves p one unit in direction d, clamped to the arena.
func Step(p Position, d Direction) Position {
	switch d {
	case Up:
		p.Top = clamp(p.Top - 1)
	case Down:
		p.Top = clamp(p.Top + 1)
	case Left:
		p.Left = clamp(p.Left - 1)
	case Right:
		p.Left = clamp(p.Left + 1)
	}
	return p
}
