package game

import "math"

type Role string

const (
	RoleSheep Role = "sheep"
	RoleWolf  Role = "wolf"
)

// DeathReason is empty while a player is alive.
type DeathReason string

const (
	DeathWolfInPen      DeathReason = "WOLF_IN_PEN"
	DeathNotInPen       DeathReason = "NOT_IN_PEN"
	DeathNotEnoughGrass DeathReason = "NOT_ENOUGH_GRASS"
	DeathWolfHunger     DeathReason = "WOLF_HUNGER"
)

// Player is the server-authoritative record for one connected participant.
// Role is hidden information: it never appears in a View and reaches its
// owner only through the one-time role unicast at match start.
type Player struct {
	ID    string
	Name  string
	Role  Role
	Color string

	X, Y, Z float64

	IsAlive     bool
	InPen       bool
	PenID       string // "" when not in any pen
	DeathReason DeathReason
}

func NewPlayer(id, name, color string) *Player {
	return &Player{
		ID:      id,
		Name:    name,
		Role:    RoleSheep,
		Color:   color,
		IsAlive: true,
	}
}

// Advance moves per-player timers forward by dt seconds. Movement is
// client-authoritative, so there is nothing to integrate server-side yet.
func (p *Player) Advance(dt float64) {}

// View is the client-visible projection of a Player. Positions are rounded
// to whole units and the hidden role is omitted.
type View struct {
	ID          string      `json:"id"`
	Type        string      `json:"type"`
	Color       string      `json:"color"`
	X           int         `json:"x"`
	Y           int         `json:"y"`
	Name        string      `json:"name"`
	IsAlive     bool        `json:"isAlive"`
	InPen       bool        `json:"inPen"`
	PenID       string      `json:"penId,omitempty"`
	DeathReason DeathReason `json:"deathReason,omitempty"`
}

func (p *Player) Project() View {
	return View{
		ID:          p.ID,
		Type:        "player",
		Color:       p.Color,
		X:           int(math.Round(p.X)),
		Y:           int(math.Round(p.Y)),
		Name:        p.Name,
		IsAlive:     p.IsAlive,
		InPen:       p.InPen,
		PenID:       p.PenID,
		DeathReason: p.DeathReason,
	}
}

// Grass is a consumable resource. Health never goes below zero; the room
// removes the entity once it reaches zero.
type Grass struct {
	ID     string
	Health int
}

func NewGrass(id string) *Grass {
	return &Grass{ID: id, Health: GrassInitialHealth}
}

func (g *Grass) SetHealth(h int) {
	if h < 0 {
		h = 0
	}
	g.Health = h
}

// Pen is an opaque containment zone. Geometry lives client-side; the server
// only ever compares ids.
type Pen struct {
	ID string
}
