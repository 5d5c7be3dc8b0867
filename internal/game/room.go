package game

import (
	"sort"
	"time"
)

// DayState tracks where a room is in its day cycle. EndsAt is a unix
// millisecond deadline, zero while no day is running.
type DayState struct {
	Current   int
	EndsAt    int64
	TotalDays int
	Length    time.Duration
}

// Room is one match's authoritative state. It is a plain data record plus
// small bookkeeping helpers; all rule logic lives in the day-cycle and
// role-assignment functions, and all mutation happens on the directory's
// single control flow.
type Room struct {
	ID string

	Players map[string]*Player
	Grass   map[string]*Grass
	Pens    map[string]*Pen

	Day DayState

	// GrassEaten counts grass units per player for the current day only.
	GrassEaten map[string]int

	HostID string

	Started  bool
	Starting bool
	Ended    bool

	// Start barrier: StartID correlates acks with the in-flight start
	// cycle, PendingStartAcks holds players who have not answered yet.
	StartID          string
	PendingStartAcks map[string]struct{}

	MapSeed int64

	LastTick time.Time
}

func NewRoom(id string, dayLength time.Duration, totalDays int, now time.Time) *Room {
	return &Room{
		ID:      id,
		Players: make(map[string]*Player),
		Grass:   make(map[string]*Grass),
		Pens:    make(map[string]*Pen),
		Day: DayState{
			TotalDays: totalDays,
			Length:    dayLength,
		},
		GrassEaten: make(map[string]int),
		LastTick:   now,
	}
}

// ClearStart dismantles the start barrier. The armed timeout is not tracked
// here: its firing carries the StartID it was armed with, and a mismatch on
// arrival makes it a no-op.
func (r *Room) ClearStart() {
	r.Starting = false
	r.StartID = ""
	r.PendingStartAcks = nil
}

// ResetDayCounters zeroes the per-day grass tally for every sheep that is
// still alive. Dead players and wolves carry no counter.
func (r *Room) ResetDayCounters() {
	r.GrassEaten = make(map[string]int)
	for id, p := range r.Players {
		if p.Role == RoleSheep && p.IsAlive {
			r.GrassEaten[id] = 0
		}
	}
}

func (r *Room) AliveCount(role Role) int {
	n := 0
	for _, p := range r.Players {
		if p.IsAlive && p.Role == role {
			n++
		}
	}
	return n
}

// PlayersSorted returns players ordered by id so snapshot payloads are
// stable across broadcasts.
func (r *Room) PlayersSorted() []*Player {
	out := make([]*Player, 0, len(r.Players))
	for _, p := range r.Players {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
