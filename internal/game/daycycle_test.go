package game

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testRoom builds a started room with the given players and a couple of
// pens, positioned mid-match on day 1.
func testRoom(players ...*Player) *Room {
	now := time.Now()
	r := NewRoom("pasture", time.Minute, 5, now)
	r.Pens = BuildPenMap([]string{"pen-a", "pen-b"})
	r.Started = true
	for _, p := range players {
		r.Players[p.ID] = p
	}
	r.Day.Current = 1
	r.Day.EndsAt = now.Add(time.Minute).UnixMilli()
	r.ResetDayCounters()
	return r
}

func sheep(id, penID string) *Player {
	p := NewPlayer(id, id, "#ffffff")
	p.Role = RoleSheep
	if penID != "" {
		p.InPen = true
		p.PenID = penID
	}
	return p
}

func wolf(id, penID string) *Player {
	p := NewPlayer(id, id, "#ffffff")
	p.Role = RoleWolf
	if penID != "" {
		p.InPen = true
		p.PenID = penID
	}
	return p
}

func feed(r *Room, id string, n int) {
	r.GrassEaten[id] = n
}

func TestEndDayGrassQuota(t *testing.T) {
	hungry := sheep("hungry", "pen-a")
	fed := sheep("fed", "pen-a")
	// The wolf sits alone in pen-b so it cannot interfere with the quota
	// outcome in pen-a.
	r := testRoom(hungry, fed, wolf("w", "pen-b"))
	feed(r, "hungry", GrassPerSheepPerDay-1)
	feed(r, "fed", GrassPerSheepPerDay)

	EndDay(r, time.Now())

	assert.False(t, r.Players["hungry"].IsAlive)
	assert.Equal(t, DeathNotEnoughGrass, r.Players["hungry"].DeathReason)
	assert.True(t, r.Players["fed"].IsAlive)
	assert.Empty(t, r.Players["fed"].DeathReason)
}

func TestEndDayWolfHungerWhenAlone(t *testing.T) {
	w := wolf("w", "pen-a")
	s := sheep("s", "pen-b")
	r := testRoom(w, s)
	feed(r, "s", GrassPerSheepPerDay)

	events := EndDay(r, time.Now())

	require.False(t, r.Players["w"].IsAlive)
	assert.Equal(t, DeathWolfHunger, r.Players["w"].DeathReason)
	// Sheep in a different pen is untouched and the game ends sheep-win.
	assert.True(t, r.Players["s"].IsAlive)
	last := events[len(events)-1]
	require.Equal(t, EvtGameEnded, last.Type)
	assert.Equal(t, WinnerSheep, last.Winner)
	assert.Equal(t, ReasonWolvesEliminated, last.Reason)
}

func TestEndDayWolfInPenKillsCohabitingSheep(t *testing.T) {
	w := wolf("w", "pen-a")
	prey := sheep("prey", "pen-a")
	safe := sheep("safe", "pen-b")
	r := testRoom(w, prey, safe)
	// Prey met its quota; co-habiting a wolf kills it regardless.
	feed(r, "prey", GrassPerSheepPerDay)
	feed(r, "safe", GrassPerSheepPerDay)

	EndDay(r, time.Now())

	assert.True(t, r.Players["w"].IsAlive, "wolf with prey survives")
	require.False(t, r.Players["prey"].IsAlive)
	assert.Equal(t, DeathWolfInPen, r.Players["prey"].DeathReason)
	assert.True(t, r.Players["safe"].IsAlive)
}

func TestEndDayNotInPenPrecedesGrassCheck(t *testing.T) {
	out := sheep("out", "")
	r := testRoom(out, wolf("w", "pen-a"), sheep("penned", "pen-b"))
	// The roaming sheep ate plenty; being outside still kills it first.
	feed(r, "out", GrassPerSheepPerDay+2)
	feed(r, "penned", GrassPerSheepPerDay)

	EndDay(r, time.Now())

	require.False(t, r.Players["out"].IsAlive)
	assert.Equal(t, DeathNotInPen, r.Players["out"].DeathReason)
}

func TestEndDayNotInPenAppliesToWolvesToo(t *testing.T) {
	w := wolf("w", "")
	s := sheep("s", "pen-a")
	r := testRoom(w, s)
	feed(r, "s", GrassPerSheepPerDay)

	EndDay(r, time.Now())

	require.False(t, r.Players["w"].IsAlive)
	assert.Equal(t, DeathNotInPen, r.Players["w"].DeathReason)
}

func TestEndDaySimultaneousWipeIsSheepWin(t *testing.T) {
	// Lone wolf starves, lone sheep starves: wolves-eliminated is checked
	// first, so the sheep side wins.
	w := wolf("w", "pen-a")
	s := sheep("s", "pen-b")
	r := testRoom(w, s)
	// Sheep under quota dies too.

	events := EndDay(r, time.Now())

	assert.False(t, r.Players["w"].IsAlive)
	assert.False(t, r.Players["s"].IsAlive)
	last := events[len(events)-1]
	require.Equal(t, EvtGameEnded, last.Type)
	assert.Equal(t, WinnerSheep, last.Winner)
	assert.Equal(t, ReasonWolvesEliminated, last.Reason)
	assert.True(t, r.Ended)
	assert.False(t, r.Started)
	assert.Zero(t, r.Day.EndsAt)
}

func TestEndDaySheepEliminatedIsWolfWin(t *testing.T) {
	w := wolf("w", "pen-a")
	prey := sheep("prey", "pen-a")
	r := testRoom(w, prey)
	feed(r, "prey", GrassPerSheepPerDay)

	events := EndDay(r, time.Now())

	last := events[len(events)-1]
	require.Equal(t, EvtGameEnded, last.Type)
	assert.Equal(t, WinnerWolves, last.Winner)
	assert.Equal(t, ReasonSheepEliminated, last.Reason)
}

func TestEndDaySurvivedDaysIsSheepWin(t *testing.T) {
	w := wolf("w", "pen-a")
	prey := sheep("prey", "pen-a")
	far := sheep("far", "pen-b")
	r := testRoom(w, prey, far)
	r.Day.Current = r.Day.TotalDays
	feed(r, "prey", GrassPerSheepPerDay)
	feed(r, "far", GrassPerSheepPerDay)

	events := EndDay(r, time.Now())

	// Wolf ate prey, far sheep survived, final day elapsed: sheep win on
	// days survived with both sides still alive.
	last := events[len(events)-1]
	require.Equal(t, EvtGameEnded, last.Type)
	assert.Equal(t, WinnerSheep, last.Winner)
	assert.Equal(t, ReasonSurvivedDays, last.Reason)
}

func TestEndDayAdvancesToNextDay(t *testing.T) {
	w := wolf("w", "pen-a")
	prey := sheep("prey", "pen-a")
	far := sheep("far", "pen-b")
	r := testRoom(w, prey, far)
	feed(r, "prey", GrassPerSheepPerDay)
	feed(r, "far", GrassPerSheepPerDay)

	now := time.Now()
	events := EndDay(r, now)

	require.Len(t, events, 2)
	assert.Equal(t, EvtDayEnded, events[0].Type)
	assert.Equal(t, 1, events[0].Day)
	require.Equal(t, EvtDayStarted, events[1].Type)
	assert.Equal(t, 2, events[1].Day)
	assert.Equal(t, 2, r.Day.Current)
	assert.Equal(t, now.Add(r.Day.Length).UnixMilli(), r.Day.EndsAt)

	// Day start cleared pens for everyone and counters for live sheep.
	for _, p := range r.Players {
		assert.False(t, p.InPen)
		assert.Empty(t, p.PenID)
	}
	_, hasFar := r.GrassEaten["far"]
	assert.True(t, hasFar, "alive sheep gets a fresh counter")
	_, hasPrey := r.GrassEaten["prey"]
	assert.False(t, hasPrey, "dead sheep keeps no counter")
	// Dead players keep their reason; survivors shed theirs.
	assert.Equal(t, DeathWolfInPen, r.Players["prey"].DeathReason)
	assert.Empty(t, r.Players["far"].DeathReason)
}

func TestEndDayOnEndedRoomIsNoOp(t *testing.T) {
	r := testRoom(sheep("s", "pen-a"))
	r.Ended = true
	assert.Nil(t, EndDay(r, time.Now()))
	assert.Nil(t, StartDay(r, 2, time.Now()))
}

func TestPlayerViewExcludesRole(t *testing.T) {
	p := wolf("w", "pen-a")
	p.X, p.Y = 10.6, 3.2
	b, err := json.Marshal(p.Project())
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	_, leaked := m["role"]
	assert.False(t, leaked, "projection must not carry the hidden role: %s", b)
	assert.Equal(t, float64(11), m["x"], "positions are rounded")
	assert.Equal(t, float64(3), m["y"])
	assert.Equal(t, "player", m["type"])
}
