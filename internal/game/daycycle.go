package game

import "time"

type Winner string

const (
	WinnerSheep  Winner = "sheep"
	WinnerWolves Winner = "wolves"
)

type EndReason string

const (
	ReasonWolvesEliminated EndReason = "WOLVES_ELIMINATED"
	ReasonSheepEliminated  EndReason = "SHEEP_ELIMINATED"
	ReasonSurvivedDays     EndReason = "SURVIVED_DAYS"
)

type EventType string

const (
	EvtDayStarted EventType = "DayStarted"
	EvtDayEnded   EventType = "DayEnded"
	EvtGameEnded  EventType = "GameEnded"
)

// Event records a day-cycle transition for the caller to broadcast. The
// slice order returned by EndDay is the broadcast order.
type Event struct {
	Type   EventType
	Day    int
	EndsAt int64
	Winner Winner
	Reason EndReason
}

// StartDay opens day n: everyone leaves their pen, the still-alive shed any
// stale death reason, and sheep get a fresh grass tally.
func StartDay(r *Room, n int, now time.Time) []Event {
	if r.Ended {
		return nil
	}

	r.Day.Current = n
	r.Day.EndsAt = now.Add(r.Day.Length).UnixMilli()
	for _, p := range r.Players {
		p.InPen = false
		p.PenID = ""
		if p.IsAlive {
			p.DeathReason = ""
		}
	}
	r.ResetDayCounters()

	return []Event{{Type: EvtDayStarted, Day: n, EndsAt: r.Day.EndsAt}}
}

// EndGame moves the room into its terminal state. A new match needs a new
// room; ticks no longer act on this one.
func EndGame(r *Room, winner Winner, reason EndReason) []Event {
	r.Ended = true
	r.Started = false
	r.Day.EndsAt = 0
	return []Event{{Type: EvtGameEnded, Winner: winner, Reason: reason}}
}

// EndDay resolves eliminations for the current day and either advances to
// the next day or ends the game. The step order is fixed and later steps
// observe the survivorship the earlier steps produced:
//
//  1. count alive sheep per pen
//  2. wolves in sheepless pens starve; pens holding a surviving wolf
//     become wolf pens
//  3. alive sheep in wolf pens die (step 2 is not re-run)
//  4. anyone left outside a pen dies; penned sheep below the grass quota
//     starve
//  5. day-end broadcast, then win checks (wolves first, so a simultaneous
//     wipe is a sheep win)
func EndDay(r *Room, now time.Time) []Event {
	if r.Ended {
		return nil
	}

	sheepInPen := make(map[string]int)
	for _, p := range r.Players {
		if !p.IsAlive || p.Role != RoleSheep {
			continue
		}
		if !p.InPen || p.PenID == "" {
			continue
		}
		sheepInPen[p.PenID]++
	}

	wolfPens := make(map[string]struct{})
	for _, p := range r.Players {
		if !p.IsAlive || p.Role != RoleWolf {
			continue
		}
		if !p.InPen || p.PenID == "" {
			continue
		}
		if sheepInPen[p.PenID] == 0 {
			p.IsAlive = false
			p.DeathReason = DeathWolfHunger
			continue
		}
		wolfPens[p.PenID] = struct{}{}
	}

	if len(wolfPens) > 0 {
		for _, p := range r.Players {
			if !p.IsAlive || p.Role != RoleSheep {
				continue
			}
			if !p.InPen || p.PenID == "" {
				continue
			}
			if _, hunted := wolfPens[p.PenID]; hunted {
				p.IsAlive = false
				p.DeathReason = DeathWolfInPen
			}
		}
	}

	for _, p := range r.Players {
		if !p.IsAlive {
			continue
		}

		if !p.InPen || p.PenID == "" {
			p.IsAlive = false
			p.DeathReason = DeathNotInPen
			continue
		}

		if p.Role != RoleSheep {
			continue
		}
		if r.GrassEaten[p.ID] < GrassPerSheepPerDay {
			p.IsAlive = false
			p.DeathReason = DeathNotEnoughGrass
		}
	}

	events := []Event{{Type: EvtDayEnded, Day: r.Day.Current}}

	switch {
	case r.AliveCount(RoleWolf) == 0:
		events = append(events, EndGame(r, WinnerSheep, ReasonWolvesEliminated)...)
	case r.AliveCount(RoleSheep) == 0:
		events = append(events, EndGame(r, WinnerWolves, ReasonSheepEliminated)...)
	case r.Day.Current >= r.Day.TotalDays:
		events = append(events, EndGame(r, WinnerSheep, ReasonSurvivedDays)...)
	default:
		events = append(events, StartDay(r, r.Day.Current+1, now)...)
	}

	return events
}
