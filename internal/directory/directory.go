// Package directory owns every room on the server. One goroutine consumes
// typed messages from an inbox — inbound client frames, disconnects, tick
// sweeps, start-barrier deadlines — so all room mutation happens on a
// single control flow and no locking is needed anywhere in the game state.
package directory

import (
	"context"
	"math/rand"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/wolfpen/backend/internal/game"
	"github.com/wolfpen/backend/internal/protocol"
)

type Options struct {
	DayLength    time.Duration
	TotalDays    int
	TickRate     int // ticks per second; 0 disables the internal ticker
	StartTimeout time.Duration
	GrassCount   int
	PenCount     int

	// Now and Rand are injectable for tests; nil means the real clock and
	// an OS-seeded source.
	Now  func() time.Time
	Rand *rand.Rand
}

func (o *Options) fill() {
	if o.DayLength == 0 {
		o.DayLength = game.DefaultDayLength
	}
	if o.TotalDays == 0 {
		o.TotalDays = game.DefaultTotalDays
	}
	if o.StartTimeout == 0 {
		o.StartTimeout = game.StartAckTimeout
	}
	if o.GrassCount == 0 {
		o.GrassCount = game.DefaultGrassCount
	}
	if o.PenCount == 0 {
		o.PenCount = game.DefaultPenCount
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Rand == nil {
		o.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
}

type msg interface{ isMsg() }

type inbound struct {
	sess *Session
	env  protocol.Envelope
}

type disconnect struct{ sessionID string }

// startDeadline carries the token it was armed with; a stale token means
// the start cycle it belonged to no longer exists and the firing is a no-op.
type startDeadline struct {
	roomID  string
	startID string
}

type sweep struct{ now time.Time }

type lobbiesQuery struct{ reply chan []protocol.LobbySummary }

// inspect messages exist for tests: they reflect internal state out of the
// loop without data races.
type inspectRoom struct {
	roomID string
	reply  chan *RoomView
}

type inspectIndex struct{ reply chan map[string]string }

func (inbound) isMsg()       {}
func (disconnect) isMsg()    {}
func (startDeadline) isMsg() {}
func (sweep) isMsg()         {}
func (lobbiesQuery) isMsg()  {}
func (inspectRoom) isMsg()   {}
func (inspectIndex) isMsg()  {}

// RoomView is a race-free copy of one room's state for inspection.
type RoomView struct {
	Exists      bool
	Started     bool
	Starting    bool
	Ended       bool
	Day         int
	DayEndsAt   int64
	HostID      string
	StartID     string
	PendingAcks int
	GrassCount  int
	PenCount    int
	Players     map[string]game.View
	Roles       map[string]game.Role
	Winner      game.Winner
	Reason      game.EndReason
}

type roomEntry struct {
	room     *game.Room
	sessions map[string]*Session

	// Terminal result, kept for inspection after GameEnd.
	winner game.Winner
	reason game.EndReason
}

type Directory struct {
	opts Options
	log  *zap.Logger

	inbox      chan msg
	rooms      map[string]*roomEntry
	playerRoom map[string]string

	ctx    context.Context
	cancel context.CancelFunc
}

func New(parent context.Context, opts Options, log *zap.Logger) *Directory {
	opts.fill()
	ctx, cancel := context.WithCancel(parent)
	d := &Directory{
		opts:       opts,
		log:        log,
		inbox:      make(chan msg, 256),
		rooms:      make(map[string]*roomEntry),
		playerRoom: make(map[string]string),
		ctx:        ctx,
		cancel:     cancel,
	}
	go d.loop()
	return d
}

func (d *Directory) Shutdown() { d.cancel() }

// HandleMessage routes one decoded client frame into the loop.
func (d *Directory) HandleMessage(sess *Session, env protocol.Envelope) {
	select {
	case d.inbox <- inbound{sess: sess, env: env}:
	case <-d.ctx.Done():
	}
}

// HandleDisconnect is called by the transport when a connection drops.
func (d *Directory) HandleDisconnect(sessionID string) {
	select {
	case d.inbox <- disconnect{sessionID: sessionID}:
	case <-d.ctx.Done():
	}
}

// Lobbies returns the current lobby list, for the HTTP mirror endpoint.
func (d *Directory) Lobbies() []protocol.LobbySummary {
	reply := make(chan []protocol.LobbySummary, 1)
	select {
	case d.inbox <- lobbiesQuery{reply: reply}:
	case <-d.ctx.Done():
		return nil
	}
	select {
	case out := <-reply:
		return out
	case <-d.ctx.Done():
		return nil
	}
}

func (d *Directory) loop() {
	var tickC <-chan time.Time
	if d.opts.TickRate > 0 {
		ticker := time.NewTicker(time.Second / time.Duration(d.opts.TickRate))
		defer ticker.Stop()
		tickC = ticker.C
	}

	for {
		select {
		case <-d.ctx.Done():
			return

		case <-tickC:
			d.sweepRooms(d.opts.Now())

		case m := <-d.inbox:
			switch mm := m.(type) {
			case inbound:
				d.dispatch(mm.sess, mm.env)
			case disconnect:
				d.leave(mm.sessionID)
			case startDeadline:
				d.onStartDeadline(mm.roomID, mm.startID)
			case sweep:
				d.sweepRooms(mm.now)
			case lobbiesQuery:
				mm.reply <- d.lobbySummaries()
			case inspectRoom:
				mm.reply <- d.roomView(mm.roomID)
			case inspectIndex:
				idx := make(map[string]string, len(d.playerRoom))
				for k, v := range d.playerRoom {
					idx[k] = v
				}
				mm.reply <- idx
			}
		}
	}
}

// sweepRooms is the per-tick pass over every room: clamp elapsed time,
// advance player timers, resolve an expired day, then broadcast the full
// snapshot. No delta compression — every tick resends everything.
func (d *Directory) sweepRooms(now time.Time) {
	for roomID, entry := range d.rooms {
		r := entry.room
		dt := now.Sub(r.LastTick)
		if dt < 0 {
			dt = 0
		}
		if dt > game.MaxTickDelta {
			dt = game.MaxTickDelta
		}
		r.LastTick = now

		if !r.Started || r.Ended {
			continue
		}

		for _, p := range r.Players {
			p.Advance(dt.Seconds())
		}

		if r.Day.EndsAt != 0 && now.UnixMilli() >= r.Day.EndsAt {
			d.emit(roomID, game.EndDay(r, now))
		}

		d.broadcastRoom(roomID)
	}
}

func (d *Directory) onStartDeadline(roomID, startID string) {
	entry := d.rooms[roomID]
	if entry == nil || !entry.room.Starting || entry.room.StartID != startID {
		return
	}
	d.finalizeStart(roomID)
}

// emit turns day-cycle events into broadcasts, in event order.
func (d *Directory) emit(roomID string, events []game.Event) {
	for _, ev := range events {
		switch ev.Type {
		case game.EvtDayStarted:
			d.broadcast(roomID, protocol.MsgDayStart, protocol.DayStart{
				RoomID:    roomID,
				Day:       ev.Day,
				DayEndsAt: ev.EndsAt,
			})
			d.broadcastRoom(roomID)
		case game.EvtDayEnded:
			d.broadcast(roomID, protocol.MsgDayEnd, protocol.DayEnd{
				RoomID: roomID,
				Day:    ev.Day,
			})
		case game.EvtGameEnded:
			if entry := d.rooms[roomID]; entry != nil {
				entry.winner = ev.Winner
				entry.reason = ev.Reason
			}
			d.broadcast(roomID, protocol.MsgGameEnd, protocol.GameEnd{
				RoomID: roomID,
				Winner: ev.Winner,
				Reason: ev.Reason,
			})
			d.broadcastRoom(roomID)
			d.log.Info("game ended",
				zap.String("room", roomID),
				zap.String("winner", string(ev.Winner)),
				zap.String("reason", string(ev.Reason)))
		}
	}
}

func (d *Directory) broadcast(roomID, msgType string, payload any) {
	entry := d.rooms[roomID]
	if entry == nil {
		return
	}
	for _, sess := range entry.sessions {
		sess.Send(msgType, payload)
	}
}

func (d *Directory) broadcastRoom(roomID string) {
	entry := d.rooms[roomID]
	if entry == nil {
		return
	}
	d.broadcast(roomID, protocol.MsgRoomState, d.snapshotRoom(entry.room))
}

func (d *Directory) snapshotRoom(r *game.Room) protocol.RoomState {
	players := r.PlayersSorted()
	views := make([]game.View, 0, len(players))
	for _, p := range players {
		views = append(views, p.Project())
	}
	return protocol.RoomState{
		RoomID:    r.ID,
		Started:   r.Started,
		Ended:     r.Ended,
		Day:       r.Day.Current,
		TotalDays: r.Day.TotalDays,
		DayEndsAt: r.Day.EndsAt,
		Players:   views,
	}
}

func (d *Directory) broadcastLobby(roomID string) {
	entry := d.rooms[roomID]
	if entry == nil {
		return
	}
	players := entry.room.PlayersSorted()
	names := make([]string, 0, len(players))
	for _, p := range players {
		names = append(names, p.Name)
	}
	d.broadcast(roomID, protocol.MsgRoomLobby, protocol.RoomLobby{
		RoomID:  roomID,
		Players: names,
		Started: entry.room.Started,
		HostID:  entry.room.HostID,
	})
}

func (d *Directory) lobbySummaries() []protocol.LobbySummary {
	out := make([]protocol.LobbySummary, 0, len(d.rooms))
	for id, entry := range d.rooms {
		out = append(out, protocol.LobbySummary{
			RoomID:  id,
			Players: len(entry.room.Players),
			Started: entry.room.Started,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RoomID < out[j].RoomID })
	return out
}

func (d *Directory) roomView(roomID string) *RoomView {
	entry := d.rooms[roomID]
	if entry == nil {
		return &RoomView{}
	}
	r := entry.room
	v := &RoomView{
		Exists:      true,
		Started:     r.Started,
		Starting:    r.Starting,
		Ended:       r.Ended,
		Day:         r.Day.Current,
		DayEndsAt:   r.Day.EndsAt,
		HostID:      r.HostID,
		StartID:     r.StartID,
		PendingAcks: len(r.PendingStartAcks),
		GrassCount:  len(r.Grass),
		PenCount:    len(r.Pens),
		Players:     make(map[string]game.View, len(r.Players)),
		Roles:       make(map[string]game.Role, len(r.Players)),
		Winner:      entry.winner,
		Reason:      entry.reason,
	}
	for id, p := range r.Players {
		v.Players[id] = p.Project()
		v.Roles[id] = p.Role
	}
	return v
}
