package directory

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wolfpen/backend/internal/game"
	"github.com/wolfpen/backend/internal/protocol"
)

var (
	errRoomClosed = errors.New("room already started")
	errRoomExists = errors.New("room already exists")
)

// dispatch routes one frame to its handler. A panic in a handler is
// contained to that one message: the loop, the room, and every other room
// keep running.
func (d *Directory) dispatch(sess *Session, env protocol.Envelope) {
	defer func() {
		if rec := recover(); rec != nil {
			d.log.Error("handler panic",
				zap.String("type", env.Type),
				zap.String("session", sess.ID),
				zap.Any("panic", rec))
		}
	}()

	switch env.Type {
	case protocol.MsgRoomJoin:
		var p protocol.RoomJoin
		if decode(env.Payload, &p) {
			d.handleRoomJoin(sess, p)
		}
	case protocol.MsgRoomStart:
		var p protocol.RoomStart
		if decode(env.Payload, &p) {
			d.handleRoomStart(sess, p)
		}
	case protocol.MsgRoomStartAck:
		var p protocol.RoomStartAck
		if decode(env.Payload, &p) {
			d.handleRoomStartAck(sess, p)
		}
	case protocol.MsgPlayerPosition:
		var p protocol.PlayerPosition
		if decode(env.Payload, &p) {
			d.handlePlayerPosition(sess, p)
		}
	case protocol.MsgPenUpdate:
		var p protocol.PenUpdate
		if decode(env.Payload, &p) {
			d.handlePenUpdate(sess, p)
		}
	case protocol.MsgGrassEat:
		var p protocol.GrassEat
		if decode(env.Payload, &p) {
			d.handleGrassEat(sess, p)
		}
	case protocol.MsgLobbyListRequest:
		var p protocol.LobbyListRequest
		if decode(env.Payload, &p) {
			d.handleLobbyList(sess, p)
		}
	default:
		// Unknown types are dropped, not answered: one misbehaving client
		// must not learn anything from probe messages.
	}
}

func decode(raw json.RawMessage, into any) bool {
	if len(raw) == 0 {
		return true
	}
	return json.Unmarshal(raw, into) == nil
}

func (d *Directory) handleRoomJoin(sess *Session, p protocol.RoomJoin) {
	roomID, playerID, err := d.join(sess, p.RoomID, p.Name, p.Create)
	if err != nil {
		sess.Send(protocol.MsgRoomJoinAck, protocol.RoomJoinAck{
			RequestID: p.RequestID,
			OK:        false,
			Error:     err.Error(),
		})
		return
	}
	sess.Send(protocol.MsgRoomJoinAck, protocol.RoomJoinAck{
		RequestID: p.RequestID,
		OK:        true,
		RoomID:    roomID,
		PlayerID:  playerID,
		Color:     d.rooms[roomID].room.Players[playerID].Color,
	})
}

func (d *Directory) join(sess *Session, rawRoomID, rawName string, createOnly bool) (string, string, error) {
	roomID, err := game.SanitizeRoomID(rawRoomID)
	if err != nil {
		return "", "", err
	}
	name := game.SanitizeName(rawName)

	if createOnly {
		if _, taken := d.rooms[roomID]; taken {
			return "", "", errRoomExists
		}
	}

	// Joining while in another room leaves that room first.
	d.leave(sess.ID)

	entry := d.rooms[roomID]
	if entry == nil {
		entry = &roomEntry{
			room:     game.NewRoom(roomID, d.opts.DayLength, d.opts.TotalDays, d.opts.Now()),
			sessions: make(map[string]*Session),
		}
		d.rooms[roomID] = entry
		d.log.Info("room created", zap.String("room", roomID))
	}
	r := entry.room

	if r.Started || r.Starting || r.Ended {
		return "", "", errRoomClosed
	}

	player := game.NewPlayer(sess.ID, name, game.RandomColor(d.opts.Rand))
	r.Players[sess.ID] = player
	entry.sessions[sess.ID] = sess
	d.playerRoom[sess.ID] = roomID
	if r.HostID == "" {
		r.HostID = sess.ID
	}

	d.broadcastLobby(roomID)
	d.log.Info("player joined",
		zap.String("room", roomID),
		zap.String("player", sess.ID),
		zap.String("name", name))
	return roomID, sess.ID, nil
}

// leave removes a player from whatever room the reverse index says they are
// in. If a start barrier is waiting on them, their departure may finalize
// it; if they were the last player, the room dies with them.
func (d *Directory) leave(sessionID string) {
	roomID, ok := d.playerRoom[sessionID]
	if !ok {
		return
	}

	entry := d.rooms[roomID]
	if entry != nil {
		r := entry.room
		delete(r.Players, sessionID)
		delete(entry.sessions, sessionID)
		if r.Starting && r.PendingStartAcks != nil {
			delete(r.PendingStartAcks, sessionID)
			if len(r.PendingStartAcks) == 0 {
				d.finalizeStart(roomID)
			}
		}
		if _, alive := d.rooms[roomID]; alive {
			if len(r.Players) == 0 {
				r.ClearStart()
				delete(d.rooms, roomID)
				d.log.Info("room deleted", zap.String("room", roomID))
			} else {
				d.broadcastLobby(roomID)
			}
		}
	}

	delete(d.playerRoom, sessionID)
}

// handleRoomStart arms the start barrier. Host-only and silently dropped
// otherwise: there is no ack channel for start requests.
func (d *Directory) handleRoomStart(sess *Session, p protocol.RoomStart) {
	roomID, ok := d.playerRoom[sess.ID]
	if !ok {
		return
	}
	entry := d.rooms[roomID]
	if entry == nil {
		return
	}
	r := entry.room

	if sess.ID != r.HostID {
		d.log.Debug("start request from non-host",
			zap.String("room", roomID), zap.String("session", sess.ID))
		return
	}
	if r.Started || r.Starting || r.Ended {
		return
	}

	seed := d.opts.Rand.Int63()
	if p.Seed != nil {
		seed = *p.Seed
	}
	grassIDs := p.Grass
	if len(grassIDs) == 0 {
		grassIDs = game.GenerateGrassIDs(seed, d.opts.GrassCount)
	}
	penIDs := p.Pens
	if len(penIDs) == 0 {
		penIDs = game.GeneratePenIDs(seed, d.opts.PenCount)
	}

	r.Starting = true
	r.StartID = uuid.NewString()
	r.PendingStartAcks = make(map[string]struct{}, len(r.Players))
	for id := range r.Players {
		r.PendingStartAcks[id] = struct{}{}
	}
	r.Grass = game.BuildGrassMap(grassIDs)
	r.Pens = game.BuildPenMap(penIDs)
	r.MapSeed = seed

	deadline := d.opts.Now().Add(d.opts.StartTimeout)
	d.broadcast(roomID, protocol.MsgRoomStart, protocol.RoomStartAnnounce{
		RoomID:   roomID,
		StartID:  r.StartID,
		Deadline: deadline.UnixMilli(),
		Grass:    grassIDs,
		Pens:     penIDs,
		Seed:     seed,
	})

	startID := r.StartID
	time.AfterFunc(d.opts.StartTimeout, func() {
		select {
		case d.inbox <- startDeadline{roomID: roomID, startID: startID}:
		case <-d.ctx.Done():
		}
	})
	d.log.Info("start barrier armed",
		zap.String("room", roomID),
		zap.String("startId", startID),
		zap.Int("pending", len(r.PendingStartAcks)))
}

func (d *Directory) handleRoomStartAck(sess *Session, p protocol.RoomStartAck) {
	entry := d.roomFor(sess.ID)
	if entry == nil {
		return
	}
	r := entry.room
	// A mismatched startId is a stale or duplicate ack from an earlier
	// cycle; ignore it.
	if !r.Starting || r.StartID != p.StartID {
		return
	}

	player := r.Players[sess.ID]
	if player == nil {
		return
	}
	applyPosition(player, p.Position.X, p.Position.Y, p.Position.Z)

	delete(r.PendingStartAcks, sess.ID)
	// Finalize deliberately waits for the timeout even when every player
	// has acked; only a straggler leaving can finalize early (see leave).
}

// finalizeStart closes the barrier: stragglers are removed from the room
// outright, roles are assigned, each player learns only their own role, and
// day 1 begins.
func (d *Directory) finalizeStart(roomID string) {
	entry := d.rooms[roomID]
	if entry == nil || entry.room.Started {
		return
	}
	r := entry.room

	for id := range r.PendingStartAcks {
		delete(r.Players, id)
		delete(entry.sessions, id)
		delete(d.playerRoom, id)
		d.log.Info("removed unacked player",
			zap.String("room", roomID), zap.String("player", id))
	}

	if len(r.Players) == 0 {
		r.ClearStart()
		delete(d.rooms, roomID)
		d.log.Info("room deleted", zap.String("room", roomID))
		return
	}

	r.ClearStart()
	r.Ended = false
	r.Started = true
	for _, p := range r.Players {
		p.IsAlive = true
		p.InPen = false
		p.PenID = ""
		p.DeathReason = ""
	}

	game.AssignRoles(r.PlayersSorted(), d.opts.Rand)
	for id, sess := range entry.sessions {
		p := r.Players[id]
		if p == nil {
			continue
		}
		sess.Send(protocol.MsgPlayerRole, protocol.PlayerRole{RoomID: roomID, Role: p.Role})
	}

	d.log.Info("match started",
		zap.String("room", roomID), zap.Int("players", len(r.Players)))
	d.emit(roomID, game.StartDay(r, 1, d.opts.Now()))
}

func (d *Directory) handlePlayerPosition(sess *Session, p protocol.PlayerPosition) {
	entry := d.roomFor(sess.ID)
	if entry == nil || !entry.room.Started || entry.room.Ended {
		return
	}
	player := entry.room.Players[sess.ID]
	if player == nil {
		return
	}
	applyPosition(player, p.X, p.Y, p.Z)
}

func (d *Directory) handlePenUpdate(sess *Session, p protocol.PenUpdate) {
	entry := d.roomFor(sess.ID)
	if entry == nil || !entry.room.Started || entry.room.Ended {
		return
	}
	r := entry.room
	player := r.Players[sess.ID]
	if player == nil || !player.IsAlive {
		return
	}

	// An unrecognized pen id means "not in any pen". Containment itself is
	// client-reported and trusted; the server never recomputes geometry.
	_, known := r.Pens[p.PenID]
	inPen := p.InPen && known
	player.InPen = inPen
	if inPen {
		player.PenID = p.PenID
	} else {
		player.PenID = ""
	}
}

func (d *Directory) handleGrassEat(sess *Session, p protocol.GrassEat) {
	entry := d.roomFor(sess.ID)
	if entry == nil || !entry.room.Started || entry.room.Ended {
		return
	}
	r := entry.room

	grass := r.Grass[p.GrassID]
	if grass == nil {
		return
	}
	grass.SetHealth(grass.Health - 1)

	// Only alive sheep earn survival credit. The decrement above is not
	// role-gated: grass consumption stays client-gated on purpose.
	if player := r.Players[sess.ID]; player != nil && player.Role == game.RoleSheep && player.IsAlive {
		r.GrassEaten[sess.ID]++
	}

	if grass.Health > 0 {
		return
	}
	delete(r.Grass, p.GrassID)
	d.broadcast(r.ID, protocol.MsgGrassEat, protocol.GrassEat{GrassID: p.GrassID})
}

func (d *Directory) handleLobbyList(sess *Session, p protocol.LobbyListRequest) {
	sess.Send(protocol.MsgLobbyList, protocol.LobbyList{
		RequestID: p.RequestID,
		Lobbies:   d.lobbySummaries(),
	})
}

func (d *Directory) roomFor(sessionID string) *roomEntry {
	roomID, ok := d.playerRoom[sessionID]
	if !ok {
		return nil
	}
	return d.rooms[roomID]
}

// applyPosition copies the client-reported coordinates, keeping the old
// value for any axis the payload omitted.
func applyPosition(p *game.Player, x, y, z *float64) {
	if x != nil {
		p.X = *x
	}
	if y != nil {
		p.Y = *y
	}
	if z != nil {
		p.Z = *z
	}
}
