package protocol

import (
	"encoding/json"

	"github.com/wolfpen/backend/internal/game"
)

// Every frame on the wire is a type tag plus a type-specific payload.
// Inbound frames may carry a requestId, echoed back on the matching ack.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type Outbound struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Client -> server message types.
const (
	MsgRoomJoin         = "RoomJoin"
	MsgRoomStart        = "RoomStart"
	MsgRoomStartAck     = "RoomStartAck"
	MsgPlayerPosition   = "PlayerPosition"
	MsgPenUpdate        = "PenUpdate"
	MsgGrassEat         = "GrassEat"
	MsgLobbyListRequest = "LobbyListRequest"
)

// Server -> client message types.
const (
	MsgSessionWelcome = "SessionWelcome"
	MsgRoomJoinAck    = "RoomJoinAck"
	MsgRoomLobby      = "RoomLobby"
	MsgRoomState      = "RoomState"
	MsgPlayerRole     = "PlayerRole"
	MsgDayStart       = "DayStart"
	MsgDayEnd         = "DayEnd"
	MsgGameEnd        = "GameEnd"
	MsgLobbyList      = "LobbyList"
	// MsgRoomStart and MsgGrassEat are reused server->client: the start
	// announcement and the grass-removed event.
)

const ProtocolVersion = "1.0.0"

type SessionWelcome struct {
	SessionID       string `json:"sessionId"`
	ServerTime      int64  `json:"serverTime"`
	ProtocolVersion string `json:"protocolVersion"`
	AuthRequired    bool   `json:"authRequired"`
}

type RoomJoin struct {
	RoomID    string `json:"roomId"`
	Name      string `json:"name"`
	RequestID string `json:"requestId"`
	Create    bool   `json:"create,omitempty"`
}

type RoomJoinAck struct {
	RequestID string `json:"requestId"`
	OK        bool   `json:"ok"`
	RoomID    string `json:"roomId,omitempty"`
	PlayerID  string `json:"playerId,omitempty"`
	Color     string `json:"color,omitempty"`
	Error     string `json:"error,omitempty"`
}

// RoomStart (inbound) is the host's request to start the match. Omitted
// grass/pen lists mean the server generates them from the seed; an omitted
// seed means the server picks one.
type RoomStart struct {
	Seed  *int64   `json:"seed,omitempty"`
	Grass []string `json:"grass,omitempty"`
	Pens  []string `json:"pens,omitempty"`
}

// RoomStartAnnounce (outbound, sent as MsgRoomStart) tells every client the
// start cycle is open and when the ack window closes.
type RoomStartAnnounce struct {
	RoomID   string   `json:"roomId"`
	StartID  string   `json:"startId"`
	Deadline int64    `json:"deadline"`
	Grass    []string `json:"grass"`
	Pens     []string `json:"pens"`
	Seed     int64    `json:"seed"`
}

type Position struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
	Z *float64 `json:"z"`
}

type RoomStartAck struct {
	StartID  string   `json:"startId"`
	Position Position `json:"position"`
}

type PlayerPosition struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
	Z *float64 `json:"z"`
}

type PenUpdate struct {
	PenID string `json:"penId"`
	InPen bool   `json:"inPen"`
}

type GrassEat struct {
	GrassID string `json:"grassId"`
}

type RoomLobby struct {
	RoomID  string   `json:"roomId"`
	Players []string `json:"players"`
	Started bool     `json:"started"`
	HostID  string   `json:"hostId"`
}

type RoomState struct {
	RoomID    string      `json:"roomId"`
	Started   bool        `json:"started"`
	Ended     bool        `json:"ended"`
	Day       int         `json:"day"`
	TotalDays int         `json:"totalDays"`
	DayEndsAt int64       `json:"dayEndsAt"`
	Players   []game.View `json:"players"`
}

type PlayerRole struct {
	RoomID string    `json:"roomId"`
	Role   game.Role `json:"role"`
}

type DayStart struct {
	RoomID    string `json:"roomId"`
	Day       int    `json:"day"`
	DayEndsAt int64  `json:"dayEndsAt"`
}

type DayEnd struct {
	RoomID string `json:"roomId"`
	Day    int    `json:"day"`
}

type GameEnd struct {
	RoomID string         `json:"roomId"`
	Winner game.Winner    `json:"winner"`
	Reason game.EndReason `json:"reason"`
}

type LobbyListRequest struct {
	RequestID string `json:"requestId"`
}

type LobbySummary struct {
	RoomID  string `json:"roomId"`
	Players int    `json:"players"`
	Started bool   `json:"started"`
}

type LobbyList struct {
	RequestID string         `json:"requestId"`
	Lobbies   []LobbySummary `json:"lobbies"`
}
