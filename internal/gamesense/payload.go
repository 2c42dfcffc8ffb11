package gamesense

// Request bodies of the GameSense HTTP API. Field names are fixed by the
// SteelSeries GG server.

const (
	pathHeartbeat = "/game_heartbeat"
	pathMetadata  = "/game_metadata"
	pathBindEvent = "/bind_game_event"
	pathGameEvent = "/game_event"

	pingGame = "PING"

	screenDeviceType = "screened-128x40"
	screenZone       = "one"
	screenMode       = "screen"
	screenIconID     = 1
	frameKeyLine1    = "l1"
	frameKeyLine2    = "l2"
)

type heartbeatPayload struct {
	Game string `json:"game"`
}

type metadataPayload struct {
	Game                string `json:"game"`
	DisplayName         string `json:"game_display_name"`
	Developer           string `json:"developer"`
	DeinitializeTimerMS int64  `json:"deinitialize_timer_length_ms"`
}

type bindPayload struct {
	Game     string          `json:"game"`
	Event    string          `json:"event"`
	IconID   int             `json:"icon_id"`
	Handlers []screenHandler `json:"handlers"`
}

type screenHandler struct {
	DeviceType string       `json:"device-type"`
	Zone       string       `json:"zone"`
	Mode       string       `json:"mode"`
	Datas      []screenData `json:"datas"`
}

type screenData struct {
	Lines []screenLine `json:"lines"`
}

type screenLine struct {
	HasText         bool   `json:"has-text"`
	ContextFrameKey string `json:"context-frame-key"`
}

type eventPayload struct {
	Game  string    `json:"game"`
	Event string    `json:"event"`
	Data  eventData `json:"data"`
}

type eventData struct {
	Value int   `json:"value"`
	Frame frame `json:"frame"`
}

type frame struct {
	Line1 string `json:"l1"`
	Line2 string `json:"l2"`
}

func newBindPayload(game, event string) bindPayload {
	return bindPayload{
		Game:   game,
		Event:  event,
		IconID: screenIconID,
		Handlers: []screenHandler{{
			DeviceType: screenDeviceType,
			Zone:       screenZone,
			Mode:       screenMode,
			Datas: []screenData{{
				Lines: []screenLine{
					{HasText: true, ContextFrameKey: frameKeyLine1},
					{HasText: true, ContextFrameKey: frameKeyLine2},
				},
			}},
		}},
	}
}

// Truncate crops s to the first LineWidth characters.
func Truncate(s string) string {
	n := 0
	for i := range s {
		if n == LineWidth {
			return s[:i]
		}
		n++
	}
	return s
}
