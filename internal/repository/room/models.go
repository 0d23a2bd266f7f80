package room

import "encoding/json"

// Room holds the metadata used to decide who may control playback.
type Room struct {
	Name               string `redis:"name"`
	MovieTitle         string `redis:"movie_title"`
	MovieFileName      string `redis:"movie_file_name"`
	AdminId            string `redis:"admin_id"`
	IsPublic           bool   `redis:"is_public"`
	EveryoneCanControl bool   `redis:"everyone_can_control"`
	CreatedAt          int64  `redis:"created_at"`
}

// SyncState is the authoritative playback record of a room. CurrentTime is
// the reference position in seconds as of UpdatedAt (authority clock, ms).
type SyncState struct {
	IsPlaying    bool    `redis:"is_playing"`
	CurrentTime  float64 `redis:"current_time"`
	PlaybackRate float64 `redis:"playback_rate"`
	UpdatedBy    string  `redis:"updated_by"`
	UpdatedAt    int64   `redis:"updated_at"`
	LastAction   string  `redis:"last_action"`
}

type Member struct {
	UserId        string `redis:"user_id"`
	IsReady       bool   `redis:"is_ready"`
	LocalFilePath string `redis:"local_file_path"`
	JoinedAt      int64  `redis:"joined_at"`
}

type WatchLog struct {
	MovieTitle   string   `json:"movie_title"`
	RoomName     string   `json:"room_name"`
	Participants []string `json:"participants"`
	FinishedAt   int64    `json:"finished_at"`
}

func (l WatchLog) MarshalBinary() ([]byte, error) {
	return json.Marshal(l)
}

func (l *WatchLog) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, l)
}
