package sync

// State is the authoritative playback snapshot pushed to room members.
// CurrentTime is the reference position in seconds as of UpdatedAt; the true
// position while playing is CurrentTime plus the elapsed authority time.
type State struct {
	RoomId        string  `json:"room_id"`
	IsPlaying     bool    `json:"is_playing"`
	CurrentTime   float64 `json:"current_time"`
	PlaybackRate  float64 `json:"playback_rate"`
	UpdatedBy     string  `json:"updated_by"`
	UpdatedByName string  `json:"updated_by_name,omitempty"`
	UpdatedAt     int64   `json:"updated_at"`
	LastAction    string  `json:"last_action"`
}

const (
	ActionPlay  = "play"
	ActionPause = "pause"
	ActionSeek  = "seek"
	ActionUnset = "unset"
)
