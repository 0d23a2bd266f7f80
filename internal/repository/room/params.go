package room

type SetRoomParams struct {
	RoomId             string
	Name               string
	MovieTitle         string
	MovieFileName      string
	AdminId            string
	IsPublic           bool
	EveryoneCanControl bool
	CreatedAt          int64
}

type SetSyncStateParams struct {
	RoomId       string
	IsPlaying    bool
	CurrentTime  float64
	PlaybackRate float64
	UpdatedBy    string
	UpdatedAt    int64
	LastAction   string
}

// UpdateSyncStateParams applies only the non-nil playback fields. UpdatedBy,
// UpdatedAt and LastAction are always written.
type UpdateSyncStateParams struct {
	RoomId       string
	IsPlaying    *bool
	CurrentTime  *float64
	PlaybackRate *float64
	UpdatedBy    string
	UpdatedAt    int64
	LastAction   string
}

type SetMemberParams struct {
	RoomId   string
	UserId   string
	JoinedAt int64
}

type RemoveMemberParams struct {
	RoomId string
	UserId string
}

type UpdateMemberFileParams struct {
	RoomId        string
	UserId        string
	LocalFilePath string
	IsReady       bool
}

type AddWatchLogParams struct {
	UserId string
	Log    WatchLog
}
