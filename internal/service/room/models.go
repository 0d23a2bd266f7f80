package room

type Room struct {
	Id                 string `json:"id"`
	Name               string `json:"name"`
	MovieTitle         string `json:"movie_title"`
	MovieFileName      string `json:"movie_file_name"`
	AdminId            string `json:"admin_id"`
	AdminName          string `json:"admin_name"`
	IsPublic           bool   `json:"is_public"`
	EveryoneCanControl bool   `json:"everyone_can_control"`
	CreatedAt          int64  `json:"created_at"`
}

type Member struct {
	UserId        string `json:"user_id"`
	Username      string `json:"username"`
	DisplayName   string `json:"display_name"`
	IsAdmin       bool   `json:"is_admin"`
	IsReady       bool   `json:"is_ready"`
	LocalFilePath string `json:"local_file_path,omitempty"`
	JoinedAt      int64  `json:"joined_at"`
}

type Summary struct {
	Room        Room `json:"room"`
	MemberCount int  `json:"member_count"`
}
