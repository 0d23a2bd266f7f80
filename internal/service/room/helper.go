package room

import (
	"github.com/gorilla/websocket"
)

// getConnsByUserIds collects the live connections of the given members.
// Offline members are skipped, they catch up from the snapshot on reconnect.
func (s service) getConnsByUserIds(userIds []string) []*websocket.Conn {
	conns := make([]*websocket.Conn, 0, len(userIds))
	for _, userId := range userIds {
		conn, err := s.connRepo.GetConn(userId)
		if err != nil {
			continue
		}

		conns = append(conns, conn)
	}

	return conns
}
