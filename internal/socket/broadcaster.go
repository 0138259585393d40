package socket

// Broadcaster adapts the hub to the notification package's fan-out
// interface. Rooms are keyed user:<id> and workspace:<id>.
type Broadcaster struct {
	hub *Hub
}

func NewBroadcaster(hub *Hub) *Broadcaster {
	return &Broadcaster{hub: hub}
}

func (b *Broadcaster) ToUser(userID, event string, payload any) {
	b.hub.SendToUser(userID, event, payload)
}

func (b *Broadcaster) ToWorkspace(workspaceID, event string, payload any) {
	b.hub.SendToRoom("workspace:"+workspaceID, event, payload)
}
