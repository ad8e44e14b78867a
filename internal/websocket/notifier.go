package websocket

import (
	"log"

	"notemap-server/internal/domain"
)

// Notifier adapts the connection manager to the note service's notifier
// interface.
type Notifier struct {
	manager *Manager
}

func NewNotifier(manager *Manager) *Notifier {
	return &Notifier{manager: manager}
}

func (n *Notifier) NotifyNoteChange(ownerID, deviceID, event string, note *domain.NoteResponse) {
	msg, err := NewMessage(MessageType(event), note)
	if err != nil {
		log.Printf("failed to build %s event: %v", event, err)
		return
	}

	if err := n.manager.BroadcastToUser(ownerID, msg, deviceID); err != nil {
		log.Printf("failed to broadcast %s event: %v", event, err)
	}
}
