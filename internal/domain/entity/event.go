package entity

import (
	"fmt"
	"time"
)

// LinkEventKind — тип события соединения с контроллером светодиодов.
type LinkEventKind string

const (
	LinkConnected    LinkEventKind = "connected"
	LinkDisconnected LinkEventKind = "disconnected"
	LinkError        LinkEventKind = "error"
)

// LinkEvent — событие соединения, которое приложение забирает из очереди.
type LinkEvent struct {
	Kind LinkEventKind
	Addr string
	Err  error
	At   time.Time
}

func (e LinkEvent) String() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %v", e.Kind, e.Addr, e.Err)
	}
	return fmt.Sprintf("%s %s", e.Kind, e.Addr)
}
