package lib

import (
	"log"

	"github.com/zishang520/socket.io/v2/socket"
)

// QUEUE_CHANGED is the only event the realtime channel carries. It has no
// payload; clients re-query the open-token list on receipt.
const QUEUE_CHANGED = "QueueChanged"

var socketServer *socket.Server

func GetSocketServer() *socket.Server {
	if socketServer != nil {
		return socketServer
	}
	wss := socket.NewServer(nil, nil)
	wss.On("connection", func(clients ...any) {
		client := clients[0].(*socket.Socket)
		log.Printf("[realtime] client connected: %s\n", string(client.Id()))
		client.On("disconnect", func(...any) {
			log.Printf("[realtime] client disconnected: %s\n", string(client.Id()))
		})
	})
	socketServer = wss
	return wss
}

// NewSocketServer Replace socket server instance with custom implementation
func NewSocketServer(s *socket.Server) *socket.Server {
	socketServer = s
	return socketServer
}

// NotifyQueueChanged broadcasts the queue-changed hint to every connected
// observer. Best effort, at most once: errors are logged and swallowed so a
// failed publish can never fail the mutation that triggered it.
func NotifyQueueChanged() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[realtime] publish panicked: %v\n", r)
		}
	}()
	GetSocketServer().Emit(QUEUE_CHANGED)

	pc := GetPusherClient()
	if pc == nil {
		return
	}
	if err := pc.Trigger("queue", QUEUE_CHANGED, nil); err != nil {
		log.Printf("[pusher] Error triggering %s: %s\n", QUEUE_CHANGED, err.Error())
	}
}
