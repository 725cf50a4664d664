package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/yeremiapane/table-reservation/board"
)

type BoardController struct {
	Hub      *board.Hub
	upgrader websocket.Upgrader
}

func NewBoardController(hub *board.Hub) *BoardController {
	return &BoardController{
		Hub: hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Connect -> websocket feed of new reservations
func (bc *BoardController) Connect(c *gin.Context) {
	ws, err := bc.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	bc.Hub.Register(ws)

	// the board is read-only; reading only detects disconnects
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}

	bc.Hub.Unregister(ws)
}
