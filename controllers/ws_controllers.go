package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/smartmenu-api/hub"
	"github.com/yeremiapane/smartmenu-api/middlewares"
)

type WSController struct {
	Hub      *hub.Hub
	Log      logrus.FieldLogger
	upgrader websocket.Upgrader
}

// NewWSController accepts handshakes from the given origins. Requests
// without an Origin header are always accepted.
func NewWSController(h *hub.Hub, origins []string, log logrus.FieldLogger) *WSController {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	return &WSController{
		Hub: h,
		Log: log.WithField("component", "ws"),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed[origin]
			},
		},
	}
}

// Serve upgrades the request and keeps the client registered until it
// disconnects. Incoming messages are ignored.
func (wc *WSController) Serve(c *gin.Context) {
	role := c.GetString(middlewares.CtxRole)
	if role == "" {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	ws, err := wc.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		wc.Log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	wc.Hub.Register(ws, role, c.GetString(middlewares.CtxRestaurantID))
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}
	wc.Hub.Unregister(ws)
}
