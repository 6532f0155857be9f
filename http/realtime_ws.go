package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// wsIdleTimeout closes sockets that send nothing for this long.
	wsIdleTimeout = 2 * time.Minute
	wsWriteWait   = 10 * time.Second
	wsMaxMessage  = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// handlePredictSocket answers each PredictRequest frame with the same JSON body
// the REST endpoint would return, plus the status it would have used.
func (h *Handlers) handlePredictSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	conn.SetReadLimit(wsMaxMessage)
	for {
		conn.SetReadDeadline(time.Now().Add(wsIdleTimeout))
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug("websocket closed", zap.Error(err))
			}
			return
		}

		var req PredictRequest
		var reply socketReply
		decoder := json.NewDecoder(bytes.NewReader(message))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&req); err != nil {
			reply = socketReply{Status: http.StatusBadRequest, Body: ErrorResponse{Error: "invalid_request", Message: "message must be a JSON object with fields or values"}}
		} else {
			reply.Status, reply.Body = h.evaluate(r, req)
		}

		conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		if err := conn.WriteJSON(reply); err != nil {
			h.log.Debug("websocket write failed", zap.Error(err))
			return
		}
	}
}

type socketReply struct {
	Status int         `json:"status"`
	Body   interface{} `json:"body"`
}
