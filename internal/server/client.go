package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"dungeon-server/internal/engine"
	"dungeon-server/pkg/api"
	"dungeon-server/pkg/logger"
)

// Настройки WebSocket
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Client - посредник между Websocket и сессией
type Client struct {
	Session *engine.Session
	Conn    *websocket.Conn
	Send    chan api.ServerResponse
	Token   string
}

func NewClient(session *engine.Session, conn *websocket.Conn) *Client {
	return &Client{
		Session: session,
		Conn:    conn,
		Send:    make(chan api.ServerResponse, 256),
	}
}

// readPump читает команды от клиента
func (c *Client) readPump() {
	defer func() {
		if c.Token != "" {
			c.Session.Hub.Unregister(c.Token)
			// Не блокируем readPump, если сессия занята
			select {
			case c.Session.LeaveChan <- c.Token:
			default:
			}
			logger.Log.WithField("token", c.Token).Info("Client disconnected")
		}
		if err := c.Conn.Close(); err != nil {
			logger.Log.WithError(err).Warn("failed to close websocket connection")
		}
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	if err := c.Conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		logger.Log.WithError(err).Warn("failed to set read deadline")
	}
	c.Conn.SetPongHandler(func(string) error {
		if err := c.Conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			logger.Log.WithError(err).Warn("failed to set pong read deadline")
		}
		return nil
	})

	// 1. HANDSHAKE: первое сообщение обязано быть join
	var joinCmd api.ClientCommand
	if err := c.Conn.ReadJSON(&joinCmd); err != nil || joinCmd.Action != "join" {
		logger.Log.Warn("Handshake failed")
		return
	}
	var join api.JoinPayload
	if len(joinCmd.Payload) > 0 {
		if err := json.Unmarshal(joinCmd.Payload, &join); err != nil {
			logger.Log.WithError(err).Warn("Malformed join payload")
			return
		}
	}
	if err := join.Validate(); err != nil {
		logger.Log.WithError(err).Warn("Rejected join")
		return
	}

	// Пустой токен - новый игрок, выдаем свежий
	c.Token = join.Token
	if c.Token == "" {
		c.Token = uuid.NewString()
	}

	// 2. ПОДПИСКА И ВХОД В СЕССИЮ
	updates := c.Session.Hub.Register(c.Token)
	go func() {
		for msg := range updates {
			c.Send <- msg
		}
		close(c.Send)
	}()

	c.Session.JoinChan <- engine.JoinRequest{Token: c.Token, Name: join.Name}

	logger.Log.WithFields(logrus.Fields{
		"token": c.Token,
		"name":  join.Name,
	}).Info("Client logged in")

	// 3. ЦИКЛ ЧТЕНИЯ КОМАНД
	for {
		var cmd api.ClientCommand
		if err := c.Conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Log.Errorf("WS Error: %v", err)
			}
			break
		}
		cmd.Token = c.Token
		c.Session.CommandChan <- engine.SessionCommand{Key: c.Token, Cmd: cmd}
	}
}

// writePump отправляет данные клиенту + Ping
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		if err := c.Conn.Close(); err != nil {
			logger.Log.WithError(err).Debug("failed to close websocket connection in writePump")
		}
	}()

	for {
		select {
		case message, ok := <-c.Send:
			if err := c.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				logger.Log.WithError(err).Warn("failed to set write deadline")
			}
			if !ok {
				if err := c.Conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					logger.Log.WithError(err).Debug("write close message failed")
				}
				return
			}
			if err := c.Conn.WriteJSON(message); err != nil {
				logger.Log.WithError(err).Debug("write json message failed")
				return
			}

		case <-ticker.C:
			if err := c.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				logger.Log.WithError(err).Warn("failed to set ping write deadline")
			}
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				logger.Log.WithError(err).Debug("ping failed")
				return
			}
		}
	}
}
