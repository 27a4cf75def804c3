// Package assistant runs the conversational "Chef Gully" channel over a
// WebSocket. Any inbound message counts as an assistant interaction and
// opens the session's booking gate.
package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"

	"tastetrail/internal/monitoring"
	"tastetrail/internal/scout"
	"tastetrail/internal/session"
)

// WebSocket upgrader configuration
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

// ClientMessage is an inbound assistant message.
type ClientMessage struct {
	Type string `json:"type"` // "chat" or "voice"
	Text string `json:"text"`
}

// ServerMessage is an outbound assistant message.
type ServerMessage struct {
	Type   string `json:"type"` // "reply", "search", "error"
	Text   string `json:"text,omitempty"`
	Sender string `json:"sender,omitempty"`
	Count  int    `json:"count,omitempty"`
}

// Conn maintains one assistant WebSocket connection.
type Conn struct {
	conn  *websocket.Conn
	send  chan []byte
	mu    sync.Mutex
	sess  *session.Session
	model llms.LLM
	orch  *scout.Orchestrator
}

// Serve upgrades the request and runs the connection pumps.
func Serve(c *gin.Context, sess *session.Session, model llms.LLM, orch *scout.Orchestrator) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade connection: %v", err)
		return
	}

	wsConn := &Conn{
		conn:  conn,
		send:  make(chan []byte, 256),
		sess:  sess,
		model: model,
		orch:  orch,
	}

	go wsConn.writePump()
	go wsConn.readPump()
}

// readPump pumps messages from the WebSocket connection to the handler
func (c *Conn) readPump() {
	defer func() {
		c.conn.Close()
	}()

	c.conn.SetReadLimit(64 * 1024)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		c.handleMessage(message)
	}
}

// writePump pumps messages from the server to the WebSocket connection
func (c *Conn) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage processes one inbound message. Every well-formed message,
// chat or voice, counts as an assistant interaction.
func (c *Conn) handleMessage(message []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		log.Printf("Error unmarshaling assistant message: %v", err)
		return
	}

	c.sess.RecordAssistantInteraction()
	monitoring.AssistantMessagesTotal.Inc()

	switch msg.Type {
	case "voice":
		// A spoken request runs a search with the active profile.
		go func() {
			outcome := c.orch.Search(c.sess.Context(), c.sess, c.sess.Profile.Current(), scout.Options{
				VoiceQuery: msg.Text,
			})
			if outcome.Stale {
				return
			}
			if outcome.Err != nil {
				c.sendMessage(ServerMessage{Type: "error", Text: "sync failure"})
				return
			}
			c.sendMessage(ServerMessage{
				Type:  "search",
				Text:  fmt.Sprintf("Scouted %d gourmet nodes for you.", len(outcome.Restaurants)),
				Count: len(outcome.Restaurants),
			})
		}()
	default:
		go func() {
			reply := c.chatReply(msg.Text)
			c.sendMessage(ServerMessage{Type: "reply", Text: reply, Sender: "ai"})
		}()
	}
}

const gullyPrompt = "You are Chef Gully, a playful restaurant-scouting companion. Answer in one or two short sentences."

// chatReply asks the model for a short answer, falling back to a canned
// line when no model is configured or the call fails.
func (c *Conn) chatReply(text string) string {
	if c.model == nil {
		return "Chef Gully is listening! Tell me what you're craving."
	}

	ctx, cancel := context.WithTimeout(c.sess.Context(), 20*time.Second)
	defer cancel()

	response, err := c.model.GenerateContent(ctx, []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, gullyPrompt),
		llms.TextParts(schema.ChatMessageTypeHuman, text),
	}, llms.WithTemperature(0.8))
	if err != nil || response == nil || len(response.Choices) == 0 {
		log.Printf("assistant reply failed: %v", err)
		return "Chef Gully lost his train of thought. Ask again?"
	}
	return response.Choices[0].Content
}

// sendMessage marshals and queues one outbound message.
func (c *Conn) sendMessage(msg ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Error marshaling assistant message: %v", err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	select {
	case c.send <- data:
	default:
		log.Println("WebSocket buffer full, dropping message")
	}
}
