package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"nhooyr.io/websocket"

	"trump304/internal/game304"
	"trump304/internal/session"
)

// clientMessage is the inbound envelope: the action name plus its parameters
// as sibling fields, e.g. {"action":"bid","amount":160}. Clients that retry
// sends may set seq to the game seq they acted against; a redelivered
// message then fails instead of applying twice.
type clientMessage struct {
	Action   string `json:"action"`
	PlayerID string `json:"player_id,omitempty"` // join only
	Seq      *int   `json:"seq,omitempty"`
}

// WSMessage is the outbound envelope for server-to-client messages.
type WSMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type statePayload struct {
	State game304.View `json:"state"`
	Info  session.Info `json:"info"`
}

type errorPayload struct {
	Error string `json:"error"`
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	sess, ok := s.manager.Get(code)
	if !ok {
		http.Error(w, "game not found", http.StatusNotFound)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // allow any origin for dev
	})
	if err != nil {
		log.Printf("websocket accept: %v", err)
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	ctx := r.Context()

	// First message must be a join with the player id from the REST call
	_, data, err := conn.Read(ctx)
	if err != nil {
		return
	}
	var msg clientMessage
	if err := json.Unmarshal(data, &msg); err != nil || msg.Action != "join" {
		sendWSError(ctx, conn, "first message must be a join")
		return
	}
	if msg.PlayerID == "" {
		sendWSError(ctx, conn, "invalid join payload")
		return
	}

	playerID := msg.PlayerID
	send := make(chan []byte, 64)
	seat, ok := sess.Connect(playerID, send)
	if !ok {
		sendWSError(ctx, conn, "unknown player id")
		return
	}

	// Notify all players about the roster change
	s.broadcastState(sess)

	// Writer goroutine: send messages from the channel to the websocket
	go func() {
		for msg := range send {
			if err := conn.Write(ctx, websocket.MessageText, msg); err != nil {
				return
			}
		}
	}()

	// Reader loop: handle incoming messages
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			break
		}
		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			sendWSMsg(send, "error", errorPayload{Error: "invalid message"})
			continue
		}
		s.handleAction(sess, playerID, send, msg, data)
	}

	sess.Disconnect(playerID, send)
	log.Printf("seat %d disconnected from game %s", seat, code)
}

// handleAction decodes and applies one game action from a player. The raw
// message doubles as the parameter payload since params sit beside "action".
func (s *Server) handleAction(sess *session.Session, playerID string, send chan []byte, msg clientMessage, raw []byte) {
	action, err := decodeAction(msg.Action, raw)
	if err != nil {
		sendWSMsg(send, "error", errorPayload{Error: err.Error()})
		return
	}

	var res *game304.Result
	if msg.Seq != nil {
		res, err = sess.ApplyAt(playerID, *msg.Seq, action)
	} else {
		res, err = sess.Apply(playerID, action)
	}
	if err != nil {
		sendWSMsg(send, "error", errorPayload{Error: err.Error()})
		return
	}

	if err := s.manager.SaveState(sess); err != nil {
		log.Printf("save state: %v", err)
	}
	s.broadcastEvent(sess, msg.Action, res)
	s.broadcastState(sess)
	s.armTurnTimer(sess)
}

type bidParams struct {
	Amount int `json:"amount"`
}

type trumpParams struct {
	Suit string `json:"suit"`
	Card string `json:"card"`
}

type exchangeParams struct {
	Cards []string `json:"cards"`
}

type cardParams struct {
	Card string `json:"card"`
}

func decodeAction(name string, payload json.RawMessage) (game304.Action, error) {
	switch name {
	case "start_game":
		return game304.StartGame{}, nil
	case "bid":
		var p bidParams
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, fmt.Errorf("invalid bid payload")
		}
		return game304.PlaceBid{Amount: p.Amount}, nil
	case "pass":
		return game304.PassBid{}, nil
	case "select_trump":
		var p trumpParams
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, fmt.Errorf("invalid select_trump payload")
		}
		card, err := game304.ParseCard(p.Card)
		if err != nil {
			return nil, err
		}
		return game304.SelectTrump{Suit: game304.Suit(p.Suit), Card: card}, nil
	case "exchange_cards":
		var p exchangeParams
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, fmt.Errorf("invalid exchange_cards payload")
		}
		cards, err := game304.ParseCards(p.Cards)
		if err != nil {
			return nil, err
		}
		return game304.ExchangeCards{Cards: cards}, nil
	case "skip_exchange":
		return game304.SkipExchange{}, nil
	case "play_card":
		var p cardParams
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, fmt.Errorf("invalid play_card payload")
		}
		card, err := game304.ParseCard(p.Card)
		if err != nil {
			return nil, err
		}
		return game304.PlayCard{Card: card}, nil
	case "ask_trump":
		return game304.AskTrump{}, nil
	case "reveal_trump":
		return game304.RevealTrump{}, nil
	}
	return nil, fmt.Errorf("unknown action: %s", name)
}

// broadcastState sends each connected player their own redacted view.
func (s *Server) broadcastState(sess *session.Session) {
	info := sess.Info()
	for _, c := range sess.Conns() {
		sp := statePayload{State: sess.View(c.Seat), Info: info}
		sendWSMsg(c.Send, "game_state", sp)
	}
}

// broadcastEvent sends a public action result to the whole table.
func (s *Server) broadcastEvent(sess *session.Session, event string, res *game304.Result) {
	p, err := json.Marshal(res)
	if err != nil {
		return
	}
	msg, _ := json.Marshal(WSMessage{Type: event, Payload: p})
	sess.Broadcast(msg)
}

func sendWSMsg(send chan []byte, msgType string, payload any) {
	p, _ := json.Marshal(payload)
	msg, _ := json.Marshal(WSMessage{Type: msgType, Payload: p})
	select {
	case send <- msg:
	default:
	}
}

func sendWSError(ctx context.Context, conn *websocket.Conn, message string) {
	p, _ := json.Marshal(errorPayload{Error: message})
	msg, _ := json.Marshal(WSMessage{Type: "error", Payload: p})
	conn.Write(ctx, websocket.MessageText, msg)
}
