package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wfunc/ludoserver/network"
)

const usage = `commands:
  create            create a room
  join CODE [NAME]  join a room
  start             start the game
  roll              roll the die
  move N            move piece N (0-3)
  leave             leave the room
  quit`

// send formats and sends a message to the WebSocket server.
func send(c *websocket.Conn, msgID uint16, v any) error {
	var data []byte
	if v != nil {
		var err error
		if data, err = json.Marshal(v); err != nil {
			return err
		}
	}
	return c.WriteMessage(websocket.BinaryMessage, network.Encode(msgID, data))
}

// command turns one input line into a message.
func command(line string) (msgID uint16, body any, err error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return 0, nil, nil
	}

	switch fields[0] {
	case "create":
		return network.MsgTypeCreateRoom, nil, nil
	case "join":
		if len(fields) < 2 {
			return 0, nil, fmt.Errorf("usage: join CODE [NAME]")
		}
		return network.MsgTypeJoinRoom, network.JoinRoomRequest{
			Code: fields[1],
			Name: strings.Join(fields[2:], " "),
		}, nil
	case "start":
		return network.MsgTypeStartGame, nil, nil
	case "roll":
		return network.MsgTypeRollDice, nil, nil
	case "move":
		if len(fields) != 2 {
			return 0, nil, fmt.Errorf("usage: move N")
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			return 0, nil, fmt.Errorf("bad piece index %q", fields[1])
		}
		return network.MsgTypeMovePiece, network.MovePieceRequest{PieceIndex: &n}, nil
	case "leave":
		return network.MsgTypeLeaveRoom, nil, nil
	default:
		return 0, nil, fmt.Errorf("unknown command %q\n%s", fields[0], usage)
	}
}

var messageLabels = map[uint16]string{
	network.MsgTypeRoomCreated: "room created",
	network.MsgTypeRoomUpdate:  "room",
	network.MsgTypeDiceRolled:  "dice",
	network.MsgTypeBoardState:  "board",
	network.MsgTypeTurnChanged: "turn",
	network.MsgTypeGameOver:    "game over",
	network.MsgTypeError:       "error",
}

func main() {
	addr := flag.String("addr", "localhost:8080", "server host:port")
	flag.Parse()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	u := url.URL{Scheme: "ws", Host: *addr, Path: "/ws"}
	log.Printf("Connecting to %s", u.String())

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Dial failed: %v", err)
	}
	defer c.Close()

	done := make(chan struct{})

	// Read loop
	go func() {
		defer close(done)
		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				log.Println("Read error:", err)
				return
			}
			packet, err := network.Decode(message)
			if err != nil {
				log.Printf("Received invalid packet of size %d", len(message))
				continue
			}
			label, ok := messageLabels[packet.MsgID]
			if !ok {
				label = strconv.Itoa(int(packet.MsgID))
			}
			fmt.Printf("<- %s: %s\n", label, packet.Data)
		}
	}()

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	heartbeat := time.NewTicker(20 * time.Second)
	defer heartbeat.Stop()

	fmt.Println(usage)
	for {
		select {
		case <-done:
			return
		case <-heartbeat.C:
			if err := send(c, network.MsgTypeHeartbeat, nil); err != nil {
				log.Println("Write error:", err)
				return
			}
		case <-interrupt:
			log.Println("Interrupt received, closing connection.")
			err := c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			if err != nil {
				log.Println("Write close error:", err)
			}
			select {
			case <-done:
			case <-time.After(time.Second):
			}
			return
		case line, ok := <-lines:
			if !ok || strings.TrimSpace(line) == "quit" {
				return
			}
			msgID, body, err := command(line)
			if err != nil {
				fmt.Println(err)
				continue
			}
			if msgID == 0 {
				continue
			}
			if err := send(c, msgID, body); err != nil {
				log.Println("Write error:", err)
				return
			}
		}
	}
}
