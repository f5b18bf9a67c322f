// network/connection.go
package network

import (
	"encoding/binary"
	"errors"
	"io"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// 封包: 2字节消息ID + 4字节数据长度 + 数据
//
// The length field is 32 bits wide: board updates carry the whole room log,
// which can outgrow 64 KiB in a long game.
const headerSize = 6

// MaxPacketSize bounds inbound frames.
const MaxPacketSize = 1 << 20

const writeWait = 10 * time.Second

var ErrPacketTooLarge = errors.New("packet too large")

type Packet struct {
	MsgID  uint16
	Data   []byte
	Length uint32
}

// Encode frames data under msgID.
func Encode(msgID uint16, data []byte) []byte {
	packet := make([]byte, headerSize+len(data))
	binary.BigEndian.PutUint16(packet[0:2], msgID)
	binary.BigEndian.PutUint32(packet[2:6], uint32(len(data)))
	copy(packet[headerSize:], data)
	return packet
}

// Decode parses a single framed packet.
func Decode(data []byte) (*Packet, error) {
	if len(data) < headerSize {
		return nil, io.ErrShortBuffer
	}

	msgID := binary.BigEndian.Uint16(data[0:2])
	length := binary.BigEndian.Uint32(data[2:6])

	if uint64(len(data)) < headerSize+uint64(length) {
		return nil, io.ErrShortBuffer
	}

	return &Packet{
		MsgID:  msgID,
		Length: length,
		Data:   data[headerSize : headerSize+int(length)],
	}, nil
}

type Connection interface {
	Send(msgID uint16, data []byte) error
	Close() error
	RemoteAddr() net.Addr
	SetHeartbeat(interval time.Duration)
	ReadPacket() (*Packet, error)
}

type WSConnection struct {
	conn      *websocket.Conn
	sendMutex sync.Mutex
	heartbeat time.Duration
}

func NewWSConnection(conn *websocket.Conn) *WSConnection {
	conn.SetReadLimit(MaxPacketSize + headerSize)
	return &WSConnection{conn: conn}
}

func (c *WSConnection) Send(msgID uint16, data []byte) error {
	if len(data) > MaxPacketSize {
		return ErrPacketTooLarge
	}

	c.sendMutex.Lock()
	defer c.sendMutex.Unlock()

	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.BinaryMessage, Encode(msgID, data))
}

// ReadPacket blocks for the next frame. Each frame read extends the heartbeat
// deadline when one is set.
func (c *WSConnection) ReadPacket() (*Packet, error) {
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	if c.heartbeat > 0 {
		c.conn.SetReadDeadline(time.Now().Add(c.heartbeat * 2))
	}
	return Decode(data)
}

func (c *WSConnection) SetHeartbeat(interval time.Duration) {
	c.heartbeat = interval
	c.conn.SetReadDeadline(time.Now().Add(interval * 2))
}

func (c *WSConnection) Close() error {
	return c.conn.Close()
}

func (c *WSConnection) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}
