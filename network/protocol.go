package network

// 客户端 -> 服务器
const (
	MsgTypeHeartbeat  = 1
	MsgTypeCreateRoom = 101
	MsgTypeJoinRoom   = 102
	MsgTypeStartGame  = 103
	MsgTypeLeaveRoom  = 104
	MsgTypeRollDice   = 201
	MsgTypeMovePiece  = 202
)

// 服务器 -> 客户端
const (
	MsgTypeRoomCreated = 301
	MsgTypeRoomUpdate  = 302
	MsgTypeDiceRolled  = 303
	MsgTypeBoardState  = 304
	MsgTypeTurnChanged = 305
	MsgTypeGameOver    = 306
	MsgTypeError       = 400
)

type CreateRoomRequest struct {
	Origin string `json:"origin"`
}

type JoinRoomRequest struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// MovePieceRequest without pieceIndex is malformed and dropped.
type MovePieceRequest struct {
	PieceIndex *int `json:"pieceIndex"`
}

type ErrorMessage struct {
	Message string `json:"message"`
}
