package rpc

import (
	"context"
	"errors"
	"net"
	"net/rpc"
	"sort"
	"time"

	"github.com/wfunc/ludoserver/logger"
	"github.com/wfunc/ludoserver/models"
	"github.com/wfunc/ludoserver/room"
	"github.com/wfunc/ludoserver/services"
)

const callTimeout = 5 * time.Second

// Server manages the RPC listener.
type Server struct {
	listener net.Listener
	rpc      *rpc.Server
}

// NewServer listens on addr. Services are registered on this server only,
// not on the net/rpc default server.
func NewServer(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: listener,
		rpc:      rpc.NewServer(),
	}, nil
}

func (s *Server) Register(service any) error {
	return s.rpc.Register(service)
}

// Addr returns the bound address, useful when listening on port 0.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Start begins listening for RPC requests.
func (s *Server) Start() {
	logger.Log.Infof("RPC server listening on %s", s.listener.Addr())
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				logger.Log.Info("RPC server listener closed.")
				return
			}
			logger.Log.Errorf("RPC server accept error: %v", err)
			continue
		}
		go s.rpc.ServeConn(conn)
	}
}

// Stop closes the RPC listener.
func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping RPC server.")
		s.listener.Close()
	}
}

// GameService exposes read-only room and archive queries for operators.
type GameService struct {
	rooms   *room.Manager
	records *services.RecordService
}

// NewGameService creates a new GameService.
func NewGameService(rooms *room.Manager, records *services.RecordService) *GameService {
	return &GameService{rooms: rooms, records: records}
}

// RoomSummary is one line of ListRooms.
type RoomSummary struct {
	Code      string
	Phase     string
	Players   int
	Turn      string
	Winner    string
	CreatedAt time.Time
}

// ListRoomsArgs filters by phase; an empty Phase lists every room.
type ListRoomsArgs struct {
	Phase string
}

type ListRoomsReply struct {
	Rooms []RoomSummary
}

// ListRooms returns live rooms ordered by creation time.
// net/rpc 要求: 导出方法, 第二个参数为指针, 返回 error
func (gs *GameService) ListRooms(args *ListRoomsArgs, reply *ListRoomsReply) error {
	for _, r := range gs.rooms.Rooms() {
		snap := r.Snapshot()
		if args.Phase != "" && snap.Phase != args.Phase {
			continue
		}
		reply.Rooms = append(reply.Rooms, RoomSummary{
			Code:      snap.Code,
			Phase:     snap.Phase,
			Players:   len(snap.Players),
			Turn:      snap.Turn,
			Winner:    snap.Winner,
			CreatedAt: snap.CreatedAt,
		})
	}
	sort.Slice(reply.Rooms, func(i, j int) bool {
		return reply.Rooms[i].CreatedAt.Before(reply.Rooms[j].CreatedAt)
	})
	return nil
}

type GetRoomArgs struct {
	Code string
}

type GetRoomReply struct {
	Room room.Snapshot
}

func (gs *GameService) GetRoom(args *GetRoomArgs, reply *GetRoomReply) error {
	r, ok := gs.rooms.GetRoom(args.Code)
	if !ok {
		return room.ErrRoomNotFound
	}
	reply.Room = r.Snapshot()
	return nil
}

type GetPlayerStatsArgs struct {
	Name string
}

type GetPlayerStatsReply struct {
	Stats models.PlayerStats
}

func (gs *GameService) GetPlayerStats(args *GetPlayerStatsArgs, reply *GetPlayerStatsReply) error {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	stats, err := gs.records.PlayerStats(ctx, args.Name)
	if err != nil {
		return err
	}
	reply.Stats = *stats
	return nil
}

type RecentGamesArgs struct {
	Limit int
}

type RecentGamesReply struct {
	Games []models.GameRecord
}

func (gs *GameService) RecentGames(args *RecentGamesArgs, reply *RecentGamesReply) error {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	games, err := gs.records.RecentGames(ctx, args.Limit)
	if err != nil {
		return err
	}
	reply.Games = games
	return nil
}
