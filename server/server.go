package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/wfunc/ludoserver/broadcast"
	"github.com/wfunc/ludoserver/logger"
	"github.com/wfunc/ludoserver/monitor"
	"github.com/wfunc/ludoserver/network"
	"github.com/wfunc/ludoserver/room"
	gameserver_rpc "github.com/wfunc/ludoserver/rpc"
	"github.com/wfunc/ludoserver/services"
	"github.com/wfunc/ludoserver/session"
	"github.com/wfunc/ludoserver/timer"
)

const (
	heartbeatInterval = 30 * time.Second
	sampleInterval    = 5 * time.Second
)

// Options configures a GameServer. Zero values disable the optional parts:
// no RPC listener without RPCAddr, no archive without Records.
type Options struct {
	Addr         string
	RPCAddr      string
	PublicOrigin string
	Records      *services.RecordService
	Monitor      *monitor.Monitor
	RoomOptions  []room.Option
}

type GameServer struct {
	opts           Options
	upgrader       websocket.Upgrader
	roomManager    *room.Manager
	sessionManager *session.Manager
	records        *services.RecordService
	monitor        *monitor.Monitor
	broadcaster    broadcast.Broadcaster
	rpcServer      *gameserver_rpc.Server
	timers         *timer.TimerManager
	samplerID      int64
	httpServer     *http.Server
	shutdownChan   chan struct{}
	shutdownOnce   sync.Once
}

func NewGameServer(opts Options) (*GameServer, error) {
	s := &GameServer{
		opts:           opts,
		roomManager:    room.NewRoomManager(opts.RoomOptions...),
		sessionManager: session.NewManager(),
		records:        opts.Records,
		monitor:        opts.Monitor,
		timers:         timer.NewTimerManager(),
		shutdownChan:   make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // 允许所有跨域请求
			},
		},
	}
	if s.records == nil {
		s.records = services.NewRecordService(nil)
	}
	if s.monitor == nil {
		s.monitor = monitor.NewMonitor("ludo")
	}

	// 初始化广播器
	s.broadcaster = broadcast.NewRoomBroadcaster(s.roomManager, s.sessionManager)

	// 初始化RPC服务器
	if opts.RPCAddr != "" {
		rpcServer, err := gameserver_rpc.NewServer(opts.RPCAddr)
		if err != nil {
			s.timers.Stop()
			return nil, err
		}
		if err := rpcServer.Register(gameserver_rpc.NewGameService(s.roomManager, s.records)); err != nil {
			rpcServer.Stop()
			s.timers.Stop()
			return nil, err
		}
		s.rpcServer = rpcServer
	}

	s.httpServer = &http.Server{Addr: opts.Addr, Handler: s.Handler()}
	s.samplerID = s.timers.AddTimer(0, sampleInterval, s.sampleGauges)
	return s, nil
}

// Rooms exposes the registry, mainly for tests and tooling.
func (s *GameServer) Rooms() *room.Manager {
	return s.roomManager
}

// Handler routes /ws and /health.
func (s *GameServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		io.WriteString(w, "ok")
	})
	return mux
}

// Start serves until Shutdown. It returns nil after a clean shutdown.
func (s *GameServer) Start() error {
	if s.rpcServer != nil {
		go s.rpcServer.Start()
	}

	logger.Log.Infof("Game server listening on %s", s.opts.Addr)
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *GameServer) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		close(s.shutdownChan)
		s.timers.RemoveTimer(s.samplerID)
		s.timers.Stop()
		if s.rpcServer != nil {
			s.rpcServer.Stop()
		}
		err = s.httpServer.Shutdown(ctx)
		// 被劫持的 websocket 连接不受 http.Server 管理
		for _, sess := range s.sessionManager.All() {
			sess.Close()
		}
	})
	return err
}

func (s *GameServer) sampleGauges() {
	s.monitor.SetActiveRooms(s.roomManager.Count())
	s.monitor.SetOnlinePlayers(s.sessionManager.Count())
}

func (s *GameServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}
	s.handleConnection(conn)
}

func (s *GameServer) handleConnection(conn *websocket.Conn) {
	wsConn := network.NewWSConnection(conn)
	wsConn.SetHeartbeat(heartbeatInterval)
	sess := session.NewSession(uuid.New().String(), wsConn)
	s.sessionManager.Add(sess)
	s.monitor.IncOnlinePlayers()

	logger.Log.Infof("New connection from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())

	defer func() {
		logger.Log.Infof("Connection closed from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())
		s.sessionManager.Remove(sess.GetID())
		s.leaveRoom(sess)
		s.monitor.DecOnlinePlayers()
		wsConn.Close()
	}()

	for {
		select {
		case <-s.shutdownChan:
			return
		default:
			packet, err := wsConn.ReadPacket()
			if errors.Is(err, io.ErrShortBuffer) {
				// 格式错误的帧直接丢弃
				continue
			}
			if err != nil {
				return
			}
			s.handlePacket(sess, packet)
		}
	}
}
