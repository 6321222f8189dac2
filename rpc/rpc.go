package rpc

import (
	"net"
	"net/rpc"
	"time"

	"github.com/playvault/server/logger"
	"github.com/playvault/server/models"
	"github.com/playvault/server/services"
)

// Server manages the RPC listener.
type Server struct {
	listener net.Listener
	address  string
}

// NewServer creates a new RPC server. Services are registered by the
// caller via net/rpc before Start.
func NewServer(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: listener,
		address:  addr,
	}, nil
}

// Start begins listening for RPC requests.
func (s *Server) Start() {
	logger.Log.Infof("RPC server listening on %s", s.address)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			// Check if the error is due to the listener being closed.
			if _, ok := err.(*net.OpError); ok {
				logger.Log.Info("RPC server listener closed.")
				return
			}
			logger.Log.Errorf("RPC server accept error: %v", err)
			continue
		}
		go rpc.ServeConn(conn)
	}
}

// Stop closes the RPC listener.
func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping RPC server.")
		s.listener.Close()
	}
}

// StatsService exposes the dashboard aggregates to operational tooling.
type StatsService struct {
	stats *services.StatsService
}

func NewStatsService(stats *services.StatsService) *StatsService {
	return &StatsService{stats: stats}
}

type StatsArgs struct{}

type StatsReply struct {
	Stat *models.Statistic
}

// Current computes the live figures for the running month.
func (s *StatsService) Current(args *StatsArgs, reply *StatsReply) error {
	stat, err := s.stats.Current(time.Now())
	if err != nil {
		return err
	}
	reply.Stat = stat
	return nil
}

// Previous returns the last persisted period snapshot.
func (s *StatsService) Previous(args *StatsArgs, reply *StatsReply) error {
	stat, err := s.stats.Previous(time.Now())
	if err != nil {
		return err
	}
	reply.Stat = stat
	return nil
}

// Recompute forces a snapshot outside the daily schedule.
func (s *StatsService) Recompute(args *StatsArgs, reply *StatsReply) error {
	stat, err := s.stats.Snapshot(time.Now())
	if err != nil {
		return err
	}
	reply.Stat = stat
	return nil
}
