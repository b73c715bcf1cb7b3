package net

import (
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/witherbar/server/internal/config"
	"github.com/witherbar/server/internal/net/packet"
	"go.uber.org/zap"
)

// ErrSessionClosed is returned by Send once the session has been closed.
var ErrSessionClosed = errors.New("session closed")

// OutQueue control markers. Real packets are never empty.
var (
	closeMarker       []byte            // nil: stop after the packets before it
	compressionMarker = make([]byte, 0) // switch the writer to compressed frames
)

// Session represents a single client connection. Network I/O runs in
// dedicated goroutines; packets are handed to and from the game loop through
// channels.
type Session struct {
	ID   uint64
	conn net.Conn

	state atomic.Int32 // packet.SessionState stored as int32

	InQueue  chan []byte // game loop reads packets from here
	OutQueue chan []byte // writer goroutine reads from here

	IP         string
	PlayerName string
	Protocol   int32 // protocol version from the handshake

	// Compression threshold in effect for incoming frames, -1 while off.
	// The writer switches when it reaches compressionMarker.
	compression atomic.Int32

	outMu  sync.Mutex
	outBuf [][]byte // buffered packets, flushed by OutputSystem

	closeCh   chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool

	// Per-second packet rate limiter (readLoop goroutine only, no lock needed)
	pktPerSec  int   // max packets/sec (0 = unlimited)
	pktCount   int   // packets received this second
	pktResetAt int64 // unix second of last counter reset

	readTimeout  time.Duration
	writeTimeout time.Duration

	log *zap.Logger
}

func NewSession(conn net.Conn, id uint64, cfg config.NetworkConfig, pktPerSec int, log *zap.Logger) *Session {
	s := &Session{
		ID:           id,
		conn:         conn,
		InQueue:      make(chan []byte, cfg.InQueueSize),
		OutQueue:     make(chan []byte, cfg.OutQueueSize),
		IP:           conn.RemoteAddr().String(),
		closeCh:      make(chan struct{}),
		pktPerSec:    pktPerSec,
		readTimeout:  cfg.ReadTimeout,
		writeTimeout: cfg.WriteTimeout,
		log:          log.With(zap.Uint64("session", id)),
	}
	s.state.Store(int32(packet.StateHandshake))
	s.compression.Store(-1)
	return s
}

func (s *Session) State() packet.SessionState {
	return packet.SessionState(s.state.Load())
}

func (s *Session) SetState(st packet.SessionState) {
	s.state.Store(int32(st))
}

// Start launches the reader and writer goroutines.
func (s *Session) Start() {
	go s.readLoop()
	go s.writeLoop()
}

// Send buffers a packet body for sending. Nothing reaches TCP until
// FlushOutput is called by OutputSystem. Safe for concurrent callers.
func (s *Session) Send(data []byte) error {
	if s.closed.Load() {
		return ErrSessionClosed
	}
	s.outMu.Lock()
	s.outBuf = append(s.outBuf, data)
	s.outMu.Unlock()
	return nil
}

// Pending returns the number of buffered, unflushed packets.
func (s *Session) Pending() int {
	s.outMu.Lock()
	defer s.outMu.Unlock()
	return len(s.outBuf)
}

// FlushOutput drains the output buffer to OutQueue for the writeLoop goroutine.
// Non-blocking: if OutQueue is full, the session is disconnected (backpressure).
func (s *Session) FlushOutput() {
	s.outMu.Lock()
	pending := s.outBuf
	s.outBuf = nil
	s.outMu.Unlock()

	for _, data := range pending {
		select {
		case s.OutQueue <- data:
		default:
			s.log.Warn("output queue full, dropping slow connection")
			s.Close()
			return
		}
	}
}

// CloseAfterFlush flushes buffered output and closes the connection once the
// writer has sent it. Used to deliver a disconnect reason before hanging up.
func (s *Session) CloseAfterFlush() {
	s.FlushOutput()
	if s.closed.Load() {
		return
	}
	s.SetState(packet.StateDisconnecting)
	select {
	case s.OutQueue <- closeMarker:
	default:
		s.Close()
	}
}

// EnableCompression sends Set Compression and switches both directions to
// the compressed frame format. Everything sent after the call is
// compressed; a client only compresses after it has seen the packet, so the
// reader can switch at once.
func (s *Session) EnableCompression(threshold int) {
	s.Send(packet.BuildSetCompression(int32(threshold)))
	s.FlushOutput()
	if s.closed.Load() {
		return
	}
	s.compression.Store(int32(threshold))
	select {
	case s.OutQueue <- compressionMarker:
	default:
		s.log.Warn("output queue full, dropping slow connection")
		s.Close()
	}
}

// Compression returns the threshold in effect, or -1 when frames are not
// compressed.
func (s *Session) Compression() int {
	return int(s.compression.Load())
}

// Close gracefully shuts down the session.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		s.SetState(packet.StateDisconnecting)
		close(s.closeCh)
		s.conn.Close()
	})
}

func (s *Session) IsClosed() bool {
	return s.closed.Load()
}

// readLoop runs in its own goroutine. It reads frames from the TCP connection
// and pushes them onto InQueue for the game loop to consume.
func (s *Session) readLoop() {
	defer s.Close()

	br := newFrameReader(s.conn)
	for {
		select {
		case <-s.closeCh:
			return
		default:
		}

		if s.readTimeout > 0 {
			s.conn.SetReadDeadline(time.Now().Add(s.readTimeout))
		}
		payload, err := ReadFrame(br)
		if err == nil {
			if threshold := s.compression.Load(); threshold >= 0 {
				payload, err = DecodeCompressed(payload, int(threshold))
			}
		}
		if err != nil {
			if !s.closed.Load() {
				s.log.Debug("read error", zap.Error(err))
			}
			return
		}

		if s.pktPerSec > 0 {
			now := time.Now().Unix()
			if now != s.pktResetAt {
				s.pktCount = 0
				s.pktResetAt = now
			}
			s.pktCount++
			if s.pktCount > s.pktPerSec {
				s.log.Warn("packet rate exceeded, disconnecting", zap.Int("pps", s.pktCount))
				return
			}
		}

		// Block until InQueue has space or the session closes; dropping
		// movement packets would leave the server with a stale look
		// direction.
		select {
		case s.InQueue <- payload:
		case <-s.closeCh:
			return
		}
	}
}

// writeLoop runs in its own goroutine. It reads packets from OutQueue and
// writes them as framed data to the TCP connection.
func (s *Session) writeLoop() {
	defer s.Close()

	threshold := -1
	for {
		select {
		case data := <-s.OutQueue:
			if data == nil {
				return
			}
			if len(data) == 0 {
				threshold = int(s.compression.Load())
				continue
			}
			if !s.writeOnePacket(data, threshold) {
				return
			}
		case <-s.closeCh:
			return
		}
	}
}

func (s *Session) writeOnePacket(data []byte, threshold int) bool {
	if threshold >= 0 {
		body, err := EncodeCompressed(data, threshold)
		if err != nil {
			s.log.Warn("compress failed", zap.Error(err))
			return false
		}
		data = body
	}
	if s.writeTimeout > 0 {
		s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
	}
	if err := WriteFrame(s.conn, data); err != nil {
		if !s.closed.Load() {
			s.log.Debug("write error", zap.Error(err))
		}
		return false
	}
	return true
}
