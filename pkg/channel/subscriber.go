// Package channel menghubungkan layar/klien ke antrian apotek: lewat push
// channel WebSocket (Subscriber) atau polling snapshot (Poller).
package channel

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/c14220110/apotek-antrian-backend/internal/antrian/models"
)

var ErrChannelClosed = errors.New("push channel closed: reconnect attempts exhausted")

const (
	DefaultReconnectDelay = time.Second
	DefaultMaxAttempts    = 5
)

// SnapshotSource sumber snapshot penuh untuk resync.
type SnapshotSource interface {
	Snapshot(ctx context.Context) ([]models.QueueEntry, error)
}

// Sink tujuan snapshot dan event, biasanya *services.Reconciler.
type Sink interface {
	LoadSnapshot(entries []models.QueueEntry)
	ApplyEvent(ev models.QueueEvent) error
}

// Subscriber client push channel. Setiap kali (re)connect dilakukan resync
// penuh dari SnapshotSource sebelum event diterapkan.
type Subscriber struct {
	URL            string
	Dialer         *websocket.Dialer
	Source         SnapshotSource
	Sink           Sink
	ReconnectDelay time.Duration
	MaxAttempts    int

	log  zerolog.Logger
	mu   sync.Mutex
	conn *websocket.Conn
}

func NewSubscriber(url string, source SnapshotSource, sink Sink, log zerolog.Logger) *Subscriber {
	return &Subscriber{
		URL:            url,
		Dialer:         websocket.DefaultDialer,
		Source:         source,
		Sink:           sink,
		ReconnectDelay: DefaultReconnectDelay,
		MaxAttempts:    DefaultMaxAttempts,
		log:            log.With().Str("component", "subscriber").Logger(),
	}
}

// Connect membuka koneksi lalu memuat snapshot. Koneksi dibuka lebih dulu
// supaya event yang terjadi selama snapshot tidak hilang.
func (s *Subscriber) Connect(ctx context.Context) error {
	conn, _, err := s.Dialer.DialContext(ctx, s.URL, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", s.URL, err)
	}

	entries, err := s.Source.Snapshot(ctx)
	if err != nil {
		conn.Close()
		return fmt.Errorf("resync: %w", err)
	}
	s.Sink.LoadSnapshot(entries)

	s.mu.Lock()
	if s.conn != nil {
		s.conn.Close()
	}
	s.conn = conn
	s.mu.Unlock()

	s.log.Info().Str("url", s.URL).Int("entries", len(entries)).Msg("connected and resynced")
	return nil
}

// Disconnect menutup koneksi aktif; aman dipanggil berulang.
func (s *Subscriber) Disconnect() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}

func (s *Subscriber) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil
}

// Run menerima event sampai ctx selesai (return nil). Kalau koneksi putus,
// Run reconnect setelah ReconnectDelay; setelah MaxAttempts kegagalan
// berturut-turut Run mengembalikan ErrChannelClosed.
func (s *Subscriber) Run(ctx context.Context) error {
	defer s.Disconnect()

	failures := 0
	for {
		if ctx.Err() != nil {
			return nil
		}
		if !s.Connected() {
			if err := s.Connect(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				failures++
				s.log.Warn().Err(err).Int("attempt", failures).Int("max", s.MaxAttempts).Msg("connect failed")
				if failures >= s.MaxAttempts {
					return fmt.Errorf("%w: %v", ErrChannelClosed, err)
				}
				if !sleep(ctx, s.ReconnectDelay) {
					return nil
				}
				continue
			}
			failures = 0
		}

		err := s.consume(ctx)
		s.Disconnect()
		if ctx.Err() != nil {
			return nil
		}
		s.log.Warn().Err(err).Msg("push channel disconnected")
		if !sleep(ctx, s.ReconnectDelay) {
			return nil
		}
	}
}

// consume membaca event dari koneksi aktif sampai error atau ctx selesai.
func (s *Subscriber) consume(ctx context.Context) error {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return errors.New("not connected")
	}

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-stop:
		}
	}()

	for {
		var ev models.QueueEvent
		if err := conn.ReadJSON(&ev); err != nil {
			return err
		}
		if err := s.Sink.ApplyEvent(ev); err != nil {
			// event rusak dibuang, koneksi tetap jalan
			s.log.Debug().Err(err).Str("event", ev.String()).Msg("event dropped")
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
