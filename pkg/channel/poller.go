package channel

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/c14220110/apotek-antrian-backend/internal/antrian/models"
)

const DefaultPollInterval = time.Second

// CompletionSource sumber log "baru selesai" versi server, dipenuhi oleh
// *APIClient lewat GET /api/queue/display.
type CompletionSource interface {
	Display(ctx context.Context) (models.DisplayBoard, error)
}

// Poller pengganti push channel: ambil snapshot penuh setiap Interval lalu
// LoadSnapshot ke Sink. Snapshot hanya berisi entri aktif, jadi kalau
// Completions diisi, entri selesai diambil dari sana dan diterapkan sebagai
// event update.
type Poller struct {
	Source      SnapshotSource
	Completions CompletionSource
	Sink        Sink
	Interval    time.Duration

	log zerolog.Logger
}

func NewPoller(source SnapshotSource, sink Sink, log zerolog.Logger) *Poller {
	return &Poller{
		Source:   source,
		Sink:     sink,
		Interval: DefaultPollInterval,
		log:      log.With().Str("component", "poller").Logger(),
	}
}

// Poll satu kali ambil snapshot. Kalau gagal, state Sink tidak diubah.
func (p *Poller) Poll(ctx context.Context) error {
	entries, err := p.Source.Snapshot(ctx)
	if err != nil {
		return err
	}
	p.Sink.LoadSnapshot(entries)

	if p.Completions == nil {
		return nil
	}
	board, err := p.Completions.Display(ctx)
	if err != nil {
		return fmt.Errorf("fetch completions: %w", err)
	}
	// terbaru di depan; diterapkan dari yang terlama supaya urutan log sama
	for i := len(board.RecentlyCompleted) - 1; i >= 0; i-- {
		done := board.RecentlyCompleted[i]
		done.Status = models.StatusCompleted
		if err := p.Sink.ApplyEvent(models.QueueEvent{Type: models.EventUpdate, Data: done}); err != nil {
			p.log.Warn().Err(err).Str("id", done.ID).Msg("completion dropped")
		}
	}
	return nil
}

// Run polling sampai ctx selesai. Error polling hanya di-log.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()

	for {
		if err := p.Poll(ctx); err != nil && ctx.Err() == nil {
			p.log.Warn().Err(err).Msg("poll failed")
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
