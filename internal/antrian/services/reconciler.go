package services

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/c14220110/apotek-antrian-backend/internal/antrian/models"
)

var (
	ErrMalformedEvent  = errors.New("malformed queue event")
	ErrStaleCompletion = errors.New("stale completion")
)

// RecentCapacity jumlah maksimum entri di log "baru selesai".
const RecentCapacity = 10

type trackedEntry struct {
	entry models.QueueEntry
	seq   uint64 // urutan pertama kali terlihat, untuk tie-break
}

// Reconciler menjaga proyeksi lokal antrian aktif agar konsisten dengan sumber
// kebenaran di server. Event bisa datang dobel atau tidak berurutan, jadi semua
// operasi tulis idempoten. Satu penulis dalam satu waktu; pembacaan diambil
// dari snapshot di bawah lock yang sama.
type Reconciler struct {
	mu      sync.RWMutex
	entries map[string]trackedEntry
	byRx    map[string]string // prescriptionId -> id entri yang hidup
	recent  []models.QueueEntry
	nextSeq uint64
	log     zerolog.Logger
}

func NewReconciler(log zerolog.Logger) *Reconciler {
	return &Reconciler{
		entries: make(map[string]trackedEntry),
		byRx:    make(map[string]string),
		log:     log.With().Str("component", "reconciler").Logger(),
	}
}

// LoadSnapshot mengganti seluruh mapping. Dipakai saat load awal, resync
// periodik, dan setelah channel reconnect. ID dobel dalam satu batch:
// yang terakhir menang. Snapshot bisa dibaca sebelum sebuah transisi
// di-commit, jadi baris yang sudah ada di log "baru selesai" dilewati dan
// entri lokal yang lebih maju (isStale) dipertahankan.
func (r *Reconciler) LoadSnapshot(entries []models.QueueEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fresh := make(map[string]trackedEntry, len(entries))
	byRx := make(map[string]string, len(entries))

	for _, e := range entries {
		if e.ID == "" || !e.Status.Valid() {
			r.log.Warn().Str("id", e.ID).Str("status", string(e.Status)).Msg("snapshot entry dropped")
			continue
		}
		if e.Status == models.StatusCompleted {
			continue
		}
		if r.recentIndexLocked(e.ID) >= 0 {
			r.log.Debug().Str("id", e.ID).Msg("snapshot row for completed entry ignored")
			continue
		}

		seq, ok := uint64(0), false
		if prev, dup := fresh[e.ID]; dup {
			seq, ok = prev.seq, true
			if byRx[prev.entry.PrescriptionID] == e.ID {
				delete(byRx, prev.entry.PrescriptionID)
			}
		} else if prev, known := r.entries[e.ID]; known {
			seq, ok = prev.seq, true
			if isStale(prev.entry, e) {
				r.log.Debug().Str("id", e.ID).
					Str("have", string(prev.entry.Status)).
					Str("got", string(e.Status)).
					Msg("stale snapshot row ignored")
				e = prev.entry
			}
		}
		if !ok {
			seq = r.allocSeq()
		}

		if e.PrescriptionID != "" {
			if other, taken := byRx[e.PrescriptionID]; taken && other != e.ID {
				delete(fresh, other)
			}
			byRx[e.PrescriptionID] = e.ID
		}
		fresh[e.ID] = trackedEntry{entry: e.Clone(), seq: seq}
	}

	r.entries = fresh
	r.byRx = byRx
	r.log.Debug().Int("entries", len(fresh)).Msg("snapshot loaded")
}

// ApplyEvent menerapkan satu event add/update/delete. Event yang rusak
// dibuang dan dicatat; state lama tidak berubah.
func (r *Reconciler) ApplyEvent(ev models.QueueEvent) error {
	if ev.Data.ID == "" {
		return r.malformed(ev, "missing id")
	}

	switch ev.Type {
	case models.EventAdd, models.EventUpdate:
		if !ev.Data.Status.Valid() {
			return r.malformed(ev, "unknown status")
		}
		r.mu.Lock()
		r.upsertLocked(ev.Data)
		r.mu.Unlock()
	case models.EventDelete:
		r.mu.Lock()
		r.removeLocked(ev.Data.ID)
		r.mu.Unlock()
	default:
		return r.malformed(ev, "unknown type")
	}
	return nil
}

func (r *Reconciler) malformed(ev models.QueueEvent, reason string) error {
	r.log.Warn().
		Str("type", string(ev.Type)).
		Str("id", ev.Data.ID).
		Str("reason", reason).
		Msg("queue event dropped")
	return fmt.Errorf("%w: %s", ErrMalformedEvent, reason)
}

func (r *Reconciler) upsertLocked(e models.QueueEntry) {
	cur, exists := r.entries[e.ID]
	if exists && isStale(cur.entry, e) {
		r.log.Debug().Str("id", e.ID).
			Str("have", string(cur.entry.Status)).
			Str("got", string(e.Status)).
			Msg("stale queue event ignored")
		return
	}

	if e.Status == models.StatusCompleted {
		if exists {
			r.removeLocked(e.ID)
		}
		r.pushRecentLocked(e)
		return
	}

	// Event terlambat untuk entri yang sudah selesai tidak boleh menghidupkannya lagi.
	if !exists && r.recentIndexLocked(e.ID) >= 0 {
		r.log.Debug().Str("id", e.ID).Msg("event for completed entry ignored")
		return
	}

	if exists && cur.entry.PrescriptionID != e.PrescriptionID && r.byRx[cur.entry.PrescriptionID] == e.ID {
		delete(r.byRx, cur.entry.PrescriptionID)
	}
	if e.PrescriptionID != "" {
		if other, taken := r.byRx[e.PrescriptionID]; taken && other != e.ID {
			r.log.Warn().
				Str("prescription_id", e.PrescriptionID).
				Str("old_id", other).
				Str("new_id", e.ID).
				Msg("second live entry for prescription, replacing")
			delete(r.entries, other)
		}
		r.byRx[e.PrescriptionID] = e.ID
	}

	seq := cur.seq
	if !exists {
		seq = r.allocSeq()
	}
	r.entries[e.ID] = trackedEntry{entry: e.Clone(), seq: seq}
}

// isStale: status tidak pernah mundur; jika keduanya membawa updatedAt,
// tulisan yang lebih lama diabaikan. Timestamp sama: urutan datang menang.
func isStale(cur, incoming models.QueueEntry) bool {
	if incoming.Status.Rank() < cur.Status.Rank() {
		return true
	}
	if !cur.UpdatedAt.IsZero() && !incoming.UpdatedAt.IsZero() {
		return incoming.UpdatedAt.Before(cur.UpdatedAt)
	}
	return false
}

func (r *Reconciler) removeLocked(id string) {
	cur, ok := r.entries[id]
	if !ok {
		return
	}
	delete(r.entries, id)
	if r.byRx[cur.entry.PrescriptionID] == id {
		delete(r.byRx, cur.entry.PrescriptionID)
	}
}

// RecordCompletion memindahkan entri aktif ke log "baru selesai". Entri yang
// tidak aktif (sudah selesai atau tidak dikenal) ditolak dengan ErrStaleCompletion.
func (r *Reconciler) RecordCompletion(entry models.QueueEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.entries[entry.ID]
	if !ok {
		return fmt.Errorf("%w: entry %q is not active", ErrStaleCompletion, entry.ID)
	}

	done := cur.entry
	done.Status = models.StatusCompleted
	if entry.ServedTime != "" {
		done.ServedTime = entry.ServedTime
	}
	if !entry.UpdatedAt.IsZero() {
		done.UpdatedAt = entry.UpdatedAt
	}

	r.removeLocked(entry.ID)
	r.pushRecentLocked(done)
	return nil
}

func (r *Reconciler) pushRecentLocked(e models.QueueEntry) {
	if r.recentIndexLocked(e.ID) >= 0 {
		return
	}
	e = e.Clone()
	e.Status = models.StatusCompleted
	r.recent = append([]models.QueueEntry{e}, r.recent...)
	if len(r.recent) > RecentCapacity {
		r.recent = r.recent[:RecentCapacity]
	}
}

func (r *Reconciler) recentIndexLocked(id string) int {
	return slices.IndexFunc(r.recent, func(e models.QueueEntry) bool { return e.ID == id })
}

func (r *Reconciler) allocSeq() uint64 {
	r.nextSeq++
	return r.nextSeq
}

// ProjectReady entri berstatus ready, urut entryTime naik. Elemen pertama
// adalah "Now Serving", sisanya "Up Next".
func (r *Reconciler) ProjectReady() []models.QueueEntry {
	return r.project(models.StatusReady, func(a, b trackedEntry) int {
		if c := a.entry.EntryTime.Compare(b.entry.EntryTime); c != 0 {
			return c
		}
		return cmp.Compare(a.seq, b.seq)
	})
}

// ProjectActive entri berstatus processing, severityImpact terbesar dulu,
// lalu FIFO berdasarkan entryTime.
func (r *Reconciler) ProjectActive() []models.QueueEntry {
	return r.project(models.StatusProcessing, func(a, b trackedEntry) int {
		if c := cmp.Compare(b.entry.SeverityImpact, a.entry.SeverityImpact); c != 0 {
			return c
		}
		if c := a.entry.EntryTime.Compare(b.entry.EntryTime); c != 0 {
			return c
		}
		return cmp.Compare(a.seq, b.seq)
	})
}

func (r *Reconciler) project(status models.Status, order func(a, b trackedEntry) int) []models.QueueEntry {
	r.mu.RLock()
	picked := make([]trackedEntry, 0, len(r.entries))
	for _, t := range r.entries {
		if t.entry.Status == status {
			picked = append(picked, trackedEntry{entry: t.entry.Clone(), seq: t.seq})
		}
	}
	r.mu.RUnlock()

	slices.SortFunc(picked, order)

	out := make([]models.QueueEntry, len(picked))
	for i, t := range picked {
		out[i] = t.entry
	}
	return out
}

// RecentlyCompleted log entri selesai, terbaru di depan.
func (r *Reconciler) RecentlyCompleted() []models.QueueEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.QueueEntry, len(r.recent))
	for i, e := range r.recent {
		out[i] = e.Clone()
	}
	return out
}

// Get mengembalikan entri aktif berdasarkan id.
func (r *Reconciler) Get(id string) (models.QueueEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.entries[id]
	if !ok {
		return models.QueueEntry{}, false
	}
	return t.entry.Clone(), true
}

// Len jumlah entri aktif (processing + ready).
func (r *Reconciler) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Board menyusun data layar pusat dari proyeksi saat ini.
func (r *Reconciler) Board() models.DisplayBoard {
	ready := r.ProjectReady()
	board := models.DisplayBoard{
		UpNext:            []models.QueueEntry{},
		Active:            r.ProjectActive(),
		RecentlyCompleted: r.RecentlyCompleted(),
	}
	if len(ready) > 0 {
		board.NowServing = &ready[0]
		board.UpNext = ready[1:]
	}
	return board
}
