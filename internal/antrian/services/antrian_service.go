package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/c14220110/apotek-antrian-backend/internal/antrian/models"
	resepmodels "github.com/c14220110/apotek-antrian-backend/internal/resep/models"
	resepservices "github.com/c14220110/apotek-antrian-backend/internal/resep/services"
)

var (
	ErrEntryNotFound = errors.New("queue entry not found")
	ErrAlreadyQueued = errors.New("prescription already has a live queue entry")
)

// PrescriptionLookup sumber data resep (severity dan daftar obat).
type PrescriptionLookup interface {
	Get(ctx context.Context, prescriptionID string) (*resepmodels.Resep, error)
}

// EventPublisher push channel tempat event antrian dikirim ke client.
type EventPublisher interface {
	Publish(ctx context.Context, ev models.QueueEvent) error
}

// AntrianService menyimpan antrian apotek di tabel Antrian_Apotek. Setiap
// perubahan diterapkan ke reconciler milik deployment ini dan dipublikasikan
// ke push channel.
type AntrianService struct {
	DB            *sql.DB
	reconciler    *Reconciler
	tickets       *TicketGenerator
	prescriptions PrescriptionLookup
	publisher     EventPublisher
	log           zerolog.Logger
	now           func() time.Time
}

func NewAntrianService(
	db *sql.DB,
	reconciler *Reconciler,
	tickets *TicketGenerator,
	prescriptions PrescriptionLookup,
	publisher EventPublisher,
	log zerolog.Logger,
) *AntrianService {
	return &AntrianService{
		DB:            db,
		reconciler:    reconciler,
		tickets:       tickets,
		prescriptions: prescriptions,
		publisher:     publisher,
		log:           log.With().Str("service", "antrian").Logger(),
		now:           time.Now,
	}
}

const selectEntry = `
	SELECT id_antrian, nomor_antrian, id_resep, id_pasien, obat, status,
	       severity_impact, entry_time, served_time, updated_at
	FROM Antrian_Apotek`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (s *AntrianService) scanEntry(row rowScanner) (models.QueueEntry, error) {
	var (
		e        models.QueueEntry
		obatJSON []byte
		status   string
		served   sql.NullTime
	)
	if err := row.Scan(&e.ID, &e.QueueNumber, &e.PrescriptionID, &e.PatientID, &obatJSON,
		&status, &e.SeverityImpact, &e.EntryTime, &served, &e.UpdatedAt); err != nil {
		return e, err
	}
	e.Status = models.Status(status)
	e.Medicines = []models.Medicine{}
	if len(obatJSON) > 0 {
		if err := json.Unmarshal(obatJSON, &e.Medicines); err != nil {
			return e, fmt.Errorf("decode medicines of %s: %w", e.ID, err)
		}
	}

	end := s.now()
	if served.Valid {
		e.ServedTime = served.Time.Format(time.RFC3339)
		end = served.Time
	}
	e.WaitTime = strconv.Itoa(int(end.Sub(e.EntryTime).Minutes()))
	return e, nil
}

// ListQueue snapshot antrian aktif (processing + ready), urut waktu masuk.
func (s *AntrianService) ListQueue(ctx context.Context) ([]models.QueueEntry, error) {
	rows, err := s.DB.QueryContext(ctx, selectEntry+`
		WHERE status IN ('processing', 'ready')
		ORDER BY entry_time`)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	entries := []models.QueueEntry{}
	for rows.Next() {
		e, err := s.scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *AntrianService) getByID(ctx context.Context, id string) (models.QueueEntry, error) {
	e, err := s.scanEntry(s.DB.QueryRowContext(ctx, selectEntry+` WHERE id_antrian = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return e, ErrEntryNotFound
	}
	return e, err
}

// AddToQueue memasukkan resep ke antrian apotek dengan status processing dan
// nomor tiket sesuai severity resep.
func (s *AntrianService) AddToQueue(ctx context.Context, req models.AddQueueRequest) (models.QueueEntry, error) {
	resep, err := s.prescriptions.Get(ctx, req.PrescriptionID)
	if err != nil {
		return models.QueueEntry{}, err
	}
	if resep.PatientID != req.PatientID {
		return models.QueueEntry{}, resepservices.ErrPatientMismatch
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return models.QueueEntry{}, err
	}
	defer tx.Rollback()

	// Kunci baris resep supaya dua submit bersamaan tidak membuat dua entri.
	var locked string
	if err := tx.QueryRowContext(ctx,
		`SELECT id_resep FROM Resep WHERE id_resep = ? FOR UPDATE`, resep.PrescriptionID).Scan(&locked); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.QueueEntry{}, resepservices.ErrPrescriptionNotFound
		}
		return models.QueueEntry{}, err
	}

	var live int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM Antrian_Apotek WHERE id_resep = ? AND status IN ('processing', 'ready')`,
		resep.PrescriptionID).Scan(&live); err != nil {
		return models.QueueEntry{}, err
	}
	if live > 0 {
		return models.QueueEntry{}, ErrAlreadyQueued
	}

	now := s.now()
	entry := models.QueueEntry{
		ID:             uuid.NewString(),
		PrescriptionID: resep.PrescriptionID,
		PatientID:      resep.PatientID,
		Medicines:      toQueueMedicines(resep.Medicines),
		WaitTime:       "0",
		EntryTime:      now,
		UpdatedAt:      now,
		Status:         models.StatusProcessing,
		SeverityImpact: resep.SeverityImpact,
	}
	obatJSON, err := json.Marshal(entry.Medicines)
	if err != nil {
		return models.QueueEntry{}, err
	}

	// Tiket diambil paling akhir, tepat sebelum INSERT. Counter tidak ikut
	// rollback, jadi INSERT/commit yang gagal meninggalkan satu nomor kosong.
	ticket, err := s.tickets.Issue(ctx, resep.SeverityImpact)
	if err != nil {
		return models.QueueEntry{}, err
	}
	entry.QueueNumber = ticket.Display()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO Antrian_Apotek
		   (id_antrian, nomor_antrian, id_resep, id_pasien, obat, status, severity_impact, entry_time, updated_at)
		 VALUES (?,?,?,?,?,?,?,?,?)`,
		entry.ID, entry.QueueNumber, entry.PrescriptionID, entry.PatientID, obatJSON,
		string(entry.Status), entry.SeverityImpact, entry.EntryTime, entry.UpdatedAt,
	); err != nil {
		return models.QueueEntry{}, fmt.Errorf("insert queue entry: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return models.QueueEntry{}, err
	}

	s.log.Info().
		Str("id", entry.ID).
		Str("queue_number", entry.QueueNumber).
		Str("prescription_id", entry.PrescriptionID).
		Msg("queue entry added")
	s.apply(ctx, models.QueueEvent{Type: models.EventAdd, Data: entry})
	return entry, nil
}

func toQueueMedicines(meds []resepmodels.Medicine) []models.Medicine {
	out := make([]models.Medicine, len(meds))
	for i, m := range meds {
		out[i] = models.Medicine{Name: m.Name, Quantity: strconv.Itoa(m.Quantity), Dosage: m.Dosage}
	}
	return out
}

// transition mengubah status from -> to. Kalau tidak ada baris yang berubah,
// bedakan antara entri tidak ada dan status yang sudah bukan `from`.
func (s *AntrianService) transition(ctx context.Context, id string, from, to models.Status) (models.QueueEntry, error) {
	now := s.now()
	var served sql.NullTime
	if to == models.StatusCompleted {
		served = sql.NullTime{Time: now, Valid: true}
	}

	res, err := s.DB.ExecContext(ctx,
		`UPDATE Antrian_Apotek SET status = ?, updated_at = ?, served_time = COALESCE(?, served_time)
		 WHERE id_antrian = ? AND status = ?`,
		string(to), now, served, id, string(from))
	if err != nil {
		return models.QueueEntry{}, fmt.Errorf("gagal mengupdate antrian: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return models.QueueEntry{}, fmt.Errorf("gagal memeriksa update antrian: %w", err)
	}

	entry, err := s.getByID(ctx, id)
	if err != nil {
		return models.QueueEntry{}, err
	}
	if affected == 0 {
		return models.QueueEntry{}, fmt.Errorf("%w: entry %s is %s, expected %s", ErrStaleCompletion, id, entry.Status, from)
	}
	return entry, nil
}

// MarkReady apoteker selesai menyiapkan obat: processing -> ready.
func (s *AntrianService) MarkReady(ctx context.Context, id string) (models.QueueEntry, error) {
	entry, err := s.transition(ctx, id, models.StatusProcessing, models.StatusReady)
	if err != nil {
		return entry, err
	}
	s.log.Info().Str("id", id).Str("queue_number", entry.QueueNumber).Msg("queue entry ready")
	s.apply(ctx, models.QueueEvent{Type: models.EventUpdate, Data: entry})
	return entry, nil
}

// MarkReadyByPrescription sama seperti MarkReady tetapi dicari dari nomor resep.
func (s *AntrianService) MarkReadyByPrescription(ctx context.Context, prescriptionID string) (models.QueueEntry, error) {
	var id string
	err := s.DB.QueryRowContext(ctx,
		`SELECT id_antrian FROM Antrian_Apotek WHERE id_resep = ? ORDER BY entry_time DESC LIMIT 1`,
		prescriptionID).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.QueueEntry{}, ErrEntryNotFound
		}
		return models.QueueEntry{}, err
	}
	return s.MarkReady(ctx, id)
}

// ConfirmPickup pasien mengambil obat: ready -> completed, lalu entri pindah
// ke log "baru selesai".
func (s *AntrianService) ConfirmPickup(ctx context.Context, id string) (models.QueueEntry, error) {
	entry, err := s.transition(ctx, id, models.StatusReady, models.StatusCompleted)
	if err != nil {
		return entry, err
	}

	ev := models.QueueEvent{Type: models.EventUpdate, Data: entry}
	if err := s.reconciler.RecordCompletion(entry); err != nil {
		// mapping lokal belum melihat entri ini; event completed tetap mencatatnya
		s.log.Debug().Err(err).Str("id", id).Msg("completion not in local mapping")
		if err := s.reconciler.ApplyEvent(ev); err != nil {
			s.log.Error().Err(err).Str("event", ev.String()).Msg("local reconcile failed")
		}
	}
	s.log.Info().Str("id", id).Str("queue_number", entry.QueueNumber).Msg("queue entry picked up")
	s.publish(ctx, ev)
	return entry, nil
}

// Remove menghapus entri dari antrian (dibatalkan).
func (s *AntrianService) Remove(ctx context.Context, id string) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM Antrian_Apotek WHERE id_antrian = ?`, id)
	if err != nil {
		return fmt.Errorf("gagal menghapus antrian: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrEntryNotFound
	}
	s.log.Info().Str("id", id).Msg("queue entry removed")
	s.apply(ctx, models.QueueEvent{Type: models.EventDelete, Data: models.QueueEntry{ID: id}})
	return nil
}

func (s *AntrianService) apply(ctx context.Context, ev models.QueueEvent) {
	if err := s.reconciler.ApplyEvent(ev); err != nil {
		s.log.Error().Err(err).Str("event", ev.String()).Msg("local reconcile failed")
	}
	s.publish(ctx, ev)
}

// publish gagal tidak membatalkan operasi; client akan pulih lewat resync.
func (s *AntrianService) publish(ctx context.Context, ev models.QueueEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.log.Warn().Err(err).Str("event", ev.String()).Msg("publish queue event failed")
	}
}

// Resync memuat ulang seluruh antrian aktif dari database ke reconciler.
func (s *AntrianService) Resync(ctx context.Context) error {
	entries, err := s.ListQueue(ctx)
	if err != nil {
		return fmt.Errorf("resync: %w", err)
	}
	s.reconciler.LoadSnapshot(entries)
	return nil
}

// RunResync menjalankan Resync setiap interval sampai ctx selesai.
func (s *AntrianService) RunResync(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Resync(ctx); err != nil && ctx.Err() == nil {
				s.log.Error().Err(err).Msg("periodic resync failed")
			}
		}
	}
}

// Display data layar pusat: now serving, up next, antrian aktif, baru selesai.
func (s *AntrianService) Display() models.DisplayBoard {
	return s.reconciler.Board()
}
