package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog"

	"github.com/c14220110/apotek-antrian-backend/internal/resep/models"
)

var (
	ErrPrescriptionNotFound = errors.New("prescription not found")
	ErrPatientMismatch      = errors.New("prescription does not belong to patient")
)

const (
	mysqlDuplicateEntry = 1062
	maxNumberAttempts   = 5
)

type ResepService struct {
	DB  *sql.DB
	log zerolog.Logger

	// newNumber bisa diganti di test supaya nomor resep deterministik.
	newNumber func() string
	now       func() time.Time
}

func NewResepService(db *sql.DB, log zerolog.Logger) *ResepService {
	return &ResepService{
		DB:        db,
		log:       log.With().Str("service", "resep").Logger(),
		newNumber: randomPrescriptionNumber,
		now:       time.Now,
	}
}

// randomPrescriptionNumber format: satu huruf diikuti 6 digit, mis. R042917.
func randomPrescriptionNumber() string {
	return fmt.Sprintf("R%06d", rand.IntN(1_000_000))
}

// Create menyimpan resep baru beserta obat-obatnya dalam satu transaksi.
// Nomor resep dibuat acak; kalau bentrok (duplicate key) dicoba lagi.
func (s *ResepService) Create(ctx context.Context, doctorID string, req models.CreateResepRequest) (*models.Resep, error) {
	resep := &models.Resep{
		PatientID:      req.PatientID,
		DoctorID:       doctorID,
		SeverityImpact: req.Severity(),
		ServiceTime:    req.ServiceTime,
		Medicines:      req.Medicines,
		CreatedAt:      s.now(),
	}

	for attempt := 1; attempt <= maxNumberAttempts; attempt++ {
		resep.PrescriptionID = s.newNumber()
		err := s.insert(ctx, resep)
		if err == nil {
			s.log.Info().
				Str("prescription_id", resep.PrescriptionID).
				Str("doctor_id", doctorID).
				Int("severity", resep.SeverityImpact).
				Msg("prescription created")
			return resep, nil
		}
		var myErr *mysql.MySQLError
		if errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry {
			s.log.Debug().Str("prescription_id", resep.PrescriptionID).Int("attempt", attempt).Msg("prescription number collision")
			continue
		}
		return nil, err
	}
	return nil, fmt.Errorf("could not allocate prescription number after %d attempts", maxNumberAttempts)
}

func (s *ResepService) insert(ctx context.Context, r *models.Resep) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO Resep (id_resep, id_pasien, id_dokter, severity_impact, service_time, created_at)
		 VALUES (?,?,?,?,?,?)`,
		r.PrescriptionID, r.PatientID, r.DoctorID, r.SeverityImpact,
		sql.NullString{String: r.ServiceTime, Valid: r.ServiceTime != ""}, r.CreatedAt,
	); err != nil {
		return err
	}

	for i, m := range r.Medicines {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO Resep_Obat (id_resep, urutan, nama_obat, jumlah, dosis) VALUES (?,?,?,?,?)`,
			r.PrescriptionID, i+1, m.Name, m.Quantity, m.Dosage,
		); err != nil {
			return fmt.Errorf("insert medicine %q: %w", m.Name, err)
		}
	}
	return tx.Commit()
}

// Get mengambil resep berdasarkan nomor resep.
func (s *ResepService) Get(ctx context.Context, prescriptionID string) (*models.Resep, error) {
	var (
		r           models.Resep
		serviceTime sql.NullString
	)
	err := s.DB.QueryRowContext(ctx,
		`SELECT id_resep, id_pasien, id_dokter, severity_impact, service_time, created_at
		 FROM Resep WHERE id_resep = ?`, prescriptionID,
	).Scan(&r.PrescriptionID, &r.PatientID, &r.DoctorID, &r.SeverityImpact, &serviceTime, &r.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPrescriptionNotFound
		}
		return nil, fmt.Errorf("query prescription: %w", err)
	}
	r.ServiceTime = serviceTime.String

	rows, err := s.DB.QueryContext(ctx,
		`SELECT nama_obat, jumlah, dosis FROM Resep_Obat WHERE id_resep = ? ORDER BY urutan`, prescriptionID)
	if err != nil {
		return nil, fmt.Errorf("query prescription medicines: %w", err)
	}
	defer rows.Close()

	r.Medicines = []models.Medicine{}
	for rows.Next() {
		var m models.Medicine
		if err := rows.Scan(&m.Name, &m.Quantity, &m.Dosage); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		r.Medicines = append(r.Medicines, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &r, nil
}

// Notify mencatat notifikasi ke pasien bahwa resepnya sudah dibuat.
func (s *ResepService) Notify(ctx context.Context, req models.NotifyRequest) error {
	var patientID string
	err := s.DB.QueryRowContext(ctx,
		`SELECT id_pasien FROM Resep WHERE id_resep = ?`, req.PrescriptionNumber).Scan(&patientID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrPrescriptionNotFound
		}
		return err
	}
	if patientID != req.PatientID {
		return ErrPatientMismatch
	}

	if _, err := s.DB.ExecContext(ctx,
		`INSERT INTO Notifikasi (id_pasien, id_resep, created_at) VALUES (?,?,?)`,
		req.PatientID, req.PrescriptionNumber, s.now(),
	); err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	s.log.Info().Str("patient_id", req.PatientID).Str("prescription_id", req.PrescriptionNumber).Msg("patient notified")
	return nil
}
