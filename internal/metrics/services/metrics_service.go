package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/c14220110/apotek-antrian-backend/internal/metrics/models"
)

type MetricsService struct {
	DB  *sql.DB
	now func() time.Time
}

func NewMetricsService(db *sql.DB) *MetricsService {
	return &MetricsService{DB: db, now: time.Now}
}

// System panjang antrian aktif, rata-rata waktu layanan (entry -> served) dan
// rata-rata waktu tunggu entri hari ini, dalam menit.
func (s *MetricsService) System(ctx context.Context) (models.SystemMetrics, error) {
	now := s.now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var (
		m          models.SystemMetrics
		avgService sql.NullFloat64
		avgWait    sql.NullFloat64
	)
	err := s.DB.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(status IN ('processing', 'ready')), 0),
			AVG(CASE WHEN served_time IS NOT NULL THEN TIMESTAMPDIFF(SECOND, entry_time, served_time) END) / 60,
			AVG(TIMESTAMPDIFF(SECOND, entry_time, COALESCE(served_time, ?))) / 60
		FROM Antrian_Apotek
		WHERE entry_time >= ?`, now, startOfDay,
	).Scan(&m.QueueLength, &avgService, &avgWait)
	if err != nil {
		return m, fmt.Errorf("query system metrics: %w", err)
	}
	m.AverageServiceTime = avgService.Float64
	m.AverageWaitTime = avgWait.Float64
	m.Timestamp = now
	return m, nil
}

// Prescriptions menjalankan empat query secara paralel.
func (s *MetricsService) Prescriptions(ctx context.Context) (models.PrescriptionMetrics, error) {
	m := models.PrescriptionMetrics{
		MedicineStats: []models.MedicineStat{},
		StockLevels:   []models.StockLevel{},
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM Resep`).Scan(&m.PrescriptionCount); err != nil {
			return fmt.Errorf("count prescriptions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(DISTINCT id_pasien) FROM Resep`).Scan(&m.PatientCount); err != nil {
			return fmt.Errorf("count patients: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		rows, err := s.DB.QueryContext(ctx, `
			SELECT nama_obat, COUNT(*) FROM Resep_Obat
			GROUP BY nama_obat ORDER BY COUNT(*) DESC, nama_obat`)
		if err != nil {
			return fmt.Errorf("medicine stats: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var st models.MedicineStat
			if err := rows.Scan(&st.Name, &st.Count); err != nil {
				return err
			}
			m.MedicineStats = append(m.MedicineStats, st)
		}
		return rows.Err()
	})
	g.Go(func() error {
		rows, err := s.DB.QueryContext(ctx, `SELECT nama, stock FROM Obat ORDER BY nama`)
		if err != nil {
			return fmt.Errorf("stock levels: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var l models.StockLevel
			if err := rows.Scan(&l.Medicine, &l.Level); err != nil {
				return err
			}
			m.StockLevels = append(m.StockLevels, l)
		}
		return rows.Err()
	})

	if err := g.Wait(); err != nil {
		return models.PrescriptionMetrics{}, err
	}
	return m, nil
}
