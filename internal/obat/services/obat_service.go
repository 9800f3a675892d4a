package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/c14220110/apotek-antrian-backend/internal/obat/models"
)

var (
	ErrMedicineNotFound  = errors.New("medicine not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

type ObatService struct {
	DB  *sql.DB
	log zerolog.Logger
	now func() time.Time
}

func NewObatService(db *sql.DB, log zerolog.Logger) *ObatService {
	return &ObatService{
		DB:  db,
		log: log.With().Str("service", "obat").Logger(),
		now: time.Now,
	}
}

// UpdateStock mengurangi stok obat sebanyak needed dan mencatat pemakaiannya
// di Obat_Usage. Stok tidak boleh negatif.
func (s *ObatService) UpdateStock(ctx context.Context, name string, needed int) (int, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var (
		idObat int
		stock  int
	)
	err = tx.QueryRowContext(ctx,
		`SELECT id_obat, stock FROM Obat WHERE nama = ? FOR UPDATE`, name).Scan(&idObat, &stock)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrMedicineNotFound
		}
		return 0, fmt.Errorf("query stock: %w", err)
	}
	if stock < needed {
		return stock, fmt.Errorf("%w: %s has %d, need %d", ErrInsufficientStock, name, stock, needed)
	}

	remaining := stock - needed
	if _, err := tx.ExecContext(ctx, `UPDATE Obat SET stock = ? WHERE id_obat = ?`, remaining, idObat); err != nil {
		return 0, fmt.Errorf("update stock: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO Obat_Usage (id_obat, jumlah, used_at) VALUES (?,?,?)`, idObat, needed, s.now()); err != nil {
		return 0, fmt.Errorf("insert usage: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}

	s.log.Info().Str("medicine", name).Int("used", needed).Int("remaining", remaining).Msg("stock updated")
	if remaining == 0 {
		s.log.Warn().Str("medicine", name).Msg("stock depleted")
	}
	return remaining, nil
}

// CheckStock daftar obat yang stoknya sudah di bawah atau sama dengan threshold.
func (s *ObatService) CheckStock(ctx context.Context) ([]models.Obat, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id_obat, nama, stock, threshold FROM Obat WHERE stock <= threshold ORDER BY stock`)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	list := []models.Obat{}
	for rows.Next() {
		var o models.Obat
		if err := rows.Scan(&o.IDObat, &o.Nama, &o.Stock, &o.Threshold); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		list = append(list, o)
	}
	return list, rows.Err()
}

// GetUsage total pemakaian per obat.
func (s *ObatService) GetUsage(ctx context.Context) ([]models.Usage, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT o.nama, COALESCE(SUM(u.jumlah), 0)
		FROM Obat o
		LEFT JOIN Obat_Usage u ON u.id_obat = o.id_obat
		GROUP BY o.id_obat, o.nama
		ORDER BY o.nama`)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	list := []models.Usage{}
	for rows.Next() {
		var u models.Usage
		if err := rows.Scan(&u.Name, &u.UsedQuantity); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		list = append(list, u)
	}
	return list, rows.Err()
}

func (s *ObatService) GetStock(ctx context.Context) ([]models.StockLevel, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT nama, stock FROM Obat ORDER BY nama`)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	list := []models.StockLevel{}
	for rows.Next() {
		var l models.StockLevel
		if err := rows.Scan(&l.Name, &l.StockQuantity); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		list = append(list, l)
	}
	return list, rows.Err()
}
