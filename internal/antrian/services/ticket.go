package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"
)

const (
	MaxSeverity    = 9
	sequenceModulo = 100 // dua digit terakhir nomor tiket
)

var ErrInvalidSeverity = errors.New("severity must be between 0 and 9")

// Ticket nomor tiket = severity*100 + sequence, contoh severity 3 sequence 7 -> 307.
type Ticket struct {
	Number   int       `json:"number"`
	Severity int       `json:"severity"`
	Sequence int       `json:"sequence"`
	IssuedAt time.Time `json:"issuedAt"`
}

// Display digit severity diikuti sequence dua digit.
func (t Ticket) Display() string {
	return fmt.Sprintf("%d%02d", t.Severity, t.Sequence)
}

// SequenceStore menyimpan sequence terakhir per severity. Next harus atomik:
// baca, naikkan, tulis dalam satu critical section.
type SequenceStore interface {
	Next(ctx context.Context, severity int) (int, error)
}

// MemorySequenceStore counter di memori proses; reset saat restart dan tidak
// dibagi antar instance.
type MemorySequenceStore struct {
	mu   sync.Mutex
	last [MaxSeverity + 1]int
}

func NewMemorySequenceStore() *MemorySequenceStore {
	return &MemorySequenceStore{}
}

func (m *MemorySequenceStore) Next(_ context.Context, severity int) (int, error) {
	if severity < 0 || severity > MaxSeverity {
		return 0, ErrInvalidSeverity
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	next := (m.last[severity] + 1) % sequenceModulo
	m.last[severity] = next
	return next, nil
}

// Set mengatur sequence terakhir untuk satu severity.
func (m *MemorySequenceStore) Set(severity, last int) error {
	if severity < 0 || severity > MaxSeverity {
		return ErrInvalidSeverity
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last[severity] = ((last % sequenceModulo) + sequenceModulo) % sequenceModulo
	return nil
}

// MySQLSequenceStore counter bersama di tabel Ticket_Counter, dinaikkan dalam
// transaksi dengan row lock supaya beberapa instance tidak mengeluarkan
// sequence yang sama.
type MySQLSequenceStore struct {
	DB *sql.DB
}

func NewMySQLSequenceStore(db *sql.DB) *MySQLSequenceStore {
	return &MySQLSequenceStore{DB: db}
}

func (s *MySQLSequenceStore) Next(ctx context.Context, severity int) (int, error) {
	if severity < 0 || severity > MaxSeverity {
		return 0, ErrInvalidSeverity
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT IGNORE INTO Ticket_Counter (severity, last_sequence) VALUES (?, 0)`, severity); err != nil {
		return 0, fmt.Errorf("init ticket counter: %w", err)
	}

	var last int
	if err := tx.QueryRowContext(ctx,
		`SELECT last_sequence FROM Ticket_Counter WHERE severity = ? FOR UPDATE`, severity).Scan(&last); err != nil {
		return 0, fmt.Errorf("read ticket counter: %w", err)
	}

	next := (last + 1) % sequenceModulo
	if _, err := tx.ExecContext(ctx,
		`UPDATE Ticket_Counter SET last_sequence = ? WHERE severity = ?`, next, severity); err != nil {
		return 0, fmt.Errorf("update ticket counter: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return next, nil
}

// TicketGenerator mengeluarkan nomor tiket berdasarkan severity.
type TicketGenerator struct {
	store SequenceStore
	now   func() time.Time
}

func NewTicketGenerator(store SequenceStore) *TicketGenerator {
	return &TicketGenerator{store: store, now: time.Now}
}

// Issue mengambil sequence berikutnya untuk severity dan menyusun nomor tiket.
// Sequence berputar dari 99 ke 0; nomor tidak dijamin unik melewati putaran.
func (g *TicketGenerator) Issue(ctx context.Context, severity int) (Ticket, error) {
	if severity < 0 || severity > MaxSeverity {
		return Ticket{}, fmt.Errorf("%w: got %d", ErrInvalidSeverity, severity)
	}
	seq, err := g.store.Next(ctx, severity)
	if err != nil {
		return Ticket{}, err
	}
	return Ticket{
		Number:   severity*sequenceModulo + seq,
		Severity: severity,
		Sequence: seq,
		IssuedAt: g.now(),
	}, nil
}
