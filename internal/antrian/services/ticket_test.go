package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicketGenerator_Wraparound(t *testing.T) {
	g := NewTicketGenerator(NewMemorySequenceStore())
	ctx := context.Background()

	for i := 1; i <= 100; i++ {
		tk, err := g.Issue(ctx, 5)
		require.NoError(t, err)
		assert.Equal(t, i%100, tk.Sequence, "call %d", i)
		assert.Equal(t, 500+i%100, tk.Number)
	}

	tk, err := g.Issue(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, 1, tk.Sequence)
}

func TestTicketGenerator_Composition(t *testing.T) {
	store := NewMemorySequenceStore()
	require.NoError(t, store.Set(3, 6))
	g := NewTicketGenerator(store)

	tk, err := g.Issue(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 307, tk.Number)
	assert.Equal(t, "307", tk.Display())
	assert.Equal(t, 3, tk.Severity)
	assert.False(t, tk.IssuedAt.IsZero())
}

func TestTicket_DisplayPadsSequence(t *testing.T) {
	assert.Equal(t, "000", Ticket{Severity: 0, Sequence: 0}.Display())
	assert.Equal(t, "099", Ticket{Severity: 0, Sequence: 99}.Display())
	assert.Equal(t, "910", Ticket{Severity: 9, Sequence: 10}.Display())
}

func TestTicketGenerator_SeveritiesIndependent(t *testing.T) {
	g := NewTicketGenerator(NewMemorySequenceStore())
	ctx := context.Background()

	a, _ := g.Issue(ctx, 1)
	b, _ := g.Issue(ctx, 2)
	c, _ := g.Issue(ctx, 1)

	assert.Equal(t, 101, a.Number)
	assert.Equal(t, 201, b.Number)
	assert.Equal(t, 102, c.Number)
}

func TestTicketGenerator_InvalidSeverity(t *testing.T) {
	g := NewTicketGenerator(NewMemorySequenceStore())
	for _, sev := range []int{-1, 10, 42} {
		_, err := g.Issue(context.Background(), sev)
		assert.ErrorIs(t, err, ErrInvalidSeverity)
	}
}

func TestTicketGenerator_ConcurrentIssueUnique(t *testing.T) {
	g := NewTicketGenerator(NewMemorySequenceStore())
	const n = 99

	var (
		mu   sync.Mutex
		seen = make(map[int]int)
		wg   sync.WaitGroup
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tk, err := g.Issue(context.Background(), 7)
			if err != nil {
				t.Error(err)
				return
			}
			mu.Lock()
			seen[tk.Sequence]++
			mu.Unlock()
		}()
	}
	wg.Wait()

	require.Len(t, seen, n)
	for seq, count := range seen {
		assert.Equal(t, 1, count, "sequence %d issued twice", seq)
	}
}

func TestMySQLSequenceStore_Next(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT IGNORE INTO Ticket_Counter").WithArgs(4).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT last_sequence FROM Ticket_Counter").WithArgs(4).
		WillReturnRows(sqlmock.NewRows([]string{"last_sequence"}).AddRow(99))
	mock.ExpectExec("UPDATE Ticket_Counter SET last_sequence").WithArgs(0, 4).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	g := NewTicketGenerator(NewMySQLSequenceStore(db))
	tk, err := g.Issue(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, 400, tk.Number)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLSequenceStore_RollbackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT IGNORE INTO Ticket_Counter").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT last_sequence").WillReturnError(errors.New("lock wait timeout"))
	mock.ExpectRollback()

	_, err = NewMySQLSequenceStore(db).Next(context.Background(), 2)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
