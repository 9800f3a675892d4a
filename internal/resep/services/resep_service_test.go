package services

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c14220110/apotek-antrian-backend/internal/resep/models"
)

var created = time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)

func newService(t *testing.T, numbers ...string) (*ResepService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s := NewResepService(db, zerolog.Nop())
	s.now = func() time.Time { return created }
	i := 0
	s.newNumber = func() string {
		n := numbers[i%len(numbers)]
		i++
		return n
	}
	return s, mock
}

func createRequest() models.CreateResepRequest {
	sev := 7
	return models.CreateResepRequest{
		PatientID:      "1234567890",
		SeverityImpact: &sev,
		Medicines: []models.Medicine{
			{Name: "Paracetamol", Quantity: 10, Dosage: "3x1"},
			{Name: "Vitamin C", Quantity: 5, Dosage: "1x1"},
		},
	}
}

func TestCreate(t *testing.T) {
	s, mock := newService(t, "R123456")

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO Resep ").
		WithArgs("R123456", "1234567890", "D001", 7, sqlmock.AnyArg(), created).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO Resep_Obat").WithArgs("R123456", 1, "Paracetamol", 10, "3x1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO Resep_Obat").WithArgs("R123456", 2, "Vitamin C", 5, "1x1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	r, err := s.Create(context.Background(), "D001", createRequest())
	require.NoError(t, err)
	assert.Equal(t, "R123456", r.PrescriptionID)
	assert.Equal(t, 7, r.SeverityImpact)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_RetriesOnDuplicateNumber(t *testing.T) {
	s, mock := newService(t, "R000001", "R000002")

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO Resep ").WithArgs("R000001", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	mock.ExpectRollback()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO Resep ").WithArgs("R000002", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO Resep_Obat").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO Resep_Obat").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	r, err := s.Create(context.Background(), "D001", createRequest())
	require.NoError(t, err)
	assert.Equal(t, "R000002", r.PrescriptionID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_GivesUpAfterMaxAttempts(t *testing.T) {
	s, mock := newService(t, "R000001")
	for i := 0; i < maxNumberAttempts; i++ {
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO Resep ").WillReturnError(&mysql.MySQLError{Number: 1062})
		mock.ExpectRollback()
	}

	_, err := s.Create(context.Background(), "D001", createRequest())
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGet(t *testing.T) {
	s, mock := newService(t, "unused")

	mock.ExpectQuery("FROM Resep WHERE id_resep").WithArgs("R123456").
		WillReturnRows(sqlmock.NewRows([]string{"id_resep", "id_pasien", "id_dokter", "severity_impact", "service_time", "created_at"}).
			AddRow("R123456", "1234567890", "D001", 7, nil, created))
	mock.ExpectQuery("FROM Resep_Obat").WithArgs("R123456").
		WillReturnRows(sqlmock.NewRows([]string{"nama_obat", "jumlah", "dosis"}).
			AddRow("Paracetamol", 10, "3x1"))

	r, err := s.Get(context.Background(), "R123456")
	require.NoError(t, err)
	assert.Equal(t, "D001", r.DoctorID)
	assert.Empty(t, r.ServiceTime)
	require.Len(t, r.Medicines, 1)
	assert.Equal(t, 10, r.Medicines[0].Quantity)
}

func TestGet_NotFound(t *testing.T) {
	s, mock := newService(t, "unused")
	mock.ExpectQuery("FROM Resep WHERE id_resep").
		WillReturnRows(sqlmock.NewRows([]string{"id_resep", "id_pasien", "id_dokter", "severity_impact", "service_time", "created_at"}))

	_, err := s.Get(context.Background(), "R000000")
	assert.ErrorIs(t, err, ErrPrescriptionNotFound)
}

func TestNotify(t *testing.T) {
	t.Run("records notification", func(t *testing.T) {
		s, mock := newService(t, "unused")
		mock.ExpectQuery("SELECT id_pasien FROM Resep").WithArgs("R123456").
			WillReturnRows(sqlmock.NewRows([]string{"id_pasien"}).AddRow("1234567890"))
		mock.ExpectExec("INSERT INTO Notifikasi").WithArgs("1234567890", "R123456", created).
			WillReturnResult(sqlmock.NewResult(1, 1))

		require.NoError(t, s.Notify(context.Background(), models.NotifyRequest{PatientID: "1234567890", PrescriptionNumber: "R123456"}))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("other patient", func(t *testing.T) {
		s, mock := newService(t, "unused")
		mock.ExpectQuery("SELECT id_pasien FROM Resep").
			WillReturnRows(sqlmock.NewRows([]string{"id_pasien"}).AddRow("9999999999"))

		err := s.Notify(context.Background(), models.NotifyRequest{PatientID: "1234567890", PrescriptionNumber: "R123456"})
		assert.ErrorIs(t, err, ErrPatientMismatch)
	})
}

func TestRandomPrescriptionNumber(t *testing.T) {
	for i := 0; i < 50; i++ {
		assert.Regexp(t, `^R\d{6}$`, randomPrescriptionNumber())
	}
}
