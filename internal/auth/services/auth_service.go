package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/c14220110/apotek-antrian-backend/internal/auth/models"
	"github.com/c14220110/apotek-antrian-backend/pkg/utils"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnknownRole        = errors.New("karyawan has no pharmacy role")
	ErrKaryawanExists     = errors.New("karyawan id already registered")
	ErrWeakPassword       = errors.New("password too short")
)

const (
	mysqlDuplicateEntry = 1062
	minPasswordLength   = 8
)

// TokenGenerator dipenuhi oleh *utils.TokenIssuer.
type TokenGenerator interface {
	Generate(idKaryawan, nama, role string) (string, error)
	TTL() time.Duration
}

type AuthService struct {
	DB     *sql.DB
	tokens TokenGenerator
	log    zerolog.Logger
	now    func() time.Time
}

func NewAuthService(db *sql.DB, tokens TokenGenerator, log zerolog.Logger) *AuthService {
	return &AuthService{
		DB:     db,
		tokens: tokens,
		log:    log.With().Str("service", "auth").Logger(),
		now:    time.Now,
	}
}

// Login memeriksa id + password karyawan dan mengembalikan token JWT dengan role-nya.
func (s *AuthService) Login(ctx context.Context, id, password string) (*models.LoginResponse, error) {
	var k models.Karyawan
	err := s.DB.QueryRowContext(ctx,
		`SELECT id_karyawan, nama, password, role FROM Karyawan WHERE id_karyawan = ?`, id,
	).Scan(&k.IDKaryawan, &k.Nama, &k.Password, &k.Role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.log.Info().Str("id_karyawan", id).Msg("login failed: unknown id")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("query karyawan: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(k.Password), []byte(password)); err != nil {
		s.log.Info().Str("id_karyawan", id).Msg("login failed: wrong password")
		return nil, ErrInvalidCredentials
	}

	if !validRole(k.Role) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, k.Role)
	}

	token, err := s.tokens.Generate(k.IDKaryawan, k.Nama, k.Role)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	s.log.Info().Str("id_karyawan", k.IDKaryawan).Str("role", k.Role).Msg("login")
	return &models.LoginResponse{
		Token:     token,
		Role:      k.Role,
		Nama:      k.Nama,
		ExpiresAt: s.now().Add(s.tokens.TTL()),
	}, nil
}

func validRole(role string) bool {
	switch role {
	case utils.RoleDoctor, utils.RolePharmacist, utils.RoleAdmin:
		return true
	}
	return false
}

// CreateKaryawan mendaftarkan akun dokter/apoteker/admin baru. Password
// disimpan sebagai hash bcrypt.
func (s *AuthService) CreateKaryawan(ctx context.Context, req models.CreateKaryawanRequest) (*models.Karyawan, error) {
	if !validRole(req.Role) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, req.Role)
	}
	if len(req.Password) < minPasswordLength {
		return nil, fmt.Errorf("%w: need at least %d characters", ErrWeakPassword, minPasswordLength)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	_, err = s.DB.ExecContext(ctx,
		`INSERT INTO Karyawan (id_karyawan, nama, password, role, created_at) VALUES (?,?,?,?,?)`,
		req.IDKaryawan, req.Nama, string(hashed), req.Role, s.now())
	if err != nil {
		var myErr *mysql.MySQLError
		if errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry {
			return nil, ErrKaryawanExists
		}
		return nil, fmt.Errorf("insert karyawan: %w", err)
	}

	s.log.Info().Str("id_karyawan", req.IDKaryawan).Str("role", req.Role).Msg("karyawan registered")
	return &models.Karyawan{IDKaryawan: req.IDKaryawan, Nama: req.Nama, Role: req.Role}, nil
}
