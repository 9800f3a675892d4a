package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const (
	RoleDoctor     = "doctor"
	RolePharmacist = "pharmacist"
	RoleAdmin      = "admin"
)

// Claims berisi identitas karyawan yang login beserta role-nya.
type Claims struct {
	IDKaryawan string `json:"id_karyawan"`
	Nama       string `json:"nama"`
	Role       string `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer membuat dan memvalidasi token JWT dengan secret yang sama.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) (*TokenIssuer, error) {
	if secret == "" {
		return nil, errors.New("JWT secret key is missing")
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Generate membuat token HS256 untuk karyawan.
func (ti *TokenIssuer) Generate(idKaryawan, nama, role string) (string, error) {
	now := ti.now()
	claims := Claims{
		IDKaryawan: idKaryawan,
		Nama:       nama,
		Role:       role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   idKaryawan,
			ExpiresAt: jwt.NewNumericDate(now.Add(ti.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ti.secret)
}

// Validate memvalidasi token JWT dan mengembalikan klaimnya.
func (ti *TokenIssuer) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Pastikan metode signing benar
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return ti.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// TTL masa berlaku token yang dibuat Generate.
func (ti *TokenIssuer) TTL() time.Duration {
	return ti.ttl
}
