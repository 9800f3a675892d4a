package models

import "time"

// Karyawan merepresentasikan record di tabel `Karyawan` (dokter, apoteker, admin).
type Karyawan struct {
	IDKaryawan string `json:"id_karyawan" db:"id_karyawan"`
	Nama       string `json:"nama"        db:"nama"`
	Password   string `json:"-"           db:"password"`
	Role       string `json:"role"        db:"role"`
}

// LoginRequest payload POST /api/auth/login.
type LoginRequest struct {
	ID       string `json:"id"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	Role      string    `json:"role"`
	Nama      string    `json:"nama"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// CreateKaryawanRequest payload POST /api/auth/karyawan (admin).
type CreateKaryawanRequest struct {
	IDKaryawan string `json:"id_karyawan"`
	Nama       string `json:"nama"`
	Password   string `json:"password"`
	Role       string `json:"role"`
}
