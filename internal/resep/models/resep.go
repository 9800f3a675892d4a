package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultSeverity dipakai kalau dokter tidak mengisi severityImpact.
const DefaultSeverity = 5

type Medicine struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Dosage   string `json:"dosage"`
}

// Resep merepresentasikan record di tabel `Resep` beserta obat-obatnya.
type Resep struct {
	PrescriptionID string     `json:"prescriptionId"`
	PatientID      string     `json:"patientId"`
	DoctorID       string     `json:"doctorId"`
	SeverityImpact int        `json:"severityImpact"`
	ServiceTime    string     `json:"serviceTime,omitempty"`
	Medicines      []Medicine `json:"medicines"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// CreateResepRequest payload POST /api/prescriptions.
type CreateResepRequest struct {
	PatientID      string     `json:"patientId"`
	ServiceTime    string     `json:"serviceTime,omitempty"`
	SeverityImpact *int       `json:"severityImpact,omitempty"`
	Medicines      []Medicine `json:"medicines"`
}

// Severity nilai severity efektif (default 5).
func (r CreateResepRequest) Severity() int {
	if r.SeverityImpact == nil {
		return DefaultSeverity
	}
	return *r.SeverityImpact
}

func (r CreateResepRequest) Validate() error {
	if strings.TrimSpace(r.PatientID) == "" {
		return errors.New("patientId is required")
	}
	if sev := r.Severity(); sev < 0 || sev > 9 {
		return fmt.Errorf("severityImpact must be between 0 and 9, got %d", sev)
	}
	if len(r.Medicines) == 0 {
		return errors.New("at least one medicine is required")
	}
	for i, m := range r.Medicines {
		if strings.TrimSpace(m.Name) == "" {
			return fmt.Errorf("medicines[%d]: name is required", i)
		}
		if m.Quantity < 1 {
			return fmt.Errorf("medicines[%d]: quantity must be at least 1", i)
		}
		if strings.TrimSpace(m.Dosage) == "" {
			return fmt.Errorf("medicines[%d]: dosage is required", i)
		}
	}
	return nil
}

// CreateResepResponse bentuk response sesuai API lama: message, id, prescriptionNumber.
type CreateResepResponse struct {
	ID                 string `json:"id"`
	PrescriptionNumber string `json:"prescriptionNumber"`
}

type NotifyRequest struct {
	PatientID          string `json:"patientId"`
	PrescriptionNumber string `json:"prescriptionNumber"`
}
