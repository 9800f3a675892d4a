package models

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

type Status string

const (
	StatusProcessing Status = "processing"
	StatusReady      Status = "ready"
	StatusCompleted  Status = "completed"
)

// Valid melaporkan apakah status termasuk salah satu dari tiga status antrian.
func (s Status) Valid() bool {
	switch s {
	case StatusProcessing, StatusReady, StatusCompleted:
		return true
	}
	return false
}

// Rank urutan progres status; status tidak pernah mundur.
func (s Status) Rank() int {
	switch s {
	case StatusProcessing:
		return 1
	case StatusReady:
		return 2
	case StatusCompleted:
		return 3
	}
	return 0
}

type Medicine struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
	Dosage   string `json:"dosage"`
}

// QueueEntry satu permintaan apotek pasien, dari submit sampai diambil.
type QueueEntry struct {
	ID             string     `json:"id"`
	QueueNumber    string     `json:"queueNumber"`
	PrescriptionID string     `json:"prescriptionId"`
	PatientID      string     `json:"patientId"`
	Medicines      []Medicine `json:"medicines"`
	WaitTime       string     `json:"waitTime"`
	ServedTime     string     `json:"servedTime"`
	EntryTime      time.Time  `json:"entryTime"`
	UpdatedAt      time.Time  `json:"updatedAt,omitempty"`
	Status         Status     `json:"status"`
	SeverityImpact int        `json:"severityImpact"`
}

// Clone mengembalikan salinan dengan slice medicines sendiri.
func (e QueueEntry) Clone() QueueEntry {
	if e.Medicines != nil {
		meds := make([]Medicine, len(e.Medicines))
		copy(meds, e.Medicines)
		e.Medicines = meds
	}
	return e
}

type EventType string

const (
	EventAdd    EventType = "add"
	EventUpdate EventType = "update"
	EventDelete EventType = "delete"
)

// QueueEvent pesan queueUpdate yang dikirim lewat push channel.
type QueueEvent struct {
	Type EventType  `json:"type"`
	Data QueueEntry `json:"data"`
}

func (ev QueueEvent) String() string {
	return fmt.Sprintf("%s(%s)", ev.Type, ev.Data.ID)
}

// AddQueueRequest payload POST /api/queue dari form pasien.
type AddQueueRequest struct {
	PatientID      string `json:"patientId"`
	PrescriptionID string `json:"prescriptionId"`
}

// CompleteRequest payload POST /api/pharmacists/complete.
type CompleteRequest struct {
	PrescriptionID string `json:"prescriptionId"`
}

// DisplayBoard data untuk layar pusat.
type DisplayBoard struct {
	NowServing        *QueueEntry  `json:"nowServing"`
	UpNext            []QueueEntry `json:"upNext"`
	Active            []QueueEntry `json:"active"`
	RecentlyCompleted []QueueEntry `json:"recentlyCompleted"`
}

var (
	patientIDPattern      = regexp.MustCompile(`^\d{10}$`)
	prescriptionIDPattern = regexp.MustCompile(`^[A-Za-z]\d{6}$`)
)

// Validate memeriksa format ID pasien (10 digit) dan nomor resep (1 huruf + 6 digit).
func (r AddQueueRequest) Validate() error {
	if !patientIDPattern.MatchString(r.PatientID) {
		return errors.New("patientId must be exactly 10 digits")
	}
	if !prescriptionIDPattern.MatchString(r.PrescriptionID) {
		return errors.New("prescriptionId must start with a letter followed by 6 digits")
	}
	return nil
}
