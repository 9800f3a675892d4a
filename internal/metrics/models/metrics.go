package models

import "time"

// SystemMetrics ringkasan antrian hari ini (menit).
type SystemMetrics struct {
	QueueLength        int       `json:"queueLength"`
	AverageServiceTime float64   `json:"averageServiceTime"`
	AverageWaitTime    float64   `json:"averageWaitTime"`
	Timestamp          time.Time `json:"timestamp"`
}

type MedicineStat struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type StockLevel struct {
	Medicine string `json:"medicine"`
	Level    int    `json:"level"`
}

type PrescriptionMetrics struct {
	PrescriptionCount int            `json:"prescriptionCount"`
	PatientCount      int            `json:"patientCount"`
	MedicineStats     []MedicineStat `json:"medicineStats"`
	StockLevels       []StockLevel   `json:"stockLevels"`
}
