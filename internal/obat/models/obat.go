package models

import (
	"errors"
	"strings"
)

// Obat merepresentasikan record di tabel `Obat`
type Obat struct {
	IDObat    int    `json:"id_obat"            db:"id_obat"`
	Nama      string `json:"name"               db:"nama"`
	Stock     int    `json:"stock_quantity"     db:"stock"`
	Threshold int    `json:"threshold_quantity" db:"threshold"`
}

// UpdateStockRequest payload POST /api/medicines/update-stock.
type UpdateStockRequest struct {
	MedicineName   string `json:"medicineName"`
	NeededQuantity int    `json:"neededQuantity"`
}

func (r UpdateStockRequest) Validate() error {
	if strings.TrimSpace(r.MedicineName) == "" {
		return errors.New("medicineName is required")
	}
	if r.NeededQuantity < 1 {
		return errors.New("neededQuantity must be at least 1")
	}
	return nil
}

type UpdateStockResponse struct {
	UpdatedStockQuantity int `json:"updatedStockQuantity"`
}

type StockLevel struct {
	Name          string `json:"name"`
	StockQuantity int    `json:"stock_quantity"`
}

type Usage struct {
	Name         string `json:"name"`
	UsedQuantity int    `json:"used_quantity"`
}
