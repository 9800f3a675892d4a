package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func TestCreateResepRequest_Validate(t *testing.T) {
	med := []Medicine{{Name: "Amoxicillin", Quantity: 10, Dosage: "3x1"}}

	tests := []struct {
		name    string
		req     CreateResepRequest
		wantErr bool
	}{
		{"valid with default severity", CreateResepRequest{PatientID: "1234567890", Medicines: med}, false},
		{"severity zero", CreateResepRequest{PatientID: "1234567890", SeverityImpact: intPtr(0), Medicines: med}, false},
		{"severity nine", CreateResepRequest{PatientID: "1234567890", SeverityImpact: intPtr(9), Medicines: med}, false},
		{"severity ten", CreateResepRequest{PatientID: "1234567890", SeverityImpact: intPtr(10), Medicines: med}, true},
		{"negative severity", CreateResepRequest{PatientID: "1234567890", SeverityImpact: intPtr(-1), Medicines: med}, true},
		{"missing patient", CreateResepRequest{Medicines: med}, true},
		{"no medicines", CreateResepRequest{PatientID: "1234567890"}, true},
		{"zero quantity", CreateResepRequest{PatientID: "1234567890", Medicines: []Medicine{{Name: "A", Quantity: 0, Dosage: "1x1"}}}, true},
		{"missing dosage", CreateResepRequest{PatientID: "1234567890", Medicines: []Medicine{{Name: "A", Quantity: 1}}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCreateResepRequest_DefaultSeverity(t *testing.T) {
	assert.Equal(t, DefaultSeverity, CreateResepRequest{}.Severity())
	assert.Equal(t, 2, CreateResepRequest{SeverityImpact: intPtr(2)}.Severity())
}
