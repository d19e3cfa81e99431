package patients

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/doctoralliance/patient-dedupe/pointer"
)

var (
	ErrNotFound = errors.New("patient not found")
)

const (
	// KindClinicalOrder marks dependent records that move with the orders bucket.
	KindClinicalOrder = "clinical-order"
	// KindNote marks continuity-of-care notes. The orders endpoint returns them
	// tagged with entityType "CCNote"; they are excluded from the orders bucket.
	KindNote = "note"

	noteEntityType = "CCNote"
)

// Service is the remote patient directory store scoped to one tenant run.
type Service interface {
	ListByPGCompany(ctx context.Context, pgCompanyId string) ([]Patient, error)
	ListOrders(ctx context.Context, patientId string) ([]Dependent, error)
	ListNotes(ctx context.Context, patientId string) ([]Dependent, error)
	ReassignOrder(ctx context.Context, order Dependent, newOwnerId string) error
	ReassignNote(ctx context.Context, note Dependent, newOwnerId string) error
	Delete(ctx context.Context, patientId string) error
}

// Patient is a read-only snapshot of one directory record. Missing fields are
// defaulted to their zero values; emptiness is significant for matching.
type Patient struct {
	Id                  string
	FirstName           string
	LastName            string
	BirthDate           string
	Mrn                 string
	CompanyId           string
	PgCompanyId         string
	TotalOrders         int
	HasDataCompleteness bool
	CreatedOn           string
}

func (p Patient) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// Dependent is an order or CC note owned by a patient. Body carries the raw
// wire payload so re-ownership updates can round-trip unknown fields.
type Dependent struct {
	Id             string
	OwnerPatientId string
	Kind           string
	DocumentName   string
	DocumentURL    string
	DocumentId     string

	Body map[string]any
}

func (d Dependent) IsNote() bool {
	return d.Kind == KindNote
}

type patientDto struct {
	Id         string         `json:"id"`
	AgencyInfo *agencyInfoDto `json:"agencyInfo"`
}

type agencyInfoDto struct {
	PatientFName     *string `json:"patientFName"`
	PatientLName     *string `json:"patientLName"`
	Dob              *string `json:"dob"`
	MedicalRecordNo  *string `json:"medicalRecordNo"`
	CompanyId        *string `json:"companyId"`
	PgCompanyId      *string `json:"pgcompanyID"`
	TotalOrders      *string `json:"totalOrders"`
	DataCompleteness any     `json:"dataCompleteness"`
	CreatedOn        *string `json:"createdOn"`
}

func (dto patientDto) toPatient() Patient {
	patient := Patient{Id: dto.Id}
	info := dto.AgencyInfo
	if info == nil {
		return patient
	}

	patient.FirstName = strings.TrimSpace(pointer.ToString(info.PatientFName))
	patient.LastName = strings.TrimSpace(pointer.ToString(info.PatientLName))
	patient.BirthDate = pointer.ToString(info.Dob)
	patient.Mrn = pointer.ToString(info.MedicalRecordNo)
	patient.CompanyId = pointer.ToString(info.CompanyId)
	patient.PgCompanyId = pointer.ToString(info.PgCompanyId)
	patient.TotalOrders = parseTotalOrders(info.TotalOrders)
	patient.HasDataCompleteness = isTruthy(info.DataCompleteness)
	patient.CreatedOn = pointer.ToString(info.CreatedOn)
	return patient
}

func parseTotalOrders(raw *string) int {
	if raw == nil {
		return 0
	}
	count, err := strconv.Atoi(strings.TrimSpace(*raw))
	if err != nil || count < 0 {
		return 0
	}
	return count
}

func isTruthy(v any) bool {
	switch value := v.(type) {
	case nil:
		return false
	case bool:
		return value
	case string:
		return value != ""
	case float64:
		return value != 0
	default:
		return true
	}
}

func dependentFromBody(body map[string]any) Dependent {
	dep := Dependent{
		Id:             stringField(body, "id"),
		OwnerPatientId: stringField(body, "patientId"),
		DocumentName:   stringField(body, "documentName"),
		DocumentURL:    stringField(body, "orderUrl"),
		DocumentId:     stringField(body, "documentID"),
		Kind:           KindClinicalOrder,
		Body:           body,
	}
	if stringField(body, "entityType") == noteEntityType {
		dep.Kind = KindNote
	}
	return dep
}

func stringField(body map[string]any, key string) string {
	if value, ok := body[key].(string); ok {
		return value
	}
	return ""
}
