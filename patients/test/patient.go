package test

import (
	"fmt"
	"time"

	"github.com/doctoralliance/patient-dedupe/patients"
	"github.com/doctoralliance/patient-dedupe/test"
)

func RandomPatient() patients.Patient {
	return patients.Patient{
		Id:                  test.Faker.UUID().V4(),
		FirstName:           test.Faker.Person().FirstName(),
		LastName:            test.Faker.Person().LastName(),
		BirthDate:           test.Faker.Time().ISO8601(time.Now())[:10],
		Mrn:                 fmt.Sprintf("MRN-%06d", test.Rand.Intn(1000000)),
		CompanyId:           test.Faker.UUID().V4(),
		PgCompanyId:         test.Faker.UUID().V4(),
		TotalOrders:         test.Rand.Intn(20),
		HasDataCompleteness: test.Faker.Bool(),
		CreatedOn:           test.Faker.Time().ISO8601(time.Now())[:10],
	}
}

func RandomDuplicateOf(patient patients.Patient) patients.Patient {
	duplicate := RandomPatient()
	duplicate.FirstName = patient.FirstName
	duplicate.LastName = patient.LastName
	duplicate.BirthDate = patient.BirthDate
	duplicate.Mrn = patient.Mrn
	duplicate.PgCompanyId = patient.PgCompanyId
	return duplicate
}

func RandomOrder(ownerId string) patients.Dependent {
	id := test.Faker.UUID().V4()
	name := test.Faker.Lorem().Sentence(3)
	return patients.Dependent{
		Id:             id,
		OwnerPatientId: ownerId,
		Kind:           patients.KindClinicalOrder,
		DocumentName:   name,
		DocumentURL:    test.Faker.Internet().URL(),
		Body: map[string]any{
			"id":           id,
			"patientId":    ownerId,
			"documentName": name,
		},
	}
}

func RandomNote(ownerId string) patients.Dependent {
	id := test.Faker.UUID().V4()
	return patients.Dependent{
		Id:             id,
		OwnerPatientId: ownerId,
		Kind:           patients.KindNote,
		Body: map[string]any{
			"id":         id,
			"patientId":  ownerId,
			"entityType": "CCNote",
		},
	}
}
