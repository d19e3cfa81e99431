package patients_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/doctoralliance/patient-dedupe/patients"
)

var _ = Describe("Client", func() {
	var requests []*http.Request
	var bodies [][]byte
	var handler func(w http.ResponseWriter, r *http.Request)
	var client *patients.Client
	var ctx context.Context

	BeforeEach(func() {
		requests = nil
		bodies = nil
		handler = func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "[]")
		}

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			requests = append(requests, r)
			bodies = append(bodies, body)
			handler(w, r)
		}))
		DeferCleanup(server.Close)

		client = patients.NewClient(patients.ClientConfig{BaseURL: server.URL, Token: "secret"}, zap.NewNop().Sugar())
		ctx = context.Background()
	})

	Describe("ListByPGCompany", func() {
		It("maps the agency info payload", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `[{
					"id": "patient-1",
					"agencyInfo": {
						"patientFName": " Edna ",
						"patientLName": "Krabappel",
						"dob": "1948-05-19",
						"medicalRecordNo": "MRN-993311",
						"companyId": "company-1",
						"pgcompanyID": "pg-17",
						"totalOrders": "12",
						"dataCompleteness": true,
						"createdOn": "2021-02-03"
					}
				}]`)
			}

			result, err := client.ListByPGCompany(ctx, "pg-17")
			Expect(err).ToNot(HaveOccurred())
			Expect(result).To(HaveLen(1))

			patient := result[0]
			Expect(patient.Id).To(Equal("patient-1"))
			Expect(patient.FirstName).To(Equal("Edna"))
			Expect(patient.LastName).To(Equal("Krabappel"))
			Expect(patient.BirthDate).To(Equal("1948-05-19"))
			Expect(patient.Mrn).To(Equal("MRN-993311"))
			Expect(patient.PgCompanyId).To(Equal("pg-17"))
			Expect(patient.TotalOrders).To(Equal(12))
			Expect(patient.HasDataCompleteness).To(BeTrue())
			Expect(patient.CreatedOn).To(Equal("2021-02-03"))

			Expect(requests[0].URL.Path).To(Equal("/api/Patient/company/pg/pg-17"))
			Expect(requests[0].Header.Get("Authorization")).To(Equal("Bearer secret"))
		})

		It("defaults records without agency info", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `[{"id": "patient-1"}]`)
			}

			result, err := client.ListByPGCompany(ctx, "pg-17")
			Expect(err).ToNot(HaveOccurred())
			Expect(result[0].Id).To(Equal("patient-1"))
			Expect(result[0].FirstName).To(BeEmpty())
			Expect(result[0].TotalOrders).To(Equal(0))
		})

		It("defaults malformed and negative order counts to zero", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `[
					{"id": "a", "agencyInfo": {"totalOrders": "many"}},
					{"id": "b", "agencyInfo": {"totalOrders": "-4"}},
					{"id": "c", "agencyInfo": {}}
				]`)
			}

			result, err := client.ListByPGCompany(ctx, "pg-17")
			Expect(err).ToNot(HaveOccurred())
			for _, patient := range result {
				Expect(patient.TotalOrders).To(Equal(0))
			}
		})

		It("propagates unexpected response statuses", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			}

			_, err := client.ListByPGCompany(ctx, "pg-17")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("ListOrders", func() {
		It("tags note entries returned by the orders endpoint", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `[
					{"id": "order-1", "patientId": "patient-1", "documentName": "Plan of Care", "orderUrl": "https://example.com/doc", "documentID": "doc-1"},
					{"id": "note-1", "patientId": "patient-1", "entityType": "CCNote"}
				]`)
			}

			orders, err := client.ListOrders(ctx, "patient-1")
			Expect(err).ToNot(HaveOccurred())
			Expect(orders).To(HaveLen(2))

			Expect(orders[0].Kind).To(Equal(patients.KindClinicalOrder))
			Expect(orders[0].DocumentName).To(Equal("Plan of Care"))
			Expect(orders[0].DocumentURL).To(Equal("https://example.com/doc"))
			Expect(orders[0].DocumentId).To(Equal("doc-1"))
			Expect(orders[0].IsNote()).To(BeFalse())

			Expect(orders[1].IsNote()).To(BeTrue())
			Expect(requests[0].URL.Path).To(Equal("/api/Order/patient/patient-1"))
		})
	})

	Describe("ListNotes", func() {
		It("always tags the results as notes", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `[{"id": "note-1", "patientId": "patient-1"}]`)
			}

			notes, err := client.ListNotes(ctx, "patient-1")
			Expect(err).ToNot(HaveOccurred())
			Expect(notes[0].IsNote()).To(BeTrue())
			Expect(requests[0].URL.Path).To(Equal("/api/CCNotes/patient/patient-1"))
		})
	})

	Describe("ReassignOrder", func() {
		It("puts the full payload with the new owner", func() {
			order := patients.Dependent{
				Id: "order-1",
				Body: map[string]any{
					"id":           "order-1",
					"patientId":    "patient-1",
					"documentName": "Plan of Care",
					"episodeId":    "episode-4",
				},
			}

			Expect(client.ReassignOrder(ctx, order, "patient-2")).To(Succeed())
			Expect(requests[0].Method).To(Equal(http.MethodPut))
			Expect(requests[0].URL.Path).To(Equal("/api/Order/order-1"))

			var payload map[string]any
			Expect(json.Unmarshal(bodies[0], &payload)).To(Succeed())
			Expect(payload["patientId"]).To(Equal("patient-2"))
			Expect(payload["documentName"]).To(Equal("Plan of Care"))
			Expect(payload["episodeId"]).To(Equal("episode-4"))
		})

		It("does not mutate the dependent's body", func() {
			order := patients.Dependent{
				Id:   "order-1",
				Body: map[string]any{"patientId": "patient-1"},
			}

			Expect(client.ReassignOrder(ctx, order, "patient-2")).To(Succeed())
			Expect(order.Body["patientId"]).To(Equal("patient-1"))
		})
	})

	Describe("ReassignNote", func() {
		It("puts to the cc notes endpoint", func() {
			note := patients.Dependent{Id: "note-1", Body: map[string]any{"id": "note-1"}}
			Expect(client.ReassignNote(ctx, note, "patient-2")).To(Succeed())
			Expect(requests[0].Method).To(Equal(http.MethodPut))
			Expect(requests[0].URL.Path).To(Equal("/api/CCNotes/note-1"))
		})
	})

	Describe("Delete", func() {
		It("deletes the patient resource", func() {
			Expect(client.Delete(ctx, "patient-1")).To(Succeed())
			Expect(requests[0].Method).To(Equal(http.MethodDelete))
			Expect(requests[0].URL.Path).To(Equal("/api/Patient/patient-1"))
		})

		It("propagates failures", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			}
			Expect(client.Delete(ctx, "patient-1")).ToNot(Succeed())
		})
	})
})
