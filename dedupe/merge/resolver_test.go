package merge_test

import (
	"context"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/doctoralliance/patient-dedupe/dedupe"
	"github.com/doctoralliance/patient-dedupe/dedupe/merge"
	"github.com/doctoralliance/patient-dedupe/patients"
	patientsTest "github.com/doctoralliance/patient-dedupe/patients/test"
	"github.com/doctoralliance/patient-dedupe/verification"
)

var _ = Describe("Resolver", func() {
	var verifier *stubVerifier
	var resolver *merge.Resolver
	var ctx context.Context

	BeforeEach(func() {
		verifier = newStubVerifier()
		resolver = merge.NewResolver(verifier, zap.NewNop().Sugar())
		ctx = context.Background()
	})

	When("the group agrees on mrn and dob", func() {
		It("selects the primary without verifying documents", func() {
			anchor := patientsTest.RandomPatient()
			anchor.TotalOrders = 2
			duplicate := patientsTest.RandomDuplicateOf(anchor)
			duplicate.TotalOrders = 9

			resolved := resolver.Resolve(ctx, dedupe.Group{Members: []patients.Patient{anchor, duplicate}})
			Expect(resolved.Conflict).To(BeFalse())
			Expect(resolved.Primary.Id).To(Equal(duplicate.Id))
			Expect(resolved.ToDelete).To(HaveLen(1))
			Expect(resolved.Candidates).To(BeEmpty())
			Expect(verifier.calls).To(BeEmpty())
		})

		It("tolerates members with missing identifiers", func() {
			anchor := patientsTest.RandomPatient()
			duplicate := patientsTest.RandomDuplicateOf(anchor)
			duplicate.Mrn = ""
			duplicate.BirthDate = ""

			resolved := resolver.Resolve(ctx, dedupe.Group{Members: []patients.Patient{anchor, duplicate}})
			Expect(resolved.Conflict).To(BeFalse())
			Expect(verifier.calls).To(BeEmpty())
		})
	})

	When("members disagree on mrn", func() {
		var anchor, duplicate patients.Patient
		var group dedupe.Group

		BeforeEach(func() {
			anchor = patientsTest.RandomPatient()
			anchor.Mrn = "MRN-000001"
			anchor.TotalOrders = 9
			duplicate = patientsTest.RandomDuplicateOf(anchor)
			duplicate.Mrn = "MRN-000002"
			duplicate.TotalOrders = 1
			group = dedupe.Group{Members: []patients.Patient{anchor, duplicate}}
		})

		It("verifies every member", func() {
			resolver.Resolve(ctx, group)
			Expect(verifier.calls).To(ConsistOf(anchor.Id, duplicate.Id))
		})

		It("retains the member whose record the documents confirm", func() {
			verifier.fields[duplicate.Id] = verification.Fields{
				Mrn: duplicate.Mrn,
				Dob: duplicate.BirthDate,
			}

			resolved := resolver.Resolve(ctx, group)
			Expect(resolved.Conflict).To(BeTrue())
			Expect(resolved.Primary.Id).To(Equal(duplicate.Id))
			Expect(resolved.ToDelete).To(HaveLen(1))
			Expect(resolved.ToDelete[0].Id).To(Equal(anchor.Id))
		})

		It("scores confirmations above recoveries", func() {
			// anchor has no dob on record; the document fills it in
			anchor.BirthDate = ""
			group.Members[0] = anchor
			verifier.fields[anchor.Id] = verification.Fields{Dob: "1950-06-15"}
			verifier.fields[duplicate.Id] = verification.Fields{Mrn: duplicate.Mrn}

			resolved := resolver.Resolve(ctx, group)
			Expect(resolved.Primary.Id).To(Equal(duplicate.Id))
		})

		It("breaks score ties on total orders", func() {
			resolved := resolver.Resolve(ctx, group)
			Expect(resolved.Primary.Id).To(Equal(anchor.Id))
		})

		It("tolerates verification failures", func() {
			verifier.failures[anchor.Id] = fmt.Errorf("document api is down")
			verifier.fields[duplicate.Id] = verification.Fields{Mrn: duplicate.Mrn}

			resolved := resolver.Resolve(ctx, group)
			Expect(resolved.Primary.Id).To(Equal(duplicate.Id))
		})

		It("reports each member as a ranked candidate", func() {
			verifier.fields[duplicate.Id] = verification.Fields{
				Mrn: duplicate.Mrn,
				Dob: duplicate.BirthDate,
			}

			resolved := resolver.Resolve(ctx, group)
			Expect(resolved.Candidates).To(HaveLen(2))
			Expect(resolved.Candidates[0].PatientId).To(Equal(duplicate.Id))
			Expect(resolved.Candidates[0].Score).To(Equal(4))
			Expect(resolved.Candidates[1].Score).To(Equal(0))
			Expect(resolved.Candidates[0].ExtractedMrn).To(Equal(duplicate.Mrn))
			Expect(resolved.Candidates[1].CurrentMrn).To(Equal(anchor.Mrn))
		})
	})

	When("members disagree on dob only", func() {
		It("still triggers verification", func() {
			anchor := patientsTest.RandomPatient()
			duplicate := patientsTest.RandomDuplicateOf(anchor)
			duplicate.BirthDate = "1949-01-31"

			resolver.Resolve(ctx, dedupe.Group{Members: []patients.Patient{anchor, duplicate}})
			Expect(verifier.calls).To(HaveLen(2))
		})
	})
})
