package match_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/doctoralliance/patient-dedupe/match"
)

var _ = Describe("Matcher", func() {
	var matcher *match.Matcher

	BeforeEach(func() {
		matcher = match.NewMatcher(match.DefaultThreshold)
	})

	Describe("Compare", func() {
		It("matches identical names directly", func() {
			result := matcher.Compare("John", "Smith", "John", "Smith")
			Expect(result.Match).To(BeTrue())
			Expect(result.Type).To(Equal(match.TypeDirect))
			Expect(result.Score).To(Equal(100))
		})

		It("ignores case and surrounding whitespace", func() {
			result := matcher.Compare("  JOHN ", "smith", "john", " Smith  ")
			Expect(result.Match).To(BeTrue())
			Expect(result.Type).To(Equal(match.TypeDirect))
			Expect(result.Score).To(Equal(100))
		})

		It("matches names with minor spelling differences", func() {
			result := matcher.Compare("Jonathan", "Smith", "Jonathon", "Smith")
			Expect(result.Match).To(BeTrue())
			Expect(result.Type).To(Equal(match.TypeDirect))
			Expect(result.Score).To(Equal(88))
		})

		It("matches swapped first and last names", func() {
			result := matcher.Compare("Garcia", "Maria", "Maria", "Garcia")
			Expect(result.Match).To(BeTrue())
			Expect(result.Type).To(Equal(match.TypeInterchange))
			Expect(result.Score).To(Equal(100))
		})

		It("rejects unrelated names", func() {
			result := matcher.Compare("John", "Smith", "Maria", "Garcia")
			Expect(result.Match).To(BeFalse())
			Expect(result.Type).To(Equal(match.TypeNoMatch))
		})

		It("reports the best component score when nothing matched", func() {
			result := matcher.Compare("John", "Smith", "John", "Garcia")
			Expect(result.Match).To(BeFalse())
			Expect(result.Type).To(Equal(match.TypeNoMatch))
			Expect(result.Score).To(Equal(100))
		})

		It("reports incomplete data when a component is missing", func() {
			result := matcher.Compare("John", "", "John", "Smith")
			Expect(result.Match).To(BeFalse())
			Expect(result.Type).To(Equal(match.TypeIncompleteData))
			Expect(result.Score).To(Equal(0))
		})

		It("treats whitespace-only components as missing", func() {
			result := matcher.Compare("John", "Smith", "   ", "Smith")
			Expect(result.Type).To(Equal(match.TypeIncompleteData))
		})

		It("is symmetric", func() {
			pairs := [][4]string{
				{"John", "Smith", "Jonathan", "Smith"},
				{"Garcia", "Maria", "Maria", "Garcia"},
				{"John", "Smith", "Maria", "Garcia"},
				{"Jonathan", "Smith", "Jonathon", "Smyth"},
			}
			for _, pair := range pairs {
				forward := matcher.Compare(pair[0], pair[1], pair[2], pair[3])
				backward := matcher.Compare(pair[2], pair[3], pair[0], pair[1])
				Expect(forward.Match).To(Equal(backward.Match))
				Expect(forward.Type).To(Equal(backward.Type))
				Expect(forward.Score).To(Equal(backward.Score))
			}
		})

		When("the threshold is stricter than the high similarity cutoff", func() {
			BeforeEach(func() {
				matcher = match.NewMatcher(95)
			})

			It("still admits a very close first name when the last name is exact", func() {
				result := matcher.Compare("Alexandria", "Smith", "Alexandrea", "Smith")
				Expect(result.Match).To(BeTrue())
				Expect(result.Type).To(Equal(match.TypeHighSimilarity))
			})

			It("rejects first names below the high similarity cutoff", func() {
				result := matcher.Compare("Jonathan", "Smith", "Jonathon", "Smith")
				Expect(result.Match).To(BeFalse())
			})
		})
	})

	Describe("NewMatcher", func() {
		It("falls back to the default threshold for out-of-range values", func() {
			for _, threshold := range []int{-1, 0, 101} {
				m := match.NewMatcher(threshold)
				result := m.Compare("Jonathan", "Smith", "Jonathon", "Smith")
				Expect(result.Match).To(BeTrue())
			}
		})
	})

	Describe("Ratio", func() {
		It("is 100 for equal strings", func() {
			Expect(match.Ratio("smith", "smith")).To(Equal(100))
		})

		It("is 100 for two empty strings", func() {
			Expect(match.Ratio("", "")).To(Equal(100))
		})

		It("is 0 against an empty string", func() {
			Expect(match.Ratio("smith", "")).To(Equal(0))
		})

		It("normalizes the edit distance by the longer string", func() {
			// one edit across eight characters
			Expect(match.Ratio("jonathan", "jonathon")).To(Equal(88))
			// one edit across five characters
			Expect(match.Ratio("smith", "smyth")).To(Equal(80))
		})
	})
})
