package config_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/doctoralliance/patient-dedupe/config"
)

var _ = Describe("Config", func() {
	var cfg *config.Config

	BeforeEach(func() {
		cfg = config.New()
		cfg.BaseURL = "https://backoffice.example.com"
		cfg.APIToken = "token"
		cfg.NameSimilarityThreshold = 85
		cfg.GroupingStrategy = config.GroupingStrategyAnchor
	})

	Describe("LoadFromEnv", func() {
		It("applies defaults and environment overrides", func() {
			GinkgoT().Setenv("DEDUPE_BASE_URL", "https://backoffice.example.com")
			GinkgoT().Setenv("DEDUPE_API_TOKEN", "token")
			GinkgoT().Setenv("DEDUPE_NAME_SIMILARITY_THRESHOLD", "92")

			loaded := config.New()
			Expect(loaded.LoadFromEnv()).To(Succeed())
			Expect(loaded.NameSimilarityThreshold).To(Equal(92))
			Expect(loaded.GroupingStrategy).To(Equal(config.GroupingStrategyAnchor))
			Expect(loaded.EnableRCMCalls).To(BeTrue())
			Expect(loaded.OutputDir).To(Equal("output"))
			Expect(loaded.Validate()).To(Succeed())
		})

		It("fails without the required settings", func() {
			Expect(config.New().LoadFromEnv()).ToNot(Succeed())
		})
	})

	Describe("Validate", func() {
		It("accepts a complete configuration", func() {
			Expect(cfg.Validate()).To(Succeed())
		})

		It("rejects a missing base url", func() {
			cfg.BaseURL = ""
			Expect(cfg.Validate()).ToNot(Succeed())
		})

		It("rejects a missing api token", func() {
			cfg.APIToken = ""
			Expect(cfg.Validate()).ToNot(Succeed())
		})

		It("rejects out-of-range thresholds", func() {
			cfg.NameSimilarityThreshold = 101
			Expect(cfg.Validate()).ToNot(Succeed())
		})

		It("rejects unknown grouping strategies", func() {
			cfg.GroupingStrategy = "nonsense"
			Expect(cfg.Validate()).ToNot(Succeed())
		})

		It("accepts the transitive strategy", func() {
			cfg.GroupingStrategy = config.GroupingStrategyTransitive
			Expect(cfg.Validate()).To(Succeed())
		})
	})
})
