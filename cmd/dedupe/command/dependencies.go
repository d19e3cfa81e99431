package command

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/doctoralliance/patient-dedupe/config"
	"github.com/doctoralliance/patient-dedupe/dedupe"
	"github.com/doctoralliance/patient-dedupe/dedupe/merge"
	"github.com/doctoralliance/patient-dedupe/logger"
	"github.com/doctoralliance/patient-dedupe/match"
	"github.com/doctoralliance/patient-dedupe/patients"
	"github.com/doctoralliance/patient-dedupe/rcm"
	"github.com/doctoralliance/patient-dedupe/report"
	"github.com/doctoralliance/patient-dedupe/verification"
)

func Dependencies() []fx.Option {
	return []fx.Option{
		fx.Provide(
			newConfig,
			logger.NewProductionLogger,
			logger.Suggar,
			newMatcher,
			dedupe.NewClassifier,
			newGrouper,
			newPatientsService,
			newVerifier,
			newNotifier,
			merge.NewResolver,
			newOrchestrator,
			merge.NewRunner,
			report.NewGenerator,
		),
	}
}

func newConfig() (*config.Config, error) {
	cfg := config.New()
	if err := cfg.LoadFromEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newMatcher(cfg *config.Config) *match.Matcher {
	return match.NewMatcher(cfg.NameSimilarityThreshold)
}

func newGrouper(classifier *dedupe.Classifier, cfg *config.Config, log *zap.SugaredLogger) *dedupe.Grouper {
	strategy := dedupe.StrategyAnchorOnly
	if cfg.GroupingStrategy == config.GroupingStrategyTransitive {
		strategy = dedupe.StrategyTransitiveClosure
	}
	return dedupe.NewGrouper(classifier, strategy, log)
}

func newPatientsService(cfg *config.Config, log *zap.SugaredLogger) patients.Service {
	return patients.NewClient(patients.ClientConfig{
		BaseURL: cfg.BaseURL,
		Token:   cfg.APIToken,
		Timeout: cfg.RequestTimeout,
	}, log)
}

func newVerifier(cfg *config.Config, patientsService patients.Service, log *zap.SugaredLogger) verification.Verifier {
	retriever := verification.NewRetriever(verification.RetrieverConfig{
		DocumentAPIURL: cfg.DocumentAPIURL,
		Token:          cfg.DocumentAPIToken,
		Timeout:        cfg.RequestTimeout,
	}, log)
	extractor := verification.NewOpenAIExtractor(verification.ExtractorConfig{
		Endpoint:   cfg.OpenAIEndpoint,
		APIKey:     cfg.OpenAIKey,
		Deployment: cfg.OpenAIDeployment,
	})
	return verification.NewService(patientsService, retriever, extractor, log)
}

func newNotifier(cfg *config.Config, log *zap.SugaredLogger) rcm.Notifier {
	return rcm.NewClient(rcm.ClientConfig{
		BaseURL: cfg.BaseURL,
		Token:   cfg.APIToken,
		Timeout: cfg.NotificationTimeout,
	}, log)
}

func newOrchestrator(patientsService patients.Service, notifier rcm.Notifier, cfg *config.Config, log *zap.SugaredLogger) *merge.Orchestrator {
	return merge.NewOrchestrator(patientsService, notifier, cfg.EnableRCMCalls, log)
}
