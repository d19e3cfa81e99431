package dedupe

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/doctoralliance/patient-dedupe/patients"
)

type Strategy string

const (
	// StrategyAnchorOnly attaches a record to a group when it matches the
	// group's anchor, regardless of the other members.
	StrategyAnchorOnly Strategy = "anchor"
	// StrategyTransitiveClosure clusters records that are connected through
	// any chain of pairwise duplicates.
	StrategyTransitiveClosure Strategy = "transitive"
)

// Group is a cluster of records judged to denote one person. Members keep the
// order of the tenant's patient list.
type Group struct {
	Members []patients.Patient
}

type Grouper struct {
	classifier *Classifier
	strategy   Strategy
	logger     *zap.SugaredLogger
}

func NewGrouper(classifier *Classifier, strategy Strategy, logger *zap.SugaredLogger) *Grouper {
	return &Grouper{
		classifier: classifier,
		strategy:   strategy,
		logger:     logger,
	}
}

// Group partitions the tenant's patient list into duplicate groups of size
// two or more. Singleton groups are discarded.
func (g *Grouper) Group(records []patients.Patient) ([]Group, error) {
	var groups []Group
	var err error
	switch g.strategy {
	case StrategyTransitiveClosure:
		groups, err = g.clusterTransitive(records)
	case StrategyAnchorOnly, "":
		groups = g.groupByAnchor(records)
	default:
		return nil, fmt.Errorf("unknown grouping strategy %q", g.strategy)
	}
	if err != nil {
		return nil, err
	}

	g.logger.Infow("grouped duplicate patients", "patients", len(records), "groups", len(groups), "strategy", g.strategy)
	return groups, nil
}

func (g *Grouper) groupByAnchor(records []patients.Patient) []Group {
	groups := make([]Group, 0)
	assigned := make(map[int]struct{})

	for i, anchor := range records {
		if _, ok := assigned[i]; ok {
			continue
		}
		assigned[i] = struct{}{}
		members := []patients.Patient{anchor}

		for j := i + 1; j < len(records); j++ {
			if _, ok := assigned[j]; ok {
				continue
			}
			classification := g.classifier.Classify(anchor, records[j])
			if classification.IsDuplicate {
				g.logger.Debugw("duplicate found",
					"rule", classification.Rule,
					"anchorId", anchor.Id,
					"patientId", records[j].Id,
					"nameScore", classification.Name.Score,
				)
				members = append(members, records[j])
				assigned[j] = struct{}{}
			}
		}

		if len(members) > 1 {
			groups = append(groups, Group{Members: members})
		}
	}

	return groups
}
