package intent

import (
	"context"
	"fmt"
	"sort"

	"github.com/termai/termai/internal/llm"
	"github.com/termai/termai/internal/logger"
	"github.com/termai/termai/internal/patterns"
	"github.com/termai/termai/internal/probe"
)

const (
	// scoreFloor is the minimum winning score; below it the utterance
	// is labeled unknown.
	scoreFloor = 0.1

	// Rule-hit multipliers per evidence source.
	utteranceErrorFactor = 0.8
	snapshotErrorFactor  = 1.2

	// Context boosts applied after the base score.
	boostProjectAffinity = 0.10
	boostGitChanges      = 0.15
	boostRecentError     = 0.10
)

// Classifier labels utterances. The zero refinement threshold disables
// the LLM path entirely.
type Classifier struct {
	refineThreshold float64
	capability      llm.Capability
}

// ClassifierOption configures a Classifier.
type ClassifierOption func(*Classifier)

// WithRefinement enables LLM refinement for labels whose confidence is
// below threshold.
func WithRefinement(capability llm.Capability, threshold float64) ClassifierOption {
	return func(c *Classifier) {
		c.capability = capability
		c.refineThreshold = threshold
	}
}

// NewClassifier creates a Classifier.
func NewClassifier(opts ...ClassifierOption) *Classifier {
	c := &Classifier{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify labels the utterance. With refinement disabled this is a
// pure function of (utterance, snapshot).
func (c *Classifier) Classify(ctx context.Context, utterance string, snap *probe.Snapshot) Label {
	label := classifyPatterns(utterance, snap)
	label.Gaps = analyzeGaps(label.Category, snap)

	if c.capability != nil && label.Confidence < c.refineThreshold {
		if refined, ok := c.refine(ctx, utterance, snap, label); ok {
			refined.Gaps = analyzeGaps(refined.Category, snap)
			return refined
		}
	}
	return label
}

// classifyPatterns is the deterministic scoring pass.
func classifyPatterns(utterance string, snap *probe.Snapshot) Label {
	scores := make(map[patterns.Category]float64)
	signals := make(map[patterns.Category][]string)

	// Keyword rules on the utterance.
	for _, rule := range patterns.CategoryRules {
		for _, kw := range rule.Keywords {
			if kw.MatchString(utterance) {
				scores[rule.Category] += rule.Weight
				signals[rule.Category] = append(signals[rule.Category],
					fmt.Sprintf("keyword:%s", kw.String()))
			}
		}
	}

	// Error signatures on the utterance.
	for _, ep := range patterns.ErrorPatterns {
		if !ep.Regexp.MatchString(utterance) {
			continue
		}
		for _, cat := range ep.Categories {
			scores[cat] += utteranceErrorFactor * weightOf(cat)
			signals[cat] = append(signals[cat], fmt.Sprintf("error:%s", ep.Name))
		}
	}

	// Error signatures on the most recent observed error.
	if recent := mostRecentError(snap); recent != "" {
		for _, ep := range patterns.ErrorPatterns {
			if !ep.Regexp.MatchString(recent) {
				continue
			}
			for _, cat := range ep.Categories {
				scores[cat] += snapshotErrorFactor * weightOf(cat)
				signals[cat] = append(signals[cat], fmt.Sprintf("recent-error:%s", ep.Name))
			}
		}
	}

	best, bestScore := pickBest(scores)
	if bestScore < scoreFloor {
		return Label{Category: patterns.CategoryUnknown, Confidence: 0}
	}

	confidence := bestScore
	if confidence > 1.0 {
		confidence = 1.0
	}

	lbl := Label{Category: best, Confidence: confidence, Signals: signals[best]}
	lbl.Confidence = applyBoosts(lbl.Confidence, best, snap, &lbl)
	return lbl
}

// applyBoosts applies the context boosts, capping at 1.0.
func applyBoosts(confidence float64, cat patterns.Category, snap *probe.Snapshot, lbl *Label) float64 {
	if snap == nil {
		return confidence
	}

	if cats, ok := patterns.ProjectAffinity[snap.Project.Kind]; ok {
		for _, c := range cats {
			if c == cat {
				confidence += boostProjectAffinity
				lbl.Signals = append(lbl.Signals, "boost:project-kind")
				break
			}
		}
	}

	if cat == patterns.CategoryGit && snap.Git.HasChanges {
		confidence += boostGitChanges
		lbl.Signals = append(lbl.Signals, "boost:git-changes")
	}

	if len(snap.State.RecentErrors) > 0 && cat != patterns.CategoryHowTo {
		confidence += boostRecentError
		lbl.Signals = append(lbl.Signals, "boost:recent-error")
	}

	if confidence > 1.0 {
		confidence = 1.0
	}
	return confidence
}

// pickBest chooses the highest-scoring category; ties break by the
// declaration order of the closed set so the result is deterministic.
func pickBest(scores map[patterns.Category]float64) (patterns.Category, float64) {
	ordered := make([]patterns.Category, 0, len(scores))
	for cat := range scores {
		ordered = append(ordered, cat)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return categoryRank(ordered[i]) < categoryRank(ordered[j])
	})

	var (
		best      = patterns.CategoryUnknown
		bestScore float64
	)
	for _, cat := range ordered {
		if scores[cat] > bestScore {
			best, bestScore = cat, scores[cat]
		}
	}
	return best, bestScore
}

func categoryRank(cat patterns.Category) int {
	for i, c := range patterns.Categories {
		if c == cat {
			return i
		}
	}
	return len(patterns.Categories)
}

func weightOf(cat patterns.Category) float64 {
	for _, rule := range patterns.CategoryRules {
		if rule.Category == cat {
			return rule.Weight
		}
	}
	return 0.5
}

func mostRecentError(snap *probe.Snapshot) string {
	if snap == nil || len(snap.State.RecentErrors) == 0 {
		return ""
	}
	return snap.State.RecentErrors[len(snap.State.RecentErrors)-1].Message
}

// logLabel is a debug helper shared with refinement.
func logLabel(ctx context.Context, prefix string, lbl Label) {
	logger.Debug(ctx, prefix,
		"category", string(lbl.Category),
		"confidence", lbl.Confidence,
		"signals", len(lbl.Signals),
		"gaps", len(lbl.Gaps))
}
