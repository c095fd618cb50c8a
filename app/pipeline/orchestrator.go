package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/araddon/dateparse"

	"github.com/localpulse/pulse/app/database"
	"github.com/localpulse/pulse/app/taxonomy"
)

const (
	// Articles below this suitability skip matching and recommendations.
	suitabilityGate = 0.3
	// Pairs must score above this relevance to receive recommendations.
	relevanceGate = 0.4
)

// SnapshotProvider yields the taxonomy snapshot an article run reads.
type SnapshotProvider interface {
	Current() *taxonomy.Snapshot
}

// CrossChecker is the optional LLM second-opinion stage.
type CrossChecker interface {
	CrossCheck(ctx context.Context, title, content string) (*LLMExtraction, error)
}

// Result summarizes one article run.
type Result struct {
	Success                bool
	Processed              bool
	SuitabilityScore       float64
	RelevanceScore         float64
	MatchingBusinesses     int
	RecommendationsCreated int
	Features               Features
}

// Orchestrator runs the full pipeline for one article: extraction,
// scoring, matching, and recommendation generation, persisted in a
// single transaction. Repeated invocation on the same article is safe.
type Orchestrator struct {
	articles   database.ArticleRepository
	businesses database.BusinessRepository
	uow        database.UnitOfWork
	snapshots  SnapshotProvider

	extractor  *FeatureExtractor
	calculator *Calculator
	prefilter  *PreFilter
	geo        *GeographicMatcher
	matcher    *BusinessMatcher
	generator  *RecommendationGenerator
	llm        CrossChecker // nil when disabled

	referenceCity string
	now           func() time.Time
}

func NewOrchestrator(
	articles database.ArticleRepository,
	businesses database.BusinessRepository,
	uow database.UnitOfWork,
	snapshots SnapshotProvider,
	extractor *FeatureExtractor,
	prefilter *PreFilter,
	geo *GeographicMatcher,
	llm CrossChecker,
	referenceCity string,
) *Orchestrator {
	return &Orchestrator{
		articles:      articles,
		businesses:    businesses,
		uow:           uow,
		snapshots:     snapshots,
		extractor:     extractor,
		calculator:    NewCalculator(),
		prefilter:     prefilter,
		geo:           geo,
		matcher:       NewBusinessMatcher(),
		generator:     NewRecommendationGenerator(),
		llm:           llm,
		referenceCity: referenceCity,
		now:           time.Now,
	}
}

// Process runs one article end to end. On any failure the run's
// mutations roll back, the error message is recorded on the article
// outside the failed transaction, and the error is returned for the
// scheduler's retry policy.
func (o *Orchestrator) Process(ctx context.Context, articleID string) (*Result, error) {
	article, err := o.articles.GetArticle(ctx, articleID)
	if err != nil {
		return nil, o.fail(ctx, articleID, "load", err)
	}
	if article == nil {
		return nil, &ProcessingError{ArticleID: articleID, Stage: "load", Err: fmt.Errorf("article not found")}
	}

	snap := o.snapshots.Current()
	if snap == nil {
		return nil, o.fail(ctx, articleID, "taxonomy", fmt.Errorf("no taxonomy snapshot available"))
	}

	now := o.now()
	feats := o.extractor.ExtractAll(article.Title, article.Content, snap, now)
	bc := o.calculator.Calculate(article.Title, article.Content, feats, snap)

	ref, err := o.businesses.GetReferenceBusiness(ctx, o.referenceCity)
	if err != nil {
		return nil, o.fail(ctx, articleID, "reference business", err)
	}

	suitability := o.prefilter.Suitability(article.Title, article.Content, feats, bc, ref)

	if suitability >= suitabilityGate && o.llm != nil {
		o.crossCheck(ctx, article, &feats, &bc, snap)
	}

	o.applyFeatures(article, feats, bc, suitability, snap)

	if suitability < suitabilityGate {
		err := o.uow.Run(ctx, func(tx database.RunStore) error {
			if err := tx.SaveExtraction(ctx, article); err != nil {
				return err
			}
			return tx.SaveScores(ctx, article)
		})
		if err != nil {
			return nil, o.fail(ctx, articleID, "persist", err)
		}

		slog.Debug("Article below suitability gate",
			"article_id", articleID, "suitability", suitability)

		return &Result{
			Success:          true,
			Processed:        false,
			SuitabilityScore: suitability,
			Features:         feats,
		}, nil
	}

	businesses, err := o.businesses.GetActiveBusinesses(ctx)
	if err != nil {
		return nil, o.fail(ctx, articleID, "businesses", err)
	}

	type match struct {
		business  database.Business
		relevance float64
	}

	var matches []match
	maxRelevance := 0.0
	for _, business := range businesses {
		if !o.geo.Eligible(feats, business) {
			continue
		}

		relevance := o.matcher.Relevance(article, feats, suitability, business, snap)
		if relevance > maxRelevance {
			maxRelevance = relevance
		}
		if relevance > relevanceGate {
			matches = append(matches, match{business: business, relevance: relevance})
		}
	}

	article.RelevanceScore = maxRelevance

	created := 0
	err = o.uow.Run(ctx, func(tx database.RunStore) error {
		if err := tx.SaveExtraction(ctx, article); err != nil {
			return err
		}
		if err := tx.SaveScores(ctx, article); err != nil {
			return err
		}
		for _, m := range matches {
			recs := o.generator.Generate(article, feats, m.business, m.relevance, now)
			if err := tx.ReconcileRecommendations(ctx, article.ID, m.business.ID, recs); err != nil {
				return err
			}
			created += len(recs)
		}
		return nil
	})
	if err != nil {
		return nil, o.fail(ctx, articleID, "persist", err)
	}

	slog.Info("Article processed",
		"article_id", articleID,
		"event_type", article.EventType,
		"suitability", suitability,
		"max_relevance", maxRelevance,
		"matches", len(matches),
		"recommendations", created)

	return &Result{
		Success:                true,
		Processed:              true,
		SuitabilityScore:       suitability,
		RelevanceScore:         maxRelevance,
		MatchingBusinesses:     len(matches),
		RecommendationsCreated: created,
		Features:               feats,
	}, nil
}

// crossCheck runs the optional LLM second opinion. It fills a missing
// classification and empty location, date and attendance fields, and
// overwrites sport fields at high confidence. Its failure only logs.
func (o *Orchestrator) crossCheck(ctx context.Context, article *database.Article, feats *Features, bc *BroadcastResult, snap *taxonomy.Snapshot) {
	extraction, err := o.llm.CrossCheck(ctx, article.Title, article.Content)
	if err != nil {
		slog.Warn("LLM cross-check failed, continuing without it",
			"article_id", article.ID, "error", err)
		return
	}

	recalc := false
	if feats.EventType == "" {
		feats.EventType = extraction.EventType
		recalc = true
	}
	if feats.City == "" && extraction.City != "" {
		feats.City = extraction.City
	}
	if feats.Venue == "" && extraction.Venue != "" {
		feats.Venue = extraction.Venue
	}
	if feats.EventStart == nil && extraction.EventDate != "" {
		if ts, err := dateparse.ParseAny(extraction.EventDate); err == nil {
			feats.EventStart = &ts
		}
	}
	if feats.Attendance == nil && extraction.Attendance != nil {
		feats.Attendance = extraction.Attendance
		recalc = true
	}
	if recalc {
		*bc = *o.recalculate(article, *feats, snap)
	}

	if extraction.Confidence >= 0.7 {
		if extraction.SportType != "" {
			bc.SportType = extraction.SportType
		}
		if extraction.CompetitionLevel != "" {
			bc.CompetitionLevel = extraction.CompetitionLevel
		}
	}
}

func (o *Orchestrator) recalculate(article *database.Article, feats Features, snap *taxonomy.Snapshot) *BroadcastResult {
	bc := o.calculator.Calculate(article.Title, article.Content, feats, snap)
	return &bc
}

// applyFeatures copies the run's results onto the article's
// pipeline-owned fields. They are always set together.
func (o *Orchestrator) applyFeatures(article *database.Article, feats Features, bc BroadcastResult, suitability float64, snap *taxonomy.Snapshot) {
	article.EventType = feats.EventType
	article.EventSubtype = feats.EventSubtype
	if meta, ok := snap.EventTypes[feats.EventType]; ok {
		article.Category = meta.DisplayCategory
		article.Subcategory = meta.DisplaySubcategory
	} else {
		article.Category = ""
		article.Subcategory = ""
	}

	article.SportType = bc.SportType
	article.CompetitionLevel = bc.CompetitionLevel

	article.City = feats.City
	article.Neighborhood = feats.Neighborhood
	article.Venue = feats.Venue
	article.Country = feats.Country

	article.EventStart = feats.EventStart
	article.EventEnd = feats.EventEnd
	article.DurationHours = feats.DurationHours
	article.ExpectedAttendance = feats.Attendance
	article.Scale = feats.Scale
	article.LocalInvolvement = feats.LocalInvolvement

	article.BroadcastabilityScore = bc.Score
	article.HypeScore = bc.HypeScore
	article.IsBroadcastable = bc.IsBroadcastable
	article.SuitabilityScore = suitability
	article.RelevanceScore = 0
	article.CompletenessScore = feats.Completeness()

	article.Processed = true
	article.LastError = ""
}

// fail wraps err as a ProcessingError and records the message on the
// article so the operator can see why the run was rolled back.
func (o *Orchestrator) fail(ctx context.Context, articleID, stage string, err error) error {
	perr := &ProcessingError{ArticleID: articleID, Stage: stage, Err: err}

	if recErr := o.articles.SetProcessingError(ctx, articleID, perr.Error()); recErr != nil {
		slog.Error("Failed to record processing error",
			"article_id", articleID, "error", recErr)
	}

	return perr
}
