// Package orchestrator drives a submitted analysis through the pipeline
// state machine, persisting a progress snapshot after every stage.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "symptom-pipeline/internal/common/errors"
	"symptom-pipeline/internal/common/logger"
	"symptom-pipeline/internal/common/metrics"
	"symptom-pipeline/internal/common/observability"
	"symptom-pipeline/internal/models"
	"symptom-pipeline/internal/session"
	coarsesearch "symptom-pipeline/internal/steps/coarse-search"
	deepresearch "symptom-pipeline/internal/steps/deep-research"
	extractdocuments "symptom-pipeline/internal/steps/extract-documents"
	findclinics "symptom-pipeline/internal/steps/find-clinics"
	forumdebate "symptom-pipeline/internal/steps/forum-debate"
	redacttext "symptom-pipeline/internal/steps/redact-text"
	resolvelocation "symptom-pipeline/internal/steps/resolve-location"
	scoreconditions "symptom-pipeline/internal/steps/score-conditions"
)

// Progress slice boundaries for each stage. Deep research interpolates
// between its entry and exit values as batches complete.
const (
	progressSanitizing        = 10
	progressResearching       = 20
	progressDeepResearchStart = 40
	progressDeepResearchEnd   = 70
	progressDebating          = 70
	progressAnalyzing         = 85
	progressFindingClinics    = 90
	progressCompleted         = 100
)

const shortSymptomThreshold = 50

const (
	shortSymptomsWarning = "Brief symptom descriptions may lead to less accurate results. Consider adding more detail."
	lowConfidenceWarning = "Overall confidence in these results is low. Please consult a healthcare professional for a reliable diagnosis."
)

// Steps bundles the pipeline step handlers the orchestrator calls in order.
type Steps struct {
	ExtractDocuments *extractdocuments.Handler
	RedactText       *redacttext.Handler
	ResolveLocation  *resolvelocation.Handler
	CoarseSearch     *coarsesearch.Handler
	DeepResearch     *deepresearch.Handler
	ForumDebate      *forumdebate.Handler
	ScoreConditions  *scoreconditions.Handler
	FindClinics      *findclinics.Handler
}

type Orchestrator struct {
	store  *session.Store
	steps  Steps
	obs    *observability.Observability
	logger logger.Logger
}

func New(store *session.Store, steps Steps, obs *observability.Observability, log logger.Logger) *Orchestrator {
	return &Orchestrator{
		store:  store,
		steps:  steps,
		obs:    obs,
		logger: log,
	}
}

// Run executes the full pipeline for one session. It is the session's single
// writer: the poll endpoint only ever reads the snapshots written here.
// Errors are terminal; they move the session to failed and stop the run.
func (o *Orchestrator) Run(ctx context.Context, sessionID string, req *models.AnalysisRequest) {
	start := time.Now()
	metrics.PipelineRunsActive.Inc()
	defer metrics.PipelineRunsActive.Dec()

	log := o.logger.With(map[string]interface{}{"sessionId": sessionID})

	outcome := "completed"
	if err := o.run(ctx, sessionID, req, log); err != nil {
		outcome = "failed"
		o.fail(ctx, sessionID, err, log)
	}

	metrics.PipelineRunsCompleted.WithLabelValues(outcome).Inc()
	o.obs.RecordRunProcessed(ctx, outcome)
	o.obs.RecordRunDuration(ctx, time.Since(start), outcome)
}

func (o *Orchestrator) run(ctx context.Context, sessionID string, req *models.AnalysisRequest, log logger.Logger) error {
	// Stage: sanitizing — combine documents, scrub PII.
	if err := o.advance(ctx, sessionID, models.StatusSanitizing, progressSanitizing); err != nil {
		return err
	}

	stageStart := time.Now()
	extracted, err := o.steps.ExtractDocuments.Execute(ctx, &extractdocuments.Input{
		Symptoms:  req.Symptoms,
		Documents: req.Documents,
	})
	if err != nil {
		return fmt.Errorf("document extraction failed: %w", err)
	}

	redacted, err := o.steps.RedactText.Execute(ctx, &redacttext.Input{Text: extracted.CombinedText})
	if err != nil {
		return fmt.Errorf("sanitization failed: %w", err)
	}
	sanitized := redacted.SanitizedText
	o.recordStage(ctx, "sanitizing", stageStart)

	// Repeat submissions short-circuit on the fingerprint cache.
	fingerprint := session.Fingerprint(sanitized)
	if cached, ok := o.store.CachedResult(ctx, fingerprint); ok {
		metrics.FingerprintCacheHits.WithLabelValues("hit").Inc()
		log.Info("fingerprint cache hit, skipping pipeline", map[string]interface{}{
			"fingerprint": fingerprint,
		})
		return o.complete(ctx, sessionID, cached)
	}
	metrics.FingerprintCacheHits.WithLabelValues("miss").Inc()

	// Stage: researching — coarse condition identification.
	if err := o.advance(ctx, sessionID, models.StatusResearching, progressResearching); err != nil {
		return err
	}

	stageStart = time.Now()
	coarse, err := o.steps.CoarseSearch.Execute(ctx, &coarsesearch.Input{
		SanitizedText: sanitized,
		PatientAge:    req.PatientAge,
		PatientSex:    req.PatientSex,
	})
	if err != nil {
		return apperrors.NewCoarseSearchFailedError(err)
	}
	o.recordStage(ctx, "researching", stageStart)

	// An empty candidate list is a business-rule failure: there is nothing
	// for the rest of the pipeline to work on.
	if len(coarse.Conditions) == 0 {
		return apperrors.NewNoConditionsFoundError(len(req.Symptoms))
	}

	// Stage: deep_research — batched concurrent evidence lookups, with the
	// progress value interpolated across the stage's slice per batch.
	if err := o.advance(ctx, sessionID, models.StatusDeepResearch, progressDeepResearchStart); err != nil {
		return err
	}

	stageStart = time.Now()
	research, err := o.steps.DeepResearch.ExecuteBatches(ctx, &deepresearch.Input{
		Conditions:    coarse.Conditions,
		SanitizedText: sanitized,
	}, func(done, total int) {
		span := progressDeepResearchEnd - progressDeepResearchStart
		progress := progressDeepResearchStart + span*done/total
		if updateErr := o.updateProgress(ctx, sessionID, progress); updateErr != nil {
			log.Warn("failed to update batch progress", map[string]interface{}{
				"error": updateErr.Error(),
			})
		}
	})
	if err != nil {
		return fmt.Errorf("deep research failed: %w", err)
	}
	o.recordStage(ctx, "deep_research", stageStart)

	// Stage: debating — confidence assignment.
	if err := o.advance(ctx, sessionID, models.StatusDebating, progressDebating); err != nil {
		return err
	}

	stageStart = time.Now()
	debate, err := o.steps.ForumDebate.Execute(ctx, &forumdebate.Input{Findings: research.Findings})
	if err != nil {
		return fmt.Errorf("debate step failed: %w", err)
	}
	o.recordStage(ctx, "debating", stageStart)

	// Stage: analyzing — scoring, filtering, ranking.
	if err := o.advance(ctx, sessionID, models.StatusAnalyzing, progressAnalyzing); err != nil {
		return err
	}

	confidences := make([]float64, len(debate.Assessments))
	for i, a := range debate.Assessments {
		confidences[i] = a.Confidence
	}

	stageStart = time.Now()
	scored, err := o.steps.ScoreConditions.Execute(ctx, &scoreconditions.Input{
		Findings:      research.Findings,
		Confidences:   confidences,
		SanitizedText: sanitized,
	})
	if err != nil {
		return fmt.Errorf("scoring failed: %w", err)
	}
	o.recordStage(ctx, "analyzing", stageStart)

	// Stage: finding_clinics — location resolution plus provider lookup.
	if err := o.advance(ctx, sessionID, models.StatusFindingClinics, progressFindingClinics); err != nil {
		return err
	}

	stageStart = time.Now()
	clinics := o.findClinics(ctx, req, scored.Results, log)
	o.recordStage(ctx, "finding_clinics", stageStart)

	result := &models.AnalysisResult{
		Warning:    buildWarning(req.Symptoms, scored),
		Conditions: scored.Results,
		Clinics:    clinics,
	}

	o.store.CacheResult(ctx, fingerprint, result)
	return o.complete(ctx, sessionID, result)
}

// findClinics resolves a coarse location and queries providers for the
// top-ranked condition's specialty. Both collaborators degrade rather than
// fail, so this never returns an error.
func (o *Orchestrator) findClinics(ctx context.Context, req *models.AnalysisRequest, conditions []models.ConditionResult, log logger.Logger) []models.ClinicResult {
	if len(conditions) == 0 {
		return []models.ClinicResult{}
	}

	location, err := o.steps.ResolveLocation.Execute(ctx, &resolvelocation.Input{
		ClientIP: req.ClientIP,
		Provided: req.Location,
	})
	if err != nil {
		log.Warn("location resolution failed", map[string]interface{}{"error": err.Error()})
		return []models.ClinicResult{}
	}

	clinics, err := o.steps.FindClinics.Execute(ctx, &findclinics.Input{
		Location:  location.Location,
		Specialty: findclinics.SpecialtyForCondition(conditions[0].Name),
	})
	if err != nil {
		log.Warn("clinic discovery failed", map[string]interface{}{"error": err.Error()})
		return []models.ClinicResult{}
	}

	return clinics.Clinics
}

// buildWarning joins the scoring warning with the general submission-quality
// warnings into a single message.
func buildWarning(symptoms string, scored *scoreconditions.Output) string {
	var warnings []string

	if len(strings.TrimSpace(symptoms)) < shortSymptomThreshold {
		warnings = append(warnings, shortSymptomsWarning)
	}
	if scored.Warning != "" {
		warnings = append(warnings, scored.Warning)
	}
	if len(scored.Results) > 0 {
		total := 0.0
		for _, r := range scored.Results {
			total += r.Confidence
		}
		if total/float64(len(scored.Results)) < 0.5 {
			warnings = append(warnings, lowConfidenceWarning)
		}
	}

	return strings.Join(warnings, " ")
}

func (o *Orchestrator) advance(ctx context.Context, sessionID string, status models.Status, progress int) error {
	_, err := o.store.Update(ctx, sessionID, models.SessionUpdate{
		Status:   &status,
		Progress: &progress,
	})
	if err != nil {
		return apperrors.NewSessionStoreFailedError(err)
	}
	return nil
}

func (o *Orchestrator) updateProgress(ctx context.Context, sessionID string, progress int) error {
	_, err := o.store.Update(ctx, sessionID, models.SessionUpdate{Progress: &progress})
	return err
}

func (o *Orchestrator) complete(ctx context.Context, sessionID string, result *models.AnalysisResult) error {
	status := models.StatusCompleted
	progress := progressCompleted
	_, err := o.store.Update(ctx, sessionID, models.SessionUpdate{
		Status:   &status,
		Progress: &progress,
		Result:   result,
	})
	if err != nil {
		return fmt.Errorf("failed to persist result: %w", err)
	}
	return nil
}

// fail moves the session to the terminal failed state. No partial result is
// exposed for a failed session.
func (o *Orchestrator) fail(ctx context.Context, sessionID string, runErr error, log logger.Logger) {
	msg := runErr.Error()

	var stdErr *apperrors.StandardError
	if errors.As(runErr, &stdErr) {
		// Pollers get the human-readable message, not the wrapped detail.
		msg = stdErr.Message
		metrics.ExternalCallsFailed.WithLabelValues(
			strings.ToLower(apperrors.GetErrorCategory(stdErr.Code)),
			string(stdErr.Code),
		).Inc()
	}

	log.Error("pipeline run failed", map[string]interface{}{"error": runErr.Error()})

	status := models.StatusFailed
	if _, err := o.store.Update(ctx, sessionID, models.SessionUpdate{
		Status: &status,
		Error:  &msg,
	}); err != nil {
		log.Error("failed to record failure state", map[string]interface{}{"error": err.Error()})
	}
}

func (o *Orchestrator) recordStage(ctx context.Context, stage string, start time.Time) {
	elapsed := time.Since(start)
	metrics.PipelineStageDuration.WithLabelValues(stage).Observe(elapsed.Seconds())
	o.obs.RecordStageDuration(ctx, stage, elapsed)
}
