package dashboard

import (
	"context"
	"time"

	"github.com/campuscare/wellness-hub/internal/domain/assessment"
	"github.com/campuscare/wellness-hub/pkg/logger"
)

// AssessmentSource fetches recent assessment results of a student.
type AssessmentSource interface {
	FetchAssessments(ctx context.Context, studentID string, limit int) ([]assessment.Result, error)
}

// AssessmentFetcher loads assessment results. Results are optional
// enrichment: failures are logged and yield an empty list.
type AssessmentFetcher struct {
	source AssessmentSource
	limit  int
	log    *logger.Logger
}

// NewAssessmentFetcher creates a fetcher. A limit of zero means
// assessment.DefaultLimit.
func NewAssessmentFetcher(source AssessmentSource, limit int, log *logger.Logger) *AssessmentFetcher {
	if limit <= 0 {
		limit = assessment.DefaultLimit
	}
	if log == nil {
		log = logger.Nop()
	}
	return &AssessmentFetcher{
		source: source,
		limit:  limit,
		log:    log.With(logger.Component("assessment_fetcher")),
	}
}

// Fetch returns the most recent results of a student. It never fails.
func (f *AssessmentFetcher) Fetch(ctx context.Context, studentID string) []assessment.Result {
	start := time.Now()
	results, err := f.source.FetchAssessments(ctx, studentID, f.limit)
	if err != nil {
		f.log.Error("assessment fetch failed",
			logger.StudentID(studentID),
			logger.Latency(time.Since(start)),
			logger.Err(err),
		)
		return []assessment.Result{}
	}
	if results == nil {
		return []assessment.Result{}
	}
	return results
}
