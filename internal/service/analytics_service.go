package service

import (
	"errors"
	"math"
	"sort"

	"exam_portal_backend/internal/repository"
	"exam_portal_backend/internal/util"

	"gorm.io/gorm"
)

// AnalyticsService derives the dashboard numbers. The repository returns
// flat rows; all statistics are computed here in memory so they stay easy to
// test.
type AnalyticsService struct {
	AnalyticsRepo *repository.AnalyticsRepository
	ExamRepo      *repository.ExamRepository
}

func NewAnalyticsService(ar *repository.AnalyticsRepository, er *repository.ExamRepository) *AnalyticsService {
	return &AnalyticsService{AnalyticsRepo: ar, ExamRepo: er}
}

// ScoreStats summarizes a set of submitted scores.
type ScoreStats struct {
	Count   int     `json:"count"`
	Mean    float64 `json:"mean"`
	Median  float64 `json:"median"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	StdDev  float64 `json:"stdDev"`
	PassPct float64 `json:"passPct"`
}

// ComputeScoreStats derives descriptive statistics over a score slice. The
// pass threshold is a fraction of max score, typically 0.4.
func ComputeScoreStats(scores []float64, maxScore, passFraction float64) ScoreStats {
	stats := ScoreStats{Count: len(scores)}
	if len(scores) == 0 {
		return stats
	}

	sorted := append([]float64(nil), scores...)
	sort.Float64s(sorted)

	sum := 0.0
	passed := 0
	passMark := maxScore * passFraction
	for _, s := range sorted {
		sum += s
		if maxScore > 0 && s >= passMark {
			passed++
		}
	}
	stats.Mean = sum / float64(len(sorted))
	stats.Min = sorted[0]
	stats.Max = sorted[len(sorted)-1]

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		stats.Median = (sorted[mid-1] + sorted[mid]) / 2
	} else {
		stats.Median = sorted[mid]
	}

	variance := 0.0
	for _, s := range sorted {
		d := s - stats.Mean
		variance += d * d
	}
	stats.StdDev = math.Sqrt(variance / float64(len(sorted)))
	stats.PassPct = float64(passed) / float64(len(sorted)) * 100
	return stats
}

// ScoreBucket is one bar of the score distribution histogram.
type ScoreBucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// BucketScores groups percentage scores into ten-point bands from 0-10% up
// to 90-100%. Scores above 100% (ungraded max or bonus marks) land in the
// top band.
func BucketScores(scores []float64, maxScore float64) []ScoreBucket {
	labels := []string{
		"0-10%", "10-20%", "20-30%", "30-40%", "40-50%",
		"50-60%", "60-70%", "70-80%", "80-90%", "90-100%",
	}
	buckets := make([]ScoreBucket, len(labels))
	for i, l := range labels {
		buckets[i] = ScoreBucket{Label: l}
	}
	if maxScore <= 0 {
		return buckets
	}
	for _, s := range scores {
		pct := s / maxScore * 100
		idx := int(pct / 10)
		if idx >= len(buckets) {
			idx = len(buckets) - 1
		}
		if idx < 0 {
			idx = 0
		}
		buckets[idx].Count++
	}
	return buckets
}

type ExamAnalytics struct {
	ExamID       string              `json:"examId"`
	Submitted    int                 `json:"submitted"`
	FullyGraded  int                 `json:"fullyGraded"`
	Timeouts     int                 `json:"timeouts"`
	Stats        ScoreStats          `json:"stats"`
	Distribution []ScoreBucket       `json:"distribution"`
	ByDepartment map[uint]ScoreStats `json:"byDepartment,omitempty"`
}

// ExamAnalytics builds the per-exam report: aggregate statistics, the score
// histogram, and a per-department breakdown. Only fully graded submissions
// enter the statistics; pending ones are counted but not averaged.
func (s *AnalyticsService) ExamAnalytics(claims *util.Claims, examID string) (*ExamAnalytics, error) {
	exam, err := s.ExamRepo.FindByID(examID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrExamNotFound
		}
		return nil, err
	}
	if exam.InstitutionID != claims.InstitutionID {
		return nil, util.ErrExamNotFound
	}

	rows, err := s.AnalyticsRepo.ScoresByExam(examID)
	if err != nil {
		return nil, err
	}

	report := &ExamAnalytics{ExamID: examID, Submitted: len(rows)}
	maxScore := 0.0
	var graded []float64
	deptScores := make(map[uint][]float64)
	for _, r := range rows {
		if r.IsTimeout {
			report.Timeouts++
		}
		if r.MaxPossibleScore > maxScore {
			maxScore = r.MaxPossibleScore
		}
		if r.GradingStatus != "completed" {
			continue
		}
		report.FullyGraded++
		graded = append(graded, r.TotalScore)
		if r.DepartmentID != nil {
			deptScores[*r.DepartmentID] = append(deptScores[*r.DepartmentID], r.TotalScore)
		}
	}

	report.Stats = ComputeScoreStats(graded, maxScore, 0.4)
	report.Distribution = BucketScores(graded, maxScore)
	if len(deptScores) > 0 {
		report.ByDepartment = make(map[uint]ScoreStats, len(deptScores))
		for dept, scores := range deptScores {
			report.ByDepartment[dept] = ComputeScoreStats(scores, maxScore, 0.4)
		}
	}
	return report, nil
}

type InstitutionOverview struct {
	Students        int64            `json:"students"`
	Teachers        int64            `json:"teachers"`
	Exams           int64            `json:"exams"`
	PublishedExams  int64            `json:"publishedExams"`
	Submissions     map[string]int64 `json:"submissionsByGradingStatus"`
	FlaggedSessions int64            `json:"flaggedSessions"`
}

func (s *AnalyticsService) InstitutionOverview(claims *util.Claims) (*InstitutionOverview, error) {
	byRole, err := s.AnalyticsRepo.CountUsersByRole(claims.InstitutionID)
	if err != nil {
		return nil, err
	}
	total, published, err := s.AnalyticsRepo.CountExams(claims.InstitutionID)
	if err != nil {
		return nil, err
	}
	byStatus, err := s.AnalyticsRepo.CountSessionsByGradingStatus(claims.InstitutionID)
	if err != nil {
		return nil, err
	}
	flagged, err := s.AnalyticsRepo.CountFlaggedSessions(claims.InstitutionID)
	if err != nil {
		return nil, err
	}
	return &InstitutionOverview{
		Students:        byRole["student"],
		Teachers:        byRole["teacher"],
		Exams:           total,
		PublishedExams:  published,
		Submissions:     byStatus,
		FlaggedSessions: flagged,
	}, nil
}
