package scoring

import (
	"testing"
	"time"

	"exam_portal_backend/internal/model"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func mcq(id string, marks float64, correct int) Question {
	return Question{ID: id, Type: model.QuestionMCQ, Marks: marks, CorrectOption: intPtr(correct)}
}

func saq(id string, marks float64) Question {
	return Question{ID: id, Type: model.QuestionSAQ, Marks: marks}
}

func coding(id string, marks float64) Question {
	return Question{ID: id, Type: model.QuestionCoding, Marks: marks}
}

func TestAutoGrade_MCQ(t *testing.T) {
	tests := []struct {
		name      string
		value     *string
		correct   int
		marks     float64
		isCorrect bool
		earned    float64
	}{
		{name: "exact match", value: strPtr("2"), correct: 2, marks: 5, isCorrect: true, earned: 5},
		{name: "match with whitespace", value: strPtr(" 1 "), correct: 1, marks: 3, isCorrect: true, earned: 3},
		{name: "wrong option", value: strPtr("0"), correct: 2, marks: 5, isCorrect: false, earned: 0},
		{name: "unanswered", value: nil, correct: 0, marks: 5, isCorrect: false, earned: 0},
		{name: "non-numeric value", value: strPtr("banana"), correct: 0, marks: 5, isCorrect: false, earned: 0},
		{name: "empty string", value: strPtr(""), correct: 0, marks: 5, isCorrect: false, earned: 0},
		{name: "zero marks question", value: strPtr("1"), correct: 1, marks: 0, isCorrect: true, earned: 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			raw := map[string]RawAnswer{}
			if tc.value != nil {
				raw["q1"] = RawAnswer{Value: tc.value}
			}
			res := AutoGrade([]Question{mcq("q1", tc.marks, tc.correct)}, raw)

			a := res.Answers["q1"]
			if a == nil {
				t.Fatal("answer record missing")
			}
			if a.IsCorrect == nil || *a.IsCorrect != tc.isCorrect {
				t.Fatalf("expected isCorrect=%v, got=%v", tc.isCorrect, a.IsCorrect)
			}
			if a.MarksObtained == nil {
				t.Fatal("mcq marksObtained must never be nil after auto-grade")
			}
			if *a.MarksObtained != tc.earned {
				t.Fatalf("expected marks=%v, got=%v", tc.earned, *a.MarksObtained)
			}
			if tc.value == nil && a.Answer != nil {
				t.Fatalf("unanswered mcq must record answer as null, got=%q", *a.Answer)
			}
		})
	}
}

func TestAutoGrade_ManualQuestionsStayPending(t *testing.T) {
	raw := map[string]RawAnswer{
		"s1": {Value: strPtr("short answer text")},
		"c1": {Value: strPtr("print(42)"), Output: []byte(`{"stdout":"42\n"}`)},
	}
	res := AutoGrade([]Question{saq("s1", 10), coding("c1", 20), saq("s2", 5)}, raw)

	for _, id := range []string{"s1", "c1", "s2"} {
		a := res.Answers[id]
		if a.MarksObtained != nil {
			t.Fatalf("%s: manual question graded at submit time", id)
		}
		if a.GradingStatus != GradePending {
			t.Fatalf("%s: expected pending, got=%s", id, a.GradingStatus)
		}
	}
	if got := *res.Answers["s2"].Answer; got != "" {
		t.Fatalf("absent saq answer should be recorded as empty string, got=%q", got)
	}
	if len(res.Answers["c1"].Output) == 0 {
		t.Fatal("coding execution output was dropped")
	}
	if res.TotalScore != 0 {
		t.Fatalf("manual questions must contribute 0 before grading, total=%v", res.TotalScore)
	}
	if res.MaxPossibleScore != 35 {
		t.Fatalf("expected max=35, got=%v", res.MaxPossibleScore)
	}
	if res.Status != StatusPending {
		t.Fatalf("expected pending, got=%s", res.Status)
	}
}

func TestAutoGrade_AllMCQCompletesImmediately(t *testing.T) {
	raw := map[string]RawAnswer{"q1": {Value: strPtr("0")}, "q2": {Value: strPtr("3")}}
	res := AutoGrade([]Question{mcq("q1", 5, 0), mcq("q2", 5, 1)}, raw)

	if res.Status != StatusCompleted {
		t.Fatalf("all-mcq submission must complete immediately, got=%s", res.Status)
	}
	if res.TotalScore != 5 {
		t.Fatalf("expected total=5, got=%v", res.TotalScore)
	}
	if res.MaxPossibleScore != 10 {
		t.Fatalf("expected max=10, got=%v", res.MaxPossibleScore)
	}
}

func TestAggregateStatus_Progression(t *testing.T) {
	tests := []struct {
		name   string
		build  func() AnswerSet
		expect Status
	}{
		{
			name: "no answers at all",
			build: func() AnswerSet {
				return AutoGrade(nil, nil).Answers
			},
			expect: StatusCompleted,
		},
		{
			name: "mcq graded, both manual pending",
			build: func() AnswerSet {
				return AutoGrade([]Question{mcq("q1", 5, 0), saq("s1", 10), saq("s2", 10)}, nil).Answers
			},
			expect: StatusPartial,
		},
		{
			name: "purely manual, none graded",
			build: func() AnswerSet {
				return AutoGrade([]Question{saq("s1", 10), coding("c1", 10)}, nil).Answers
			},
			expect: StatusPending,
		},
		{
			name: "one of two manual graded",
			build: func() AnswerSet {
				set := AutoGrade([]Question{saq("s1", 10), saq("s2", 10)}, nil).Answers
				ApplyManualGrades(set, []GradeUpdate{{QuestionID: "s1", MarksObtained: 7}}, 1, time.Now())
				return set
			},
			expect: StatusPartial,
		},
		{
			name: "all manual graded",
			build: func() AnswerSet {
				set := AutoGrade([]Question{saq("s1", 10), coding("c1", 10)}, nil).Answers
				ApplyManualGrades(set, []GradeUpdate{
					{QuestionID: "s1", MarksObtained: 7},
					{QuestionID: "c1", MarksObtained: 10},
				}, 1, time.Now())
				return set
			},
			expect: StatusCompleted,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := AggregateStatus(tc.build()); got != tc.expect {
				t.Fatalf("expected %s, got %s", tc.expect, got)
			}
		})
	}
}

func TestApplyManualGrades(t *testing.T) {
	set := AutoGrade([]Question{mcq("q1", 5, 0), saq("s1", 10)}, map[string]RawAnswer{
		"q1": {Value: strPtr("0")},
		"s1": {Value: strPtr("an essay")},
	}).Answers

	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	applied := ApplyManualGrades(set, []GradeUpdate{
		{QuestionID: "s1", MarksObtained: 7, TeacherFeedback: "decent"},
		{QuestionID: "ghost", MarksObtained: 99},
	}, 42, at)

	if applied != 1 {
		t.Fatalf("expected 1 applied update, got %d", applied)
	}
	a := set["s1"]
	if a.MarksObtained == nil || *a.MarksObtained != 7 {
		t.Fatalf("expected marks=7, got=%v", a.MarksObtained)
	}
	if a.TeacherFeedback == nil || *a.TeacherFeedback != "decent" {
		t.Fatal("feedback not recorded")
	}
	if a.GradedBy == nil || *a.GradedBy != 42 {
		t.Fatal("grader identity not recorded")
	}
	if a.GradedAt == nil || !a.GradedAt.Equal(at) {
		t.Fatal("grading timestamp not recorded")
	}
	if a.GradingStatus != GradeCompleted {
		t.Fatalf("expected completed, got=%s", a.GradingStatus)
	}
	if TotalScore(set) != 12 {
		t.Fatalf("expected total=12, got=%v", TotalScore(set))
	}
}

func TestApplyManualGrades_NoClamping(t *testing.T) {
	set := AutoGrade([]Question{saq("s1", 10)}, nil).Answers
	ApplyManualGrades(set, []GradeUpdate{{QuestionID: "s1", MarksObtained: 15}}, 1, time.Now())

	if *set["s1"].MarksObtained != 15 {
		t.Fatalf("marks must be stored as supplied, got=%v", *set["s1"].MarksObtained)
	}
	ApplyManualGrades(set, []GradeUpdate{{QuestionID: "s1", MarksObtained: -3}}, 1, time.Now())
	if *set["s1"].MarksObtained != -3 {
		t.Fatalf("negative marks must be stored as supplied, got=%v", *set["s1"].MarksObtained)
	}
}

func TestApplyManualGrades_Idempotent(t *testing.T) {
	set := AutoGrade([]Question{mcq("q1", 5, 0), saq("s1", 10)}, map[string]RawAnswer{
		"q1": {Value: strPtr("0")},
	}).Answers

	update := []GradeUpdate{{QuestionID: "s1", MarksObtained: 8, TeacherFeedback: "ok"}}
	ApplyManualGrades(set, update, 7, time.Now())
	first, firstStatus := TotalScore(set), AggregateStatus(set)

	ApplyManualGrades(set, update, 7, time.Now())
	if TotalScore(set) != first {
		t.Fatalf("re-merge changed total: %v -> %v", first, TotalScore(set))
	}
	if AggregateStatus(set) != firstStatus {
		t.Fatalf("re-merge changed status: %s -> %s", firstStatus, AggregateStatus(set))
	}
}

func TestStatusNeverReverts(t *testing.T) {
	set := AutoGrade([]Question{saq("s1", 10), saq("s2", 10)}, nil).Answers
	seen := []Status{AggregateStatus(set)}

	ApplyManualGrades(set, []GradeUpdate{{QuestionID: "s1", MarksObtained: 4}}, 1, time.Now())
	seen = append(seen, AggregateStatus(set))

	ApplyManualGrades(set, []GradeUpdate{{QuestionID: "s2", MarksObtained: 6}}, 1, time.Now())
	seen = append(seen, AggregateStatus(set))

	rank := map[Status]int{StatusPending: 0, StatusPartial: 1, StatusCompleted: 2}
	for i := 1; i < len(seen); i++ {
		if rank[seen[i]] < rank[seen[i-1]] {
			t.Fatalf("status reverted: %v", seen)
		}
	}
	if seen[len(seen)-1] != StatusCompleted {
		t.Fatalf("expected terminal completed, got %v", seen)
	}
}

// Worked example: 2 mcq worth 5 each, 1 saq worth 10. Student gets one mcq
// right; teacher later awards 7 on the saq.
func TestGradingScenario(t *testing.T) {
	questions := []Question{mcq("m1", 5, 0), mcq("m2", 5, 1), saq("s1", 10)}
	raw := map[string]RawAnswer{
		"m1": {Value: strPtr("0")},
		"m2": {Value: strPtr("0")},
		"s1": {Value: strPtr("some text")},
	}

	res := AutoGrade(questions, raw)
	if res.TotalScore != 5 {
		t.Fatalf("after submit expected total=5, got=%v", res.TotalScore)
	}
	if res.MaxPossibleScore != 20 {
		t.Fatalf("after submit expected max=20, got=%v", res.MaxPossibleScore)
	}
	if res.Status != StatusPartial {
		t.Fatalf("after submit expected partial, got=%s", res.Status)
	}

	ApplyManualGrades(res.Answers, []GradeUpdate{{QuestionID: "s1", MarksObtained: 7}}, 9, time.Now())
	if got := TotalScore(res.Answers); got != 12 {
		t.Fatalf("after merge expected total=12, got=%v", got)
	}
	if got := AggregateStatus(res.Answers); got != StatusCompleted {
		t.Fatalf("after merge expected completed, got=%s", got)
	}
	if got := MaxScore(res.Answers); got != 20 {
		t.Fatalf("max must not change with grading state, got=%v", got)
	}
}
