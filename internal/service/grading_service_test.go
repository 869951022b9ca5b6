package service

import (
	"encoding/json"
	"testing"

	"exam_portal_backend/internal/model"
	"exam_portal_backend/internal/scoring"
)

func TestGradingAnswer_CarriesCodingQuestionMetadata(t *testing.T) {
	code := `print(sum(map(int, input().split())))`
	row := GradingAnswer{
		Answer: scoring.Answer{
			QuestionID:    "q-3",
			Type:          model.QuestionCoding,
			Answer:        &code,
			MaxMarks:      10,
			GradingStatus: scoring.GradePending,
		},
		QuestionText:      "Sum two integers read from stdin.",
		GradingGuidelines: "Full marks if all test cases pass.",
		TestCases:         json.RawMessage(`[{"input":"1 2","expected":"3"}]`),
		Language:          "python",
		Order:             3,
	}

	raw, err := json.Marshal(row)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got map[string]json.RawMessage
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	for _, key := range []string{"testCases", "language", "gradingGuidelines", "questionText", "maxMarks"} {
		if _, ok := got[key]; !ok {
			t.Errorf("grading detail row missing %q", key)
		}
	}
	if string(got["testCases"]) != `[{"input":"1 2","expected":"3"}]` {
		t.Errorf("testCases = %s", got["testCases"])
	}
	if string(got["language"]) != `"python"` {
		t.Errorf("language = %s", got["language"])
	}
}

func TestGradingAnswer_OmitsEmptyMetadata(t *testing.T) {
	ans := "B"
	row := GradingAnswer{
		Answer: scoring.Answer{
			QuestionID: "q-1",
			Type:       model.QuestionMCQ,
			Answer:     &ans,
			MaxMarks:   2,
		},
		QuestionText: "Pick one.",
		Order:        1,
	}

	raw, err := json.Marshal(row)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got map[string]json.RawMessage
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"testCases", "language", "gradingGuidelines"} {
		if _, ok := got[key]; ok {
			t.Errorf("mcq row should omit %q", key)
		}
	}
}
