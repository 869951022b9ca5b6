package service

import (
	"encoding/json"
	"testing"
	"time"

	"exam_portal_backend/internal/model"
)

func TestRawAnswerDTO_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    *string
		wantErr bool
	}{
		{name: "string answer", payload: `{"answer":"2"}`, want: strPtr("2")},
		{name: "numeric answer", payload: `{"answer":2}`, want: strPtr("2")},
		{name: "float stays decimal", payload: `{"answer":1.5}`, want: strPtr("1.5")},
		{name: "null answer", payload: `{"answer":null}`, want: nil},
		{name: "missing answer", payload: `{}`, want: nil},
		{name: "object rejected", payload: `{"answer":{"a":1}}`, wantErr: true},
		{name: "array rejected", payload: `{"answer":[1]}`, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var dto RawAnswerDTO
			err := json.Unmarshal([]byte(tc.payload), &dto)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			switch {
			case tc.want == nil && dto.Value != nil:
				t.Fatalf("expected nil value, got %q", *dto.Value)
			case tc.want != nil && (dto.Value == nil || *dto.Value != *tc.want):
				t.Fatalf("expected %q, got %v", *tc.want, dto.Value)
			}
		})
	}
}

func strPtr(s string) *string { return &s }

func TestRawAnswerDTO_KeepsCodingOutput(t *testing.T) {
	var dto RawAnswerDTO
	payload := `{"answer":"print(1)","output":{"stdout":"1\n","status":"Accepted"}}`
	if err := json.Unmarshal([]byte(payload), &dto); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dto.Value == nil || *dto.Value != "print(1)" {
		t.Fatalf("expected source text, got %v", dto.Value)
	}
	if len(dto.Output) == 0 {
		t.Fatal("expected output to be carried verbatim")
	}
}

func TestPastDeadline(t *testing.T) {
	started := time.Now().Add(-30 * time.Minute)
	session := &model.ExamSession{StartedAt: started}

	tests := []struct {
		name     string
		duration int
		want     bool
	}{
		{name: "untimed exam never expires", duration: 0, want: false},
		{name: "inside the window", duration: 60, want: false},
		{name: "past the window", duration: 20, want: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			exam := &model.Exam{DurationMinutes: tc.duration}
			if got := pastDeadline(exam, session, time.Now()); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestToStudentQuestions_StripsAnswerKey(t *testing.T) {
	correct := 1
	questions := []model.ExamQuestion{
		{
			Type:          model.QuestionMCQ,
			Text:          "2+2?",
			CorrectOption: &correct,
			Marks:         5,
		},
	}
	out := toStudentQuestions(questions)
	if len(out) != 1 {
		t.Fatalf("expected 1 question, got %d", len(out))
	}
	blob, err := json.Marshal(out[0])
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, leak := range []string{"correctOption", "gradingGuidelines", "testCases"} {
		if containsField(blob, leak) {
			t.Fatalf("student view leaks %s: %s", leak, blob)
		}
	}
}

func containsField(blob []byte, field string) bool {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(blob, &m); err != nil {
		return false
	}
	_, ok := m[field]
	return ok
}
