package service

import (
	"errors"
	"testing"

	"exam_portal_backend/internal/model"
)

func TestQuestionReq_ToModel(t *testing.T) {
	one := 1
	five := 5

	tests := []struct {
		name    string
		req     QuestionReq
		wantErr bool
	}{
		{
			name: "valid mcq",
			req: QuestionReq{
				Type:          model.QuestionMCQ,
				Text:          "pick one",
				Options:       []string{"a", "b", "c"},
				CorrectOption: &one,
				Marks:         5,
			},
		},
		{
			name: "mcq without correct option",
			req: QuestionReq{
				Type:    model.QuestionMCQ,
				Text:    "pick one",
				Options: []string{"a", "b"},
			},
			wantErr: true,
		},
		{
			name: "mcq correct option out of range",
			req: QuestionReq{
				Type:          model.QuestionMCQ,
				Text:          "pick one",
				Options:       []string{"a", "b"},
				CorrectOption: &five,
			},
			wantErr: true,
		},
		{
			name: "mcq with a single option",
			req: QuestionReq{
				Type:          model.QuestionMCQ,
				Text:          "pick one",
				Options:       []string{"a"},
				CorrectOption: &one,
			},
			wantErr: true,
		},
		{
			name: "saq needs no options",
			req: QuestionReq{
				Type:  model.QuestionSAQ,
				Text:  "explain",
				Marks: 10,
			},
		},
		{
			name: "coding keeps test cases",
			req: QuestionReq{
				Type:      model.QuestionCoding,
				Text:      "implement",
				TestCases: []byte(`[{"input":"1","expected":"1"}]`),
				Language:  "python",
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			q, err := tc.req.toModel("exam-1", 0)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidQuestion) {
					t.Fatalf("expected ErrInvalidQuestion, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if q.ExamID != "exam-1" {
				t.Fatalf("exam id not set: %+v", q)
			}
			if tc.req.Type == model.QuestionMCQ && len(q.Options) == 0 {
				t.Fatal("mcq options not marshaled")
			}
			if tc.req.Type == model.QuestionCoding && len(q.TestCases) == 0 {
				t.Fatal("coding test cases dropped")
			}
		})
	}
}
