package util

import (
	"testing"
	"time"

	"exam_portal_backend/internal/model"
)

func TestJWTRoundTrip(t *testing.T) {
	dept := uint(3)
	user := &model.User{
		Name:          "Asha",
		Email:         "asha@example.edu",
		Role:          model.Teacher,
		InstitutionID: 7,
		DepartmentID:  &dept,
	}
	user.ID = 42

	secret := "0123456789abcdef0123456789abcdef"
	token, err := GenerateJWT(user, secret, time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := ParseJWT(token, secret)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != 42 || claims.Role != model.Teacher || claims.InstitutionID != 7 {
		t.Fatalf("claims mismatch: %+v", claims)
	}
}

func TestParseJWT_WrongSecret(t *testing.T) {
	user := &model.User{Role: model.Student, InstitutionID: 1}
	user.ID = 1

	token, err := GenerateJWT(user, "0123456789abcdef0123456789abcdef", time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := ParseJWT(token, "another-secret-another-secret-12"); err == nil {
		t.Fatal("expected signature verification to fail")
	}
}

func TestMustParseUint(t *testing.T) {
	tests := []struct {
		in   string
		want uint
	}{
		{"42", 42},
		{"0", 0},
		{"", 0},
		{"-1", 0},
		{"banana", 0},
	}
	for _, tc := range tests {
		if got := MustParseUint(tc.in); got != tc.want {
			t.Errorf("MustParseUint(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
