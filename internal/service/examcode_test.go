package service

import (
	"strings"
	"testing"
)

func TestGenerateExamCode(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 64; i++ {
		code, err := GenerateExamCode(false)
		if err != nil {
			t.Fatalf("GenerateExamCode: %v", err)
		}
		if len(code) != ExamCodeLength {
			t.Fatalf("len(%q) = %d, want %d", code, len(code), ExamCodeLength)
		}
		for _, r := range code {
			if !strings.ContainsRune(codeAlphabet, r) {
				t.Fatalf("code %q contains %q outside the alphabet", code, r)
			}
		}
		seen[code] = true
	}
	if len(seen) < 2 {
		t.Errorf("64 codes produced %d distinct values", len(seen))
	}
}

func TestGenerateExamCodeWithSymbols(t *testing.T) {
	full := codeAlphabet + codeSymbols
	for i := 0; i < 64; i++ {
		code, err := GenerateExamCode(true)
		if err != nil {
			t.Fatalf("GenerateExamCode: %v", err)
		}
		for _, r := range code {
			if !strings.ContainsRune(full, r) {
				t.Fatalf("code %q contains %q outside the extended alphabet", code, r)
			}
		}
	}
}
