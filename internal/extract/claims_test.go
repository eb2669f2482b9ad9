package extract

import (
	"reflect"
	"testing"
)

func TestClaims(t *testing.T) {
	text := "Officials said the bridge will reopen in March next year. " +
		"It was a cold day. " +
		"The survey found that 40 percent of residents support the plan. " +
		"Officials said the bridge will reopen in March next year. " +
		"Short said."

	got := Claims(text)
	want := []string{
		"Officials said the bridge will reopen in March next year.",
		"The survey found that 40 percent of residents support the plan.",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Claims = %v, want %v", got, want)
	}
}

func TestClaims_Empty(t *testing.T) {
	if got := Claims(""); len(got) != 0 {
		t.Errorf("expected no claims, got %v", got)
	}
}

func TestSplitSentences(t *testing.T) {
	text := "Growth reached 2.5 percent in the last quarter of the year! Was that expected by the analysts at the bank? Tiny."
	got := splitSentences(text)
	want := []string{
		"Growth reached 2.5 percent in the last quarter of the year!",
		"Was that expected by the analysts at the bank?",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("splitSentences = %v, want %v", got, want)
	}
}
