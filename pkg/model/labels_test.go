package model

import "testing"

func TestLabelFromName(t *testing.T) {
	cases := map[string]string{
		"eventDate":     "Event Date",
		"guest_count":   "Guest Count",
		"rsvp-deadline": "Rsvp Deadline",
		"line2":         "Line 2",
		"":              "",
	}
	for input, want := range cases {
		if got := LabelFromName(input); got != want {
			t.Errorf("LabelFromName(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestWithDefaultLabelsKeepsExplicitLabels(t *testing.T) {
	fields := WithDefaultLabels([]Field{{Name: "eventDate"}, {Name: "venue", Label: "Where"}})
	if fields[0].Label != "Event Date" {
		t.Fatalf("expected derived label, got %q", fields[0].Label)
	}
	if fields[1].Label != "Where" {
		t.Fatalf("expected explicit label kept, got %q", fields[1].Label)
	}
}
