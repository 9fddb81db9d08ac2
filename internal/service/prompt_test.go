package service

import (
	"strings"
	"testing"

	"core/internal/model"
)

func TestLangName(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"en", "English"},
		{"am", "Amharic"},
		{"or", "Afaan Oromo"},
		{"fr", "English"},
		{"", "English"},
	}
	for _, tt := range tests {
		if got := LangName(tt.code); got != tt.want {
			t.Errorf("LangName(%q) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestFailureMessage(t *testing.T) {
	if got := FailureMessage("am"); got != "Reason generation failed in Amharic." {
		t.Errorf("FailureMessage(am) = %q", got)
	}
	if got := FailureMessage("en"); got != "Reason generation failed in English." {
		t.Errorf("FailureMessage(en) = %q", got)
	}
}

func TestBuildReasonPrompt(t *testing.T) {
	bedrooms := 2
	houseType := "apartment"
	pref := &model.TenantPreference{
		JobSchoolLocation:  "Bole",
		Salary:             5000,
		FamilySize:         2,
		PreferredAmenities: []string{"wifi", "parking"},
	}
	p := &model.Property{
		Title: "Bole Apartment", Location: "Bole", Price: 1500,
		HouseType: &houseType, Bedrooms: &bedrooms,
		Amenities: model.JSONArray{"wifi"},
	}
	ctx := ReasonContext{
		DistanceKm:           4.1,
		SingleTripFare:       10,
		MonthlyTransportCost: 400,
		Budget30Percent:      1500,
		RemainingAfterCosts:  3100,
		Route:                "Bole to Bole",
	}

	prompt := BuildReasonPrompt(pref, p, ctx, "am")

	for _, want := range []string{
		"Amharic",
		"Bole Apartment",
		"Salary: 5000",
		"Family size: 2",
		"Distance (km): 4.1",
		"Monthly transport cost (ETB): 400",
		"Budget 30% of salary (ETB): 1500",
		"do NOT invent values",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}

	// Language-specific style block is included.
	if !strings.Contains(prompt, "ዘይቤ") {
		t.Error("Amharic prompt missing the Amharic style block")
	}
}

func TestBuildReasonPrompt_UnknownFieldsOmittedGracefully(t *testing.T) {
	pref := &model.TenantPreference{JobSchoolLocation: "Bole", Salary: 5000, FamilySize: 3}
	p := &model.Property{Title: "Mystery", Location: "Gerji", Price: 2000}

	prompt := BuildReasonPrompt(pref, p, ReasonContext{}, "en")
	if !strings.Contains(prompt, "Bedrooms: unknown") {
		t.Error("missing bedrooms must render as unknown")
	}
	if !strings.Contains(prompt, "House type: unknown") {
		t.Error("missing house type must render as unknown")
	}
}
