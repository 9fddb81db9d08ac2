package service

import (
	"fmt"
	"strings"

	"core/internal/model"
)

// langNames maps request language codes to display names used in prompts.
var langNames = map[string]string{
	"en": "English",
	"am": "Amharic",
	"or": "Afaan Oromo",
}

// LangName returns the display name for a language code, defaulting to
// English for unknown codes.
func LangName(code string) string {
	if name, ok := langNames[code]; ok {
		return name
	}
	return "English"
}

// FailureMessage is the placeholder reason returned when both generation
// models fail.
func FailureMessage(language string) string {
	return fmt.Sprintf("Reason generation failed in %s.", LangName(language))
}

// promptStyles are language-specific style blocks with a short output
// example each, keeping generated reasons consistent per language.
var promptStyles = map[string]string{
	"English": `Style: Friendly, clear, concise. Use numbers with units (km, ETB).
Output pattern (example):
1) Fit: ~2.5 km from Bole; transport ~400 ETB/month; rent 1500 ETB ≈ 30% of 5000 ETB.
2) Family/Home: apartment suits a 2-person family; amenity: wifi.
3) Value: after rent+transport ≈ 3500 ETB remains.`,
	"Amharic": `ዘይቤ፡ ግልጽና አጭር፣ ቁጥሮችን ከመለኪያ ጋር ተጠቀም።
የመውጫ አቀራረብ (ምሳሌ):
1) ስለ ጥራት፡ ከቦሌ ~2.5 ኪ.ሜ፣ ትራንስፖርት ~400 ብር/ወር፣ ኪራይ 1500 ብር ≈ 30% ከ5000 ብር.
2) ስለ ቤተሰብ/ቤት፡ 2 ሰው ለሚሆን አፓርታማ ይስማማል፣ አማካኝ፡ wifi.
3) ስለ እሴት፡ ከኪራይና ትራንስፖርት በኋላ ከ3500 ብር በላይ ይቀራል.`,
	"Afaan Oromo": `Halluu: Ifaa, gabaabaa; lakkoofsa fi unkaa fayyadami.
Fakkeenya baafata:
1) Walsimuu: ~2.5 km Bole irraa; imala ~400 ETB/ji'a; kiraa 1500 ETB ≈ %30 mindaa 5000 ETB.
2) Maatii/Mana: apartment maatii nama 2-f mijaa'a; faayidaa: wifi.
3) Gatii: booda kiraa+imala ≈ 3500 ETB hafe.`,
}

// ReasonContext is the grounded numeric context for one candidate's
// justification prompt.
type ReasonContext struct {
	DistanceKm           float64
	SingleTripFare       float64
	MonthlyTransportCost float64
	Budget30Percent      float64
	RemainingAfterCosts  float64
	Route                string
	MatchedAmenity       string
}

// BuildReasonPrompt assembles the grounded justification prompt for one
// ranked candidate in the requested language.
func BuildReasonPrompt(pref *model.TenantPreference, p *model.Property, ctx ReasonContext, language string) string {
	langName := LangName(language)
	style, ok := promptStyles[langName]
	if !ok {
		style = promptStyles["English"]
	}

	bedrooms := "unknown"
	if p.Bedrooms != nil {
		bedrooms = fmt.Sprintf("%d", *p.Bedrooms)
	}
	houseType := "unknown"
	if p.HouseType != nil {
		houseType = *p.HouseType
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are a precise real-estate assistant. Write ONE short justification in %s for why the property fits the tenant, using the numbered priority format.\n\n", langName)
	b.WriteString("Hard constraints:\n")
	b.WriteString("- Up to 3 short lines, numbered 1) 2) 3). Keep each line concise.\n")
	b.WriteString("- Use numbers with units (km, ETB). Ground facts on provided fields only; do NOT invent values.\n")
	b.WriteString("- Consider three factors explicitly: proximity/transport, affordability (~30% of salary), family fit (family size vs bedrooms/house type).\n")
	b.WriteString("- Prefer one key amenity if available.\n\n")

	b.WriteString("Tenant Profile:\n")
	fmt.Fprintf(&b, "- Location: %s\n", pref.JobSchoolLocation)
	fmt.Fprintf(&b, "- Salary: %.0f\n", pref.Salary)
	fmt.Fprintf(&b, "- Family size: %d\n", pref.FamilySize)
	fmt.Fprintf(&b, "- Preferred amenities: %s\n\n", strings.Join(pref.PreferredAmenities, ", "))

	b.WriteString("Property:\n")
	fmt.Fprintf(&b, "- Title: %s\n", p.Title)
	fmt.Fprintf(&b, "- Location: %s\n", p.Location)
	fmt.Fprintf(&b, "- Price: %.0f\n", p.Price)
	fmt.Fprintf(&b, "- House type: %s\n", houseType)
	fmt.Fprintf(&b, "- Bedrooms: %s\n", bedrooms)
	fmt.Fprintf(&b, "- Amenities: %s\n", strings.Join(p.Amenities, ", "))
	if ctx.MatchedAmenity != "" {
		fmt.Fprintf(&b, "- Matched preferred amenity: %s\n", ctx.MatchedAmenity)
	}
	b.WriteString("\n")

	b.WriteString("Transport:\n")
	fmt.Fprintf(&b, "- Route: %s\n", ctx.Route)
	fmt.Fprintf(&b, "- Distance (km): %.1f\n", ctx.DistanceKm)
	fmt.Fprintf(&b, "- Single trip fare (ETB): %.0f\n", ctx.SingleTripFare)
	fmt.Fprintf(&b, "- Monthly transport cost (ETB): %.0f\n", ctx.MonthlyTransportCost)
	fmt.Fprintf(&b, "- Budget 30%% of salary (ETB): %.0f\n", ctx.Budget30Percent)
	fmt.Fprintf(&b, "- Remaining after rent+transport (ETB): %.0f\n\n", ctx.RemainingAfterCosts)

	b.WriteString(style)
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "Now produce the justification in %s as three numbered lines:\n", langName)
	b.WriteString("1) Fit: Use distance, monthly transport cost, and compare rent to the 30%-of-salary budget.\n")
	b.WriteString("2) Family/Home: Use family size, house type, bedrooms (if known), and one amenity if available.\n")
	b.WriteString("3) Value: Use the remaining amount after rent and transport.\n")
	b.WriteString("If any value is missing, omit it rather than guessing. Do not include raw placeholders.\n")

	return b.String()
}
