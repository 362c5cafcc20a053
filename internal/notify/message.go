package notify

import (
	"fmt"
	"strings"

	"FireGar/internal/models/domain"
)

// Message is the rendered notification payload for a single recipient.
type Message struct {
	Recipient domain.Recipient
	Subject   string
	Body      string
	Link      string
}

// buildMessage renders the publish notification for one recipient from the
// frozen assessment snapshot.
func buildMessage(appBaseURL string, a *domain.Assessment, r domain.Recipient) Message {
	link := fmt.Sprintf("%s/gar-assessment/%s", strings.TrimRight(appBaseURL, "/"), a.ID)

	var total int
	if a.TotalScore != nil {
		total = *a.TotalScore
	}
	var level domain.RiskLevel
	if a.RiskLevel != nil {
		level = *a.RiskLevel
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", r.DisplayName)
	fmt.Fprintf(&b, "A GAR assessment has been published.\n\n")
	fmt.Fprintf(&b, "Date:       %s %s\n", a.Date, a.Time)
	fmt.Fprintf(&b, "Station:    %s\n", a.Station)
	fmt.Fprintf(&b, "Type:       %s\n", typeLabel(a.Type))
	fmt.Fprintf(&b, "Author:     %s\n", a.Captain)
	fmt.Fprintf(&b, "Score:      %d / 60\n", total)
	fmt.Fprintf(&b, "Risk level: %s\n", level)
	fmt.Fprintf(&b, "Weather:    %s\n", a.Weather.Summary())
	if n := a.Mitigations.Count(); n > 0 {
		fmt.Fprintf(&b, "Mitigations documented: %d\n", n)
	} else {
		b.WriteString("Mitigations documented: none\n")
	}
	fmt.Fprintf(&b, "\nView the full assessment: %s\n", link)

	return Message{
		Recipient: r,
		Subject:   subjectFor(level, a),
		Body:      b.String(),
		Link:      link,
	}
}

// subjectFor follows the fixed three-way subject convention by risk level.
func subjectFor(level domain.RiskLevel, a *domain.Assessment) string {
	switch level {
	case domain.RiskHigh:
		return fmt.Sprintf("HIGH RISK GAR Assessment - %s %s - Immediate Attention", a.Station, a.Date)
	case domain.RiskModerate:
		return fmt.Sprintf("MODERATE RISK GAR Assessment - %s %s", a.Station, a.Date)
	default:
		return fmt.Sprintf("GAR Assessment Published - %s %s", a.Station, a.Date)
	}
}

func typeLabel(t domain.AssessmentType) string {
	if t == domain.TypeDepartmentWide {
		return "Department-wide"
	}
	return "Mission-specific"
}
