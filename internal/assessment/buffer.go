package assessment

import (
	"fmt"

	"FireGar/internal/models/domain"
	"FireGar/internal/scoring"
)

// EditBuffer is the draft edit buffer the UI binds to. Edits accumulate
// here and are flushed into the Assessment entity only at defined flush
// points: leaving a step, saving, publishing.
type EditBuffer struct {
	Date        string
	Time        string
	Type        domain.AssessmentType
	Station     string
	Weather     *domain.WeatherSnapshot
	Factors     domain.RiskFactors
	Mitigations domain.Mitigations
	Recipients  domain.RecipientSelection

	stations []string // known station names, for the type/station rule
}

func newEditBuffer(a *domain.Assessment, stations []string) *EditBuffer {
	return &EditBuffer{
		Date:        a.Date,
		Time:        a.Time,
		Type:        a.Type,
		Station:     a.Station,
		Weather:     a.Weather,
		Factors:     a.Factors,
		Mitigations: a.Mitigations,
		Recipients:  a.Recipients,
		stations:    stations,
	}
}

// SetType applies the bidirectional type/station rule: department-wide
// forces the "All Stations" sentinel; switching back to mission-specific
// replaces the sentinel with a concrete station.
func (b *EditBuffer) SetType(t domain.AssessmentType) {
	b.Type = t
	switch t {
	case domain.TypeDepartmentWide:
		b.Station = domain.AllStations
	case domain.TypeMissionSpecific:
		if b.Station == domain.AllStations {
			b.Station = b.defaultStation()
		}
	}
}

// SetStation applies the rule in the other direction: selecting the
// "All Stations" sentinel forces department-wide, any concrete station
// forces mission-specific. Stations outside the known directory are
// rejected so a draft can never carry an unknown scope.
func (b *EditBuffer) SetStation(station string) error {
	if station != domain.AllStations && !b.knownStation(station) {
		return fmt.Errorf("unknown station %q", station)
	}
	b.Station = station
	if station == domain.AllStations {
		b.Type = domain.TypeDepartmentWide
	} else {
		b.Type = domain.TypeMissionSpecific
	}
	return nil
}

func (b *EditBuffer) knownStation(name string) bool {
	for _, s := range b.stations {
		if s == name {
			return true
		}
	}
	return false
}

// StationEditable reports whether the station field accepts direct edits.
func (b *EditBuffer) StationEditable() bool {
	return b.Type != domain.TypeDepartmentWide
}

// SetFactors validates and stores the six factor scores.
func (b *EditBuffer) SetFactors(f domain.RiskFactors) error {
	for i, v := range f.Values() {
		if v < 0 || v > scoring.MaxFactorScore {
			return fmt.Errorf("%s score %d out of range 0-%d",
				domain.FactorNames[i], v, scoring.MaxFactorScore)
		}
	}
	b.Factors = f
	return nil
}

func (b *EditBuffer) defaultStation() string {
	if len(b.stations) > 0 {
		return b.stations[0]
	}
	return ""
}

// flushDetails merges the step-1 form fields into the assessment.
func (b *EditBuffer) flushDetails(a *domain.Assessment) {
	a.Date = b.Date
	a.Time = b.Time
	a.Type = b.Type
	a.Station = b.Station
	a.Weather = b.Weather
	a.Recipients = b.Recipients
}

// flushFactors merges the step-2 scores into the assessment.
func (b *EditBuffer) flushFactors(a *domain.Assessment) {
	a.Factors = b.Factors
}

// flushMitigations merges the step-3 mitigation text into the assessment.
func (b *EditBuffer) flushMitigations(a *domain.Assessment) {
	a.Mitigations = b.Mitigations
}
