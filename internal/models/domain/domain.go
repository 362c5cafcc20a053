package domain

import (
	"time"

	"github.com/google/uuid"
)

// AssessmentStatus represents the lifecycle status of an assessment.
type AssessmentStatus string

const (
	StatusDraft    AssessmentStatus = "draft"
	StatusComplete AssessmentStatus = "complete"
)

// AssessmentType scopes an assessment to the whole department or one station.
type AssessmentType string

const (
	TypeDepartmentWide  AssessmentType = "DEPARTMENT_WIDE"
	TypeMissionSpecific AssessmentType = "MISSION_SPECIFIC"
)

// AllStations is the sentinel station value for department-wide assessments.
const AllStations = "All Stations"

// RiskLevel is the overall classification of a published assessment.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW RISK"
	RiskModerate RiskLevel = "MODERATE RISK"
	RiskHigh     RiskLevel = "HIGH RISK"
)

// Color returns the GAR color token for a risk level.
func (l RiskLevel) Color() string {
	switch l {
	case RiskLow:
		return "green"
	case RiskModerate:
		return "amber"
	case RiskHigh:
		return "red"
	}
	return ""
}

// FactorCount is the number of GAR risk factors.
const FactorCount = 6

// FactorNames lists the six GAR factors in canonical order.
var FactorNames = [FactorCount]string{
	"Supervision",
	"Planning",
	"Team Selection",
	"Team Fitness",
	"Environment",
	"Event Complexity",
}

// RiskFactors holds the six GAR factor scores, each in [0,10].
type RiskFactors struct {
	Supervision   int `json:"supervision" db:"supervision"`
	Planning      int `json:"planning" db:"planning"`
	TeamSelection int `json:"teamSelection" db:"team_selection"`
	TeamFitness   int `json:"teamFitness" db:"team_fitness"`
	Environment   int `json:"environment" db:"environment"`
	Complexity    int `json:"complexity" db:"complexity"`
}

// Values returns the factor scores in canonical order.
func (f RiskFactors) Values() [FactorCount]int {
	return [FactorCount]int{
		f.Supervision,
		f.Planning,
		f.TeamSelection,
		f.TeamFitness,
		f.Environment,
		f.Complexity,
	}
}

// Mitigations holds free-text mitigation notes, one per factor.
type Mitigations struct {
	Supervision   string `json:"supervision" db:"m_supervision"`
	Planning      string `json:"planning" db:"m_planning"`
	TeamSelection string `json:"teamSelection" db:"m_team_selection"`
	TeamFitness   string `json:"teamFitness" db:"m_team_fitness"`
	Environment   string `json:"environment" db:"m_environment"`
	Complexity    string `json:"complexity" db:"m_complexity"`
}

// Count returns the number of non-empty mitigation entries.
func (m Mitigations) Count() int {
	n := 0
	for _, s := range [FactorCount]string{
		m.Supervision, m.Planning, m.TeamSelection,
		m.TeamFitness, m.Environment, m.Complexity,
	} {
		if s != "" {
			n++
		}
	}
	return n
}

// GroupID identifies a notification recipient group. Groups are resolved
// against the live user directory at send time, never snapshotted.
type GroupID string

const (
	GroupAllFirefighters GroupID = "all_firefighters"
	GroupAllOfficers     GroupID = "all_officers"
	GroupAllChiefs       GroupID = "all_chiefs"
	GroupEveryone        GroupID = "everyone"
)

// RecipientSelection is the stored recipient choice on an assessment.
// Only the ids are authoritative; display copies live client-side.
type RecipientSelection struct {
	Groups []GroupID   `json:"groups"`
	Users  []uuid.UUID `json:"users"`
}

// Assessment is the central GAR entity.
type Assessment struct {
	ID          uuid.UUID          `json:"id"`
	UserID      uuid.UUID          `json:"userId"`
	Captain     string             `json:"captain"`
	Date        string             `json:"date"` // YYYY-MM-DD
	Time        string             `json:"time"` // HH:MM
	Type        AssessmentType     `json:"type"`
	Station     string             `json:"station"`
	Status      AssessmentStatus   `json:"status"`
	Weather     *WeatherSnapshot   `json:"weather,omitempty"`
	Factors     RiskFactors        `json:"riskFactors"`
	Mitigations Mitigations        `json:"mitigations"`
	Recipients  RecipientSelection `json:"notificationRecipients"`

	// Frozen at publish time.
	TotalScore  *int       `json:"totalScore,omitempty"`
	RiskLevel   *RiskLevel `json:"riskLevel,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	CompletedBy string     `json:"completedBy,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsComplete reports whether the assessment reached its terminal state.
func (a *Assessment) IsComplete() bool {
	return a.Status == StatusComplete
}

// AuditMeta carries actor metadata for destructive repository operations.
type AuditMeta struct {
	ActorID   uuid.UUID
	ActorName string
	Reason    string
}
