package assessment

import (
	"testing"

	"FireGar/internal/models/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testStations = []string{"Station 1", "Station 2", "Station 3"}

func newTestBuffer() *EditBuffer {
	return newEditBuffer(&domain.Assessment{
		Type:    domain.TypeMissionSpecific,
		Station: "Station 1",
	}, testStations)
}

func TestBuffer_DepartmentWideForcesAllStations(t *testing.T) {
	b := newTestBuffer()

	b.SetType(domain.TypeDepartmentWide)

	assert.Equal(t, domain.AllStations, b.Station)
	assert.False(t, b.StationEditable())
}

func TestBuffer_MissionSpecificResetsSentinelStation(t *testing.T) {
	b := newTestBuffer()

	b.SetType(domain.TypeDepartmentWide)
	b.SetType(domain.TypeMissionSpecific)

	assert.Equal(t, "Station 1", b.Station, "sentinel must be replaced by a concrete station")
	assert.True(t, b.StationEditable())
}

func TestBuffer_MissionSpecificKeepsConcreteStation(t *testing.T) {
	b := newTestBuffer()
	b.Station = "Station 2"

	b.SetType(domain.TypeMissionSpecific)

	assert.Equal(t, "Station 2", b.Station)
}

func TestBuffer_AllStationsForcesDepartmentWide(t *testing.T) {
	b := newTestBuffer()

	require.NoError(t, b.SetStation(domain.AllStations))

	assert.Equal(t, domain.TypeDepartmentWide, b.Type)
}

func TestBuffer_ConcreteStationForcesMissionSpecific(t *testing.T) {
	b := newTestBuffer()
	b.SetType(domain.TypeDepartmentWide)

	require.NoError(t, b.SetStation("Station 3"))

	assert.Equal(t, domain.TypeMissionSpecific, b.Type)
	assert.Equal(t, "Station 3", b.Station)
}

func TestBuffer_RejectsUnknownStation(t *testing.T) {
	b := newTestBuffer()

	err := b.SetStation("Station 99")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Station 99")
	assert.Equal(t, "Station 1", b.Station, "buffer must keep its previous station")
	assert.Equal(t, domain.TypeMissionSpecific, b.Type)
}

// The invariant type=department-wide ⇔ station="All Stations" must hold
// after any sequence of edits, with no oscillation.
func TestBuffer_BidirectionalInvariantUnderEditSequences(t *testing.T) {
	type edit struct {
		setType    *domain.AssessmentType
		setStation *string
	}
	dept := domain.TypeDepartmentWide
	mission := domain.TypeMissionSpecific
	all := domain.AllStations
	st2 := "Station 2"

	sequences := [][]edit{
		{{setType: &dept}, {setType: &mission}, {setStation: &all}},
		{{setStation: &all}, {setStation: &st2}, {setType: &dept}},
		{{setType: &dept}, {setStation: &st2}, {setType: &dept}, {setType: &mission}},
		{{setStation: &st2}, {setType: &mission}, {setStation: &all}, {setType: &dept}},
	}

	for i, seq := range sequences {
		b := newTestBuffer()
		for _, e := range seq {
			if e.setType != nil {
				b.SetType(*e.setType)
			}
			if e.setStation != nil {
				require.NoError(t, b.SetStation(*e.setStation))
			}
			deptWide := b.Type == domain.TypeDepartmentWide
			allStations := b.Station == domain.AllStations
			assert.Equal(t, deptWide, allStations,
				"sequence %d: invariant violated (type=%s station=%q)", i, b.Type, b.Station)
		}
	}
}

func TestBuffer_SetFactorsValidatesRange(t *testing.T) {
	b := newTestBuffer()

	err := b.SetFactors(domain.RiskFactors{Supervision: 11})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Supervision")

	err = b.SetFactors(domain.RiskFactors{Environment: -1})
	require.Error(t, err)

	err = b.SetFactors(domain.RiskFactors{Supervision: 10, Planning: 0})
	assert.NoError(t, err)
}

func TestBuffer_FlushPoints(t *testing.T) {
	a := &domain.Assessment{Type: domain.TypeMissionSpecific, Station: "Station 1"}
	b := newEditBuffer(a, testStations)

	b.Date = "2026-09-01"
	b.Time = "07:30"
	require.NoError(t, b.SetStation("Station 2"))
	require.NoError(t, b.SetFactors(domain.RiskFactors{Planning: 6}))
	b.Mitigations.Planning = "pre-brief the crew"

	// Nothing reaches the entity until the matching flush point.
	assert.Empty(t, a.Date)
	assert.Zero(t, a.Factors.Planning)

	b.flushDetails(a)
	assert.Equal(t, "2026-09-01", a.Date)
	assert.Equal(t, "Station 2", a.Station)
	assert.Zero(t, a.Factors.Planning, "factors flush separately")

	b.flushFactors(a)
	assert.Equal(t, 6, a.Factors.Planning)

	b.flushMitigations(a)
	assert.Equal(t, "pre-brief the crew", a.Mitigations.Planning)
}
