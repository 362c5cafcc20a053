package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"FireGar/internal/models/domain"
	"FireGar/internal/observability"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	sent    []Message
	failFor map[string]error // keyed by recipient email
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Send(_ context.Context, msg Message) error {
	if err, ok := f.failFor[msg.Recipient.Email]; ok {
		return err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func publishedAssessment() *domain.Assessment {
	total := 38
	level := domain.RiskModerate
	now := time.Now()
	return &domain.Assessment{
		ID:      uuid.New(),
		Captain: "Capt. Rivera",
		Date:    "2026-09-01",
		Time:    "07:30",
		Type:    domain.TypeMissionSpecific,
		Station: "Station 3",
		Status:  domain.StatusComplete,
		Weather: &domain.WeatherSnapshot{
			Temperature: 72, TemperatureUnit: "°F",
			WindSpeed: 12, WindDirection: "NW", Humidity: 65,
		},
		Mitigations: domain.Mitigations{Environment: "extra lookout posted"},
		TotalScore:  &total,
		RiskLevel:   &level,
		CompletedAt: &now,
		CompletedBy: "Capt. Rivera",
	}
}

func recipient(email string) domain.Recipient {
	return domain.Recipient{
		ID:          uuid.New(),
		Email:       email,
		DisplayName: "Test User",
		Station:     "Station 3",
		Role:        domain.RoleFirefighter,
	}
}

func newTestDispatcher(p Provider) *Dispatcher {
	return NewDispatcher(
		[]Provider{p},
		"https://gar.fd.gov",
		observability.NewMetricsForTesting(),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
}

func TestDispatch_AllSucceed(t *testing.T) {
	p := &fakeProvider{}
	d := newTestDispatcher(p)

	ok := d.Dispatch(context.Background(), publishedAssessment(),
		[]domain.Recipient{recipient("a@fd.gov"), recipient("b@fd.gov")})

	assert.True(t, ok)
	assert.Len(t, p.sent, 2)
}

func TestDispatch_PartialFailureIsolated(t *testing.T) {
	p := &fakeProvider{failFor: map[string]error{
		"b@fd.gov": errors.New("mailbox unavailable"),
	}}
	d := newTestDispatcher(p)

	ok := d.Dispatch(context.Background(), publishedAssessment(),
		[]domain.Recipient{recipient("a@fd.gov"), recipient("b@fd.gov"), recipient("c@fd.gov")})

	assert.False(t, ok, "a failed send must flip the overall flag")
	assert.Len(t, p.sent, 2, "the remaining recipients must still be attempted")
	assert.Equal(t, "a@fd.gov", p.sent[0].Recipient.Email)
	assert.Equal(t, "c@fd.gov", p.sent[1].Recipient.Email)
}

func TestDispatch_EmptyRecipientsIsNoOp(t *testing.T) {
	p := &fakeProvider{}
	d := newTestDispatcher(p)

	ok := d.Dispatch(context.Background(), publishedAssessment(), nil)

	assert.True(t, ok)
	assert.Empty(t, p.sent)
}

func TestBuildMessage(t *testing.T) {
	a := publishedAssessment()
	r := recipient("a@fd.gov")

	msg := buildMessage("https://gar.fd.gov/", a, r)

	require.Equal(t, r, msg.Recipient)
	assert.Equal(t, "https://gar.fd.gov/gar-assessment/"+a.ID.String(), msg.Link)
	assert.Contains(t, msg.Subject, "MODERATE RISK")
	assert.Contains(t, msg.Body, "Test User")
	assert.Contains(t, msg.Body, "Station 3")
	assert.Contains(t, msg.Body, "38 / 60")
	assert.Contains(t, msg.Body, "MODERATE RISK")
	assert.Contains(t, msg.Body, "Mitigations documented: 1")
	assert.Contains(t, msg.Body, msg.Link)
}

func TestSubjectConvention(t *testing.T) {
	a := publishedAssessment()

	assert.Contains(t, subjectFor(domain.RiskHigh, a), "HIGH RISK")
	assert.Contains(t, subjectFor(domain.RiskHigh, a), "Immediate Attention")
	assert.Contains(t, subjectFor(domain.RiskModerate, a), "MODERATE RISK")
	assert.NotContains(t, subjectFor(domain.RiskLow, a), "RISK GAR")
}

func TestBuildMessage_NoWeather(t *testing.T) {
	a := publishedAssessment()
	a.Weather = nil

	msg := buildMessage("https://gar.fd.gov", a, recipient("a@fd.gov"))
	assert.Contains(t, msg.Body, "no weather data")
}
