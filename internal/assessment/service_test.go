package assessment

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
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- fakes ---

type fakeRepo struct {
	stations    []domain.Station
	users       []domain.User
	profiles    map[uuid.UUID]*domain.User
	assessments map[uuid.UUID]*domain.Assessment

	createErr error
	updateErr error
	deleteErr error

	createCalls int
	updateCalls int
	deleteCalls int
	lastAudit   domain.AuditMeta
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		stations: []domain.Station{
			{ID: uuid.New(), Name: "Station 1"},
			{ID: uuid.New(), Name: "Station 2"},
		},
		profiles:    make(map[uuid.UUID]*domain.User),
		assessments: make(map[uuid.UUID]*domain.Assessment),
	}
}

func (f *fakeRepo) CreateAssessment(_ context.Context, a *domain.Assessment) (*domain.Assessment, error) {
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	cp := *a
	cp.ID = uuid.New()
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	f.assessments[cp.ID] = &cp
	return &cp, nil
}

func (f *fakeRepo) UpdateAssessment(_ context.Context, id uuid.UUID, a *domain.Assessment) error {
	f.updateCalls++
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.assessments[id]; !ok {
		return domain.ErrNotFound
	}
	cp := *a
	cp.ID = id
	f.assessments[id] = &cp
	return nil
}

func (f *fakeRepo) DeleteAssessment(_ context.Context, id uuid.UUID, meta domain.AuditMeta) error {
	f.deleteCalls++
	f.lastAudit = meta
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.assessments, id)
	return nil
}

func (f *fakeRepo) GetAssessment(_ context.Context, id uuid.UUID) (*domain.Assessment, error) {
	a, ok := f.assessments[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return a, nil
}

func (f *fakeRepo) GetAllAssessments(_ context.Context) ([]domain.Assessment, error) {
	var out []domain.Assessment
	for _, a := range f.assessments {
		out = append(out, *a)
	}
	return out, nil
}

func (f *fakeRepo) FindDraftByUserAndDate(_ context.Context, userID uuid.UUID, date string) (*domain.Assessment, error) {
	for _, a := range f.assessments {
		if a.UserID == userID && a.Date == date && a.Status == domain.StatusDraft {
			return a, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) GetStations(_ context.Context) ([]domain.Station, error) {
	return f.stations, nil
}

func (f *fakeRepo) GetUserProfile(_ context.Context, userID uuid.UUID) (*domain.User, error) {
	p, ok := f.profiles[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (f *fakeRepo) GetAllUsers(_ context.Context) ([]domain.User, error) {
	return f.users, nil
}

type fakeWeather struct {
	snapshot *domain.WeatherSnapshot
	err      error
	calls    int
}

func (f *fakeWeather) GetSnapshot(_ context.Context, _ bool) (*domain.WeatherSnapshot, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	cp := *f.snapshot
	return &cp, nil
}

type fakeNotifier struct {
	calls      int
	recipients []domain.Recipient
	last       *domain.Assessment
	ok         bool
}

func (f *fakeNotifier) Dispatch(_ context.Context, a *domain.Assessment, rs []domain.Recipient) bool {
	f.calls++
	f.last = a
	f.recipients = rs
	return f.ok
}

// --- harness ---

type harness struct {
	svc      *Service
	repo     *fakeRepo
	weather  *fakeWeather
	notifier *fakeNotifier
	clock    *clockwork.FakeClock
	captain  uuid.UUID
}

func newHarness(t *testing.T, editPolicy string) *harness {
	t.Helper()

	repo := newFakeRepo()
	captain := uuid.New()
	repo.profiles[captain] = &domain.User{
		ID: captain, Email: "cap@fd.gov", FirstName: "Ada", LastName: "Rivera",
		Role: domain.RoleCaptain, Station: "Station 2", Status: domain.UserActive,
	}

	w := &fakeWeather{snapshot: &domain.WeatherSnapshot{Temperature: 70, TemperatureUnit: "°F"}}
	n := &fakeNotifier{ok: true}
	clock := clockwork.NewFakeClockAt(time.Date(2026, 9, 1, 7, 30, 0, 0, time.UTC))

	svc := New(
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		repo, w, n,
		observability.NewMetricsForTesting(),
		clock,
		editPolicy,
	)
	return &harness{svc: svc, repo: repo, weather: w, notifier: n, clock: clock, captain: captain}
}

func (h *harness) startFlow(t *testing.T) *Flow {
	t.Helper()
	flow, err := h.svc.Start(context.Background(), h.captain)
	require.NoError(t, err)
	return flow
}

func (h *harness) advanceToReview(t *testing.T) *Flow {
	t.Helper()
	h.startFlow(t)
	var flow *Flow
	var err error
	for i := 0; i < 3; i++ {
		flow, err = h.svc.Next(context.Background(), h.captain)
		require.NoError(t, err)
	}
	require.Equal(t, StepReview, flow.Step)
	return flow
}

// --- tests ---

func TestStart_CreatesDraftImmediately(t *testing.T) {
	h := newHarness(t, PolicyOfficers)

	flow := h.startFlow(t)

	assert.Equal(t, 1, h.repo.createCalls, "draft must be persisted at start, not deferred")
	assert.NotEqual(t, uuid.Nil, flow.Assessment.ID)
	assert.Equal(t, domain.StatusDraft, flow.Assessment.Status)
	assert.Equal(t, "2026-09-01", flow.Assessment.Date)
	assert.Equal(t, "07:30", flow.Assessment.Time)
	assert.Equal(t, "Station 2", flow.Assessment.Station, "defaults to the captain's own station")
	assert.Equal(t, StepDetails, flow.Step)
}

func TestStart_PrefillsWeatherCacheFirst(t *testing.T) {
	h := newHarness(t, PolicyOfficers)

	flow := h.startFlow(t)

	require.NotNil(t, flow.Assessment.Weather)
	assert.Equal(t, 70.0, flow.Assessment.Weather.Temperature)
	assert.Equal(t, 1, h.weather.calls)
}

func TestStart_WeatherFailureLeavesFieldsBlank(t *testing.T) {
	h := newHarness(t, PolicyOfficers)
	h.weather.err = errors.New("upstream down")

	flow := h.startFlow(t)

	assert.Nil(t, flow.Assessment.Weather)
	assert.Equal(t, 1, h.repo.createCalls, "weather failure must not block starting")
}

func TestStart_RejectsSecondSameDayDraft(t *testing.T) {
	h := newHarness(t, PolicyOfficers)
	h.startFlow(t)

	_, err := h.svc.Start(context.Background(), h.captain)

	require.ErrorIs(t, err, domain.ErrDraftExists)
	assert.Equal(t, 1, h.repo.createCalls, "no second record may be created")
}

func TestStart_AllowedAgainNextDay(t *testing.T) {
	h := newHarness(t, PolicyOfficers)
	flow := h.startFlow(t)

	// Publish today's draft, then move to tomorrow.
	for i := 0; i < 3; i++ {
		_, err := h.svc.Next(context.Background(), h.captain)
		require.NoError(t, err)
	}
	_, err := h.svc.Publish(context.Background(), h.captain)
	require.NoError(t, err)
	_ = flow

	h.clock.Advance(24 * time.Hour)

	_, err = h.svc.Start(context.Background(), h.captain)
	assert.NoError(t, err)
}

func TestStart_BlockedWithoutStations(t *testing.T) {
	h := newHarness(t, PolicyOfficers)
	h.repo.stations = nil

	_, err := h.svc.Start(context.Background(), h.captain)

	require.ErrorIs(t, err, domain.ErrNoStations)
	assert.Zero(t, h.repo.createCalls)
}

func TestStart_PermissionPolicies(t *testing.T) {
	h := newHarness(t, PolicyOfficers)
	ff := uuid.New()
	h.repo.profiles[ff] = &domain.User{
		ID: ff, Email: "ff@fd.gov", Role: domain.RoleFirefighter, Status: domain.UserActive,
	}

	_, err := h.svc.Start(context.Background(), ff)
	require.ErrorIs(t, err, domain.ErrNotAllowed)

	open := newHarness(t, PolicyEveryone)
	openFF := uuid.New()
	open.repo.profiles[openFF] = &domain.User{
		ID: openFF, Email: "ff@fd.gov", Role: domain.RoleFirefighter, Status: domain.UserActive,
	}
	_, err = open.svc.Start(context.Background(), openFF)
	assert.NoError(t, err)
}

func TestApplyUpdate_TypeStationRule(t *testing.T) {
	h := newHarness(t, PolicyOfficers)
	h.startFlow(t)

	dept := domain.TypeDepartmentWide
	flow, err := h.svc.ApplyUpdate(h.captain, Update{Type: &dept})
	require.NoError(t, err)
	assert.Equal(t, domain.AllStations, flow.Buffer.Station)
	assert.False(t, flow.Buffer.StationEditable())

	mission := domain.TypeMissionSpecific
	flow, err = h.svc.ApplyUpdate(h.captain, Update{Type: &mission})
	require.NoError(t, err)
	assert.NotEqual(t, domain.AllStations, flow.Buffer.Station)
	assert.True(t, flow.Buffer.StationEditable())
}

func TestApplyUpdate_RejectsUnknownStation(t *testing.T) {
	h := newHarness(t, PolicyOfficers)
	h.startFlow(t)

	bogus := "Bogus"
	_, err := h.svc.ApplyUpdate(h.captain, Update{Station: &bogus})
	require.Error(t, err)

	flow, err := h.svc.Current(h.captain)
	require.NoError(t, err)
	assert.Equal(t, "Station 2", flow.Buffer.Station, "buffer must keep the known station")

	// The rejected value never reaches the persisted draft either.
	flow, err = h.svc.Next(context.Background(), h.captain)
	require.NoError(t, err)
	assert.Equal(t, "Station 2", flow.Assessment.Station)
}

func TestApplyUpdate_RejectsMalformedDateAndTime(t *testing.T) {
	h := newHarness(t, PolicyOfficers)
	h.startFlow(t)

	badDate := "01-09-2026"
	_, err := h.svc.ApplyUpdate(h.captain, Update{Date: &badDate})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "YYYY-MM-DD")

	badTime := "7:30pm"
	_, err = h.svc.ApplyUpdate(h.captain, Update{Time: &badTime})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HH:MM")

	flow, err := h.svc.Current(h.captain)
	require.NoError(t, err)
	assert.Equal(t, "2026-09-01", flow.Buffer.Date)
	assert.Equal(t, "07:30", flow.Buffer.Time)
}

func TestFlow_ExpiresAfterInactivityAndResumes(t *testing.T) {
	h := newHarness(t, PolicyOfficers)
	flow := h.startFlow(t)
	draftID := flow.Assessment.ID

	h.clock.Advance(flowTTL + time.Minute)

	_, err := h.svc.Current(h.captain)
	require.ErrorIs(t, err, domain.ErrNoActiveFlow)

	// The persisted draft survives the in-memory expiry.
	resumed, err := h.svc.Resume(context.Background(), h.captain)
	require.NoError(t, err)
	assert.Equal(t, draftID, resumed.Assessment.ID)
}

func TestNext_MergesAndPersists(t *testing.T) {
	h := newHarness(t, PolicyOfficers)
	h.startFlow(t)

	station := "Station 1"
	_, err := h.svc.ApplyUpdate(h.captain, Update{Station: &station})
	require.NoError(t, err)

	flow, err := h.svc.Next(context.Background(), h.captain)
	require.NoError(t, err)

	assert.Equal(t, StepRiskFactors, flow.Step)
	assert.Equal(t, "Station 1", flow.Assessment.Station)
	assert.Equal(t, 1, h.repo.updateCalls)
}

func TestNext_SaveFailureDoesNotBlockNavigation(t *testing.T) {
	h := newHarness(t, PolicyOfficers)
	h.startFlow(t)
	h.repo.updateErr = errors.New("network down")

	flow, err := h.svc.Next(context.Background(), h.captain)
	require.NoError(t, err, "navigation must proceed despite the save failure")

	assert.Equal(t, StepRiskFactors, flow.Step)
	assert.NotEmpty(t, flow.LastSaveError)

	// Recovery: the next transition saves the buffered data.
	h.repo.updateErr = nil
	flow, err = h.svc.Next(context.Background(), h.captain)
	require.NoError(t, err)
	assert.Empty(t, flow.LastSaveError)
}

func TestPrev_MovesBack(t *testing.T) {
	h := newHarness(t, PolicyOfficers)
	h.startFlow(t)

	_, err := h.svc.Next(context.Background(), h.captain)
	require.NoError(t, err)

	flow, err := h.svc.Prev(context.Background(), h.captain)
	require.NoError(t, err)
	assert.Equal(t, StepDetails, flow.Step)

	_, err = h.svc.Prev(context.Background(), h.captain)
	assert.Error(t, err, "cannot move before the first step")
}

func TestPublish_OnlyFromReviewStep(t *testing.T) {
	h := newHarness(t, PolicyOfficers)
	h.startFlow(t)

	_, err := h.svc.Publish(context.Background(), h.captain)
	assert.ErrorIs(t, err, domain.ErrNotPublishable)
}

func TestPublish_FreezesScoreAndUpdatesExistingRecord(t *testing.T) {
	h := newHarness(t, PolicyOfficers)
	h.startFlow(t)

	_, err := h.svc.ApplyUpdate(h.captain, Update{
		Factors: &domain.RiskFactors{Supervision: 4, Planning: 4, TeamSelection: 4, TeamFitness: 4, Environment: 4, Complexity: 4},
	})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err = h.svc.Next(context.Background(), h.captain)
		require.NoError(t, err)
	}
	createsBefore := h.repo.createCalls

	res, err := h.svc.Publish(context.Background(), h.captain)
	require.NoError(t, err)

	a := res.Assessment
	assert.Equal(t, domain.StatusComplete, a.Status)
	require.NotNil(t, a.TotalScore)
	assert.Equal(t, 24, *a.TotalScore)
	require.NotNil(t, a.RiskLevel)
	assert.Equal(t, domain.RiskModerate, *a.RiskLevel)
	assert.NotNil(t, a.CompletedAt)
	assert.Equal(t, "Ada Rivera", a.CompletedBy)

	assert.Equal(t, createsBefore, h.repo.createCalls, "publish must never create a new record")

	stored, err := h.svc.Get(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusComplete, stored.Status)
}

func TestPublish_RecordWriteFailureIsBlocking(t *testing.T) {
	h := newHarness(t, PolicyOfficers)
	h.advanceToReview(t)
	h.repo.updateErr = errors.New("write refused")

	_, err := h.svc.Publish(context.Background(), h.captain)

	require.ErrorIs(t, err, domain.ErrPublishFailed)
	assert.Zero(t, h.notifier.calls, "no notifications before a durable publish")

	// Flow survives so the user can retry.
	flow, err := h.svc.Current(h.captain)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDraft, flow.Assessment.Status)
	assert.Nil(t, flow.Assessment.TotalScore)
}

func TestPublish_NotificationFailureIsSoft(t *testing.T) {
	h := newHarness(t, PolicyOfficers)
	h.notifier.ok = false
	h.repo.users = []domain.User{
		{ID: uuid.New(), Email: "ff@fd.gov", Role: domain.RoleFirefighter, Status: domain.UserActive},
	}
	h.advanceToReview(t)
	_, err := h.svc.ApplyUpdate(h.captain, Update{
		Recipients: &domain.RecipientSelection{Groups: []domain.GroupID{domain.GroupEveryone}},
	})
	require.NoError(t, err)

	res, err := h.svc.Publish(context.Background(), h.captain)

	require.NoError(t, err, "publish succeeds even when dispatch fails")
	assert.False(t, res.NotificationsSent)
	assert.Equal(t, domain.StatusComplete, res.Assessment.Status)
}

func TestPublish_ResolvesRecipientsAgainstLiveDirectory(t *testing.T) {
	h := newHarness(t, PolicyOfficers)
	h.repo.users = []domain.User{
		{ID: uuid.New(), Email: "ff1@fd.gov", Role: domain.RoleFirefighter, Status: domain.UserActive},
		{ID: uuid.New(), Email: "ff2@fd.gov", Role: domain.RoleFirefighter, Status: domain.UserActive},
		{ID: uuid.New(), Email: "gone@fd.gov", Role: domain.RoleFirefighter, Status: domain.UserInactive},
	}
	h.advanceToReview(t)
	_, err := h.svc.ApplyUpdate(h.captain, Update{
		Recipients: &domain.RecipientSelection{Groups: []domain.GroupID{domain.GroupAllFirefighters}},
	})
	require.NoError(t, err)

	res, err := h.svc.Publish(context.Background(), h.captain)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Recipients)
	assert.Len(t, h.notifier.recipients, 2)
	assert.True(t, res.NotificationsSent)
}

func TestDiscard_DeletesDraftWithAuditMeta(t *testing.T) {
	h := newHarness(t, PolicyOfficers)
	flow := h.startFlow(t)
	id := flow.Assessment.ID

	err := h.svc.Discard(context.Background(), h.captain)
	require.NoError(t, err)

	assert.Equal(t, 1, h.repo.deleteCalls)
	assert.Equal(t, h.captain, h.repo.lastAudit.ActorID)
	assert.Equal(t, "Ada Rivera", h.repo.lastAudit.ActorName)

	_, err = h.svc.Get(context.Background(), id)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = h.svc.Current(h.captain)
	assert.ErrorIs(t, err, domain.ErrNoActiveFlow)
}

func TestDiscard_ToleratesDeleteFailure(t *testing.T) {
	h := newHarness(t, PolicyOfficers)
	h.startFlow(t)
	h.repo.deleteErr = errors.New("network down")

	err := h.svc.Discard(context.Background(), h.captain)
	require.NoError(t, err, "delete failure is logged, not surfaced")

	_, err = h.svc.Current(h.captain)
	assert.ErrorIs(t, err, domain.ErrNoActiveFlow, "flow exits regardless")
}

func TestResume_ReopensTodaysDraft(t *testing.T) {
	h := newHarness(t, PolicyOfficers)
	flow := h.startFlow(t)
	id := flow.Assessment.ID

	// Simulate the editing session expiring.
	h.svc.flows.clear(h.captain)

	resumed, err := h.svc.Resume(context.Background(), h.captain)
	require.NoError(t, err)
	assert.Equal(t, id, resumed.Assessment.ID)
	assert.Equal(t, StepDetails, resumed.Step)
}

func TestResume_NoDraft(t *testing.T) {
	h := newHarness(t, PolicyOfficers)

	_, err := h.svc.Resume(context.Background(), h.captain)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
