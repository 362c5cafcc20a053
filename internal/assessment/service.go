package assessment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"FireGar/internal/models/domain"
	"FireGar/internal/observability"
	"FireGar/internal/recipients"
	"FireGar/internal/scoring"
	"FireGar/internal/utils/logger/sl"
	"FireGar/internal/weather"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// Repository is the persistence contract the lifecycle engine needs.
type Repository interface {
	CreateAssessment(ctx context.Context, a *domain.Assessment) (*domain.Assessment, error)
	UpdateAssessment(ctx context.Context, id uuid.UUID, a *domain.Assessment) error
	DeleteAssessment(ctx context.Context, id uuid.UUID, meta domain.AuditMeta) error
	GetAssessment(ctx context.Context, id uuid.UUID) (*domain.Assessment, error)
	GetAllAssessments(ctx context.Context) ([]domain.Assessment, error)
	FindDraftByUserAndDate(ctx context.Context, userID uuid.UUID, date string) (*domain.Assessment, error)
	GetStations(ctx context.Context) ([]domain.Station, error)
	GetUserProfile(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	GetAllUsers(ctx context.Context) ([]domain.User, error)
}

// Notifier fans a published assessment out to its recipients.
type Notifier interface {
	Dispatch(ctx context.Context, a *domain.Assessment, recipients []domain.Recipient) bool
}

// Edit permission policies. Under PolicyOfficers only captains and admins
// may create or edit assessments; PolicyEveryone opens editing to any
// authenticated member.
const (
	PolicyOfficers = "officers"
	PolicyEveryone = "everyone"
)

// Service owns the assessment lifecycle: the per-user wizard flows, their
// persistence timing, and the publish sequence.
type Service struct {
	repo       Repository
	weather    weather.Provider
	notifier   Notifier
	metrics    *observability.Metrics
	clock      clockwork.Clock
	editPolicy string
	flows      *flowStore
	log        *slog.Logger
}

// New creates the assessment lifecycle service.
func New(
	logger *slog.Logger,
	repo Repository,
	weatherProvider weather.Provider,
	notifier Notifier,
	metrics *observability.Metrics,
	clock clockwork.Clock,
	editPolicy string,
) *Service {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if editPolicy != PolicyEveryone {
		editPolicy = PolicyOfficers
	}
	return &Service{
		repo:       repo,
		weather:    weatherProvider,
		notifier:   notifier,
		metrics:    metrics,
		clock:      clock,
		editPolicy: editPolicy,
		flows:      newFlowStore(clock),
		log:        logger.With(slog.String("component", "assessment")),
	}
}

// PublishResult is what the editing flow reports after a publish attempt
// succeeded. NotificationsSent false is a soft warning, not a failure.
type PublishResult struct {
	Assessment        *domain.Assessment
	Recipients        int
	NotificationsSent bool
}

// Update carries buffered form edits. Nil fields are left untouched.
type Update struct {
	Date        *string
	Time        *string
	Type        *domain.AssessmentType
	Station     *string
	Factors     *domain.RiskFactors
	Mitigations *domain.Mitigations
	Recipients  *domain.RecipientSelection
}

// Start begins a new draft for the user. Guards: the user may edit, at
// least one station exists, and no draft exists for today. The draft
// record is created immediately so a persistent id exists from step 1 on.
func (s *Service) Start(ctx context.Context, userID uuid.UUID) (*Flow, error) {
	op := "assessment.Service.Start"
	log := s.log.With(
		slog.String("op", op),
		slog.String("userID", userID.String()),
	)

	profile, err := s.repo.GetUserProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !s.canEdit(profile) {
		return nil, domain.ErrNotAllowed
	}

	stations, err := s.repo.GetStations(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(stations) == 0 {
		return nil, domain.ErrNoStations
	}
	stationNames := stationNames(stations)

	now := s.clock.Now()
	today := now.Format("2006-01-02")

	existing, err := s.repo.FindDraftByUserAndDate(ctx, userID, today)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if existing != nil {
		return nil, domain.ErrDraftExists
	}

	a := &domain.Assessment{
		UserID:  userID,
		Captain: profile.DisplayName(),
		Date:    today,
		Time:    now.Format("15:04"),
		Type:    domain.TypeMissionSpecific,
		Station: defaultStation(profile.Station, stationNames),
		Status:  domain.StatusDraft,
	}

	// Cache-first weather prefill. The draft starts with blank weather
	// fields when no snapshot is available at all.
	if snap, werr := s.weather.GetSnapshot(ctx, false); werr != nil {
		s.metrics.WeatherLookups.WithLabelValues("unavailable").Inc()
		log.Warn("weather snapshot unavailable", sl.Err(werr))
	} else {
		a.Weather = snap
		if snap.Stale {
			s.metrics.WeatherLookups.WithLabelValues("stale").Inc()
		} else {
			s.metrics.WeatherLookups.WithLabelValues("ok").Inc()
		}
	}

	created, err := s.repo.CreateAssessment(ctx, a)
	if err != nil {
		return nil, fmt.Errorf("%s: create draft: %w", op, err)
	}

	flow := &Flow{
		Assessment: created,
		Buffer:     newEditBuffer(created, stationNames),
		Step:       StepDetails,
	}
	s.flows.set(userID, flow)
	s.metrics.AssessmentsStarted.Inc()

	log.Info("draft assessment started",
		slog.String("assessmentID", created.ID.String()))
	return flow, nil
}

// Resume reopens today's existing draft in the wizard.
func (s *Service) Resume(ctx context.Context, userID uuid.UUID) (*Flow, error) {
	op := "assessment.Service.Resume"

	profile, err := s.repo.GetUserProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !s.canEdit(profile) {
		return nil, domain.ErrNotAllowed
	}

	stations, err := s.repo.GetStations(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	today := s.clock.Now().Format("2006-01-02")
	draft, err := s.repo.FindDraftByUserAndDate(ctx, userID, today)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if draft == nil {
		return nil, domain.ErrNotFound
	}

	flow := &Flow{
		Assessment: draft,
		Buffer:     newEditBuffer(draft, stationNames(stations)),
		Step:       StepDetails,
	}
	s.flows.set(userID, flow)
	return flow, nil
}

// Current returns the user's in-progress flow.
func (s *Service) Current(userID uuid.UUID) (*Flow, error) {
	flow, ok := s.flows.get(userID)
	if !ok {
		return nil, domain.ErrNoActiveFlow
	}
	return flow, nil
}

// ApplyUpdate merges form edits into the edit buffer. The type/station
// rule holds after every edit, in both directions.
func (s *Service) ApplyUpdate(userID uuid.UUID, upd Update) (*Flow, error) {
	op := "assessment.Service.ApplyUpdate"

	flow, err := s.Current(userID)
	if err != nil {
		return nil, err
	}
	b := flow.Buffer

	if upd.Date != nil {
		if _, perr := time.Parse("2006-01-02", *upd.Date); perr != nil {
			return nil, fmt.Errorf("%s: invalid date %q, want YYYY-MM-DD", op, *upd.Date)
		}
		b.Date = *upd.Date
	}
	if upd.Time != nil {
		if _, perr := time.Parse("15:04", *upd.Time); perr != nil {
			return nil, fmt.Errorf("%s: invalid time %q, want HH:MM", op, *upd.Time)
		}
		b.Time = *upd.Time
	}
	if upd.Type != nil {
		b.SetType(*upd.Type)
	}
	if upd.Station != nil {
		if err := b.SetStation(*upd.Station); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	if upd.Factors != nil {
		if err := b.SetFactors(*upd.Factors); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	if upd.Mitigations != nil {
		b.Mitigations = *upd.Mitigations
	}
	if upd.Recipients != nil {
		b.Recipients = *upd.Recipients
	}

	s.flows.touch(userID)
	return flow, nil
}

// RefreshWeather re-fetches the snapshot into the buffer, optionally
// bypassing the cache freshness window.
func (s *Service) RefreshWeather(ctx context.Context, userID uuid.UUID, force bool) (*Flow, error) {
	op := "assessment.Service.RefreshWeather"
	log := s.log.With(slog.String("op", op))

	flow, err := s.Current(userID)
	if err != nil {
		return nil, err
	}

	snap, err := s.weather.GetSnapshot(ctx, force)
	if err != nil {
		s.metrics.WeatherLookups.WithLabelValues("unavailable").Inc()
		log.Warn("weather refresh failed", sl.Err(err))
		return flow, fmt.Errorf("%s: %w", op, err)
	}
	flow.Buffer.Weather = snap
	if snap.Stale {
		s.metrics.WeatherLookups.WithLabelValues("stale").Inc()
	} else {
		s.metrics.WeatherLookups.WithLabelValues("ok").Inc()
	}
	return flow, nil
}

// Next flushes the current step's edits, persists, and advances. A save
// failure is recorded on the flow but never blocks navigation; the edits
// stay in memory and go out with the next save.
func (s *Service) Next(ctx context.Context, userID uuid.UUID) (*Flow, error) {
	op := "assessment.Service.Next"

	flow, err := s.Current(userID)
	if err != nil {
		return nil, err
	}
	if flow.Step >= StepReview {
		return nil, fmt.Errorf("%s: already at review step", op)
	}

	s.flushAndSave(ctx, flow)
	flow.Step++
	s.flows.touch(userID)
	return flow, nil
}

// Prev is symmetric to Next: merge, persist, move back one step.
func (s *Service) Prev(ctx context.Context, userID uuid.UUID) (*Flow, error) {
	op := "assessment.Service.Prev"

	flow, err := s.Current(userID)
	if err != nil {
		return nil, err
	}
	if flow.Step <= StepDetails {
		return nil, fmt.Errorf("%s: already at first step", op)
	}

	s.flushAndSave(ctx, flow)
	flow.Step--
	s.flows.touch(userID)
	return flow, nil
}

// Publish freezes score, level, and completion metadata, persists the
// terminal update on the existing record, then fans out notifications.
// The record write is blocking; notification failure is a soft warning.
func (s *Service) Publish(ctx context.Context, userID uuid.UUID) (*PublishResult, error) {
	op := "assessment.Service.Publish"
	log := s.log.With(
		slog.String("op", op),
		slog.String("userID", userID.String()),
	)

	flow, err := s.Current(userID)
	if err != nil {
		return nil, err
	}
	if flow.Step != StepReview {
		return nil, domain.ErrNotPublishable
	}

	a := flow.Assessment
	flow.Buffer.flushDetails(a)
	flow.Buffer.flushFactors(a)
	flow.Buffer.flushMitigations(a)

	total := scoring.TotalScore(a.Factors)
	level := scoring.Classify(total)
	now := s.clock.Now()

	a.TotalScore = &total
	a.RiskLevel = &level
	a.CompletedAt = &now
	a.CompletedBy = a.Captain
	a.Status = domain.StatusComplete

	// The publish update reuses the draft's id; it never creates a second
	// record.
	if err := s.repo.UpdateAssessment(ctx, a.ID, a); err != nil {
		a.Status = domain.StatusDraft
		a.TotalScore = nil
		a.RiskLevel = nil
		a.CompletedAt = nil
		a.CompletedBy = ""
		log.Error("publish record write failed", sl.Err(err))
		return nil, fmt.Errorf("%s: %w: %w", op, domain.ErrPublishFailed, err)
	}
	s.metrics.AssessmentsPublished.Inc()

	log.Info("assessment published",
		slog.String("assessmentID", a.ID.String()),
		slog.Int("totalScore", total),
		slog.String("riskLevel", string(level)),
	)

	resolved, ok := s.notifyRecipients(ctx, a)

	s.flows.clear(userID)
	return &PublishResult{
		Assessment:        a,
		Recipients:        resolved,
		NotificationsSent: ok,
	}, nil
}

// notifyRecipients resolves the recipient selection against the live
// directory and dispatches. Any failure here is soft.
func (s *Service) notifyRecipients(ctx context.Context, a *domain.Assessment) (int, bool) {
	op := "assessment.Service.notifyRecipients"
	log := s.log.With(slog.String("op", op))

	directory, err := s.repo.GetAllUsers(ctx)
	if err != nil {
		log.Error("could not load user directory for notifications", sl.Err(err))
		return 0, false
	}

	resolved := recipients.Resolve(a.Recipients, directory)
	ok := s.notifier.Dispatch(ctx, a, resolved)
	return len(resolved), ok
}

// Discard deletes the persisted draft (tolerating delete failure by
// logging only) and exits the flow.
func (s *Service) Discard(ctx context.Context, userID uuid.UUID) error {
	op := "assessment.Service.Discard"
	log := s.log.With(
		slog.String("op", op),
		slog.String("userID", userID.String()),
	)

	flow, err := s.Current(userID)
	if err != nil {
		return err
	}

	a := flow.Assessment
	if a.ID != uuid.Nil {
		meta := domain.AuditMeta{
			ActorID:   userID,
			ActorName: a.Captain,
			Reason:    "draft discarded",
		}
		if err := s.repo.DeleteAssessment(ctx, a.ID, meta); err != nil {
			log.Error("draft delete failed", sl.Err(err))
		}
	}

	s.metrics.AssessmentsDiscarded.Inc()
	s.flows.clear(userID)
	return nil
}

// Get returns one assessment. Published records are the canonical
// read-only artifacts; drafts are visible the same way.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Assessment, error) {
	return s.repo.GetAssessment(ctx, id)
}

// List returns every assessment, newest first.
func (s *Service) List(ctx context.Context) ([]domain.Assessment, error) {
	return s.repo.GetAllAssessments(ctx)
}

// Stations returns the configured station directory.
func (s *Service) Stations(ctx context.Context) ([]domain.Station, error) {
	return s.repo.GetStations(ctx)
}

// flushAndSave merges the current step's buffered edits and persists the
// draft. Failures are logged and surfaced via Flow.LastSaveError so
// navigation is never trapped by a transient save failure.
func (s *Service) flushAndSave(ctx context.Context, flow *Flow) {
	op := "assessment.Service.flushAndSave"
	log := s.log.With(slog.String("op", op))

	a := flow.Assessment
	switch flow.Step {
	case StepDetails:
		flow.Buffer.flushDetails(a)
	case StepRiskFactors:
		flow.Buffer.flushFactors(a)
	case StepMitigation:
		flow.Buffer.flushMitigations(a)
	case StepReview:
		// Read-only aggregation; nothing to merge.
		return
	}

	var err error
	if a.ID == uuid.Nil {
		var created *domain.Assessment
		created, err = s.repo.CreateAssessment(ctx, a)
		if err == nil {
			flow.Assessment = created
		}
	} else {
		err = s.repo.UpdateAssessment(ctx, a.ID, a)
	}

	if err != nil {
		s.metrics.StepSaves.WithLabelValues("error").Inc()
		flow.LastSaveError = "Your progress could not be saved. Your entries are kept and will be saved on the next step."
		log.Error("step-transition save failed",
			slog.String("step", flow.Step.String()),
			sl.Err(err))
		return
	}
	s.metrics.StepSaves.WithLabelValues("success").Inc()
	flow.LastSaveError = ""
}

// CanEdit reports the permission outcome for a user under the configured
// policy.
func (s *Service) CanEdit(u *domain.User) bool {
	return s.canEdit(u)
}

func (s *Service) canEdit(u *domain.User) bool {
	if s.editPolicy == PolicyEveryone {
		return true
	}
	return u.Role == domain.RoleCaptain || u.Role == domain.RoleAdmin
}

func stationNames(stations []domain.Station) []string {
	names := make([]string, len(stations))
	for i, st := range stations {
		names[i] = st.Name
	}
	return names
}

func defaultStation(preferred string, known []string) string {
	for _, name := range known {
		if name == preferred {
			return preferred
		}
	}
	if len(known) > 0 {
		return known[0]
	}
	return ""
}
