package httpserver

import (
	"errors"
	"log/slog"

	"FireGar/internal/assessment"
	"FireGar/internal/models/domain"
	"FireGar/internal/scoring"
	"FireGar/internal/utils/logger/sl"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// headerUserID carries the authenticated member's id. Authentication
// itself happens upstream; only the permission outcomes are enforced here.
const headerUserID = "X-User-ID"

// flowResponse is the wizard view the frontend renders: the draft, the
// live edit buffer, and the always-current score preview.
type flowResponse struct {
	Assessment      *domain.Assessment `json:"assessment"`
	Step            int                `json:"step"`
	StepName        string             `json:"stepName"`
	Buffer          bufferView         `json:"buffer"`
	StationEditable bool               `json:"stationEditable"`
	TotalScore      int                `json:"totalScore"`
	RiskLevel       domain.RiskLevel   `json:"riskLevel"`
	RiskColor       string             `json:"riskColor"`
	LastSaveError   string             `json:"lastSaveError,omitempty"`
}

type bufferView struct {
	Date        string                    `json:"date"`
	Time        string                    `json:"time"`
	Type        domain.AssessmentType     `json:"type"`
	Station     string                    `json:"station"`
	Weather     *domain.WeatherSnapshot   `json:"weather,omitempty"`
	Factors     domain.RiskFactors        `json:"riskFactors"`
	Mitigations domain.Mitigations        `json:"mitigations"`
	Recipients  domain.RecipientSelection `json:"notificationRecipients"`
}

func renderFlow(flow *assessment.Flow) flowResponse {
	total := scoring.TotalScore(flow.Buffer.Factors)
	level := scoring.Classify(total)
	return flowResponse{
		Assessment: flow.Assessment,
		Step:       int(flow.Step),
		StepName:   flow.Step.String(),
		Buffer: bufferView{
			Date:        flow.Buffer.Date,
			Time:        flow.Buffer.Time,
			Type:        flow.Buffer.Type,
			Station:     flow.Buffer.Station,
			Weather:     flow.Buffer.Weather,
			Factors:     flow.Buffer.Factors,
			Mitigations: flow.Buffer.Mitigations,
			Recipients:  flow.Buffer.Recipients,
		},
		StationEditable: flow.Buffer.StationEditable(),
		TotalScore:      total,
		RiskLevel:       level,
		RiskColor:       level.Color(),
		LastSaveError:   flow.LastSaveError,
	}
}

func (s *Server) userID(c *fiber.Ctx) (uuid.UUID, error) {
	raw := c.Get(headerUserID)
	if raw == "" {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "missing "+headerUserID+" header")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "invalid "+headerUserID+" header")
	}
	return id, nil
}

// fail maps lifecycle errors to HTTP statuses with plain-text messages,
// never raw internal error payloads.
func (s *Server) fail(c *fiber.Ctx, err error) error {
	op := "httpserver.fail"

	switch {
	case errors.Is(err, domain.ErrDraftExists):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, domain.ErrNoStations):
		return c.Status(fiber.StatusPreconditionFailed).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, domain.ErrNotAllowed):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "assessment not found or no permission"})
	case errors.Is(err, domain.ErrNoActiveFlow):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, domain.ErrNotPublishable):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, domain.ErrPublishFailed):
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(fiber.Map{"error": fiberErr.Message})
	}

	s.log.Error("request failed", slog.String("op", op), sl.Err(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
}

func (s *Server) handleStart(c *fiber.Ctx) error {
	userID, err := s.userID(c)
	if err != nil {
		return s.fail(c, err)
	}

	flow, err := s.svc.Start(c.Context(), userID)
	if err != nil {
		return s.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(renderFlow(flow))
}

func (s *Server) handleResume(c *fiber.Ctx) error {
	userID, err := s.userID(c)
	if err != nil {
		return s.fail(c, err)
	}

	flow, err := s.svc.Resume(c.Context(), userID)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(renderFlow(flow))
}

func (s *Server) handleCurrent(c *fiber.Ctx) error {
	userID, err := s.userID(c)
	if err != nil {
		return s.fail(c, err)
	}

	flow, err := s.svc.Current(userID)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(renderFlow(flow))
}

type updateRequest struct {
	Date        *string                    `json:"date"`
	Time        *string                    `json:"time"`
	Type        *domain.AssessmentType     `json:"type"`
	Station     *string                    `json:"station"`
	Factors     *domain.RiskFactors        `json:"riskFactors"`
	Mitigations *domain.Mitigations        `json:"mitigations"`
	Recipients  *domain.RecipientSelection `json:"notificationRecipients"`
}

func (s *Server) handleUpdate(c *fiber.Ctx) error {
	userID, err := s.userID(c)
	if err != nil {
		return s.fail(c, err)
	}

	var req updateRequest
	if err := c.BodyParser(&req); err != nil {
		return s.fail(c, fiber.NewError(fiber.StatusBadRequest, "invalid request body"))
	}

	flow, err := s.svc.ApplyUpdate(userID, assessment.Update{
		Date:        req.Date,
		Time:        req.Time,
		Type:        req.Type,
		Station:     req.Station,
		Factors:     req.Factors,
		Mitigations: req.Mitigations,
		Recipients:  req.Recipients,
	})
	if err != nil {
		if errors.Is(err, domain.ErrNoActiveFlow) {
			return s.fail(c, err)
		}
		return s.fail(c, fiber.NewError(fiber.StatusBadRequest, err.Error()))
	}
	return c.JSON(renderFlow(flow))
}

func (s *Server) handleNext(c *fiber.Ctx) error {
	userID, err := s.userID(c)
	if err != nil {
		return s.fail(c, err)
	}

	flow, err := s.svc.Next(c.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrNoActiveFlow) {
			return s.fail(c, err)
		}
		return s.fail(c, fiber.NewError(fiber.StatusConflict, err.Error()))
	}
	return c.JSON(renderFlow(flow))
}

func (s *Server) handlePrev(c *fiber.Ctx) error {
	userID, err := s.userID(c)
	if err != nil {
		return s.fail(c, err)
	}

	flow, err := s.svc.Prev(c.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrNoActiveFlow) {
			return s.fail(c, err)
		}
		return s.fail(c, fiber.NewError(fiber.StatusConflict, err.Error()))
	}
	return c.JSON(renderFlow(flow))
}

func (s *Server) handleRefreshWeather(c *fiber.Ctx) error {
	userID, err := s.userID(c)
	if err != nil {
		return s.fail(c, err)
	}

	force := c.QueryBool("force")
	flow, err := s.svc.RefreshWeather(c.Context(), userID, force)
	if err != nil {
		if errors.Is(err, domain.ErrNoActiveFlow) {
			return s.fail(c, err)
		}
		// The form stays usable with whatever weather it had.
		resp := renderFlow(flow)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"flow":    resp,
			"warning": "weather data is currently unavailable",
		})
	}
	return c.JSON(renderFlow(flow))
}

type publishResponse struct {
	Assessment        *domain.Assessment `json:"assessment"`
	Recipients        int                `json:"recipients"`
	NotificationsSent bool               `json:"notificationsSent"`
	Warning           string             `json:"warning,omitempty"`
}

func (s *Server) handlePublish(c *fiber.Ctx) error {
	userID, err := s.userID(c)
	if err != nil {
		return s.fail(c, err)
	}

	res, err := s.svc.Publish(c.Context(), userID)
	if err != nil {
		return s.fail(c, err)
	}

	resp := publishResponse{
		Assessment:        res.Assessment,
		Recipients:        res.Recipients,
		NotificationsSent: res.NotificationsSent,
	}
	if !res.NotificationsSent {
		resp.Warning = "the assessment was published, but some notifications could not be delivered"
	}
	return c.JSON(resp)
}

func (s *Server) handleDiscard(c *fiber.Ctx) error {
	userID, err := s.userID(c)
	if err != nil {
		return s.fail(c, err)
	}

	if err := s.svc.Discard(c.Context(), userID); err != nil {
		return s.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) handleList(c *fiber.Ctx) error {
	if _, err := s.userID(c); err != nil {
		return s.fail(c, err)
	}

	list, err := s.svc.List(c.Context())
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(fiber.Map{"assessments": list})
}

func (s *Server) handleGet(c *fiber.Ctx) error {
	if _, err := s.userID(c); err != nil {
		return s.fail(c, err)
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return s.fail(c, fiber.NewError(fiber.StatusBadRequest, "invalid assessment id"))
	}

	a, err := s.svc.Get(c.Context(), id)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(a)
}

func (s *Server) handleStations(c *fiber.Ctx) error {
	stations, err := s.svc.Stations(c.Context())
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(fiber.Map{"stations": stations})
}
