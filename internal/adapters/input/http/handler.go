package http

import (
	"errors"

	"tarot-reading/internal/adapters/output/markdown"
	"tarot-reading/internal/domain"
	"tarot-reading/internal/ports/input"
	"tarot-reading/internal/ports/output"
	"tarot-reading/pkg/validator"

	"gorm.io/gorm"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// SessionCookie is the cookie holding the reading session ID
const SessionCookie = "tarot_session"

// HTTPHandler struct - Primary/Driving adapter for HTTP
type HTTPHandler struct {
	srv          input.TarotService
	renderer     output.Renderer
	db           *gorm.DB
	validator    validator.Validator
	secureCookie bool
}

// New func - Creates new HTTP handler. db is nil unless the deck is served from postgres.
func New(srv input.TarotService, renderer output.Renderer, db *gorm.DB, secureCookie bool) *HTTPHandler {
	return &HTTPHandler{
		srv:          srv,
		renderer:     renderer,
		db:           db,
		validator:    validator.New(),
		secureCookie: secureCookie,
	}
}

// HealthCheck func
func (hdl *HTTPHandler) HealthCheck(c *fiber.Ctx) error {
	if hdl.db != nil {
		sqlDB, err := hdl.db.DB()
		if err != nil {
			logrus.Errorln(err)
			return c.Status(fiber.StatusInternalServerError).JSON(ResponseBody{Status: InternalServerError})
		}
		if err := sqlDB.Ping(); err != nil {
			logrus.Errorln(err)
			return c.Status(fiber.StatusInternalServerError).JSON(ResponseBody{Status: InternalServerError})
		}
	}
	if deck := hdl.srv.Deck(); deck == nil || deck.Size() == 0 {
		return c.Status(fiber.StatusInternalServerError).JSON(ResponseBody{Status: InternalServerError})
	}
	return c.Status(fiber.StatusOK).JSON(ResponseBody{Status: Success, Data: ""})
}

// GetSession godoc
// @Summary Current reading
// @Description Cards drawn so far and the recorded dialogue
// @Tags READING
// @Produce json
// @Success 200 {object} SessionResponse
// @Router /v1/api/session [get]
func (hdl *HTTPHandler) GetSession(c *fiber.Ctx) error {
	session, err := hdl.srv.GetSession(hdl.sessionID(c))
	if err != nil {
		return hdl.fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(ResponseBody{Status: Success, Data: newSessionResponse(session)})
}

// DrawCard godoc
// @Summary Draw a card
// @Description Draws the next card of the five-card spread. A sixth draw fails with 400 and returns the current cards.
// @Tags READING
// @Produce json
// @Success 200 {object} DrawCardResponse
// @Failure 400 {object} ResponseBody
// @Failure 409 {object} ResponseBody
// @Router /v1/api/draw_card [post]
func (hdl *HTTPHandler) DrawCard(c *fiber.Ctx) error {
	result, err := hdl.srv.DrawCard(hdl.sessionID(c))
	if errors.Is(err, domain.ErrSessionFull) && result != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ResponseBody{
			Status: Status{Code: fiber.StatusBadRequest, Message: []string{domain.ErrSessionFull.Error()}},
			Data:   newDrawCardResponse(result, false),
		})
	}
	if err != nil {
		return hdl.fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(ResponseBody{Status: Success, Data: newDrawCardResponse(result, true)})
}

// Reset godoc
// @Summary Reset the reading
// @Description Clears drawn cards and dialogue. The question is kept.
// @Tags READING
// @Produce json
// @Success 200 {object} MessageResponse
// @Router /v1/api/reset [post]
func (hdl *HTTPHandler) Reset(c *fiber.Ctx) error {
	if err := hdl.srv.Reset(hdl.sessionID(c)); err != nil {
		return hdl.fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(ResponseBody{Status: Success, Data: MessageResponse{Message: "The reading has been reset."}})
}

// SetQuestion godoc
// @Summary Set the reading topic
// @Tags READING
// @Accept application/json
// @Produce json
// @param SetQuestion body QuestionRequest true "SetQuestion"
// @Success 200 {object} MessageResponse
// @Router /v1/api/question [post]
func (hdl *HTTPHandler) SetQuestion(c *fiber.Ctx) error {
	var request QuestionRequest
	if ok, err := hdl.parse(c, &request); !ok {
		return err
	}
	if err := hdl.srv.SetQuestion(hdl.sessionID(c), request.Question); err != nil {
		return hdl.fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(ResponseBody{Status: Success, Data: MessageResponse{Message: domain.QuestionOrDefault(request.Question)}})
}

// RecordTurn godoc
// @Summary Record dialogue
// @Description Stores an interpretation, feedback or reaction for a drawn card
// @Tags READING
// @Accept application/json
// @Produce json
// @param RecordTurn body TurnRequest true "RecordTurn"
// @Success 200 {object} SessionResponse
// @Failure 400 {object} ResponseBody
// @Router /v1/api/turns [post]
func (hdl *HTTPHandler) RecordTurn(c *fiber.Ctx) error {
	var request TurnRequest
	if ok, err := hdl.parse(c, &request); !ok {
		return err
	}
	id := hdl.sessionID(c)
	if err := hdl.srv.RecordTurn(id, *request.CardIndex, domain.TurnField(request.Field), request.Value); err != nil {
		return hdl.fail(c, err)
	}
	session, err := hdl.srv.GetSession(id)
	if err != nil {
		return hdl.fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(ResponseBody{Status: Success, Data: newSessionResponse(session)})
}

// Interpret godoc
// @Summary Interpret the reading
// @Description Single card, feedback reaction or final synthesis. Missing history is taken from the session. With record=true the exchange is stored.
// @Tags READING
// @Accept application/json
// @Produce json
// @param Interpret body InterpretRequest true "Interpret"
// @Success 200 {object} InterpretResponse
// @Failure 400 {object} ResponseBody
// @Failure 502 {object} ResponseBody
// @Router /v1/api/interpret [post]
func (hdl *HTTPHandler) Interpret(c *fiber.Ctx) error {
	var request InterpretRequest
	if ok, err := hdl.parse(c, &request); !ok {
		return err
	}
	domainReq, err := request.ToDomain()
	if err != nil {
		return hdl.fail(c, err)
	}

	id := hdl.sessionID(c)
	var text string
	if request.Record {
		text, err = hdl.srv.Converse(c.UserContext(), id, domainReq)
	} else {
		text, err = hdl.srv.Interpret(c.UserContext(), id, domainReq)
	}
	if err != nil {
		return hdl.fail(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(ResponseBody{Status: Success, Data: InterpretResponse{
		Interpretation:     text,
		InterpretationHTML: markdown.RenderOrFallback(hdl.renderer, text),
	}})
}

// parse reads and validates the JSON body. When it reports false the 400 response is already written.
func (hdl *HTTPHandler) parse(c *fiber.Ctx, out interface{}) (bool, error) {
	if err := c.BodyParser(out); err != nil {
		logrus.Warnln(err)
		return false, c.Status(fiber.StatusBadRequest).JSON(ResponseBody{Status: BadRequest})
	}
	if err := hdl.validator.ValidateStruct(out); err != nil {
		msg := ResponseBody{
			Status: BadRequest,
		}
		msg.Status.Message = validator.Messages(err)
		return false, c.Status(fiber.StatusBadRequest).JSON(msg)
	}
	return true, nil
}

// sessionID returns the caller's session ID, issuing a cookie on first contact
func (hdl *HTTPHandler) sessionID(c *fiber.Ctx) string {
	if raw := c.Cookies(SessionCookie); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			return id.String()
		}
	}
	id := uuid.NewString()
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		HTTPOnly: true,
		Secure:   hdl.secureCookie,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return id
}

// fail maps domain errors onto HTTP statuses. Model and transport details never reach the client.
func (hdl *HTTPHandler) fail(c *fiber.Ctx, err error) error {
	status, code := errorStatus(err)
	switch code {
	case fiber.StatusBadRequest:
		logrus.Warnln(err)
		status.Message = []string{err.Error()}
	default:
		logrus.Errorln(err)
	}
	return c.Status(code).JSON(ResponseBody{Status: status})
}

func errorStatus(err error) (Status, int) {
	switch {
	case errors.Is(err, domain.ErrInterpretationFailed):
		return BadGateway, fiber.StatusBadGateway
	case errors.Is(err, domain.ErrDeckExhausted):
		return ConFlict, fiber.StatusConflict
	case errors.Is(err, domain.ErrSessionFull),
		errors.Is(err, domain.ErrInvalidIndex),
		errors.Is(err, domain.ErrInvalidRequest):
		return BadRequest, fiber.StatusBadRequest
	default:
		return InternalServerError, fiber.StatusInternalServerError
	}
}
