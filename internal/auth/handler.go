package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/tipslap/tipslap/internal/identity"
	"github.com/tipslap/tipslap/internal/metrics"
	"github.com/tipslap/tipslap/internal/otp"
	"github.com/tipslap/tipslap/internal/phone"
)

var e164Pattern = regexp.MustCompile(`^\+[1-9][0-9]{7,14}$`)

const (
	msgInvalidCode     = "Invalid verification code"
	msgTooManyAttempts = "Too many attempts. Please request a new code."
)

// Handler exposes the code sign-in endpoints.
type Handler struct {
	codes   *otp.Service
	ids     *identity.Service
	tokens  *TokenService
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewHandler wires the sign-in handler. m may be nil.
func NewHandler(codes *otp.Service, ids *identity.Service, tokens *TokenService, m *metrics.Metrics, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{codes: codes, ids: ids, tokens: tokens, metrics: m, logger: logger}
}

type requestCodeRequest struct {
	MobileNumber string `json:"mobileNumber"`
}

type verifyCodeRequest struct {
	MobileNumber string `json:"mobileNumber"`
	Code         string `json:"code"`
}

type verifyCodeResponse struct {
	Token     string                    `json:"token"`
	IsNewUser bool                      `json:"isNewUser"`
	User      *identity.ProfileResponse `json:"user,omitempty"`
}

// RequestCode issues a code for an E.164 number.
func (h *Handler) RequestCode(c *fiber.Ctx) error {
	var req requestCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid request body")
	}
	number := strings.TrimSpace(req.MobileNumber)
	if !e164Pattern.MatchString(number) {
		return fiber.NewError(http.StatusBadRequest, "mobileNumber must be in E.164 format")
	}
	if err := h.codes.Issue(c.UserContext(), number); err != nil {
		h.logger.Error("issue code failed", slog.String("phone", phone.Mask(number)), slog.Any("error", err))
		return fiber.NewError(http.StatusInternalServerError, "Failed to send code")
	}
	h.metrics.CodeRequested()
	return c.JSON(fiber.Map{"message": "Code sent"})
}

// VerifyCode exchanges a number and code for an access token, creating the
// account on first sign-in.
func (h *Handler) VerifyCode(c *fiber.Ctx) error {
	var req verifyCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid request body")
	}
	number := strings.TrimSpace(req.MobileNumber)
	code := strings.TrimSpace(req.Code)
	if !e164Pattern.MatchString(number) || len(code) != otp.CodeLength {
		h.metrics.CodeVerified(metrics.OutcomeInvalid)
		return fiber.NewError(http.StatusBadRequest, msgInvalidCode)
	}

	if err := h.codes.Verify(c.UserContext(), number, code); err != nil {
		switch {
		case errors.Is(err, otp.ErrInvalidCode):
			h.metrics.CodeVerified(metrics.OutcomeInvalid)
			return fiber.NewError(http.StatusUnauthorized, msgInvalidCode)
		case errors.Is(err, otp.ErrTooManyAttempts):
			h.metrics.CodeVerified(metrics.OutcomeBurned)
			return fiber.NewError(http.StatusTooManyRequests, msgTooManyAttempts)
		default:
			h.metrics.CodeVerified(metrics.OutcomeError)
			h.logger.Error("verify code failed", slog.String("phone", phone.Mask(number)), slog.Any("error", err))
			return fiber.NewError(http.StatusInternalServerError, "Verification failed")
		}
	}

	user, _, err := h.ids.EnsureByPhone(c.UserContext(), number)
	if err != nil {
		h.metrics.CodeVerified(metrics.OutcomeError)
		h.logger.Error("ensure user failed", slog.String("phone", phone.Mask(number)), slog.Any("error", err))
		return fiber.NewError(http.StatusInternalServerError, "Verification failed")
	}
	token, err := h.tokens.Issue(user)
	if err != nil {
		h.metrics.CodeVerified(metrics.OutcomeError)
		return fiber.NewError(http.StatusInternalServerError, "Verification failed")
	}
	h.metrics.CodeVerified(metrics.OutcomeSuccess)

	// Accounts that never finished signup are still reported as new. The user
	// object always carries the account ID.
	profile := identity.NewProfileResponse(user)
	return c.JSON(verifyCodeResponse{Token: token, IsNewUser: !user.HasProfile(), User: &profile})
}
