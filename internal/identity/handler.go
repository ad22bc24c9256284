package identity

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// UserIDLocal is the fiber.Ctx local holding the authenticated user ID.
const UserIDLocal = "user_id"

// Handler exposes identity endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs an identity HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type profileRequest struct {
	FullName       string `json:"fullName"`
	Alias          string `json:"alias"`
	CanGiveTips    *bool  `json:"canGiveTips"`
	CanReceiveTips *bool  `json:"canReceiveTips"`
}

func (r profileRequest) input() ProfileInput {
	in := ProfileInput{FullName: r.FullName, Alias: r.Alias, CanGiveTips: true, CanReceiveTips: true}
	if r.CanGiveTips != nil {
		in.CanGiveTips = *r.CanGiveTips
	}
	if r.CanReceiveTips != nil {
		in.CanReceiveTips = *r.CanReceiveTips
	}
	return in
}

// ProfileResponse is the wire form of a user profile.
type ProfileResponse struct {
	ID        string  `json:"id"`
	Alias     string  `json:"alias,omitempty"`
	FullName  string  `json:"fullName,omitempty"`
	AvatarURL string  `json:"avatarUrl,omitempty"`
	Balance   float64 `json:"balance"`
}

// NewProfileResponse converts a user into its wire form. Balance is in dollars.
func NewProfileResponse(u User) ProfileResponse {
	return ProfileResponse{
		ID:        u.ID,
		Alias:     u.Alias,
		FullName:  u.FullName,
		AvatarURL: u.AvatarURL,
		Balance:   float64(u.BalanceCents) / 100,
	}
}

// GetProfile returns the caller's profile. Accounts without a profile answer 404.
func (h *Handler) GetProfile(c *fiber.Ctx) error {
	user, err := h.service.Get(c.UserContext(), currentUser(c))
	if err != nil {
		return mapError(err)
	}
	if !user.HasProfile() {
		return fiber.NewError(http.StatusNotFound, "Profile not found")
	}
	return c.JSON(fiber.Map{"data": NewProfileResponse(user)})
}

// Create sets the first profile of a freshly verified account.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req profileRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid request body")
	}
	user, err := h.service.CreateProfile(c.UserContext(), currentUser(c), req.input())
	if err != nil {
		return mapError(err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": NewProfileResponse(user)})
}

// UpdateProfile replaces the caller's name and alias.
func (h *Handler) UpdateProfile(c *fiber.Ctx) error {
	var req profileRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid request body")
	}
	user, err := h.service.UpdateProfile(c.UserContext(), currentUser(c), req.input())
	if err != nil {
		return mapError(err)
	}
	return c.JSON(fiber.Map{"data": NewProfileResponse(user)})
}

// Search lists other users whose alias or name contains q.
func (h *Handler) Search(c *fiber.Ctx) error {
	users, err := h.service.Search(c.UserContext(), currentUser(c), c.Query("q"), c.QueryInt("limit", DefaultSearchLimit))
	if err != nil {
		return mapError(err)
	}
	out := make([]ProfileResponse, 0, len(users))
	for _, u := range users {
		out = append(out, NewProfileResponse(u))
	}
	return c.JSON(fiber.Map{"data": out})
}

func currentUser(c *fiber.Ctx) string {
	id, _ := c.Locals(UserIDLocal).(string)
	return id
}

func mapError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.NewError(http.StatusNotFound, "User not found")
	case errors.Is(err, ErrAliasTaken):
		return fiber.NewError(http.StatusConflict, "Alias already taken")
	case errors.Is(err, ErrProfileExists):
		return fiber.NewError(http.StatusConflict, "Profile already exists")
	case errors.Is(err, ErrNameRequired):
		return fiber.NewError(http.StatusBadRequest, "Please enter your full name")
	case errors.Is(err, ErrAliasInvalid):
		return fiber.NewError(http.StatusBadRequest, "Please enter a valid alias")
	default:
		return err
	}
}
