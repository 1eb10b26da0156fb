package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sumire/charity/internal/domain"
	"github.com/sumire/charity/internal/service"
)

// Amount arrives as a string from the donation form, so it relies on the
// validator's weak decoding.
type donationRequest struct {
	Amount     int64  `json:"amount" validate:"required,gt=0,max=100000000000"`
	Currency   string `json:"currency" mod:"trim,ucase" validate:"omitempty,iso4217"`
	DonorName  string `json:"donorName" mod:"trim" validate:"max=100"`
	DonorEmail string `json:"donorEmail" mod:"trim,lcase" validate:"omitempty,email"`
	Message    string `json:"message" mod:"trim" validate:"max=1000"`
	Anonymous  bool   `json:"anonymous"`
}

type pageQuery struct {
	Page  int `query:"page" json:"page" validate:"gte=0"`
	Limit int `query:"limit" json:"limit" validate:"gte=0,lte=100"`
}

// DonationHandler accepts donations and lists them for admins.
type DonationHandler struct {
	donations *service.DonationService
}

// NewDonationHandler creates a new DonationHandler.
func NewDonationHandler(donations *service.DonationService) *DonationHandler {
	return &DonationHandler{donations: donations}
}

// Create records a donation toward the project in the path.
func (h *DonationHandler) Create(c echo.Context) error {
	body := Body[donationRequest](c)

	donation, err := h.donations.Donate(c.Request().Context(), domain.Donation{
		ProjectID:  c.Param("id"),
		Amount:     body.Amount,
		Currency:   body.Currency,
		DonorName:  optional(body.DonorName),
		DonorEmail: optional(body.DonorEmail),
		Message:    optional(body.Message),
		Anonymous:  body.Anonymous,
	})
	if err != nil {
		return err
	}
	return JSON(c, http.StatusCreated, "thank you for your donation", donation.Public())
}

// List returns a page of donations for the project in the path.
func (h *DonationHandler) List(c echo.Context) error {
	var q pageQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}

	donations, page, err := h.donations.List(c.Request().Context(), c.Param("id"), q.Page, q.Limit)
	if err != nil {
		return err
	}
	return JSONList(c, "donations", donations, metaFromPage(page))
}
