package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sumire/charity/internal/currency"
)

const defaultBaseCurrency = "USD"

// RateSource supplies exchange rate snapshots.
type RateSource interface {
	Rates(ctx context.Context, base string) (*currency.Rates, error)
}

type ratesQuery struct {
	Base string `query:"base" json:"base" mod:"trim,ucase" validate:"omitempty,iso4217"`
}

// CurrencyHandler exposes cached exchange rates to the donation widget.
type CurrencyHandler struct {
	rates RateSource
}

// NewCurrencyHandler creates a new CurrencyHandler.
func NewCurrencyHandler(rates RateSource) *CurrencyHandler {
	return &CurrencyHandler{rates: rates}
}

// Rates returns the rates for ?base=, USD by default.
func (h *CurrencyHandler) Rates(c echo.Context) error {
	var q ratesQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}
	if q.Base == "" {
		q.Base = defaultBaseCurrency
	}

	rates, err := h.rates.Rates(c.Request().Context(), q.Base)
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, "exchange rates", rates)
}
