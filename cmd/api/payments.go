package main

import (
	"errors"
	"net/http"

	"ercaspay/internal/ercaspay"

	"github.com/go-chi/chi/v5"
)

// Merchant-facing JSON endpoints over the payment client, for dashboards and
// support tooling. They sit behind basic auth; the customer-facing flow goes
// through /checkout.

func (app *application) verifyPaymentHandler(w http.ResponseWriter, r *http.Request) {
	transRef := chi.URLParam(r, "transRef")

	resp, err := app.client.Verify(r.Context(), transRef)
	if err != nil {
		if errors.Is(err, ercaspay.ErrMissingReference) {
			app.badRequestResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, resp)
}

func (app *application) detailsPaymentHandler(w http.ResponseWriter, r *http.Request) {
	transRef := chi.URLParam(r, "transRef")

	resp, err := app.client.Details(r.Context(), transRef)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, resp)
}

func (app *application) cancelPaymentHandler(w http.ResponseWriter, r *http.Request) {
	transRef := chi.URLParam(r, "transRef")

	resp, err := app.client.Cancel(r.Context(), transRef)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, resp)
}

type StatusPaymentPayload struct {
	TransactionRef string `json:"transaction_ref" validate:"required"`
	Reference      string `json:"reference"`
	PaymentMethod  string `json:"payment_method"`
}

func (app *application) statusPaymentHandler(w http.ResponseWriter, r *http.Request) {
	var payload StatusPaymentPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	resp, err := app.client.Status(r.Context(), payload.TransactionRef, payload.Reference, payload.PaymentMethod)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, resp)
}

type USSDPaymentPayload struct {
	TransactionRef string  `json:"transaction_ref" validate:"required"`
	BankName       string  `json:"bank_name" validate:"required"`
	Amount         float64 `json:"amount"`
}

func (app *application) ussdPaymentHandler(w http.ResponseWriter, r *http.Request) {
	var payload USSDPaymentPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if !ercaspay.SupportsBank(payload.BankName) {
		app.badRequestResponse(w, r, errors.New("unsupported bank for ussd"))
		return
	}

	resp, err := app.client.USSD(r.Context(), payload.BankName, payload.TransactionRef, payload.Amount)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, resp)
}

func (app *application) bankPaymentHandler(w http.ResponseWriter, r *http.Request) {
	transRef := chi.URLParam(r, "transRef")

	resp, err := app.client.Bank(r.Context(), transRef)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, resp)
}

func (app *application) supportedBanksHandler(w http.ResponseWriter, r *http.Request) {
	app.jsonResponse(w, http.StatusOK, ercaspay.SupportedBanks())
}
