package checkout

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"ercaspay/internal/ercaspay"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Site describes the payment page shown to the customer.
type Site struct {
	Name         string
	Description  string
	RequirePhone bool
}

// Handler serves the checkout handshake: a CSRF-protected form that starts a
// transaction, and the unauthenticated gateway redirect that is re-verified
// server-side before the completion handler fires.
type Handler struct {
	client      *ercaspay.Client
	site        Site
	redirectURL string
	onCompleted CompletionHandler
	tokens      *TokenStore
	logger      *zap.SugaredLogger
}

// NewHandler wires a checkout page to a payment client. redirectURL is where
// the browser lands after the callback has been processed.
func NewHandler(client *ercaspay.Client, site Site, redirectURL string, onCompleted CompletionHandler, logger *zap.SugaredLogger) *Handler {
	if redirectURL == "" {
		redirectURL = "/"
	}
	return &Handler{
		client:      client,
		site:        site,
		redirectURL: redirectURL,
		onCompleted: onCompleted,
		tokens:      NewTokenStore(),
		logger:      logger,
	}
}

// Routes returns the handshake's router: GET/POST the form, GET /auth for
// the gateway redirect. Mount it at /checkout — the redirect URL sent to the
// gateway assumes that path.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.renderPage)
	r.Post("/", h.submitPayment)
	r.Get("/auth", h.authCallback)
	return r
}

func (h *Handler) renderPage(w http.ResponseWriter, r *http.Request) {
	token := h.tokens.Issue(sessionID(w, r))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store, max-age=0")
	err := pageTemplate.Execute(w, map[string]any{
		"Site":      h.site,
		"CSRFToken": token,
	})
	if err != nil {
		h.logger.Errorw("render checkout page", "error", err)
	}
}

func (h *Handler) submitPayment(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "malformed form", http.StatusBadRequest)
		return
	}

	// The token is removed before its validity matters: valid or not, a
	// submission spends it.
	if !h.tokens.Consume(sessionID(w, r), r.PostFormValue("csrf_token")) {
		http.Error(w, "invalid or expired form token", http.StatusForbidden)
		return
	}

	firstName := strings.TrimSpace(r.PostFormValue("first_name"))
	lastName := strings.TrimSpace(r.PostFormValue("last_name"))
	email := strings.TrimSpace(r.PostFormValue("email"))
	amountStr := strings.TrimSpace(r.PostFormValue("amount"))
	phone := ""
	if h.site.RequirePhone {
		phone = strings.TrimSpace(r.PostFormValue("phone_number"))
	}

	required := []string{firstName, lastName, email, amountStr}
	if h.site.RequirePhone {
		required = append(required, phone)
	}
	for _, field := range required {
		if field == "" {
			http.Error(w, "missing required field", http.StatusBadRequest)
			return
		}
	}

	amount, err := strconv.ParseFloat(amountStr, 64)
	if err != nil || amount <= 0 {
		http.Error(w, "invalid amount", http.StatusBadRequest)
		return
	}

	resp, err := h.client.Initiate(r.Context(), ercaspay.InitiateRequest{
		Amount:              amount,
		CustomerName:        firstName + " " + lastName,
		CustomerEmail:       email,
		PaymentReference:    ercaspay.NewPaymentReference(),
		CustomerPhoneNumber: phone,
		RedirectURL:         h.callbackURL(r),
		Description:         h.site.Description,
	})
	if err != nil {
		h.logger.Errorw("initiate payment", "error", err)
		http.Error(w, "could not start payment", http.StatusInternalServerError)
		return
	}

	if resp.ResponseBody != nil && resp.ResponseBody.CheckoutURL != "" {
		http.Redirect(w, r, resp.ResponseBody.CheckoutURL, http.StatusFound)
		return
	}
	h.gatewayError(w, resp)
}

// authCallback is the gateway's redirect target. The transaction reference on
// the query string is never trusted as proof of payment: it is re-verified
// against the gateway before the completion handler runs.
func (h *Handler) authCallback(w http.ResponseWriter, r *http.Request) {
	transRef := r.URL.Query().Get("transRef")
	if transRef == "" {
		http.Error(w, "missing transRef", http.StatusBadRequest)
		return
	}

	resp, err := h.client.Verify(r.Context(), transRef)
	if err != nil {
		h.logger.Errorw("verify transaction", "transRef", transRef, "error", err)
		http.Error(w, "could not verify payment", http.StatusInternalServerError)
		return
	}
	if resp.Failed() {
		h.gatewayError(w, resp)
		return
	}

	status := ""
	if resp.ResponseBody != nil {
		status = resp.ResponseBody.Status
	}
	// A verified response without a status is passed over silently: no
	// completion event, but the customer still lands on the redirect URL.
	if status != "" && h.onCompleted != nil {
		payment := CompletedPayment{
			TransactionRef: transRef,
			Status:         status,
			Response:       resp,
		}
		if body := resp.ResponseBody; body != nil {
			payment.Amount = body.Amount
			payment.Currency = body.Currency
			if body.Customer != nil {
				payment.CustomerEmail = body.Customer.Email
			}
		}
		h.onCompleted(r.Context(), payment)
	}
	http.Redirect(w, r, h.redirectURL, http.StatusFound)
}

// gatewayError surfaces a gateway-reported failure as the page's response,
// reusing the gateway's own status code. Non-numeric codes (the transport
// failure class) map to 502.
func (h *Handler) gatewayError(w http.ResponseWriter, resp *ercaspay.GatewayResponse) {
	status, err := strconv.Atoi(resp.ErrorCode)
	if err != nil || status < 400 || status > 599 {
		status = http.StatusBadGateway
	}
	h.logger.Warnw("gateway error", "errorCode", resp.ErrorCode, "message", resp.Message, "explanation", resp.Explanation)
	http.Error(w, fmt.Sprintf("%s: %s", resp.Message, resp.Explanation), status)
}

func (h *Handler) callbackURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/checkout/auth", scheme, r.Host)
}
