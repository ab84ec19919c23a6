package checkout

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"

	"ercaspay/internal/ercaspay"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var csrfTokenPattern = regexp.MustCompile(`name="csrf_token" value="([^"]+)"`)

// newCheckoutServer stands up the handshake against a fake gateway and
// returns a browser-like client: cookie jar on, redirects not followed.
func newCheckoutServer(t *testing.T, gateway http.Handler, site Site, onCompleted CompletionHandler) (*httptest.Server, *http.Client) {
	t.Helper()

	gatewaySrv := httptest.NewServer(gateway)
	t.Cleanup(gatewaySrv.Close)

	client, err := ercaspay.NewClient(ercaspay.Config{Token: "test-token", BaseURL: gatewaySrv.URL})
	require.NoError(t, err)

	handler := NewHandler(client, site, "/thank-you", onCompleted, zap.NewNop().Sugar())
	router := chi.NewRouter()
	router.Mount("/checkout", handler.Routes())

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	browser := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return srv, browser
}

// fetchToken renders the page and pulls the anti-forgery token out of the
// form, leaving the session cookie in the jar.
func fetchToken(t *testing.T, srv *httptest.Server, browser *http.Client) string {
	t.Helper()

	resp, err := browser.Get(srv.URL + "/checkout/")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	page, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	match := csrfTokenPattern.FindStringSubmatch(string(page))
	require.Len(t, match, 2, "form must carry a csrf token")
	return match[1]
}

func paymentForm(token string) url.Values {
	return url.Values{
		"csrf_token": {token},
		"first_name": {"John"},
		"last_name":  {"Doe"},
		"email":      {"johndoe@gmail.com"},
		"amount":     {"15000"},
	}
}

func gatewaySuccess(t *testing.T, w http.ResponseWriter, body ercaspay.ResponseBody) {
	t.Helper()
	err := json.NewEncoder(w).Encode(ercaspay.GatewayResponse{
		RequestSuccessful: true,
		ResponseCode:      "success",
		ResponseBody:      &body,
	})
	require.NoError(t, err)
}

func TestSubmitRedirectsToGatewayCheckout(t *testing.T) {
	var initiated map[string]any
	srv, browser := newCheckoutServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/payment/initiate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&initiated))
		gatewaySuccess(t, w, ercaspay.ResponseBody{
			TransactionReference: "ERCS|1",
			CheckoutURL:          "https://pay.example/session/1",
		})
	}), Site{Name: "Shop", Description: "Order #1"}, nil)

	token := fetchToken(t, srv, browser)
	resp, err := browser.PostForm(srv.URL+"/checkout/", paymentForm(token))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "https://pay.example/session/1", resp.Header.Get("Location"))

	assert.Equal(t, "John Doe", initiated["customerName"])
	assert.Equal(t, "johndoe@gmail.com", initiated["customerEmail"])
	assert.Equal(t, float64(15000), initiated["amount"])
	assert.Equal(t, "NGN", initiated["currency"], "currency defaults when the form has none")
	assert.Equal(t, "Order #1", initiated["description"])
	assert.True(t, strings.HasSuffix(initiated["redirectUrl"].(string), "/checkout/auth"))

	ref, _ := initiated["paymentReference"].(string)
	assert.Regexp(t, `^[0-9a-f]{32}_\d{14}$`, ref)
}

func TestSubmitSpendsTokenOnFirstUse(t *testing.T) {
	srv, browser := newCheckoutServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gatewaySuccess(t, w, ercaspay.ResponseBody{CheckoutURL: "https://pay.example/x"})
	}), Site{Name: "Shop"}, nil)

	token := fetchToken(t, srv, browser)

	resp, err := browser.PostForm(srv.URL+"/checkout/", paymentForm(token))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)

	// Replaying the same token is refused.
	resp, err = browser.PostForm(srv.URL+"/checkout/", paymentForm(token))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestSubmitRejectsForgedToken(t *testing.T) {
	gatewayHit := false
	srv, browser := newCheckoutServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gatewayHit = true
	}), Site{Name: "Shop"}, nil)

	fetchToken(t, srv, browser)
	resp, err := browser.PostForm(srv.URL+"/checkout/", paymentForm("not-the-token"))
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.False(t, gatewayHit, "a failed token check must not reach the gateway")
}

func TestSubmitValidatesForm(t *testing.T) {
	srv, browser := newCheckoutServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("gateway must not be called")
	}), Site{Name: "Shop"}, nil)

	form := paymentForm(fetchToken(t, srv, browser))
	form.Set("email", "")
	resp, err := browser.PostForm(srv.URL+"/checkout/", form)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	form = paymentForm(fetchToken(t, srv, browser))
	form.Set("amount", "-5")
	resp, err = browser.PostForm(srv.URL+"/checkout/", form)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSubmitRequiresPhoneWhenConfigured(t *testing.T) {
	srv, browser := newCheckoutServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("gateway must not be called")
	}), Site{Name: "Shop", RequirePhone: true}, nil)

	resp, err := browser.PostForm(srv.URL+"/checkout/", paymentForm(fetchToken(t, srv, browser)))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSubmitSurfacesGatewayFailure(t *testing.T) {
	srv, browser := newCheckoutServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"errorMessage":"amount is below the minimum"}`))
	}), Site{Name: "Shop"}, nil)

	resp, err := browser.PostForm(srv.URL+"/checkout/", paymentForm(fetchToken(t, srv, browser)))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "amount is below the minimum")
}

func TestCallbackRequiresTransRef(t *testing.T) {
	gatewayHit := false
	srv, browser := newCheckoutServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gatewayHit = true
	}), Site{Name: "Shop"}, nil)

	resp, err := browser.Get(srv.URL + "/checkout/auth")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.False(t, gatewayHit, "a bare callback fails before any network call")
}

func TestCallbackVerifiesAndCompletes(t *testing.T) {
	var completed []CompletedPayment
	srv, browser := newCheckoutServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/payment/transaction/verify/ERCS|77", r.URL.Path)
		gatewaySuccess(t, w, ercaspay.ResponseBody{
			Status:   "PAID",
			Amount:   15000,
			Currency: "NGN",
			Customer: &ercaspay.Customer{Email: "johndoe@gmail.com"},
		})
	}), Site{Name: "Shop"}, func(ctx context.Context, p CompletedPayment) {
		completed = append(completed, p)
	})

	resp, err := browser.Get(srv.URL + "/checkout/auth?transRef=" + url.QueryEscape("ERCS|77"))
	require.NoError(t, err)
	resp.Body.Close()

	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/thank-you", resp.Header.Get("Location"))

	require.Len(t, completed, 1)
	assert.Equal(t, "ERCS|77", completed[0].TransactionRef)
	assert.Equal(t, "PAID", completed[0].Status)
	assert.Equal(t, float64(15000), completed[0].Amount)
	assert.Equal(t, "NGN", completed[0].Currency)
	assert.Equal(t, "johndoe@gmail.com", completed[0].CustomerEmail)
	require.NotNil(t, completed[0].Response)
}

func TestCallbackSkipsCompletionWithoutStatus(t *testing.T) {
	completions := 0
	srv, browser := newCheckoutServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gatewaySuccess(t, w, ercaspay.ResponseBody{})
	}), Site{Name: "Shop"}, func(ctx context.Context, p CompletedPayment) {
		completions++
	})

	resp, err := browser.Get(srv.URL + "/checkout/auth?transRef=ref")
	require.NoError(t, err)
	resp.Body.Close()

	// Still a redirect, but no completion event fired.
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/thank-you", resp.Header.Get("Location"))
	assert.Zero(t, completions)
}

func TestCallbackSurfacesVerifyFailure(t *testing.T) {
	srv, browser := newCheckoutServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"errorMessage":"unknown transaction"}`))
	}), Site{Name: "Shop"}, func(ctx context.Context, p CompletedPayment) {
		t.Error("completion must not fire on a failed verification")
	})

	resp, err := browser.Get(srv.URL + "/checkout/auth?transRef=ref")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "Not Found")
}

func TestCallbackTransportFailureMapsToBadGateway(t *testing.T) {
	gatewaySrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client, err := ercaspay.NewClient(ercaspay.Config{Token: "t", BaseURL: gatewaySrv.URL})
	require.NoError(t, err)
	gatewaySrv.Close()

	handler := NewHandler(client, Site{Name: "Shop"}, "", nil, zap.NewNop().Sugar())
	router := chi.NewRouter()
	router.Mount("/checkout", handler.Routes())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/checkout/auth?transRef=ref", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
