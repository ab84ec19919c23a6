package ercaspay

// GatewayResponse is the normalized result of every lifecycle call. Remote
// failures never surface as Go errors: a non-2xx status or a transport
// failure fills ErrorCode/Message/Explanation instead, so callers always get
// a response they can inspect.
type GatewayResponse struct {
	RequestSuccessful bool          `json:"requestSuccessful,omitempty"`
	ResponseCode      string        `json:"responseCode,omitempty"`
	ResponseMessage   string        `json:"responseMessage,omitempty"`
	ResponseBody      *ResponseBody `json:"responseBody,omitempty"`

	ErrorCode   string `json:"errorCode,omitempty"`
	Message     string `json:"message,omitempty"`
	Explanation string `json:"explanation,omitempty"`
}

// Failed reports whether the gateway (or the transport) returned an error
// mapping instead of a success body.
func (r *GatewayResponse) Failed() bool {
	return r.ErrorCode != ""
}

// ResponseBody carries the gateway-specific fields of a successful call.
// Different endpoints fill different subsets; everything is optional.
type ResponseBody struct {
	PaymentReference     string  `json:"paymentReference,omitempty"`
	TransactionReference string  `json:"transactionReference,omitempty"`
	CheckoutURL          string  `json:"checkoutUrl,omitempty"`
	Status               string  `json:"status,omitempty"`
	Amount               float64 `json:"amount,omitempty"`
	Currency             string  `json:"currency,omitempty"`
	Description          string  `json:"description,omitempty"`

	// Verification fields.
	Domain        string  `json:"domain,omitempty"`
	ErcsReference string  `json:"ercs_reference,omitempty"`
	TxReference   string  `json:"tx_reference,omitempty"`
	PaidAt        string  `json:"paid_at,omitempty"`
	CreatedAt     string  `json:"created_at,omitempty"`
	Channel       string  `json:"channel,omitempty"`
	Fee           float64 `json:"fee,omitempty"`
	FeeBearer     string  `json:"fee_bearer,omitempty"`
	SettledAmount float64 `json:"settled_amount,omitempty"`

	Customer *Customer `json:"customer,omitempty"`

	// USSD and bank-transfer rails.
	USSDCode       string `json:"ussdCode,omitempty"`
	PaymentCode    string `json:"paymentCode,omitempty"`
	AccountNumber  string `json:"accountNumber,omitempty"`
	AccountName    string `json:"accountName,omitempty"`
	BankName       string `json:"bankName,omitempty"`
	AccountEmail   string `json:"accountEmail,omitempty"`
	ExpiresIn      int    `json:"expires_in,omitempty"`
	GatewayMessage string `json:"gatewayMessage,omitempty"`

	GatewayReference string `json:"gatewayReference,omitempty"`
}

type Customer struct {
	Name        string `json:"name,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
	Email       string `json:"email,omitempty"`
	Reference   string `json:"reference,omitempty"`
}
