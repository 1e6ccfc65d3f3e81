package hrportal

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
)

// RequestOptions adjusts a single gateway call.
type RequestOptions struct {
	// Query is appended to the URL. Empty values are dropped.
	Query url.Values
	// Header entries are set on the outgoing request, overriding defaults.
	Header http.Header
	// SkipAuthorization sends the call without a bearer token and without
	// 401 recovery.
	SkipAuthorization bool
	// Binary returns the raw payload without envelope unwrapping.
	Binary bool
}

// Response is the outcome of a successful gateway call.
type Response struct {
	Status int
	Header http.Header
	// Data is the unwrapped payload: the envelope's data field, or the whole
	// body for bare responses. Nil for empty and binary responses.
	Data json.RawMessage
	// Raw is the body exactly as received.
	Raw []byte
}

// Decode unmarshals Data into v. An empty payload leaves v untouched.
func (r *Response) Decode(v any) error {
	if r == nil || len(r.Data) == 0 || v == nil {
		return nil
	}
	if err := json.Unmarshal(r.Data, v); err != nil {
		return errors.Join(errors.New("decode response payload"), err)
	}
	return nil
}

// Decision is the terminal outcome of a guard check.
type Decision struct {
	Admit bool
	// Target is the route to redirect to when Admit is false.
	Target string
	// ReturnURL is the originally requested URL, preserved so navigation can
	// resume after sign-in. Empty when there is nothing to resume.
	ReturnURL string

	param string
}

// Location renders the redirect target, carrying ReturnURL as a query
// parameter when set. It returns "" for admitting decisions.
func (d Decision) Location() string {
	if d.Admit {
		return ""
	}
	if d.ReturnURL == "" {
		return d.Target
	}
	param := d.param
	if param == "" {
		param = "returnUrl"
	}
	q := url.Values{}
	q.Set(param, d.ReturnURL)
	return d.Target + "?" + q.Encode()
}

func admit() Decision {
	return Decision{Admit: true}
}
