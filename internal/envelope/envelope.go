package envelope

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// SuccessCode is the returnCode the backend uses for a successful call.
const SuccessCode = "200"

// GenericRequestFailure is the message used when a failed response carries
// nothing readable.
const GenericRequestFailure = "Request failed"

// Envelope is the parsed view of a response body.
//
// Fields is nil when the body is not a JSON object.
type Envelope struct {
	Fields map[string]json.RawMessage
	Raw    []byte
}

// Parse inspects body. It never fails; bodies that are not JSON objects simply
// have no fields.
func Parse(body []byte) Envelope {
	env := Envelope{Raw: body}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return env
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return env
	}
	env.Fields = fields
	return env
}

// IsObject reports whether the body was a JSON object.
func (e Envelope) IsObject() bool {
	return e.Fields != nil
}

// Has reports whether key is present, even with a null value.
func (e Envelope) Has(key string) bool {
	_, ok := e.Fields[key]
	return ok
}

// Wrapped reports whether the body carries both returnCode and returnMessage.
func (e Envelope) Wrapped() bool {
	return e.Has("returnCode") && e.Has("returnMessage")
}

// Code renders returnCode as text. Numbers and strings are both accepted;
// null, missing and other shapes yield "".
func (e Envelope) Code() string {
	return scalarText(e.Fields["returnCode"])
}

// CodeOK reports whether returnCode is "200" or 200.
func (e Envelope) CodeOK() bool {
	raw, ok := e.Fields["returnCode"]
	if !ok {
		return false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s == SuccessCode
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n == 200
	}
	return false
}

// String returns the named field when it is a JSON string.
func (e Envelope) String(key string) (string, bool) {
	raw, ok := e.Fields[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// ReturnMessage returns returnMessage when it is a string.
func (e Envelope) ReturnMessage() string {
	s, _ := e.String("returnMessage")
	return s
}

// Data returns the raw data field and whether it was present and non-null.
func (e Envelope) Data() (json.RawMessage, bool) {
	raw, ok := e.Fields["data"]
	if !ok || isNull(raw) {
		return nil, false
	}
	return raw, true
}

// Detail renders the data field for error reporting: strings verbatim, other
// values as compact JSON.
func (e Envelope) Detail() string {
	raw, ok := e.Data()
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

// Failure describes an application-level failure reported inside a 2xx body.
type Failure struct {
	Code          string
	Message       string
	ReturnMessage string
	Detail        string
}

// Unwrap applies the success-envelope rule to a 2xx body.
//
// Wrapped bodies with a success code yield data, or the whole body when data is
// absent. Wrapped bodies with any other code yield a Failure. Everything else
// passes through unchanged. An empty body yields nil data.
func Unwrap(body []byte) (json.RawMessage, *Failure) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}
	env := Parse(body)
	if !env.Wrapped() {
		return json.RawMessage(body), nil
	}
	if env.CodeOK() {
		if data, ok := env.Data(); ok {
			return data, nil
		}
		return json.RawMessage(body), nil
	}

	code := env.Code()
	ret := env.ReturnMessage()
	msg := ret
	if msg == "" {
		msg = "API Error: " + code
	}
	return nil, &Failure{
		Code:          code,
		Message:       msg,
		ReturnMessage: ret,
		Detail:        env.Detail(),
	}
}

// ErrorMessage picks the message for a non-2xx response, in order: a non-blank
// string data field, returnMessage, the body's message field, the raw body
// text, then GenericRequestFailure.
func ErrorMessage(body []byte) string {
	env := Parse(body)
	if env.IsObject() {
		if s, ok := env.String("data"); ok && strings.TrimSpace(s) != "" {
			return s
		}
		if s := env.ReturnMessage(); s != "" {
			return s
		}
		if s, ok := env.String("message"); ok && s != "" {
			return s
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}
	return GenericRequestFailure
}

func scalarText(raw json.RawMessage) string {
	if len(raw) == 0 || isNull(raw) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if i, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
			return strconv.FormatInt(i, 10)
		}
		return n.String()
	}
	return ""
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
