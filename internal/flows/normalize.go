package flows

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/MrEthical07/hrportal/internal/envelope"
	"github.com/MrEthical07/hrportal/session"
)

// tokenFields lists the token field names the backend has used across
// versions, in lookup order.
var tokenFields = []string{"token", "accessToken", "access_token"}

// authPayload is the normalized view of a sign-in or refresh body: the
// envelope data when present, falling back to the body itself.
type authPayload struct {
	body envelope.Envelope
	data envelope.Envelope
}

func newAuthPayload(raw []byte) authPayload {
	body := envelope.Parse(raw)
	p := authPayload{body: body, data: body}
	if data, ok := body.Data(); ok {
		p.data = envelope.Parse(data)
	}
	return p
}

// rejected reports a returnCode that is present, non-empty and not the
// success code.
func (p authPayload) rejected() bool {
	return p.body.Code() != "" && !p.body.CodeOK()
}

// token returns the first non-empty token field, searching the payload
// before the body.
func (p authPayload) token() string {
	for _, env := range []envelope.Envelope{p.data, p.body} {
		for _, field := range tokenFields {
			if s, ok := env.String(field); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

func (p authPayload) str(key string) string {
	for _, env := range []envelope.Envelope{p.data, p.body} {
		if s, ok := env.String(key); ok && s != "" {
			return s
		}
	}
	return ""
}

func (p authPayload) id() int64 {
	for _, env := range []envelope.Envelope{p.data, p.body} {
		raw, ok := env.Fields["id"]
		if !ok {
			continue
		}
		if n, ok := parseID(raw); ok {
			return n
		}
	}
	return 0
}

func (p authPayload) roles() []string {
	for _, env := range []envelope.Envelope{p.data, p.body} {
		raw, ok := env.Fields["roles"]
		if !ok {
			continue
		}
		var roles []string
		if err := json.Unmarshal(raw, &roles); err == nil && roles != nil {
			return roles
		}
	}
	return []string{}
}

func parseID(raw json.RawMessage) (int64, bool) {
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		if f, err := n.Float64(); err == nil {
			return int64(f), true
		}
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if i, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
			return i, true
		}
	}
	return 0, false
}

// sessionFrom builds the Session for a successful sign-in. submitted is the
// username typed by the user and is the fallback identity.
func (p authPayload) sessionFrom(submitted, token string) *session.Session {
	username := p.str("username")
	if username == "" {
		username = submitted
	}
	return &session.Session{
		ID:         p.id(),
		Username:   username,
		Email:      p.str("email"),
		Roles:      p.roles(),
		Token:      token,
		EmployeeID: p.str("employeeId"),
	}
}

// failureMessage picks returnMessage, then message, then fallback.
func failureMessage(body []byte, fallback string) string {
	env := envelope.Parse(body)
	if s := env.ReturnMessage(); s != "" {
		return s
	}
	if s, ok := env.String("message"); ok && s != "" {
		return s
	}
	return fallback
}
