package response

import (
	"github.com/mcoot/arise-roster/internal/model"
	"github.com/mcoot/arise-roster/internal/services/spreadsheet"
)

// Message is a bare acknowledgement
type Message struct {
	Message string `json:"message"`
}

// Login is the response to a successful login. The token is also set as
// the session cookie; non-browser clients send it as a bearer token.
type Login struct {
	Message string     `json:"message"`
	Role    model.Role `json:"role"`
	Token   string     `json:"token"`
}

// Account is the response to an account create or update
type Account struct {
	Message string        `json:"message"`
	Account model.Summary `json:"account"`
}

// Activities lists recent activity entries
type Activities struct {
	Success    bool                      `json:"success"`
	Activities []*model.ActivityLogEntry `json:"activities"`
}

// ActivityLogged acknowledges a client-recorded activity
type ActivityLogged struct {
	Success     bool                    `json:"success"`
	Message     string                  `json:"message"`
	ActivityLog *model.ActivityLogEntry `json:"activityLog"`
}

// Import reports the tally of a spreadsheet import
type Import struct {
	Message string `json:"message"`
	spreadsheet.ImportResult
}

// Health reports server status
type Health struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
	Viewers int    `json:"viewers"`
}
