// Package query turns request parameters into ledger game queries.
package query

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/avvvet/poker-ledger/internal/ledgersvc/models"
)

type Scope string

const (
	ScopeToday Scope = "today"
	ScopeAll   Scope = "all"
	ScopeRange Scope = "range"
)

const (
	DefaultLimit = 20
	MaxLimit     = 500
	dateLayout   = "2006-01-02"
)

// Error names the parameter that failed to parse.
type Error struct {
	Param   string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Param, e.Message)
}

// Filter is a parsed set of scope, player, hand and limit restrictions.
// From and To are calendar dates; To is inclusive.
type Filter struct {
	Scope    Scope
	From     *time.Time
	To       *time.Time
	PlayerID int64
	Hand     string
	Limit    int
}

// Parse reads scope, date_from, date_to, player_id, hand and limit from v.
// Explicit dates take precedence over scope. Dates are interpreted in loc.
func Parse(v url.Values, defaultScope Scope, loc *time.Location) (Filter, error) {
	if loc == nil {
		loc = time.Local
	}
	f := Filter{Scope: defaultScope, Limit: DefaultLimit}

	if raw := strings.TrimSpace(v.Get("scope")); raw != "" {
		switch Scope(raw) {
		case ScopeToday, ScopeAll:
			f.Scope = Scope(raw)
		default:
			return Filter{}, &Error{Param: "scope", Message: fmt.Sprintf("must be %q or %q", ScopeToday, ScopeAll)}
		}
	}

	from, err := parseDate(v, "date_from", loc)
	if err != nil {
		return Filter{}, err
	}
	to, err := parseDate(v, "date_to", loc)
	if err != nil {
		return Filter{}, err
	}
	if from != nil && to != nil && from.After(*to) {
		return Filter{}, &Error{Param: "date_from", Message: "must not be after date_to"}
	}
	if from != nil || to != nil {
		f.Scope = ScopeRange
		f.From, f.To = from, to
	}

	if raw := strings.TrimSpace(v.Get("player_id")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return Filter{}, &Error{Param: "player_id", Message: "must be a positive integer"}
		}
		f.PlayerID = id
	}

	// exact match, never normalized
	f.Hand = v.Get("hand")

	if raw := strings.TrimSpace(v.Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return Filter{}, &Error{Param: "limit", Message: "must be a positive integer"}
		}
		f.Limit = min(n, MaxLimit)
	}

	return f, nil
}

func parseDate(v url.Values, param string, loc *time.Location) (*time.Time, error) {
	raw := strings.TrimSpace(v.Get(param))
	if raw == "" {
		return nil, nil
	}
	d, err := time.ParseInLocation(dateLayout, raw, loc)
	if err != nil {
		return nil, &Error{Param: param, Message: "must be a date in YYYY-MM-DD form"}
	}
	return &d, nil
}

// Window resolves the scope to a half-open [from, to) interval in now's
// location. A nil bound is open.
func (f Filter) Window(now time.Time) (from, to *time.Time) {
	switch f.Scope {
	case ScopeToday:
		start := startOfDay(now)
		end := start.AddDate(0, 0, 1)
		return &start, &end
	case ScopeRange:
		if f.From != nil {
			start := startOfDay(f.From.In(now.Location()))
			from = &start
		}
		if f.To != nil {
			end := startOfDay(f.To.In(now.Location())).AddDate(0, 0, 1)
			to = &end
		}
		return from, to
	default:
		return nil, nil
	}
}

// Query builds the store query for the listing endpoints.
func (f Filter) Query(now time.Time) models.GameQuery {
	from, to := f.Window(now)
	return models.GameQuery{
		From:     from,
		To:       to,
		WinnerID: f.PlayerID,
		Hand:     f.Hand,
		Limit:    f.Limit,
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
