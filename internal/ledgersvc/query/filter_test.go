package query

import (
	"errors"
	"net/url"
	"testing"
	"time"
)

func TestParseDefaults(t *testing.T) {
	f, err := Parse(url.Values{}, ScopeToday, time.UTC)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if f.Scope != ScopeToday || f.Limit != DefaultLimit || f.PlayerID != 0 || f.Hand != "" {
		t.Fatalf("filter = %+v", f)
	}

	f, err = Parse(url.Values{}, ScopeAll, time.UTC)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if f.Scope != ScopeAll {
		t.Fatalf("scope = %q, want all", f.Scope)
	}
}

func TestParseRangeTakesPrecedenceOverScope(t *testing.T) {
	v := url.Values{"scope": {"today"}, "date_from": {"2026-01-02"}}
	f, err := Parse(v, ScopeToday, time.UTC)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if f.Scope != ScopeRange {
		t.Fatalf("scope = %q, want range", f.Scope)
	}
	if f.To != nil {
		t.Fatalf("to = %v, want open", f.To)
	}
}

func TestParseRejectsBadInput(t *testing.T) {
	tests := []struct {
		name  string
		v     url.Values
		param string
	}{
		{"unknown scope", url.Values{"scope": {"week"}}, "scope"},
		{"bad date", url.Values{"date_from": {"02/01/2026"}}, "date_from"},
		{"bad date_to", url.Values{"date_to": {"2026-13-01"}}, "date_to"},
		{"inverted range", url.Values{"date_from": {"2026-02-02"}, "date_to": {"2026-02-01"}}, "date_from"},
		{"bad player", url.Values{"player_id": {"abc"}}, "player_id"},
		{"zero player", url.Values{"player_id": {"0"}}, "player_id"},
		{"negative limit", url.Values{"limit": {"-1"}}, "limit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.v, ScopeToday, time.UTC)
			var qe *Error
			if !errors.As(err, &qe) {
				t.Fatalf("err = %v, want *Error", err)
			}
			if qe.Param != tt.param {
				t.Fatalf("param = %q, want %q", qe.Param, tt.param)
			}
		})
	}
}

func TestParseLimitIsCapped(t *testing.T) {
	f, err := Parse(url.Values{"limit": {"100000"}}, ScopeAll, time.UTC)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if f.Limit != MaxLimit {
		t.Fatalf("limit = %d, want %d", f.Limit, MaxLimit)
	}
}

func TestParseHandIsVerbatim(t *testing.T) {
	f, err := Parse(url.Values{"hand": {" royal flush"}}, ScopeAll, time.UTC)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if f.Hand != " royal flush" {
		t.Fatalf("hand = %q", f.Hand)
	}
}

func TestWindowToday(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	now := time.Date(2026, time.May, 1, 1, 30, 0, 0, loc)

	from, to := Filter{Scope: ScopeToday}.Window(now)
	if from == nil || to == nil {
		t.Fatal("today window must be closed")
	}
	wantFrom := time.Date(2026, time.May, 1, 0, 0, 0, 0, loc)
	if !from.Equal(wantFrom) || !to.Equal(wantFrom.AddDate(0, 0, 1)) {
		t.Fatalf("window = [%v, %v)", from, to)
	}
	// 22:00 UTC on April 30 is already May 1 in UTC+3
	if !from.Equal(time.Date(2026, time.April, 30, 21, 0, 0, 0, time.UTC)) {
		t.Fatalf("from in UTC = %v", from.UTC())
	}
}

func TestWindowRangeIsInclusiveOfLastDay(t *testing.T) {
	v := url.Values{"date_from": {"2026-03-01"}, "date_to": {"2026-03-01"}}
	f, err := Parse(v, ScopeToday, time.UTC)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	q := f.Query(time.Date(2026, time.June, 1, 12, 0, 0, 0, time.UTC))
	if q.From == nil || q.To == nil {
		t.Fatal("range must set both bounds")
	}
	if got := q.To.Sub(*q.From); got != 24*time.Hour {
		t.Fatalf("single-day range spans %v", got)
	}
}

func TestWindowAllIsOpen(t *testing.T) {
	from, to := Filter{Scope: ScopeAll}.Window(time.Now())
	if from != nil || to != nil {
		t.Fatalf("all window = [%v, %v), want open", from, to)
	}
}

func TestQueryCarriesPlayerHandAndLimit(t *testing.T) {
	f := Filter{Scope: ScopeAll, PlayerID: 7, Hand: "Flush", Limit: 3}
	q := f.Query(time.Now())
	if q.WinnerID != 7 || q.Hand != "Flush" || q.Limit != 3 {
		t.Fatalf("query = %+v", q)
	}
}
