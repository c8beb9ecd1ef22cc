package postgres

import (
	"strings"
	"testing"
	"time"

	"github.com/aidengindin/ownhealth/internal/domain"
)

var testUser = mustUser("550e8400-e29b-41d4-a716-446655440000")

func mustUser(s string) domain.UserID {
	u, err := domain.ParseUserID(s)
	if err != nil {
		panic(err)
	}
	return u
}

func tp(t time.Time) *time.Time { return &t }

func TestComposeQuery(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(time.Hour)
	base := "SELECT value, timestamp FROM heart_rate"

	tests := []struct {
		name     string
		r        domain.TimeRange
		want     string
		wantArgs int
	}{
		{
			"unbounded",
			domain.TimeRange{},
			base + " WHERE user_id = $1 ORDER BY timestamp",
			1,
		},
		{
			"from only",
			domain.TimeRange{From: tp(from)},
			base + " WHERE user_id = $1 AND timestamp >= $2 ORDER BY timestamp",
			2,
		},
		{
			"to only",
			domain.TimeRange{To: tp(to)},
			base + " WHERE user_id = $1 AND timestamp <= $2 ORDER BY timestamp",
			2,
		},
		{
			"both",
			domain.TimeRange{From: tp(from), To: tp(to)},
			base + " WHERE user_id = $1 AND timestamp >= $2 AND timestamp <= $3 ORDER BY timestamp",
			3,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			query, args := composeQuery(base, testUser, tc.r)
			if query != tc.want {
				t.Errorf("query:\n got %q\nwant %q", query, tc.want)
			}
			if len(args) != tc.wantArgs {
				t.Errorf("args: got %d, want %d", len(args), tc.wantArgs)
			}
		})
	}
}

func TestComposeQuery_ExistingClauses(t *testing.T) {
	base := "SELECT value, timestamp FROM weight WHERE value > 0 ORDER BY timestamp"
	query, _ := composeQuery(base, testUser, domain.TimeRange{})

	if !strings.Contains(query, "WHERE value > 0 AND user_id = $1") {
		t.Errorf("existing WHERE not extended with AND: %q", query)
	}
	if strings.Count(strings.ToLower(query), "order by") != 1 {
		t.Errorf("ORDER BY duplicated: %q", query)
	}
}

// No user-supplied value may ever appear in the statement text; variable
// data travels only through the bind list.
func TestComposeQuery_OnlyPlaceholders(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(time.Hour)
	query, args := composeQuery("SELECT value, timestamp FROM hydration", testUser, domain.TimeRange{From: tp(from), To: tp(to)})

	if strings.Contains(query, testUser.String()) {
		t.Errorf("user id leaked into statement text: %q", query)
	}
	if strings.Contains(query, "2024") {
		t.Errorf("timestamp leaked into statement text: %q", query)
	}
	if got := strings.Count(query, "$"); got != len(args) {
		t.Errorf("placeholder count %d does not match %d bound args", got, len(args))
	}
}
