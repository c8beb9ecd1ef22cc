package postgres

import (
	"fmt"
	"strings"

	"github.com/aidengindin/ownhealth/internal/domain"
)

// composeQuery appends user and time-range predicates plus ordering to a
// base selection. Every variable lands in args as a positional bind; no
// caller-supplied value is ever written into the statement text. The
// WHERE and ORDER BY detection is a case-insensitive substring match,
// which is fine because base fragments are static and internally
// authored.
func composeQuery(base string, userID domain.UserID, r domain.TimeRange) (string, []any) {
	var b strings.Builder
	b.WriteString(base)

	lower := strings.ToLower(base)
	if strings.Contains(lower, "where") {
		b.WriteString(" AND ")
	} else {
		b.WriteString(" WHERE ")
	}

	args := []any{userID.String()}
	fmt.Fprintf(&b, "user_id = $%d", len(args))

	if r.From != nil {
		args = append(args, r.From.UTC())
		fmt.Fprintf(&b, " AND timestamp >= $%d", len(args))
	}
	if r.To != nil {
		args = append(args, r.To.UTC())
		fmt.Fprintf(&b, " AND timestamp <= $%d", len(args))
	}

	if !strings.Contains(lower, "order by") {
		b.WriteString(" ORDER BY timestamp")
	}
	return b.String(), args
}
