package postgresrepo

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// clause accumulates AND-ed predicates with positional arguments. Clauses
// built by tenantWhere always start with the venue predicate, so caller
// filters can narrow a query but never widen it past the tenant.
type clause struct {
	preds []string
	args  []any
}

func tenantWhere(venueID uuid.UUID) *clause {
	return tenantWhereCol("venue_id", venueID)
}

func tenantWhereCol(col string, venueID uuid.UUID) *clause {
	c := &clause{}
	return c.and(col+" = ?", venueID)
}

// and appends pred, replacing each ? with the next positional placeholder.
func (c *clause) and(pred string, args ...any) *clause {
	var b strings.Builder
	i := 0
	for _, r := range pred {
		if r == '?' && i < len(args) {
			b.WriteString(c.arg(args[i]))
			i++
			continue
		}
		b.WriteRune(r)
	}
	c.preds = append(c.preds, b.String())
	return c
}

// arg registers v and returns its placeholder.
func (c *clause) arg(v any) string {
	c.args = append(c.args, v)
	return "$" + strconv.Itoa(len(c.args))
}

func (c *clause) String() string {
	return "WHERE " + strings.Join(c.preds, " AND ")
}

func (c *clause) Args() []any {
	return c.args
}

func joinComma(parts []string) string {
	return strings.Join(parts, ", ")
}
