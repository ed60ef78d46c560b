package store

import (
	"strconv"
	"strings"
)

// queryBuilder folds optional predicates into one WHERE clause with
// positional arguments. Handlers never branch per filter combination: each
// present filter contributes exactly one AND-ed predicate.
type queryBuilder struct {
	conds []string
	args  []any
}

// where appends a predicate. Every "?" in expr is rewritten to the next
// positional placeholder, left to right.
func (b *queryBuilder) where(expr string, args ...any) {
	var sb strings.Builder
	next := len(b.args)
	for _, r := range expr {
		if r == '?' {
			next++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(next))
			continue
		}
		sb.WriteRune(r)
	}
	b.conds = append(b.conds, sb.String())
	b.args = append(b.args, args...)
}

func (b *queryBuilder) whereClause() string {
	if len(b.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(b.conds, " AND ")
}

// limitOffset appends pagination arguments and returns the matching SQL
// fragment. A non-positive limit means unbounded.
func (b *queryBuilder) limitOffset(page Page) string {
	var sb strings.Builder
	if page.Limit > 0 {
		b.args = append(b.args, page.Limit)
		sb.WriteString(" LIMIT $")
		sb.WriteString(strconv.Itoa(len(b.args)))
	}
	if page.Offset > 0 {
		b.args = append(b.args, page.Offset)
		sb.WriteString(" OFFSET $")
		sb.WriteString(strconv.Itoa(len(b.args)))
	}
	return sb.String()
}

// applyOrganizationFilter translates the optional organization filters into
// predicates. Omitted filters contribute nothing, which makes omission
// equivalent to an always-true predicate.
func applyOrganizationFilter(b *queryBuilder, f OrganizationFilter) {
	if f.BuildingID != nil {
		b.where("o.building_id = ?", *f.BuildingID)
	}
	if f.Name != nil {
		b.where("o.name ILIKE '%' || ? || '%'", *f.Name)
	}
	if f.ActivityID != nil {
		b.where(
			"EXISTS (SELECT 1 FROM organization_activities oa WHERE oa.organization_id = o.id AND oa.activity_id = ?)",
			*f.ActivityID,
		)
	}
	if len(f.ActivityIDs) > 0 {
		b.where(
			"EXISTS (SELECT 1 FROM organization_activities oa WHERE oa.organization_id = o.id AND oa.activity_id = ANY(?))",
			f.ActivityIDs,
		)
	}
}
