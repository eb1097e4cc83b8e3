package query

import (
	"strings"

	"github.com/jackc/pgx/v5"
)

// NewestFirst is the listing order; id breaks ties between same-day rows.
const NewestFirst = "ORDER BY t.occurred_on DESC, t.id DESC"

// Predicates is an ordered list of AND'ed SQL conditions over the
// transactions table aliased as t, with their named arguments.
// The owner condition is always the first element.
type Predicates struct {
	clauses []string
	args    pgx.NamedArgs
}

// Build composes the predicates for ownerID and f. Every read path
// (listing, totals, breakdown, export) must use the value returned here.
func Build(ownerID int, f Filter) Predicates {
	p := Predicates{args: pgx.NamedArgs{}}
	p = p.And("t.owner_id = @owner_id", "owner_id", ownerID)

	if len(f.Months) > 0 {
		p = p.And("EXTRACT(MONTH FROM t.occurred_on)::int = ANY(@months)", "months", toInt32(f.Months))
	}
	if len(f.Years) > 0 {
		p = p.And("EXTRACT(YEAR FROM t.occurred_on)::int = ANY(@years)", "years", toInt32(f.Years))
	}
	if f.CategoryID != nil {
		p = p.And("t.category_id = @category_id", "category_id", *f.CategoryID)
	}
	if f.Description != "" {
		p = p.And("t.description ILIKE @description", "description", "%"+escapeLike(f.Description)+"%")
	}
	return p
}

// And returns a copy of p with one more condition. p itself is not modified.
func (p Predicates) And(clause, name string, value any) Predicates {
	out := Predicates{
		clauses: make([]string, len(p.clauses), len(p.clauses)+1),
		args:    make(pgx.NamedArgs, len(p.args)+1),
	}
	copy(out.clauses, p.clauses)
	for k, v := range p.args {
		out.args[k] = v
	}
	out.clauses = append(out.clauses, clause)
	out.args[name] = value
	return out
}

// Where renders the WHERE clause.
func (p Predicates) Where() string {
	return "WHERE " + strings.Join(p.clauses, " AND ")
}

// Args returns the named arguments for the clause rendered by Where.
func (p Predicates) Args() pgx.NamedArgs {
	out := make(pgx.NamedArgs, len(p.args))
	for k, v := range p.args {
		out[k] = v
	}
	return out
}

// Clauses returns the individual conditions in order.
func (p Predicates) Clauses() []string {
	return append([]string(nil), p.clauses...)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes user text match literally inside an ILIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func toInt32(in []int) []int32 {
	out := make([]int32, len(in))
	for i, v := range in {
		out[i] = int32(v)
	}
	return out
}
