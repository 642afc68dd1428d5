package views

import (
	"strconv"
	"strings"
)

// selectQuery composes a SELECT statement piece by piece. Arguments are kept
// next to the fragment that uses them and emitted in clause order, so callers
// can mix placeholders into columns, joins and filters freely.
type selectQuery struct {
	from      string
	columns   []string
	colArgs   []interface{}
	joins     []string
	joinArgs  []interface{}
	where     []string
	whereArgs []interface{}
	groupBy   string
	orderBy   []string
	limit     int
	offset    int
}

func newSelect(from string) *selectQuery {
	return &selectQuery{from: from}
}

func (q *selectQuery) Column(expr string, args ...interface{}) *selectQuery {
	q.columns = append(q.columns, expr)
	q.colArgs = append(q.colArgs, args...)
	return q
}

func (q *selectQuery) Columns(exprs ...string) *selectQuery {
	q.columns = append(q.columns, exprs...)
	return q
}

func (q *selectQuery) Join(clause string, args ...interface{}) *selectQuery {
	q.joins = append(q.joins, clause)
	q.joinArgs = append(q.joinArgs, args...)
	return q
}

func (q *selectQuery) Where(cond string, args ...interface{}) *selectQuery {
	q.where = append(q.where, cond)
	q.whereArgs = append(q.whereArgs, args...)
	return q
}

func (q *selectQuery) GroupBy(expr string) *selectQuery {
	q.groupBy = expr
	return q
}

func (q *selectQuery) OrderBy(exprs ...string) *selectQuery {
	q.orderBy = append(q.orderBy, exprs...)
	return q
}

// Page sets LIMIT/OFFSET. A zero limit means no limit.
func (q *selectQuery) Page(limit, offset int) *selectQuery {
	q.limit = limit
	q.offset = offset
	return q
}

func (q *selectQuery) writeFrom(b *strings.Builder) {
	b.WriteString(" FROM ")
	b.WriteString(q.from)
	for _, j := range q.joins {
		b.WriteString(" ")
		b.WriteString(j)
	}
	if len(q.where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(q.where, " AND "))
	}
}

// SQL renders the full statement and its arguments.
func (q *selectQuery) SQL() (string, []interface{}) {
	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(q.columns, ", "))
	q.writeFrom(&b)
	if q.groupBy != "" {
		b.WriteString(" GROUP BY ")
		b.WriteString(q.groupBy)
	}
	if len(q.orderBy) > 0 {
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(q.orderBy, ", "))
	}

	args := make([]interface{}, 0, len(q.colArgs)+len(q.joinArgs)+len(q.whereArgs)+2)
	args = append(args, q.colArgs...)
	args = append(args, q.joinArgs...)
	args = append(args, q.whereArgs...)
	if q.limit > 0 {
		b.WriteString(" LIMIT ")
		b.WriteString(strconv.Itoa(q.limit))
		b.WriteString(" OFFSET ")
		b.WriteString(strconv.Itoa(q.offset))
	}
	return b.String(), args
}

// CountSQL renders a COUNT(*) over the same FROM, joins and filters,
// ignoring columns, ordering and paging.
func (q *selectQuery) CountSQL() (string, []interface{}) {
	var b strings.Builder
	b.WriteString("SELECT COUNT(*)")
	q.writeFrom(&b)
	args := make([]interface{}, 0, len(q.joinArgs)+len(q.whereArgs))
	args = append(args, q.joinArgs...)
	args = append(args, q.whereArgs...)
	return b.String(), args
}
