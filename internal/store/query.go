package store

import (
	"fmt"
	"regexp"
	"strings"
)

var identRe = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Key addresses a single row by a natural or surrogate key column.
type Key struct {
	Field string
	Value interface{}
}

func ByID(id uint) Key { return Key{Field: "id", Value: id} }

func By(field string, value interface{}) Key { return Key{Field: field, Value: value} }

type Op string

const (
	OpEq  Op = "="
	OpGte Op = ">="
	OpLte Op = "<="
	OpIn  Op = "IN"
)

type Filter struct {
	Field string
	Op    Op
	Value interface{}
}

func Eq(field string, value interface{}) Filter { return Filter{Field: field, Op: OpEq, Value: value} }

func Gte(field string, value interface{}) Filter { return Filter{Field: field, Op: OpGte, Value: value} }

func Lte(field string, value interface{}) Filter { return Filter{Field: field, Op: OpLte, Value: value} }

func In(field string, values interface{}) Filter { return Filter{Field: field, Op: OpIn, Value: values} }

type Order struct {
	Field string
	Desc  bool
}

// Query describes a List call. A zero Query returns every row.
type Query struct {
	Filters []Filter
	Order   []Order
	Limit   int
}

func (q Query) Where(f ...Filter) Query {
	q.Filters = append(append([]Filter(nil), q.Filters...), f...)
	return q
}

func (q Query) OrderBy(field string, desc bool) Query {
	q.Order = append(append([]Order(nil), q.Order...), Order{Field: field, Desc: desc})
	return q
}

func (q Query) Take(n int) Query {
	q.Limit = n
	return q
}

func checkIdent(field string) error {
	if !identRe.MatchString(field) {
		return fmt.Errorf("invalid column name %q", field)
	}
	return nil
}

func (f Filter) clause() (string, error) {
	if err := checkIdent(f.Field); err != nil {
		return "", err
	}
	switch f.Op {
	case OpEq, OpGte, OpLte:
		return fmt.Sprintf("%s %s ?", f.Field, f.Op), nil
	case OpIn:
		return fmt.Sprintf("%s IN ?", f.Field), nil
	default:
		return "", fmt.Errorf("unsupported operator %q", f.Op)
	}
}

func (o Order) clause() (string, error) {
	if err := checkIdent(o.Field); err != nil {
		return "", err
	}
	dir := "ASC"
	if o.Desc {
		dir = "DESC"
	}
	return strings.Join([]string{o.Field, dir}, " "), nil
}
