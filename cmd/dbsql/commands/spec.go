// Package commands implements the dbsql CLI commands.
package commands

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mrjgreen/database"
)

// QuerySpec describes a SELECT in YAML:
//
//	table: users
//	select: [id, email]
//	where:
//	  - {column: votes, operator: ">", value: 100}
//	  - {column: name, value: John, or: true}
//	in:
//	  - {column: id, values: [1, 2, 3]}
//	order:
//	  - {column: id, direction: desc}
//	limit: 10
type QuerySpec struct {
	Table    string      `yaml:"table"`
	Select   []string    `yaml:"select,omitempty"`
	Distinct bool        `yaml:"distinct,omitempty"`
	Where    []WhereSpec `yaml:"where,omitempty"`
	In       []InSpec    `yaml:"in,omitempty"`
	Null     []string    `yaml:"null,omitempty"`
	NotNull  []string    `yaml:"not_null,omitempty"`
	Group    []string    `yaml:"group,omitempty"`
	Order    []OrderSpec `yaml:"order,omitempty"`
	Limit    int         `yaml:"limit,omitempty"`
	Offset   int         `yaml:"offset,omitempty"`
}

// WhereSpec is one basic where clause. An empty operator means "=".
type WhereSpec struct {
	Column   string `yaml:"column"`
	Operator string `yaml:"operator,omitempty"`
	Value    any    `yaml:"value"`
	Or       bool   `yaml:"or,omitempty"`
}

type InSpec struct {
	Column string `yaml:"column"`
	Values []any  `yaml:"values"`
	Not    bool   `yaml:"not,omitempty"`
}

type OrderSpec struct {
	Column    string `yaml:"column"`
	Direction string `yaml:"direction,omitempty"`
}

// ReadQuerySpec decodes a spec from path, or from stdin when path is "-".
func ReadQuerySpec(path string, stdin io.Reader) (*QuerySpec, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read query: %w", err)
	}
	return ParseQuerySpec(data)
}

// ParseQuerySpec decodes a YAML query. Unknown keys are rejected.
func ParseQuerySpec(data []byte) (*QuerySpec, error) {
	spec := &QuerySpec{}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(spec); err != nil {
		return nil, fmt.Errorf("failed to parse query: %w", err)
	}
	if spec.Table == "" {
		return nil, fmt.Errorf("query has no table")
	}
	return spec, nil
}

// Apply adds the spec's clauses to b.
func (s *QuerySpec) Apply(b *database.Builder) *database.Builder {
	b.From(s.Table)
	if len(s.Select) > 0 {
		b.Select(toAny(s.Select)...)
	}
	if s.Distinct {
		b.Distinct()
	}
	for _, w := range s.Where {
		op := w.Operator
		if op == "" {
			op = "="
		}
		if w.Or {
			b.OrWhere(w.Column, op, w.Value)
		} else {
			b.Where(w.Column, op, w.Value)
		}
	}
	for _, in := range s.In {
		if in.Not {
			b.WhereNotIn(in.Column, in.Values)
		} else {
			b.WhereIn(in.Column, in.Values)
		}
	}
	for _, c := range s.Null {
		b.WhereNull(c)
	}
	for _, c := range s.NotNull {
		b.WhereNotNull(c)
	}
	if len(s.Group) > 0 {
		b.GroupBy(toAny(s.Group)...)
	}
	for _, o := range s.Order {
		direction := o.Direction
		if direction == "" {
			direction = "asc"
		}
		b.OrderBy(o.Column, direction)
	}
	if s.Offset > 0 {
		b.Offset(s.Offset)
	}
	if s.Limit > 0 {
		b.Limit(s.Limit)
	}
	return b
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
