package domain

import "fmt"

// FilterOp is a comparison operator in a metadata filter.
type FilterOp string

const (
	// OpEq matches values equal to the operand.
	OpEq FilterOp = "eq"

	// OpNe matches values not equal to the operand.
	OpNe FilterOp = "ne"

	// OpIn matches values contained in the operand list.
	OpIn FilterOp = "in"
)

// Filterable metadata fields. Anything else fails validation.
const (
	FieldDocumentID = "document_id"
	FieldChunkType  = "chunk_type"
	FieldFileName   = "file_name"
	FieldPageNumber = "page_number"
)

var filterableFields = map[string]bool{
	FieldDocumentID: true,
	FieldChunkType:  true,
	FieldFileName:   true,
	FieldPageNumber: true,
}

// Condition is one field/operator/value triple.
type Condition struct {
	Field  string
	Op     FilterOp
	Values []string
}

// Filter is a validated conjunction of metadata conditions. It
// replaces the free-form key/operator maps the index used to accept:
// conditions are checked against the known field set before they reach
// the store.
type Filter struct {
	conditions []Condition
}

// NewFilter creates an empty filter.
func NewFilter() *Filter {
	return &Filter{}
}

// Eq adds an equality condition.
func (f *Filter) Eq(field, value string) *Filter {
	f.conditions = append(f.conditions, Condition{Field: field, Op: OpEq, Values: []string{value}})
	return f
}

// Ne adds an inequality condition.
func (f *Filter) Ne(field, value string) *Filter {
	f.conditions = append(f.conditions, Condition{Field: field, Op: OpNe, Values: []string{value}})
	return f
}

// In adds a membership condition.
func (f *Filter) In(field string, values ...string) *Filter {
	f.conditions = append(f.conditions, Condition{Field: field, Op: OpIn, Values: values})
	return f
}

// Conditions returns the condition list. Callers must not mutate it.
func (f *Filter) Conditions() []Condition {
	if f == nil {
		return nil
	}
	return f.conditions
}

// IsEmpty reports whether the filter has no conditions.
func (f *Filter) IsEmpty() bool {
	return f == nil || len(f.conditions) == 0
}

// Validate checks every condition against the filterable field set.
func (f *Filter) Validate() error {
	if f == nil {
		return nil
	}
	for _, c := range f.conditions {
		if !filterableFields[c.Field] {
			return fmt.Errorf("%w: unknown filter field %q", ErrInvalidInput, c.Field)
		}
		if len(c.Values) == 0 {
			return fmt.Errorf("%w: filter on %q has no values", ErrInvalidInput, c.Field)
		}
		switch c.Op {
		case OpEq, OpNe:
			if len(c.Values) != 1 {
				return fmt.Errorf("%w: %s filter on %q needs exactly one value", ErrInvalidInput, c.Op, c.Field)
			}
		case OpIn:
			// Any non-empty value list is fine.
		default:
			return fmt.Errorf("%w: unknown filter operator %q", ErrInvalidInput, c.Op)
		}
	}
	return nil
}
