package table

import "fmt"

// Code classifies a diagnostic.
type Code int

const (
	// UnknownColumn: a filter or sort names a key the schema does not know.
	UnknownColumn Code = iota + 1
	// NonNumericValue: a numeric comparison got a value that does not parse.
	NonNumericValue
	// NotSortable: the sort key belongs to a column marked not sortable.
	NotSortable
	// InvalidPageSize: the page size was not positive.
	InvalidPageSize
	// PageOutOfRange: the requested page lies past the last page.
	PageOutOfRange
	// UnknownOperator: a filter carries an operator value outside the enum.
	UnknownOperator
)

func (c Code) String() string {
	switch c {
	case UnknownColumn:
		return "unknown_column"
	case NonNumericValue:
		return "non_numeric_value"
	case NotSortable:
		return "not_sortable"
	case InvalidPageSize:
		return "invalid_page_size"
	case PageOutOfRange:
		return "page_out_of_range"
	case UnknownOperator:
		return "unknown_operator"
	default:
		return fmt.Sprintf("unknown(%d)", int(c))
	}
}

// Diagnostic reports an input the pipeline ignored or corrected. It never
// changes the computed rows.
type Diagnostic struct {
	Code      Code
	ColumnKey string
	Message   string
}

func (d Diagnostic) String() string {
	if d.ColumnKey == "" {
		return d.Code.String() + ": " + d.Message
	}
	return d.Code.String() + " (" + d.ColumnKey + "): " + d.Message
}
