package taxlot

import "fmt"

// Method defines the lot-selection policy used to resolve a sale.
type Method int

const (
	// FIFO (First-In, First-Out) consumes the oldest lots first.
	FIFO Method = iota
	// LIFO (Last-In, First-Out) consumes the newest lots first.
	LIFO
	// HIFO (Highest-In, First-Out) consumes the highest-cost lots first,
	// minimizing the realized gain.
	HIFO
	// LOFO (Lowest-In, First-Out) consumes the lowest-cost lots first,
	// maximizing the realized gain.
	LOFO
	// AverageCost consumes a pro-rata mix of every open lot at their
	// weighted-average unit cost.
	AverageCost
	// Specific consumes exactly the lots designated by the caller.
	Specific
)

func (m Method) String() string {
	switch m {
	case FIFO:
		return "fifo"
	case LIFO:
		return "lifo"
	case HIFO:
		return "hifo"
	case LOFO:
		return "lofo"
	case AverageCost:
		return "average"
	case Specific:
		return "specific"
	default:
		return "unknown"
	}
}

// ParseMethod parses a string into a Method.
func ParseMethod(s string) (Method, error) {
	switch s {
	case "fifo":
		return FIFO, nil
	case "lifo":
		return LIFO, nil
	case "hifo":
		return HIFO, nil
	case "lofo":
		return LOFO, nil
	case "average", "avg":
		return AverageCost, nil
	case "specific":
		return Specific, nil
	default:
		return 0, fmt.Errorf("unknown lot selection method: %q", s)
	}
}

// Methods lists the automatic selection policies, i.e. every method except
// Specific which needs caller-designated lots.
func Methods() []Method {
	return []Method{FIFO, LIFO, HIFO, LOFO, AverageCost}
}

// MarshalJSON implements the json.Marshaler interface for Method.
func (m Method) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", m.String())), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface for Method.
func (m *Method) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, err := ParseMethod(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
