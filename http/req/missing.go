package req

// A Marker stands in for a value no request can carry.
type Marker string

func (m Marker) String() string { return "<" + string(m) + ">" }

// Missing marks a field for which no value was found.
//
// Missing is neither nil nor the empty string:
// a JSON null or an empty query param are present values.
const Missing Marker = "missing"

// IsMissing reports whether v is Missing.
func IsMissing(v any) bool {
	m, ok := v.(Marker)
	return ok && m == Missing
}
