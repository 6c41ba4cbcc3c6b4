package interpret

// SliceKind is the closed set of slice types the synthesizer understands.
type SliceKind int

const (
	KindUnknown SliceKind = iota
	KindStateView
	KindStateChange
	KindAutomation
)

// ParseSliceKind matches the declared sliceType literally. Anything else,
// including different casing or an absent value, is KindUnknown.
func ParseSliceKind(s string) SliceKind {
	switch s {
	case "STATE_VIEW":
		return KindStateView
	case "STATE_CHANGE":
		return KindStateChange
	case "AUTOMATION":
		return KindAutomation
	default:
		return KindUnknown
	}
}

func (k SliceKind) String() string {
	switch k {
	case KindStateView:
		return "STATE_VIEW"
	case KindStateChange:
		return "STATE_CHANGE"
	case KindAutomation:
		return "AUTOMATION"
	default:
		return "UNKNOWN"
	}
}
