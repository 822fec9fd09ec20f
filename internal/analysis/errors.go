package analysis

// Kind classifies a failed analysis.
type Kind int

const (
	// KindInput is an unsupported or unparseable upload. A client fault.
	KindInput Kind = iota + 1
	// KindService is a failure of the model service itself (quota, auth, network).
	KindService
	// KindShape is model output that could not be used: invalid JSON, a
	// non-object value, or an object carrying an error marker.
	KindShape
)

func (k Kind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindService:
		return "service"
	case KindShape:
		return "shape"
	default:
		return "unknown"
	}
}

// Error is returned by Pipeline.Analyze. RawAI holds whatever model output is
// worth showing to the caller and may be nil.
type Error struct {
	Kind    Kind
	Message string
	RawAI   map[string]any
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}
