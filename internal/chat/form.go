package chat

// State is the submission lifecycle of the form.
type State int

const (
	StateIdle State = iota
	StateSubmitting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	default:
		return "unknown"
	}
}

// form keeps the input value and its validation state. Access is guarded by
// the owning Orchestrator.
type form struct {
	value     string
	fieldErr  *FieldError
	state     State
	minLength int
}

func (f *form) reset() {
	f.value = ""
	f.fieldErr = nil
}

func (f *form) setValue(v string) {
	f.value = v
	// a stale error is dropped once the value becomes valid
	if f.fieldErr != nil {
		if _, ferr := Validate(v, f.minLength); ferr == nil {
			f.fieldErr = nil
		}
	}
}
