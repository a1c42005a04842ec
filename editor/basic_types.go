package editor

type (
	// Action describes a user action that can be performed on the model,
	// initiated by calling the Do() method, usually from a button press or a
	// key binding. Action advertises whether it is enabled, so a UI can gray
	// out controls whose underlying operation is not currently allowed. The
	// underlying Doer can optionally implement Enabler to decide that; if it
	// does not, the action is always allowed.
	Action struct {
		doer Doer
	}

	// Doer is an interface that defines a single Do() method, called when an
	// action is performed.
	Doer interface {
		Do()
	}

	// Enabler is an interface that defines a single Enabled() method, used by
	// the UI to check if an Action/Bool/Float is enabled or not.
	Enabler interface {
		Enabled() bool
	}
)

func MakeAction(doer Doer) Action { return Action{doer: doer} }

func (a Action) Do() {
	e, ok := a.doer.(Enabler)
	if ok && !e.Enabled() {
		return
	}
	if a.doer != nil {
		a.doer.Do()
	}
}

func (a Action) Enabled() bool {
	if a.doer == nil {
		return false // no doer, not allowed
	}
	e, ok := a.doer.(Enabler)
	if !ok {
		return true // not enabler, always allowed
	}
	return e.Enabled()
}

// Bool

type (
	Bool struct {
		value BoolValue
	}

	BoolValue interface {
		Value() bool
		SetValue(bool)
	}
)

func MakeBool(value BoolValue) Bool { return Bool{value: value} }
func (v Bool) Toggle()              { v.SetValue(!v.Value()) }

func (v Bool) SetValue(value bool) (changed bool) {
	if !v.Enabled() || v.Value() == value {
		return false
	}
	v.value.SetValue(value)
	return true
}

func (v Bool) Value() bool {
	if v.value == nil {
		return false
	}
	return v.value.Value()
}

func (v Bool) Enabled() bool {
	if v.value == nil {
		return false
	}
	e, ok := v.value.(Enabler)
	if !ok {
		return true
	}
	return e.Enabled()
}

// Float

type (
	// Float represents a continuous value in the editor model, e.g. the
	// waveform amplitude scale. Float guards that all changes stay within the
	// range of the underlying FloatValue and that SetValue is not called when
	// the value is unchanged.
	Float struct {
		value FloatValue
	}

	FloatValue interface {
		Value() float64
		SetValue(float64) bool
		Range() FloatRange
	}

	FloatRange struct {
		Min, Max float64
	}
)

func MakeFloat(value FloatValue) Float { return Float{value: value} }

func (v Float) SetValue(value float64) bool {
	if !v.Enabled() {
		return false
	}
	value = v.Range().Clamp(value)
	if value == v.Value() {
		return false
	}
	return v.value.SetValue(value)
}

func (v Float) Value() float64 {
	if v.value == nil {
		return 0
	}
	return v.value.Value()
}

func (v Float) Range() FloatRange {
	if v.value == nil {
		return FloatRange{}
	}
	return v.value.Range()
}

func (v Float) Enabled() bool {
	if v.value == nil {
		return false
	}
	e, ok := v.value.(Enabler)
	if !ok {
		return true
	}
	return e.Enabled()
}

func (r FloatRange) Clamp(value float64) float64 {
	if value < r.Min {
		return r.Min
	}
	if value > r.Max {
		return r.Max
	}
	return value
}

// String

type (
	String struct {
		value StringValue
	}

	StringValue interface {
		Value() string
		SetValue(string) bool
	}
)

func MakeString(value StringValue) String { return String{value: value} }

func (v String) SetValue(value string) bool {
	if !v.Enabled() || v.Value() == value {
		return false
	}
	return v.value.SetValue(value)
}

func (v String) Value() string {
	if v.value == nil {
		return ""
	}
	return v.value.Value()
}

func (v String) Enabled() bool {
	if v.value == nil {
		return false
	}
	e, ok := v.value.(Enabler)
	if !ok {
		return true
	}
	return e.Enabled()
}
