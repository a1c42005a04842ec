package editor

import "time"

type (
	// Alert is a transient message shown to the user: segment code errors,
	// file problems and the like. Alerts with a Name replace the previous
	// alert of the same name instead of stacking, so a segment that fails on
	// every tick shows one alert, not hundreds.
	Alert struct {
		Name     string
		Priority AlertPriority
		Message  string
		Duration time.Duration
	}

	AlertPriority int

	Alerts Model

	alertEntry struct {
		alert    Alert
		deadline time.Time
	}
)

const (
	None AlertPriority = iota
	Info
	Warning
	Error
)

const defaultAlertDuration = 3 * time.Second

func (m *Model) Alerts() *Alerts { return (*Alerts)(m) }

func (a *Alerts) Add(message string, priority AlertPriority) {
	(*Model)(a).addAlert(Alert{Message: message, Priority: priority, Duration: defaultAlertDuration})
}

func (a *Alerts) AddNamed(name, message string, priority AlertPriority) {
	(*Model)(a).addAlert(Alert{Name: name, Message: message, Priority: priority, Duration: defaultAlertDuration})
}

func (m *Model) addAlert(a Alert) {
	if a.Duration == 0 {
		a.Duration = defaultAlertDuration
	}
	entry := alertEntry{alert: a, deadline: time.Now().Add(a.Duration)}
	if a.Name != "" {
		for i := range m.alerts {
			if m.alerts[i].alert.Name == a.Name {
				m.alerts[i] = entry
				return
			}
		}
	}
	m.alerts = append(m.alerts, entry)
}

// Iterate yields the alerts that have not expired yet, dropping the expired
// ones as a side effect.
func (a *Alerts) Iterate(yield func(a Alert) bool) {
	m := (*Model)(a)
	now := time.Now()
	kept := m.alerts[:0]
	for _, e := range m.alerts {
		if e.deadline.After(now) {
			kept = append(kept, e)
		}
	}
	m.alerts = kept
	for _, e := range m.alerts {
		if !yield(e.alert) {
			return
		}
	}
}
