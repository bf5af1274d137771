package seq

import "time"

type (
	AlertPriority int

	// Alert is a message to show to the user for a while. Alerts with a
	// Name replace any previous alert with the same name, so a repeating
	// event updates one alert instead of stacking up copies.
	Alert struct {
		Name     string
		Priority AlertPriority
		Message  string
		Duration time.Duration
	}

	Alerts struct {
		list []Alert
	}
)

const (
	Info AlertPriority = iota
	Warning
	Error
)

const defaultAlertDuration = 3 * time.Second

func (p AlertPriority) String() string {
	switch p {
	case Warning:
		return "warning"
	case Error:
		return "error"
	}
	return "info"
}

func (a *Alerts) Add(message string, priority AlertPriority) {
	a.AddAlert(Alert{Message: message, Priority: priority, Duration: defaultAlertDuration})
}

func (a *Alerts) AddNamed(name, message string, priority AlertPriority) {
	a.AddAlert(Alert{Name: name, Message: message, Priority: priority, Duration: defaultAlertDuration})
}

func (a *Alerts) AddAlert(n Alert) {
	if n.Duration == 0 {
		n.Duration = defaultAlertDuration
	}
	if n.Name != "" {
		for i := range a.list {
			if a.list[i].Name == n.Name {
				a.list[i] = n
				return
			}
		}
	}
	a.list = append(a.list, n)
}

// Iterate goes through the current alerts, oldest first. It can be
// ranged over directly.
func (a *Alerts) Iterate(yield func(index int, alert Alert) bool) {
	for i, n := range a.list {
		if !yield(i, n) {
			return
		}
	}
}

// Update ages the alerts by elapsed and drops the expired ones,
// returning true if any alerts remain.
func (a *Alerts) Update(elapsed time.Duration) bool {
	kept := a.list[:0]
	for _, n := range a.list {
		n.Duration -= elapsed
		if n.Duration > 0 {
			kept = append(kept, n)
		}
	}
	a.list = kept
	return len(a.list) > 0
}

// Clear drops all alerts at once, for frontends that show each alert
// exactly once instead of for a duration.
func (a *Alerts) Clear() {
	a.list = a.list[:0]
}
