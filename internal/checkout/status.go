package checkout

// Status is a step of the submission state machine.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusValidating Status = "validating"
	StatusSubmitting Status = "submitting"
	StatusSuccess    Status = "success"
	StatusFailed     Status = "failed"
)

// Event is emitted on every transition.
type Event struct {
	Status  Status
	Label   string
	Busy    bool
	Message string
	Attempt int
}

// Observer receives pipeline transitions.
type Observer interface {
	OnCheckoutChange(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) OnCheckoutChange(e Event) { f(e) }
