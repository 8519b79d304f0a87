package domain

// Propagation operations.
const (
	OperationInject  = "inject"
	OperationRemove  = "remove"
	OperationCascade = "cascade"
)

// ServiceOutcome is the result of one call in a multi-service fan-out.
type ServiceOutcome struct {
	Service    string `json:"service"`
	URL        string `json:"url"`
	OK         bool   `json:"ok"`
	Status     int    `json:"status,omitempty"`
	Existed    bool   `json:"existed,omitempty"`
	Error      string `json:"error,omitempty"`
	DurationMS int64  `json:"durationMs"`
}

// SatelliteReply is what a satellite answered to one internal call.
// Status is zero when no HTTP response was received.
type SatelliteReply struct {
	Status  int
	Existed bool
}

// PropagationReport lists one outcome per satellite, in registry order.
type PropagationReport struct {
	Operation string           `json:"operation"`
	Outcomes  []ServiceOutcome `json:"services"`
}

// Failed returns the number of satellites that could not be reached or rejected the call.
func (r *PropagationReport) Failed() int {
	n := 0
	for _, o := range r.Outcomes {
		if !o.OK {
			n++
		}
	}
	return n
}

// Succeeded returns the number of satellites that accepted the call.
func (r *PropagationReport) Succeeded() int {
	return len(r.Outcomes) - r.Failed()
}

// ServiceSecretHeader carries the shared service-to-service secret.
const ServiceSecretHeader = "X-Service-Secret"
