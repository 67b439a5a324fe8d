package entities

// ContextFixture is a host context described in a fixture file for local
// invocations. Attributes left empty are filled with defaults by the invoker.
type ContextFixture struct {
	ContextSnapshot `yaml:",inline"`

	// RemainingTimeInMillis, when set, overrides the invoker's timeout.
	RemainingTimeInMillis *uint64 `json:"remaining_time_in_millis,omitempty" yaml:"remaining_time_in_millis,omitempty"`
}
