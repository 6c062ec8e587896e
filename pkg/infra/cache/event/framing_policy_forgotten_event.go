package event

// FramingPolicyForgottenEvent tells every replica to drop its local copy of
// a host's framing verdict.
type FramingPolicyForgottenEvent struct {
	Host string `json:"host"`
}

func (e FramingPolicyForgottenEvent) Type() string {
	return FramingPolicyForgottenEventType
}
