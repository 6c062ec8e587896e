package event

import "reflect"

type Event interface {
	Type() string
}

var (
	FramingPolicyForgottenEventType = "FramingPolicyForgottenEvent"
)

var Registry = map[string]reflect.Type{
	FramingPolicyForgottenEventType: reflect.TypeOf(FramingPolicyForgottenEvent{}),
}
