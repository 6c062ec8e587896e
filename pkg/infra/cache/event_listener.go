package cache

import (
	"context"
	"reflect"
)

type EventListener interface {
	Listen(ctx context.Context, channels ...Channel)
	Register(eventType reflect.Type, subscriber interface{})
}
