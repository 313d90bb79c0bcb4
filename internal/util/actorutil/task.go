package actorutil

import (
	"errors"
	"time"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/primetalk/goio/io"
)

// SafeBackgroundTask runs a hardware-bound function off the actor
// goroutine and delivers its outcome as a single message. A panic inside
// the function surfaces as an error, an optional timeout abandons the
// wait, and Recover substitutes a fallback value for any failure, so the
// owning actor receives exactly one result per task.
type SafeBackgroundTask[T any] struct {
	ctx       actor.Context
	fn        func() (*T, error)
	timeout   *time.Duration
	recover   func(error) T
	onSuccess func(T)
}

func NewBackgroundTask[T any](ctx actor.Context, fn func() (*T, error)) *SafeBackgroundTask[T] {
	return &SafeBackgroundTask[T]{ctx: ctx, fn: fn}
}

// MapBackgroundTask converts the task's result type before delivery. The
// mapping runs on the task goroutine, after the original function.
func MapBackgroundTask[T, T2 any](t *SafeBackgroundTask[T], mapFn func(*T) *T2) *SafeBackgroundTask[T2] {
	return &SafeBackgroundTask[T2]{
		ctx: t.ctx,
		fn: func() (*T2, error) {
			v, err := t.fn()
			if err != nil {
				return nil, err
			}
			return mapFn(v), nil
		},
	}
}

// WithTimeout bounds the wait for the result. The function itself is not
// interrupted; only its result is abandoned.
func (t *SafeBackgroundTask[T]) WithTimeout(timeout time.Duration) *SafeBackgroundTask[T] {
	t.timeout = &timeout
	return t
}

// Recover maps a task failure, timeout included, to a substitute result
// delivered as if the task had succeeded.
func (t *SafeBackgroundTask[T]) Recover(fn func(error) T) *SafeBackgroundTask[T] {
	t.recover = fn
	return t
}

// PipeTo runs the task and sends its result to the given PID. Without a
// Recover a failed task sends nothing.
func (t *SafeBackgroundTask[T]) PipeTo(pid *actor.PID) {
	t.onSuccess = func(value T) {
		t.ctx.Send(pid, value)
	}
	t.Run()
}

func (t *SafeBackgroundTask[T]) Run() {
	eval := io.Eval(t.fn)
	unwrapped := io.Map(eval, func(v *T) T {
		if v == nil {
			panic(errors.New("background task returned nil"))
		}
		return *v
	})
	if t.timeout != nil {
		unwrapped = io.WithTimeout[T](*t.timeout)(unwrapped)
	}

	result := io.RunSync(unwrapped)
	value := result.Value
	if result.Error != nil {
		if t.recover == nil {
			return
		}
		value = t.recover(result.Error)
	}
	if t.onSuccess != nil {
		t.onSuccess(value)
	}
}
