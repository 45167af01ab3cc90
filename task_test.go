package tasktree

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskOfFuncAdaptsAFunction(t *testing.T) {
	called := false
	task := TaskOfFunc(func(ctx context.Context, h *SubsystemHandle) error {
		called = true
		return nil
	})

	err := task.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, called)
}

type countingSteppedTask struct {
	steps    int
	failOn   int
	stopWith chan struct{}
}

func (c *countingSteppedTask) RunStep(ctx context.Context, h *SubsystemHandle) error {
	c.steps++
	if c.failOn > 0 && c.steps >= c.failOn {
		return errors.New("step failed")
	}
	if c.steps == 3 && c.stopWith != nil {
		close(c.stopWith)
	}
	return nil
}

func TestTaskOfSteppedTaskLoopsUntilShutdown(t *testing.T) {
	h := newTestHandle()
	stop := make(chan struct{})
	st := &countingSteppedTask{stopWith: stop}
	task := TaskOfSteppedTask(st)

	done := make(chan error, 1)
	go func() { done <- task.Run(context.Background(), h) }()

	<-stop
	h.InitiateLocalShutdown()

	err := <-done
	require.NoError(t, err)
	assert.GreaterOrEqual(t, st.steps, 3)
}

func TestTaskOfSteppedTaskPropagatesStepError(t *testing.T) {
	h := newTestHandle()
	st := &countingSteppedTask{failOn: 2}
	task := TaskOfSteppedTask(st)

	err := task.Run(context.Background(), h)
	assert.Error(t, err)
}
