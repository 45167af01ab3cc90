package tasktree

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveNameNoCollision(t *testing.T) {
	existing := map[string]struct{}{}
	assert.Equal(t, "worker", resolveName("worker", existing, nil))
}

func TestResolveNameSingleCollision(t *testing.T) {
	existing := map[string]struct{}{"worker": {}}
	assert.Equal(t, "worker+1", resolveName("worker", existing, nil))
}

func TestResolveNameDoesNotCompoundSuffixes(t *testing.T) {
	existing := map[string]struct{}{
		"worker":   {},
		"worker+1": {},
		"worker+2": {},
	}
	// A naive "attempted+1" strategy would produce "worker+1+1+1" here;
	// the requested+N counter must instead land directly on "worker+3".
	assert.Equal(t, "worker+3", resolveName("worker", existing, nil))
}

func TestResolveNameCustomStrategy(t *testing.T) {
	existing := map[string]struct{}{"worker": {}}
	custom := func(requested, attempted string, attempts int) string {
		if attempts == 0 {
			return requested
		}
		return requested + "-custom"
	}
	assert.Equal(t, "worker-custom", resolveName("worker", existing, custom))
}
