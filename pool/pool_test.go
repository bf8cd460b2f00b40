package pool_test

import (
	"sync"
	"testing"

	"github.com/ruleflow-dev/ruleflow/assert"
	"github.com/ruleflow-dev/ruleflow/pool"
)

func TestSendThenDrain(t *testing.T) {
	p := pool.New[string](4)
	p.Send("a")
	p.Send("b", "c")
	assert.Equal(t, p.Len(), 3)

	assert.DeepEqual(t, p.Drain(), []string{"a", "b", "c"})
	assert.Equal(t, p.Len(), 0)
	assert.Len(t, p.Drain(), 0)
}

func TestConcurrentSenders(t *testing.T) {
	p := pool.New[int](0)
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				p.Send(n)
			}
		}(i)
	}
	wg.Wait()
	assert.Len(t, p.Drain(), 1000)
}
