package booking

import (
	"sync"
	"testing"
)

func TestKeyedMutex_SerializesPerKey(t *testing.T) {
	km := NewKeyedMutex()

	const workers = 16
	const iterations = 100

	counter := 0
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				unlock := km.Lock("room-1")
				counter++
				unlock()
			}
		}()
	}
	wg.Wait()

	if counter != workers*iterations {
		t.Fatalf("lost updates under the room lock: got %d, want %d", counter, workers*iterations)
	}
}

func TestKeyedMutex_IndependentKeys(t *testing.T) {
	km := NewKeyedMutex()

	unlockA := km.Lock("room-a")
	done := make(chan struct{})
	go func() {
		unlockB := km.Lock("room-b")
		unlockB()
		close(done)
	}()
	<-done
	unlockA()
}
