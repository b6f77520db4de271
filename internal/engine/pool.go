package engine

import (
	"runtime"
	"sync"
)

// runAll runs every task and waits for them to finish, using at most
// workers goroutines. workers <= 1 runs the tasks in order on the caller's
// goroutine; a negative count uses GOMAXPROCS.
func runAll(workers int, tasks []func()) {
	if workers < 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(tasks) {
		workers = len(tasks)
	}
	if workers <= 1 {
		for _, task := range tasks {
			task()
		}
		return
	}

	queue := make(chan func())
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for task := range queue {
				task()
			}
		}()
	}
	for _, task := range tasks {
		queue <- task
	}
	close(queue)
	wg.Wait()
}
