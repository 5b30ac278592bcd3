package worker

import (
	"sync"
)

type Handler = func(workerIndex int, job interface{})

// Pool is a fixed-size goroutine pool. Jobs are distributed over the shared
// channel; Close drains what was already enqueued and then stops the workers.
// The remind-all job uses it to fan out gateway sends while keeping the pool
// width (and so the DB write concurrency) bounded.
type Pool struct {
	jobs    chan interface{}
	workers int
	do      Handler
	wg      sync.WaitGroup
	once    sync.Once
}

func NewPool(bufferSize, workers int, do Handler) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{
		jobs:    make(chan interface{}, bufferSize),
		workers: workers,
		do:      do,
	}
}

// Start launches the workers. It returns immediately; pair with Close.
func (p *Pool) Start() {
	p.wg.Add(p.workers)
	for i := 0; i < p.workers; i++ {
		go func(index int) {
			defer p.wg.Done()
			for job := range p.jobs {
				p.do(index, job)
			}
		}(i)
	}
}

// Enqueue publishes a job; blocks when the buffer is full.
func (p *Pool) Enqueue(job interface{}) {
	p.jobs <- job
}

// Close stops accepting jobs and waits for in-flight ones to finish.
func (p *Pool) Close() {
	p.once.Do(func() { close(p.jobs) })
	p.wg.Wait()
}

// KeyedMutex serializes work per key; remind-all locks on the phone number so
// two workers never mutate the same contact concurrently.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*sync.Mutex)}
}

func (k *KeyedMutex) Lock(key string) {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()
	m.Lock()
}

func (k *KeyedMutex) Unlock(key string) {
	k.mu.Lock()
	m := k.locks[key]
	k.mu.Unlock()
	if m != nil {
		m.Unlock()
	}
}
