package util

import (
	"sync"
)

type Job[T any] struct {
	ID      int
	JobItem T
}

// WorkerPool . numWorkers goroutine memproses job dari JobQueue, hasil dikirim ke results.
// urutan hasil tidak sama dengan urutan job.
type WorkerPool[T any, G any] struct {
	numWorkers int
	JobQueue   chan T
	results    chan G
	wg         sync.WaitGroup
}

type JobFunc[T any, G any] func(job T) G

func NewWorkerPool[T any, G any](numWorkers, jobQueueSize int) *WorkerPool[T, G] {
	return &WorkerPool[T, G]{
		numWorkers: numWorkers,
		JobQueue:   make(chan T, jobQueueSize),
		results:    make(chan G, jobQueueSize),
	}
}

func (wp *WorkerPool[T, G]) worker(jobFunc JobFunc[T, G]) {
	defer wp.wg.Done()
	for job := range wp.JobQueue {
		wp.results <- jobFunc(job)
	}
}

func (wp *WorkerPool[T, G]) Start(jobFunc JobFunc[T, G]) {
	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(jobFunc)
	}
}

// Wait. tunggu semua worker selesai lalu tutup channel results. panggil setelah CloseQueue.
func (wp *WorkerPool[T, G]) Wait() {
	wp.wg.Wait()
	close(wp.results)
}

func (wp *WorkerPool[T, G]) AddJob(job T) {
	wp.JobQueue <- job
}

// CloseQueue. tidak ada job baru lagi.
func (wp *WorkerPool[T, G]) CloseQueue() {
	close(wp.JobQueue)
}

func (wp *WorkerPool[T, G]) CollectResults() chan G {
	return wp.results
}
