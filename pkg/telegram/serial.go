package telegram

import "sync"

// serializer runs jobs one at a time per key in submission order. Jobs for
// different keys run concurrently; a key's goroutine exits once its queue
// drains.
type serializer struct {
	mu     sync.Mutex
	queues map[int64][]func()
	wg     sync.WaitGroup
}

func newSerializer() *serializer {
	return &serializer{queues: map[int64][]func(){}}
}

func (s *serializer) Do(key int64, job func()) {
	s.mu.Lock()
	q, running := s.queues[key]
	s.queues[key] = append(q, job)
	if !running {
		s.wg.Add(1)
	}
	s.mu.Unlock()
	if !running {
		go s.drain(key)
	}
}

func (s *serializer) drain(key int64) {
	defer s.wg.Done()
	for {
		s.mu.Lock()
		q := s.queues[key]
		if len(q) == 0 {
			delete(s.queues, key)
			s.mu.Unlock()
			return
		}
		job := q[0]
		s.queues[key] = q[1:]
		s.mu.Unlock()
		job()
	}
}

// Wait blocks until every queued job has run.
func (s *serializer) Wait() {
	s.wg.Wait()
}
