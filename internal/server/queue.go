package server

import "sync"

// chatQueue runs jobs one at a time per chat and concurrently across chats.
// A chat's worker goroutine exits once its backlog is empty.
type chatQueue struct {
	mu      sync.Mutex
	pending map[string][]func()
	wg      sync.WaitGroup
}

func newChatQueue() *chatQueue {
	return &chatQueue{pending: make(map[string][]func())}
}

// Enqueue schedules job after every earlier job of chatID. It never blocks.
func (q *chatQueue) Enqueue(chatID string, job func()) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if backlog, running := q.pending[chatID]; running {
		q.pending[chatID] = append(backlog, job)
		return
	}
	q.pending[chatID] = []func(){}
	q.wg.Add(1)
	go q.run(chatID, job)
}

func (q *chatQueue) run(chatID string, job func()) {
	defer q.wg.Done()
	for {
		job()

		q.mu.Lock()
		backlog := q.pending[chatID]
		if len(backlog) == 0 {
			delete(q.pending, chatID)
			q.mu.Unlock()
			return
		}
		job = backlog[0]
		backlog[0] = nil
		q.pending[chatID] = backlog[1:]
		q.mu.Unlock()
	}
}

// Wait blocks until every enqueued job has finished
func (q *chatQueue) Wait() {
	q.wg.Wait()
}
