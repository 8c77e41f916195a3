package bot

import "sync"

// chatLimiter не даёт обрабатывать два сообщения одного чата одновременно.
type chatLimiter struct {
	mu   sync.Mutex
	byID map[int64]*sync.Mutex
}

func newChatLimiter() *chatLimiter {
	return &chatLimiter{byID: make(map[int64]*sync.Mutex)}
}

func (l *chatLimiter) lock(chatID int64) func() {
	l.mu.Lock()
	m, ok := l.byID[chatID]
	if !ok {
		m = &sync.Mutex{}
		l.byID[chatID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// sessions помнит последний найденный email в чате для кнопки "Обновить".
type sessions struct {
	mu sync.Mutex
	m  map[int64]string
}

func newSessions() *sessions {
	return &sessions{m: make(map[int64]string)}
}

func (s *sessions) get(chatID int64) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m[chatID]
}

func (s *sessions) set(chatID int64, email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[chatID] = email
}
