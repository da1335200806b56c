package cache

import "sync"

// Store 有界的内存键值缓存，用于避免短时间内重复调用图像模型
//
// 淘汰策略是按插入顺序丢弃最老的条目（不是按访问顺序的真LRU）：
// 命中不会刷新条目的位置
type Store struct {
	mu         sync.Mutex
	entries    map[string]string
	order      []string
	maxEntries int
}

// NewStore 创建缓存，maxEntries<=0时使用默认容量20
func NewStore(maxEntries int) *Store {
	if maxEntries <= 0 {
		maxEntries = 20
	}
	return &Store{
		entries:    make(map[string]string, maxEntries),
		order:      make([]string, 0, maxEntries),
		maxEntries: maxEntries,
	}
}

// Get 查询缓存
func (s *Store) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.entries[key]
	return v, ok
}

// Put 写入缓存，超出容量时丢弃最早插入的条目
func (s *Store) Put(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[key]; !exists {
		s.order = append(s.order, key)
	}
	s.entries[key] = value

	for len(s.order) > s.maxEntries {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.entries, oldest)
	}
}

// Len 当前条目数
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.entries)
}
