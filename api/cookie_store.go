package api

import (
	"sort"
	"sync"

	"workdash/models"
)

// CookieStore は名前をキーにしたセッションクッキーの保管庫です。
// 書き込みは排他、読み取りは並行に行えます
type CookieStore struct {
	mu      sync.RWMutex
	cookies map[string]models.Cookie
}

// NewCookieStore は空のクッキーストアを作成します
func NewCookieStore() *CookieStore {
	return &CookieStore{cookies: make(map[string]models.Cookie)}
}

// Add はクッキーを追加します。同じ名前が既にあれば上書きします
func (s *CookieStore) Add(cookie models.Cookie) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cookies[cookie.Name] = cookie
}

// Remove は指定した名前のクッキーを削除します
func (s *CookieStore) Remove(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cookies, name)
}

// Get は指定した名前のクッキーを返します
func (s *CookieStore) Get(name string) (models.Cookie, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cookie, ok := s.cookies[name]
	return cookie, ok
}

// Clear はすべてのクッキーを削除します
func (s *CookieStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cookies = make(map[string]models.Cookie)
}

// All はすべてのクッキーを名前順で返します
func (s *CookieStore) All() []models.Cookie {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]models.Cookie, 0, len(s.cookies))
	for _, cookie := range s.cookies {
		result = append(result, cookie)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// Len は保持しているクッキー数を返します
func (s *CookieStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cookies)
}
