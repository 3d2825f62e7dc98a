// Package storage содержит хранилище в памяти с той же семантикой, что и
// репозитории PostgreSQL: уникальность имён тегов и связей, вставки без
// ошибок при конфликте, удаление полки вместе со связями.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Totarae/PersonalAccount/internal/apperrors"
	"github.com/Totarae/PersonalAccount/internal/model"
)

type link struct {
	shelfID    int64
	bookmarkID int64
}

// MemoryStore представляет потокобезопасное хранилище в памяти.
type MemoryStore struct {
	mutex sync.RWMutex

	users     map[int64]model.User
	shelves   map[int64]model.Shelf
	bookmarks map[int64]model.Bookmark
	links     []link // в порядке добавления

	tagIDs   map[string]int64
	tags     map[int64]model.Tag
	userTags map[int64]map[int64]model.UserTag

	nextShelfID int64
	nextTagID   int64
}

// NewMemoryStore создаёт пустое хранилище.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:     make(map[int64]model.User),
		shelves:   make(map[int64]model.Shelf),
		bookmarks: make(map[int64]model.Bookmark),
		tagIDs:    make(map[string]int64),
		tags:      make(map[int64]model.Tag),
		userTags:  make(map[int64]map[int64]model.UserTag),
	}
}

func userNotFound(id int64) error {
	return apperrors.NotFound(fmt.Sprintf("User with id %d not found", id))
}

// CreateUser сохраняет пользователя.
func (s *MemoryStore) CreateUser(_ context.Context, u *model.User) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, ok := s.users[u.ID]; ok {
		return apperrors.AlreadyExists("User already exists")
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	s.users[u.ID] = *u
	return nil
}

// GetUser возвращает пользователя по id.
func (s *MemoryStore) GetUser(_ context.Context, id int64) (*model.User, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, userNotFound(id)
	}
	return &u, nil
}

// UserExists проверяет наличие пользователя.
func (s *MemoryStore) UserExists(_ context.Context, id int64) (bool, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	_, ok := s.users[id]
	return ok, nil
}

// ListShelfIDs возвращает идентификаторы полок пользователя по возрастанию.
func (s *MemoryStore) ListShelfIDs(_ context.Context, userID int64) ([]int64, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.shelfIDsLocked(userID), nil
}

func (s *MemoryStore) shelfIDsLocked(userID int64) []int64 {
	var ids []int64
	for id, sh := range s.shelves {
		if sh.UserID == userID {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ListShelfRows возвращает строки полка × закладка в том же порядке,
// что и запрос к PostgreSQL: по id полки, затем по порядку добавления.
func (s *MemoryStore) ListShelfRows(_ context.Context, userID int64) ([]model.ShelfRow, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var rows []model.ShelfRow
	for _, shelfID := range s.shelfIDsLocked(userID) {
		sh := s.shelves[shelfID]
		for _, l := range s.links {
			if l.shelfID != shelfID {
				continue
			}
			rows = append(rows, model.ShelfRow{
				ShelfID:       sh.ID,
				ShelfName:     sh.Name,
				BookmarkTitle: s.bookmarks[l.bookmarkID].Title,
			})
		}
	}
	return rows, nil
}

// ShelfExists проверяет, что полка принадлежит пользователю.
func (s *MemoryStore) ShelfExists(_ context.Context, userID, shelfID int64) (bool, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	sh, ok := s.shelves[shelfID]
	return ok && sh.UserID == userID, nil
}

// ListBookmarks возвращает закладки полки в порядке добавления.
func (s *MemoryStore) ListBookmarks(_ context.Context, shelfID int64) ([]model.Bookmark, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var result []model.Bookmark
	for _, l := range s.links {
		if l.shelfID == shelfID {
			result = append(result, s.bookmarks[l.bookmarkID])
		}
	}
	return result, nil
}

// CreateShelf создаёт полку и возвращает её id.
func (s *MemoryStore) CreateShelf(_ context.Context, userID int64, name string) (int64, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, ok := s.users[userID]; !ok {
		return 0, userNotFound(userID)
	}
	s.nextShelfID++
	s.shelves[s.nextShelfID] = model.Shelf{ID: s.nextShelfID, UserID: userID, Name: name}
	return s.nextShelfID, nil
}

// AddBookmark кладёт закладку на полку.
func (s *MemoryStore) AddBookmark(_ context.Context, shelfID int64, b model.Bookmark) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, ok := s.shelves[shelfID]; !ok {
		return apperrors.NotFound("Shelf not found")
	}
	if _, ok := s.bookmarks[b.ID]; !ok {
		s.bookmarks[b.ID] = b
	}
	for _, l := range s.links {
		if l.shelfID == shelfID && l.bookmarkID == b.ID {
			return nil
		}
	}
	s.links = append(s.links, link{shelfID: shelfID, bookmarkID: b.ID})
	return nil
}

// RemoveBookmark убирает закладку с полки.
func (s *MemoryStore) RemoveBookmark(_ context.Context, shelfID, bookmarkID int64) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.removeLinksLocked(func(l link) bool { return l.shelfID == shelfID && l.bookmarkID == bookmarkID })
	return nil
}

// DeleteShelf удаляет полку пользователя вместе со связями.
func (s *MemoryStore) DeleteShelf(_ context.Context, userID, shelfID int64) (bool, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	sh, ok := s.shelves[shelfID]
	if !ok || sh.UserID != userID {
		return false, nil
	}
	s.removeLinksLocked(func(l link) bool { return l.shelfID == shelfID })
	delete(s.shelves, shelfID)
	return true, nil
}

func (s *MemoryStore) removeLinksLocked(match func(link) bool) {
	kept := s.links[:0]
	for _, l := range s.links {
		if !match(l) {
			kept = append(kept, l)
		}
	}
	s.links = kept
}

// MergeTags добавляет недостающие теги в словарь и недостающие связи
// пользователя. Все изменения выполняются под одной блокировкой.
func (s *MemoryStore) MergeTags(_ context.Context, userID int64, names []string, now time.Time) (int, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, ok := s.users[userID]; !ok {
		return 0, userNotFound(userID)
	}

	for _, name := range names {
		if _, ok := s.tagIDs[name]; !ok {
			s.nextTagID++
			s.tagIDs[name] = s.nextTagID
			s.tags[s.nextTagID] = model.Tag{ID: s.nextTagID, Name: name}
		}
	}

	assoc, ok := s.userTags[userID]
	if !ok {
		assoc = make(map[int64]model.UserTag)
		s.userTags[userID] = assoc
	}
	for _, name := range names {
		tagID := s.tagIDs[name]
		if _, ok := assoc[tagID]; !ok {
			assoc[tagID] = model.UserTag{UserID: userID, TagID: tagID, CreatedAt: now}
		}
	}
	return len(assoc), nil
}

// ListTags возвращает имена тегов пользователя по алфавиту.
func (s *MemoryStore) ListTags(_ context.Context, userID int64) ([]string, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var names []string
	for tagID := range s.userTags[userID] {
		names = append(names, s.tags[tagID].Name)
	}
	sort.Strings(names)
	return names, nil
}

// RemoveTags удаляет связи пользователя с тегами names.
func (s *MemoryStore) RemoveTags(_ context.Context, userID int64, names []string) (int64, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	var removed int64
	assoc := s.userTags[userID]
	for _, name := range names {
		tagID, ok := s.tagIDs[name]
		if !ok {
			continue
		}
		if _, ok := assoc[tagID]; ok {
			delete(assoc, tagID)
			removed++
		}
	}
	return removed, nil
}

// TagCount возвращает размер словаря тегов.
func (s *MemoryStore) TagCount() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return len(s.tagIDs)
}

// UserTagCount возвращает число связей пользователя с тегами.
func (s *MemoryStore) UserTagCount(userID int64) int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return len(s.userTags[userID])
}

// Ping всегда успешен.
func (s *MemoryStore) Ping(context.Context) error {
	return nil
}
