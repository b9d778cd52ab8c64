// Package session holds the per-conversation uploaded-document state.
package session

import (
	"sort"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"pulseboard/internal/document"
)

// DefaultMaxConversations caps how many conversations keep resident
// documents before the least recently used one is evicted.
const DefaultMaxConversations = 1024

type conversationDocs struct {
	mu     sync.RWMutex
	byName map[string]*document.Structured
}

// DocStore maps (conversationID, filename) to a parsed document. Uploading
// the same filename again replaces that entry only; other documents in the
// conversation are kept.
type DocStore struct {
	mu    sync.Mutex
	cache *lru.Cache[string, *conversationDocs]
}

func NewDocStore(maxConversations int) (*DocStore, error) {
	if maxConversations <= 0 {
		maxConversations = DefaultMaxConversations
	}
	cache, err := lru.New[string, *conversationDocs](maxConversations)
	if err != nil {
		return nil, err
	}
	return &DocStore{cache: cache}, nil
}

func (s *DocStore) conversation(conversationID string, create bool) *conversationDocs {
	s.mu.Lock()
	defer s.mu.Unlock()
	if docs, ok := s.cache.Get(conversationID); ok {
		return docs
	}
	if !create {
		return nil
	}
	docs := &conversationDocs{byName: make(map[string]*document.Structured)}
	s.cache.Add(conversationID, docs)
	return docs
}

// Put stores a document under its filename.
func (s *DocStore) Put(conversationID, filename string, doc *document.Structured) {
	c := s.conversation(conversationID, true)
	c.mu.Lock()
	c.byName[filename] = doc
	c.mu.Unlock()
}

// Get resolves a filename in the conversation's document set.
func (s *DocStore) Get(conversationID, filename string) (*document.Structured, bool) {
	c := s.conversation(conversationID, false)
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	doc, ok := c.byName[filename]
	c.mu.RUnlock()
	return doc, ok
}

// Names lists the conversation's filenames, sorted for stable prompt hints.
func (s *DocStore) Names(conversationID string) []string {
	c := s.conversation(conversationID, false)
	if c == nil {
		return nil
	}
	c.mu.RLock()
	names := make([]string, 0, len(c.byName))
	for name := range c.byName {
		names = append(names, name)
	}
	c.mu.RUnlock()
	sort.Strings(names)
	return names
}

// Clear drops every document of one conversation.
func (s *DocStore) Clear(conversationID string) {
	s.mu.Lock()
	s.cache.Remove(conversationID)
	s.mu.Unlock()
}
