package content

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/geniusclasses/geniusclasses/internal/kv"
)

// Keys under which the lists live in the key-value store.
const (
	LecturesKey = "genius-lectures"
	NotesKey    = "genius-notes"
)

var _ Repository = (*KVRepository)(nil)

// KVRepository keeps each list as one document. Updates are
// read-modify-write; writers in other processes are last-write-wins.
type KVRepository struct {
	store kv.Store
	mu    sync.Mutex
}

func NewKVRepository(store kv.Store) *KVRepository {
	return &KVRepository{store: store}
}

func (r *KVRepository) ListLectures(ctx context.Context) ([]Lecture, error) {
	return loadList[Lecture](ctx, r.store, LecturesKey)
}

func (r *KVRepository) AddLecture(ctx context.Context, l Lecture) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	list, err := loadList[Lecture](ctx, r.store, LecturesKey)
	if err != nil {
		return err
	}
	return r.store.Set(ctx, LecturesKey, append(list, l))
}

func (r *KVRepository) DeleteLecture(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	list, err := loadList[Lecture](ctx, r.store, LecturesKey)
	if err != nil {
		return err
	}
	kept := slices.DeleteFunc(list, func(l Lecture) bool { return l.ID == id })
	if len(kept) == len(list) {
		return ErrNotFound
	}
	return r.store.Set(ctx, LecturesKey, kept)
}

func (r *KVRepository) ListNotes(ctx context.Context) ([]Note, error) {
	return loadList[Note](ctx, r.store, NotesKey)
}

func (r *KVRepository) AddNote(ctx context.Context, n Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	list, err := loadList[Note](ctx, r.store, NotesKey)
	if err != nil {
		return err
	}
	return r.store.Set(ctx, NotesKey, append(list, n))
}

func (r *KVRepository) DeleteNote(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	list, err := loadList[Note](ctx, r.store, NotesKey)
	if err != nil {
		return err
	}
	kept := slices.DeleteFunc(list, func(n Note) bool { return n.ID == id })
	if len(kept) == len(list) {
		return ErrNotFound
	}
	return r.store.Set(ctx, NotesKey, kept)
}

// loadList reads a list, treating a never-written key as empty.
func loadList[T any](ctx context.Context, store kv.Store, key string) ([]T, error) {
	list := []T{}
	if _, err := store.Get(ctx, key, &list); err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	if list == nil {
		list = []T{}
	}
	return list, nil
}
