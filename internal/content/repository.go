package content

import "context"

// Repository persists the two record kinds behind typed accessors.
type Repository interface {
	ListLectures(ctx context.Context) ([]Lecture, error)
	AddLecture(ctx context.Context, l Lecture) error
	DeleteLecture(ctx context.Context, id string) error

	ListNotes(ctx context.Context) ([]Note, error)
	AddNote(ctx context.Context, n Note) error
	DeleteNote(ctx context.Context, id string) error
}
