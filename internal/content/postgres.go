package content

import (
	"context"
	"fmt"

	"github.com/geniusclasses/geniusclasses/internal/database"
	"github.com/jackc/pgx/v5"
)

var _ Repository = (*PostgresRepository)(nil)

type PostgresRepository struct {
	db database.DBTX
}

func NewPostgresRepository(db database.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ListLectures(ctx context.Context) ([]Lecture, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, title, youtube_link, category, created_at FROM lectures ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("query lectures: %w", err)
	}
	lectures, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Lecture, error) {
		var l Lecture
		err := row.Scan(&l.ID, &l.Title, &l.YouTubeLink, &l.Category, &l.CreatedAt)
		return l, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan lectures: %w", err)
	}
	return lectures, nil
}

func (r *PostgresRepository) AddLecture(ctx context.Context, l Lecture) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO lectures (id, title, youtube_link, category, created_at) VALUES ($1, $2, $3, $4, $5)`,
		l.ID, l.Title, l.YouTubeLink, string(l.Category), l.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert lecture: %w", err)
	}
	return nil
}

func (r *PostgresRepository) DeleteLecture(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM lectures WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete lecture: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) ListNotes(ctx context.Context) ([]Note, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, title, standard, medium, subject, file_url, file_name, file_type, created_at
		 FROM notes ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("query notes: %w", err)
	}
	notes, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Note, error) {
		var n Note
		err := row.Scan(&n.ID, &n.Title, &n.Standard, &n.Medium, &n.Subject, &n.FileURL, &n.FileName, &n.FileType, &n.CreatedAt)
		return n, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan notes: %w", err)
	}
	return notes, nil
}

func (r *PostgresRepository) AddNote(ctx context.Context, n Note) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO notes (id, title, standard, medium, subject, file_url, file_name, file_type, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		n.ID, n.Title, n.Standard, string(n.Medium), n.Subject, n.FileURL, n.FileName, string(n.FileType), n.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert note: %w", err)
	}
	return nil
}

func (r *PostgresRepository) DeleteNote(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM notes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
