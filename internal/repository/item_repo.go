package repository

import (
	"context"
	"sync"
	"time"

	"todo_webapp/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type ItemRepository struct {
	db *pgxpool.Pool
}

func NewItemRepository(db *pgxpool.Pool) *ItemRepository {
	return &ItemRepository{db: db}
}

func (r *ItemRepository) List(ctx context.Context) ([]domain.Item, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, created_at FROM items ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := make([]domain.Item, 0)
	for rows.Next() {
		var it domain.Item
		if err := rows.Scan(&it.ID, &it.Name, &it.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, it)
	}
	return res, rows.Err()
}

func (r *ItemRepository) Create(ctx context.Context, name string) (*domain.Item, error) {
	it := domain.Item{Name: name}
	err := r.db.QueryRow(ctx,
		`INSERT INTO items (name) VALUES ($1) RETURNING id, created_at`, name,
	).Scan(&it.ID, &it.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *ItemRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

// MemoryItemRepository is the in-process ItemStore.
type MemoryItemRepository struct {
	mu     sync.Mutex
	items  []domain.Item
	nextID int64
}

func NewMemoryItemRepository() *MemoryItemRepository {
	return &MemoryItemRepository{}
}

func (r *MemoryItemRepository) List(ctx context.Context) ([]domain.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res := make([]domain.Item, 0, len(r.items))
	for i := len(r.items) - 1; i >= 0; i-- {
		res = append(res, r.items[i])
	}
	return res, nil
}

func (r *MemoryItemRepository) Create(ctx context.Context, name string) (*domain.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	it := domain.Item{ID: r.nextID, Name: name, CreatedAt: time.Now().UTC()}
	r.items = append(r.items, it)
	return &it, nil
}

func (r *MemoryItemRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, it := range r.items {
		if it.ID == id {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return ErrItemNotFound
}
