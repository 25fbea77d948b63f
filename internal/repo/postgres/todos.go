package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/todohub/internal/domain/todo"
	"github.com/geocoder89/todohub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TodosRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewTodosRepo(pool *pgxpool.Pool, prom *observability.Prom) *TodosRepo {
	return &TodosRepo{pool: pool, prom: prom}
}

const todoColumns = `id, title, description, priority, complete, owner_id`

func scanTodo(row pgx.Row) (todo.Todo, error) {
	var t todo.Todo
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Priority, &t.Complete, &t.OwnerID)
	return t, err
}

func (r *TodosRepo) Create(ctx context.Context, t todo.Todo) (todo.Todo, error) {
	var created todo.Todo

	err := r.prom.ObserveDB("todos.create", func() error {
		var err error
		created, err = scanTodo(r.pool.QueryRow(ctx,
			`INSERT INTO todos (title, description, priority, complete, owner_id)
			 VALUES ($1,$2,$3,$4,$5)
			 RETURNING `+todoColumns,
			t.Title, t.Description, t.Priority, t.Complete, t.OwnerID,
		))
		return err
	})
	if err != nil {
		return todo.Todo{}, err
	}

	return created, nil
}

func (r *TodosRepo) ListByOwner(ctx context.Context, ownerID int64) ([]todo.Todo, error) {
	return r.list(ctx, "todos.list_by_owner",
		`SELECT `+todoColumns+` FROM todos WHERE owner_id = $1 ORDER BY id`, ownerID)
}

func (r *TodosRepo) ListAll(ctx context.Context) ([]todo.Todo, error) {
	return r.list(ctx, "todos.list_all", `SELECT `+todoColumns+` FROM todos ORDER BY id`)
}

func (r *TodosRepo) list(ctx context.Context, op, query string, args ...any) ([]todo.Todo, error) {
	out := make([]todo.Todo, 0)

	err := r.prom.ObserveDB(op, func() error {
		rows, err := r.pool.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			t, err := scanTodo(rows)
			if err != nil {
				return err
			}
			out = append(out, t)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *TodosRepo) GetForOwner(ctx context.Context, id, ownerID int64) (todo.Todo, error) {
	return r.getOne(ctx, "todos.get_for_owner",
		`SELECT `+todoColumns+` FROM todos WHERE id = $1 AND owner_id = $2`, id, ownerID)
}

func (r *TodosRepo) UpdateForOwner(ctx context.Context, id, ownerID int64, req todo.Request) (todo.Todo, error) {
	return r.getOne(ctx, "todos.update_for_owner",
		`UPDATE todos
		 SET title = $3, description = $4, priority = $5, complete = $6
		 WHERE id = $1 AND owner_id = $2
		 RETURNING `+todoColumns,
		id, ownerID, req.Title, req.Description, req.Priority, req.Complete)
}

func (r *TodosRepo) getOne(ctx context.Context, op, query string, args ...any) (todo.Todo, error) {
	var t todo.Todo

	err := r.prom.ObserveDB(op, func() error {
		var err error
		t, err = scanTodo(r.pool.QueryRow(ctx, query, args...))
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return todo.Todo{}, todo.ErrNotFound
		}
		return todo.Todo{}, err
	}
	return t, nil
}

func (r *TodosRepo) DeleteForOwner(ctx context.Context, id, ownerID int64) error {
	return r.exec(ctx, "todos.delete_for_owner", `DELETE FROM todos WHERE id = $1 AND owner_id = $2`, id, ownerID)
}

func (r *TodosRepo) Delete(ctx context.Context, id int64) error {
	return r.exec(ctx, "todos.delete", `DELETE FROM todos WHERE id = $1`, id)
}

func (r *TodosRepo) exec(ctx context.Context, op, query string, args ...any) error {
	var affected int64

	err := r.prom.ObserveDB(op, func() error {
		tag, err := r.pool.Exec(ctx, query, args...)
		affected = tag.RowsAffected()
		return err
	})
	if err != nil {
		return err
	}

	if affected == 0 {
		return todo.ErrNotFound
	}
	return nil
}
