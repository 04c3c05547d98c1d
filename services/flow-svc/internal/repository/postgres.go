package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"flowtrace/pkg/database"
	"flowtrace/pkg/telemetry"
)

// PostgresRunRepository PostgreSQL реализация, таблица flow_runs
type PostgresRunRepository struct {
	db database.DB
}

// NewPostgresRunRepository создаёт новый репозиторий
func NewPostgresRunRepository(db database.DB) *PostgresRunRepository {
	return &PostgresRunRepository{db: db}
}

var orderClauses = map[SortOrder]string{
	SortByCreatedDesc: "created_at DESC",
	SortByCreatedAsc:  "created_at ASC",
	SortByMaxFlowDesc: "max_flow DESC, created_at DESC",
}

func (r *PostgresRunRepository) Create(ctx context.Context, run *Run) error {
	ctx, span := telemetry.StartSpan(ctx, "PostgresRunRepository.Create")
	defer span.End()

	if run.ID == "" {
		run.ID = uuid.NewString()
	}

	matrix, err := json.Marshal(run.Matrix)
	if err != nil {
		return fmt.Errorf("failed to encode matrix: %w", err)
	}
	steps, err := json.Marshal(run.Steps)
	if err != nil {
		return fmt.Errorf("failed to encode steps: %w", err)
	}
	residual, err := nullableJSON(run.Residual, run.Residual == nil)
	if err != nil {
		return fmt.Errorf("failed to encode residual: %w", err)
	}
	minCut, err := nullableJSON(run.MinCut, run.MinCut == nil)
	if err != nil {
		return fmt.Errorf("failed to encode min cut: %w", err)
	}

	query := `
		INSERT INTO flow_runs (
			id, name, source, sink, vertices, edges,
			max_flow, step_count, matrix, steps, residual, min_cut, duration_ms
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at
	`

	err = r.db.QueryRow(ctx, query,
		run.ID,
		run.Name,
		run.Source,
		run.Sink,
		run.Vertices,
		run.Edges,
		run.MaxFlow,
		run.StepCount,
		matrix,
		steps,
		residual,
		minCut,
		run.DurationMs,
	).Scan(&run.CreatedAt)
	if err != nil {
		telemetry.SetError(ctx, err)
		return fmt.Errorf("failed to create run: %w", err)
	}

	return nil
}

func (r *PostgresRunRepository) GetByID(ctx context.Context, id string) (*Run, error) {
	ctx, span := telemetry.StartSpan(ctx, "PostgresRunRepository.GetByID")
	defer span.End()

	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrRunNotFound
	}

	query := `
		SELECT
			id, name, source, sink, vertices, edges,
			max_flow, step_count, matrix, steps, residual, min_cut,
			duration_ms, created_at
		FROM flow_runs
		WHERE id = $1
	`

	run := &Run{}
	var matrix, steps, residual, minCut []byte

	err := r.db.QueryRow(ctx, query, id).Scan(
		&run.ID,
		&run.Name,
		&run.Source,
		&run.Sink,
		&run.Vertices,
		&run.Edges,
		&run.MaxFlow,
		&run.StepCount,
		&matrix,
		&steps,
		&residual,
		&minCut,
		&run.DurationMs,
		&run.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRunNotFound
		}
		telemetry.SetError(ctx, err)
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	if err := json.Unmarshal(matrix, &run.Matrix); err != nil {
		return nil, fmt.Errorf("failed to decode matrix: %w", err)
	}
	if err := json.Unmarshal(steps, &run.Steps); err != nil {
		return nil, fmt.Errorf("failed to decode steps: %w", err)
	}
	if len(residual) > 0 {
		if err := json.Unmarshal(residual, &run.Residual); err != nil {
			return nil, fmt.Errorf("failed to decode residual: %w", err)
		}
	}
	if len(minCut) > 0 {
		if err := json.Unmarshal(minCut, &run.MinCut); err != nil {
			return nil, fmt.Errorf("failed to decode min cut: %w", err)
		}
	}

	return run, nil
}

func (r *PostgresRunRepository) List(ctx context.Context, opts *ListOptions) ([]*RunSummary, int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "PostgresRunRepository.List")
	defer span.End()

	o := opts.normalize()

	where := "TRUE"
	var args []any
	argNum := 1

	if o.Name != "" {
		where = fmt.Sprintf("name = $%d", argNum)
		args = append(args, o.Name)
		argNum++
	}

	type page struct {
		items []*RunSummary
		total int64
	}

	// Подсчёт и страница из одного снимка
	res, err := database.WithTransactionResult(ctx, r.db, database.ReadOnlySnapshot, func(tx pgx.Tx) (page, error) {
		var p page
		countQuery := fmt.Sprintf("SELECT COUNT(*) FROM flow_runs WHERE %s", where)
		if err := tx.QueryRow(ctx, countQuery, args...).Scan(&p.total); err != nil {
			return p, fmt.Errorf("failed to count runs: %w", err)
		}

		selectQuery := fmt.Sprintf(`
		SELECT id, name, source, sink, vertices, edges, max_flow, step_count, duration_ms, created_at
		FROM flow_runs
		WHERE %s
		ORDER BY %s
		LIMIT $%d OFFSET $%d
	`, where, orderClauses[o.Sort], argNum, argNum+1)
		pageArgs := append(args, o.Limit, o.Offset)

		rows, err := tx.Query(ctx, selectQuery, pageArgs...)
		if err != nil {
			return p, fmt.Errorf("failed to list runs: %w", err)
		}
		defer rows.Close()

		p.items = make([]*RunSummary, 0, o.Limit)
		for rows.Next() {
			s := &RunSummary{}
			if err := rows.Scan(
				&s.ID,
				&s.Name,
				&s.Source,
				&s.Sink,
				&s.Vertices,
				&s.Edges,
				&s.MaxFlow,
				&s.StepCount,
				&s.DurationMs,
				&s.CreatedAt,
			); err != nil {
				return p, fmt.Errorf("failed to scan run: %w", err)
			}
			p.items = append(p.items, s)
		}
		if err := rows.Err(); err != nil {
			return p, fmt.Errorf("failed to iterate runs: %w", err)
		}
		return p, nil
	})
	if err != nil {
		return nil, 0, err
	}

	return res.items, res.total, nil
}

func (r *PostgresRunRepository) Delete(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "PostgresRunRepository.Delete")
	defer span.End()

	if _, err := uuid.Parse(id); err != nil {
		return ErrRunNotFound
	}

	result, err := r.db.Exec(ctx, `DELETE FROM flow_runs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrRunNotFound
	}
	return nil
}

func (r *PostgresRunRepository) Count(ctx context.Context) (int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "PostgresRunRepository.Count")
	defer span.End()

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM flow_runs`).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count runs: %w", err)
	}
	return total, nil
}

// nullableJSON кодирует v или возвращает nil для NULL
func nullableJSON(v any, isNil bool) ([]byte, error) {
	if isNil {
		return nil, nil
	}
	return json.Marshal(v)
}
