package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MasteryRepository хранит накопленный опыт актора по каждой стихии.
// Реализует contrib.MasteryStore.
type MasteryRepository struct {
	db *pgxpool.Pool
}

// NewMasteryRepository создаёт новый MasteryRepository.
func NewMasteryRepository(db *pgxpool.Pool) *MasteryRepository {
	return &MasteryRepository{db: db}
}

// Experience возвращает опыт актора в стихии. Отсутствующая запись = 0.
func (r *MasteryRepository) Experience(ctx context.Context, actorID, elem string) (float64, error) {
	var exp float64
	err := r.db.QueryRow(ctx,
		`SELECT experience FROM actor_element_mastery WHERE actor_id = $1 AND element_id = $2`,
		actorID, elem,
	).Scan(&exp)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("querying mastery %s/%s: %w", actorID, elem, err)
	}
	return exp, nil
}

// AddExperience атомарно добавляет опыт и возвращает новое значение.
// Thread-safe: INSERT ... ON CONFLICT DO UPDATE.
func (r *MasteryRepository) AddExperience(ctx context.Context, actorID, elem string, delta float64) (float64, error) {
	var exp float64
	err := r.db.QueryRow(ctx,
		`INSERT INTO actor_element_mastery (actor_id, element_id, experience)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (actor_id, element_id)
		 DO UPDATE SET experience = actor_element_mastery.experience + EXCLUDED.experience,
		               updated_at = now()
		 RETURNING experience`,
		actorID, elem, delta,
	).Scan(&exp)
	if err != nil {
		return 0, fmt.Errorf("adding mastery %s/%s: %w", actorID, elem, err)
	}
	return exp, nil
}

// Set перезаписывает опыт актора в стихии.
func (r *MasteryRepository) Set(ctx context.Context, actorID, elem string, exp float64) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO actor_element_mastery (actor_id, element_id, experience)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (actor_id, element_id)
		 DO UPDATE SET experience = EXCLUDED.experience, updated_at = now()`,
		actorID, elem, exp,
	)
	if err != nil {
		return fmt.Errorf("setting mastery %s/%s: %w", actorID, elem, err)
	}
	return nil
}

// LoadActor загружает опыт актора по всем стихиям.
func (r *MasteryRepository) LoadActor(ctx context.Context, actorID string) (map[string]float64, error) {
	rows, err := r.db.Query(ctx,
		`SELECT element_id, experience FROM actor_element_mastery WHERE actor_id = $1 ORDER BY element_id`,
		actorID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying mastery for actor %s: %w", actorID, err)
	}
	defer rows.Close()

	out := make(map[string]float64, 8)
	for rows.Next() {
		var elem string
		var exp float64
		if err := rows.Scan(&elem, &exp); err != nil {
			return nil, fmt.Errorf("scanning mastery row: %w", err)
		}
		out[elem] = exp
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating mastery rows: %w", err)
	}
	return out, nil
}

// DeleteActor удаляет весь опыт актора. Возвращает число удалённых записей.
func (r *MasteryRepository) DeleteActor(ctx context.Context, actorID string) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM actor_element_mastery WHERE actor_id = $1`, actorID)
	if err != nil {
		return 0, fmt.Errorf("deleting mastery for actor %s: %w", actorID, err)
	}
	return tag.RowsAffected(), nil
}
