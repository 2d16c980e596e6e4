package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/nurpe/recycle-disposals/internal/model"
)

type WorkerRepository struct {
	store *Store
}

func NewWorkerRepository(store *Store) *WorkerRepository {
	return &WorkerRepository{store: store}
}

type workerRow struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	Name       string
	Phone      string
	CurrentLat *float64
	CurrentLng *float64
}

func (row workerRow) toModel() model.Worker {
	w := model.Worker{ID: row.ID, UserID: row.UserID, Name: row.Name, Phone: row.Phone}
	if row.CurrentLat != nil && row.CurrentLng != nil {
		w.CurrentLocation = &model.Coordinates{Lat: *row.CurrentLat, Lng: *row.CurrentLng}
	}
	return w
}

func (r *WorkerRepository) CreateWorker(ctx context.Context, w model.Worker) (*model.Worker, error) {
	var row workerRow
	err := r.store.conn(ctx).Raw(`
		INSERT INTO workers (user_id, name, phone)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET name = EXCLUDED.name, phone = EXCLUDED.phone
		RETURNING id, user_id, name, phone, current_lat, current_lng
	`, w.UserID, w.Name, w.Phone).Scan(&row).Error
	if err != nil {
		return nil, translate(err)
	}
	worker := row.toModel()
	return &worker, nil
}

func (r *WorkerRepository) GetWorker(ctx context.Context, id uuid.UUID) (*model.Worker, error) {
	return r.getBy(ctx, "id", id)
}

func (r *WorkerRepository) GetWorkerByUser(ctx context.Context, userID uuid.UUID) (*model.Worker, error) {
	return r.getBy(ctx, "user_id", userID)
}

func (r *WorkerRepository) getBy(ctx context.Context, column string, value uuid.UUID) (*model.Worker, error) {
	var row workerRow
	if err := r.store.conn(ctx).Raw(`
		SELECT id, user_id, name, phone, current_lat, current_lng
		FROM workers
		WHERE `+column+` = ?
		LIMIT 1
	`, value).Scan(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, ErrNotFound
	}
	worker := row.toModel()
	return &worker, nil
}

func (r *WorkerRepository) ListWorkers(ctx context.Context) ([]model.Worker, error) {
	var rows []workerRow
	if err := r.store.conn(ctx).Raw(`
		SELECT id, user_id, name, phone, current_lat, current_lng
		FROM workers
		ORDER BY name
	`).Scan(&rows).Error; err != nil {
		return nil, err
	}
	workers := make([]model.Worker, 0, len(rows))
	for _, row := range rows {
		workers = append(workers, row.toModel())
	}
	return workers, nil
}

func (r *WorkerRepository) UpdateWorkerProfile(ctx context.Context, id uuid.UUID, patch model.WorkerProfilePatch) error {
	var lat, lng *float64
	if patch.CurrentLocation != nil {
		lat, lng = &patch.CurrentLocation.Lat, &patch.CurrentLocation.Lng
	}
	result := r.store.conn(ctx).Exec(`
		UPDATE workers
		SET
			name = COALESCE(?, name),
			current_lat = COALESCE(?, current_lat),
			current_lng = COALESCE(?, current_lng)
		WHERE id = ?
	`, patch.Name, lat, lng, id)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
