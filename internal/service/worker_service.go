package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/nurpe/recycle-disposals/internal/model"
)

type WorkerService struct {
	Deps
}

func NewWorkerService(deps Deps) *WorkerService {
	return &WorkerService{Deps: deps.withDefaults()}
}

func (s *WorkerService) Get(ctx context.Context, id uuid.UUID) (*model.Worker, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	worker, err := s.Workers.GetWorker(ctx, id)
	if err != nil {
		return nil, upstream(notFound(err, "worker"))
	}
	return worker, nil
}

func (s *WorkerService) List(ctx context.Context) ([]model.Worker, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	workers, err := s.Workers.ListWorkers(ctx)
	if err != nil {
		return nil, upstream(err)
	}
	return workers, nil
}

func (s *WorkerService) SetName(ctx context.Context, p model.Principal, id uuid.UUID, name string) (*model.Worker, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	return s.update(ctx, p, id, model.WorkerProfilePatch{Name: &name})
}

func (s *WorkerService) SetLocation(ctx context.Context, p model.Principal, id uuid.UUID, at model.Coordinates) (*model.Worker, error) {
	if math.IsNaN(at.Lat) || math.IsNaN(at.Lng) || math.Abs(at.Lat) > 90 || math.Abs(at.Lng) > 180 {
		return nil, fmt.Errorf("%w: coordinates out of range", ErrInvalidInput)
	}
	return s.update(ctx, p, id, model.WorkerProfilePatch{CurrentLocation: &at})
}

func (s *WorkerService) update(ctx context.Context, p model.Principal, id uuid.UUID, patch model.WorkerProfilePatch) (*model.Worker, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	worker, err := s.worker(ctx, p)
	if err != nil {
		return nil, upstream(err)
	}
	if worker.ID != id {
		return nil, fmt.Errorf("%w: workers can only edit their own profile", ErrPermissionDenied)
	}
	if err := s.Workers.UpdateWorkerProfile(ctx, id, patch); err != nil {
		return nil, upstream(notFound(err, "worker"))
	}
	return s.Get(ctx, id)
}
