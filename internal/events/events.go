package events

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/nurpe/recycle-disposals/internal/config"
	"github.com/nurpe/recycle-disposals/internal/model"
)

type Type string

const (
	DisposalCreated   Type = "disposal.created"
	DisposalAccepted  Type = "disposal.accepted"
	DisposalRejected  Type = "disposal.rejected"
	DisposalCompleted Type = "disposal.completed"
	DisposalCancelled Type = "disposal.cancelled"
	AchievementEarned Type = "achievement.earned"
)

// Event is the broker payload. ID is a ULID so consumers can order and dedupe.
type Event struct {
	ID            string                 `json:"id"`
	Type          Type                   `json:"type"`
	OccurredAt    time.Time              `json:"occurred_at"`
	DisposalID    uuid.UUID              `json:"disposal_id"`
	CompanyID     uuid.UUID              `json:"company_id"`
	WorkerID      *uuid.UUID             `json:"worker_id,omitempty"`
	Status        model.DisposalStatus   `json:"status,omitempty"`
	AchievementID *uuid.UUID             `json:"achievement_id,omitempty"`
	Level         model.AchievementLevel `json:"level,omitempty"`
	Totals        *model.ImpactTotals    `json:"totals,omitempty"`
}

func ForDisposal(t Type, d model.Disposal, at time.Time) Event {
	return Event{
		ID:         ulid.Make().String(),
		Type:       t,
		OccurredAt: at,
		DisposalID: d.ID,
		CompanyID:  d.CompanyID,
		WorkerID:   d.WorkerID,
		Status:     d.Status,
	}
}

func ForAchievement(a model.Achievement, companyID, disposalID uuid.UUID, at time.Time) Event {
	id := a.ID
	return Event{
		ID:            ulid.Make().String(),
		Type:          AchievementEarned,
		OccurredAt:    at,
		DisposalID:    disposalID,
		CompanyID:     companyID,
		AchievementID: &id,
		Level:         a.Level,
	}
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// New builds the publisher selected by EVENTS_DRIVER.
func New(cfg config.EventsConfig, log zerolog.Logger) (Publisher, error) {
	switch cfg.Driver {
	case config.EventsDriverAMQP:
		return NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	case config.EventsDriverKafka:
		return NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic), nil
	case config.EventsDriverNone, "":
		log.Info().Msg("domain events disabled")
		return Noop{}, nil
	default:
		return nil, fmt.Errorf("unknown events driver %q", cfg.Driver)
	}
}

type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }

func (Noop) Close() error { return nil }
