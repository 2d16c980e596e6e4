package model

import (
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type DisposalStatus string

const (
	DisposalPending   DisposalStatus = "Pending"
	DisposalAccepted  DisposalStatus = "Accepted"
	DisposalRejected  DisposalStatus = "Rejected"
	DisposalCompleted DisposalStatus = "Completed"
	DisposalCancelled DisposalStatus = "Cancelled"
)

var ErrInvalidQuantity = errors.New("quantity must be a positive number")

var disposalTransitions = map[DisposalStatus][]DisposalStatus{
	DisposalPending:  {DisposalAccepted, DisposalRejected, DisposalCancelled},
	DisposalAccepted: {DisposalCompleted, DisposalCancelled},
}

func ParseDisposalStatus(raw string) (DisposalStatus, bool) {
	switch s := DisposalStatus(raw); s {
	case DisposalPending, DisposalAccepted, DisposalRejected, DisposalCompleted, DisposalCancelled:
		return s, true
	default:
		return "", false
	}
}

func (s DisposalStatus) IsTerminal() bool {
	return s == DisposalRejected || s == DisposalCompleted || s == DisposalCancelled
}

func CanTransition(from, to DisposalStatus) bool {
	for _, next := range disposalTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// TransitionSources returns every status from which to is reachable in one step.
func TransitionSources(to DisposalStatus) []DisposalStatus {
	var sources []DisposalStatus
	for _, from := range []DisposalStatus{DisposalPending, DisposalAccepted} {
		if CanTransition(from, to) {
			sources = append(sources, from)
		}
	}
	return sources
}

type MaterialLine struct {
	MaterialID      uuid.UUID `json:"material"`
	Quantity        float64   `json:"quantity"`
	CalculatedPrice float64   `json:"calculated_price"`
}

type Disposal struct {
	ID               uuid.UUID       `json:"id"`
	CompanyID        uuid.UUID       `json:"company"`
	WorkerID         *uuid.UUID      `json:"worker,omitempty"`
	DisposalDate     time.Time       `json:"disposal_date"`
	AddressName      string          `json:"address_name"`
	Status           DisposalStatus  `json:"status"`
	RejectionMessage string          `json:"rejection_message,omitempty"`
	Materials        []MaterialLine  `json:"materials"`
	TotalPrice       float64         `json:"total_price"`
	Impact           *ImpactSnapshot `json:"impact,omitempty"`
	CompletedAt      *time.Time      `json:"completed_at,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	Location         *Address        `json:"location,omitempty"`
}

// AddLine appends a priced line for m and recomputes the total.
func (d *Disposal) AddLine(m Material, quantity float64) error {
	if quantity <= 0 || math.IsNaN(quantity) || math.IsInf(quantity, 0) {
		return ErrInvalidQuantity
	}
	d.Materials = append(d.Materials, MaterialLine{
		MaterialID:      m.ID,
		Quantity:        quantity,
		CalculatedPrice: m.LinePrice(quantity),
	})
	d.RecomputeTotal()
	return nil
}

// RemoveLines drops every line referencing materialID and reports whether any was removed.
func (d *Disposal) RemoveLines(materialID uuid.UUID) bool {
	kept := make([]MaterialLine, 0, len(d.Materials))
	removed := false
	for _, line := range d.Materials {
		if line.MaterialID == materialID {
			removed = true
			continue
		}
		kept = append(kept, line)
	}
	d.Materials = kept
	d.RecomputeTotal()
	return removed
}

// RecomputeTotal sums the line prices at PriceScale, the same values the
// store keeps per line.
func (d *Disposal) RecomputeTotal() {
	total := decimal.Zero
	for _, line := range d.Materials {
		total = total.Add(decimal.NewFromFloat(line.CalculatedPrice).Round(PriceScale))
	}
	d.TotalPrice = total.InexactFloat64()
}

func (d Disposal) MaterialIDs() []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(d.Materials))
	ids := make([]uuid.UUID, 0, len(d.Materials))
	for _, line := range d.Materials {
		if _, ok := seen[line.MaterialID]; ok {
			continue
		}
		seen[line.MaterialID] = struct{}{}
		ids = append(ids, line.MaterialID)
	}
	return ids
}

// StatusChange is the write side of a guarded status transition.
type StatusChange struct {
	Status           DisposalStatus
	WorkerID         *uuid.UUID
	RejectionMessage *string
	CompletedAt      *time.Time
}

type DisposalFilter struct {
	Status    *DisposalStatus
	CompanyID *uuid.UUID
	WorkerID  *uuid.UUID
}
