package repository

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/nurpe/recycle-disposals/internal/model"
)

type DisposalRepository struct {
	store *Store
}

func NewDisposalRepository(store *Store) *DisposalRepository {
	return &DisposalRepository{store: store}
}

const disposalColumns = `
	d.id,
	d.company_id,
	d.worker_id,
	d.disposal_date,
	d.address_name,
	d.status,
	d.rejection_message,
	d.total_price,
	COALESCE(d.impact_snapshot, 'null'::jsonb) AS impact_snapshot,
	d.completed_at,
	d.created_at,
	d.updated_at,
	ca.name AS location_name,
	ca.street AS location_street,
	ca.city AS location_city,
	ca.state AS location_state,
	ca.postal_code AS location_postal_code,
	ca.country AS location_country,
	ca.lat AS location_lat,
	ca.lng AS location_lng`

const disposalFrom = `
	FROM disposals d
	LEFT JOIN company_addresses ca ON ca.company_id = d.company_id AND ca.name = d.address_name`

type disposalRow struct {
	ID                 uuid.UUID
	CompanyID          uuid.UUID
	WorkerID           *uuid.UUID
	DisposalDate       time.Time
	AddressName        string
	Status             string
	RejectionMessage   *string
	TotalPrice         float64
	ImpactSnapshot     datatypes.JSON
	CompletedAt        *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
	LocationName       *string
	LocationStreet     *string
	LocationCity       *string
	LocationState      *string
	LocationPostalCode *string
	LocationCountry    *string
	LocationLat        *float64
	LocationLng        *float64
}

type disposalLineRow struct {
	DisposalID      uuid.UUID
	MaterialID      uuid.UUID
	Quantity        float64
	CalculatedPrice float64
}

func (row disposalRow) toModel() (model.Disposal, error) {
	d := model.Disposal{
		ID:           row.ID,
		CompanyID:    row.CompanyID,
		WorkerID:     row.WorkerID,
		DisposalDate: row.DisposalDate,
		AddressName:  row.AddressName,
		Status:       model.DisposalStatus(row.Status),
		TotalPrice:   row.TotalPrice,
		CompletedAt:  row.CompletedAt,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
		Materials:    []model.MaterialLine{},
	}
	if row.RejectionMessage != nil {
		d.RejectionMessage = *row.RejectionMessage
	}
	if len(row.ImpactSnapshot) > 0 {
		var snapshot *model.ImpactSnapshot
		if err := json.Unmarshal(row.ImpactSnapshot, &snapshot); err != nil {
			return model.Disposal{}, err
		}
		d.Impact = snapshot
	}
	if row.LocationName != nil {
		d.Location = &model.Address{
			Name:       *row.LocationName,
			Street:     deref(row.LocationStreet),
			City:       deref(row.LocationCity),
			State:      deref(row.LocationState),
			PostalCode: deref(row.LocationPostalCode),
			Country:    deref(row.LocationCountry),
		}
		if row.LocationLat != nil && row.LocationLng != nil {
			d.Location.Coordinates = &model.Coordinates{Lat: *row.LocationLat, Lng: *row.LocationLng}
		}
	}
	return d, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (r *DisposalRepository) CreateDisposal(ctx context.Context, d model.Disposal) (*model.Disposal, error) {
	var created struct{ ID uuid.UUID }
	err := r.store.WithinTransaction(ctx, func(ctx context.Context) error {
		db := r.store.conn(ctx)
		if err := db.Raw(`
			INSERT INTO disposals (company_id, disposal_date, address_name, status, total_price)
			VALUES (?, ?, ?, ?, ?)
			RETURNING id
		`, d.CompanyID, d.DisposalDate, d.AddressName, string(model.DisposalPending), d.TotalPrice).Scan(&created).Error; err != nil {
			return translate(err)
		}
		return r.insertLines(ctx, created.ID, d.Materials)
	})
	if err != nil {
		return nil, err
	}
	return r.GetDisposal(ctx, created.ID)
}

func (r *DisposalRepository) GetDisposal(ctx context.Context, id uuid.UUID) (*model.Disposal, error) {
	return r.getDisposal(ctx, id, false)
}

// LockDisposal reads the disposal with a row lock held until the surrounding
// transaction ends.
func (r *DisposalRepository) LockDisposal(ctx context.Context, id uuid.UUID) (*model.Disposal, error) {
	return r.getDisposal(ctx, id, true)
}

func (r *DisposalRepository) getDisposal(ctx context.Context, id uuid.UUID, lock bool) (*model.Disposal, error) {
	query := `SELECT ` + disposalColumns + disposalFrom + ` WHERE d.id = ? LIMIT 1`
	if lock {
		query = `SELECT ` + disposalColumns + disposalFrom + ` WHERE d.id = ? LIMIT 1 FOR UPDATE OF d`
	}

	var row disposalRow
	if err := r.store.conn(ctx).Raw(query, id).Scan(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, ErrNotFound
	}

	disposals, err := r.withLines(ctx, []disposalRow{row})
	if err != nil {
		return nil, err
	}
	return &disposals[0], nil
}

func (r *DisposalRepository) ListDisposals(ctx context.Context, filter model.DisposalFilter) ([]model.Disposal, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.Status != nil {
		where = append(where, "d.status = ?")
		args = append(args, string(*filter.Status))
	}
	if filter.CompanyID != nil {
		where = append(where, "d.company_id = ?")
		args = append(args, *filter.CompanyID)
	}
	if filter.WorkerID != nil {
		where = append(where, "d.worker_id = ?")
		args = append(args, *filter.WorkerID)
	}

	query := `SELECT ` + disposalColumns + disposalFrom
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY d.disposal_date ASC, d.created_at ASC"

	var rows []disposalRow
	if err := r.store.conn(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return r.withLines(ctx, rows)
}

func (r *DisposalRepository) withLines(ctx context.Context, rows []disposalRow) ([]model.Disposal, error) {
	disposals := make([]model.Disposal, 0, len(rows))
	if len(rows) == 0 {
		return disposals, nil
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}

	var lines []disposalLineRow
	if err := r.store.conn(ctx).Raw(`
		SELECT disposal_id, material_id, quantity, calculated_price
		FROM disposal_materials
		WHERE disposal_id IN ?
		ORDER BY disposal_id, position
	`, ids).Scan(&lines).Error; err != nil {
		return nil, err
	}

	byDisposal := make(map[uuid.UUID][]model.MaterialLine, len(rows))
	for _, line := range lines {
		byDisposal[line.DisposalID] = append(byDisposal[line.DisposalID], model.MaterialLine{
			MaterialID:      line.MaterialID,
			Quantity:        line.Quantity,
			CalculatedPrice: line.CalculatedPrice,
		})
	}

	for _, row := range rows {
		d, err := row.toModel()
		if err != nil {
			return nil, err
		}
		if items, ok := byDisposal[row.ID]; ok {
			d.Materials = items
		}
		disposals = append(disposals, d)
	}
	return disposals, nil
}

// TransitionDisposal writes change only when the current status is one of from.
// The check and the write are a single UPDATE statement.
func (r *DisposalRepository) TransitionDisposal(
	ctx context.Context,
	id uuid.UUID,
	from []model.DisposalStatus,
	change model.StatusChange,
) error {
	sources := make([]string, 0, len(from))
	for _, status := range from {
		sources = append(sources, string(status))
	}

	result := r.store.conn(ctx).Exec(`
		UPDATE disposals
		SET
			status = ?,
			worker_id = COALESCE(?, worker_id),
			rejection_message = COALESCE(?, rejection_message),
			completed_at = COALESCE(?, completed_at),
			updated_at = NOW()
		WHERE id = ? AND status IN ?
	`, string(change.Status), change.WorkerID, change.RejectionMessage, change.CompletedAt, id, sources)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 1 {
		return nil
	}
	return r.missingOrMismatch(ctx, id)
}

func (r *DisposalRepository) missingOrMismatch(ctx context.Context, id uuid.UUID) error {
	var row struct{ ID uuid.UUID }
	if err := r.store.conn(ctx).Raw(`SELECT id FROM disposals WHERE id = ?`, id).Scan(&row).Error; err != nil {
		return err
	}
	if row.ID == uuid.Nil {
		return ErrNotFound
	}
	return ErrStatusMismatch
}

// SaveDisposalLines replaces the line list of a Pending disposal.
func (r *DisposalRepository) SaveDisposalLines(ctx context.Context, id uuid.UUID, lines []model.MaterialLine, totalPrice float64) error {
	return r.store.WithinTransaction(ctx, func(ctx context.Context) error {
		result := r.store.conn(ctx).Exec(`
			UPDATE disposals SET total_price = ?, updated_at = NOW()
			WHERE id = ? AND status = ?
		`, totalPrice, id, string(model.DisposalPending))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return r.missingOrMismatch(ctx, id)
		}
		if err := r.store.conn(ctx).Exec(`DELETE FROM disposal_materials WHERE disposal_id = ?`, id).Error; err != nil {
			return err
		}
		return r.insertLines(ctx, id, lines)
	})
}

func (r *DisposalRepository) insertLines(ctx context.Context, id uuid.UUID, lines []model.MaterialLine) error {
	for i, line := range lines {
		if err := r.store.conn(ctx).Exec(`
			INSERT INTO disposal_materials (disposal_id, position, material_id, quantity, calculated_price)
			VALUES (?, ?, ?, ?, ?)
		`, id, i, line.MaterialID, line.Quantity, line.CalculatedPrice).Error; err != nil {
			return translate(err)
		}
	}
	return nil
}

// UpdateDisposalDetails changes schedule fields of a Pending disposal. Nil fields are kept.
func (r *DisposalRepository) UpdateDisposalDetails(ctx context.Context, id uuid.UUID, date *time.Time, addressName *string) error {
	result := r.store.conn(ctx).Exec(`
		UPDATE disposals
		SET
			disposal_date = COALESCE(?, disposal_date),
			address_name = COALESCE(?, address_name),
			updated_at = NOW()
		WHERE id = ? AND status = ?
	`, date, addressName, id, string(model.DisposalPending))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.missingOrMismatch(ctx, id)
	}
	return nil
}

func (r *DisposalRepository) SaveImpactSnapshot(ctx context.Context, id uuid.UUID, snapshot model.ImpactSnapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	result := r.store.conn(ctx).Exec(`
		UPDATE disposals SET impact_snapshot = ?, updated_at = NOW() WHERE id = ?
	`, datatypes.JSON(payload), id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
