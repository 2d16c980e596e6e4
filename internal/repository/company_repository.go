package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/nurpe/recycle-disposals/internal/model"
)

type CompanyRepository struct {
	store *Store
}

func NewCompanyRepository(store *Store) *CompanyRepository {
	return &CompanyRepository{store: store}
}

type companyRow struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	Name          string
	ProfileImage  string
	ContactNumber string
}

type statsRow struct {
	TotalDisposals          int64
	TotalCO2Saved           float64 `gorm:"column:total_co2_saved"`
	TotalWaterSaved         float64
	TotalEnergySaved        float64
	TotalTreesSaved         float64
	TotalLandfillSpaceSaved float64
	TotalOilSaved           float64
	PlasticQuantity         float64
	PaperQuantity           float64
	MetalQuantity           float64
	GlassQuantity           float64
	ElectronicQuantity      float64
	OrganicQuantity         float64
}

func (row statsRow) toModel() model.CompanyStats {
	return model.CompanyStats{
		TotalDisposals: row.TotalDisposals,
		ImpactTotals: model.ImpactTotals{
			CO2Saved:           row.TotalCO2Saved,
			WaterSaved:         row.TotalWaterSaved,
			EnergySaved:        row.TotalEnergySaved,
			TreesSaved:         row.TotalTreesSaved,
			LandfillSpaceSaved: row.TotalLandfillSpaceSaved,
			OilSaved:           row.TotalOilSaved,
		},
		MaterialStats: model.MaterialQuantities{
			Plastic:    row.PlasticQuantity,
			Paper:      row.PaperQuantity,
			Metal:      row.MetalQuantity,
			Glass:      row.GlassQuantity,
			Electronic: row.ElectronicQuantity,
			Organic:    row.OrganicQuantity,
		},
	}
}

const statsColumns = `
	total_disposals,
	total_co2_saved,
	total_water_saved,
	total_energy_saved,
	total_trees_saved,
	total_landfill_space_saved,
	total_oil_saved,
	plastic_quantity,
	paper_quantity,
	metal_quantity,
	glass_quantity,
	electronic_quantity,
	organic_quantity`

// CreateCompany registers the company owned by c.UserID, or refreshes its name
// when the user already has one.
func (r *CompanyRepository) CreateCompany(ctx context.Context, c model.Company) (*model.Company, error) {
	var row struct{ ID uuid.UUID }
	err := r.store.WithinTransaction(ctx, func(ctx context.Context) error {
		db := r.store.conn(ctx)
		if err := db.Raw(`
			INSERT INTO companies (user_id, name, profile_image, contact_number)
			VALUES (?, ?, ?, ?)
			ON CONFLICT (user_id) DO UPDATE SET name = EXCLUDED.name
			RETURNING id
		`, c.UserID, c.Name, c.ProfileImage, c.ContactNumber).Scan(&row).Error; err != nil {
			return translate(err)
		}
		return db.Exec(`
			INSERT INTO company_stats (company_id) VALUES (?) ON CONFLICT (company_id) DO NOTHING
		`, row.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return r.GetCompany(ctx, row.ID)
}

func (r *CompanyRepository) GetCompany(ctx context.Context, id uuid.UUID) (*model.Company, error) {
	var row companyRow
	if err := r.store.conn(ctx).Raw(`
		SELECT id, user_id, name, profile_image, contact_number
		FROM companies
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, ErrNotFound
	}
	return r.hydrate(ctx, row)
}

func (r *CompanyRepository) GetCompanyByUser(ctx context.Context, userID uuid.UUID) (*model.Company, error) {
	var row companyRow
	if err := r.store.conn(ctx).Raw(`
		SELECT id, user_id, name, profile_image, contact_number
		FROM companies
		WHERE user_id = ?
		LIMIT 1
	`, userID).Scan(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, ErrNotFound
	}
	return r.hydrate(ctx, row)
}

func (r *CompanyRepository) ListCompanies(ctx context.Context) ([]model.Company, error) {
	var rows []companyRow
	if err := r.store.conn(ctx).Raw(`
		SELECT id, user_id, name, profile_image, contact_number
		FROM companies
		ORDER BY name
	`).Scan(&rows).Error; err != nil {
		return nil, err
	}

	companies := make([]model.Company, 0, len(rows))
	for _, row := range rows {
		company, err := r.hydrate(ctx, row)
		if err != nil {
			return nil, err
		}
		companies = append(companies, *company)
	}
	return companies, nil
}

func (r *CompanyRepository) hydrate(ctx context.Context, row companyRow) (*model.Company, error) {
	company := &model.Company{
		ID:              row.ID,
		UserID:          row.UserID,
		Name:            row.Name,
		ProfileImage:    row.ProfileImage,
		ContactNumber:   row.ContactNumber,
		Addresses:       []model.Address{},
		PickUpSchedule:  []model.PickUpSchedule{},
		DisposalHistory: []model.DisposalHistoryEntry{},
		Achievements:    []model.HeldAchievement{},
	}
	db := r.store.conn(ctx)

	var addresses []struct {
		Name       string
		Street     string
		City       string
		State      string
		PostalCode string
		Country    string
		Lat        *float64
		Lng        *float64
	}
	if err := db.Raw(`
		SELECT name, street, city, state, postal_code, country, lat, lng
		FROM company_addresses
		WHERE company_id = ?
		ORDER BY position
	`, row.ID).Scan(&addresses).Error; err != nil {
		return nil, err
	}
	for _, a := range addresses {
		addr := model.Address{
			Name:       a.Name,
			Street:     a.Street,
			City:       a.City,
			State:      a.State,
			PostalCode: a.PostalCode,
			Country:    a.Country,
		}
		if a.Lat != nil && a.Lng != nil {
			addr.Coordinates = &model.Coordinates{Lat: *a.Lat, Lng: *a.Lng}
		}
		company.Addresses = append(company.Addresses, addr)
	}

	if err := db.Raw(`
		SELECT id, day, time, address_name
		FROM pick_up_schedules
		WHERE company_id = ?
		ORDER BY CASE day
			WHEN 'Sunday' THEN 0 WHEN 'Monday' THEN 1 WHEN 'Tuesday' THEN 2
			WHEN 'Wednesday' THEN 3 WHEN 'Thursday' THEN 4 WHEN 'Friday' THEN 5
			ELSE 6 END
	`, row.ID).Scan(&company.PickUpSchedule).Error; err != nil {
		return nil, err
	}

	if err := db.Raw(`
		SELECT disposal_id, date
		FROM company_disposal_history
		WHERE company_id = ?
		ORDER BY date
	`, row.ID).Scan(&company.DisposalHistory).Error; err != nil {
		return nil, err
	}

	var stats statsRow
	if err := db.Raw(`SELECT `+statsColumns+` FROM company_stats WHERE company_id = ?`, row.ID).
		Scan(&stats).Error; err != nil {
		return nil, err
	}
	company.Stats = stats.toModel()

	held, err := r.ListHeldAchievements(ctx, row.ID)
	if err != nil {
		return nil, err
	}
	company.Achievements = held
	return company, nil
}

func (r *CompanyRepository) UpdateCompanyProfile(ctx context.Context, id uuid.UUID, patch model.CompanyProfilePatch) error {
	result := r.store.conn(ctx).Exec(`
		UPDATE companies
		SET
			name = COALESCE(?, name),
			contact_number = COALESCE(?, contact_number),
			profile_image = COALESCE(?, profile_image)
		WHERE id = ?
	`, patch.Name, patch.ContactNumber, patch.ProfileImage, id)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *CompanyRepository) AddAddress(ctx context.Context, companyID uuid.UUID, addr model.Address) error {
	var lat, lng *float64
	if addr.Coordinates != nil {
		lat, lng = &addr.Coordinates.Lat, &addr.Coordinates.Lng
	}
	err := r.store.conn(ctx).Exec(`
		INSERT INTO company_addresses (company_id, name, street, city, state, postal_code, country, lat, lng)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, companyID, addr.Name, addr.Street, addr.City, addr.State, addr.PostalCode, addr.Country, lat, lng).Error
	return translate(err)
}

func (r *CompanyRepository) RemoveAddress(ctx context.Context, companyID uuid.UUID, name string) error {
	result := r.store.conn(ctx).Exec(`
		DELETE FROM company_addresses WHERE company_id = ? AND name = ?
	`, companyID, name)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *CompanyRepository) AddPickUpSchedule(ctx context.Context, companyID uuid.UUID, s model.PickUpSchedule) (*model.PickUpSchedule, error) {
	var saved model.PickUpSchedule
	err := r.store.conn(ctx).Raw(`
		INSERT INTO pick_up_schedules (company_id, day, time, address_name)
		VALUES (?, ?, ?, ?)
		RETURNING id, day, time, address_name
	`, companyID, string(s.Day), s.Time, s.AddressName).Scan(&saved).Error
	if err != nil {
		return nil, translate(err)
	}
	return &saved, nil
}

func (r *CompanyRepository) UpdatePickUpSchedule(
	ctx context.Context,
	companyID, scheduleID uuid.UUID,
	patch model.PickUpSchedulePatch,
) (*model.PickUpSchedule, error) {
	var day *string
	if patch.Day != nil {
		d := string(*patch.Day)
		day = &d
	}

	var saved model.PickUpSchedule
	err := r.store.conn(ctx).Raw(`
		UPDATE pick_up_schedules
		SET
			day = COALESCE(?, day),
			time = COALESCE(?, time),
			address_name = COALESCE(?, address_name)
		WHERE id = ? AND company_id = ?
		RETURNING id, day, time, address_name
	`, day, patch.Time, patch.AddressName, scheduleID, companyID).Scan(&saved).Error
	if err != nil {
		return nil, translate(err)
	}
	if saved.ID == uuid.Nil {
		return nil, ErrNotFound
	}
	return &saved, nil
}

func (r *CompanyRepository) DeletePickUpSchedule(ctx context.Context, companyID, scheduleID uuid.UUID) error {
	result := r.store.conn(ctx).Exec(`
		DELETE FROM pick_up_schedules WHERE id = ? AND company_id = ?
	`, scheduleID, companyID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *CompanyRepository) ClearPickUpSchedules(ctx context.Context, companyID uuid.UUID) error {
	return r.store.conn(ctx).Exec(`DELETE FROM pick_up_schedules WHERE company_id = ?`, companyID).Error
}

// LockCompanyStats returns the company's statistics row locked for update,
// creating the zero row on first use.
func (r *CompanyRepository) LockCompanyStats(ctx context.Context, companyID uuid.UUID) (model.CompanyStats, error) {
	db := r.store.conn(ctx)

	var company struct{ ID uuid.UUID }
	if err := db.Raw(`SELECT id FROM companies WHERE id = ?`, companyID).Scan(&company).Error; err != nil {
		return model.CompanyStats{}, err
	}
	if company.ID == uuid.Nil {
		return model.CompanyStats{}, ErrNotFound
	}

	if err := db.Exec(`
		INSERT INTO company_stats (company_id) VALUES (?) ON CONFLICT (company_id) DO NOTHING
	`, companyID).Error; err != nil {
		return model.CompanyStats{}, err
	}

	var row statsRow
	if err := db.Raw(`SELECT `+statsColumns+` FROM company_stats WHERE company_id = ? FOR UPDATE`, companyID).
		Scan(&row).Error; err != nil {
		return model.CompanyStats{}, err
	}
	return row.toModel(), nil
}

func (r *CompanyRepository) SaveCompanyStats(ctx context.Context, companyID uuid.UUID, stats model.CompanyStats) error {
	result := r.store.conn(ctx).Exec(`
		UPDATE company_stats
		SET
			total_disposals = ?,
			total_co2_saved = ?,
			total_water_saved = ?,
			total_energy_saved = ?,
			total_trees_saved = ?,
			total_landfill_space_saved = ?,
			total_oil_saved = ?,
			plastic_quantity = ?,
			paper_quantity = ?,
			metal_quantity = ?,
			glass_quantity = ?,
			electronic_quantity = ?,
			organic_quantity = ?,
			updated_at = NOW()
		WHERE company_id = ?
	`,
		stats.TotalDisposals,
		stats.CO2Saved,
		stats.WaterSaved,
		stats.EnergySaved,
		stats.TreesSaved,
		stats.LandfillSpaceSaved,
		stats.OilSaved,
		stats.MaterialStats.Plastic,
		stats.MaterialStats.Paper,
		stats.MaterialStats.Metal,
		stats.MaterialStats.Glass,
		stats.MaterialStats.Electronic,
		stats.MaterialStats.Organic,
		companyID,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// AppendDisposalHistory records that the disposal's contribution was applied.
// It reports false when the disposal was already recorded.
func (r *CompanyRepository) AppendDisposalHistory(ctx context.Context, companyID uuid.UUID, entry model.DisposalHistoryEntry) (bool, error) {
	result := r.store.conn(ctx).Exec(`
		INSERT INTO company_disposal_history (disposal_id, company_id, date)
		VALUES (?, ?, ?)
		ON CONFLICT (disposal_id) DO NOTHING
	`, entry.DisposalID, companyID, entry.Date)
	if result.Error != nil {
		return false, translate(result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *CompanyRepository) ListHeldAchievements(ctx context.Context, companyID uuid.UUID) ([]model.HeldAchievement, error) {
	held := []model.HeldAchievement{}
	err := r.store.conn(ctx).Raw(`
		SELECT achievement_id, disposal_id, earned_at
		FROM company_achievements
		WHERE company_id = ?
		ORDER BY earned_at, achievement_id
	`, companyID).Scan(&held).Error
	if err != nil {
		return nil, err
	}
	return held, nil
}

func (r *CompanyRepository) AddHeldAchievements(ctx context.Context, companyID uuid.UUID, held []model.HeldAchievement) error {
	for _, h := range held {
		earnedAt := h.EarnedAt
		if earnedAt.IsZero() {
			earnedAt = time.Now().UTC()
		}
		if err := r.store.conn(ctx).Exec(`
			INSERT INTO company_achievements (company_id, achievement_id, disposal_id, earned_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT (company_id, achievement_id) DO NOTHING
		`, companyID, h.AchievementID, h.DisposalID, earnedAt).Error; err != nil {
			return err
		}
	}
	return nil
}
