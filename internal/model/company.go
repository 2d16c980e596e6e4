package model

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type StatType string

const (
	StatTotalDisposals          StatType = "totalDisposals"
	StatTotalCO2Saved           StatType = "totalCO2Saved"
	StatTotalWaterSaved         StatType = "totalWaterSaved"
	StatTotalEnergySaved        StatType = "totalEnergySaved"
	StatTotalTreesSaved         StatType = "totalTreesSaved"
	StatTotalLandfillSpaceSaved StatType = "totalLandfillSpaceSaved"
	StatTotalOilSaved           StatType = "totalOilSaved"
)

var StatTypes = []StatType{
	StatTotalDisposals,
	StatTotalCO2Saved,
	StatTotalWaterSaved,
	StatTotalEnergySaved,
	StatTotalTreesSaved,
	StatTotalLandfillSpaceSaved,
	StatTotalOilSaved,
}

func ParseStatType(raw string) (StatType, bool) {
	for _, s := range StatTypes {
		if string(s) == raw {
			return s, true
		}
	}
	return "", false
}

// CompanyStats are the running totals owned by a single company.
type CompanyStats struct {
	TotalDisposals int64 `json:"total_disposals"`
	ImpactTotals
	MaterialStats MaterialQuantities `json:"material_stats"`
}

// Value returns the statistic named by stat.
func (s CompanyStats) Value(stat StatType) (float64, bool) {
	switch stat {
	case StatTotalDisposals:
		return float64(s.TotalDisposals), true
	case StatTotalCO2Saved:
		return s.CO2Saved, true
	case StatTotalWaterSaved:
		return s.WaterSaved, true
	case StatTotalEnergySaved:
		return s.EnergySaved, true
	case StatTotalTreesSaved:
		return s.TreesSaved, true
	case StatTotalLandfillSpaceSaved:
		return s.LandfillSpaceSaved, true
	case StatTotalOilSaved:
		return s.OilSaved, true
	default:
		return 0, false
	}
}

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Address struct {
	Name        string       `json:"name"`
	Street      string       `json:"street"`
	City        string       `json:"city"`
	State       string       `json:"state"`
	PostalCode  string       `json:"postal_code"`
	Country     string       `json:"country"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

func (a Address) Validate() error {
	required := map[string]string{
		"name":        a.Name,
		"street":      a.Street,
		"city":        a.City,
		"state":       a.State,
		"postal_code": a.PostalCode,
		"country":     a.Country,
	}
	for _, field := range []string{"name", "street", "city", "state", "postal_code", "country"} {
		if strings.TrimSpace(required[field]) == "" {
			return errors.New(field + " is required")
		}
	}
	return nil
}

type Weekday string

var Weekdays = []Weekday{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

func ParseWeekday(raw string) (Weekday, bool) {
	for _, d := range Weekdays {
		if strings.EqualFold(string(d), strings.TrimSpace(raw)) {
			return d, true
		}
	}
	return "", false
}

type PickUpSchedule struct {
	ID          uuid.UUID `json:"id"`
	Day         Weekday   `json:"day"`
	Time        string    `json:"time"`
	AddressName string    `json:"address_name"`
}

type DisposalHistoryEntry struct {
	DisposalID uuid.UUID `json:"disposal_id"`
	Date       time.Time `json:"date"`
}

type HeldAchievement struct {
	AchievementID uuid.UUID  `json:"achievement_id"`
	DisposalID    *uuid.UUID `json:"disposal_id,omitempty"`
	EarnedAt      time.Time  `json:"earned_at"`
}

type Company struct {
	ID              uuid.UUID              `json:"id"`
	UserID          uuid.UUID              `json:"user_id"`
	Name            string                 `json:"name"`
	ProfileImage    string                 `json:"profile_image"`
	ContactNumber   string                 `json:"contact_number"`
	Addresses       []Address              `json:"addresses"`
	PickUpSchedule  []PickUpSchedule       `json:"pick_up_schedule"`
	DisposalHistory []DisposalHistoryEntry `json:"disposal_history"`
	Stats           CompanyStats           `json:"stats"`
	Achievements    []HeldAchievement      `json:"achievements"`
}

func (c Company) FindAddress(name string) (Address, bool) {
	for _, addr := range c.Addresses {
		if addr.Name == name {
			return addr, true
		}
	}
	return Address{}, false
}

// HeldSet returns the ids of the achievements the company already holds.
func (c Company) HeldSet() map[uuid.UUID]struct{} {
	held := make(map[uuid.UUID]struct{}, len(c.Achievements))
	for _, a := range c.Achievements {
		held[a.AchievementID] = struct{}{}
	}
	return held
}

// CompanyProfilePatch names exactly one profile field to change.
type CompanyProfilePatch struct {
	Name          *string
	ContactNumber *string
	ProfileImage  *string
}

type PickUpSchedulePatch struct {
	Day         *Weekday
	Time        *string
	AddressName *string
}
