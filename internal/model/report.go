package model

import "time"

// ImpactReport is everything the downloadable company reports render.
type ImpactReport struct {
	Company      Company
	Disposals    []Disposal
	Achievements []Achievement
	GeneratedAt  time.Time
}

// ImpactRow pairs a display label with one statistic.
type ImpactRow struct {
	Label string
	Unit  string
	Value float64
}

func (s CompanyStats) ImpactRows() []ImpactRow {
	return []ImpactRow{
		{Label: "CO2 saved", Unit: "kg", Value: s.CO2Saved},
		{Label: "Water saved", Unit: "l", Value: s.WaterSaved},
		{Label: "Energy saved", Unit: "kWh", Value: s.EnergySaved},
		{Label: "Trees saved", Unit: "trees", Value: s.TreesSaved},
		{Label: "Landfill space saved", Unit: "m3", Value: s.LandfillSpaceSaved},
		{Label: "Oil saved", Unit: "l", Value: s.OilSaved},
	}
}
