package api

import (
	"district-map/internal/config"
	"district-map/internal/district"
	"district-map/internal/events"
)

// SettingsFrom builds handler settings from the loaded configuration
func SettingsFrom(cfg *config.Config) Settings {
	palette := district.Palette(cfg.District.Palette)
	if len(palette) == 0 {
		palette = district.DefaultPalette
	}

	return Settings{
		Columns: events.Columns{
			Key:      cfg.Data.KeyColumn,
			Name:     cfg.Data.NameColumn,
			Year:     cfg.Data.YearColumn,
			Count:    cfg.Data.CountColumn,
			District: cfg.Data.DistrictColumn,
		},
		Years: cfg.Data.Years,
		District: district.Options{
			KeyProperty:  cfg.Data.BoundaryKey,
			NameProperty: cfg.Data.NameColumn,
			Max:          cfg.District.Max,
			Default:      cfg.District.Default,
			Palette:      palette,
		},
		Boundaries:     cfg.Data.Boundaries,
		Stations:       cfg.Data.Stations,
		ExportFilename: cfg.Export.Filename,
		MaxUploadBytes: int64(cfg.Server.MaxUploadMB) << 20,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}
}
