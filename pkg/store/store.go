/*
 * Copyright 2025 DMH Technology Ltd.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package store caches fetched inventories in a local SQLite database so
// interrupted runs can resume without refetching, and records run history.
// The schema is fixed: each table keeps the raw upstream payload as a JSON
// blob next to the extracted key columns the sync process queries on.
package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/dmhtech/assetsync/pkg/logger"
	"github.com/dmhtech/assetsync/pkg/models"
)

// deviceRow caches one source device record.
type deviceRow struct {
	EndpointID string    `gorm:"primaryKey;column:endpoint_id"`
	Name       string    `gorm:"column:name;index"`
	Raw        string    `gorm:"column:raw"`
	FetchedAt  time.Time `gorm:"column:fetched_at"`
}

func (deviceRow) TableName() string { return "devices" }

// assetRow caches one target CMDB asset.
type assetRow struct {
	AssetID      string    `gorm:"primaryKey;column:asset_id"`
	Name         string    `gorm:"column:name;index"`
	SerialNumber string    `gorm:"column:serial_number;index"`
	IPAddress    string    `gorm:"column:ip_address"`
	MacAddress   string    `gorm:"column:mac_address"`
	OS           string    `gorm:"column:os"`
	Manufacturer string    `gorm:"column:manufacturer"`
	CIType       string    `gorm:"column:ci_type;index"`
	Raw          string    `gorm:"column:raw"`
	FetchedAt    time.Time `gorm:"column:fetched_at"`
}

func (assetRow) TableName() string { return "assets" }

// SyncRun is one entry in the run history.
type SyncRun struct {
	RunID      string     `gorm:"primaryKey;column:run_id" json:"run_id"`
	StartedAt  time.Time  `gorm:"column:started_at" json:"started_at"`
	FinishedAt *time.Time `gorm:"column:finished_at" json:"finished_at,omitempty"`
	DryRun     bool       `gorm:"column:dry_run" json:"dry_run"`
	Total      int        `gorm:"column:total" json:"total"`
	Created    int        `gorm:"column:created" json:"created"`
	Updated    int        `gorm:"column:updated" json:"updated"`
	Skipped    int        `gorm:"column:skipped" json:"skipped"`
	Failed     int        `gorm:"column:failed" json:"failed"`
}

func (SyncRun) TableName() string { return "sync_runs" }

// Store is the SQLite-backed inventory cache.
type Store struct {
	db     *gorm.DB
	logger logger.Logger
}

// New opens (creating if needed) the cache database at path and migrates
// the schema. Use ":memory:" for an ephemeral cache.
func New(path string, log logger.Logger) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Discard,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database '%s': %w", path, err)
	}

	if err := db.AutoMigrate(&deviceRow{}, &assetRow{}, &SyncRun{}); err != nil {
		return nil, fmt.Errorf("failed to migrate cache schema: %w", err)
	}

	return &Store{db: db, logger: log}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

// SaveDevice upserts one device record, replacing any previous payload
// for the same endpoint id wholesale.
func (s *Store) SaveDevice(device models.Device) error {
	id := device.ID()
	if id == "" {
		return errDeviceWithoutID
	}

	raw, err := json.Marshal(device)
	if err != nil {
		return fmt.Errorf("failed to encode device %s: %w", id, err)
	}

	row := deviceRow{
		EndpointID: id,
		Name:       device.Name(),
		Raw:        string(raw),
		FetchedAt:  time.Now().UTC(),
	}

	return s.db.Save(&row).Error
}

// SaveDevices upserts a batch of device records in one transaction.
// Records without an endpoint id are skipped, not fatal.
func (s *Store) SaveDevices(devices []models.Device) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, device := range devices {
			id := device.ID()
			if id == "" {
				s.logger.Warn().Msg("Skipping device without endpoint id")
				continue
			}

			raw, err := json.Marshal(device)
			if err != nil {
				return fmt.Errorf("failed to encode device %s: %w", id, err)
			}

			row := deviceRow{
				EndpointID: id,
				Name:       device.Name(),
				Raw:        string(raw),
				FetchedAt:  time.Now().UTC(),
			}

			if err := tx.Save(&row).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// HasDevice reports whether a device with the given endpoint id has been
// fetched before. Used to make interrupted bulk fetches resumable.
func (s *Store) HasDevice(id string) (bool, error) {
	var count int64

	err := s.db.Model(&deviceRow{}).Where("endpoint_id = ?", id).Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// ListDevices returns every cached device, decoded from its raw payload,
// ordered by endpoint id for reproducible planning runs.
func (s *Store) ListDevices() ([]models.Device, error) {
	var rows []deviceRow

	if err := s.db.Order("endpoint_id").Find(&rows).Error; err != nil {
		return nil, err
	}

	devices := make([]models.Device, 0, len(rows))

	for _, row := range rows {
		var device models.Device

		if err := json.Unmarshal([]byte(row.Raw), &device); err != nil {
			s.logger.Warn().
				Str("endpoint_id", row.EndpointID).
				Err(err).
				Msg("Dropping cached device with undecodable payload")

			continue
		}

		devices = append(devices, device)
	}

	return devices, nil
}

// CountDevices returns the number of cached devices.
func (s *Store) CountDevices() (int64, error) {
	var count int64

	err := s.db.Model(&deviceRow{}).Count(&count).Error

	return count, err
}

// ReplaceAssets replaces the cached asset inventory wholesale. Assets
// are always refetched in full, so partial upserts would only preserve
// stale rows.
func (s *Store) ReplaceAssets(assets []models.Asset) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&assetRow{}).Error; err != nil {
			return err
		}

		now := time.Now().UTC()

		for i := range assets {
			a := &assets[i]
			if a.ID == "" {
				s.logger.Warn().Str("name", a.Name).Msg("Skipping asset without id")
				continue
			}

			row := assetRow{
				AssetID:      a.ID,
				Name:         a.Name,
				SerialNumber: a.SerialNumber,
				IPAddress:    a.IPAddress,
				MacAddress:   a.MacAddress,
				OS:           a.OS,
				Manufacturer: a.Manufacturer,
				CIType:       a.CIType,
				Raw:          a.RawJSON,
				FetchedAt:    now,
			}

			if err := tx.Save(&row).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// ListAssets returns every cached asset ordered by asset id.
func (s *Store) ListAssets() ([]models.Asset, error) {
	var rows []assetRow

	if err := s.db.Order("asset_id").Find(&rows).Error; err != nil {
		return nil, err
	}

	assets := make([]models.Asset, 0, len(rows))

	for _, row := range rows {
		assets = append(assets, models.Asset{
			ID:           row.AssetID,
			Name:         row.Name,
			SerialNumber: row.SerialNumber,
			IPAddress:    row.IPAddress,
			MacAddress:   row.MacAddress,
			OS:           row.OS,
			Manufacturer: row.Manufacturer,
			CIType:       row.CIType,
			RawJSON:      row.Raw,
		})
	}

	return assets, nil
}

// CountAssets returns the number of cached assets.
func (s *Store) CountAssets() (int64, error) {
	var count int64

	err := s.db.Model(&assetRow{}).Count(&count).Error

	return count, err
}

// SaveRun upserts a run history entry.
func (s *Store) SaveRun(run *SyncRun) error {
	if run.RunID == "" {
		return errRunWithoutID
	}

	return s.db.Save(run).Error
}

// ListRuns returns up to limit run history entries, newest first.
func (s *Store) ListRuns(limit int) ([]SyncRun, error) {
	var runs []SyncRun

	q := s.db.Order("started_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	err := q.Find(&runs).Error

	return runs, err
}
