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

package store

import (
	"strings"

	"github.com/dmhtech/assetsync/pkg/classify"
	"github.com/dmhtech/assetsync/pkg/models"
)

// AssetIndex is the in-memory lookup structure the planner matches
// against. Name lookups are global; serial lookups are scoped to the CI
// type, since serials are only unique per hardware class in the CMDB.
// Assets whose serial carries a virtualization marker are never indexed
// by serial: hypervisor-minted serials collide across clones.
type AssetIndex struct {
	byName   map[string]models.Asset
	bySerial map[serialKey]models.Asset
}

type serialKey struct {
	serial string
	ciType string
}

// NewAssetIndex builds an index over the given assets. On duplicate
// names or serials the first asset wins, matching the stable-order
// guarantee of the plan.
func NewAssetIndex(assets []models.Asset) *AssetIndex {
	idx := &AssetIndex{
		byName:   make(map[string]models.Asset, len(assets)),
		bySerial: make(map[serialKey]models.Asset, len(assets)),
	}

	for _, asset := range assets {
		if name := strings.ToLower(strings.TrimSpace(asset.Name)); name != "" {
			if _, exists := idx.byName[name]; !exists {
				idx.byName[name] = asset
			}
		}

		serial := strings.ToLower(strings.TrimSpace(asset.SerialNumber))
		if serial == "" || classify.HasVirtualizationMarker(serial) {
			continue
		}

		key := serialKey{serial: serial, ciType: asset.CIType}
		if _, exists := idx.bySerial[key]; !exists {
			idx.bySerial[key] = asset
		}
	}

	return idx
}

// FindByName looks up an asset by case-insensitive name equality.
func (idx *AssetIndex) FindByName(name string) (models.Asset, bool) {
	asset, ok := idx.byName[strings.ToLower(strings.TrimSpace(name))]

	return asset, ok
}

// FindBySerial looks up an asset by case-insensitive serial equality
// within one CI type.
func (idx *AssetIndex) FindBySerial(serial, ciType string) (models.Asset, bool) {
	key := serialKey{
		serial: strings.ToLower(strings.TrimSpace(serial)),
		ciType: ciType,
	}

	asset, ok := idx.bySerial[key]

	return asset, ok
}

// Size returns the number of name-indexed assets.
func (idx *AssetIndex) Size() int {
	return len(idx.byName)
}
