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

// Package mapper transforms raw monitoring-platform device records into the
// flat field sets the target CMDB accepts. The mapping is a declarative
// table of (target field, source path, transform); the interpreter walks
// the table and omits any field whose source value is absent or rejected
// by its transform. Mapping never fails.
package mapper

import (
	"net"
	"strings"

	"github.com/dmhtech/assetsync/pkg/classify"
	"github.com/dmhtech/assetsync/pkg/models"
)

// Target field names recognized by the CMDB Assets API.
const (
	FieldName          = "name"
	FieldSerialNumber  = "serial_number"
	FieldOS            = "os"
	FieldManufacturer  = "manufacturer"
	FieldIPAddress     = "ip_address"
	FieldMacAddress    = "mac_address"
	FieldProcessorName = "processor_name"
)

// fieldRule maps one target field to a source path and a named transform.
// List transforms receive the object list at the path; scalar transforms
// receive its string value.
type fieldRule struct {
	target    string
	path      string
	transform string
}

var fieldRules = []fieldRule{
	{FieldName, "friendlyName", transformIdentity},
	{FieldSerialNumber, "system.serialNumber", transformCleanSerial},
	{FieldOS, "os.product", transformIdentity},
	{FieldManufacturer, "bios.manufacturer", transformCleanManufacturer},
	{FieldIPAddress, "networks", transformFirstIPv4},
	{FieldMacAddress, "networks", transformFirstMac},
	{FieldProcessorName, "processor.product", transformIdentity},
}

const (
	transformIdentity          = "identity"
	transformCleanSerial       = "clean-serial"
	transformCleanManufacturer = "clean-manufacturer"
	transformFirstIPv4         = "extract-first-valid-ipv4"
	transformFirstMac          = "extract-first-mac"
)

// A transform cleans one extracted value. Returning ok=false omits the
// field from the output entirely.
type scalarTransform func(value string) (cleaned string, ok bool)

type listTransform func(entries []map[string]interface{}) (value string, ok bool)

var scalarTransforms = map[string]scalarTransform{
	transformIdentity:          identity,
	transformCleanSerial:       CleanSerial,
	transformCleanManufacturer: CleanManufacturer,
}

var listTransforms = map[string]listTransform{
	transformFirstIPv4: firstValidIPv4,
	transformFirstMac:  firstMac,
}

// manufacturerAliases canonicalizes the common vendor-string variants.
// Unrecognized vendors pass through unchanged.
var manufacturerAliases = map[string]string{
	"LENOVO":          "Lenovo",
	"Hewlett-Packard": "HP",
	"Dell Inc.":       "Dell",
}

// Map extracts, cleans, and flattens one device into a target-shaped field
// set tagged with its category. Fields with absent or invalid source
// values are omitted, never written empty. The category tag is always
// present, even for an empty record.
func Map(device models.Device) models.FieldSet {
	fields := make(map[string]string)

	for _, rule := range fieldRules {
		if lt, ok := listTransforms[rule.transform]; ok {
			if value, ok := lt(device.ListAt(rule.path)); ok {
				fields[rule.target] = value
			}

			continue
		}

		st, ok := scalarTransforms[rule.transform]
		if !ok {
			continue
		}

		if value, ok := st(device.StringAt(rule.path)); ok {
			fields[rule.target] = value
		}
	}

	return models.FieldSet{
		Category: classify.Classify(device),
		Fields:   fields,
	}
}

func identity(value string) (string, bool) {
	if value == "" {
		return "", false
	}

	return value, true
}

// CleanSerial trims the serial and suppresses hypervisor-synthesized
// values: VM "serials" are UUIDs minted at provisioning time, not asset
// tags, and must never reach the CMDB or the matcher.
func CleanSerial(value string) (string, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", false
	}

	if classify.HasVirtualizationMarker(trimmed) {
		return "", false
	}

	return trimmed, true
}

// CleanManufacturer canonicalizes vendor strings and suppresses
// virtualization vendors.
func CleanManufacturer(value string) (string, bool) {
	if value == "" || classify.HasVirtualizationMarker(value) {
		return "", false
	}

	if alias, ok := manufacturerAliases[value]; ok {
		return alias, true
	}

	return value, true
}

// firstValidIPv4 returns the first interface address that is routable for
// inventory purposes: not unassigned (0.0.0.0), not loopback, not APIPA
// link-local.
func firstValidIPv4(entries []map[string]interface{}) (string, bool) {
	for _, entry := range entries {
		addr, _ := entry["ipv4"].(string)
		if usableIPv4(addr) {
			return addr, true
		}
	}

	return "", false
}

func usableIPv4(addr string) bool {
	if addr == "" || addr == "0.0.0.0" {
		return false
	}

	ip := net.ParseIP(addr)
	if ip == nil {
		return false
	}

	if ip.IsLoopback() || ip.IsLinkLocalUnicast() {
		return false
	}

	return true
}

// firstMac returns the MAC address of the first interface that reports
// one. The CMDB rejects concatenated multi-MAC values, so only the first
// is taken.
func firstMac(entries []map[string]interface{}) (string, bool) {
	for _, entry := range entries {
		if mac, _ := entry["macAddress"].(string); mac != "" {
			return mac, true
		}
	}

	return "", false
}
