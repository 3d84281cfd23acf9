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

// Package classify resolves raw monitoring-platform device records to asset
// categories. Classification is total: missing or malformed attributes
// degrade to a default rather than failing.
package classify

import (
	"regexp"
	"strings"

	"github.com/dmhtech/assetsync/pkg/models"
)

// The monitoring agent reports three endpoint types. "Desktop" really means
// "endpoint with an agent installed" and covers laptops too; model-name
// inspection separates the two.
const (
	endpointTypeDesktop = "Desktop"
	endpointTypeServer  = "Server"
	endpointTypeNetwork = "NetworkDevice"
)

// desktopChassisPatterns match model names of tower and SFF product lines.
// A "Desktop" endpoint whose model matches none of these is classified as
// a laptop: the agent mislabels nearly all portable hardware as Desktop,
// so the absence of a tower-chassis signature is itself the laptop signal.
var desktopChassisPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)OptiPlex`),
	regexp.MustCompile(`(?i)ThinkCentre`),
	regexp.MustCompile(`(?i)ProDesk`),
	regexp.MustCompile(`(?i)EliteDesk`),
	regexp.MustCompile(`(?i)Precision Tower`),
	regexp.MustCompile(`(?i)^Virtual Machine$`),
}

// virtualizationMarkers identify hypervisor-provided hardware identity
// strings. Checked case-insensitively against serial, BIOS manufacturer,
// and model.
var virtualizationMarkers = []string{
	"vmware",
	"virtual",
	"hyper-v",
	"qemu",
	"virtualbox",
	"xen",
}

// rule pairs a predicate with the category it resolves to. Rules are
// evaluated in order; the first hit wins.
type rule struct {
	matches  func(models.Device) bool
	category models.Category
}

var rules = []rule{
	{isNetworkDevice, models.CategoryNetworkDevice},
	{isDesktopChassis, models.CategoryDesktop},
	{isAgentEndpoint, models.CategoryLaptop},
	{isVirtualServer, models.CategoryVirtualServer},
	{isServer, models.CategoryPhysicalServer},
}

// Classify resolves a device to exactly one category. It never fails:
// devices with an unrecognized or missing endpoint type are Unknown.
func Classify(device models.Device) models.Category {
	for _, r := range rules {
		if r.matches(device) {
			return r.category
		}
	}

	return models.CategoryUnknown
}

func isNetworkDevice(device models.Device) bool {
	return device.EndpointType() == endpointTypeNetwork
}

func isDesktopChassis(device models.Device) bool {
	if device.EndpointType() != endpointTypeDesktop {
		return false
	}

	model := device.StringAt("system.model")

	for _, pattern := range desktopChassisPatterns {
		if pattern.MatchString(model) {
			return true
		}
	}

	return false
}

// isAgentEndpoint catches every remaining "Desktop" endpoint. Ordered after
// isDesktopChassis, so matching here means no tower signature was found.
func isAgentEndpoint(device models.Device) bool {
	return device.EndpointType() == endpointTypeDesktop
}

func isVirtualServer(device models.Device) bool {
	if device.EndpointType() != endpointTypeServer {
		return false
	}

	return HasVirtualizationMarker(
		device.StringAt("system.serialNumber"),
		device.StringAt("bios.manufacturer"),
		device.StringAt("system.model"),
	)
}

func isServer(device models.Device) bool {
	return device.EndpointType() == endpointTypeServer
}

// HasVirtualizationMarker reports whether any of the given values contains
// a known hypervisor marker, case-insensitively. Empty values never match.
func HasVirtualizationMarker(values ...string) bool {
	for _, value := range values {
		if value == "" {
			continue
		}

		lowered := strings.ToLower(value)

		for _, marker := range virtualizationMarkers {
			if strings.Contains(lowered, marker) {
				return true
			}
		}
	}

	return false
}
