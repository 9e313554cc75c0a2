// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "strings"

// DevVersion is reported by binaries built without version ldflags.
const DevVersion = "dev"

// AppBuildInfo carries the metadata injected into cmd/crmsync with
//
//	-ldflags "-X main.buildVersion=... -X main.buildDate=... -X main.buildCommit=..."
type AppBuildInfo struct {
	buildVersion string
	buildDate    string
	buildCommit  string
}

// NewAppBuildInfo trims and stores the injected values.
func NewAppBuildInfo(buildVersion, buildDate, buildCommit string) AppBuildInfo {
	return AppBuildInfo{
		buildVersion: strings.TrimSpace(buildVersion),
		buildDate:    strings.TrimSpace(buildDate),
		buildCommit:  strings.TrimSpace(buildCommit),
	}
}

// BuildVersion returns the release version, or [DevVersion] when none was
// injected.
func (a AppBuildInfo) BuildVersion() string {
	if a.buildVersion == "" {
		return DevVersion
	}
	return a.buildVersion
}

func (a AppBuildInfo) BuildDate() string {
	return a.buildDate
}

func (a AppBuildInfo) BuildCommit() string {
	return a.buildCommit
}
