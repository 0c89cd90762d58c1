// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

package mapview

import "strings"

// Camera names.
const (
	CameraSchool   = "School Entrance Camera"
	CameraPalengke = "Palengke Market Camera"
	CameraYouTube  = "YouTube Stream Camera"
)

// LiveCameraID is the marker ID of the camera feeding the latest sample.
const LiveCameraID = "analysis-camera"

// DefaultColor marks locations without an assigned colour.
const DefaultColor = "#dc2626"

var cameraColors = map[string]string{
	CameraSchool:   "#6366F1",
	CameraPalengke: "#D946EF",
	CameraYouTube:  "#14B8A6",
}

// CameraName maps a sample location to its display camera name.
func CameraName(location string) string {
	switch {
	case strings.Contains(location, "School"):
		return CameraSchool
	case strings.Contains(location, "Palengke"):
		return CameraPalengke
	case strings.Contains(location, "Youtube"), strings.Contains(location, "YouTube"):
		return CameraYouTube
	}
	return location + " Camera"
}

// ColorFor returns the marker colour for a display name.
func ColorFor(name string) string {
	if c, ok := cameraColors[name]; ok {
		return c
	}
	return DefaultColor
}
