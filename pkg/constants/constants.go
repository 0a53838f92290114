// Package constants provides shared constants used throughout the display-set
// engine: DICOM attribute keywords, server and arena defaults, and file
// permissions.
package constants

import "time"

// DICOM attribute keywords read by the engine and the built-in builders.
const (
	SOPInstanceUID    = "SOPInstanceUID"
	SOPClassUID       = "SOPClassUID"
	SeriesInstanceUID = "SeriesInstanceUID"
	StudyInstanceUID  = "StudyInstanceUID"
	Modality          = "Modality"
	SeriesDescription = "SeriesDescription"
	SeriesNumber      = "SeriesNumber"
	InstanceNumber    = "InstanceNumber"

	NumberOfFrames                   = "NumberOfFrames"
	SharedFunctionalGroupsSequence   = "SharedFunctionalGroupsSequence"
	PerFrameFunctionalGroupsSequence = "PerFrameFunctionalGroupsSequence"
	NumberOfSeriesRelatedInstances   = "NumberOfSeriesRelatedInstances"

	Rows                      = "Rows"
	Columns                   = "Columns"
	SamplesPerPixel           = "SamplesPerPixel"
	PixelSpacing              = "PixelSpacing"
	ImagePositionPatient      = "ImagePositionPatient"
	ImageOrientationPatient   = "ImageOrientationPatient"
	PixelMeasuresSequence     = "PixelMeasuresSequence"
	PlaneOrientationSequence  = "PlaneOrientationSequence"
	PlanePositionSequence     = "PlanePositionSequence"
	FrameOfReferenceUID       = "FrameOfReferenceUID"
	FrameNumber               = "frameNumber"
)

// Engine defaults
const (
	// DefaultArenaTTL is how long raw instances of a provisional series are retained
	DefaultArenaTTL = 30 * time.Minute

	// DefaultArenaCleanup is the arena's expired-entry sweep interval
	DefaultArenaCleanup = 5 * time.Minute

	// DefaultMetricsNamespace prefixes every exported metric
	DefaultMetricsNamespace = "displayset"

	// SpacingTolerance is the relative deviation tolerated between slice gaps
	SpacingTolerance = 0.01

	// OrientationTolerance is the absolute tolerance for direction cosines
	OrientationTolerance = 1e-3

	// MaxNumberOfFrames bounds frame synthesis. A larger declared count is
	// not trusted: the per-frame item count wins when present.
	MaxNumberOfFrames = 1 << 16
)

// Server defaults
const (
	// DefaultHost is the default bind address for dsctl serve
	DefaultHost = "localhost"

	// DefaultPort is the default HTTP port for dsctl serve
	DefaultPort = 8088

	// DefaultPathPrefix is the API path prefix
	DefaultPathPrefix = "/api/v1"

	// DefaultReadTimeout bounds reading a request
	DefaultReadTimeout = 10 * time.Second

	// DefaultWriteTimeout bounds writing a response
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout bounds keep-alive connections
	DefaultIdleTimeout = 60 * time.Second

	// ShutdownTimeout bounds graceful shutdown
	ShutdownTimeout = 15 * time.Second

	// WebSocketPingInterval is the interval between websocket pings
	WebSocketPingInterval = 54 * time.Second

	// WebSocketPongWait is how long to wait for a pong
	WebSocketPongWait = 60 * time.Second

	// WebSocketWriteWait is the deadline for a single websocket write
	WebSocketWriteWait = 10 * time.Second

	// EventBufferSize is the per-client outbound event buffer
	EventBufferSize = 256

	// MaxRequestBytes caps an ingestion request body
	MaxRequestBytes = 64 << 20
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)
