// Package consts holds shared constants for checkpointing, DRM parsing and file naming.
package consts

// Checkpoint categories. These are the JSON keys inside a lesson entry,
// do not alter.
const (
	CategoryDescription   = "description"
	CategoryAuxiliaryURLs = "auxiliary_urls"
	CategoryVideos        = "videos"
	CategoryAttachments   = "attachments"
)

// Fallback identity keys for selection nodes lacking id, order and title.
const (
	UnknownModuleKey = "unknown-module"
	UnknownLessonKey = "unknown-lesson"
)

// Default file names written into a lesson directory.
const (
	DescriptionTxtFile  = "Description.txt"
	DescriptionHTMLFile = "Description.html"
	AuxiliaryLinksFile  = "Extra Links.txt"
)

// WidevineSystemID is the fixed 16-byte protection system identifier
// scanned for inside initialization segments.
var WidevineSystemID = []byte{
	0xed, 0xef, 0x8b, 0xa9, 0x79, 0xd6, 0x4a, 0xce,
	0xa3, 0xc8, 0x27, 0xdc, 0xd5, 0x1d, 0x21, 0xed,
}

// PSSHBoxMarker is the fourcc of a protection header box.
const PSSHBoxMarker = "pssh"

// CDMDeviceExt is the file extension of a CDM device/key file.
const CDMDeviceExt = ".wvd"

// Name length limits applied to path components.
const (
	MaxCourseNameLen = 40
	MaxModuleNameLen = 60
	MaxLessonNameLen = 60
	MaxFileNameLen   = 80
)

// LogFileName is the structured log file written into the download directory.
const LogFileName = "coursarr.log"
