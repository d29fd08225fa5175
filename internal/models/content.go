package models

import "strconv"

// LessonContent is the fetched detail of one lesson, as reported by the
// platform collaborator. Item slices keep the provider's declared order.
type LessonContent struct {
	Description   *Description
	AuxiliaryURLs []*AuxiliaryURL
	Videos        []*VideoItem
	Attachments   []*Attachment
}

// Description is an optional lesson body.
type Description struct {
	// Type is "text", "markdown" or "html".
	Type string
	Text string
}

// IsPlainText reports whether the description should be written as .txt.
func (d *Description) IsPlainText() bool {
	return d.Type == "text" || d.Type == "markdown"
}

// AuxiliaryURL is an extra link attached to a lesson.
type AuxiliaryURL struct {
	Title       string
	Description string
	URL         string
}

// Label returns the display text for the auxiliary links file.
func (a *AuxiliaryURL) Label() string {
	switch {
	case a.Description != "":
		return a.Description
	case a.Title != "":
		return a.Title
	default:
		return "Link"
	}
}

// VideoItem is one video belonging to a lesson.
type VideoItem struct {
	ID    string
	URL   string
	Order int
	Title string

	// RequiresDRM dispatches the item through the license/decryption
	// pipeline instead of a plain stream fetch.
	RequiresDRM bool

	// DRM extras, only meaningful when RequiresDRM is set.
	ManifestURL    string
	LicenseURL     string
	LicenseHeaders map[string]string

	// PublishedAt is the provider's raw date string, parsed leniently
	// for history records.
	PublishedAt string
}

// Key derives the stable checkpoint key for a video.
func (v *VideoItem) Key(defaultIndex int) string {
	switch {
	case v.ID != "":
		return v.ID
	case v.Order != 0:
		return strconv.Itoa(v.Order)
	default:
		return strconv.Itoa(defaultIndex)
	}
}

// Attachment is one downloadable file belonging to a lesson.
type Attachment struct {
	ID          string
	URL         string
	Filename    string
	Order       int
	PublishedAt string
}

// Key derives the stable checkpoint key for an attachment.
func (a *Attachment) Key(defaultIndex int) string {
	switch {
	case a.ID != "":
		return a.ID
	case a.Order != 0:
		return strconv.Itoa(a.Order)
	default:
		return strconv.Itoa(defaultIndex)
	}
}
