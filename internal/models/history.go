package models

import "time"

// HistoryRecord is one leaf-item outcome row in the download history ledger.
// The (Platform, CourseID, ModuleKey, LessonKey, Category, ItemKey) tuple is
// the stable task identity.
type HistoryRecord struct {
	ID        int64
	Platform  string
	CourseID  string
	ModuleKey string
	LessonKey string
	Category  string
	ItemKey   string
	Title     string
	Path      string
	Success   bool

	PublishedAt time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// LicenseResult holds the outcome of a DRM key exchange.
type LicenseResult struct {
	// PSSH is the base64 protection header the keys were obtained for.
	PSSH string
	Keys []KIDKey
}

// KIDKey is one key-identifier / content-key pair, both lowercase hex.
type KIDKey struct {
	KID string
	Key string
}

// Arg renders the pair as the repeated decrypt tool argument value.
func (k KIDKey) Arg() string {
	return k.KID + ":" + k.Key
}
