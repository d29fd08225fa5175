package cfg

import (
	"encoding/json"
	"fmt"
	"os"

	"coursarr/internal/domain/keys"
	"coursarr/internal/models"

	"github.com/spf13/viper"
)

// GetSettings materializes the download settings from the resolved viper
// state (flags, environment and config file combined).
func GetSettings() *models.Settings {
	return &models.Settings{
		DownloadDir: viper.GetString(keys.DownloadDir),

		VideoQuality:          viper.GetString(keys.VideoQuality),
		MaxConcurrentFrags:    viper.GetInt(keys.ConcurrentFragments),
		RetryAttempts:         viper.GetInt(keys.RetryAttempts),
		RetryDelaySeconds:     viper.GetInt(keys.RetryDelaySeconds),
		KeepAudioOnly:         viper.GetBool(keys.KeepAudioOnly),
		DownloadSubtitles:     viper.GetBool(keys.DownloadSubtitles),
		DownloadEmbedded:      viper.GetBool(keys.DownloadEmbedded),
		EmbedDomainBlacklist:  viper.GetStringSlice(keys.EmbedBlacklist),
		AllowedAttachmentExts: viper.GetStringSlice(keys.AttachmentExts),
		LessonAccessDelaySecs: viper.GetInt(keys.LessonAccessDelay),
		HTTPTimeoutSecs:       viper.GetInt(keys.HTTPTimeout),
		LicenseTimeoutSecs:    viper.GetInt(keys.LicenseTimeout),
		CookieSource:          viper.GetString(keys.CookieSource),

		CDMDevicePath:   viper.GetString(keys.CDMDevicePath),
		DecryptToolPath: viper.GetString(keys.DecryptTool),
		RemuxToolPath:   viper.GetString(keys.RemuxTool),
		YtDlpPath:       viper.GetString(keys.YtDlpTool),
	}
}

// LoadSelectionFile reads a JSON course selection from disk.
func LoadSelectionFile(path string) (models.Selection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read selection file %q: %w", path, err)
	}

	var selection models.Selection
	if err := json.Unmarshal(data, &selection); err != nil {
		return nil, fmt.Errorf("failed to parse selection file %q: %w", path, err)
	}
	if len(selection) == 0 {
		return nil, fmt.Errorf("selection file %q contains no courses", path)
	}
	return selection, nil
}
