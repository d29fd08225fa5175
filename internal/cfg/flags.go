package cfg

import (
	"coursarr/internal/domain/keys"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// initProgramFlags sets top-level program flags.
func initProgramFlags(rootCmd *cobra.Command) error {

	rootCmd.PersistentFlags().String(keys.DownloadDir, ".", "Directory downloads are written into")
	if err := viper.BindPFlag(keys.DownloadDir, rootCmd.PersistentFlags().Lookup(keys.DownloadDir)); err != nil {
		return err
	}

	rootCmd.PersistentFlags().String(keys.PlatformName, "", "Name of the registered content platform")
	if err := viper.BindPFlag(keys.PlatformName, rootCmd.PersistentFlags().Lookup(keys.PlatformName)); err != nil {
		return err
	}

	rootCmd.PersistentFlags().String(keys.SelectionFile, "", "Path to the JSON course selection file")
	if err := viper.BindPFlag(keys.SelectionFile, rootCmd.PersistentFlags().Lookup(keys.SelectionFile)); err != nil {
		return err
	}

	rootCmd.PersistentFlags().String(keys.ConfigFile, "", "Path to a config file (JSON, TOML, YAML...)")
	if err := viper.BindPFlag(keys.ConfigFile, rootCmd.PersistentFlags().Lookup(keys.ConfigFile)); err != nil {
		return err
	}

	rootCmd.PersistentFlags().Int(keys.DebugLevel, 0, "Level of debugging (0 - 3)")
	if err := viper.BindPFlag(keys.DebugLevel, rootCmd.PersistentFlags().Lookup(keys.DebugLevel)); err != nil {
		return err
	}

	return nil
}

// initDownloadFlags sets flags related to download behaviour.
func initDownloadFlags(rootCmd *cobra.Command) error {

	rootCmd.PersistentFlags().String(keys.VideoQuality, "", "Preferred video quality/format selector")
	if err := viper.BindPFlag(keys.VideoQuality, rootCmd.PersistentFlags().Lookup(keys.VideoQuality)); err != nil {
		return err
	}

	rootCmd.PersistentFlags().Int(keys.ConcurrentFragments, 4, "Number of stream fragments to download concurrently")
	if err := viper.BindPFlag(keys.ConcurrentFragments, rootCmd.PersistentFlags().Lookup(keys.ConcurrentFragments)); err != nil {
		return err
	}

	rootCmd.PersistentFlags().Int(keys.RetryAttempts, 3, "Number of retries for transient download failures")
	if err := viper.BindPFlag(keys.RetryAttempts, rootCmd.PersistentFlags().Lookup(keys.RetryAttempts)); err != nil {
		return err
	}

	rootCmd.PersistentFlags().Int(keys.RetryDelaySeconds, 5, "Fixed delay in seconds between retry attempts")
	if err := viper.BindPFlag(keys.RetryDelaySeconds, rootCmd.PersistentFlags().Lookup(keys.RetryDelaySeconds)); err != nil {
		return err
	}

	rootCmd.PersistentFlags().Bool(keys.KeepAudioOnly, false, "Extract audio instead of downloading full video")
	if err := viper.BindPFlag(keys.KeepAudioOnly, rootCmd.PersistentFlags().Lookup(keys.KeepAudioOnly)); err != nil {
		return err
	}

	rootCmd.PersistentFlags().Bool(keys.DownloadSubtitles, false, "Download subtitles alongside videos")
	if err := viper.BindPFlag(keys.DownloadSubtitles, rootCmd.PersistentFlags().Lookup(keys.DownloadSubtitles)); err != nil {
		return err
	}

	rootCmd.PersistentFlags().Bool(keys.DownloadEmbedded, false, "Download media embedded in lesson descriptions")
	if err := viper.BindPFlag(keys.DownloadEmbedded, rootCmd.PersistentFlags().Lookup(keys.DownloadEmbedded)); err != nil {
		return err
	}

	rootCmd.PersistentFlags().StringSlice(keys.EmbedBlacklist, nil, "Domains to skip when downloading embedded media")
	if err := viper.BindPFlag(keys.EmbedBlacklist, rootCmd.PersistentFlags().Lookup(keys.EmbedBlacklist)); err != nil {
		return err
	}

	rootCmd.PersistentFlags().StringSlice(keys.AttachmentExts, nil, "Attachment extensions to download (empty downloads all)")
	if err := viper.BindPFlag(keys.AttachmentExts, rootCmd.PersistentFlags().Lookup(keys.AttachmentExts)); err != nil {
		return err
	}

	rootCmd.PersistentFlags().Int(keys.LessonAccessDelay, 0, "Pause in seconds between lesson fetches")
	if err := viper.BindPFlag(keys.LessonAccessDelay, rootCmd.PersistentFlags().Lookup(keys.LessonAccessDelay)); err != nil {
		return err
	}

	rootCmd.PersistentFlags().Int(keys.HTTPTimeout, 30, "Timeout in seconds for ordinary HTTP operations")
	if err := viper.BindPFlag(keys.HTTPTimeout, rootCmd.PersistentFlags().Lookup(keys.HTTPTimeout)); err != nil {
		return err
	}

	rootCmd.PersistentFlags().Int(keys.LicenseTimeout, 60, "Timeout in seconds for license/key exchanges")
	if err := viper.BindPFlag(keys.LicenseTimeout, rootCmd.PersistentFlags().Lookup(keys.LicenseTimeout)); err != nil {
		return err
	}

	rootCmd.PersistentFlags().String(keys.CookieSource, "", "Browser to import session cookies from (e.g. firefox)")
	if err := viper.BindPFlag(keys.CookieSource, rootCmd.PersistentFlags().Lookup(keys.CookieSource)); err != nil {
		return err
	}

	return nil
}

// initToolFlags sets flags pointing at external tools and the CDM device.
func initToolFlags(rootCmd *cobra.Command) error {

	rootCmd.PersistentFlags().String(keys.CDMDevicePath, "", "Path to a CDM device file or a directory holding one")
	if err := viper.BindPFlag(keys.CDMDevicePath, rootCmd.PersistentFlags().Lookup(keys.CDMDevicePath)); err != nil {
		return err
	}

	rootCmd.PersistentFlags().String(keys.DecryptTool, "", "Decrypt tool binary (defaults to mp4decrypt on PATH)")
	if err := viper.BindPFlag(keys.DecryptTool, rootCmd.PersistentFlags().Lookup(keys.DecryptTool)); err != nil {
		return err
	}

	rootCmd.PersistentFlags().String(keys.RemuxTool, "", "Remux tool binary (defaults to ffmpeg on PATH)")
	if err := viper.BindPFlag(keys.RemuxTool, rootCmd.PersistentFlags().Lookup(keys.RemuxTool)); err != nil {
		return err
	}

	rootCmd.PersistentFlags().String(keys.YtDlpTool, "", "Stream downloader binary (defaults to yt-dlp on PATH)")
	if err := viper.BindPFlag(keys.YtDlpTool, rootCmd.PersistentFlags().Lookup(keys.YtDlpTool)); err != nil {
		return err
	}

	return nil
}
