package app

import (
	"context"
	"fmt"
	"os"

	"coursarr/internal/contracts"
	"coursarr/internal/utils/logging"
)

// VerifyReport summarizes a ledger verification pass.
type VerifyReport struct {
	Checked int
	Missing []string
}

// VerifyHistory checks that every file the ledger records as successfully
// downloaded still exists and is non-empty. Rows without a path (filtered
// attachments, marker entries) are skipped.
func VerifyHistory(ctx context.Context, store contracts.HistoryStore, platform string) (*VerifyReport, error) {
	records, err := store.ListSuccesses(ctx, platform)
	if err != nil {
		return nil, fmt.Errorf("failed listing download history: %w", err)
	}

	report := &VerifyReport{}
	for _, rec := range records {
		if rec.Path == "" {
			continue
		}
		report.Checked++

		info, err := os.Stat(rec.Path)
		switch {
		case err != nil:
			logging.W("Missing: %s (%s)", rec.Path, rec.Title)
			report.Missing = append(report.Missing, rec.Path)
		case info.Size() == 0:
			logging.W("Empty: %s (%s)", rec.Path, rec.Title)
			report.Missing = append(report.Missing, rec.Path)
		}
	}

	if len(report.Missing) == 0 {
		logging.S(0, "Verified %d downloaded file(s), all present", report.Checked)
	} else {
		logging.W("Verified %d file(s), %d missing or empty", report.Checked, len(report.Missing))
	}
	return report, nil
}
