package domain

import (
	"context"
	"time"
)

// Stats is the admin landing page summary. Counts are computed live;
// none of this is cached or denormalized.
type Stats struct {
	UnbilledRecords      int64      `json:"unbilled_records"`
	UnbilledOlderThan30d int64      `json:"unbilled_older_than_30d"`
	RecordsThisMonth     int64      `json:"records_this_month"`
	ActiveOrganizations  int64      `json:"active_organizations"`
	SuspendedOrgs        int64      `json:"suspended_organizations"`
	LastExportAt         *time.Time `json:"last_export_at,omitempty"`
	LastExportFileName   string     `json:"last_export_file_name,omitempty"`
	LastExportRecords    int        `json:"last_export_records,omitempty"`
	ExportedThisMonth    bool       `json:"exported_this_month"`
}

type Service interface {
	Stats(ctx context.Context) (*Stats, error)
}
