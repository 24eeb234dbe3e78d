package repository

import (
	"database/sql/driver"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"civiq/internal/domain/entity"
)

// OpenSQL connects to postgres or sqlite and migrates the schema.
func OpenSQL(driverName, dsn string, debug bool) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driverName {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", driverName)
	}

	logLevel := gormlogger.Silent
	if debug {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormlogger.Default.LogMode(logLevel)})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driverName, err)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&reportRow{}, &indexRow{}, &notificationRow{}, &badgeRow{}, &profileRow{}); err != nil {
		return fmt.Errorf("auto migrate failed: %w", err)
	}
	return nil
}

type reportRow struct {
	ID             string `gorm:"primaryKey;size:64"`
	OwnerID        string `gorm:"size:128;not null;index"`
	IssueType      string `gorm:"size:64;not null"`
	Description    string `gorm:"not null"`
	MediaURL       string `gorm:"size:1024"`
	Lat            *float64
	Lon            *float64
	Status         string    `gorm:"size:16;not null;index"`
	SubmittedAt    time.Time `gorm:"not null;index"`
	InProgressAt   *time.Time
	ResolvedAt     *time.Time
	DuplicateCount int `gorm:"not null;default:1"`
}

func (reportRow) TableName() string { return "reports" }

func newReportRow(r *entity.Report) *reportRow {
	return &reportRow{
		ID:             r.ID,
		OwnerID:        r.OwnerID,
		IssueType:      r.IssueType,
		Description:    r.Description,
		MediaURL:       r.MediaURL,
		Lat:            r.Lat,
		Lon:            r.Lon,
		Status:         string(r.Status),
		SubmittedAt:    r.SubmittedAt,
		InProgressAt:   r.InProgressAt,
		ResolvedAt:     r.ResolvedAt,
		DuplicateCount: r.DuplicateCount,
	}
}

func (row *reportRow) toEntity() *entity.Report {
	return &entity.Report{
		ID:             row.ID,
		OwnerID:        row.OwnerID,
		IssueType:      row.IssueType,
		Description:    row.Description,
		MediaURL:       row.MediaURL,
		Lat:            row.Lat,
		Lon:            row.Lon,
		Status:         entity.ReportStatus(row.Status),
		SubmittedAt:    row.SubmittedAt,
		InProgressAt:   row.InProgressAt,
		ResolvedAt:     row.ResolvedAt,
		DuplicateCount: row.DuplicateCount,
	}
}

type indexRow struct {
	ReportID  string       `gorm:"primaryKey;size:64"`
	IssueType string       `gorm:"size:64;not null;index:idx_index_lookup,priority:1"`
	CellToken string       `gorm:"size:32;not null;index:idx_index_lookup,priority:2"`
	Lat       float64      `gorm:"not null"`
	Lon       float64      `gorm:"not null"`
	Embedding vectorColumn `gorm:"not null"`
	CreatedAt time.Time
}

func (indexRow) TableName() string { return "report_index" }

type notificationRow struct {
	ID          string    `gorm:"primaryKey;size:64"`
	RecipientID string    `gorm:"size:128;not null;index:idx_recipient_read,priority:1"`
	ReportID    *string   `gorm:"size:64"`
	Content     string    `gorm:"not null"`
	Kind        string    `gorm:"size:32;not null"`
	IsRead      bool      `gorm:"not null;default:false;index:idx_recipient_read,priority:2"`
	CreatedAt   time.Time `gorm:"not null;index"`
}

func (notificationRow) TableName() string { return "notifications" }

func newNotificationRow(n *entity.Notification) *notificationRow {
	return &notificationRow{
		ID:          n.ID,
		RecipientID: n.RecipientID,
		ReportID:    n.ReportID,
		Content:     n.Content,
		Kind:        string(n.Kind),
		IsRead:      n.IsRead,
		CreatedAt:   n.CreatedAt,
	}
}

func (row *notificationRow) toEntity() *entity.Notification {
	return &entity.Notification{
		ID:          row.ID,
		RecipientID: row.RecipientID,
		ReportID:    row.ReportID,
		Content:     row.Content,
		Kind:        entity.NotificationKind(row.Kind),
		IsRead:      row.IsRead,
		CreatedAt:   row.CreatedAt,
	}
}

type badgeRow struct {
	ID          string    `gorm:"primaryKey;size:64"`
	OwnerID     string    `gorm:"size:128;not null;index"`
	ReportID    string    `gorm:"size:64;not null;uniqueIndex"`
	Title       string    `gorm:"size:120;not null"`
	Description string    `gorm:"not null"`
	CreatedAt   time.Time `gorm:"not null"`
}

func (badgeRow) TableName() string { return "badges" }

type profileRow struct {
	ID        string `gorm:"primaryKey;size:128"`
	Role      string `gorm:"size:16;not null;default:'citizen';index"`
	Email     string `gorm:"size:255"`
	Phone     string `gorm:"size:32"`
	FullName  string `gorm:"size:120"`
	DOB       string `gorm:"size:10"`
	City      string `gorm:"size:80"`
	Area      string `gorm:"size:120"`
	Pincode   string `gorm:"size:10"`
	UpdatedAt time.Time
}

func (profileRow) TableName() string { return "profiles" }

// vectorColumn stores an embedding as little-endian float32 bytes.
type vectorColumn []float32

func (v vectorColumn) Value() (driver.Value, error) {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(f))
	}
	return buf, nil
}

func (v *vectorColumn) Scan(src interface{}) error {
	raw, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("vectorColumn: unsupported scan type %T", src)
	}
	if len(raw)%4 != 0 {
		return fmt.Errorf("vectorColumn: length %d is not a multiple of 4", len(raw))
	}
	out := make([]float32, len(raw)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[4*i:]))
	}
	*v = out
	return nil
}

func (vectorColumn) GormDataType() string {
	return "bytes"
}
