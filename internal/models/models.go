// Package models mirrors the tables maintained by the external data loader.
// Column names and types are fixed by that loader's schema and must not be
// renamed here.
package models

import "time"

// ImageState is the lifecycle state of a published image.
type ImageState string

const (
	ImageStateActive     ImageState = "active"
	ImageStateInactive   ImageState = "inactive"
	ImageStateDeprecated ImageState = "deprecated"
	ImageStateDeleted    ImageState = "deleted"
)

// States returns the lifecycle states in their published listing order.
func States() []ImageState {
	return []ImageState{
		ImageStateActive,
		ImageStateDeleted,
		ImageStateDeprecated,
		ImageStateInactive,
	}
}

// ValidState reports whether s names a known lifecycle state.
func ValidState(s string) bool {
	switch ImageState(s) {
	case ImageStateActive, ImageStateInactive, ImageStateDeprecated, ImageStateDeleted:
		return true
	default:
		return false
	}
}

// ImageBase carries the lifecycle columns shared by every provider's
// images table.
type ImageBase struct {
	State           ImageState `gorm:"column:state;type:image_state;not null"`
	ReplacementName string     `gorm:"column:replacementname;type:varchar(255)"`
	PublishedOn     time.Time  `gorm:"column:publishedon;type:date;not null"`
	DeprecatedOn    *time.Time `gorm:"column:deprecatedon;type:date"`
	DeletedOn       *time.Time `gorm:"column:deletedon;type:date"`
	ChangeInfo      string     `gorm:"column:changeinfo;type:varchar(255)"`
}

// AmazonImage is a row of the amazonimages table.
type AmazonImage struct {
	ImageBase     `gorm:"embedded"`
	Name          string `gorm:"column:name;type:varchar(255);not null"`
	ID            string `gorm:"column:id;type:varchar(100);primaryKey"`
	ReplacementID string `gorm:"column:replacementid;type:varchar(100)"`
	Region        string `gorm:"column:region;type:varchar(100);not null"`
}

func (AmazonImage) TableName() string { return "amazonimages" }

// AlibabaImage is a row of the alibabaimages table.
type AlibabaImage struct {
	ImageBase     `gorm:"embedded"`
	Name          string `gorm:"column:name;type:varchar(255);not null"`
	ID            string `gorm:"column:id;type:varchar(100);primaryKey"`
	ReplacementID string `gorm:"column:replacementid;type:varchar(100)"`
	Region        string `gorm:"column:region;type:varchar(100);not null"`
}

func (AlibabaImage) TableName() string { return "alibabaimages" }

// GoogleImage is a row of the googleimages table. Google images are
// published per project rather than per region.
type GoogleImage struct {
	ImageBase `gorm:"embedded"`
	Name      string `gorm:"column:name;type:varchar(255);primaryKey"`
	Project   string `gorm:"column:project;type:varchar(50);not null"`
}

func (GoogleImage) TableName() string { return "googleimages" }

// MicrosoftImage is a row of the microsoftimages table. Azure images are
// keyed by environment; regions resolve through MicrosoftRegionMap.
type MicrosoftImage struct {
	ImageBase   `gorm:"embedded"`
	ID          int    `gorm:"column:id;primaryKey"`
	Name        string `gorm:"column:name;type:varchar(255);not null"`
	Environment string `gorm:"column:environment;type:varchar(50);not null"`
	URN         string `gorm:"column:urn;type:varchar(100)"`
}

func (MicrosoftImage) TableName() string { return "microsoftimages" }

// OracleImage is a row of the oracleimages table. Oracle images carry no
// region column.
type OracleImage struct {
	ImageBase     `gorm:"embedded"`
	Name          string `gorm:"column:name;type:varchar(255);not null"`
	ID            string `gorm:"column:id;type:varchar(100);primaryKey"`
	ReplacementID string `gorm:"column:replacementid;type:varchar(100)"`
}

func (OracleImage) TableName() string { return "oracleimages" }

// ServerBase carries the columns shared by every server table.
type ServerBase struct {
	ID     int    `gorm:"column:id;primaryKey;autoIncrement"`
	Shape  string `gorm:"column:shape;type:varchar(10)"`
	IP     string `gorm:"column:ip;type:inet"`
	Region string `gorm:"column:region;type:varchar(100);not null"`
	IPv6   string `gorm:"column:ipv6;type:inet"`
}

// UpdateServerBase adds the name column carried only by update servers.
type UpdateServerBase struct {
	ServerBase `gorm:"embedded"`
	Name       string `gorm:"column:name;type:varchar(100);not null"`
}

// AmazonRegionServer is a row of the amazonregionservers table.
type AmazonRegionServer struct {
	ServerBase `gorm:"embedded"`
}

func (AmazonRegionServer) TableName() string { return "amazonregionservers" }

// AmazonUpdateServer is a row of the amazonupdateservers table.
type AmazonUpdateServer struct {
	UpdateServerBase `gorm:"embedded"`
}

func (AmazonUpdateServer) TableName() string { return "amazonupdateservers" }

// GoogleRegionServer is a row of the googleregionservers table.
type GoogleRegionServer struct {
	ServerBase `gorm:"embedded"`
}

func (GoogleRegionServer) TableName() string { return "googleregionservers" }

// GoogleUpdateServer is a row of the googleupdateservers table.
type GoogleUpdateServer struct {
	UpdateServerBase `gorm:"embedded"`
}

func (GoogleUpdateServer) TableName() string { return "googleupdateservers" }

// MicrosoftRegionServer is a row of the microsoftregionservers table.
type MicrosoftRegionServer struct {
	ServerBase `gorm:"embedded"`
}

func (MicrosoftRegionServer) TableName() string { return "microsoftregionservers" }

// MicrosoftUpdateServer is a row of the microsoftupdateservers table.
type MicrosoftUpdateServer struct {
	UpdateServerBase `gorm:"embedded"`
}

func (MicrosoftUpdateServer) TableName() string { return "microsoftupdateservers" }

// MicrosoftRegionMap maps an Azure environment to one of its region
// spellings. Rows sharing a canonical name form an equivalence class.
type MicrosoftRegionMap struct {
	Environment   string `gorm:"column:environment;type:varchar(50);primaryKey"`
	Region        string `gorm:"column:region;type:varchar(100);primaryKey"`
	CanonicalName string `gorm:"column:canonicalname;type:varchar(100);primaryKey"`
}

func (MicrosoftRegionMap) TableName() string { return "microsoftregionmap" }

// DataVersion is a row of the versions table: one monotonically increasing
// version number per logical table, written by the data loader.
type DataVersion struct {
	Table   string `gorm:"column:tablename;type:varchar(100);primaryKey"`
	Version string `gorm:"column:version;type:numeric;not null"`
}

func (DataVersion) TableName() string { return "versions" }
