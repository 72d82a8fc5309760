package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User status codes as stored by the rest of the platform.
const (
	StatusInactive = "0"
	StatusActive   = "1"
	StatusDeleted  = "2"
)

// MaxLoginEvents bounds a LoginHistory. A full ledger is cleared before the next event is added.
const MaxLoginEvents = 100

type IPAddress struct {
	SystemIP  *string `bson:"system_ip" json:"system_ip"`
	BrowserIP *string `bson:"browser_ip" json:"browser_ip"`
}

type User struct {
	ID             string     `gorm:"primaryKey;size:36" bson:"_id" json:"id"`
	Name           string     `gorm:"size:100;not null" bson:"name" json:"name"`
	Email          string     `gorm:"size:100;uniqueIndex;not null" bson:"email" json:"email"`
	PasswordHash   string     `gorm:"column:password;size:100" bson:"password" json:"-"`
	Verified       bool       `gorm:"not null;default:false" bson:"verified" json:"verified"`
	VerifiedAt     *time.Time `bson:"verifiedAt" json:"verifiedAt"`
	AuthType       string     `gorm:"size:100" bson:"authType,omitempty" json:"authType,omitempty"`
	Token          *string    `bson:"token" json:"token,omitempty"`
	TokenExpiresAt *time.Time `bson:"tokenExpiresAt" json:"tokenExpiresAt"`
	Role           string     `gorm:"size:16;not null;default:user;index" bson:"role" json:"role"`
	Status         string     `gorm:"size:1;not null;default:0;index" bson:"status" json:"status"`
	LoginHistoryID *string    `gorm:"size:36" bson:"loginHistory,omitempty" json:"loginHistory,omitempty"`
	LastLogin      *time.Time `gorm:"index" bson:"last_login" json:"last_login"`
	IPAddress      IPAddress  `gorm:"embedded;embeddedPrefix:ip_" bson:"ip_address" json:"ip_address"`
	LastLoginIP    *string    `gorm:"size:191" bson:"lastLoginIp,omitempty" json:"lastLoginIp,omitempty"`
	CreatedAt      time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time  `bson:"updatedAt" json:"updatedAt"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// LoginEvent is one entry of a user's login ledger.
type LoginEvent struct {
	IPAddress IPAddress `bson:"ip_address" json:"ip_address"`
	LastLogin time.Time `bson:"last_login" json:"last_login"`
}

type LoginHistory struct {
	ID           string                          `gorm:"primaryKey;size:36" bson:"_id" json:"id"`
	UserID       string                          `gorm:"size:36;uniqueIndex;not null" bson:"userId" json:"userId"`
	LoginDetails datatypes.JSONSlice[LoginEvent] `bson:"loginDetails" json:"loginDetails"`
	CreatedAt    time.Time                       `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time                       `bson:"updatedAt" json:"updatedAt"`
}

func (LoginHistory) TableName() string { return "user_login_histories" }

func (h *LoginHistory) BeforeCreate(*gorm.DB) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	return nil
}

// Full reports whether the next event resets the ledger instead of extending it.
// Lengths above the bound only arise from concurrent logins and are treated as full.
func (h *LoginHistory) Full() bool {
	return len(h.LoginDetails) >= MaxLoginEvents
}

// Actor is the partially expanded user attached to audit log query results.
type Actor struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type AuditLog struct {
	ID             string    `gorm:"primaryKey;size:36" bson:"_id" json:"id"`
	UserID         *string   `gorm:"size:36;index:idx_audit_user_created,priority:1" bson:"userId" json:"userId"`
	UserRole       *string   `gorm:"size:16;index:idx_audit_role_created,priority:1" bson:"userRole" json:"userRole"`
	Method         string    `gorm:"size:8;not null;index:idx_audit_method_created,priority:1" bson:"method" json:"method"`
	Endpoint       string    `gorm:"not null;index:idx_audit_endpoint_created,priority:1" bson:"endpoint" json:"endpoint"`
	FullURL        string    `bson:"fullUrl" json:"fullUrl"`
	RequestBody    JSONB     `bson:"requestBody" json:"requestBody"`
	QueryParams    JSONB     `bson:"queryParams" json:"queryParams"`
	ResponseStatus int       `gorm:"not null;index:idx_audit_status_created,priority:1" bson:"responseStatus" json:"responseStatus"`
	IPAddress      *string   `bson:"ipAddress" json:"ipAddress"`
	UserAgent      *string   `bson:"userAgent" json:"userAgent"`
	Action         *string   `bson:"action" json:"action"`
	Duration       *float64  `bson:"duration" json:"duration"`
	ErrorMessage   *string   `bson:"errorMessage" json:"errorMessage"`
	CreatedAt      time.Time `gorm:"index:idx_audit_user_created,priority:2;index:idx_audit_role_created,priority:2;index:idx_audit_method_created,priority:2;index:idx_audit_endpoint_created,priority:2;index:idx_audit_status_created,priority:2" bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time `bson:"updatedAt" json:"updatedAt"`

	User *Actor `gorm:"-" bson:"-" json:"user,omitempty"`
}

func (a *AuditLog) BeforeCreate(*gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// GroupCount is one bucket of an audit log group-by; ID is the grouped value.
type GroupCount struct {
	ID    any   `json:"_id"`
	Count int64 `json:"count"`
}
