package models

import (
	"time"
)

// Request statuses live in a Postgres enum that accumulated label variants over the
// years (casing/spacing/underscore drift). Callers never write a single label
// directly; they go through the status guard with one of these candidate lists.
var (
	StatusCandidatesActive        = []string{"Aktiv", "aktiv", "in Bearbeitung"}
	StatusCandidatesOfferCreated  = []string{"Angebot erstellt", "angebot erstellt", "angebot_erstellt"}
	StatusCandidatesOfferAccepted = []string{"Angebot angenommen", "angebot angenommen", "angebot_angenommen"}
	StatusCandidatesOrderCreated  = []string{"Auftrag erstellt", "auftrag erstellt", "auftrag_erstellt"}
	StatusCandidatesOrderCanceled = []string{"Auftrag storniert", "auftrag storniert", "auftrag_storniert"}
)

// Application statuses
const (
	ApplicationPending  = "pending"
	ApplicationAccepted = "accepted"
	ApplicationDeclined = "declined"
)

// Offer statuses
const (
	OfferCreated  = "created"
	OfferAccepted = "accepted"
	OfferDeclined = "declined"
)

// Order statuses
const (
	OrderCreated   = "created"
	OrderAccepted  = "accepted"
	OrderCompleted = "completed"
	OrderCanceled  = "canceled"
	OrderDeclined  = "declined"
)

// Discount types
const (
	DiscountPercent = "percent"
	DiscountFixed   = "fixed"
)

// WithdrawalPeriodDays is the statutory cooling-off window for orders.
const WithdrawalPeriodDays = 14

// Request represents the service_requests table.
type Request struct {
	ID            string    `gorm:"primaryKey;column:id" json:"id" example:"6f1c2a64-1111-4a0b-9c7d-0a0a0a0a0a0a"`
	OwnerID       string    `gorm:"column:owner_id;not null" json:"owner_id"`
	Branch        string    `gorm:"column:branch" json:"branch" example:"Sanitär"`
	Category      string    `gorm:"column:category" json:"category" example:"Badsanierung"`
	Title         string    `gorm:"column:title" json:"title"`
	Description   string    `gorm:"column:description" json:"description"`
	Status        string    `gorm:"column:status" json:"status" example:"Aktiv"`
	BudgetMin     float64   `gorm:"column:budget_min" json:"budget_min"`
	BudgetMax     float64   `gorm:"column:budget_max" json:"budget_max"`
	ExecutionMode string    `gorm:"column:execution_mode" json:"execution_mode" example:"vor Ort"`
	CreatedAt     time.Time `gorm:"column:created_at;not null" json:"created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Request) TableName() string {
	return "service_requests"
}

// Application represents the request_applications table (one partner bid).
type Application struct {
	ID        string    `gorm:"primaryKey;column:id" json:"id"`
	RequestID string    `gorm:"column:request_id;not null" json:"request_id"`
	PartnerID string    `gorm:"column:partner_id;not null" json:"partner_id"`
	Message   string    `gorm:"column:message" json:"message"`
	Status    string    `gorm:"column:status;not null;default:'pending'" json:"status" example:"pending"`
	CreatedAt time.Time `gorm:"column:created_at;not null" json:"created_at"`
}

func (Application) TableName() string {
	return "request_applications"
}

// Conversation represents the conversations table. At most one per request,
// enforced by a unique index on request_id.
type Conversation struct {
	ID            string    `gorm:"primaryKey;column:id" json:"id"`
	RequestID     string    `gorm:"column:request_id;not null;uniqueIndex" json:"request_id"`
	ConsumerID    string    `gorm:"column:consumer_id" json:"consumer_id"`
	PartnerID     string    `gorm:"column:partner_id" json:"partner_id"`
	LastMessageAt time.Time `gorm:"column:last_message_at" json:"last_message_at"`
	CreatedAt     time.Time `gorm:"column:created_at;not null" json:"created_at"`
}

func (Conversation) TableName() string {
	return "conversations"
}

// Message represents the conversation_messages table. System messages carry
// sender_id = "system" and are only written by the engines.
type Message struct {
	ID             string    `gorm:"primaryKey;column:id" json:"id"`
	ConversationID string    `gorm:"column:conversation_id;not null" json:"conversation_id"`
	SenderID       string    `gorm:"column:sender_id;not null" json:"sender_id"`
	Body           string    `gorm:"column:body;not null" json:"body"`
	System         bool      `gorm:"column:is_system;default:false" json:"is_system"`
	CreatedAt      time.Time `gorm:"column:created_at;not null" json:"created_at"`
}

func (Message) TableName() string {
	return "conversation_messages"
}

// Offer represents the offers table. GrossTotal is always derived from the
// pricing fields, never written by the client.
type Offer struct {
	ID            string    `gorm:"primaryKey;column:id" json:"id"`
	RequestID     string    `gorm:"column:request_id;not null" json:"request_id"`
	CreatedBy     string    `gorm:"column:created_by;not null" json:"created_by"`
	Title         string    `gorm:"column:title;not null" json:"title"`
	NetTotal      float64   `gorm:"column:net_total;type:numeric(12,2)" json:"net_total" example:"100.00"`
	TaxRate       float64   `gorm:"column:tax_rate;type:numeric(5,2)" json:"tax_rate" example:"19"`
	DiscountType  string    `gorm:"column:discount_type" json:"discount_type" example:"percent"`
	DiscountValue float64   `gorm:"column:discount_value;type:numeric(12,2)" json:"discount_value" example:"10"`
	DiscountLabel string    `gorm:"column:discount_label" json:"discount_label" example:"Neukundenrabatt"`
	GrossTotal    float64   `gorm:"column:gross_total;type:numeric(12,2)" json:"gross_total" example:"107.10"`
	Status        string    `gorm:"column:status;not null;default:'created'" json:"status"`
	SignatureID   string    `gorm:"column:signature_id" json:"signature_id"`
	CreatedAt     time.Time `gorm:"column:created_at;not null" json:"created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Offer) TableName() string {
	return "offers"
}

// OfferFile represents the offer_files table.
type OfferFile struct {
	ID          string    `gorm:"primaryKey;column:id" json:"id"`
	OfferID     string    `gorm:"column:offer_id;not null" json:"offer_id"`
	Path        string    `gorm:"column:path;not null" json:"path"`
	Name        string    `gorm:"column:name;not null" json:"name"`
	Size        int64     `gorm:"column:size" json:"size"`
	ContentType string    `gorm:"column:content_type" json:"content_type"`
	CreatedAt   time.Time `gorm:"column:created_at;not null" json:"created_at"`
}

func (OfferFile) TableName() string {
	return "offer_files"
}

// Order represents the orders table. CreatedAt anchors the withdrawal window.
type Order struct {
	ID            string    `gorm:"primaryKey;column:id" json:"id"`
	RequestID     string    `gorm:"column:request_id;not null" json:"request_id"`
	OfferID       *string   `gorm:"column:offer_id" json:"offer_id,omitempty"`
	CreatedBy     string    `gorm:"column:created_by;not null" json:"created_by"`
	Title         string    `gorm:"column:title;not null" json:"title"`
	NetTotal      float64   `gorm:"column:net_total;type:numeric(12,2)" json:"net_total"`
	TaxRate       float64   `gorm:"column:tax_rate;type:numeric(5,2)" json:"tax_rate"`
	DiscountType  string    `gorm:"column:discount_type" json:"discount_type"`
	DiscountValue float64   `gorm:"column:discount_value;type:numeric(12,2)" json:"discount_value"`
	DiscountLabel string    `gorm:"column:discount_label" json:"discount_label"`
	GrossTotal    float64   `gorm:"column:gross_total;type:numeric(12,2)" json:"gross_total"`
	Status        string    `gorm:"column:status;not null;default:'created'" json:"status"`
	CreatedAt     time.Time `gorm:"column:created_at;not null" json:"created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderFile represents the order_files table.
type OrderFile struct {
	ID          string    `gorm:"primaryKey;column:id" json:"id"`
	OrderID     string    `gorm:"column:order_id;not null" json:"order_id"`
	Path        string    `gorm:"column:path;not null" json:"path"`
	Name        string    `gorm:"column:name;not null" json:"name"`
	Size        int64     `gorm:"column:size" json:"size"`
	ContentType string    `gorm:"column:content_type" json:"content_type"`
	CreatedAt   time.Time `gorm:"column:created_at;not null" json:"created_at"`
}

func (OrderFile) TableName() string {
	return "order_files"
}

// Document represents the conversation_documents table, the generic index of
// every blob attached to a conversation regardless of offer/order linkage.
type Document struct {
	ID             string    `gorm:"primaryKey;column:id" json:"id"`
	ConversationID string    `gorm:"column:conversation_id;not null" json:"conversation_id"`
	UploadedBy     string    `gorm:"column:uploaded_by;not null" json:"uploaded_by"`
	Path           string    `gorm:"column:path;not null" json:"path"`
	Name           string    `gorm:"column:name;not null" json:"name"`
	Size           int64     `gorm:"column:size" json:"size"`
	ContentType    string    `gorm:"column:content_type" json:"content_type"`
	Category       string    `gorm:"column:category;not null;default:'allgemein'" json:"category" example:"angebot"`
	CreatedAt      time.Time `gorm:"column:created_at;not null" json:"created_at"`
}

func (Document) TableName() string {
	return "conversation_documents"
}

// PendingBlobDelete represents the pending_blob_deletes table. A row is written
// whenever a compensating blob delete fails, so the cron sweeper can retry it.
type PendingBlobDelete struct {
	ID        uint      `gorm:"primaryKey;column:id" json:"id"`
	Path      string    `gorm:"column:path;not null" json:"path"`
	Reason    string    `gorm:"column:reason" json:"reason"`
	Attempts  int       `gorm:"column:attempts;default:0" json:"attempts"`
	CreatedAt time.Time `gorm:"column:created_at;not null" json:"created_at"`
}

func (PendingBlobDelete) TableName() string {
	return "pending_blob_deletes"
}

// User mirrors the slice of the users table this service reads. Account
// management itself lives in the identity service.
type User struct {
	ID        string    `gorm:"primaryKey;column:id" json:"id"`
	Email     string    `gorm:"column:email;not null" json:"email" example:"user@example.com"`
	FirstName string    `gorm:"column:first_name" json:"first_name" example:"Max"`
	LastName  string    `gorm:"column:last_name" json:"last_name" example:"Mustermann"`
	Role      string    `gorm:"column:role" json:"role" example:"partner"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

func (User) TableName() string {
	return "users"
}

// Session represents the session table consulted by the auth middleware.
type Session struct {
	UserID    string    `json:"user_id"`
	SessionID string    `json:"session_id"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
	Timestamp time.Time `json:"timestp"`
}

// DocumentCategoryPath maps a document category to its storage path prefix.
// Unknown categories fall back to the general chat folder.
func DocumentCategoryPath(category, requestID string) string {
	switch category {
	case "angebot":
		return "chat/angebot/" + requestID
	case "auftrag":
		return "chat/auftrag/" + requestID
	case "rechnung":
		return "chat/rechnung/" + requestID
	default:
		return "chat/" + requestID
	}
}
