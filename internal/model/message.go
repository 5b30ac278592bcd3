package model

import "time"

// Direction says whether a logged message came from a subscriber or went out
// through a gateway.
type Direction string

const (
	DirectionIncoming Direction = "Incoming"
	DirectionOutgoing Direction = "Outgoing"
)

// Message is one append-only log row. Incoming rows carry ReceivedAt; outgoing
// rows carry SentAt once the gateway acknowledged the submit.
// ContactID is null when an inbound message arrived from a number no contact
// was ever created for (unknown keyword, malformed date).
type Message struct {
	ID          int64      `json:"id"           db:"id"           gorm:"primaryKey;autoIncrement;column:id"`
	ContactID   *int64     `json:"contact_id"   db:"contact_id"   gorm:"column:contact_id;index"`
	Contact     *Contact   `json:"-"                              gorm:"foreignKey:ContactID;references:ID"`
	Direction   Direction  `json:"direction"    db:"direction"    gorm:"column:direction;not null"`
	Body        string     `json:"body"         db:"body"         gorm:"column:body;not null"`
	ReceivedAt  *time.Time `json:"received_at"  db:"received_at"  gorm:"column:received_at"`
	SentAt      *time.Time `json:"sent_at"      db:"sent_at"      gorm:"column:sent_at"`
	IsProcessed bool       `json:"is_processed" db:"is_processed" gorm:"column:is_processed;not null;default:false"`

	// DedupKey is the idempotence key for scheduled reminders,
	// sha256(contact_id || yyyy-mm-dd || reminder_kind). Null for everything else.
	DedupKey *string `json:"dedup_key" db:"dedup_key" gorm:"column:dedup_key;uniqueIndex"`

	CreatedAt time.Time `json:"created_at" db:"created_at" gorm:"column:created_at;autoCreateTime"`
}

func (Message) TableName() string { return "messages" }

// MessageFilter controls log queries.
type MessageFilter struct {
	ContactID *int64
	Direction *Direction
	From      *time.Time
	To        *time.Time
	Limit     int // default 50
	Offset    int
	Desc      bool // order by created_at
}
