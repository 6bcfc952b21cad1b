package domain

import "time"

type MessageType string

const (
	MessageTypeChat   MessageType = "chat_message"
	MessageTypeJoin   MessageType = "join_room"
	MessageTypeSystem MessageType = "system_message"
)

// ChatMessage is both the wire event and the persisted record. Type
// discriminates the two event kinds; it is not stored because join
// notifications never reach the store.
type ChatMessage struct {
	ID         int64       `json:"id,omitempty" gorm:"primaryKey;autoIncrement"`
	Type       MessageType `json:"type,omitempty" gorm:"-"`
	ChatRoomID string      `json:"chatRoomId" gorm:"column:chat_room_id;index"`
	SenderID   string      `json:"senderId" gorm:"column:sender_id;index:idx_participants,priority:1"`
	ReceiverID string      `json:"receiverId,omitempty" gorm:"column:receiver_id;index:idx_participants,priority:2"`
	ListingID  string      `json:"listingId,omitempty" gorm:"column:listing_id;index"`
	Content    string      `json:"content,omitempty"`
	Timestamp  time.Time   `json:"timestamp" gorm:"index"`
}

func (ChatMessage) TableName() string { return "chat_messages" }
