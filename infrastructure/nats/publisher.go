package nats

import (
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
)

// Publisher ส่ง task events ผ่าน core Pub/Sub (fire-and-forget)
type Publisher struct {
	conn *nats.Conn
}

// NewPublisher สร้าง Publisher ใหม่
func NewPublisher(conn *nats.Conn) *Publisher {
	return &Publisher{conn: conn}
}

// PublishTaskEvent ส่งไปที่ tasks.events.{user_id}.{folder_id}
func (p *Publisher) PublishTaskEvent(msg *TaskEventMessage) error {
	if msg.UserID == "" || msg.FolderID == "" {
		return fmt.Errorf("user_id and folder_id are required")
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal task event: %w", err)
	}

	subject := fmt.Sprintf("%s.%s.%s", SubjectTaskEvents, msg.UserID, msg.FolderID)
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish task event: %w", err)
	}
	return nil
}
