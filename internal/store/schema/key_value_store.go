package schema

import "time"

// KeyValueStore is the single table backing the registry key space on PostgreSQL.
// Values are JSON documents; keys follow the registry:* templates.
type KeyValueStore struct {
	Key       string    `gorm:"primaryKey;type:text"`
	Value     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (KeyValueStore) TableName() string {
	return "registry_key_value_store"
}
