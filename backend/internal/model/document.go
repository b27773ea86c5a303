package model

import "time"

// 文档集合名
const (
	CollectionUsers   = "users"
	CollectionSurveys = "surveys"
)

// Document 数据库驱动下的整文档存储行 — 对应 documents
//
// 每个集合一行，payload 保存整份 JSON；version 用于乐观锁。
type Document struct {
	Collection string    `gorm:"type:varchar(32);primaryKey"        json:"collection"`
	Payload    []byte    `gorm:"not null"                           json:"payload"`
	Version    int       `gorm:"not null;default:1"                 json:"version"`
	UpdatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName 指定表名
func (Document) TableName() string { return "documents" }
