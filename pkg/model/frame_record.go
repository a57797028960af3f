package model

import "time"

func (dataEntity *FrameRecordDataEntity) ToDomain() FrameRecord {
	return FrameRecord(*dataEntity)
}

type FrameRecordDataEntity struct {
	Key       string    `gorm:"column:key;primaryKey"`
	FrameId   string    `gorm:"column:frame_id"`
	Payload   string    `gorm:"column:payload"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (dataEntity *FrameRecordDataEntity) TableName() string {
	return "main.critical_frames"
}

type FrameRecord struct {
	Key       string
	FrameId   string
	Payload   string
	CreatedAt time.Time
}
