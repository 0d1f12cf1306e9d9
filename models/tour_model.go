package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Tour struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	CategoryID   uuid.UUID `gorm:"not null" json:"category_id"`
	Title        string    `gorm:"size:255;not null" json:"title"`
	Slug         string    `gorm:"size:255;not null;unique" json:"slug"`
	Description  string    `gorm:"type:text;not null" json:"description"`
	ShortDesc    string    `gorm:"size:500" json:"short_desc"`
	Price        float64   `gorm:"type:numeric(10,2);not null" json:"price"`
	Currency     string    `gorm:"size:3;not null;default:'USD'" json:"currency"`
	Duration     int       `gorm:"not null" json:"duration"`
	MaxGroupSize int       `gorm:"not null;default:1" json:"max_group_size"`
	Difficulty   string    `gorm:"size:20;not null;default:'EASY'" json:"difficulty"`
	MeetingPoint string    `gorm:"size:255" json:"meeting_point"`
	City         string    `gorm:"size:100" json:"city"`
	CoverImage   string    `gorm:"size:500" json:"cover_image"`

	Included    []string `gorm:"serializer:json" json:"included"`
	NotIncluded []string `gorm:"serializer:json" json:"not_included"`
	Highlights  []string `gorm:"serializer:json" json:"highlights"`
	WhatToBring []string `gorm:"serializer:json" json:"what_to_bring"`

	Featured bool `gorm:"not null;default:false" json:"featured"`
	IsActive bool `gorm:"not null;default:true" json:"is_active"`

	Category Category `gorm:"foreignkey:CategoryID" json:"category,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (t *Tour) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
