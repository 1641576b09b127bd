package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Platform is the device family a game listing targets.
type Platform string

const (
	PlatformPC     Platform = "PC"
	PlatformMobile Platform = "Mobile"
)

// ParsePlatform matches s case-insensitively against the known platforms.
func ParsePlatform(s string) (Platform, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pc":
		return PlatformPC, true
	case "mobile":
		return PlatformMobile, true
	}
	return "", false
}

// ImageList is an ordered sequence of image URLs. It decodes from either a
// JSON array or a comma-delimited string.
type ImageList []string

// ParseImages splits a comma-delimited string into an ordered image list.
// Blank entries are dropped; an empty string yields an empty list.
func ParseImages(raw string) ImageList {
	images := ImageList{}
	for _, part := range strings.Split(raw, ",") {
		if url := strings.TrimSpace(part); url != "" {
			images = append(images, url)
		}
	}
	return images
}

func (l *ImageList) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*l = nil
		return nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		*l = ParseImages(raw)
		return nil
	}
	var urls []string
	if err := json.Unmarshal(data, &urls); err != nil {
		return fmt.Errorf("images must be an array or a comma separated string: %w", err)
	}
	images := make(ImageList, 0, len(urls))
	for _, u := range urls {
		if u = strings.TrimSpace(u); u != "" {
			images = append(images, u)
		}
	}
	*l = images
	return nil
}

// Game is a purchasable catalog listing.
type Game struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Title       string    `json:"title" gorm:"type:varchar(200);not null"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Platform    Platform  `json:"platform" gorm:"type:varchar(16);index"`
	Category    string    `json:"category" gorm:"type:varchar(100)"`
	Images      ImageList `json:"images" gorm:"serializer:json"`
	IsActive    bool      `json:"is_active" gorm:"index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// GameInput carries the fields for a new listing.
type GameInput struct {
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description"`
	Price       *float64  `json:"price" validate:"required,gte=0"`
	Platform    string    `json:"platform" validate:"required"`
	Category    string    `json:"category"`
	Images      ImageList `json:"images"`
	IsActive    *bool     `json:"is_active"`
}

// GamePatch is a partial update. Nil fields are left untouched.
type GamePatch struct {
	Title       *string    `json:"title" validate:"omitnil,min=1"`
	Description *string    `json:"description"`
	Price       *float64   `json:"price" validate:"omitnil,gte=0"`
	Platform    *string    `json:"platform"`
	Category    *string    `json:"category"`
	Images      *ImageList `json:"images"`
	IsActive    *bool      `json:"is_active"`
}

// Empty reports whether the patch changes nothing.
func (p GamePatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Price == nil && p.Platform == nil &&
		p.Category == nil && p.Images == nil && p.IsActive == nil
}
