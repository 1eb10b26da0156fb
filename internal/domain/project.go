package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// MaxDonationAmount bounds a single donation in minor units.
const MaxDonationAmount int64 = 100_000_000_000

// AmountOutOfRange reports an amount that cannot be added to a total.
func AmountOutOfRange() *AppError {
	return NewAppError(CodeMissingParam, "amount is out of range",
		WithDetails(map[string]any{"field": "amount"}))
}

// ContentBlock is one titled section of a project page.
type ContentBlock struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Content     string `json:"content"`
}

// Complete reports whether every field of the block is filled in.
func (b ContentBlock) Complete() bool {
	return b.Name != "" && b.Description != "" && b.Content != ""
}

// ContentBlocks is stored as a JSON column.
type ContentBlocks []ContentBlock

// Value implements driver.Valuer.
func (c ContentBlocks) Value() (driver.Value, error) {
	if c == nil {
		return "[]", nil
	}
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal content blocks: %w", err)
	}
	return string(data), nil
}

// Scan implements sql.Scanner.
func (c *ContentBlocks) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*c = ContentBlocks{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("scan content blocks: unsupported type %T", src)
	}
	return json.Unmarshal(raw, c)
}

// Project is a fundraising project shown on the public site.
type Project struct {
	ID           string        `json:"id" db:"id"`
	Title        string        `json:"title" db:"title"`
	Category     string        `json:"category" db:"category"`
	Summary      *string       `json:"summary,omitempty" db:"summary"`
	CoverURL     *string       `json:"coverUrl,omitempty" db:"cover_url"`
	Contents     ContentBlocks `json:"contents" db:"contents"`
	GoalAmount   int64         `json:"goalAmount" db:"goal_amount"`
	RaisedAmount int64         `json:"raisedAmount" db:"raised_amount"`
	Currency     string        `json:"currency" db:"currency"`
	Published    bool          `json:"published" db:"published"`
	CreatedBy    string        `json:"createdBy" db:"created_by"`
	CreatedAt    time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time     `json:"updatedAt" db:"updated_at"`
}

// Raise returns the raised total after adding amount. It fails instead of
// wrapping past the int64 range.
func (p Project) Raise(amount int64) (int64, error) {
	if amount < 0 || p.RaisedAmount > math.MaxInt64-amount {
		return 0, AmountOutOfRange()
	}
	return p.RaisedAmount + amount, nil
}

// ProjectPatch holds the fields an admin may change. Nil means unchanged.
type ProjectPatch struct {
	Title      *string
	Category   *string
	Summary    *string
	CoverURL   *string
	Contents   ContentBlocks
	GoalAmount *int64
	Published  *bool
}

// Apply returns a copy of p with the patch applied.
func (p Project) Apply(patch ProjectPatch) Project {
	out := p
	if patch.Title != nil {
		out.Title = *patch.Title
	}
	if patch.Category != nil {
		out.Category = *patch.Category
	}
	if patch.Summary != nil {
		out.Summary = patch.Summary
	}
	if patch.CoverURL != nil {
		out.CoverURL = patch.CoverURL
	}
	if patch.Contents != nil {
		out.Contents = patch.Contents
	}
	if patch.GoalAmount != nil {
		out.GoalAmount = *patch.GoalAmount
	}
	if patch.Published != nil {
		out.Published = *patch.Published
	}
	out.UpdatedAt = time.Now()
	return out
}

// ProjectFilter narrows project listings.
type ProjectFilter struct {
	Category      string
	PublishedOnly bool
	Page          int
	Limit         int
}

// Offset returns the row offset for the filter's page.
func (f ProjectFilter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}
