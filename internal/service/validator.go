package service

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/suar-net/pixel-exchange/internal/model"
	"github.com/suar-net/pixel-exchange/internal/moderation"
)

const (
	MaxTitleLength = 5
	PixelCount     = 16
)

// Rejection reasons returned to the caller verbatim.
var (
	ReasonTitleNotString = "title must be a string"
	ReasonTitleTooLong   = fmt.Sprintf("title must be at most %d characters", MaxTitleLength)
	ReasonInappropriate  = "inappropriate title"
	ReasonPixelsNotArray = "pixels must be an array"
	ReasonPixelCount     = fmt.Sprintf("pixels must contain exactly %d colors", PixelCount)
	ReasonPixelFormat    = "invalid pixel color format"

	titleRule = fmt.Sprintf("max=%d", MaxTitleLength)
	pixelRule = "len=7,hexcolor"
	validate  = validator.New()
)

// ValidateSubmission checks sub in a fixed order and stops at the first
// failing rule. words may be nil, which disables moderation.
func ValidateSubmission(sub *model.Submission, words *moderation.WordSet) (*model.ValidSubmission, error) {
	var title string
	if sub.Title.Present {
		if !sub.Title.IsString {
			return nil, invalid(ReasonTitleNotString)
		}
		title = sub.Title.Value
	}

	if err := validate.Var(title, titleRule); err != nil {
		return nil, invalid(ReasonTitleTooLong)
	}

	if _, hit := words.Match(title); hit {
		return nil, &ValidationError{Reason: ReasonInappropriate, kind: ErrModerated}
	}

	raw := bytes.TrimSpace(sub.Pixels)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, invalid(ReasonPixelsNotArray)
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, invalid(ReasonPixelsNotArray)
	}

	if len(elems) != PixelCount {
		return nil, invalid(ReasonPixelCount)
	}

	pixels := make([]string, 0, PixelCount)
	for _, e := range elems {
		var color string
		if err := json.Unmarshal(e, &color); err != nil {
			return nil, invalid(ReasonPixelFormat)
		}
		if err := validate.Var(color, pixelRule); err != nil {
			return nil, invalid(ReasonPixelFormat)
		}
		pixels = append(pixels, color)
	}

	return &model.ValidSubmission{Title: title, Pixels: pixels}, nil
}
