// VenuePulse - Local Event Aggregation and Deduplication
// Copyright 2026 VenuePulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/venuepulse/venuepulse

package validation

import (
	"errors"
	"testing"

	"github.com/venuepulse/venuepulse/internal/models"
)

type sampleFilter struct {
	Limit  int     `validate:"gte=0,lte=100"`
	Offset int     `validate:"gte=0"`
	Ratio  float64 `validate:"gte=0,lte=1"`
	Bucket string  `validate:"omitempty,oneof=past now future"`
}

func TestValidateStruct_OK(t *testing.T) {
	if err := ValidateStruct(&sampleFilter{Limit: 20, Ratio: 0.6}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidateStruct_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		filter sampleFilter
	}{
		{"negative offset", sampleFilter{Offset: -1}},
		{"limit too large", sampleFilter{Limit: 500}},
		{"ratio above one", sampleFilter{Ratio: 1.2}},
		{"unknown bucket", sampleFilter{Bucket: "someday"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tt.filter)
			if err == nil {
				t.Fatal("expected validation error")
			}
			var verr *models.ValidationError
			if !errors.As(err, &verr) {
				t.Errorf("expected *models.ValidationError, got %T", err)
			}
		})
	}
}
