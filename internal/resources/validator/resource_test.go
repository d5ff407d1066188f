package validator

import (
	"errors"
	"testing"

	"spacebook/pkg/logger"
	"spacebook/pkg/model"
)

func TestResourceValidator_Validate(t *testing.T) {
	v := NewResourceValidator(logger.Discard())

	tests := []struct {
		name      string
		resource  model.Resource
		wantField string
	}{
		{"valid room", model.Resource{Name: "Atlas", Type: model.ResourceTypeRoom}, ""},
		{"valid desk", model.Resource{Name: "D-12", Type: model.ResourceTypeDesk}, ""},
		{"missing name", model.Resource{Type: model.ResourceTypeRoom}, "name"},
		{"short name", model.Resource{Name: "A", Type: model.ResourceTypeRoom}, "name"},
		{"unknown type", model.Resource{Name: "Atlas", Type: "parking"}, "type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(&tt.resource)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			var verrs ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("expected ValidationErrors, got %v", err)
			}
			if _, ok := verrs.Details()[tt.wantField]; !ok {
				t.Errorf("expected error on %s, got %v", tt.wantField, verrs.Details())
			}
		})
	}
}

func TestResourceValidator_ValidateUpdate(t *testing.T) {
	v := NewResourceValidator(logger.Discard())

	if err := v.ValidateUpdate(&model.ResourceUpdate{}); err == nil {
		t.Error("expected error for empty update")
	}
	if err := v.ValidateUpdate(&model.ResourceUpdate{Type: "garage"}); err == nil {
		t.Error("expected error for unknown type")
	}
	if err := v.ValidateUpdate(&model.ResourceUpdate{Name: "Atlas"}); err != nil {
		t.Errorf("expected name-only update to pass, got %v", err)
	}
}
