package validator

import (
	"errors"
	"testing"

	"spacebook/pkg/logger"
	"spacebook/pkg/model"
)

func TestBookingValidator_ValidateRequest(t *testing.T) {
	v := NewBookingValidator(logger.Discard())

	tests := []struct {
		name       string
		req        model.BookingRequest
		wantFields []string
	}{
		{
			name: "valid",
			req: model.BookingRequest{
				ResourceID: "3b241101-e2bb-4255-8caf-4136c566a962",
				Date:       "2026-10-15",
				StartTime:  "10:00",
				EndTime:    "11:00",
			},
		},
		{
			name:       "empty",
			req:        model.BookingRequest{},
			wantFields: []string{"resource_id", "date", "start_time", "end_time"},
		},
		{
			name: "malformed resource id",
			req: model.BookingRequest{
				ResourceID: "not-a-uuid",
				Date:       "2026-10-15",
				StartTime:  "10:00",
				EndTime:    "11:00",
			},
			wantFields: []string{"resource_id"},
		},
		{
			// Layouts are left to the scheduling policy so they surface as time range errors.
			name: "malformed date and time pass shape checks",
			req: model.BookingRequest{
				ResourceID: "3b241101-e2bb-4255-8caf-4136c566a962",
				Date:       "15/10/2026",
				StartTime:  "10am",
				EndTime:    "11:00",
			},
		},
		{
			// Ordering and working hours are not this validator's concern.
			name: "reversed still passes shape checks",
			req: model.BookingRequest{
				ResourceID: "3b241101-e2bb-4255-8caf-4136c566a962",
				Date:       "2026-10-15",
				StartTime:  "17:00",
				EndTime:    "08:00",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateRequest(&tt.req)
			if len(tt.wantFields) == 0 {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}

			var verrs ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("expected ValidationErrors, got %T (%v)", err, err)
			}
			details := verrs.Details()
			for _, f := range tt.wantFields {
				if _, ok := details[f]; !ok {
					t.Errorf("expected error for field %q, got %v", f, details)
				}
			}
			if len(details) != len(tt.wantFields) {
				t.Errorf("expected %d field errors, got %d: %v", len(tt.wantFields), len(details), details)
			}
		})
	}
}

func TestBookingValidator_ValidateUpdate(t *testing.T) {
	v := NewBookingValidator(logger.Discard())

	if err := v.ValidateUpdate(&model.BookingUpdate{Date: "2026-10-15", StartTime: "09:00", EndTime: "10:00"}); err != nil {
		t.Fatalf("expected valid update, got %v", err)
	}

	if err := v.ValidateUpdate(&model.BookingUpdate{Date: "2026-10-15", StartTime: "25:00", EndTime: "10:00"}); err != nil {
		t.Fatalf("time layout is not checked here, got %v", err)
	}

	err := v.ValidateUpdate(&model.BookingUpdate{Date: "2026-10-15"})
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected ValidationErrors, got %v", err)
	}
	if got := verrs.Details()["end_time"]; got != "end_time is required" {
		t.Errorf("unexpected end_time message: %v", got)
	}
	if _, ok := verrs.Details()["start_time"]; !ok {
		t.Errorf("expected start_time error")
	}
}
