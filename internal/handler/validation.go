package handler

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/shareit-platform/service-booking/internal/application"
	"github.com/shareit-platform/service-booking/internal/pkg/clock"
)

// RegisterValidators installs the struct-level rules on gin's validator.
func RegisterValidators(clk clock.Clock) error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin validator engine is not go-playground/validator")
	}
	v.RegisterStructValidation(bookingPeriodValidation(clk), application.CreateBookingRequest{})
	return nil
}

// bookingPeriodValidation requires start >= now, end > now and start < end.
// Start is compared at second precision so a client sending "now" is accepted.
func bookingPeriodValidation(clk clock.Clock) validator.StructLevelFunc {
	return func(sl validator.StructLevel) {
		req, ok := sl.Current().Interface().(application.CreateBookingRequest)
		if !ok {
			return
		}
		now := clk.Now()
		if req.Start.IsZero() || req.End.IsZero() {
			return
		}
		if req.Start.Before(now.Truncate(time.Second)) {
			sl.ReportError(req.Start, "Start", "start", "futureorpresent", "")
		}
		if !req.End.After(now) {
			sl.ReportError(req.End, "End", "end", "future", "")
		}
		if !req.Start.Before(req.End) {
			sl.ReportError(req.End, "End", "end", "gtfield", "Start")
		}
	}
}
