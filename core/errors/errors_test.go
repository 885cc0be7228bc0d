package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestAppError(t *testing.T) {
	Convey("Given an AppError wrapping a cause", t, func() {
		cause := stderrors.New("db down")
		appErr := NewAppError(ErrInternalServer, "Failed to load schedule", cause)

		Convey("Its message contains code, message and cause", func() {
			So(appErr.Error(), ShouldEqual, "INTERNAL_SERVER_ERROR: Failed to load schedule: db down")
		})

		Convey("It unwraps to the cause", func() {
			So(stderrors.Is(appErr, cause), ShouldBeTrue)
		})

		Convey("It can be extracted from a wrapped chain", func() {
			wrapped := fmt.Errorf("task: %w", appErr)
			got, ok := As(wrapped)
			So(ok, ShouldBeTrue)
			So(got.Code, ShouldEqual, ErrInternalServer)
			So(HasCode(wrapped, ErrInternalServer), ShouldBeTrue)
			So(HasCode(wrapped, ErrNotFound), ShouldBeFalse)
		})
	})

	Convey("Given a validation error", t, func() {
		appErr := NewValidationError("Invalid review phases",
			Violation{Field: "phases", Message: "Only the last review phase may be open-ended."})

		So(appErr.Code, ShouldEqual, ErrValidationFailed)
		So(appErr.Violations(), ShouldHaveLength, 1)
		So(appErr.Violations()[0].Message, ShouldEqual, "Only the last review phase may be open-ended.")
		So(appErr.Error(), ShouldEqual, "VALIDATION_FAILED: Invalid review phases")
	})

	Convey("Given a plain error", t, func() {
		_, ok := As(stderrors.New("plain"))
		So(ok, ShouldBeFalse)
	})
}
