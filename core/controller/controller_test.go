package controller

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"cfp-api/core/errors"

	"github.com/labstack/echo/v4"
	. "github.com/smartystreets/goconvey/convey"
)

func render(err error) (*httptest.ResponseRecorder, map[string]any) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	_ = NewBaseController().ErrorResponse(c, err)

	var body map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	return rec, body
}

func TestErrorResponse(t *testing.T) {
	Convey("Given a validation AppError", t, func() {
		rec, body := render(errors.NewValidationError("Invalid release",
			errors.Violation{Field: "version", Message: "A schedule with the version 'v1' already exists for this event."}))

		Convey("It renders 400 with the violations as details", func() {
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
			So(body["code"], ShouldEqual, "VALIDATION_FAILED")
			details := body["details"].([]any)
			So(details, ShouldHaveLength, 1)
			So(details[0].(map[string]any)["field"], ShouldEqual, "version")
		})
	})

	Convey("Given an integrity conflict", t, func() {
		rec, body := render(errors.NewAppError(errors.ErrAlreadyExists, "Event already in favourites", nil))
		So(rec.Code, ShouldEqual, http.StatusConflict)
		So(body["message"], ShouldEqual, "Event already in favourites")
	})

	Convey("Given a not found error", t, func() {
		rec, _ := render(errors.NewAppError(errors.ErrNotFound, "Event not found", nil))
		So(rec.Code, ShouldEqual, http.StatusNotFound)
	})

	Convey("Given an unexpected error", t, func() {
		rec, body := render(stderrors.New("connection reset"))
		So(rec.Code, ShouldEqual, http.StatusInternalServerError)
		So(body["code"], ShouldEqual, "INTERNAL_SERVER_ERROR")
		So(body["message"], ShouldEqual, "internal server error")
	})
}

func TestStatusFor(t *testing.T) {
	Convey("Codes map to HTTP statuses", t, func() {
		So(StatusFor(errors.ErrInvalidInput), ShouldEqual, http.StatusBadRequest)
		So(StatusFor(errors.ErrUnauthorized), ShouldEqual, http.StatusUnauthorized)
		So(StatusFor(errors.ErrForbidden), ShouldEqual, http.StatusForbidden)
		So(StatusFor(errors.ErrConflict), ShouldEqual, http.StatusConflict)
		So(StatusFor(errors.ErrCreateFailed), ShouldEqual, http.StatusInternalServerError)
	})
}
