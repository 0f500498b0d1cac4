package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MrEthical07/dnaAuth/internal/records"
	dnamw "github.com/MrEthical07/dnaAuth/middleware"
)

const maxBodyBytes = 1 << 20

type messageResponse struct {
	Message string `json:"message"`
}

func (a *api) listStudents(w http.ResponseWriter, _ *http.Request) {
	dnamw.WriteJSON(w, http.StatusOK, a.records.Students())
}

func (a *api) createStudent(w http.ResponseWriter, r *http.Request) {
	var in records.Student
	if !a.decode(w, r, &in) {
		return
	}
	st, err := a.records.CreateStudent(in)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	dnamw.WriteJSON(w, http.StatusCreated, st)
}

func (a *api) updateStudent(w http.ResponseWriter, r *http.Request) {
	id, patch, ok := a.patchRequest(w, r)
	if !ok {
		return
	}
	st, err := a.records.UpdateStudent(id, patch)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	dnamw.WriteJSON(w, http.StatusOK, st)
}

func (a *api) deleteStudent(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r)
	if !ok {
		return
	}
	if err := a.records.DeleteStudent(id); err != nil {
		a.writeError(w, r, err)
		return
	}
	dnamw.WriteJSON(w, http.StatusOK, messageResponse{Message: "Student deleted successfully"})
}

func (a *api) listCourses(w http.ResponseWriter, _ *http.Request) {
	dnamw.WriteJSON(w, http.StatusOK, a.records.Courses())
}

func (a *api) createCourse(w http.ResponseWriter, r *http.Request) {
	var in records.Course
	if !a.decode(w, r, &in) {
		return
	}
	c, err := a.records.CreateCourse(in)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	dnamw.WriteJSON(w, http.StatusCreated, c)
}

func (a *api) updateCourse(w http.ResponseWriter, r *http.Request) {
	id, patch, ok := a.patchRequest(w, r)
	if !ok {
		return
	}
	c, err := a.records.UpdateCourse(id, patch)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	dnamw.WriteJSON(w, http.StatusOK, c)
}

func (a *api) deleteCourse(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r)
	if !ok {
		return
	}
	if err := a.records.DeleteCourse(id); err != nil {
		a.writeError(w, r, err)
		return
	}
	dnamw.WriteJSON(w, http.StatusOK, messageResponse{Message: "Course deleted successfully"})
}

func (a *api) listCertificates(w http.ResponseWriter, _ *http.Request) {
	dnamw.WriteJSON(w, http.StatusOK, a.records.Certificates())
}

func (a *api) getCertificate(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r)
	if !ok {
		return
	}
	c, err := a.records.Certificate(id)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	dnamw.WriteJSON(w, http.StatusOK, c)
}

func (a *api) issueCertificate(w http.ResponseWriter, r *http.Request) {
	var in records.Certificate
	if !a.decode(w, r, &in) {
		return
	}
	c, err := a.records.IssueCertificate(in)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	dnamw.WriteJSON(w, http.StatusCreated, c)
}

func (a *api) stats(w http.ResponseWriter, _ *http.Request) {
	dnamw.WriteJSON(w, http.StatusOK, a.records.Stats())
}

func (a *api) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeInvalid(w, "invalid JSON body")
		return false
	}
	return true
}

func (a *api) patchRequest(w http.ResponseWriter, r *http.Request) (int, []byte, bool) {
	id, ok := a.pathID(w, r)
	if !ok {
		return 0, nil, false
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeInvalid(w, "request body too large")
		return 0, nil, false
	}
	return id, body, true
}

// pathID parses {id}. A non-numeric id cannot name a record, so it is a 404.
func (a *api) pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		dnamw.WriteJSON(w, http.StatusNotFound, dnamw.ErrorBody{Message: "record not found", Code: dnamw.CodeNotFound})
		return 0, false
	}
	return id, true
}

func writeInvalid(w http.ResponseWriter, msg string) {
	dnamw.WriteJSON(w, http.StatusBadRequest, dnamw.ErrorBody{Message: msg, Code: dnamw.CodeInvalidInput})
}

// writeError maps record and engine errors. Anything unclassified is logged
// and hidden behind a generic 500.
func (a *api) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, records.ErrNotFound):
		dnamw.WriteJSON(w, http.StatusNotFound, dnamw.ErrorBody{Message: err.Error(), Code: dnamw.CodeNotFound})
		return
	case errors.Is(err, records.ErrInvalid):
		writeInvalid(w, err.Error())
		return
	}

	status, body := dnamw.Classify(err)
	if status >= http.StatusInternalServerError {
		a.logger.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	dnamw.WriteJSON(w, status, body)
}
