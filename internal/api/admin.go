package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/Kisangi1/The-SOL-NEW/internal/models"
)

var (
	errInvalidBody     = errors.New("invalid request body")
	errUploadsDisabled = errors.New("image uploads are not configured")
)

// writeReadError distinguishes malformed input from upload failures.
func writeReadError(w http.ResponseWriter, err error) {
	if errors.Is(err, errInvalidBody) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeError(w, http.StatusBadGateway, "image upload failed")
}

func (s *HTTPServer) handleAdminBookings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	bookings, err := s.bookings.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings})
}

func (s *HTTPServer) handleAdminBookingByID(w http.ResponseWriter, r *http.Request) {
	tail := strings.TrimPrefix(r.URL.Path, "/api/v1/admin/bookings/")
	parts := strings.Split(strings.Trim(tail, "/"), "/")

	switch {
	case len(parts) == 1 && parts[0] != "":
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		booking, err := s.bookings.Get(r.Context(), parts[0])
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, booking)
	case len(parts) == 2:
		s.handleBookingTransition(w, r, parts[0], parts[1])
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *HTTPServer) handleBookingTransition(w http.ResponseWriter, r *http.Request, id, action string) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var booking *models.Booking
	var err error
	switch action {
	case "approve":
		booking, err = s.bookings.Approve(r.Context(), id)
	case "reject":
		booking, err = s.bookings.Reject(r.Context(), id)
	case "complete":
		booking, err = s.bookings.Complete(r.Context(), id)
	default:
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *HTTPServer) handleAdminDestinations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	destination, err := s.readDestination(r)
	if err != nil {
		writeReadError(w, err)
		return
	}

	if err := s.catalog.CreateDestination(r.Context(), destination); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, destination)
}

func (s *HTTPServer) handleAdminDestinationByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathTail(r.URL.Path, "/api/v1/admin/destinations/")
	if !ok {
		writeError(w, http.StatusBadRequest, "destination id is required")
		return
	}

	switch r.Method {
	case http.MethodPatch:
		destination, err := s.readDestination(r)
		if err != nil {
			writeReadError(w, err)
			return
		}
		destination.ID = id
		if err := s.catalog.UpdateDestination(r.Context(), destination); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, destination)
	case http.MethodDelete:
		if err := s.catalog.DeleteDestination(r.Context(), id); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleAdminPackages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	pkg, err := s.readPackage(r)
	if err != nil {
		writeReadError(w, err)
		return
	}

	if err := s.catalog.CreatePackage(r.Context(), pkg); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, pkg)
}

func (s *HTTPServer) handleAdminPackageByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathTail(r.URL.Path, "/api/v1/admin/packages/")
	if !ok {
		writeError(w, http.StatusBadRequest, "package id is required")
		return
	}

	switch r.Method {
	case http.MethodPatch:
		pkg, err := s.readPackage(r)
		if err != nil {
			writeReadError(w, err)
			return
		}
		pkg.ID = id
		if err := s.catalog.UpdatePackage(r.Context(), pkg); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, pkg)
	case http.MethodDelete:
		if err := s.catalog.DeletePackage(r.Context(), id); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleAdminSubscribers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	subscribers, err := s.subscribers.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"subscribers": subscribers})
}

// readDestination accepts JSON or multipart form data. The multipart
// path uploads an optional "image" file and fills ImageURL.
func (s *HTTPServer) readDestination(r *http.Request) (*models.Destination, error) {
	if !isMultipart(r) {
		var d models.Destination
		if err := decodeJSON(r, &d); err != nil {
			return nil, errInvalidBody
		}
		return &d, nil
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return nil, errInvalidBody
	}

	amount, _ := strconv.ParseFloat(r.FormValue("amount"), 64)
	d := &models.Destination{
		Name:             strings.TrimSpace(r.FormValue("name")),
		Title:            strings.TrimSpace(r.FormValue("title")),
		Description:      r.FormValue("description"),
		BestTimeToTravel: r.FormValue("best_time_to_travel"),
		WhatToCarry:      splitCSV(r.FormValue("what_to_carry")),
		Location:         r.FormValue("location"),
		Inclusive:        splitCSV(r.FormValue("inclusive")),
		Exclusive:        splitCSV(r.FormValue("exclusive")),
		Amount:           amount,
	}

	imageURL, err := s.uploadFormImage(r)
	if err != nil {
		return nil, err
	}
	d.ImageURL = imageURL
	return d, nil
}

func (s *HTTPServer) readPackage(r *http.Request) (*models.Package, error) {
	if !isMultipart(r) {
		var p models.Package
		if err := decodeJSON(r, &p); err != nil {
			return nil, errInvalidBody
		}
		p.Type = strings.ToUpper(strings.TrimSpace(p.Type))
		return &p, nil
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return nil, errInvalidBody
	}

	amount, _ := strconv.ParseFloat(r.FormValue("amount"), 64)
	duration, _ := strconv.Atoi(r.FormValue("duration"))
	nights, _ := strconv.Atoi(r.FormValue("nights"))
	p := &models.Package{
		Name:       strings.TrimSpace(r.FormValue("name")),
		Details:    r.FormValue("details"),
		Type:       strings.ToUpper(strings.TrimSpace(r.FormValue("type"))),
		CustomType: strings.TrimSpace(r.FormValue("custom_type")),
		Amount:     amount,
		Duration:   duration,
		Nights:     nights,
		Included:   splitCSV(r.FormValue("included")),
		Excluded:   splitCSV(r.FormValue("excluded")),
	}

	imageURL, err := s.uploadFormImage(r)
	if err != nil {
		return nil, err
	}
	p.ImageURL = imageURL
	return p, nil
}

// uploadFormImage uploads the optional "image" part; empty when absent.
func (s *HTTPServer) uploadFormImage(r *http.Request) (string, error) {
	file, header, err := r.FormFile("image")
	if err == http.ErrMissingFile {
		return "", nil
	}
	if err != nil {
		return "", errInvalidBody
	}
	defer file.Close()

	if s.uploader == nil {
		return "", errUploadsDisabled
	}
	return s.uploader.Upload(r.Context(), header.Filename, file)
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

func splitCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
