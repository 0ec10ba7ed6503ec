package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/Kisangi1/The-SOL-NEW/internal/models"
)

const dateLayout = "2006-01-02"

type bookingRequest struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	PackageID     string `json:"package_id"`
	DestinationID string `json:"destination_id"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
	Message       string `json:"message"`
}

func (s *HTTPServer) handleSubmitBooking(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body bookingRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	startDate, err := time.Parse(dateLayout, body.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start_date; expected YYYY-MM-DD")
		return
	}
	endDate, err := time.Parse(dateLayout, body.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid end_date; expected YYYY-MM-DD")
		return
	}

	booking := &models.Booking{
		Name:          strings.TrimSpace(body.Name),
		Email:         strings.TrimSpace(body.Email),
		PackageID:     strings.TrimSpace(body.PackageID),
		DestinationID: strings.TrimSpace(body.DestinationID),
		StartDate:     startDate,
		EndDate:       endDate,
		Message:       body.Message,
	}

	if err := s.bookings.Submit(r.Context(), booking); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, booking)
}

func (s *HTTPServer) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	subscriber, err := s.subscribers.Subscribe(r.Context(), body.Email)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, subscriber)
}

func (s *HTTPServer) handleDestinations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	page, pageSize := queryPage(r)
	result, err := s.catalog.ListDestinations(r.Context(), page, pageSize)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"destinations": result.Items,
		"total":        result.Total,
		"total_pages":  totalPages(result.Total, pageSize),
		"page":         page,
		"page_size":    pageSize,
	})
}

func (s *HTTPServer) handleDestinationByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id, ok := pathTail(r.URL.Path, "/api/v1/destinations/")
	if !ok {
		writeError(w, http.StatusBadRequest, "destination id is required")
		return
	}

	destination, err := s.catalog.GetDestination(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, destination)
}

func (s *HTTPServer) handlePackages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	page, pageSize := queryPage(r)
	packageType := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("type")))

	result, err := s.catalog.ListPackages(r.Context(), page, pageSize, packageType)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"packages":    result.Items,
		"total":       result.Total,
		"total_pages": totalPages(result.Total, pageSize),
		"page":        page,
		"page_size":   pageSize,
	})
}

func (s *HTTPServer) handlePackageByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id, ok := pathTail(r.URL.Path, "/api/v1/packages/")
	if !ok {
		writeError(w, http.StatusBadRequest, "package id is required")
		return
	}

	pkg, err := s.catalog.GetPackage(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pkg)
}
