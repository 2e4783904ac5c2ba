package server

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/career-finder/internal/types"
)

// maxBodyBytes bounds request bodies; backgrounds are plain text.
const maxBodyBytes = 1 << 20

// keepAliveInterval is how often an idle event stream gets a comment line.
const keepAliveInterval = 15 * time.Second

// CreateSessionResponse represents the response for POST /sessions
type CreateSessionResponse struct {
	SessionID string `json:"session_id"`
}

// ListingsResponse represents the response for search and listing reads
type ListingsResponse struct {
	SessionID string             `json:"session_id"`
	Listings  []types.JobListing `json:"listings"`
	Count     int                `json:"count"`
}

// DraftRequest represents the request body for the cover letter endpoints
type DraftRequest struct {
	Background string `json:"background"`
}

// CoverLetterResponse represents a drafted cover letter
type CoverLetterResponse struct {
	ListingID   string `json:"listing_id"`
	Headline    string `json:"headline"`
	CoverLetter string `json:"cover_letter"`
}

// LocationsResponse represents the response for GET /locations
type LocationsResponse struct {
	Locations []string `json:"locations"`
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleLocations lists the selectable search locations
func (s *Server) handleLocations(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, LocationsResponse{Locations: types.Locations()})
}

// handleCreateSession starts an empty session
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	id, err := s.sessions.NewSession(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, CreateSessionResponse{SessionID: id.String()})
}

// handleSearch runs a search and replaces the session's listings
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	sessionID, err := sessionIDFrom(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req types.SearchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	req.Keywords = types.NormalizeKeywords(req.Keywords)

	listings, err := s.sessions.Search(r.Context(), sessionID, req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, ListingsResponse{
		SessionID: sessionID.String(),
		Listings:  listings,
		Count:     len(listings),
	})
}

// handleListListings returns the session's current listings
func (s *Server) handleListListings(w http.ResponseWriter, r *http.Request) {
	sessionID, err := sessionIDFrom(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	listings, err := s.sessions.Listings(r.Context(), sessionID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, ListingsResponse{
		SessionID: sessionID.String(),
		Listings:  listings,
		Count:     len(listings),
	})
}

// handleGetListing returns one listing from the session's current results
func (s *Server) handleGetListing(w http.ResponseWriter, r *http.Request) {
	sessionID, err := sessionIDFrom(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	listing, err := s.sessions.Listing(r.Context(), sessionID, r.PathValue("listing_id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, listing)
}

// handleDraftCoverLetter drafts a letter and returns it in one response
func (s *Server) handleDraftCoverLetter(w http.ResponseWriter, r *http.Request) {
	sessionID, req, err := s.draftRequest(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	listing, err := s.sessions.Listing(r.Context(), sessionID, req.ListingID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	text, err := s.sessions.DraftCoverLetter(r.Context(), sessionID, req.ListingID, req.Background)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, CoverLetterResponse{
		ListingID:   req.ListingID,
		Headline:    listing.Headline(),
		CoverLetter: text,
	})
}

// handleDraftCoverLetterStream drafts a letter and reports progress via SSE.
// Input and lookup failures are answered with a plain JSON error before the
// stream opens; drafting failures arrive as an "error" event.
func (s *Server) handleDraftCoverLetterStream(w http.ResponseWriter, r *http.Request) {
	sessionID, req, err := s.draftRequest(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	listing, err := s.sessions.Listing(r.Context(), sessionID, req.ListingID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}

	sse.WriteStarted(req.ListingID)
	results := s.sessions.DraftCoverLetterAsync(r.Context(), sessionID, req.ListingID, req.Background)

	keepAlive := time.NewTicker(s.keepAlive)
	defer keepAlive.Stop()

	for {
		select {
		case result := <-results:
			if result.Err != nil {
				sse.WriteError(errorKind(result.Err), errorMessage(result.Err))
				return
			}
			sse.WriteComplete(CoverLetterResponse{
				ListingID:   req.ListingID,
				Headline:    listing.Headline(),
				CoverLetter: result.Text,
			})
			return
		case <-keepAlive.C:
			if err := sse.WriteComment("keep-alive"); err != nil {
				log.Printf("[server] event stream closed: %v", err)
				return
			}
		case <-r.Context().Done():
			log.Printf("[server] client went away while drafting listing %s", req.ListingID)
			return
		}
	}
}

// handleHistory returns recorded searches and drafts for a session
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	sessionID, err := sessionIDFrom(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if s.history == nil {
		s.writeError(w, r, ErrHistoryDisabled)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			s.writeError(w, r, &types.ValidationError{Field: "limit", Message: "must be a positive integer"})
			return
		}
	}

	history, err := s.history.History(r.Context(), sessionID.String(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, history)
}

// draftRequest parses the session id, listing id and body shared by both draft endpoints.
func (s *Server) draftRequest(w http.ResponseWriter, r *http.Request) (uuid.UUID, types.CoverLetterRequest, error) {
	sessionID, err := sessionIDFrom(r)
	if err != nil {
		return uuid.Nil, types.CoverLetterRequest{}, err
	}

	var body DraftRequest
	if err := decodeJSON(w, r, &body); err != nil {
		return uuid.Nil, types.CoverLetterRequest{}, err
	}

	req := types.CoverLetterRequest{ListingID: r.PathValue("listing_id"), Background: body.Background}
	if err := req.Validate(); err != nil {
		return uuid.Nil, types.CoverLetterRequest{}, err
	}
	return sessionID, req, nil
}

func sessionIDFrom(r *http.Request) (uuid.UUID, error) {
	raw := r.PathValue("id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, &ErrInvalidSessionID{Value: raw}
	}
	return id, nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return &ErrBadRequestBody{Cause: errors.New("body is empty")}
		}
		return &ErrBadRequestBody{Cause: err}
	}
	return nil
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[server] error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, kind, message string) {
	s.jsonResponse(w, status, map[string]string{"error": kind, "message": message})
}

// writeError maps err to a status and error body.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Printf("[server] %s %s failed: %v", r.Method, r.URL.Path, err)
	}
	s.errorResponse(w, status, errorKind(err), errorMessage(err))
}
