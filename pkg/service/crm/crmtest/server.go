// Package crmtest provides an in-process fake of the CRM HTTP API for tests.
package crmtest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Note is a note engagement recorded by the fake
type Note struct {
	ContactID string
	Body      string
}

// Association is a deal to contact link recorded by the fake
type Association struct {
	DealID    string
	ContactID string
}

type object struct {
	ID         string
	Properties map[string]string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Server fakes the token, account-info, object, search, association and
// engagement endpoints. Access tokens are opaque strings it issued; refresh
// tokens rotate and are single use.
type Server struct {
	*httptest.Server

	PortalID    int64
	CompanyName string
	ExpiresIn   int

	mu            sync.Mutex
	nextID        int64
	seq           int64
	objects       map[string]map[string]*object
	accessTokens  map[string]bool
	refreshTokens map[string]bool
	notes         []Note
	associations  []Association

	// hooks, guarded by mu
	failCreate      func(objectType string, props map[string]string) (int, string)
	failAccountInfo bool
	refreshDelay    time.Duration
	serverErrors    int

	exchanges atomic.Int64
	refreshes atomic.Int64
	requests  atomic.Int64
}

func NewServer() *Server {
	s := &Server{
		PortalID:      12345,
		CompanyName:   "Acme Recruiting",
		ExpiresIn:     1800,
		nextID:        100,
		objects:       map[string]map[string]*object{"contacts": {}, "companies": {}, "deals": {}},
		accessTokens:  map[string]bool{},
		refreshTokens: map[string]bool{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /oauth/v1/token", s.handleToken)
	mux.HandleFunc("GET /account-info/v3/details", s.authed(s.handleAccountInfo))
	mux.HandleFunc("POST /crm/v3/objects/{type}/search", s.authed(s.handleSearch))
	mux.HandleFunc("POST /crm/v3/objects/{type}", s.authed(s.handleCreate))
	mux.HandleFunc("GET /crm/v3/objects/{type}", s.authed(s.handleList))
	mux.HandleFunc("GET /crm/v3/objects/{type}/{id}", s.authed(s.handleGet))
	mux.HandleFunc("PATCH /crm/v3/objects/{type}/{id}", s.authed(s.handleUpdate))
	mux.HandleFunc("DELETE /crm/v3/objects/{type}/{id}", s.authed(s.handleDelete))
	mux.HandleFunc("PUT /crm/v4/objects/deals/{dealId}/associations/contacts/{contactId}/deal_to_contact", s.authed(s.handleAssociate))
	mux.HandleFunc("POST /engagements/v1/engagements", s.authed(s.handleEngagement))

	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.requests.Add(1)
		if s.takeServerError() {
			writeError(w, http.StatusServiceUnavailable, "temporarily unavailable")
			return
		}
		mux.ServeHTTP(w, r)
	}))
	return s
}

// FailCreate makes object creation fail when fn returns a non-zero status
func (s *Server) FailCreate(fn func(objectType string, props map[string]string) (int, string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failCreate = fn
}

// FailAccountInfo makes the account-info endpoint return 500
func (s *Server) FailAccountInfo(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failAccountInfo = fail
}

// SetRefreshDelay slows down refresh grants so concurrent callers overlap
func (s *Server) SetRefreshDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshDelay = d
}

// SetExpiresIn changes the lifetime of tokens issued from now on
func (s *Server) SetExpiresIn(seconds int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ExpiresIn = seconds
}

// FailNextRequests answers the next n requests with 503
func (s *Server) FailNextRequests(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.serverErrors = n
}

// IssueToken registers a valid access/refresh pair without the OAuth dance
func (s *Server) IssueToken() (access, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issueLocked()
}

// RevokeAccessToken invalidates an access token
func (s *Server) RevokeAccessToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.accessTokens, token)
}

func (s *Server) Exchanges() int64 { return s.exchanges.Load() }
func (s *Server) Refreshes() int64 { return s.refreshes.Load() }
func (s *Server) Requests() int64  { return s.requests.Load() }

func (s *Server) Notes() []Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Note(nil), s.notes...)
}

func (s *Server) Associations() []Association {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Association(nil), s.associations...)
}

// Object returns a copy of the stored properties of an object
func (s *Server) Object(objectType, id string) (map[string]string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.objects[objectType][id]
	if !ok {
		return nil, false
	}
	props := make(map[string]string, len(obj.Properties))
	for k, v := range obj.Properties {
		props[k] = v
	}
	return props, true
}

// Count returns the number of stored objects of a type
func (s *Server) Count(objectType string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects[objectType])
}

// PutObject stores an object directly and returns its id
func (s *Server) PutObject(objectType string, props map[string]string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createLocked(objectType, props).ID
}

func (s *Server) takeServerError() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.serverErrors > 0 {
		s.serverErrors--
		return true
	}
	return false
}

func (s *Server) issueLocked() (string, string) {
	s.seq++
	access := fmt.Sprintf("access-%d", s.seq)
	refresh := fmt.Sprintf("refresh-%d", s.seq)
	s.accessTokens[access] = true
	s.refreshTokens[refresh] = true
	return access, refresh
}

func (s *Server) createLocked(objectType string, props map[string]string) *object {
	s.nextID++
	now := time.Now().UTC()
	obj := &object{
		ID:         strconv.FormatInt(s.nextID, 10),
		Properties: map[string]string{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	for k, v := range props {
		obj.Properties[k] = v
	}
	obj.Properties["createdate"] = now.Format(time.RFC3339)
	s.objects[objectType][obj.ID] = obj
	return obj
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"status": "error", "message": msg, "category": "VALIDATION_ERROR"})
}

func (s *Server) authed(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		s.mu.Lock()
		ok := s.accessTokens[token]
		s.mu.Unlock()
		if !ok {
			writeError(w, http.StatusUnauthorized, "Authentication credentials not found")
			return
		}
		h(w, r)
	}
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "malformed form")
		return
	}
	if r.PostForm.Get("client_id") == "" || r.PostForm.Get("client_secret") == "" {
		writeError(w, http.StatusBadRequest, "missing client credentials")
		return
	}

	switch r.PostForm.Get("grant_type") {
	case "authorization_code":
		s.exchanges.Add(1)
		code := r.PostForm.Get("code")
		if code == "" || strings.HasPrefix(code, "bad") {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_grant", "error_description": "code is invalid or expired"})
			return
		}
	case "refresh_token":
		s.refreshes.Add(1)
		s.mu.Lock()
		delay := s.refreshDelay
		rt := r.PostForm.Get("refresh_token")
		valid := s.refreshTokens[rt]
		delete(s.refreshTokens, rt)
		s.mu.Unlock()
		time.Sleep(delay)
		if !valid {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_grant", "error_description": "refresh token is invalid"})
			return
		}
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unsupported_grant_type"})
		return
	}

	s.mu.Lock()
	access, refresh := s.issueLocked()
	expiresIn := s.ExpiresIn
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"access_token":  access,
		"refresh_token": refresh,
		"expires_in":    expiresIn,
		"token_type":    "bearer",
	})
}

func (s *Server) handleAccountInfo(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	fail := s.failAccountInfo
	s.mu.Unlock()
	if fail {
		writeError(w, http.StatusInternalServerError, "account service unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"portalId": s.PortalID, "companyName": s.CompanyName})
}

func objectJSON(obj *object) map[string]any {
	return map[string]any{
		"id":         obj.ID,
		"properties": obj.Properties,
		"createdAt":  obj.CreatedAt,
		"updatedAt":  obj.UpdatedAt,
		"archived":   false,
	}
}

func (s *Server) collection(w http.ResponseWriter, r *http.Request) (string, bool) {
	t := r.PathValue("type")
	s.mu.Lock()
	_, ok := s.objects[t]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "unknown object type")
		return "", false
	}
	return t, true
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	t, ok := s.collection(w, r)
	if !ok {
		return
	}
	var body struct {
		Properties map[string]string `json:"properties"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failCreate != nil {
		if code, msg := s.failCreate(t, body.Properties); code != 0 {
			writeError(w, code, msg)
			return
		}
	}
	writeJSON(w, http.StatusCreated, objectJSON(s.createLocked(t, body.Properties)))
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	t, ok := s.collection(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.objects[t][r.PathValue("id")]
	if !ok {
		writeError(w, http.StatusNotFound, "resource not found")
		return
	}
	writeJSON(w, http.StatusOK, objectJSON(obj))
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	t, ok := s.collection(w, r)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 10
	}
	after, _ := strconv.ParseInt(r.URL.Query().Get("after"), 10, 64)

	s.mu.Lock()
	defer s.mu.Unlock()

	var ids []int64
	for id := range s.objects[t] {
		n, _ := strconv.ParseInt(id, 10, 64)
		if n > after {
			ids = append(ids, n)
		}
	}
	slices.Sort(ids)

	results := []map[string]any{}
	for i, n := range ids {
		if i == limit {
			break
		}
		results = append(results, objectJSON(s.objects[t][strconv.FormatInt(n, 10)]))
	}

	resp := map[string]any{"results": results}
	if len(ids) > limit {
		resp["paging"] = map[string]any{"next": map[string]any{"after": strconv.FormatInt(ids[limit-1], 10)}}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	t, ok := s.collection(w, r)
	if !ok {
		return
	}
	var body struct {
		Properties map[string]string `json:"properties"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.objects[t][r.PathValue("id")]
	if !ok {
		writeError(w, http.StatusNotFound, "resource not found")
		return
	}
	for k, v := range body.Properties {
		obj.Properties[k] = v
	}
	obj.UpdatedAt = time.Now().UTC()
	writeJSON(w, http.StatusOK, objectJSON(obj))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	t, ok := s.collection(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := r.PathValue("id")
	if _, ok := s.objects[t][id]; !ok {
		writeError(w, http.StatusNotFound, "resource not found")
		return
	}
	delete(s.objects[t], id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	t, ok := s.collection(w, r)
	if !ok {
		return
	}
	var body struct {
		FilterGroups []struct {
			Filters []struct {
				PropertyName string `json:"propertyName"`
				Operator     string `json:"operator"`
				Value        string `json:"value"`
			} `json:"filters"`
		} `json:"filterGroups"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	results := []map[string]any{}
	for _, obj := range s.objects[t] {
		match := true
		for _, g := range body.FilterGroups {
			for _, f := range g.Filters {
				if !strings.Contains(strings.ToLower(obj.Properties[f.PropertyName]), strings.ToLower(f.Value)) {
					match = false
				}
			}
		}
		if match {
			results = append(results, objectJSON(obj))
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"total": len(results), "results": results})
}

func (s *Server) handleAssociate(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	dealID, contactID := r.PathValue("dealId"), r.PathValue("contactId")
	if _, ok := s.objects["deals"][dealID]; !ok {
		writeError(w, http.StatusNotFound, "deal not found")
		return
	}
	if _, ok := s.objects["contacts"][contactID]; !ok {
		writeError(w, http.StatusNotFound, "contact not found")
		return
	}
	s.associations = append(s.associations, Association{DealID: dealID, ContactID: contactID})
	writeJSON(w, http.StatusOK, map[string]any{"fromObjectId": dealID, "toObjectId": contactID})
}

func (s *Server) handleEngagement(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Engagement struct {
			Type string `json:"type"`
		} `json:"engagement"`
		Associations struct {
			ContactIDs []int64 `json:"contactIds"`
		} `json:"associations"`
		Metadata struct {
			Body string `json:"body"`
		} `json:"metadata"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Engagement.Type != "NOTE" {
		writeError(w, http.StatusBadRequest, "invalid engagement")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range body.Associations.ContactIDs {
		s.notes = append(s.notes, Note{ContactID: strconv.FormatInt(id, 10), Body: body.Metadata.Body})
	}
	writeJSON(w, http.StatusOK, map[string]any{"engagement": map[string]any{"id": s.nextID}})
}
