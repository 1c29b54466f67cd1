package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/opshr/hrdesk/pkg/domain"
)

type chatRequest struct {
	Message string `json:"message"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, err)
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err)
		return
	}
	if req.Message == "" {
		s.errorResponse(w, http.StatusBadRequest, fmt.Errorf("message must not be empty"))
		return
	}

	res, err := s.agent.Resolve(r.Context(), req.Message, sessionID(actor), actor)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, res)
}

func (s *Server) handleClearSession(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, err)
		return
	}
	if err := s.sessions.Clear(r.Context(), sessionID(actor)); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListAudit(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, err)
		return
	}
	// The audit trail is an admin reporting surface.
	switch actor.Role {
	case domain.RoleHRAdmin, domain.RoleSuperAdmin:
	default:
		s.errorResponse(w, http.StatusForbidden, fmt.Errorf("role %s may not read the audit trail", actor.Role))
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err = strconv.Atoi(v)
		if err != nil || limit < 0 {
			s.errorResponse(w, http.StatusBadRequest, fmt.Errorf("invalid limit: %q", v))
			return
		}
	}

	entries, err := s.audit.List(r.Context(), limit)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, entries)
}

type toolInfo struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
	Permission  string          `json:"permission,omitempty"`
	Mutating    bool            `json:"mutating"`
}

func (s *Server) handleListTools(w http.ResponseWriter, r *http.Request) {
	if _, err := actorFromRequest(r); err != nil {
		s.errorResponse(w, http.StatusUnauthorized, err)
		return
	}

	var infos []toolInfo
	for _, def := range s.registry.List() {
		infos = append(infos, toolInfo{
			Name:        def.Name,
			Description: def.Description,
			Parameters:  def.Parameters,
			Permission:  def.Permission,
			Mutating:    def.Mutating,
		})
	}
	s.jsonResponse(w, http.StatusOK, infos)
}
