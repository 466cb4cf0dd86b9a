package api

import "net/http"

// search handles GET /api/search?q=
func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.Search.Search(r.Context(), UserIDFrom(r.Context()), r.URL.Query().Get("q"))
	if err != nil {
		writeServiceError(w, r, s.logger, err, "Failed to search")
		return
	}
	WriteJSON(w, http.StatusOK, res)
}
