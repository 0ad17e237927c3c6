package target

import (
	"log/slog"
	"net/http"
)

func (s *Server) printParam(w http.ResponseWriter, r *http.Request) {
	values, ok := r.URL.Query()["param"]
	if !ok || len(values) == 0 {
		http.Error(w, "required request parameter 'param' is not present", http.StatusBadRequest)
		return
	}

	result := "Parameter: " + values[0]
	s.logger.Info(result, slog.String("param", values[0]))

	w.Header().Set("Content-Type", "text/plain;charset=UTF-8")
	w.Write([]byte(result))
}

func health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
