package artifact

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/JakeFAU/occ-vacantes/internal/metrics"
)

// Serve returns a handler streaming the artifact of kind k, or a 404 JSON
// body when it has not been generated yet.
func (g *Gateway) Serve(k Kind, logger *zap.Logger) http.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		f, info, err := g.Open(k)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, ErrNotFound) {
				status = http.StatusNotFound
			} else {
				logger.Error("artifact open failed", zap.String("artifact", k.Name), zap.Error(err))
			}
			metrics.ObserveArtifactRequest(k.Name, strconv.Itoa(status))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "No hay " + k.Name})
			return
		}
		defer func() {
			if cerr := f.Close(); cerr != nil {
				logger.Warn("artifact close failed", zap.String("artifact", k.Name), zap.Error(cerr))
			}
		}()

		w.Header().Set("Content-Type", k.ContentType)
		if k.Attachment {
			w.Header().Set("Content-Disposition", k.Disposition())
		}
		metrics.ObserveArtifactRequest(k.Name, strconv.Itoa(http.StatusOK))
		http.ServeContent(w, r, k.Name, info.ModTime(), f)
	}
}
