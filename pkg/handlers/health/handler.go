package health

import (
	"net/http"

	"github.com/de-tools/tco-atlas/pkg/handlers/respond"
	"github.com/de-tools/tco-atlas/pkg/models/api"
)

const StatusRunning = "Backend is running"

func Status(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, r, http.StatusOK, api.StatusResponse{Status: StatusRunning})
}
