package prediction

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Predictor is implemented by Client.
type Predictor interface {
	Predict(ctx context.Context, f Features) (string, error)
}

type Handler struct {
	predictor Predictor
	logger    zerolog.Logger
}

func NewHandler(predictor Predictor, logger zerolog.Logger) *Handler {
	return &Handler{
		predictor: predictor,
		logger:    logger.With().Str("component", "prediction").Logger(),
	}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/predict", h.Predict)
}

var requiredFields = []string{"Age", "SystolicBP", "DiastolicBP", "BS", "BodyTemp", "HeartRate"}

func (h *Handler) Predict(c echo.Context) error {
	var raw map[string]json.Number
	if err := json.NewDecoder(c.Request().Body).Decode(&raw); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "request body must be a JSON object of numbers")
	}

	var missing []string
	values := make(map[string]float64, len(requiredFields))
	for _, name := range requiredFields {
		n, ok := raw[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		v, err := n.Float64()
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("field %s must be a number", name))
		}
		values[name] = v
	}
	if len(missing) > 0 {
		return echo.NewHTTPError(http.StatusBadRequest,
			"missing fields: "+strings.Join(missing, ", "))
	}

	label, err := h.predictor.Predict(c.Request().Context(), Features{
		Age:         values["Age"],
		SystolicBP:  values["SystolicBP"],
		DiastolicBP: values["DiastolicBP"],
		BS:          values["BS"],
		BodyTemp:    values["BodyTemp"],
		HeartRate:   values["HeartRate"],
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("risk prediction failed")
		return echo.NewHTTPError(http.StatusBadGateway, "inference service unavailable")
	}

	return c.JSON(http.StatusOK, map[string]string{"prediction": label})
}
