package restserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"gonum.org/v1/plot/vg"

	"github.com/chrissnell/pvsizer/internal/acpower"
	"github.com/chrissnell/pvsizer/internal/optimizer"
	"github.com/chrissnell/pvsizer/internal/readings"
	"github.com/chrissnell/pvsizer/internal/report"
	"github.com/chrissnell/pvsizer/internal/sizing"
	"github.com/chrissnell/pvsizer/pkg/responseformat"
	"github.com/chrissnell/pvsizer/pkg/singlediode"
)

// maxBodyBytes caps request bodies
const maxBodyBytes = 1 << 20

var (
	errBadRequest  = errors.New("bad request")
	errUnavailable = errors.New("service unavailable")
)

// Handlers contains all HTTP handlers for the REST server
type Handlers struct {
	controller *Controller
	formatter  *responseformat.Formatter
}

// NewHandlers creates a new handlers instance
func NewHandlers(ctrl *Controller) *Handlers {
	return &Handlers{
		controller: ctrl,
		formatter:  responseformat.NewFormatter(),
	}
}

// statusFor maps an error to the HTTP status returned to the client
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, singlediode.ErrInvalidParameter),
		errors.Is(err, singlediode.ErrNumericalDomain),
		errors.Is(err, sizing.ErrInvalidInput),
		errors.Is(err, acpower.ErrInvalidInput),
		errors.Is(err, optimizer.ErrInvalidGrid):
		return http.StatusBadRequest
	case errors.Is(err, readings.ErrNoReading):
		return http.StatusNotFound
	case errors.Is(err, errUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, req *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.controller.logger.Errorw("request failed", "path", req.URL.Path, "error", err)
	}
	h.formatter.WriteError(w, req, status, err)
}

func (h *Handlers) write(w http.ResponseWriter, req *http.Request, data any) {
	if err := h.formatter.WriteResponse(w, req, data, nil); err != nil {
		h.controller.logger.Errorf("error encoding response for %s: %v", req.URL.Path, err)
	}
}

// decodeBody reads a JSON request body into v
func decodeBody(w http.ResponseWriter, req *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, req.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: invalid JSON body: %v", errBadRequest, err)
	}
	return nil
}

// queryFloat parses a required float query parameter
func queryFloat(req *http.Request, name string) (float64, error) {
	raw := req.URL.Query().Get(name)
	if raw == "" {
		return 0, fmt.Errorf("%w: missing %s parameter", errBadRequest, name)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s parameter: %q", errBadRequest, name, raw)
	}
	return v, nil
}

// GetHealth reports that the server is up
func (h *Handlers) GetHealth(w http.ResponseWriter, req *http.Request) {
	h.write(w, req, healthResponse{Status: "ok"})
}

// GetModule returns the configured module parameters
func (h *Handlers) GetModule(w http.ResponseWriter, req *http.Request) {
	deps := h.controller.deps
	h.write(w, req, newModuleResponse(deps.Model, deps.Solver.Parameters()))
}

// PostCurve solves the curve at the requested operating point, optionally
// for a module supplied in the body
func (h *Handlers) PostCurve(w http.ResponseWriter, req *http.Request) {
	var body curveRequest
	if err := decodeBody(w, req, &body); err != nil {
		h.writeError(w, req, err)
		return
	}
	if body.OperatingTemperature == nil || body.ActualIrradiance == nil {
		h.writeError(w, req, fmt.Errorf("%w: operating_temperature and actual_irradiance are required", errBadRequest))
		return
	}

	solver, model := h.controller.deps.Solver, h.controller.deps.Model
	if body.Module != nil {
		params, name, err := sizing.ModuleFromConfig(*body.Module)
		if err != nil {
			h.writeError(w, req, err)
			return
		}
		solver, model = singlediode.NewSolver(params), name
	}

	curve, err := solver.Calculate(*body.OperatingTemperature, *body.ActualIrradiance)
	if err != nil {
		h.writeError(w, req, err)
		return
	}
	h.write(w, req, newCurveResponse(model, curve))
}

// curveFromQuery solves the configured module at ?temperature= (Kelvin)
// and ?irradiance=
func (h *Handlers) curveFromQuery(req *http.Request) (*singlediode.Curve, error) {
	temperature, err := queryFloat(req, "temperature")
	if err != nil {
		return nil, err
	}
	irradiance, err := queryFloat(req, "irradiance")
	if err != nil {
		return nil, err
	}
	return h.controller.deps.Solver.Calculate(temperature, irradiance)
}

// GetCurveCSV returns the curve as a CSV attachment
func (h *Handlers) GetCurveCSV(w http.ResponseWriter, req *http.Request) {
	curve, err := h.curveFromQuery(req)
	if err != nil {
		h.writeError(w, req, err)
		return
	}

	name := report.CurveFileName(h.controller.deps.Model, time.Now(), "csv")
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	if err := report.WriteCurveCSV(w, curve); err != nil {
		h.controller.logger.Errorf("error writing curve CSV: %v", err)
	}
}

// GetCurvePNG renders the I-V and P-V curves. ?width= and ?height= are in
// inches.
func (h *Handlers) GetCurvePNG(w http.ResponseWriter, req *http.Request) {
	curve, err := h.curveFromQuery(req)
	if err != nil {
		h.writeError(w, req, err)
		return
	}

	width, height := 6.0, 8.0
	for name, dst := range map[string]*float64{"width": &width, "height": &height} {
		if req.URL.Query().Get(name) == "" {
			continue
		}
		v, err := queryFloat(req, name)
		if err != nil || v <= 0 || v > 40 {
			h.writeError(w, req, fmt.Errorf("%w: %s must be between 0 and 40 inches", errBadRequest, name))
			return
		}
		*dst = v
	}

	w.Header().Set("Content-Type", "image/png")
	if err := report.RenderCurvePNG(w, curve, vg.Length(width)*vg.Inch, vg.Length(height)*vg.Inch); err != nil {
		h.controller.logger.Errorf("error rendering curve PNG: %v", err)
	}
}

// GetSizing sizes the array for the reading logged at ?time=. Optional
// ?tilt= and ?azimuth= override the configured orientation.
func (h *Handlers) GetSizing(w http.ResponseWriter, req *http.Request) {
	deps := h.controller.deps
	if deps.Readings == nil {
		h.writeError(w, req, fmt.Errorf("%w: no readings source configured", errUnavailable))
		return
	}

	raw := req.URL.Query().Get("time")
	at, err := time.Parse(SizingTimeLayout, raw)
	if err != nil {
		h.writeError(w, req, fmt.Errorf("%w: time must look like %s", errBadRequest, SizingTimeLayout))
		return
	}

	orient := deps.Orientation
	for name, dst := range map[string]*float64{"tilt": &orient.Tilt, "azimuth": &orient.Azimuth} {
		if req.URL.Query().Get(name) == "" {
			continue
		}
		if *dst, err = queryFloat(req, name); err != nil {
			h.writeError(w, req, err)
			return
		}
	}

	reading, err := deps.Readings.At(req.Context(), at)
	if err != nil {
		h.writeError(w, req, err)
		return
	}

	rep, err := sizing.Evaluate(deps.Solver, reading, deps.Site, orient)
	switch {
	case errors.Is(err, sizing.ErrNoPower):
		h.write(w, req, sizingResponse{Report: rep, Warning: err.Error()})
	case err != nil:
		h.writeError(w, req, err)
	default:
		h.write(w, req, sizingResponse{Report: rep})
	}
}

// PostOptimize runs the orientation search for a day
func (h *Handlers) PostOptimize(w http.ResponseWriter, req *http.Request) {
	var body optimizeRequest
	if err := decodeBody(w, req, &body); err != nil {
		h.writeError(w, req, err)
		return
	}
	day, err := time.Parse(OptimizeDayLayout, body.Day)
	if err != nil {
		h.writeError(w, req, fmt.Errorf("%w: day must look like %s", errBadRequest, OptimizeDayLayout))
		return
	}

	deps := h.controller.deps
	grid := optimizer.DefaultGrid()
	grid.TiltStep, grid.AzimuthStep = deps.Optimizer.TiltStep, deps.Optimizer.AzimuthStep
	if body.TiltStep != 0 {
		grid.TiltStep = body.TiltStep
	}
	if body.AzimuthStep != 0 {
		grid.AzimuthStep = body.AzimuthStep
	}
	if grid.TiltStep == 0 {
		grid.TiltStep = 1
	}
	if grid.AzimuthStep == 0 {
		grid.AzimuthStep = 1
	}

	res, err := optimizer.Optimize(req.Context(), deps.Readings, day, deps.Site, grid,
		optimizer.WithWorkers(deps.Optimizer.Workers),
		optimizer.WithLogger(h.controller.logger))
	if err != nil {
		h.writeError(w, req, err)
		return
	}

	h.write(w, req, optimizeResponse{
		RunID:       res.RunID,
		Day:         res.Day,
		Source:      res.Source,
		Samples:     res.Samples,
		BestTilt:    res.BestTilt,
		BestAzimuth: res.BestAzimuth,
		BestTotal:   res.BestTotal,
		Tilts:       res.Tilts,
		Azimuths:    res.Azimuths,
		Totals:      res.TotalsRows(),
	})
}

// PostACPower runs the AC power-triangle analysis
func (h *Handlers) PostACPower(w http.ResponseWriter, req *http.Request) {
	var in acpower.Input
	if err := decodeBody(w, req, &in); err != nil {
		h.writeError(w, req, err)
		return
	}
	res, err := acpower.Analyze(in)
	if err != nil {
		h.writeError(w, req, err)
		return
	}
	h.write(w, req, res)
}

// PostPayback estimates generation, bills and payback time
func (h *Handlers) PostPayback(w http.ResponseWriter, req *http.Request) {
	var in sizing.PaybackInput
	if err := decodeBody(w, req, &in); err != nil {
		h.writeError(w, req, err)
		return
	}
	res, err := sizing.EvaluatePayback(in)
	if err != nil {
		h.writeError(w, req, err)
		return
	}
	h.write(w, req, res)
}
