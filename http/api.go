package http

import (
	"io"
	"math"
	"net/http"
	"strconv"
	"sync"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/aukilabs/hitscan/featureflag"
	"github.com/aukilabs/hitscan/geom"
	"github.com/aukilabs/hitscan/models"
	"github.com/aukilabs/hitscan/noise"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/segmentio/encoding/json"
)

const (
	ErrTypeBadRequest   = "bad-request"
	ErrTypeBodyTooLarge = "body-too-large"

	maxBodySize = 1 << 20
)

// API serves the worlds of a store over JSON HTTP endpoints.
type API struct {
	Worlds *models.WorldStore

	// The seed of the worlds created without an explicit seed.
	DefaultSeed int

	FeatureFlags featureflag.FeatureFlag

	initOnce sync.Once
	mux      *http.ServeMux
}

func (a *API) init() {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /worlds", a.handleWorldList)
	mux.HandleFunc("POST /worlds", a.handleWorldCreate)
	mux.HandleFunc("GET /worlds/{id}", a.withWorld(a.handleWorldGet))
	mux.HandleFunc("DELETE /worlds/{id}", a.handleWorldDelete)
	mux.HandleFunc("PUT /worlds/{id}/seed", a.withWorld(a.handleSeedUpdate))
	mux.HandleFunc("POST /worlds/{id}/volumes", a.withWorld(a.handleVolumeAdd))
	mux.HandleFunc("GET /worlds/{id}/volumes/{handle}", a.withWorld(a.handleVolumeGet))
	mux.HandleFunc("PUT /worlds/{id}/volumes/{handle}/transform", a.withWorld(a.handleVolumeUpdateTransform))
	mux.HandleFunc("POST /worlds/{id}/raycast", a.withWorld(a.handleRaycast))
	mux.HandleFunc("POST /worlds/{id}/region", a.withWorld(a.handleRegion))
	mux.HandleFunc("GET /worlds/{id}/noise", a.withWorld(a.handleNoise))
	a.mux = mux
}

func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.initOnce.Do(a.init)
	a.mux.ServeHTTP(w, r)
}

type worldHandlerFunc func(w http.ResponseWriter, r *http.Request, world *models.World)

func (a *API) withWorld(h worldHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		world, err := a.Worlds.Get(r.PathValue("id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		h(w, r, world)
	}
}

type worldCreateRequest struct {
	Seed *int `json:"seed,omitempty"`
}

type worldCreateResponse struct {
	WorldID string `json:"world_id"`
}

func (a *API) handleWorldCreate(w http.ResponseWriter, r *http.Request) {
	var req worldCreateRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	seed := a.DefaultSeed
	if req.Seed != nil {
		seed = *req.Seed
	}

	world := models.NewWorld(seed, a.FeatureFlags)
	a.Worlds.Add(world)

	logs.WithTag("world_id", world.ID).
		WithTag("seed", seed).
		Info("world created")

	writeJSON(w, http.StatusCreated, worldCreateResponse{WorldID: world.ID})
}

type worldListResponse struct {
	WorldIDs []string `json:"world_ids"`
}

func (a *API) handleWorldList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, worldListResponse{WorldIDs: a.Worlds.IDs()})
}

func (a *API) handleWorldGet(w http.ResponseWriter, r *http.Request, world *models.World) {
	writeJSON(w, http.StatusOK, world.Stats())
}

func (a *API) handleWorldDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := a.Worlds.Remove(id); err != nil {
		writeError(w, r, err)
		return
	}

	logs.WithTag("world_id", id).Info("world deleted")
	w.WriteHeader(http.StatusNoContent)
}

type seedUpdateRequest struct {
	Seed int `json:"seed"`
}

func (a *API) handleSeedUpdate(w http.ResponseWriter, r *http.Request, world *models.World) {
	var req seedUpdateRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	world.Noise.SetSeed(req.Seed)
	w.WriteHeader(http.StatusNoContent)
}

type volumeAddRequest struct {
	Min geom.Vector3f `json:"min"`
	Max geom.Vector3f `json:"max"`
	Tag uint64        `json:"tag"`
}

type volumeAddResponse struct {
	Handle models.Handle `json:"handle"`
}

func (a *API) handleVolumeAdd(w http.ResponseWriter, r *http.Request, world *models.World) {
	var req volumeAddRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	handle, err := world.Volumes.Create(req.Min, req.Max, req.Tag)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, volumeAddResponse{Handle: handle})
}

type volumeResponse struct {
	Handle    models.Handle `json:"handle"`
	Tag       uint64        `json:"tag"`
	Center    geom.Vector3f `json:"center"`
	Min       geom.Vector3f `json:"min"`
	Max       geom.Vector3f `json:"max"`
	Extents   geom.Vector3f `json:"extents"`
	Transform mgl32.Mat4    `json:"transform"`
}

func (a *API) handleVolumeGet(w http.ResponseWriter, r *http.Request, world *models.World) {
	handle, err := pathHandle(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	v, err := world.Volumes.Volume(handle)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, volumeResponse{
		Handle:    handle,
		Tag:       v.Tag,
		Center:    v.Center,
		Min:       v.Min,
		Max:       v.Max,
		Extents:   v.Extents,
		Transform: v.Transform,
	})
}

type volumeUpdateTransformRequest struct {
	Transform *mgl32.Mat4 `json:"transform"`
}

func (a *API) handleVolumeUpdateTransform(w http.ResponseWriter, r *http.Request, world *models.World) {
	handle, err := pathHandle(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req volumeUpdateTransformRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Transform == nil {
		writeError(w, r, errors.New("transform is missing").WithType(ErrTypeBadRequest))
		return
	}

	if err := world.Volumes.UpdateTransform(handle, *req.Transform); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type raycastRequest struct {
	Origin    geom.Vector3f `json:"origin"`
	Direction geom.Vector3f `json:"direction"`
}

type raycastResponse struct {
	Found bool `json:"hit"`
	*models.Hit
}

func (a *API) handleRaycast(w http.ResponseWriter, r *http.Request, world *models.World) {
	var req raycastRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	var res raycastResponse
	if hit, ok := world.Volumes.Raycast(geom.NewRay(req.Origin, req.Direction)); ok {
		res.Found = true
		res.Hit = &hit
	}
	writeJSON(w, http.StatusOK, res)
}

type regionRequest struct {
	Min geom.Vector3f `json:"min"`
	Max geom.Vector3f `json:"max"`
}

type regionResponse struct {
	Handles []models.Handle `json:"handles"`
}

func (a *API) handleRegion(w http.ResponseWriter, r *http.Request, world *models.World) {
	var req regionRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	handles := world.Volumes.Region(req.Min, req.Max)
	if handles == nil {
		handles = []models.Handle{}
	}
	writeJSON(w, http.StatusOK, regionResponse{Handles: handles})
}

type noiseResponse struct {
	Value float32 `json:"value"`
}

func (a *API) handleNoise(w http.ResponseWriter, r *http.Request, world *models.World) {
	query := r.URL.Query()

	x, err := queryFloat(query.Get("x"), "x", 0)
	if err != nil {
		writeError(w, r, err)
		return
	}

	y, err := queryFloat(query.Get("y"), "y", 0)
	if err != nil {
		writeError(w, r, err)
		return
	}

	frequency, err := queryFloat(query.Get("frequency"), "frequency", 1)
	if err != nil {
		writeError(w, r, err)
		return
	}

	octaves := 1
	if s := query.Get("octaves"); s != "" {
		if octaves, err = strconv.Atoi(s); err != nil {
			writeError(w, r, errors.New("invalid octaves").
				WithType(ErrTypeBadRequest).
				WithTag("octaves", s).
				Wrap(err))
			return
		}
	}

	value, err := world.Noise.Perlin2D(x, y, frequency, octaves)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, noiseResponse{Value: value})
}

func pathHandle(r *http.Request) (models.Handle, error) {
	s := r.PathValue("handle")

	h, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, errors.New("invalid volume handle").
			WithType(ErrTypeBadRequest).
			WithTag("handle", s).
			Wrap(err)
	}
	return models.Handle(h), nil
}

func queryFloat(s, name string, defaultValue float32) (float32, error) {
	if s == "" {
		return defaultValue, nil
	}

	f, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return 0, errors.New("invalid query parameter").
			WithType(ErrTypeBadRequest).
			WithTag(name, s).
			Wrap(err)
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.New("query parameter is not finite").
			WithType(ErrTypeBadRequest).
			WithTag(name, s)
	}
	return float32(f), nil
}

// readJSON decodes the request body into v. An empty body leaves v
// untouched. Bodies over maxBodySize are rejected.
func readJSON(r *http.Request, v any) error {
	b, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize+1))
	if err != nil {
		return errors.New("reading body failed").
			WithType(ErrTypeBadRequest).
			Wrap(err)
	}

	if len(b) > maxBodySize {
		return errors.New("body is too large").
			WithType(ErrTypeBodyTooLarge).
			WithTag("max_body_size", maxBodySize)
	}

	if len(b) == 0 {
		return nil
	}

	if err := json.Unmarshal(b, v); err != nil {
		return errors.New("decoding body failed").
			WithType(ErrTypeBadRequest).
			Wrap(err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		logs.Warn(errors.New("encoding response failed").Wrap(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(b)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.Type(err)
	status := statusCode(code)

	if status >= http.StatusInternalServerError {
		logs.WithTag("method", r.Method).
			WithTag("path", r.URL.Path).
			Error(err)
	} else {
		logs.WithTag("method", r.Method).
			WithTag("path", r.URL.Path).
			Debug(err)
	}

	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: err.Error(),
	})
}

func statusCode(errType string) int {
	switch errType {
	case models.ErrTypeWorldNotFound,
		models.ErrTypeInvalidHandle:
		return http.StatusNotFound

	case ErrTypeBadRequest,
		noise.ErrTypeInvalidOctaves,
		noise.ErrTypeInvalidCoordinates:
		return http.StatusBadRequest

	case ErrTypeBodyTooLarge:
		return http.StatusRequestEntityTooLarge

	case models.ErrTypeDuplicateTag:
		return http.StatusConflict

	default:
		return http.StatusInternalServerError
	}
}
