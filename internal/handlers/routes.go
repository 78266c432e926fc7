package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/phonolite/phonolite/internal/constants"
	"github.com/phonolite/phonolite/internal/provider"
)

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/albums", h.ListAlbums)
	r.Post("/admin/reload", h.Reload)
	r.Get("/{albumID}/cover", h.GetCover)
	r.Get("/{albumID}/{disc}/cover", h.GetCover)
	r.Get("/{albumID}/{disc}/{track}", h.GetAudio)
	r.Head("/{albumID}/{disc}/{track}", h.GetAudioInfo)
}

func (h *Handler) ListAlbums(w http.ResponseWriter, r *http.Request) {
	albums, err := h.Manager.Provider().Albums(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if albums == nil {
		albums = []string{}
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(albums); err != nil {
		h.Logger.Error("failed to encode album list", "error", err)
	}
}

func (h *Handler) trackRef(r *http.Request) (provider.TrackRef, error) {
	disc, err := strconv.Atoi(chi.URLParam(r, "disc"))
	if err != nil {
		return provider.TrackRef{}, err
	}
	track, err := strconv.Atoi(chi.URLParam(r, "track"))
	if err != nil {
		return provider.TrackRef{}, err
	}
	return provider.NewTrackRef(chi.URLParam(r, "albumID"), disc, track)
}

func setAudioHeaders(w http.ResponseWriter, info provider.AudioInfo) {
	w.Header().Set("Content-Type", info.MIMEType())
	w.Header().Set("Accept-Ranges", "bytes")
	w.Header().Set("X-Origin-Size", strconv.FormatInt(info.Size, 10))
	w.Header().Set("X-Duration-Millis", strconv.FormatUint(info.DurationMillis, 10))
}

func (h *Handler) GetAudio(w http.ResponseWriter, r *http.Request) {
	ref, err := h.trackRef(r)
	if err != nil {
		http.Error(w, "bad track reference", http.StatusBadRequest)
		return
	}
	rng := provider.ParseRangeHeader(r.Header.Get("Range"))

	audio, err := h.Manager.Provider().GetAudio(r.Context(), ref, rng)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	defer audio.Close()

	setAudioHeaders(w, audio.Info)
	if rng.Full() {
		if length := audio.Range.Length(); length >= 0 {
			w.Header().Set("Content-Length", strconv.FormatInt(length, 10))
		}
		w.WriteHeader(http.StatusOK)
	} else {
		w.Header().Set("Content-Range", audio.Range.ContentRangeHeader())
		if length := audio.Range.Length(); length >= 0 {
			w.Header().Set("Content-Length", strconv.FormatInt(length, 10))
		}
		w.WriteHeader(http.StatusPartialContent)
	}

	if _, err := io.Copy(w, audio.Body); err != nil {
		h.Logger.Debug("audio stream interrupted", "track", ref.String(), "error", err)
	}
}

func (h *Handler) GetAudioInfo(w http.ResponseWriter, r *http.Request) {
	ref, err := h.trackRef(r)
	if err != nil {
		http.Error(w, "bad track reference", http.StatusBadRequest)
		return
	}
	info, err := h.Manager.Provider().GetAudioInfo(r.Context(), ref)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	setAudioHeaders(w, info)
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) GetCover(w http.ResponseWriter, r *http.Request) {
	albumID := chi.URLParam(r, "albumID")
	disc := 0
	if d := chi.URLParam(r, "disc"); d != "" {
		var err error
		if disc, err = strconv.Atoi(d); err != nil || disc < 1 {
			http.Error(w, "bad disc index", http.StatusBadRequest)
			return
		}
	}

	cover, err := h.Manager.Provider().GetCover(r.Context(), albumID, disc)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	defer cover.Close()

	w.Header().Set("Content-Type", constants.MimeTypeJPEG)
	if _, err := io.Copy(w, cover); err != nil {
		h.Logger.Debug("cover stream interrupted", "album", albumID, "error", err)
	}
}

func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	if err := h.Manager.Reload(r.Context()); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
