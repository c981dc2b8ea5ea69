package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	domainerrors "github.com/recipeapp/recipe-server/internal/errors"
	"github.com/recipeapp/recipe-server/internal/http/response"
	"github.com/recipeapp/recipe-server/internal/metrics"
)

// ImageUploadResponse is returned after a recipe image upload.
type ImageUploadResponse struct {
	ID            int64  `json:"id"`
	Image         string `json:"image"`
	ImageBlurHash string `json:"image_blurhash,omitempty"`
}

// handleUploadImage accepts a multipart "image" field and attaches it to the
// recipe. Bypasses Huma, which has no multipart binding.
func (s *Server) handleUploadImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := GetUserID(ctx)
	if err != nil {
		response.Unauthorized(w, "authentication credentials were not provided", s.logger)
		return
	}

	recipeID, err := parsePathID(chi.URLParam(r, "id"), "recipe")
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.opts.MaxUploadBytes); err != nil {
		metrics.ImageUploaded("rejected")
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(w, domainerrors.FieldError("image",
				fmt.Sprintf("file too large, maximum size is %d bytes", s.opts.MaxUploadBytes)), s.logger)
			return
		}
		response.Error(w, domainerrors.FieldError("image", "expected a multipart form with an image field"), s.logger)
		return
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck // temp files only

	file, header, err := r.FormFile("image")
	if err != nil {
		metrics.ImageUploaded("rejected")
		response.Error(w, domainerrors.FieldError("image", "no file was submitted"), s.logger)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		metrics.ImageUploaded("error")
		s.logger.Error("Failed to read uploaded file", "error", err, "recipe_id", recipeID)
		response.HandleError(w, err, s.logger)
		return
	}

	recipe, err := s.services.Recipes.UploadImage(ctx, userID, recipeID, data)
	if err != nil {
		var de *domainerrors.Error
		if errors.As(err, &de) && de.Code != domainerrors.CodeInternal {
			metrics.ImageUploaded("rejected")
		} else {
			metrics.ImageUploaded("error")
		}
		response.HandleError(w, err, s.logger)
		return
	}

	metrics.ImageUploaded("ok")
	s.logger.Debug("Recipe image uploaded",
		"recipe_id", recipeID,
		"filename", header.Filename,
		"size", len(data),
	)

	response.Success(w, ImageUploadResponse{
		ID:            recipe.ID,
		Image:         mediaPrefix + recipe.Image,
		ImageBlurHash: recipe.ImageBlurHash,
	}, s.logger)
}

// handleServeMedia serves uploaded files from the media root.
func (s *Server) handleServeMedia(w http.ResponseWriter, r *http.Request) {
	rel := chi.URLParam(r, "*")
	if rel == "" || !filepath.IsLocal(filepath.FromSlash(rel)) || s.media == nil || !s.media.Exists(rel) {
		response.NotFound(w, "file not found", s.logger)
		return
	}

	w.Header().Set("Cache-Control", CacheOneDayPrivate)
	http.ServeFile(w, r, s.media.Path(rel))
}
